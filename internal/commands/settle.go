package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/carpool/internal/calculator"
	"github.com/mmynk/carpool/internal/models"
	"github.com/mmynk/carpool/internal/report"
)

// Batch is an offline batch of trips to settle, read from YAML.
type Batch struct {
	Participants []BatchParticipant `yaml:"participants"`
	Trips        []BatchTrip        `yaml:"trips"`
}

// BatchParticipant is one person in a batch.
type BatchParticipant struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// BatchTrip is one trip in a batch. Exactly one of PricePerTrip and
// PricePerPassenger must be set; PricePerTrip is split among everyone in
// the car, the driver included.
type BatchTrip struct {
	Date              string   `yaml:"date"`
	Driver            string   `yaml:"driver"`
	Passengers        []string `yaml:"passengers"`
	PricePerTrip      string   `yaml:"price_per_trip,omitempty"`
	PricePerPassenger string   `yaml:"price_per_passenger,omitempty"`
	Label             string   `yaml:"label,omitempty"`
}

func newSettleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "settle <batch.yaml>",
		Short: "Settle a YAML batch of trips and print who pays whom",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading batch: %w", err)
			}
			var batch Batch
			if err := yaml.Unmarshal(data, &batch); err != nil {
				return fmt.Errorf("parsing batch: %w", err)
			}

			payments, err := SettleBatch(&batch)
			if err != nil {
				return err
			}
			return payments.WriteText(cmd.OutOrStdout())
		},
	}
}

// SettleBatch converts a batch into calculator input and settles it.
func SettleBatch(b *Batch) (*report.Payments, error) {
	participants := make([]calculator.Participant, len(b.Participants))
	for i, p := range b.Participants {
		participants[i] = calculator.Participant{ID: p.ID, Name: p.Name}
	}

	trips := make([]calculator.TripForCharges, 0, len(b.Trips))
	dates := make([]time.Time, 0, len(b.Trips))
	for i, t := range b.Trips {
		date, err := time.Parse(models.DateFormat, t.Date)
		if err != nil {
			return nil, fmt.Errorf("trip %d: invalid date: %w", i+1, err)
		}
		price, err := t.pricePerPassenger()
		if err != nil {
			return nil, fmt.Errorf("trip %d: %w", i+1, err)
		}
		label := t.Label
		if label == "" {
			label = fmt.Sprintf("%s driven by %s", t.Date, t.Driver)
		}
		trips = append(trips, calculator.TripForCharges{
			Driver:            t.Driver,
			Passengers:        t.Passengers,
			PricePerPassenger: price,
			Date:              date,
			Label:             label,
		})
		dates = append(dates, date)
	}

	s, charges, err := calculator.SettleTrips(participants, trips)
	if err != nil {
		return nil, fmt.Errorf("settling batch: %w", err)
	}

	p := report.NewPayments(participants, charges, s)
	for _, d := range dates {
		p.Widen(d)
	}
	return p, nil
}

func (t BatchTrip) pricePerPassenger() (decimal.Decimal, error) {
	switch {
	case t.PricePerTrip != "" && t.PricePerPassenger != "":
		return decimal.Decimal{}, fmt.Errorf("set only one of price_per_trip and price_per_passenger")
	case t.PricePerTrip != "":
		total, err := decimal.NewFromString(t.PricePerTrip)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("invalid price_per_trip: %w", err)
		}
		return calculator.PricePerPassenger(total, t.Driver, t.Passengers), nil
	case t.PricePerPassenger != "":
		price, err := decimal.NewFromString(t.PricePerPassenger)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("invalid price_per_passenger: %w", err)
		}
		return calculator.RoundCurrency(price), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("price_per_trip or price_per_passenger is required")
	}
}
