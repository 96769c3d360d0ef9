package api

import (
	"github.com/mmynk/carpool/internal/calculator"
	"github.com/mmynk/carpool/internal/models"
	"github.com/mmynk/carpool/internal/report"
)

// Amounts are rendered as fixed two-decimal strings to keep them exact.

type participantJSON struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type carJSON struct {
	ID           string `json:"id"`
	OwnerID      string `json:"owner_id"`
	Description  string `json:"description,omitempty"`
	PricePerTrip string `json:"price_per_trip"`
}

type tripJSON struct {
	ID                string   `json:"id"`
	Date              string   `json:"date"`
	CarID             string   `json:"car_id"`
	Way               string   `json:"way"`
	Passengers        []string `json:"passengers"`
	PricePerPassenger string   `json:"price_per_passenger"`
	Notes             string   `json:"notes,omitempty"`
	ReportID          string   `json:"report_id,omitempty"`
}

type reportJSON struct {
	ID        string        `json:"id"`
	CreatorID string        `json:"creator_id"`
	CreatedAt int64         `json:"created_at"`
	Payments  *paymentsJSON `json:"payments"`
}

type amountJSON struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Amount        string `json:"amount"`
}

type instructionJSON struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type collectorJSON struct {
	amountJSON
	Payments []instructionJSON `json:"payments"`
}

type detailJSON struct {
	Date      string `json:"date"`
	Payer     string `json:"payer"`
	Collector string `json:"collector"`
	Amount    string `json:"amount"`
	Label     string `json:"label,omitempty"`
}

type paymentsJSON struct {
	DateFrom   string          `json:"date_from"`
	DateTo     string          `json:"date_to"`
	Totals     []amountJSON    `json:"totals"`
	Collectors []collectorJSON `json:"collectors"`
	Payers     []amountJSON    `json:"payers"`
	Even       []amountJSON    `json:"even"`
	Details    []detailJSON    `json:"details"`
}

func toParticipantJSON(p *models.Participant) participantJSON {
	return participantJSON{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, CreatedAt: p.CreatedAt}
}

func toCarJSON(c *models.Car) carJSON {
	return carJSON{ID: c.ID, OwnerID: c.OwnerID, Description: c.Description, PricePerTrip: c.PricePerTrip.StringFixed(2)}
}

func toTripJSON(t *models.Trip) tripJSON {
	passengers := t.Passengers
	if passengers == nil {
		passengers = []string{}
	}
	return tripJSON{
		ID:                t.ID,
		Date:              t.Date.Format(models.DateFormat),
		CarID:             t.CarID,
		Way:               string(t.Way),
		Passengers:        passengers,
		PricePerPassenger: t.PricePerPassenger.StringFixed(2),
		Notes:             t.Notes,
		ReportID:          t.ReportID,
	}
}

func toAmounts(txs []calculator.Transaction) []amountJSON {
	out := make([]amountJSON, len(txs))
	for i, tx := range txs {
		out[i] = amountJSON{ParticipantID: tx.Participant.ID, Name: tx.Participant.Name, Amount: tx.Amount.StringFixed(calculator.CurrencyPlaces)}
	}
	return out
}

func toPaymentsJSON(p *report.Payments) *paymentsJSON {
	if p == nil {
		return nil
	}
	s := p.Settlement
	out := &paymentsJSON{
		DateFrom: p.DateFrom.Format(models.DateFormat),
		DateTo:   p.DateTo.Format(models.DateFormat),
		Payers:   toAmounts(s.Payers),
		Even:     toAmounts(s.Even),
	}
	for _, t := range s.Totals {
		out.Totals = append(out.Totals, amountJSON{ParticipantID: t.Participant.ID, Name: t.Participant.Name, Amount: t.Amount.StringFixed(calculator.CurrencyPlaces)})
	}
	for _, cs := range s.ByCollector {
		c := collectorJSON{
			amountJSON: amountJSON{ParticipantID: cs.Collector.ID, Name: cs.Collector.Name, Amount: cs.Amount.StringFixed(calculator.CurrencyPlaces)},
			Payments:   make([]instructionJSON, len(cs.Instructions)),
		}
		for i, in := range cs.Instructions {
			c.Payments[i] = instructionJSON{From: in.From.ID, To: in.To.ID, Amount: in.Amount.StringFixed(calculator.CurrencyPlaces)}
		}
		out.Collectors = append(out.Collectors, c)
	}
	for _, d := range p.Details {
		out.Details = append(out.Details, detailJSON{
			Date:      d.Date.Format(models.DateFormat),
			Payer:     d.Payer,
			Collector: d.Collector,
			Amount:    d.Amount.StringFixed(calculator.CurrencyPlaces),
			Label:     d.Label,
		})
	}
	return out
}
