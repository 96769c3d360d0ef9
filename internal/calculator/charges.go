// Package calculator implements the debt netting and settlement engine.
//
// The pipeline runs in four steps, each feeding the next:
//
//	ExtractCharges -> BuildMatrix -> Resolve -> Allocate
//
// Everything in this package is pure: no I/O, no logging, no shared state.
// Settle wires the steps together for a closed batch of charges.
package calculator

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places of the currency minor unit.
const CurrencyPlaces = 2

// Participant is a person taking part in trips. Identity is the ID; Name is
// only used for display.
type Participant struct {
	ID   string
	Name string
}

// Charge is a single debt: Payer owes Collector Amount for a trip on OccurredOn.
type Charge struct {
	Payer      string
	Collector  string
	Amount     decimal.Decimal
	OccurredOn time.Time
	Label      string
}

// TripForCharges represents a trip with the minimal information needed to
// derive charges.
type TripForCharges struct {
	Driver            string
	Passengers        []string // may include the driver
	PricePerPassenger decimal.Decimal
	Date              time.Time
	Label             string
}

// RoundCurrency rounds an amount to the currency minor unit using
// round-half-even.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(CurrencyPlaces)
}

// NewCharge builds a validated charge. The amount is rounded to the currency
// minor unit before validation.
func NewCharge(payer, collector string, amount decimal.Decimal, occurredOn time.Time, label string) (Charge, error) {
	c := Charge{
		Payer:      payer,
		Collector:  collector,
		Amount:     RoundCurrency(amount),
		OccurredOn: occurredOn,
		Label:      label,
	}
	if err := c.Validate(); err != nil {
		return Charge{}, err
	}
	return c, nil
}

// Validate reports an InvalidChargeError for self-charges and non-positive amounts.
func (c Charge) Validate() error {
	if c.Payer == c.Collector {
		return &InvalidChargeError{Payer: c.Payer, Collector: c.Collector, Amount: c.Amount, Reason: "payer and collector are the same person"}
	}
	if !c.Amount.IsPositive() {
		return &InvalidChargeError{Payer: c.Payer, Collector: c.Collector, Amount: c.Amount, Reason: "amount must be positive"}
	}
	return nil
}

// ExtractCharges converts a trip into one charge per passenger other than
// the driver. A passenger listed twice is charged once. A trip with only the
// driver yields no charges.
func ExtractCharges(trip TripForCharges) ([]Charge, error) {
	seen := make(map[string]bool, len(trip.Passengers))
	var charges []Charge
	for _, passenger := range trip.Passengers {
		if passenger == trip.Driver || seen[passenger] {
			continue
		}
		seen[passenger] = true

		c, err := NewCharge(passenger, trip.Driver, trip.PricePerPassenger, trip.Date, trip.Label)
		if err != nil {
			return nil, err
		}
		charges = append(charges, c)
	}
	return charges, nil
}

// ExtractAllCharges extracts charges from every trip, preserving trip order.
func ExtractAllCharges(trips []TripForCharges) ([]Charge, error) {
	var charges []Charge
	for _, trip := range trips {
		tc, err := ExtractCharges(trip)
		if err != nil {
			return nil, err
		}
		charges = append(charges, tc...)
	}
	return charges, nil
}

// PricePerPassenger splits a car's per-trip price among everyone in the car,
// the driver included. Each distinct person counts once.
func PricePerPassenger(pricePerTrip decimal.Decimal, driver string, passengers []string) decimal.Decimal {
	people := map[string]struct{}{driver: {}}
	for _, p := range passengers {
		people[p] = struct{}{}
	}
	return RoundCurrency(pricePerTrip.Div(decimal.NewFromInt(int64(len(people)))))
}
