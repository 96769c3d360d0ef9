// Package report renders settlement results for people to read.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/carpool/internal/calculator"
)

// Detail is one charge shown with participant names.
type Detail struct {
	Payer     string
	Collector string
	Amount    decimal.Decimal
	Date      time.Time
	Label     string
}

// Payments is the data behind a settlement report.
type Payments struct {
	DateFrom   time.Time
	DateTo     time.Time
	Settlement *calculator.Settlement
	Details    []Detail
}

// NewPayments combines a settlement with the charges it was computed from.
// Details keep the charge order. DateFrom and DateTo span the charge dates
// and may be widened by the caller to cover trips without charges.
func NewPayments(participants []calculator.Participant, charges []calculator.Charge, s *calculator.Settlement) *Payments {
	names := make(map[string]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}

	p := &Payments{Settlement: s}
	for _, c := range charges {
		p.Details = append(p.Details, Detail{
			Payer:     nameOr(names, c.Payer),
			Collector: nameOr(names, c.Collector),
			Amount:    c.Amount,
			Date:      c.OccurredOn,
			Label:     c.Label,
		})
		p.Widen(c.OccurredOn)
	}
	return p
}

// Widen extends the date range to include t.
func (p *Payments) Widen(t time.Time) {
	if p.DateFrom.IsZero() || t.Before(p.DateFrom) {
		p.DateFrom = t
	}
	if p.DateTo.IsZero() || t.After(p.DateTo) {
		p.DateTo = t
	}
}

func nameOr(names map[string]string, id string) string {
	if name := names[id]; name != "" {
		return name
	}
	return id
}

const dateLayout = "2006-01-02"

// WriteText renders the report as aligned plain text.
func (p *Payments) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if !p.DateFrom.IsZero() {
		fmt.Fprintf(tw, "Trips from %s to %s\n\n", p.DateFrom.Format(dateLayout), p.DateTo.Format(dateLayout))
	}

	fmt.Fprintln(tw, "BALANCES")
	for _, t := range p.Settlement.Totals {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", t.Participant.Name, t.Amount.StringFixed(calculator.CurrencyPlaces), position(t.Amount))
	}

	fmt.Fprintln(tw, "\nPAYMENTS")
	if len(p.Settlement.ByCollector) == 0 {
		fmt.Fprintln(tw, "  Nothing to settle.")
	}
	for _, cs := range p.Settlement.ByCollector {
		fmt.Fprintf(tw, "  %s collects %s\n", cs.Collector.Name, cs.Amount.StringFixed(calculator.CurrencyPlaces))
		for _, in := range cs.Instructions {
			fmt.Fprintf(tw, "    %s pays\t%s\n", in.From.Name, in.Amount.StringFixed(calculator.CurrencyPlaces))
		}
	}

	if len(p.Details) > 0 {
		fmt.Fprintln(tw, "\nDETAILS")
		for _, d := range p.Details {
			fmt.Fprintf(tw, "  %s\t%s owes %s\t%s\t%s\n",
				d.Date.Format(dateLayout), d.Payer, d.Collector, d.Amount.StringFixed(calculator.CurrencyPlaces), d.Label)
		}
	}

	return tw.Flush()
}

func position(amount decimal.Decimal) string {
	switch amount.Sign() {
	case 1:
		return "collects"
	case -1:
		return "pays"
	default:
		return "even"
	}
}
