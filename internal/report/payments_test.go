package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/carpool/internal/calculator"
)

func TestPaymentsWriteText(t *testing.T) {
	people := []calculator.Participant{
		{ID: "a", Name: "Alice"},
		{ID: "b", Name: "Bob"},
		{ID: "c", Name: "Carol"},
	}
	day := time.Date(2020, 3, 28, 0, 0, 0, 0, time.UTC)
	charges := []calculator.Charge{
		{Payer: "b", Collector: "a", Amount: decimal.NewFromInt(10), OccurredOn: day, Label: "morning"},
		{Payer: "c", Collector: "a", Amount: decimal.NewFromInt(10), OccurredOn: day, Label: "morning"},
		{Payer: "c", Collector: "b", Amount: decimal.NewFromInt(10), OccurredOn: day.AddDate(0, 0, 2), Label: "evening"},
	}
	s, err := calculator.Settle(people, charges)
	require.NoError(t, err)

	p := NewPayments(people, charges, s)
	assert.Equal(t, day, p.DateFrom)
	assert.Equal(t, day.AddDate(0, 0, 2), p.DateTo)
	require.Len(t, p.Details, 3)
	assert.Equal(t, "Carol", p.Details[2].Payer)
	assert.Equal(t, "Bob", p.Details[2].Collector)

	var sb strings.Builder
	require.NoError(t, p.WriteText(&sb))
	out := sb.String()

	assert.Contains(t, out, "Trips from 2020-03-28 to 2020-03-30")
	assert.Contains(t, out, "Alice collects 20.00")
	assert.Regexp(t, `Carol pays\s+20\.00`, out)
	assert.Regexp(t, `Bob\s+0\.00\s+even`, out)
	assert.Contains(t, out, "Carol owes Bob")
}

func TestPaymentsNothingToSettle(t *testing.T) {
	people := []calculator.Participant{{ID: "a", Name: "Alice"}}
	s, err := calculator.Settle(people, nil)
	require.NoError(t, err)

	p := NewPayments(people, nil, s)
	assert.True(t, p.DateFrom.IsZero())

	var sb strings.Builder
	require.NoError(t, p.WriteText(&sb))
	assert.Contains(t, sb.String(), "Nothing to settle.")
	assert.NotContains(t, sb.String(), "DETAILS")
}

func TestPaymentsFallsBackToIDs(t *testing.T) {
	people := []calculator.Participant{{ID: "a"}, {ID: "b", Name: "Bob"}}
	charges := []calculator.Charge{{Payer: "a", Collector: "b", Amount: decimal.NewFromInt(1)}}
	s, err := calculator.Settle(people, charges)
	require.NoError(t, err)

	p := NewPayments(people, charges, s)
	assert.Equal(t, "a", p.Details[0].Payer)
}
