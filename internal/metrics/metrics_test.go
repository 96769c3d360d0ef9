package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/mmynk/carpool/internal/calculator"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{&calculator.InvalidChargeError{Payer: "a", Collector: "a"}, OutcomeInvalidCharge},
		{fmt.Errorf("settle: %w", &calculator.UnknownParticipantError{ParticipantID: "x"}), OutcomeUnknownParticipant},
		{&calculator.ImbalanceInvariantError{}, OutcomeImbalance},
		{errors.New("boom"), OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err), "Outcome(%v)", tt.err)
	}
}

func TestObserveSettlement(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSettlement(time.Now(), 3, nil)
	m.ObserveSettlement(time.Now(), 0, &calculator.ImbalanceInvariantError{})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettlementRuns.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettlementRuns.WithLabelValues(OutcomeImbalance)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Instructions))
}
