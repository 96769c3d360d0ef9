// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/carpool/internal/calculator"
)

// Outcome labels for settlement runs.
const (
	OutcomeOK                 = "ok"
	OutcomeInvalidCharge      = "invalid_charge"
	OutcomeUnknownParticipant = "unknown_participant"
	OutcomeImbalance          = "imbalance"
	OutcomeError              = "error"
)

// Metrics holds the collectors for settlement runs and the report cache.
type Metrics struct {
	SettlementRuns     *prometheus.CounterVec
	SettlementDuration prometheus.Histogram
	Instructions       prometheus.Counter
	ReportCache        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SettlementRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carpool",
			Name:      "settlement_runs_total",
			Help:      "Settlement runs by outcome.",
		}, []string{"outcome"}),
		SettlementDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "carpool",
			Name:      "settlement_duration_seconds",
			Help:      "Time spent computing a settlement.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		Instructions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carpool",
			Name:      "settlement_instructions_total",
			Help:      "Payment instructions produced by settlement runs.",
		}),
		ReportCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carpool",
			Name:      "report_cache_requests_total",
			Help:      "Report payment lookups by cache result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.SettlementRuns, m.SettlementDuration, m.Instructions, m.ReportCache)
	return m
}

// ObserveSettlement records one settlement run.
func (m *Metrics) ObserveSettlement(start time.Time, instructions int, err error) {
	m.SettlementDuration.Observe(time.Since(start).Seconds())
	m.SettlementRuns.WithLabelValues(Outcome(err)).Inc()
	if err == nil {
		m.Instructions.Add(float64(instructions))
	}
}

// Outcome maps a settlement error to its label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, calculator.ErrInvalidCharge):
		return OutcomeInvalidCharge
	case errors.Is(err, calculator.ErrUnknownParticipant):
		return OutcomeUnknownParticipant
	case errors.Is(err, calculator.ErrImbalance):
		return OutcomeImbalance
	default:
		return OutcomeError
	}
}
