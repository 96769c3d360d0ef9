package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors for use with errors.Is.
var (
	ErrInvalidCharge      = errors.New("invalid charge")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrImbalance          = errors.New("settlement imbalance")
)

// InvalidChargeError is returned when a charge has the same payer and
// collector, or a non-positive amount.
type InvalidChargeError struct {
	Payer     string
	Collector string
	Amount    decimal.Decimal
	Reason    string
}

func (e *InvalidChargeError) Error() string {
	return fmt.Sprintf("invalid charge %s -> %s (%s): %s",
		e.Payer, e.Collector, e.Amount.StringFixed(2), e.Reason)
}

func (e *InvalidChargeError) Unwrap() error { return ErrInvalidCharge }

// UnknownParticipantError is returned when a charge references a participant
// that is not part of the supplied participant set.
type UnknownParticipantError struct {
	ParticipantID string
}

func (e *UnknownParticipantError) Error() string {
	return fmt.Sprintf("unknown participant %q", e.ParticipantID)
}

func (e *UnknownParticipantError) Unwrap() error { return ErrUnknownParticipant }

// ImbalanceInvariantError signals that credits and debits did not balance.
// It always means inconsistent input data and must not be swallowed.
type ImbalanceInvariantError struct {
	Collected decimal.Decimal
	Paid      decimal.Decimal
	// Leftover holds payer remainders still queued after allocation.
	Leftover []Transaction
	Detail   string
}

func (e *ImbalanceInvariantError) Error() string {
	msg := fmt.Sprintf("settlement imbalance: collected %s, paid %s",
		e.Collected.StringFixed(2), e.Paid.StringFixed(2))
	if len(e.Leftover) > 0 {
		msg += fmt.Sprintf(", %d payer(s) left unallocated", len(e.Leftover))
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ImbalanceInvariantError) Unwrap() error { return ErrImbalance }
