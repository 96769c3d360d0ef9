package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Instruction is a single "From pays To Amount" directive.
type Instruction struct {
	From   Participant
	To     Participant
	Amount decimal.Decimal
}

// CollectorSettlement lists the payments that together cover one collector's credit.
type CollectorSettlement struct {
	Collector    Participant
	Amount       decimal.Decimal
	Instructions []Instruction
}

// Allocate greedily matches payers against collectors.
//
// Collectors are served in input order. For each one, payers are taken from
// the front of the queue until the collector's credit is met; a payer who
// owes more than is still needed pays only the missing part and the rest of
// their debt is pushed to the back of the queue. The output is therefore
// fully determined by the input order.
//
// Every payer must be consumed and every collector fully covered, otherwise
// an ImbalanceInvariantError is returned.
func Allocate(collectors, payers []Transaction) ([]CollectorSettlement, error) {
	queue := newPayerQueue(payers)
	settlements := make([]CollectorSettlement, 0, len(collectors))

	for _, c := range collectors {
		cs := CollectorSettlement{Collector: c.Participant, Amount: c.Amount}
		need := c.Amount
		accumulated := decimal.Zero

		for accumulated.LessThan(need) {
			p, ok := queue.PopFront()
			if !ok {
				return nil, &ImbalanceInvariantError{
					Collected: sumTransactions(collectors),
					Paid:      sumTransactions(payers),
					Detail:    fmt.Sprintf("no payers left to cover %s for %s", need.Sub(accumulated).StringFixed(CurrencyPlaces), c.Participant.ID),
				}
			}
			if !p.Amount.IsPositive() {
				continue
			}
			accumulated = accumulated.Add(p.Amount)

			pays := p.Amount
			if excess := accumulated.Sub(need); excess.IsPositive() {
				pays = p.Amount.Sub(excess)
				queue.PushBack(Transaction{Participant: p.Participant, Amount: excess})
			}
			cs.Instructions = append(cs.Instructions, Instruction{
				From:   p.Participant,
				To:     c.Participant,
				Amount: pays,
			})
		}
		settlements = append(settlements, cs)
	}

	if queue.Len() > 0 {
		return nil, &ImbalanceInvariantError{
			Collected: sumTransactions(collectors),
			Paid:      sumTransactions(payers),
			Leftover:  queue.Remaining(),
		}
	}
	return settlements, nil
}
