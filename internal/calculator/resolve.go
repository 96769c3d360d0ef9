package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// minorUnit is one unit of the smallest currency denomination.
var minorUnit = decimal.New(1, -CurrencyPlaces)

// Transaction is an outstanding credit (for a collector) or debit (for a
// payer). Amount is never negative.
type Transaction struct {
	Participant Participant
	Amount      decimal.Decimal
}

// NetTotal is a participant's overall position after netting.
// Positive = is owed money, negative = owes money.
type NetTotal struct {
	Participant Participant
	Amount      decimal.Decimal
}

// Resolution partitions participants by the sign of their net total.
// Every list is in matrix index order.
type Resolution struct {
	Totals     []NetTotal
	Collectors []Transaction
	Payers     []Transaction // amounts stored as absolute values
	Even       []Transaction
}

// Resolve reduces a net balance matrix to per-participant totals and splits
// participants into collectors, payers and even.
//
// Totals are rounded to the currency minor unit before classification. If
// credits and debits then differ by no more than one minor unit per
// participant, the difference is taken off the largest transaction on the
// heavier side. A larger difference is an ImbalanceInvariantError.
func Resolve(m *BalanceMatrix) (*Resolution, error) {
	res := &Resolution{}
	for _, p := range m.participants {
		total := RoundCurrency(m.RowTotal(p.ID))
		res.Totals = append(res.Totals, NetTotal{Participant: p, Amount: total})

		switch total.Sign() {
		case 1:
			res.Collectors = append(res.Collectors, Transaction{Participant: p, Amount: total})
		case -1:
			res.Payers = append(res.Payers, Transaction{Participant: p, Amount: total.Abs()})
		default:
			res.Even = append(res.Even, Transaction{Participant: p, Amount: decimal.Zero})
		}
	}

	collected := sumTransactions(res.Collectors)
	paid := sumTransactions(res.Payers)
	diff := collected.Sub(paid)
	if diff.IsZero() {
		return res, nil
	}

	tolerance := minorUnit.Mul(decimal.NewFromInt(int64(len(m.participants))))
	if diff.Abs().GreaterThan(tolerance) {
		return nil, &ImbalanceInvariantError{
			Collected: collected,
			Paid:      paid,
			Detail:    fmt.Sprintf("difference %s exceeds tolerance %s", diff.StringFixed(CurrencyPlaces), tolerance.StringFixed(CurrencyPlaces)),
		}
	}

	heavier := res.Collectors
	if diff.IsNegative() {
		heavier = res.Payers
	}
	i := largest(heavier)
	adjusted := heavier[i].Amount.Sub(diff.Abs())
	if !adjusted.IsPositive() {
		return nil, &ImbalanceInvariantError{
			Collected: collected,
			Paid:      paid,
			Detail:    fmt.Sprintf("cannot absorb rounding difference %s", diff.StringFixed(CurrencyPlaces)),
		}
	}
	heavier[i].Amount = adjusted
	return res, nil
}

// largest returns the index of the largest amount, the first one on ties.
func largest(txs []Transaction) int {
	best := 0
	for i := 1; i < len(txs); i++ {
		if txs[i].Amount.GreaterThan(txs[best].Amount) {
			best = i
		}
	}
	return best
}

func sumTransactions(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total
}
