package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Pair addresses one cell of a BalanceMatrix: the amount Collector is owed by Payer.
type Pair struct {
	Collector string
	Payer     string
}

// BalanceMatrix holds the net amounts owed between every pair of participants.
// Rows are collectors and columns are payers: Net(a, b) == x means b owes a x.
// After netting the matrix is antisymmetric with a zero diagonal.
type BalanceMatrix struct {
	participants []Participant
	index        map[string]int
	net          map[Pair]decimal.Decimal
}

// BuildMatrix aggregates charges into a net balance matrix over the given
// participants. The participant order fixes the row/column order of the
// matrix and every result derived from it.
//
// Algorithm:
//   - raw[collector][payer] += amount for each charge
//   - net = raw - transpose(raw)
func BuildMatrix(participants []Participant, charges []Charge) (*BalanceMatrix, error) {
	index := make(map[string]int, len(participants))
	for i, p := range participants {
		if _, dup := index[p.ID]; dup {
			return nil, fmt.Errorf("duplicate participant %q", p.ID)
		}
		index[p.ID] = i
	}

	// Zero-initialise the full cross product so every cell is addressable.
	raw := make(map[Pair]decimal.Decimal, len(participants)*len(participants))
	for _, row := range participants {
		for _, col := range participants {
			raw[Pair{Collector: row.ID, Payer: col.ID}] = decimal.Zero
		}
	}

	for _, c := range charges {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, ok := index[c.Collector]; !ok {
			return nil, &UnknownParticipantError{ParticipantID: c.Collector}
		}
		if _, ok := index[c.Payer]; !ok {
			return nil, &UnknownParticipantError{ParticipantID: c.Payer}
		}
		key := Pair{Collector: c.Collector, Payer: c.Payer}
		raw[key] = raw[key].Add(c.Amount)
	}

	net := make(map[Pair]decimal.Decimal, len(raw))
	for key, amount := range raw {
		net[key] = amount.Sub(raw[Pair{Collector: key.Payer, Payer: key.Collector}])
	}

	return &BalanceMatrix{
		participants: append([]Participant(nil), participants...),
		index:        index,
		net:          net,
	}, nil
}

// Participants returns the participants in matrix index order.
func (m *BalanceMatrix) Participants() []Participant {
	return append([]Participant(nil), m.participants...)
}

// Index returns the row/column position of a participant.
func (m *BalanceMatrix) Index(id string) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// Net returns how much payer owes collector after netting. A negative value
// means collector owes payer.
func (m *BalanceMatrix) Net(collector, payer string) decimal.Decimal {
	return m.net[Pair{Collector: collector, Payer: payer}]
}

// RowTotal sums a participant's row: positive when they are owed money overall.
func (m *BalanceMatrix) RowTotal(id string) decimal.Decimal {
	total := decimal.Zero
	for _, col := range m.participants {
		total = total.Add(m.Net(id, col.ID))
	}
	return total
}

// Validate checks antisymmetry and the zero diagonal.
func (m *BalanceMatrix) Validate() error {
	for _, a := range m.participants {
		if d := m.Net(a.ID, a.ID); !d.IsZero() {
			return fmt.Errorf("diagonal entry for %q is %s", a.ID, d)
		}
		for _, b := range m.participants {
			if !m.Net(a.ID, b.ID).Equal(m.Net(b.ID, a.ID).Neg()) {
				return fmt.Errorf("matrix not antisymmetric at (%q, %q)", a.ID, b.ID)
			}
		}
	}
	return nil
}
