package calculator

import "github.com/shopspring/decimal"

// Settlement is the complete result of one settlement run.
type Settlement struct {
	Totals     []NetTotal
	Collectors []Transaction
	Payers     []Transaction
	Even       []Transaction
	// ByCollector holds, for each collector in index order, the payments covering it.
	ByCollector []CollectorSettlement
}

// Instructions flattens the per-collector payments, collector order first.
func (s *Settlement) Instructions() []Instruction {
	var out []Instruction
	for _, cs := range s.ByCollector {
		out = append(out, cs.Instructions...)
	}
	return out
}

// TotalFor returns the net total of a participant, zero if unknown.
func (s *Settlement) TotalFor(id string) decimal.Decimal {
	for _, t := range s.Totals {
		if t.Participant.ID == id {
			return t.Amount
		}
	}
	return decimal.Zero
}

// Settle computes net balances and payment instructions for a closed batch
// of charges. participants must contain everyone referenced by charges.
func Settle(participants []Participant, charges []Charge) (*Settlement, error) {
	matrix, err := BuildMatrix(participants, charges)
	if err != nil {
		return nil, err
	}

	res, err := Resolve(matrix)
	if err != nil {
		return nil, err
	}

	byCollector, err := Allocate(res.Collectors, res.Payers)
	if err != nil {
		return nil, err
	}

	return &Settlement{
		Totals:      res.Totals,
		Collectors:  res.Collectors,
		Payers:      res.Payers,
		Even:        res.Even,
		ByCollector: byCollector,
	}, nil
}

// SettleTrips extracts charges from trips and settles them.
func SettleTrips(participants []Participant, trips []TripForCharges) (*Settlement, []Charge, error) {
	charges, err := ExtractAllCharges(trips)
	if err != nil {
		return nil, nil, err
	}
	s, err := Settle(participants, charges)
	if err != nil {
		return nil, nil, err
	}
	return s, charges, nil
}
