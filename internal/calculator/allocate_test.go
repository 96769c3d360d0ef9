package calculator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(p Participant, amount string) Transaction {
	return Transaction{Participant: p, Amount: d(amount)}
}

func flatten(settlements []CollectorSettlement) []string {
	var out []string
	for _, cs := range settlements {
		for _, in := range cs.Instructions {
			out = append(out, fmt.Sprintf("%s->%s %s", in.From.ID, in.To.ID, in.Amount.StringFixed(2)))
		}
	}
	return out
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name       string
		collectors []Transaction
		payers     []Transaction
		want       []string
	}{
		{
			name:       "single payer covers single collector",
			collectors: []Transaction{tx(alice, "20")},
			payers:     []Transaction{tx(carol, "20")},
			want:       []string{"carol->alice 20.00"},
		},
		{
			name:       "payer split across collectors",
			collectors: []Transaction{tx(alice, "50"), tx(bob, "30")},
			payers:     []Transaction{tx(carol, "40"), tx(dave, "40")},
			want: []string{
				"carol->alice 40.00",
				"dave->alice 10.00",
				"dave->bob 30.00",
			},
		},
		{
			name:       "remainder goes to the back of the queue",
			collectors: []Transaction{tx(alice, "10"), tx(bob, "25")},
			payers:     []Transaction{tx(carol, "20"), tx(dave, "15")},
			want: []string{
				"carol->alice 10.00",
				"dave->bob 15.00",
				"carol->bob 10.00",
			},
		},
		{
			name:       "exact match stops consuming",
			collectors: []Transaction{tx(alice, "10"), tx(bob, "10")},
			payers:     []Transaction{tx(carol, "10"), tx(dave, "10")},
			want: []string{
				"carol->alice 10.00",
				"dave->bob 10.00",
			},
		},
		{
			name: "nothing to settle",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Allocate(tt.collectors, tt.payers)
			require.NoError(t, err)
			assert.Equal(t, tt.want, flatten(got))
			require.Len(t, got, len(tt.collectors))
			for i, cs := range got {
				assert.Equal(t, tt.collectors[i].Participant, cs.Collector)
				covered := d("0")
				for _, in := range cs.Instructions {
					assert.True(t, in.Amount.IsPositive())
					covered = covered.Add(in.Amount)
				}
				assert.True(t, covered.Equal(cs.Amount), "collector %s covered %s of %s", cs.Collector.ID, covered, cs.Amount)
			}
		})
	}
}

func TestAllocateLeftoverPayers(t *testing.T) {
	_, err := Allocate(
		[]Transaction{tx(alice, "10")},
		[]Transaction{tx(carol, "15")},
	)

	require.ErrorIs(t, err, ErrImbalance)
	var imbalance *ImbalanceInvariantError
	require.ErrorAs(t, err, &imbalance)
	require.Len(t, imbalance.Leftover, 1)
	assert.Equal(t, "carol", imbalance.Leftover[0].Participant.ID)
	assert.Equal(t, "5.00", imbalance.Leftover[0].Amount.StringFixed(2))
}

func TestAllocateUncoveredCollector(t *testing.T) {
	_, err := Allocate(
		[]Transaction{tx(alice, "10"), tx(bob, "10")},
		[]Transaction{tx(carol, "15")},
	)
	assert.ErrorIs(t, err, ErrImbalance)
}

func TestPayerQueue(t *testing.T) {
	q := newPayerQueue([]Transaction{tx(alice, "1"), tx(bob, "2")})
	assert.Equal(t, 2, q.Len())

	first, ok := q.PopFront()
	require.True(t, ok)
	assert.Equal(t, "alice", first.Participant.ID)

	q.PushBack(tx(carol, "3"))
	assert.Equal(t, []Transaction{tx(bob, "2"), tx(carol, "3")}, q.Remaining())

	_, _ = q.PopFront()
	_, _ = q.PopFront()
	_, ok = q.PopFront()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}
