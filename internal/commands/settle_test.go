package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/carpool/internal/calculator"
)

const batchYAML = `
participants:
  - id: alice
    name: Alice
  - id: bob
    name: Bob
  - id: carol
    name: Carol
trips:
  - date: "2020-03-28"
    driver: alice
    passengers: [alice, bob, carol]
    price_per_trip: "30"
    label: morning
  - date: "2020-03-29"
    driver: bob
    passengers: [bob, carol]
    price_per_passenger: "10"
  - date: "2020-03-30"
    driver: carol
    passengers: [carol]
    price_per_trip: "25"
`

func TestSettleCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(batchYAML), 0o644))

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"settle", path})
	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.Contains(t, text, "Trips from 2020-03-28 to 2020-03-30")
	assert.Contains(t, text, "Alice collects 20.00")
	assert.Regexp(t, `Carol pays\s+20\.00`, text)
	assert.Contains(t, text, "2020-03-29 driven by bob")
}

func TestSettleCommandMissingFile(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"settle", filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, cmd.Execute())
}

func TestSettleBatchErrors(t *testing.T) {
	tests := []struct {
		name  string
		batch Batch
		want  string
	}{
		{
			name:  "bad date",
			batch: Batch{Trips: []BatchTrip{{Date: "28/03/2020", Driver: "a", PricePerTrip: "1"}}},
			want:  "invalid date",
		},
		{
			name:  "both prices",
			batch: Batch{Trips: []BatchTrip{{Date: "2020-03-28", Driver: "a", PricePerTrip: "1", PricePerPassenger: "1"}}},
			want:  "only one",
		},
		{
			name:  "no price",
			batch: Batch{Trips: []BatchTrip{{Date: "2020-03-28", Driver: "a"}}},
			want:  "required",
		},
		{
			name: "unknown passenger",
			batch: Batch{
				Participants: []BatchParticipant{{ID: "a"}},
				Trips:        []BatchTrip{{Date: "2020-03-28", Driver: "a", Passengers: []string{"ghost"}, PricePerPassenger: "5"}},
			},
			want: "unknown participant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SettleBatch(&tt.batch)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSettleBatchUnknownParticipantIsTyped(t *testing.T) {
	_, err := SettleBatch(&Batch{
		Participants: []BatchParticipant{{ID: "a"}},
		Trips:        []BatchTrip{{Date: "2020-03-28", Driver: "a", Passengers: []string{"b"}, PricePerPassenger: "5"}},
	})
	assert.ErrorIs(t, err, calculator.ErrUnknownParticipant)
}
