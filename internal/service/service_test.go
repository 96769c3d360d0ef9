package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/carpool/internal/calculator"
	"github.com/mmynk/carpool/internal/metrics"
	"github.com/mmynk/carpool/internal/models"
	"github.com/mmynk/carpool/internal/storage"
	"github.com/mmynk/carpool/internal/storage/sqlite"
)

type testEnv struct {
	store   storage.Store
	people  *ParticipantService
	trips   *TripService
	reports *ReportService
	metrics *metrics.Metrics
}

// setupTestServices creates the services over a temporary SQLite database.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	require.NoError(t, err)
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpFile.Name())
	})

	m := metrics.New(prometheus.NewRegistry())
	reports, err := NewReportService(store, m, 16)
	require.NoError(t, err)

	return &testEnv{
		store:   store,
		people:  NewParticipantService(store),
		trips:   NewTripService(store),
		reports: reports,
		metrics: m,
	}
}

func (e *testEnv) participant(t *testing.T, name string) *models.Participant {
	t.Helper()
	p, err := e.people.CreateParticipant(context.Background(), name, "")
	require.NoError(t, err)
	return p
}

func (e *testEnv) car(t *testing.T, owner *models.Participant, price string) *models.Car {
	t.Helper()
	c, err := e.people.CreateCar(context.Background(), owner.ID, owner.FirstName+"'s car", decimal.RequireFromString(price))
	require.NoError(t, err)
	return c
}

var day = time.Date(2020, 3, 28, 0, 0, 0, 0, time.UTC)

func TestCreateParticipantRequiresName(t *testing.T) {
	env := setupTestServices(t)
	_, err := env.people.CreateParticipant(context.Background(), "  ", "Smith")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateCarRejectsNonPositivePrice(t *testing.T) {
	env := setupTestServices(t)
	alice := env.participant(t, "Alice")

	for _, price := range []string{"-1", "0", "0.004"} {
		_, err := env.people.CreateCar(context.Background(), alice.ID, "", decimal.RequireFromString(price))
		assert.ErrorIs(t, err, ErrInvalidArgument, "price %s", price)
	}
}

func TestTripRejectsPriceRoundingToZero(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	alice, bob, carol := env.participant(t, "Alice"), env.participant(t, "Bob"), env.participant(t, "Carol")
	car := env.car(t, alice, "0.01")

	// Driver alone pays the whole price.
	trip, err := env.trips.CreateTrip(ctx, CreateTripInput{CarID: car.ID, Date: day, Way: models.WayGoTo})
	require.NoError(t, err)
	assert.Equal(t, "0.01", trip.PricePerPassenger.StringFixed(2))

	// 0.01 / 2 rounds half-even to 0.00.
	_, err = env.trips.CreateTrip(ctx, CreateTripInput{CarID: car.ID, Date: day, Way: models.WayReturn, Passengers: []string{bob.ID}})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = env.trips.AddPassengers(ctx, trip.ID, []string{bob.ID, carol.ID})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	stored, err := env.trips.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, stored.Passengers)
}

func TestCreateTripComputesPricePerPassenger(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	alice, bob := env.participant(t, "Alice"), env.participant(t, "Bob")
	car := env.car(t, alice, "10")

	trip, err := env.trips.CreateTrip(ctx, CreateTripInput{
		CarID:      car.ID,
		Date:       day.Add(7 * time.Hour),
		Way:        models.WayGoTo,
		Passengers: []string{bob.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{bob.ID, alice.ID}, trip.Passengers)
	assert.Equal(t, "5.00", trip.PricePerPassenger.StringFixed(2))
	assert.Equal(t, day, trip.Date)

	carol := env.participant(t, "Carol")
	trip, err = env.trips.AddPassengers(ctx, trip.ID, []string{carol.ID, bob.ID})
	require.NoError(t, err)
	assert.Len(t, trip.Passengers, 3)
	assert.Equal(t, "3.33", trip.PricePerPassenger.StringFixed(2))

	stored, err := env.trips.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, "3.33", stored.PricePerPassenger.StringFixed(2))
}

func TestCreateTripValidation(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	alice := env.participant(t, "Alice")
	car := env.car(t, alice, "10")

	_, err := env.trips.CreateTrip(ctx, CreateTripInput{CarID: car.ID, Date: day, Way: "sideways"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = env.trips.CreateTrip(ctx, CreateTripInput{CarID: car.ID, Date: day, Way: models.WayGoTo, Passengers: []string{"ghost"}})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = env.trips.CreateTrip(ctx, CreateTripInput{CarID: "missing", Date: day, Way: models.WayGoTo})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRegisterRideJoinsExistingTrip(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	alice, bob, carol := env.participant(t, "Alice"), env.participant(t, "Bob"), env.participant(t, "Carol")
	env.car(t, alice, "30")
	env.trips.now = func() time.Time { return day.Add(8 * time.Hour) }

	first, err := env.trips.RegisterRide(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WayGoTo, first.Way)
	assert.Equal(t, "15.00", first.PricePerPassenger.StringFixed(2))

	second, err := env.trips.RegisterRide(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "10.00", second.PricePerPassenger.StringFixed(2))

	env.trips.now = func() time.Time { return day.Add(18 * time.Hour) }
	evening, err := env.trips.RegisterRide(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, evening.ID)
	assert.Equal(t, models.WayReturn, evening.Way)
}

func TestReportPayments(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	alice, bob, carol := env.participant(t, "Alice"), env.participant(t, "Bob"), env.participant(t, "Carol")
	aliceCar := env.car(t, alice, "30")
	bobCar := env.car(t, bob, "20")

	_, err := env.trips.CreateTrip(ctx, CreateTripInput{
		CarID: aliceCar.ID, Date: day, Way: models.WayGoTo,
		Passengers: []string{alice.ID, bob.ID, carol.ID},
	})
	require.NoError(t, err)
	_, err = env.trips.CreateTrip(ctx, CreateTripInput{
		CarID: bobCar.ID, Date: day.AddDate(0, 0, 1), Way: models.WayReturn,
		Passengers: []string{carol.ID},
	})
	require.NoError(t, err)
	// Driver alone: contributes nothing but widens the date range.
	_, err = env.trips.CreateTrip(ctx, CreateTripInput{
		CarID: aliceCar.ID, Date: day.AddDate(0, 0, 2), Way: models.WayGoTo,
	})
	require.NoError(t, err)

	preview, err := env.reports.Preview(ctx, time.Time{})
	require.NoError(t, err)
	require.NotNil(t, preview)

	r, err := env.reports.CreateReport(ctx, bob.ID, time.Time{})
	require.NoError(t, err)

	p, err := env.reports.Payments(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, day, p.DateFrom)
	assert.Equal(t, day.AddDate(0, 0, 2), p.DateTo)
	assert.Len(t, p.Details, 3)
	assert.Equal(t, "20.00", p.Settlement.TotalFor(alice.ID).StringFixed(2))
	assert.Equal(t, "0.00", p.Settlement.TotalFor(bob.ID).StringFixed(2))
	assert.Equal(t, "-20.00", p.Settlement.TotalFor(carol.ID).StringFixed(2))

	instructions := p.Settlement.Instructions()
	require.Len(t, instructions, 1)
	assert.Equal(t, carol.ID, instructions[0].From.ID)
	assert.Equal(t, alice.ID, instructions[0].To.ID)
	assert.Equal(t, "20.00", instructions[0].Amount.StringFixed(2))
	previewed := preview.Settlement.Instructions()
	require.Len(t, previewed, 1)
	assert.True(t, previewed[0].Amount.Equal(instructions[0].Amount))

	// Second lookup is served from the cache.
	again, err := env.reports.Payments(ctx, r.ID)
	require.NoError(t, err)
	assert.Same(t, p, again)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ReportCache.WithLabelValues("hit")))

	// Reported trips are gone from the unreported batch.
	empty, err := env.reports.Preview(ctx, time.Time{})
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestReportWithoutTripsHasNoPayments(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	alice := env.participant(t, "Alice")

	r, err := env.reports.CreateReport(ctx, alice.ID, time.Time{})
	require.NoError(t, err)

	p, err := env.reports.Payments(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPaymentsUnknownReport(t *testing.T) {
	env := setupTestServices(t)
	_, err := env.reports.Payments(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateReportLeavesTripsUnreportedWhenSettlementFails(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	alice, bob := env.participant(t, "Alice"), env.participant(t, "Bob")
	carol := env.participant(t, "Carol")
	carolCar := env.car(t, carol, "20")

	// A free car stored before prices were validated.
	freeCar := &models.Car{OwnerID: alice.ID, PricePerTrip: decimal.Zero}
	require.NoError(t, env.store.CreateCar(ctx, freeCar))
	require.NoError(t, env.store.CreateTrip(ctx, &models.Trip{
		Date: day, CarID: freeCar.ID, Way: models.WayGoTo,
		Passengers: []string{bob.ID, alice.ID}, PricePerPassenger: decimal.Zero,
	}))
	_, err := env.trips.CreateTrip(ctx, CreateTripInput{
		CarID: carolCar.ID, Date: day, Way: models.WayReturn, Passengers: []string{bob.ID},
	})
	require.NoError(t, err)

	_, err = env.reports.CreateReport(ctx, alice.ID, time.Time{})
	assert.ErrorIs(t, err, calculator.ErrInvalidCharge)

	unreported, err := env.store.ListUnreportedTrips(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, unreported, 2)
}

func TestReportSettlesOnlyInvolvedParticipants(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	alice, bob := env.participant(t, "Alice"), env.participant(t, "Bob")
	creator := env.participant(t, "Carol")
	env.participant(t, "Dave")
	car := env.car(t, alice, "10")

	_, err := env.trips.CreateTrip(ctx, CreateTripInput{
		CarID: car.ID, Date: day, Way: models.WayGoTo, Passengers: []string{bob.ID},
	})
	require.NoError(t, err)

	r, err := env.reports.CreateReport(ctx, creator.ID, time.Time{})
	require.NoError(t, err)
	p, err := env.reports.Payments(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, p)

	var ids []string
	for _, total := range p.Settlement.Totals {
		ids = append(ids, total.Participant.ID)
	}
	assert.Equal(t, []string{alice.ID, bob.ID, creator.ID}, ids)

	// People registered later do not change the report.
	env.participant(t, "Erin")
	env.reports.payments.Purge()
	again, err := env.reports.Payments(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, again.Settlement.Totals, 3)
}
