package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/carpool/internal/calculator"
	"github.com/mmynk/carpool/internal/models"
	"github.com/mmynk/carpool/internal/storage"
)

// TripService records trips and keeps their price per passenger current.
type TripService struct {
	store storage.Store
	now   func() time.Time
}

// NewTripService creates a new TripService with the given storage backend.
func NewTripService(store storage.Store) *TripService {
	return &TripService{store: store, now: time.Now}
}

// CreateTripInput holds the fields of a new trip.
type CreateTripInput struct {
	CarID      string
	Date       time.Time
	Way        models.Way
	Passengers []string
	Notes      string
}

// CreateTrip records a trip. The driver is always counted as a passenger.
func (s *TripService) CreateTrip(ctx context.Context, in CreateTripInput) (*models.Trip, error) {
	slog.Info("CreateTrip request received",
		"car_id", in.CarID,
		"date", in.Date.Format(models.DateFormat),
		"way", in.Way,
		"passengers_count", len(in.Passengers),
	)

	if !in.Way.Valid() {
		return nil, fmt.Errorf("%w: unknown way %q", ErrInvalidArgument, in.Way)
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidArgument)
	}

	car, err := s.store.GetCar(ctx, in.CarID)
	if err != nil {
		slog.Error("CreateTrip car lookup failed", "car_id", in.CarID, "error", err)
		return nil, err
	}
	if err := s.checkParticipants(ctx, in.Passengers); err != nil {
		return nil, err
	}

	passengers := withDriver(in.Passengers, car.OwnerID)
	price, err := chargeablePrice(car, passengers)
	if err != nil {
		return nil, err
	}
	trip := &models.Trip{
		Date:              dateOnly(in.Date),
		CarID:             car.ID,
		Way:               in.Way,
		Passengers:        passengers,
		PricePerPassenger: price,
		Notes:             in.Notes,
	}
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		slog.Error("CreateTrip failed", "error", err)
		return nil, err
	}

	slog.Info("Trip created", "trip_id", trip.ID, "price_per_passenger", trip.PricePerPassenger.StringFixed(2))
	return trip, nil
}

// RegisterRide records that riderID rides with driverID right now. The trip
// for today's date and way is created on first use and joined afterwards.
func (s *TripService) RegisterRide(ctx context.Context, driverID, riderID string) (*models.Trip, error) {
	slog.Info("RegisterRide request received", "driver_id", driverID, "rider_id", riderID)

	car, err := s.store.GetCarByOwner(ctx, driverID)
	if err != nil {
		slog.Error("RegisterRide car lookup failed", "driver_id", driverID, "error", err)
		return nil, err
	}

	now := s.now()
	way := models.WayAt(now)
	trip, err := s.store.FindTrip(ctx, dateOnly(now), car.ID, way)
	if errors.Is(err, storage.ErrNotFound) {
		return s.CreateTrip(ctx, CreateTripInput{
			CarID:      car.ID,
			Date:       now,
			Way:        way,
			Passengers: []string{riderID},
		})
	}
	if err != nil {
		slog.Error("RegisterRide trip lookup failed", "error", err)
		return nil, err
	}

	return s.AddPassengers(ctx, trip.ID, []string{riderID})
}

// AddPassengers adds people to an unreported trip and recomputes its price
// per passenger.
func (s *TripService) AddPassengers(ctx context.Context, tripID string, passengerIDs []string) (*models.Trip, error) {
	slog.Info("AddPassengers request received", "trip_id", tripID, "passengers_count", len(passengerIDs))

	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		slog.Error("AddPassengers trip lookup failed", "trip_id", tripID, "error", err)
		return nil, err
	}
	car, err := s.store.GetCar(ctx, trip.CarID)
	if err != nil {
		slog.Error("AddPassengers car lookup failed", "car_id", trip.CarID, "error", err)
		return nil, err
	}
	if err := s.checkParticipants(ctx, passengerIDs); err != nil {
		return nil, err
	}

	passengers := withDriver(append(trip.Passengers, passengerIDs...), car.OwnerID)
	price, err := chargeablePrice(car, passengers)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetTripPassengers(ctx, trip.ID, passengers, price); err != nil {
		slog.Error("AddPassengers failed", "trip_id", trip.ID, "error", err)
		return nil, err
	}

	if !price.Equal(trip.PricePerPassenger) {
		slog.Debug("Price per passenger updated", "trip_id", trip.ID, "price_per_passenger", price.StringFixed(2))
	}
	trip.Passengers = passengers
	trip.PricePerPassenger = price
	return trip, nil
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		slog.Error("GetTrip failed", "trip_id", tripID, "error", err)
		return nil, err
	}
	return trip, nil
}

func (s *TripService) checkParticipants(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := s.store.GetParticipant(ctx, id); err != nil {
			slog.Error("Participant lookup failed", "participant_id", id, "error", err)
			return err
		}
	}
	return nil
}

// chargeablePrice splits the car's price among passengers, driver included.
// A split that rounds to zero cannot be charged to anyone but the driver.
func chargeablePrice(car *models.Car, passengers []string) (decimal.Decimal, error) {
	price := calculator.PricePerPassenger(car.PricePerTrip, car.OwnerID, passengers)
	if !price.IsPositive() && len(passengers) > 1 {
		return decimal.Decimal{}, fmt.Errorf("%w: price per passenger of %s for %d people rounds to %s",
			ErrInvalidArgument, car.PricePerTrip.StringFixed(2), len(passengers), price.StringFixed(2))
	}
	return price, nil
}

// withDriver returns the distinct passengers, driver included, in first-seen order.
func withDriver(passengers []string, driver string) []string {
	seen := make(map[string]bool, len(passengers)+1)
	var out []string
	for _, id := range append(append([]string(nil), passengers...), driver) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
