// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/carpool/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a record violates a uniqueness rule,
	// such as a second trip for the same date, car and way.
	ErrConflict = errors.New("conflict")

	// ErrTripReported is returned when changing a trip that already belongs to a report.
	ErrTripReported = errors.New("trip already belongs to a report")
)

// Store defines the interface for carpool storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateParticipant persists a new participant.
	// The ID and CreatedAt fields are populated by the store when empty.
	CreateParticipant(ctx context.Context, p *models.Participant) error

	// GetParticipant retrieves a participant by ID.
	GetParticipant(ctx context.Context, id string) (*models.Participant, error)

	// ListParticipants returns every participant in creation order.
	ListParticipants(ctx context.Context) ([]*models.Participant, error)

	// CreateCar persists a new car. The owner must exist.
	CreateCar(ctx context.Context, car *models.Car) error

	// GetCar retrieves a car by ID.
	GetCar(ctx context.Context, id string) (*models.Car, error)

	// GetCarByOwner retrieves the car owned by a participant.
	GetCarByOwner(ctx context.Context, ownerID string) (*models.Car, error)

	// CreateTrip persists a new trip with its passengers.
	// Returns ErrConflict if a trip already exists for the same date, car and way.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// GetTrip retrieves a trip with its passengers.
	GetTrip(ctx context.Context, id string) (*models.Trip, error)

	// FindTrip retrieves the trip for a date, car and way.
	FindTrip(ctx context.Context, date time.Time, carID string, way models.Way) (*models.Trip, error)

	// SetTripPassengers replaces a trip's passengers and price per passenger.
	// Returns ErrTripReported if the trip already belongs to a report.
	SetTripPassengers(ctx context.Context, tripID string, passengers []string, pricePerPassenger decimal.Decimal) error

	// ListUnreportedTrips returns trips not yet in a report, up to and
	// including until (zero means no limit), ordered by date.
	ListUnreportedTrips(ctx context.Context, until time.Time) ([]*models.Trip, error)

	// ListTripsByReport returns a report's trips ordered by date.
	ListTripsByReport(ctx context.Context, reportID string) ([]*models.Trip, error)

	// CreateReport persists a report and attaches the given trips to it atomically.
	// Returns ErrTripReported if any trip is already in a report.
	CreateReport(ctx context.Context, report *models.Report, tripIDs []string) error

	// GetReport retrieves a report by ID.
	GetReport(ctx context.Context, id string) (*models.Report, error)

	// Close releases any resources held by the store.
	Close() error
}
