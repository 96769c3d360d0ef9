package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/carpool/internal/calculator"
	"github.com/mmynk/carpool/internal/models"
	"github.com/mmynk/carpool/internal/storage"
)

// ParticipantService manages participants and their cars.
type ParticipantService struct {
	store storage.Store
}

// NewParticipantService creates a new ParticipantService with the given storage backend.
func NewParticipantService(store storage.Store) *ParticipantService {
	return &ParticipantService{store: store}
}

// CreateParticipant registers a new participant.
func (s *ParticipantService) CreateParticipant(ctx context.Context, firstName, lastName string) (*models.Participant, error) {
	slog.Info("CreateParticipant request received", "first_name", firstName)

	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return nil, fmt.Errorf("%w: first name is required", ErrInvalidArgument)
	}

	p := &models.Participant{FirstName: firstName, LastName: strings.TrimSpace(lastName)}
	if err := s.store.CreateParticipant(ctx, p); err != nil {
		slog.Error("CreateParticipant failed", "error", err)
		return nil, err
	}

	slog.Info("Participant created", "participant_id", p.ID)
	return p, nil
}

// ListParticipants returns every participant in stable order.
func (s *ParticipantService) ListParticipants(ctx context.Context) ([]*models.Participant, error) {
	participants, err := s.store.ListParticipants(ctx)
	if err != nil {
		slog.Error("ListParticipants failed", "error", err)
		return nil, err
	}
	return participants, nil
}

// CreateCar registers the car of an existing participant.
func (s *ParticipantService) CreateCar(ctx context.Context, ownerID, description string, pricePerTrip decimal.Decimal) (*models.Car, error) {
	slog.Info("CreateCar request received", "owner_id", ownerID, "price_per_trip", pricePerTrip.String())

	if !calculator.RoundCurrency(pricePerTrip).IsPositive() {
		return nil, fmt.Errorf("%w: price per trip must be positive", ErrInvalidArgument)
	}
	if _, err := s.store.GetParticipant(ctx, ownerID); err != nil {
		slog.Error("CreateCar owner lookup failed", "owner_id", ownerID, "error", err)
		return nil, err
	}

	car := &models.Car{
		OwnerID:      ownerID,
		Description:  strings.TrimSpace(description),
		PricePerTrip: calculator.RoundCurrency(pricePerTrip),
	}
	if err := s.store.CreateCar(ctx, car); err != nil {
		slog.Error("CreateCar failed", "error", err)
		return nil, err
	}

	slog.Info("Car created", "car_id", car.ID, "owner_id", ownerID)
	return car, nil
}
