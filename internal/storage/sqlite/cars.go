package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/carpool/internal/models"
	"github.com/mmynk/carpool/internal/storage"
)

// CreateCar persists a new car. A participant owns at most one car.
func (s *SQLiteStore) CreateCar(ctx context.Context, car *models.Car) error {
	if car.ID == "" {
		car.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO cars (id, owner_id, description, price_per_trip) VALUES (?, ?, ?, ?)",
		car.ID, car.OwnerID, car.Description, car.PricePerTrip.StringFixed(2),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("car for owner %s: %w", car.OwnerID, storage.ErrConflict)
		}
		return fmt.Errorf("failed to insert car: %w", err)
	}
	return nil
}

// GetCar retrieves a car by ID.
func (s *SQLiteStore) GetCar(ctx context.Context, id string) (*models.Car, error) {
	return s.getCar(ctx, "id", id)
}

// GetCarByOwner retrieves the car owned by a participant.
func (s *SQLiteStore) GetCarByOwner(ctx context.Context, ownerID string) (*models.Car, error) {
	return s.getCar(ctx, "owner_id", ownerID)
}

func (s *SQLiteStore) getCar(ctx context.Context, column, value string) (*models.Car, error) {
	car := &models.Car{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, owner_id, description, price_per_trip FROM cars WHERE "+column+" = ?",
		value,
	).Scan(&car.ID, &car.OwnerID, &car.Description, &car.PricePerTrip)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("car %s=%s: %w", column, value, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get car: %w", err)
	}
	return car, nil
}
