package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/carpool/internal/models"
	"github.com/mmynk/carpool/internal/storage"
)

const tripColumns = "id, date, car_id, way, price_per_passenger, notes, report_id"

// CreateTrip persists a new trip and its passengers.
func (s *SQLiteStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var reportID interface{} = nil
	if trip.ReportID != "" {
		reportID = trip.ReportID
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO trips ("+tripColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		trip.ID, trip.Date.Format(models.DateFormat), trip.CarID, string(trip.Way),
		trip.PricePerPassenger.StringFixed(2), trip.Notes, reportID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("trip on %s in car %s (%s): %w",
				trip.Date.Format(models.DateFormat), trip.CarID, trip.Way, storage.ErrConflict)
		}
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	if err := insertPassengers(ctx, tx, trip.ID, trip.Passengers); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTrip retrieves a trip by ID, including its passengers.
func (s *SQLiteStore) GetTrip(ctx context.Context, id string) (*models.Trip, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tripColumns+" FROM trips WHERE id = ?", id)
	trip, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	if err := s.loadPassengers(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// FindTrip retrieves the trip for a date, car and way.
func (s *SQLiteStore) FindTrip(ctx context.Context, date time.Time, carID string, way models.Way) (*models.Trip, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+tripColumns+" FROM trips WHERE date = ? AND car_id = ? AND way = ?",
		date.Format(models.DateFormat), carID, string(way),
	)
	trip, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip on %s in car %s (%s): %w",
			date.Format(models.DateFormat), carID, way, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find trip: %w", err)
	}
	if err := s.loadPassengers(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// SetTripPassengers replaces the passengers of an unreported trip.
func (s *SQLiteStore) SetTripPassengers(ctx context.Context, tripID string, passengers []string, pricePerPassenger decimal.Decimal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var reportID sql.NullString
	err = tx.QueryRowContext(ctx, "SELECT report_id FROM trips WHERE id = ?", tripID).Scan(&reportID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check trip: %w", err)
	}
	if reportID.Valid {
		return fmt.Errorf("trip %s in report %s: %w", tripID, reportID.String, storage.ErrTripReported)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM trip_passengers WHERE trip_id = ?", tripID); err != nil {
		return fmt.Errorf("failed to clear passengers: %w", err)
	}
	if err := insertPassengers(ctx, tx, tripID, passengers); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE trips SET price_per_passenger = ? WHERE id = ?",
		pricePerPassenger.StringFixed(2), tripID,
	); err != nil {
		return fmt.Errorf("failed to update price per passenger: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListUnreportedTrips returns trips without a report, oldest first.
func (s *SQLiteStore) ListUnreportedTrips(ctx context.Context, until time.Time) ([]*models.Trip, error) {
	query := "SELECT " + tripColumns + " FROM trips WHERE report_id IS NULL"
	var args []interface{}
	if !until.IsZero() {
		query += " AND date <= ?"
		args = append(args, until.Format(models.DateFormat))
	}
	query += " ORDER BY date, way, rowid"
	return s.listTrips(ctx, query, args...)
}

// ListTripsByReport returns a report's trips, oldest first.
func (s *SQLiteStore) ListTripsByReport(ctx context.Context, reportID string) ([]*models.Trip, error) {
	return s.listTrips(ctx,
		"SELECT "+tripColumns+" FROM trips WHERE report_id = ? ORDER BY date, way, rowid",
		reportID,
	)
}

func (s *SQLiteStore) listTrips(ctx context.Context, query string, args ...interface{}) ([]*models.Trip, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	var trips []*models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}

	// Passengers are loaded after the trip cursor is closed: the store uses
	// a single connection.
	for _, trip := range trips {
		if err := s.loadPassengers(ctx, trip); err != nil {
			return nil, err
		}
	}
	return trips, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrip(row rowScanner) (*models.Trip, error) {
	trip := &models.Trip{}
	var date, way string
	var reportID sql.NullString
	if err := row.Scan(&trip.ID, &date, &trip.CarID, &way, &trip.PricePerPassenger, &trip.Notes, &reportID); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(models.DateFormat, date)
	if err != nil {
		return nil, fmt.Errorf("invalid trip date %q: %w", date, err)
	}
	trip.Date = parsed
	trip.Way = models.Way(way)
	if reportID.Valid {
		trip.ReportID = reportID.String
	}
	return trip, nil
}

func (s *SQLiteStore) loadPassengers(ctx context.Context, trip *models.Trip) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT participant_id FROM trip_passengers WHERE trip_id = ? ORDER BY rowid",
		trip.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get passengers: %w", err)
	}
	defer rows.Close()

	trip.Passengers = nil
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan passenger: %w", err)
		}
		trip.Passengers = append(trip.Passengers, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate passengers: %w", err)
	}
	return nil
}

func insertPassengers(ctx context.Context, tx *sql.Tx, tripID string, passengers []string) error {
	for _, id := range passengers {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO trip_passengers (trip_id, participant_id) VALUES (?, ?)",
			tripID, id,
		)
		if err != nil {
			return fmt.Errorf("failed to insert passenger: %w", err)
		}
	}
	return nil
}
