package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/carpool/internal/models"
	"github.com/mmynk/carpool/internal/storage"
)

// CreateReport persists a new report and attaches the given trips to it.
// Either every trip is attached or none is.
func (s *SQLiteStore) CreateReport(ctx context.Context, report *models.Report, tripIDs []string) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.CreatedAt == 0 {
		report.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO reports (id, creator_id, created_at) VALUES (?, ?, ?)",
		report.ID, report.CreatorID, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	for _, tripID := range tripIDs {
		var current sql.NullString
		err := tx.QueryRowContext(ctx, "SELECT report_id FROM trips WHERE id = ?", tripID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check trip: %w", err)
		}
		// A trip's report can't change once set.
		if current.Valid {
			return fmt.Errorf("trip %s in report %s: %w", tripID, current.String, storage.ErrTripReported)
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE trips SET report_id = ? WHERE id = ?",
			report.ID, tripID,
		); err != nil {
			return fmt.Errorf("failed to attach trip: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetReport retrieves a report by ID.
func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	report := &models.Report{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, creator_id, created_at FROM reports WHERE id = ?",
		id,
	).Scan(&report.ID, &report.CreatorID, &report.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}
