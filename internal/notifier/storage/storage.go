package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobboard/internal/notifier/domain"
	"github.com/cuongbtq/jobboard/shared/database"
	"github.com/jmoiron/sqlx"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS application_notifications (
		id             BIGSERIAL PRIMARY KEY,
		application_id BIGINT NOT NULL UNIQUE REFERENCES applications(id),
		event_id       TEXT NOT NULL,
		channel        TEXT NOT NULL,
		sent_at        TIMESTAMPTZ NOT NULL
	)`

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS application_notifications (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		application_id INTEGER NOT NULL UNIQUE REFERENCES applications(id),
		event_id       TEXT NOT NULL,
		channel        TEXT NOT NULL,
		sent_at        DATETIME NOT NULL
	)`

// Storage handles all database operations for the notifier
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the application_notifications table. The applications
// table must already exist.
func (s *Storage) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if s.db.DriverName() == database.DriverSQLite {
		schema = sqliteSchema
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate notifications schema: %w", err)
	}
	return nil
}

// GetConfirmation loads an application together with the job it targets
func (s *Storage) GetConfirmation(ctx context.Context, applicationID int64) (*domain.Confirmation, error) {
	query := `
		SELECT a.id, a.job_id, j.title, j.company, a.full_name, a.email, a.applied_at
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.id = ?
	`

	var c domain.Confirmation
	err := s.db.QueryRowContext(ctx, s.db.Rebind(query), applicationID).Scan(
		&c.ApplicationID,
		&c.JobID,
		&c.JobTitle,
		&c.Company,
		&c.FullName,
		&c.Email,
		&c.AppliedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &c, nil
}

// IsNotified reports whether a confirmation was already recorded
func (s *Storage) IsNotified(ctx context.Context, applicationID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM application_notifications WHERE application_id = ?)`

	if err := s.db.GetContext(ctx, &exists, s.db.Rebind(query), applicationID); err != nil {
		return false, fmt.Errorf("failed to check notification: %w", err)
	}
	return exists, nil
}

// RecordNotification inserts the record unless one exists for the
// application. It reports whether a row was written.
func (s *Storage) RecordNotification(ctx context.Context, n domain.Notification) (bool, error) {
	query := `
		INSERT INTO application_notifications (application_id, event_id, channel, sent_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (application_id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		n.ApplicationID,
		n.EventID,
		n.Channel,
		n.SentAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		s.logger.Warn("Notification already recorded",
			slog.Int64("application_id", n.ApplicationID),
			slog.String("event_id", n.EventID),
		)
		return false, nil
	}

	return true, nil
}
