package storage

import (
	"context"
	"fmt"

	"github.com/cuongbtq/jobboard/shared/database"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id               BIGSERIAL PRIMARY KEY,
		title            TEXT NOT NULL,
		company          TEXT NOT NULL,
		location         TEXT NOT NULL,
		category         TEXT NOT NULL,
		experience_level TEXT NOT NULL,
		salary           TEXT,
		description      TEXT,
		posted_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id           BIGSERIAL PRIMARY KEY,
		job_id       BIGINT NOT NULL REFERENCES jobs(id),
		full_name    TEXT NOT NULL,
		email        TEXT NOT NULL,
		resume_url   TEXT,
		cover_letter TEXT,
		applied_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		title            TEXT NOT NULL,
		company          TEXT NOT NULL,
		location         TEXT NOT NULL,
		category         TEXT NOT NULL,
		experience_level TEXT NOT NULL,
		salary           TEXT,
		description      TEXT,
		posted_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id       INTEGER NOT NULL REFERENCES jobs(id),
		full_name    TEXT NOT NULL,
		email        TEXT NOT NULL,
		resume_url   TEXT,
		cover_letter TEXT,
		applied_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

var commonIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_jobs_posted_at_id ON jobs (posted_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_filters ON jobs (category, location, experience_level)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications (job_id)`,
}

// Migrate creates the jobs and applications tables if they do not exist
func (s *Storage) Migrate(ctx context.Context) error {
	var stmts []string
	switch s.db.DriverName() {
	case database.DriverSQLite:
		stmts = sqliteSchema
	default:
		stmts = postgresSchema
	}
	stmts = append(append([]string{}, stmts...), commonIndexes...)

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	return nil
}
