package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/cuongbtq/jobboard/shared/database"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(client *database.Client) *Storage {
	return &Storage{
		db: client.GetDB(),
	}
}

const jobColumns = `
	id, title, company, location, category, experience_level,
	salary, description, posted_at`

// ListJobs returns the jobs matching every set criterion, newest first.
// With a page limit it fetches one extra row so callers can tell whether
// more results exist.
func (s *Storage) ListJobs(ctx context.Context, filter domain.FilterCriteria, page domain.Page) ([]model.Job, error) {
	query := `SELECT` + jobColumns + ` FROM jobs WHERE 1=1`
	args := []interface{}{}

	if domain.IsSet(filter.Category) {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}

	if domain.IsSet(filter.Location) {
		query += " AND location = ?"
		args = append(args, filter.Location)
	}

	if domain.IsSet(filter.Experience) {
		query += " AND experience_level = ?"
		args = append(args, filter.Experience)
	}

	if page.After != nil {
		query += " AND (posted_at, id) < (?, ?)"
		args = append(args, page.After.PostedAt, page.After.ID)
	}

	query += " ORDER BY posted_at DESC, id DESC"

	if page.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, page.Limit+1)
	}

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// GetJobByID returns domain.ErrJobNotFound when no job has the id
func (s *Storage) GetJobByID(ctx context.Context, id int64) (*model.Job, error) {
	var job model.Job
	query := `SELECT` + jobColumns + ` FROM jobs WHERE id = ?`

	err := s.db.GetContext(ctx, &job, s.db.Rebind(query), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

func (s *Storage) JobExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = ?)`

	if err := s.db.GetContext(ctx, &exists, s.db.Rebind(query), id); err != nil {
		return false, fmt.Errorf("failed to check job existence: %w", err)
	}

	return exists, nil
}

// CreateJob inserts a posting and sets its ID
func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	return insertJob(ctx, s.db, job)
}

func insertJob(ctx context.Context, q sqlx.ExtContext, job *model.Job) error {
	query := `
		INSERT INTO jobs (
			title, company, location, category, experience_level,
			salary, description, posted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := sqlx.GetContext(ctx, q, &job.ID, q.Rebind(query),
		job.Title,
		job.Company,
		job.Location,
		job.Category,
		job.ExperienceLevel,
		job.Salary,
		job.Description,
		job.PostedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// CreateApplication inserts an application and sets its ID. The id comes
// from the store's sequence, so concurrent inserts never collide. A foreign
// key violation is reported as domain.ErrJobNotFound.
func (s *Storage) CreateApplication(ctx context.Context, app *model.Application) error {
	query := `
		INSERT INTO applications (
			job_id, full_name, email, resume_url, cover_letter, applied_at
		) VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := s.db.GetContext(ctx, &app.ID, s.db.Rebind(query),
		app.JobID,
		app.FullName,
		app.Email,
		app.ResumeURL,
		app.CoverLetter,
		app.AppliedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrJobNotFound
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

func (s *Storage) CountApplications(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM applications`); err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return n, nil
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}

	return false
}
