package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/model"
)

// JobStore is the persistence the services need
type JobStore interface {
	ListJobs(ctx context.Context, filter domain.FilterCriteria, page domain.Page) ([]model.Job, error)
	GetJobByID(ctx context.Context, id int64) (*model.Job, error)
	JobExists(ctx context.Context, id int64) (bool, error)
	CreateApplication(ctx context.Context, app *model.Application) error
}

// EventPublisher delivers application events to downstream consumers
type EventPublisher interface {
	PublishApplicationSubmitted(ctx context.Context, event domain.ApplicationSubmitted) error
}

// Config holds service dependencies and policies
type Config struct {
	Logger    *slog.Logger
	Store     JobStore
	Publisher EventPublisher

	// QueryTimeout bounds every store call; expiry surfaces as ErrStoreUnavailable
	QueryTimeout time.Duration

	EnforceJobExists bool
	ValidateEmail    bool

	// Now defaults to time.Now
	Now func() time.Time
}

const defaultQueryTimeout = 5 * time.Second

func (c *Config) queryTimeout() time.Duration {
	if c.QueryTimeout <= 0 {
		return defaultQueryTimeout
	}
	return c.QueryTimeout
}

func (c *Config) now() func() time.Time {
	if c.Now == nil {
		return time.Now
	}
	return c.Now
}

// storeError classifies a storage failure. Not-found passes through, every
// other failure (including a timeout) becomes ErrStoreUnavailable.
func storeError(err error) error {
	if errors.Is(err, domain.ErrJobNotFound) {
		return err
	}
	return domain.NewStoreError(err)
}

func toJobPosting(m model.Job) domain.JobPosting {
	job := domain.JobPosting{
		ID:              m.ID,
		Title:           m.Title,
		Company:         m.Company,
		Location:        m.Location,
		Category:        m.Category,
		ExperienceLevel: m.ExperienceLevel,
		PostedAt:        m.PostedAt,
	}
	if m.Salary.Valid {
		salary := m.Salary.String
		job.Salary = &salary
	}
	if m.Description.Valid {
		description := m.Description.String
		job.Description = &description
	}
	return job
}
