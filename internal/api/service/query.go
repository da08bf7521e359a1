package service

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/jobboard/internal/api/domain"
)

// MaxPageSize caps the optional page limit
const MaxPageSize = 100

// JobPage is one listing result. Next is set when more rows follow.
type JobPage struct {
	Jobs []domain.JobPosting
	Next *domain.Cursor
}

// QueryService answers job listing and detail reads
type QueryService struct {
	logger  *slog.Logger
	store   JobStore
	timeout func(context.Context) (context.Context, context.CancelFunc)
}

func NewQueryService(cfg *Config) *QueryService {
	timeout := cfg.queryTimeout()
	return &QueryService{
		logger: cfg.Logger,
		store:  cfg.Store,
		timeout: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return context.WithTimeout(ctx, timeout)
		},
	}
}

// ListJobs returns the postings matching every set criterion, ordered by
// posted_at then id, both descending. A zero page returns everything.
func (s *QueryService) ListJobs(ctx context.Context, filter domain.FilterCriteria, page domain.Page) (*JobPage, error) {
	if page.Limit > MaxPageSize {
		page.Limit = MaxPageSize
	}

	ctx, cancel := s.timeout(ctx)
	defer cancel()

	rows, err := s.store.ListJobs(ctx, filter, page)
	if err != nil {
		s.logger.Error("Failed to list jobs",
			slog.String("category", filter.Category),
			slog.String("location", filter.Location),
			slog.String("experience", filter.Experience),
			slog.String("error", err.Error()),
		)
		return nil, storeError(err)
	}

	result := &JobPage{}
	if page.Limit > 0 && len(rows) > page.Limit {
		rows = rows[:page.Limit]
		last := rows[len(rows)-1]
		result.Next = &domain.Cursor{PostedAt: last.PostedAt, ID: last.ID}
	}

	result.Jobs = make([]domain.JobPosting, len(rows))
	for i, row := range rows {
		result.Jobs[i] = toJobPosting(row)
	}

	s.logger.Debug("Jobs listed",
		slog.Int("count", len(result.Jobs)),
		slog.Bool("has_more", result.Next != nil),
	)

	return result, nil
}

// GetJob returns a single posting or domain.ErrJobNotFound
func (s *QueryService) GetJob(ctx context.Context, id int64) (*domain.JobPosting, error) {
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	row, err := s.store.GetJobByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}

	job := toJobPosting(*row)
	return &job, nil
}
