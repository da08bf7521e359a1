package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ApplicationService validates and stores job applications
type ApplicationService struct {
	logger           *slog.Logger
	store            JobStore
	publisher        EventPublisher
	validate         *validator.Validate
	queryTimeout     time.Duration
	enforceJobExists bool
	validateEmail    bool
	now              func() time.Time
}

func NewApplicationService(cfg *Config) *ApplicationService {
	return &ApplicationService{
		logger:           cfg.Logger,
		store:            cfg.Store,
		publisher:        cfg.Publisher,
		validate:         validator.New(),
		queryTimeout:     cfg.queryTimeout(),
		enforceJobExists: cfg.EnforceJobExists,
		validateEmail:    cfg.ValidateEmail,
		now:              cfg.now(),
	}
}

// Validate checks required fields in order: jobId, fullName, email. It
// returns the first failure as a *domain.ValidationError.
func (s *ApplicationService) Validate(in domain.ApplicationInput) error {
	if in.JobID == nil || *in.JobID <= 0 {
		return domain.NewMissingFieldError("jobId")
	}

	if strings.TrimSpace(in.FullName) == "" {
		return domain.NewMissingFieldError("fullName")
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return domain.NewMissingFieldError("email")
	}

	if s.validateEmail {
		if err := s.validate.Var(email, "email"); err != nil {
			return &domain.ValidationError{Field: "email", Reason: "not a valid email address"}
		}
	}

	return nil
}

// Submit validates the input and stores exactly one application row
func (s *ApplicationService) Submit(ctx context.Context, in domain.ApplicationInput) (*domain.Application, error) {
	if err := s.Validate(in); err != nil {
		s.logger.Info("Application rejected",
			slog.String("reason", err.Error()),
		)
		return nil, err
	}

	jobID := *in.JobID

	storeCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if s.enforceJobExists {
		exists, err := s.store.JobExists(storeCtx, jobID)
		if err != nil {
			s.logger.Error("Failed to check job existence",
				slog.Int64("job_id", jobID),
				slog.String("error", err.Error()),
			)
			return nil, storeError(err)
		}
		if !exists {
			return nil, domain.ErrJobNotFound
		}
	}

	row := model.Application{
		JobID:       jobID,
		FullName:    strings.TrimSpace(in.FullName),
		Email:       strings.TrimSpace(in.Email),
		CoverLetter: optional(in.CoverLetter),
		ResumeURL:   optional(in.ResumeURL),
		AppliedAt:   s.now().UTC().Truncate(time.Microsecond),
	}

	if err := s.store.CreateApplication(storeCtx, &row); err != nil {
		s.logger.Error("Failed to create application",
			slog.Int64("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return nil, storeError(err)
	}

	app := &domain.Application{
		ID:        row.ID,
		JobID:     row.JobID,
		FullName:  row.FullName,
		Email:     row.Email,
		AppliedAt: row.AppliedAt,
	}
	if row.CoverLetter.Valid {
		app.CoverLetter = &row.CoverLetter.String
	}
	if row.ResumeURL.Valid {
		app.ResumeURL = &row.ResumeURL.String
	}

	s.logger.Info("Application stored",
		slog.Int64("application_id", app.ID),
		slog.Int64("job_id", app.JobID),
	)

	s.publish(ctx, app)

	return app, nil
}

// publish is best effort: the application is already stored
func (s *ApplicationService) publish(ctx context.Context, app *domain.Application) {
	if s.publisher == nil {
		return
	}

	event := domain.ApplicationSubmitted{
		EventID:       uuid.NewString(),
		ApplicationID: app.ID,
		JobID:         app.JobID,
		FullName:      app.FullName,
		Email:         app.Email,
		AppliedAt:     app.AppliedAt,
	}

	if err := s.publisher.PublishApplicationSubmitted(ctx, event); err != nil {
		s.logger.Warn("Failed to publish application event",
			slog.Int64("application_id", app.ID),
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
	}
}

func optional(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
