package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/cuongbtq/jobboard/shared/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	jobs    []model.Job
	apps    []model.Application
	err     error
	block   bool
	lastCtx context.Context
}

func (f *fakeStore) wait(ctx context.Context) error {
	f.lastCtx = ctx
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func (f *fakeStore) ListJobs(ctx context.Context, filter domain.FilterCriteria, page domain.Page) ([]model.Job, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	var out []model.Job
	for _, j := range f.jobs {
		if domain.IsSet(filter.Category) && j.Category != filter.Category {
			continue
		}
		out = append(out, j)
	}
	if page.Limit > 0 && len(out) > page.Limit+1 {
		out = out[:page.Limit+1]
	}
	return out, nil
}

func (f *fakeStore) GetJobByID(ctx context.Context, id int64) (*model.Job, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	for _, j := range f.jobs {
		if j.ID == id {
			return &j, nil
		}
	}
	return nil, domain.ErrJobNotFound
}

func (f *fakeStore) JobExists(ctx context.Context, id int64) (bool, error) {
	if err := f.wait(ctx); err != nil {
		return false, err
	}
	for _, j := range f.jobs {
		if j.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateApplication(ctx context.Context, app *model.Application) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	app.ID = int64(len(f.apps) + 1)
	f.apps = append(f.apps, *app)
	return nil
}

type fakePublisher struct {
	events []domain.ApplicationSubmitted
	err    error
}

func (p *fakePublisher) PublishApplicationSubmitted(_ context.Context, e domain.ApplicationSubmitted) error {
	p.events = append(p.events, e)
	return p.err
}

func int64Ptr(v int64) *int64 { return &v }

var postedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func sampleJobs() []model.Job {
	return []model.Job{
		{ID: 4, Title: "Full Stack Developer", Category: "Engineering", PostedAt: postedAt,
			Salary: sql.NullString{String: "$110k - $140k", Valid: true}},
		{ID: 3, Title: "Product Manager", Category: "Management", PostedAt: postedAt},
		{ID: 2, Title: "Junior UI Designer", Category: "Design", PostedAt: postedAt},
		{ID: 1, Title: "Senior Frontend Engineer", Category: "Engineering", PostedAt: postedAt},
	}
}

func TestQueryService_ListJobs(t *testing.T) {
	store := &fakeStore{jobs: sampleJobs()}
	svc := NewQueryService(&Config{Logger: logger.NewNop(), Store: store})

	page, err := svc.ListJobs(context.Background(), domain.FilterCriteria{Category: "Engineering"}, domain.Page{})
	require.NoError(t, err)
	require.Len(t, page.Jobs, 2)
	assert.Nil(t, page.Next)

	assert.Equal(t, int64(4), page.Jobs[0].ID)
	require.NotNil(t, page.Jobs[0].Salary)
	assert.Equal(t, "$110k - $140k", *page.Jobs[0].Salary)
	assert.Nil(t, page.Jobs[0].Description)

	_, hasDeadline := store.lastCtx.Deadline()
	assert.True(t, hasDeadline, "store calls run under a timeout")
}

func TestQueryService_ListJobs_Empty(t *testing.T) {
	svc := NewQueryService(&Config{Logger: logger.NewNop(), Store: &fakeStore{jobs: sampleJobs()}})

	page, err := svc.ListJobs(context.Background(), domain.FilterCriteria{Category: "Sales"}, domain.Page{})
	require.NoError(t, err)
	assert.NotNil(t, page.Jobs)
	assert.Empty(t, page.Jobs)
}

func TestQueryService_ListJobs_Paged(t *testing.T) {
	svc := NewQueryService(&Config{Logger: logger.NewNop(), Store: &fakeStore{jobs: sampleJobs()}})

	page, err := svc.ListJobs(context.Background(), domain.AllJobs(), domain.Page{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Jobs, 2)
	require.NotNil(t, page.Next)
	assert.Equal(t, int64(3), page.Next.ID)
	assert.Equal(t, postedAt, page.Next.PostedAt)

	page, err = svc.ListJobs(context.Background(), domain.AllJobs(), domain.Page{Limit: 4})
	require.NoError(t, err)
	assert.Len(t, page.Jobs, 4)
	assert.Nil(t, page.Next)
}

func TestQueryService_StoreFailure(t *testing.T) {
	cause := errors.New("connection refused")
	svc := NewQueryService(&Config{Logger: logger.NewNop(), Store: &fakeStore{err: cause}})

	page, err := svc.ListJobs(context.Background(), domain.AllJobs(), domain.Page{})
	assert.Nil(t, page)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestQueryService_TimeoutIsStoreUnavailable(t *testing.T) {
	svc := NewQueryService(&Config{
		Logger:       logger.NewNop(),
		Store:        &fakeStore{block: true},
		QueryTimeout: 20 * time.Millisecond,
	})

	_, err := svc.ListJobs(context.Background(), domain.AllJobs(), domain.Page{})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueryService_GetJob(t *testing.T) {
	svc := NewQueryService(&Config{Logger: logger.NewNop(), Store: &fakeStore{jobs: sampleJobs()}})

	job, err := svc.GetJob(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Product Manager", job.Title)

	_, err = svc.GetJob(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestApplicationService_ValidationOrder(t *testing.T) {
	tests := []struct {
		name  string
		in    domain.ApplicationInput
		field string
	}{
		{"everything missing", domain.ApplicationInput{}, "jobId"},
		{"zero job id", domain.ApplicationInput{JobID: int64Ptr(0), FullName: "Jane", Email: "j@x.com"}, "jobId"},
		{"name missing", domain.ApplicationInput{JobID: int64Ptr(3), Email: "j@x.com"}, "fullName"},
		{"name blank", domain.ApplicationInput{JobID: int64Ptr(3), FullName: "   ", Email: ""}, "fullName"},
		{"email missing", domain.ApplicationInput{JobID: int64Ptr(3), FullName: "Jane"}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{jobs: sampleJobs()}
			svc := NewApplicationService(&Config{Logger: logger.NewNop(), Store: store})

			app, err := svc.Submit(context.Background(), tt.in)
			assert.Nil(t, app)
			require.ErrorIs(t, err, domain.ErrValidation)

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Empty(t, store.apps, "no write on validation failure")
		})
	}
}

func TestApplicationService_Submit(t *testing.T) {
	store := &fakeStore{jobs: sampleJobs()}
	pub := &fakePublisher{}
	now := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	svc := NewApplicationService(&Config{
		Logger:           logger.NewNop(),
		Store:            store,
		Publisher:        pub,
		EnforceJobExists: true,
		Now:              func() time.Time { return now },
	})

	app, err := svc.Submit(context.Background(), domain.ApplicationInput{
		JobID:       int64Ptr(3),
		FullName:    " Jane Doe ",
		Email:       "jane@x.com",
		CoverLetter: "",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), app.ID)
	assert.Equal(t, "Jane Doe", app.FullName)
	assert.Nil(t, app.CoverLetter)
	assert.Equal(t, now, app.AppliedAt)

	require.Len(t, store.apps, 1)
	assert.Equal(t, int64(3), store.apps[0].JobID)
	assert.False(t, store.apps[0].CoverLetter.Valid)

	require.Len(t, pub.events, 1)
	assert.Equal(t, app.ID, pub.events[0].ApplicationID)
	assert.NotEmpty(t, pub.events[0].EventID)
}

func TestApplicationService_PublishFailureDoesNotFailSubmit(t *testing.T) {
	store := &fakeStore{jobs: sampleJobs()}
	svc := NewApplicationService(&Config{
		Logger:    logger.NewNop(),
		Store:     store,
		Publisher: &fakePublisher{err: errors.New("broker down")},
	})

	app, err := svc.Submit(context.Background(), domain.ApplicationInput{JobID: int64Ptr(1), FullName: "Jane", Email: "j@x.com"})
	require.NoError(t, err)
	assert.NotNil(t, app)
	assert.Len(t, store.apps, 1)
}

func TestApplicationService_ReferentialPolicy(t *testing.T) {
	in := domain.ApplicationInput{JobID: int64Ptr(77), FullName: "Jane", Email: "j@x.com"}

	t.Run("enforced", func(t *testing.T) {
		store := &fakeStore{jobs: sampleJobs()}
		svc := NewApplicationService(&Config{Logger: logger.NewNop(), Store: store, EnforceJobExists: true})

		_, err := svc.Submit(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrJobNotFound)
		assert.Empty(t, store.apps)
	})

	t.Run("not enforced", func(t *testing.T) {
		store := &fakeStore{jobs: sampleJobs()}
		svc := NewApplicationService(&Config{Logger: logger.NewNop(), Store: store})

		_, err := svc.Submit(context.Background(), in)
		require.NoError(t, err)
		assert.Len(t, store.apps, 1)
	})
}

func TestApplicationService_EmailSyntax(t *testing.T) {
	store := &fakeStore{jobs: sampleJobs()}
	in := domain.ApplicationInput{JobID: int64Ptr(1), FullName: "Jane", Email: "not-an-email"}

	lenient := NewApplicationService(&Config{Logger: logger.NewNop(), Store: store})
	require.NoError(t, lenient.Validate(in))

	strict := NewApplicationService(&Config{Logger: logger.NewNop(), Store: store, ValidateEmail: true})
	err := strict.Validate(in)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Field)

	in.Email = "jane@example.com"
	assert.NoError(t, strict.Validate(in))
}

func TestApplicationService_StoreFailure(t *testing.T) {
	svc := NewApplicationService(&Config{
		Logger: logger.NewNop(),
		Store:  &fakeStore{err: errors.New("disk full")},
	})

	_, err := svc.Submit(context.Background(), domain.ApplicationInput{JobID: int64Ptr(1), FullName: "Jane", Email: "j@x.com"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
