package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cuongbtq/jobboard/internal/api/dto"
	"github.com/cuongbtq/jobboard/internal/api/events"
	"github.com/cuongbtq/jobboard/internal/api/handler"
	"github.com/cuongbtq/jobboard/internal/api/service"
	"github.com/cuongbtq/jobboard/internal/api/storage"
	"github.com/cuongbtq/jobboard/shared/database"
	"github.com/cuongbtq/jobboard/shared/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	engine  *gin.Engine
	storage *storage.Storage
	client  *database.Client
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	client, err := database.NewClient(&database.Config{Driver: database.DriverSQLite, Path: ":memory:"}, log)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	store := storage.NewStorage(client)
	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	_, err = store.SeedJobs(ctx, storage.DefaultJobs)
	require.NoError(t, err)

	cfg := &service.Config{
		Logger:           log,
		Store:            store,
		Publisher:        events.NopPublisher{},
		EnforceJobExists: true,
	}

	deps := &handler.Dependencies{
		Logger:       log,
		Jobs:         service.NewQueryService(cfg),
		Applications: service.NewApplicationService(cfg),
		DB:           client,
		ServiceName:  "jobboard-api",
	}

	return &testServer{
		engine:  SetupRouter(deps, nil),
		storage: store,
		client:  client,
	}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decodeJobs(t *testing.T, w *httptest.ResponseRecorder) []dto.JobDTO {
	t.Helper()
	var jobs []dto.JobDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jobs))
	return jobs
}

func TestListJobs(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"no parameters", "/api/jobs", 8},
		{"all sentinel", "/api/jobs?category=All&location=All&experience=All", 8},
		{"engineering", "/api/jobs?category=Engineering", 4},
		{"engineering remote", "/api/jobs?category=Engineering&location=Remote", 3},
		{"escaped location", "/api/jobs?location=New+York%2C+NY", 1},
		{"no match", "/api/jobs?category=Sales", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, http.MethodGet, tt.query, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Len(t, decodeJobs(t, w), tt.want)
			assert.Empty(t, w.Header().Get(handler.NextCursorHeader))
		})
	}
}

func TestListJobs_EmptyResultIsArray(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/jobs?category=Sales", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListJobs_FieldNames(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/jobs?category=Management", "")
	require.Equal(t, http.StatusOK, w.Code)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Len(t, raw, 1)
	for _, key := range []string{"id", "title", "company", "location", "category", "experience_level", "salary", "description", "posted_at"} {
		assert.Contains(t, raw[0], key)
	}
	assert.Equal(t, "Product Manager", raw[0]["title"])
}

func TestListJobs_Pagination(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/jobs?limit=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	first := decodeJobs(t, w)
	require.Len(t, first, 3)
	assert.Equal(t, int64(8), first[0].ID)

	cursor := w.Header().Get(handler.NextCursorHeader)
	require.NotEmpty(t, cursor)

	var seen []int64
	for _, j := range first {
		seen = append(seen, j.ID)
	}

	for cursor != "" {
		w = srv.do(t, http.MethodGet, "/api/jobs?limit=3&cursor="+cursor, "")
		require.Equal(t, http.StatusOK, w.Code)
		for _, j := range decodeJobs(t, w) {
			seen = append(seen, j.ID)
		}
		cursor = w.Header().Get(handler.NextCursorHeader)
	}

	assert.Equal(t, []int64{8, 7, 6, 5, 4, 3, 2, 1}, seen)
}

func TestListJobs_BadInput(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/jobs?cursor=!!!", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodGet, "/api/jobs?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodGet, "/api/jobs?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListJobs_StoreFailure(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, srv.client.Close())

	w := srv.do(t, http.MethodGet, "/api/jobs", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch jobs"}`, w.Body.String())
}

func TestGetJob(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/jobs/3", "")
	require.Equal(t, http.StatusOK, w.Code)
	var job dto.JobDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, "Product Manager", job.Title)

	w = srv.do(t, http.MethodGet, "/api/jobs/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodGet, "/api/jobs/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilters(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/filters", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.FiltersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "All", resp.Categories[0])
	assert.Contains(t, resp.Categories, "Engineering")
	assert.Equal(t, "All", resp.Locations[0])
	assert.Contains(t, resp.ExperienceLevels, "Mid-Level")
}

func TestApply(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/apply",
		`{"jobId":3,"fullName":"Jane Doe","email":"jane@x.com","coverLetter":""}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"Application submitted successfully"}`, w.Body.String())

	n, err := srv.storage.CountApplications(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestApply_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		errMsg string
	}{
		{"missing email", `{"jobId":3,"fullName":"Jane Doe"}`, http.StatusBadRequest, "missing required field: email"},
		{"all missing", `{"jobId":null,"fullName":"","email":""}`, http.StatusBadRequest, "missing required field: jobId"},
		{"missing name", `{"jobId":3,"email":"jane@x.com"}`, http.StatusBadRequest, "missing required field: fullName"},
		{"malformed json", `{"jobId":`, http.StatusBadRequest, "Invalid request body"},
		{"wrong type", `{"jobId":"three","fullName":"Jane","email":"j@x.com"}`, http.StatusBadRequest, "Invalid request body"},
		{"unknown job", `{"jobId":404,"fullName":"Jane","email":"j@x.com"}`, http.StatusNotFound, "Job not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)

			w := srv.do(t, http.MethodPost, "/api/apply", tt.body)
			require.Equal(t, tt.status, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.errMsg, resp.Error)

			n, err := srv.storage.CountApplications(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 0, n, "row count unchanged")
		})
	}
}

func TestApply_StoreFailure(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, srv.client.Close())

	w := srv.do(t, http.MethodPost, "/api/apply", `{"jobId":3,"fullName":"Jane","email":"j@x.com"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to submit application"}`, w.Body.String())
}

type failingDB struct{}

func (failingDB) HealthCheck(context.Context) error { return errors.New("down") }

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	deps := &handler.Dependencies{Logger: logger.NewNop(), DB: failingDB{}}
	r := SetupRouter(deps, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps := &handler.Dependencies{Logger: logger.NewNop()}
	r := SetupRouter(deps, []string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodOptions, "/api/jobs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/jobs", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
