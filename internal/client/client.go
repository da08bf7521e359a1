package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/dto"
)

// APIError is a non-2xx answer from the API. It matches the domain error
// for its status class with errors.Is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrValidation:
		return e.StatusCode == http.StatusBadRequest
	case domain.ErrJobNotFound:
		return e.StatusCode == http.StatusNotFound
	case domain.ErrStoreUnavailable:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// Client talks to the job board HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListJobs fetches every posting matching filter
func (c *Client) ListJobs(ctx context.Context, filter domain.FilterCriteria) ([]domain.JobPosting, error) {
	jobs, _, err := c.ListJobsPage(ctx, filter, 0, "")
	return jobs, err
}

// ListJobsPage fetches at most limit postings after cursor. The returned
// cursor is empty on the last page.
func (c *Client) ListJobsPage(ctx context.Context, filter domain.FilterCriteria, limit int, cursor string) ([]domain.JobPosting, string, error) {
	q := url.Values{}
	setFilter(q, "category", filter.Category)
	setFilter(q, "location", filter.Location)
	setFilter(q, "experience", filter.Experience)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var out []dto.JobDTO
	header, err := c.do(ctx, http.MethodGet, "/api/jobs", q, nil, &out)
	if err != nil {
		return nil, "", err
	}

	jobs := make([]domain.JobPosting, len(out))
	for i, j := range out {
		jobs[i] = j.ToDomain()
	}
	return jobs, header.Get("X-Next-Cursor"), nil
}

func setFilter(q url.Values, key, value string) {
	if domain.IsSet(value) {
		q.Set(key, value)
	}
}

func (c *Client) GetJob(ctx context.Context, id int64) (*domain.JobPosting, error) {
	var out dto.JobDTO
	if _, err := c.do(ctx, http.MethodGet, "/api/jobs/"+strconv.FormatInt(id, 10), nil, nil, &out); err != nil {
		return nil, err
	}
	job := out.ToDomain()
	return &job, nil
}

func (c *Client) Filters(ctx context.Context) (*dto.FiltersResponse, error) {
	var out dto.FiltersResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/filters", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Apply submits an application and returns the confirmation message
func (c *Client) Apply(ctx context.Context, in domain.ApplicationInput) (string, error) {
	body := dto.ApplyRequest{
		JobID:       in.JobID,
		FullName:    in.FullName,
		Email:       in.Email,
		CoverLetter: in.CoverLetter,
		ResumeURL:   in.ResumeURL,
	}

	var out dto.MessageResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/apply", nil, body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// do sends one request and decodes a JSON answer into out. Transport
// failures are reported as domain.ErrStoreUnavailable.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) (http.Header, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, domain.NewStoreError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("API request",
		slog.String("method", method),
		slog.String("url", u),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr dto.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return resp.Header, nil
}
