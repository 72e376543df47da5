package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ytleads/internal/jobs"
	"ytleads/internal/services"
)

const defaultClientTimeout = 10 * time.Second

// APIError is a non-success answer from a ytleads server. It unwraps to the
// sentinel the server classified the failure with, so callers can test it
// with errors.Is the same way they test local store errors.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api %s %s: http %d", e.Method, e.Path, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return jobs.ErrJobNotFound
	case http.StatusBadRequest:
		return services.ErrValidation
	case http.StatusBadGateway:
		return services.ErrExternalTool
	case http.StatusServiceUnavailable:
		return services.ErrConfiguration
	default:
		return nil
	}
}

// Client talks to the /v1 job endpoints of a running server.
type Client struct {
	base string
	http *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithClientHTTP overrides the default HTTP client.
func WithClientHTTP(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// NewClient returns a client for addr, either host:port or a full base URL.
func NewClient(addr string, opts ...ClientOption) *Client {
	base := strings.TrimRight(strings.TrimSpace(addr), "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	c := &Client{
		base: base,
		http: &http.Client{Timeout: defaultClientTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL reports the server the client talks to.
func (c *Client) BaseURL() string {
	return c.base
}

// Ping checks that the server answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/v1/steps", nil, nil)
}

// ListJobs returns the server's jobs and the selected id.
func (c *Client) ListJobs(ctx context.Context) ([]jobs.Job, string, error) {
	var resp jobListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/jobs", nil, &resp); err != nil {
		return nil, "", err
	}
	return resp.Jobs, resp.Selected, nil
}

// GetJob fetches one job.
func (c *Client) GetJob(ctx context.Context, id string) (jobs.Job, error) {
	var job jobs.Job
	err := c.do(ctx, http.MethodGet, "/v1/jobs/"+id, nil, &job)
	return job, err
}

// SelectedJob fetches the selected job; ok is false when none is selected.
func (c *Client) SelectedJob(ctx context.Context) (jobs.Job, bool, error) {
	var job jobs.Job
	err := c.do(ctx, http.MethodGet, "/v1/jobs/selected", nil, &job)
	if errors.Is(err, jobs.ErrJobNotFound) {
		return jobs.Job{}, false, nil
	}
	if err != nil {
		return jobs.Job{}, false, err
	}
	return job, true, nil
}

// CreateJob submits sourceURL; the server runs the pipeline in the background.
func (c *Client) CreateJob(ctx context.Context, sourceURL string) (jobs.Job, error) {
	var job jobs.Job
	err := c.do(ctx, http.MethodPost, "/v1/jobs", createJobRequest{YoutubeURL: sourceURL}, &job)
	return job, err
}

// SelectJob marks id as selected. An empty id clears the selection.
func (c *Client) SelectJob(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/v1/jobs/selected", selectRequest{ID: id}, nil)
}

// DeleteJob removes a job.
func (c *Client) DeleteJob(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/jobs/"+id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api %s %s: encode request: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("api %s %s: build request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("api %s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil {
			apiErr.Message = strings.TrimSpace(payload.Error)
		}
		return apiErr
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api %s %s: decode response: %w", method, path, err)
	}
	return nil
}
