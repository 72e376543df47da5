package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ytleads/internal/extract"
)

const (
	defaultBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultHTTPTimeout = 60 * time.Second
	defaultBackoffBase = time.Second
	defaultBackoffMax  = 10 * time.Second
	snippetLimit       = 160
)

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	Temperature    float64
}

// Request is one JSON-mode chat completion.
type Request struct {
	// Label names the request in errors, e.g. the step id "YT4".
	Label string
	// Instruction is sent as the system message.
	Instruction string
	// Payload is sent as the user message.
	Payload string
}

// StatusError is returned when the backend answers with a non-success status.
type StatusError struct {
	Label      string
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm %s: http %d: %s", e.Label, e.StatusCode, snippet(e.Body))
}

// EmptyResponseError reports a 2xx completion that carried no content.
type EmptyResponseError struct {
	Label        string
	FinishReason string
	Refusal      string
	Body         string
}

func (e *EmptyResponseError) Error() string {
	if e.Refusal != "" {
		return fmt.Sprintf("llm %s: model refused: %s", e.Label, e.Refusal)
	}
	return fmt.Sprintf("llm %s: empty content (finish_reason=%q, response=%s)", e.Label, e.FinishReason, snippet(e.Body))
}

// Client calls an OpenRouter-compatible chat completions endpoint.
type Client struct {
	cfg      Config
	http     *http.Client
	attempts int
	base     time.Duration
	max      time.Duration
	wait     func(context.Context, time.Duration) error
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithRetryMaxAttempts sets the total attempt budget per request. Values below
// one mean a single attempt.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
	}
}

// WithRetryBackoff sets the first retry delay and the cap for later ones.
func WithRetryBackoff(base, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.base = base
		c.max = maxDelay
	}
}

// WithSleeper replaces the retry wait; tests use it to record delays.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(c *Client) {
		c.wait = func(ctx context.Context, d time.Duration) error {
			sleep(d)
			return ctx.Err()
		}
	}
}

// NewClient constructs a client. Requests are attempted once unless
// WithRetryMaxAttempts raises the budget.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	c := &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: timeout},
		attempts: 1,
		base:     defaultBackoffBase,
		max:      defaultBackoffMax,
		wait:     sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model reports the model identifier sent with each request.
func (c *Client) Model() string {
	return c.cfg.Model
}

// CompleteJSON sends req with response_format json_object and returns the
// message content unparsed.
func (c *Client) CompleteJSON(ctx context.Context, req Request) (string, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = "completion"
	}
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("llm %s: api key required", label)
	}
	if strings.TrimSpace(req.Instruction) == "" || strings.TrimSpace(req.Payload) == "" {
		return "", fmt.Errorf("llm %s: instruction and payload are required", label)
	}

	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.Instruction},
			{Role: "user", Content: req.Payload},
		},
		Temperature:    c.cfg.Temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	var err error
	for attempt := 1; ; attempt++ {
		var content string
		content, err = c.send(ctx, label, body)
		if err == nil {
			return content, nil
		}
		delay, retry := c.retryAfter(err, attempt)
		if !retry || ctx.Err() != nil {
			break
		}
		if waitErr := c.wait(ctx, delay); waitErr != nil {
			return "", waitErr
		}
	}
	if c.attempts > 1 {
		return "", fmt.Errorf("llm %s: gave up after %d attempts: %w", label, c.attempts, err)
	}
	return "", err
}

// HealthCheck asks for a trivial JSON object to prove the key and model work.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.CompleteJSON(ctx, Request{
		Label:       "health",
		Instruction: "You must respond with JSON only.",
		Payload:     `Respond with {"ok":true}`,
	})
	if err != nil {
		return err
	}
	parsed, err := extract.Object(content)
	if err != nil {
		return fmt.Errorf("llm health: %w", err)
	}
	if ok, _ := parsed["ok"].(bool); !ok {
		return errors.New("llm health: unexpected response")
	}
	return nil
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) send(ctx context.Context, label string, body chatRequest) (string, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llm %s: encode request: %w", label, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("llm %s: build request: %w", label, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm %s: %w", label, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm %s: read response: %w", label, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", &StatusError{
			Label:      label,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("llm %s: decode response: %w", label, err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("llm %s: api error: %s", label, strings.TrimSpace(decoded.Error.Message))
	}
	empty := &EmptyResponseError{Label: label, Body: string(raw)}
	for _, choice := range decoded.Choices {
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, nil
		}
		if empty.FinishReason == "" {
			empty.FinishReason = choice.FinishReason
		}
		if empty.Refusal == "" {
			empty.Refusal = strings.TrimSpace(choice.Message.Refusal)
		}
	}
	return "", empty
}

// retryAfter decides whether attempt may be followed by another and how long
// to wait first. Rate limits, timeouts, 5xx and empty bodies are retried.
func (c *Client) retryAfter(err error, attempt int) (time.Duration, bool) {
	if attempt >= c.attempts {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		code := statusErr.StatusCode
		if code != http.StatusRequestTimeout && code != http.StatusTooManyRequests && code < http.StatusInternalServerError {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return min(statusErr.RetryAfter, c.max), true
		}
		return c.backoffDelay(attempt), true
	}

	var emptyErr *EmptyResponseError
	if errors.As(err, &emptyErr) && emptyErr.Refusal == "" {
		return c.backoffDelay(attempt), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

// backoffDelay doubles from base for each prior attempt, capped at max.
func (c *Client) backoffDelay(attempt int) time.Duration {
	if c.base <= 0 {
		return 0
	}
	delay := c.base
	for i := 1; i < attempt && delay < c.max; i++ {
		delay *= 2
	}
	return min(delay, c.max)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(value); err == nil {
		return max(time.Until(when), 0)
	}
	return 0
}

func snippet(body string) string {
	clean := strings.Join(strings.Fields(body), " ")
	if clean == "" {
		return "<empty>"
	}
	if runes := []rune(clean); len(runes) > snippetLimit {
		return string(runes[:snippetLimit]) + "..."
	}
	return clean
}
