package transcript

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
	"strings"
	"time"

	"ytleads/internal/logging"
	"ytleads/internal/services"
)

var (
	// ErrTranscriptUnavailable reports that no channel produced a transcript.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	// ErrInvalidVideoURL reports a URL from which no video ID can be derived.
	ErrInvalidVideoURL = errors.New("invalid video url")
	// ErrWebhookNotConfigured reports a missing primary channel endpoint.
	ErrWebhookNotConfigured = errors.New("webhook url not configured")
)

const (
	defaultTimeout         = 60 * time.Second
	defaultCaptionsBaseURL = "https://www.youtube.com/api/timedtext"
	defaultLanguage        = "en"
	maxResponseBytes       = 16 << 20
)

// Source records which channel produced a transcript.
type Source string

const (
	SourceWebhook     Source = "webhook"
	SourceCaptions    Source = "captions"
	SourcePlaceholder Source = "placeholder"
)

// Transcript is the acquired text and the channel it came from.
type Transcript struct {
	Text   string
	Source Source
}

// Config captures the channel endpoints.
type Config struct {
	WebhookURL      string
	CaptionsBaseURL string
	Language        string
	Timeout         time.Duration
}

// Acquirer runs the webhook-then-captions fallback chain.
type Acquirer struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the acquirer.
type Option func(*Acquirer)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Acquirer) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// WithLogger attaches a logger for fallback diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Acquirer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAcquirer constructs an Acquirer.
func NewAcquirer(cfg Config, opts ...Option) *Acquirer {
	cfg.WebhookURL = strings.TrimSpace(cfg.WebhookURL)
	cfg.CaptionsBaseURL = strings.TrimSpace(cfg.CaptionsBaseURL)
	if cfg.CaptionsBaseURL == "" {
		cfg.CaptionsBaseURL = defaultCaptionsBaseURL
	}
	cfg.Language = strings.TrimSpace(cfg.Language)
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	a := &Acquirer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.logger, "transcript")
	return a
}

// Acquire returns the transcript for sourceURL.
func (a *Acquirer) Acquire(ctx context.Context, sourceURL string) (Transcript, error) {
	logger := logging.WithContext(ctx, a.logger)

	text, primaryErr := a.FromWebhook(ctx, sourceURL)
	if primaryErr == nil {
		logger.Info("transcript fetched from webhook", logging.Int("chars", len(text)))
		return Transcript{Text: text, Source: SourceWebhook}, nil
	}
	logger.Warn("webhook transcript failed; trying captions",
		logging.Error(primaryErr),
		logging.String(logging.FieldEventType, "transcript_webhook_failed"),
		logging.String(logging.FieldErrorHint, "check transcript.webhook_url or MAKE_WEBHOOK_URL"),
		logging.String(logging.FieldImpact, "falling back to caption extraction"),
	)

	text, fallbackErr := a.FromCaptions(ctx, sourceURL)
	if fallbackErr == nil {
		logger.Info("transcript extracted from captions", logging.Int("chars", len(text)))
		return Transcript{Text: text, Source: SourceCaptions}, nil
	}
	logging.WarnWithContext(logger, "caption transcript failed", "transcript_captions_failed",
		logging.Error(fallbackErr),
		logging.String(logging.FieldImpact, "no transcript channel succeeded"),
	)

	return Transcript{}, fmt.Errorf("%w: %w", ErrTranscriptUnavailable, primaryErr)
}

// FromWebhook posts {"url": sourceURL} to the webhook and returns the trimmed body.
func (a *Acquirer) FromWebhook(ctx context.Context, sourceURL string) (string, error) {
	if a.cfg.WebhookURL == "" {
		return "", ErrWebhookNotConfigured
	}
	body, err := json.Marshal(map[string]string{"url": sourceURL})
	if err != nil {
		return "", fmt.Errorf("encode webhook body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	status, payload, err := a.do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "transcript", "webhook", "request failed", err)
	}
	if status < 200 || status >= 300 {
		detail := strings.TrimSpace(payload)
		if detail == "" {
			detail = "failed to fetch transcript"
		}
		return "", services.Wrap(services.ErrExternalTool, "transcript", "webhook", fmt.Sprintf("http %d", status), errors.New(detail))
	}
	text := strings.TrimSpace(payload)
	if text == "" {
		return "", errors.New("no transcript found in response")
	}
	return text, nil
}

// FromCaptions extracts the caption track for sourceURL. A URL without a
// recognizable video ID fails with ErrInvalidVideoURL before any request.
func (a *Acquirer) FromCaptions(ctx context.Context, sourceURL string) (string, error) {
	videoID, ok := VideoID(sourceURL)
	if !ok {
		return "", fmt.Errorf("%w: could not extract video id from %q", ErrInvalidVideoURL, sourceURL)
	}

	document, err := a.fetchCaptions(ctx, videoID, "")
	if err != nil {
		a.logger.Debug("primary caption request failed", logging.Error(err))
		document, err = a.fetchCaptions(ctx, videoID, "srv3")
		if err != nil {
			return "", fmt.Errorf("no transcript available for this video: %w", err)
		}
	}
	return DecodeCaptions(document)
}

func (a *Acquirer) fetchCaptions(ctx context.Context, videoID, format string) (string, error) {
	endpoint, err := url.Parse(a.cfg.CaptionsBaseURL)
	if err != nil {
		return "", fmt.Errorf("parse captions url: %w", err)
	}
	query := endpoint.Query()
	query.Set("lang", a.cfg.Language)
	query.Set("v", videoID)
	if format != "" {
		query.Set("fmt", format)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build captions request: %w", err)
	}
	status, payload, err := a.do(req)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("captions http %d", status)
	}
	return payload, nil
}

func (a *Acquirer) do(req *http.Request) (int, string, error) {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, string(data), nil
}
