// Package app assembles the ytleads runtime from configuration: record store,
// job store, transcript and metadata clients, the generation invoker, and the
// pipeline orchestrator. Both the CLI and the API server build on it.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"ytleads/internal/config"
	"ytleads/internal/generation"
	"ytleads/internal/jobs"
	"ytleads/internal/logging"
	"ytleads/internal/metadata"
	"ytleads/internal/notifications"
	"ytleads/internal/pipeline"
	"ytleads/internal/recordstore"
	"ytleads/internal/services/llm"
	"ytleads/internal/transcript"
)

// Runtime holds the wired components.
type Runtime struct {
	Config       *config.Config
	Logger       *slog.Logger
	Records      recordstore.Store
	Jobs         *jobs.Store
	Transcripts  *transcript.Acquirer
	Notifier     notifications.Service
	Orchestrator *pipeline.Orchestrator
}

// Open opens the record store, loads the persisted job list and wires the
// pipeline. The LLM key is not required here; commands that generate call
// cfg.RequireLLM first.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	records, err := recordstore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	store := jobs.NewStore(records, cfg.Storage.RecordKey, jobs.WithLogger(logger))
	if err := store.Load(ctx); err != nil {
		_ = records.Close()
		return nil, fmt.Errorf("load jobs: %w", err)
	}

	transcripts := transcript.NewAcquirer(transcript.Config{
		WebhookURL:      cfg.Transcript.WebhookURL,
		CaptionsBaseURL: cfg.Transcript.CaptionsBaseURL,
		Language:        cfg.Transcript.Language,
		Timeout:         cfg.TranscriptTimeout(),
	}, transcript.WithLogger(logger))

	client := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		Temperature:    cfg.LLM.Temperature,
	}, llm.WithRetryMaxAttempts(cfg.LLM.RetryAttempts))

	notifier := notifications.NewService(cfg)
	orchestrator := pipeline.New(
		store,
		transcripts,
		metadata.NewClient(cfg.Metadata.OEmbedURL, cfg.MetadataTimeout()),
		generation.NewInvoker(client, logger),
		pipeline.WithLogger(logger),
		pipeline.WithNotifier(notifier),
		pipeline.WithPlaceholderOnFailure(cfg.Transcript.PlaceholderOnFailure),
	)

	return &Runtime{
		Config:       cfg,
		Logger:       logger,
		Records:      records,
		Jobs:         store,
		Transcripts:  transcripts,
		Notifier:     notifier,
		Orchestrator: orchestrator,
	}, nil
}

// Close releases the record store.
func (r *Runtime) Close() error {
	if r == nil || r.Records == nil {
		return nil
	}
	return r.Records.Close()
}
