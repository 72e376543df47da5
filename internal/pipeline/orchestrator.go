package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ytleads/internal/jobs"
	"ytleads/internal/logging"
	"ytleads/internal/metadata"
	"ytleads/internal/notifications"
	"ytleads/internal/services"
	"ytleads/internal/steps"
	"ytleads/internal/transcript"
)

// TranscriptSource acquires a transcript for a video URL.
type TranscriptSource interface {
	Acquire(ctx context.Context, sourceURL string) (transcript.Transcript, error)
}

// MetadataSource resolves display metadata for a video URL.
type MetadataSource interface {
	Lookup(ctx context.Context, sourceURL string) (metadata.Video, error)
}

// StepInvoker runs one generation step.
type StepInvoker interface {
	Invoke(ctx context.Context, id steps.ID, payload any) (map[string]any, error)
}

// Orchestrator runs jobs against the injected collaborators.
type Orchestrator struct {
	store       *jobs.Store
	transcripts TranscriptSource
	metadata    MetadataSource
	invoker     StepInvoker
	notifier    notifications.Service
	logger      *slog.Logger
	placeholder bool
	newID       func() string
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithNotifier attaches a notification service.
func WithNotifier(notifier notifications.Service) Option {
	return func(o *Orchestrator) {
		if notifier != nil {
			o.notifier = notifier
		}
	}
}

// WithPlaceholderOnFailure controls whether a failed transcript acquisition
// falls back to the built-in placeholder transcript. Enabled by default.
func WithPlaceholderOnFailure(enabled bool) Option {
	return func(o *Orchestrator) {
		o.placeholder = enabled
	}
}

// WithResultIDs overrides result id generation.
func WithResultIDs(next func() string) Option {
	return func(o *Orchestrator) {
		if next != nil {
			o.newID = next
		}
	}
}

// New constructs an Orchestrator.
func New(store *jobs.Store, transcripts TranscriptSource, meta MetadataSource, invoker StepInvoker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		transcripts: transcripts,
		metadata:    meta,
		invoker:     invoker,
		notifier:    notifications.NewService(nil),
		placeholder: true,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.NewComponentLogger(o.logger, "pipeline")
	return o
}

// Submit validates sourceURL and creates a processing job for it. An
// unrecognized URL fails before any job exists.
func (o *Orchestrator) Submit(ctx context.Context, sourceURL string) (jobs.Job, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if err := transcript.ValidateSourceURL(sourceURL); err != nil {
		return jobs.Job{}, services.Wrap(services.ErrValidation, "submit", "validate url", "Please enter a valid YouTube URL", err)
	}
	job, err := o.store.Create(ctx, sourceURL)
	if err != nil {
		o.logPersistFailure(logging.WithContext(services.WithJobID(ctx, job.ID), o.logger), err)
	}
	o.logger.Info("job submitted",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("youtube_url", sourceURL),
		logging.String(logging.FieldEventType, "job_submitted"),
	)
	return job, nil
}

// Process submits sourceURL and runs the resulting job to completion.
func (o *Orchestrator) Process(ctx context.Context, sourceURL string) (jobs.Job, error) {
	job, err := o.Submit(ctx, sourceURL)
	if err != nil {
		return jobs.Job{}, err
	}
	runErr := o.Run(ctx, job.ID)
	final, err := o.store.Get(job.ID)
	if err != nil {
		return job, errors.Join(runErr, err)
	}
	return final, runErr
}

// Run executes every step for jobID in catalog order. It returns nil when the
// job completes and the failing step's error otherwise.
func (o *Orchestrator) Run(ctx context.Context, jobID string) error {
	job, err := o.store.Get(jobID)
	if err != nil {
		return err
	}
	ctx = services.WithJobID(ctx, jobID)
	logger := logging.WithContext(ctx, o.logger)
	started := time.Now()

	r := &run{
		o:       o,
		jobID:   jobID,
		logger:  logger,
		url:     job.YoutubeURL,
		title:   job.DisplayTitle(),
		results: []steps.Result{},
	}

	r.update(ctx, jobs.Patch{
		Status:      statusPtr(jobs.StatusProcessing),
		CurrentStep: stepPtr(steps.YT1),
		Progress:    intPtr(0),
	})
	logger.Info("job started",
		logging.String("youtube_url", job.YoutubeURL),
		logging.String(logging.FieldEventType, "job_start"),
	)

	meta := r.lookupMetadata(ctx)

	if err := r.acquireTranscript(ctx, meta); err != nil {
		return r.fail(ctx, steps.YT1, err)
	}

	for id := steps.YT2; id.Valid(); id = id.Next() {
		if err := r.generate(ctx, id); err != nil {
			return r.fail(ctx, id, err)
		}
	}

	logger.Info("job completed",
		logging.Duration("elapsed", time.Since(started)),
		logging.Int("steps", len(r.results)),
		logging.String(logging.FieldEventType, "job_complete"),
	)
	o.notify(ctx, notifications.EventJobCompleted, notifications.Payload{
		"title": r.title,
		"steps": len(r.results),
	})
	return nil
}

// run holds the state of one job execution.
type run struct {
	o       *Orchestrator
	jobID   string
	logger  *slog.Logger
	url     string
	title   string
	results []steps.Result
	index   steps.Results
}

func (r *run) lookupMetadata(ctx context.Context) metadata.Video {
	fallback := metadata.Video{Title: metadata.UnknownTitle, Channel: metadata.UnknownChannel}
	if r.o.metadata == nil {
		return fallback
	}
	video, err := r.o.metadata.Lookup(ctx, r.url)
	if err != nil {
		r.logger.Warn("video metadata unavailable; continuing",
			logging.Error(err),
			logging.String(logging.FieldEventType, "metadata_unavailable"),
			logging.String(logging.FieldErrorHint, "check metadata.oembed_url and network access"),
			logging.String(logging.FieldImpact, "job shows no video title or thumbnail"),
		)
		return fallback
	}
	r.title = video.Title
	r.update(ctx, jobs.Patch{
		Title:        &video.Title,
		VideoTitle:   &video.Title,
		ChannelName:  &video.Channel,
		ThumbnailURL: &video.ThumbnailURL,
	})
	return video
}

func (r *run) acquireTranscript(ctx context.Context, meta metadata.Video) error {
	stepCtx := services.WithStep(ctx, steps.YT1.String())
	logger := logging.WithContext(stepCtx, r.o.logger)
	logger.Info("step started", logging.String(logging.FieldEventType, "step_start"))

	if r.o.transcripts == nil {
		return errors.New("transcript source unavailable")
	}
	acquired, err := r.o.transcripts.Acquire(stepCtx, r.url)
	if err != nil {
		if !r.o.placeholder || !errors.Is(err, transcript.ErrTranscriptUnavailable) {
			return err
		}
		logging.WarnWithContext(logger, "transcript unavailable; using placeholder transcript", "transcript_placeholder",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "configure transcript.webhook_url or disable transcript.placeholder_on_failure"),
			logging.String(logging.FieldImpact, "generated assets describe placeholder content"),
		)
		acquired = transcript.Transcript{Text: transcript.Placeholder, Source: transcript.SourcePlaceholder}
	}

	r.commit(ctx, steps.YT1, map[string]any{
		"transcript": acquired.Text,
		"source":     string(acquired.Source),
		"video_meta": map[string]any{
			"title":   meta.Title,
			"channel": meta.Channel,
		},
	})
	logger.Info("step completed",
		logging.String("source", string(acquired.Source)),
		logging.Int("chars", len(acquired.Text)),
		logging.String(logging.FieldEventType, "step_complete"),
	)
	return nil
}

func (r *run) generate(ctx context.Context, id steps.ID) error {
	def, ok := steps.Lookup(id)
	if !ok || !def.Generation() {
		return fmt.Errorf("step %s has no payload builder", id)
	}
	stepCtx := services.WithStep(ctx, id.String())
	logger := logging.WithContext(stepCtx, r.o.logger)
	logger.Info("step started",
		logging.String("step_name", def.Name),
		logging.String(logging.FieldEventType, "step_start"),
	)
	if r.o.invoker == nil {
		return errors.New("step invoker unavailable")
	}

	started := time.Now()
	data, err := r.o.invoker.Invoke(stepCtx, id, def.Build(r.index))
	if err != nil {
		return err
	}
	r.commit(ctx, id, data)
	logger.Info("step completed",
		logging.String("step_name", def.Name),
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldEventType, "step_complete"),
	)
	return nil
}

// commit records data for id and applies the matching job update in one
// store call.
func (r *run) commit(ctx context.Context, id steps.ID, data map[string]any) {
	r.results = append(r.results, steps.Result{ID: r.o.newID(), Type: id, Data: data})
	r.index.Set(id, data)

	completed := len(r.results)
	patch := jobs.Patch{
		CompletedSteps: steps.Sequence(completed),
		Results:        r.results,
		Progress:       intPtr(steps.Progress(completed)),
		CurrentStep:    stepPtr(id.Next()),
	}
	if id.Next() == steps.None {
		patch.Status = statusPtr(jobs.StatusCompleted)
	}
	r.update(ctx, patch)
}

func (r *run) fail(ctx context.Context, id steps.ID, stepErr error) error {
	message := strings.TrimSpace(stepErr.Error())
	// Recorded even when ctx was cancelled at shutdown.
	r.update(context.WithoutCancel(ctx), jobs.Patch{
		Status:      statusPtr(jobs.StatusError),
		Error:       &message,
		Results:     r.results,
		CurrentStep: stepPtr(id),
	})
	logger := logging.WithContext(services.WithStep(ctx, id.String()), r.o.logger)
	logging.ErrorWithContext(logger, "step failed", "step_failure",
		logging.Error(stepErr),
		logging.Int("completed_steps", len(r.results)),
		logging.String(logging.FieldImpact, "job stopped; partial results kept"),
		logging.String(logging.FieldErrorHint, hintFor(stepErr)),
	)
	r.o.notify(ctx, notifications.EventJobFailed, notifications.Payload{
		"title": r.title,
		"step":  id.String(),
		"error": message,
	})
	return fmt.Errorf("%s: %w", id, stepErr)
}

func (r *run) update(ctx context.Context, patch jobs.Patch) {
	if _, err := r.o.store.Update(ctx, r.jobID, patch); err != nil {
		r.o.logPersistFailure(r.logger, err)
	}
}

func (o *Orchestrator) logPersistFailure(logger *slog.Logger, err error) {
	if errors.Is(err, jobs.ErrJobNotFound) {
		logger.Warn("job vanished during run", logging.Error(err),
			logging.String(logging.FieldEventType, "job_missing"),
			logging.String(logging.FieldImpact, "updates for this job are dropped"),
		)
		return
	}
	logging.ErrorWithContext(logger, "job state not persisted", "persist_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check storage.backend and paths.data_dir"),
		logging.String(logging.FieldImpact, "in-memory job state is ahead of the record store"),
	)
}

func (o *Orchestrator) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.Publish(ctx, event, payload); err != nil {
		o.logger.Warn("notification failed",
			logging.Error(err),
			logging.String("event", string(event)),
			logging.String(logging.FieldEventType, "notification_failed"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "job state is unaffected"),
		)
	}
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, transcript.ErrTranscriptUnavailable):
		return "configure transcript.webhook_url or enable transcript.placeholder_on_failure"
	case errors.Is(err, services.ErrConfiguration):
		return "run ytleads doctor to check configuration"
	default:
		return "inspect the step error and rerun the job"
	}
}

func intPtr(v int) *int                    { return &v }
func stepPtr(v steps.ID) *steps.ID         { return &v }
func statusPtr(v jobs.Status) *jobs.Status { return &v }
