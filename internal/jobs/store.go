package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"ytleads/internal/logging"
	"ytleads/internal/recordstore"
	"ytleads/internal/steps"
)

var (
	// ErrJobNotFound reports an id that is not in the collection.
	ErrJobNotFound = errors.New("job not found")
	// ErrPersist reports that the in-memory change could not be mirrored to
	// the record store.
	ErrPersist = errors.New("persist jobs")
)

const selectedSuffix = ":selected"

// Store is the concurrency-safe job collection.
type Store struct {
	mu       sync.Mutex
	records  recordstore.Store
	key      string
	jobs     []Job
	selected string
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides job id generation.
func WithIDGenerator(next func() string) Option {
	return func(s *Store) {
		if next != nil {
			s.newID = next
		}
	}
}

// NewStore returns an empty store that persists under key.
func NewStore(records recordstore.Store, key string, opts ...Option) *Store {
	s := &Store{
		records: records,
		key:     key,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "jobs")
	return s
}

// Load replaces the collection with the persisted record. A missing record
// yields an empty collection.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.records.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load jobs: %w", err)
	}
	loaded := []Job{}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			return fmt.Errorf("decode %s: %w", s.key, err)
		}
	}
	for i := range loaded {
		normalizeJob(&loaded[i])
	}

	selected, _, err := s.records.Get(ctx, s.key+selectedSuffix)
	if err != nil {
		return fmt.Errorf("load selected job: %w", err)
	}
	s.jobs = loaded
	s.selected = ""
	if s.indexOf(selected) >= 0 {
		s.selected = selected
	}
	s.logger.Debug("jobs loaded", logging.Int("count", len(loaded)))
	return nil
}

// Create adds a new processing job for url at the front of the collection and
// selects it.
func (s *Store) Create(ctx context.Context, url string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := Job{
		ID:             s.newID(),
		YoutubeURL:     url,
		Status:         StatusProcessing,
		CompletedSteps: []steps.ID{},
		Results:        []steps.Result{},
		CreatedAt:      s.now().UTC(),
	}
	s.jobs = append([]Job{job}, s.jobs...)
	s.selected = job.ID
	return job.clone(), s.persist(ctx, true)
}

// Update merges patch into job id and returns the updated job.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	patch.apply(&s.jobs[idx])
	return s.jobs[idx].clone(), s.persist(ctx, false)
}

// Delete removes job id, clearing the selection when it pointed at it.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	s.jobs = append(s.jobs[:idx], s.jobs[idx+1:]...)
	clearSelection := s.selected == id
	if clearSelection {
		s.selected = ""
	}
	return s.persist(ctx, clearSelection)
}

// Get returns a copy of job id.
func (s *Store) Get(id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return s.jobs[idx].clone(), nil
}

// List returns copies of all jobs, newest first.
func (s *Store) List() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Job, len(s.jobs))
	for i, job := range s.jobs {
		out[i] = job.clone()
	}
	return out
}

// Select marks job id as the selected job. An empty id clears the selection.
func (s *Store) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" && s.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	s.selected = id
	return s.persistSelection(ctx)
}

// Selected returns the selected job, if any.
func (s *Store) Selected() (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(s.selected)
	if idx < 0 {
		return Job{}, false
	}
	return s.jobs[idx].clone(), true
}

// FailInterrupted moves every job still processing to error with reason,
// keeping its partial results. It returns the number of jobs changed.
func (s *Store) FailInterrupted(ctx context.Context, reason string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.jobs {
		if s.jobs[i].Status != StatusProcessing {
			continue
		}
		s.jobs[i].Status = StatusError
		s.jobs[i].Error = reason
		changed++
	}
	if changed == 0 {
		return 0, nil
	}
	s.logger.Info("interrupted jobs marked failed", logging.Int("count", changed))
	return changed, s.persist(ctx, false)
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes the full list, and the selection when withSelection is set.
// Callers hold s.mu.
func (s *Store) persist(ctx context.Context, withSelection bool) error {
	if s.records == nil {
		return nil
	}
	list := s.jobs
	if list == nil {
		list = []Job{}
	}
	encoded, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrPersist, err)
	}
	if err := s.records.Set(ctx, s.key, string(encoded)); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if withSelection {
		return s.persistSelection(ctx)
	}
	return nil
}

func (s *Store) persistSelection(ctx context.Context) error {
	if s.records == nil {
		return nil
	}
	if err := s.records.Set(ctx, s.key+selectedSuffix, s.selected); err != nil {
		return fmt.Errorf("%w: selection: %w", ErrPersist, err)
	}
	return nil
}

func normalizeJob(job *Job) {
	if job.CompletedSteps == nil {
		job.CompletedSteps = []steps.ID{}
	}
	if job.Results == nil {
		job.Results = []steps.Result{}
	}
	if job.Status == "" {
		job.Status = StatusProcessing
	}
}
