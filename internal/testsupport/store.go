package testsupport

import (
	"context"
	"testing"

	"ytleads/internal/config"
	"ytleads/internal/jobs"
	"ytleads/internal/recordstore"
)

// MustOpenJobStore opens the configured record store, loads a jobs.Store on
// top of it and registers cleanup.
func MustOpenJobStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	records, err := recordstore.Open(cfg)
	if err != nil {
		t.Fatalf("recordstore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = records.Close()
	})
	store := jobs.NewStore(records, cfg.Storage.RecordKey)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	return store
}

// NewJob creates a job for url using the provided store.
func NewJob(t testing.TB, store *jobs.Store, url string) jobs.Job {
	t.Helper()

	job, err := store.Create(context.Background(), url)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return job
}
