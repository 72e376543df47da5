package jobaccess

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"ytleads/internal/config"
	"ytleads/internal/httpapi"
	"ytleads/internal/jobs"
	"ytleads/internal/testsupport"
)

// finishingRunner completes every submitted job without running steps.
type finishingRunner struct {
	store *jobs.Store
}

func (r finishingRunner) Submit(ctx context.Context, sourceURL string) (jobs.Job, error) {
	return r.store.Create(ctx, sourceURL)
}

func (r finishingRunner) Run(ctx context.Context, jobID string) error {
	status := jobs.StatusCompleted
	progress := 100
	_, err := r.store.Update(ctx, jobID, jobs.Patch{Status: &status, Progress: &progress})
	return err
}

func holdLock(t *testing.T, cfg *config.Config) {
	t.Helper()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	lock := flock.New(cfg.LockPath())
	if ok, err := lock.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock: %v %v", ok, err)
	}
	t.Cleanup(func() { _ = lock.Unlock() })
}

// startServer stands in for `ytleads serve`: it holds the lock, serves the
// API over its own store and records its address.
func startServer(t *testing.T, cfg *config.Config) (*jobs.Store, *httpapi.Server) {
	t.Helper()
	holdLock(t, cfg)
	store := testsupport.MustOpenJobStore(t, cfg)
	srv := httpapi.New(store, finishingRunner{store: store})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	if err := os.WriteFile(cfg.AddressPath(), []byte(ts.Listener.Addr().String()+"\n"), 0o644); err != nil {
		t.Fatalf("write address: %v", err)
	}
	return store, srv
}

func TestOpenUsesStoreWhenUnlocked(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.StorageFile))
	seeded := testsupport.NewJob(t, testsupport.MustOpenJobStore(t, cfg), "https://youtu.be/dQw4w9WgXcQ")

	session, err := Open(context.Background(), cfg, nil, ReadWrite)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if session.Remote != "" {
		t.Fatalf("expected direct access, got remote %q", session.Remote)
	}
	if err := session.Access.Select(context.Background(), seeded.ID); err != nil {
		t.Fatalf("Select: %v", err)
	}

	other := flock.New(cfg.LockPath())
	if ok, err := other.TryLock(); err != nil || ok {
		t.Fatalf("write session must hold the store lock, TryLock = %v %v", ok, err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if ok, err := other.TryLock(); err != nil || !ok {
		t.Fatalf("Close must release the store lock, TryLock = %v %v", ok, err)
	}
	_ = other.Unlock()

	reloaded := testsupport.MustOpenJobStore(t, cfg)
	if selected, ok := reloaded.Selected(); !ok || selected.ID != seeded.ID {
		t.Fatalf("selection not persisted: %+v %v", selected, ok)
	}
}

func TestOpenReadOnlyLeavesLockFree(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.StorageFile))
	session, err := Open(context.Background(), cfg, nil, ReadOnly)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer session.Close()

	lock := flock.New(cfg.LockPath())
	if ok, err := lock.TryLock(); err != nil || !ok {
		t.Fatalf("read session must not hold the lock, TryLock = %v %v", ok, err)
	}
	_ = lock.Unlock()
}

func TestOpenRoutesWritesThroughRunningServer(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.StorageFile))
	serverStore, srv := startServer(t, cfg)
	running := testsupport.NewJob(t, serverStore, "https://youtu.be/aaaaaaaaaaa")

	session, err := Open(ctx, cfg, nil, ReadWrite, WithPollInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer session.Close()
	if session.Remote == "" {
		t.Fatal("expected the session to use the server API")
	}

	created, err := session.Access.Process(ctx, "https://youtu.be/bbbbbbbbbbb")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	srv.Wait()
	if created.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed job, got %s", created.Status)
	}
	if err := session.Access.Select(ctx, created.ID); err != nil {
		t.Fatalf("Select: %v", err)
	}

	// The server keeps writing its own job after the CLI change.
	progress := 40
	if _, err := serverStore.Update(ctx, running.ID, jobs.Patch{Progress: &progress}); err != nil {
		t.Fatalf("server Update: %v", err)
	}

	reloaded := testsupport.MustOpenJobStore(t, cfg)
	list := reloaded.List()
	if len(list) != 2 {
		t.Fatalf("expected both jobs persisted, got %d", len(list))
	}
	if job, err := reloaded.Get(running.ID); err != nil || job.Progress != 40 {
		t.Fatalf("server job lost or stale: %+v %v", job, err)
	}
	if selected, ok := reloaded.Selected(); !ok || selected.ID != created.ID {
		t.Fatalf("selection not persisted: %+v %v", selected, ok)
	}

	if err := session.Access.Delete(ctx, running.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := serverStore.Get(running.ID); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Fatalf("delete must reach the server store, got %v", err)
	}
}

func TestOpenRemoteReadsSeeServerState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	serverStore, _ := startServer(t, cfg)
	job := testsupport.NewJob(t, serverStore, "https://youtu.be/dQw4w9WgXcQ")

	session, err := Open(context.Background(), cfg, nil, ReadOnly)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer session.Close()

	list, err := session.Access.List(context.Background())
	if err != nil || len(list) != 1 || list[0].ID != job.ID {
		t.Fatalf("List = %+v %v", list, err)
	}
	if _, ok, err := session.Access.Selected(context.Background()); err != nil || ok {
		t.Fatalf("expected no selection, got %v %v", ok, err)
	}
	if _, err := session.Access.Get(context.Background(), "missing"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestOpenRefusesWritesWhenLockedWithoutServer(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.StorageFile))
	seeded := testsupport.NewJob(t, testsupport.MustOpenJobStore(t, cfg), "https://youtu.be/dQw4w9WgXcQ")
	holdLock(t, cfg)

	if _, err := Open(context.Background(), cfg, nil, ReadWrite); !errors.Is(err, ErrStoreBusy) {
		t.Fatalf("expected ErrStoreBusy, got %v", err)
	}

	session, err := Open(context.Background(), cfg, nil, ReadOnly)
	if err != nil {
		t.Fatalf("read-only Open: %v", err)
	}
	defer session.Close()
	if session.Remote != "" {
		t.Fatal("expected direct read access")
	}
	if job, err := session.Access.Get(context.Background(), seeded.ID); err != nil || job.ID != seeded.ID {
		t.Fatalf("Get = %+v %v", job, err)
	}
}

func TestOpenIgnoresStaleAddress(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.StorageFile))
	holdLock(t, cfg)
	dead := httptest.NewServer(nil)
	addr := dead.Listener.Addr().String()
	dead.Close()
	if err := os.WriteFile(cfg.AddressPath(), []byte(addr), 0o644); err != nil {
		t.Fatalf("write address: %v", err)
	}

	if _, err := Open(context.Background(), cfg, nil, ReadWrite); !errors.Is(err, ErrStoreBusy) {
		t.Fatalf("expected ErrStoreBusy for stale address, got %v", err)
	}
}
