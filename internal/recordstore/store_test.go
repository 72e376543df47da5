package recordstore

import (
	"context"
	"path/filepath"
	"testing"

	"ytleads/internal/config"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "youtube_leads_jobs"); err != nil || ok {
		t.Fatalf("expected missing record, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "youtube_leads_jobs", `[{"id":"a"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "other", "x"); err != nil {
		t.Fatalf("Set other: %v", err)
	}
	if err := store.Set(ctx, "youtube_leads_jobs", `[]`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	value, ok, err := store.Get(ctx, "youtube_leads_jobs")
	if err != nil || !ok || value != `[]` {
		t.Fatalf("Get = %q, %v, %v", value, ok, err)
	}
	if value, _, _ := store.Get(ctx, "other"); value != "x" {
		t.Fatalf("unexpected other value %q", value)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ytleads.db")
	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	exerciseStore(t, store)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	value, ok, err := reopened.Get(context.Background(), "youtube_leads_jobs")
	if err != nil || !ok || value != `[]` {
		t.Fatalf("record did not survive reopen: %q %v %v", value, ok, err)
	}
}

func TestSQLiteStoreClosed(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "closed.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	_ = store.Close()
	if err := store.Set(context.Background(), "k", "v"); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "records.json")
	store, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer store.Close()
	exerciseStore(t, store)

	second, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile second: %v", err)
	}
	defer second.Close()
	if value, ok, _ := second.Get(context.Background(), "other"); !ok || value != "x" {
		t.Fatalf("second handle did not see record: %q %v", value, ok)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		config.StorageMemory: "*recordstore.MemoryStore",
		config.StorageFile:   "*recordstore.FileStore",
		config.StorageSQLite: "*recordstore.SQLiteStore",
	}
	for backend, want := range cases {
		cfg := config.Default()
		cfg.Paths.DataDir = filepath.Join(dir, backend)
		cfg.Paths.LogDir = ""
		cfg.Storage.Backend = backend
		store, err := Open(&cfg)
		if err != nil {
			t.Fatalf("Open(%s): %v", backend, err)
		}
		if got := typeName(store); got != want {
			t.Fatalf("Open(%s) returned %s", backend, got)
		}
		_ = store.Close()
	}
}

func typeName(store Store) string {
	switch store.(type) {
	case *MemoryStore:
		return "*recordstore.MemoryStore"
	case *FileStore:
		return "*recordstore.FileStore"
	case *SQLiteStore:
		return "*recordstore.SQLiteStore"
	default:
		return "unknown"
	}
}
