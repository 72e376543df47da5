// Package recordstore provides the synchronous named-record persistence the
// job store mirrors its state into.
//
// A record is an opaque text value under a string key. Three backends share
// the Store interface: SQLite (default, schema managed by embedded
// migrations), a flock-guarded JSON file, and an in-memory map for tests and
// throwaway runs.
package recordstore

import (
	"context"
	"errors"
	"fmt"

	"ytleads/internal/config"
)

// ErrClosed reports use of a store after Close.
var ErrClosed = errors.New("record store closed")

// Store reads and writes named text records.
type Store interface {
	// Get returns the record value and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set replaces the record value.
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open selects the backend named by cfg.Storage.Backend.
func Open(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, errors.New("record store: config required")
	}
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return NewMemory(), nil
	case config.StorageFile:
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		return OpenFile(cfg.RecordFilePath())
	case config.StorageSQLite, "":
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		return OpenSQLite(cfg.DatabasePath())
	default:
		return nil, fmt.Errorf("record store: unsupported backend %q", cfg.Storage.Backend)
	}
}
