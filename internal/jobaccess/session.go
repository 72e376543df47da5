package jobaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"ytleads/internal/app"
	"ytleads/internal/config"
	"ytleads/internal/httpapi"
	"ytleads/internal/logging"
)

// Mode says whether a session will change jobs.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

// ErrStoreBusy reports that another process holds the store lock and no
// server is reachable to take the change.
var ErrStoreBusy = errors.New("job store is locked by another ytleads process and no server address is reachable; retry when it finishes")

// Session represents a job access handle and its cleanup function.
type Session struct {
	Access Access
	// Remote is the server base URL when the session talks to the API.
	Remote string
	close  func() error
}

// Close releases resources associated with the session.
func (s Session) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

type openOptions struct {
	interval time.Duration
}

// OpenOption customizes Open.
type OpenOption func(*openOptions)

// WithPollInterval sets how often a remote Process polls the server.
func WithPollInterval(d time.Duration) OpenOption {
	return func(o *openOptions) {
		o.interval = d
	}
}

// Open picks the backing for a command. When the store lock is free the
// store is opened in this process; ReadWrite sessions keep the lock until
// Close so a server cannot start underneath them. When the lock is held the
// holder's recorded address is used, so changes go through its API instead
// of overwriting its job list. Without a reachable address, ReadOnly
// sessions read the store directly and ReadWrite sessions fail with
// ErrStoreBusy.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, mode Mode, opts ...OpenOption) (Session, error) {
	if cfg == nil {
		return Session{}, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	options := openOptions{interval: DefaultPollInterval}
	for _, opt := range opts {
		opt(&options)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return Session{}, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return Session{}, fmt.Errorf("check store lock: %w", err)
	}
	if locked {
		if mode == ReadOnly {
			_ = lock.Unlock()
			return openStore(ctx, cfg, logger, nil)
		}
		return openStore(ctx, cfg, logger, lock)
	}

	if client, ok := dialServer(ctx, cfg.AddressPath()); ok {
		logger.Debug("routing job commands through running server",
			logging.String("server", client.BaseURL()),
		)
		return Session{
			Access: NewAPIAccess(client, options.interval),
			Remote: client.BaseURL(),
		}, nil
	}
	if mode == ReadOnly {
		return openStore(ctx, cfg, logger, nil)
	}
	return Session{}, ErrStoreBusy
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, lock *flock.Flock) (Session, error) {
	rt, err := app.Open(ctx, cfg, logger)
	if err != nil {
		if lock != nil {
			_ = lock.Unlock()
		}
		return Session{}, err
	}
	return Session{
		Access: NewStoreAccess(rt),
		close: func() error {
			err := rt.Close()
			if lock != nil {
				err = errors.Join(err, lock.Unlock())
			}
			return err
		},
	}, nil
}

// dialServer reads the address a server recorded at startup and checks that
// it answers. A stale file left by a crashed server is ignored.
func dialServer(ctx context.Context, path string) (*httpapi.Client, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	addr := strings.TrimSpace(string(raw))
	if addr == "" {
		return nil, false
	}
	client := httpapi.NewClient(addr)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		return nil, false
	}
	return client, true
}
