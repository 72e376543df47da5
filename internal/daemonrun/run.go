// Package daemonrun runs the long-lived ytleads API server. It takes the job
// store lock, records its listen address for CLI commands, recovers jobs
// interrupted by a previous shutdown, and serves until signalled.
package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"

	"ytleads/internal/app"
	"ytleads/internal/config"
	"ytleads/internal/httpapi"
	"ytleads/internal/logging"
	"ytleads/internal/preflight"
)

// InterruptedReason is recorded on jobs found still processing at startup.
const InterruptedReason = "interrupted: server restarted before the job finished"

// ErrAlreadyRunning reports that another process holds the job store lock,
// either a server or a CLI command that is changing jobs.
var ErrAlreadyRunning = errors.New("job store is locked by another ytleads process (a running server or CLI command)")

// Options configures the server runtime.
type Options struct {
	// Bind overrides api.bind when non-empty.
	Bind string
}

// Run starts the API server and blocks until cmdCtx is cancelled or SIGINT or
// SIGTERM arrives.
func Run(cmdCtx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.RequireLLM(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release server lock", logging.Error(err))
		}
	}()

	addressPath := cfg.AddressPath()
	if err := os.Remove(addressPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to remove stale server address", logging.Error(err))
	}
	defer func() {
		if err := os.Remove(addressPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to remove server address", logging.Error(err))
		}
	}()

	runtime, err := app.Open(signalCtx, cfg, logger)
	if err != nil {
		logger.Error("open runtime", logging.Error(err))
		return err
	}
	defer runtime.Close()

	if count, err := runtime.Jobs.FailInterrupted(signalCtx, InterruptedReason); err != nil {
		logging.WarnWithContext(logger, "interrupted jobs not persisted", "recovery_persist_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check storage.backend and paths.data_dir"),
		)
	} else if count > 0 {
		logger.Info("recovered interrupted jobs",
			logging.Int("count", count),
			logging.String(logging.FieldEventType, "jobs_recovered"),
		)
	}

	bind := opts.Bind
	if bind == "" {
		bind = cfg.API.Bind
	}
	server := httpapi.New(runtime.Jobs, runtime.Orchestrator,
		httpapi.WithLogger(logger),
		httpapi.WithAllowedOrigins(cfg.API.AllowedOrigins),
		httpapi.WithHealthChecks(func(ctx context.Context) []preflight.Result {
			return preflight.RunAll(ctx, cfg, false)
		}),
		httpapi.WithListenNotify(func(addr net.Addr) {
			if err := writeAddress(addressPath, addr); err != nil {
				logging.WarnWithContext(logger, "server address not recorded", "address_write_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "CLI job commands cannot reach this server and will refuse to write"),
					logging.String(logging.FieldErrorHint, "check paths.data_dir permissions"),
				)
			}
		}),
	)

	logger.Info("ytleads server starting",
		logging.String("bind", bind),
		logging.String("storage", cfg.Storage.Backend),
		logging.String("lock", cfg.LockPath()),
	)
	if err := server.Serve(signalCtx, bind); err != nil {
		return err
	}
	logger.Info("ytleads server stopped")
	return nil
}

// writeAddress records where CLI commands can reach the server. Wildcard
// binds are written as loopback so the address is dialable.
func writeAddress(path string, addr net.Addr) error {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return err
	}
	if ip := net.ParseIP(host); ip == nil || ip.IsUnspecified() {
		host = "127.0.0.1"
	}
	return os.WriteFile(path, []byte(net.JoinHostPort(host, port)+"\n"), 0o644)
}
