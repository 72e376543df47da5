package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"ytleads/internal/jobs"
	"ytleads/internal/logging"
	"ytleads/internal/preflight"
	"ytleads/internal/services"
)

// Runner submits and runs jobs.
type Runner interface {
	Submit(ctx context.Context, sourceURL string) (jobs.Job, error)
	Run(ctx context.Context, jobID string) error
}

// DefaultDrainTimeout bounds how long Serve waits for running jobs after
// shutdown begins. Jobs still running are cancelled and recorded as failed.
const DefaultDrainTimeout = 30 * time.Second

// Server serves the JSON API.
type Server struct {
	store    *jobs.Store
	runner   Runner
	logger   *slog.Logger
	origins  []string
	checks   func(context.Context) []preflight.Result
	drain    time.Duration
	onListen func(net.Addr)

	runs       sync.WaitGroup
	runCtx     context.Context
	cancelRuns context.CancelFunc
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAllowedOrigins sets the CORS origin allow-list.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = append([]string(nil), origins...)
	}
}

// WithHealthChecks sets the checks reported by /v1/healthz.
func WithHealthChecks(checks func(context.Context) []preflight.Result) Option {
	return func(s *Server) {
		s.checks = checks
	}
}

// WithDrainTimeout overrides DefaultDrainTimeout.
func WithDrainTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.drain = d
	}
}

// WithListenNotify registers fn to receive the bound address once Serve is
// listening.
func WithListenNotify(fn func(net.Addr)) Option {
	return func(s *Server) {
		s.onListen = fn
	}
}

// New constructs a Server.
func New(store *jobs.Store, runner Runner, opts ...Option) *Server {
	s := &Server{
		store:   store,
		runner:  runner,
		origins: []string{"*"},
		drain:   DefaultDrainTimeout,
	}
	s.runCtx, s.cancelRuns = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "api")
	return s
}

// Handler returns the routed handler wrapped with CORS.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, s.requestLogger)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", s.handleHealth)
		r.Get("/steps", s.handleSteps)
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", s.handleListJobs)
			r.Post("/", s.handleCreateJob)
			r.Get("/selected", s.handleGetSelected)
			r.Put("/selected", s.handleSelect)
			r.Get("/{id}", s.handleGetJob)
			r.Delete("/{id}", s.handleDeleteJob)
			r.Get("/{id}/results/{step}", s.handleGetResult)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// Serve listens on bind until ctx is cancelled, then shuts down and drains
// in-flight job runs.
func (s *Server) Serve(ctx context.Context, bind string) error {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	if s.onListen != nil {
		s.onListen(listener.Addr())
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	err = g.Wait()

	s.Drain(s.drain)
	return err
}

// Wait blocks until every job run started by the server has returned.
func (s *Server) Wait() {
	s.runs.Wait()
}

// Drain waits up to timeout for running jobs, then cancels the rest and
// waits for them to record their failure. It reports whether every run
// finished on its own.
func (s *Server) Drain(timeout time.Duration) bool {
	s.logger.Info("waiting for in-flight jobs", logging.Duration("timeout", timeout))
	done := make(chan struct{})
	go func() {
		s.runs.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
	}

	logging.WarnWithContext(s.logger, "in-flight jobs cancelled at shutdown", "jobs_cancelled",
		logging.Duration("timeout", timeout),
		logging.String(logging.FieldImpact, "running jobs end with status error"),
		logging.String(logging.FieldErrorHint, "resubmit the affected videos"),
	)
	s.cancelRuns()
	<-done
	return false
}

// start runs jobID detached from the request; only Drain cancels it.
func (s *Server) start(ctx context.Context, jobID string) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(s.runCtx, cancel)
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		defer cancel()
		defer stop()
		if err := s.runner.Run(runCtx, jobID); err != nil {
			s.logger.Info("job run ended with error",
				logging.String(logging.FieldJobID, jobID),
				logging.Error(err),
			)
		}
	}()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		ctx := services.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(ctx))
		logging.WithContext(ctx, s.logger).Debug("http request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Int("bytes", ww.BytesWritten()),
			logging.Duration("elapsed", time.Since(started)),
		)
	})
}
