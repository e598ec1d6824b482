// Package server exposes the lookup endpoints, the form API, health and
// metrics over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-formflow/components/lookup"
	"github.com/goliatone/go-formflow/components/lookup/sqlitestore"
	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/pkg/loader"
)

// Server owns the HTTP handler tree and the resources behind it.
type Server struct {
	cfg        config.Config
	logger     *slog.Logger
	forms      *loader.Store
	registry   *prometheus.Registry
	store      lookup.Store
	lookupOpts lookup.Options
	handler    http.Handler
	patterns   []string
	closers    []io.Closer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry collects metrics into registry instead of a fresh one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithLookupStore overrides the configured lookup store.
func WithLookupStore(store lookup.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// New wires the handler tree for cfg, serving forms from the given store.
func New(ctx context.Context, cfg config.Config, forms *loader.Store, opts ...Option) (*Server, error) {
	if forms == nil {
		return nil, errors.New("server: forms store is required")
	}
	s := &Server{
		cfg:    cfg,
		logger: slog.Default(),
		forms:  forms,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.store == nil {
		store, closer, err := openStore(ctx, cfg.Lookup)
		if err != nil {
			return nil, err
		}
		s.store = store
		if closer != nil {
			s.closers = append(s.closers, closer)
		}
	}

	mux := http.NewServeMux()
	lookupFns := []lookup.OptionFn{
		lookup.WithStore(s.store),
		lookup.WithDelay(cfg.Lookup.Delay),
		lookup.WithLogger(s.logger.With("component", "lookup")),
		lookup.WithMinFilterLength(cfg.Lookup.MinFilterLength),
		lookup.WithLicenseLimit(cfg.Lookup.LicenseLimit),
	}

	if cfg.Metrics.Enabled {
		if s.registry == nil {
			s.registry = prometheus.NewRegistry()
			s.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		}
		metrics, err := lookup.NewMetrics(s.registry)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("server: lookup metrics: %w", err)
		}
		lookupFns = append(lookupFns, lookup.WithMetrics(metrics))
		pattern := "GET " + cfg.Metrics.Path
		mux.Handle(pattern, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
		s.patterns = append(s.patterns, pattern)
	}

	s.lookupOpts = lookup.NewOptions(lookupFns...)
	patterns, err := lookup.RegisterRoutesWithOptions(mux, cfg.Lookup.BasePath, s.lookupOpts)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("server: lookup routes: %w", err)
	}
	s.patterns = append(s.patterns, patterns...)
	s.patterns = append(s.patterns, s.registerForms(mux)...)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "forms": len(s.forms.IDs())})
	})
	s.patterns = append(s.patterns, "GET /healthz")

	s.handler = requestID(accessLog(s.logger, mux))
	return s, nil
}

// Handler returns the root handler with request id and access log
// middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Patterns lists every registered route pattern.
func (s *Server) Patterns() []string {
	return append([]string(nil), s.patterns...)
}

// Close releases the lookup store when the server opened it.
func (s *Server) Close() error {
	var errs []error
	for _, closer := range s.closers {
		errs = append(errs, closer.Close())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener. Request contexts are detached from
// ctx so in-flight requests drain during Shutdown.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Info("server listening", "addr", listener.Addr().String(), "forms", s.forms.IDs())
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: serve: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	s.logger.Info("server shutting down", "timeout", timeout.String())
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.LookupConfig) (lookup.Store, io.Closer, error) {
	fixtures, err := loadFixtures(cfg.Fixtures)
	if err != nil {
		return nil, nil, err
	}
	switch cfg.Store {
	case config.StoreSQLite:
		store, err := sqlitestore.OpenSeeded(ctx, cfg.SQLiteDSN, fixtures)
		if err != nil {
			return nil, nil, fmt.Errorf("server: sqlite lookup store: %w", err)
		}
		return store, store, nil
	default:
		return lookup.NewMemoryStore(fixtures), nil, nil
	}
}

func loadFixtures(path string) (lookup.Fixtures, error) {
	if path == "" {
		return lookup.DefaultFixtures()
	}
	f, err := os.Open(path)
	if err != nil {
		return lookup.Fixtures{}, fmt.Errorf("server: open fixtures: %w", err)
	}
	defer f.Close()
	fixtures, err := lookup.LoadFixtures(f)
	if err != nil {
		return lookup.Fixtures{}, fmt.Errorf("server: %s: %w", path, err)
	}
	return fixtures, nil
}
