// Package server assembles the HTTP stack around the REST exporter.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jbweber/homelab/tripdesk/internal/api"
	"github.com/jbweber/homelab/tripdesk/internal/config"
	"github.com/jbweber/homelab/tripdesk/internal/datastore"
	"github.com/jbweber/homelab/tripdesk/internal/middleware"
)

// Server serves the tripdesk API.
type Server struct {
	cfg      *config.Config
	ds       *datastore.Datastore
	logger   *slog.Logger
	registry *prometheus.Registry
	handler  http.Handler
}

// New builds the router and middleware stack. ctx bounds background work
// such as rate limiter cleanup.
func New(ctx context.Context, cfg *config.Config, ds *datastore.Datastore, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		ds:       ds,
		logger:   logger.With("component", "server"),
		registry: prometheus.NewRegistry(),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(ds.DB, "tripdesk"),
	)
	s.handler = otelhttp.NewHandler(s.router(ctx), "tripdesk")
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) router(ctx context.Context) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(traceid.Middleware)
	r.Use(middleware.NewSlogLogger(s.logger))
	if s.cfg.Metrics.Enabled {
		r.Use(middleware.NewMetrics(s.registry).Middleware(s.cfg.Metrics.Path))
	}
	r.Use(chimiddleware.Recoverer)
	if len(s.cfg.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.NewCORSHandler(s.cfg.CORS.AllowedOrigins))
	}
	if s.cfg.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(ctx, s.cfg.RateLimit.RPS, s.cfg.RateLimit.Burst, 10*time.Minute, s.logger)
		r.Use(rl.Middleware)
	}

	r.Get("/healthz", s.healthHandler)
	if s.cfg.Metrics.Enabled {
		r.Handle(s.cfg.Metrics.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	}

	rest := api.NewAPI(s.ds, api.Options{
		Logger:             s.logger,
		ReturnBodyOnCreate: s.cfg.REST.ReturnBodyOnCreate,
		ReturnBodyOnUpdate: s.cfg.REST.ReturnBodyOnUpdate,
		DefaultPageSize:    s.cfg.REST.DefaultPageSize,
		MaxPageSize:        s.cfg.REST.MaxPageSize,
	})
	rest.RegisterRoutes(r)
	return r
}

// healthHandler reports whether the datastore is reachable
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain")
	if err := s.ds.Ping(ctx); err != nil {
		s.logger.Error("health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprintln(w, "database unavailable")
		return
	}
	_, _ = fmt.Fprintln(w, "ok")
}

// Run listens on the configured port and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
