// Package server defines the core Server struct that composes the app's main dependencies.
//
// It contains the initialization logic to spin up the HTTP server
// and handles graceful shutdowns.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - prometheus metrics
//   - the validated route set
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppfellow/v8n/internal/config"
	"github.com/deppfellow/v8n/internal/metrics"
	"github.com/deppfellow/v8n/internal/routespec"

	loggerPkg "github.com/deppfellow/v8n/internal/logger"
)

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself. Handlers and middleware reach the
// config, loggers, metrics and routes through it.
type Server struct {
	// Config holds all environment/config values for the app.
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	LoggerService *loggerPkg.LoggerService

	// Metrics holds the validation collectors. Nil when metrics are disabled.
	Metrics *metrics.Metrics

	// Routes are the routes whose requests are validated.
	Routes *routespec.Set

	// StartedAt is when the container was built, reported by the health check.
	StartedAt time.Time

	httpServer *http.Server
}

// New constructs a Server around an already loaded route set.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService, routes *routespec.Set) (*Server, error) {
	if routes == nil {
		return nil, errors.New("route set is required")
	}

	s := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Routes:        routes,
		StartedAt:     time.Now(),
	}

	if cfg.Observability != nil && cfg.Observability.Metrics.Enabled {
		s.Metrics = metrics.New()
	}

	logger.Info().
		Int("routes", routes.Len()).
		Bool("metrics", s.Metrics != nil).
		Msg("server initialized")

	return s, nil
}

// LoadRoutes reads the route set named by the validation config. An OpenAPI
// document takes precedence over a route file.
func LoadRoutes(ctx context.Context, cfg config.ValidationConfig) (*routespec.Set, error) {
	opts := routespec.Options{
		AllowUnknown: cfg.AllowUnknown,
		Concurrent:   cfg.Concurrent,
	}

	if cfg.OpenAPIFile != "" {
		set, err := routespec.LoadOpenAPI(ctx, cfg.OpenAPIFile, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to load OpenAPI routes: %w", err)
		}
		return set, nil
	}

	set, err := routespec.LoadFile(cfg.RoutesFile, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load routes: %w", err)
	}
	return set, nil
}

// SetupHTTPServer configures the internal net/http server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:    ":" + s.Config.Server.Port,
		Handler: handler,

		// Config stores seconds.
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. It blocks until the server stops and
// requires SetupHTTPServer to be called first.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for inflight ones until ctx
// is done. The LoggerService is flushed by its owner.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}
