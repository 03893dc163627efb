// Package server hosts the HTTP transport for the question service: route
// table, middleware chain, and graceful lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"originate-hq/meridian/pkg/api/handlers"
	"originate-hq/meridian/pkg/api/middleware"
	"originate-hq/meridian/pkg/config"
	"originate-hq/meridian/pkg/queue"
	"originate-hq/meridian/pkg/telemetry/health"
	"originate-hq/meridian/pkg/telemetry/metrics"
)

// Server is the HTTP front end of the question service.
type Server struct {
	config     *config.ServerConfig
	metricsCfg *config.MetricsConfig

	service   *queue.Service
	checker   *health.Checker
	collector *metrics.Collector
	logger    *slog.Logger

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates the server; Start wires routes and listens.
func NewServer(cfg *config.ServerConfig, metricsCfg *config.MetricsConfig, service *queue.Service, checker *health.Checker, collector *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:       cfg,
		metricsCfg:   metricsCfg,
		service:      service,
		checker:      checker,
		collector:    collector,
		logger:       logger,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting question service",
			"address", s.config.ListenAddress,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("question service stopped")
	})

	return shutdownErr
}

// setupRoutes configures routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /v1/proposals/{pid}/questions", handlers.NewQuestionsHandler(s.service, s.logger))
	mux.Handle("POST /v1/proposals/{pid}/answers", handlers.NewAnswersHandler(s.service, s.logger))
	mux.Handle("GET /v1/proposals/{pid}/state", handlers.NewStateHandler(s.service, s.logger))
	mux.Handle("GET /health", handlers.NewHealthHandler(s.checker))
	mux.Handle("GET /ready", handlers.NewReadyHandler(s.checker))
	if s.metricsCfg.Enabled && s.collector != nil {
		mux.Handle("GET "+s.metricsCfg.Path, s.collector.Handler())
	}

	var handler http.Handler = mux

	handler = middleware.Timeout(s.config.WriteTimeout)(handler)
	if s.collector != nil {
		handler = middleware.Measure(s.collector.Request())(handler)
	}
	handler = middleware.CORS(s.config.CORS)(handler)
	handler = middleware.Logging(s.logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(s.logger)(handler)

	return handler
}

// Handler returns the configured HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
