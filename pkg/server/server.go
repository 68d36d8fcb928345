package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"dorfbook/simparse/pkg/config"
	"dorfbook/simparse/pkg/history"
	"dorfbook/simparse/pkg/library"
	"dorfbook/simparse/pkg/server/middleware"
	"dorfbook/simparse/pkg/sim/parser"
	"dorfbook/simparse/pkg/sim/validator"
	"dorfbook/simparse/pkg/telemetry/health"
	"dorfbook/simparse/pkg/telemetry/metrics"
	"dorfbook/simparse/pkg/telemetry/tracing"
)

// Recorder accepts history records for asynchronous storage.
type Recorder interface {
	Record(ctx context.Context, record *history.Record) error
}

// BuildInfo identifies the running binary on /version.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Dependencies are the components the server exposes over HTTP. Only
// Parser is required; routes for a nil Library or History answer 404.
type Dependencies struct {
	Parser    *parser.Parser
	Validator *validator.Validator
	Library   *library.Library
	History   history.Store
	Recorder  Recorder
	Metrics   *metrics.Collector
	Tracer    *tracing.Tracer
	Health    *health.Checker
	Logger    *slog.Logger
	Build     BuildInfo
}

// Server is the simparse HTTP server.
type Server struct {
	config     *config.Config
	deps       Dependencies
	logger     *slog.Logger
	hub        *Hub
	httpServer *http.Server

	mu        sync.RWMutex
	isRunning bool
	addr      string

	shutdownOnce sync.Once
}

// NewServer creates a server. It does not listen until Start.
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	if deps.Parser == nil {
		deps.Parser = parser.NewParser().
			WithMaxSize(cfg.Parser.MaxFileSize).
			WithContextLines(cfg.Parser.ContextLines)
	}
	if deps.Validator == nil {
		deps.Validator = validator.NewValidator().WithStrictMode(cfg.Parser.StrictLint)
	}
	if deps.Tracer == nil {
		deps.Tracer = tracing.Noop()
	}
	if deps.Health == nil {
		deps.Health = health.New(cfg.Telemetry.Health.CheckTimeout)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &Server{
		config: cfg,
		deps:   deps,
		logger: deps.Logger.With("component", "server"),
	}
	var gauge ClientGauge
	if deps.Metrics != nil {
		gauge = deps.Metrics
	}
	s.hub = NewHub(deps.Library, gauge, s.logger)
	return s
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	listener, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}

	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.addr = listener.Addr().String()
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting simparse server", "address", s.addr)
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server, closing websocket clients
// first so their handlers return.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		running := s.isRunning
		s.mu.Unlock()
		if !running {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		s.hub.Close()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("simparse server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the bound listen address once running.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.route(mux, "POST /sim_parse", s.handleParse)
	s.route(mux, "POST /api/v1/lint", s.handleLint)
	s.route(mux, "GET /api/v1/library", s.handleLibrary)
	s.route(mux, "GET /api/v1/history", s.handleHistory)
	s.route(mux, "GET /ws/library", s.hub.ServeHTTP)

	probes := s.config.Telemetry.Health
	build := s.deps.Build
	mux.Handle("GET "+probes.LivenessPath, s.deps.Health.LivenessHandler())
	mux.Handle("GET "+probes.ReadinessPath, s.deps.Health.ReadinessHandler())
	mux.Handle("GET /version", health.VersionHandler(build.Version, build.Commit, build.BuildTime))

	if s.deps.Metrics != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle("GET "+s.config.Telemetry.Metrics.Path, s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.Logging(s.deps.Logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)
	return handler
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	var m middleware.HTTPMetrics
	if s.deps.Metrics != nil {
		m = s.deps.Metrics
	}
	mux.Handle(pattern, middleware.Instrument(pattern, s.deps.Tracer, m)(h))
}
