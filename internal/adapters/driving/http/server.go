package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	authService     driving.AuthService
	chatService     driving.ChatService
	indexingService driving.IndexingService

	// Infrastructure
	taskQueue driven.TaskQueue
	store     Pinger // vector store backend health check (optional)
	queue     Pinger // queue backend health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	logger *slog.Logger,
	authService driving.AuthService,
	chatService driving.ChatService,
	indexingService driving.IndexingService,
	taskQueue driven.TaskQueue,
	store Pinger, // can be nil
	queue Pinger, // can be nil
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:          http.NewServeMux(),
		version:         cfg.Version,
		logger:          logger,
		authService:     authService,
		chatService:     chatService,
		indexingService: indexingService,
		taskQueue:       taskQueue,
		store:           store,
		queue:           queue,
	}

	// Recovery wraps logging so a panic is still logged as a 500 request
	handler := NewRecoveryMiddleware(logger).Handler(
		NewLoggingMiddleware(logger).Handler(s.router))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // chat responses wait on the LLM
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	// Chat endpoint (authenticated)
	s.router.Handle("POST /api/v1/chat",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleChat)))

	// Index endpoints (authenticated)
	s.router.Handle("POST /api/v1/index",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleIndexChannel)))
	s.router.Handle("GET /api/v1/index",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleIndexSummary)))
	s.router.Handle("DELETE /api/v1/index",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleClearIndex)))
	s.router.Handle("GET /api/v1/index/tasks",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListTasks)))
	s.router.Handle("GET /api/v1/index/tasks/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetTask)))

	// Video listing (authenticated)
	s.router.Handle("GET /api/v1/videos",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListVideos)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
