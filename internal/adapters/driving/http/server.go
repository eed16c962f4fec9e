package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duiatlas/brain-core/internal/core/domain"
	"github.com/duiatlas/brain-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// AnswerCache is an optional read-through cache for synthesized
// answers. The synthesis core never sees it; caching is a transport
// concern only.
type AnswerCache interface {
	Get(ctx context.Context, question string, qctx domain.QuestionContext) (*domain.Answer, error)
	Set(ctx context.Context, question string, qctx domain.QuestionContext, answer *domain.Answer) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	searchService driving.SearchService
	brainService  driving.BrainService

	// Infrastructure
	answerCache AnswerCache // can be nil
	db          Pinger      // PostgreSQL health check
	redisClient Pinger      // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// AdminJWTSecret guards the curated-data endpoint. Empty leaves
	// the endpoint open (single-tenant deployments behind a gateway).
	AdminJWTSecret string
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
	searchService driving.SearchService,
	brainService driving.BrainService,
	answerCache AnswerCache, // can be nil
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:        http.NewServeMux(),
		version:       cfg.Version,
		searchService: searchService,
		brainService:  brainService,
		answerCache:   answerCache,
		db:            db,
		redisClient:   redisClient,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes(cfg)
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) {
	requestID := NewRequestIDMiddleware()
	logging := NewLoggingMiddleware()
	recovery := NewRecoveryMiddleware()
	adminAuth := NewJWTMiddleware(cfg.AdminJWTSecret)

	wrap := func(h http.Handler) http.Handler {
		return requestID.Handler(logging.Handler(recovery.Handler(h)))
	}

	// Health endpoints
	s.router.Handle("GET /health", wrap(http.HandlerFunc(s.handleHealth)))
	s.router.Handle("GET /ready", wrap(http.HandlerFunc(s.handleReady)))
	s.router.Handle("GET /version", wrap(http.HandlerFunc(s.handleVersion)))

	// Retrieval endpoints
	s.router.Handle("POST /api/v1/search", wrap(http.HandlerFunc(s.handleSearch)))
	s.router.Handle("POST /api/v1/ask", wrap(http.HandlerFunc(s.handleAsk)))

	// Curated data (admin)
	s.router.Handle("GET /api/v1/curated",
		wrap(adminAuth.RequireToken(http.HandlerFunc(s.handleCurated))))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
