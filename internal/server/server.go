package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fitseek/fitseek/internal/config"
	"github.com/fitseek/fitseek/internal/search"
)

// Server exposes the streaming search API over HTTP.
type Server struct {
	config       *config.Config
	orchestrator *search.Orchestrator
	registry     *search.Registry
	httpServer   *http.Server
	logger       *log.Logger
	shutdownOnce sync.Once
}

// New creates an API server around an orchestrator.
func New(cfg *config.Config, orchestrator *search.Orchestrator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[server] ", log.LstdFlags)
	}
	return &Server{
		config:       cfg,
		orchestrator: orchestrator,
		registry:     orchestrator.Registry(),
		logger:       logger,
	}
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mux := s.setupRoutes()
	// WriteTimeout stays zero by default: the stream endpoint holds the
	// response open for the lifetime of a search.
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.ServerHost, s.config.ServerPort),
		Handler:      s.loggingMiddleware(mux),
		ReadTimeout:  s.config.ServerReadTimeout,
		WriteTimeout: s.config.ServerWriteTimeout,
		IdleTimeout:  s.config.ServerIdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting search API server at http://%s:%d", s.config.ServerHost, s.config.ServerPort)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		return s.shutdown()
	case err := <-errChan:
		return err
	}
}

// shutdown performs graceful shutdown
func (s *Server) shutdown() error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}
	})
	return shutdownErr
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/search/stream", s.handleSearchStream)
	mux.HandleFunc("/api/search/cancel", s.handleSearchCancel)
	mux.HandleFunc("/api/status", s.handleStatus)

	return mux
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip completion logging for the stream endpoint (held open for
		// the whole search, duration is not useful).
		streaming := strings.HasPrefix(r.URL.Path, "/api/search/stream")

		s.logger.Printf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)

		if !streaming {
			s.logger.Printf("%s %s completed in %v", r.Method, r.URL.Path, time.Since(start))
		}
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("Failed to encode JSON response: %v", err)
	}
}
