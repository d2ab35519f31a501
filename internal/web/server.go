package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/mr30303/taxiDriver/internal/store"
	"github.com/mr30303/taxiDriver/internal/web/handlers"
	"github.com/mr30303/taxiDriver/internal/web/middleware"
)

// Server serves the read-only restroom API
type Server struct {
	config     *Config
	backend    store.Backend
	httpServer *http.Server
	router     *mux.Router
	handler    http.Handler
}

// NewServer creates a new web server instance over an open store
func NewServer(config *Config, backend store.Backend) *Server {
	server := &Server{
		config:  config,
		backend: backend,
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

// Handler returns the routed handler with middleware, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	restrooms := &handlers.RestroomsHandler{Store: s.backend, Collection: s.config.Collection}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/restrooms", restrooms.List).Methods("GET")
	api.HandleFunc("/restrooms/{id:[0-9a-f]{24}}", restrooms.Get).Methods("GET")
	api.HandleFunc("/stats", restrooms.Stats).Methods("GET")

	s.router.HandleFunc("/healthz", handlers.Health).Methods("GET")

	// outside the router so preflights and unmatched paths are covered
	s.handler = middleware.RequestLogging()(middleware.CORS()(s.router))
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully and
// closes the store
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	errs := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on http://%s\n", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		s.backend.Close()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		fmt.Printf("Server shutdown error: %v\n", err)
	}

	if err := s.backend.Close(); err != nil {
		fmt.Printf("Store close error: %v\n", err)
	}

	fmt.Println("Server stopped")
	return nil
}
