package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chrisbanes/tivi-sub008/internal/api/handlers"
	"github.com/chrisbanes/tivi-sub008/internal/api/middleware"
	"github.com/chrisbanes/tivi-sub008/internal/catalog"
	"github.com/chrisbanes/tivi-sub008/internal/config"
	"github.com/chrisbanes/tivi-sub008/internal/database"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	db      *database.Database
	catalog *catalog.Catalog
	logger  *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *database.Database, cat *catalog.Catalog, logger *logrus.Logger) *Server {
	s := &Server{
		db:      db,
		catalog: cat,
		logger:  logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	// Status endpoint
	statusHandler := handlers.NewStatusHandler(s.db, s.catalog, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Catalog endpoints
	catalogHandler := handlers.NewCatalogHandler(s.catalog, s.logger)
	mux.HandleFunc("GET /api/shows/trending", catalogHandler.Trending)
	mux.HandleFunc("GET /api/shows/popular", catalogHandler.Popular)
	mux.HandleFunc("GET /api/shows/anticipated", catalogHandler.Anticipated)
	mux.HandleFunc("GET /api/shows/recommended", catalogHandler.Recommended)
	mux.HandleFunc("GET /api/shows/watched", catalogHandler.Watched)
	mux.HandleFunc("GET /api/shows/followed", catalogHandler.Followed)
	mux.HandleFunc("GET /api/shows/{id}", catalogHandler.Show)
	mux.HandleFunc("GET /api/shows/{id}/related", catalogHandler.Related)
	mux.HandleFunc("GET /api/shows/{id}/images", catalogHandler.Images)
	mux.HandleFunc("GET /api/shows/{id}/seasons", catalogHandler.Seasons)
	mux.HandleFunc("GET /api/shows/{id}/watches", catalogHandler.Watches)
	mux.HandleFunc("GET /api/search", catalogHandler.Search)
	mux.HandleFunc("POST /api/refresh/{collection}", catalogHandler.Refresh)
	mux.HandleFunc("POST /api/library/clear", catalogHandler.ClearLibrary)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
