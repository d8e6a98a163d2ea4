package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hectorm/xstreamify/internal/api/handlers"
	"github.com/hectorm/xstreamify/internal/api/middleware"
	"github.com/hectorm/xstreamify/internal/config"
	"github.com/hectorm/xstreamify/internal/library"
	"github.com/hectorm/xstreamify/internal/models"
	"github.com/hectorm/xstreamify/internal/profiles"
	"github.com/hectorm/xstreamify/internal/selection"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server    *http.Server
	store     *library.Store
	db        *models.Database
	selection *selection.Manager
	profiles  *profiles.Service
	logger    *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, store *library.Store, db *models.Database, sel *selection.Manager, prof *profiles.Service, logger *logrus.Logger) *Server {
	s := &Server{
		store:     store,
		db:        db,
		selection: sel,
		profiles:  prof,
		logger:    logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Health and stats
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	statusHandler := handlers.NewStatusHandler(s.store, s.db, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	// Collection. Fixed sub-paths are registered before the id-matching
	// prefix so /bulk, /export and /import never parse as record ids.
	moviesHandler := handlers.NewMoviesHandler(s.store, s.logger)
	mux.HandleFunc("/api/movies", moviesHandler.ServeHTTP)
	mux.HandleFunc("/api/movies/", moviesHandler.ServeHTTP)

	bulkHandler := handlers.NewBulkHandler(s.store, s.selection, s.logger)
	mux.HandleFunc("/api/movies/bulk", bulkHandler.ServeHTTP)

	exportHandler := handlers.NewExportHandler(s.store, s.logger)
	mux.HandleFunc("/api/movies/export", exportHandler.ServeHTTP)

	importHandler := handlers.NewImportHandler(s.store, s.logger)
	mux.HandleFunc("/api/movies/import", importHandler.ServeHTTP)

	// View preferences
	prefsHandler := handlers.NewPrefsHandler(s.db, s.logger)
	mux.HandleFunc("/api/prefs", prefsHandler.ServeHTTP)

	// Profiles
	profilesHandler := handlers.NewProfilesHandler(s.profiles, s.logger)
	mux.HandleFunc("/api/profiles", profilesHandler.ServeHTTP)
	mux.HandleFunc("/api/profiles/", profilesHandler.ServeHTTP)

	// Search suggestions
	suggestHandler := handlers.NewSuggestHandler(s.store, s.logger)
	mux.HandleFunc("/api/search/suggest", suggestHandler.ServeHTTP)
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
