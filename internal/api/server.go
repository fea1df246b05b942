package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/jellywatch/internal/api/handlers"
	"github.com/amaumene/jellywatch/internal/api/middleware"
	"github.com/amaumene/jellywatch/internal/config"
	"github.com/amaumene/jellywatch/internal/controllers"
	"github.com/amaumene/jellywatch/internal/models"
	"github.com/amaumene/jellywatch/internal/services/tmdb"
)

// Server represents the HTTP server
type Server struct {
	server        *http.Server
	db            *models.Database
	watchlistCtrl *controllers.WatchlistController
	syncCtrl      *controllers.SyncController
	tmdb          *tmdb.Client
	logger        *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *models.Database, watchlistCtrl *controllers.WatchlistController, syncCtrl *controllers.SyncController, tmdbClient *tmdb.Client, logger *logrus.Logger) *Server {
	s := &Server{
		db:            db,
		watchlistCtrl: watchlistCtrl,
		syncCtrl:      syncCtrl,
		tmdb:          tmdbClient,
		logger:        logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux, cfg)

	allowedOrigins := []string{"*"}
	if cfg.AllowedOrigin != "" {
		allowedOrigins = []string{cfg.AllowedOrigin}
	}
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(corsHandler(mux), logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux, cfg *config.Config) {
	auth := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h, cfg.JWTSecret, s.logger)
	}

	// Authentication
	authHandler := handlers.NewAuthHandler(cfg.LoginPassword, cfg.JWTSecret, s.logger)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/auth/check", auth(authHandler.Check))

	// Watchlist
	watchlistHandler := handlers.NewWatchlistHandler(s.watchlistCtrl, s.logger)
	mux.Handle("GET /api/watchlist", auth(watchlistHandler.List))
	mux.Handle("POST /api/watchlist", auth(watchlistHandler.Add))
	mux.Handle("DELETE /api/watchlist/{id}", auth(watchlistHandler.Remove))
	mux.Handle("POST /api/watchlist/{id}/toggle-watched", auth(watchlistHandler.ToggleWatched))
	mux.Handle("POST /api/watchlist/backfill-genres", auth(watchlistHandler.BackfillGenres))

	// Queue
	mux.Handle("GET /api/watchlist/queue", auth(watchlistHandler.Queue))
	mux.Handle("POST /api/watchlist/{id}/add-to-queue", auth(watchlistHandler.AddToQueue))
	mux.Handle("POST /api/watchlist/{id}/remove-from-queue", auth(watchlistHandler.RemoveFromQueue))
	mux.Handle("POST /api/watchlist/reorder-queue", auth(watchlistHandler.ReorderQueue))

	// On-demand sync
	syncHandler := handlers.NewSyncHandler(s.syncCtrl, s.logger)
	mux.Handle("POST /api/sync", auth(syncHandler.Trigger))

	// Metadata search
	searchHandler := handlers.NewSearchHandler(s.tmdb, s.logger)
	mux.HandleFunc("GET /api/search", searchHandler.Search)
	mux.Handle("GET /api/genres", auth(searchHandler.Genres))

	// Frontend config
	configHandler := handlers.NewConfigHandler(cfg)
	mux.HandleFunc("GET /api/config", configHandler.ServeHTTP)

	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("GET /health", healthHandler.ServeHTTP)

	// Status endpoint
	statusHandler := handlers.NewStatusHandler(s.db, s.logger)
	mux.HandleFunc("GET /status", statusHandler.ServeHTTP)

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// SPA catch-all, must stay last
	spaHandler := handlers.NewSPAHandler(cfg.WebDir, s.logger)
	mux.Handle("/", spaHandler)
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
