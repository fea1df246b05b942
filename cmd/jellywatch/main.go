package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/amaumene/jellywatch/internal/api"
	"github.com/amaumene/jellywatch/internal/config"
	"github.com/amaumene/jellywatch/internal/controllers"
	"github.com/amaumene/jellywatch/internal/models"
	"github.com/amaumene/jellywatch/internal/scheduler"
	"github.com/amaumene/jellywatch/internal/services/jellyfin"
	"github.com/amaumene/jellywatch/internal/services/tmdb"
	"github.com/amaumene/jellywatch/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting jellywatch")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize services
	jellyfinClient, err := jellyfin.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Jellyfin client: %w", err)
	}
	logger.Info("Jellyfin client initialized")

	tmdbClient, err := tmdb.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize TMDb client: %w", err)
	}
	logger.Info("TMDb client initialized")

	// 5. Initialize controllers
	openLibrary := func() controllers.Library {
		return jellyfinClient.NewSession()
	}
	syncCtrl := controllers.NewSyncController(db, openLibrary, logger)
	watchlistCtrl := controllers.NewWatchlistController(db, tmdbClient, syncCtrl, logger)
	logger.Info("Controllers initialized")

	// 6. Start the background sync once storage is ready
	sched := scheduler.NewScheduler(syncCtrl, cfg.SyncInterval, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// 7. Initialize HTTP server
	server := api.NewServer(cfg, db, watchlistCtrl, syncCtrl, tmdbClient, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("jellywatch is running")

	select {
	case err := <-serverErrChan:
		sched.Stop()
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		// Scheduler first: no new sync pass may begin once shutdown started
		sched.Stop()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("jellywatch stopped")
	return nil
}
