package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/chrisbanes/tivi-sub008/internal/api"
	"github.com/chrisbanes/tivi-sub008/internal/catalog"
	"github.com/chrisbanes/tivi-sub008/internal/config"
	"github.com/chrisbanes/tivi-sub008/internal/database"
	"github.com/chrisbanes/tivi-sub008/internal/scheduler"
	"github.com/chrisbanes/tivi-sub008/internal/services/tmdb"
	"github.com/chrisbanes/tivi-sub008/internal/services/trakt"
	"github.com/chrisbanes/tivi-sub008/internal/utils"
)

func runServe() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting tivisync")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize database
	db, err := database.New(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize API clients
	traktClient, err := trakt.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Trakt client: %w", err)
	}
	logger.Info("Trakt client initialized")

	// Check if we need to authenticate
	if _, err := traktClient.GetToken(); err != nil {
		logger.Info("Trakt authentication required")
		if err := traktClient.Authenticate(context.Background()); err != nil {
			return fmt.Errorf("failed to authenticate with Trakt: %w", err)
		}
	}

	tmdbClient, err := tmdb.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize TMDb client: %w", err)
	}
	logger.Info("TMDb client initialized")

	// 5. Initialize the catalog stores
	cat := catalog.New(db, traktClient, tmdbClient, cfg.PageSize, logger)
	logger.Info("Catalog initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(cat, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server := api.NewServer(cfg, db, cat, logger)

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

	logger.Info("tivisync is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("tivisync stopped")
	return nil
}

func runAuth() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := utils.NewLogger(cfg.LogLevel)

	traktClient, err := trakt.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Trakt client: %w", err)
	}
	if err := traktClient.Authenticate(context.Background()); err != nil {
		return fmt.Errorf("failed to authenticate with Trakt: %w", err)
	}

	logger.Info("Authentication complete")
	return nil
}
