package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hectorm/xstreamify/internal/api"
	"github.com/hectorm/xstreamify/internal/config"
	"github.com/hectorm/xstreamify/internal/library"
	"github.com/hectorm/xstreamify/internal/models"
	"github.com/hectorm/xstreamify/internal/profiles"
	"github.com/hectorm/xstreamify/internal/scheduler"
	"github.com/hectorm/xstreamify/internal/selection"
	"github.com/hectorm/xstreamify/internal/transfer"
	"github.com/hectorm/xstreamify/internal/utils"
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
	logger.Info("Starting Xstreamify")
	logger.WithField("data_dir", cfg.DataDir).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Load the library
	store := library.NewStore(db, logger)
	if err := store.Load(); err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}

	// 5. Seed an empty vault if a seed file is configured
	if cfg.SeedFile != "" && store.Count() == 0 {
		if err := seedLibrary(store, cfg.SeedFile); err != nil {
			logger.WithError(err).Warn("Failed to seed library, continuing empty")
		} else {
			logger.WithField("count", store.Count()).Info("Library seeded")
		}
	}

	// 6. Initialize services
	profileSvc := profiles.NewService(db, logger)

	selMgr := selection.NewManager(store)
	store.OnRemove(selMgr.DropRemoved)
	logger.Info("Services initialized")

	// 7. Initialize backup scheduler
	sched := scheduler.NewScheduler(store, cfg.BackupDir, cfg.BackupIntervalHours, cfg.BackupKeep, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 8. Initialize HTTP server
	server := api.NewServer(cfg, store, db, selMgr, profileSvc, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 9. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Xstreamify is running")

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

	logger.Info("Xstreamify stopped")
	return nil
}

// seedLibrary imports a JSON array of movie records into an empty vault
func seedLibrary(store *library.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	records, _, err := transfer.Parse(data)
	if err != nil {
		return err
	}

	_, err = store.ImportMerge(records)
	return err
}
