package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/expressionlab/moodmirror/internal/api"
	"github.com/expressionlab/moodmirror/internal/cleanup"
	"github.com/expressionlab/moodmirror/internal/config"
	"github.com/expressionlab/moodmirror/internal/database"
	"github.com/expressionlab/moodmirror/internal/face"
	"github.com/expressionlab/moodmirror/internal/repository"
	"github.com/expressionlab/moodmirror/internal/service"
	"github.com/expressionlab/moodmirror/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting MoodMirror API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx := context.Background()

	// Database pool
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Object storage
	store, err := newObjectStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create object store: %w", err)
	}

	// Face pipeline
	pipeline, err := face.NewPipeline(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create face pipeline: %w", err)
	}

	// Repositories
	sessionRepo := repository.NewSessionRepository(pool)
	recordRepo := repository.NewEmotionRecordRepository(pool)
	aggregateRepo := repository.NewAggregateRepository(pool)
	galleryRepo := repository.NewGalleryRepository(pool)
	jobRepo := repository.NewCleanupJobRepository(pool)
	auditRepo := repository.NewSearchAuditRepository(pool)

	// Search service
	searchService := service.NewSearchService(
		sessionRepo,
		recordRepo,
		aggregateRepo,
		galleryRepo,
		jobRepo,
		auditRepo,
		store,
		pipeline,
		logger,
		service.SearchConfig{
			SimilarityThreshold: cfg.SimilarityThreshold,
			MaxCandidates:       cfg.MaxCandidates,
			ClassifyTimeout:     cfg.ClassifyTimeout,
			ClassifyWorkers:     cfg.ClassifyWorkers,
			SessionTTL:          cfg.SessionTTL,
		},
	)

	// Session retention
	purger := cleanup.NewPurger(sessionRepo, jobRepo, store, logger)
	worker := cleanup.NewWorker(purger, sessionRepo, jobRepo, logger, cfg.SweepInterval)

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		SearchService: searchService,
		CleanupWorker: worker,
	})
	router.Setup()

	// Graceful shutdown
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}

func newObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.StorageType {
	case "s3":
		return storage.NewS3Store(ctx, cfg.AWSRegion, cfg.S3Bucket)
	case "local", "":
		return storage.NewLocalStore(cfg.StorageDir)
	default:
		return nil, fmt.Errorf("unknown storage type: %s (supported: local, s3)", cfg.StorageType)
	}
}
