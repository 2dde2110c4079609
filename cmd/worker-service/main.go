package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cuongbtq/fieldservice-be/internal/bootstrap"
	"github.com/cuongbtq/fieldservice-be/internal/config"
	"github.com/cuongbtq/fieldservice-be/internal/google"
	"github.com/cuongbtq/fieldservice-be/internal/scan"
	"github.com/cuongbtq/fieldservice-be/internal/storage"
	"github.com/cuongbtq/fieldservice-be/internal/worker"
)

const serviceName = "fieldservice-worker"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/worker-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateWorkerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := bootstrap.InitLogger(&cfg.Logging, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	dbClient, err := bootstrap.InitPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	rabbitClient, err := bootstrap.InitRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	redisClient, err := bootstrap.InitRedis(context.Background(), &cfg.Redis, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	store := storage.NewStorage(dbClient.GetDB(), appLogger.Logger)

	// Periodic status scans across every organization
	processor := scan.NewProcessor(
		bootstrap.NewScanRunner(store, redisClient, cfg.Worker.ScanLockTTL, appLogger.Logger),
		cfg.Worker.ScanInterval,
		cfg.Worker.ScanTimeout,
		appLogger.Logger,
	)
	processor.Start()
	defer processor.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	workerDone := make(chan struct{})

	var workerInstance *worker.Worker
	if cfg.GoogleEnabled() {
		oauth := google.NewOAuth(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
		workerInstance = worker.NewWorker(&worker.Config{
			Logger:        appLogger.Logger,
			Queue:         rabbitClient,
			Syncer:        google.NewCalendarSyncer(store, google.NewAPIInserter(oauth), cfg.Google.CalendarID, appLogger.Logger),
			Concurrency:   cfg.Worker.Concurrency,
			PrefetchCount: cfg.RabbitMQ.Consumer.PrefetchCount,
			JobTimeout:    cfg.Worker.JobTimeout,
		})

		go func() {
			defer close(workerDone)
			if err := workerInstance.Start(ctx); err != nil {
				errChan <- err
			}
		}()
	} else {
		appLogger.Warn("Google OAuth credentials not set, calendar sync consumer disabled")
	}

	appLogger.Info("Worker service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		appLogger.Error("Worker error",
			slog.Any("error", err),
		)
		return err
	}

	cancel()

	if workerInstance != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
		defer shutdownCancel()

		workerInstance.Stop()

		select {
		case <-workerDone:
			appLogger.Info("Worker stopped gracefully")
		case <-shutdownCtx.Done():
			appLogger.Warn("Worker shutdown timeout exceeded, forcing exit")
		}
	}

	appLogger.Info("Worker service shutdown complete")
	return nil
}
