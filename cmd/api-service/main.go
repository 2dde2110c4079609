package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/cuongbtq/fieldservice-be/internal/api/handler"
	"github.com/cuongbtq/fieldservice-be/internal/api/router"
	"github.com/cuongbtq/fieldservice-be/internal/auth"
	"github.com/cuongbtq/fieldservice-be/internal/bootstrap"
	"github.com/cuongbtq/fieldservice-be/internal/config"
	"github.com/cuongbtq/fieldservice-be/internal/google"
	"github.com/cuongbtq/fieldservice-be/internal/notify"
	"github.com/cuongbtq/fieldservice-be/internal/report"
	"github.com/cuongbtq/fieldservice-be/internal/service"
	"github.com/cuongbtq/fieldservice-be/internal/storage"
	"github.com/cuongbtq/fieldservice-be/shared/rabbitmq"
)

const serviceName = "fieldservice-api"

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

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := bootstrap.InitLogger(&cfg.Logging, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting API service",
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

	r := initRouter(cfg, appLogger.Logger, storage.NewStorage(dbClient.GetDB(), appLogger.Logger), redisClient, rabbitClient)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	appLogger.Info("Starting HTTP server",
		slog.String("address", addr),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...", slog.String("signal", sig.String()))
	case err := <-serverErr:
		appLogger.Error("Server failed", slog.Any("error", err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initRouter builds the services and mounts them on the Gin router
func initRouter(cfg *config.Config, logger *slog.Logger, store *storage.Storage, rdb *goredis.Client, rabbitClient *rabbitmq.Client) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	authenticator := auth.NewAuthenticator(
		auth.NewVerifier(cfg.Auth.JWTSecret),
		store,
		auth.NewRedisCache(rdb, cfg.Auth.SessionTTL, logger),
		logger,
	)

	deps := &handler.Dependencies{
		Logger:      logger,
		ServiceName: serviceName,
		PublicURL:   cfg.App.PublicURL,
		CronSecret:  cfg.Auth.CronSecret,
		Auth:        authenticator,
		Scans:       bootstrap.NewScanRunner(store, rdb, cfg.Worker.ScanLockTTL, logger),
		Jobs:        service.NewJobService(store, logger),
		Assignments: service.NewAssignmentService(store, rabbitClient, logger),
		Reports:     report.NewService(store, report.NewDirStore(cfg.Reports.StorageDir), logger),
		Users:       store,
		Vendors:     store,
		Inbox:       notify.NewInbox(store),
	}

	if cfg.GoogleEnabled() {
		deps.Google = google.NewOAuth(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	} else {
		logger.Warn("Google OAuth credentials not set, calendar connection disabled")
	}

	return router.SetupRouter(deps)
}
