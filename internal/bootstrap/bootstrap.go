// Package bootstrap builds the clients and components shared by the service binaries.
package bootstrap

import (
	"context"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cuongbtq/fieldservice-be/internal/config"
	"github.com/cuongbtq/fieldservice-be/internal/notify"
	"github.com/cuongbtq/fieldservice-be/internal/scan"
	"github.com/cuongbtq/fieldservice-be/internal/storage"
	"github.com/cuongbtq/fieldservice-be/shared/logger"
	"github.com/cuongbtq/fieldservice-be/shared/postgresql"
	"github.com/cuongbtq/fieldservice-be/shared/rabbitmq"
	"github.com/cuongbtq/fieldservice-be/shared/redis"
)

const scanLockPrefix = "fieldservice:lock:"

// InitLogger initializes and configures the application logger
func InitLogger(cfg *config.LoggingConfig, service string) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
		Service:      service,
	})
}

// InitPostgreSQL initializes the PostgreSQL database client
func InitPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	return postgresql.NewClient(PostgreSQLConfig(cfg), logger)
}

// PostgreSQLConfig maps the yaml database section onto the client config
func PostgreSQLConfig(cfg *config.DatabaseConfig) *postgresql.Config {
	return &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
}

// InitRabbitMQ initializes the RabbitMQ client
func InitRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	return rabbitmq.NewClient(RabbitMQConfig(cfg), logger)
}

// RabbitMQConfig maps the yaml rabbitmq section onto the client config
func RabbitMQConfig(cfg *config.RabbitMQConfig) *rabbitmq.Config {
	return &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}
}

// InitRedis initializes the Redis client
func InitRedis(ctx context.Context, cfg *config.RedisConfig, logger *slog.Logger) (*goredis.Client, error) {
	return redis.NewClient(ctx, &redis.Config{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, logger)
}

// NewScanRunner wires both status scans to storage, the notification emitter and a Redis run lock
func NewScanRunner(store *storage.Storage, rdb goredis.UniversalClient, lockTTL time.Duration, logger *slog.Logger) *scan.Runner {
	recipients := notify.NewRecipientResolver(store)
	emitter := notify.NewEmitter(store, logger)

	return scan.NewRunner(
		scan.NewOverdueScanner(store, recipients, emitter, logger),
		scan.NewContractScanner(store, recipients, emitter, logger),
		scan.NewRedisLocker(rdb, scanLockPrefix, logger),
		lockTTL,
		logger,
	)
}
