package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
)

// Queue is the slice of the RabbitMQ client the worker consumes through
type Queue interface {
	Consume(consumerTag string, prefetchCount int) (<-chan amqp.Delivery, error)
	Ack(tag uint64) error
	Nack(tag uint64, requeue bool) error
}

// Syncer handles one calendar sync message
type Syncer interface {
	Sync(ctx context.Context, msg domain.CalendarSyncMessage) error
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Queue         Queue
	Syncer        Syncer
	WorkerID      string
	Concurrency   int
	PrefetchCount int
	JobTimeout    time.Duration
}

// Worker consumes calendar sync messages and processes them on a goroutine pool
type Worker struct {
	logger        *slog.Logger
	queue         Queue
	syncer        Syncer
	workerID      string
	concurrency   int
	prefetchCount int
	jobTimeout    time.Duration
	jobsChan      chan *domain.CalendarSyncDelivery
	wg            sync.WaitGroup
	stopChan      chan struct{}
	stopOnce      sync.Once
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	workerID := cfg.WorkerID
	if workerID == "" {
		workerID = "worker-" + uuid.NewString()[:8]
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = concurrency
	}

	return &Worker{
		logger:        cfg.Logger,
		queue:         cfg.Queue,
		syncer:        cfg.Syncer,
		workerID:      workerID,
		concurrency:   concurrency,
		prefetchCount: prefetch,
		jobTimeout:    cfg.JobTimeout,
		jobsChan:      make(chan *domain.CalendarSyncDelivery, concurrency),
		stopChan:      make(chan struct{}),
	}
}

// Start consumes until ctx is canceled, Stop is called or the delivery channel closes.
// It returns after every worker goroutine has exited.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)

	close(w.jobsChan)
	w.wg.Wait()

	w.logger.Info("Worker stopped", slog.String("worker_id", w.workerID))
	return nil
}

// Stop signals the dispatcher and pool to exit
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker...")
		close(w.stopChan)
	})
}
