package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}

	w.logger.Info("Worker pool spawned",
		slog.String("worker_id", w.workerID),
		slog.Int("worker_count", w.concurrency),
	)
}

// workerLoop processes messages until jobsChan closes or the worker is told to stop
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)

	for {
		select {
		case <-w.stopChan:
			return

		case <-ctx.Done():
			return

		case msg, ok := <-w.jobsChan:
			if !ok {
				return
			}

			err := w.processMessage(ctx, msg)
			if err == nil {
				if ackErr := w.queue.Ack(msg.DeliveryTag); ackErr != nil {
					w.logger.Error("Failed to ACK message",
						slog.String("worker_name", workerName),
						slog.String("job_technician_id", msg.JobTechnicianID),
						slog.String("error", ackErr.Error()),
					)
				}
				continue
			}

			requeue := shouldRequeue(err)
			w.logger.Error("Calendar sync failed",
				slog.String("worker_name", workerName),
				slog.String("job_technician_id", msg.JobTechnicianID),
				slog.Bool("requeue", requeue),
				slog.String("error", err.Error()),
			)

			if nackErr := w.queue.Nack(msg.DeliveryTag, requeue); nackErr != nil {
				w.logger.Error("Failed to NACK message",
					slog.String("worker_name", workerName),
					slog.String("job_technician_id", msg.JobTechnicianID),
					slog.String("error", nackErr.Error()),
				)
			}
		}
	}
}

// shouldRequeue requeues only errors marked transient
func shouldRequeue(err error) bool {
	if errors.Is(err, domain.ErrNoCalendarToken) || errors.Is(err, domain.ErrNotFound) {
		return false
	}

	var retryableErr *domain.RetryableError
	return errors.As(err, &retryableErr)
}
