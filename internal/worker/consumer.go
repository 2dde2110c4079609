package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
)

// setupConsumer starts consuming with manual acks and the configured prefetch window
func (w *Worker) setupConsumer() (<-chan amqp.Delivery, error) {
	deliveries, err := w.queue.Consume(w.workerID, w.prefetchCount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to start consuming")
	}

	w.logger.Info("RabbitMQ consumer started",
		slog.String("consumer_tag", w.workerID),
		slog.Int("prefetch_count", w.prefetchCount),
	)
	return deliveries, nil
}

// startMessageDispatcher decodes deliveries and hands them to the worker pool
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) {
	w.logger.Info("Message dispatcher started", slog.String("worker_id", w.workerID))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return

		case <-w.stopChan:
			w.logger.Info("Message dispatcher stopped - stop requested")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			msg, err := decodeMessage(delivery.Body)
			if err != nil {
				w.logger.Error("Dropping malformed calendar sync message",
					slog.String("error", err.Error()),
					slog.String("body", string(delivery.Body)),
				)
				// malformed messages never succeed, so they are not requeued
				if nackErr := w.queue.Nack(delivery.DeliveryTag, false); nackErr != nil {
					w.logger.Error("Failed to NACK malformed message", slog.String("error", nackErr.Error()))
				}
				continue
			}

			job := &domain.CalendarSyncDelivery{CalendarSyncMessage: msg, DeliveryTag: delivery.DeliveryTag}

			select {
			case w.jobsChan <- job:
				w.logger.Debug("Message dispatched to worker pool",
					slog.String("job_technician_id", msg.JobTechnicianID),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				w.requeueOnShutdown(delivery.DeliveryTag)
				return
			case <-w.stopChan:
				w.requeueOnShutdown(delivery.DeliveryTag)
				return
			}
		}
	}
}

func (w *Worker) requeueOnShutdown(tag uint64) {
	w.logger.Info("Message dispatcher stopped while dispatching")
	if nackErr := w.queue.Nack(tag, true); nackErr != nil {
		w.logger.Error("Failed to NACK message on shutdown", slog.String("error", nackErr.Error()))
	}
}

func decodeMessage(body []byte) (domain.CalendarSyncMessage, error) {
	var msg domain.CalendarSyncMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, errors.Wrap(err, "invalid json")
	}
	if _, err := uuid.Parse(msg.OrganizationID); err != nil {
		return msg, errors.Wrap(err, "invalid organization_id")
	}
	if _, err := uuid.Parse(msg.JobTechnicianID); err != nil {
		return msg, errors.Wrap(err, "invalid job_technician_id")
	}
	return msg, nil
}
