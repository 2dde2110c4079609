package worker

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
)

// processMessage runs one calendar sync under the job timeout
func (w *Worker) processMessage(ctx context.Context, msg *domain.CalendarSyncDelivery) error {
	jobCtx := ctx
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	err := w.syncer.Sync(jobCtx, msg.CalendarSyncMessage)
	switch {
	case err == nil:
		w.logger.Info("Calendar sync processed",
			slog.String("job_technician_id", msg.JobTechnicianID),
			slog.String("worker_id", w.workerID),
		)
		return nil
	case errors.Is(err, domain.ErrNoCalendarToken):
		w.logger.Info("Technician has not connected Google Calendar, dropping message",
			slog.String("job_technician_id", msg.JobTechnicianID),
		)
	case errors.Is(jobCtx.Err(), context.DeadlineExceeded):
		return domain.NewRetryableError(err)
	}
	return err
}
