package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
	"github.com/cuongbtq/fieldservice-be/internal/notify"
)

// JobStore is the storage the overdue scan needs
type JobStore interface {
	ListOverdueCandidates(ctx context.Context, cutoff time.Time, organizationID string) ([]model.Job, error)
	MarkJobOverdue(ctx context.Context, organizationID, jobID string) (bool, error)
}

// OverdueScanner moves stale active jobs to overdue and tells managers about it
type OverdueScanner struct {
	jobs       JobStore
	recipients Recipients
	notifier   Notifier
	logger     *slog.Logger
}

func NewOverdueScanner(jobs JobStore, recipients Recipients, notifier Notifier, logger *slog.Logger) *OverdueScanner {
	return &OverdueScanner{
		jobs:       jobs,
		recipients: recipients,
		notifier:   notifier,
		logger:     logger,
	}
}

// Scan checks every active job whose scheduled start is more than two days before now.
// An empty organizationID scans all organizations. Per-job failures are recorded and skipped;
// only a failure to list candidates is returned.
func (s *OverdueScanner) Scan(ctx context.Context, now time.Time, organizationID string) (Result, error) {
	var res Result

	jobs, err := s.jobs.ListOverdueCandidates(ctx, now.Add(-domain.OverdueAfter), organizationID)
	if err != nil {
		return res, errors.Wrap(err, "overdue scan")
	}
	res.Checked = len(jobs)

	cache := newRecipientCache(s.recipients)
	for i := range jobs {
		job := &jobs[i]
		item := ItemResult{ID: job.ID, OrganizationID: job.OrganizationID}

		updated, err := s.jobs.MarkJobOverdue(ctx, job.OrganizationID, job.ID)
		switch {
		case err != nil:
			item.Outcome = OutcomeFailed
			item.Err = err
			s.logger.Error("Failed to mark job overdue",
				slog.String("job_id", job.ID),
				slog.String("organization_id", job.OrganizationID),
				slog.Any("error", err),
			)
		case !updated:
			item.Outcome = OutcomeUnchanged
		default:
			item.Outcome = OutcomeUpdated
			notifyManagers(ctx, cache, s.notifier, s.logger, notify.Event{
				OrganizationID:    job.OrganizationID,
				Type:              domain.NotificationJobOverdue,
				Message:           fmt.Sprintf("Job \"%s\" is now overdue", job.DisplayName()),
				RelatedEntityType: domain.EntityJob,
				RelatedEntityID:   job.ID,
			}, &item)
		}

		res.record(item)
	}

	s.logger.Info("Overdue scan finished",
		slog.String("organization_id", organizationID),
		slog.Int("checked", res.Checked),
		slog.Int("updated", res.Updated),
		slog.Int("failed", res.Failed),
	)
	return res, nil
}
