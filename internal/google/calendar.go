package google

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
)

const defaultEventLength = time.Hour

// SyncStore is the storage the calendar syncer needs
type SyncStore interface {
	GetAssignment(ctx context.Context, organizationID, id string) (*model.JobTechnician, error)
	GetJob(ctx context.Context, organizationID, jobID string) (*model.Job, error)
	GetUserInOrganization(ctx context.Context, organizationID, userID string) (*model.User, error)
	SetCalendarEventID(ctx context.Context, organizationID, id, eventID string) error
}

// EventInserter creates an event on a user's calendar and returns its id
type EventInserter interface {
	Insert(ctx context.Context, refreshToken, calendarID string, event *calendar.Event) (string, error)
}

// APIInserter inserts events through the Calendar v3 API
type APIInserter struct {
	oauth *OAuth
}

func NewAPIInserter(oauth *OAuth) *APIInserter {
	return &APIInserter{oauth: oauth}
}

func (i *APIInserter) Insert(ctx context.Context, refreshToken, calendarID string, event *calendar.Event) (string, error) {
	svc, err := calendar.NewService(ctx, option.WithTokenSource(i.oauth.TokenSource(ctx, refreshToken)))
	if err != nil {
		return "", errors.Wrap(err, "failed to create calendar service")
	}

	created, err := svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

// CalendarSyncer puts accepted jobs on the technician's Google Calendar
type CalendarSyncer struct {
	store      SyncStore
	inserter   EventInserter
	calendarID string
	logger     *slog.Logger
}

func NewCalendarSyncer(store SyncStore, inserter EventInserter, calendarID string, logger *slog.Logger) *CalendarSyncer {
	return &CalendarSyncer{
		store:      store,
		inserter:   inserter,
		calendarID: calendarID,
		logger:     logger,
	}
}

// Sync creates the calendar event for an accepted assignment.
// Errors wrapped in domain.RetryableError are transient; anything else will not succeed on retry.
func (s *CalendarSyncer) Sync(ctx context.Context, msg domain.CalendarSyncMessage) error {
	a, err := s.store.GetAssignment(ctx, msg.OrganizationID, msg.JobTechnicianID)
	if err != nil {
		return storeError(err, "load assignment")
	}
	if a.CalendarEventID.Valid {
		s.logger.Info("Assignment already on calendar",
			slog.String("job_technician_id", a.ID),
			slog.String("event_id", a.CalendarEventID.String),
		)
		return nil
	}
	if a.Status != domain.AssignmentStatusAccepted {
		s.logger.Info("Assignment no longer accepted, skipping calendar sync",
			slog.String("job_technician_id", a.ID),
			slog.String("status", a.Status),
		)
		return nil
	}

	tech, err := s.store.GetUserInOrganization(ctx, msg.OrganizationID, a.TechnicianID)
	if err != nil {
		return storeError(err, "load technician")
	}
	if !tech.GoogleRefreshToken.Valid || tech.GoogleRefreshToken.String == "" {
		return domain.ErrNoCalendarToken
	}

	job, err := s.store.GetJob(ctx, msg.OrganizationID, a.JobID)
	if err != nil {
		return storeError(err, "load job")
	}

	eventID, err := s.inserter.Insert(ctx, tech.GoogleRefreshToken.String, s.calendarID, buildEvent(job))
	if err != nil {
		return classifyAPIError(err)
	}

	if err := s.store.SetCalendarEventID(ctx, msg.OrganizationID, a.ID, eventID); err != nil {
		// the event exists; retrying would create a duplicate
		s.logger.Error("Calendar event created but id not stored",
			slog.String("job_technician_id", a.ID),
			slog.String("event_id", eventID),
			slog.Any("error", err),
		)
		return nil
	}

	s.logger.Info("Calendar event created",
		slog.String("job_technician_id", a.ID),
		slog.String("job_id", job.ID),
		slog.String("event_id", eventID),
	)
	return nil
}

func buildEvent(job *model.Job) *calendar.Event {
	end := job.ScheduledStart.Add(defaultEventLength)
	if job.ScheduledEnd.Valid && job.ScheduledEnd.Time.After(job.ScheduledStart) {
		end = job.ScheduledEnd.Time
	}

	return &calendar.Event{
		Summary:     job.DisplayName(),
		Description: job.Description.String,
		Start:       &calendar.EventDateTime{DateTime: job.ScheduledStart.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}
}

func storeError(err error, op string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return errors.Wrap(err, op)
	}
	return domain.NewRetryableError(errors.Wrap(err, op))
}

func classifyAPIError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return domain.NewRetryableError(err)
		}
		return errors.Wrap(err, "calendar rejected event")
	}
	// network and token refresh failures
	return domain.NewRetryableError(err)
}
