package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
	"github.com/cuongbtq/fieldservice-be/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// JobStore is the storage the job service needs
type JobStore interface {
	GetJob(ctx context.Context, organizationID, jobID string) (*model.Job, error)
	CreateJob(ctx context.Context, job *model.Job) error
	ListJobs(ctx context.Context, filter storage.JobFilter) ([]model.Job, error)
	DeleteJob(ctx context.Context, organizationID, jobID string) (bool, error)
}

// NewJob carries the fields a caller may set on job creation
type NewJob struct {
	CustomerID     string
	JobNumber      string
	Title          string
	Description    string
	ScheduledStart time.Time
	ScheduledEnd   *time.Time
}

// JobService manages jobs within the caller's organization
type JobService struct {
	store  JobStore
	logger *slog.Logger
	now    func() time.Time
}

func NewJobService(store JobStore, logger *slog.Logger) *JobService {
	return &JobService{store: store, logger: logger, now: time.Now}
}

func (s *JobService) Get(ctx context.Context, user *model.User, jobID string) (*model.Job, error) {
	return s.store.GetJob(ctx, user.OrganizationID, jobID)
}

// List returns one page of jobs and whether another page follows
func (s *JobService) List(ctx context.Context, user *model.User, status string, pageSize int, cursor *storage.JobCursor) ([]model.Job, bool, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	jobs, err := s.store.ListJobs(ctx, storage.JobFilter{
		OrganizationID: user.OrganizationID,
		Status:         status,
		PageSize:       pageSize,
		Cursor:         cursor,
	})
	if err != nil {
		return nil, false, err
	}

	hasMore := len(jobs) > pageSize
	if hasMore {
		jobs = jobs[:pageSize]
	}
	return jobs, hasMore, nil
}

// Create inserts a pending job. Only job editors may create jobs.
func (s *JobService) Create(ctx context.Context, user *model.User, in NewJob) (*model.Job, error) {
	if !domain.HasRole(user.Role, domain.JobEditorRoles) {
		return nil, domain.ErrForbidden
	}
	if in.ScheduledEnd != nil && in.ScheduledEnd.Before(in.ScheduledStart) {
		return nil, errors.Wrap(domain.ErrInvalidInput, "scheduled_end is before scheduled_start")
	}

	now := s.now()
	job := &model.Job{
		ID:             uuid.NewString(),
		OrganizationID: user.OrganizationID,
		CustomerID:     sql.NullString{String: in.CustomerID, Valid: in.CustomerID != ""},
		JobNumber:      in.JobNumber,
		Title:          sql.NullString{String: in.Title, Valid: in.Title != ""},
		Description:    sql.NullString{String: in.Description, Valid: in.Description != ""},
		ScheduledStart: in.ScheduledStart,
		Status:         domain.JobStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.ScheduledEnd != nil {
		job.ScheduledEnd = sql.NullTime{Time: *in.ScheduledEnd, Valid: true}
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Delete removes the job and its children. A job of another organization is a silent no-op.
func (s *JobService) Delete(ctx context.Context, user *model.User, jobID string) error {
	if !domain.HasRole(user.Role, domain.JobEditorRoles) {
		return domain.ErrForbidden
	}

	deleted, err := s.store.DeleteJob(ctx, user.OrganizationID, jobID)
	if err != nil {
		return err
	}
	if !deleted {
		s.logger.Warn("Delete matched no job",
			slog.String("job_id", jobID),
			slog.String("organization_id", user.OrganizationID),
		)
	}
	return nil
}
