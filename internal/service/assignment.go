// Package service holds the write paths that span more than one table or system.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
	"github.com/cuongbtq/fieldservice-be/internal/storage"
)

// AssignmentStore is the storage the assignment service needs
type AssignmentStore interface {
	RespondToAssignment(ctx context.Context, resp storage.AssignmentResponse) (string, error)
	ListAssignmentsForTechnician(ctx context.Context, organizationID, technicianID string) ([]model.JobTechnician, error)
}

// Publisher sends a JSON message to the calendar sync queue
type Publisher interface {
	PublishJSON(ctx context.Context, v any) error
}

// AssignmentService records technicians' answers to job assignments
type AssignmentService struct {
	store     AssignmentStore
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewAssignmentService creates a new AssignmentService. publisher may be nil,
// in which case accepted assignments are not synced to calendars.
func NewAssignmentService(store AssignmentStore, publisher Publisher, logger *slog.Logger) *AssignmentService {
	return &AssignmentService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Accept marks the assignment accepted and the job accepted in one transaction,
// then queues a calendar sync. A failed publish does not fail the accept.
func (s *AssignmentService) Accept(ctx context.Context, user *model.User, jobTechnicianID, jobID string) error {
	_, err := s.store.RespondToAssignment(ctx, storage.AssignmentResponse{
		OrganizationID:  user.OrganizationID,
		TechnicianID:    user.ID,
		JobTechnicianID: jobTechnicianID,
		JobID:           jobID,
		Status:          domain.AssignmentStatusAccepted,
		RespondedAt:     s.now(),
		JobStatus:       domain.JobStatusAccepted,
	})
	if err != nil {
		return err
	}

	s.logger.Info("Assignment accepted",
		slog.String("job_technician_id", jobTechnicianID),
		slog.String("job_id", jobID),
		slog.String("technician_id", user.ID),
	)

	if s.publisher == nil {
		return nil
	}

	msg := domain.CalendarSyncMessage{
		OrganizationID:  user.OrganizationID,
		JobTechnicianID: jobTechnicianID,
	}
	if err := s.publisher.PublishJSON(ctx, msg); err != nil {
		s.logger.Error("Failed to queue calendar sync",
			slog.String("job_technician_id", jobTechnicianID),
			slog.Any("error", err),
		)
	}
	return nil
}

// Decline marks the assignment declined. The job keeps its status.
func (s *AssignmentService) Decline(ctx context.Context, user *model.User, jobTechnicianID string) error {
	_, err := s.store.RespondToAssignment(ctx, storage.AssignmentResponse{
		OrganizationID:  user.OrganizationID,
		TechnicianID:    user.ID,
		JobTechnicianID: jobTechnicianID,
		Status:          domain.AssignmentStatusDeclined,
		RespondedAt:     s.now(),
	})
	if err != nil {
		return err
	}

	s.logger.Info("Assignment declined",
		slog.String("job_technician_id", jobTechnicianID),
		slog.String("technician_id", user.ID),
	)
	return nil
}

// ListForTechnician returns the signed-in technician's assignments
func (s *AssignmentService) ListForTechnician(ctx context.Context, user *model.User) ([]model.JobTechnician, error) {
	return s.store.ListAssignmentsForTechnician(ctx, user.OrganizationID, user.ID)
}
