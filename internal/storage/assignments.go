package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
)

const assignmentColumns = `
	id, organization_id, job_id, technician_id, status, responded_at, calendar_event_id, created_at
`

// AssignmentResponse describes a technician's answer to an assignment
type AssignmentResponse struct {
	OrganizationID  string
	TechnicianID    string
	JobTechnicianID string
	// JobID, when set, must match the assignment's job
	JobID       string
	Status      string
	RespondedAt time.Time
	// JobStatus, when set, is written to the parent job in the same transaction
	JobStatus string
}

// RespondToAssignment stamps the technician's answer and optionally moves the parent job,
// both inside one transaction. It returns the job id of the assignment.
func (s *Storage) RespondToAssignment(ctx context.Context, resp AssignmentResponse) (string, error) {
	var jobID string

	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE job_technicians
			SET status = $1,
			    responded_at = $2
			WHERE id = $3
			  AND organization_id = $4
			  AND technician_id = $5
			RETURNING job_id
		`

		err := tx.QueryRowxContext(ctx, query,
			resp.Status, resp.RespondedAt, resp.JobTechnicianID, resp.OrganizationID, resp.TechnicianID,
		).Scan(&jobID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return errors.Wrap(err, "failed to update assignment")
		}

		if resp.JobID != "" && resp.JobID != jobID {
			return errors.Wrap(domain.ErrNotFound, "assignment is not for this job")
		}

		if resp.JobStatus == "" {
			return nil
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE jobs
			SET status = $1,
			    updated_at = NOW()
			WHERE id = $2 AND organization_id = $3
		`, resp.JobStatus, jobID, resp.OrganizationID)
		if err != nil {
			return errors.Wrap(err, "failed to update job status")
		}

		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return jobID, nil
}

// GetAssignment retrieves an assignment of the organization by id
func (s *Storage) GetAssignment(ctx context.Context, organizationID, id string) (*model.JobTechnician, error) {
	query := `SELECT ` + assignmentColumns + `
		FROM job_technicians
		WHERE id = $1 AND organization_id = $2
	`

	var a model.JobTechnician
	if err := s.db.GetContext(ctx, &a, query, id, organizationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get assignment")
	}
	return &a, nil
}

// ListAssignmentsForTechnician returns the technician's assignments, newest first
func (s *Storage) ListAssignmentsForTechnician(ctx context.Context, organizationID, technicianID string) ([]model.JobTechnician, error) {
	query := `SELECT ` + assignmentColumns + `
		FROM job_technicians
		WHERE organization_id = $1 AND technician_id = $2
		ORDER BY created_at DESC
	`

	var out []model.JobTechnician
	if err := s.db.SelectContext(ctx, &out, query, organizationID, technicianID); err != nil {
		return nil, errors.Wrap(err, "failed to list assignments")
	}
	return out, nil
}

// SetCalendarEventID records the Google Calendar event created for an assignment
func (s *Storage) SetCalendarEventID(ctx context.Context, organizationID, id, eventID string) error {
	query := `
		UPDATE job_technicians
		SET calendar_event_id = $1
		WHERE id = $2 AND organization_id = $3
	`

	if _, err := s.db.ExecContext(ctx, query, eventID, id, organizationID); err != nil {
		return errors.Wrap(err, "failed to set calendar event id")
	}
	return nil
}
