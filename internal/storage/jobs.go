package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
)

const jobColumns = `
	id, organization_id, customer_id, job_number, title, description,
	scheduled_start, scheduled_end, status, created_at, updated_at
`

// JobFilter narrows ListJobs results
type JobFilter struct {
	OrganizationID string
	Status         string
	PageSize       int
	Cursor         *JobCursor
}

// JobCursor is the keyset position of the last row of the previous page
type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}

// ListOverdueCandidates returns active jobs whose scheduled_start is before cutoff.
// An empty organizationID scans every organization.
func (s *Storage) ListOverdueCandidates(ctx context.Context, cutoff time.Time, organizationID string) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + `
		FROM jobs
		WHERE scheduled_start < $1
		  AND status <> ALL($2)
	`
	args := []interface{}{cutoff, pq.Array(domain.InactiveJobStatuses)}

	if organizationID != "" {
		query += " AND organization_id = $3"
		args = append(args, organizationID)
	}
	query += " ORDER BY scheduled_start ASC"

	var jobs []model.Job
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list overdue candidates")
	}
	return jobs, nil
}

// MarkJobOverdue moves a job to overdue only if it is still active.
// It reports false when another writer already moved the job out of the active set.
func (s *Storage) MarkJobOverdue(ctx context.Context, organizationID, jobID string) (bool, error) {
	query := `
		UPDATE jobs
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
		  AND organization_id = $3
		  AND status <> ALL($4)
	`

	res, err := s.db.ExecContext(ctx, query, domain.JobStatusOverdue, jobID, organizationID, pq.Array(domain.InactiveJobStatuses))
	if err != nil {
		return false, errors.Wrap(err, "failed to mark job overdue")
	}

	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetJob retrieves a job of the organization by id
func (s *Storage) GetJob(ctx context.Context, organizationID, jobID string) (*model.Job, error) {
	query := `SELECT ` + jobColumns + `
		FROM jobs
		WHERE id = $1 AND organization_id = $2
	`

	var job model.Job
	if err := s.db.GetContext(ctx, &job, query, jobID, organizationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get job")
	}
	return &job, nil
}

// CreateJob inserts a new job
func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (
			id, organization_id, customer_id, job_number, title, description,
			scheduled_start, scheduled_end, status, created_at, updated_at
		) VALUES (
			:id, :organization_id, :customer_id, :job_number, :title, :description,
			:scheduled_start, :scheduled_end, :status, :created_at, :updated_at
		)
	`

	if _, err := s.db.NamedExecContext(ctx, query, job); err != nil {
		return errors.Wrap(err, "failed to create job")
	}
	return nil
}

// ListJobs returns up to PageSize+1 jobs so the caller can tell whether another page exists
func (s *Storage) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + `
		FROM jobs
		WHERE organization_id = $1
	`
	args := []interface{}{filter.OrganizationID}
	argIdx := 2

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.JobID)
		argIdx += 2
	}

	query += " ORDER BY created_at DESC, id DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var jobs []model.Job
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list jobs")
	}
	return jobs, nil
}

// jobChildTables are removed before the job row, in this order
var jobChildTables = []string{"job_technicians", "job_equipment", "job_contacts", "job_attachments"}

// DeleteJob removes a job and its child rows in one transaction.
// A job outside the organization matches nothing and the call succeeds with deleted=false.
func (s *Storage) DeleteJob(ctx context.Context, organizationID, jobID string) (bool, error) {
	var deleted bool

	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range jobChildTables {
			query := fmt.Sprintf("DELETE FROM %s WHERE job_id = $1 AND organization_id = $2", table)
			if _, err := tx.ExecContext(ctx, query, jobID, organizationID); err != nil {
				return errors.Wrapf(err, "failed to delete %s", table)
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1 AND organization_id = $2`, jobID, organizationID)
		if err != nil {
			return errors.Wrap(err, "failed to delete job")
		}

		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	s.logger.Info("Job delete executed",
		slog.String("job_id", jobID),
		slog.String("organization_id", organizationID),
		slog.Bool("deleted", deleted),
	)
	return deleted, nil
}
