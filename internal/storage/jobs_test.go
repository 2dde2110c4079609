package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
)

var jobRowColumns = []string{
	"id", "organization_id", "customer_id", "job_number", "title", "description",
	"scheduled_start", "scheduled_end", "status", "created_at", "updated_at",
}

func TestStorage_ListOverdueCandidates(t *testing.T) {
	s, mock := newMockStorage(t)
	cutoff := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	start := cutoff.Add(-24 * time.Hour)

	mock.ExpectQuery(q("AND organization_id = $3 ORDER BY scheduled_start ASC")).
		WithArgs(cutoff, sqlmock.AnyArg(), orgID).
		WillReturnRows(sqlmock.NewRows(jobRowColumns).
			AddRow(jobID, orgID, nil, "J-1001", "Boiler service", nil, start, nil, domain.JobStatusPending, start, start))

	jobs, err := s.ListOverdueCandidates(context.Background(), cutoff, orgID)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "J-1001", jobs[0].JobNumber)
	assert.Equal(t, "Boiler service", jobs[0].DisplayName())
	assert.False(t, jobs[0].CustomerID.Valid)
}

func TestStorage_ListOverdueCandidatesAllOrganizations(t *testing.T) {
	s, mock := newMockStorage(t)
	cutoff := time.Now()

	mock.ExpectQuery(q("WHERE scheduled_start < $1")).
		WithArgs(cutoff, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(jobRowColumns))

	jobs, err := s.ListOverdueCandidates(context.Background(), cutoff, "")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestStorage_MarkJobOverdue(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		err      error
		want     bool
		wantErr  bool
	}{
		{name: "row transitioned", affected: 1, want: true},
		{name: "row already left the active set", affected: 0, want: false},
		{name: "database error", err: errors.New("connection reset"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStorage(t)

			exp := mock.ExpectExec(q("UPDATE jobs")).
				WithArgs(domain.JobStatusOverdue, jobID, orgID, sqlmock.AnyArg())
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			ok, err := s.MarkJobOverdue(context.Background(), orgID, jobID)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to mark job overdue")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestStorage_GetJobNotFound(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(q("FROM jobs")).
		WithArgs(jobID, otherID).
		WillReturnRows(sqlmock.NewRows(jobRowColumns))

	_, err := s.GetJob(context.Background(), otherID, jobID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStorage_ListJobsWithCursor(t *testing.T) {
	s, mock := newMockStorage(t)
	cursorTime := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("AND status = $2 AND (created_at, id) < ($3, $4) ORDER BY created_at DESC, id DESC LIMIT $5")).
		WithArgs(orgID, domain.JobStatusPending, cursorTime, jobID, 21).
		WillReturnRows(sqlmock.NewRows(jobRowColumns))

	_, err := s.ListJobs(context.Background(), JobFilter{
		OrganizationID: orgID,
		Status:         domain.JobStatusPending,
		PageSize:       20,
		Cursor:         &JobCursor{CreatedAt: cursorTime, JobID: jobID},
	})
	require.NoError(t, err)
}

func TestStorage_DeleteJob(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	for _, table := range []string{"job_technicians", "job_equipment", "job_contacts", "job_attachments"} {
		mock.ExpectExec(q("DELETE FROM "+table+" WHERE job_id = $1 AND organization_id = $2")).
			WithArgs(jobID, orgID).
			WillReturnResult(sqlmock.NewResult(0, 2))
	}
	mock.ExpectExec(q("DELETE FROM jobs WHERE id = $1 AND organization_id = $2")).
		WithArgs(jobID, orgID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, err := s.DeleteJob(context.Background(), orgID, jobID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestStorage_DeleteJobOtherOrganizationIsNoop(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	for range jobChildTables {
		mock.ExpectExec(q("DELETE FROM")).
			WithArgs(jobID, otherID).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(q("DELETE FROM jobs")).
		WithArgs(jobID, otherID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	deleted, err := s.DeleteJob(context.Background(), otherID, jobID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestStorage_DeleteJobRollsBackOnChildFailure(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM job_technicians")).
		WithArgs(jobID, orgID).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	_, err := s.DeleteJob(context.Background(), orgID, jobID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete job_technicians")
}
