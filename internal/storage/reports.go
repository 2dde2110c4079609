package storage

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
)

// GetReport retrieves a report of the organization by id
func (s *Storage) GetReport(ctx context.Context, organizationID, reportID string) (*model.Report, error) {
	query := `
		SELECT id, organization_id, job_id, title, file_name, mime_type, storage_path, created_at
		FROM reports
		WHERE id = $1 AND organization_id = $2
	`

	var r model.Report
	if err := s.db.GetContext(ctx, &r, query, reportID, organizationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get report")
	}
	return &r, nil
}
