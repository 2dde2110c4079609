package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/model"
)

// ListVendors returns the organization's active vendors by name
func (s *Storage) ListVendors(ctx context.Context, organizationID string) ([]model.Vendor, error) {
	query := `
		SELECT id, organization_id, name, email, phone, is_active, created_at
		FROM vendors
		WHERE organization_id = $1 AND is_active
		ORDER BY name
	`

	var out []model.Vendor
	if err := s.db.SelectContext(ctx, &out, query, organizationID); err != nil {
		return nil, errors.Wrap(err, "failed to list vendors")
	}
	return out, nil
}

// CreateVendor inserts a vendor
func (s *Storage) CreateVendor(ctx context.Context, v *model.Vendor) error {
	query := `
		INSERT INTO vendors (id, organization_id, name, email, phone, is_active, created_at)
		VALUES (:id, :organization_id, :name, :email, :phone, :is_active, :created_at)
	`

	if _, err := s.db.NamedExecContext(ctx, query, v); err != nil {
		return errors.Wrap(err, "failed to create vendor")
	}
	return nil
}
