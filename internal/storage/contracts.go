package storage

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
)

var scannableContractStatuses = []string{domain.ContractStatusActive, domain.ContractStatusExpiringSoon}

// ListContractCandidates returns active and expiring contracts.
// An empty organizationID scans every organization.
func (s *Storage) ListContractCandidates(ctx context.Context, organizationID string) ([]model.Contract, error) {
	query := `
		SELECT id, organization_id, customer_id, contract_number, title, start_date, end_date,
		       status, notify_days_before, last_notified_at, created_at, updated_at
		FROM contracts
		WHERE status = ANY($1)
	`
	args := []interface{}{pq.Array(scannableContractStatuses)}

	if organizationID != "" {
		query += " AND organization_id = $2"
		args = append(args, organizationID)
	}
	query += " ORDER BY end_date ASC"

	var out []model.Contract
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list contract candidates")
	}
	return out, nil
}

// MarkContractExpired moves an active or expiring contract to expired.
// It reports false when the contract already left those statuses.
func (s *Storage) MarkContractExpired(ctx context.Context, organizationID, contractID string, now time.Time) (bool, error) {
	query := `
		UPDATE contracts
		SET status = $1,
		    last_notified_at = $2,
		    updated_at = NOW()
		WHERE id = $3
		  AND organization_id = $4
		  AND status = ANY($5)
	`

	res, err := s.db.ExecContext(ctx, query,
		domain.ContractStatusExpired, now, contractID, organizationID, pq.Array(scannableContractStatuses),
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to mark contract expired")
	}

	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkContractExpiring moves an active contract to expiring_soon.
// It reports false when the contract is no longer active.
func (s *Storage) MarkContractExpiring(ctx context.Context, organizationID, contractID string, now time.Time) (bool, error) {
	query := `
		UPDATE contracts
		SET status = $1,
		    last_notified_at = $2,
		    updated_at = NOW()
		WHERE id = $3
		  AND organization_id = $4
		  AND status = $5
	`

	res, err := s.db.ExecContext(ctx, query,
		domain.ContractStatusExpiringSoon, now, contractID, organizationID, domain.ContractStatusActive,
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to mark contract expiring")
	}

	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
