package storage

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
)

// GetUser retrieves a user by auth id. It is the one lookup not scoped by organization,
// because it is how the caller's organization is discovered.
func (s *Storage) GetUser(ctx context.Context, userID string) (*model.User, error) {
	query := `
		SELECT id, organization_id, email, full_name, role, is_active, google_refresh_token, created_at
		FROM users
		WHERE id = $1
	`

	var u model.User
	if err := s.db.GetContext(ctx, &u, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get user")
	}
	return &u, nil
}

// ListActiveUserIDsByRole returns ids of active users of the organization holding any of roles
func (s *Storage) ListActiveUserIDsByRole(ctx context.Context, organizationID string, roles []string) ([]string, error) {
	query := `
		SELECT id
		FROM users
		WHERE organization_id = $1
		  AND role = ANY($2)
		  AND is_active
		ORDER BY id
	`

	var ids []string
	if err := s.db.SelectContext(ctx, &ids, query, organizationID, pq.Array(roles)); err != nil {
		return nil, errors.Wrap(err, "failed to list users by role")
	}
	return ids, nil
}

// SetGoogleRefreshToken stores the user's Google refresh token
func (s *Storage) SetGoogleRefreshToken(ctx context.Context, organizationID, userID, token string) error {
	query := `
		UPDATE users
		SET google_refresh_token = NULLIF($1, '')
		WHERE id = $2 AND organization_id = $3
	`

	res, err := s.db.ExecContext(ctx, query, token, userID, organizationID)
	if err != nil {
		return errors.Wrap(err, "failed to store google refresh token")
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetUserInOrganization retrieves a user only if it belongs to the organization
func (s *Storage) GetUserInOrganization(ctx context.Context, organizationID, userID string) (*model.User, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.OrganizationID != organizationID {
		return nil, domain.ErrNotFound
	}
	return u, nil
}
