package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/model"
)

// InsertNotification inserts one notification row
func (s *Storage) InsertNotification(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, organization_id, user_id, type, message,
			related_entity_type, related_entity_id, is_read, created_at
		) VALUES (
			:id, :organization_id, :user_id, :type, :message,
			:related_entity_type, :related_entity_id, :is_read, :created_at
		)
	`

	if _, err := s.db.NamedExecContext(ctx, query, n); err != nil {
		return errors.Wrap(err, "failed to insert notification")
	}
	return nil
}

// ListNotifications returns the user's most recent notifications
func (s *Storage) ListNotifications(ctx context.Context, organizationID, userID string, limit int) ([]model.Notification, error) {
	query := `
		SELECT id, organization_id, user_id, type, message,
		       related_entity_type, related_entity_id, is_read, created_at
		FROM notifications
		WHERE organization_id = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	var out []model.Notification
	if err := s.db.SelectContext(ctx, &out, query, organizationID, userID, limit); err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}
	return out, nil
}

// CountUnreadNotifications counts the user's unread notifications
func (s *Storage) CountUnreadNotifications(ctx context.Context, organizationID, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE organization_id = $1 AND user_id = $2 AND NOT is_read
	`

	var count int
	if err := s.db.GetContext(ctx, &count, query, organizationID, userID); err != nil {
		return 0, errors.Wrap(err, "failed to count unread notifications")
	}
	return count, nil
}

// MarkNotificationsRead marks the user's notifications read. An empty id marks all of them.
func (s *Storage) MarkNotificationsRead(ctx context.Context, organizationID, userID, id string) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE organization_id = $1 AND user_id = $2 AND NOT is_read
	`
	args := []interface{}{organizationID, userID}
	if id != "" {
		query += " AND id = $3"
		args = append(args, id)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "failed to mark notifications read")
	}
	return rowsAffected(res)
}
