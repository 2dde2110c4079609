package notify

import (
	"context"

	"github.com/cuongbtq/fieldservice-be/internal/model"
)

const (
	defaultInboxLimit = 50
	maxInboxLimit     = 200
)

// InboxStore reads and updates a user's notifications
type InboxStore interface {
	ListNotifications(ctx context.Context, organizationID, userID string, limit int) ([]model.Notification, error)
	CountUnreadNotifications(ctx context.Context, organizationID, userID string) (int, error)
	MarkNotificationsRead(ctx context.Context, organizationID, userID, id string) (int64, error)
}

// Inbox serves the signed-in user's notifications
type Inbox struct {
	store InboxStore
}

func NewInbox(store InboxStore) *Inbox {
	return &Inbox{store: store}
}

// List returns the newest notifications, clamping limit to a sane window
func (i *Inbox) List(ctx context.Context, organizationID, userID string, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = defaultInboxLimit
	}
	if limit > maxInboxLimit {
		limit = maxInboxLimit
	}
	return i.store.ListNotifications(ctx, organizationID, userID, limit)
}

func (i *Inbox) UnreadCount(ctx context.Context, organizationID, userID string) (int, error) {
	return i.store.CountUnreadNotifications(ctx, organizationID, userID)
}

// MarkRead marks one notification read. Unknown ids are not an error.
func (i *Inbox) MarkRead(ctx context.Context, organizationID, userID, id string) error {
	_, err := i.store.MarkNotificationsRead(ctx, organizationID, userID, id)
	return err
}

func (i *Inbox) MarkAllRead(ctx context.Context, organizationID, userID string) (int64, error) {
	return i.store.MarkNotificationsRead(ctx, organizationID, userID, "")
}
