package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
)

type fakeUsers struct {
	gotOrg   string
	gotRoles []string
}

func (f *fakeUsers) ListActiveUserIDsByRole(_ context.Context, organizationID string, roles []string) ([]string, error) {
	f.gotOrg = organizationID
	f.gotRoles = roles
	return []string{"owner-1", "mgr-1"}, nil
}

func TestRecipientResolver_Managers(t *testing.T) {
	users := &fakeUsers{}
	r := NewRecipientResolver(users)

	ids, err := r.Managers(context.Background(), "org-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"owner-1", "mgr-1"}, ids)
	assert.Equal(t, "org-1", users.gotOrg)
	assert.ElementsMatch(t, []string{domain.RoleOwner, domain.RoleAdmin, domain.RoleManager}, users.gotRoles)
	assert.NotContains(t, users.gotRoles, domain.RoleDispatcher)
}

type fakeInbox struct {
	limit  int
	markID string
}

func (f *fakeInbox) ListNotifications(_ context.Context, _, _ string, limit int) ([]model.Notification, error) {
	f.limit = limit
	return nil, nil
}

func (f *fakeInbox) CountUnreadNotifications(context.Context, string, string) (int, error) {
	return 7, nil
}

func (f *fakeInbox) MarkNotificationsRead(_ context.Context, _, _, id string) (int64, error) {
	f.markID = id
	return 2, nil
}

func TestInbox(t *testing.T) {
	store := &fakeInbox{}
	inbox := NewInbox(store)
	ctx := context.Background()

	_, err := inbox.List(ctx, "org-1", "u-1", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultInboxLimit, store.limit)

	_, err = inbox.List(ctx, "org-1", "u-1", 5000)
	require.NoError(t, err)
	assert.Equal(t, maxInboxLimit, store.limit)

	count, err := inbox.UnreadCount(ctx, "org-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	n, err := inbox.MarkAllRead(ctx, "org-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Empty(t, store.markID)

	require.NoError(t, inbox.MarkRead(ctx, "org-1", "u-1", "n-9"))
	assert.Equal(t, "n-9", store.markID)
}
