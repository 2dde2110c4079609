package notify

import (
	"context"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
)

// UserLookup lists active users of an organization by role
type UserLookup interface {
	ListActiveUserIDsByRole(ctx context.Context, organizationID string, roles []string) ([]string, error)
}

// RecipientResolver finds the users that should hear about organization-wide events
type RecipientResolver struct {
	users UserLookup
}

func NewRecipientResolver(users UserLookup) *RecipientResolver {
	return &RecipientResolver{users: users}
}

// Managers returns ids of the organization's active owners, admins and managers
func (r *RecipientResolver) Managers(ctx context.Context, organizationID string) ([]string, error) {
	return r.users.ListActiveUserIDsByRole(ctx, organizationID, domain.ManagerRoles)
}
