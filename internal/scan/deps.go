package scan

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/fieldservice-be/internal/notify"
)

// Recipients resolves who is notified for an organization
type Recipients interface {
	Managers(ctx context.Context, organizationID string) ([]string, error)
}

// Notifier fans a notification out to recipients
type Notifier interface {
	Emit(ctx context.Context, ev notify.Event) notify.EmitResult
}

// recipientCache resolves managers once per organization within a single scan
type recipientCache struct {
	resolver Recipients
	byOrg    map[string][]string
}

func newRecipientCache(resolver Recipients) *recipientCache {
	return &recipientCache{resolver: resolver, byOrg: make(map[string][]string)}
}

func (c *recipientCache) managers(ctx context.Context, organizationID string) ([]string, error) {
	if ids, ok := c.byOrg[organizationID]; ok {
		return ids, nil
	}
	ids, err := c.resolver.Managers(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	c.byOrg[organizationID] = ids
	return ids, nil
}

// notifyManagers emits ev to the organization's managers and fills in the item
func notifyManagers(ctx context.Context, cache *recipientCache, notifier Notifier, logger *slog.Logger, ev notify.Event, item *ItemResult) {
	managers, err := cache.managers(ctx, ev.OrganizationID)
	if err != nil {
		item.Err = err
		logger.Error("Failed to resolve notification recipients",
			slog.String("organization_id", ev.OrganizationID),
			slog.String("related_entity_id", ev.RelatedEntityID),
			slog.Any("error", err),
		)
		return
	}

	ev.Recipients = managers
	item.Notified = notifier.Emit(ctx, ev).Created
}
