// Package notify creates in-app notifications and resolves who receives them.
package notify

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cuongbtq/fieldservice-be/internal/model"
)

// Store persists notification rows
type Store interface {
	InsertNotification(ctx context.Context, n *model.Notification) error
}

// Event is one notification fan-out request
type Event struct {
	OrganizationID    string
	Recipients        []string
	Type              string
	Message           string
	RelatedEntityType string
	RelatedEntityID   string
}

// EmitResult counts rows written and rows that failed
type EmitResult struct {
	Created int
	Failed  int
}

// Emitter writes one notification row per recipient
type Emitter struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewEmitter creates a new Emitter
func NewEmitter(store Store, logger *slog.Logger) *Emitter {
	return &Emitter{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Emit inserts a notification for every recipient. Insert failures are logged and counted,
// never returned, so callers do not need to branch on them.
func (e *Emitter) Emit(ctx context.Context, ev Event) EmitResult {
	var res EmitResult
	if len(ev.Recipients) == 0 {
		return res
	}

	createdAt := e.now()
	for _, userID := range ev.Recipients {
		n := &model.Notification{
			ID:                e.newID(),
			OrganizationID:    ev.OrganizationID,
			UserID:            userID,
			Type:              ev.Type,
			Message:           ev.Message,
			RelatedEntityType: nullString(ev.RelatedEntityType),
			RelatedEntityID:   nullString(ev.RelatedEntityID),
			CreatedAt:         createdAt,
		}

		if err := e.store.InsertNotification(ctx, n); err != nil {
			res.Failed++
			e.logger.Error("Failed to create notification",
				slog.String("organization_id", ev.OrganizationID),
				slog.String("user_id", userID),
				slog.String("type", ev.Type),
				slog.Any("error", err),
			)
			continue
		}
		res.Created++
	}

	e.logger.Debug("Notifications emitted",
		slog.String("type", ev.Type),
		slog.Int("created", res.Created),
		slog.Int("failed", res.Failed),
	)
	return res
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
