package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/fieldservice-be/internal/api/dto"
)

type NotificationHandler struct {
	logger *slog.Logger
	inbox  Inbox
}

func NewNotificationHandler(deps *Dependencies) *NotificationHandler {
	return &NotificationHandler{logger: deps.Logger, inbox: deps.Inbox}
}

// List handles GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req dto.ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	items, err := h.inbox.List(c.Request.Context(), user.OrganizationID, user.ID, req.Limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list notifications")
		return
	}

	resp := dto.ListNotificationsResponse{Notifications: make([]dto.NotificationDTO, len(items))}
	for i, n := range items {
		resp.Notifications[i] = dto.NotificationDTO{
			ID:                n.ID,
			Type:              n.Type,
			Message:           n.Message,
			RelatedEntityType: nullableString(n.RelatedEntityType),
			RelatedEntityID:   nullableString(n.RelatedEntityID),
			IsRead:            n.IsRead,
			CreatedAt:         n.CreatedAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// UnreadCount handles GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	count, err := h.inbox.UnreadCount(c.Request.Context(), user.OrganizationID, user.ID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to count notifications")
		return
	}
	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

// MarkRead handles POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid UUID"})
		return
	}

	if err := h.inbox.MarkRead(c.Request.Context(), user.OrganizationID, user.ID, id); err != nil {
		respondError(c, h.logger, err, "Failed to mark notification read")
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

// MarkAllRead handles POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	if _, err := h.inbox.MarkAllRead(c.Request.Context(), user.OrganizationID, user.ID); err != nil {
		respondError(c, h.logger, err, "Failed to mark notifications read")
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}
