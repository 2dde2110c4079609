package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/fieldservice-be/internal/api/dto"
)

// UserHandler serves the signed-in user's session
type UserHandler struct {
	logger *slog.Logger
	auth   Authenticator
}

func NewUserHandler(deps *Dependencies) *UserHandler {
	return &UserHandler{logger: deps.Logger, auth: deps.Auth}
}

// Current handles GET /user/current
func (h *UserHandler) Current(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.UserDTO{
		ID:              user.ID,
		OrganizationID:  user.OrganizationID,
		Email:           user.Email,
		FullName:        user.FullName,
		Role:            user.Role,
		GoogleConnected: user.GoogleConnected(),
	})
}

// Logout handles POST /auth/logout. The token itself is revoked by Supabase;
// this only drops the cached user lookup.
func (h *UserHandler) Logout(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	h.auth.Logout(c.Request.Context(), user.ID)
	h.logger.Info("User logged out", slog.String("user_id", user.ID))
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}
