package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/fieldservice-be/internal/api/dto"
)

const oauthStateCookie = "google_oauth_state"

// GoogleHandler drives the Google Calendar connection flow
type GoogleHandler struct {
	logger    *slog.Logger
	auth      Authenticator
	oauth     GoogleOAuth
	users     UserStore
	publicURL string
}

func NewGoogleHandler(deps *Dependencies) *GoogleHandler {
	return &GoogleHandler{
		logger:    deps.Logger,
		auth:      deps.Auth,
		oauth:     deps.Google,
		users:     deps.Users,
		publicURL: strings.TrimRight(deps.PublicURL, "/"),
	}
}

func (h *GoogleHandler) enabled(c *gin.Context) bool {
	if h.oauth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google integration is not configured"})
		return false
	}
	return true
}

// Initiate handles GET /google/auth/initiate
func (h *GoogleHandler) Initiate(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/google/auth", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusFound, h.oauth.AuthURL(state))
}

// Callback handles GET /google/auth/callback
func (h *GoogleHandler) Callback(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	if reason := c.Query("error"); reason != "" {
		h.redirectError(c, reason)
		return
	}

	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		h.redirectError(c, "invalid_state")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/google/auth", "", c.Request.TLS != nil, true)

	refreshToken, err := h.oauth.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.logger.Error("Google code exchange failed", slog.String("error", err.Error()))
		h.redirectError(c, "exchange_failed")
		return
	}

	c.Redirect(http.StatusFound, h.publicURL+"/settings/google/success?refresh_token="+url.QueryEscape(refreshToken))
}

func (h *GoogleHandler) redirectError(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, h.publicURL+"/settings/google/error?error="+url.QueryEscape(reason))
}

// SaveToken handles POST /google/token
func (h *GoogleHandler) SaveToken(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req dto.GoogleTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh_token is required"})
		return
	}

	if err := h.users.SetGoogleRefreshToken(c.Request.Context(), user.OrganizationID, user.ID, req.RefreshToken); err != nil {
		respondError(c, h.logger, err, "Failed to store Google token")
		return
	}
	h.auth.Refresh(c.Request.Context(), user.ID)

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}
