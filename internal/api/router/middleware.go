package router

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/api/handler"
	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
)

// LoggerMiddleware logs HTTP requests with slog
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// Process request
		c.Next()

		// Calculate latency
		latency := time.Since(start)

		// Log request details
		logger.Info("HTTP Request",
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.String("ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
			slog.Duration("latency", latency),
			slog.Int("body_size", c.Writer.Size()),
		)

		// Log errors if any
		if len(c.Errors) > 0 {
			for _, e := range c.Errors {
				logger.Error("Request error",
					slog.String("error", e.Error()),
					slog.Uint64("type", uint64(e.Type)),
				)
			}
		}
	}
}

// CORSMiddleware handles Cross-Origin Resource Sharing
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Idempotency-Key")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

const accessTokenCookie = "sb-access-token"

// AuthMiddleware resolves the bearer token (or Supabase session cookie) to a user
func AuthMiddleware(auth handler.Authenticator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c, auth, logger); !ok {
			return
		}
		c.Next()
	}
}

// RequireRoles rejects users whose role is not listed. Must run after AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := handler.CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !domain.HasRole(user.Role, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// ScanAuthMiddleware admits the cron caller for every organization, or a
// manager-role user for their own organization only.
func ScanAuthMiddleware(cronSecret string, auth handler.Authenticator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if cronSecret != "" && token != "" &&
			subtle.ConstantTimeCompare([]byte(token), []byte(cronSecret)) == 1 {
			handler.SetScanScope(c, "")
			c.Next()
			return
		}

		user, ok := authenticate(c, auth, logger)
		if !ok {
			return
		}
		if !domain.HasRole(user.Role, domain.ManagerRoles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		handler.SetScanScope(c, user.OrganizationID)
		c.Next()
	}
}

// authenticate stores the current user on c, or aborts with 401/503
func authenticate(c *gin.Context, auth handler.Authenticator, logger *slog.Logger) (*model.User, bool) {
	token := bearerToken(c)
	if token == "" {
		if cookie, err := c.Cookie(accessTokenCookie); err == nil {
			token = cookie
		}
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}

	user, err := auth.CurrentUser(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			logger.Error("User lookup unavailable", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
			return nil, false
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}

	handler.SetCurrentUser(c, user)
	return user, true
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
