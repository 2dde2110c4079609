package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
	"github.com/cuongbtq/fieldservice-be/internal/report"
	"github.com/cuongbtq/fieldservice-be/internal/scan"
	"github.com/cuongbtq/fieldservice-be/internal/service"
	"github.com/cuongbtq/fieldservice-be/internal/storage"
)

// Authenticator resolves access tokens to users
type Authenticator interface {
	CurrentUser(ctx context.Context, token string) (*model.User, error)
	Logout(ctx context.Context, userID string)
	Refresh(ctx context.Context, userID string)
}

// ScanRunner runs the status scans
type ScanRunner interface {
	Overdue(ctx context.Context, organizationID string) (scan.Result, error)
	Contracts(ctx context.Context, organizationID string) (scan.Result, error)
}

// JobService manages jobs
type JobService interface {
	Get(ctx context.Context, user *model.User, jobID string) (*model.Job, error)
	List(ctx context.Context, user *model.User, status string, pageSize int, cursor *storage.JobCursor) ([]model.Job, bool, error)
	Create(ctx context.Context, user *model.User, in service.NewJob) (*model.Job, error)
	Delete(ctx context.Context, user *model.User, jobID string) error
}

// AssignmentService records technicians' answers
type AssignmentService interface {
	Accept(ctx context.Context, user *model.User, jobTechnicianID, jobID string) error
	Decline(ctx context.Context, user *model.User, jobTechnicianID string) error
	ListForTechnician(ctx context.Context, user *model.User) ([]model.JobTechnician, error)
}

// ReportService renders stored reports as PDF
type ReportService interface {
	PDF(ctx context.Context, organizationID, reportID string) (*report.File, error)
}

// GoogleOAuth drives the Calendar consent flow
type GoogleOAuth interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
}

// UserStore updates user rows
type UserStore interface {
	SetGoogleRefreshToken(ctx context.Context, organizationID, userID, token string) error
}

// VendorStore reads and creates vendors
type VendorStore interface {
	ListVendors(ctx context.Context, organizationID string) ([]model.Vendor, error)
	CreateVendor(ctx context.Context, v *model.Vendor) error
}

// Inbox serves a user's notifications
type Inbox interface {
	List(ctx context.Context, organizationID, userID string, limit int) ([]model.Notification, error)
	UnreadCount(ctx context.Context, organizationID, userID string) (int, error)
	MarkRead(ctx context.Context, organizationID, userID, id string) error
	MarkAllRead(ctx context.Context, organizationID, userID string) (int64, error)
}

// Dependencies holds all dependencies needed by handlers.
// Google may be nil when OAuth credentials are not configured.
type Dependencies struct {
	Logger      *slog.Logger
	ServiceName string
	PublicURL   string
	CronSecret  string
	Auth        Authenticator
	Scans       ScanRunner
	Jobs        JobService
	Assignments AssignmentService
	Reports     ReportService
	Google      GoogleOAuth
	Users       UserStore
	Vendors     VendorStore
	Inbox       Inbox
}

const (
	currentUserKey = "current_user"
	scanScopeKey   = "scan_organization_id"
)

// SetCurrentUser stores the authenticated user on the request context
func SetCurrentUser(c *gin.Context, u *model.User) {
	c.Set(currentUserKey, u)
}

// CurrentUser returns the user stored by the auth middleware
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok && u != nil
}

// SetScanScope records which organization a scan trigger may touch. Empty means all.
func SetScanScope(c *gin.Context, organizationID string) {
	c.Set(scanScopeKey, organizationID)
}

func scanScope(c *gin.Context) string {
	return c.GetString(scanScopeKey)
}

// mustUser returns the current user or writes 401
func mustUser(c *gin.Context) (*model.User, bool) {
	u, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return u, true
}

// StatusFor maps domain errors to HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the mapped status. Unmapped errors are logged and reported with fallback.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := StatusFor(err)

	var msg string
	switch status {
	case http.StatusBadRequest:
		msg = err.Error()
	case http.StatusUnauthorized:
		msg = "Unauthorized"
	case http.StatusForbidden:
		msg = "Forbidden"
	case http.StatusNotFound:
		msg = "Not found"
	case http.StatusServiceUnavailable:
		msg = "Service temporarily unavailable"
	default:
		msg = fallback
		logger.Error(fallback,
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullableTime(nt sql.NullTime) *string {
	if !nt.Valid {
		return nil
	}
	s := nt.Time.Format(time.RFC3339)
	return &s
}
