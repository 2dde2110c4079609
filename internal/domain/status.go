package domain

import "time"

// Job status constants
const (
	JobStatusPending   = "pending"
	JobStatusConfirmed = "confirmed"
	JobStatusAccepted  = "accepted"
	JobStatusCompleted = "completed"
	JobStatusCancelled = "cancelled"
	JobStatusOnHold    = "on_hold"
	JobStatusOverdue   = "overdue"
)

// Job technician assignment status constants
const (
	AssignmentStatusPending   = "pending"
	AssignmentStatusAccepted  = "accepted"
	AssignmentStatusDeclined  = "declined"
	AssignmentStatusCancelled = "cancelled"
)

// Contract status constants
const (
	ContractStatusDraft        = "draft"
	ContractStatusActive       = "active"
	ContractStatusExpiringSoon = "expiring_soon"
	ContractStatusExpired      = "expired"
	ContractStatusCancelled    = "cancelled"
)

// User roles
const (
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleDispatcher = "dispatcher"
	RoleTechnician = "technician"
)

// Notification types
const (
	NotificationJobOverdue       = "job_overdue"
	NotificationContractExpiring = "contract_expiring"
	NotificationContractExpired  = "contract_expired"
)

// Related entity types carried on notifications
const (
	EntityJob      = "job"
	EntityContract = "contract"
)

// OverdueAfter is how long past scheduled_start an active job may sit before it is marked overdue
const OverdueAfter = 48 * time.Hour

// DefaultNotifyDaysBefore is used for contracts without an explicit notice window
const DefaultNotifyDaysBefore = 30

// InactiveJobStatuses are never moved to overdue
var InactiveJobStatuses = []string{JobStatusCompleted, JobStatusCancelled, JobStatusOverdue}

// ManagerRoles receive scan notifications and may trigger scans
var ManagerRoles = []string{RoleOwner, RoleAdmin, RoleManager}

// JobEditorRoles may create and delete jobs
var JobEditorRoles = []string{RoleOwner, RoleAdmin, RoleManager, RoleDispatcher}

// HasRole reports whether role is one of allowed
func HasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
