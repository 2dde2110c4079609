package model

import (
	"database/sql"
	"time"
)

type Organization struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type User struct {
	ID                 string         `db:"id"`
	OrganizationID     string         `db:"organization_id"`
	Email              string         `db:"email"`
	FullName           string         `db:"full_name"`
	Role               string         `db:"role"`
	IsActive           bool           `db:"is_active"`
	GoogleRefreshToken sql.NullString `db:"google_refresh_token"`
	CreatedAt          time.Time      `db:"created_at"`
}

// GoogleConnected reports whether the user has linked a Google Calendar.
// Cached users carry only the flag, never the token itself.
func (u *User) GoogleConnected() bool {
	return u.GoogleRefreshToken.Valid
}

type Customer struct {
	ID             string         `db:"id"`
	OrganizationID string         `db:"organization_id"`
	Name           string         `db:"name"`
	Email          sql.NullString `db:"email"`
	Phone          sql.NullString `db:"phone"`
	CreatedAt      time.Time      `db:"created_at"`
}

type Job struct {
	ID             string         `db:"id"`
	OrganizationID string         `db:"organization_id"`
	CustomerID     sql.NullString `db:"customer_id"`
	JobNumber      string         `db:"job_number"`
	Title          sql.NullString `db:"title"`
	Description    sql.NullString `db:"description"`
	ScheduledStart time.Time      `db:"scheduled_start"`
	ScheduledEnd   sql.NullTime   `db:"scheduled_end"`
	Status         string         `db:"status"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// DisplayName is the title when set, otherwise the job number
func (j *Job) DisplayName() string {
	if j.Title.Valid && j.Title.String != "" {
		return j.Title.String
	}
	return j.JobNumber
}

type JobTechnician struct {
	ID              string         `db:"id"`
	OrganizationID  string         `db:"organization_id"`
	JobID           string         `db:"job_id"`
	TechnicianID    string         `db:"technician_id"`
	Status          string         `db:"status"`
	RespondedAt     sql.NullTime   `db:"responded_at"`
	CalendarEventID sql.NullString `db:"calendar_event_id"`
	CreatedAt       time.Time      `db:"created_at"`
}

type Notification struct {
	ID                string         `db:"id"`
	OrganizationID    string         `db:"organization_id"`
	UserID            string         `db:"user_id"`
	Type              string         `db:"type"`
	Message           string         `db:"message"`
	RelatedEntityType sql.NullString `db:"related_entity_type"`
	RelatedEntityID   sql.NullString `db:"related_entity_id"`
	IsRead            bool           `db:"is_read"`
	CreatedAt         time.Time      `db:"created_at"`
}

type Vendor struct {
	ID             string         `db:"id"`
	OrganizationID string         `db:"organization_id"`
	Name           string         `db:"name"`
	Email          sql.NullString `db:"email"`
	Phone          sql.NullString `db:"phone"`
	IsActive       bool           `db:"is_active"`
	CreatedAt      time.Time      `db:"created_at"`
}

type Contract struct {
	ID               string         `db:"id"`
	OrganizationID   string         `db:"organization_id"`
	CustomerID       sql.NullString `db:"customer_id"`
	ContractNumber   string         `db:"contract_number"`
	Title            sql.NullString `db:"title"`
	StartDate        time.Time      `db:"start_date"`
	EndDate          time.Time      `db:"end_date"`
	Status           string         `db:"status"`
	NotifyDaysBefore int            `db:"notify_days_before"`
	LastNotifiedAt   sql.NullTime   `db:"last_notified_at"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// DisplayName is the title when set, otherwise the contract number
func (c *Contract) DisplayName() string {
	if c.Title.Valid && c.Title.String != "" {
		return c.Title.String
	}
	return c.ContractNumber
}

type Report struct {
	ID             string    `db:"id"`
	OrganizationID string    `db:"organization_id"`
	JobID          string    `db:"job_id"`
	Title          string    `db:"title"`
	FileName       string    `db:"file_name"`
	MimeType       string    `db:"mime_type"`
	StoragePath    string    `db:"storage_path"`
	CreatedAt      time.Time `db:"created_at"`
}
