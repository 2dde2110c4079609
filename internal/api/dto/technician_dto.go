package dto

// AcceptJobRequest uses the camelCase keys the web client sends
type AcceptJobRequest struct {
	JobTechnicianID string `json:"jobTechnicianId" binding:"required,uuid"`
	JobID           string `json:"jobId" binding:"required,uuid"`
}

type DeclineJobRequest struct {
	JobTechnicianID string `json:"jobTechnicianId" binding:"required,uuid"`
}

type AssignmentDTO struct {
	ID              string  `json:"id"`
	JobID           string  `json:"job_id"`
	Status          string  `json:"status"`
	RespondedAt     *string `json:"responded_at"`
	CalendarEventID *string `json:"calendar_event_id"`
	CreatedAt       string  `json:"created_at"`
}

type ListAssignmentsResponse struct {
	Assignments []AssignmentDTO `json:"assignments"`
}
