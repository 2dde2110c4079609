package dto

type CreateJobRequest struct {
	CustomerID     string  `json:"customer_id" binding:"omitempty,uuid"`
	JobNumber      string  `json:"job_number" binding:"required,max=64"`
	Title          string  `json:"title" binding:"max=255"`
	Description    string  `json:"description"`
	ScheduledStart string  `json:"scheduled_start" binding:"required"`
	ScheduledEnd   *string `json:"scheduled_end"`
}

type ListJobsRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending confirmed accepted completed cancelled on_hold overdue"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListJobsResponse struct {
	Jobs       []JobDTO `json:"jobs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

type JobDTO struct {
	ID             string  `json:"id"`
	CustomerID     *string `json:"customer_id"`
	JobNumber      string  `json:"job_number"`
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	ScheduledStart string  `json:"scheduled_start"`
	ScheduledEnd   *string `json:"scheduled_end"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}
