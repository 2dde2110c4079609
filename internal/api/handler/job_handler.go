package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/fieldservice-be/internal/api/dto"
	"github.com/cuongbtq/fieldservice-be/internal/model"
	"github.com/cuongbtq/fieldservice-be/internal/service"
	"github.com/cuongbtq/fieldservice-be/internal/storage"
)

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger *slog.Logger
	jobs   JobService
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger: deps.Logger,
		jobs:   deps.Jobs,
	}
}

// CreateJob handles POST /jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	start, err := time.Parse(time.RFC3339, req.ScheduledStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_start must be RFC3339"})
		return
	}

	in := service.NewJob{
		CustomerID:     req.CustomerID,
		JobNumber:      req.JobNumber,
		Title:          req.Title,
		Description:    req.Description,
		ScheduledStart: start,
	}
	if req.ScheduledEnd != nil && *req.ScheduledEnd != "" {
		end, err := time.Parse(time.RFC3339, *req.ScheduledEnd)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_end must be RFC3339"})
			return
		}
		in.ScheduledEnd = &end
	}

	job, err := h.jobs.Create(c.Request.Context(), user, in)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create job")
		return
	}

	c.JSON(http.StatusCreated, toJobDTO(job))
}

// GetJob handles GET /jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	jobID := c.Param("id")
	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid UUID"})
		return
	}

	job, err := h.jobs.Get(c.Request.Context(), user, jobID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get job")
		return
	}

	c.JSON(http.StatusOK, toJobDTO(job))
}

// ListJobs handles GET /jobs with keyset pagination
func (h *JobHandler) ListJobs(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warn("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		h.logger.Warn("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cursor"})
		return
	}

	jobs, hasMore, err := h.jobs.List(c.Request.Context(), user, req.Status, req.PageSize, cursor)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list jobs")
		return
	}

	resp := dto.ListJobsResponse{Jobs: make([]dto.JobDTO, len(jobs))}
	for i := range jobs {
		resp.Jobs[i] = toJobDTO(&jobs[i])
	}
	if hasMore {
		last := jobs[len(jobs)-1]
		resp.NextCursor = EncodeJobCursor(&storage.JobCursor{CreatedAt: last.CreatedAt, JobID: last.ID})
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteJob handles DELETE /jobs/:id/delete
func (h *JobHandler) DeleteJob(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	jobID := c.Param("id")
	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid UUID"})
		return
	}

	if err := h.jobs.Delete(c.Request.Context(), user, jobID); err != nil {
		respondError(c, h.logger, err, "Failed to delete job")
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func toJobDTO(job *model.Job) dto.JobDTO {
	return dto.JobDTO{
		ID:             job.ID,
		CustomerID:     nullableString(job.CustomerID),
		JobNumber:      job.JobNumber,
		Title:          nullableString(job.Title),
		Description:    nullableString(job.Description),
		ScheduledStart: job.ScheduledStart.Format(time.RFC3339),
		ScheduledEnd:   nullableTime(job.ScheduledEnd),
		Status:         job.Status,
		CreatedAt:      job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      job.UpdatedAt.Format(time.RFC3339),
	}
}
