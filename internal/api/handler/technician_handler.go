package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/fieldservice-be/internal/api/dto"
)

// TechnicianHandler handles a technician's responses to job assignments
type TechnicianHandler struct {
	logger      *slog.Logger
	assignments AssignmentService
}

func NewTechnicianHandler(deps *Dependencies) *TechnicianHandler {
	return &TechnicianHandler{logger: deps.Logger, assignments: deps.Assignments}
}

// AcceptJob handles POST /technician/accept-job
func (h *TechnicianHandler) AcceptJob(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req dto.AcceptJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "jobTechnicianId and jobId are required"})
		return
	}

	if err := h.assignments.Accept(c.Request.Context(), user, req.JobTechnicianID, req.JobID); err != nil {
		respondError(c, h.logger, err, "Failed to accept job")
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

// DeclineJob handles POST /technician/decline-job
func (h *TechnicianHandler) DeclineJob(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req dto.DeclineJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "jobTechnicianId is required"})
		return
	}

	if err := h.assignments.Decline(c.Request.Context(), user, req.JobTechnicianID); err != nil {
		respondError(c, h.logger, err, "Failed to decline job")
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

// ListJobs handles GET /technician/jobs
func (h *TechnicianHandler) ListJobs(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	assignments, err := h.assignments.ListForTechnician(c.Request.Context(), user)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list assignments")
		return
	}

	resp := dto.ListAssignmentsResponse{Assignments: make([]dto.AssignmentDTO, len(assignments))}
	for i, a := range assignments {
		resp.Assignments[i] = dto.AssignmentDTO{
			ID:              a.ID,
			JobID:           a.JobID,
			Status:          a.Status,
			RespondedAt:     nullableTime(a.RespondedAt),
			CalendarEventID: nullableString(a.CalendarEventID),
			CreatedAt:       a.CreatedAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, resp)
}
