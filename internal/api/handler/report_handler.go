package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportHandler streams stored job reports
type ReportHandler struct {
	logger  *slog.Logger
	reports ReportService
}

func NewReportHandler(deps *Dependencies) *ReportHandler {
	return &ReportHandler{logger: deps.Logger, reports: deps.Reports}
}

// View handles GET /reports/:id/view
func (h *ReportHandler) View(c *gin.Context) {
	h.serve(c, "inline")
}

// ViewPDF handles GET /reports/:id/view-pdf
func (h *ReportHandler) ViewPDF(c *gin.Context) {
	h.serve(c, "inline")
}

// Download handles GET /reports/:id/download
func (h *ReportHandler) Download(c *gin.Context) {
	h.serve(c, "attachment")
}

// serve streams the report as PDF; stored images are converted to a single page
func (h *ReportHandler) serve(c *gin.Context, disposition string) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	reportID := c.Param("id")
	if _, err := uuid.Parse(reportID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid UUID"})
		return
	}

	f, err := h.reports.PDF(c.Request.Context(), user.OrganizationID, reportID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to load report")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, f.Name))
	c.Header("Cache-Control", "private, max-age=0")
	c.Data(http.StatusOK, f.ContentType, f.Data)
}
