package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/fieldservice-be/internal/api/dto"
)

// ScanHandler exposes the status scans to cron pings and managers
type ScanHandler struct {
	logger *slog.Logger
	scans  ScanRunner
}

func NewScanHandler(deps *Dependencies) *ScanHandler {
	return &ScanHandler{logger: deps.Logger, scans: deps.Scans}
}

// CheckOverdue handles GET /jobs/check-overdue
func (h *ScanHandler) CheckOverdue(c *gin.Context) {
	res, err := h.scans.Overdue(c.Request.Context(), scanScope(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to check overdue jobs")
		return
	}

	c.JSON(http.StatusOK, dto.OverdueScanResponse{
		Success: true,
		Checked: res.Checked,
		Updated: res.Updated,
		Failed:  res.Failed,
		Skipped: res.Skipped,
	})
}

// ScanContracts handles /contract-notifications and /contracts/scan
func (h *ScanHandler) ScanContracts(c *gin.Context) {
	res, err := h.scans.Contracts(c.Request.Context(), scanScope(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to scan contracts")
		return
	}

	c.JSON(http.StatusOK, dto.ContractScanResponse{
		Success:  true,
		Checked:  res.Checked,
		Expiring: res.Expiring,
		Expired:  res.Expired,
		Failed:   res.Failed,
		Skipped:  res.Skipped,
	})
}
