package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/fieldservice-be/internal/api/dto"
	"github.com/cuongbtq/fieldservice-be/internal/model"
)

type VendorHandler struct {
	logger  *slog.Logger
	vendors VendorStore
}

func NewVendorHandler(deps *Dependencies) *VendorHandler {
	return &VendorHandler{logger: deps.Logger, vendors: deps.Vendors}
}

// ListVendors handles GET /vendors
func (h *VendorHandler) ListVendors(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	vendors, err := h.vendors.ListVendors(c.Request.Context(), user.OrganizationID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list vendors")
		return
	}

	resp := dto.ListVendorsResponse{Vendors: make([]dto.VendorDTO, len(vendors))}
	for i := range vendors {
		resp.Vendors[i] = toVendorDTO(&vendors[i])
	}
	c.JSON(http.StatusOK, resp)
}

// CreateVendor handles POST /vendors
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req dto.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	v := &model.Vendor{
		ID:             uuid.NewString(),
		OrganizationID: user.OrganizationID,
		Name:           req.Name,
		Email:          sql.NullString{String: req.Email, Valid: req.Email != ""},
		Phone:          sql.NullString{String: req.Phone, Valid: req.Phone != ""},
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	if err := h.vendors.CreateVendor(c.Request.Context(), v); err != nil {
		respondError(c, h.logger, err, "Failed to create vendor")
		return
	}

	c.JSON(http.StatusCreated, toVendorDTO(v))
}

func toVendorDTO(v *model.Vendor) dto.VendorDTO {
	return dto.VendorDTO{
		ID:        v.ID,
		Name:      v.Name,
		Email:     nullableString(v.Email),
		Phone:     nullableString(v.Phone),
		IsActive:  v.IsActive,
		CreatedAt: v.CreatedAt.Format(time.RFC3339),
	}
}
