package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"hospital-capacity-backend/internal/models"
	"hospital-capacity-backend/internal/service"
	"hospital-capacity-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CapacityIngester is what the handler needs from the ingestion coordinator
type CapacityIngester interface {
	ProcessCapacityUpdate(ctx context.Context, hospital service.HospitalData, capacity *service.CapacityData, meta service.ReportMeta) error
}

type CapacityHandler struct {
	ingester CapacityIngester
}

func NewCapacityHandler(ingester CapacityIngester) *CapacityHandler {
	return &CapacityHandler{ingester: ingester}
}

// CapacityUpdateRequest is the POST /capacity/update body. Capacity is
// optional: registering a hospital without a report is valid.
type CapacityUpdateRequest struct {
	HospitalID   string                `json:"hospital_id" binding:"required"`
	Name         string                `json:"name" binding:"required"`
	Location     *service.Location     `json:"location" binding:"required"`
	City         string                `json:"city"`
	District     *string               `json:"district"`
	Address      *string               `json:"address"`
	Capabilities models.JSONMap        `json:"capabilities"`
	Capacity     *service.CapacityData `json:"capacity"`
	UpdatedAt    string                `json:"updated_at"`
	Source       string                `json:"source"`
}

// UpdateCapacity handles capacity reports submitted over HTTP
// POST /capacity/update
func (h *CapacityHandler) UpdateCapacity(c *gin.Context) {
	var req CapacityUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updatedAt := time.Now().UTC()
	if req.UpdatedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.UpdatedAt)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "updated_at must be an RFC3339 timestamp")
			return
		}
		updatedAt = parsed
	}

	source := req.Source
	if source == "" {
		source = "api"
	}

	hospital := service.HospitalData{
		ID:           req.HospitalID,
		Name:         req.Name,
		City:         req.City,
		District:     req.District,
		Address:      req.Address,
		Lat:          req.Location.Lat,
		Lon:          req.Location.Lon,
		Capabilities: req.Capabilities,
	}

	err := h.ingester.ProcessCapacityUpdate(c.Request.Context(), hospital, req.Capacity, service.ReportMeta{
		UpdatedAt: updatedAt,
		Source:    source,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEventPublish):
			// The write is committed; only the downstream event is lost.
			utils.SuccessResponse(c, gin.H{
				"status":  "accepted",
				"warning": "capacity stored but event publish failed",
			})
		default:
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to process capacity update")
		}
		return
	}

	utils.SuccessResponse(c, gin.H{"status": "accepted"})
}
