package handler

import (
	"errors"
	"net/http"

	"hospital-capacity-backend/internal/models"
	"hospital-capacity-backend/internal/service"
	"hospital-capacity-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// HospitalReader is what the handler needs from the hospital query service
type HospitalReader interface {
	ListHospitals() ([]models.Hospital, error)
	GetHospitalWithHistory(id string) (*service.HospitalWithHistory, error)
}

type HospitalHandler struct {
	hospitals HospitalReader
}

func NewHospitalHandler(hospitals HospitalReader) *HospitalHandler {
	return &HospitalHandler{hospitals: hospitals}
}

// ListHospitals retrieves all known hospitals
// GET /hospitals
func (h *HospitalHandler) ListHospitals(c *gin.Context) {
	hospitals, err := h.hospitals.ListHospitals()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch hospitals")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"hospitals": hospitals,
		"count":     len(hospitals),
	})
}

// GetHospital retrieves one hospital with its recent capacity history
// GET /hospitals/:id
func (h *HospitalHandler) GetHospital(c *gin.Context) {
	id := c.Param("id")

	hospital, err := h.hospitals.GetHospitalWithHistory(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Hospital not found")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch hospital")
		return
	}

	utils.SuccessResponse(c, hospital)
}
