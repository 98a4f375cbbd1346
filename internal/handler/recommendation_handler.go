package handler

import (
	"context"
	"net/http"
	"strconv"

	"hospital-capacity-backend/internal/service"
	"hospital-capacity-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Recommender is what the handler needs from the recommendation engine
type Recommender interface {
	GetRecommendations(ctx context.Context, params service.RecommendationParams) (*service.RecommendationResult, error)
}

type RecommendationHandler struct {
	recommender Recommender
}

func NewRecommendationHandler(recommender Recommender) *RecommendationHandler {
	return &RecommendationHandler{recommender: recommender}
}

// GetRecommendations ranks hospitals near a query point
// GET /capacity/recommendation?lat=..&lon=..&radius_km=..&icu_required=true&min_available_beds=..&min_icu_available=..
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "lat and lon are required numbers")
		return
	}

	params := service.RecommendationParams{
		Lat:         lat,
		Lon:         lon,
		ICURequired: c.Query("icu_required") == "true",
	}

	if raw := c.Query("radius_km"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "radius_km must be a number")
			return
		}
		params.RadiusKm = radius
	}

	if raw := c.Query("min_available_beds"); raw != "" {
		min, err := strconv.Atoi(raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "min_available_beds must be an integer")
			return
		}
		params.MinAvailableBeds = min
	}

	if raw := c.Query("min_icu_available"); raw != "" {
		min, err := strconv.Atoi(raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "min_icu_available must be an integer")
			return
		}
		params.MinICUAvailable = min
	}

	result, err := h.recommender.GetRecommendations(c.Request.Context(), params)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to compute recommendations")
		return
	}

	utils.SuccessResponse(c, result)
}
