package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"hospital-capacity-backend/internal/models"
	"hospital-capacity-backend/internal/observability"
	"hospital-capacity-backend/pkg/geo"

	"github.com/jonboulle/clockwork"
)

// DefaultRadiusKm is used when the query does not specify a radius
const DefaultRadiusKm = 50.0

// RecommendationParams is a geographic capacity query. Zero values for the
// minimum filters mean unconstrained.
type RecommendationParams struct {
	Lat              float64
	Lon              float64
	RadiusKm         float64
	ICURequired      bool
	MinAvailableBeds int
	MinICUAvailable  int
}

// RecommendationResult is the ranked list plus exclusion metadata. The stale
// count lets callers distinguish "no nearby capacity" from "nearby capacity
// exists but is stale".
type RecommendationResult struct {
	Items []models.RankedHospital `json:"items"`
	Meta  RecommendationMeta      `json:"meta"`
}

type RecommendationMeta struct {
	ExcludedStaleCount int `json:"excluded_stale_count"`
}

// HospitalLister is the read surface the engine needs from storage
type HospitalLister interface {
	ListWithCapacity() ([]models.Hospital, error)
}

// RecommendationService ranks hospitals by bed/ICU availability and distance.
// It performs one bulk read with no transaction and tolerates read skew
// within a request.
type RecommendationService struct {
	hospitals      HospitalLister
	clock          clockwork.Clock
	staleThreshold time.Duration
	metrics        *observability.Metrics
}

func NewRecommendationService(hospitals HospitalLister, clock clockwork.Clock, staleThreshold time.Duration, metrics *observability.Metrics) *RecommendationService {
	if staleThreshold <= 0 {
		staleThreshold = 10 * time.Minute
	}
	return &RecommendationService{
		hospitals:      hospitals,
		clock:          clock,
		staleThreshold: staleThreshold,
		metrics:        metrics,
	}
}

// GetRecommendations fetches every hospital with known capacity, filters and
// ranks in memory
func (s *RecommendationService) GetRecommendations(ctx context.Context, params RecommendationParams) (*RecommendationResult, error) {
	hospitals, err := s.hospitals.ListWithCapacity()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hospitals: %w", err)
	}

	items, excludedStale := filterAndRank(hospitals, params, s.clock.Now(), s.staleThreshold)
	if excludedStale > 0 {
		s.metrics.StaleFiltered.Add(float64(excludedStale))
	}

	return &RecommendationResult{
		Items: items,
		Meta:  RecommendationMeta{ExcludedStaleCount: excludedStale},
	}, nil
}

// filterAndRank applies the filters in order, short-circuiting on the first
// failure, then sorts with the stable three-key comparator:
// availability desc, distance asc, last update desc.
func filterAndRank(hospitals []models.Hospital, params RecommendationParams, now time.Time, staleAfter time.Duration) ([]models.RankedHospital, int) {
	radius := params.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}

	excludedStale := 0
	items := []models.RankedHospital{}

	for _, h := range hospitals {
		// 1. Staleness: counted separately in the result metadata.
		if h.LastCapacityUpdate == nil || now.Sub(*h.LastCapacityUpdate) > staleAfter {
			excludedStale++
			continue
		}

		// 2. ICU checks. Three deliberately distinct conditions.
		if params.ICURequired {
			if intOrZero(h.CurrentICUTotal) <= 0 {
				continue
			}
			if params.MinICUAvailable > 0 && intOrZero(h.CurrentICUAvailable) < params.MinICUAvailable {
				continue
			}
			if intOrZero(h.CurrentICUAvailable) <= 0 {
				continue
			}
		}

		// 3. Bed checks. Zero general availability only disqualifies when
		// ICU is not the decisive resource.
		if params.MinAvailableBeds > 0 && intOrZero(h.CurrentAvailableBeds) < params.MinAvailableBeds {
			continue
		}
		if !params.ICURequired && intOrZero(h.CurrentAvailableBeds) <= 0 {
			continue
		}

		// 4. Distance.
		dist := geo.Haversine(params.Lat, params.Lon, h.Lat, h.Lon)
		if dist > radius {
			continue
		}

		items = append(items, models.RankedHospital{Hospital: h, DistanceKm: dist})
	}

	icuRequired := params.ICURequired
	sort.SliceStable(items, func(i, j int) bool {
		availI := availability(items[i].Hospital, icuRequired)
		availJ := availability(items[j].Hospital, icuRequired)
		if availI != availJ {
			return availI > availJ
		}
		if items[i].DistanceKm != items[j].DistanceKm {
			return items[i].DistanceKm < items[j].DistanceKm
		}
		return lastUpdate(items[i].Hospital).After(lastUpdate(items[j].Hospital))
	})

	return items, excludedStale
}

// availability is the primary ranking key: ICU-available beds when ICU is
// required, general available beds otherwise
func availability(h models.Hospital, icuRequired bool) int {
	if icuRequired {
		return intOrZero(h.CurrentICUAvailable)
	}
	return intOrZero(h.CurrentAvailableBeds)
}

func lastUpdate(h models.Hospital) time.Time {
	if h.LastCapacityUpdate == nil {
		return time.Time{}
	}
	return *h.LastCapacityUpdate
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
