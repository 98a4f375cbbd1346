package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"hospital-capacity-backend/internal/models"
	"hospital-capacity-backend/internal/observability"
)

// SubjectCapacityUpdated is the subject the canonical capacity-updated event
// is published on after a successful commit.
const SubjectCapacityUpdated = "hospital.capacity.updated"

// ServiceSource is the source identifier stamped onto every published event
// payload, regardless of where the report originally came from.
const ServiceSource = "service:hospital-capacity"

// HospitalData is the hospital identity and attributes of a capacity report
type HospitalData struct {
	ID           string
	Name         string
	City         string
	District     *string
	Address      *string
	Lat          float64
	Lon          float64
	Capabilities models.JSONMap
}

// CapacityData is the optional capacity payload of a report. A registration
// without capacity is valid.
type CapacityData struct {
	TotalBeds     int `json:"total_beds"`
	AvailableBeds int `json:"available_beds"`
	ICUTotal      int `json:"icu_total"`
	ICUAvailable  int `json:"icu_available"`
}

// ReportMeta carries the reporting timestamp and the ingress source tag
// ("api" or "stream-consumer")
type ReportMeta struct {
	UpdatedAt time.Time
	Source    string
}

// CapacityUpdatedPayload is the payload of the republished event. It mirrors
// the input report, not a post-commit re-read.
type CapacityUpdatedPayload struct {
	HospitalID string        `json:"hospital_id"`
	Name       string        `json:"name"`
	Location   Location      `json:"location"`
	City       string        `json:"city"`
	UpdatedAt  time.Time     `json:"updated_at"`
	Capacity   *CapacityData `json:"capacity,omitempty"`
	Source     string        `json:"source"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IngestionStore is the transactional write surface the coordinator needs
// from storage.
type IngestionStore interface {
	ApplyCapacityUpdate(ctx context.Context, hospital *models.Hospital, snapshot *models.CapacitySnapshot) error
}

// EventPublisher delivers domain events to the durable stream, best effort.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

// IngestionService coordinates the transactional write path for capacity
// reports and republishes the canonical capacity-updated event. It is invoked
// concurrently by the HTTP handler and the stream consumer; correctness under
// concurrency is delegated to the storage layer's transaction isolation.
type IngestionService struct {
	store     IngestionStore
	publisher EventPublisher
	metrics   *observability.Metrics
}

func NewIngestionService(store IngestionStore, publisher EventPublisher, metrics *observability.Metrics) *IngestionService {
	return &IngestionService{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
	}
}

// ProcessCapacityUpdate validates a report, persists it atomically and then
// publishes the capacity-updated event.
//
// The publish happens strictly after the commit and cannot participate in the
// transaction. If it fails, the returned error wraps ErrEventPublish and the
// database still reflects the update; callers must not treat that error as a
// failed write. Re-processing an identical report is safe: the upsert is
// idempotent by ID and a duplicate history row is harmless.
func (s *IngestionService) ProcessCapacityUpdate(ctx context.Context, hospital HospitalData, capacity *CapacityData, meta ReportMeta) error {
	s.metrics.UpdatesReceived.Inc()

	if err := validateHospitalData(&hospital); err != nil {
		s.metrics.DroppedInvalid.Inc()
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	row := &models.Hospital{
		ID:           hospital.ID,
		Name:         hospital.Name,
		City:         hospital.City,
		District:     hospital.District,
		Address:      hospital.Address,
		Lat:          hospital.Lat,
		Lon:          hospital.Lon,
		Capabilities: hospital.Capabilities,
	}

	var snapshot *models.CapacitySnapshot
	if capacity != nil {
		snapshot = &models.CapacitySnapshot{
			HospitalID:    hospital.ID,
			TotalBeds:     capacity.TotalBeds,
			AvailableBeds: capacity.AvailableBeds,
			ICUTotal:      capacity.ICUTotal,
			ICUAvailable:  capacity.ICUAvailable,
			ReportedAt:    meta.UpdatedAt,
			Source:        meta.Source,
		}
	}

	if err := s.store.ApplyCapacityUpdate(ctx, row, snapshot); err != nil {
		s.metrics.DBErrors.Inc()
		return fmt.Errorf("failed to persist capacity update: %w", err)
	}
	s.metrics.UpdatesPersisted.Inc()

	payload := buildCapacityUpdatedPayload(hospital, capacity, meta)
	if err := s.publisher.Publish(ctx, SubjectCapacityUpdated, payload); err != nil {
		s.metrics.NATSErrors.Inc()
		log.Printf("Capacity update for %s committed but event publish failed: %v", hospital.ID, err)
		return fmt.Errorf("%w: %v", ErrEventPublish, err)
	}
	s.metrics.UpdatesPublished.Inc()

	return nil
}

// validateHospitalData rejects reports missing required identity or
// coordinates and defaults the city. Mutates the struct in place.
func validateHospitalData(hospital *HospitalData) error {
	if hospital.ID == "" {
		return fmt.Errorf("hospital_id is required")
	}
	if hospital.Name == "" {
		return fmt.Errorf("name is required")
	}
	if hospital.Lat < -90 || hospital.Lat > 90 {
		return fmt.Errorf("lat out of valid range (-90 to 90)")
	}
	if hospital.Lon < -180 || hospital.Lon > 180 {
		return fmt.Errorf("lon out of valid range (-180 to 180)")
	}
	if hospital.City == "" {
		hospital.City = "Unknown"
	}
	return nil
}

// buildCapacityUpdatedPayload builds the outgoing event from the input data.
// The source is always overwritten with the service identifier.
func buildCapacityUpdatedPayload(hospital HospitalData, capacity *CapacityData, meta ReportMeta) CapacityUpdatedPayload {
	city := hospital.City
	if city == "" {
		city = "Unknown"
	}
	return CapacityUpdatedPayload{
		HospitalID: hospital.ID,
		Name:       hospital.Name,
		Location:   Location{Lat: hospital.Lat, Lon: hospital.Lon},
		City:       city,
		UpdatedAt:  meta.UpdatedAt,
		Capacity:   capacity,
		Source:     ServiceSource,
	}
}
