package service

import (
	"errors"
	"fmt"

	"hospital-capacity-backend/internal/models"
	"hospital-capacity-backend/internal/repository"
)

// HospitalWithHistory is a hospital joined with its recent capacity snapshots
type HospitalWithHistory struct {
	models.Hospital
	History []models.CapacitySnapshot `json:"history"`
}

type HospitalService struct {
	hospitalRepo *repository.HospitalRepository
	capacityRepo *repository.CapacityRepository
}

func NewHospitalService(
	hospitalRepo *repository.HospitalRepository,
	capacityRepo *repository.CapacityRepository,
) *HospitalService {
	return &HospitalService{
		hospitalRepo: hospitalRepo,
		capacityRepo: capacityRepo,
	}
}

// ListHospitals retrieves all hospitals ordered by name
func (s *HospitalService) ListHospitals() ([]models.Hospital, error) {
	return s.hospitalRepo.List()
}

// GetHospitalWithHistory retrieves a hospital and its last 20 capacity
// snapshots. Returns ErrNotFound for an unknown ID.
func (s *HospitalService) GetHospitalWithHistory(id string) (*HospitalWithHistory, error) {
	hospital, err := s.hospitalRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrHospitalNotFound) {
			return nil, fmt.Errorf("%w: hospital %s", ErrNotFound, id)
		}
		return nil, err
	}

	history, err := s.capacityRepo.GetHistory(id, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch capacity history: %w", err)
	}

	return &HospitalWithHistory{
		Hospital: *hospital,
		History:  history,
	}, nil
}
