package repository

import (
	"hospital-capacity-backend/internal/models"

	"gorm.io/gorm"
)

type CapacityRepository struct {
	db *gorm.DB
}

func NewCapacityRepo(db *gorm.DB) *CapacityRepository {
	return &CapacityRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *CapacityRepository) WithTx(tx *gorm.DB) *CapacityRepository {
	return &CapacityRepository{db: tx}
}

// InsertSnapshot appends one immutable history row for an accepted report
func (r *CapacityRepository) InsertSnapshot(snapshot *models.CapacitySnapshot) error {
	return r.db.Create(snapshot).Error
}

// GetHistory retrieves the most recent snapshots for a hospital, ordered by
// the reporting timestamp (not ingestion time)
func (r *CapacityRepository) GetHistory(hospitalID string, limit int) ([]models.CapacitySnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	var snapshots []models.CapacitySnapshot
	err := r.db.Where("hospital_id = ?", hospitalID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&snapshots).Error
	return snapshots, err
}
