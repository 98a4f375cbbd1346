package repository

import (
	"errors"
	"time"

	"hospital-capacity-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrHospitalNotFound = errors.New("hospital not found")

type HospitalRepository struct {
	db *gorm.DB
}

func NewHospitalRepo(db *gorm.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *HospitalRepository) WithTx(tx *gorm.DB) *HospitalRepository {
	return &HospitalRepository{db: tx}
}

// Upsert inserts a hospital or, on conflicting ID, overwrites name, city and
// coordinates unconditionally while filling district, address and
// capabilities only when the incoming value is non-null. Optional fields
// follow a fill-in-the-blanks merge, not last-write-wins.
func (r *HospitalRepository) Upsert(hospital *models.Hospital) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":         gorm.Expr("EXCLUDED.name"),
			"city":         gorm.Expr("EXCLUDED.city"),
			"district":     gorm.Expr("COALESCE(EXCLUDED.district, hospitals.district)"),
			"address":      gorm.Expr("COALESCE(EXCLUDED.address, hospitals.address)"),
			"lat":          gorm.Expr("EXCLUDED.lat"),
			"lon":          gorm.Expr("EXCLUDED.lon"),
			"capabilities": gorm.Expr("COALESCE(EXCLUDED.capabilities, hospitals.capabilities)"),
			"updated_at":   gorm.Expr("NOW()"),
		}),
	}).Create(hospital).Error
}

// UpdateCapacityCache overwrites the four cache columns and the last update
// timestamp together so they always reflect a single report.
func (r *HospitalRepository) UpdateCapacityCache(hospitalID string, totalBeds, availableBeds, icuTotal, icuAvailable int, reportedAt time.Time) error {
	return r.db.Model(&models.Hospital{}).
		Where("id = ?", hospitalID).
		Updates(map[string]interface{}{
			"current_total_beds":     totalBeds,
			"current_available_beds": availableBeds,
			"current_icu_total":      icuTotal,
			"current_icu_available":  icuAvailable,
			"last_capacity_update":   reportedAt,
		}).Error
}

// GetByID retrieves a hospital by its external ID
func (r *HospitalRepository) GetByID(id string) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.db.Where("id = ?", id).First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHospitalNotFound
		}
		return nil, err
	}
	return &hospital, nil
}

// List retrieves all hospitals ordered by name
func (r *HospitalRepository) List() ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := r.db.Order("name ASC").Find(&hospitals).Error
	return hospitals, err
}

// ListWithCapacity retrieves every hospital that has received at least one
// capacity report. Used by the recommendation engine.
func (r *HospitalRepository) ListWithCapacity() ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := r.db.Where("last_capacity_update IS NOT NULL").Find(&hospitals).Error
	return hospitals, err
}
