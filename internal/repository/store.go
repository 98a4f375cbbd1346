package repository

import (
	"context"

	"hospital-capacity-backend/internal/models"

	"gorm.io/gorm"
)

// Store bundles the hospital and capacity repositories behind one
// transactional write operation. Each call acquires its own transaction from
// the shared connection pool; scopes never nest.
type Store struct {
	db         *gorm.DB
	hospitals  *HospitalRepository
	capacities *CapacityRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		hospitals:  NewHospitalRepo(db),
		capacities: NewCapacityRepo(db),
	}
}

// ApplyCapacityUpdate runs the full ingestion write as a single atomic unit:
// upsert the hospital, then (when a snapshot is given) insert the history row
// and overwrite the capacity cache columns. Any failure rolls the whole unit
// back, so a hospital-without-snapshot or snapshot-without-cache state is
// never observable.
func (s *Store) ApplyCapacityUpdate(ctx context.Context, hospital *models.Hospital, snapshot *models.CapacitySnapshot) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.hospitals.WithTx(tx).Upsert(hospital); err != nil {
			return err
		}

		if snapshot == nil {
			return nil
		}

		if err := s.capacities.WithTx(tx).InsertSnapshot(snapshot); err != nil {
			return err
		}

		return s.hospitals.WithTx(tx).UpdateCapacityCache(
			snapshot.HospitalID,
			snapshot.TotalBeds,
			snapshot.AvailableBeds,
			snapshot.ICUTotal,
			snapshot.ICUAvailable,
			snapshot.ReportedAt,
		)
	})
}
