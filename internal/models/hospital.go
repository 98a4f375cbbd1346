package models

import "time"

// Hospital represents a reporting hospital and its denormalized
// "current capacity" cache columns.
//
// The cache columns (Current* and LastCapacityUpdate) are nullable until the
// first capacity report arrives and are always written together in a single
// UPDATE so they reflect one consistent report.
type Hospital struct {
	ID           string  `gorm:"primaryKey;size:64" json:"id"`
	Name         string  `gorm:"size:255;not null" json:"name"`
	City         string  `gorm:"size:100;not null;default:'Unknown'" json:"city"`
	District     *string `gorm:"size:100" json:"district,omitempty"`
	Address      *string `gorm:"type:text" json:"address,omitempty"`
	Lat          float64 `gorm:"not null" json:"lat"`
	Lon          float64 `gorm:"not null" json:"lon"`
	Capabilities JSONMap `gorm:"type:jsonb" json:"capabilities,omitempty"`

	CurrentTotalBeds     *int       `gorm:"column:current_total_beds" json:"current_total_beds"`
	CurrentAvailableBeds *int       `gorm:"column:current_available_beds" json:"current_available_beds"`
	CurrentICUTotal      *int       `gorm:"column:current_icu_total" json:"current_icu_total"`
	CurrentICUAvailable  *int       `gorm:"column:current_icu_available" json:"current_icu_available"`
	LastCapacityUpdate   *time.Time `gorm:"column:last_capacity_update" json:"last_capacity_update"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Hospital model
func (Hospital) TableName() string {
	return "hospitals"
}

// RankedHospital is a hospital annotated with its computed distance from a
// recommendation query point.
type RankedHospital struct {
	Hospital
	DistanceKm float64 `json:"distance_km"`
}
