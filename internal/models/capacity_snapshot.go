package models

import "time"

// CapacitySnapshot is one immutable row per accepted capacity report.
// History is append-only: rows are never updated or deleted, and duplicate
// reports simply add duplicate rows.
type CapacitySnapshot struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	HospitalID    string `gorm:"size:64;not null;index" json:"hospital_id"`
	TotalBeds     int    `gorm:"not null" json:"total_beds"`
	AvailableBeds int    `gorm:"not null" json:"available_beds"`
	ICUTotal      int    `gorm:"column:icu_total;not null" json:"icu_total"`
	ICUAvailable  int    `gorm:"column:icu_available;not null" json:"icu_available"`

	// ReportedAt is the reporting timestamp from the payload, not the
	// ingestion time. Stored in the updated_at column; not gorm-managed.
	ReportedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
	Source     string    `gorm:"size:50" json:"source"`

	Hospital Hospital `gorm:"foreignKey:HospitalID" json:"-"`
}

// TableName specifies the table name for CapacitySnapshot model
func (CapacitySnapshot) TableName() string {
	return "capacity_snapshots"
}
