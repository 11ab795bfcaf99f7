package models

import (
	"time"

	"github.com/amirphl/billboard-engine/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle carries a screen. PlaylistOverride makes the vehicle get its own
// playlist instead of sharing its tariff's.
type Vehicle struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UUID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_vehicles_uuid" json:"uuid"`
	PlateNumber      string    `gorm:"size:32;not null;uniqueIndex:uk_vehicles_plate_number" json:"plate_number"`
	Tariff           string    `gorm:"size:32;not null;index:idx_vehicles_tariff" json:"tariff"`
	PlaylistOverride bool      `gorm:"not null;default:false" json:"playlist_override"`
	IsActive         *bool     `gorm:"default:true;index:idx_vehicles_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Vehicle) TableName() string { return "vehicles" }

// BeforeCreate ensures UUID and timestamps are set.
func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.UUID == uuid.Nil {
		v.UUID = uuid.New()
	}
	if v.IsActive == nil {
		v.IsActive = utils.ToPtr(true)
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = utils.UTCNow()
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// VehicleFilter represents filter criteria for vehicle queries
type VehicleFilter struct {
	ID               *uint
	UUID             *uuid.UUID
	PlateNumber      *string
	Tariff           *string
	PlaylistOverride *bool
	IsActive         *bool
}
