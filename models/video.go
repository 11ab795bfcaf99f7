package models

import (
	"math"
	"time"

	"github.com/amirphl/billboard-engine/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// VideoKind separates paid contract videos from fillers
type VideoKind string

const (
	VideoKindContract VideoKind = "contract"
	VideoKindFiller   VideoKind = "filler"
)

func (k VideoKind) String() string { return string(k) }

// Valid checks if the kind is known
func (k VideoKind) Valid() bool {
	return k == VideoKindContract || k == VideoKindFiller
}

// Service tariffs a vehicle can run under
const (
	TariffStandard = "standard"
	TariffComfort  = "comfort"
	TariffBusiness = "business"
	TariffPremium  = "premium"
)

// ValidTariffs lists every tariff the engine accepts
func ValidTariffs() []string {
	return []string{TariffStandard, TariffComfort, TariffBusiness, TariffPremium}
}

// IsValidTariff reports whether name is one of ValidTariffs
func IsValidTariff(name string) bool {
	for _, t := range ValidTariffs() {
		if t == name {
			return true
		}
	}
	return false
}

// Video is a catalog entry. Contract videos carry PlaysPerHour; fillers don't.
// Tariffs is stored as a PostgreSQL TEXT[] column.
type Video struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UUID            uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_videos_uuid" json:"uuid"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	FilePath        string         `gorm:"type:text;not null" json:"file_path"`
	DurationSeconds float64        `gorm:"not null;default:0" json:"duration_seconds"`
	Kind            VideoKind      `gorm:"size:20;not null;index:idx_videos_kind" json:"kind"`
	PlaysPerHour    *int           `json:"plays_per_hour,omitempty"`
	Priority        int            `gorm:"not null;default:0" json:"priority"`
	Tariffs         pq.StringArray `gorm:"type:text[];index:idx_videos_tariffs_gin,type:gin" json:"tariffs"`
	IsActive        *bool          `gorm:"default:true;index:idx_videos_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_videos_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Video) TableName() string { return "videos" }

// BeforeCreate ensures UUID and timestamps are set.
func (v *Video) BeforeCreate(tx *gorm.DB) error {
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

// Duration converts DurationSeconds, rounded to the millisecond.
func (v Video) Duration() time.Duration {
	if v.DurationSeconds <= 0 || math.IsNaN(v.DurationSeconds) {
		return 0
	}
	return time.Duration(math.Round(v.DurationSeconds*1000)) * time.Millisecond
}

// RequiredPlaysPerHour falls back to one play when unset.
func (v Video) RequiredPlaysPerHour() int {
	if v.PlaysPerHour == nil || *v.PlaysPerHour < 1 {
		return 1
	}
	return *v.PlaysPerHour
}

// VideoFilter represents filter criteria for video queries
type VideoFilter struct {
	ID       *uint
	UUID     *uuid.UUID
	Kind     *VideoKind
	Tariff   *string
	IsActive *bool
}
