package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirphl/billboard-engine/scheduling"
	"github.com/amirphl/billboard-engine/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlaylistTimeline is the ordered placement list stored as jsonb
type PlaylistTimeline []scheduling.Placement

// Value implements the driver.Valuer interface for PlaylistTimeline
func (t PlaylistTimeline) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t)
}

// Scan implements the sql.Scanner interface for PlaylistTimeline
func (t *PlaylistTimeline) Scan(value any) error {
	if value == nil {
		*t = nil
		return nil
	}
	bytes, err := jsonBytes(value, "PlaylistTimeline")
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, t)
}

// PlaylistWarnings is the list of generation warnings stored as jsonb
type PlaylistWarnings []scheduling.Warning

// Value implements the driver.Valuer interface for PlaylistWarnings
func (w PlaylistWarnings) Value() (driver.Value, error) {
	if w == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(w)
}

// Scan implements the sql.Scanner interface for PlaylistWarnings
func (w *PlaylistWarnings) Scan(value any) error {
	if value == nil {
		*w = nil
		return nil
	}
	bytes, err := jsonBytes(value, "PlaylistWarnings")
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, w)
}

func jsonBytes(value any, target string) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("cannot scan %T into %s", value, target)
	}
}

// Playlist is one generated program for a scope. Rows are never updated;
// regenerating a scope inserts a new row and the latest one is current.
type Playlist struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uk_playlists_uuid" json:"uuid"`
	ScopeKey      string           `gorm:"size:64;not null;index:idx_playlists_scope_key_created_at,priority:1" json:"scope_key"`
	VehicleID     *uint            `gorm:"index:idx_playlists_vehicle_id" json:"vehicle_id,omitempty"`
	Tariff        string           `gorm:"size:32;not null;index:idx_playlists_tariff" json:"tariff"`
	Timeline      PlaylistTimeline `gorm:"type:jsonb;not null" json:"timeline"`
	Warnings      PlaylistWarnings `gorm:"type:jsonb;not null" json:"warnings"`
	WindowSeconds int64            `gorm:"not null" json:"window_seconds"`
	SlackMillis   int64            `gorm:"not null;default:0" json:"slack_millis"`
	Seed          int64            `gorm:"not null" json:"seed"`
	ValidFrom     time.Time        `gorm:"not null" json:"valid_from"`
	ValidUntil    time.Time        `gorm:"not null;index:idx_playlists_valid_until" json:"valid_until"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_playlists_scope_key_created_at,priority:2" json:"created_at"`
}

func (Playlist) TableName() string { return "playlists" }

// BeforeCreate ensures UUID and timestamps are set.
func (p *Playlist) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	return nil
}

// Scope parses the stored scope key
func (p *Playlist) Scope() (scheduling.Scope, error) {
	return scheduling.ParseScopeKey(p.ScopeKey)
}

// Window is the covered duration
func (p *Playlist) Window() time.Duration {
	return time.Duration(p.WindowSeconds) * time.Second
}

// IsExpiredAt reports whether the playlist is no longer valid at now.
func (p *Playlist) IsExpiredAt(now time.Time) bool {
	return utils.ExpiredAt(p.ValidUntil, now)
}

func (p *Playlist) VideoSequence() []uint {
	return scheduling.Timeline(p.Timeline).VideoSequence()
}

func (p *Playlist) ContractPlacements() []scheduling.Placement {
	return scheduling.Timeline(p.Timeline).OfKind(scheduling.KindContract)
}

func (p *Playlist) FillerPlacements() []scheduling.Placement {
	return scheduling.Timeline(p.Timeline).OfKind(scheduling.KindFiller)
}

// Frequency counts how often videoID plays in the window.
func (p *Playlist) Frequency(videoID uint) int {
	n := 0
	for _, pl := range p.Timeline {
		if pl.VideoID == videoID {
			n++
		}
	}
	return n
}

// PlaylistFilter represents filter criteria for playlist queries
type PlaylistFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	ScopeKey      *string
	VehicleID     *uint
	Tariff        *string
	ValidBefore   *time.Time
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
