package dto

import "time"

// FetchPlaylistByVehicleRequest is bound from the path of GET /playlists/vehicle/:vehicle_id
type FetchPlaylistByVehicleRequest struct {
	VehicleID uint `uri:"vehicle_id" validate:"required,gt=0"`
}

// FetchPlaylistByTariffRequest is bound from the path of GET /playlists/tariff/:tariff
type FetchPlaylistByTariffRequest struct {
	Tariff string `uri:"tariff" validate:"required,oneof=standard comfort business premium"`
}

// RegeneratePlaylistRequest carries the optional window length. Zero means the configured default.
type RegeneratePlaylistRequest struct {
	Hours int `query:"hours" validate:"omitempty,gte=1,lte=168"`
}

// ContractVideoEntry is one scheduled play of a contract video
type ContractVideoEntry struct {
	VideoID    uint    `json:"video_id"`
	Occurrence int     `json:"occurrence"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Duration   float64 `json:"duration"`
	Frequency  int     `json:"frequency"`
	FilePath   string  `json:"file_path"`
	MediaURL   string  `json:"media_url"`
}

// FillerVideoEntry is one scheduled play of a filler video
type FillerVideoEntry struct {
	VideoID   uint    `json:"video_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Duration  float64 `json:"duration"`
	FilePath  string  `json:"file_path"`
	MediaURL  string  `json:"media_url"`
}

// PlaylistWarning mirrors a non-fatal finding recorded at generation time
type PlaylistWarning struct {
	Code    string `json:"code"`
	VideoID uint   `json:"video_id,omitempty"`
	Message string `json:"message"`
}

// PlaylistResponse is what playback clients receive. Exactly one of
// VehicleID and Tariff identifies the scope; VehicleID is null for
// tariff-wide playlists. Times are seconds from ValidFrom.
type PlaylistResponse struct {
	ID             string               `json:"id"`
	Scope          string               `json:"scope"`
	VehicleID      *uint                `json:"vehicle_id"`
	Tariff         string               `json:"tariff,omitempty"`
	ContractVideos []ContractVideoEntry `json:"contract_videos"`
	FillerVideos   []FillerVideoEntry   `json:"filler_videos"`
	VideoSequence  []uint               `json:"video_sequence"`
	TotalDuration  float64              `json:"total_duration"`
	ValidFrom      time.Time            `json:"valid_from"`
	ValidUntil     time.Time            `json:"valid_until"`
	CreatedAt      time.Time            `json:"created_at"`
	Expired        bool                 `json:"expired"`
	Warnings       []PlaylistWarning    `json:"warnings"`
}
