package utils

import (
	"time"
)

// Request context keys set by handlers before calling into flows
type contextKey string

const (
	RequestIDKey  contextKey = "request_id"
	UserAgentKey  contextKey = "user_agent"
	IPAddressKey  contextKey = "ip_address"
	EndpointKey   contextKey = "endpoint"
	TimeoutKey    contextKey = "timeout"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Playlist constants
const (
	// DefaultPlaylistHours is used when a caller does not ask for a window
	DefaultPlaylistHours = 24

	// MaxPlaylistHours caps a single generation at one week
	MaxPlaylistHours = 168

	// RequestTimeout bounds a single API request including generation
	RequestTimeout = 30 * time.Second

	// CurrentPlaylistCacheKey is suffixed with the scope key
	CurrentPlaylistCacheKey = "playlist:current:"

	// PlaylistGeneratedQueue receives one event per generated playlist
	PlaylistGeneratedQueue = "playlist.generated"
)
