package utils

import (
	"time"
)

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// WindowBounds returns the validity range of a window of length starting at
// from, normalized to UTC.
func WindowBounds(from time.Time, length time.Duration) (validFrom, validUntil time.Time) {
	validFrom = from.UTC()
	return validFrom, validFrom.Add(length)
}

// ExpiredAt reports whether validUntil has passed at now. The last instant of
// a window is still valid.
func ExpiredAt(validUntil, now time.Time) bool {
	return now.After(validUntil)
}
