// Package businessflow contains the playlist use cases: scope resolution, generation and retrieval
package businessflow

import (
	"errors"
	"fmt"

	"github.com/amirphl/billboard-engine/scheduling"
)

// Business flow error constants
var (
	// Generation errors share identity with the engine's so errors.Is works across layers
	ErrEmptyCatalog  = scheduling.ErrEmptyCatalog
	ErrInvalidWindow = scheduling.ErrInvalidWindow

	// Scope errors
	ErrUnknownScope = errors.New("unknown vehicle or tariff")

	// Playlist errors
	ErrPlaylistNotFound = errors.New("playlist not found")

	ErrCacheNotAvailable = errors.New("cache not available")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsEmptyCatalog(err error) bool {
	return errors.Is(err, ErrEmptyCatalog)
}

func IsInvalidWindow(err error) bool {
	return errors.Is(err, ErrInvalidWindow)
}

func IsUnknownScope(err error) bool {
	return errors.Is(err, ErrUnknownScope)
}

func IsPlaylistNotFound(err error) bool {
	return errors.Is(err, ErrPlaylistNotFound)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}
