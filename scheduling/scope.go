// Package scheduling builds playlist timelines for signage screens: contract
// placement across a time window and filler packing of the remaining gaps.
package scheduling

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ScopeKind tags which variant a Scope holds.
type ScopeKind uint8

const (
	ScopeUnknown ScopeKind = iota
	ScopeVehicle
	ScopeTariff
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeVehicle:
		return "vehicle"
	case ScopeTariff:
		return "tariff"
	default:
		return "unknown"
	}
}

// ErrInvalidScopeKey is returned when a scope key cannot be parsed.
var ErrInvalidScopeKey = errors.New("invalid scope key")

// Scope identifies the unit a playlist is generated for: a single vehicle or
// every vehicle of a tariff. Exactly one of vehicleID / tariff is meaningful,
// selected by kind. The zero value is not a valid scope.
type Scope struct {
	kind      ScopeKind
	vehicleID uint
	tariff    string
}

// VehicleScope returns the scope of a vehicle-level playlist.
func VehicleScope(vehicleID uint) Scope {
	return Scope{kind: ScopeVehicle, vehicleID: vehicleID}
}

// TariffScope returns the scope shared by all vehicles of a tariff.
func TariffScope(tariff string) Scope {
	return Scope{kind: ScopeTariff, tariff: tariff}
}

func (s Scope) Kind() ScopeKind { return s.kind }

// VehicleID reports the vehicle id when s is a vehicle scope.
func (s Scope) VehicleID() (uint, bool) {
	return s.vehicleID, s.kind == ScopeVehicle
}

// Tariff reports the tariff when s is a tariff scope.
func (s Scope) Tariff() (string, bool) {
	return s.tariff, s.kind == ScopeTariff
}

func (s Scope) IsZero() bool { return s.kind == ScopeUnknown }

// Key is the canonical string form used for storage, caching and
// single-flight coordination, e.g. "vehicle:12" or "tariff:standard".
func (s Scope) Key() string {
	switch s.kind {
	case ScopeVehicle:
		return "vehicle:" + strconv.FormatUint(uint64(s.vehicleID), 10)
	case ScopeTariff:
		return "tariff:" + s.tariff
	default:
		return ""
	}
}

func (s Scope) String() string { return s.Key() }

// ParseScopeKey is the inverse of Scope.Key.
func ParseScopeKey(key string) (Scope, error) {
	kind, value, ok := strings.Cut(key, ":")
	if !ok || value == "" {
		return Scope{}, fmt.Errorf("%w: %q", ErrInvalidScopeKey, key)
	}
	switch kind {
	case "vehicle":
		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil || id == 0 {
			return Scope{}, fmt.Errorf("%w: %q", ErrInvalidScopeKey, key)
		}
		return VehicleScope(uint(id)), nil
	case "tariff":
		return TariffScope(value), nil
	default:
		return Scope{}, fmt.Errorf("%w: %q", ErrInvalidScopeKey, key)
	}
}

func (s Scope) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Key())
}

func (s *Scope) UnmarshalJSON(data []byte) error {
	var key string
	if err := json.Unmarshal(data, &key); err != nil {
		return err
	}
	parsed, err := ParseScopeKey(key)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
