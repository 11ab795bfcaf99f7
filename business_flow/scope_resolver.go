package businessflow

import (
	"context"

	"github.com/amirphl/billboard-engine/scheduling"
)

// ScopeResolver maps incoming identifiers to the scope a playlist is kept under
type ScopeResolver interface {
	ForVehicle(ctx context.Context, vehicleID uint) (scheduling.Scope, error)
	ForTariff(ctx context.Context, tariff string) (scheduling.Scope, error)
	// CatalogTariff is the tariff whose catalog feeds a scope's generation
	CatalogTariff(ctx context.Context, scope scheduling.Scope) (string, error)
}

type ScopeResolverImpl struct {
	registry VehicleRegistry
}

func NewScopeResolver(registry VehicleRegistry) ScopeResolver {
	return &ScopeResolverImpl{registry: registry}
}

// ForVehicle returns the vehicle's own scope when it has an override, else
// the scope of its tariff.
func (r *ScopeResolverImpl) ForVehicle(ctx context.Context, vehicleID uint) (scheduling.Scope, error) {
	override, err := r.registry.HasVehicleOverride(ctx, vehicleID)
	if err != nil {
		return scheduling.Scope{}, err
	}
	if override {
		return scheduling.VehicleScope(vehicleID), nil
	}
	tariff, err := r.registry.ResolveTariff(ctx, vehicleID)
	if err != nil {
		return scheduling.Scope{}, err
	}
	return scheduling.TariffScope(tariff), nil
}

func (r *ScopeResolverImpl) ForTariff(ctx context.Context, tariff string) (scheduling.Scope, error) {
	if !r.registry.KnownTariff(tariff) {
		return scheduling.Scope{}, NewBusinessErrorf("UNKNOWN_SCOPE", "tariff %q not found", ErrUnknownScope, tariff)
	}
	return scheduling.TariffScope(tariff), nil
}

func (r *ScopeResolverImpl) CatalogTariff(ctx context.Context, scope scheduling.Scope) (string, error) {
	switch scope.Kind() {
	case scheduling.ScopeVehicle:
		id, _ := scope.VehicleID()
		return r.registry.ResolveTariff(ctx, id)
	case scheduling.ScopeTariff:
		tariff, _ := scope.Tariff()
		if !r.registry.KnownTariff(tariff) {
			return "", NewBusinessErrorf("UNKNOWN_SCOPE", "tariff %q not found", ErrUnknownScope, tariff)
		}
		return tariff, nil
	default:
		return "", NewBusinessError("UNKNOWN_SCOPE", "empty scope", ErrUnknownScope)
	}
}
