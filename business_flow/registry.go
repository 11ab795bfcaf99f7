package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/billboard-engine/models"
	"github.com/amirphl/billboard-engine/repository"
	"github.com/amirphl/billboard-engine/utils"
)

// VehicleRegistry answers which tariff a vehicle runs and whether it has its own playlist
type VehicleRegistry interface {
	ResolveTariff(ctx context.Context, vehicleID uint) (string, error)
	HasVehicleOverride(ctx context.Context, vehicleID uint) (bool, error)
	KnownTariff(tariff string) bool
}

// VehicleRegistryImpl implements VehicleRegistry over the vehicles table
type VehicleRegistryImpl struct {
	vehicleRepo repository.VehicleRepository
}

func NewVehicleRegistry(vehicleRepo repository.VehicleRepository) VehicleRegistry {
	return &VehicleRegistryImpl{vehicleRepo: vehicleRepo}
}

func (r *VehicleRegistryImpl) ResolveTariff(ctx context.Context, vehicleID uint) (string, error) {
	vehicle, err := r.vehicle(ctx, vehicleID)
	if err != nil {
		return "", err
	}
	if !models.IsValidTariff(vehicle.Tariff) {
		return "", NewBusinessErrorf("UNKNOWN_SCOPE", "vehicle %d has unknown tariff %q", ErrUnknownScope, vehicleID, vehicle.Tariff)
	}
	return vehicle.Tariff, nil
}

func (r *VehicleRegistryImpl) HasVehicleOverride(ctx context.Context, vehicleID uint) (bool, error) {
	vehicle, err := r.vehicle(ctx, vehicleID)
	if err != nil {
		return false, err
	}
	return vehicle.PlaylistOverride, nil
}

func (r *VehicleRegistryImpl) KnownTariff(tariff string) bool {
	return models.IsValidTariff(tariff)
}

// vehicle loads an active vehicle or fails with ErrUnknownScope
func (r *VehicleRegistryImpl) vehicle(ctx context.Context, vehicleID uint) (*models.Vehicle, error) {
	vehicle, err := r.vehicleRepo.ByID(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if vehicle == nil || (vehicle.IsActive != nil && !utils.IsTrue(vehicle.IsActive)) {
		return nil, NewBusinessErrorf("UNKNOWN_SCOPE", "vehicle %d not found", ErrUnknownScope, vehicleID)
	}
	return vehicle, nil
}
