package repository

import (
	"context"

	"github.com/amirphl/billboard-engine/models"
	"gorm.io/gorm"
)

// VehicleRepositoryImpl implements VehicleRepository
type VehicleRepositoryImpl struct {
	*BaseRepository[models.Vehicle, models.VehicleFilter]
}

func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &VehicleRepositoryImpl{BaseRepository: NewBaseRepository[models.Vehicle, models.VehicleFilter](db)}
}

func (r *VehicleRepositoryImpl) ByPlateNumber(ctx context.Context, plate string) (*models.Vehicle, error) {
	rows, err := r.ByFilter(ctx, models.VehicleFilter{PlateNumber: &plate}, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *VehicleRepositoryImpl) applyFilter(db *gorm.DB, f models.VehicleFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.PlateNumber != nil {
		db = db.Where("plate_number = ?", *f.PlateNumber)
	}
	if f.Tariff != nil {
		db = db.Where("tariff = ?", *f.Tariff)
	}
	if f.PlaylistOverride != nil {
		db = db.Where("playlist_override = ?", *f.PlaylistOverride)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	return db
}

func (r *VehicleRepositoryImpl) ByFilter(ctx context.Context, filter models.VehicleFilter, orderBy string, limit, offset int) ([]*models.Vehicle, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Vehicle{}), filter)
	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Vehicle
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *VehicleRepositoryImpl) Count(ctx context.Context, filter models.VehicleFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Vehicle{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VehicleRepositoryImpl) Exists(ctx context.Context, filter models.VehicleFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
