package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/billboard-engine/models"
	"gorm.io/gorm"
)

// VideoRepositoryImpl implements VideoRepository
type VideoRepositoryImpl struct {
	*BaseRepository[models.Video, models.VideoFilter]
}

func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &VideoRepositoryImpl{BaseRepository: NewBaseRepository[models.Video, models.VideoFilter](db)}
}

// ListEligible returns the active videos of both kinds tagged with tariff,
// ordered by id so callers see a stable catalog.
func (r *VideoRepositoryImpl) ListEligible(ctx context.Context, tariff string) ([]*models.Video, error) {
	active := true
	rows, err := r.ByFilter(ctx, models.VideoFilter{Tariff: &tariff, IsActive: &active}, "id ASC", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible videos for tariff %s: %w", tariff, err)
	}
	return rows, nil
}

func (r *VideoRepositoryImpl) applyFilter(db *gorm.DB, f models.VideoFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.Kind != nil {
		db = db.Where("kind = ?", string(*f.Kind))
	}
	if f.Tariff != nil {
		db = db.Where("tariffs @> ARRAY[?]::text[]", *f.Tariff)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	return db
}

func (r *VideoRepositoryImpl) ByFilter(ctx context.Context, filter models.VideoFilter, orderBy string, limit, offset int) ([]*models.Video, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Video{}), filter)
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
	var rows []*models.Video
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *VideoRepositoryImpl) Count(ctx context.Context, filter models.VideoFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Video{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VideoRepositoryImpl) Exists(ctx context.Context, filter models.VideoFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
