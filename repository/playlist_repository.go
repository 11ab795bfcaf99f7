package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/billboard-engine/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlaylistRepositoryImpl implements PlaylistRepository. Playlists are append
// only, so there is no update path.
type PlaylistRepositoryImpl struct {
	*BaseRepository[models.Playlist, models.PlaylistFilter]
}

func NewPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &PlaylistRepositoryImpl{BaseRepository: NewBaseRepository[models.Playlist, models.PlaylistFilter](db)}
}

func (r *PlaylistRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	rows, err := r.ByFilter(ctx, models.PlaylistFilter{UUID: &id}, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// LatestByScope returns the newest playlist of a scope, or nil when the
// scope was never generated.
func (r *PlaylistRepositoryImpl) LatestByScope(ctx context.Context, scopeKey string) (*models.Playlist, error) {
	rows, err := r.ByFilter(ctx, models.PlaylistFilter{ScopeKey: &scopeKey}, "created_at DESC, id DESC", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest playlist of %s: %w", scopeKey, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *PlaylistRepositoryImpl) CountExpiredCurrent(ctx context.Context, now time.Time) (int64, error) {
	db := r.getDB(ctx)
	latest := db.Model(&models.Playlist{}).
		Select("DISTINCT ON (scope_key) scope_key, valid_until").
		Order("scope_key, created_at DESC, id DESC")
	var count int64
	err := db.Table("(?) AS latest", latest).
		Where("latest.valid_until < ?", now).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count expired playlists: %w", err)
	}
	return count, nil
}

func (r *PlaylistRepositoryImpl) applyFilter(db *gorm.DB, f models.PlaylistFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.ScopeKey != nil {
		db = db.Where("scope_key = ?", *f.ScopeKey)
	}
	if f.VehicleID != nil {
		db = db.Where("vehicle_id = ?", *f.VehicleID)
	}
	if f.Tariff != nil {
		db = db.Where("tariff = ?", *f.Tariff)
	}
	if f.ValidBefore != nil {
		db = db.Where("valid_until < ?", *f.ValidBefore)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *PlaylistRepositoryImpl) ByFilter(ctx context.Context, filter models.PlaylistFilter, orderBy string, limit, offset int) ([]*models.Playlist, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Playlist{}), filter)
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
	var rows []*models.Playlist
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PlaylistRepositoryImpl) Count(ctx context.Context, filter models.PlaylistFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Playlist{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PlaylistRepositoryImpl) Exists(ctx context.Context, filter models.PlaylistFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
