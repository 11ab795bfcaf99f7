// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/billboard-engine/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
	InTransaction(ctx context.Context, fn func(context.Context) error) error
}

// VideoRepository defines operations for the video catalog
type VideoRepository interface {
	Repository[models.Video, models.VideoFilter]
	ListEligible(ctx context.Context, tariff string) ([]*models.Video, error)
}

// VehicleRepository defines operations for vehicles
type VehicleRepository interface {
	Repository[models.Vehicle, models.VehicleFilter]
	ByPlateNumber(ctx context.Context, plate string) (*models.Vehicle, error)
}

// PlaylistRepository defines operations for generated playlists
type PlaylistRepository interface {
	Repository[models.Playlist, models.PlaylistFilter]
	ByUUID(ctx context.Context, id uuid.UUID) (*models.Playlist, error)
	LatestByScope(ctx context.Context, scopeKey string) (*models.Playlist, error)
	// CountExpiredCurrent counts scopes whose newest playlist expired before now.
	CountExpiredCurrent(ctx context.Context, now time.Time) (int64, error)
}
