package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/billboard-engine/models"
	"github.com/amirphl/billboard-engine/repository"
	"github.com/amirphl/billboard-engine/scheduling"
)

// CatalogAccessor exposes the videos a tariff may play
type CatalogAccessor interface {
	ListEligibleVideos(ctx context.Context, tariff string) ([]scheduling.Video, error)
}

// CatalogAccessorImpl reads the catalog from the video repository
type CatalogAccessorImpl struct {
	videoRepo repository.VideoRepository
}

func NewCatalogAccessor(videoRepo repository.VideoRepository) CatalogAccessor {
	return &CatalogAccessorImpl{videoRepo: videoRepo}
}

// ListEligibleVideos returns active videos of both kinds tagged with tariff.
// Rows with an unknown kind are skipped.
func (c *CatalogAccessorImpl) ListEligibleVideos(ctx context.Context, tariff string) ([]scheduling.Video, error) {
	rows, err := c.videoRepo.ListEligible(ctx, tariff)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	videos := make([]scheduling.Video, 0, len(rows))
	for _, row := range rows {
		v, ok := toSchedulingVideo(row)
		if !ok {
			continue
		}
		videos = append(videos, v)
	}
	return videos, nil
}

func toSchedulingVideo(row *models.Video) (scheduling.Video, bool) {
	v := scheduling.Video{
		ID:        row.ID,
		Duration:  row.Duration(),
		Priority:  row.Priority,
		MediaPath: row.FilePath,
	}
	switch row.Kind {
	case models.VideoKindContract:
		v.Kind = scheduling.KindContract
		v.RequiredPlaysPerHour = row.RequiredPlaysPerHour()
	case models.VideoKindFiller:
		v.Kind = scheduling.KindFiller
	default:
		return scheduling.Video{}, false
	}
	return v, true
}
