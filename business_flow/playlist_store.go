package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/amirphl/billboard-engine/config"
	"github.com/amirphl/billboard-engine/models"
	"github.com/amirphl/billboard-engine/repository"
	"github.com/amirphl/billboard-engine/scheduling"
	"github.com/amirphl/billboard-engine/utils"
	"github.com/redis/go-redis/v9"
)

// PlaylistStore keeps every generated playlist and answers which one is
// current for a scope.
type PlaylistStore interface {
	// Current returns the newest playlist of scope, or nil when none exists.
	Current(ctx context.Context, scope scheduling.Scope) (*models.Playlist, error)
	Put(ctx context.Context, playlist *models.Playlist) error
}

// PlaylistStoreImpl persists history in postgres and mirrors the current
// playlist of each scope into redis. rc may be nil when the cache is disabled.
type PlaylistStoreImpl struct {
	playlistRepo repository.PlaylistRepository
	rc           *redis.Client
	cacheConfig  config.CacheConfig
}

func NewPlaylistStore(playlistRepo repository.PlaylistRepository, rc *redis.Client, cacheConfig config.CacheConfig) PlaylistStore {
	return &PlaylistStoreImpl{
		playlistRepo: playlistRepo,
		rc:           rc,
		cacheConfig:  cacheConfig,
	}
}

func (s *PlaylistStoreImpl) Current(ctx context.Context, scope scheduling.Scope) (*models.Playlist, error) {
	cacheKey := s.cacheKey(scope)

	// try redis first
	if s.rc != nil {
		if bs, err := s.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached models.Playlist
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	playlist, err := s.playlistRepo.LatestByScope(ctx, scope.Key())
	if err != nil {
		return nil, err
	}
	if playlist == nil {
		return nil, nil
	}
	_ = s.cache(ctx, cacheKey, playlist, false)
	return playlist, nil
}

// Put appends playlist to the history and makes it current. The cached
// pointer is dropped before the row commits; if that fails the row is rolled
// back so the previous playlist stays current everywhere.
func (s *PlaylistStoreImpl) Put(ctx context.Context, playlist *models.Playlist) error {
	scope, err := playlist.Scope()
	if err != nil {
		return err
	}
	cacheKey := s.cacheKey(scope)

	err = s.playlistRepo.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.playlistRepo.Save(txCtx, playlist); err != nil {
			return fmt.Errorf("store playlist for %s: %w", playlist.ScopeKey, err)
		}
		return s.invalidate(ctx, cacheKey)
	})
	if err != nil {
		return err
	}

	// A reader may have refilled the old playlist between the delete and the
	// commit; Set overwrites it, and a failed Set falls back to a delete.
	if err := s.cache(ctx, cacheKey, playlist, true); err != nil {
		if derr := s.invalidate(ctx, cacheKey); derr != nil {
			log.Printf("playlist cache: %s may serve a replaced playlist until it expires: %v", cacheKey, derr)
		}
	}
	return nil
}

func (s *PlaylistStoreImpl) invalidate(ctx context.Context, cacheKey string) error {
	if s.rc == nil {
		return nil
	}
	if err := s.rc.Del(ctx, cacheKey).Err(); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrCacheNotAvailable, cacheKey, err)
	}
	return nil
}

// cache mirrors playlist into redis. Read-through fills never replace an
// entry, so a slow reader cannot clobber a playlist written by Put.
func (s *PlaylistStoreImpl) cache(ctx context.Context, cacheKey string, playlist *models.Playlist, overwrite bool) error {
	if s.rc == nil {
		return nil
	}
	bs, err := json.Marshal(playlist)
	if err != nil {
		log.Printf("playlist cache: marshal %s failed: %v", playlist.ScopeKey, err)
		return err
	}
	if overwrite {
		err = s.rc.Set(ctx, cacheKey, bs, s.cacheConfig.PlaylistTTL).Err()
	} else {
		err = s.rc.SetNX(ctx, cacheKey, bs, s.cacheConfig.PlaylistTTL).Err()
	}
	if err != nil {
		log.Printf("playlist cache: set %s failed: %v", cacheKey, err)
	}
	return err
}

func (s *PlaylistStoreImpl) cacheKey(scope scheduling.Scope) string {
	return redisKey(s.cacheConfig, utils.CurrentPlaylistCacheKey+scope.Key())
}
