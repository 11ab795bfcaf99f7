package businessflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amirphl/billboard-engine/config"
	"github.com/amirphl/billboard-engine/models"
	"github.com/amirphl/billboard-engine/scheduling"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRedisDown = errors.New("redis: connection refused")

// memoryRedis answers GET, SET, SETNX and DEL from a map through a client
// hook, so the client never dials. Failures can be switched on per command.
type memoryRedis struct {
	mu      sync.Mutex
	values  map[string]string
	failSet bool
	failDel bool
}

func newMemoryRedis(t *testing.T) (*memoryRedis, *redis.Client) {
	t.Helper()
	m := &memoryRedis{values: make(map[string]string)}
	rc := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	rc.AddHook(m)
	t.Cleanup(func() { _ = rc.Close() })
	return m, rc
}

func (m *memoryRedis) DialHook(next redis.DialHook) redis.DialHook { return next }

func (m *memoryRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (m *memoryRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		m.mu.Lock()
		defer m.mu.Unlock()

		args := cmd.Args()
		key := ""
		if len(args) > 1 {
			key, _ = args[1].(string)
		}
		switch c := cmd.(type) {
		case *redis.StringCmd:
			v, ok := m.values[key]
			if !ok {
				c.SetErr(redis.Nil)
				return redis.Nil
			}
			c.SetVal(v)
		case *redis.StatusCmd:
			if m.failSet {
				c.SetErr(errRedisDown)
				return errRedisDown
			}
			m.values[key] = asString(args[2])
			c.SetVal("OK")
		case *redis.BoolCmd:
			if m.failSet {
				c.SetErr(errRedisDown)
				return errRedisDown
			}
			_, exists := m.values[key]
			if !exists {
				m.values[key] = asString(args[2])
			}
			c.SetVal(!exists)
		case *redis.IntCmd:
			if m.failDel {
				c.SetErr(errRedisDown)
				return errRedisDown
			}
			_, exists := m.values[key]
			delete(m.values, key)
			if exists {
				c.SetVal(1)
			}
		default:
			return next(ctx, cmd)
		}
		return nil
	}
}

func (m *memoryRedis) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

func asString(v any) string {
	switch s := v.(type) {
	case []byte:
		return string(s)
	case string:
		return s
	}
	return ""
}

func storedPlaylist(scope scheduling.Scope, hours int64) *models.Playlist {
	return &models.Playlist{
		UUID:          uuid.New(),
		ScopeKey:      scope.Key(),
		Tariff:        "standard",
		WindowSeconds: hours * 3600,
	}
}

func TestPlaylistStore_CacheFollowsPut(t *testing.T) {
	mem, rc := newMemoryRedis(t)
	repo := &fakePlaylistRepo{}
	cfg := config.CacheConfig{RedisPrefix: "billboard", PlaylistTTL: time.Hour}
	store := NewPlaylistStore(repo, rc, cfg)
	ctx := context.Background()
	scope := scheduling.TariffScope("standard")
	key := redisKey(cfg, "playlist:current:"+scope.Key())

	first := storedPlaylist(scope, 1)
	require.NoError(t, store.Put(ctx, first))
	assert.True(t, mem.has(key))

	second := storedPlaylist(scope, 2)
	require.NoError(t, store.Put(ctx, second))

	current, err := store.Current(ctx, scope)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, second.UUID, current.UUID)
}

func TestPlaylistStore_FailedCacheWriteNeverServesReplacedPlaylist(t *testing.T) {
	mem, rc := newMemoryRedis(t)
	repo := &fakePlaylistRepo{}
	store := NewPlaylistStore(repo, rc, config.CacheConfig{RedisPrefix: "billboard", PlaylistTTL: time.Hour})
	ctx := context.Background()
	scope := scheduling.VehicleScope(4)

	first := storedPlaylist(scope, 1)
	require.NoError(t, store.Put(ctx, first))

	mem.failSet = true
	second := storedPlaylist(scope, 2)
	require.NoError(t, store.Put(ctx, second))

	current, err := store.Current(ctx, scope)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, second.UUID, current.UUID)
}

func TestPlaylistStore_UnreachableCacheRollsBackPut(t *testing.T) {
	mem, rc := newMemoryRedis(t)
	repo := &fakePlaylistRepo{}
	store := NewPlaylistStore(repo, rc, config.CacheConfig{RedisPrefix: "billboard", PlaylistTTL: time.Hour})
	ctx := context.Background()
	scope := scheduling.TariffScope("premium")

	first := storedPlaylist(scope, 1)
	require.NoError(t, store.Put(ctx, first))

	mem.failSet = true
	mem.failDel = true
	err := store.Put(ctx, storedPlaylist(scope, 2))
	require.Error(t, err)
	assert.True(t, IsCacheNotAvailable(err))
	assert.Len(t, repo.saved, 1, "the row must not commit while the old playlist is still cached")

	mem.failSet = false
	mem.failDel = false
	current, err := store.Current(ctx, scope)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, first.UUID, current.UUID)
}

func TestPlaylistStore_ReadThroughKeepsNewerEntry(t *testing.T) {
	_, rc := newMemoryRedis(t)
	repo := &fakePlaylistRepo{}
	store := NewPlaylistStore(repo, rc, config.CacheConfig{RedisPrefix: "billboard", PlaylistTTL: time.Hour})
	ctx := context.Background()
	scope := scheduling.TariffScope("comfort")

	older := storedPlaylist(scope, 1)
	repo.saved = append(repo.saved, older)
	newer := storedPlaylist(scope, 2)
	require.NoError(t, store.Put(ctx, newer))

	// a slow reader that loaded the older row must not clobber the cache
	_ = store.(*PlaylistStoreImpl).cache(ctx, store.(*PlaylistStoreImpl).cacheKey(scope), older, false)

	current, err := store.Current(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, newer.UUID, current.UUID)
}
