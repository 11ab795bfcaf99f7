package businessflow

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amirphl/billboard-engine/app/services"
	"github.com/amirphl/billboard-engine/models"
	"github.com/amirphl/billboard-engine/repository"
	"github.com/amirphl/billboard-engine/scheduling"
)

type fakeRegistry struct {
	tariffs   map[uint]string
	overrides map[uint]bool
}

func (r *fakeRegistry) ResolveTariff(ctx context.Context, vehicleID uint) (string, error) {
	t, ok := r.tariffs[vehicleID]
	if !ok {
		return "", NewBusinessErrorf("UNKNOWN_SCOPE", "vehicle %d not found", ErrUnknownScope, vehicleID)
	}
	return t, nil
}

func (r *fakeRegistry) HasVehicleOverride(ctx context.Context, vehicleID uint) (bool, error) {
	if _, ok := r.tariffs[vehicleID]; !ok {
		return false, NewBusinessErrorf("UNKNOWN_SCOPE", "vehicle %d not found", ErrUnknownScope, vehicleID)
	}
	return r.overrides[vehicleID], nil
}

func (r *fakeRegistry) KnownTariff(tariff string) bool {
	return models.IsValidTariff(tariff)
}

type fakeCatalog struct {
	videos map[string][]scheduling.Video
	calls  atomic.Int32
	// gate, when set, blocks every call until closed
	gate chan struct{}
}

func (c *fakeCatalog) ListEligibleVideos(ctx context.Context, tariff string) ([]scheduling.Video, error) {
	c.calls.Add(1)
	if c.gate != nil {
		select {
		case <-c.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return c.videos[tariff], nil
}

type fakeStore struct {
	mu      sync.Mutex
	byScope map[string][]*models.Playlist
}

func newFakeStore() *fakeStore {
	return &fakeStore{byScope: make(map[string][]*models.Playlist)}
}

func (s *fakeStore) Current(ctx context.Context, scope scheduling.Scope) (*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.byScope[scope.Key()]
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[len(rows)-1], nil
}

func (s *fakeStore) Put(ctx context.Context, p *models.Playlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byScope[p.ScopeKey] = append(s.byScope[p.ScopeKey], p)
	return nil
}

func (s *fakeStore) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byScope[key])
}

type fakePublisher struct {
	events chan services.PlaylistGeneratedEvent
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{events: make(chan services.PlaylistGeneratedEvent, 16)}
}

func (p *fakePublisher) PublishPlaylistGenerated(ctx context.Context, event services.PlaylistGeneratedEvent) error {
	p.events <- event
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeObserver struct {
	mu        sync.Mutex
	coalesced int
	outcomes  []string
}

func (o *fakeObserver) ObserveGeneration(scopeKind, outcome string, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *fakeObserver) ObserveCoalesced(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.coalesced++
}

func (o *fakeObserver) ObserveWarnings([]scheduling.Warning) {}

func (o *fakeObserver) counts() (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.outcomes), o.coalesced
}

type fakeVideoRepo struct {
	repository.VideoRepository
	rows []*models.Video
}

func (r *fakeVideoRepo) ListEligible(ctx context.Context, tariff string) ([]*models.Video, error) {
	var out []*models.Video
	for _, row := range r.rows {
		for _, t := range row.Tariffs {
			if t == tariff {
				out = append(out, row)
				break
			}
		}
	}
	return out, nil
}

type fakeVehicleRepo struct {
	repository.VehicleRepository
	rows map[uint]*models.Vehicle
}

func (r *fakeVehicleRepo) ByID(ctx context.Context, id uint) (*models.Vehicle, error) {
	return r.rows[id], nil
}

type fakePlaylistRepo struct {
	repository.PlaylistRepository
	saved []*models.Playlist
}

func (r *fakePlaylistRepo) Save(ctx context.Context, p *models.Playlist) error {
	r.saved = append(r.saved, p)
	return nil
}

// InTransaction discards rows saved by fn when it fails.
func (r *fakePlaylistRepo) InTransaction(ctx context.Context, fn func(context.Context) error) error {
	n := len(r.saved)
	if err := fn(ctx); err != nil {
		r.saved = r.saved[:n]
		return err
	}
	return nil
}

func (r *fakePlaylistRepo) LatestByScope(ctx context.Context, scopeKey string) (*models.Playlist, error) {
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].ScopeKey == scopeKey {
			return r.saved[i], nil
		}
	}
	return nil, nil
}
