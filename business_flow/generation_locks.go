package businessflow

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/amirphl/billboard-engine/models"
	"golang.org/x/sync/singleflight"
)

// generationGroup allows at most one in-flight generation per scope key.
// Callers arriving while one runs share its result.
type generationGroup struct {
	group singleflight.Group

	mu      sync.Mutex
	waiters map[string]int
}

func newGenerationGroup() *generationGroup {
	return &generationGroup{waiters: make(map[string]int)}
}

// Do runs fn once per key among concurrent callers. fn receives a context
// that outlives any single caller; each caller stops waiting when its own
// ctx is done. joined reports whether the caller received a generation
// started by another caller.
func (g *generationGroup) Do(ctx context.Context, key string, fn func(context.Context) (*models.Playlist, error)) (*models.Playlist, bool, error) {
	g.enter(key)
	defer g.leave(key)

	var led atomic.Bool
	detached := context.WithoutCancel(ctx)
	ch := g.group.DoChan(key, func() (val any, err error) {
		led.Store(true)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("generation for %s panicked: %v", key, r)
			}
		}()
		return fn(detached)
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		joined := !led.Load()
		if res.Err != nil {
			return nil, joined, res.Err
		}
		return res.Val.(*models.Playlist), joined, nil
	}
}

// Waiters is the number of callers currently inside Do for key.
func (g *generationGroup) Waiters(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.waiters[key]
}

func (g *generationGroup) enter(key string) {
	g.mu.Lock()
	g.waiters[key]++
	g.mu.Unlock()
}

func (g *generationGroup) leave(key string) {
	g.mu.Lock()
	if g.waiters[key]--; g.waiters[key] <= 0 {
		delete(g.waiters, key)
	}
	g.mu.Unlock()
}
