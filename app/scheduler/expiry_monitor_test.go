package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirphl/billboard-engine/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	mu     sync.Mutex
	counts []int64
	err    error
	calls  atomic.Int32
}

func (c *fakeCounter) CountExpiredCurrent(ctx context.Context, now time.Time) (int64, error) {
	c.calls.Add(1)
	if c.err != nil {
		return 0, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.counts) == 0 {
		return 0, nil
	}
	n := c.counts[0]
	if len(c.counts) > 1 {
		c.counts = c.counts[1:]
	}
	return n, nil
}

type fakeGauge struct {
	mu     sync.Mutex
	values []int64
}

func (g *fakeGauge) SetExpired(n int64) {
	g.mu.Lock()
	g.values = append(g.values, n)
	g.mu.Unlock()
}

func (g *fakeGauge) snapshot() []int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]int64(nil), g.values...)
}

func TestExpiryMonitor_ReportsCounts(t *testing.T) {
	counter := &fakeCounter{counts: []int64{2, 0, 5}}
	gauge := &fakeGauge{}
	m := NewExpiryMonitor(counter, gauge, config.PlaylistConfig{ExpiryCheckInterval: 5 * time.Millisecond}, config.LoggingConfig{})

	stop := m.Start(context.Background())
	require.Eventually(t, func() bool { return len(gauge.snapshot()) >= 4 }, 2*time.Second, 5*time.Millisecond)
	stop()

	values := gauge.snapshot()
	assert.Equal(t, []int64{2, 0, 5, 5}, values[:4])
}

func TestExpiryMonitor_CountFailureLeavesGauge(t *testing.T) {
	counter := &fakeCounter{err: errors.New("db down")}
	gauge := &fakeGauge{}
	m := NewExpiryMonitor(counter, gauge, config.PlaylistConfig{ExpiryCheckInterval: time.Hour}, config.LoggingConfig{})

	m.runOnce(context.Background())
	assert.Equal(t, int32(1), counter.calls.Load())
	assert.Empty(t, gauge.snapshot())
}

func TestExpiryMonitor_RotatedLogFile(t *testing.T) {
	path := t.TempDir() + "/scheduler.log"
	m := NewExpiryMonitor(&fakeCounter{counts: []int64{1}}, &fakeGauge{}, config.PlaylistConfig{
		ExpiryCheckInterval: time.Hour,
		SchedulerLogPath:    path,
	}, config.LoggingConfig{MaxSize: 1})

	stop := m.Start(context.Background())
	stop()
	assert.FileExists(t, path)
}
