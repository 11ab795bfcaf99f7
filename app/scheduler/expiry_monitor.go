// Package scheduler runs background jobs that watch stored playlists
package scheduler

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/amirphl/billboard-engine/config"
	"github.com/amirphl/billboard-engine/utils"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ExpiredCounter counts scopes whose current playlist has passed valid_until
type ExpiredCounter interface {
	CountExpiredCurrent(ctx context.Context, now time.Time) (int64, error)
}

// ExpiredGauge receives the latest count
type ExpiredGauge interface {
	SetExpired(n int64)
}

// ExpiryMonitor periodically reports how many scopes are serving an expired
// playlist. It never regenerates: expired playlists keep being served until
// someone asks for a new one.
type ExpiryMonitor struct {
	counter  ExpiredCounter
	gauge    ExpiredGauge
	interval time.Duration
	logger   *log.Logger
	logFile  io.Closer

	now func() time.Time
	// last is the previously reported count; -1 before the first run
	last int64
}

func NewExpiryMonitor(counter ExpiredCounter, gauge ExpiredGauge, cfg config.PlaylistConfig, logging config.LoggingConfig) *ExpiryMonitor {
	interval := cfg.ExpiryCheckInterval
	if interval <= 0 {
		interval = time.Minute
	}
	m := &ExpiryMonitor{
		counter:  counter,
		gauge:    gauge,
		interval: interval,
		now:      utils.UTCNow,
		last:     -1,
	}
	m.initSchedulerLogger(cfg.SchedulerLogPath, logging)
	return m
}

// initSchedulerLogger writes to stdout and, when a path is configured, to a rotated file
func (m *ExpiryMonitor) initSchedulerLogger(path string, logging config.LoggingConfig) {
	var w io.Writer = os.Stdout
	if path != "" {
		rotated := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    logging.MaxSize,
			MaxBackups: logging.MaxBackups,
			MaxAge:     logging.MaxAge,
			Compress:   logging.Compress,
		}
		m.logFile = rotated
		w = io.MultiWriter(os.Stdout, rotated)
	}
	m.logger = log.New(w, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Start launches the monitor loop in a background goroutine and returns a stop function
func (m *ExpiryMonitor) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.runOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.runOnce(ctx)
			}
		}
	}()

	return func() {
		cancel()
		<-done
		if m.logFile != nil {
			_ = m.logFile.Close()
		}
	}
}

func (m *ExpiryMonitor) runOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	n, err := m.counter.CountExpiredCurrent(ctx, m.now())
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Printf("expiry monitor: count expired playlists failed: %v", err)
		}
		return
	}
	m.gauge.SetExpired(n)
	if n != m.last {
		m.logger.Printf("expiry monitor: %d scopes serving an expired playlist", n)
		m.last = n
	}
}
