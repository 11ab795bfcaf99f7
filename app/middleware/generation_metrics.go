package middleware

import (
	"time"

	"github.com/amirphl/billboard-engine/scheduling"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// GenerationMetrics records playlist generation telemetry in Prometheus
type GenerationMetrics struct {
	generations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	coalesced   *prometheus.CounterVec
	warnings    *prometheus.CounterVec
	expired     prometheus.Gauge
}

// NewGenerationMetrics registers the generation collectors on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewGenerationMetrics(reg prometheus.Registerer) *GenerationMetrics {
	factory := promauto.With(reg)
	return &GenerationMetrics{
		generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "playlist_generations_total",
				Help:      "Playlist generations by scope kind and outcome",
			},
			[]string{"scope", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "playlist_generation_duration_seconds",
				Help:      "Time spent generating and storing one playlist",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"scope"},
		),
		coalesced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "playlist_generation_coalesced_total",
				Help:      "Regenerate calls that shared an in-flight generation",
			},
			[]string{"scope"},
		),
		warnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "playlist_generation_warnings_total",
				Help:      "Diagnostics emitted by generation, by code",
			},
			[]string{"code"},
		),
		expired: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "playlists_expired_current",
				Help:      "Scopes whose current playlist is past valid_until",
			},
		),
	}
}

func (m *GenerationMetrics) ObserveGeneration(scopeKind, outcome string, elapsed time.Duration) {
	m.generations.WithLabelValues(scopeKind, outcome).Inc()
	m.duration.WithLabelValues(scopeKind).Observe(elapsed.Seconds())
}

func (m *GenerationMetrics) ObserveCoalesced(scopeKind string) {
	m.coalesced.WithLabelValues(scopeKind).Inc()
}

func (m *GenerationMetrics) ObserveWarnings(warnings []scheduling.Warning) {
	for _, w := range warnings {
		m.warnings.WithLabelValues(string(w.Code)).Inc()
	}
}

// SetExpired publishes the latest expired-scope count
func (m *GenerationMetrics) SetExpired(n int64) {
	m.expired.Set(float64(n))
}
