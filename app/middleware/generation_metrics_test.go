package middleware

import (
	"testing"
	"time"

	"github.com/amirphl/billboard-engine/scheduling"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGenerationMetrics(t *testing.T) {
	m := NewGenerationMetrics(prometheus.NewRegistry())

	m.ObserveGeneration("tariff", "success", 20*time.Millisecond)
	m.ObserveGeneration("tariff", "success", 30*time.Millisecond)
	m.ObserveGeneration("vehicle", "empty_catalog", time.Millisecond)
	m.ObserveCoalesced("tariff")
	m.ObserveWarnings([]scheduling.Warning{
		{Code: scheduling.WarnUnfilledGap},
		{Code: scheduling.WarnUnfilledGap},
		{Code: scheduling.WarnOversizedContractVideo},
	})
	m.SetExpired(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.generations.WithLabelValues("tariff", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues("vehicle", "empty_catalog")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.coalesced.WithLabelValues("tariff")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.warnings.WithLabelValues(string(scheduling.WarnUnfilledGap))))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.expired))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}
