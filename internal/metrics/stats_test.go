package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeDurations(t *testing.T) {
	t.Run("returns empty stats for no samples", func(t *testing.T) {
		stats := SummarizeDurations(nil)
		assert.Equal(t, DurationStats{}, stats)
	})

	t.Run("calculates statistics", func(t *testing.T) {
		samples := []time.Duration{300 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond}

		stats := SummarizeDurations(samples)
		assert.Equal(t, 3, stats.Count)
		assert.InDelta(t, 200.0, stats.Mean, 0.001)
		assert.InDelta(t, 200.0, stats.P50, 0.001)
		assert.InDelta(t, 100.0, stats.Min, 0.001)
		assert.InDelta(t, 300.0, stats.Max, 0.001)
		assert.Greater(t, stats.StdDev, 0.0)

		// input order untouched
		assert.Equal(t, 300*time.Millisecond, samples[0])
	})

	t.Run("keeps sub-microsecond precision", func(t *testing.T) {
		stats := SummarizeDurations([]time.Duration{250 * time.Nanosecond})
		assert.InDelta(t, 0.00025, stats.Mean, 1e-12)
	})

	t.Run("calculates percentiles", func(t *testing.T) {
		var samples []time.Duration
		for i := 1; i <= 100; i++ {
			samples = append(samples, time.Duration(i)*time.Millisecond)
		}

		stats := SummarizeDurations(samples)
		assert.InDelta(t, 50.0, stats.P50, 1.0)
		assert.InDelta(t, 95.0, stats.P95, 1.0)
		assert.InDelta(t, 99.0, stats.P99, 1.0)
	})
}

func TestPercentile(t *testing.T) {
	assert.Equal(t, 0.0, percentile(nil, 50))
	assert.Equal(t, 7.0, percentile([]float64{7}, 99))
	assert.InDelta(t, 1.5, percentile([]float64{1, 2}, 50), 1e-9)
}
