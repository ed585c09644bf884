package bench

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"majority-vote/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, []int{100, 1000, 10000, 100000}, config.Sizes)
	assert.Equal(t, []dataset.Distribution{dataset.Random, dataset.Sorted, dataset.Reverse, dataset.NearlySorted}, config.Distributions)
	assert.Equal(t, []bool{false, true}, config.WithMetrics)
	assert.Equal(t, 1, config.WarmupIterations)
	assert.Equal(t, 2, config.MeasurementIterations)
	assert.Equal(t, 200*time.Millisecond, config.IterationTime)
	assert.NoError(t, config.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `
sizes: [10, 20]
distributions: [sorted, Nearly-Sorted]
with_metrics: [true]
measurement_iterations: 5
iteration_time: 50ms
seed: 7
`)
		config, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, []int{10, 20}, config.Sizes)
		assert.Equal(t, []dataset.Distribution{dataset.Sorted, dataset.NearlySorted}, config.Distributions)
		assert.Equal(t, []bool{true}, config.WithMetrics)
		assert.Equal(t, 5, config.MeasurementIterations)
		assert.Equal(t, 50*time.Millisecond, config.IterationTime)
		assert.Equal(t, int64(7), config.Seed)

		// untouched keys keep their defaults
		assert.Equal(t, 1, config.WarmupIterations)
	})

	t.Run("expands environment variables", func(t *testing.T) {
		t.Setenv("BENCH_ITERATION_TIME", "10ms")
		config, err := LoadConfig(writeConfig(t, "iteration_time: ${BENCH_ITERATION_TIME}\n"))
		require.NoError(t, err)
		assert.Equal(t, 10*time.Millisecond, config.IterationTime)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "sizes: [10, \n"))
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "distributions: [zipf]\n"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"no sizes", func(c *Config) { c.Sizes = nil }},
		{"negative size", func(c *Config) { c.Sizes = []int{-1} }},
		{"no distributions", func(c *Config) { c.Distributions = nil }},
		{"unknown distribution", func(c *Config) { c.Distributions = []dataset.Distribution{"zipf"} }},
		{"no modes", func(c *Config) { c.WithMetrics = nil }},
		{"negative warmup", func(c *Config) { c.WarmupIterations = -1 }},
		{"no measurement", func(c *Config) { c.MeasurementIterations = 0 }},
		{"zero iteration time", func(c *Config) { c.IterationTime = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			assert.ErrorIs(t, config.Validate(), ErrInvalidConfig)
		})
	}

	t.Run("zero warmup is allowed", func(t *testing.T) {
		config := DefaultConfig()
		config.WarmupIterations = 0
		assert.NoError(t, config.Validate())
	})
}
