package bench

import (
	"errors"
	"fmt"
	"os"
	"time"

	"majority-vote/internal/dataset"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid benchmark configuration")

// Config describes the parameter grid of a micro-benchmark run and how long each point is measured
type Config struct {
	Sizes         []int                  `yaml:"sizes" json:"sizes"`
	Distributions []dataset.Distribution `yaml:"distributions" json:"distributions"`
	// WithMetrics lists the instrumentation modes. false runs the vote without a recorder,
	// true hands a fresh recorder to every invocation.
	WithMetrics []bool `yaml:"with_metrics" json:"with_metrics"`

	WarmupIterations      int           `yaml:"warmup_iterations" json:"warmup_iterations"`
	MeasurementIterations int           `yaml:"measurement_iterations" json:"measurement_iterations"`
	IterationTime         time.Duration `yaml:"iteration_time" json:"iteration_time_ns"`

	Seed int64 `yaml:"seed" json:"seed"`
}

// DefaultConfig returns the default grid: four sizes, four distributions, both modes,
// one warmup and two measurement iterations of 200ms each
func DefaultConfig() *Config {
	return &Config{
		Sizes:                 []int{100, 1000, 10000, 100000},
		Distributions:         []dataset.Distribution{dataset.Random, dataset.Sorted, dataset.Reverse, dataset.NearlySorted},
		WithMetrics:           []bool{false, true},
		WarmupIterations:      1,
		MeasurementIterations: 2,
		IterationTime:         200 * time.Millisecond,
		Seed:                  time.Now().UnixNano(),
	}
}

// LoadConfig reads a YAML plan. Keys missing from the file keep their default values.
// Durations are written as strings such as "200ms".
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal benchmark config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration and normalizes distribution names
func (c *Config) Validate() error {
	if len(c.Sizes) == 0 {
		return fmt.Errorf("%w: at least one size is required", ErrInvalidConfig)
	}
	for _, n := range c.Sizes {
		if n < 0 {
			return fmt.Errorf("%w: negative size %d", ErrInvalidConfig, n)
		}
	}

	if len(c.Distributions) == 0 {
		return fmt.Errorf("%w: at least one distribution is required", ErrInvalidConfig)
	}
	for i, d := range c.Distributions {
		parsed, err := dataset.ParseDistribution(string(d))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		c.Distributions[i] = parsed
	}

	if len(c.WithMetrics) == 0 {
		return fmt.Errorf("%w: at least one instrumentation mode is required", ErrInvalidConfig)
	}
	if c.WarmupIterations < 0 {
		return fmt.Errorf("%w: WarmupIterations must not be negative", ErrInvalidConfig)
	}
	if c.MeasurementIterations < 1 {
		return fmt.Errorf("%w: MeasurementIterations must be at least 1", ErrInvalidConfig)
	}
	if c.IterationTime <= 0 {
		return fmt.Errorf("%w: IterationTime must be positive", ErrInvalidConfig)
	}
	return nil
}
