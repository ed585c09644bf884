package runner

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"majority-vote/internal/dataset"
	"majority-vote/internal/logging"
	"majority-vote/internal/majority"
	"majority-vote/internal/metrics"
	"majority-vote/internal/results"

	"github.com/google/uuid"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Sink receives the record of every measured size. Failures are reported by the runner
// and never stop the run.
type Sink interface {
	SaveRecord(runID uuid.UUID, record results.Record) error
}

// Config holds the benchmark runner parameters
type Config struct {
	// Sizes are the input lengths to measure, in order
	Sizes []int

	// Distribution of generated inputs. When empty, WithMajority picks between
	// dataset.Majority and dataset.Uniform.
	Distribution dataset.Distribution
	WithMajority bool

	// Seed for input generation
	Seed int64

	// Algorithm is the name written to every record
	Algorithm string

	// GC settles the heap around each timed run so memory deltas are less noisy
	GC bool

	Logger logging.Logger
}

// DefaultSizes are measured when no sizes are given
var DefaultSizes = []int{1500, 1000, 10000}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Sizes:     append([]int(nil), DefaultSizes...),
		Seed:      time.Now().UnixNano(),
		Algorithm: majority.Algorithm,
		GC:        true,
		Logger:    logging.Nop{},
	}
}

// distribution resolves the effective input distribution
func (c *Config) distribution() dataset.Distribution {
	if c.Distribution != "" {
		return c.Distribution
	}
	if c.WithMajority {
		return dataset.Majority
	}
	return dataset.Uniform
}

func validateConfig(config *Config) error {
	if len(config.Sizes) == 0 {
		return fmt.Errorf("%w: at least one size is required", ErrInvalidConfig)
	}
	for _, n := range config.Sizes {
		if n < 0 {
			return fmt.Errorf("%w: negative size %d", ErrInvalidConfig, n)
		}
	}
	if config.Algorithm == "" {
		return fmt.Errorf("%w: Algorithm is required", ErrInvalidConfig)
	}
	if _, err := dataset.ParseDistribution(string(config.distribution())); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ParseSizes parses a comma or space separated list of non-negative sizes such as "100,1000 10000"
func ParseSizes(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	sizes := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", f, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid size %q: must not be negative", f)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

// Measurement is the outcome of one size
type Measurement struct {
	Record  results.Record
	Value   int
	Present bool
}

// Summary describes a finished run
type Summary struct {
	RunID        uuid.UUID
	Measurements []Measurement
	SinkFailures int
}

// Runner measures the majority vote over generated inputs and hands the results to its sinks
type Runner struct {
	config *Config
	gen    *dataset.Generator
	sinks  []Sink
	out    io.Writer
	now    func() time.Time
}

// New creates a runner printing progress to out
func New(config *Config, out io.Writer, sinks ...Sink) (*Runner, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	config.Logger = logging.OrNop(config.Logger)

	return &Runner{
		config: config,
		gen:    dataset.NewGenerator(config.Seed),
		sinks:  sinks,
		out:    out,
		now:    time.Now,
	}, nil
}

// Run measures every configured size once
func (r *Runner) Run() (*Summary, error) {
	summary := &Summary{RunID: uuid.New()}
	dist := r.config.distribution()

	r.config.Logger.Infof("run %s: %s over %s inputs, sizes %v", summary.RunID, r.config.Algorithm, dist, r.config.Sizes)

	for _, n := range r.config.Sizes {
		seq, err := r.gen.Generate(dist, n)
		if err != nil {
			return summary, fmt.Errorf("failed to generate input of size %d: %w", n, err)
		}

		var opts []metrics.Option
		if !r.config.GC {
			opts = append(opts, metrics.WithoutGC())
		}
		rec := metrics.NewRecorder(opts...)
		value, present := majority.FindMajority(seq, rec)

		m := Measurement{
			Record:  results.NewRecord(r.config.Algorithm, n, rec, r.now()),
			Value:   value,
			Present: present,
		}
		summary.Measurements = append(summary.Measurements, m)

		fmt.Fprintf(r.out, "Size=%d -> time=%.6f ms, result=%s, comparisons=%d\n",
			n, rec.ElapsedMs(), formatResult(value, present), rec.Comparisons())

		for _, sink := range r.sinks {
			if err := sink.SaveRecord(summary.RunID, m.Record); err != nil {
				summary.SinkFailures++
				r.config.Logger.Errorf("failed to save record for size %d: %v", n, err)
			}
		}
	}

	return summary, nil
}

func formatResult(value int, present bool) string {
	if !present {
		return "none"
	}
	return strconv.Itoa(value)
}
