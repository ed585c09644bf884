package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"majority-vote/internal/dataset"
	"majority-vote/internal/logging"
	"majority-vote/internal/majority"
	"majority-vote/internal/metrics"
)

// Result holds the measurements of one point of the parameter grid
type Result struct {
	N            int                  `json:"n"`
	Distribution dataset.Distribution `json:"distribution"`
	WithMetrics  bool                 `json:"with_metrics"`

	// TimePerOp summarizes the average time per invocation of each measurement iteration
	TimePerOp metrics.DurationStats `json:"time_per_op"`
	Ops       int64                 `json:"ops"`
	OpsPerSec float64               `json:"ops_per_sec"`

	Value   int  `json:"value"`
	Present bool `json:"present"`
}

// Overhead compares the instrumented and plain runs of one (n, distribution) pair
type Overhead struct {
	N            int                  `json:"n"`
	Distribution dataset.Distribution `json:"distribution"`
	WithoutMs    float64              `json:"without_ms"`
	WithMs       float64              `json:"with_ms"`
	// Ratio is WithMs / WithoutMs, 0 when the plain run took no measurable time
	Ratio float64 `json:"ratio"`
}

// Report is the outcome of a harness run
type Report struct {
	Config    Config    `json:"config"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Results   []Result  `json:"results"`
}

// Harness measures the average time per invocation of the majority vote over a grid of inputs
type Harness struct {
	config *Config
	logger logging.Logger
	gen    *dataset.Generator
}

// New validates config and creates a harness for it
func New(config *Config, logger logging.Logger) (*Harness, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Harness{
		config: config,
		logger: logging.OrNop(logger),
		gen:    dataset.NewGenerator(config.Seed),
	}, nil
}

// Run measures every combination of size, distribution and instrumentation mode. The input of a
// combination is generated once. Cancelling ctx stops the run between iterations and returns the
// results collected so far together with the context error.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	report := &Report{Config: *h.config, StartTime: time.Now()}
	defer func() { report.EndTime = time.Now() }()

	for _, n := range h.config.Sizes {
		for _, dist := range h.config.Distributions {
			seq, err := h.gen.Generate(dist, n)
			if err != nil {
				return report, fmt.Errorf("failed to generate input of size %d: %w", n, err)
			}

			for _, withMetrics := range h.config.WithMetrics {
				result, err := h.measure(ctx, seq, withMetrics)
				if err != nil {
					return report, err
				}
				result.N = n
				result.Distribution = dist
				report.Results = append(report.Results, result)

				h.logger.Infof("n=%d distribution=%s metrics=%t: %.6f ms/op (%d ops)",
					n, dist, withMetrics, result.TimePerOp.Mean, result.Ops)
			}
		}
	}

	return report, nil
}

func (h *Harness) measure(ctx context.Context, seq []int, withMetrics bool) (Result, error) {
	result := Result{WithMetrics: withMetrics}

	for i := 0; i < h.config.WarmupIterations; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		h.iteration(seq, withMetrics, &result)
	}

	perOp := make([]time.Duration, 0, h.config.MeasurementIterations)
	var total time.Duration
	for i := 0; i < h.config.MeasurementIterations; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		elapsed, ops := h.iteration(seq, withMetrics, &result)
		perOp = append(perOp, elapsed/time.Duration(ops))
		result.Ops += ops
		total += elapsed
	}

	result.TimePerOp = metrics.SummarizeDurations(perOp)
	if total > 0 {
		result.OpsPerSec = float64(result.Ops) / total.Seconds()
	}
	return result, nil
}

// iteration invokes the vote until IterationTime has passed, at least once
func (h *Harness) iteration(seq []int, withMetrics bool, result *Result) (time.Duration, int64) {
	var ops int64
	start := time.Now()
	for {
		var rec *metrics.Recorder
		if withMetrics {
			// A GC per invocation would dominate the timing
			rec = metrics.NewRecorder(metrics.WithoutGC())
		}
		result.Value, result.Present = majority.FindMajority(seq, rec)
		ops++

		if elapsed := time.Since(start); elapsed >= h.config.IterationTime {
			return elapsed, ops
		}
	}
}

// Overhead pairs the plain and instrumented results of every (n, distribution) in the report
func (r *Report) Overhead() []Overhead {
	type key struct {
		n    int
		dist dataset.Distribution
	}
	without := make(map[key]Result)
	for _, res := range r.Results {
		if !res.WithMetrics {
			without[key{res.N, res.Distribution}] = res
		}
	}

	var out []Overhead
	for _, res := range r.Results {
		if !res.WithMetrics {
			continue
		}
		plain, ok := without[key{res.N, res.Distribution}]
		if !ok {
			continue
		}
		o := Overhead{
			N:            res.N,
			Distribution: res.Distribution,
			WithoutMs:    plain.TimePerOp.Mean,
			WithMs:       res.TimePerOp.Mean,
		}
		if o.WithoutMs > 0 {
			o.Ratio = o.WithMs / o.WithoutMs
		}
		out = append(out, o)
	}
	return out
}

// Print writes the results table followed by the instrumentation overhead
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "MAJORITY VOTE MICRO-BENCHMARK")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Warmup: %d x %s, Measurement: %d x %s\n",
		r.Config.WarmupIterations, r.Config.IterationTime, r.Config.MeasurementIterations, r.Config.IterationTime)
	fmt.Fprintf(w, "Duration: %.2f seconds\n\n", r.EndTime.Sub(r.StartTime).Seconds())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "n\tdistribution\tmetrics\tcnt\tms/op\tp50\tstddev\tops/sec\t")
	for _, res := range r.Results {
		fmt.Fprintf(tw, "%d\t%s\t%t\t%d\t%.6f\t%.6f\t%.6f\t%.0f\t\n",
			res.N, res.Distribution, res.WithMetrics, res.TimePerOp.Count,
			res.TimePerOp.Mean, res.TimePerOp.P50, res.TimePerOp.StdDev, res.OpsPerSec)
	}
	tw.Flush()

	overhead := r.Overhead()
	if len(overhead) == 0 {
		return
	}
	fmt.Fprintln(w, "\n----------------------------------------")
	fmt.Fprintln(w, "Instrumentation overhead")
	fmt.Fprintln(w, "----------------------------------------")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "n\tdistribution\twithout ms/op\twith ms/op\tratio\t")
	for _, o := range overhead {
		fmt.Fprintf(tw, "%d\t%s\t%.6f\t%.6f\t%.2fx\t\n", o.N, o.Distribution, o.WithoutMs, o.WithMs, o.Ratio)
	}
	tw.Flush()
}

// SaveJSON writes the report as indented JSON, creating parent directories as needed
func (r *Report) SaveJSON(filename string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
