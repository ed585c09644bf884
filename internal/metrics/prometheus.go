package metrics

import (
	"fmt"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "majority"

// PrometheusExporter mirrors finished runs into Prometheus metrics labelled by algorithm.
type PrometheusExporter struct {
	runs        *prom.CounterVec
	comparisons *prom.CounterVec
	assignments *prom.CounterVec
	iterations  *prom.CounterVec
	duration    *prom.HistogramVec
	memory      *prom.GaugeVec
	inputSize   *prom.GaugeVec
}

// NewPrometheusExporter constructs the exporter and registers its metrics on reg.
// A nil reg gets a fresh registry.
func NewPrometheusExporter(reg prom.Registerer) *PrometheusExporter {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	e := &PrometheusExporter{
		runs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed majority vote runs",
		}, []string{"algorithm"}),
		comparisons: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Element and counter comparisons across runs",
		}, []string{"algorithm"}),
		assignments: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_total",
			Help:      "Candidate and counter assignments across runs",
		}, []string{"algorithm"}),
		iterations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Loop iterations across runs",
		}, []string{"algorithm"}),
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a single run",
			Buckets:   prom.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"algorithm"}),
		memory: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_delta_bytes",
			Help:      "Heap growth observed during the last run",
		}, []string{"algorithm"}),
		inputSize: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "input_size",
			Help:      "Input length of the last run",
		}, []string{"algorithm"}),
	}
	reg.MustRegister(e.runs, e.comparisons, e.assignments, e.iterations, e.duration, e.memory, e.inputSize)
	return e
}

// Observe records one finished run of n elements
func (e *PrometheusExporter) Observe(algorithm string, n int, s Snapshot) {
	if e == nil {
		return
	}
	e.runs.WithLabelValues(algorithm).Inc()
	e.comparisons.WithLabelValues(algorithm).Add(float64(s.Comparisons))
	e.assignments.WithLabelValues(algorithm).Add(float64(s.Assignments))
	e.iterations.WithLabelValues(algorithm).Add(float64(s.Iterations))
	e.duration.WithLabelValues(algorithm).Observe(float64(s.ElapsedNs) / 1e9)
	e.memory.WithLabelValues(algorithm).Set(float64(s.MemoryBytes))
	e.inputSize.WithLabelValues(algorithm).Set(float64(n))
}

// WriteTextfile writes everything g gathers in the text exposition format, for pickup by
// node_exporter's textfile collector.
func WriteTextfile(g prom.Gatherer, path string) error {
	if err := prom.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}

// HTTPHandler serves the metrics gathered by g
func HTTPHandler(g prom.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
