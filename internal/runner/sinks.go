package runner

import (
	"majority-vote/internal/metrics"
	"majority-vote/internal/results"

	"github.com/google/uuid"
)

// CSVSink appends every record to a results file
type CSVSink struct {
	Path string
}

func (s CSVSink) SaveRecord(_ uuid.UUID, record results.Record) error {
	return results.AppendRecord(s.Path, record)
}

// PrometheusSink feeds records into a Prometheus exporter
type PrometheusSink struct {
	Exporter *metrics.PrometheusExporter
}

func (s PrometheusSink) SaveRecord(_ uuid.UUID, record results.Record) error {
	s.Exporter.Observe(record.Algorithm, record.N, record.Snapshot())
	return nil
}
