package results

import (
	"time"

	"majority-vote/internal/metrics"
)

// Record is one measured run as it is exported: which algorithm ran on how many elements,
// and the counters its recorder collected.
type Record struct {
	Timestamp   time.Time
	Algorithm   string
	N           int
	ElapsedNs   int64
	Comparisons uint64
	Assignments uint64
	Iterations  uint64
	MemoryBytes uint64
}

// NewRecord copies the values of rec into a Record stamped with now (in UTC)
func NewRecord(algorithm string, n int, rec *metrics.Recorder, now time.Time) Record {
	r := Record{
		Timestamp: now.UTC(),
		Algorithm: algorithm,
		N:         n,
	}
	if rec != nil {
		r.ElapsedNs = rec.ElapsedNs()
		r.Comparisons = rec.Comparisons()
		r.Assignments = rec.Assignments()
		r.Iterations = rec.Iterations()
		r.MemoryBytes = rec.MemoryDelta()
	}
	return r
}

// TimeMs is the elapsed time truncated to whole milliseconds
func (r Record) TimeMs() int64 {
	return r.ElapsedNs / int64(time.Millisecond)
}

// Snapshot converts the record back into recorder values
func (r Record) Snapshot() metrics.Snapshot {
	return metrics.Snapshot{
		Comparisons: r.Comparisons,
		Assignments: r.Assignments,
		Iterations:  r.Iterations,
		ElapsedNs:   r.ElapsedNs,
		ElapsedMs:   float64(r.ElapsedNs) / 1e6,
		MemoryBytes: r.MemoryBytes,
	}
}
