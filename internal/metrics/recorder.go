package metrics

import (
	"fmt"
	"runtime"
	"time"
)

// Collector is the set of hooks the majority vote drives during a run.
// Both *Recorder and Noop implement it.
type Collector interface {
	Reset()
	StartTimer()
	StopTimer()
	IncrementComparisons()
	IncrementAssignments()
	IncrementIterations()
}

// Noop is a Collector that records nothing (used when the caller supplies no recorder)
type Noop struct{}

func (Noop) Reset()                {}
func (Noop) StartTimer()           {}
func (Noop) StopTimer()            {}
func (Noop) IncrementComparisons() {}
func (Noop) IncrementAssignments() {}
func (Noop) IncrementIterations()  {}

// readHeapBytes samples the bytes of allocated heap objects. Swapped in tests.
var readHeapBytes = func() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

// Recorder accumulates operation counters, elapsed time and a best-effort memory delta
// for a single run. It is not safe for concurrent use.
type Recorder struct {
	comparisons uint64
	assignments uint64
	iterations  uint64

	started   bool
	startTime time.Time
	elapsed   time.Duration

	startMemory uint64
	endMemory   uint64

	// skipGC disables the collection forced before each memory sample
	skipGC bool
}

// Option configures a Recorder
type Option func(*Recorder)

// WithoutGC stops the recorder from forcing a garbage collection around the timed region.
// Memory deltas become noisier but timer calls get much cheaper.
func WithoutGC() Option {
	return func(r *Recorder) {
		r.skipGC = true
	}
}

// NewRecorder creates a new, empty recorder
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) IncrementComparisons() { r.comparisons++ }
func (r *Recorder) IncrementAssignments() { r.assignments++ }
func (r *Recorder) IncrementIterations()  { r.iterations++ }

// StartTimer samples heap usage and captures the start of the timed region
func (r *Recorder) StartTimer() {
	r.settle()
	r.startMemory = readHeapBytes()
	r.started = true
	r.startTime = time.Now()
}

// StopTimer computes the elapsed time since StartTimer and takes the second heap sample.
// Without a preceding StartTimer the elapsed time stays zero.
func (r *Recorder) StopTimer() {
	if r.started {
		r.elapsed = time.Since(r.startTime)
		r.started = false
	}
	r.settle()
	r.endMemory = readHeapBytes()
}

func (r *Recorder) settle() {
	if !r.skipGC {
		runtime.GC()
	}
}

func (r *Recorder) Comparisons() uint64 { return r.comparisons }
func (r *Recorder) Assignments() uint64 { return r.assignments }
func (r *Recorder) Iterations() uint64  { return r.iterations }

// Elapsed returns the time measured between the last StartTimer/StopTimer pair
func (r *Recorder) Elapsed() time.Duration { return r.elapsed }

func (r *Recorder) ElapsedNs() int64 { return r.elapsed.Nanoseconds() }

func (r *Recorder) ElapsedMs() float64 { return float64(r.elapsed.Nanoseconds()) / 1e6 }

// MemoryDelta returns the heap growth across the timed region, clamped at zero since the
// collector may free more than the run allocated.
func (r *Recorder) MemoryDelta() uint64 {
	if r.endMemory <= r.startMemory {
		return 0
	}
	return r.endMemory - r.startMemory
}

// Reset clears all collected values. The GC option is kept.
func (r *Recorder) Reset() {
	skipGC := r.skipGC
	*r = Recorder{skipGC: skipGC}
}

// Merge adds the counters and elapsed time of other into r.
// Memory samples are left alone: they are not additive across runs.
func (r *Recorder) Merge(other *Recorder) {
	if other == nil {
		return
	}
	r.comparisons += other.comparisons
	r.assignments += other.assignments
	r.iterations += other.iterations
	r.elapsed += other.elapsed
}

// Snapshot is a point-in-time copy of a recorder's values
type Snapshot struct {
	Comparisons uint64  `json:"comparisons"`
	Assignments uint64  `json:"assignments"`
	Iterations  uint64  `json:"iterations"`
	ElapsedNs   int64   `json:"elapsed_ns"`
	ElapsedMs   float64 `json:"elapsed_ms"`
	MemoryBytes uint64  `json:"memory_bytes"`
}

// Snapshot copies the current values
func (r *Recorder) Snapshot() Snapshot {
	return Snapshot{
		Comparisons: r.comparisons,
		Assignments: r.assignments,
		Iterations:  r.iterations,
		ElapsedNs:   r.ElapsedNs(),
		ElapsedMs:   r.ElapsedMs(),
		MemoryBytes: r.MemoryDelta(),
	}
}

func (r *Recorder) String() string {
	return fmt.Sprintf("Comparisons=%d, Assignments=%d, Iterations=%d, Time=%.3f ms, Memory=%d bytes",
		r.comparisons, r.assignments, r.iterations, r.ElapsedMs(), r.MemoryDelta())
}
