package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"
)

// Header is the first line of every results file
var Header = []string{"timestamp", "algorithm", "n", "time_ms", "comparisons", "assignments", "iterations", "memory_bytes"}

var ErrMalformedCSV = errors.New("malformed results csv")

// WriteCSV writes records to path, creating missing parent directories. In append mode the
// header is written only when the file does not exist yet, so it appears once per file.
// Otherwise the file is truncated and starts with a fresh header.
func WriteCSV(path string, records []Record, appendMode bool) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directories for %s: %w", path, err)
		}
	}

	// an empty file counts as new so it still gets a header
	info, statErr := os.Stat(path)
	exists := statErr == nil && info.Size() > 0

	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if !exists || !appendMode {
		if err := w.Write(Header); err != nil {
			f.Close()
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, r := range records {
		if err := w.Write(r.fields()); err != nil {
			f.Close()
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// AppendRecord appends a single record to path
func AppendRecord(path string, r Record) error {
	return WriteCSV(path, []Record{r}, true)
}

// ReadCSV parses a results file written by WriteCSV. Elapsed time is only known to the
// millisecond once written.
func ReadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return readRecords(f)
}

func readRecords(src io.Reader) ([]Record, error) {
	rows, err := csv.NewReader(src).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if !slices.Equal(rows[0], Header) {
		return nil, fmt.Errorf("%w: unexpected header %v", ErrMalformedCSV, rows[0])
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		r, err := parseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCSV, i+2, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func (r Record) fields() []string {
	return []string{
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		r.Algorithm,
		strconv.Itoa(r.N),
		strconv.FormatInt(r.TimeMs(), 10),
		strconv.FormatUint(r.Comparisons, 10),
		strconv.FormatUint(r.Assignments, 10),
		strconv.FormatUint(r.Iterations, 10),
		strconv.FormatUint(r.MemoryBytes, 10),
	}
}

func parseRecord(row []string) (Record, error) {
	if len(row) != len(Header) {
		return Record{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(row))
	}

	ts, err := time.Parse(time.RFC3339Nano, row[0])
	if err != nil {
		return Record{}, fmt.Errorf("timestamp: %w", err)
	}
	n, err := strconv.Atoi(row[2])
	if err != nil {
		return Record{}, fmt.Errorf("n: %w", err)
	}
	ms, err := strconv.ParseInt(row[3], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("time_ms: %w", err)
	}

	var counters [4]uint64
	for i := range counters {
		counters[i], err = strconv.ParseUint(row[4+i], 10, 64)
		if err != nil {
			return Record{}, fmt.Errorf("%s: %w", Header[4+i], err)
		}
	}

	return Record{
		Timestamp:   ts,
		Algorithm:   row[1],
		N:           n,
		ElapsedNs:   ms * int64(time.Millisecond),
		Comparisons: counters[0],
		Assignments: counters[1],
		Iterations:  counters[2],
		MemoryBytes: counters[3],
	}, nil
}
