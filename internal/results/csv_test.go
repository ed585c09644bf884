package results

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"majority-vote/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(n int) Record {
	return Record{
		Timestamp:   time.Date(2025, 3, 14, 15, 9, 26, 535000000, time.UTC),
		Algorithm:   "BoyerMooreMajorityVote",
		N:           n,
		ElapsedNs:   2_750_000,
		Comparisons: uint64(3*n + 1),
		Assignments: uint64(n),
		Iterations:  uint64(2 * n),
		MemoryBytes: 128,
	}
}

func TestNewRecord(t *testing.T) {
	rec := metrics.NewRecorder(metrics.WithoutGC())
	rec.IncrementComparisons()
	rec.IncrementIterations()
	rec.IncrementIterations()

	local := time.Date(2025, 1, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	r := NewRecord("algo", 1, rec, local)

	assert.Equal(t, time.UTC, r.Timestamp.Location())
	assert.True(t, local.Equal(r.Timestamp))
	assert.Equal(t, "algo", r.Algorithm)
	assert.Equal(t, 1, r.N)
	assert.Equal(t, uint64(1), r.Comparisons)
	assert.Equal(t, uint64(2), r.Iterations)

	t.Run("nil recorder leaves counters empty", func(t *testing.T) {
		r := NewRecord("algo", 0, nil, local)
		assert.Equal(t, uint64(0), r.Comparisons)
		assert.Equal(t, int64(0), r.ElapsedNs)
	})
}

func TestRecord_TimeMs(t *testing.T) {
	assert.Equal(t, int64(2), Record{ElapsedNs: 2_999_999}.TimeMs())
	assert.Equal(t, int64(0), Record{ElapsedNs: 999_999}.TimeMs())
}

func TestWriteCSV(t *testing.T) {
	t.Run("creates parent directories and writes header once", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "benchmarks.csv")

		require.NoError(t, AppendRecord(path, sampleRecord(10)))
		require.NoError(t, AppendRecord(path, sampleRecord(20)))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")

		require.Len(t, lines, 3)
		assert.Equal(t, "timestamp,algorithm,n,time_ms,comparisons,assignments,iterations,memory_bytes", lines[0])
		assert.Equal(t, "2025-03-14T15:09:26.535Z,BoyerMooreMajorityVote,10,2,31,10,20,128", lines[1])
		assert.True(t, strings.HasPrefix(lines[2], "2025-03-14T15:09:26.535Z,BoyerMooreMajorityVote,20,"))
	})

	t.Run("truncates when not appending", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")

		require.NoError(t, WriteCSV(path, []Record{sampleRecord(1), sampleRecord(2)}, true))
		require.NoError(t, WriteCSV(path, []Record{sampleRecord(3)}, false))

		records, err := ReadCSV(path)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 3, records[0].N)
	})

	t.Run("empty existing file gets a header", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.csv")
		require.NoError(t, os.WriteFile(path, nil, 0644))

		require.NoError(t, AppendRecord(path, sampleRecord(4)))

		records, err := ReadCSV(path)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("fails when parent is a file", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		err := AppendRecord(filepath.Join(blocker, "out.csv"), sampleRecord(1))
		assert.Error(t, err)
	})
}

func TestReadCSV(t *testing.T) {
	t.Run("reads back what was written", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		want := []Record{sampleRecord(5), sampleRecord(6)}
		require.NoError(t, WriteCSV(path, want, true))

		got, err := ReadCSV(path)
		require.NoError(t, err)
		require.Len(t, got, 2)
		for i := range want {
			assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp))
			assert.Equal(t, want[i].N, got[i].N)
			assert.Equal(t, want[i].TimeMs(), got[i].TimeMs())
			assert.Equal(t, want[i].Comparisons, got[i].Comparisons)
			assert.Equal(t, want[i].MemoryBytes, got[i].MemoryBytes)
		}
	})

	t.Run("rejects foreign header", func(t *testing.T) {
		_, err := readRecords(strings.NewReader("a,b,c\n1,2,3\n"))
		assert.ErrorIs(t, err, ErrMalformedCSV)
	})

	t.Run("rejects bad numbers", func(t *testing.T) {
		src := strings.Join(Header, ",") + "\n2025-03-14T15:09:26Z,x,ten,0,0,0,0,0\n"
		_, err := readRecords(strings.NewReader(src))
		assert.ErrorIs(t, err, ErrMalformedCSV)
	})

	t.Run("empty input has no records", func(t *testing.T) {
		records, err := readRecords(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
		assert.Error(t, err)
	})
}
