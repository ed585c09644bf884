package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"time"

	"majority-vote/internal/results"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
	pb "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	// Bucket names
	runsBucket     = []byte("runs")
	metadataBucket = []byte("metadata")

	ErrRunNotFound = errors.New("run not found")
)

// RunInfo describes a stored benchmark run
type RunInfo struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Records   int
}

// BboltDb keeps the history of benchmark runs. Each run gets its own nested bucket
// holding its records in insertion order.
type BboltDb struct {
	conn *bbolt.DB
}

// NewBboltStorage creates a new BBolt-backed run history
func NewBboltStorage(path string) (*BboltDb, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt db: %w", err)
	}

	// Initialize buckets
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(runsBucket); err != nil {
			return fmt.Errorf("failed to create runs bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists(metadataBucket); err != nil {
			return fmt.Errorf("failed to create metadata bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BboltDb{conn: db}, nil
}

// SaveRecord appends a record to the run, creating the run on first use
func (b *BboltDb) SaveRecord(runID uuid.UUID, record results.Record) error {
	data, err := marshalRecord(record)
	if err != nil {
		return err
	}

	return b.conn.Update(func(tx *bbolt.Tx) error {
		key := runID[:]
		run, err := tx.Bucket(runsBucket).CreateBucketIfNotExists(key)
		if err != nil {
			return fmt.Errorf("failed to create bucket for run %s: %w", runID, err)
		}

		meta := tx.Bucket(metadataBucket)
		if meta.Get(key) == nil {
			createdAt, _ := time.Now().UTC().MarshalBinary()
			if err := meta.Put(key, createdAt); err != nil {
				return fmt.Errorf("failed to store metadata for run %s: %w", runID, err)
			}
		}

		seq, err := run.NextSequence()
		if err != nil {
			return err
		}
		return run.Put(uint64ToBytes(seq), data)
	})
}

// GetRun returns the records of a run in the order they were saved
func (b *BboltDb) GetRun(runID uuid.UUID) ([]results.Record, error) {
	var records []results.Record
	err := b.conn.View(func(tx *bbolt.Tx) error {
		run := tx.Bucket(runsBucket).Bucket(runID[:])
		if run == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}

		return run.ForEach(func(_, v []byte) error {
			record, err := unmarshalRecord(v)
			if err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	})
	return records, err
}

// ListRuns returns all stored runs, oldest first
func (b *BboltDb) ListRuns() ([]RunInfo, error) {
	var runs []RunInfo
	err := b.conn.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(metadataBucket)
		return tx.Bucket(runsBucket).ForEachBucket(func(k []byte) error {
			id, err := uuid.FromBytes(k)
			if err != nil {
				return fmt.Errorf("corrupt run key %x: %w", k, err)
			}

			info := RunInfo{ID: id}
			if raw := meta.Get(k); raw != nil {
				if err := info.CreatedAt.UnmarshalBinary(raw); err != nil {
					return fmt.Errorf("corrupt metadata for run %s: %w", id, err)
				}
			}
			info.Records = int(tx.Bucket(runsBucket).Bucket(k).Sequence())
			runs = append(runs, info)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(runs, func(a, b RunInfo) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return runs, nil
}

// DeleteRun removes a run and all of its records
func (b *BboltDb) DeleteRun(runID uuid.UUID) error {
	return b.conn.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(runsBucket).DeleteBucket(runID[:]); err != nil {
			if errors.Is(err, bbolt.ErrBucketNotFound) {
				return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
			}
			return err
		}
		return tx.Bucket(metadataBucket).Delete(runID[:])
	})
}

// Close closes the database connection
func (b *BboltDb) Close() error {
	return b.conn.Close()
}

// marshalRecord encodes a record as a protobuf Struct
func marshalRecord(r results.Record) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"timestamp":    r.Timestamp.UTC().Format(time.RFC3339Nano),
		"algorithm":    r.Algorithm,
		"n":            r.N,
		"elapsed_ns":   r.ElapsedNs,
		"comparisons":  r.Comparisons,
		"assignments":  r.Assignments,
		"iterations":   r.Iterations,
		"memory_bytes": r.MemoryBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to convert record: %w", err)
	}

	data, err := pb.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return data, nil
}

func unmarshalRecord(data []byte) (results.Record, error) {
	s := &structpb.Struct{}
	if err := pb.Unmarshal(data, s); err != nil {
		return results.Record{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	f := s.GetFields()
	ts, err := time.Parse(time.RFC3339Nano, f["timestamp"].GetStringValue())
	if err != nil {
		return results.Record{}, fmt.Errorf("failed to parse record timestamp: %w", err)
	}

	return results.Record{
		Timestamp:   ts,
		Algorithm:   f["algorithm"].GetStringValue(),
		N:           int(f["n"].GetNumberValue()),
		ElapsedNs:   int64(f["elapsed_ns"].GetNumberValue()),
		Comparisons: uint64(f["comparisons"].GetNumberValue()),
		Assignments: uint64(f["assignments"].GetNumberValue()),
		Iterations:  uint64(f["iterations"].GetNumberValue()),
		MemoryBytes: uint64(f["memory_bytes"].GetNumberValue()),
	}, nil
}

// uint64ToBytes converts a uint64 to a byte slice (big-endian)
func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
