package prog

import (
	"fmt"
	"io"
	"os"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotSchema is the wire schema version. Increment when the payload
// layout changes so front ends and analyzers can evolve independently.
const SnapshotSchema uint16 = 1

// snapshotPayload is the on-wire envelope around a snapshot.
type snapshotPayload struct {
	Schema    uint16
	Count     uint32
	Functions []*Function
}

// WriteSnapshot serializes a snapshot into the msgpack wire format.
func WriteSnapshot(w io.Writer, s *Snapshot) error {
	count, err := safecast.Conv[uint32](len(s.Functions))
	if err != nil {
		return fmt.Errorf("snapshot function count overflow: %w", err)
	}

	payload := snapshotPayload{
		Schema:    SnapshotSchema,
		Count:     count,
		Functions: s.Functions,
	}

	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(&payload); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return nil
}

// ReadSnapshot deserializes and validates a snapshot from the msgpack wire format.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var payload snapshotPayload

	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	if payload.Schema != SnapshotSchema {
		return nil, fmt.Errorf("snapshot schema %d is not supported, want %d", payload.Schema, SnapshotSchema)
	}

	count, err := safecast.Conv[uint32](len(payload.Functions))
	if err != nil {
		return nil, fmt.Errorf("snapshot function count overflow: %w", err)
	}
	if count != payload.Count {
		return nil, fmt.Errorf("snapshot is truncated: %d functions declared, %d present", payload.Count, count)
	}

	s := &Snapshot{Functions: payload.Functions}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate snapshot: %w", err)
	}

	return s, nil
}

// LoadSnapshot reads a snapshot file produced by an external front end.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return ReadSnapshot(f)
}
