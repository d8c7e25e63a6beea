package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"time"
)

// SegmentSize is the fixed size in bytes of one segment slot.
// A serialized record must fit the slot; oversized payloads fail the
// write rather than being truncated.
const SegmentSize = 1024

// Segment is the fixed-size-slot backend. Each key maps
// deterministically to one slot of exactly SegmentSize bytes (the slot
// id is derived from the key and a per-site salt, so two sites sharing
// a host do not collide). Records are zero-padded to the slot size.
//
// The backend cannot enumerate its logical key space from the slot
// ids, so Clear is unsupported and always reports false.
type Segment struct {
	dir  string
	salt string
}

// NewSegment creates a segment-backed cache engine rooted at dir.
// salt namespaces the derived slot ids, typically the site path.
func NewSegment(dir, salt string) (*Segment, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Segment{dir: dir, salt: salt}, nil
}

func (s *Segment) Backend() Backend { return BackendSegment }

// slot derives the deterministic integer slot id for a key.
func (s *Segment) slot(key string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s.salt))
	h.Write([]byte(key))
	return h.Sum64()
}

func (s *Segment) path(key string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%016x.seg", s.slot(key)))
}

func (s *Segment) lockPath(key string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%016x.lock", s.slot(key)))
}

func (s *Segment) Exists(_ context.Context, key string) bool {
	_, err := os.Stat(s.path(key))
	return err == nil
}

func (s *Segment) Read(_ context.Context, key string) (any, bool) {
	var (
		value any
		found bool
	)
	withFileLock(s.lockPath(key), func() bool {
		value, found = s.readSlot(key)
		return found
	})
	return value, found
}

func (s *Segment) Write(_ context.Context, key string, value any, ttl time.Duration) bool {
	return withFileLock(s.lockPath(key), func() bool {
		return s.writeSlot(key, newRecord(value, ttl))
	})
}

func (s *Segment) Increment(_ context.Context, key string, step int64) int64 {
	var result int64
	withFileLock(s.lockPath(key), func() bool {
		rec, ok := s.loadSlot(key)
		if !ok {
			return false
		}
		now := time.Now()
		if rec.expired(now) {
			_ = os.Remove(s.path(key))
			return false
		}
		n, ok := asInt64(rec.Value)
		if !ok {
			return false
		}
		rec.Value = n + step
		if !s.writeSlot(key, rec) {
			return false
		}
		result = n + step
		return true
	})
	return result
}

func (s *Segment) Remove(_ context.Context, key string) bool {
	return withFileLock(s.lockPath(key), func() bool {
		if err := os.Remove(s.path(key)); err != nil {
			return false
		}
		_ = os.Remove(s.lockPath(key))
		return true
	})
}

// Clear is unsupported: slot ids are one-way derivations of the keys,
// so the backend cannot enumerate or selectively reset its key space.
func (s *Segment) Clear(context.Context) bool { return false }

// RunGarbageCollector is a no-op for the segment backend; stale slots
// are reclaimed lazily by Read and overwritten in place by Write.
func (s *Segment) RunGarbageCollector(context.Context, int) int { return 0 }

func (s *Segment) Close() error { return nil }

// loadSlot decodes the record in key's slot. Caller must hold the lock.
func (s *Segment) loadSlot(key string) (record, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return record{}, false
	}
	// Strip the zero padding added on write.
	data = bytes.TrimRight(data, "\x00")
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		_ = os.Remove(s.path(key))
		return record{}, false
	}
	return rec, true
}

func (s *Segment) readSlot(key string) (any, bool) {
	rec, ok := s.loadSlot(key)
	if !ok {
		return nil, false
	}
	if rec.expired(time.Now()) {
		_ = os.Remove(s.path(key))
		return nil, false
	}
	return rec.Value, true
}

// writeSlot serializes rec into key's slot, zero-padded to exactly
// SegmentSize bytes. Caller must hold the lock.
func (s *Segment) writeSlot(key string, rec record) bool {
	data, err := json.Marshal(rec)
	if err != nil {
		return false
	}
	if len(data) > SegmentSize {
		return false
	}
	buf := make([]byte, SegmentSize)
	copy(buf, data)
	return os.WriteFile(s.path(key), buf, 0o644) == nil
}

var _ Engine = (*Segment)(nil)
