package cache

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"
)

// Backend identifies which storage strategy an Engine was opened with.
type Backend string

const (
	BackendRedis   Backend = "redis"
	BackendMemory  Backend = "memory"
	BackendSegment Backend = "segment"
	BackendFile    Backend = "file"
)

// Engine is a TTL key-value cache with interchangeable backends.
//
// The cache is a best-effort layer: every operation fails closed.
// A backend that cannot serve a call (lock not acquired, I/O error,
// oversized payload) reports false/absent/0 instead of an error, and
// callers must tolerate that.
//
// The read-time expiry check is authoritative: Read deletes a stale
// record as a side effect and reports it absent. Exists may be a fast
// existence probe only and can briefly report true for an expired
// record that Read has not yet evicted.
type Engine interface {
	// Exists reports whether a record for key is present.
	Exists(ctx context.Context, key string) bool

	// Read returns the stored value if the record has not expired.
	// A stale record is deleted and reported absent.
	Read(ctx context.Context, key string) (any, bool)

	// Write stores value under key with the given TTL, overwriting
	// unconditionally. A non-positive TTL stores an already-expired
	// record. Reports false when the backend cannot store the value.
	Write(ctx context.Context, key string, value any, ttl time.Duration) bool

	// Increment adds step to the integer stored under key and returns
	// the new value, preserving the record's remaining TTL. Returns 0
	// when the key is absent, expired, or holds a non-integer value.
	// Callers cannot distinguish "reached zero" from "failed" by the
	// return value alone; that ambiguity is part of the contract.
	Increment(ctx context.Context, key string, step int64) int64

	// Remove deletes the record for key. Reports whether a record
	// was deleted.
	Remove(ctx context.Context, key string) bool

	// Clear removes every record. The segment backend cannot
	// enumerate its key space and always reports false.
	Clear(ctx context.Context) bool

	// RunGarbageCollector samples up to power records and forces an
	// expiry check on each, evicting the stale ones. Only the file
	// backend implements it; other backends return 0. Returns the
	// number of records evicted.
	RunGarbageCollector(ctx context.Context, power int) int

	// Backend identifies the storage strategy selected at Open.
	Backend() Backend

	// Close releases backend resources.
	Close() error
}

// record is the logical cache entry shared by all backends.
// Expires is an absolute unix timestamp in seconds.
type record struct {
	Expires int64 `json:"expires"`
	Value   any   `json:"value"`
}

func newRecord(value any, ttl time.Duration) record {
	return record{
		Expires: time.Now().Add(ttl).Unix(),
		Value:   value,
	}
}

// expired reports whether the record has passed its expiry at now.
func (r record) expired(now time.Time) bool {
	return r.Expires <= now.Unix()
}

// remainingTTL returns the time left until expiry, clamped at zero.
func (r record) remainingTTL(now time.Time) time.Duration {
	d := time.Unix(r.Expires, 0).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// asInt64 normalizes the integer representations a record value can
// take after a JSON round trip. Reports false for non-integers.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
		return 0, false
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

var sfGroup singleflight.Group

// GetOrSet reads key from the engine, or computes it with fn on a miss.
// Concurrent misses for the same key within one process collapse into a
// single fn call via singleflight. The computed value is written
// best-effort with the TTL fn returns.
func GetOrSet(ctx context.Context, e Engine, key string, fn func(ctx context.Context) (any, time.Duration, error)) (any, error) {
	if v, ok := e.Read(ctx, key); ok {
		return v, nil
	}

	v, err, _ := sfGroup.Do(key, func() (any, error) {
		val, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		e.Write(ctx, key, val, ttl)
		return val, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}
