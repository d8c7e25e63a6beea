package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is the in-process backend. A single mutex gives every
// operation per-key atomicity within the process; cross-process
// sharing is explicitly out of scope for this backend.
type Memory struct {
	mu     sync.Mutex
	items  map[string]record
	closed bool
}

// NewMemory creates an in-process cache engine.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]record)}
}

func (m *Memory) Backend() Backend { return BackendMemory }

func (m *Memory) Exists(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

func (m *Memory) Read(_ context.Context, key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if rec.expired(time.Now()) {
		delete(m.items, key)
		return nil, false
	}
	return rec.Value, true
}

func (m *Memory) Write(_ context.Context, key string, value any, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}
	m.items[key] = newRecord(value, ttl)
	return true
}

func (m *Memory) Increment(_ context.Context, key string, step int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.items[key]
	if !ok {
		return 0
	}
	now := time.Now()
	if rec.expired(now) {
		delete(m.items, key)
		return 0
	}
	n, ok := asInt64(rec.Value)
	if !ok {
		return 0
	}
	rec.Value = n + step
	m.items[key] = rec
	return n + step
}

func (m *Memory) Remove(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[key]; !ok {
		return false
	}
	delete(m.items, key)
	return true
}

func (m *Memory) Clear(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}
	m.items = make(map[string]record)
	return true
}

// RunGarbageCollector is a no-op: memory records are evicted lazily
// on read and the whole store dies with the process.
func (m *Memory) RunGarbageCollector(context.Context, int) int { return 0 }

// Close marks the engine closed. Idempotent.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.items = nil
	return nil
}

var _ Engine = (*Memory)(nil)
