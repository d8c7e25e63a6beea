package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
)

// options holds the Open configuration.
type options struct {
	redisClient   redis.UniversalClient
	segmentDir    string
	fileDir       string
	salt          string
	memoryEnabled bool
}

// Option configures Open.
type Option func(*options)

// WithRedis offers a Redis client as the preferred backend candidate.
// The probe pings the server; an unreachable server fails the probe
// and the next candidate is tried.
func WithRedis(client redis.UniversalClient) Option {
	return func(o *options) { o.redisClient = client }
}

// WithoutMemory removes the in-process backend from the candidate
// list. Use for deployments where cached state must survive the
// process or be shared between workers.
func WithoutMemory() Option {
	return func(o *options) { o.memoryEnabled = false }
}

// WithSegmentDir offers the fixed-size-slot backend rooted at dir.
func WithSegmentDir(dir string) Option {
	return func(o *options) { o.segmentDir = dir }
}

// WithFileDir offers the file backend rooted at dir.
func WithFileDir(dir string) Option {
	return func(o *options) { o.fileDir = dir }
}

// WithSalt namespaces derived segment slot ids and Redis keys,
// typically with the site path.
func WithSalt(salt string) Option {
	return func(o *options) { o.salt = salt }
}

// Open probes the configured backend candidates and returns an Engine
// bound to the first capable one. The preference order is fixed:
// Redis (when a client is configured), Memory (unless disabled),
// Segment (when a directory is configured and writable), File (same).
// The choice is made exactly once; there is no fallback mid-session.
func Open(ctx context.Context, opts ...Option) (Engine, error) {
	o := &options{memoryEnabled: true}
	for _, opt := range opts {
		opt(o)
	}

	if o.redisClient != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := o.redisClient.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			return NewRedis(o.redisClient, o.salt), nil
		}
	}

	if o.memoryEnabled {
		return NewMemory(), nil
	}

	if o.segmentDir != "" && dirUsable(o.segmentDir) {
		return NewSegment(o.segmentDir, o.salt)
	}

	if o.fileDir != "" && dirUsable(o.fileDir) {
		return NewFile(o.fileDir)
	}

	return nil, ErrNoBackend
}

// dirUsable reports whether dir exists (or can be created) and is
// writable, checked with a throwaway probe file.
func dirUsable(dir string) bool {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}
	probe := filepath.Join(dir, ".probe")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return false
	}
	_ = os.Remove(probe)
	return true
}
