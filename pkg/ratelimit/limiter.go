// Package ratelimit provides a fixed-window rate limiter backed by a
// cache engine, so limits are shared between processes when the
// engine is.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/fastraven/fastraven/pkg/cache"
)

// Result describes the outcome of a limiter check.
type Result struct {
	Allowed    bool
	Remaining  int64         // requests left in the current window
	RetryAfter time.Duration // time until the window resets; zero when allowed
}

// Limiter counts requests per key in fixed time windows. The counter
// lives in the cache engine under a window-scoped key, so it expires
// on its own and survives restarts when the backend does.
//
// The limiter fails open: if the engine rejects reads or writes the
// request is allowed. An unavailable cache should degrade throughput
// protection, not availability.
type Limiter struct {
	engine cache.Engine
	limit  int64
	window time.Duration
	prefix string
}

// Option configures the Limiter.
type Option func(*Limiter)

// WithPrefix namespaces limiter keys in a shared cache.
func WithPrefix(prefix string) Option {
	return func(l *Limiter) {
		l.prefix = prefix
	}
}

// New creates a limiter allowing limit requests per window.
func New(engine cache.Engine, limit int64, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		engine: engine,
		limit:  limit,
		window: window,
		prefix: "ratelimit",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records one request for key and reports whether it fits the
// current window.
func (l *Limiter) Allow(ctx context.Context, key string) Result {
	now := time.Now()
	windowID := now.Unix() / int64(l.window.Seconds())
	counterKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, windowID)
	windowEnd := time.Unix((windowID+1)*int64(l.window.Seconds()), 0)

	count := l.engine.Increment(ctx, counterKey, 1)
	if count == 0 {
		// Counter absent: seed it with TTL covering the window.
		if !l.engine.Write(ctx, counterKey, int64(1), time.Until(windowEnd)) {
			return Result{Allowed: true, Remaining: l.limit - 1}
		}
		count = 1
	}

	if count > l.limit {
		return Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: time.Until(windowEnd),
		}
	}
	return Result{Allowed: true, Remaining: l.limit - count}
}
