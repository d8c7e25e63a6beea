package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the server-backed engine. It shares the logical contract of
// the local backends but delegates expiry to the Redis server, so it
// has no lazy-deletion path of its own and no garbage collector.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis creates a Redis-backed cache engine. prefix namespaces all
// keys, typically the site name.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Backend() Backend { return BackendRedis }

func (r *Redis) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *Redis) Exists(ctx context.Context, key string) bool {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	return err == nil && n > 0
}

func (r *Redis) Read(ctx context.Context, key string) (any, bool) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	return v, true
}

func (r *Redis) Write(ctx context.Context, key string, value any, ttl time.Duration) bool {
	data, err := json.Marshal(value)
	if err != nil {
		return false
	}
	if ttl <= 0 {
		// Mirror the local backends: a non-positive TTL produces a
		// record that is already expired, which in Redis terms means
		// the shortest representable expiry.
		ttl = time.Millisecond
	}
	return r.client.Set(ctx, r.key(key), data, ttl).Err() == nil
}

func (r *Redis) Increment(ctx context.Context, key string, step int64) int64 {
	// Only increment keys that exist and hold an integer; INCRBY on a
	// missing key would create it, which the contract forbids.
	cur, ok := r.Read(ctx, key)
	if !ok {
		return 0
	}
	if _, ok := asInt64(cur); !ok {
		return 0
	}
	n, err := r.client.IncrBy(ctx, r.key(key), step).Result()
	if err != nil {
		return 0
	}
	return n
}

func (r *Redis) Remove(ctx context.Context, key string) bool {
	n, err := r.client.Del(ctx, r.key(key)).Result()
	return err == nil && n > 0
}

func (r *Redis) Clear(ctx context.Context) bool {
	if r.prefix == "" {
		return false
	}
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 0).Iterator()
	ok := true
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			ok = false
		}
	}
	if iter.Err() != nil {
		return false
	}
	return ok
}

// RunGarbageCollector is a no-op: the Redis server expires keys itself.
func (r *Redis) RunGarbageCollector(context.Context, int) int { return 0 }

func (r *Redis) Close() error { return r.client.Close() }

var _ Engine = (*Redis)(nil)
