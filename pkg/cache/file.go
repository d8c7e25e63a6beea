package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	cacheFileExt = ".cache"
	lockFileExt  = ".lock"
)

// File is the on-disk backend: one JSON document per key, shared
// between processes. Every read-modify-write on a key happens under an
// exclusive advisory lock on the key's sidecar lock file, so
// concurrent request-handling processes cannot interleave on the same
// record. It is the only backend with a garbage collector.
type File struct {
	dir string
}

// NewFile creates a file-backed cache engine rooted at dir.
// The directory is created if missing; an unusable directory fails the
// capability probe in Open, and direct construction reports failures
// per operation.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &File{dir: dir}, nil
}

func (f *File) Backend() Backend { return BackendFile }

// path derives a collision-free filename from the key.
func (f *File) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(f.dir, hex.EncodeToString(sum[:])+cacheFileExt)
}

func (f *File) lockPath(key string) string {
	return strings.TrimSuffix(f.path(key), cacheFileExt) + lockFileExt
}

// Exists is a fast existence probe; the authoritative expiry check
// happens in Read.
func (f *File) Exists(_ context.Context, key string) bool {
	_, err := os.Stat(f.path(key))
	return err == nil
}

func (f *File) Read(_ context.Context, key string) (any, bool) {
	var (
		value any
		found bool
	)
	withFileLock(f.lockPath(key), func() bool {
		value, found = readRecordFile(f.path(key))
		return found
	})
	return value, found
}

func (f *File) Write(_ context.Context, key string, value any, ttl time.Duration) bool {
	return withFileLock(f.lockPath(key), func() bool {
		data, err := json.Marshal(newRecord(value, ttl))
		if err != nil {
			return false
		}
		return os.WriteFile(f.path(key), data, 0o644) == nil
	})
}

func (f *File) Increment(_ context.Context, key string, step int64) int64 {
	var result int64
	withFileLock(f.lockPath(key), func() bool {
		path := f.path(key)
		data, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return false
		}
		now := time.Now()
		if rec.expired(now) {
			_ = os.Remove(path)
			return false
		}
		n, ok := asInt64(rec.Value)
		if !ok {
			return false
		}
		rec.Value = n + step
		out, err := json.Marshal(rec)
		if err != nil {
			return false
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return false
		}
		result = n + step
		return true
	})
	return result
}

func (f *File) Remove(_ context.Context, key string) bool {
	return withFileLock(f.lockPath(key), func() bool {
		if err := os.Remove(f.path(key)); err != nil {
			return false
		}
		_ = os.Remove(f.lockPath(key))
		return true
	})
}

func (f *File) Clear(_ context.Context) bool {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return false
	}
	ok := true
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, cacheFileExt) && !strings.HasSuffix(name, lockFileExt) {
			continue
		}
		if err := os.Remove(filepath.Join(f.dir, name)); err != nil && !os.IsNotExist(err) {
			ok = false
		}
	}
	return ok
}

// RunGarbageCollector samples up to power cache files via a partial
// Fisher-Yates draw and forces an expiry check on each sampled file,
// evicting the stale ones. Returns the number of evictions. Sampling
// rather than a full sweep keeps a single pass cheap regardless of how
// large the cache directory has grown; repeated passes converge on a
// clean directory probabilistically.
func (f *File) RunGarbageCollector(_ context.Context, power int) int {
	if power <= 0 {
		return 0
	}

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), cacheFileExt) {
			names = append(names, e.Name())
		}
	}

	// Partial Fisher-Yates: only the first min(power, len) positions
	// are drawn; the rest of the slice is left unshuffled.
	n := min(power, len(names))
	for i := range n {
		j := i + rand.Intn(len(names)-i)
		names[i], names[j] = names[j], names[i]
	}

	evicted := 0
	for _, name := range names[:n] {
		path := filepath.Join(f.dir, name)
		lock := strings.TrimSuffix(path, cacheFileExt) + lockFileExt
		withFileLock(lock, func() bool {
			data, err := os.ReadFile(path)
			if err != nil {
				return false
			}
			var rec record
			if err := json.Unmarshal(data, &rec); err != nil || rec.expired(time.Now()) {
				// Undecodable records are treated as stale.
				if os.Remove(path) == nil {
					evicted++
				}
			}
			return true
		})
	}
	return evicted
}

func (f *File) Close() error { return nil }

// readRecordFile loads a record, deleting it when stale or corrupt.
// Caller must hold the key's lock.
func readRecordFile(path string) (any, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		_ = os.Remove(path)
		return nil, false
	}
	if rec.expired(time.Now()) {
		_ = os.Remove(path)
		return nil, false
	}
	return rec.Value, true
}

var _ Engine = (*File)(nil)
