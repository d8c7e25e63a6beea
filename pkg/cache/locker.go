package cache

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// withFileLock runs fn while holding an exclusive advisory lock on the
// sidecar lock file at path. The lock is scoped: it is released on
// every exit path, including a panic inside fn.
//
// Acquisition is non-blocking. A lock that cannot be acquired is a
// soft failure: fn is not called and false is returned. Nothing in the
// cache ever waits on a lock.
func withFileLock(path string, fn func() bool) bool {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil || !locked {
		return false
	}
	defer fl.Unlock() //nolint:errcheck // release is best-effort on all exit paths

	return fn()
}
