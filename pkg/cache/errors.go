package cache

import "errors"

var (
	// ErrNoBackend is returned by Open when no candidate backend
	// passed its capability probe.
	ErrNoBackend = errors.New("cache: no capable backend")
)
