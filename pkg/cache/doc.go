// Package cache provides a TTL key-value cache with interchangeable
// backends behind a single logical contract.
//
// # Backends
//
// Four backends implement [Engine]:
//
//   - Redis: shared across processes and hosts, used when a client is
//     configured.
//   - Memory: in-process map guarded by a mutex. Fastest, but private
//     to the process.
//   - Segment: fixed-size on-disk slots (one per derived key) shared
//     between processes, guarded by per-key advisory file locks.
//     Oversized payloads fail the write rather than truncating.
//   - File: one JSON document per key, shared between processes,
//     guarded by per-key advisory file locks. The only backend with a
//     garbage collector.
//
// [Open] probes the configured candidates in a fixed preference order
// (Redis, Memory, Segment, File) and binds the first capable backend
// for the lifetime of the engine. There is no mid-session fallback:
// after Open, a failing backend surfaces as soft failures, not as a
// switch to another backend.
//
// # Failure model
//
// The cache is best-effort. Operations report false/absent/0 on any
// backend failure and never panic. In particular Increment returns 0
// both when the counter legitimately reached zero and when the key was
// absent, expired, or non-integer; callers that need to distinguish
// the two must not use Increment alone.
//
// # Expiry
//
// Expiry is lazy: Read checks the record's absolute expiry and deletes
// stale records as a side effect. The file backend additionally
// supports RunGarbageCollector, which samples up to `power` records
// via a partial Fisher-Yates draw and forces the expiry check on each.
// [GCScheduler] runs that collector on a cron schedule.
package cache
