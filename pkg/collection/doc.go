// Package collection provides an ordered string-keyed collection of
// scalar values with O(1) lookup.
//
// It underlies configuration, mailer message options, and filter flag
// sets. Unlike a plain map it preserves insertion order, which matters
// for deterministic config dumps and merge semantics: Merge overwrites
// colliding keys in place and appends new ones in the source's order.
package collection
