package collection

import "fmt"

// Value is the set of scalar types a Collection can hold.
// Stored values are never converted; typed getters coerce on read.
type Value interface{}

// Collection is an ordered string-keyed collection of scalar values.
// Keys are unique: Set on an existing key overwrites in place and keeps
// the original position. Lookup is O(1) via an index map; iteration
// follows insertion order.
//
// Collection is not safe for concurrent mutation. Build it once during
// startup (config, mail options, filter flags) and share it read-only.
type Collection struct {
	index map[string]int
	keys  []string
	vals  []Value
}

// New creates an empty Collection.
func New() *Collection {
	return &Collection{index: make(map[string]int)}
}

// FromMap creates a Collection from a map.
// Iteration order of the source map is not preserved; use Set for
// order-sensitive construction.
func FromMap(m map[string]Value) *Collection {
	c := New()
	for k, v := range m {
		c.Set(k, v)
	}
	return c
}

// FromPairs creates a Collection from alternating key/value arguments.
// Panics if the number of arguments is odd or a key is not a string,
// since that is a construction-time programming error.
func FromPairs(pairs ...any) *Collection {
	if len(pairs)%2 != 0 {
		panic("collection: FromPairs requires an even number of arguments")
	}
	c := New()
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("collection: FromPairs key at %d is not a string", i))
		}
		c.Set(k, pairs[i+1])
	}
	return c
}

// Set stores a value under key. An existing key is overwritten in place.
func (c *Collection) Set(key string, v Value) {
	if i, ok := c.index[key]; ok {
		c.vals[i] = v
		return
	}
	c.index[key] = len(c.keys)
	c.keys = append(c.keys, key)
	c.vals = append(c.vals, v)
}

// Get returns the value stored under key.
func (c *Collection) Get(key string) (Value, bool) {
	i, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.vals[i], true
}

// Has reports whether key is present.
func (c *Collection) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Remove deletes key from the collection.
// Returns false if the key was not present.
func (c *Collection) Remove(key string) bool {
	i, ok := c.index[key]
	if !ok {
		return false
	}
	c.keys = append(c.keys[:i], c.keys[i+1:]...)
	c.vals = append(c.vals[:i], c.vals[i+1:]...)
	delete(c.index, key)
	for j := i; j < len(c.keys); j++ {
		c.index[c.keys[j]] = j
	}
	return true
}

// Len returns the number of entries.
func (c *Collection) Len() int {
	return len(c.keys)
}

// Keys returns the keys in insertion order.
// The returned slice is a copy.
func (c *Collection) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Merge copies every entry of other into c, overwriting on key collision.
// Entries new to c are appended in other's order.
func (c *Collection) Merge(other *Collection) {
	if other == nil {
		return
	}
	for i, k := range other.keys {
		c.Set(k, other.vals[i])
	}
}

// Clone returns an independent copy of the collection.
func (c *Collection) Clone() *Collection {
	out := &Collection{
		index: make(map[string]int, len(c.index)),
		keys:  make([]string, len(c.keys)),
		vals:  make([]Value, len(c.vals)),
	}
	copy(out.keys, c.keys)
	copy(out.vals, c.vals)
	for k, i := range c.index {
		out.index[k] = i
	}
	return out
}

// GetString returns the value under key as a string, or def when the key
// is absent or holds a non-string value.
func (c *Collection) GetString(key, def string) string {
	if v, ok := c.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// GetInt returns the value under key as an int, or def when the key is
// absent or holds a non-numeric value. Float values are truncated.
func (c *Collection) GetInt(key string, def int) int {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// GetFloat returns the value under key as a float64, or def when the key
// is absent or holds a non-numeric value.
func (c *Collection) GetFloat(key string, def float64) float64 {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return def
	}
}

// GetBool returns the value under key as a bool, or def when the key is
// absent or holds a non-bool value.
func (c *Collection) GetBool(key string, def bool) bool {
	if v, ok := c.Get(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}
