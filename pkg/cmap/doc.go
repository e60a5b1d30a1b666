// Package cmap provides a concurrent map keyed by string.
//
// The map is split into a power-of-two number of shards. Each shard has its
// own sync.RWMutex, so readers of a shard run in parallel, a writer has the
// shard to itself, and operations on different shards never contend.
// Keys are assigned to shards with murmur3.
//
// Usage:
//
//	m := cmap.New[string](cmap.WithShardCount(32))
//	m.Set("key", "value")
//	val, ok := m.Get("key")
//
// Every single-key operation is atomic: an observer sees either the value
// before or after a Set, never a partial write.
package cmap
