package cmap

import (
	"math/rand/v2"
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is the shard count used when none is configured.
const DefaultShardCount = 16

// Map is a concurrent-safe sharded map from string keys to V.
type Map[V any] struct {
	shards    []*shard[V]
	shardMask uint64
	// seed is drawn per map so clients cannot pick keys that all land
	// in one shard.
	seed uint32
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// Option configures a Map.
type Option func(*options)

type options struct {
	shardCount int
}

// WithShardCount sets the number of shards. Values that are not a positive
// power of two fall back to DefaultShardCount.
func WithShardCount(n int) Option {
	return func(o *options) {
		o.shardCount = n
	}
}

// New creates an empty map.
func New[V any](opts ...Option) *Map[V] {
	o := options{shardCount: DefaultShardCount}
	for _, opt := range opts {
		opt(&o)
	}
	if !IsPowerOfTwo(o.shardCount) {
		o.shardCount = DefaultShardCount
	}

	m := &Map[V]{
		shards:    make([]*shard[V], o.shardCount),
		shardMask: uint64(o.shardCount - 1),
		seed:      rand.Uint32(),
	}
	for i := range m.shards {
		m.shards[i] = &shard[V]{items: make(map[string]V)}
	}
	return m
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func (m *Map[V]) shardFor(key string) *shard[V] {
	return m.shards[murmur3.Sum64WithSeed([]byte(key), m.seed)&m.shardMask]
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// Set inserts or replaces the value stored under key.
func (m *Map[V]) Set(key string, value V) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

// Len returns the number of keys. Shards are counted one at a time, so the
// result is a snapshot only when there are no concurrent writers.
func (m *Map[V]) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// ShardCount returns the number of shards.
func (m *Map[V]) ShardCount() int {
	return len(m.shards)
}
