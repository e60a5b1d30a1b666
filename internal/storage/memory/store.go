package memory

import (
	"github.com/yndnr/respkv-go/pkg/cmap"
)

// Store maps string keys to string values. Keys never expire.
type Store struct {
	data *cmap.Map[string]
}

// Option configures the Store.
type Option func(*storeOptions)

type storeOptions struct {
	shardCount int
}

// WithShardCount sets the number of lock shards (power of two).
func WithShardCount(n int) Option {
	return func(o *storeOptions) {
		o.shardCount = n
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	o := storeOptions{shardCount: cmap.DefaultShardCount}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{
		data: cmap.New[string](cmap.WithShardCount(o.shardCount)),
	}
}

// Get returns the value stored under key. A missing key is not an error.
func (s *Store) Get(key string) (string, bool) {
	return s.data.Get(key)
}

// Set inserts or replaces the value stored under key.
func (s *Store) Set(key, value string) {
	s.data.Set(key, value)
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	return s.data.Len()
}
