// Package cmap provides a concurrent-safe map sharded by string key.
//
// The server keeps its live connections here: every connection goroutine
// registers and deregisters itself while shutdown walks the whole set.
package cmap

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is the default number of shards.
const DefaultShardCount = 16

// Map is a concurrent-safe map from string-like keys to values.
type Map[K ~string, V any] struct {
	shards []*shard[K, V]
	mask   uint32
}

type shard[K ~string, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// New creates a map with DefaultShardCount shards.
func New[K ~string, V any]() *Map[K, V] {
	return NewWithShards[K, V](DefaultShardCount)
}

// NewWithShards creates a map with n shards. n is rounded to the default
// when it is not a positive power of two.
func NewWithShards[K ~string, V any](n int) *Map[K, V] {
	if n <= 0 || n&(n-1) != 0 {
		n = DefaultShardCount
	}

	m := &Map[K, V]{
		shards: make([]*shard[K, V], n),
		mask:   uint32(n - 1),
	}
	for i := range m.shards {
		m.shards[i] = &shard[K, V]{items: make(map[K]V)}
	}
	return m
}

func (m *Map[K, V]) shardFor(key K) *shard[K, V] {
	return m.shards[murmur3.Sum32([]byte(key))&m.mask]
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (m *Map[K, V]) Set(key K, value V) {
	s := m.shardFor(key)
	s.mu.Lock()
	s.items[key] = value
	s.mu.Unlock()
}

// Pop removes key and returns the value it held. ok is false when key
// was absent, so concurrent callers see exactly one successful Pop.
func (m *Map[K, V]) Pop(key K) (v V, ok bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok = s.items[key]
	if ok {
		delete(s.items, key)
	}
	return v, ok
}

// Count returns the number of stored keys.
func (m *Map[K, V]) Count() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// Range calls fn for each entry until fn returns false.
//
// Each shard is copied before fn runs, so fn may call back into the map.
// Entries added or removed during Range may or may not be visited.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	type kv struct {
		k K
		v V
	}
	for _, s := range m.shards {
		s.mu.RLock()
		batch := make([]kv, 0, len(s.items))
		for k, v := range s.items {
			batch = append(batch, kv{k, v})
		}
		s.mu.RUnlock()

		for _, e := range batch {
			if !fn(e.k, e.v) {
				return
			}
		}
	}
}
