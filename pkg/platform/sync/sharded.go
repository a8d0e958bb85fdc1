// Package sync provides sharded concurrency primitives keyed by string.
package sync

import (
	"sync"
)

const shardCount = 32

// ShardedMap is a concurrent string-keyed map using sharded read-write locks.
// Instead of a single global lock, operations are distributed across N shards
// based on a hash of the key, so unrelated keys never contend.
type ShardedMap[V any] struct {
	shards [shardCount]shard[V]
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// NewShardedMap creates an empty ShardedMap with 32 shards.
func NewShardedMap[V any]() *ShardedMap[V] {
	m := &ShardedMap[V]{}
	for i := range m.shards {
		m.shards[i].items = make(map[string]V)
	}
	return m
}

// Get returns the value stored for key, if any.
func (m *ShardedMap[V]) Get(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (m *ShardedMap[V]) Set(key string, value V) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

// Update applies fn to the current value for key while holding the shard's
// write lock. fn receives the existing value (and whether one was present)
// and returns the replacement plus whether to store it. This is the hook for
// compare-and-swap style updates such as monotonicity guards.
func (m *ShardedMap[V]) Update(key string, fn func(old V, ok bool) (V, bool)) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.items[key]
	if next, store := fn(old, ok); store {
		s.items[key] = next
	}
}

// Delete removes key from the map. Deleting an absent key is a no-op.
func (m *ShardedMap[V]) Delete(key string) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// Range calls fn for each entry until fn returns false. Each shard is locked
// only while its own entries are visited; entries added or removed concurrently
// in other shards may or may not be observed.
func (m *ShardedMap[V]) Range(fn func(key string, value V) bool) {
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Len returns the total number of entries across all shards.
func (m *ShardedMap[V]) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// shardFor returns the shard for the given key. Empty keys default to shard 0.
func (m *ShardedMap[V]) shardFor(key string) *shard[V] {
	if key == "" {
		return &m.shards[0]
	}
	return &m.shards[hashString(key)%shardCount]
}

// hashString provides a simple hash for shard selection.
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}
