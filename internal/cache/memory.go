// Package cache provides a small in-memory TTL cache used to memoize
// deterministic engine outputs (tool results, advisor responses).
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is a fixed-size LRU cache with per-entry expiry. Safe for
// concurrent use.
type Memory[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
}

// NewMemory creates a cache holding at most size entries, each expiring
// ttl after insertion. A non-positive size falls back to 256 entries; a
// non-positive ttl means entries never expire.
func NewMemory[K comparable, V any](size int, ttl time.Duration) *Memory[K, V] {
	if size <= 0 {
		size = 256
	}
	return &Memory[K, V]{
		lru: expirable.NewLRU[K, V](size, nil, ttl),
	}
}

// Get returns the cached value for key and whether it was present and
// unexpired.
func (m *Memory[K, V]) Get(key K) (V, bool) {
	return m.lru.Get(key)
}

// Set stores value under key, evicting the least recently used entry if
// the cache is full.
func (m *Memory[K, V]) Set(key K, value V) {
	m.lru.Add(key, value)
}

// Len returns the number of live entries.
func (m *Memory[K, V]) Len() int {
	return m.lru.Len()
}

// Purge drops every entry.
func (m *Memory[K, V]) Purge() {
	m.lru.Purge()
}
