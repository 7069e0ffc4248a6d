// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package cache

import (
	"bytes"
	"context"
	"sync"
	"time"
)

// entry represents a cached item with optional expiration
type entry struct {
	data      []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Stats tracks cache performance metrics
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// MemoryStore is a thread-safe in-process Store with TTL support.
//
// Expiration is lazy on reads; Maintain sweeps the remaining expired
// entries and is driven by the cache maintenance service.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	closed  bool

	statsMu sync.Mutex
	stats   Stats

	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		stats:   Stats{LastCleanup: time.Now()},
		now:     time.Now,
	}
}

// Get implements Store.
func (c *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, ErrClosed
	}
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.record(func(s *Stats) { s.Misses++ })
		return nil, ErrNotFound
	}

	if e.expired(c.now()) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have replaced the entry.
		if cur, ok := c.entries[key]; ok && cur.expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.record(func(s *Stats) { s.Misses++; s.Evictions++ })
		return nil, ErrNotFound
	}

	c.record(func(s *Stats) { s.Hits++ })
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, nil
}

// Set implements Store.
func (c *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.entries[key] = c.newEntry(value, ttl)
	c.updateTotal()
	return nil
}

// SetNX implements Store. The check and the write happen under one lock.
func (c *MemoryStore) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrClosed
	}
	if e, ok := c.entries[key]; ok && !e.expired(c.now()) {
		return false, nil
	}
	c.entries[key] = c.newEntry(value, ttl)
	c.updateTotal()
	return true, nil
}

// Delete implements Store. Deleting a missing key is not an error.
func (c *MemoryStore) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.record(func(s *Stats) { s.Evictions++ })
	}
	c.updateTotal()
	return nil
}

// CompareAndDelete implements Store. An expired entry counts as absent.
func (c *MemoryStore) CompareAndDelete(_ context.Context, key string, value []byte) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrClosed
	}
	e, ok := c.entries[key]
	if !ok || e.expired(c.now()) || !bytes.Equal(e.data, value) {
		return false, nil
	}
	delete(c.entries, key)
	c.record(func(s *Stats) { s.Evictions++ })
	c.updateTotal()
	return true, nil
}

// Ping implements Store.
func (c *MemoryStore) Ping(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

// Close implements Store. All entries are dropped.
func (c *MemoryStore) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.entries = nil
	return nil
}

// Maintain removes all expired entries.
func (c *MemoryStore) Maintain(_ context.Context) (int, error) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}

	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}

	c.record(func(s *Stats) {
		s.Evictions += int64(removed)
		s.LastCleanup = now
	})
	c.updateTotal()
	return removed, nil
}

// GetStats returns a snapshot of current cache performance statistics.
func (c *MemoryStore) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// HitRate returns the cache hit rate as a percentage (0-100).
func (c *MemoryStore) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (c *MemoryStore) newEntry(value []byte, ttl time.Duration) entry {
	data := make([]byte, len(value))
	copy(data, value)
	e := entry{data: data}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	return e
}

// updateTotal must be called with c.mu held.
func (c *MemoryStore) updateTotal() {
	n := int64(len(c.entries))
	c.record(func(s *Stats) { s.TotalKeys = n })
}

func (c *MemoryStore) record(fn func(*Stats)) {
	c.statsMu.Lock()
	fn(&c.stats)
	c.statsMu.Unlock()
}

var (
	_ Store      = (*MemoryStore)(nil)
	_ Maintainer = (*MemoryStore)(nil)
)
