// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package cache

// StoreReport describes a store chain for the health endpoint. Fields are
// filled by the layers that are present.
type StoreReport struct {
	Backend string        `json:"backend,omitempty"`
	Breaker string        `json:"breaker,omitempty"`
	Memory  *MemoryReport `json:"memory,omitempty"`
}

// MemoryReport carries MemoryStore statistics.
type MemoryReport struct {
	HitRate   float64 `json:"hit_rate"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Keys      int64   `json:"keys"`
}

// Report walks the wrappers around store, innermost last.
func Report(store Store) StoreReport {
	var r StoreReport
	for store != nil {
		switch s := store.(type) {
		case *InstrumentedStore:
			r.Backend = s.backend
			store = s.next
		case *BreakerStore:
			r.Breaker = s.State()
			store = s.next
		case *MemoryStore:
			stats := s.GetStats()
			r.Memory = &MemoryReport{
				HitRate:   s.HitRate(),
				Hits:      stats.Hits,
				Misses:    stats.Misses,
				Evictions: stats.Evictions,
				Keys:      stats.TotalKeys,
			}
			store = nil
		default:
			store = nil
		}
	}
	return r
}
