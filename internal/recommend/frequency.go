// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package recommend

import "math"

// FoodStats holds the per-food statistics of a history.
type FoodStats struct {
	// Count is the raw number of occurrences.
	Count int
	// Recency is the sum of decay weights of those occurrences.
	Recency float64
}

// Boost returns count * recency * scale.
func (s FoodStats) Boost(scale float64) float64 {
	return float64(s.Count) * s.Recency * scale
}

// FrequencyTable is the aggregated view of a history. Order lists food ids
// in first-seen order.
type FrequencyTable struct {
	Stats map[int64]FoodStats
	Order []int64
}

// Get returns the stats of foodID, zero when the food was never eaten.
func (t *FrequencyTable) Get(foodID int64) FoodStats {
	if t == nil {
		return FoodStats{}
	}
	return t.Stats[foodID]
}

// Aggregate computes occurrence counts and recency mass per food. records
// must be ordered oldest first; the record at position i of n weighs
// decay^(n-1-i), so the newest record weighs exactly 1.
func Aggregate(records []ConsumptionRecord, decay float64) *FrequencyTable {
	t := &FrequencyTable{
		Stats: make(map[int64]FoodStats, len(records)),
		Order: make([]int64, 0, len(records)),
	}
	n := len(records)
	for i, r := range records {
		s, seen := t.Stats[r.FoodID]
		if !seen {
			t.Order = append(t.Order, r.FoodID)
		}
		s.Count++
		s.Recency += math.Pow(decay, float64(n-1-i))
		t.Stats[r.FoodID] = s
	}
	return t
}
