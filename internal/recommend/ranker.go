// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package recommend

import "sort"

// RankInput holds everything the hybrid ranker needs.
type RankInput struct {
	// Catalog is the cluster's catalog entries in catalog order.
	Catalog []CatalogEntry

	// Frequency is the aggregated user history. It may be nil.
	Frequency *FrequencyTable

	// Nutrition returns the nutrition score of a food. It may be nil, in
	// which case every nutrition boost is zero.
	Nutrition func(foodID int64) float64

	// NutritionWeight is w in [0, 1].
	NutritionWeight float64

	// FrequencyScale multiplies count * recency.
	FrequencyScale float64

	// TopN truncates the result when positive.
	TopN int
}

// Rank blends base, frequency and nutrition scores and returns the
// candidates sorted by final score, highest first:
//
//	final = base + frequency_boost*(1-w) + nutrition_boost*w
//
// Candidates are the catalog entries followed by every eaten food missing
// from the catalog (base 0). Ties keep candidate order, so identical
// inputs always produce identical output. Rank has no side effects.
func Rank(in *RankInput) []ScoredFood {
	candidates := candidateSet(in.Catalog, in.Frequency)

	w := in.NutritionWeight
	scored := make([]ScoredFood, len(candidates))
	for i, c := range candidates {
		freq := in.Frequency.Get(c.FoodID).Boost(in.FrequencyScale)
		var nutr float64
		if in.Nutrition != nil {
			nutr = in.Nutrition(c.FoodID)
		}
		scored[i] = ScoredFood{
			FoodID:         c.FoodID,
			BaseScore:      c.Score,
			FrequencyBoost: freq,
			NutritionBoost: nutr,
			FinalScore:     c.Score + freq*(1-w) + nutr*w,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})

	if in.TopN > 0 && len(scored) > in.TopN {
		scored = scored[:in.TopN]
	}
	return scored
}

// candidateSet seeds candidates from the catalog and appends history foods
// the catalog lacks. A food listed twice in the catalog keeps its first
// entry.
func candidateSet(catalog []CatalogEntry, freq *FrequencyTable) []CatalogEntry {
	size := len(catalog)
	if freq != nil {
		size += len(freq.Order)
	}
	seen := make(map[int64]struct{}, size)
	out := make([]CatalogEntry, 0, size)

	for _, e := range catalog {
		if _, dup := seen[e.FoodID]; dup {
			continue
		}
		seen[e.FoodID] = struct{}{}
		out = append(out, e)
	}
	if freq != nil {
		for _, id := range freq.Order {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, CatalogEntry{FoodID: id, Score: 0})
		}
	}
	return out
}
