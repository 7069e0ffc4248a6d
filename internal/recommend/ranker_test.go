// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package recommend

import (
	"reflect"
	"testing"
)

func foodIDs(scored []ScoredFood) []int64 {
	ids := make([]int64, len(scored))
	for i, s := range scored {
		ids[i] = s.FoodID
	}
	return ids
}

func TestRank_CatalogOnly(t *testing.T) {
	t.Parallel()

	got := Rank(&RankInput{
		Catalog: []CatalogEntry{
			{FoodID: 1, Score: 2},
			{FoodID: 2, Score: 5},
			{FoodID: 3, Score: 2},
			{FoodID: 4, Score: 3},
		},
		NutritionWeight: 0.4,
		FrequencyScale:  10,
	})

	// Foods 1 and 3 tie; catalog order breaks the tie.
	if ids := foodIDs(got); !reflect.DeepEqual(ids, []int64{2, 4, 1, 3}) {
		t.Errorf("order = %v, want [2 4 1 3]", ids)
	}
}

func TestRank_UserFoodOutsideCatalog(t *testing.T) {
	t.Parallel()

	history := make([]ConsumptionRecord, 30)
	for i := range history {
		history[i] = ConsumptionRecord{FoodID: 7}
	}

	got := Rank(&RankInput{
		Catalog:         []CatalogEntry{{FoodID: 1, Score: 50}, {FoodID: 2, Score: 40}},
		Frequency:       Aggregate(history, 0.9),
		NutritionWeight: 0.4,
		FrequencyScale:  10,
		TopN:            30,
	})

	var food7 *ScoredFood
	for i := range got {
		if got[i].FoodID == 7 {
			food7 = &got[i]
		}
	}
	if food7 == nil {
		t.Fatalf("food 7 missing from %v", foodIDs(got))
	}
	if food7.BaseScore != 0 {
		t.Errorf("BaseScore = %f, want 0", food7.BaseScore)
	}
	if food7.FrequencyBoost <= 0 {
		t.Errorf("FrequencyBoost = %f, want > 0", food7.FrequencyBoost)
	}
	if got[0].FoodID != 7 {
		t.Errorf("top food = %d, want 7", got[0].FoodID)
	}
}

func TestRank_Deterministic(t *testing.T) {
	t.Parallel()

	in := &RankInput{
		Catalog:         []CatalogEntry{{FoodID: 1, Score: 1}, {FoodID: 2, Score: 1}, {FoodID: 3, Score: 1}},
		Frequency:       Aggregate(records(9, 8, 9, 3), 0.9),
		Nutrition:       func(id int64) float64 { return float64(id % 2) },
		NutritionWeight: 0.5,
		FrequencyScale:  10,
	}

	first := Rank(in)
	for i := 0; i < 20; i++ {
		if again := Rank(in); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, foodIDs(first), foodIDs(again))
		}
	}
}

func TestRank_FrequencyMonotonicity(t *testing.T) {
	t.Parallel()

	// Both foods are outside the catalog (base 0) and have no nutrition
	// score. Food 10 was eaten more recently than food 20.
	got := Rank(&RankInput{
		Frequency:       Aggregate(records(20, 10), 0.9),
		NutritionWeight: 0.4,
		FrequencyScale:  10,
	})
	if ids := foodIDs(got); !reflect.DeepEqual(ids, []int64{10, 20}) {
		t.Errorf("order = %v, want [10 20]", ids)
	}
}

func TestRank_NutritionZeroEffect(t *testing.T) {
	t.Parallel()

	for _, w := range []float64{0, 0.4, 1} {
		got := Rank(&RankInput{
			Catalog:         []CatalogEntry{{FoodID: 1, Score: 3}, {FoodID: 2, Score: 1}},
			Frequency:       Aggregate(records(2, 2, 5), 0.9),
			NutritionWeight: w,
			FrequencyScale:  10,
		})
		for _, s := range got {
			if s.NutritionBoost != 0 {
				t.Errorf("w=%v food %d: NutritionBoost = %f, want 0", w, s.FoodID, s.NutritionBoost)
			}
			if want := s.BaseScore + s.FrequencyBoost*(1-w); s.FinalScore != want {
				t.Errorf("w=%v food %d: FinalScore = %f, want %f", w, s.FoodID, s.FinalScore, want)
			}
		}
	}
}

func TestRank_WeightBoundaries(t *testing.T) {
	t.Parallel()

	catalog := []CatalogEntry{{FoodID: 1, Score: 1}, {FoodID: 2, Score: 1}, {FoodID: 3, Score: 1}}
	freq := Aggregate(records(1, 1, 2), 0.9)
	nutrition := func(id int64) float64 {
		return map[int64]float64{1: -5, 2: 0, 3: 40}[id]
	}

	t.Run("w=0 is frequency only", func(t *testing.T) {
		got := Rank(&RankInput{Catalog: catalog, Frequency: freq, Nutrition: nutrition, NutritionWeight: 0, FrequencyScale: 10})
		for _, s := range got {
			if s.FinalScore != s.BaseScore+s.FrequencyBoost {
				t.Errorf("food %d: FinalScore = %f, want base+freq", s.FoodID, s.FinalScore)
			}
		}
		if ids := foodIDs(got); !reflect.DeepEqual(ids, []int64{1, 2, 3}) {
			t.Errorf("order = %v, want [1 2 3]", ids)
		}
	})

	t.Run("w=1 is nutrition only", func(t *testing.T) {
		got := Rank(&RankInput{Catalog: catalog, Frequency: freq, Nutrition: nutrition, NutritionWeight: 1, FrequencyScale: 10})
		for _, s := range got {
			if s.FinalScore != s.BaseScore+s.NutritionBoost {
				t.Errorf("food %d: FinalScore = %f, want base+nutrition", s.FoodID, s.FinalScore)
			}
		}
		if ids := foodIDs(got); !reflect.DeepEqual(ids, []int64{3, 2, 1}) {
			t.Errorf("order = %v, want [3 2 1]", ids)
		}
	})
}

func TestRank_TopN(t *testing.T) {
	t.Parallel()

	catalog := make([]CatalogEntry, 50)
	for i := range catalog {
		catalog[i] = CatalogEntry{FoodID: int64(i + 1), Score: float64(50 - i)}
	}

	got := Rank(&RankInput{Catalog: catalog, TopN: 30, FrequencyScale: 10})
	if len(got) != 30 {
		t.Fatalf("len = %d, want 30", len(got))
	}
	if got[0].FoodID != 1 || got[29].FoodID != 30 {
		t.Errorf("first/last = %d/%d, want 1/30", got[0].FoodID, got[29].FoodID)
	}

	all := Rank(&RankInput{Catalog: catalog, FrequencyScale: 10})
	if len(all) != 50 {
		t.Errorf("TopN=0 len = %d, want 50", len(all))
	}
}

func TestRank_DuplicateCatalogEntries(t *testing.T) {
	t.Parallel()

	got := Rank(&RankInput{
		Catalog: []CatalogEntry{{FoodID: 1, Score: 2}, {FoodID: 1, Score: 9}, {FoodID: 2, Score: 1}},
	})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].FoodID != 1 || got[0].BaseScore != 2 {
		t.Errorf("first = %+v, want food 1 with its first base score", got[0])
	}
}
