// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package recommend

import (
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSplitFromGrams(t *testing.T) {
	t.Parallel()

	// 50 g carbohydrate, 10 g protein, 5 g fat: 200 + 40 + 45 = 285 kcal.
	got, ok := SplitFromGrams(50, 10, 5)
	if !ok {
		t.Fatal("SplitFromGrams() reported no energy")
	}
	if !approxEqual(got.CarbPct, 0.70, 0.005) {
		t.Errorf("CarbPct = %f, want ~0.70", got.CarbPct)
	}
	if !approxEqual(got.ProteinPct, 0.14, 0.005) {
		t.Errorf("ProteinPct = %f, want ~0.14", got.ProteinPct)
	}
	if !approxEqual(got.FatPct, 0.16, 0.005) {
		t.Errorf("FatPct = %f, want ~0.16", got.FatPct)
	}
	if sum := got.CarbPct + got.ProteinPct + got.FatPct; !approxEqual(sum, 1, 1e-9) {
		t.Errorf("shares sum to %f, want 1", sum)
	}

	if _, ok := SplitFromGrams(0, 0, 0); ok {
		t.Error("zero-energy food should report no split")
	}
	if _, ok := SplitFromGrams(math.NaN(), 1, 1); ok {
		t.Error("NaN grams should report no split")
	}
}

func TestExtractMacroProfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		f      Features
		want   MacroSplit
		wantOK bool
	}{
		{
			name:   "inline",
			f:      Features{FeatureCarbPct: 0.5, FeatureProteinPct: 0.2, FeatureFatPct: 0.3, FeatureBMI: 22},
			want:   MacroSplit{CarbPct: 0.5, ProteinPct: 0.2, FatPct: 0.3},
			wantOK: true,
		},
		{
			name:   "alternative names",
			f:      Features{FeatureKarbohidratPct: 0.6, FeatureProteinPct: 0.1, FeatureLemakPct: 0.3},
			want:   MacroSplit{CarbPct: 0.6, ProteinPct: 0.1, FatPct: 0.3},
			wantOK: true,
		},
		{
			name: "missing fat",
			f:    Features{FeatureCarbPct: 0.5, FeatureProteinPct: 0.2},
		},
		{
			name: "NaN protein",
			f:    Features{FeatureCarbPct: 0.5, FeatureProteinPct: math.NaN(), FeatureFatPct: 0.3},
		},
		{
			name: "demographics only",
			f:    Features{FeatureBMI: 22, FeatureActivity: 2},
		},
		{
			name: "nil features",
		},
	}

	for _, tt := range tests {
		got, ok := ExtractMacroProfile(tt.f)
		if ok != tt.wantOK {
			t.Errorf("%s: ok = %v, want %v", tt.name, ok, tt.wantOK)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: profile = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestProfileFromHistory(t *testing.T) {
	t.Parallel()

	foods := FoodMacroTable{
		1: {CarbPct: 0.8, ProteinPct: 0.1, FatPct: 0.1},
		2: {CarbPct: 0.2, ProteinPct: 0.5, FatPct: 0.3},
	}
	records := []ConsumptionRecord{{FoodID: 1}, {FoodID: 2}, {FoodID: 99}}

	got, ok := ProfileFromHistory(records, foods)
	if !ok {
		t.Fatal("ProfileFromHistory() reported no profile")
	}
	if !approxEqual(got.CarbPct, 0.5, 1e-9) || !approxEqual(got.ProteinPct, 0.3, 1e-9) || !approxEqual(got.FatPct, 0.2, 1e-9) {
		t.Errorf("ProfileFromHistory() = %+v", got)
	}

	if _, ok := ProfileFromHistory([]ConsumptionRecord{{FoodID: 99}}, foods); ok {
		t.Error("history of unknown foods should report no profile")
	}
}

func TestResolveMacroProfile(t *testing.T) {
	t.Parallel()

	foods := FoodMacroTable{1: {CarbPct: 0.8, ProteinPct: 0.1, FatPct: 0.1}}
	summary := &MacroSplit{CarbPct: 0.4, ProteinPct: 0.3, FatPct: 0.3}
	history := []ConsumptionRecord{{FoodID: 1}}

	inline := &Request{
		Features:         Features{FeatureCarbPct: 0.5, FeatureProteinPct: 0.2, FeatureFatPct: 0.3},
		NutritionSummary: summary,
	}
	if got := resolveMacroProfile(inline, foods, true); got == nil || got.CarbPct != 0.5 {
		t.Errorf("inline features should win, got %+v", got)
	}

	fromSummary := &Request{NutritionSummary: summary, RecentRecords: history}
	if got := resolveMacroProfile(fromSummary, foods, true); got == nil || got.CarbPct != 0.4 {
		t.Errorf("summary should be used, got %+v", got)
	}

	fromHistory := &Request{RecentRecords: history}
	if got := resolveMacroProfile(fromHistory, foods, true); got == nil || got.CarbPct != 0.8 {
		t.Errorf("history profile should be used, got %+v", got)
	}
	if got := resolveMacroProfile(fromHistory, foods, false); got != nil {
		t.Errorf("history profile disabled, got %+v", got)
	}
}
