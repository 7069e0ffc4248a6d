// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package recommend

import "math"

// Energy density in kcal per gram.
const (
	KcalPerGramCarb    = 4.0
	KcalPerGramProtein = 4.0
	KcalPerGramFat     = 9.0
)

// SplitFromGrams converts macro grams into energy shares. It reports false
// when the macros carry no energy, in which case the food has no split.
func SplitFromGrams(carbG, proteinG, fatG float64) (MacroSplit, bool) {
	carb := carbG * KcalPerGramCarb
	protein := proteinG * KcalPerGramProtein
	fat := fatG * KcalPerGramFat
	total := carb + protein + fat
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return MacroSplit{}, false
	}
	return MacroSplit{
		CarbPct:    carb / total,
		ProteinPct: protein / total,
		FatPct:     fat / total,
	}, true
}

// ExtractMacroProfile reads a user's macro profile from inline features,
// accepting both the current and the older macro field names. It reports
// false when any of the three shares is absent.
func ExtractMacroProfile(f Features) (MacroSplit, bool) {
	protein, ok := f.Lookup(FeatureProteinPct)
	if !ok {
		return MacroSplit{}, false
	}

	carb, carbOK := f.Lookup(FeatureCarbPct)
	fat, fatOK := f.Lookup(FeatureFatPct)
	if carbOK && fatOK {
		return MacroSplit{CarbPct: carb, ProteinPct: protein, FatPct: fat}, true
	}

	carb, carbOK = f.Lookup(FeatureKarbohidratPct)
	fat, fatOK = f.Lookup(FeatureLemakPct)
	if carbOK && fatOK {
		return MacroSplit{CarbPct: carb, ProteinPct: protein, FatPct: fat}, true
	}
	return MacroSplit{}, false
}

// ProfileFromHistory averages the macro splits of the foods in records,
// weighting every record equally. Records whose food is missing from the
// table are skipped. It reports false when no record could be used.
func ProfileFromHistory(records []ConsumptionRecord, foods FoodMacroTable) (MacroSplit, bool) {
	var sum MacroSplit
	n := 0
	for _, r := range records {
		m, ok := foods[r.FoodID]
		if !ok {
			continue
		}
		sum.CarbPct += m.CarbPct
		sum.ProteinPct += m.ProteinPct
		sum.FatPct += m.FatPct
		n++
	}
	if n == 0 {
		return MacroSplit{}, false
	}
	return MacroSplit{
		CarbPct:    sum.CarbPct / float64(n),
		ProteinPct: sum.ProteinPct / float64(n),
		FatPct:     sum.FatPct / float64(n),
	}, true
}

func validSplit(m MacroSplit) bool {
	for _, v := range []float64{m.CarbPct, m.ProteinPct, m.FatPct} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// resolveMacroProfile picks the first usable profile source for a request:
// inline features, then the caller's summary, then (if enabled) history.
// A nil result means nutrition scoring is skipped.
func resolveMacroProfile(req *Request, foods FoodMacroTable, deriveFromHistory bool) *MacroSplit {
	if m, ok := ExtractMacroProfile(req.Features); ok {
		return &m
	}
	if req.NutritionSummary != nil && validSplit(*req.NutritionSummary) {
		m := *req.NutritionSummary
		return &m
	}
	if deriveFromHistory {
		if m, ok := ProfileFromHistory(req.RecentRecords, foods); ok {
			return &m
		}
	}
	return nil
}
