// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package recommend

import "math"

// NutritionScorer scores foods by how well they close a user's macro gaps.
// It holds no mutable state and is safe for concurrent use.
type NutritionScorer struct {
	cfg   NutritionConfig
	foods FoodMacroTable
}

// NewNutritionScorer returns a scorer over the given macro table.
//
//nolint:gocritic // hugeParam: copied once at construction
func NewNutritionScorer(cfg NutritionConfig, foods FoodMacroTable) *NutritionScorer {
	return &NutritionScorer{cfg: cfg, foods: foods}
}

// Score returns the signed nutrition score of foodID for a user whose
// recent macro profile is profile. It returns 0 when profile is nil or the
// food has no macro data.
func (s *NutritionScorer) Score(profile *MacroSplit, foodID int64) float64 {
	if profile == nil {
		return 0
	}
	food, ok := s.foods[foodID]
	if !ok {
		return 0
	}
	return s.ScoreSplit(*profile, food)
}

// ScoreSplit scores a food split against a user split directly.
//
//nolint:gocritic // small value types
func (s *NutritionScorer) ScoreSplit(user, food MacroSplit) float64 {
	score := s.macroScore(s.cfg.Carb, user.CarbPct, food.CarbPct)
	score += s.macroScore(s.cfg.Protein, user.ProteinPct, food.ProteinPct)
	score += s.macroScore(s.cfg.Fat, user.FatPct, food.FatPct)
	return score
}

// macroScore scores one macro. userPct is the user's current share and
// foodPct the food's share of the same macro.
//
//nolint:gocritic // MacroGuideline is a small value type
func (s *NutritionScorer) macroScore(g MacroGuideline, userPct, foodPct float64) float64 {
	if foodPct <= g.QualifyingFloor {
		return 0
	}
	deficit := g.Ideal - userPct
	if deficit > s.cfg.DeficitThreshold {
		return deficit * foodPct * g.RewardMultiplier
	}

	if !s.cfg.StrictBands {
		if deficit < -s.cfg.DeficitThreshold {
			return -math.Abs(deficit) * foodPct * g.PenaltyMultiplier
		}
		return 0
	}

	safeMax := g.BandMax - g.Margin
	switch {
	case userPct <= safeMax:
		return 0
	case userPct <= g.BandMax:
		return -(userPct - safeMax) * foodPct * g.PenaltyMultiplier * s.cfg.GentlePenaltyFactor
	default:
		return -(userPct - g.BandMax) * foodPct * g.PenaltyMultiplier
	}
}

// Zone classifies a user share against a guideline for diagnostics.
type Zone string

// Zones of the five-zone band logic.
const (
	ZoneDeficit Zone = "deficit"
	ZoneSafe    Zone = "safe"
	ZoneMargin  Zone = "margin"
	ZoneExcess  Zone = "excess"
)

// Classify returns the band zone of userPct for guideline g.
//
//nolint:gocritic // MacroGuideline is a small value type
func (s *NutritionScorer) Classify(g MacroGuideline, userPct float64) Zone {
	switch {
	case g.Ideal-userPct > s.cfg.DeficitThreshold:
		return ZoneDeficit
	case userPct <= g.BandMax-g.Margin:
		return ZoneSafe
	case userPct <= g.BandMax:
		return ZoneMargin
	default:
		return ZoneExcess
	}
}
