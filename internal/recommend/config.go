// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package recommend

import (
	"fmt"
	"sort"
)

// Strategy selects the cluster assignment implementation.
type Strategy string

const (
	// StrategyNearestNeighbor labels the input with the cluster of the
	// closest scaled training row.
	StrategyNearestNeighbor Strategy = "nearest_neighbor"

	// StrategyCentroid labels the input with the closest k-means centroid.
	StrategyCentroid Strategy = "centroid"
)

// ThresholdMode selects how the history length is compared with the warm
// threshold.
type ThresholdMode string

const (
	// ThresholdGTE goes warm when len(history) >= threshold.
	ThresholdGTE ThresholdMode = "gte"
	// ThresholdEQ goes warm only when len(history) == threshold.
	ThresholdEQ ThresholdMode = "eq"
	// ThresholdGT goes warm when len(history) > threshold.
	ThresholdGT ThresholdMode = "gt"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Strategy selects the cluster assigner.
	// Default: nearest_neighbor.
	Strategy Strategy `json:"strategy"`

	// DecayFactor is the geometric recency decay in (0, 1).
	// Default: 0.9.
	DecayFactor float64 `json:"decay_factor"`

	// NutritionWeight is the share of the nutrition signal in [0, 1]. The
	// frequency signal receives 1 - NutritionWeight.
	// Default: 0.4.
	NutritionWeight float64 `json:"nutrition_weight"`

	// FrequencyScale multiplies count * recency before blending.
	// Default: 10.
	FrequencyScale float64 `json:"frequency_scale"`

	// TopN is the default result length.
	// Default: 30.
	TopN int `json:"top_n"`

	// WarmThreshold is the history length that unlocks the hybrid path.
	// Default: 30.
	WarmThreshold int `json:"warm_threshold"`

	// ThresholdMode is the comparison applied to WarmThreshold.
	// Default: gte.
	ThresholdMode ThresholdMode `json:"threshold_mode"`

	// DeriveProfileFromHistory computes a macro profile from the request's
	// history when no inline or summarized profile was supplied.
	// Default: false.
	DeriveProfileFromHistory bool `json:"derive_profile_from_history"`

	// Nutrition configures the nutrition scorer.
	Nutrition NutritionConfig `json:"nutrition"`
}

// MacroGuideline holds the guideline targets and scoring weights of one
// macro-nutrient. All shares are fractions of total energy.
type MacroGuideline struct {
	// Ideal is the target share.
	Ideal float64 `json:"ideal"`

	// BandMin and BandMax bound the acceptable range.
	BandMin float64 `json:"band_min"`
	BandMax float64 `json:"band_max"`

	// Margin is the width of the gentle-penalty zone below BandMax.
	Margin float64 `json:"margin"`

	// QualifyingFloor is the share a food must exceed before it can be
	// rewarded or penalized for this macro.
	QualifyingFloor float64 `json:"qualifying_floor"`

	RewardMultiplier  float64 `json:"reward_multiplier"`
	PenaltyMultiplier float64 `json:"penalty_multiplier"`
}

// NutritionConfig configures the nutrition scorer.
type NutritionConfig struct {
	// StrictBands switches from the simple threshold variant to the
	// five-zone band variant.
	// Default: false.
	StrictBands bool `json:"strict_bands"`

	// DeficitThreshold is the minimum |deficit| that triggers a reward or,
	// in the simple variant, a penalty.
	// Default: 0.03.
	DeficitThreshold float64 `json:"deficit_threshold"`

	// GentlePenaltyFactor scales penalties inside the margin zone.
	// Default: 0.5.
	GentlePenaltyFactor float64 `json:"gentle_penalty_factor"`

	Carb    MacroGuideline `json:"carb"`
	Protein MacroGuideline `json:"protein"`
	Fat     MacroGuideline `json:"fat"`
}

// Nutrition profile names accepted by NutritionProfile.
const (
	ProfileBalanced   = "balanced"
	ProfileAMDRStrict = "amdr-strict"
)

// DefaultNutritionConfig returns the balanced profile. Targets follow a
// 55/15/30 carb/protein/fat split and bands follow the IOM Acceptable
// Macronutrient Distribution Ranges. Fat is rewarded but never penalized.
func DefaultNutritionConfig() NutritionConfig {
	return NutritionConfig{
		StrictBands:         false,
		DeficitThreshold:    0.03,
		GentlePenaltyFactor: 0.5,
		Carb: MacroGuideline{
			Ideal:             0.55,
			BandMin:           0.45,
			BandMax:           0.65,
			Margin:            0.05,
			QualifyingFloor:   0.50,
			RewardMultiplier:  225,
			PenaltyMultiplier: 75,
		},
		Protein: MacroGuideline{
			Ideal:             0.15,
			BandMin:           0.10,
			BandMax:           0.35,
			Margin:            0.05,
			QualifyingFloor:   0.20,
			RewardMultiplier:  450,
			PenaltyMultiplier: 100,
		},
		Fat: MacroGuideline{
			Ideal:             0.30,
			BandMin:           0.20,
			BandMax:           0.35,
			Margin:            0.05,
			QualifyingFloor:   0.30,
			RewardMultiplier:  225,
			PenaltyMultiplier: 0,
		},
	}
}

// StrictNutritionConfig returns the amdr-strict profile: the balanced
// targets scored with the five-zone band logic and a fat penalty.
func StrictNutritionConfig() NutritionConfig {
	cfg := DefaultNutritionConfig()
	cfg.StrictBands = true
	cfg.Fat.PenaltyMultiplier = 75
	return cfg
}

var nutritionProfiles = map[string]func() NutritionConfig{
	ProfileBalanced:   DefaultNutritionConfig,
	ProfileAMDRStrict: StrictNutritionConfig,
}

// NutritionProfile returns a named nutrition profile.
func NutritionProfile(name string) (NutritionConfig, error) {
	fn, ok := nutritionProfiles[name]
	if !ok {
		return NutritionConfig{}, fmt.Errorf("unknown nutrition profile %q (known: %v)", name, NutritionProfiles())
	}
	return fn(), nil
}

// NutritionProfiles lists the registered profile names in sorted order.
func NutritionProfiles() []string {
	names := make([]string, 0, len(nutritionProfiles))
	for name := range nutritionProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultConfig returns a configuration with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Strategy:                 StrategyNearestNeighbor,
		DecayFactor:              0.9,
		NutritionWeight:          0.4,
		FrequencyScale:           10,
		TopN:                     30,
		WarmThreshold:            30,
		ThresholdMode:            ThresholdGTE,
		DeriveProfileFromHistory: false,
		Nutrition:                DefaultNutritionConfig(),
	}
}

// IsWarm reports whether a history of length n takes the hybrid path.
func (c *Config) IsWarm(n int) bool {
	switch c.ThresholdMode {
	case ThresholdEQ:
		return n == c.WarmThreshold
	case ThresholdGT:
		return n > c.WarmThreshold
	default:
		return n >= c.WarmThreshold
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Strategy {
	case StrategyNearestNeighbor, StrategyCentroid:
	default:
		return fmt.Errorf("strategy must be %q or %q, got %q", StrategyNearestNeighbor, StrategyCentroid, c.Strategy)
	}
	if c.DecayFactor <= 0 || c.DecayFactor >= 1 {
		return fmt.Errorf("decay_factor must be in (0, 1), got %f", c.DecayFactor)
	}
	if c.NutritionWeight < 0 || c.NutritionWeight > 1 {
		return fmt.Errorf("nutrition_weight must be in [0, 1], got %f", c.NutritionWeight)
	}
	if c.FrequencyScale < 0 {
		return fmt.Errorf("frequency_scale must be non-negative, got %f", c.FrequencyScale)
	}
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	if c.WarmThreshold < 0 {
		return fmt.Errorf("warm_threshold must be non-negative, got %d", c.WarmThreshold)
	}
	switch c.ThresholdMode {
	case ThresholdGTE, ThresholdEQ, ThresholdGT:
	default:
		return fmt.Errorf("threshold_mode must be one of gte, eq, gt, got %q", c.ThresholdMode)
	}
	return c.Nutrition.Validate()
}

// Validate checks the nutrition configuration for errors.
func (n *NutritionConfig) Validate() error {
	if n.DeficitThreshold < 0 {
		return fmt.Errorf("nutrition.deficit_threshold must be non-negative, got %f", n.DeficitThreshold)
	}
	if n.GentlePenaltyFactor < 0 {
		return fmt.Errorf("nutrition.gentle_penalty_factor must be non-negative, got %f", n.GentlePenaltyFactor)
	}
	for _, m := range []struct {
		name string
		g    MacroGuideline
	}{
		{"carb", n.Carb},
		{"protein", n.Protein},
		{"fat", n.Fat},
	} {
		if err := m.g.validate(m.name); err != nil {
			return err
		}
	}
	return nil
}

func (g MacroGuideline) validate(name string) error {
	if g.Ideal < 0 || g.Ideal > 1 {
		return fmt.Errorf("nutrition.%s.ideal must be in [0, 1], got %f", name, g.Ideal)
	}
	if g.BandMin < 0 || g.BandMax > 1 || g.BandMin > g.BandMax {
		return fmt.Errorf("nutrition.%s band must satisfy 0 <= min <= max <= 1, got [%f, %f]", name, g.BandMin, g.BandMax)
	}
	if g.Margin < 0 || g.Margin > g.BandMax-g.BandMin {
		return fmt.Errorf("nutrition.%s.margin must be in [0, band width], got %f", name, g.Margin)
	}
	if g.QualifyingFloor < 0 || g.QualifyingFloor >= 1 {
		return fmt.Errorf("nutrition.%s.qualifying_floor must be in [0, 1), got %f", name, g.QualifyingFloor)
	}
	if g.RewardMultiplier < 0 || g.PenaltyMultiplier < 0 {
		return fmt.Errorf("nutrition.%s multipliers must be non-negative", name)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}
