// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package recommend

import "math"

// Feature names understood by the engine. The loaded ClusterModel decides
// which of them are used and in which order.
const (
	FeatureAge        = "age"
	FeatureBMI        = "bmi"
	FeatureActivity   = "activity"
	FeatureGender     = "gender"
	FeatureCarbPct    = "carb_pct"
	FeatureProteinPct = "protein_pct"
	FeatureFatPct     = "fat_pct"

	// Alternative macro names used by older clients.
	FeatureKarbohidratPct = "karbohidrat_pct"
	FeatureLemakPct       = "lemak_pct"
)

// Features is the raw feature payload of a request keyed by feature name.
// A missing key or a NaN value means the feature is absent.
type Features map[string]float64

// Lookup returns the named feature and whether it holds a usable value.
func (f Features) Lookup(name string) (float64, bool) {
	v, ok := f[name]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ConsumptionRecord is one entry of a user's food history.
type ConsumptionRecord struct {
	FoodID int64  `json:"food_id"`
	Date   string `json:"date,omitempty"`
}

// MacroSplit is a carbohydrate/protein/fat share of total energy.
// Shares are fractions that sum to roughly 1.0.
type MacroSplit struct {
	CarbPct    float64 `json:"carb_pct"`
	ProteinPct float64 `json:"protein_pct"`
	FatPct     float64 `json:"fat_pct"`
}

// FoodMacroTable maps a food id to its macro split.
type FoodMacroTable map[int64]MacroSplit

// CatalogEntry is one precomputed (food, popularity) pair of a cluster.
type CatalogEntry struct {
	FoodID int64   `json:"food_id"`
	Score  float64 `json:"recommendation_score"`
}

// ClusterCatalog maps a cluster id to its popular foods in catalog order.
type ClusterCatalog map[int][]CatalogEntry

// Artifacts bundles the read-only inputs loaded once at startup.
type Artifacts struct {
	Model   *ClusterModel
	Catalog ClusterCatalog
	Foods   FoodMacroTable
}

// Validate checks that the artifacts are usable together.
func (a *Artifacts) Validate() error {
	if a == nil {
		return ErrInvalidModel
	}
	if a.Model == nil {
		return ErrInvalidModel
	}
	if err := a.Model.Validate(); err != nil {
		return err
	}
	if len(a.Catalog) == 0 {
		return ErrInvalidModel
	}
	return nil
}

// Path identifies which policy produced a result.
type Path string

// Recommendation paths.
const (
	PathColdStart Path = "cold_start"
	PathWarm      Path = "warm"
)

// Request is a single recommendation request.
type Request struct {
	UserID   int64
	Features Features

	// NutritionSummary is a pre-aggregated macro profile computed by the
	// caller. Inline macro features take precedence over it.
	NutritionSummary *MacroSplit

	// RecentRecords is ordered oldest first.
	RecentRecords []ConsumptionRecord

	// TopN limits the result length. Zero uses the configured default.
	TopN int
}

// ScoredFood is the per-food score breakdown produced by the ranker.
type ScoredFood struct {
	FoodID         int64   `json:"food_id"`
	BaseScore      float64 `json:"base_score"`
	FrequencyBoost float64 `json:"frequency_boost"`
	NutritionBoost float64 `json:"nutrition_boost"`
	FinalScore     float64 `json:"final_score"`
}

// Recommendation is one row of the response payload.
type Recommendation struct {
	UserID int64   `json:"user_id"`
	FoodID int64   `json:"food_id"`
	Score  float64 `json:"recommendation_score"`
}

// Result is the outcome of Engine.Recommend.
type Result struct {
	UserID        int64            `json:"user_id"`
	ClusterID     int              `json:"cluster_id"`
	Path          Path             `json:"path"`
	HistoryLength int              `json:"history_length"`
	MacroProfile  *MacroSplit      `json:"macro_profile,omitempty"`
	Foods         []Recommendation `json:"foods"`

	// Scored holds the full breakdown on the warm path. It is nil on cold start.
	Scored []ScoredFood `json:"-"`
}
