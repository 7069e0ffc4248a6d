// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package api

import (
	"testing"

	"github.com/tomtom215/nutrirank/internal/recommend"
)

func ptr(v float64) *float64 { return &v }

func TestFeaturesPayload_FoldsAliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		payload  FeaturesPayload
		wantCarb float64
		wantFat  float64
	}{
		{
			name:     "aliases only",
			payload:  FeaturesPayload{KarbohidratPct: ptr(0.6), LemakPct: ptr(0.25)},
			wantCarb: 0.6,
			wantFat:  0.25,
		},
		{
			name:     "canonical keys win",
			payload:  FeaturesPayload{CarbPct: ptr(0.5), KarbohidratPct: ptr(0.6), FatPct: ptr(0.2), LemakPct: ptr(0.25)},
			wantCarb: 0.5,
			wantFat:  0.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := tt.payload.features()
			if v, ok := f.Lookup(recommend.FeatureCarbPct); !ok || v != tt.wantCarb {
				t.Errorf("carb_pct = %v, %v, want %v", v, ok, tt.wantCarb)
			}
			if v, ok := f.Lookup(recommend.FeatureFatPct); !ok || v != tt.wantFat {
				t.Errorf("fat_pct = %v, %v, want %v", v, ok, tt.wantFat)
			}
		})
	}

	if f := (&FeaturesPayload{BMI: ptr(22)}).features(); len(f) != 1 {
		t.Errorf("features() = %v, want only bmi", f)
	}
}

func TestFeaturesPayload_AliasesReachClustering(t *testing.T) {
	t.Parallel()

	model := &recommend.ClusterModel{FeatureCols: []string{recommend.FeatureCarbPct, recommend.FeatureFatPct}}
	vec := model.Vector((&FeaturesPayload{KarbohidratPct: ptr(0.6), LemakPct: ptr(0.25)}).features())
	if vec[0] != 0.6 || vec[1] != 0.25 {
		t.Errorf("Vector() = %v, want [0.6 0.25] from the aliases", vec)
	}
}
