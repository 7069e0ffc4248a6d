// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/nutrirank/internal/jobs"
	"github.com/tomtom215/nutrirank/internal/recommend"
)

// FeaturesPayload is the feature object of a request. Which fields the
// engine uses depends on the loaded cluster model.
type FeaturesPayload struct {
	Age      *float64 `json:"age,omitempty" validate:"omitempty,gte=0"`
	BMI      *float64 `json:"bmi" validate:"required,gt=0"`
	Activity *float64 `json:"activity" validate:"required,activity_level"`
	Gender   *float64 `json:"gender,omitempty" validate:"omitempty,gender_code"`

	CarbPct    *float64 `json:"carb_pct,omitempty" validate:"omitempty,share"`
	ProteinPct *float64 `json:"protein_pct,omitempty" validate:"omitempty,share"`
	FatPct     *float64 `json:"fat_pct,omitempty" validate:"omitempty,share"`

	KarbohidratPct *float64 `json:"karbohidrat_pct,omitempty" validate:"omitempty,share"`
	LemakPct       *float64 `json:"lemak_pct,omitempty" validate:"omitempty,share"`
}

// MacroSummaryPayload is a pre-aggregated macro profile.
type MacroSummaryPayload struct {
	CarbPct    float64 `json:"carb_pct" validate:"share"`
	ProteinPct float64 `json:"protein_pct" validate:"share"`
	FatPct     float64 `json:"fat_pct" validate:"share"`
}

// RecordPayload is one consumption record.
type RecordPayload struct {
	FoodID int64  `json:"food_id" validate:"gt=0"`
	Date   string `json:"date,omitempty"`
}

// RecommendationRequest is the body of the synchronous and job endpoints.
// recent_records is ordered oldest first.
type RecommendationRequest struct {
	UserID           int64                `json:"user_id" validate:"gt=0"`
	Features         FeaturesPayload      `json:"features"`
	NutritionSummary *MacroSummaryPayload `json:"nutrition_summary,omitempty"`
	RecentRecords    []RecordPayload      `json:"recent_records" validate:"max=10000,dive"`
	TopN             int                  `json:"top_n,omitempty" validate:"omitempty,min=1,max=500"`
}

// BatchRequest is the body of the batch endpoint.
type BatchRequest struct {
	Jobs []RecommendationRequest `json:"jobs" validate:"required,min=1,dive"`
}

// JobAccepted is returned for an enqueued job.
type JobAccepted struct {
	JobID  string      `json:"job_id"`
	UserID int64       `json:"user_id"`
	Status jobs.Status `json:"status"`
}

// BatchAccepted is returned for an enqueued batch.
type BatchAccepted struct {
	JobIDs   []string `json:"job_ids"`
	Accepted int      `json:"accepted"`
}

// RecommendationResponse is the body of POST /get-recommendation.
type RecommendationResponse struct {
	Foods []recommend.Recommendation `json:"foods"`
}

// features converts the payload into the engine's keyed form. Absent
// fields are left out so the assigner can impute them.
func (p *FeaturesPayload) features() recommend.Features {
	f := make(recommend.Features, 9)
	set := func(name string, v *float64) {
		if v != nil {
			f[name] = *v
		}
	}
	set(recommend.FeatureAge, p.Age)
	set(recommend.FeatureBMI, p.BMI)
	set(recommend.FeatureActivity, p.Activity)
	set(recommend.FeatureGender, p.Gender)
	set(recommend.FeatureCarbPct, p.CarbPct)
	set(recommend.FeatureProteinPct, p.ProteinPct)
	set(recommend.FeatureFatPct, p.FatPct)
	set(recommend.FeatureKarbohidratPct, p.KarbohidratPct)
	set(recommend.FeatureLemakPct, p.LemakPct)

	// Aliases fill missing canonical keys, which the cluster model reads.
	alias := func(canonical, name string) {
		if _, ok := f[canonical]; ok {
			return
		}
		if v, ok := f[name]; ok {
			f[canonical] = v
		}
	}
	alias(recommend.FeatureCarbPct, recommend.FeatureKarbohidratPct)
	alias(recommend.FeatureFatPct, recommend.FeatureLemakPct)
	return f
}

func (req *RecommendationRequest) records() []recommend.ConsumptionRecord {
	out := make([]recommend.ConsumptionRecord, len(req.RecentRecords))
	for i, r := range req.RecentRecords {
		out[i] = recommend.ConsumptionRecord{FoodID: r.FoodID, Date: r.Date}
	}
	return out
}

func (req *RecommendationRequest) summary() *recommend.MacroSplit {
	if req.NutritionSummary == nil {
		return nil
	}
	return &recommend.MacroSplit{
		CarbPct:    req.NutritionSummary.CarbPct,
		ProteinPct: req.NutritionSummary.ProteinPct,
		FatPct:     req.NutritionSummary.FatPct,
	}
}

// EngineRequest converts the body into an engine request.
func (req *RecommendationRequest) EngineRequest() *recommend.Request {
	return &recommend.Request{
		UserID:           req.UserID,
		Features:         req.Features.features(),
		NutritionSummary: req.summary(),
		RecentRecords:    req.records(),
		TopN:             req.TopN,
	}
}

// Job converts the body into a queued job.
func (req *RecommendationRequest) Job() *jobs.Job {
	return &jobs.Job{
		UserID:           req.UserID,
		Features:         req.Features.features(),
		NutritionSummary: req.summary(),
		RecentRecords:    req.records(),
		TopN:             req.TopN,
	}
}

// errBodyTooLarge is returned by decodeJSON for oversized bodies.
var errBodyTooLarge = errors.New("request body too large")

// decodeJSON reads exactly one JSON document from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errBodyTooLarge
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		default:
			return fmt.Errorf("malformed JSON: %w", err)
		}
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON document")
	}
	return nil
}
