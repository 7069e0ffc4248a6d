// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package recommend

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Note: This package has no dependencies on other internal packages. The
// artifacts loader and the job worker depend on it, never the reverse.

// Engine chooses between the cold-start and the warm policy and runs the
// scoring pipeline. It is safe for concurrent use.
type Engine struct {
	config    *Config
	logger    zerolog.Logger
	artifacts *Artifacts
	assigner  ClusterStrategy
	scorer    *NutritionScorer

	requestCount   atomic.Int64
	coldStartCount atomic.Int64
	warmCount      atomic.Int64
	errorCount     atomic.Int64
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Requests   int64 `json:"requests"`
	ColdStarts int64 `json:"cold_starts"`
	Warm       int64 `json:"warm"`
	Errors     int64 `json:"errors"`
}

// NewEngine creates an engine over validated artifacts.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, artifacts *Artifacts, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := artifacts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid artifacts: %w", err)
	}

	assigner, err := NewClusterStrategy(cfg.Strategy, artifacts.Model)
	if err != nil {
		return nil, fmt.Errorf("cluster strategy: %w", err)
	}

	e := &Engine{
		config:    cfg.Clone(),
		logger:    logger.With().Str("component", "recommend").Logger(),
		artifacts: artifacts,
		assigner:  assigner,
		scorer:    NewNutritionScorer(cfg.Nutrition, artifacts.Foods),
	}

	for _, id := range artifacts.Model.ClusterIDs() {
		if _, ok := artifacts.Catalog[id]; !ok {
			e.logger.Warn().Int("cluster_id", id).Msg("model emits a cluster missing from the catalog")
		}
	}

	e.logger.Info().
		Str("strategy", assigner.Name()).
		Int("clusters", len(artifacts.Catalog)).
		Int("foods", len(artifacts.Foods)).
		Int("warm_threshold", cfg.WarmThreshold).
		Str("threshold_mode", string(cfg.ThresholdMode)).
		Bool("strict_bands", cfg.Nutrition.StrictBands).
		Msg("recommendation engine ready")

	return e, nil
}

// Recommend produces a ranked list of foods for one user.
func (e *Engine) Recommend(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if err := e.validateRequest(req); err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		e.errorCount.Add(1)
		return nil, stageErr(StageValidate, req.UserID, err)
	}

	topN := e.prepareTopN(req)
	logger := e.createRequestLogger(req)

	clusterID, err := e.assignCluster(req)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	catalog, ok := e.artifacts.Catalog[clusterID]
	if !ok {
		e.errorCount.Add(1)
		return nil, stageErr(StageCatalog, req.UserID, fmt.Errorf("%w: cluster %d", ErrUnknownCluster, clusterID))
	}

	result := &Result{
		UserID:        req.UserID,
		ClusterID:     clusterID,
		HistoryLength: len(req.RecentRecords),
	}

	if !e.config.IsWarm(len(req.RecentRecords)) {
		e.coldStartCount.Add(1)
		result.Path = PathColdStart
		result.Foods = coldStartFoods(req.UserID, catalog, topN)
		logger.Debug().
			Int("cluster_id", clusterID).
			Int("returned", len(result.Foods)).
			Dur("latency", time.Since(start)).
			Msg("cold start recommendation complete")
		return result, nil
	}

	e.warmCount.Add(1)
	result.Path = PathWarm
	result.MacroProfile = resolveMacroProfile(req, e.artifacts.Foods, e.config.DeriveProfileFromHistory)

	freq := Aggregate(req.RecentRecords, e.config.DecayFactor)

	var nutrition func(int64) float64
	if result.MacroProfile != nil {
		profile := result.MacroProfile
		nutrition = func(foodID int64) float64 { return e.scorer.Score(profile, foodID) }
	}

	result.Scored = Rank(&RankInput{
		Catalog:         catalog,
		Frequency:       freq,
		Nutrition:       nutrition,
		NutritionWeight: e.config.NutritionWeight,
		FrequencyScale:  e.config.FrequencyScale,
		TopN:            topN,
	})
	result.Foods = toRecommendations(req.UserID, result.Scored)

	ev := logger.Debug().
		Int("cluster_id", clusterID).
		Int("distinct_foods", len(freq.Order)).
		Bool("macro_profile", result.MacroProfile != nil).
		Int("returned", len(result.Foods)).
		Dur("latency", time.Since(start))
	if p := result.MacroProfile; p != nil && ev.Enabled() {
		ev = ev.
			Str("carb_zone", string(e.scorer.Classify(e.scorer.cfg.Carb, p.CarbPct))).
			Str("protein_zone", string(e.scorer.Classify(e.scorer.cfg.Protein, p.ProteinPct))).
			Str("fat_zone", string(e.scorer.Classify(e.scorer.cfg.Fat, p.FatPct)))
	}
	ev.Msg("warm recommendation complete")

	return result, nil
}

func (e *Engine) assignCluster(req *Request) (int, error) {
	vec := e.artifacts.Model.Vector(req.Features)
	clusterID, err := e.assigner.Assign(vec)
	if err != nil {
		return 0, stageErr(StageCluster, req.UserID, err)
	}
	return clusterID, nil
}

func (e *Engine) validateRequest(req *Request) error {
	if req == nil {
		return stageErr(StageValidate, 0, fmt.Errorf("%w: nil request", ErrInvalidRequest))
	}
	if req.UserID <= 0 {
		return stageErr(StageValidate, req.UserID, fmt.Errorf("%w: user_id must be positive", ErrInvalidRequest))
	}
	if req.TopN < 0 {
		return stageErr(StageValidate, req.UserID, fmt.Errorf("%w: top_n must be non-negative", ErrInvalidRequest))
	}
	for i, r := range req.RecentRecords {
		if r.FoodID <= 0 {
			return stageErr(StageValidate, req.UserID,
				fmt.Errorf("%w: recent_records[%d].food_id must be positive", ErrInvalidRequest, i))
		}
	}
	return nil
}

func (e *Engine) prepareTopN(req *Request) int {
	if req.TopN > 0 {
		return req.TopN
	}
	return e.config.TopN
}

func (e *Engine) createRequestLogger(req *Request) zerolog.Logger {
	return e.logger.With().
		Int64("user_id", req.UserID).
		Int("history", len(req.RecentRecords)).
		Logger()
}

// Stats returns a snapshot of engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests:   e.requestCount.Load(),
		ColdStarts: e.coldStartCount.Load(),
		Warm:       e.warmCount.Load(),
		Errors:     e.errorCount.Load(),
	}
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Artifacts returns the artifacts the engine was built with.
func (e *Engine) Artifacts() *Artifacts {
	return e.artifacts
}

func coldStartFoods(userID int64, catalog []CatalogEntry, topN int) []Recommendation {
	n := len(catalog)
	if topN > 0 && n > topN {
		n = topN
	}
	out := make([]Recommendation, n)
	for i := 0; i < n; i++ {
		out[i] = Recommendation{UserID: userID, FoodID: catalog[i].FoodID, Score: catalog[i].Score}
	}
	return out
}

func toRecommendations(userID int64, scored []ScoredFood) []Recommendation {
	out := make([]Recommendation, len(scored))
	for i, s := range scored {
		out[i] = Recommendation{UserID: userID, FoodID: s.FoodID, Score: s.FinalScore}
	}
	return out
}
