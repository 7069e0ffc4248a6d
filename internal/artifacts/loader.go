// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/nutrirank/internal/metrics"
	"github.com/tomtom215/nutrirank/internal/recommend"
)

// catalogKeyPrefix prefixes every cluster key in the catalog document.
const catalogKeyPrefix = "cluster_"

// Config locates the three artifact files.
type Config struct {
	ModelPath   string
	CatalogPath string
	FoodsPath   string

	// Timeout bounds the whole load. Zero means no limit.
	Timeout time.Duration
}

// Validate checks that every path is set.
func (c *Config) Validate() error {
	var missing []string
	if c.ModelPath == "" {
		missing = append(missing, "model_path")
	}
	if c.CatalogPath == "" {
		missing = append(missing, "catalog_path")
	}
	if c.FoodsPath == "" {
		missing = append(missing, "foods_path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("artifacts: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Load reads the model, catalog and food table in parallel and returns
// validated artifacts. Any failure is fatal for the caller.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Load(ctx context.Context, cfg *Config, logger zerolog.Logger) (*recommend.Artifacts, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	var (
		model   *recommend.ClusterModel
		catalog recommend.ClusterCatalog
		foods   recommend.FoodMacroTable
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		model, err = LoadModel(cfg.ModelPath)
		return err
	})
	g.Go(func() error {
		var err error
		catalog, err = LoadCatalog(cfg.CatalogPath)
		return err
	})
	g.Go(func() error {
		var err error
		foods, err = LoadFoodTable(gctx, cfg.FoodsPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	art := &recommend.Artifacts{Model: model, Catalog: catalog, Foods: foods}
	if err := art.Validate(); err != nil {
		return nil, fmt.Errorf("artifacts: %w", err)
	}

	entries := 0
	for _, list := range catalog {
		entries += len(list)
	}
	metrics.SetArtifactCounts(len(catalog), entries, len(foods))
	metrics.ArtifactsLoadDuration.Observe(time.Since(start).Seconds())

	logger.Info().
		Int("features", model.Arity()).
		Int("training_rows", len(model.Training)).
		Int("centroids", len(model.Centroids)).
		Int("clusters", len(catalog)).
		Int("catalog_entries", entries).
		Int("foods", len(foods)).
		Dur("duration", time.Since(start)).
		Msg("artifacts loaded")

	return art, nil
}

// LoadModel reads a cluster model JSON document. The model is validated,
// which also derives imputation medians when the file has none.
func LoadModel(path string) (*recommend.ClusterModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cluster model: %w", err)
	}

	var model recommend.ClusterModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("decode cluster model %s: %w", path, err)
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("cluster model %s: %w", path, err)
	}
	return &model, nil
}

// LoadCatalog reads the per-cluster popularity catalog:
//
//	{"cluster_0": [{"food_id": 12, "recommendation_score": 4.5}, ...], ...}
//
// Entry order is preserved; it is the cold-start order.
func LoadCatalog(path string) (recommend.ClusterCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var raw map[string][]recommend.CatalogEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog converts "cluster_{id}" keys to integer cluster ids.
func ParseCatalog(raw map[string][]recommend.CatalogEntry) (recommend.ClusterCatalog, error) {
	if len(raw) == 0 {
		return nil, errors.New("catalog is empty")
	}

	catalog := make(recommend.ClusterCatalog, len(raw))
	for key, entries := range raw {
		id, err := parseClusterKey(key)
		if err != nil {
			return nil, err
		}
		for i, e := range entries {
			if e.FoodID <= 0 {
				return nil, fmt.Errorf("catalog %s[%d]: food_id must be positive", key, i)
			}
		}
		catalog[id] = entries
	}
	return catalog, nil
}

func parseClusterKey(key string) (int, error) {
	suffix, ok := strings.CutPrefix(key, catalogKeyPrefix)
	if !ok {
		return 0, fmt.Errorf("catalog key %q: want %s{id}", key, catalogKeyPrefix)
	}
	id, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("catalog key %q: %w", key, err)
	}
	if id < 0 {
		return 0, fmt.Errorf("catalog key %q: cluster id must be non-negative", key)
	}
	return id, nil
}
