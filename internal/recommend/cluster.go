// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package recommend

import (
	"fmt"
	"math"
	"sort"
)

// Scaler is a fitted standard scaler: x' = (x - Mean) / Scale.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform scales x into a new slice. A zero scale is treated as 1, which
// matches how constant columns are handled at fit time.
func (s *Scaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out
}

// ClusterModel is the precomputed clustering artifact.
type ClusterModel struct {
	// FeatureCols is the exact column order the scaler was fit with.
	FeatureCols []string `json:"feature_cols"`

	Scaler Scaler `json:"scaler"`

	// Training holds raw (unscaled) feature rows with one label each.
	Training [][]float64 `json:"training"`
	Labels   []int       `json:"labels"`

	// Centroids are k-means centers in scaled space. CentroidLabels maps a
	// centroid index to a cluster id; when empty the index is the id.
	Centroids      [][]float64 `json:"centroids,omitempty"`
	CentroidLabels []int       `json:"centroid_labels,omitempty"`

	// Medians are per-column imputation values. When empty they are
	// derived from Training by Validate.
	Medians []float64 `json:"medians,omitempty"`
}

// Arity returns the feature vector length the model expects.
func (m *ClusterModel) Arity() int {
	return len(m.FeatureCols)
}

// Validate checks the model for internal consistency and fills derived
// fields. It must be called once before the model is shared.
func (m *ClusterModel) Validate() error {
	n := len(m.FeatureCols)
	if n == 0 {
		return fmt.Errorf("%w: no feature columns", ErrInvalidModel)
	}
	if len(m.Scaler.Mean) != n || len(m.Scaler.Scale) != n {
		return fmt.Errorf("%w: scaler has %d/%d parameters for %d features",
			ErrInvalidModel, len(m.Scaler.Mean), len(m.Scaler.Scale), n)
	}
	if len(m.Training) != len(m.Labels) {
		return fmt.Errorf("%w: %d training rows but %d labels", ErrInvalidModel, len(m.Training), len(m.Labels))
	}
	for i, row := range m.Training {
		if len(row) != n {
			return fmt.Errorf("%w: training row %d has %d values, want %d", ErrInvalidModel, i, len(row), n)
		}
	}
	for i, c := range m.Centroids {
		if len(c) != n {
			return fmt.Errorf("%w: centroid %d has %d values, want %d", ErrInvalidModel, i, len(c), n)
		}
	}
	if len(m.CentroidLabels) > 0 && len(m.CentroidLabels) != len(m.Centroids) {
		return fmt.Errorf("%w: %d centroid labels for %d centroids", ErrInvalidModel, len(m.CentroidLabels), len(m.Centroids))
	}
	if len(m.Training) == 0 && len(m.Centroids) == 0 {
		return fmt.Errorf("%w: neither training rows nor centroids present", ErrInvalidModel)
	}
	if len(m.Medians) == 0 && len(m.Training) > 0 {
		m.Medians = columnMedians(m.Training, n)
	}
	if len(m.Medians) > 0 && len(m.Medians) != n {
		return fmt.Errorf("%w: %d medians for %d features", ErrInvalidModel, len(m.Medians), n)
	}
	return nil
}

// Vector builds a feature vector in model column order. Missing features
// become NaN so the assigner can impute or reject them.
func (m *ClusterModel) Vector(f Features) []float64 {
	vec := make([]float64, len(m.FeatureCols))
	for i, col := range m.FeatureCols {
		if v, ok := f.Lookup(col); ok {
			vec[i] = v
			continue
		}
		vec[i] = math.NaN()
	}
	return vec
}

// ClusterIDs returns the distinct cluster ids the model can emit.
func (m *ClusterModel) ClusterIDs() []int {
	seen := make(map[int]struct{})
	var ids []int
	add := func(id int) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, l := range m.Labels {
		add(l)
	}
	for i := range m.Centroids {
		add(m.centroidLabel(i))
	}
	sort.Ints(ids)
	return ids
}

func (m *ClusterModel) centroidLabel(i int) int {
	if len(m.CentroidLabels) > 0 {
		return m.CentroidLabels[i]
	}
	return i
}

// impute replaces NaN entries with model medians. It returns
// ErrMissingFeature when a value is missing and no median exists.
func (m *ClusterModel) impute(x []float64) ([]float64, error) {
	out := make([]float64, len(x))
	copy(out, x)
	for i, v := range out {
		if !math.IsNaN(v) {
			continue
		}
		if len(m.Medians) == 0 || math.IsNaN(m.Medians[i]) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFeature, m.FeatureCols[i])
		}
		out[i] = m.Medians[i]
	}
	return out, nil
}

func (m *ClusterModel) checkArity(x []float64) error {
	if len(x) != m.Arity() {
		return fmt.Errorf("%w: got %d values, model expects %d (%v)", ErrFeatureArity, len(x), m.Arity(), m.FeatureCols)
	}
	return nil
}

// ClusterStrategy maps a raw feature vector to a cluster id.
type ClusterStrategy interface {
	Name() string
	Assign(x []float64) (int, error)
}

// NearestNeighborAssigner labels an input with the cluster of the closest
// scaled training row.
type NearestNeighborAssigner struct {
	model  *ClusterModel
	scaled [][]float64
}

// NewNearestNeighborAssigner scales the training matrix once and returns
// an assigner over it.
func NewNearestNeighborAssigner(model *ClusterModel) (*NearestNeighborAssigner, error) {
	if len(model.Training) == 0 {
		return nil, fmt.Errorf("%w: nearest neighbor strategy needs training rows", ErrInvalidModel)
	}
	scaled := make([][]float64, len(model.Training))
	for i, row := range model.Training {
		imputed, err := model.impute(row)
		if err != nil {
			return nil, fmt.Errorf("%w: training row %d: %v", ErrInvalidModel, i, err)
		}
		scaled[i] = model.Scaler.Transform(imputed)
	}
	return &NearestNeighborAssigner{model: model, scaled: scaled}, nil
}

// Name implements ClusterStrategy.
func (a *NearestNeighborAssigner) Name() string { return string(StrategyNearestNeighbor) }

// Assign implements ClusterStrategy. Ties go to the earliest training row.
func (a *NearestNeighborAssigner) Assign(x []float64) (int, error) {
	if err := a.model.checkArity(x); err != nil {
		return 0, err
	}
	imputed, err := a.model.impute(x)
	if err != nil {
		return 0, err
	}
	idx := nearest(a.model.Scaler.Transform(imputed), a.scaled)
	return a.model.Labels[idx], nil
}

// CentroidAssigner labels an input with its nearest k-means centroid.
type CentroidAssigner struct {
	model *ClusterModel
}

// NewCentroidAssigner returns an assigner over the model centroids.
func NewCentroidAssigner(model *ClusterModel) (*CentroidAssigner, error) {
	if len(model.Centroids) == 0 {
		return nil, fmt.Errorf("%w: centroid strategy needs centroids", ErrInvalidModel)
	}
	return &CentroidAssigner{model: model}, nil
}

// Name implements ClusterStrategy.
func (a *CentroidAssigner) Name() string { return string(StrategyCentroid) }

// Assign implements ClusterStrategy.
func (a *CentroidAssigner) Assign(x []float64) (int, error) {
	if err := a.model.checkArity(x); err != nil {
		return 0, err
	}
	imputed, err := a.model.impute(x)
	if err != nil {
		return 0, err
	}
	idx := nearest(a.model.Scaler.Transform(imputed), a.model.Centroids)
	return a.model.centroidLabel(idx), nil
}

// NewClusterStrategy builds the assigner named by s.
func NewClusterStrategy(s Strategy, model *ClusterModel) (ClusterStrategy, error) {
	switch s {
	case StrategyNearestNeighbor:
		return NewNearestNeighborAssigner(model)
	case StrategyCentroid:
		return NewCentroidAssigner(model)
	default:
		return nil, fmt.Errorf("unknown cluster strategy %q", s)
	}
}

// nearest returns the index of the row closest to x. The first minimum
// wins. Squared distance preserves the ordering of Euclidean distance.
func nearest(x []float64, rows [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, row := range rows {
		var d float64
		for j, v := range row {
			diff := x[j] - v
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// columnMedians computes per-column medians ignoring NaN values. A column
// with no values gets NaN.
func columnMedians(rows [][]float64, n int) []float64 {
	medians := make([]float64, n)
	col := make([]float64, 0, len(rows))
	for j := 0; j < n; j++ {
		col = col[:0]
		for _, row := range rows {
			if !math.IsNaN(row[j]) {
				col = append(col, row[j])
			}
		}
		medians[j] = median(col)
	}
	return medians
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
