// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package recommend

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is to classify a failure.
var (
	// ErrInvalidRequest marks a request the caller must fix before retrying.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrFeatureArity is returned when a feature vector does not match the
	// model's feature schema length.
	ErrFeatureArity = errors.New("feature vector arity mismatch")

	// ErrMissingFeature is returned when a feature value is absent and the
	// active strategy has no way to impute it.
	ErrMissingFeature = errors.New("missing feature value")

	// ErrUnknownCluster is a data-integrity failure: the assigner produced a
	// cluster id that the catalog does not contain.
	ErrUnknownCluster = errors.New("cluster not present in catalog")

	// ErrInvalidModel is returned when cluster artifacts are inconsistent.
	ErrInvalidModel = errors.New("invalid cluster model")
)

// Stage names the pipeline step that produced an error.
type Stage string

// Pipeline stages.
const (
	StageValidate  Stage = "validate"
	StageFeatures  Stage = "features"
	StageCluster   Stage = "cluster"
	StageCatalog   Stage = "catalog"
	StageFrequency Stage = "frequency"
	StageRank      Stage = "rank"
)

// StageError wraps a pipeline failure with the user and stage it belongs to.
type StageError struct {
	Stage  Stage
	UserID int64
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("recommend user %d: %s: %v", e.UserID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// IsCallerError reports whether err was caused by bad input rather than by
// the engine or its artifacts.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrFeatureArity) ||
		errors.Is(err, ErrMissingFeature)
}

// Outcome labels a finished run: success, caller_error or error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case IsCallerError(err):
		return "caller_error"
	default:
		return "error"
	}
}

func stageErr(stage Stage, userID int64, err error) error {
	return &StageError{Stage: stage, UserID: userID, Err: err}
}
