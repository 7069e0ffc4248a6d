// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/nutrirank/internal/cache"
	"github.com/tomtom215/nutrirank/internal/jobs"
	"github.com/tomtom215/nutrirank/internal/recommend"
	"github.com/tomtom215/nutrirank/internal/validation"
)

// Error codes.
const (
	CodeValidation         = validation.ErrorCode
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeDataIntegrity      = "DATA_INTEGRITY_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

// classify maps an engine, store or queue error to an HTTP status and code.
func classify(err error) (int, *APIError) {
	var stageErr *recommend.StageError
	switch {
	case recommend.IsCallerError(err):
		apiErr := &APIError{Code: CodeInvalidRequest, Message: "Request cannot be scored"}
		if errors.As(err, &stageErr) {
			apiErr.Details = map[string]interface{}{"stage": string(stageErr.Stage), "reason": stageErr.Err.Error()}
		}
		return http.StatusBadRequest, apiErr
	case errors.Is(err, recommend.ErrUnknownCluster):
		return http.StatusInternalServerError, &APIError{Code: CodeDataIntegrity, Message: "Assigned cluster is missing from the catalog"}
	case errors.Is(err, jobs.ErrPublisherUnavailable),
		errors.Is(err, cache.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, &APIError{Code: CodeServiceUnavailable, Message: "Service temporarily unavailable"}
	default:
		return http.StatusInternalServerError, &APIError{Code: CodeInternal, Message: "Internal server error"}
	}
}

// respondClassified writes the classified error for err.
func respondClassified(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := classify(err)
	respondAPIError(w, r, status, apiErr, err)
}

// storeUnavailable writes a 503 for a failed store call.
func storeUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, http.StatusServiceUnavailable, CodeServiceUnavailable, "Result store unavailable", err)
}
