// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/nutrirank/internal/logging"
	"github.com/tomtom215/nutrirank/internal/metrics"
	"github.com/tomtom215/nutrirank/internal/recommend"
	"github.com/tomtom215/nutrirank/internal/validation"
)

// GetRecommendation handles POST /get-recommendation. It runs the engine
// inline and answers {"foods": [...]} without the envelope.
func (s *Server) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := s.withTimeout(logging.ContextWithUserID(r.Context(), req.UserID))
	defer cancel()

	start := time.Now()
	res, err := s.engine.Recommend(ctx, req.EngineRequest())
	if err != nil {
		metrics.RecordRecommendation("", recommend.Outcome(err), time.Since(start), 0)
		respondClassified(w, r.WithContext(ctx), err)
		return
	}
	metrics.RecordRecommendation(string(res.Path), recommend.Outcome(nil), time.Since(start), len(res.Foods))

	logging.Ctx(ctx).Debug().
		Str("path", string(res.Path)).
		Int("cluster_id", res.ClusterID).
		Int("returned", len(res.Foods)).
		Msg("recommendation served")

	writeJSON(w, http.StatusOK, &RecommendationResponse{Foods: res.Foods})
}

// decodeAndValidate reads the body into dst and validates it, writing the
// error response itself when it returns false.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := decodeJSON(w, r, s.config.MaxBodyBytes, dst); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		respondError(w, r, status, CodeInvalidRequest, err.Error(), nil)
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		respondAPIError(w, r, http.StatusBadRequest, &APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil)
		return false
	}
	return true
}
