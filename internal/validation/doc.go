// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

// Package validation validates API request bodies with
// go-playground/validator v10.
//
// A single validator is shared by all handlers. Errors name fields by their
// JSON path ("features.bmi", "recent_records[2].food_id") and convert to the
// API error envelope through ToAPIError.
//
// Domain rules registered on top of the built-in tags:
//
//	gender_code     1 (male) or 2 (female)
//	activity_level  whole number 1..4
//	share           macro energy share, fraction or percentage
//
// Example:
//
//	type Features struct {
//	    BMI      *float64 `json:"bmi" validate:"required,gt=0"`
//	    Activity *float64 `json:"activity" validate:"required,activity_level"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    ...
//	}
package validation
