// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps a thread-safe singleton validator and translates field errors into
// human-readable messages and the API error format.
//
// # Field Names
//
// Errors name fields by their koanf tag, then their json tag, so a failing
// configuration value is reported as "shard_count" and a failing request
// parameter as "user_id".
//
// # Custom Validators
//
//   - loglevel: one of trace, debug, info, warn, error
//
// # Usage
//
//	type RecommendationsRequest struct {
//	    UserID int64 `json:"user_id" validate:"gte=0,lte=2147483647"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
package validation
