// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package validation provides request validation using go-playground/validator v10.
//
// A single validator instance is built on first use. Errors report JSON
// field names, so a failure on RecommendationRequest.Titles reads
// "user_book_titles must be at most 200 items".
//
// # Custom Tags
//
//   - userid: not blank, no control characters
//   - booktitle: no control characters (blank titles are allowed and simply
//     fail to resolve)
//
// # Usage
//
//	var req models.RecommendationRequest
//	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
//	    // 400
//	}
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
//
// Preference profiles are maps rather than structs, so they are checked
// with ValidateProfile: every weight must be finite and non-negative.
// Path parameters are checked with ValidateUserID.
//
// # Thread Safety
//
// GetValidator, ValidateStruct, ValidateUserID and ValidateProfile are safe
// for concurrent use.
package validation
