// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

// Package models defines the HTTP wire types: the APIResponse envelope used
// under /api/v1 and the request and response bodies of each endpoint.
package models
