// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

// Package middleware provides HTTP middleware shared by the API router:
// correlation ID propagation, Prometheus request instrumentation, gzip
// compression, and an in-process performance monitor surfaced by the
// health endpoint.
//
// All middleware uses the Chi-compatible func(http.Handler) http.Handler
// shape so it can be registered with r.Use().
package middleware
