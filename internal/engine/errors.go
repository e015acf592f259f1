// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package engine

import "errors"

// Error taxonomy for the scoring core. No error here is fatal to the host
// process: the engine either recovers locally with a fallback strategy or
// surfaces a typed, retryable status to the caller.
var (
	// ErrMissingData indicates the learning corpus is absent or empty.
	// Recovered locally by falling back to rule-based scoring; never
	// surfaced to Score callers.
	ErrMissingData = errors.New("learning corpus is empty")

	// ErrMalformedRecord indicates a stored learning record failed
	// structural validation. The offending record is skipped and logged.
	ErrMalformedRecord = errors.New("malformed learning record")

	// ErrInsufficientSimilarity indicates no records cleared the minimum
	// similarity threshold. Treated identically to ErrMissingData.
	ErrInsufficientSimilarity = errors.New("no sufficiently similar records")

	// ErrTrainingInProgress indicates a concurrent retraining conflict.
	// Surfaced to training callers as a retryable status.
	ErrTrainingInProgress = errors.New("training in progress")

	// ErrInvalidProfile indicates the profile has no symptoms, no goals,
	// and no demographic data. Score responds with a single default
	// low-confidence recommendation rather than failing.
	ErrInvalidProfile = errors.New("profile has no usable signals")
)
