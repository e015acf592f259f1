// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

// Package engine implements the hybrid supplement recommendation engine.
//
// # Architecture
//
// The engine layers several scoring components over a base recommendation
// set supplied by the caller:
//
//   - Similarity Matching: multi-factor profile similarity over the
//     historical learning corpus (symptoms, goals, demographics,
//     medications, lifestyle)
//   - Rule-Based Adjustment: curated symptom, age, and gender boost tables
//     that work with zero historical data
//   - Hybrid Blending: data-driven deltas blended over the rule output,
//     gated by decision quality so sparse or low-quality data can never
//     dominate curated rules
//   - Contextual Relevance: season, age bracket, gender, and diet boosts
//     applied after blending
//
// # Design Principles
//
//   - Deterministic: the simulated training walk uses a seeded RNG
//   - Recoverable: empty corpora, malformed records, and low-similarity
//     requests all degrade to the rule-based path, never to an error
//   - Bounded: every adjusted score is clamped to [0, 100] at the moment
//     of adjustment
//   - Auditable: every adjustment carries its source, delta, and a
//     human-readable note; rule-only decisions are logged as learning gaps
//   - Observable: scoring latency, strategy distribution, feedback intake,
//     and training lifecycle are exported as Prometheus metrics
//
// # Model Lifecycle
//
// The versioned model state is an aggregate over the corpus, not a learned
// parameter set. Incremental runs fire after every batch of new learning
// records and bump the patch version; full retrains bump the minor
// version, advance the epoch counter, and decay the learning rate.
// Concurrent training requests are rejected, not queued.
//
// # Usage
//
//	cfg := engine.DefaultConfig()
//	eng, err := engine.New(cfg, store, catalog, logger)
//	if err != nil {
//		return err
//	}
//	result, err := eng.Score(ctx, profile, baseRecommendations)
package engine
