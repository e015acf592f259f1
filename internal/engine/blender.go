// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// HybridBlender mixes rule-based and data-derived score adjustments in
// proportion to the decision-quality score. The blending state is chosen
// per request and never persisted.
type HybridBlender struct {
	cfg    BlenderConfig
	rules  *RuleAdjuster
	logger zerolog.Logger
}

// NewHybridBlender creates a blender over the given rule adjuster.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHybridBlender(cfg BlenderConfig, rules *RuleAdjuster, logger zerolog.Logger) *HybridBlender {
	return &HybridBlender{
		cfg:    cfg,
		rules:  rules,
		logger: logger.With().Str("component", "blender").Logger(),
	}
}

// BlendResult is the outcome of a blending pass.
type BlendResult struct {
	// Recommendations is the adjusted list, sorted descending by score
	// with ties broken by the original priority field.
	Recommendations []Recommendation

	// Strategy is the state the blender selected.
	Strategy Strategy

	// Gap is non-nil when the decision was made without sufficient data.
	Gap *GapEntry
}

// Blend applies the selected strategy to the base list. Rule boosts always
// apply first as a floor; data-derived deltas are layered on top when
// decision quality permits. Blending is a pure function of its inputs, so
// repeated calls over the same snapshot yield identical output.
func (b *HybridBlender) Blend(profile *UserProfile, base []Recommendation, similar []SimilarRecord, quality float64) BlendResult {
	recs := b.rules.Apply(profile, base)

	result := BlendResult{Strategy: b.selectStrategy(similar, quality)}

	switch result.Strategy {
	case StrategyRuleBased:
		if reason := b.gapReason(similar, quality); reason != "" {
			result.Gap = &GapEntry{
				ProfileFingerprint: profile.Fingerprint(),
				Reason:             reason,
				Quality:            quality,
				CreatedAt:          time.Now(),
			}
		}
	case StrategyHybrid, StrategyDataRich:
		dataWeight := math.Min(b.cfg.MaxDataWeight, quality*b.cfg.DataWeightFactor)
		b.applyDataDeltas(recs, similar, quality, dataWeight, result.Strategy)
	}

	sortRecommendations(recs)
	result.Recommendations = recs

	b.logger.Debug().
		Str("strategy", string(result.Strategy)).
		Float64("decision_quality", quality).
		Int("similar_records", len(similar)).
		Msg("blend complete")

	return result
}

// selectStrategy picks the blending state from decision quality and the
// size of the similar-record set.
func (b *HybridBlender) selectStrategy(similar []SimilarRecord, quality float64) Strategy {
	if quality < b.cfg.MinDecisionQuality || len(similar) < b.cfg.MinSimilarRecords {
		return StrategyRuleBased
	}
	if quality >= b.cfg.RichDecisionQuality {
		return StrategyDataRich
	}
	return StrategyHybrid
}

func (b *HybridBlender) gapReason(similar []SimilarRecord, quality float64) string {
	switch {
	case len(similar) == 0:
		return "no similar records found"
	case len(similar) < b.cfg.MinSimilarRecords:
		return fmt.Sprintf("only %d similar records (need %d)", len(similar), b.cfg.MinSimilarRecords)
	case quality < b.cfg.MinDecisionQuality:
		return fmt.Sprintf("decision quality %.2f below %.2f", quality, b.cfg.MinDecisionQuality)
	default:
		return ""
	}
}

// dataDelta aggregates contributing feedback for one supplement.
type dataDelta struct {
	weightedSum float64
	weightSum   float64
	samples     int
}

// applyDataDeltas computes and applies the similarity-weighted feedback
// delta per supplement. A supplement needs at least MinFeedbackPoints
// contributing entries or no adjustment is applied for it.
func (b *HybridBlender) applyDataDeltas(recs []Recommendation, similar []SimilarRecord, quality, dataWeight float64, strategy Strategy) {
	deltas := make(map[string]*dataDelta)

	for i := range similar {
		sim := similar[i].Similarity
		for _, fb := range similar[i].Record.Feedback {
			d := deltas[fb.SupplementID]
			if d == nil {
				d = &dataDelta{}
				deltas[fb.SupplementID] = d
			}
			d.weightedSum += sim * float64(fb.Rating-3)
			d.weightSum += sim
			d.samples++
		}
	}

	for i := range recs {
		d, ok := deltas[recs[i].SupplementID]
		if !ok || d.samples < b.cfg.MinFeedbackPoints || d.weightSum == 0 {
			continue
		}

		avg := d.weightedSum / d.weightSum
		delta := avg * b.cfg.RatingMultiplier * dataWeight

		confidence := clamp01(quality * (1 - 1/float64(d.samples+1)) * 2)
		if strategy == StrategyHybrid && confidence > b.cfg.HybridConfidenceCap {
			confidence = b.cfg.HybridConfidenceCap
		}

		direction := "positive"
		if delta < 0 {
			direction = "negative"
		}

		recs[i].Adjust(Adjustment{
			Source:     AdjustmentData,
			Delta:      delta,
			Confidence: confidence,
			Note: fmt.Sprintf("Outcome data from %d similar users was %s for this supplement",
				d.samples, direction),
			SampleSize: d.samples,
			Quality:    quality,
		})
	}
}

// sortRecommendations orders by descending adjusted score; ties go to the
// lower (more important) priority value.
func sortRecommendations(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].MatchScore != recs[j].MatchScore {
			return recs[i].MatchScore > recs[j].MatchScore
		}
		return recs[i].Priority < recs[j].Priority
	})
}
