// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package engine

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestBlender(t *testing.T) *HybridBlender {
	t.Helper()
	cfg := DefaultConfig()
	rules := NewRuleAdjuster(cfg.Rules, zerolog.Nop())
	return NewHybridBlender(cfg.Blender, rules, zerolog.Nop())
}

// similarWithRatings builds n similar records whose feedback all rates the
// given supplement.
func similarWithRatings(n int, supplementID string, rating int, sim float64) []SimilarRecord {
	out := make([]SimilarRecord, n)
	for i := range out {
		out[i] = SimilarRecord{
			Record: LearningRecord{
				ID:        fmt.Sprintf("r%d", i),
				CreatedAt: time.Now(),
				Feedback: []FeedbackEntry{
					{SupplementID: supplementID, Rating: rating},
				},
			},
			Similarity: sim,
		}
	}
	return out
}

func TestBlender_StrategySelection(t *testing.T) {
	b := newTestBlender(t)

	tests := []struct {
		name    string
		similar int
		quality float64
		want    Strategy
	}{
		{"no data", 0, 0, StrategyRuleBased},
		{"low quality", 5, 0.2, StrategyRuleBased},
		{"too few records", 2, 0.5, StrategyRuleBased},
		{"hybrid band", 5, 0.5, StrategyHybrid},
		{"hybrid lower bound", 3, 0.3, StrategyHybrid},
		{"data rich", 5, 0.7, StrategyDataRich},
		{"data rich high", 5, 0.95, StrategyDataRich},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			similar := similarWithRatings(tt.similar, "magnesium-glycinate", 5, 0.8)
			if got := b.selectStrategy(similar, tt.quality); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestBlender_RuleBasedRecordsGap(t *testing.T) {
	b := newTestBlender(t)
	profile := stressProfile()

	result := b.Blend(profile, baseRecommendations(), nil, 0)
	if result.Strategy != StrategyRuleBased {
		t.Fatalf("expected rule_based strategy, got %s", result.Strategy)
	}
	if result.Gap == nil {
		t.Fatal("expected a gap entry for a no-data decision")
	}
	if result.Gap.Reason != "no similar records found" {
		t.Errorf("unexpected gap reason %q", result.Gap.Reason)
	}
	if result.Gap.ProfileFingerprint != profile.Fingerprint() {
		t.Errorf("gap entry does not carry the profile fingerprint")
	}
}

func TestBlender_DataDeltaMagnitude(t *testing.T) {
	b := newTestBlender(t)

	// Profile without rule matches keeps the rule layer silent so the data
	// delta is observable in isolation.
	profile := &UserProfile{Age: 40, Goals: map[string]bool{"energy": true}}
	base := []Recommendation{{SupplementID: "magnesium-glycinate", MatchScore: 50}}

	quality := 0.5
	similar := similarWithRatings(4, "magnesium-glycinate", 5, 0.8)

	result := b.Blend(profile, base, similar, quality)
	if result.Strategy != StrategyHybrid {
		t.Fatalf("expected hybrid strategy, got %s", result.Strategy)
	}

	// All ratings are 5, so the weighted average of (rating-3) is 2.
	// dataWeight = min(0.6, 0.5*0.8) = 0.4; delta = 2 * 4.0 * 0.4 = 3.2.
	got := result.Recommendations[0].MatchScore
	if math.Abs(got-53.2) > 1e-9 {
		t.Errorf("expected score 53.2, got %f", got)
	}

	adj := result.Recommendations[0].Adjustments
	if len(adj) != 1 || adj[0].Source != AdjustmentData {
		t.Fatalf("expected one data adjustment, got %+v", adj)
	}
	if adj[0].SampleSize != 4 {
		t.Errorf("expected sample size 4, got %d", adj[0].SampleSize)
	}
}

func TestBlender_NegativeFeedbackLowersScore(t *testing.T) {
	b := newTestBlender(t)

	profile := &UserProfile{Age: 40, Goals: map[string]bool{"energy": true}}
	base := []Recommendation{{SupplementID: "melatonin", MatchScore: 60}}

	similar := similarWithRatings(4, "melatonin", 1, 0.8)
	result := b.Blend(profile, base, similar, 0.5)

	if got := result.Recommendations[0].MatchScore; got >= 60 {
		t.Errorf("expected poor ratings to lower the score, got %f", got)
	}
	note := result.Recommendations[0].Adjustments[0].Note
	if note != "Outcome data from 4 similar users was negative for this supplement" {
		t.Errorf("unexpected explanation %q", note)
	}
}

func TestBlender_RequiresMinimumFeedbackPoints(t *testing.T) {
	b := newTestBlender(t)

	profile := &UserProfile{Age: 40, Goals: map[string]bool{"energy": true}}
	base := []Recommendation{{SupplementID: "magnesium-glycinate", MatchScore: 50}}

	// Three similar records, but only one carries feedback for the
	// supplement; below the two-point minimum.
	similar := similarWithRatings(3, "magnesium-glycinate", 5, 0.8)
	similar[1].Record.Feedback = nil
	similar[2].Record.Feedback = nil

	result := b.Blend(profile, base, similar, 0.5)
	if got := result.Recommendations[0].MatchScore; got != 50 {
		t.Errorf("expected no adjustment below the feedback minimum, got %f", got)
	}
}

func TestBlender_HybridConfidenceCap(t *testing.T) {
	b := newTestBlender(t)

	profile := &UserProfile{Age: 40, Goals: map[string]bool{"energy": true}}
	base := []Recommendation{{SupplementID: "magnesium-glycinate", MatchScore: 50}}

	// Many samples at mid quality would push raw confidence past the cap.
	similar := similarWithRatings(5, "magnesium-glycinate", 5, 0.9)
	result := b.Blend(profile, base, similar, 0.69)

	adj := result.Recommendations[0].Adjustments[0]
	if adj.Confidence > 0.6 {
		t.Errorf("hybrid confidence must be capped at 0.6, got %f", adj.Confidence)
	}

	// The same set at data-rich quality is not capped.
	result = b.Blend(profile, base, similar, 0.9)
	adj = result.Recommendations[0].Adjustments[0]
	if adj.Confidence <= 0.6 {
		t.Errorf("data-rich confidence should exceed the hybrid cap, got %f", adj.Confidence)
	}
}

func TestBlender_DataCannotDominateRules(t *testing.T) {
	b := newTestBlender(t)

	profile := &UserProfile{
		Age:      40,
		Symptoms: map[string]Severity{"stress": SeverityHigh},
	}
	base := []Recommendation{
		{SupplementID: "ashwagandha-extract", MatchScore: 50},
		{SupplementID: "melatonin", MatchScore: 50},
	}

	// Perfect ratings for melatonin at maximum data weight add at most
	// 2 * 4.0 * 0.6 = 4.8 points, below the 15-point stress rule boost.
	similar := similarWithRatings(5, "melatonin", 5, 0.95)
	result := b.Blend(profile, base, similar, 0.95)

	if result.Recommendations[0].SupplementID != "ashwagandha-extract" {
		t.Errorf("expected the rule-boosted supplement to stay on top, got %s",
			result.Recommendations[0].SupplementID)
	}
}

func TestBlender_SortsByScoreThenPriority(t *testing.T) {
	b := newTestBlender(t)

	profile := &UserProfile{Age: 40, Goals: map[string]bool{"energy": true}}
	base := []Recommendation{
		{SupplementID: "b", MatchScore: 50, Priority: 2},
		{SupplementID: "a", MatchScore: 50, Priority: 1},
		{SupplementID: "c", MatchScore: 70, Priority: 3},
	}

	result := b.Blend(profile, base, nil, 0)

	wantOrder := []string{"c", "a", "b"}
	for i, want := range wantOrder {
		if result.Recommendations[i].SupplementID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, result.Recommendations[i].SupplementID)
		}
	}
}

func TestBlender_Deterministic(t *testing.T) {
	b := newTestBlender(t)

	profile := stressProfile()
	similar := similarWithRatings(4, "magnesium-glycinate", 4, 0.8)

	first := b.Blend(profile, baseRecommendations(), similar, 0.5)
	second := b.Blend(profile, baseRecommendations(), similar, 0.5)

	if len(first.Recommendations) != len(second.Recommendations) {
		t.Fatalf("result lengths differ")
	}
	for i := range first.Recommendations {
		f, s := first.Recommendations[i], second.Recommendations[i]
		if f.SupplementID != s.SupplementID || f.MatchScore != s.MatchScore {
			t.Errorf("position %d differs across identical calls: %s=%f vs %s=%f",
				i, f.SupplementID, f.MatchScore, s.SupplementID, s.MatchScore)
		}
	}
}
