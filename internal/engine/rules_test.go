// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package engine

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func baseRecommendations() []Recommendation {
	return []Recommendation{
		{SupplementID: "ashwagandha-extract", MatchScore: 50, Priority: 1},
		{SupplementID: "magnesium-glycinate", MatchScore: 50, Priority: 2},
		{SupplementID: "l-theanine", MatchScore: 50, Priority: 3},
		{SupplementID: "iron-bisglycinate", MatchScore: 50, Priority: 4},
		{SupplementID: "coq10-ubiquinol", MatchScore: 50, Priority: 5},
	}
}

func newTestRules(t *testing.T) *RuleAdjuster {
	t.Helper()
	return NewRuleAdjuster(DefaultConfig().Rules, zerolog.Nop())
}

func TestRuleAdjuster_StressBoosts(t *testing.T) {
	ra := newTestRules(t)

	profile := &UserProfile{
		Age:      40,
		Symptoms: map[string]Severity{"stress": SeverityHigh},
	}

	got := ra.Apply(profile, baseRecommendations())

	byID := make(map[string]Recommendation, len(got))
	for _, r := range got {
		byID[r.SupplementID] = r
	}

	tests := []struct {
		id   string
		want float64
	}{
		{"ashwagandha-extract", 65},
		{"magnesium-glycinate", 62},
		{"l-theanine", 60},
		{"iron-bisglycinate", 50},
	}
	for _, tt := range tests {
		if byID[tt.id].MatchScore != tt.want {
			t.Errorf("%s: expected score %f, got %f", tt.id, tt.want, byID[tt.id].MatchScore)
		}
	}

	ashwagandha := byID["ashwagandha-extract"]
	if len(ashwagandha.Adjustments) != 1 {
		t.Fatalf("expected one adjustment, got %d", len(ashwagandha.Adjustments))
	}
	adj := ashwagandha.Adjustments[0]
	if adj.Source != AdjustmentRule {
		t.Errorf("expected rule source, got %s", adj.Source)
	}
	if !strings.Contains(adj.Note, "stress") {
		t.Errorf("expected explanation to name the symptom, got %q", adj.Note)
	}
}

func TestRuleAdjuster_DuplicateBaseEntriesAllBoosted(t *testing.T) {
	ra := newTestRules(t)

	profile := &UserProfile{
		Age:      40,
		Symptoms: map[string]Severity{"stress": SeverityHigh},
	}
	base := []Recommendation{
		{SupplementID: "ashwagandha-extract", MatchScore: 50, Priority: 1},
		{SupplementID: "ashwagandha-extract", MatchScore: 40, Priority: 2},
		{SupplementID: "l-theanine", MatchScore: 50, Priority: 3},
	}

	got := ra.Apply(profile, base)
	if len(got) != 3 {
		t.Fatalf("expected all entries preserved, got %d", len(got))
	}

	if got[0].MatchScore != 65 {
		t.Errorf("first ashwagandha occurrence: expected 65, got %f", got[0].MatchScore)
	}
	if got[1].MatchScore != 55 {
		t.Errorf("second ashwagandha occurrence: expected 55, got %f", got[1].MatchScore)
	}
	for i := 0; i < 2; i++ {
		if len(got[i].Adjustments) != 1 {
			t.Errorf("occurrence %d: expected one adjustment, got %d", i, len(got[i].Adjustments))
		}
	}
}

func TestRuleAdjuster_SeverityGate(t *testing.T) {
	ra := newTestRules(t)

	tests := []struct {
		name     string
		severity Severity
		boosted  bool
	}{
		{"unleveled symptom applies", "", true},
		{"high applies", SeverityHigh, true},
		{"severe applies", SeveritySevere, true},
		{"moderate does not apply", SeverityModerate, false},
		{"low does not apply", SeverityLow, false},
		{"none does not apply", SeverityNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &UserProfile{
				Age:      40,
				Symptoms: map[string]Severity{"stress": tt.severity},
			}
			got := ra.Apply(profile, baseRecommendations())

			boosted := false
			for _, r := range got {
				if r.SupplementID == "ashwagandha-extract" && r.MatchScore > 50 {
					boosted = true
				}
			}
			if boosted != tt.boosted {
				t.Errorf("severity %q: boosted=%v, want %v", tt.severity, boosted, tt.boosted)
			}
		})
	}
}

func TestRuleAdjuster_AgeBoosts(t *testing.T) {
	ra := newTestRules(t)

	senior := &UserProfile{Age: 65, Symptoms: map[string]Severity{"stress": SeverityHigh}}
	got := ra.Apply(senior, baseRecommendations())
	for _, r := range got {
		if r.SupplementID == "coq10-ubiquinol" && r.MatchScore != 62 {
			t.Errorf("senior coq10 boost: expected 62, got %f", r.MatchScore)
		}
	}

	// Age 50 is the boundary; senior boosts require strictly older.
	boundary := &UserProfile{Age: 50, Symptoms: map[string]Severity{"stress": SeverityHigh}}
	got = ra.Apply(boundary, baseRecommendations())
	for _, r := range got {
		if r.SupplementID == "coq10-ubiquinol" && r.MatchScore != 50 {
			t.Errorf("age 50 must not receive senior boosts, got %f", r.MatchScore)
		}
	}
}

func TestRuleAdjuster_GenderBoosts(t *testing.T) {
	ra := newTestRules(t)

	profile := &UserProfile{
		Age:      40,
		Gender:   GenderFemale,
		Symptoms: map[string]Severity{"fatigue": SeverityHigh},
	}
	got := ra.Apply(profile, baseRecommendations())

	for _, r := range got {
		if r.SupplementID != "iron-bisglycinate" {
			continue
		}
		// 12 from the fatigue table plus 12 from the female table.
		if r.MatchScore != 74 {
			t.Errorf("expected stacked boosts to reach 74, got %f", r.MatchScore)
		}
		if len(r.Adjustments) != 2 {
			t.Errorf("expected two adjustment entries, got %d", len(r.Adjustments))
		}
	}
}

func TestRuleAdjuster_ClampsAtHundred(t *testing.T) {
	ra := newTestRules(t)

	profile := &UserProfile{
		Age:    40,
		Gender: GenderFemale,
		Symptoms: map[string]Severity{
			"stress":     SeverityHigh,
			"poor-sleep": SeverityHigh,
			"headaches":  SeverityHigh,
		},
	}
	base := []Recommendation{{SupplementID: "magnesium-glycinate", MatchScore: 95}}

	got := ra.Apply(profile, base)
	if got[0].MatchScore != 100 {
		t.Errorf("expected clamp at 100, got %f", got[0].MatchScore)
	}
	// All three boosts are still recorded in the explanation trail.
	if len(got[0].Adjustments) != 3 {
		t.Errorf("expected 3 adjustments recorded, got %d", len(got[0].Adjustments))
	}
}

func TestRuleAdjuster_DoesNotMutateBase(t *testing.T) {
	ra := newTestRules(t)

	base := baseRecommendations()
	profile := &UserProfile{Age: 40, Symptoms: map[string]Severity{"stress": SeverityHigh}}

	_ = ra.Apply(profile, base)

	for _, r := range base {
		if r.MatchScore != 50 {
			t.Errorf("base list mutated: %s is %f", r.SupplementID, r.MatchScore)
		}
		if len(r.Adjustments) != 0 {
			t.Errorf("base list gained adjustments: %s", r.SupplementID)
		}
	}
}

func TestRuleAdjuster_Idempotent(t *testing.T) {
	ra := newTestRules(t)
	profile := stressProfile()

	first := ra.Apply(profile, baseRecommendations())
	second := ra.Apply(profile, baseRecommendations())

	if len(first) != len(second) {
		t.Fatalf("result lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].MatchScore != second[i].MatchScore {
			t.Errorf("%s: scores differ across identical calls: %f vs %f",
				first[i].SupplementID, first[i].MatchScore, second[i].MatchScore)
		}
	}
}
