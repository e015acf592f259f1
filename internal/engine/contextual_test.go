// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package engine

import (
	"math"
	"testing"
	"time"
)

func winterClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
	}
}

func TestSeasonOf(t *testing.T) {
	tests := []struct {
		month time.Month
		want  string
	}{
		{time.December, "winter"},
		{time.January, "winter"},
		{time.February, "winter"},
		{time.March, "spring"},
		{time.May, "spring"},
		{time.June, "summer"},
		{time.August, "summer"},
		{time.September, "autumn"},
		{time.November, "autumn"},
	}
	for _, tt := range tests {
		ts := time.Date(2026, tt.month, 10, 0, 0, 0, 0, time.UTC)
		if got := SeasonOf(ts); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.month, tt.want, got)
		}
	}
}

func TestContextualRelevance_AveragesOnlyMatchingTags(t *testing.T) {
	c := NewContextualCalculator(DefaultConfig().Contextual)
	c.SetClock(winterClock())

	// Senior female in winter: vitamin-d3 appears in the winter table (0.9)
	// and the senior table (0.7) but not in the female or diet tables. The
	// average runs over the two matching tags only.
	profile := &UserProfile{Age: 68, Gender: GenderFemale}

	got := c.Relevance("vitamin-d3", profile)
	want := (0.9 + 0.7) / 2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestContextualRelevance_NoMatchingTags(t *testing.T) {
	c := NewContextualCalculator(DefaultConfig().Contextual)
	c.SetClock(winterClock())

	profile := &UserProfile{Age: 40, Gender: GenderUnspecified}
	if got := c.Relevance("ashwagandha-extract", profile); got != 0 {
		t.Errorf("expected 0 for supplement absent from all tables, got %f", got)
	}
}

func TestContextualRelevance_VeganDiet(t *testing.T) {
	c := NewContextualCalculator(DefaultConfig().Contextual)
	// Summer: vitamin-b12 has no season entry, so only demographic and diet
	// tags can contribute.
	c.SetClock(func() time.Time {
		return time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	})

	profile := &UserProfile{
		Age:     25,
		Dietary: DietaryRestrictions{Vegan: true},
	}

	got := c.Relevance("vitamin-b12", profile)
	// young-adult table 0.6, vegan table 0.9.
	want := (0.6 + 0.9) / 2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestContextualRelevance_VeganPreferredOverVegetarian(t *testing.T) {
	profile := &UserProfile{Dietary: DietaryRestrictions{Vegan: true, Vegetarian: true}}
	if got := dietTag(profile); got != "vegan" {
		t.Errorf("expected vegan tag when both restrictions set, got %q", got)
	}
}

func TestContextualApply_AddsBoundedBoost(t *testing.T) {
	c := NewContextualCalculator(DefaultConfig().Contextual)
	c.SetClock(winterClock())

	profile := &UserProfile{Age: 68, Gender: GenderFemale}
	recs := []Recommendation{
		{SupplementID: "vitamin-d3", MatchScore: 60},
		{SupplementID: "ashwagandha-extract", MatchScore: 60},
	}

	c.Apply(profile, recs)

	// Relevance 0.8 over a 10-point cap adds 8 points.
	if math.Abs(recs[0].MatchScore-68) > 1e-9 {
		t.Errorf("vitamin-d3: expected 68, got %f", recs[0].MatchScore)
	}
	if len(recs[0].Adjustments) != 1 || recs[0].Adjustments[0].Source != AdjustmentContext {
		t.Errorf("expected one context adjustment on vitamin-d3")
	}

	// Zero relevance leaves the score and trail untouched.
	if recs[1].MatchScore != 60 || len(recs[1].Adjustments) != 0 {
		t.Errorf("ashwagandha: expected untouched, got %f with %d adjustments",
			recs[1].MatchScore, len(recs[1].Adjustments))
	}
}
