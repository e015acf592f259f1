// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package engine

import (
	"fmt"
	"time"
)

// ContextualCalculator computes season/demographic/diet-aware relevance
// boosts independent of learning data. Boosts apply additively after the
// hybrid blender and are never gated by data quality.
type ContextualCalculator struct {
	cfg ContextualConfig

	// now is injectable so season derivation is testable.
	now func() time.Time
}

// NewContextualCalculator creates a calculator over the static relevance
// tables.
func NewContextualCalculator(cfg ContextualConfig) *ContextualCalculator {
	if cfg.MaxBoostPoints <= 0 {
		cfg.MaxBoostPoints = 10
	}
	return &ContextualCalculator{cfg: cfg, now: time.Now}
}

// SetClock replaces the time source. Tests use this to pin the season.
func (c *ContextualCalculator) SetClock(now func() time.Time) {
	c.now = now
}

// Relevance returns the [0, 1] contextual relevance of a supplement for the
// profile: the average of the per-tag table entries across all active
// context tags that have an entry for the supplement. Tags without an entry
// are excluded from the average, not treated as zero.
func (c *ContextualCalculator) Relevance(supplementID string, profile *UserProfile) float64 {
	var sum float64
	var n int

	if table, ok := c.cfg.Season[SeasonOf(c.now())]; ok {
		if v, ok := table[supplementID]; ok {
			sum += v
			n++
		}
	}
	if table, ok := c.cfg.AgeBracket[AgeBracketOf(profile.Age)]; ok {
		if v, ok := table[supplementID]; ok {
			sum += v
			n++
		}
	}
	if table, ok := c.cfg.Gender[profile.Gender]; ok {
		if v, ok := table[supplementID]; ok {
			sum += v
			n++
		}
	}
	if tag := dietTag(profile); tag != "" {
		if table, ok := c.cfg.Diet[tag]; ok {
			if v, ok := table[supplementID]; ok {
				sum += v
				n++
			}
		}
	}

	if n == 0 {
		return 0
	}
	return clamp01(sum / float64(n))
}

// Apply adds the contextual boost to every recommendation that has one,
// converting relevance into score points via the configured maximum.
func (c *ContextualCalculator) Apply(profile *UserProfile, recs []Recommendation) {
	for i := range recs {
		rel := c.Relevance(recs[i].SupplementID, profile)
		if rel == 0 {
			continue
		}
		recs[i].Adjust(Adjustment{
			Source:     AdjustmentContext,
			Delta:      rel * c.cfg.MaxBoostPoints,
			Confidence: rel,
			Note:       fmt.Sprintf("Seasonal and demographic relevance (%s)", SeasonOf(c.now())),
		})
	}
}

// SeasonOf maps a timestamp to one of four fixed season buckets.
func SeasonOf(t time.Time) string {
	switch t.Month() {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "autumn"
	}
}

// dietTag returns the diet context tag for the profile, preferring the
// stricter restriction when both flags are set.
func dietTag(profile *UserProfile) string {
	switch {
	case profile.Dietary.Vegan || profile.Lifestyle.Diet == DietVegan:
		return "vegan"
	case profile.Dietary.Vegetarian || profile.Lifestyle.Diet == DietVegetarian:
		return "vegetarian"
	default:
		return ""
	}
}
