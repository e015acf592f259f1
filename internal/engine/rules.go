// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package engine

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RuleAdjuster applies deterministic, clinically-motivated score boosts from
// immutable table data. It has no data dependency and is always available as
// the fallback scoring path.
type RuleAdjuster struct {
	cfg     RulesConfig
	primary map[string]struct{}
	logger  zerolog.Logger
}

// NewRuleAdjuster creates a rule adjuster from the configured boost tables.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRuleAdjuster(cfg RulesConfig, logger zerolog.Logger) *RuleAdjuster {
	primary := make(map[string]struct{}, len(cfg.PrimarySymptoms))
	for _, s := range cfg.PrimarySymptoms {
		primary[s] = struct{}{}
	}
	return &RuleAdjuster{
		cfg:     cfg,
		primary: primary,
		logger:  logger.With().Str("component", "rules").Logger(),
	}
}

// Apply returns a copy of the base list with additive rule boosts applied.
// Boosts are additive, never multiplicative, and every applied rule appends
// a human-readable note to the recommendation's explanation trail. A
// supplement ID appearing more than once in the base list is boosted at
// every occurrence.
func (ra *RuleAdjuster) Apply(profile *UserProfile, base []Recommendation) []Recommendation {
	out := make([]Recommendation, len(base))
	index := make(map[string][]*Recommendation, len(base))
	for i := range base {
		out[i] = base[i].Clone()
		id := out[i].SupplementID
		index[id] = append(index[id], &out[i])
	}

	applied := 0
	for _, symptom := range ra.PrimarySymptoms(profile) {
		for _, boost := range ra.cfg.SymptomBoosts[symptom] {
			for _, rec := range index[boost.SupplementID] {
				rec.Adjust(Adjustment{
					Source:     AdjustmentRule,
					Delta:      boost.Points,
					Confidence: 1.0,
					Note:       fmt.Sprintf("Boosted for reported %s symptom", symptom),
				})
				applied++
			}
		}
	}

	applied += ra.applyAgeBoosts(profile, index)
	applied += ra.applyGenderBoosts(profile, index)

	if applied > 0 {
		ra.logger.Debug().Int("boosts", applied).Msg("rule boosts applied")
	}
	return out
}

// PrimarySymptoms filters the profile's symptom set to the fixed priority
// subset, keeping only those reported as present without a level or at
// high/severe severity.
func (ra *RuleAdjuster) PrimarySymptoms(profile *UserProfile) []string {
	var out []string
	for _, symptom := range ra.cfg.PrimarySymptoms {
		sev, ok := profile.Symptoms[symptom]
		if !ok || !sev.Active() {
			continue
		}
		if sev == "" || sev == SeverityHigh || sev == SeveritySevere {
			out = append(out, symptom)
		}
	}
	return out
}

func (ra *RuleAdjuster) applyAgeBoosts(profile *UserProfile, index map[string][]*Recommendation) int {
	var boosts []RuleBoost
	var note string

	switch {
	case profile.Age > ra.cfg.SeniorAge:
		boosts = ra.cfg.SeniorBoosts
		note = fmt.Sprintf("Boosted for healthy aging support (age %d)", profile.Age)
	case profile.Age > 0 && profile.Age < ra.cfg.YoungAge:
		boosts = ra.cfg.YoungBoosts
		note = fmt.Sprintf("Boosted for energy and cognitive support (age %d)", profile.Age)
	default:
		return 0
	}

	applied := 0
	for _, boost := range boosts {
		for _, rec := range index[boost.SupplementID] {
			rec.Adjust(Adjustment{
				Source:     AdjustmentRule,
				Delta:      boost.Points,
				Confidence: 1.0,
				Note:       note,
			})
			applied++
		}
	}
	return applied
}

func (ra *RuleAdjuster) applyGenderBoosts(profile *UserProfile, index map[string][]*Recommendation) int {
	boosts, ok := ra.cfg.GenderBoosts[profile.Gender]
	if !ok {
		return 0
	}

	applied := 0
	for _, boost := range boosts {
		for _, rec := range index[boost.SupplementID] {
			rec.Adjust(Adjustment{
				Source:     AdjustmentRule,
				Delta:      boost.Points,
				Confidence: 1.0,
				Note:       fmt.Sprintf("Boosted for %s-specific nutritional needs", profile.Gender),
			})
			applied++
		}
	}
	return applied
}
