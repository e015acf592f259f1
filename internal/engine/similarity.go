// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package engine

import (
	"math"
	"sort"
)

// SimilarityEngine computes composite similarity between the active profile
// and historical learning records. The metric is a weighted sum of five
// independently normalized sub-scores, each in [0, 1].
type SimilarityEngine struct {
	cfg     SimilarityConfig
	weights SimilarityWeights
}

// NewSimilarityEngine creates a similarity engine from configuration.
func NewSimilarityEngine(cfg SimilarityConfig) *SimilarityEngine {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.MinSimilarity <= 0 {
		cfg.MinSimilarity = 0.3
	}
	if cfg.SymptomJaccardWeight <= 0 {
		cfg.SymptomJaccardWeight = 0.7
	}
	return &SimilarityEngine{
		cfg:     cfg,
		weights: cfg.Weights.Normalize(),
	}
}

// TopSimilar returns the most similar records above the minimum threshold,
// sorted descending and truncated to the configured K. An empty corpus
// yields an empty result, which sends the caller down the rule-based path.
func (s *SimilarityEngine) TopSimilar(profile *UserProfile, corpus []LearningRecord) []SimilarRecord {
	if len(corpus) == 0 {
		return nil
	}

	out := make([]SimilarRecord, 0, len(corpus))
	for i := range corpus {
		sim := s.Score(profile, &corpus[i].Profile)
		if sim < s.cfg.MinSimilarity {
			continue
		}
		out = append(out, SimilarRecord{Record: corpus[i], Similarity: sim})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if len(out) > s.cfg.TopK {
		out = out[:s.cfg.TopK]
	}
	return out
}

// Score computes the composite similarity between two profiles in [0, 1].
// Profiles with no symptoms and no goals score 0 against every candidate.
func (s *SimilarityEngine) Score(a, b *UserProfile) float64 {
	if !a.HasSignals() {
		return 0
	}

	score := s.weights.Symptoms*s.symptomSimilarity(a, b) +
		s.weights.Goals*goalSimilarity(a, b) +
		s.weights.Demographics*demographicSimilarity(a, b) +
		s.weights.Medications*medicationSimilarity(a, b) +
		s.weights.Lifestyle*lifestyleSimilarity(a, b)

	return clamp01(score)
}

// symptomSimilarity blends Jaccard overlap of symptom keys with a per-key
// severity closeness term. Severity distance is penalized linearly on the
// ordinal scale.
func (s *SimilarityEngine) symptomSimilarity(a, b *UserProfile) float64 {
	aKeys := a.ActiveSymptoms()
	bKeys := b.ActiveSymptoms()
	if len(aKeys) == 0 || len(bKeys) == 0 {
		return 0
	}

	jaccard, common := jaccardWithIntersection(aKeys, bKeys)

	var closeness float64
	if len(common) > 0 {
		var sum float64
		for _, k := range common {
			dist := math.Abs(float64(a.Symptoms[k].Ordinal() - b.Symptoms[k].Ordinal()))
			sum += 1 - dist/maxSeverityOrdinal
		}
		closeness = sum / float64(len(common))
	}

	jw := s.cfg.SymptomJaccardWeight
	return jw*jaccard + (1-jw)*closeness
}

// goalSimilarity is the Jaccard overlap of selected goal keys.
func goalSimilarity(a, b *UserProfile) float64 {
	j, _ := jaccardWithIntersection(a.ActiveGoals(), b.ActiveGoals())
	return j
}

// demographicSimilarity averages age-bucketed closeness with an exact-match
// gender indicator.
func demographicSimilarity(a, b *UserProfile) float64 {
	var age float64
	diff := a.Age - b.Age
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 5:
		age = 1.0
	case diff <= 10:
		age = 0.8
	case diff <= 20:
		age = 0.6
	default:
		age = 0.3
	}

	gender := 0.1
	if a.Gender == b.Gender {
		gender = 1.0
	}

	return (age + gender) / 2
}

// medicationSimilarity is the Jaccard overlap of normalized medication name
// sets. Two empty lists are neutral (0.5); exactly one empty list scores 0.
func medicationSimilarity(a, b *UserProfile) float64 {
	aMeds := normalizedMedicationSet(a.Medications)
	bMeds := normalizedMedicationSet(b.Medications)

	if len(aMeds) == 0 && len(bMeds) == 0 {
		return 0.5
	}
	if len(aMeds) == 0 || len(bMeds) == 0 {
		return 0
	}

	var inter, union int
	for m := range aMeds {
		if _, ok := bMeds[m]; ok {
			inter++
		}
	}
	union = len(aMeds) + len(bMeds) - inter
	return float64(inter) / float64(union)
}

// lifestyleSimilarity averages ordinal closeness for activity and stress
// with an exact-match diet-type indicator.
func lifestyleSimilarity(a, b *UserProfile) float64 {
	actDist := math.Abs(float64(a.Lifestyle.Activity.Ordinal() - b.Lifestyle.Activity.Ordinal()))
	act := 1 - actDist/3

	stressDist := math.Abs(float64(a.Lifestyle.Stress.Ordinal() - b.Lifestyle.Stress.Ordinal()))
	stress := 1 - stressDist/2

	diet := 0.0
	if a.Lifestyle.Diet == b.Lifestyle.Diet {
		diet = 1.0
	}

	return (act + stress + diet) / 3
}

// jaccardWithIntersection returns the Jaccard index of two sorted key sets
// and their intersection. Two empty sets score 0.
func jaccardWithIntersection(a, b []string) (float64, []string) {
	if len(a) == 0 && len(b) == 0 {
		return 0, nil
	}

	set := make(map[string]struct{}, len(a))
	for _, k := range a {
		set[k] = struct{}{}
	}

	var common []string
	for _, k := range b {
		if _, ok := set[k]; ok {
			common = append(common, k)
		}
	}

	union := len(a) + len(b) - len(common)
	if union == 0 {
		return 0, nil
	}
	return float64(len(common)) / float64(union), common
}

func normalizedMedicationSet(meds []string) map[string]struct{} {
	out := make(map[string]struct{}, len(meds))
	for _, m := range meds {
		n := normalizeMedication(m)
		if n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}
