// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package engine

import (
	"math"
	"sort"
	"strings"
	"time"
)

// QualityEvaluator scores the reliability of the learning corpus, both
// overall (the public DataQualityReport) and per scoring decision (the
// internal decision-quality measure that gates the hybrid blender).
type QualityEvaluator struct {
	cfg QualityConfig
	now func() time.Time
}

// NewQualityEvaluator creates an evaluator from configuration.
func NewQualityEvaluator(cfg QualityConfig) *QualityEvaluator {
	if cfg.VolumeTarget <= 0 {
		cfg.VolumeTarget = 1000
	}
	if cfg.RecencyHalfLifeDays <= 0 {
		cfg.RecencyHalfLifeDays = 90
	}
	if cfg.SymptomVarietyCap <= 0 {
		cfg.SymptomVarietyCap = 10
	}
	if cfg.GoalVarietyCap <= 0 {
		cfg.GoalVarietyCap = 5
	}
	return &QualityEvaluator{cfg: cfg, now: time.Now}
}

// SetClock replaces the time source used for recency discounting.
func (q *QualityEvaluator) SetClock(now func() time.Time) {
	q.now = now
}

// Report computes the public data-quality report over the corpus. The
// overall score is the unweighted average of feedback coverage, profile
// diversity, and data volume, each on a 0-100 scale. An empty corpus
// scores 0 everywhere.
func (q *QualityEvaluator) Report(corpus []LearningRecord) DataQualityReport {
	report := DataQualityReport{
		RecordCount: len(corpus),
		GeneratedAt: q.now(),
	}
	if len(corpus) == 0 {
		return report
	}

	report.FeedbackCoverage = q.feedbackCoverage(corpus)
	report.ProfileDiversity = q.profileDiversity(corpus)
	report.DataVolume = q.dataVolume(len(corpus))
	report.Overall = (report.FeedbackCoverage + report.ProfileDiversity + report.DataVolume) / 3
	report.PerRecommendation = q.perRecommendation(corpus)

	return report
}

// feedbackCoverage is the percentage of records with at least one feedback
// entry.
func (q *QualityEvaluator) feedbackCoverage(corpus []LearningRecord) float64 {
	withFeedback := 0
	for i := range corpus {
		if corpus[i].HasFeedback() {
			withFeedback++
		}
	}
	return float64(withFeedback) / float64(len(corpus)) * 100
}

// profileDiversity composites unique gender count, age-bucket count,
// symptom-set variety, and goal-set variety with documented weights
// 0.2/0.3/0.3/0.2.
func (q *QualityEvaluator) profileDiversity(corpus []LearningRecord) float64 {
	genders := make(map[Gender]struct{})
	brackets := make(map[AgeBracket]struct{})
	symptomSets := make(map[string]struct{})
	goalSets := make(map[string]struct{})

	for i := range corpus {
		p := &corpus[i].Profile
		genders[p.Gender] = struct{}{}
		brackets[AgeBracketOf(p.Age)] = struct{}{}
		symptomSets[strings.Join(p.ActiveSymptoms(), ",")] = struct{}{}
		goalSets[strings.Join(p.ActiveGoals(), ",")] = struct{}{}
	}

	genderTerm := math.Min(1, float64(len(genders))/2)
	bracketTerm := math.Min(1, float64(len(brackets))/3)
	symptomTerm := math.Min(1, float64(len(symptomSets))/float64(q.cfg.SymptomVarietyCap))
	goalTerm := math.Min(1, float64(len(goalSets))/float64(q.cfg.GoalVarietyCap))

	return (0.2*genderTerm + 0.3*bracketTerm + 0.3*symptomTerm + 0.2*goalTerm) * 100
}

// dataVolume scales corpus size against the volume target.
func (q *QualityEvaluator) dataVolume(n int) float64 {
	return math.Min(100, float64(n)/float64(q.cfg.VolumeTarget)*100)
}

// perRecommendation computes feedback-count over occurrence-count per
// supplement. Supplements with zero occurrences are omitted.
func (q *QualityEvaluator) perRecommendation(corpus []LearningRecord) []RecommendationQuality {
	occurrences := make(map[string]int)
	feedback := make(map[string]int)

	for i := range corpus {
		for _, shown := range corpus[i].Shown {
			occurrences[shown.SupplementID]++
		}
		for _, fb := range corpus[i].Feedback {
			feedback[fb.SupplementID]++
		}
	}

	out := make([]RecommendationQuality, 0, len(occurrences))
	for id, occ := range occurrences {
		quality := float64(feedback[id]) / float64(occ) * 100
		if quality > 100 {
			quality = 100
		}
		out = append(out, RecommendationQuality{
			SupplementID: id,
			Quality:      quality,
			SampleSize:   occ,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Quality != out[j].Quality {
			return out[i].Quality > out[j].Quality
		}
		return out[i].SupplementID < out[j].SupplementID
	})
	return out
}

// DecisionQuality estimates, on a [0, 1] scale, how reliable the retrieved
// similar-record set is for the current scoring decision. It blends the
// average similarity of the set, the fraction of the set carrying feedback,
// and an exponential recency discount by the set's average age in days.
// This internal measure gates the hybrid blender and is not part of the
// public report.
func (q *QualityEvaluator) DecisionQuality(similar []SimilarRecord) float64 {
	if len(similar) == 0 {
		return 0
	}

	var simSum, ageSum float64
	withFeedback := 0
	now := q.now()

	for i := range similar {
		simSum += similar[i].Similarity
		ageSum += now.Sub(similar[i].Record.CreatedAt).Hours() / 24
		if similar[i].Record.HasFeedback() {
			withFeedback++
		}
	}

	avgSim := simSum / float64(len(similar))
	coverage := float64(withFeedback) / float64(len(similar))

	avgAgeDays := ageSum / float64(len(similar))
	if avgAgeDays < 0 {
		avgAgeDays = 0
	}
	recency := math.Exp(-avgAgeDays * math.Ln2 / q.cfg.RecencyHalfLifeDays)

	return clamp01(0.4*avgSim + 0.3*coverage + 0.3*recency)
}
