// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package engine

import (
	"fmt"
	"time"
)

// Config contains all tunable parameters of the scoring engine. Rule boost
// tables and contextual relevance tables are heuristic tuning values with no
// stated derivation, so they live here as configuration data rather than as
// literals inside engine logic.
type Config struct {
	// Similarity contains multi-factor similarity parameters.
	Similarity SimilarityConfig `json:"similarity"`

	// Rules contains the deterministic boost tables.
	Rules RulesConfig `json:"rules"`

	// Contextual contains the season/demographic relevance tables.
	Contextual ContextualConfig `json:"contextual"`

	// Quality contains data-quality evaluation parameters.
	Quality QualityConfig `json:"quality"`

	// Blender contains hybrid blending thresholds.
	Blender BlenderConfig `json:"blender"`

	// Training contains model lifecycle parameters.
	Training TrainingConfig `json:"training"`

	// Retention contains corpus retention caps.
	Retention RetentionConfig `json:"retention"`

	// Fallback configures the default recommendation for empty profiles.
	Fallback FallbackConfig `json:"fallback"`

	// Seed is the random seed for the training-time accuracy walk.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`
}

// SimilarityConfig contains multi-factor similarity parameters.
type SimilarityConfig struct {
	// Weights are the relative contributions of the five sub-scores.
	Weights SimilarityWeights `json:"weights"`

	// TopK is how many similar records to retrieve.
	// Default: 5.
	TopK int `json:"top_k"`

	// MinSimilarity excludes records below this composite score.
	// Default: 0.3.
	MinSimilarity float64 `json:"min_similarity"`

	// SymptomJaccardWeight blends key overlap against severity closeness
	// inside the symptom sub-score. Default: 0.7.
	SymptomJaccardWeight float64 `json:"symptom_jaccard_weight"`
}

// SimilarityWeights are the relative contributions of the five sub-scores.
// They are normalized at runtime, so they do not need to sum to 1.0.
type SimilarityWeights struct {
	// Symptoms is the weight of symptom overlap and severity closeness.
	// Default: 0.40.
	Symptoms float64 `json:"symptoms"`

	// Goals is the weight of goal overlap. Default: 0.25.
	Goals float64 `json:"goals"`

	// Demographics is the weight of age/gender closeness. Default: 0.15.
	Demographics float64 `json:"demographics"`

	// Medications is the weight of medication overlap. Default: 0.10.
	Medications float64 `json:"medications"`

	// Lifestyle is the weight of lifestyle closeness. Default: 0.10.
	Lifestyle float64 `json:"lifestyle"`
}

// Normalize returns a copy with weights scaled to sum to 1.0.
func (w SimilarityWeights) Normalize() SimilarityWeights {
	sum := w.Symptoms + w.Goals + w.Demographics + w.Medications + w.Lifestyle
	if sum == 0 {
		const equal = 1.0 / 5.0
		return SimilarityWeights{
			Symptoms: equal, Goals: equal, Demographics: equal,
			Medications: equal, Lifestyle: equal,
		}
	}
	return SimilarityWeights{
		Symptoms:     w.Symptoms / sum,
		Goals:        w.Goals / sum,
		Demographics: w.Demographics / sum,
		Medications:  w.Medications / sum,
		Lifestyle:    w.Lifestyle / sum,
	}
}

// RuleBoost is one table-driven additive boost.
type RuleBoost struct {
	// SupplementID is the boosted catalog id.
	SupplementID string `json:"supplement_id"`

	// Points is the additive score boost (0-100 scale).
	Points float64 `json:"points"`
}

// RulesConfig contains the deterministic boost tables.
type RulesConfig struct {
	// PrimarySymptoms is the fixed priority subset of symptom keys that
	// can drive symptom boosts. Only symptoms from this set reported as
	// present/high/severe are treated as primary.
	PrimarySymptoms []string `json:"primary_symptoms"`

	// SymptomBoosts maps a primary symptom key to its ranked boost set.
	SymptomBoosts map[string][]RuleBoost `json:"symptom_boosts"`

	// SeniorAge is the age above which senior boosts apply. Default: 50.
	SeniorAge int `json:"senior_age"`

	// SeniorBoosts apply to profiles older than SeniorAge.
	SeniorBoosts []RuleBoost `json:"senior_boosts"`

	// YoungAge is the age below which young-adult boosts apply. Default: 30.
	YoungAge int `json:"young_age"`

	// YoungBoosts apply to profiles younger than YoungAge.
	YoungBoosts []RuleBoost `json:"young_boosts"`

	// GenderBoosts maps a gender to its boost set.
	GenderBoosts map[Gender][]RuleBoost `json:"gender_boosts"`
}

// ContextualConfig contains the static relevance tables. Each table maps a
// context tag value to per-supplement relevance scores in [0, 1]. Tags with
// no entry for a supplement are excluded from the average, not treated as
// zero.
type ContextualConfig struct {
	// Season maps season name -> supplement id -> relevance.
	Season map[string]map[string]float64 `json:"season"`

	// AgeBracket maps bracket -> supplement id -> relevance.
	AgeBracket map[AgeBracket]map[string]float64 `json:"age_bracket"`

	// Gender maps gender -> supplement id -> relevance.
	Gender map[Gender]map[string]float64 `json:"gender"`

	// Diet maps diet tag ("vegan"/"vegetarian") -> supplement id -> relevance.
	Diet map[string]map[string]float64 `json:"diet"`

	// MaxBoostPoints converts the [0,1] relevance average into score
	// points. Default: 10.
	MaxBoostPoints float64 `json:"max_boost_points"`
}

// QualityConfig contains data-quality evaluation parameters.
type QualityConfig struct {
	// VolumeTarget is the corpus size that earns a full volume score.
	// Default: 1000.
	VolumeTarget int `json:"volume_target"`

	// RecencyHalfLifeDays controls the exponential recency discount used
	// by decision quality. Default: 90.
	RecencyHalfLifeDays float64 `json:"recency_half_life_days"`

	// SymptomVarietyCap caps the unique-symptom-set diversity term.
	// Default: 10.
	SymptomVarietyCap int `json:"symptom_variety_cap"`

	// GoalVarietyCap caps the unique-goal-set diversity term. Default: 5.
	GoalVarietyCap int `json:"goal_variety_cap"`
}

// BlenderConfig contains hybrid blending thresholds.
type BlenderConfig struct {
	// MinDecisionQuality is the floor below which only rules apply.
	// Default: 0.3.
	MinDecisionQuality float64 `json:"min_decision_quality"`

	// RichDecisionQuality is the threshold for the data-rich state.
	// Default: 0.7.
	RichDecisionQuality float64 `json:"rich_decision_quality"`

	// MinSimilarRecords is the minimum similar-record count for any
	// data-driven adjustment. Default: 3.
	MinSimilarRecords int `json:"min_similar_records"`

	// MaxDataWeight is the ceiling on the data-derived weight. Default: 0.6.
	MaxDataWeight float64 `json:"max_data_weight"`

	// DataWeightFactor scales decision quality into the data weight.
	// Default: 0.8.
	DataWeightFactor float64 `json:"data_weight_factor"`

	// RatingMultiplier converts the centered rating average into score
	// points. Default: 4.0.
	RatingMultiplier float64 `json:"rating_multiplier"`

	// MinFeedbackPoints is the minimum contributing feedback entries per
	// supplement before a data delta applies. Default: 2.
	MinFeedbackPoints int `json:"min_feedback_points"`

	// HybridConfidenceCap bounds adjustment confidence in the hybrid
	// state. Default: 0.6.
	HybridConfidenceCap float64 `json:"hybrid_confidence_cap"`
}

// TrainingConfig contains model lifecycle parameters.
type TrainingConfig struct {
	// BatchSize is the new-record increment that triggers an incremental
	// training run. Default: 20.
	BatchSize int `json:"batch_size"`

	// FullRetrainInterval is how often the scheduler requests a full
	// retrain. Default: 24h.
	FullRetrainInterval time.Duration `json:"full_retrain_interval"`

	// MaxAccuracy is the ceiling of the accuracy random walk. Default: 0.98.
	MaxAccuracy float64 `json:"max_accuracy"`

	// AccuracyJitter bounds the per-run accuracy delta. Default: 0.03.
	AccuracyJitter float64 `json:"accuracy_jitter"`

	// LearningRateDecay is the per-full-retrain multiplier. Default: 0.95.
	LearningRateDecay float64 `json:"learning_rate_decay"`

	// InitialAccuracy seeds a fresh model. Default: 0.7.
	InitialAccuracy float64 `json:"initial_accuracy"`

	// InitialLearningRate seeds a fresh model. Default: 0.01.
	InitialLearningRate float64 `json:"initial_learning_rate"`

	// MaxHistoryEntries bounds the persisted training log. Default: 50.
	MaxHistoryEntries int `json:"max_history_entries"`
}

// RetentionConfig contains corpus retention caps. Oldest entries are
// trimmed first once a cap is exceeded.
type RetentionConfig struct {
	// MaxLearningRecords caps the raw learning corpus. Default: 500.
	MaxLearningRecords int `json:"max_learning_records"`

	// MaxFeedbackEntries caps the feedback-only log. Default: 1000.
	MaxFeedbackEntries int `json:"max_feedback_entries"`

	// MaxGapEntries caps the learning-gap audit log. Default: 100.
	MaxGapEntries int `json:"max_gap_entries"`
}

// FallbackConfig configures the default recommendation returned for
// profiles with no usable signals.
type FallbackConfig struct {
	// SupplementID is the default suggestion. Default: multivitamin-daily.
	SupplementID string `json:"supplement_id"`

	// MatchScore is the default score. Default: 40.
	MatchScore float64 `json:"match_score"`

	// Confidence is the default confidence. Default: 0.2.
	Confidence float64 `json:"confidence"`
}

// DefaultConfig returns a Config with the documented production defaults.
func DefaultConfig() *Config {
	return &Config{
		Similarity: SimilarityConfig{
			Weights: SimilarityWeights{
				Symptoms:     0.40,
				Goals:        0.25,
				Demographics: 0.15,
				Medications:  0.10,
				Lifestyle:    0.10,
			},
			TopK:                 5,
			MinSimilarity:        0.3,
			SymptomJaccardWeight: 0.7,
		},
		Rules: RulesConfig{
			PrimarySymptoms: []string{
				"stress", "fatigue", "poor-sleep", "joint-pain",
				"digestive-issues", "brain-fog", "anxiety", "headaches",
			},
			SymptomBoosts: map[string][]RuleBoost{
				"stress": {
					{SupplementID: "ashwagandha-extract", Points: 15},
					{SupplementID: "magnesium-glycinate", Points: 12},
					{SupplementID: "l-theanine", Points: 10},
				},
				"anxiety": {
					{SupplementID: "l-theanine", Points: 15},
					{SupplementID: "ashwagandha-extract", Points: 12},
					{SupplementID: "magnesium-glycinate", Points: 10},
				},
				"fatigue": {
					{SupplementID: "vitamin-b12", Points: 15},
					{SupplementID: "iron-bisglycinate", Points: 12},
					{SupplementID: "coq10-ubiquinol", Points: 10},
				},
				"poor-sleep": {
					{SupplementID: "magnesium-glycinate", Points: 15},
					{SupplementID: "melatonin", Points: 12},
					{SupplementID: "l-theanine", Points: 10},
				},
				"joint-pain": {
					{SupplementID: "omega-3-fish-oil", Points: 15},
					{SupplementID: "curcumin-extract", Points: 12},
					{SupplementID: "glucosamine-chondroitin", Points: 10},
				},
				"digestive-issues": {
					{SupplementID: "probiotic-blend", Points: 15},
					{SupplementID: "digestive-enzymes", Points: 12},
					{SupplementID: "ginger-extract", Points: 10},
				},
				"brain-fog": {
					{SupplementID: "omega-3-fish-oil", Points: 14},
					{SupplementID: "ginkgo-biloba", Points: 12},
					{SupplementID: "lions-mane-mushroom", Points: 10},
				},
				"headaches": {
					{SupplementID: "magnesium-glycinate", Points: 14},
					{SupplementID: "coq10-ubiquinol", Points: 10},
				},
			},
			SeniorAge: 50,
			SeniorBoosts: []RuleBoost{
				{SupplementID: "coq10-ubiquinol", Points: 12},
				{SupplementID: "calcium-citrate", Points: 10},
				{SupplementID: "vitamin-d3", Points: 10},
				{SupplementID: "glucosamine-chondroitin", Points: 8},
			},
			YoungAge: 30,
			YoungBoosts: []RuleBoost{
				{SupplementID: "vitamin-b12", Points: 10},
				{SupplementID: "creatine-monohydrate", Points: 8},
				{SupplementID: "lions-mane-mushroom", Points: 8},
			},
			GenderBoosts: map[Gender][]RuleBoost{
				GenderFemale: {
					{SupplementID: "iron-bisglycinate", Points: 12},
					{SupplementID: "calcium-citrate", Points: 10},
					{SupplementID: "folate-methyl", Points: 8},
				},
				GenderMale: {
					{SupplementID: "zinc-picolinate", Points: 8},
				},
			},
		},
		Contextual: ContextualConfig{
			Season: map[string]map[string]float64{
				"winter": {
					"vitamin-d3":      0.9,
					"zinc-picolinate": 0.7,
					"melatonin":       0.5,
				},
				"spring": {
					"probiotic-blend": 0.6,
					"vitamin-b12":     0.5,
				},
				"summer": {
					"magnesium-glycinate": 0.6,
					"ginger-extract":      0.5,
				},
				"autumn": {
					"vitamin-d3":      0.7,
					"zinc-picolinate": 0.6,
					"probiotic-blend": 0.5,
				},
			},
			AgeBracket: map[AgeBracket]map[string]float64{
				AgeBracketYoungAdult: {
					"creatine-monohydrate": 0.7,
					"vitamin-b12":          0.6,
				},
				AgeBracketMiddleAge: {
					"coq10-ubiquinol":  0.6,
					"omega-3-fish-oil": 0.6,
				},
				AgeBracketSenior: {
					"calcium-citrate":         0.8,
					"vitamin-d3":              0.7,
					"glucosamine-chondroitin": 0.7,
				},
			},
			Gender: map[Gender]map[string]float64{
				GenderFemale: {
					"iron-bisglycinate": 0.8,
					"folate-methyl":     0.7,
					"calcium-citrate":   0.6,
				},
				GenderMale: {
					"zinc-picolinate": 0.6,
				},
			},
			Diet: map[string]map[string]float64{
				"vegan": {
					"vitamin-b12":       0.9,
					"iron-bisglycinate": 0.8,
					"vitamin-d3":        0.7,
					"zinc-picolinate":   0.6,
				},
				"vegetarian": {
					"vitamin-b12":       0.8,
					"iron-bisglycinate": 0.7,
					"omega-3-fish-oil":  0.5,
				},
			},
			MaxBoostPoints: 10,
		},
		Quality: QualityConfig{
			VolumeTarget:        1000,
			RecencyHalfLifeDays: 90,
			SymptomVarietyCap:   10,
			GoalVarietyCap:      5,
		},
		Blender: BlenderConfig{
			MinDecisionQuality:  0.3,
			RichDecisionQuality: 0.7,
			MinSimilarRecords:   3,
			MaxDataWeight:       0.6,
			DataWeightFactor:    0.8,
			RatingMultiplier:    4.0,
			MinFeedbackPoints:   2,
			HybridConfidenceCap: 0.6,
		},
		Training: TrainingConfig{
			BatchSize:           20,
			FullRetrainInterval: 24 * time.Hour,
			MaxAccuracy:         0.98,
			AccuracyJitter:      0.03,
			LearningRateDecay:   0.95,
			InitialAccuracy:     0.7,
			InitialLearningRate: 0.01,
			MaxHistoryEntries:   50,
		},
		Retention: RetentionConfig{
			MaxLearningRecords: 500,
			MaxFeedbackEntries: 1000,
			MaxGapEntries:      100,
		},
		Fallback: FallbackConfig{
			SupplementID: "multivitamin-daily",
			MatchScore:   40,
			Confidence:   0.2,
		},
		Seed: 42,
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.Similarity.TopK < 1 {
		return fmt.Errorf("similarity.top_k must be positive, got %d", c.Similarity.TopK)
	}
	if c.Similarity.MinSimilarity < 0 || c.Similarity.MinSimilarity > 1 {
		return fmt.Errorf("similarity.min_similarity must be in [0, 1], got %f", c.Similarity.MinSimilarity)
	}
	if c.Similarity.SymptomJaccardWeight < 0 || c.Similarity.SymptomJaccardWeight > 1 {
		return fmt.Errorf("similarity.symptom_jaccard_weight must be in [0, 1], got %f", c.Similarity.SymptomJaccardWeight)
	}

	for symptom, boosts := range c.Rules.SymptomBoosts {
		for _, b := range boosts {
			if b.SupplementID == "" {
				return fmt.Errorf("rules.symptom_boosts[%s] has an empty supplement id", symptom)
			}
			if b.Points < 0 || b.Points > 100 {
				return fmt.Errorf("rules.symptom_boosts[%s] points must be in [0, 100], got %f", symptom, b.Points)
			}
		}
	}
	if c.Rules.SeniorAge <= c.Rules.YoungAge {
		return fmt.Errorf("rules.senior_age must exceed rules.young_age, got %d <= %d", c.Rules.SeniorAge, c.Rules.YoungAge)
	}

	if c.Contextual.MaxBoostPoints < 0 || c.Contextual.MaxBoostPoints > 100 {
		return fmt.Errorf("contextual.max_boost_points must be in [0, 100], got %f", c.Contextual.MaxBoostPoints)
	}

	if c.Quality.VolumeTarget < 1 {
		return fmt.Errorf("quality.volume_target must be positive, got %d", c.Quality.VolumeTarget)
	}
	if c.Quality.RecencyHalfLifeDays <= 0 {
		return fmt.Errorf("quality.recency_half_life_days must be positive, got %f", c.Quality.RecencyHalfLifeDays)
	}

	if c.Blender.MinDecisionQuality < 0 || c.Blender.MinDecisionQuality > 1 {
		return fmt.Errorf("blender.min_decision_quality must be in [0, 1], got %f", c.Blender.MinDecisionQuality)
	}
	if c.Blender.RichDecisionQuality < c.Blender.MinDecisionQuality {
		return fmt.Errorf("blender.rich_decision_quality must be >= min_decision_quality, got %f < %f",
			c.Blender.RichDecisionQuality, c.Blender.MinDecisionQuality)
	}
	if c.Blender.MaxDataWeight < 0 || c.Blender.MaxDataWeight > 1 {
		return fmt.Errorf("blender.max_data_weight must be in [0, 1], got %f", c.Blender.MaxDataWeight)
	}
	if c.Blender.MinFeedbackPoints < 1 {
		return fmt.Errorf("blender.min_feedback_points must be positive, got %d", c.Blender.MinFeedbackPoints)
	}

	if c.Training.BatchSize < 1 {
		return fmt.Errorf("training.batch_size must be positive, got %d", c.Training.BatchSize)
	}
	if c.Training.MaxAccuracy <= 0 || c.Training.MaxAccuracy > 1 {
		return fmt.Errorf("training.max_accuracy must be in (0, 1], got %f", c.Training.MaxAccuracy)
	}
	if c.Training.AccuracyJitter < 0 || c.Training.AccuracyJitter > 0.5 {
		return fmt.Errorf("training.accuracy_jitter must be in [0, 0.5], got %f", c.Training.AccuracyJitter)
	}
	if c.Training.LearningRateDecay <= 0 || c.Training.LearningRateDecay > 1 {
		return fmt.Errorf("training.learning_rate_decay must be in (0, 1], got %f", c.Training.LearningRateDecay)
	}

	if c.Retention.MaxLearningRecords < 1 {
		return fmt.Errorf("retention.max_learning_records must be positive, got %d", c.Retention.MaxLearningRecords)
	}
	if c.Retention.MaxFeedbackEntries < 1 {
		return fmt.Errorf("retention.max_feedback_entries must be positive, got %d", c.Retention.MaxFeedbackEntries)
	}
	if c.Retention.MaxGapEntries < 1 {
		return fmt.Errorf("retention.max_gap_entries must be positive, got %d", c.Retention.MaxGapEntries)
	}

	if c.Fallback.SupplementID == "" {
		return fmt.Errorf("fallback.supplement_id must not be empty")
	}
	if c.Fallback.MatchScore < 0 || c.Fallback.MatchScore > 100 {
		return fmt.Errorf("fallback.match_score must be in [0, 100], got %f", c.Fallback.MatchScore)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c

	out.Rules.PrimarySymptoms = append([]string(nil), c.Rules.PrimarySymptoms...)
	out.Rules.SymptomBoosts = cloneBoostTable(c.Rules.SymptomBoosts)
	out.Rules.SeniorBoosts = append([]RuleBoost(nil), c.Rules.SeniorBoosts...)
	out.Rules.YoungBoosts = append([]RuleBoost(nil), c.Rules.YoungBoosts...)
	out.Rules.GenderBoosts = make(map[Gender][]RuleBoost, len(c.Rules.GenderBoosts))
	for g, boosts := range c.Rules.GenderBoosts {
		out.Rules.GenderBoosts[g] = append([]RuleBoost(nil), boosts...)
	}

	out.Contextual.Season = cloneRelevanceTable(c.Contextual.Season)
	out.Contextual.AgeBracket = make(map[AgeBracket]map[string]float64, len(c.Contextual.AgeBracket))
	for k, v := range c.Contextual.AgeBracket {
		out.Contextual.AgeBracket[k] = cloneScores(v)
	}
	out.Contextual.Gender = make(map[Gender]map[string]float64, len(c.Contextual.Gender))
	for k, v := range c.Contextual.Gender {
		out.Contextual.Gender[k] = cloneScores(v)
	}
	out.Contextual.Diet = cloneRelevanceTable(c.Contextual.Diet)

	return &out
}

func cloneBoostTable(in map[string][]RuleBoost) map[string][]RuleBoost {
	out := make(map[string][]RuleBoost, len(in))
	for k, v := range in {
		out[k] = append([]RuleBoost(nil), v...)
	}
	return out
}

func cloneRelevanceTable(in map[string]map[string]float64) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(in))
	for k, v := range in {
		out[k] = cloneScores(v)
	}
	return out
}

func cloneScores(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
