// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package engine

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"
)

// Severity is the ordinal severity of a reported symptom.
type Severity string

const (
	// SeverityNone indicates the symptom is tracked but not currently active.
	SeverityNone Severity = "none"
	// SeverityLow indicates mild, occasional symptoms.
	SeverityLow Severity = "low"
	// SeverityModerate indicates regular, noticeable symptoms.
	SeverityModerate Severity = "moderate"
	// SeverityHigh indicates frequent, disruptive symptoms.
	SeverityHigh Severity = "high"
	// SeveritySevere indicates constant, strongly disruptive symptoms.
	SeveritySevere Severity = "severe"
)

// Ordinal returns the severity position on a 0-4 scale. An empty severity
// (symptom reported without a level) is treated as moderate.
func (s Severity) Ordinal() int {
	switch s {
	case SeverityNone:
		return 0
	case SeverityLow:
		return 1
	case SeverityModerate, "":
		return 2
	case SeverityHigh:
		return 3
	case SeveritySevere:
		return 4
	default:
		return 2
	}
}

// maxSeverityOrdinal is the ordinal distance normalizer for severity scales.
const maxSeverityOrdinal = 4

// Active reports whether the symptom counts as present for matching.
func (s Severity) Active() bool {
	return s != SeverityNone
}

// Gender is the user's reported gender.
type Gender string

const (
	GenderFemale      Gender = "female"
	GenderMale        Gender = "male"
	GenderOther       Gender = "other"
	GenderUnspecified Gender = ""
)

// ActivityLevel is the self-reported physical activity level (4-point scale).
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityActive    ActivityLevel = "active"
)

// Ordinal returns the activity position on a 0-3 scale.
func (a ActivityLevel) Ordinal() int {
	switch a {
	case ActivitySedentary:
		return 0
	case ActivityLight:
		return 1
	case ActivityModerate, "":
		return 2
	case ActivityActive:
		return 3
	default:
		return 2
	}
}

// StressLevel is the self-reported baseline stress level (3-point scale).
type StressLevel string

const (
	StressLow      StressLevel = "low"
	StressModerate StressLevel = "moderate"
	StressHigh     StressLevel = "high"
)

// Ordinal returns the stress position on a 0-2 scale.
func (s StressLevel) Ordinal() int {
	switch s {
	case StressLow:
		return 0
	case StressModerate, "":
		return 1
	case StressHigh:
		return 2
	default:
		return 1
	}
}

// DietType is the user's overall diet pattern.
type DietType string

const (
	DietOmnivore    DietType = "omnivore"
	DietPescatarian DietType = "pescatarian"
	DietVegetarian  DietType = "vegetarian"
	DietVegan       DietType = "vegan"
)

// DietaryRestrictions captures the boolean dietary flags from the quiz.
type DietaryRestrictions struct {
	Vegan      bool `json:"vegan"`
	Vegetarian bool `json:"vegetarian"`
	GlutenFree bool `json:"gluten_free"`
	DairyFree  bool `json:"dairy_free"`
}

// Lifestyle captures ordinal/enum lifestyle facts.
type Lifestyle struct {
	Activity ActivityLevel `json:"activity"`
	Stress   StressLevel   `json:"stress"`
	Diet     DietType      `json:"diet"`
}

// UserProfile is the subject of a scoring request. It is immutable once
// scoring begins; the engine never modifies a profile it receives.
type UserProfile struct {
	// Symptoms maps symptom key to severity. A key's presence means the
	// symptom was reported; SeverityNone means explicitly inactive.
	Symptoms map[string]Severity `json:"symptoms"`

	// Goals maps goal key to whether the user selected it.
	Goals map[string]bool `json:"goals"`

	// Age in whole years. Zero means unknown.
	Age int `json:"age" validate:"min=0,max=130"`

	// Gender is the reported gender.
	Gender Gender `json:"gender"`

	// Medications lists current medications as free-text identifiers.
	Medications []string `json:"medications,omitempty"`

	// Dietary holds dietary restriction flags.
	Dietary DietaryRestrictions `json:"dietary"`

	// Lifestyle holds activity, stress, and diet-type facts.
	Lifestyle Lifestyle `json:"lifestyle"`
}

// ActiveSymptoms returns the keys of symptoms with non-none severity.
func (p *UserProfile) ActiveSymptoms() []string {
	keys := make([]string, 0, len(p.Symptoms))
	for k, sev := range p.Symptoms {
		if sev.Active() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// ActiveGoals returns the keys of goals the user selected.
func (p *UserProfile) ActiveGoals() []string {
	keys := make([]string, 0, len(p.Goals))
	for k, on := range p.Goals {
		if on {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// HasSignals reports whether the profile contains any symptom or goal
// signal usable for matching.
func (p *UserProfile) HasSignals() bool {
	return len(p.ActiveSymptoms()) > 0 || len(p.ActiveGoals()) > 0
}

// IsEmpty reports whether the profile carries no symptoms, no goals, and no
// demographic data. Such profiles cannot be scored and receive the default
// fallback recommendation.
func (p *UserProfile) IsEmpty() bool {
	return !p.HasSignals() && p.Age == 0 && p.Gender == GenderUnspecified
}

// Fingerprint returns a stable short hash of the profile's matching signals.
// Used to key learning-gap audit entries without storing the profile itself.
func (p *UserProfile) Fingerprint() string {
	h := fnv.New64a()
	for _, k := range p.ActiveSymptoms() {
		h.Write([]byte("s:" + k + ";"))
	}
	for _, k := range p.ActiveGoals() {
		h.Write([]byte("g:" + k + ";"))
	}
	fmt.Fprintf(h, "a:%s;x:%s", AgeBracketOf(p.Age), p.Gender)
	return fmt.Sprintf("%016x", h.Sum64())
}

// AgeBracket labels a coarse demographic age band.
type AgeBracket string

const (
	AgeBracketYoungAdult AgeBracket = "young-adult"
	AgeBracketMiddleAge  AgeBracket = "middle-age"
	AgeBracketSenior     AgeBracket = "senior"
	AgeBracketUnknown    AgeBracket = "unknown"
)

// AgeBracketOf maps an age in years to its bracket.
func AgeBracketOf(age int) AgeBracket {
	switch {
	case age <= 0:
		return AgeBracketUnknown
	case age < 30:
		return AgeBracketYoungAdult
	case age < 50:
		return AgeBracketMiddleAge
	default:
		return AgeBracketSenior
	}
}

// AdjustmentSource identifies which component produced a score adjustment.
type AdjustmentSource string

const (
	// AdjustmentRule marks deterministic rule-based boosts.
	AdjustmentRule AdjustmentSource = "rule"
	// AdjustmentData marks learning-derived deltas.
	AdjustmentData AdjustmentSource = "data"
	// AdjustmentContext marks seasonal/demographic relevance boosts.
	AdjustmentContext AdjustmentSource = "context"
)

// Adjustment is one entry in a recommendation's explanation trail.
type Adjustment struct {
	// Source identifies the producing component.
	Source AdjustmentSource `json:"source"`

	// Delta is the signed score change applied (score points, 0-100 scale).
	Delta float64 `json:"delta"`

	// Confidence estimates how reliable this adjustment is (0-1).
	Confidence float64 `json:"confidence"`

	// Note is the human-readable explanation.
	Note string `json:"note"`

	// SampleSize is the number of feedback points contributing (data only).
	SampleSize int `json:"sample_size,omitempty"`

	// Quality is the decision-quality score that gated this adjustment
	// (data only).
	Quality float64 `json:"quality,omitempty"`
}

// Recommendation is a scored supplement suggestion. Created upstream as a
// base list, mutated in place by the engine's components, and discarded
// after the response is returned.
type Recommendation struct {
	// SupplementID references the catalog.
	SupplementID string `json:"supplement_id" validate:"required"`

	// MatchScore is the current score, clamped to [0, 100].
	MatchScore float64 `json:"match_score" validate:"min=0,max=100"`

	// Priority orders ties; lower values are more important.
	Priority int `json:"priority"`

	// Benefits lists benefit statements shown with the recommendation.
	Benefits []string `json:"benefits,omitempty"`

	// Confidence estimates overall recommendation reliability (0-1).
	Confidence float64 `json:"confidence"`

	// Adjustments is the explanation trail of applied deltas.
	Adjustments []Adjustment `json:"adjustments,omitempty"`
}

// Adjust applies a signed delta, clamps the score to [0, 100], and appends
// the annotation to the explanation trail.
func (r *Recommendation) Adjust(a Adjustment) {
	r.MatchScore = clampScore(r.MatchScore + a.Delta)
	r.Adjustments = append(r.Adjustments, a)
}

// Clone returns a deep copy so upstream base lists are never aliased.
func (r *Recommendation) Clone() Recommendation {
	out := *r
	out.Benefits = append([]string(nil), r.Benefits...)
	out.Adjustments = append([]Adjustment(nil), r.Adjustments...)
	return out
}

// ShownRecommendation records one recommendation occurrence inside a
// LearningRecord.
type ShownRecommendation struct {
	SupplementID string  `json:"supplement_id" validate:"required"`
	MatchScore   float64 `json:"match_score"`
	Primary      bool    `json:"primary"`
}

// FeedbackEntry is a reported outcome for a prior recommendation.
// Immutable once written.
type FeedbackEntry struct {
	// SupplementID references the recommendation the feedback is about.
	SupplementID string `json:"supplement_id" validate:"required"`

	// Helpful is the headline thumbs-up/down signal.
	Helpful bool `json:"helpful"`

	// Rating is the 1-5 satisfaction rating.
	Rating int `json:"rating" validate:"min=1,max=5"`

	// PurchaseIntent is the 0-10 intent score.
	PurchaseIntent int `json:"purchase_intent" validate:"min=0,max=10"`

	// Comment is optional free text.
	Comment string `json:"comment,omitempty"`

	// CreatedAt is when the feedback was reported.
	CreatedAt time.Time `json:"created_at"`
}

// LearningRecord is a historical profile + outcome pairing. Append-only.
type LearningRecord struct {
	// ID is the record identifier.
	ID string `json:"id" validate:"required"`

	// CreatedAt is the record creation timestamp.
	CreatedAt time.Time `json:"created_at"`

	// Profile is the originating profile snapshot.
	Profile UserProfile `json:"profile"`

	// Shown lists the recommendations presented with this profile.
	Shown []ShownRecommendation `json:"shown"`

	// Feedback holds zero or more outcome reports.
	Feedback []FeedbackEntry `json:"feedback,omitempty"`
}

// Validate performs structural validation on a stored record. Records that
// fail are skipped with a MalformedRecord error rather than aborting the
// scoring pass.
func (r *LearningRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: empty record id", ErrMalformedRecord)
	}
	if r.CreatedAt.IsZero() {
		return fmt.Errorf("%w: record %s has zero timestamp", ErrMalformedRecord, r.ID)
	}
	if r.Profile.Age < 0 {
		return fmt.Errorf("%w: record %s has negative age", ErrMalformedRecord, r.ID)
	}
	for i := range r.Feedback {
		fb := &r.Feedback[i]
		if fb.Rating < 1 || fb.Rating > 5 {
			return fmt.Errorf("%w: record %s feedback rating %d out of range", ErrMalformedRecord, r.ID, fb.Rating)
		}
		if fb.SupplementID == "" {
			return fmt.Errorf("%w: record %s feedback has empty supplement id", ErrMalformedRecord, r.ID)
		}
	}
	return nil
}

// HasFeedback reports whether the record carries at least one feedback entry.
func (r *LearningRecord) HasFeedback() bool {
	return len(r.Feedback) > 0
}

// FeedbackConsistent reports whether every feedback entry references a
// supplement that appears in the record's shown list. This is a should-hold
// invariant checked opportunistically, not enforced transactionally.
func (r *LearningRecord) FeedbackConsistent() bool {
	shown := make(map[string]struct{}, len(r.Shown))
	for _, s := range r.Shown {
		shown[s.SupplementID] = struct{}{}
	}
	for _, fb := range r.Feedback {
		if _, ok := shown[fb.SupplementID]; !ok {
			return false
		}
	}
	return true
}

// SimilarRecord pairs a learning record with its similarity to the active
// profile.
type SimilarRecord struct {
	Record     LearningRecord `json:"record"`
	Similarity float64        `json:"similarity"`
}

// Strategy names the blending strategy selected for a request.
type Strategy string

const (
	// StrategyRuleBased means learned data was insufficient; rules only.
	StrategyRuleBased Strategy = "rule_based"
	// StrategyHybrid mixes rule boosts with a scaled data-derived delta.
	StrategyHybrid Strategy = "hybrid"
	// StrategyDataRich lets the data-derived delta dominate.
	StrategyDataRich Strategy = "data_rich"
)

// GapEntry is a logged scoring decision made without sufficient historical
// data. The gap log is capped at a fixed number of recent entries.
type GapEntry struct {
	// ProfileFingerprint is the hashed signal set of the affected profile.
	ProfileFingerprint string `json:"profile_fingerprint"`

	// Reason explains why learned data was insufficient.
	Reason string `json:"reason"`

	// Quality is the decision-quality score at the time.
	Quality float64 `json:"quality"`

	// CreatedAt is when the gap was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// TrainingHistoryEntry is one line in the model's training log.
type TrainingHistoryEntry struct {
	Date        time.Time     `json:"date"`
	Duration    time.Duration `json:"duration"`
	RecordCount int           `json:"record_count"`
	Accuracy    float64       `json:"accuracy"`
	Full        bool          `json:"full"`
}

// Hyperparameters are the model's tunable coefficients. They exist for
// reporting; the per-request scoring path never reads them.
type Hyperparameters struct {
	// LearningRate decays by a fixed factor on each full retrain.
	LearningRate float64 `json:"learning_rate"`

	// Epochs counts full retraining passes.
	Epochs int `json:"epochs"`

	// BatchSize is the record increment that triggers incremental runs.
	BatchSize int `json:"batch_size"`
}

// ModelState is the versioned aggregate model record. Singleton; mutated
// only by the ModelManager under serialized access.
type ModelState struct {
	// Version is a semantic version string (major.minor.patch).
	Version string `json:"version"`

	// LastTrainedAt is the timestamp of the most recent training run.
	LastTrainedAt time.Time `json:"last_trained_at"`

	// Accuracy is the current accuracy estimate in [0, 1].
	Accuracy float64 `json:"accuracy"`

	// History is the ordered training log, oldest first.
	History []TrainingHistoryEntry `json:"history"`

	// Hyperparameters are the tunable coefficients.
	Hyperparameters Hyperparameters `json:"hyperparameters"`
}

// Clone returns a deep copy safe to hand to readers.
func (m *ModelState) Clone() *ModelState {
	out := *m
	out.History = append([]TrainingHistoryEntry(nil), m.History...)
	return &out
}

// RecommendationQuality is the per-recommendation entry of a quality report.
type RecommendationQuality struct {
	SupplementID string  `json:"supplement_id"`
	Quality      float64 `json:"quality"`
	SampleSize   int     `json:"sample_size"`
}

// DataQualityReport scores the reliability of the learning corpus.
// All score fields are on a 0-100 scale.
type DataQualityReport struct {
	Overall           float64                 `json:"overall"`
	FeedbackCoverage  float64                 `json:"feedback_coverage"`
	ProfileDiversity  float64                 `json:"profile_diversity"`
	DataVolume        float64                 `json:"data_volume"`
	PerRecommendation []RecommendationQuality `json:"per_recommendation,omitempty"`
	RecordCount       int                     `json:"record_count"`
	GeneratedAt       time.Time               `json:"generated_at"`
}

// CorrelationBucket is one entry of the pattern-correlation report: a
// demographic or symptom bucket with its ranked recommendation outcomes.
type CorrelationBucket struct {
	// Key is the bucket label, e.g. "age:senior" or "symptom:stress".
	Key string `json:"key"`

	// Ranked lists supplement IDs by descending average feedback rating.
	Ranked []RankedSupplement `json:"ranked"`
}

// RankedSupplement pairs a supplement with its aggregate outcome.
type RankedSupplement struct {
	SupplementID  string  `json:"supplement_id"`
	AverageRating float64 `json:"average_rating"`
	SampleSize    int     `json:"sample_size"`
}

// clampScore bounds a match score to [0, 100].
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// clamp01 bounds a unit-scale value to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// normalizeMedication folds case and whitespace so medication names compare
// consistently across records.
func normalizeMedication(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
