// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vitarank/vitarank/internal/catalog"
	"github.com/vitarank/vitarank/internal/metrics"
)

// CatalogLookup is the read-only supplement reference collaborator.
// Satisfied by *catalog.Catalog.
type CatalogLookup interface {
	Supplement(id string) (catalog.SupplementInfo, error)
}

// Engine is the recommendation orchestrator: it accepts a profile and a
// base recommendation set, runs similarity retrieval, quality gating,
// hybrid blending, and contextual boosting, and returns a finally-sorted,
// explained recommendation list. It is safe for concurrent use; scoring
// requests are read-only over a corpus snapshot.
type Engine struct {
	cfg    *Config
	logger zerolog.Logger

	store   Store
	catalog CatalogLookup

	similarity *SimilarityEngine
	rules      *RuleAdjuster
	contextual *ContextualCalculator
	quality    *QualityEvaluator
	blender    *HybridBlender
	model      *ModelManager
}

// New creates a fully wired engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *Config, store Store, cat CatalogLookup, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	logger = logger.With().Str("component", "engine").Logger()
	rules := NewRuleAdjuster(cfg.Rules, logger)

	return &Engine{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		catalog:    cat,
		similarity: NewSimilarityEngine(cfg.Similarity),
		rules:      rules,
		contextual: NewContextualCalculator(cfg.Contextual),
		quality:    NewQualityEvaluator(cfg.Quality),
		blender:    NewHybridBlender(cfg.Blender, rules, logger),
		model:      NewModelManager(cfg.Training, store, cfg.Seed, logger),
	}, nil
}

// Model exposes the model manager for the training scheduler.
func (e *Engine) Model() *ModelManager {
	return e.model
}

// Contextual exposes the contextual calculator (tests pin its clock).
func (e *Engine) Contextual() *ContextualCalculator {
	return e.contextual
}

// Quality exposes the quality evaluator (tests pin its clock).
func (e *Engine) Quality() *QualityEvaluator {
	return e.quality
}

// ScoreResult is the outcome of one scoring request.
type ScoreResult struct {
	// Recommendations is the final sorted, explained list. Never empty.
	Recommendations []Recommendation `json:"recommendations"`

	// Strategy is the blending strategy that was applied.
	Strategy Strategy `json:"strategy"`

	// DecisionQuality is the request-scoped reliability estimate.
	DecisionQuality float64 `json:"decision_quality"`

	// SimilarRecords is how many historical records informed the decision.
	SimilarRecords int `json:"similar_records"`
}

// Score runs the full scoring pipeline. The caller always receives some
// ranked list: empty corpora, malformed records, and low-similarity cases
// all recover to the rule-based path, and signal-free profiles receive the
// default low-confidence recommendation.
func (e *Engine) Score(ctx context.Context, profile *UserProfile, base []Recommendation) (*ScoreResult, error) {
	start := time.Now()
	defer func() {
		metrics.ScoringDuration.Observe(time.Since(start).Seconds())
	}()

	if profile == nil || profile.IsEmpty() {
		e.logger.Debug().Msg("profile has no usable signals, returning default recommendation")
		metrics.ScoringRequests.WithLabelValues("fallback").Inc()
		return e.fallbackResult(), nil
	}

	corpus, err := e.store.LearningRecords(ctx)
	if err != nil {
		// Corpus problems are recovered locally; the rule path needs no data.
		e.logger.Warn().Err(err).Msg("learning corpus unavailable, using rules only")
		corpus = nil
	}

	similar := e.similarity.TopSimilar(profile, corpus)
	quality := e.quality.DecisionQuality(similar)

	result := e.blender.Blend(profile, base, similar, quality)
	if result.Gap != nil {
		e.recordGap(ctx, result.Gap)
	}

	e.contextual.Apply(profile, result.Recommendations)
	sortRecommendations(result.Recommendations)
	e.fillBenefits(result.Recommendations)

	if len(result.Recommendations) == 0 {
		// Upstream gave an empty base list; honor the non-empty contract.
		metrics.ScoringRequests.WithLabelValues("fallback").Inc()
		return e.fallbackResult(), nil
	}

	metrics.ScoringRequests.WithLabelValues(string(result.Strategy)).Inc()
	metrics.DecisionQuality.Set(quality)

	e.logger.Debug().
		Str("strategy", string(result.Strategy)).
		Float64("decision_quality", quality).
		Int("recommendations", len(result.Recommendations)).
		Dur("elapsed", time.Since(start)).
		Msg("scoring complete")

	return &ScoreResult{
		Recommendations: result.Recommendations,
		Strategy:        result.Strategy,
		DecisionQuality: quality,
		SimilarRecords:  len(similar),
	}, nil
}

// FeedbackRequest is a reported outcome for a prior recommendation.
type FeedbackRequest struct {
	// RecordID attaches the feedback to an existing learning record.
	RecordID string `json:"record_id,omitempty"`

	// Profile, when present without a RecordID, becomes the snapshot of a
	// new learning record created for this feedback.
	Profile *UserProfile `json:"profile,omitempty"`

	// Shown lists the recommendations presented alongside the profile.
	Shown []ShownRecommendation `json:"shown,omitempty"`

	// SupplementID is the recommendation the feedback is about.
	SupplementID string `json:"supplement_id" validate:"required"`

	// Helpful is the headline signal.
	Helpful bool `json:"helpful"`

	// Rating is the 1-5 satisfaction rating.
	Rating int `json:"rating" validate:"min=1,max=5"`

	// PurchaseIntent is the 0-10 intent score.
	PurchaseIntent int `json:"purchase_intent" validate:"min=0,max=10"`

	// Comment is optional free text.
	Comment string `json:"comment,omitempty"`
}

// SubmitFeedback records an outcome. Feedback always lands in the
// feedback-only log; it additionally either attaches to an existing
// learning record or creates a new one from the supplied profile snapshot.
// Every configured batch of new learning records triggers exactly one
// incremental training run.
func (e *Engine) SubmitFeedback(ctx context.Context, req *FeedbackRequest) error {
	fb := FeedbackEntry{
		SupplementID:   req.SupplementID,
		Helpful:        req.Helpful,
		Rating:         clampInt(req.Rating, 1, 5),
		PurchaseIntent: clampInt(req.PurchaseIntent, 0, 10),
		Comment:        req.Comment,
		CreatedAt:      time.Now(),
	}

	if err := e.store.AppendFeedbackLog(ctx, fb); err != nil {
		return fmt.Errorf("append feedback log: %w", err)
	}
	metrics.FeedbackSubmitted.Inc()

	switch {
	case req.RecordID != "":
		if err := e.store.AttachFeedback(ctx, req.RecordID, fb); err != nil {
			return fmt.Errorf("attach feedback to record %s: %w", req.RecordID, err)
		}
	case req.Profile != nil:
		rec := &LearningRecord{
			ID:        uuid.NewString(),
			CreatedAt: time.Now(),
			Profile:   *req.Profile,
			Shown:     req.Shown,
			Feedback:  []FeedbackEntry{fb},
		}
		if err := e.store.AppendLearningRecord(ctx, rec); err != nil {
			return fmt.Errorf("append learning record: %w", err)
		}
		e.maybeTriggerTraining(ctx)
	}

	return nil
}

// maybeTriggerTraining fires one incremental run per configured batch of
// new learning records. Training conflicts are logged, not surfaced; the
// next batch will pick the work up.
func (e *Engine) maybeTriggerTraining(ctx context.Context) {
	pending, err := e.store.IncrementPendingRecords(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("pending-record counter unavailable")
		return
	}
	if pending < e.model.BatchSize() {
		return
	}

	if err := e.store.ResetPendingRecords(ctx); err != nil {
		e.logger.Warn().Err(err).Msg("failed to reset pending-record counter")
	}

	count, err := e.store.CountLearningRecords(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("corpus count unavailable, reporting batch size")
		count = pending
	}

	if _, err := e.model.RecordTrainingRun(ctx, false, count); err != nil {
		e.logger.Warn().Err(err).Msg("incremental training run not recorded")
	}
}

// Train runs a training pass over the current corpus. The scheduler calls
// this for periodic full retrains; ErrTrainingInProgress is retryable.
func (e *Engine) Train(ctx context.Context, full bool) (*ModelState, error) {
	count, err := e.store.CountLearningRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("count learning records: %w", err)
	}
	return e.model.RecordTrainingRun(ctx, full, count)
}

// ModelState returns the current model state for dashboards.
func (e *Engine) ModelState(ctx context.Context) (*ModelState, error) {
	return e.model.State(ctx)
}

// DataQualityReport recomputes the corpus quality report on demand.
func (e *Engine) DataQualityReport(ctx context.Context) (*DataQualityReport, error) {
	corpus, err := e.store.LearningRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load learning corpus: %w", err)
	}

	report := e.quality.Report(corpus)
	metrics.CorpusSize.Set(float64(report.RecordCount))
	metrics.DataQualityOverall.Set(report.Overall)
	return &report, nil
}

// PatternCorrelations aggregates feedback outcomes into ranked
// recommendation lists per demographic and symptom bucket. Consumed by
// dashboards, not by the scoring path.
func (e *Engine) PatternCorrelations(ctx context.Context) ([]CorrelationBucket, error) {
	corpus, err := e.store.LearningRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load learning corpus: %w", err)
	}

	type agg struct {
		sum   float64
		count int
	}
	buckets := make(map[string]map[string]*agg)

	add := func(bucket, supplementID string, rating int) {
		if buckets[bucket] == nil {
			buckets[bucket] = make(map[string]*agg)
		}
		a := buckets[bucket][supplementID]
		if a == nil {
			a = &agg{}
			buckets[bucket][supplementID] = a
		}
		a.sum += float64(rating)
		a.count++
	}

	for i := range corpus {
		rec := &corpus[i]
		if !rec.HasFeedback() {
			continue
		}
		ageKey := "age:" + string(AgeBracketOf(rec.Profile.Age))
		for _, fb := range rec.Feedback {
			add(ageKey, fb.SupplementID, fb.Rating)
			for _, symptom := range rec.Profile.ActiveSymptoms() {
				add("symptom:"+symptom, fb.SupplementID, fb.Rating)
			}
		}
	}

	out := make([]CorrelationBucket, 0, len(buckets))
	for key, supplements := range buckets {
		ranked := make([]RankedSupplement, 0, len(supplements))
		for id, a := range supplements {
			ranked = append(ranked, RankedSupplement{
				SupplementID:  id,
				AverageRating: a.sum / float64(a.count),
				SampleSize:    a.count,
			})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].AverageRating != ranked[j].AverageRating {
				return ranked[i].AverageRating > ranked[j].AverageRating
			}
			return ranked[i].SupplementID < ranked[j].SupplementID
		})
		out = append(out, CorrelationBucket{Key: key, Ranked: ranked})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// GapEntries returns the learning-gap audit log for dashboards.
func (e *Engine) GapEntries(ctx context.Context) ([]GapEntry, error) {
	return e.store.GapEntries(ctx)
}

func (e *Engine) recordGap(ctx context.Context, gap *GapEntry) {
	metrics.LearningGaps.Inc()
	if err := e.store.AppendGapEntry(ctx, *gap); err != nil {
		e.logger.Warn().Err(err).Msg("failed to record learning gap")
	}
}

// fallbackResult builds the single default, low-confidence recommendation
// returned when a profile carries no usable signals.
func (e *Engine) fallbackResult() *ScoreResult {
	rec := Recommendation{
		SupplementID: e.cfg.Fallback.SupplementID,
		MatchScore:   e.cfg.Fallback.MatchScore,
		Priority:     0,
		Confidence:   e.cfg.Fallback.Confidence,
		Adjustments: []Adjustment{{
			Source:     AdjustmentRule,
			Delta:      0,
			Confidence: e.cfg.Fallback.Confidence,
			Note:       "Default suggestion: complete your profile for personalized recommendations",
		}},
	}
	if e.catalog != nil {
		if info, err := e.catalog.Supplement(rec.SupplementID); err == nil {
			rec.Benefits = append([]string(nil), info.Benefits...)
		}
	}

	return &ScoreResult{
		Recommendations: []Recommendation{rec},
		Strategy:        StrategyRuleBased,
		DecisionQuality: 0,
	}
}

// fillBenefits copies catalog benefit statements onto recommendations that
// arrived without any.
func (e *Engine) fillBenefits(recs []Recommendation) {
	if e.catalog == nil {
		return
	}
	for i := range recs {
		if len(recs[i].Benefits) > 0 {
			continue
		}
		if info, err := e.catalog.Supplement(recs[i].SupplementID); err == nil {
			recs[i].Benefits = append([]string(nil), info.Benefits...)
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
