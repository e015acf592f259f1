// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vitarank/vitarank/internal/cache"
	"github.com/vitarank/vitarank/internal/catalog"
	"github.com/vitarank/vitarank/internal/engine"
	"github.com/vitarank/vitarank/internal/logging"
	"github.com/vitarank/vitarank/internal/middleware"
	"github.com/vitarank/vitarank/internal/store"
)

// neutralBaseScore is the match score assigned when the caller supplies no
// base recommendation list and one is synthesized from the catalog.
const neutralBaseScore = 50

// Cache keys for corpus analytics responses.
const (
	cacheKeyQuality      = "analytics:quality"
	cacheKeyCorrelations = "analytics:correlations"
	cacheKeyGaps         = "analytics:gaps"
)

// analyticsCacheTTL bounds how stale an analytics response can be when the
// invalidation path is missed.
const analyticsCacheTTL = 5 * time.Minute

// Handler contains dependencies for API handlers.
type Handler struct {
	engine    *engine.Engine
	store     engine.Store
	catalog   *catalog.Catalog
	cache     *cache.Cache
	perfMon   *middleware.PerformanceMonitor
	startTime time.Time
	version   string
}

// NewHandler creates an API handler. The performance monitor keeps a
// sliding window of the last 1000 requests for the health endpoint, and
// analytics responses are cached until feedback or training changes the
// corpus.
func NewHandler(eng *engine.Engine, st engine.Store, cat *catalog.Catalog, version string) *Handler {
	return &Handler{
		engine:    eng,
		store:     st,
		catalog:   cat,
		cache:     cache.New(analyticsCacheTTL),
		perfMon:   middleware.NewPerformanceMonitor(1000),
		startTime: time.Now(),
		version:   version,
	}
}

// HealthLive is the liveness probe. It answers as long as the process can
// serve requests, without touching the store.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "ok"})
}

// healthStatus is the full health report body.
type healthStatus struct {
	Status        string                     `json:"status"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	CorpusSize    int                        `json:"corpus_size"`
	ModelVersion  string                     `json:"model_version,omitempty"`
	ModelAccuracy float64                    `json:"model_accuracy,omitempty"`
	Endpoints     []middleware.EndpointStats `json:"endpoints,omitempty"`
}

// Health reports store reachability, corpus size, model state, and
// per-endpoint latency statistics.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := healthStatus{
		Status:        "healthy",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Endpoints:     h.perfMon.Stats(),
	}

	count, err := h.store.CountLearningRecords(r.Context())
	if err != nil {
		logging.Warn().Err(err).Msg("health check: store unreachable")
		status.Status = "degraded"
	} else {
		status.CorpusSize = count
	}

	if state, err := h.engine.ModelState(r.Context()); err == nil {
		status.ModelVersion = state.Version
		status.ModelAccuracy = state.Accuracy
	}

	NewResponseWriter(w, r).Success(status)
}

// Score runs the scoring pipeline for a submitted profile.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	base := make([]engine.Recommendation, 0, len(req.Recommendations))
	for _, b := range req.Recommendations {
		base = append(base, engine.Recommendation{
			SupplementID: b.SupplementID,
			MatchScore:   b.MatchScore,
			Priority:     b.Priority,
			Benefits:     b.Benefits,
		})
	}
	if len(base) == 0 {
		base = h.neutralBase()
	}

	result, err := h.engine.Score(r.Context(), &req.Profile, base)
	if err != nil {
		NewResponseWriter(w, r).InternalError("Scoring failed")
		return
	}

	NewResponseWriter(w, r).Success(result)
}

// neutralBase builds a catalog-wide base list with neutral scores, used
// when the caller supplies no upstream base recommendations.
func (h *Handler) neutralBase() []engine.Recommendation {
	ids := h.catalog.IDs()
	base := make([]engine.Recommendation, 0, len(ids))
	for i, id := range ids {
		base = append(base, engine.Recommendation{
			SupplementID: id,
			MatchScore:   neutralBaseScore,
			Priority:     i + 1,
		})
	}
	return base
}

// Feedback records a reported outcome for a prior recommendation.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackSubmission
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.engine.SubmitFeedback(r.Context(), &engine.FeedbackRequest{
		RecordID:       req.RecordID,
		Profile:        req.Profile,
		Shown:          req.Shown,
		SupplementID:   req.SupplementID,
		Helpful:        req.Helpful,
		Rating:         req.Rating,
		PurchaseIntent: req.PurchaseIntent,
		Comment:        req.Comment,
	})
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			NewResponseWriter(w, r).NotFound("Learning record not found: " + req.RecordID)
			return
		}
		NewResponseWriter(w, r).StoreError(err)
		return
	}

	h.cache.Clear()
	NewResponseWriter(w, r).Created(map[string]string{"status": "recorded"})
}

// Model returns the current model state including training history.
func (h *Handler) Model(w http.ResponseWriter, r *http.Request) {
	state, err := h.engine.ModelState(r.Context())
	if err != nil {
		NewResponseWriter(w, r).StoreError(err)
		return
	}
	NewResponseWriter(w, r).Success(state)
}

// Train triggers a training run. A run already in progress yields 409.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	var req TrainRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	state, err := h.engine.Train(r.Context(), req.Full)
	if err != nil {
		if errors.Is(err, engine.ErrTrainingInProgress) {
			NewResponseWriter(w, r).Conflict("A training run is already in progress")
			return
		}
		NewResponseWriter(w, r).StoreError(err)
		return
	}

	h.cache.Clear()
	NewResponseWriter(w, r).Success(state)
}

// Quality returns the current data-quality report for the learning corpus.
func (h *Handler) Quality(w http.ResponseWriter, r *http.Request) {
	if cached, found := h.cache.Get(cacheKeyQuality); found {
		NewResponseWriter(w, r).Success(cached)
		return
	}

	report, err := h.engine.DataQualityReport(r.Context())
	if err != nil {
		NewResponseWriter(w, r).StoreError(err)
		return
	}

	h.cache.Set(cacheKeyQuality, report)
	NewResponseWriter(w, r).Success(report)
}

// Correlations returns age-bucket and symptom correlation rankings derived
// from accumulated feedback.
func (h *Handler) Correlations(w http.ResponseWriter, r *http.Request) {
	if cached, found := h.cache.Get(cacheKeyCorrelations); found {
		NewResponseWriter(w, r).Success(cached)
		return
	}

	buckets, err := h.engine.PatternCorrelations(r.Context())
	if err != nil {
		NewResponseWriter(w, r).StoreError(err)
		return
	}

	h.cache.Set(cacheKeyCorrelations, buckets)
	NewResponseWriter(w, r).Success(buckets)
}

// Gaps returns the learning-gap audit log.
func (h *Handler) Gaps(w http.ResponseWriter, r *http.Request) {
	if cached, found := h.cache.Get(cacheKeyGaps); found {
		NewResponseWriter(w, r).Success(cached)
		return
	}

	entries, err := h.engine.GapEntries(r.Context())
	if err != nil {
		NewResponseWriter(w, r).StoreError(err)
		return
	}

	h.cache.Set(cacheKeyGaps, entries)
	NewResponseWriter(w, r).Success(entries)
}

// CatalogList returns every supplement in the reference catalog.
func (h *Handler) CatalogList(w http.ResponseWriter, r *http.Request) {
	ids := h.catalog.IDs()
	items := make([]catalog.SupplementInfo, 0, len(ids))
	for _, id := range ids {
		if s, err := h.catalog.Supplement(id); err == nil {
			items = append(items, s)
		}
	}
	NewResponseWriter(w, r).Success(items)
}

// CatalogGet returns one supplement by ID.
func (h *Handler) CatalogGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s, err := h.catalog.Supplement(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			NewResponseWriter(w, r).NotFound("Supplement not found: " + id)
			return
		}
		NewResponseWriter(w, r).InternalError("Catalog lookup failed")
		return
	}

	NewResponseWriter(w, r).Success(s)
}
