// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitarank/vitarank/internal/middleware"
)

// Router wires handlers and middleware into the HTTP routing tree.
type Router struct {
	handler *Handler
	chimw   *ChiMiddleware
}

// NewRouter creates a router for the given handler and middleware factory.
func NewRouter(handler *Handler, chimw *ChiMiddleware) *Router {
	if chimw == nil {
		chimw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chimw: chimw}
}

// Setup builds the routing tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.CorrelationID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chimw.CORS())
	r.Use(router.handler.perfMon.Middleware)

	// Liveness probe and Prometheus scrape endpoint. Both stay outside the
	// API rate-limit groups so monitoring never competes with clients.
	r.With(router.chimw.RateLimitHealth()).Get("/healthz", router.handler.HealthLive)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chimw.RateLimitHealth())
		r.Use(SecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
	})

	// Read endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chimw.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.Compression)

		r.Post("/score", router.handler.Score)
		r.Get("/model", router.handler.Model)
		r.Get("/quality", router.handler.Quality)
		r.Get("/correlations", router.handler.Correlations)
		r.Get("/gaps", router.handler.Gaps)
		r.Get("/catalog", router.handler.CatalogList)
		r.Get("/catalog/{id}", router.handler.CatalogGet)
	})

	// Write endpoints get a stricter rate limit; feedback and training both
	// mutate the store.
	r.Route("/api/v1/feedback", func(r chi.Router) {
		r.Use(router.chimw.RateLimitWrite())
		r.Use(SecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Post("/", router.handler.Feedback)
	})
	r.Route("/api/v1/train", func(r chi.Router) {
		r.Use(router.chimw.RateLimitWrite())
		r.Use(SecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Post("/", router.handler.Train)
	})

	return r
}
