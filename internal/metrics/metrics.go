// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the recommendation engine:
// - scoring latency and strategy distribution
// - feedback intake and training lifecycle
// - learning corpus size and data quality
// - API endpoint latency and throughput
// - store operation performance

var (
	// Scoring metrics
	ScoringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vitarank_scoring_duration_seconds",
			Help:    "Duration of recommendation scoring requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ScoringRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitarank_scoring_requests_total",
			Help: "Total scoring requests by blending strategy",
		},
		[]string{"strategy"}, // "rule_based", "hybrid", "data_rich", "fallback"
	)

	DecisionQuality = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vitarank_decision_quality",
			Help: "Decision quality of the most recent scoring request",
		},
	)

	LearningGaps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vitarank_learning_gaps_total",
			Help: "Total scoring requests that fell back to rules for lack of data",
		},
	)

	// Feedback and training metrics
	FeedbackSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vitarank_feedback_submitted_total",
			Help: "Total feedback entries accepted",
		},
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitarank_training_runs_total",
			Help: "Total model training runs by kind",
		},
		[]string{"kind"}, // "full", "incremental"
	)

	TrainingRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vitarank_training_rejected_total",
			Help: "Training requests rejected because a run was in progress",
		},
	)

	ModelAccuracy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vitarank_model_accuracy",
			Help: "Accuracy of the current model version",
		},
	)

	// Corpus metrics
	CorpusSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vitarank_learning_records",
			Help: "Current number of learning records in the corpus",
		},
	)

	DataQualityOverall = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vitarank_data_quality",
			Help: "Overall data quality score of the learning corpus",
		},
	)

	RetentionTrimmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitarank_retention_trimmed_total",
			Help: "Total entries removed by the retention janitor",
		},
		[]string{"kind"}, // "learning_record", "feedback", "gap"
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitarank_api_requests_total",
			Help: "Total API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vitarank_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Store metrics
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vitarank_store_operation_duration_seconds",
			Help:    "Duration of key-value store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreOpErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitarank_store_operation_errors_total",
			Help: "Total key-value store operation errors",
		},
		[]string{"operation"},
	)
)

// RecordAPIRequest records one API request observation.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordStoreOp records one store operation observation.
func RecordStoreOp(operation string, duration time.Duration, err error) {
	StoreOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreOpErrors.WithLabelValues(operation).Inc()
	}
}

// RecordTrainingRun records a completed training run.
func RecordTrainingRun(full bool, accuracy float64) {
	kind := "incremental"
	if full {
		kind = "full"
	}
	TrainingRuns.WithLabelValues(kind).Inc()
	ModelAccuracy.Set(accuracy)
}
