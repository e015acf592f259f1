// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry via promauto at package
load time and are exposed at the /metrics endpoint in Prometheus text format.

# Available Metrics

Scoring:
  - vitarank_scoring_duration_seconds: Score pipeline latency (histogram)
    Labels: strategy
  - vitarank_scoring_requests_total: Scoring requests (counter)
    Labels: strategy
  - vitarank_decision_quality: Quality of the most recent scoring decision (gauge)
  - vitarank_learning_gaps_total: Scoring passes that fell back for lack of
    learned signal (counter)

Learning:
  - vitarank_feedback_submitted_total: Accepted feedback submissions (counter)
  - vitarank_training_runs_total: Completed training runs (counter)
    Labels: kind (full, incremental)
  - vitarank_training_rejected_total: Training requests rejected because a
    run was already in progress (counter)
  - vitarank_model_accuracy: Accuracy of the active model (gauge)
  - vitarank_learning_records: Learning records currently retained (gauge)
  - vitarank_data_quality: Corpus quality score from the last assessment (gauge)
  - vitarank_retention_trimmed_total: Records removed by retention
    enforcement (counter)

HTTP:
  - vitarank_api_requests_total: HTTP requests (counter)
    Labels: method, endpoint, status
  - vitarank_api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint

Store:
  - vitarank_store_operation_duration_seconds: Badger operation latency (histogram)
    Labels: operation
  - vitarank_store_operation_errors_total: Failed store operations (counter)
    Labels: operation

# Cardinality

Endpoint labels use the chi route pattern (for example /api/v1/catalog/{id})
rather than the raw request path, so path parameters never create new series.
Strategy and operation labels are limited to predefined constants.

# Prometheus Configuration

Example prometheus.yml scrape config:

	scrape_configs:
	  - job_name: 'vitarank'
	    static_configs:
	      - targets: ['localhost:8080']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

Example PromQL queries:

	# Scoring request rate
	rate(vitarank_scoring_requests_total[5m])

	# HTTP p95 latency
	histogram_quantile(0.95, rate(vitarank_api_request_duration_seconds_bucket[5m]))

	# Share of scoring passes falling back to rule-based output
	rate(vitarank_learning_gaps_total[5m]) / rate(vitarank_scoring_requests_total[5m])

# Thread Safety

All recording functions are safe for concurrent use. The Prometheus client
library handles synchronization internally.
*/
package metrics
