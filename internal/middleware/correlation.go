// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package middleware

import (
	"net/http"

	"github.com/vitarank/vitarank/internal/logging"
)

// correlationHeader carries the correlation ID between services.
const correlationHeader = "X-Correlation-ID"

// CorrelationID attaches a correlation ID to every request. An incoming
// X-Correlation-ID header is honored so traces span upstream proxies;
// otherwise a fresh ID is generated. The ID is echoed in the response
// header and stored in the request context for structured logging.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(correlationHeader)
		if correlationID == "" {
			correlationID = logging.GenerateCorrelationID()
		}

		w.Header().Set(correlationHeader, correlationID)
		ctx := logging.ContextWithCorrelationID(r.Context(), correlationID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
