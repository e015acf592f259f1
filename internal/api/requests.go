// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/vitarank/vitarank/internal/engine"
	"github.com/vitarank/vitarank/internal/validation"
)

// maxRequestBody bounds request body size to keep malformed or abusive
// payloads from exhausting memory.
const maxRequestBody = 1 << 20 // 1 MiB

// ScoreRequest is the request body for POST /api/v1/score. The base
// recommendation list is optional; when omitted, a neutral base is
// synthesized from the full catalog.
type ScoreRequest struct {
	Profile         engine.UserProfile   `json:"profile"`
	Recommendations []BaseRecommendation `json:"recommendations" validate:"omitempty,dive"`
}

// BaseRecommendation is one entry of the caller-supplied base list,
// typically produced by an upstream quiz rule engine.
type BaseRecommendation struct {
	SupplementID string   `json:"supplement_id" validate:"required,supplement_id"`
	MatchScore   float64  `json:"match_score" validate:"gte=0,lte=100"`
	Priority     int      `json:"priority" validate:"gte=0"`
	Benefits     []string `json:"benefits,omitempty"`
}

// FeedbackSubmission is the request body for POST /api/v1/feedback.
// Rating and purchase intent are deliberately unvalidated here; the engine
// clamps them to their documented ranges instead of rejecting the outcome.
type FeedbackSubmission struct {
	RecordID       string                       `json:"record_id,omitempty"`
	Profile        *engine.UserProfile          `json:"profile,omitempty"`
	Shown          []engine.ShownRecommendation `json:"shown,omitempty"`
	SupplementID   string                       `json:"supplement_id" validate:"required,supplement_id"`
	Helpful        bool                         `json:"helpful"`
	Rating         int                          `json:"rating"`
	PurchaseIntent int                          `json:"purchase_intent"`
	Comment        string                       `json:"comment,omitempty" validate:"max=2000"`
}

// TrainRequest is the request body for POST /api/v1/train.
type TrainRequest struct {
	Full bool `json:"full"`
}

// decodeJSON reads and decodes a bounded JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// decodeAndValidate decodes the body and runs struct validation, writing
// the error response itself on failure. Returns false if the request was
// rejected.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	rw := NewResponseWriter(w, r)

	if err := decodeJSON(w, r, dst); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return false
	}
	return true
}
