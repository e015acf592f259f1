// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/vitarank/vitarank/internal/engine"
)

// pinWinter fixes the contextual season so seasonal boosts are stable
// regardless of when the test runs.
func pinWinter(h *Handler) {
	h.engine.Contextual().SetClock(func() time.Time {
		return time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
	})
}

func stressProfile() engine.UserProfile {
	return engine.UserProfile{
		Age: 35,
		Symptoms: map[string]engine.Severity{
			"stress": engine.SeverityHigh,
		},
		Goals: map[string]bool{"better-sleep": true},
	}
}

func TestScore_EmptyProfileFallsBack(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/score", ScoreRequest{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	data := envelope.Data.(map[string]interface{})
	recs := data["recommendations"].([]interface{})
	if len(recs) != 1 {
		t.Fatalf("expected single fallback recommendation, got %d", len(recs))
	}
	first := recs[0].(map[string]interface{})
	if first["supplement_id"] != "multivitamin-daily" {
		t.Errorf("fallback supplement = %v, want multivitamin-daily", first["supplement_id"])
	}
}

func TestScore_StressProfileBoostsCalming(t *testing.T) {
	srv, h := newTestServer(t)
	pinWinter(h)

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/score", ScoreRequest{
		Profile: stressProfile(),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	data := envelope.Data.(map[string]interface{})
	if data["strategy"] != string(engine.StrategyRuleBased) {
		t.Errorf("strategy = %v, want %s with empty corpus", data["strategy"], engine.StrategyRuleBased)
	}

	recs := data["recommendations"].([]interface{})
	if len(recs) == 0 {
		t.Fatal("expected non-empty recommendations")
	}
	first := recs[0].(map[string]interface{})
	if first["supplement_id"] != "ashwagandha-extract" {
		t.Errorf("top supplement = %v, want ashwagandha for stress", first["supplement_id"])
	}
}

func TestScore_SuppliedBaseIsUsed(t *testing.T) {
	srv, h := newTestServer(t)
	pinWinter(h)

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/score", ScoreRequest{
		Profile: stressProfile(),
		Recommendations: []BaseRecommendation{
			{SupplementID: "magnesium-glycinate", MatchScore: 70, Priority: 1},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	data := envelope.Data.(map[string]interface{})
	recs := data["recommendations"].([]interface{})
	if len(recs) != 1 {
		t.Fatalf("expected only the supplied base entry, got %d recommendations", len(recs))
	}
}

func TestScore_RejectsMalformedBase(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/score", ScoreRequest{
		Profile: stressProfile(),
		Recommendations: []BaseRecommendation{
			{SupplementID: "Not A Slug", MatchScore: 50},
		},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeValidationFailed {
		t.Errorf("error = %+v, want %s", envelope.Error, ErrCodeValidationFailed)
	}
}

func TestFeedback_CreatesRecord(t *testing.T) {
	srv, h := newTestServer(t)

	profile := stressProfile()
	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/feedback", FeedbackSubmission{
		Profile:      &profile,
		SupplementID: "ashwagandha-extract",
		Helpful:      true,
		Rating:       5,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %+v", resp.StatusCode, envelope.Error)
	}

	count, err := h.store.CountLearningRecords(t.Context())
	if err != nil {
		t.Fatalf("count records: %v", err)
	}
	if count != 1 {
		t.Errorf("corpus size = %d, want 1", count)
	}
}

func TestFeedback_UnknownRecordReturns404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/feedback", FeedbackSubmission{
		RecordID:     "no-such-record",
		SupplementID: "ashwagandha-extract",
		Rating:       3,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v, want %s", envelope.Error, ErrCodeNotFound)
	}
}

func TestFeedback_MissingSupplementReturns400(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/feedback", FeedbackSubmission{
		Rating: 4,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestModel_ReturnsFreshState(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/model", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	data := envelope.Data.(map[string]interface{})
	if data["version"] != "1.0.0" {
		t.Errorf("version = %v, want 1.0.0", data["version"])
	}
}

func TestTrain_FullRetrainBumpsMinorVersion(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/train", TrainRequest{Full: true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %+v", resp.StatusCode, envelope.Error)
	}

	data := envelope.Data.(map[string]interface{})
	if data["version"] != "1.1.0" {
		t.Errorf("version = %v, want 1.1.0 after full retrain", data["version"])
	}
}

func TestQuality_EmptyCorpus(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/quality", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	data := envelope.Data.(map[string]interface{})
	if data["record_count"] != float64(0) {
		t.Errorf("record_count = %v, want 0", data["record_count"])
	}
}

func TestQuality_CacheInvalidatedByFeedback(t *testing.T) {
	srv, _ := newTestServer(t)

	_, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/quality", nil)
	data := envelope.Data.(map[string]interface{})
	if data["record_count"] != float64(0) {
		t.Fatalf("initial record_count = %v, want 0", data["record_count"])
	}

	profile := stressProfile()
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/feedback", FeedbackSubmission{
		Profile:      &profile,
		SupplementID: "ashwagandha-extract",
		Helpful:      true,
		Rating:       4,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("feedback status = %d, want 201", resp.StatusCode)
	}

	_, envelope = doJSON(t, http.MethodGet, srv.URL+"/api/v1/quality", nil)
	data = envelope.Data.(map[string]interface{})
	if data["record_count"] != float64(1) {
		t.Errorf("record_count after feedback = %v, want 1", data["record_count"])
	}
}

func TestCorrelations_Succeeds(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/correlations", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !envelope.Success {
		t.Error("expected success envelope")
	}
}

func TestCatalog_ListAndGet(t *testing.T) {
	srv, h := newTestServer(t)

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/catalog", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	items := envelope.Data.([]interface{})
	if len(items) != h.catalog.Len() {
		t.Errorf("catalog list = %d items, want %d", len(items), h.catalog.Len())
	}

	resp, envelope = doJSON(t, http.MethodGet, srv.URL+"/api/v1/catalog/ashwagandha-extract", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	item := envelope.Data.(map[string]interface{})
	if item["id"] != "ashwagandha-extract" {
		t.Errorf("id = %v, want ashwagandha-extract", item["id"])
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/catalog/nonexistent-supp", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", resp.StatusCode)
	}
}
