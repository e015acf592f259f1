// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package engine

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// mockStore is an in-memory Store for engine tests.
type mockStore struct {
	mu       sync.Mutex
	records  []LearningRecord
	feedback []FeedbackEntry
	gaps     []GapEntry
	state    *ModelState
	pending  int

	recordsErr error
}

func (m *mockStore) LearningRecords(ctx context.Context) ([]LearningRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordsErr != nil {
		return nil, m.recordsErr
	}
	out := make([]LearningRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *mockStore) CountLearningRecords(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

func (m *mockStore) AppendLearningRecord(ctx context.Context, rec *LearningRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	return nil
}

func (m *mockStore) AttachFeedback(ctx context.Context, recordID string, fb FeedbackEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == recordID {
			m.records[i].Feedback = append(m.records[i].Feedback, fb)
			return nil
		}
	}
	return errors.New("record not found")
}

func (m *mockStore) AppendFeedbackLog(ctx context.Context, fb FeedbackEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = append(m.feedback, fb)
	return nil
}

func (m *mockStore) AppendGapEntry(ctx context.Context, e GapEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gaps = append(m.gaps, e)
	return nil
}

func (m *mockStore) GapEntries(ctx context.Context) ([]GapEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GapEntry, len(m.gaps))
	copy(out, m.gaps)
	return out, nil
}

func (m *mockStore) ModelState(ctx context.Context) (*ModelState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	return m.state.Clone(), nil
}

func (m *mockStore) SaveModelState(ctx context.Context, st *ModelState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = st.Clone()
	return nil
}

func (m *mockStore) IncrementPendingRecords(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending++
	return m.pending, nil
}

func (m *mockStore) ResetPendingRecords(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = 0
	return nil
}

func newTestModel(t *testing.T, store Store) *ModelManager {
	t.Helper()
	return NewModelManager(DefaultConfig().Training, store, 42, zerolog.Nop())
}

func TestModelManager_FreshState(t *testing.T) {
	m := newTestModel(t, &mockStore{})

	st, err := m.State(context.Background())
	if err != nil {
		t.Fatalf("initial state: %v", err)
	}
	if st.Version != "1.0.0" {
		t.Errorf("expected fresh version 1.0.0, got %s", st.Version)
	}
	if st.Accuracy != 0.7 {
		t.Errorf("expected initial accuracy 0.7, got %f", st.Accuracy)
	}
	if st.Hyperparameters.LearningRate != 0.01 {
		t.Errorf("expected initial learning rate 0.01, got %f", st.Hyperparameters.LearningRate)
	}
}

func TestModelManager_LoadsPersistedState(t *testing.T) {
	store := &mockStore{state: &ModelState{
		Version:  "2.3.1",
		Accuracy: 0.85,
		Hyperparameters: Hyperparameters{
			LearningRate: 0.008,
			Epochs:       3,
			BatchSize:    20,
		},
	}}
	m := newTestModel(t, store)

	st, err := m.State(context.Background())
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if st.Version != "2.3.1" || st.Accuracy != 0.85 {
		t.Errorf("expected persisted state, got %+v", st)
	}
}

func TestModelManager_IncrementalRun(t *testing.T) {
	store := &mockStore{}
	m := newTestModel(t, store)
	m.SetRand(func() float64 { return 1.0 }) // maximum upward jitter

	st, err := m.RecordTrainingRun(context.Background(), false, 40)
	if err != nil {
		t.Fatalf("incremental run: %v", err)
	}

	if st.Version != "1.0.1" {
		t.Errorf("expected patch bump to 1.0.1, got %s", st.Version)
	}
	if st.Hyperparameters.Epochs != 0 {
		t.Errorf("incremental run must not advance epochs, got %d", st.Hyperparameters.Epochs)
	}
	if st.Hyperparameters.LearningRate != 0.01 {
		t.Errorf("incremental run must not decay the learning rate, got %f", st.Hyperparameters.LearningRate)
	}

	// r=1.0 maps to +jitter for an incremental run.
	if math.Abs(st.Accuracy-0.73) > 1e-9 {
		t.Errorf("expected accuracy 0.73, got %f", st.Accuracy)
	}

	if len(st.History) != 1 {
		t.Fatalf("expected one history entry, got %d", len(st.History))
	}
	if st.History[0].RecordCount != 40 || st.History[0].Full {
		t.Errorf("unexpected history entry %+v", st.History[0])
	}

	if store.state == nil || store.state.Version != "1.0.1" {
		t.Errorf("expected state persisted to the store")
	}
}

func TestModelManager_FullRetrain(t *testing.T) {
	store := &mockStore{}
	m := newTestModel(t, store)
	m.SetRand(func() float64 { return 0.5 })

	st, err := m.RecordTrainingRun(context.Background(), true, 100)
	if err != nil {
		t.Fatalf("full retrain: %v", err)
	}

	if st.Version != "1.1.0" {
		t.Errorf("expected minor bump to 1.1.0, got %s", st.Version)
	}
	if st.Hyperparameters.Epochs != 1 {
		t.Errorf("expected epoch 1, got %d", st.Hyperparameters.Epochs)
	}
	if math.Abs(st.Hyperparameters.LearningRate-0.0095) > 1e-12 {
		t.Errorf("expected decayed learning rate 0.0095, got %f", st.Hyperparameters.LearningRate)
	}
	if st.Accuracy <= 0.7 {
		t.Errorf("full retrain must drift accuracy upward, got %f", st.Accuracy)
	}
}

func TestModelManager_AccuracyWalkBounds(t *testing.T) {
	store := &mockStore{}
	m := newTestModel(t, store)

	prev := 0.7
	for i := 0; i < 50; i++ {
		st, err := m.RecordTrainingRun(context.Background(), false, 10)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		step := math.Abs(st.Accuracy - prev)
		if step > 0.03+1e-9 {
			t.Fatalf("run %d: accuracy moved %f, beyond the 0.03 bound", i, step)
		}
		if st.Accuracy > 0.98 {
			t.Fatalf("run %d: accuracy %f exceeds ceiling", i, st.Accuracy)
		}
		prev = st.Accuracy
	}
}

func TestModelManager_VersionBumps(t *testing.T) {
	store := &mockStore{}
	m := newTestModel(t, store)
	ctx := context.Background()

	wantVersions := []struct {
		full bool
		want string
	}{
		{false, "1.0.1"},
		{false, "1.0.2"},
		{true, "1.1.0"},
		{false, "1.1.1"},
		{true, "1.2.0"},
	}

	for i, step := range wantVersions {
		st, err := m.RecordTrainingRun(ctx, step.full, 10)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if st.Version != step.want {
			t.Errorf("run %d: expected version %s, got %s", i, step.want, st.Version)
		}
	}
}

func TestModelManager_RejectsConcurrentTraining(t *testing.T) {
	store := &mockStore{}
	m := newTestModel(t, store)
	ctx := context.Background()

	hold := make(chan struct{})
	release := make(chan struct{})
	m.SetRand(func() float64 {
		close(hold)
		<-release
		return 0.5
	})

	done := make(chan error, 1)
	go func() {
		_, err := m.RecordTrainingRun(ctx, true, 10)
		done <- err
	}()

	<-hold
	if _, err := m.RecordTrainingRun(ctx, false, 10); !errors.Is(err, ErrTrainingInProgress) {
		t.Errorf("expected ErrTrainingInProgress while a run holds the lock, got %v", err)
	}
	close(release)

	if err := <-done; err != nil {
		t.Errorf("first run failed: %v", err)
	}
}

func TestModelManager_HistoryTrimmed(t *testing.T) {
	cfg := DefaultConfig().Training
	cfg.MaxHistoryEntries = 5
	store := &mockStore{}
	m := NewModelManager(cfg, store, 42, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		if _, err := m.RecordTrainingRun(ctx, false, 10); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	st, err := m.State(ctx)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if len(st.History) != 5 {
		t.Errorf("expected history trimmed to 5 entries, got %d", len(st.History))
	}
}
