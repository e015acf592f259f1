// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package engine

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vitarank/vitarank/internal/metrics"
)

// ModelManager owns the versioned aggregate model state and governs
// retraining. The "training" here is a bounded random walk over the
// accuracy estimate plus deterministic aggregation, not numerical
// optimization; it emulates a learning system's lifecycle for reporting.
//
// State mutation is serialized under a single writer. A training request
// made while a run is in progress is rejected with ErrTrainingInProgress
// rather than queued.
type ModelManager struct {
	cfg    TrainingConfig
	store  Store
	logger zerolog.Logger

	// trainMu serializes training runs. TryLock rejects concurrent runs.
	trainMu sync.Mutex

	// stateMu guards the cached state for readers.
	stateMu sync.RWMutex
	state   *ModelState

	// rng supplies the accuracy walk; pluggable so tests can pin it.
	rngMu sync.Mutex
	rng   func() float64
}

// NewModelManager creates a model manager backed by the given store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewModelManager(cfg TrainingConfig, store Store, seed int64, logger zerolog.Logger) *ModelManager {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxAccuracy <= 0 {
		cfg.MaxAccuracy = 0.98
	}
	if cfg.AccuracyJitter <= 0 {
		cfg.AccuracyJitter = 0.03
	}
	if cfg.LearningRateDecay <= 0 {
		cfg.LearningRateDecay = 0.95
	}
	if cfg.InitialAccuracy <= 0 {
		cfg.InitialAccuracy = 0.7
	}
	if cfg.InitialLearningRate <= 0 {
		cfg.InitialLearningRate = 0.01
	}
	if cfg.MaxHistoryEntries <= 0 {
		cfg.MaxHistoryEntries = 50
	}
	if seed == 0 {
		seed = 42
	}

	src := rand.New(rand.NewSource(seed)) //nolint:gosec // simulated accuracy walk, not security sensitive
	return &ModelManager{
		cfg:    cfg,
		store:  store,
		logger: logger.With().Str("component", "model").Logger(),
		rng:    src.Float64,
	}
}

// SetRand replaces the random source. Tests substitute a deterministic
// stub here.
func (m *ModelManager) SetRand(fn func() float64) {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	m.rng = fn
}

// State returns a copy of the current model state, loading it from the
// store (or initializing a fresh model) on first access. Scoring requests
// read this for reporting only and never block on the training lock.
func (m *ModelManager) State(ctx context.Context) (*ModelState, error) {
	m.stateMu.RLock()
	if m.state != nil {
		defer m.stateMu.RUnlock()
		return m.state.Clone(), nil
	}
	m.stateMu.RUnlock()

	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if m.state == nil {
		st, err := m.store.ModelState(ctx)
		if err != nil {
			return nil, fmt.Errorf("load model state: %w", err)
		}
		if st == nil {
			st = m.freshState()
		}
		m.state = st
	}
	return m.state.Clone(), nil
}

// RecordTrainingRun executes one training run and persists the updated
// state. Full runs bump the minor version, increment the epoch counter,
// and decay the learning rate; incremental runs bump only the patch
// component and leave hyperparameters unchanged.
func (m *ModelManager) RecordTrainingRun(ctx context.Context, full bool, recordCount int) (*ModelState, error) {
	if !m.trainMu.TryLock() {
		metrics.TrainingRejected.Inc()
		return nil, ErrTrainingInProgress
	}
	defer m.trainMu.Unlock()

	start := time.Now()

	current, err := m.State(ctx)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	next.Accuracy = m.nextAccuracy(current.Accuracy, full)
	next.LastTrainedAt = start

	if full {
		next.Version = bumpVersion(current.Version, true)
		next.Hyperparameters.Epochs++
		next.Hyperparameters.LearningRate *= m.cfg.LearningRateDecay
	} else {
		next.Version = bumpVersion(current.Version, false)
	}

	next.History = append(next.History, TrainingHistoryEntry{
		Date:        start,
		Duration:    time.Since(start),
		RecordCount: recordCount,
		Accuracy:    next.Accuracy,
		Full:        full,
	})
	if len(next.History) > m.cfg.MaxHistoryEntries {
		next.History = next.History[len(next.History)-m.cfg.MaxHistoryEntries:]
	}

	if err := m.store.SaveModelState(ctx, next); err != nil {
		return nil, fmt.Errorf("persist model state: %w", err)
	}

	m.stateMu.Lock()
	m.state = next
	m.stateMu.Unlock()

	metrics.RecordTrainingRun(full, next.Accuracy)

	m.logger.Info().
		Bool("full", full).
		Str("version", next.Version).
		Float64("accuracy", next.Accuracy).
		Int("records", recordCount).
		Msg("training run recorded")

	return next.Clone(), nil
}

// BatchSize returns the record increment that triggers incremental runs.
func (m *ModelManager) BatchSize() int {
	return m.cfg.BatchSize
}

// nextAccuracy advances the bounded random walk. Incremental runs jitter in
// both directions within the configured bound; full retrains drift upward.
func (m *ModelManager) nextAccuracy(current float64, full bool) float64 {
	m.rngMu.Lock()
	r := m.rng()
	m.rngMu.Unlock()

	var delta float64
	if full {
		delta = r * m.cfg.AccuracyJitter
	} else {
		delta = (r*2 - 1) * m.cfg.AccuracyJitter
	}

	next := current + delta
	if next > m.cfg.MaxAccuracy {
		next = m.cfg.MaxAccuracy
	}
	if next < 0 {
		next = 0
	}
	return next
}

func (m *ModelManager) freshState() *ModelState {
	return &ModelState{
		Version:  "1.0.0",
		Accuracy: m.cfg.InitialAccuracy,
		Hyperparameters: Hyperparameters{
			LearningRate: m.cfg.InitialLearningRate,
			BatchSize:    m.cfg.BatchSize,
		},
	}
}

// bumpVersion increments a semantic version string: minor (with patch
// reset) for full retrains, patch for incremental runs. Unparseable
// versions restart at 1.0.0.
func bumpVersion(version string, full bool) string {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) != 3 {
		return "1.0.0"
	}

	major, err1 := strconv.Atoi(parts[0])
	minor, err2 := strconv.Atoi(parts[1])
	patch, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return "1.0.0"
	}

	if full {
		minor++
		patch = 0
	} else {
		patch++
	}
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}
