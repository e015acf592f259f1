// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vitarank/vitarank/internal/engine"
)

// Trainer is the training entry point the scheduler drives. Satisfied by
// *engine.Engine.
type Trainer interface {
	Train(ctx context.Context, full bool) (*engine.ModelState, error)
}

// TrainerService runs periodic full retrains. Incremental runs are fired
// by the engine itself on every feedback batch; this service only covers
// the time-based full retrain cycle.
type TrainerService struct {
	trainer  Trainer
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewTrainerService creates a scheduler that requests a full retrain
// every interval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainerService(trainer Trainer, interval time.Duration, logger zerolog.Logger) *TrainerService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &TrainerService{
		trainer:  trainer,
		interval: interval,
		logger:   logger.With().Str("component", "trainer-service").Logger(),
		name:     "training-scheduler",
	}
}

// Serve implements suture.Service. A retrain that collides with an
// in-flight run is skipped; the next tick will retry.
func (s *TrainerService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			state, err := s.trainer.Train(ctx, true)
			switch {
			case errors.Is(err, engine.ErrTrainingInProgress):
				s.logger.Debug().Msg("full retrain skipped, training already in progress")
			case err != nil:
				s.logger.Warn().Err(err).Msg("scheduled full retrain failed")
			default:
				s.logger.Info().
					Str("model_version", state.Version).
					Float64("accuracy", state.Accuracy).
					Msg("scheduled full retrain complete")
			}
		}
	}
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *TrainerService) String() string {
	return s.name
}
