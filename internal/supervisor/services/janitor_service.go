// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RetentionEnforcer is the sweep entry point. Satisfied by
// *store.BadgerStore.
type RetentionEnforcer interface {
	EnforceRetention(ctx context.Context) error
}

// JanitorService periodically enforces the corpus retention caps. Writes
// already trim opportunistically; the sweep catches anything that slipped
// past, such as caps lowered by a config change.
type JanitorService struct {
	store    RetentionEnforcer
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewJanitorService creates a janitor sweeping every interval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewJanitorService(store RetentionEnforcer, interval time.Duration, logger zerolog.Logger) *JanitorService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &JanitorService{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("component", "janitor-service").Logger(),
		name:     "retention-janitor",
	}
}

// Serve implements suture.Service. One sweep runs immediately on start so
// a restart after a config change applies new caps without waiting a full
// interval.
func (s *JanitorService) Serve(ctx context.Context) error {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *JanitorService) sweep(ctx context.Context) {
	if err := s.store.EnforceRetention(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("retention sweep failed")
		return
	}
	s.logger.Debug().Msg("retention sweep complete")
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *JanitorService) String() string {
	return s.name
}
