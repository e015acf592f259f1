// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package engine

import "context"

// Store is the injectable persistence port for the learning corpus, the
// feedback log, the model state, and the learning-gap audit log. The engine
// holds no long-lived corpus copy across requests; each scoring request
// reads a snapshot through this interface. Appends must be atomic with
// respect to each other but need not block concurrent reads; a reader may
// observe a slightly stale snapshot.
//
// Implemented by the badger-backed store in internal/store. Defined here so
// the scoring logic carries no storage dependency.
type Store interface {
	// LearningRecords returns a snapshot of the learning corpus, oldest
	// first. Records failing structural validation are skipped, not
	// surfaced.
	LearningRecords(ctx context.Context) ([]LearningRecord, error)

	// CountLearningRecords returns the current corpus size.
	CountLearningRecords(ctx context.Context) (int, error)

	// AppendLearningRecord adds a new record to the corpus. Retention
	// trimming may run opportunistically on write.
	AppendLearningRecord(ctx context.Context, rec *LearningRecord) error

	// AttachFeedback appends a feedback entry to an existing record.
	AttachFeedback(ctx context.Context, recordID string, fb FeedbackEntry) error

	// AppendFeedbackLog adds an entry to the feedback-only log.
	AppendFeedbackLog(ctx context.Context, fb FeedbackEntry) error

	// AppendGapEntry adds a learning-gap audit entry.
	AppendGapEntry(ctx context.Context, e GapEntry) error

	// GapEntries returns the retained learning-gap entries, oldest first.
	GapEntries(ctx context.Context) ([]GapEntry, error)

	// ModelState returns the persisted model state, or nil if none has
	// been saved yet.
	ModelState(ctx context.Context) (*ModelState, error)

	// SaveModelState persists the model state.
	SaveModelState(ctx context.Context, st *ModelState) error

	// IncrementPendingRecords bumps the records-since-training counter
	// and returns the new value.
	IncrementPendingRecords(ctx context.Context) (int, error)

	// ResetPendingRecords zeroes the records-since-training counter.
	ResetPendingRecords(ctx context.Context) error
}
