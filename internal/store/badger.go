// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

// Package store persists the learning corpus, feedback log, learning-gap
// audit entries, and model state in an embedded BadgerDB key-value store.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vitarank/vitarank/internal/engine"
	"github.com/vitarank/vitarank/internal/metrics"
)

// Key prefixes for BadgerDB storage. Timestamped prefixes keep keys in
// chronological order so retention can trim oldest-first by iteration.
const (
	recordKeyPrefix   = "record:"
	feedbackKeyPrefix = "feedback:"
	gapKeyPrefix      = "gap:"
	modelStateKey     = "model:state"
	pendingCounterKey = "counter:pending_records"
)

// ErrRecordNotFound is returned when feedback targets an unknown record.
var ErrRecordNotFound = errors.New("learning record not found")

// Config controls where and how the store opens its database.
type Config struct {
	// Path is the on-disk database directory. Ignored when InMemory is set.
	Path string `json:"path" koanf:"path"`

	// InMemory runs the database without persistence. Used in tests and
	// ephemeral deployments.
	InMemory bool `json:"in_memory" koanf:"in_memory"`
}

// BadgerStore implements engine.Store over BadgerDB.
type BadgerStore struct {
	db        *badger.DB
	retention engine.RetentionConfig
	logger    zerolog.Logger
}

// Open opens (or creates) the database and returns a ready store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, retention engine.RetentionConfig, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}

	return &BadgerStore{
		db:        db,
		retention: retention,
		logger:    logger.With().Str("component", "store").Logger(),
	}, nil
}

// NewWithDB wraps an already-open database. Tests use this with an
// in-memory instance they manage themselves.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWithDB(db *badger.DB, retention engine.RetentionConfig, logger zerolog.Logger) *BadgerStore {
	return &BadgerStore{
		db:        db,
		retention: retention,
		logger:    logger.With().Str("component", "store").Logger(),
	}
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// recordKey builds a chronologically ordered record key. The nanosecond
// timestamp leads so prefix iteration yields oldest entries first; the ID
// suffix keeps keys unique at equal timestamps.
func recordKey(createdAt time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", recordKeyPrefix, createdAt.UnixNano(), id))
}

func timestampedKey(prefix string, at time.Time) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", prefix, at.UnixNano(), uuid.NewString()))
}

// LearningRecords returns the corpus oldest-first. Records that fail
// structural validation are skipped with a warning; one corrupt entry must
// not take scoring down.
func (s *BadgerStore) LearningRecords(ctx context.Context) ([]engine.LearningRecord, error) {
	start := time.Now()
	var out []engine.LearningRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var rec engine.LearningRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					s.logger.Warn().Err(err).Str("key", string(item.Key())).Msg("skipping undecodable learning record")
					return nil
				}
				if err := rec.Validate(); err != nil {
					s.logger.Warn().Err(err).Str("record_id", rec.ID).Msg("skipping malformed learning record")
					return nil
				}
				out = append(out, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	metrics.RecordStoreOp("learning_records", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("read learning records: %w", err)
	}
	return out, nil
}

// CountLearningRecords counts corpus entries without decoding values.
func (s *BadgerStore) CountLearningRecords(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count learning records: %w", err)
	}
	return count, nil
}

// AppendLearningRecord validates and stores a record, then trims the
// corpus to its retention cap.
func (s *BadgerStore) AppendLearningRecord(ctx context.Context, rec *engine.LearningRecord) error {
	start := time.Now()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal learning record: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec.CreatedAt, rec.ID), data)
	})
	metrics.RecordStoreOp("append_learning_record", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("append learning record: %w", err)
	}

	return s.trimPrefix(recordKeyPrefix, s.retention.MaxLearningRecords, "learning_record")
}

// AttachFeedback appends a feedback entry to the record with the given ID.
func (s *BadgerStore) AttachFeedback(ctx context.Context, recordID string, fb engine.FeedbackEntry) error {
	start := time.Now()
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var rec engine.LearningRecord
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil || rec.ID != recordID {
				continue
			}

			rec.Feedback = append(rec.Feedback, fb)
			data, err := json.Marshal(&rec)
			if err != nil {
				return fmt.Errorf("marshal learning record: %w", err)
			}
			return txn.Set(item.KeyCopy(nil), data)
		}
		return ErrRecordNotFound
	})
	metrics.RecordStoreOp("attach_feedback", time.Since(start), err)
	return err
}

// AppendFeedbackLog adds an entry to the feedback-only log and trims it to
// its retention cap.
func (s *BadgerStore) AppendFeedbackLog(ctx context.Context, fb engine.FeedbackEntry) error {
	start := time.Now()
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now()
	}
	data, err := json.Marshal(&fb)
	if err != nil {
		return fmt.Errorf("marshal feedback entry: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(timestampedKey(feedbackKeyPrefix, fb.CreatedAt), data)
	})
	metrics.RecordStoreOp("append_feedback", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("append feedback entry: %w", err)
	}

	return s.trimPrefix(feedbackKeyPrefix, s.retention.MaxFeedbackEntries, "feedback")
}

// FeedbackLog returns the retained feedback entries, oldest first.
func (s *BadgerStore) FeedbackLog(ctx context.Context) ([]engine.FeedbackEntry, error) {
	var out []engine.FeedbackEntry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(feedbackKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var fb engine.FeedbackEntry
				if err := json.Unmarshal(val, &fb); err != nil {
					s.logger.Warn().Err(err).Str("key", string(item.Key())).Msg("skipping undecodable feedback entry")
					return nil
				}
				out = append(out, fb)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read feedback log: %w", err)
	}
	return out, nil
}

// AppendGapEntry adds a learning-gap audit entry and trims the log.
func (s *BadgerStore) AppendGapEntry(ctx context.Context, e engine.GapEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	data, err := json.Marshal(&e)
	if err != nil {
		return fmt.Errorf("marshal gap entry: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(timestampedKey(gapKeyPrefix, e.CreatedAt), data)
	})
	if err != nil {
		return fmt.Errorf("append gap entry: %w", err)
	}

	return s.trimPrefix(gapKeyPrefix, s.retention.MaxGapEntries, "gap")
}

// GapEntries returns the retained learning-gap entries, oldest first.
func (s *BadgerStore) GapEntries(ctx context.Context) ([]engine.GapEntry, error) {
	var out []engine.GapEntry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(gapKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var e engine.GapEntry
				if err := json.Unmarshal(val, &e); err != nil {
					s.logger.Warn().Err(err).Str("key", string(item.Key())).Msg("skipping undecodable gap entry")
					return nil
				}
				out = append(out, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read gap entries: %w", err)
	}
	return out, nil
}

// ModelState returns the persisted model state, or nil if none exists.
func (s *BadgerStore) ModelState(ctx context.Context) (*engine.ModelState, error) {
	var st *engine.ModelState
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(modelStateKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decoded engine.ModelState
			if err := json.Unmarshal(val, &decoded); err != nil {
				return fmt.Errorf("unmarshal model state: %w", err)
			}
			st = &decoded
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read model state: %w", err)
	}
	return st, nil
}

// SaveModelState persists the model state.
func (s *BadgerStore) SaveModelState(ctx context.Context, st *engine.ModelState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal model state: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(modelStateKey), data)
	})
	if err != nil {
		return fmt.Errorf("save model state: %w", err)
	}
	return nil
}

// counterConflictRetries bounds read-modify-write retries on the pending
// counter when concurrent feedback writers collide.
const counterConflictRetries = 5

// IncrementPendingRecords bumps the records-since-training counter.
// Concurrent increments can conflict at commit; the transaction is retried
// so every accepted feedback counts toward the training trigger.
func (s *BadgerStore) IncrementPendingRecords(ctx context.Context) (int, error) {
	var next int
	var err error
	for attempt := 0; attempt < counterConflictRetries; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			current := 0
			item, err := txn.Get([]byte(pendingCounterKey))
			if err == nil {
				err = item.Value(func(val []byte) error {
					current, _ = strconv.Atoi(string(val))
					return nil
				})
				if err != nil {
					return err
				}
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			next = current + 1
			return txn.Set([]byte(pendingCounterKey), []byte(strconv.Itoa(next)))
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return 0, fmt.Errorf("increment pending counter: %w", err)
	}
	return next, nil
}

// ResetPendingRecords zeroes the records-since-training counter.
func (s *BadgerStore) ResetPendingRecords(ctx context.Context) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(pendingCounterKey), []byte("0"))
	})
	if err != nil {
		return fmt.Errorf("reset pending counter: %w", err)
	}
	return nil
}

// EnforceRetention trims every bounded log to its cap. The retention
// janitor calls this periodically; appends also trim opportunistically, so
// this is a safety net after config changes lower a cap.
func (s *BadgerStore) EnforceRetention(ctx context.Context) error {
	if err := s.trimPrefix(recordKeyPrefix, s.retention.MaxLearningRecords, "learning_record"); err != nil {
		return err
	}
	if err := s.trimPrefix(feedbackKeyPrefix, s.retention.MaxFeedbackEntries, "feedback"); err != nil {
		return err
	}
	return s.trimPrefix(gapKeyPrefix, s.retention.MaxGapEntries, "gap")
}

// trimPrefix deletes oldest entries under a prefix until at most max
// remain. Keys are timestamp-ordered, so iteration order is age order.
func (s *BadgerStore) trimPrefix(prefix string, max int, kind string) error {
	if max <= 0 {
		return nil
	}

	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s keys: %w", kind, err)
	}

	excess := len(keys) - max
	if excess <= 0 {
		return nil
	}

	sort.Slice(keys, func(i, j int) bool { return string(keys[i]) < string(keys[j]) })

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys[:excess] {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("trim %s entries: %w", kind, err)
	}

	metrics.RetentionTrimmed.WithLabelValues(kind).Add(float64(excess))
	s.logger.Debug().Str("kind", kind).Int("trimmed", excess).Msg("retention trim")
	return nil
}
