// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned by Get when the key is absent or expired.
	ErrNotFound = errors.New("cache: key not found")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("cache: store closed")
)

// Store is the key/value collaborator used for job results, run metadata
// and per-user locks. Values are opaque bytes. A zero ttl means no expiry.
//
// Usage:
//
//	var s Store = NewMemoryStore()
//	ok, err := s.SetNX(ctx, LockKey(42), []byte("1"), 300*time.Second)
//	if ok {
//	    defer s.Delete(ctx, LockKey(42))
//	}
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX stores value only when key is absent. It reports whether the
	// value was stored.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	Delete(ctx context.Context, key string) error

	// CompareAndDelete removes key only when its current value equals
	// value. It reports whether the key was removed.
	CompareAndDelete(ctx context.Context, key string, value []byte) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}

// Maintainer is implemented by stores that need periodic housekeeping.
// Maintain returns the number of entries it removed.
type Maintainer interface {
	Maintain(ctx context.Context) (int, error)
}

// Backend names a Store implementation.
type Backend string

const (
	// BackendMemory keeps entries in process memory (default, not persistent).
	BackendMemory Backend = "memory"

	// BackendBadger persists entries in BadgerDB with native TTL.
	BackendBadger Backend = "badger"
)

// Config selects and tunes the store.
type Config struct {
	Backend Backend
	Path    string

	// SyncWrites fsyncs every badger write.
	SyncWrites bool

	Breaker BreakerConfig
}

// Open creates the configured store wrapped with metrics. When the breaker
// is enabled the backend sits behind a BreakerStore.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg *Config, logger zerolog.Logger) (*InstrumentedStore, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Backend {
	case BackendBadger:
		store, err = OpenBadgerStore(cfg.Path, cfg.SyncWrites)
		if err != nil {
			return nil, err
		}
	case BackendMemory, "":
		store = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}

	logger.Info().
		Str("backend", string(cfg.Backend)).
		Str("path", cfg.Path).
		Bool("circuit_breaker", cfg.Breaker.Enabled).
		Msg("cache store opened")

	backend := string(cfg.Backend)
	if backend == "" {
		backend = string(BackendMemory)
	}
	if cfg.Breaker.Enabled {
		store = NewBreakerStore(store, cfg.Breaker, logger)
	}
	return Instrument(store, backend), nil
}

// Key prefixes shared by the API and the job worker.
const (
	resultKeyPrefix  = "recommendation:"
	lockKeyPrefix    = "training_lock:"
	lastRunKeyPrefix = "last_train:"
)

// ResultKey is the single key holding a user's job status and result.
func ResultKey(userID int64) string {
	return resultKeyPrefix + strconv.FormatInt(userID, 10)
}

// LockKey is the per-user mutual exclusion key for job runs.
func LockKey(userID int64) string {
	return lockKeyPrefix + strconv.FormatInt(userID, 10)
}

// LastRunKey holds metadata about a user's most recent successful run.
func LastRunKey(userID int64) string {
	return lastRunKeyPrefix + strconv.FormatInt(userID, 10)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// GetJSON reads key and decodes it into v.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data, ttl)
}
