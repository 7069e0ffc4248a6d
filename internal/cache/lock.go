// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/nutrirank/internal/metrics"
)

// DefaultLockTTL bounds how long a crashed worker can block a user.
const DefaultLockTTL = 300 * time.Second

// TrainingLock serializes job runs per user with SETNX on LockKey. The
// lock expires on its own after the TTL.
type TrainingLock struct {
	store Store
	ttl   time.Duration
}

// NewTrainingLock creates a lock over store. A non-positive ttl uses
// DefaultLockTTL.
func NewTrainingLock(store Store, ttl time.Duration) *TrainingLock {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &TrainingLock{store: store, ttl: ttl}
}

// TryAcquire takes the lock for userID. It returns the holder token, or
// false without error when another holder has it.
func (l *TrainingLock) TryAcquire(ctx context.Context, userID int64) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.store.SetNX(ctx, LockKey(userID), []byte(token), l.ttl)
	if err != nil {
		return "", false, fmt.Errorf("acquire lock for user %d: %w", userID, err)
	}
	if !ok {
		metrics.RecordLockContention()
		return "", false, nil
	}
	return token, true, nil
}

// Release drops the lock for userID if token still holds it. It reports
// false when the lock expired and was taken over, in which case the new
// holder's lock is left alone.
func (l *TrainingLock) Release(ctx context.Context, userID int64, token string) (bool, error) {
	released, err := l.store.CompareAndDelete(ctx, LockKey(userID), []byte(token))
	if err != nil {
		return false, fmt.Errorf("release lock for user %d: %w", userID, err)
	}
	return released, nil
}

// Held reports whether the lock for userID is currently taken.
func (l *TrainingLock) Held(ctx context.Context, userID int64) (bool, error) {
	_, err := l.store.Get(ctx, LockKey(userID))
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, err
	}
}
