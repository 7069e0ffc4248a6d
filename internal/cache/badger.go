// NutriRank - Hybrid Food Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nutrirank

package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// gcDiscardRatio is the value log rewrite threshold used by Maintain.
const gcDiscardRatio = 0.5

// BadgerStore implements Store using BadgerDB for durable storage.
// Expiry is delegated to badger entry TTLs.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a BadgerDB at path.
func OpenBadgerStore(path string, syncWrites bool) (*BadgerStore, error) {
	if path == "" {
		return nil, errors.New("badger cache requires a path")
	}
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = syncWrites
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for cache: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	if s.db.IsClosed() {
		return nil, ErrClosed
	}

	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Set implements Store.
func (s *BadgerStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(newBadgerEntry(key, value, ttl))
	})
}

// SetNX implements Store. The read and the write share one transaction; a
// concurrent writer of the same key surfaces as badger.ErrConflict, which
// means another caller won.
func (s *BadgerStore) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if s.db.IsClosed() {
		return false, ErrClosed
	}

	stored := false
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.SetEntry(newBadgerEntry(key, value, ttl)); err != nil {
			return err
		}
		stored = true
		return nil
	})
	if errors.Is(err, badger.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", key, err)
	}
	return stored, nil
}

// Delete implements Store.
func (s *BadgerStore) Delete(_ context.Context, key string) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return nil
	})
}

// CompareAndDelete implements Store. The read, the comparison and the
// delete share one transaction.
func (s *BadgerStore) CompareAndDelete(_ context.Context, key string, value []byte) (bool, error) {
	if s.db.IsClosed() {
		return false, ErrClosed
	}

	deleted := false
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		current, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if !bytes.Equal(current, value) {
			return nil
		}
		if err := txn.Delete([]byte(key)); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if errors.Is(err, badger.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("compare and delete %s: %w", key, err)
	}
	return deleted, nil
}

// Ping implements Store by opening a read transaction.
func (s *BadgerStore) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

// Maintain runs value log GC until nothing is left to rewrite. Expired
// keys are dropped by badger compaction, so the removed count is always 0.
func (s *BadgerStore) Maintain(_ context.Context) (int, error) {
	if s.db.IsClosed() {
		return 0, ErrClosed
	}
	for {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("run GC: %w", err)
		}
	}
}

func newBadgerEntry(key string, value []byte, ttl time.Duration) *badger.Entry {
	e := badger.NewEntry([]byte(key), value)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	return e
}

var (
	_ Store      = (*BadgerStore)(nil)
	_ Maintainer = (*BadgerStore)(nil)
)
