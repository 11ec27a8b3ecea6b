// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package prefstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/recommend"
)

// Key layout for BadgerDB storage
const (
	userKeyPrefix = "prefs:user:"
	globalKey     = "prefs:global"

	badgerBackend = "badger"
)

// BadgerStore keeps profiles in an embedded BadgerDB. Every write is
// conditional on the stored version, checked inside the same transaction.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
	now    func() time.Time
}

var _ Store = (*BadgerStore)(nil)

// OpenBadger opens (or creates) the database described by cfg.
func OpenBadger(cfg *config.BadgerStoreConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Dir, err)
	}

	logging.Info().
		Str("dir", cfg.Dir).
		Bool("in_memory", cfg.InMemory).
		Msg("Preference store opened")

	s := NewBadgerStore(db)
	s.ownsDB = true
	return s, nil
}

// NewBadgerStore wraps an already open database. Close does not close db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db, now: time.Now}
}

// Backend implements Store.
func (s *BadgerStore) Backend() string { return badgerBackend }

// GetUserPreferences implements recommend.PreferenceStore.
func (s *BadgerStore) GetUserPreferences(ctx context.Context, userID string) (snap recommend.ProfileSnapshot, err error) {
	defer func(start time.Time) { observe(badgerBackend, opGetUser, start, err) }(time.Now())
	return s.get(userKeyPrefix + userID)
}

// GetGlobalPreferences implements recommend.PreferenceStore.
func (s *BadgerStore) GetGlobalPreferences(ctx context.Context) (recommend.PreferenceProfile, error) {
	snap, err := s.GetGlobalSnapshot(ctx)
	if err != nil {
		return recommend.PreferenceProfile{}, err
	}
	return snap.Profile, nil
}

// GetGlobalSnapshot implements Store.
func (s *BadgerStore) GetGlobalSnapshot(ctx context.Context) (snap recommend.ProfileSnapshot, err error) {
	defer func(start time.Time) { observe(badgerBackend, opGetGlobal, start, err) }(time.Now())
	return s.get(globalKey)
}

// SetUserPreferences implements recommend.PreferenceStore.
func (s *BadgerStore) SetUserPreferences(ctx context.Context, userID string, profile recommend.PreferenceProfile, expectedVersion uint64) (version uint64, err error) {
	defer func(start time.Time) { observe(badgerBackend, opSetUser, start, err) }(time.Now())
	return s.put(userKeyPrefix+userID, &profile, expectedVersion)
}

// SetGlobalPreferences implements Store.
func (s *BadgerStore) SetGlobalPreferences(ctx context.Context, profile recommend.PreferenceProfile, expectedVersion uint64) (version uint64, err error) {
	defer func(start time.Time) { observe(badgerBackend, opSetGlobal, start, err) }(time.Now())
	return s.put(globalKey, &profile, expectedVersion)
}

// DeleteUserPreferences implements Store.
func (s *BadgerStore) DeleteUserPreferences(ctx context.Context, userID string) (err error) {
	defer func(start time.Time) { observe(badgerBackend, opDeleteUser, start, err) }(time.Now())

	key := []byte(userKeyPrefix + userID)
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get profile: %w", err)
		}
		return txn.Delete(key)
	})
	return mapTxnErr(err)
}

// Close closes the database when this store opened it.
func (s *BadgerStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

func (s *BadgerStore) get(key string) (recommend.ProfileSnapshot, error) {
	var rec *record

	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = readRecord(txn, []byte(key))
		return err
	})
	if err != nil {
		return recommend.ProfileSnapshot{}, err
	}
	if rec == nil {
		return recommend.ProfileSnapshot{}, ErrNotFound
	}
	return rec.snapshot(), nil
}

func (s *BadgerStore) put(key string, profile *recommend.PreferenceProfile, expectedVersion uint64) (uint64, error) {
	var next uint64

	err := s.db.Update(func(txn *badger.Txn) error {
		current, err := readRecord(txn, []byte(key))
		if err != nil {
			return err
		}

		var stored uint64
		if current != nil {
			stored = current.Version
		}
		if stored != expectedVersion {
			return fmt.Errorf("%w: expected %d, stored %d", ErrVersionConflict, expectedVersion, stored)
		}

		next = stored + 1
		data, err := json.Marshal(&record{
			Version:   next,
			UpdatedAt: s.now().UTC(),
			Profile:   *profile,
		})
		if err != nil {
			return fmt.Errorf("marshal profile: %w", err)
		}
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return 0, mapTxnErr(err)
	}
	return next, nil
}

// readRecord returns nil, nil when key is absent.
func readRecord(txn *badger.Txn, key []byte) (*record, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var rec *record
	err = item.Value(func(val []byte) error {
		rec, err = decodeRecord(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// mapTxnErr maps Badger's optimistic transaction conflict onto the
// store's version conflict.
func mapTxnErr(err error) error {
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: concurrent transaction", ErrVersionConflict)
	}
	return err
}
