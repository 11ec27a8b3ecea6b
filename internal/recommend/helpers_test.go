// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"context"
	"math"
	"sync"
	"testing"
)

const tolerance = 1e-6

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func book(title, mainGenre, subGenre, format, author string) Book {
	return Book{Title: title, MainGenre: mainGenre, SubGenre: subGenre, Format: format, Author: author}
}

// threeBookCatalog is the minimal A/B/C scenario: B shares three of four
// attributes with A, C shares none.
func threeBookCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]Book{
		book("A", "Fiction", "Fantasy", "Paperback", "Author1"),
		book("B", "Fiction", "Fantasy", "eBook", "Author1"),
		book("C", "Non-Fiction", "Biography", "Hardcover", "Author2"),
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

// shelfCatalog has more books than encoded dimensions so the whitened
// geometry keeps attribute overlap meaningful.
func shelfCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]Book{
		book("A", "Fiction", "Fantasy", "Paperback", "Author1"),
		book("B", "Fiction", "Fantasy", "eBook", "Author1"),
		book("C", "Non-Fiction", "Biography", "Hardcover", "Author2"),
		book("D", "Fiction", "Mystery", "Paperback", "Author3"),
		book("E", "Non-Fiction", "Biography", "Paperback", "Author2"),
		book("F", "Fiction", "Fantasy", "Hardcover", "Author3"),
		book("G", "Non-Fiction", "Mystery", "eBook", "Author2"),
		book("H", "Fiction", "Mystery", "eBook", "Author3"),
		book("I", "Non-Fiction", "Biography", "eBook", "Author2"),
		book("J", "Fiction", "Mystery", "Hardcover", "Author1"),
		book("K", "Non-Fiction", "Mystery", "Hardcover", "Author2"),
		book("L", "Non-Fiction", "Biography", "Hardcover", "Author3"),
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

func buildModel(t *testing.T, c *Catalog) *Model {
	t.Helper()
	m, err := BuildModel(c, 1e-5)
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}
	return m
}

// profileOf builds a profile from category-keyed maps. Keys are inserted
// in the order given by the slice pairs.
func profileOf(entries map[Attribute][][2]any) PreferenceProfile {
	var p PreferenceProfile
	for a, pairs := range entries {
		for _, kv := range pairs {
			p.Slot(a).Set(kv[0].(string), kv[1].(float64))
		}
	}
	return p
}

// neutralGlobal returns a 0.5 prior over the catalog vocabulary.
func neutralGlobal(c *Catalog) PreferenceProfile {
	var p PreferenceProfile
	for _, a := range Attributes {
		for _, v := range c.Vocabulary(a) {
			p.Slot(a).Set(v, 0.5)
		}
	}
	return p
}

// memoryStore is a goroutine-safe PreferenceStore for tests.
type memoryStore struct {
	mu       sync.Mutex
	users    map[string]ProfileSnapshot
	global   PreferenceProfile
	getErr   error
	globErr  error
	setErr   error
	getCalls int
	setCalls int
}

func newMemoryStore(global PreferenceProfile) *memoryStore {
	return &memoryStore{users: make(map[string]ProfileSnapshot), global: global}
}

func (s *memoryStore) GetUserPreferences(_ context.Context, userID string) (ProfileSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.getErr != nil {
		return ProfileSnapshot{}, s.getErr
	}
	snap, ok := s.users[userID]
	if !ok {
		return ProfileSnapshot{}, ErrProfileNotFound
	}
	return ProfileSnapshot{Profile: snap.Profile.Clone(), Version: snap.Version}, nil
}

func (s *memoryStore) GetGlobalPreferences(_ context.Context) (PreferenceProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.globErr != nil {
		return PreferenceProfile{}, s.globErr
	}
	return s.global.Clone(), nil
}

//nolint:gocritic // hugeParam: matches the interface
func (s *memoryStore) SetUserPreferences(_ context.Context, userID string, p PreferenceProfile, expected uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.setErr != nil {
		return 0, s.setErr
	}
	if s.users[userID].Version != expected {
		return 0, ErrVersionConflict
	}
	next := expected + 1
	s.users[userID] = ProfileSnapshot{Profile: p.Clone(), Version: next}
	return next, nil
}

// mutexLocker serializes per key with one mutex per user.
type mutexLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	calls int
}

func (l *mutexLocker) Lock(userID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.calls++
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
