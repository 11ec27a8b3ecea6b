// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type recordingNotifier struct {
	mu      sync.Mutex
	updates []ProfileUpdate
	err     error
}

//nolint:gocritic // hugeParam: matches the interface
func (n *recordingNotifier) NotifyProfileUpdated(_ context.Context, u ProfileUpdate) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, u)
	return n.err
}

func newTestEngine(t *testing.T, cfg *Config, store PreferenceStore) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, buildModel(t, shelfCatalog(t)), store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngine_Validation(t *testing.T) {
	t.Parallel()

	model := buildModel(t, shelfCatalog(t))
	store := newMemoryStore(PreferenceProfile{})

	bad := DefaultConfig()
	bad.Alpha = 0
	if _, err := NewEngine(bad, model, store, zerolog.Nop()); err == nil {
		t.Error("expected invalid config error")
	}
	if _, err := NewEngine(nil, nil, store, zerolog.Nop()); err == nil {
		t.Error("expected missing model error")
	}
	if _, err := NewEngine(nil, model, nil, zerolog.Nop()); err == nil {
		t.Error("expected missing store error")
	}
	if _, err := NewEngine(nil, model, store, zerolog.Nop()); err != nil {
		t.Errorf("NewEngine with defaults: %v", err)
	}
}

func TestEngine_Recommend(t *testing.T) {
	t.Parallel()

	c := shelfCatalog(t)
	store := newMemoryStore(neutralGlobal(c))
	e := newTestEngine(t, nil, store)
	notifier := &recordingNotifier{}
	e.SetNotifier(notifier)

	resp, err := e.Recommend(context.Background(), Request{
		UserID: "42",
		Titles: []string{"a", "Quantum Chromodynamics"},
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if got := resp.Titles(); len(got) != 10 || got[0] != "B" {
		t.Errorf("Titles() = %v", got)
	}
	for _, r := range resp.Recommendations {
		if r.Index == 0 {
			t.Error("read book A was recommended")
		}
	}
	if len(resp.Matched) != 1 || resp.Matched[0].Kind != MatchExact {
		t.Errorf("Matched = %+v", resp.Matched)
	}
	if len(resp.Unresolved) != 1 || resp.Unresolved[0].Title != "Quantum Chromodynamics" {
		t.Errorf("Unresolved = %+v", resp.Unresolved)
	}
	if resp.Degraded {
		t.Error("unexpected degraded response")
	}
	if resp.ProfileVersion != 1 {
		t.Errorf("ProfileVersion = %d, want 1", resp.ProfileVersion)
	}
	if resp.Metadata.RequestID == "" || resp.Metadata.CatalogSize != 12 {
		t.Errorf("Metadata = %+v", resp.Metadata)
	}

	stored := store.users["42"]
	fiction, _ := stored.Profile.MainGenre.Get("Fiction")
	if want := 0.9*0.5 + 0.1*(6.0/11.0); !approxEqual(fiction, want, tolerance) {
		t.Errorf("stored Fiction = %f, want %f", fiction, want)
	}

	if len(notifier.updates) != 1 || notifier.updates[0].Version != 1 || notifier.updates[0].UserID != "42" {
		t.Errorf("notifier updates = %+v", notifier.updates)
	}

	// A second request builds on the stored version.
	resp, err = e.Recommend(context.Background(), Request{UserID: "42", Titles: []string{"B"}, Limit: 3})
	if err != nil {
		t.Fatalf("second Recommend: %v", err)
	}
	if resp.ProfileVersion != 2 {
		t.Errorf("ProfileVersion = %d, want 2", resp.ProfileVersion)
	}
	if len(resp.Recommendations) != 3 {
		t.Errorf("Limit not applied: %d results", len(resp.Recommendations))
	}

	m := e.GetMetrics()
	if m.Requests != 2 || m.UnresolvedTitles != 1 || m.Errors != 0 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestEngine_Recommend_NoMatchableHistory(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(neutralGlobal(shelfCatalog(t)))
	e := newTestEngine(t, nil, store)

	_, err := e.Recommend(context.Background(), Request{UserID: "7", Titles: []string{"Quantum Chromodynamics"}})
	if !errors.Is(err, ErrNoMatchableHistory) {
		t.Fatalf("error = %v, want ErrNoMatchableHistory", err)
	}
	var nm *NoMatchableHistoryError
	if !errors.As(err, &nm) || len(nm.Unresolved) != 1 {
		t.Errorf("error detail = %+v", nm)
	}
	if store.getCalls != 0 || store.setCalls != 0 {
		t.Errorf("store touched: get=%d set=%d", store.getCalls, store.setCalls)
	}

	if _, err := e.Recommend(context.Background(), Request{UserID: "7"}); !errors.Is(err, ErrNoMatchableHistory) {
		t.Errorf("empty titles error = %v", err)
	}
}

func TestEngine_Recommend_ZeroWeightHistory(t *testing.T) {
	t.Parallel()

	c := shelfCatalog(t)
	global := neutralGlobal(c)
	// (10 * -0.1 + 1) / 11 == 0, so one Fiction read keeps the weight at zero.
	global.MainGenre.Set("Fiction", -0.1)
	store := newMemoryStore(global)
	store.users["9"] = ProfileSnapshot{Profile: profileOf(map[Attribute][][2]any{
		AttributeMainGenre: {{"Fiction", 0.0}},
	}), Version: 3}
	e := newTestEngine(t, nil, store)

	_, err := e.Recommend(context.Background(), Request{UserID: "9", Titles: []string{"A"}})
	var nm *NoMatchableHistoryError
	if !errors.As(err, &nm) || nm.Reason != ReasonZeroWeight {
		t.Errorf("error = %v, want zero weight NoMatchableHistoryError", err)
	}
}

func TestEngine_Recommend_StoreFailures(t *testing.T) {
	t.Parallel()

	outage := errors.New("connection refused")

	tests := []struct {
		name     string
		setup    func(s *memoryStore)
		wantOp   StoreOp
		conflict bool
	}{
		{"user read", func(s *memoryStore) { s.getErr = outage }, OpGetUser, false},
		{"global read", func(s *memoryStore) { s.globErr = outage }, OpGetGlobal, false},
		{"write", func(s *memoryStore) { s.setErr = outage }, OpSetUser, false},
		{"stale version", func(s *memoryStore) { s.setErr = ErrVersionConflict }, OpSetUser, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newMemoryStore(neutralGlobal(shelfCatalog(t)))
			tt.setup(store)
			e := newTestEngine(t, nil, store)

			_, err := e.Recommend(context.Background(), Request{UserID: "1", Titles: []string{"A"}})
			var se *PreferenceStoreError
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want *PreferenceStoreError", err)
			}
			if se.Op != tt.wantOp {
				t.Errorf("Op = %s, want %s", se.Op, tt.wantOp)
			}
			if errors.Is(err, ErrVersionConflict) != tt.conflict {
				t.Errorf("conflict = %v, want %v", errors.Is(err, ErrVersionConflict), tt.conflict)
			}
			if errors.Is(err, ErrNoMatchableHistory) {
				t.Error("store failure must not look like a matching failure")
			}
		})
	}
}

func TestEngine_Recommend_DegradedMode(t *testing.T) {
	t.Parallel()

	outage := errors.New("connection refused")
	cfg := DefaultConfig()
	cfg.DegradedMode = true

	t.Run("user read failure skips write", func(t *testing.T) {
		t.Parallel()
		store := newMemoryStore(neutralGlobal(shelfCatalog(t)))
		store.getErr = outage
		e := newTestEngine(t, cfg, store)

		resp, err := e.Recommend(context.Background(), Request{UserID: "1", Titles: []string{"A"}})
		if err != nil {
			t.Fatalf("Recommend: %v", err)
		}
		if !resp.Degraded || resp.ProfileVersion != 0 {
			t.Errorf("Degraded=%v ProfileVersion=%d", resp.Degraded, resp.ProfileVersion)
		}
		if store.setCalls != 0 {
			t.Errorf("setCalls = %d, want 0", store.setCalls)
		}
		if resp.Titles()[0] != "B" {
			t.Errorf("top = %s, want B", resp.Titles()[0])
		}
	})

	t.Run("global read failure uses fallback prior", func(t *testing.T) {
		t.Parallel()
		store := newMemoryStore(PreferenceProfile{})
		store.globErr = outage
		e := newTestEngine(t, cfg, store)
		e.SetFallbackGlobal(profileOf(map[Attribute][][2]any{
			AttributeMainGenre: {{"Fiction", 0.5}, {"Non-Fiction", 0.5}},
		}))

		resp, err := e.Recommend(context.Background(), Request{UserID: "1", Titles: []string{"C"}})
		if err != nil {
			t.Fatalf("Recommend: %v", err)
		}
		if !resp.Degraded {
			t.Error("expected degraded response")
		}
		if e.GetMetrics().Degraded != 1 {
			t.Errorf("Degraded metric = %d", e.GetMetrics().Degraded)
		}
	})

	t.Run("write failure still serves", func(t *testing.T) {
		t.Parallel()
		store := newMemoryStore(neutralGlobal(shelfCatalog(t)))
		store.setErr = outage
		e := newTestEngine(t, cfg, store)

		resp, err := e.Recommend(context.Background(), Request{UserID: "1", Titles: []string{"A"}})
		if err != nil {
			t.Fatalf("Recommend: %v", err)
		}
		if !resp.Degraded {
			t.Error("expected degraded response")
		}
	})

	t.Run("version conflict is not masked", func(t *testing.T) {
		t.Parallel()
		store := newMemoryStore(neutralGlobal(shelfCatalog(t)))
		store.setErr = ErrVersionConflict
		e := newTestEngine(t, cfg, store)

		_, err := e.Recommend(context.Background(), Request{UserID: "1", Titles: []string{"A"}})
		if !errors.Is(err, ErrVersionConflict) {
			t.Errorf("error = %v, want ErrVersionConflict", err)
		}
	})
}

func TestEngine_Recommend_SerializesSameUser(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(neutralGlobal(shelfCatalog(t)))
	e := newTestEngine(t, nil, store)
	locker := &mutexLocker{}
	e.SetUserLocker(locker)

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Recommend(context.Background(), Request{UserID: "same", Titles: []string{"A", "D"}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Recommend: %v", err)
		}
	}
	if v := store.users["same"].Version; v != workers {
		t.Errorf("final version = %d, want %d (lost update)", v, workers)
	}
	if locker.calls != workers {
		t.Errorf("locker calls = %d, want %d", locker.calls, workers)
	}
}

func TestEngine_Recommend_Deterministic(t *testing.T) {
	t.Parallel()

	run := func() []string {
		store := newMemoryStore(neutralGlobal(shelfCatalog(t)))
		e := newTestEngine(t, nil, store)
		resp, err := e.Recommend(context.Background(), Request{UserID: "u", Titles: []string{"b", "G", "Hh"}})
		if err != nil {
			t.Fatalf("Recommend: %v", err)
		}
		return resp.Titles()
	}

	if first, second := run(), run(); !reflect.DeepEqual(first, second) {
		t.Errorf("runs differ:\n%v\n%v", first, second)
	}
}

func TestEngine_ResolveAndSimilar(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, newMemoryStore(PreferenceProfile{}))

	matched, unresolved := e.Resolve([]string{"a", "Quantum Chromodynamics"})
	if len(matched) != 1 || len(unresolved) != 1 {
		t.Errorf("Resolve = %v, %v", matched, unresolved)
	}
	if r := e.ResolveOne("c"); r.Index != 2 {
		t.Errorf("ResolveOne(c) = %+v", r)
	}

	recs, err := e.Similar(0, 0)
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if len(recs) != 10 {
		t.Errorf("Similar default limit = %d, want 10", len(recs))
	}
}

func TestNewEngine_CopiesConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	e := newTestEngine(t, cfg, newMemoryStore(PreferenceProfile{}))
	cfg.MaxResults = 2

	recs, err := e.Similar(0, 0)
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if len(recs) != 10 {
		t.Errorf("Similar returned %d titles, want 10", len(recs))
	}
}
