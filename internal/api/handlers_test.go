// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/models"
	"github.com/tomtom215/bookrec/internal/prefstore"
	"github.com/tomtom215/bookrec/internal/recommend"
)

func testBooks() []recommend.Book {
	return []recommend.Book{
		{Title: "Dune", MainGenre: "Fiction", SubGenre: "SciFi", Format: "Paperback", Author: "Frank Herbert"},
		{Title: "Dune Messiah", MainGenre: "Fiction", SubGenre: "SciFi", Format: "Hardcover", Author: "Frank Herbert"},
		{Title: "Hyperion", MainGenre: "Fiction", SubGenre: "SciFi", Format: "Paperback", Author: "Dan Simmons"},
		{Title: "The Hobbit", MainGenre: "Fiction", SubGenre: "Fantasy", Format: "Hardcover", Author: "J.R.R. Tolkien"},
		{Title: "The Silmarillion", MainGenre: "Fiction", SubGenre: "Fantasy", Format: "eBook", Author: "J.R.R. Tolkien"},
		{Title: "Gone Girl", MainGenre: "Fiction", SubGenre: "Mystery", Format: "Paperback", Author: "Gillian Flynn"},
		{Title: "Steve Jobs", MainGenre: "Non-Fiction", SubGenre: "Biography", Format: "Hardcover", Author: "Walter Isaacson"},
		{Title: "Educated", MainGenre: "Non-Fiction", SubGenre: "Biography", Format: "eBook", Author: "Tara Westover"},
	}
}

type testEnv struct {
	handler *Handler
	store   *prefstore.BadgerStore
	router  http.Handler
}

// newTestEnv serves the sample catalog from an in-memory store seeded with
// a neutral global prior. Rate limiting is off.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	catalog, err := recommend.NewCatalog(testBooks())
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	model, err := recommend.BuildModel(catalog, 1e-5)
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}

	store, err := prefstore.OpenBadger(&config.BadgerStoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if _, err := prefstore.EnsureGlobal(context.Background(), store, prefstore.GlobalProfileFromCatalog(catalog, 0.5)); err != nil {
		t.Fatalf("EnsureGlobal: %v", err)
	}

	engine, err := recommend.NewEngine(recommend.DefaultConfig(), model, store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	return newTestEnvWith(t, engine, store)
}

func newTestEnvWith(t *testing.T, engine Recommender, store prefstore.Store) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.Security.RateLimitDisabled = true
	cfg.Security.MaxBodyBytes = 4096

	h := NewHandler(engine, store, cfg, "test")
	env := &testEnv{
		handler: h,
		router:  NewRouter(h, NewChiMiddlewareFromConfig(&cfg.Security)).SetupChi(),
	}
	if bs, ok := store.(*prefstore.BadgerStore); ok {
		env.store = bs
	}
	return env
}

// do sends a request through the full router.
func (e *testEnv) do(t *testing.T, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// envelope decodes an APIResponse whose data is decoded into data.
func envelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) models.APIResponse {
	t.Helper()

	var raw struct {
		Status   string           `json:"status"`
		Data     json.RawMessage  `json:"data"`
		Metadata models.Metadata  `json:"metadata"`
		Error    *models.APIError `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode envelope: %v\nbody: %s", err, rec.Body.String())
	}
	if data != nil && len(raw.Data) > 0 && string(raw.Data) != "null" {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode data: %v\nbody: %s", err, rec.Body.String())
		}
	}
	return models.APIResponse{Status: raw.Status, Metadata: raw.Metadata, Error: raw.Error}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) *models.APIError {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, status, rec.Body.String())
	}
	resp := envelope(t, rec, nil)
	if resp.Status != "error" || resp.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if resp.Error.Code != code {
		t.Errorf("error code = %q, want %q", resp.Error.Code, code)
	}
	return resp.Error
}

// failingStore fails every call with err.
type failingStore struct {
	err error
}

var _ prefstore.Store = failingStore{}

func (s failingStore) GetUserPreferences(context.Context, string) (recommend.ProfileSnapshot, error) {
	return recommend.ProfileSnapshot{}, s.err
}

func (s failingStore) GetGlobalPreferences(context.Context) (recommend.PreferenceProfile, error) {
	return recommend.PreferenceProfile{}, s.err
}

func (s failingStore) SetUserPreferences(context.Context, string, recommend.PreferenceProfile, uint64) (uint64, error) {
	return 0, s.err
}

func (s failingStore) GetGlobalSnapshot(context.Context) (recommend.ProfileSnapshot, error) {
	return recommend.ProfileSnapshot{}, s.err
}

func (s failingStore) SetGlobalPreferences(context.Context, recommend.PreferenceProfile, uint64) (uint64, error) {
	return 0, s.err
}

func (s failingStore) DeleteUserPreferences(context.Context, string) error { return s.err }
func (s failingStore) Backend() string { return "failing" }
func (s failingStore) Close() error { return nil }

var errDiskFull = errors.New("disk full")

// newFailingEnv serves the sample catalog over a store that always fails.
func newFailingEnv(t *testing.T, degraded bool) *testEnv {
	t.Helper()

	catalog, err := recommend.NewCatalog(testBooks())
	if err != nil {
		t.Fatal(err)
	}
	model, err := recommend.BuildModel(catalog, 1e-5)
	if err != nil {
		t.Fatal(err)
	}

	store := failingStore{err: errDiskFull}
	cfg := recommend.DefaultConfig()
	cfg.DegradedMode = degraded
	engine, err := recommend.NewEngine(cfg, model, store, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	engine.SetFallbackGlobal(prefstore.DefaultGlobalProfile())
	return newTestEnvWith(t, engine, store)
}

// recordingNotifier captures published profile updates.
type recordingNotifier struct {
	mu      sync.Mutex
	updates []recommend.ProfileUpdate
}

func (n *recordingNotifier) NotifyProfileUpdated(_ context.Context, u recommend.ProfileUpdate) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, u)
	return nil
}

func (n *recordingNotifier) all() []recommend.ProfileUpdate {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]recommend.ProfileUpdate(nil), n.updates...)
}
