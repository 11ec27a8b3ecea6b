// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package events

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/bookrec/internal/recommend"
)

// SchemaVersion is the current PreferencesUpdated schema version.
const SchemaVersion = 1

// DefaultTopValues is how many values per attribute an event carries.
const DefaultTopValues = 3

// ValueWeight is one attribute value and its weight.
type ValueWeight struct {
	Value  string  `json:"value"`
	Weight float64 `json:"weight"`
}

// PreferencesUpdated is published after a profile is persisted. It carries
// a summary of the profile, not the full profile.
type PreferencesUpdated struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	UserID        string    `json:"user_id"`
	Version       uint64    `json:"version"`
	OccurredAt    time.Time `json:"occurred_at"`
	RequestID     string    `json:"request_id,omitempty"`

	// TopValues maps each category key ("Main Genre", "Sub Genre", "Type",
	// "Author") to its highest weighted values.
	TopValues map[string][]ValueWeight `json:"top_values"`
}

// NewPreferencesUpdated builds an event for update keeping topN values per
// attribute.
//
//nolint:gocritic // hugeParam: ProfileUpdate is passed by value through the notifier interface
func NewPreferencesUpdated(update recommend.ProfileUpdate, topN int) *PreferencesUpdated {
	if topN <= 0 {
		topN = DefaultTopValues
	}

	top := make(map[string][]ValueWeight, len(recommend.Attributes))
	for _, a := range recommend.Attributes {
		top[a.String()] = topWeights(update.Profile.Slot(a), topN)
	}

	return &PreferencesUpdated{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		UserID:        update.UserID,
		Version:       update.Version,
		OccurredAt:    time.Now().UTC(),
		RequestID:     update.RequestID,
		TopValues:     top,
	}
}

// Validate checks required fields.
func (e *PreferencesUpdated) Validate() error {
	if e.EventID == "" {
		return errors.New("event_id is required")
	}
	if e.UserID == "" {
		return errors.New("user_id is required")
	}
	if e.Version == 0 {
		return errors.New("version must be positive")
	}
	return nil
}

// Marshal encodes a validated event.
func Marshal(e *PreferencesUpdated) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal decodes an event payload.
func Unmarshal(data []byte) (*PreferencesUpdated, error) {
	var e PreferencesUpdated
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if e.SchemaVersion == 0 {
		e.SchemaVersion = 1
	}
	return &e, nil
}

// topWeights returns the n heaviest entries, ties broken by value.
func topWeights(w *recommend.Weights, n int) []ValueWeight {
	out := make([]ValueWeight, 0, w.Len())
	w.Range(func(value string, weight float64) bool {
		out = append(out, ValueWeight{Value: value, Weight: weight})
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
