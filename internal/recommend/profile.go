// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Weights is an insertion-ordered mapping from attribute value to weight.
// The zero value is empty and ready to use.
type Weights struct {
	keys   []string
	values map[string]float64
}

// Set stores w for value, appending value to the key order if it is new.
func (w *Weights) Set(value string, weight float64) {
	if w.values == nil {
		w.values = make(map[string]float64)
	}
	if _, ok := w.values[value]; !ok {
		w.keys = append(w.keys, value)
	}
	w.values[value] = weight
}

// Get returns the weight for value.
func (w *Weights) Get(value string) (float64, bool) {
	v, ok := w.values[value]
	return v, ok
}

// GetOr returns the weight for value or fallback when absent.
func (w *Weights) GetOr(value string, fallback float64) float64 {
	if v, ok := w.values[value]; ok {
		return v
	}
	return fallback
}

// Len returns the number of entries.
func (w *Weights) Len() int {
	return len(w.keys)
}

// Keys returns the values in insertion order.
func (w *Weights) Keys() []string {
	out := make([]string, len(w.keys))
	copy(out, w.keys)
	return out
}

// Range calls fn for each entry in insertion order until fn returns false.
func (w *Weights) Range(fn func(value string, weight float64) bool) {
	for _, k := range w.keys {
		if !fn(k, w.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy.
func (w *Weights) Clone() Weights {
	out := Weights{
		keys:   make([]string, len(w.keys)),
		values: make(map[string]float64, len(w.values)),
	}
	copy(out.keys, w.keys)
	for k, v := range w.values {
		out.values[k] = v
	}
	return out
}

// MarshalJSON encodes the entries as a JSON object in insertion order.
func (w Weights) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range w.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(strconv.AppendFloat(nil, w.values[k], 'g', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object. Object key order is not preserved by
// the decoder, so keys are inserted in sorted order to stay deterministic.
func (w *Weights) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	*w = Weights{}
	for _, k := range keys {
		w.Set(k, m[k])
	}
	return nil
}

// PreferenceProfile holds per-value affinities for each of the four book
// attributes. Weights are probability-like and nominally in [0, 1] but are
// not clamped.
type PreferenceProfile struct {
	MainGenre Weights
	SubGenre  Weights
	Format    Weights
	Author    Weights
}

// Slot returns the weights for attribute a.
func (p *PreferenceProfile) Slot(a Attribute) *Weights {
	switch a {
	case AttributeMainGenre:
		return &p.MainGenre
	case AttributeSubGenre:
		return &p.SubGenre
	case AttributeFormat:
		return &p.Format
	case AttributeAuthor:
		return &p.Author
	default:
		panic(fmt.Sprintf("recommend: unknown attribute %d", a))
	}
}

// Clone returns a deep copy of the profile.
func (p *PreferenceProfile) Clone() PreferenceProfile {
	return PreferenceProfile{
		MainGenre: p.MainGenre.Clone(),
		SubGenre:  p.SubGenre.Clone(),
		Format:    p.Format.Clone(),
		Author:    p.Author.Clone(),
	}
}

// Size returns the total number of entries across all attributes.
func (p *PreferenceProfile) Size() int {
	n := 0
	for _, a := range Attributes {
		n += p.Slot(a).Len()
	}
	return n
}

// MarshalJSON encodes the profile keyed by category name, e.g.
// {"Main Genre": {...}, "Sub Genre": {...}, "Type": {...}, "Author": {...}}.
func (p PreferenceProfile) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range Attributes {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(a.String()))
		buf.WriteByte(':')
		data, err := p.Slot(a).MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the category-keyed form. Unknown categories are
// ignored and missing ones are left empty.
func (p *PreferenceProfile) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = PreferenceProfile{}
	for _, a := range Attributes {
		msg, ok := raw[a.String()]
		if !ok || string(msg) == "null" {
			continue
		}
		if err := p.Slot(a).UnmarshalJSON(msg); err != nil {
			return fmt.Errorf("decode %q: %w", a.String(), err)
		}
	}
	return nil
}

// ProfileSnapshot is a stored profile together with its version token.
// Version zero means the profile has never been written.
type ProfileSnapshot struct {
	Profile   PreferenceProfile `json:"profile"`
	Version   uint64            `json:"version"`
	UpdatedAt time.Time         `json:"updated_at"`
}
