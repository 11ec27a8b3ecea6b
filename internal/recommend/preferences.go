// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

// AttributeCounts holds per-value occurrence counts for each attribute.
type AttributeCounts [len(Attributes)]map[string]int

// CollectStatistics counts how often each attribute value occurs in
// history. Empty values are not counted.
func CollectStatistics(history []Book) (counts AttributeCounts, total int) {
	for _, a := range Attributes {
		counts[a] = make(map[string]int)
	}
	for i := range history {
		for _, a := range Attributes {
			if v := history[i].Value(a); v != "" {
				counts[a][v]++
			}
		}
	}
	return counts, len(history)
}

// BayesianUpdate shrinks the empirical proportions in counts toward the
// global prior:
//
//	updated = (priorStrength*global + count) / (priorStrength + total)
//
// The result covers exactly the global vocabulary.
func BayesianUpdate(global *PreferenceProfile, counts AttributeCounts, total int, priorStrength float64) PreferenceProfile {
	var out PreferenceProfile
	denom := priorStrength + float64(total)
	for _, a := range Attributes {
		slot := out.Slot(a)
		global.Slot(a).Range(func(value string, prior float64) bool {
			if denom == 0 {
				slot.Set(value, prior)
				return true
			}
			slot.Set(value, (priorStrength*prior+float64(counts[a][value]))/denom)
			return true
		})
	}
	return out
}

// PreferenceUpdater blends a reading history into a stored profile. It is
// pure and safe for concurrent use.
type PreferenceUpdater struct {
	PriorStrength float64
	Alpha         float64
	NeutralWeight float64
}

// NewPreferenceUpdater creates an updater from cfg.
func NewPreferenceUpdater(cfg *Config) PreferenceUpdater {
	return PreferenceUpdater{
		PriorStrength: cfg.PriorStrength,
		Alpha:         cfg.Alpha,
		NeutralWeight: cfg.NeutralWeight,
	}
}

// Update returns the new profile for a user:
//
//	old = stored[v], else global[v], else NeutralWeight
//	new = (1-alpha)*old + alpha*bayesian[v]
//
// for every value v in the global vocabulary. Values outside the global
// vocabulary are dropped.
//
//nolint:gocritic // hugeParam: value receiver keeps the updater immutable
func (u PreferenceUpdater) Update(history []Book, stored, global *PreferenceProfile) PreferenceProfile {
	counts, total := CollectStatistics(history)
	updated := BayesianUpdate(global, counts, total, u.PriorStrength)

	var out PreferenceProfile
	for _, a := range Attributes {
		storedSlot, globalSlot, updatedSlot := stored.Slot(a), global.Slot(a), updated.Slot(a)
		slot := out.Slot(a)
		globalSlot.Range(func(value string, _ float64) bool {
			old := storedSlot.GetOr(value, globalSlot.GetOr(value, u.NeutralWeight))
			fresh := updatedSlot.GetOr(value, old)
			slot.Set(value, (1-u.Alpha)*old+u.Alpha*fresh)
			return true
		})
	}
	return out
}
