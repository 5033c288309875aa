package pmi

import (
	"sort"

	"github.com/cognicore/kognate/pkg/kognate/align"
)

// Key is an ordered symbol pair.
type Key struct {
	A, B string
}

// Matrix maps symbol pairs to PMI substitution scores. Both orders of
// every trained pair are stored, so Score(a,b) == Score(b,a) at all
// times. Absent keys score 0 (untrained); the gap marker never
// appears as a key.
type Matrix struct {
	scores map[Key]float64
}

// NewMatrix creates an empty matrix.
func NewMatrix() *Matrix {
	return &Matrix{scores: make(map[Key]float64)}
}

// Score returns the substitution score for (a,b), 0 if untrained.
func (m *Matrix) Score(a, b string) float64 {
	return m.scores[Key{A: a, B: b}]
}

// Set stores a score under both orders of the pair. Keys involving
// the gap marker are ignored.
func (m *Matrix) Set(a, b string, v float64) {
	if a == align.Gap || b == align.Gap {
		return
	}
	m.scores[Key{A: a, B: b}] = v
	m.scores[Key{A: b, B: a}] = v
}

// Blend applies one online-EM update to a single key:
// new = eta*batch + (1-eta)*old, with old defaulting to 0 for new
// keys. Batch score maps carry both orders of every pair, so
// symmetry is preserved.
func (m *Matrix) Blend(k Key, batch, eta float64) {
	if k.A == align.Gap || k.B == align.Gap {
		return
	}
	m.scores[k] = eta*batch + (1-eta)*m.scores[k]
}

// Len returns the number of stored keys (both orders counted).
func (m *Matrix) Len() int {
	return len(m.scores)
}

// Items returns a copy of all stored scores.
func (m *Matrix) Items() map[Key]float64 {
	out := make(map[Key]float64, len(m.scores))
	for k, v := range m.scores {
		out[k] = v
	}
	return out
}

// Entry is one matrix cell, used for reporting.
type Entry struct {
	Key
	Score float64
}

// Top returns the n highest-scoring entries with A <= B, ordered by
// descending score and then by key, so the output is deterministic.
func (m *Matrix) Top(n int) []Entry {
	entries := make([]Entry, 0, len(m.scores))
	for k, v := range m.scores {
		if k.A > k.B {
			continue
		}
		entries = append(entries, Entry{Key: k, Score: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].A != entries[j].A {
			return entries[i].A < entries[j].A
		}
		return entries[i].B < entries[j].B
	})
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries
}
