package word

import (
	"sort"
	"strings"

	"github.com/cognicore/kognate/pkg/kognate/align"
)

// Word is a single transcribed form from a multilingual wordlist.
// Symbols is the phonetic segmentation produced by the reader layer;
// a Word is never mutated after construction.
type Word struct {
	Concept  string
	Language string
	Line     int // source-line identifier, for provenance and dedup
	Symbols  []string
}

// String returns the joined surface form.
func (w Word) String() string {
	return strings.Join(w.Symbols, "")
}

// Len returns the number of symbols.
func (w Word) Len() int {
	return len(w.Symbols)
}

// SameEntry reports whether two words come from the same wordlist entry,
// i.e. share both language and source line.
func (w Word) SameEntry(o Word) bool {
	return w.Language == o.Language && w.Line == o.Line
}

// Pair couples two words sharing a concept but with distinct
// (language, line) identity.
type Pair struct {
	A, B Word
}

// DefaultMaxDistance is the normalized edit-distance cutoff for
// candidate pair preselection.
const DefaultMaxDistance = 0.5

// Generator preselects candidate word pairs per concept by coarse
// edit distance, bounding the pair count before the alignment loop.
type Generator struct {
	maxDistance float64
}

// NewGenerator creates a pair generator. A non-positive maxDistance
// falls back to DefaultMaxDistance.
func NewGenerator(maxDistance float64) *Generator {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}
	return &Generator{maxDistance: maxDistance}
}

// Pairs enumerates all unordered pairs of distinct entries within each
// concept and keeps those whose normalized edit distance is at most the
// generator's cutoff. Concepts are visited in sorted order so the output
// is deterministic; the trainer shuffles it anyway.
func (g *Generator) Pairs(byConcept map[string][]Word) []Pair {
	concepts := make([]string, 0, len(byConcept))
	for c := range byConcept {
		concepts = append(concepts, c)
	}
	sort.Strings(concepts)

	var pairs []Pair
	for _, c := range concepts {
		words := byConcept[c]
		for i := 0; i < len(words); i++ {
			for j := i + 1; j < len(words); j++ {
				if words[i].SameEntry(words[j]) {
					continue
				}
				d := align.NormalizedLevenshtein(words[i].Symbols, words[j].Symbols)
				if d <= g.maxDistance {
					pairs = append(pairs, Pair{A: words[i], B: words[j]})
				}
			}
		}
	}
	return pairs
}
