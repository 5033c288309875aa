package evaluate

import (
	"math"
	"testing"

	"github.com/cognicore/kognate/pkg/kognate/cluster"
	"github.com/cognicore/kognate/pkg/kognate/ingest"
	"github.com/cognicore/kognate/pkg/kognate/word"
)

func mk(concept, lang string, line int) word.Word {
	return word.Word{Concept: concept, Language: lang, Line: line, Symbols: []string{"x"}}
}

func ref(lang string, line int) ingest.Ref {
	return ingest.Ref{Language: lang, Line: line}
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("%s = %f, want %f", name, got, want)
	}
}

func TestBCubedPerfect(t *testing.T) {
	classes := map[string][]cluster.Class{
		"water": {
			{mk("water", "en", 0), mk("water", "de", 1)},
			{mk("water", "fr", 2)},
		},
	}
	gold := map[ingest.Ref]string{
		ref("en", 0): "A",
		ref("de", 1): "A",
		ref("fr", 2): "B",
	}

	s := BCubed(classes, gold)
	approx(t, "precision", s.Precision, 1)
	approx(t, "recall", s.Recall, 1)
	approx(t, "f", s.F, 1)
}

func TestBCubedOverMerged(t *testing.T) {
	// Two gold classes of one entry each, predicted as a single class:
	// per-item precision 1/2, recall 1, F = 2/3.
	classes := map[string][]cluster.Class{
		"water": {
			{mk("water", "en", 0), mk("water", "fr", 1)},
		},
	}
	gold := map[ingest.Ref]string{
		ref("en", 0): "A",
		ref("fr", 1): "B",
	}

	s := BCubed(classes, gold)
	approx(t, "precision", s.Precision, 0.5)
	approx(t, "recall", s.Recall, 1)
	approx(t, "f", s.F, 2.0/3.0)
}

func TestBCubedOverSplit(t *testing.T) {
	// One gold class of two entries split into singletons: precision 1,
	// per-item recall 1/2.
	classes := map[string][]cluster.Class{
		"water": {
			{mk("water", "en", 0)},
			{mk("water", "de", 1)},
		},
	}
	gold := map[ingest.Ref]string{
		ref("en", 0): "A",
		ref("de", 1): "A",
	}

	s := BCubed(classes, gold)
	approx(t, "precision", s.Precision, 1)
	approx(t, "recall", s.Recall, 0.5)
	approx(t, "f", s.F, 2.0/3.0)
}

func TestBCubedIgnoresUnlabeled(t *testing.T) {
	// The unlabeled de entry must not dilute the en/fr scores.
	classes := map[string][]cluster.Class{
		"water": {
			{mk("water", "en", 0), mk("water", "de", 1)},
			{mk("water", "fr", 2)},
		},
	}
	gold := map[ingest.Ref]string{
		ref("en", 0): "A",
		ref("fr", 2): "B",
	}

	s := BCubed(classes, gold)
	approx(t, "precision", s.Precision, 1)
	approx(t, "recall", s.Recall, 1)
}

func TestBCubedMixedClass(t *testing.T) {
	// Three entries predicted together, gold splits them 2+1:
	// items of class A score precision 2/3, the B item 1/3; recall 1.
	classes := map[string][]cluster.Class{
		"water": {
			{mk("water", "en", 0), mk("water", "de", 1), mk("water", "fr", 2)},
		},
	}
	gold := map[ingest.Ref]string{
		ref("en", 0): "A",
		ref("de", 1): "A",
		ref("fr", 2): "B",
	}

	s := BCubed(classes, gold)
	approx(t, "precision", s.Precision, (2.0/3.0+2.0/3.0+1.0/3.0)/3.0)
	approx(t, "recall", s.Recall, 1)
}

func TestBCubedEmpty(t *testing.T) {
	s := BCubed(nil, nil)
	if s.Precision != 0 || s.Recall != 0 || s.F != 0 {
		t.Errorf("empty input scores = %+v, want zeros", s)
	}
}
