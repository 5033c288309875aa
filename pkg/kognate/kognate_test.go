package kognate

import (
	"context"
	"testing"

	"github.com/cognicore/kognate/pkg/kognate/config"
	"github.com/cognicore/kognate/pkg/kognate/ingest"
	"github.com/cognicore/kognate/pkg/kognate/pmi"
	"github.com/cognicore/kognate/pkg/kognate/store/memstore"
	"github.com/cognicore/kognate/pkg/kognate/word"
)

func mk(concept, lang string, line int, s string) word.Word {
	syms := make([]string, 0, len(s))
	for _, r := range s {
		syms = append(syms, string(r))
	}
	return word.Word{Concept: concept, Language: lang, Line: line, Symbols: syms}
}

// wvDataset holds cognate en/de pairs that differ in one regular w/v
// correspondence, which training should learn to reward.
func wvDataset() *ingest.Dataset {
	byConcept := map[string][]word.Word{
		"water": {mk("water", "en", 0, "watr"), mk("water", "de", 1, "votr")},
		"wind":  {mk("wind", "en", 2, "wint"), mk("wind", "de", 3, "vint")},
		"wolf":  {mk("wolf", "en", 4, "wolf"), mk("wolf", "de", 5, "volf")},
	}
	return &ingest.Dataset{
		ByConcept: byConcept,
		Gold: map[ingest.Ref]string{
			{Language: "en", Line: 0}: "1", {Language: "de", Line: 1}: "1",
			{Language: "en", Line: 2}: "2", {Language: "de", Line: 3}: "2",
			{Language: "en", Line: 4}: "3", {Language: "de", Line: 5}: "3",
		},
		Languages: []string{"de", "en"},
		Alphabet:  []string{"a", "f", "i", "l", "n", "o", "r", "t", "v", "w"},
	}
}

func testConfig() config.Config {
	cfg := config.Default()
	// The matrix starts at zero, so every alignment scores zero; a
	// zero margin lets the first batches through.
	cfg.Margin = 0
	cfg.MaxIter = 5
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	eng, err := New(Options{Config: testConfig()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := eng.Run(context.Background(), wvDataset())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.RunID == "" {
		t.Error("empty run ID")
	}
	if res.InitialPairs != 3 || res.FinalPairs != 3 {
		t.Errorf("pairs = %d -> %d, want 3 -> 3", res.InitialPairs, res.FinalPairs)
	}
	if len(res.Epochs) != 5 {
		t.Errorf("epochs = %d, want 5", len(res.Epochs))
	}

	if got := res.Matrix.Score("w", "v"); got <= 0 {
		t.Errorf("score(w,v) = %f, want positive", got)
	}

	// Each concept's pair scores well above the threshold and lands in
	// one class.
	for _, concept := range []string{"water", "wind", "wolf"} {
		classes := res.Classes[concept]
		if len(classes) != 1 {
			t.Errorf("%s: %d classes, want 1", concept, len(classes))
			continue
		}
		if len(classes[0]) != 2 {
			t.Errorf("%s: class size %d, want 2", concept, len(classes[0]))
		}
	}
}

func TestRunPersists(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	eng, err := New(Options{Config: testConfig(), Store: st})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := eng.Run(ctx, wvDataset())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	run, ok, err := st.GetRun(ctx, res.RunID)
	if err != nil || !ok {
		t.Fatalf("GetRun: ok=%v err=%v", ok, err)
	}
	if run.Method != "infomap" || run.Epochs != 5 {
		t.Errorf("run = %+v", run)
	}
	if run.InitialPairs != res.InitialPairs || run.FinalPairs != res.FinalPairs {
		t.Errorf("pair counts differ: %+v vs %+v", run, res)
	}

	m, err := st.LoadMatrix(ctx, res.RunID)
	if err != nil {
		t.Fatalf("LoadMatrix: %v", err)
	}
	if m.Score("w", "v") != res.Matrix.Score("w", "v") {
		t.Errorf("stored score(w,v) = %f, want %f",
			m.Score("w", "v"), res.Matrix.Score("w", "v"))
	}

	classes, err := st.LoadClasses(ctx, res.RunID)
	if err != nil {
		t.Fatalf("LoadClasses: %v", err)
	}
	if len(classes) != len(res.Classes) {
		t.Errorf("stored concepts = %d, want %d", len(classes), len(res.Classes))
	}
}

func TestRunDeterministic(t *testing.T) {
	run := func() *Result {
		eng, err := New(Options{Config: testConfig()})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		res, err := eng.Run(context.Background(), wvDataset())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return res
	}

	first, second := run(), run()

	a, b := first.Matrix.Items(), second.Matrix.Items()
	if len(a) != len(b) {
		t.Fatalf("matrix sizes differ: %d vs %d", len(a), len(b))
	}
	for k, v := range a {
		if b[k] != v {
			t.Errorf("score(%s,%s) differs: %f vs %f", k.A, k.B, v, b[k])
		}
	}

	for concept, classes := range first.Classes {
		other := second.Classes[concept]
		if len(classes) != len(other) {
			t.Errorf("%s: class counts differ: %d vs %d",
				concept, len(classes), len(other))
			continue
		}
		for i := range classes {
			if len(classes[i]) != len(other[i]) {
				t.Errorf("%s class %d: sizes differ", concept, i)
			}
		}
	}
}

func TestClusterWithLoadedMatrix(t *testing.T) {
	cfg := testConfig()
	eng, err := New(Options{Config: cfg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// A hand-built matrix standing in for a previously stored run.
	matrix := pmi.NewMatrix()
	for _, s := range []string{"a", "f", "i", "l", "n", "o", "r", "t"} {
		matrix.Set(s, s, 2)
	}
	matrix.Set("w", "v", 2)
	matrix.Set("a", "o", 1)

	classes, err := eng.Cluster(wvDataset(), matrix)
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	for _, concept := range []string{"water", "wind", "wolf"} {
		if len(classes[concept]) != 1 {
			t.Errorf("%s: %d classes, want 1", concept, len(classes[concept]))
		}
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Alpha = 2
	if _, err := New(Options{Config: cfg}); err == nil {
		t.Fatal("invalid config accepted")
	}
}
