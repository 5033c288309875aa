// Package evaluate scores predicted cognate classes against expert
// annotations. Gold identifiers come from the reader layer and are
// never visible to training.
package evaluate

import (
	"github.com/cognicore/kognate/pkg/kognate/cluster"
	"github.com/cognicore/kognate/pkg/kognate/ingest"
)

// Scores holds B-cubed precision, recall and their harmonic mean.
type Scores struct {
	Precision float64
	Recall    float64
	F         float64
}

// BCubed computes item-averaged B-cubed scores of the predicted
// partition against the gold classes. Entries without a gold label
// are ignored. For each entry, precision is the fraction of its
// predicted class sharing its gold class, recall the fraction of its
// gold class sharing its predicted class.
func BCubed(classes map[string][]cluster.Class, gold map[ingest.Ref]string) Scores {
	pred := make(map[ingest.Ref]int)
	predSize := make(map[int]int)
	next := 0
	for _, conceptClasses := range classes {
		for _, class := range conceptClasses {
			id := next
			next++
			for _, w := range class {
				ref := ingest.Ref{Language: w.Language, Line: w.Line}
				if _, ok := gold[ref]; !ok {
					continue
				}
				pred[ref] = id
				predSize[id]++
			}
		}
	}

	goldSize := make(map[string]int)
	for ref, g := range gold {
		if _, ok := pred[ref]; ok {
			goldSize[g]++
		}
	}

	// overlap[{pred, gold}] = entries sharing both classes
	type cell struct {
		p int
		g string
	}
	overlap := make(map[cell]int)
	for ref, p := range pred {
		overlap[cell{p: p, g: gold[ref]}]++
	}

	var sumP, sumR float64
	n := 0
	for ref, p := range pred {
		o := float64(overlap[cell{p: p, g: gold[ref]}])
		sumP += o / float64(predSize[p])
		sumR += o / float64(goldSize[gold[ref]])
		n++
	}
	if n == 0 {
		return Scores{}
	}

	s := Scores{
		Precision: sumP / float64(n),
		Recall:    sumR / float64(n),
	}
	if s.Precision+s.Recall > 0 {
		s.F = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}
