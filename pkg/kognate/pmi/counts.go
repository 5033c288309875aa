package pmi

import (
	"fmt"
	"math"

	"github.com/cognicore/kognate/pkg/kognate/align"
	"github.com/cognicore/kognate/pkg/kognate/internalerr"
)

// Pseudocount is the default smoothing mass given to every symbol
// pair when an accumulator is pre-populated over the alphabet.
const Pseudocount = 0.001

// Accumulator gathers the sufficient statistics of one mini-batch:
// symmetric co-occurrence counts per symbol pair and marginal counts
// per symbol. It is consumed by Scores and then discarded.
type Accumulator struct {
	pairs map[Key]float64
	marg  map[string]float64
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		pairs: make(map[Key]float64),
		marg:  make(map[string]float64),
	}
}

// AddPseudocounts spreads eps over every ordered symbol pair of the
// alphabet, so that rare correspondences keep finite scores.
func (c *Accumulator) AddPseudocounts(alphabet []string, eps float64) {
	for i := 0; i < len(alphabet); i++ {
		for j := i; j < len(alphabet); j++ {
			c.add(alphabet[i], alphabet[j], eps)
		}
	}
}

// Observe counts every non-gap site of an alignment. Each aligned
// pair (a,b) adds 1 to the counts of (a,b) and (b,a); each symbol's
// marginal grows by 2, once for each of its two roles.
func (c *Accumulator) Observe(aln align.Alignment) {
	for _, site := range aln {
		if site.IsGap() {
			continue
		}
		c.add(site.A, site.B, 1)
	}
}

func (c *Accumulator) add(a, b string, w float64) {
	c.pairs[Key{A: a, B: b}] += w
	c.pairs[Key{A: b, B: a}] += w
	c.marg[a] += 2 * w
	c.marg[b] += 2 * w
}

// Pairs returns the number of distinct ordered pairs observed.
func (c *Accumulator) Pairs() int {
	return len(c.pairs)
}

// Scores computes the PMI estimate for every observed pair:
//
//	score(a,b) = log m(a,b) - log Σm - log n(a) - log n(b) + 2 log Σn
//
// where m are co-occurrence counts and n marginals over normalized
// frequencies. A non-positive observed count signals corrupted
// accumulation and aborts with an invariant-violation error instead
// of silently producing -Inf.
func (c *Accumulator) Scores() (map[Key]float64, error) {
	if len(c.pairs) == 0 {
		return map[Key]float64{}, nil
	}

	var totalPairs, totalMarg float64
	for _, v := range c.pairs {
		totalPairs += v
	}
	for _, v := range c.marg {
		totalMarg += v
	}
	logWeight := 2*math.Log(totalMarg) - math.Log(totalPairs)

	scores := make(map[Key]float64, len(c.pairs))
	for k, m := range c.pairs {
		if m <= 0 {
			return nil, fmt.Errorf(
				"pmi: co-occurrence count %g for (%s,%s): %w",
				m, k.A, k.B, internalerr.ErrInvariant)
		}
		scores[k] = math.Log(m) - math.Log(c.marg[k.A]) - math.Log(c.marg[k.B]) + logWeight
	}
	return scores, nil
}
