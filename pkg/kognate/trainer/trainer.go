// Package trainer drives the online-EM estimation of the PMI
// substitution matrix: shuffled mini-batches of word pairs are
// aligned under the current matrix, low-scoring pairs are pruned
// permanently, and the surviving alignments' statistics are blended
// into the matrix with a decaying learning rate.
package trainer

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cognicore/kognate/pkg/kognate/align"
	"github.com/cognicore/kognate/pkg/kognate/internalerr"
	"github.com/cognicore/kognate/pkg/kognate/pmi"
	"github.com/cognicore/kognate/pkg/kognate/word"
)

// Config holds the training hyperparameters.
type Config struct {
	// Alpha is the stepsize-decay exponent; any 0.5 < alpha <= 1 is
	// valid. Smaller alpha means larger updates and faster decay of
	// old statistics.
	Alpha float64

	// Margin is the alignment-score cutoff: a pair scoring below
	// Margin is discarded permanently as non-cognate noise. A pair
	// scoring exactly Margin survives.
	Margin float64

	// BatchSize is the number of word pairs per update step.
	BatchSize int

	// MaxIter is the number of training epochs.
	MaxIter int

	// Tolerance is accepted for compatibility but does not terminate
	// training early; the loop always runs MaxIter epochs.
	Tolerance float64

	// Pseudocount is the smoothing mass spread over the alphabet in
	// every batch; 0 means pmi.Pseudocount.
	Pseudocount float64

	// Seed drives the per-epoch shuffle.
	Seed int64
}

// EpochReport is the observational per-epoch summary.
type EpochReport struct {
	Epoch     int
	Remaining int
	Pruned    int
}

// Trainer owns the matrix for the duration of training. It is the
// matrix's only writer; one batch update is applied fully before the
// next starts, which makes a run deterministic for a fixed seed.
type Trainer struct {
	cfg      Config
	matrix   *pmi.Matrix
	aligner  *align.Aligner
	alphabet []string
	rng      *rand.Rand
	nUpdates int
}

// New validates the configuration and creates a trainer writing into
// matrix. The aligner reads the live matrix on every call, so updates
// take effect from the next alignment on.
func New(cfg Config, matrix *pmi.Matrix, alphabet []string, gapOpen align.GapFunc, gapExtend float64) (*Trainer, error) {
	if cfg.Alpha <= 0.5 || cfg.Alpha > 1 {
		return nil, fmt.Errorf("trainer: alpha %g outside (0.5, 1]: %w",
			cfg.Alpha, internalerr.ErrInvalidConfig)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("trainer: batch size %d: %w",
			cfg.BatchSize, internalerr.ErrInvalidConfig)
	}
	if cfg.MaxIter <= 0 {
		return nil, fmt.Errorf("trainer: max iterations %d: %w",
			cfg.MaxIter, internalerr.ErrInvalidConfig)
	}
	if cfg.Tolerance < 0 {
		return nil, fmt.Errorf("trainer: tolerance %g: %w",
			cfg.Tolerance, internalerr.ErrInvalidConfig)
	}
	if cfg.Pseudocount <= 0 {
		cfg.Pseudocount = pmi.Pseudocount
	}
	if matrix == nil {
		matrix = pmi.NewMatrix()
	}
	if gapOpen == nil {
		gapOpen = align.SonorityGap()
	}
	return &Trainer{
		cfg:      cfg,
		matrix:   matrix,
		aligner:  align.New(matrix.Score, gapOpen, gapExtend),
		alphabet: alphabet,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Matrix returns the matrix being trained.
func (t *Trainer) Matrix() *pmi.Matrix {
	return t.matrix
}

// Updates returns the number of batch updates applied so far.
func (t *Trainer) Updates() int {
	return t.nUpdates
}

// Eta is the current learning rate (t+2)^(-alpha), strictly
// decreasing in the update counter and always in (0,1).
func (t *Trainer) Eta() float64 {
	return math.Pow(float64(t.nUpdates+2), -t.cfg.Alpha)
}

// Train runs MaxIter epochs over the working set, which only ever
// shrinks: a pair pruned in one epoch never returns. It returns the
// per-epoch reports and the surviving pairs. On an invariant
// violation the run aborts immediately.
func (t *Trainer) Train(pairs []word.Pair) ([]EpochReport, []word.Pair, error) {
	working := make([]word.Pair, len(pairs))
	copy(working, pairs)

	reports := make([]EpochReport, 0, t.cfg.MaxIter)
	for epoch := 1; epoch <= t.cfg.MaxIter; epoch++ {
		t.rng.Shuffle(len(working), func(i, j int) {
			working[i], working[j] = working[j], working[i]
		})

		kept := make([]word.Pair, 0, len(working))
		for start := 0; start < len(working); start += t.cfg.BatchSize {
			end := start + t.cfg.BatchSize
			if end > len(working) {
				end = len(working)
			}
			survivors, err := t.processBatch(working[start:end])
			if err != nil {
				return reports, working, err
			}
			kept = append(kept, survivors...)
		}

		pruned := len(working) - len(kept)
		working = kept
		reports = append(reports, EpochReport{
			Epoch:     epoch,
			Remaining: len(working),
			Pruned:    pruned,
		})
	}
	return reports, working, nil
}

// processBatch aligns one mini-batch, drops pairs below the margin,
// and applies a single online update from the survivors'
// statistics. A batch with no survivors contributes no statistics
// and does not advance the update counter.
func (t *Trainer) processBatch(batch []word.Pair) ([]word.Pair, error) {
	acc := pmi.NewAccumulator()
	acc.AddPseudocounts(t.alphabet, t.cfg.Pseudocount)

	survivors := make([]word.Pair, 0, len(batch))
	for _, p := range batch {
		score, aln := t.aligner.Align(p.A.Symbols, p.B.Symbols)
		if score < t.cfg.Margin {
			continue
		}
		survivors = append(survivors, p)
		acc.Observe(aln)
	}
	if len(survivors) == 0 {
		return survivors, nil
	}

	scores, err := acc.Scores()
	if err != nil {
		return nil, err
	}
	eta := t.Eta()
	for k, v := range scores {
		t.matrix.Blend(k, v, eta)
	}
	t.nUpdates++
	return survivors, nil
}
