package align

import "math"

// Gap is the explicit gap marker used in alignment sites. The reader
// layer strips "-" from raw forms, so it can never collide with a
// real symbol.
const Gap = "-"

// Site is one column of an alignment: two symbols, either of which
// may be the gap marker (never both).
type Site struct {
	A, B string
}

// IsGap reports whether either side of the site is a gap.
func (s Site) IsGap() bool {
	return s.A == Gap || s.B == Gap
}

// Alignment is an ordered sequence of aligned sites.
type Alignment []Site

// ScoreFunc looks up the substitution score for a symbol pair.
// Unseen pairs score 0.
type ScoreFunc func(a, b string) float64

// ZeroScore scores every substitution 0. It is the stand-in for an
// untrained matrix.
func ZeroScore(a, b string) float64 { return 0 }

// Aligner computes maximum-score global alignments under an affine
// gap model: a gap run of length L against symbols s1..sL costs
// GapOpen(s1) + L*GapExtend.
type Aligner struct {
	Score     ScoreFunc
	GapOpen   GapFunc
	GapExtend float64
}

// New creates an aligner. A nil score function means all-zero
// substitution scores; a nil gap-opening policy means no opening
// penalty.
func New(score ScoreFunc, gapOpen GapFunc, gapExtend float64) *Aligner {
	if score == nil {
		score = ZeroScore
	}
	if gapOpen == nil {
		gapOpen = ConstGap(0)
	}
	return &Aligner{Score: score, GapOpen: gapOpen, GapExtend: gapExtend}
}

// DP states. Ties are broken in this order, so a match/mismatch is
// always preferred over opening or extending a gap.
const (
	stateM byte = iota // a[i-1] aligned to b[j-1]
	stateX             // a[i-1] aligned to a gap
	stateY             // gap aligned to b[j-1]
)

// Align computes the optimal global alignment of a and b via a
// three-state Gotoh recurrence over a (len(a)+1)x(len(b)+1) table,
// O(n*m) time and space. It returns the optimal score and one optimal
// path; tie-breaking prefers match over a gap in b over a gap in a,
// which makes the result deterministic.
//
// Empty inputs are a defined base case: the score is the pure-gap
// cost of the non-empty side (0 if both are empty), never an error.
func (al *Aligner) Align(a, b []string) (float64, Alignment) {
	n, m := len(a), len(b)
	if n == 0 && m == 0 {
		return 0, nil
	}

	neg := math.Inf(-1)
	mM := newTable(n, m, neg)
	mX := newTable(n, m, neg)
	mY := newTable(n, m, neg)
	pM := newChoice(n, m)
	pX := newChoice(n, m)
	pY := newChoice(n, m)

	mM[0][0] = 0
	for i := 1; i <= n; i++ {
		if i == 1 {
			mX[i][0] = al.GapOpen(a[0]) + al.GapExtend
		} else {
			mX[i][0] = mX[i-1][0] + al.GapExtend
		}
		pX[i][0] = stateX
	}
	for j := 1; j <= m; j++ {
		if j == 1 {
			mY[0][j] = al.GapOpen(b[0]) + al.GapExtend
		} else {
			mY[0][j] = mY[0][j-1] + al.GapExtend
		}
		pY[0][j] = stateY
	}
	if n > 0 {
		pX[1][0] = stateM
	}
	if m > 0 {
		pY[0][1] = stateM
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			sub := al.Score(a[i-1], b[j-1])
			mM[i][j], pM[i][j] = best3(
				mM[i-1][j-1], mX[i-1][j-1], mY[i-1][j-1])
			mM[i][j] += sub

			open := al.GapOpen(a[i-1]) + al.GapExtend
			mX[i][j], pX[i][j] = best3(
				mM[i-1][j]+open, mX[i-1][j]+al.GapExtend, mY[i-1][j]+open)

			open = al.GapOpen(b[j-1]) + al.GapExtend
			mY[i][j], pY[i][j] = best3(
				mM[i][j-1]+open, mX[i][j-1]+open, mY[i][j-1]+al.GapExtend)
		}
	}

	score, state := best3(mM[n][m], mX[n][m], mY[n][m])

	// Traceback from (n, m) following the recorded predecessor states.
	var rev Alignment
	i, j := n, m
	for i > 0 || j > 0 {
		switch state {
		case stateM:
			rev = append(rev, Site{A: a[i-1], B: b[j-1]})
			state = pM[i][j]
			i--
			j--
		case stateX:
			rev = append(rev, Site{A: a[i-1], B: Gap})
			state = pX[i][j]
			i--
		default:
			rev = append(rev, Site{A: Gap, B: b[j-1]})
			state = pY[i][j]
			j--
		}
	}

	out := make(Alignment, len(rev))
	for k := range rev {
		out[k] = rev[len(rev)-1-k]
	}
	return score, out
}

func newTable(n, m int, fill float64) [][]float64 {
	t := make([][]float64, n+1)
	for i := range t {
		t[i] = make([]float64, m+1)
		for j := range t[i] {
			t[i][j] = fill
		}
	}
	return t
}

func newChoice(n, m int) [][]byte {
	t := make([][]byte, n+1)
	for i := range t {
		t[i] = make([]byte, m+1)
	}
	return t
}

// best3 returns the maximum of the three state scores and the state
// that achieved it, preferring M over X over Y on ties.
func best3(m, x, y float64) (float64, byte) {
	bestVal, bestState := m, stateM
	if x > bestVal {
		bestVal, bestState = x, stateX
	}
	if y > bestVal {
		bestVal, bestState = y, stateY
	}
	return bestVal, bestState
}
