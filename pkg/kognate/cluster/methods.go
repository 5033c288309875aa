package cluster

import (
	"math"
	"math/rand"
	"sort"
)

// neighbor is one weighted adjacency entry.
type neighbor struct {
	id int64
	w  float64
}

const labelPropMaxSweeps = 100

// labelPropagation assigns every node its own label and repeatedly
// lets each node adopt the label with the largest incident weight,
// visiting nodes in a seeded random order, until a sweep changes
// nothing. Ties go to the smallest label so a run is reproducible for
// a fixed seed.
func labelPropagation(nodes []int64, adj map[int64][]neighbor, rng *rand.Rand) [][]int64 {
	labels := make(map[int64]int64, len(nodes))
	for _, id := range nodes {
		labels[id] = id
	}

	order := make([]int64, len(nodes))
	copy(order, nodes)

	for sweep := 0; sweep < labelPropMaxSweeps; sweep++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		changed := false
		for _, id := range order {
			support := make(map[int64]float64)
			for _, nb := range adj[id] {
				support[labels[nb.id]] += nb.w
			}
			if len(support) == 0 {
				continue
			}
			best := labels[id]
			bestW := math.Inf(-1)
			for label, w := range support {
				if w > bestW || (w == bestW && label < best) {
					best = label
					bestW = w
				}
			}
			if best != labels[id] {
				labels[id] = best
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return groupByLabel(nodes, labels)
}

// infomap greedily minimizes the two-level map equation: starting
// from singleton modules, each node is moved to the neighboring
// module that most reduces the description length, sweeping in node
// order until no move helps. Node visitation is fixed, so the result
// is deterministic for a fixed graph.
func infomap(nodes []int64, adj map[int64][]neighbor) [][]int64 {
	deg := make(map[int64]float64, len(nodes))
	var m2 float64
	for _, id := range nodes {
		for _, nb := range adj[id] {
			deg[id] += nb.w
			m2 += nb.w
		}
	}
	if m2 <= 0 {
		// No positive flow; every node is its own module.
		parts := make([][]int64, len(nodes))
		for i, id := range nodes {
			parts[i] = []int64{id}
		}
		return parts
	}

	labels := make(map[int64]int64, len(nodes))
	for _, id := range nodes {
		labels[id] = id
	}

	im := &mapEquation{nodes: nodes, adj: adj, deg: deg, m2: m2}
	current := im.length(labels)

	for {
		improved := false
		for _, id := range nodes {
			seen := map[int64]bool{labels[id]: true}
			bestLabel := labels[id]
			bestLen := current
			for _, nb := range adj[id] {
				cand := labels[nb.id]
				if seen[cand] {
					continue
				}
				seen[cand] = true
				old := labels[id]
				labels[id] = cand
				if l := im.length(labels); l < bestLen-1e-12 {
					bestLen = l
					bestLabel = cand
				}
				labels[id] = old
			}
			if bestLabel != labels[id] {
				labels[id] = bestLabel
				current = bestLen
				improved = true
			}
		}
		if !improved {
			break
		}
	}
	return groupByLabel(nodes, labels)
}

// mapEquation evaluates the two-level description length of a module
// assignment, with node visit rates proportional to degree.
type mapEquation struct {
	nodes []int64
	adj   map[int64][]neighbor
	deg   map[int64]float64
	m2    float64
}

func (e *mapEquation) length(labels map[int64]int64) float64 {
	stay := make(map[int64]float64)  // sum of node visit rates per module
	exit := make(map[int64]float64)  // exit probability per module
	for _, id := range e.nodes {
		mod := labels[id]
		stay[mod] += e.deg[id] / e.m2
		for _, nb := range e.adj[id] {
			if labels[nb.id] != mod {
				exit[mod] += nb.w / e.m2
			}
		}
	}

	var sumExit, sumExitLog, sumJoint, sumNode float64
	for mod, q := range exit {
		sumExit += q
		sumExitLog += plogp(q)
		sumJoint += plogp(q + stay[mod])
	}
	for mod, p := range stay {
		if _, ok := exit[mod]; !ok {
			sumJoint += plogp(p)
		}
	}
	for _, id := range e.nodes {
		sumNode += plogp(e.deg[id] / e.m2)
	}
	return plogp(sumExit) - 2*sumExitLog - sumNode + sumJoint
}

func plogp(p float64) float64 {
	if p <= 0 {
		return 0
	}
	return p * math.Log2(p)
}

// Spin-glass annealing schedule.
const (
	spinGlassStartTemp = 1.0
	spinGlassStopTemp  = 0.01
	spinGlassCooling   = 0.95
	spinGlassMaxSpins  = 25
)

// spinGlass minimizes a Potts Hamiltonian with a configuration null
// model (Reichardt-Bornholdt at resolution 1) by simulated annealing
// of single-spin flips. Stochastic; reproducible for a fixed seed.
func spinGlass(nodes []int64, adj map[int64][]neighbor, rng *rand.Rand) [][]int64 {
	q := len(nodes)
	if q > spinGlassMaxSpins {
		q = spinGlassMaxSpins
	}

	deg := make(map[int64]float64, len(nodes))
	var m2 float64
	for _, id := range nodes {
		for _, nb := range adj[id] {
			deg[id] += nb.w
			m2 += nb.w
		}
	}
	if m2 <= 0 {
		m2 = 1
	}

	spins := make(map[int64]int, len(nodes))
	for _, id := range nodes {
		spins[id] = rng.Intn(q)
	}

	// Energy change of flipping one node to a candidate spin.
	delta := func(id int64, to int) float64 {
		from := spins[id]
		if to == from {
			return 0
		}
		var d float64
		for _, nb := range adj[id] {
			if spins[nb.id] == from {
				d += nb.w - deg[id]*deg[nb.id]/m2
			}
			if spins[nb.id] == to {
				d -= nb.w - deg[id]*deg[nb.id]/m2
			}
		}
		return d
	}

	for temp := spinGlassStartTemp; temp > spinGlassStopTemp; temp *= spinGlassCooling {
		for range nodes {
			id := nodes[rng.Intn(len(nodes))]
			to := rng.Intn(q)
			d := delta(id, to)
			if d <= 0 || rng.Float64() < math.Exp(-d/temp) {
				spins[id] = to
			}
		}
	}

	labels := make(map[int64]int64, len(nodes))
	for _, id := range nodes {
		labels[id] = int64(spins[id])
	}
	return groupByLabel(nodes, labels)
}

// groupByLabel converts a label assignment into sorted node groups.
func groupByLabel(nodes []int64, labels map[int64]int64) [][]int64 {
	byLabel := make(map[int64][]int64)
	for _, id := range nodes {
		byLabel[labels[id]] = append(byLabel[labels[id]], id)
	}
	parts := make([][]int64, 0, len(byLabel))
	for _, part := range byLabel {
		sort.Slice(part, func(i, j int) bool { return part[i] < part[j] })
		parts = append(parts, part)
	}
	sortParts(parts)
	return parts
}
