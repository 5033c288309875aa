// Package cluster partitions the words of each concept into cognate
// classes. It builds a weighted similarity graph from alignment
// scores under the frozen PMI matrix, drops edges below a threshold,
// and applies a community-detection method per connected component.
package cluster

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/cognicore/kognate/pkg/kognate/align"
	"github.com/cognicore/kognate/pkg/kognate/internalerr"
	"github.com/cognicore/kognate/pkg/kognate/word"
)

// Method selects the graph-partitioning strategy. The set is closed;
// adding a method means extending this enum and the dispatch in
// partitionComponent.
type Method int

const (
	// LabelProp is asynchronous label propagation (stochastic, seeded).
	LabelProp Method = iota
	// Multilevel is greedy modularity merging (Louvain).
	Multilevel
	// SpinGlass is simulated annealing of a Potts spin model
	// (stochastic, seeded).
	SpinGlass
	// EdgeBetweenness is divisive Girvan-Newman edge removal,
	// keeping the partition with the highest modularity.
	EdgeBetweenness
	// Infomap is greedy two-level map-equation minimization.
	Infomap
)

var methodNames = map[Method]string{
	LabelProp:       "labelprop",
	Multilevel:      "multilevel",
	SpinGlass:       "spinglass",
	EdgeBetweenness: "ebet",
	Infomap:         "infomap",
}

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// ParseMethod maps a configuration name to a Method.
func ParseMethod(s string) (Method, error) {
	for m, name := range methodNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("cluster: %q: %w", s, internalerr.ErrUnknownMethod)
}

// Config holds the clustering parameters.
type Config struct {
	Method Method

	// Threshold is the similarity cutoff: node pairs whose alignment
	// score falls below it get no edge.
	Threshold float64

	// Seed drives the stochastic methods and the multilevel node
	// ordering.
	Seed int64

	// GroupByLanguage switches to the coarse mode where each node is
	// one language's word list for the concept and edge weights are
	// the best cross-language alignment score.
	GroupByLanguage bool
}

// Class is one cognate class: a set of words deemed to share
// ancestry within a concept.
type Class []word.Word

// Clusterer runs one-shot cognate clustering with a frozen scoring
// aligner.
type Clusterer struct {
	cfg     Config
	aligner *align.Aligner
}

// New creates a clusterer. The aligner must already carry the final
// substitution scores and gap penalties.
func New(cfg Config, aligner *align.Aligner) *Clusterer {
	return &Clusterer{cfg: cfg, aligner: aligner}
}

// Partition clusters every concept independently and returns the
// classes per concept. Within a concept the classes are disjoint and
// cover all its words.
func (c *Clusterer) Partition(byConcept map[string][]word.Word) (map[string][]Class, error) {
	out := make(map[string][]Class, len(byConcept))
	concepts := make([]string, 0, len(byConcept))
	for concept := range byConcept {
		concepts = append(concepts, concept)
	}
	sort.Strings(concepts)

	for _, concept := range concepts {
		classes, err := c.Concept(byConcept[concept])
		if err != nil {
			return nil, fmt.Errorf("cluster: concept %q: %w", concept, err)
		}
		out[concept] = classes
	}
	return out, nil
}

// Concept clusters the words of a single concept. The threshold must
// be non-negative: it is the only thing keeping negative alignment
// scores out of the graph, and the community-detection backends reject
// negative edge weights.
func (c *Clusterer) Concept(words []word.Word) ([]Class, error) {
	if c.cfg.Threshold < 0 {
		return nil, fmt.Errorf("cluster: threshold %g admits negative edge weights: %w",
			c.cfg.Threshold, internalerr.ErrInvalidConfig)
	}
	groups := c.nodes(words)
	if len(groups) == 0 {
		return nil, nil
	}

	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := range groups {
		g.AddNode(simple.Node(int64(i)))
	}
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			w := c.weight(groups[i], groups[j])
			if w < c.cfg.Threshold {
				continue
			}
			g.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(int64(i)),
				T: simple.Node(int64(j)),
				W: w,
			})
		}
	}

	var classes []Class
	for _, comp := range sortedComponents(g) {
		var parts [][]int64
		if len(comp) <= 2 {
			parts = [][]int64{comp}
		} else {
			var err error
			parts, err = c.partitionComponent(g, comp)
			if err != nil {
				return nil, err
			}
		}
		for _, part := range parts {
			var class Class
			for _, id := range part {
				class = append(class, groups[id]...)
			}
			classes = append(classes, class)
		}
	}
	return classes, nil
}

// nodes maps words to graph nodes: singletons in the default mode,
// per-language word lists in the coarse mode. Order is deterministic.
func (c *Clusterer) nodes(words []word.Word) [][]word.Word {
	if !c.cfg.GroupByLanguage {
		groups := make([][]word.Word, len(words))
		for i, w := range words {
			groups[i] = []word.Word{w}
		}
		return groups
	}

	byLang := make(map[string][]word.Word)
	for _, w := range words {
		byLang[w.Language] = append(byLang[w.Language], w)
	}
	langs := make([]string, 0, len(byLang))
	for l := range byLang {
		langs = append(langs, l)
	}
	sort.Strings(langs)

	groups := make([][]word.Word, len(langs))
	for i, l := range langs {
		groups[i] = byLang[l]
	}
	return groups
}

// weight scores two nodes: the alignment score for singletons, the
// best cross-product score for language groups.
func (c *Clusterer) weight(a, b []word.Word) float64 {
	best := math.Inf(-1)
	for _, wa := range a {
		for _, wb := range b {
			s, _ := c.aligner.Align(wa.Symbols, wb.Symbols)
			if s > best {
				best = s
			}
		}
	}
	return best
}

// partitionComponent dispatches one connected component (size > 2)
// to the configured method. Results are node-ID groups.
func (c *Clusterer) partitionComponent(g *simple.WeightedUndirectedGraph, comp []int64) ([][]int64, error) {
	switch c.cfg.Method {
	case Multilevel:
		return c.multilevel(g, comp)
	case EdgeBetweenness:
		return c.edgeBetweenness(g, comp)
	case LabelProp:
		adj, nodes := adjacency(g, comp)
		rng := rand.New(rand.NewSource(c.cfg.Seed))
		return labelPropagation(nodes, adj, rng), nil
	case Infomap:
		adj, nodes := adjacency(g, comp)
		return infomap(nodes, adj), nil
	case SpinGlass:
		adj, nodes := adjacency(g, comp)
		rng := rand.New(rand.NewSource(c.cfg.Seed))
		return spinGlass(nodes, adj, rng), nil
	default:
		return nil, fmt.Errorf("cluster: %v: %w", c.cfg.Method, internalerr.ErrUnknownMethod)
	}
}

// multilevel runs gonum's Louvain modularity optimization on the
// induced subgraph.
func (c *Clusterer) multilevel(g *simple.WeightedUndirectedGraph, comp []int64) ([][]int64, error) {
	sub := induced(g, comp)
	reduced := community.Modularize(sub, 1.0, exprand.NewSource(uint64(c.cfg.Seed)))
	var parts [][]int64
	for _, comm := range reduced.Communities() {
		part := make([]int64, 0, len(comm))
		for _, n := range comm {
			part = append(part, n.ID())
		}
		sort.Slice(part, func(i, j int) bool { return part[i] < part[j] })
		parts = append(parts, part)
	}
	sortParts(parts)
	return parts, nil
}

// edgeBetweenness runs Girvan-Newman: repeatedly remove the edge with
// the highest betweenness and keep the component partition with the
// best modularity on the original subgraph.
func (c *Clusterer) edgeBetweenness(g *simple.WeightedUndirectedGraph, comp []int64) ([][]int64, error) {
	orig := induced(g, comp)
	work := induced(g, comp)

	best := components(work)
	bestQ := modularity(orig, best)

	for work.Edges().Len() > 0 {
		eb := network.EdgeBetweenness(work)
		var cut [2]int64
		found := false
		top := math.Inf(-1)
		for k, v := range eb {
			if v > top || (v == top && less(k, cut)) {
				top = v
				cut = k
				found = true
			}
		}
		if !found {
			break
		}
		work.RemoveEdge(cut[0], cut[1])

		parts := components(work)
		if q := modularity(orig, parts); q > bestQ {
			bestQ = q
			best = parts
		}
	}
	sortParts(best)
	return best, nil
}

func less(a, b [2]int64) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}

// modularity evaluates a node-ID partition on g via community.Q.
func modularity(g *simple.WeightedUndirectedGraph, parts [][]int64) float64 {
	comms := make([][]graph.Node, len(parts))
	for i, part := range parts {
		for _, id := range part {
			comms[i] = append(comms[i], simple.Node(id))
		}
	}
	return community.Q(g, comms, 1.0)
}

// components returns the connected components of g as sorted node-ID
// groups.
func components(g *simple.WeightedUndirectedGraph) [][]int64 {
	var parts [][]int64
	for _, comp := range topo.ConnectedComponents(g) {
		part := make([]int64, 0, len(comp))
		for _, n := range comp {
			part = append(part, n.ID())
		}
		sort.Slice(part, func(i, j int) bool { return part[i] < part[j] })
		parts = append(parts, part)
	}
	sortParts(parts)
	return parts
}

// sortedComponents returns g's connected components ordered by their
// smallest node ID, for deterministic output.
func sortedComponents(g *simple.WeightedUndirectedGraph) [][]int64 {
	return components(g)
}

// induced builds a copy of the subgraph spanned by the given nodes.
func induced(g *simple.WeightedUndirectedGraph, comp []int64) *simple.WeightedUndirectedGraph {
	sub := simple.NewWeightedUndirectedGraph(0, 0)
	in := make(map[int64]bool, len(comp))
	for _, id := range comp {
		in[id] = true
		sub.AddNode(simple.Node(id))
	}
	for _, id := range comp {
		to := g.From(id)
		for to.Next() {
			other := to.Node().ID()
			if !in[other] || other <= id {
				continue
			}
			if w, ok := g.Weight(id, other); ok {
				sub.SetWeightedEdge(simple.WeightedEdge{
					F: simple.Node(id),
					T: simple.Node(other),
					W: w,
				})
			}
		}
	}
	return sub
}

// adjacency extracts sorted adjacency lists for the custom methods.
func adjacency(g *simple.WeightedUndirectedGraph, comp []int64) (map[int64][]neighbor, []int64) {
	nodes := make([]int64, len(comp))
	copy(nodes, comp)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	in := make(map[int64]bool, len(nodes))
	for _, id := range nodes {
		in[id] = true
	}

	adj := make(map[int64][]neighbor, len(nodes))
	for _, id := range nodes {
		to := g.From(id)
		for to.Next() {
			other := to.Node().ID()
			if !in[other] {
				continue
			}
			if w, ok := g.Weight(id, other); ok {
				adj[id] = append(adj[id], neighbor{id: other, w: w})
			}
		}
		sort.Slice(adj[id], func(i, j int) bool { return adj[id][i].id < adj[id][j].id })
	}
	return adj, nodes
}

// sortParts orders a partition by each part's first node ID.
func sortParts(parts [][]int64) {
	sort.Slice(parts, func(i, j int) bool {
		if len(parts[i]) == 0 || len(parts[j]) == 0 {
			return len(parts[i]) > len(parts[j])
		}
		return parts[i][0] < parts[j][0]
	})
}
