// Package graphbuild builds the layered graph's adjacency structure from an
// IR: forward/reverse adjacency lists, deduplicated and sorted ascending
// for determinism, with self-loops excluded from the layered graph but
// preserved separately for the router. Backed by gonum's directed graph
// type so downstream stages can reuse gonum graph algorithms directly.
package graphbuild

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

// Graph is the internal layered-graph representation: index-based
// adjacency over ir.Nodes, with edges resolved from endpoints to owning
// nodes and self-loops split out.
type Graph struct {
	N int

	Forward [][]int32 // ascending, deduped
	Reverse [][]int32 // ascending, deduped

	// Edges pairs each kept (non-self-loop) graph edge with the
	// originating IR edge index, sorted ascending by (from, to) so
	// downstream stages can walk edges deterministically. Parallel edges
	// between the same pair are deduplicated here; this view feeds the
	// adjacency-based stages (rank assignment, crossing minimization),
	// so it holds at most one entry per distinct (from, to) pair.
	Edges []ResolvedEdge

	// KeptEdges lists every edge that resolved and isn't a self-loop, one
	// entry per original IR edge (including parallel duplicates), sorted
	// by IRIndex ascending. Routing and bundling need every original
	// edge, not just the deduplicated adjacency used for layering, so
	// they walk this instead of Edges.
	KeptEdges []ResolvedEdge

	// SelfLoops lists IR edge indices whose resolved endpoints are the
	// same node; excluded from Forward/Reverse, kept for the router.
	SelfLoops []int

	// Dropped lists IR edge indices whose endpoints did not resolve
	// (out-of-range index) and were silently excluded.
	Dropped []int

	// NodeIDs is the stable string ID per node index, used for tie-breaks
	// downstream (rank assignment, crossing minimization).
	NodeIDs []string

	// g is the gonum backing graph; int64(nodeIndex) is used as the node
	// ID. Exposed via Underlying for components that want to reuse gonum
	// algorithms (e.g. topo.TarjanSCC for cycle detection).
	g *simple.DirectedGraph
}

// ResolvedEdge is an IR edge resolved to node indices.
type ResolvedEdge struct {
	IRIndex  int
	From, To int
}

// Underlying returns the gonum directed graph backing this Graph, for
// reuse by gonum graph algorithms (e.g. topo.TarjanSCC).
func (g *Graph) Underlying() *simple.DirectedGraph { return g.g }

// Build constructs a Graph from an IR.
func Build(d *ir.IR) *Graph {
	n := len(d.Nodes)
	g := &Graph{
		N:       n,
		Forward: make([][]int32, n),
		Reverse: make([][]int32, n),
		NodeIDs: make([]string, n),
		g:       simple.NewDirectedGraph(),
	}
	for i, nd := range d.Nodes {
		g.NodeIDs[i] = nd.ID
		g.g.AddNode(simple.Node(int64(i)))
	}

	type pair struct{ from, to int }
	seen := make(map[pair]bool)

	for i, e := range d.Edges {
		from, ok1 := d.ResolveEndpoint(e.From)
		to, ok2 := d.ResolveEndpoint(e.To)
		if !ok1 || !ok2 {
			g.Dropped = append(g.Dropped, i)
			continue
		}
		if from == to {
			g.SelfLoops = append(g.SelfLoops, i)
			continue
		}
		g.KeptEdges = append(g.KeptEdges, ResolvedEdge{IRIndex: i, From: from, To: to})
		p := pair{from, to}
		if seen[p] {
			continue
		}
		seen[p] = true
		g.Forward[from] = append(g.Forward[from], int32(to))
		g.Reverse[to] = append(g.Reverse[to], int32(from))
		g.Edges = append(g.Edges, ResolvedEdge{IRIndex: i, From: from, To: to})
		if !g.g.HasEdgeFromTo(int64(from), int64(to)) {
			g.g.SetEdge(g.g.NewEdge(simple.Node(int64(from)), simple.Node(int64(to))))
		}
	}
	sort.Slice(g.KeptEdges, func(a, b int) bool { return g.KeptEdges[a].IRIndex < g.KeptEdges[b].IRIndex })

	for i := range g.Forward {
		sort.Slice(g.Forward[i], func(a, b int) bool { return g.Forward[i][a] < g.Forward[i][b] })
		sort.Slice(g.Reverse[i], func(a, b int) bool { return g.Reverse[i][a] < g.Reverse[i][b] })
	}
	sort.Slice(g.Edges, func(a, b int) bool {
		if g.Edges[a].From != g.Edges[b].From {
			return g.Edges[a].From < g.Edges[b].From
		}
		return g.Edges[a].To < g.Edges[b].To
	})

	return g
}

// Density returns edge count over the maximum possible directed edge count
// (n*(n-1)), 0 for n<2. No layout stage or evidence event reads it.
func (g *Graph) Density() float64 {
	if g.N < 2 {
		return 0
	}
	maxEdges := float64(g.N) * float64(g.N-1)
	return float64(len(g.Edges)) / maxEdges
}

// Degrees returns per-node out-degree and in-degree.
func (g *Graph) Degrees() (out, in []int) {
	out = make([]int, g.N)
	in = make([]int, g.N)
	for u := range g.Forward {
		out[u] = len(g.Forward[u])
	}
	for v := range g.Reverse {
		in[v] = len(g.Reverse[v])
	}
	return out, in
}
