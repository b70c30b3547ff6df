// Package rank assigns every node an integer layer via longest-path
// layering (Kahn's algorithm), with a sentinel rank for nodes that
// participate in a cycle, then applies SameRank and MinLength constraints.
package rank

import (
	"sort"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/diagramlayout/pkg/graphbuild"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

// Map is a total function node index -> rank.
type Map []int

// Assign computes ranks for g: Kahn's algorithm seeded in ascending node
// order, successors processed in ascending order, unvisited (cyclic)
// nodes placed on maxRank+1. Constraints are applied afterward in
// declaration order, SameRank class before MinLength class.
func Assign(g *graphbuild.Graph, constraints []ir.Constraint) Map {
	n := g.N
	ranks := make(Map, n)
	indeg := make([]int, n)
	for v := 0; v < n; v++ {
		indeg[v] = len(g.Reverse[v])
	}

	// Deterministic ascending-ID queue: a sorted slice acting as a FIFO,
	// refilled by inserting newly-zero nodes in ascending order via a
	// simple heap-free merge since batches are small relative to n.
	queue := make([]int, 0, n)
	for u := 0; u < n; u++ {
		if indeg[u] == 0 {
			queue = append(queue, u)
		}
	}
	sort.Ints(queue)

	visited := make([]bool, n)
	maxRank := 0
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if visited[u] {
			continue
		}
		visited[u] = true
		if ranks[u] > maxRank {
			maxRank = ranks[u]
		}
		var newlyZero []int
		for _, v32 := range g.Forward[u] {
			v := int(v32)
			if ranks[v] < ranks[u]+1 {
				ranks[v] = ranks[u] + 1
			}
			indeg[v]--
			if indeg[v] == 0 {
				newlyZero = append(newlyZero, v)
			}
		}
		if len(newlyZero) > 0 {
			sort.Ints(newlyZero)
			queue = mergeSorted(queue, newlyZero)
		}
	}

	sentinel := maxRank + 1
	for v := 0; v < n; v++ {
		if !visited[v] {
			ranks[v] = sentinel
		}
	}

	applyConstraints(g, ranks, constraints)
	return ranks
}

// CyclicNodes returns the set of node indices gonum's strongly connected
// component analysis identifies as participating in a cycle (components of
// size > 1; self-loops are not in the layered graph, so a lone node is
// never reported). Used only for
// diagnostics; rank placement itself is driven by Kahn's visited set in
// Assign.
func CyclicNodes(g *graphbuild.Graph) map[int]bool {
	out := make(map[int]bool)
	sccs := topo.TarjanSCC(g.Underlying())
	for _, scc := range sccs {
		if len(scc) > 1 {
			for _, nd := range scc {
				out[int(nd.ID())] = true
			}
		}
	}
	return out
}

// mergeSorted merges two ascending slices into one ascending slice.
func mergeSorted(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

func applyConstraints(g *graphbuild.Graph, ranks Map, constraints []ir.Constraint) {
	idIndex := make(map[string]int, len(g.NodeIDs))
	for i, id := range g.NodeIDs {
		idIndex[id] = i
	}

	for _, c := range constraints {
		if c.Kind != ir.ConstraintSameRank {
			continue
		}
		applySameRank(ranks, idIndex, c.SameRankIDs)
	}
	for _, c := range constraints {
		if c.Kind != ir.ConstraintMinLength {
			continue
		}
		applyMinLength(ranks, idIndex, c.MinLengthFrom, c.MinLengthTo, c.MinLengthK)
	}
}

func applySameRank(ranks Map, idIndex map[string]int, ids []string) {
	minRank := -1
	var members []int
	for _, id := range ids {
		i, ok := idIndex[id]
		if !ok {
			continue // unknown IDs are silently ignored
		}
		members = append(members, i)
		if minRank == -1 || ranks[i] < minRank {
			minRank = ranks[i]
		}
	}
	if minRank == -1 {
		return
	}
	for _, i := range members {
		ranks[i] = minRank
	}
}

func applyMinLength(ranks Map, idIndex map[string]int, from, to string, k int) {
	fi, ok1 := idIndex[from]
	ti, ok2 := idIndex[to]
	if !ok1 || !ok2 {
		return
	}
	if ranks[ti]-ranks[fi] < k {
		ranks[ti] = ranks[fi] + k
	}
}

// Buckets partitions node indices by rank, each bucket ordered ascending
// by node ID (the deterministic baseline order before crossing
// minimization reorders within a bucket).
func Buckets(g *graphbuild.Graph, ranks Map) [][]int {
	if g.N == 0 {
		return nil
	}
	maxR := 0
	for _, r := range ranks {
		if r > maxR {
			maxR = r
		}
	}
	buckets := make([][]int, maxR+1)
	for v, r := range ranks {
		buckets[r] = append(buckets[r], v)
	}
	for r := range buckets {
		sort.Slice(buckets[r], func(a, b int) bool {
			return g.NodeIDs[buckets[r][a]] < g.NodeIDs[buckets[r][b]]
		})
	}
	return buckets
}
