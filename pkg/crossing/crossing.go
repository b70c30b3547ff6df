// Package crossing minimizes edge crossings between adjacent ranks via
// iterated barycenter sweeps with cluster-contiguity grouping, counting
// crossings with a Fenwick (binary-indexed) tree for O(E log E) inversion
// counting per rank pair, and memoizing the best order seen.
package crossing

import (
	"math"
	"sort"

	"github.com/vanderheijden86/diagramlayout/internal/numeric"
	"github.com/vanderheijden86/diagramlayout/pkg/graphbuild"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
	"github.com/vanderheijden86/diagramlayout/pkg/rank"
)

// Result is the outcome of Minimize.
type Result struct {
	Order          [][]int
	Crossings      int
	IterationsUsed int
	BudgetExceeded bool
}

// Scratch holds the Fenwick tree and its dirty-index list, reused across
// rank-pair crossing counts within and across Minimize calls.
type Scratch struct {
	bit     []int
	touched []int
}

// NewScratch returns an empty Scratch; it grows to fit the largest rank
// width it is asked to handle and is sparse-reset between uses.
func NewScratch() *Scratch { return &Scratch{} }

func (s *Scratch) ensure(size int) {
	need := size + 1
	if cap(s.bit) < need {
		s.bit = make([]int, need)
	} else {
		s.bit = s.bit[:need]
		for i := range s.bit {
			s.bit[i] = 0
		}
	}
}

func (s *Scratch) resetDirty() {
	for _, i := range s.touched {
		s.bit[i] = 0
	}
	s.touched = s.touched[:0]
}

func (s *Scratch) update(i, size int) {
	for ; i <= size; i += i & (-i) {
		if s.bit[i] == 0 {
			s.touched = append(s.touched, i)
		}
		s.bit[i]++
	}
}

func (s *Scratch) query(i int) int {
	sum := 0
	for ; i > 0; i -= i & (-i) {
		sum += s.bit[i]
	}
	return sum
}

type edgePos struct{ src, dst int }

// CountPairCrossings counts crossings between two adjacent rank orders
// using the Fenwick tree, grouping by source position so edges sharing a
// source do not contribute to each other's count, stopping early (with
// hit=true) once the running total reaches limit.
func CountPairCrossings(edges []edgePos, lowerSize int, scratch *Scratch, limit int, runningTotal int) (total int, hit bool) {
	if len(edges) == 0 {
		return runningTotal, false
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].src != edges[j].src {
			return edges[i].src < edges[j].src
		}
		return edges[i].dst < edges[j].dst
	})
	scratch.resetDirty()
	scratch.ensure(lowerSize)

	inserted := 0
	total = runningTotal
	i := 0
	for i < len(edges) {
		j := i
		for j < len(edges) && edges[j].src == edges[i].src {
			j++
		}
		for k := i; k < j; k++ {
			greater := inserted - scratch.query(edges[k].dst+1)
			total += greater
		}
		for k := i; k < j; k++ {
			scratch.update(edges[k].dst+1, lowerSize)
			inserted++
		}
		if total >= limit {
			return total, true
		}
		i = j
	}
	return total, false
}

// BruteForceCrossings counts the same quantity by O(E^2) pairwise
// comparison, used only by tests to verify CountPairCrossings /
// totalCrossings.
func BruteForceCrossings(edges []edgePos) int {
	count := 0
	for i := range edges {
		for j := i + 1; j < len(edges); j++ {
			if edges[i].src == edges[j].src {
				continue
			}
			a, b := edges[i], edges[j]
			if (a.src < b.src && a.dst > b.dst) || (a.src > b.src && a.dst < b.dst) {
				count++
			}
		}
	}
	return count
}

func rankPairEdges(g *graphbuild.Graph, ranks rank.Map, position []int, upper int) []edgePos {
	var out []edgePos
	for _, e := range g.Edges {
		if ranks[e.From] == upper && ranks[e.To] == upper+1 {
			out = append(out, edgePos{src: position[e.From], dst: position[e.To]})
		}
	}
	return out
}

// totalCrossings sums crossings over every adjacent rank pair, stopping
// early once limit is reached (the value returned is then only a lower
// bound, sufficient for the "is this order worse" comparison in Minimize).
func totalCrossings(g *graphbuild.Graph, ranks rank.Map, order [][]int, scratch *Scratch, limit int) (int, bool) {
	position := positionsOf(order, g.N)
	total := 0
	for r := 0; r < len(order)-1; r++ {
		edges := rankPairEdges(g, ranks, position, r)
		var hit bool
		total, hit = CountPairCrossings(edges, len(order[r+1]), scratch, limit, total)
		if hit {
			return total, true
		}
	}
	return total, false
}

func positionsOf(order [][]int, n int) []int {
	pos := make([]int, n)
	for _, bucket := range order {
		for i, v := range bucket {
			pos[v] = i
		}
	}
	return pos
}

// Minimize runs iterated barycenter sweeps over the rank buckets derived
// from ranks, bounded by iterationBudget, and returns the best order found.
func Minimize(g *graphbuild.Graph, ranks rank.Map, clusters []ir.Cluster, iterationBudget int, scratch *Scratch) Result {
	order := rank.Buckets(g, ranks)
	clusterOf := buildClusterOf(g.N, clusters)

	best := cloneOrder(order)
	bestCrossings, _ := totalCrossings(g, ranks, order, scratch, math.MaxInt32)

	iterationsUsed := 0
	maxR := len(order) - 1

	for iterationsUsed < iterationBudget {
		iterationsUsed++
		position := positionsOf(order, g.N)

		for r := 1; r <= maxR; r++ {
			reorderRank(order[r], g, ranks, position, clusterOf, r, true)
			renumber(order[r], position)
		}
		for r := maxR - 1; r >= 0; r-- {
			reorderRank(order[r], g, ranks, position, clusterOf, r, false)
			renumber(order[r], position)
		}

		total, hit := totalCrossings(g, ranks, order, scratch, bestCrossings)
		if !hit && total < bestCrossings {
			bestCrossings = total
			best = cloneOrder(order)
		} else {
			order = cloneOrder(best)
			break
		}
	}

	return Result{
		Order:          best,
		Crossings:      bestCrossings,
		IterationsUsed: iterationsUsed,
		BudgetExceeded: iterationsUsed == iterationBudget,
	}
}

// ApplyOrderConstraints repositions each node carrying an OrderInRank
// constraint to the requested index within its rank bucket, clamped to the
// bucket's bounds, applied to the minimizer's final order in constraint
// declaration order. Unknown IDs are silently ignored.
func ApplyOrderConstraints(order [][]int, g *graphbuild.Graph, ranks rank.Map, constraints []ir.Constraint) {
	idIndex := make(map[string]int, len(g.NodeIDs))
	for i, id := range g.NodeIDs {
		idIndex[id] = i
	}
	for _, c := range constraints {
		if c.Kind != ir.ConstraintOrderInRank {
			continue
		}
		v, ok := idIndex[c.OrderNodeID]
		if !ok {
			continue
		}
		r := ranks[v]
		if r < 0 || r >= len(order) {
			continue
		}
		bucket := order[r]
		pos := -1
		for i, u := range bucket {
			if u == v {
				pos = i
				break
			}
		}
		if pos < 0 {
			continue
		}
		bucket = append(bucket[:pos], bucket[pos+1:]...)
		idx := c.OrderIndex
		if idx < 0 {
			idx = 0
		}
		if idx > len(bucket) {
			idx = len(bucket)
		}
		bucket = append(bucket[:idx], append([]int{v}, bucket[idx:]...)...)
		order[r] = bucket
	}
}

func cloneOrder(order [][]int) [][]int {
	out := make([][]int, len(order))
	for i, b := range order {
		out[i] = append([]int(nil), b...)
	}
	return out
}

func renumber(bucket []int, position []int) {
	for i, v := range bucket {
		position[v] = i
	}
}

func buildClusterOf(n int, clusters []ir.Cluster) []int {
	clusterOf := make([]int, n)
	for i := range clusterOf {
		clusterOf[i] = -1
	}
	for ci, c := range clusters {
		for _, m := range c.Members {
			if m >= 0 && m < n {
				clusterOf[m] = ci
			}
		}
	}
	return clusterOf
}

// reorderRank sorts bucket (the nodes at a given rank) by the composite key
// (cluster_barycenter, cluster_tag, node_barycenter, node_id), computing
// each node's barycenter from predecessors (usePred) or successors in the
// single adjacent rank. The composite key keeps cluster members contiguous
// without a separate compaction pass.
func reorderRank(bucket []int, g *graphbuild.Graph, ranks rank.Map, position []int, clusterOf []int, r int, usePred bool) {
	n := len(bucket)
	if n <= 1 {
		return
	}
	barycenter := make(map[int]float64, n)
	for _, v := range bucket {
		barycenter[v] = nodeBarycenter(g, ranks, position, v, r, usePred)
	}

	groupKey := func(v int) int {
		if clusterOf[v] >= 0 {
			return clusterOf[v]
		}
		return -(v + 1)
	}

	groupSum := make(map[int]float64, n)
	groupCount := make(map[int]int, n)
	for _, v := range bucket {
		k := groupKey(v)
		groupSum[k] += barycenter[v]
		groupCount[k]++
	}
	groupBary := make(map[int]float64, len(groupSum))
	for k, sum := range groupSum {
		groupBary[k] = sum / float64(groupCount[k])
	}

	sort.SliceStable(bucket, func(i, j int) bool {
		vi, vj := bucket[i], bucket[j]
		gi, gj := groupKey(vi), groupKey(vj)
		bi, bj := groupBary[gi], groupBary[gj]
		if bi != bj {
			return numeric.TotalOrderLess(bi, bj)
		}
		if gi != gj {
			return gi < gj
		}
		ni, nj := barycenter[vi], barycenter[vj]
		if ni != nj {
			return numeric.TotalOrderLess(ni, nj)
		}
		return g.NodeIDs[vi] < g.NodeIDs[vj]
	})
}

func nodeBarycenter(g *graphbuild.Graph, ranks rank.Map, position []int, v, r int, usePred bool) float64 {
	var neighbors []int32
	var adjacentRank int
	if usePred {
		neighbors = g.Reverse[v]
		adjacentRank = r - 1
	} else {
		neighbors = g.Forward[v]
		adjacentRank = r + 1
	}
	sum := 0.0
	count := 0
	for _, u32 := range neighbors {
		u := int(u32)
		if ranks[u] != adjacentRank {
			continue
		}
		sum += float64(position[u])
		count++
	}
	if count == 0 {
		return math.Inf(1)
	}
	return sum / float64(count)
}
