package route

import (
	"container/heap"
	"math"

	"github.com/vanderheijden86/diagramlayout/pkg/config"
)

// direction indices for bend detection: 0=none, 1=up, 2=down, 3=left, 4=right.
const (
	dirNone = iota
	dirUp
	dirDown
	dirLeft
	dirRight
	numDirs
)

// Scratch holds the A* working arrays, reused across edges with a
// sparse-reset dirty list, the same pattern pkg/crossing's Fenwick scratch
// uses to avoid reallocating per call. State is keyed by (cell, incoming
// direction) rather than by cell alone: two paths that reach the same cell
// from different directions carry different bend counts downstream and
// must not be collapsed into one "best" entry.
type Scratch struct {
	gScore   []float64
	cameFrom []int
	visited  []bool
	closed   []bool
	touched  []int
	cells    int
}

// NewScratch returns an empty Scratch; it grows to fit the grid size it is
// first asked to handle.
func NewScratch() *Scratch { return &Scratch{} }

func (s *Scratch) ensure(cells int) {
	s.cells = cells
	size := cells * numDirs
	if cap(s.gScore) < size {
		s.gScore = make([]float64, size)
		s.cameFrom = make([]int, size)
		s.visited = make([]bool, size)
		s.closed = make([]bool, size)
	} else {
		s.gScore = s.gScore[:size]
		s.cameFrom = s.cameFrom[:size]
		s.visited = s.visited[:size]
		s.closed = s.closed[:size]
	}
}

func (s *Scratch) resetDirty() {
	for _, i := range s.touched {
		s.visited[i] = false
		s.closed[i] = false
	}
	s.touched = s.touched[:0]
}

// touch lazily initializes state i's gScore to +Inf the first time it is
// referenced in a search, recording it in the dirty list for resetDirty.
func (s *Scratch) touch(i int) {
	if !s.visited[i] {
		s.visited[i] = true
		s.touched = append(s.touched, i)
		s.gScore[i] = math.Inf(1)
	}
}

// stateIndex packs a (cell, incoming-direction) pair into a single scratch
// index.
func stateIndex(cellIdx, dir int) int { return cellIdx*numDirs + dir }

type heapItem struct {
	state int
	f     float64
	col   int
	row   int
	dir   int
}

type openHeap []heapItem

func (h openHeap) Len() int { return len(h) }

// Less keys the heap on (f, col, row) so equal-cost frontiers pop in a
// fixed geometric order.
func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].col != h[j].col {
		return h[i].col < h[j].col
	}
	return h[i].row < h[j].row
}
func (h openHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *openHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *openHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// Search runs A* from start to goal on g, weighted by w. nodeBudget caps the
// number of states expanded; if exceeded, ok is false and the caller should
// fall back to a simpler route. Returns the path as a list of (col, row)
// cells including start and goal, plus the accumulated path cost. State is
// (col, row, incoming direction): the first state that reaches goalIdx, in
// any direction, is optimal, since the heuristic depends only on (col, row).
func Search(g *Grid, scratch *Scratch, startCol, startRow, goalCol, goalRow int, w config.RoutingWeights, nodeBudget int) (path [][2]int, cost float64, expanded int, ok bool) {
	cells := g.cols * g.rows
	scratch.resetDirty()
	scratch.ensure(cells)

	startIdx, sOk := g.index(startCol, startRow)
	goalIdx, gOk := g.index(goalCol, goalRow)
	if !sOk || !gOk {
		return nil, 0, 0, false
	}

	h := func(col, row int) float64 {
		dc := math.Abs(float64(col - goalCol))
		dr := math.Abs(float64(row - goalRow))
		return (dc + dr) * w.StepCost
	}

	open := &openHeap{}
	heap.Init(open)
	startState := stateIndex(startIdx, dirNone)
	heap.Push(open, heapItem{state: startState, f: h(startCol, startRow), col: startCol, row: startRow, dir: dirNone})
	scratch.touch(startState)
	scratch.gScore[startState] = 0
	scratch.cameFrom[startState] = -1

	neighbors := [4]struct {
		dc, dr int
		dir    int
	}{
		{0, -1, dirUp}, {0, 1, dirDown}, {-1, 0, dirLeft}, {1, 0, dirRight},
	}

	for open.Len() > 0 {
		cur := heap.Pop(open).(heapItem)
		if scratch.closed[cur.state] {
			continue
		}
		scratch.closed[cur.state] = true
		expanded++
		curIdx := cur.state / numDirs
		if curIdx == goalIdx {
			return reconstruct(scratch, g, cur.state, startState), scratch.gScore[cur.state], expanded, true
		}
		if nodeBudget > 0 && expanded > nodeBudget {
			return nil, 0, expanded, false
		}

		for _, nb := range neighbors {
			nc, nr := cur.col+nb.dc, cur.row+nb.dr
			nIdx, okIdx := g.index(nc, nr)
			if !okIdx || g.blocked[nIdx] {
				continue
			}
			nState := stateIndex(nIdx, nb.dir)
			if scratch.closed[nState] {
				continue
			}
			step := w.StepCost + w.CrossingPenalty*float64(g.occupied[nIdx])
			if cur.dir != dirNone && cur.dir != nb.dir {
				step += w.BendPenalty
			}
			scratch.touch(nState)
			tentative := scratch.gScore[cur.state] + step
			if tentative < scratch.gScore[nState] {
				scratch.gScore[nState] = tentative
				scratch.cameFrom[nState] = cur.state
				heap.Push(open, heapItem{state: nState, f: tentative + h(nc, nr), col: nc, row: nr, dir: nb.dir})
			}
		}
	}
	return nil, 0, expanded, false
}

func reconstruct(s *Scratch, g *Grid, goalState, startState int) [][2]int {
	var states []int
	cur := goalState
	for {
		states = append(states, cur)
		if cur == startState {
			break
		}
		cur = s.cameFrom[cur]
	}
	path := make([][2]int, len(states))
	for i, st := range states {
		cellIdx := st / numDirs
		col := cellIdx % g.cols
		row := cellIdx / g.cols
		path[len(states)-1-i] = [2]int{col, row}
	}
	return path
}
