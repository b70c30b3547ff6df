// Package route produces the placed polyline for every edge: a direct
// source-to-target path synthesized from the coordinate assigner's rank
// waypoints by default, or a grid-based A* orthogonal route (config
// UseGridRouter) that threads around node and cluster obstacles, penalizing
// bends and cell reuse, bounded by a total route budget across the diagram.
package route

import (
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

// Grid is a uniform occupancy grid over the diagram's bounding box, used by
// the A* router. Cells are CellSize world units square.
type Grid struct {
	originX, originY float64
	cellSize         float64
	cols, rows       int

	blocked  []bool // node/cluster obstacle cells
	occupied []int  // number of already-routed edges passing through a cell
}

// NewGrid builds a Grid covering box, expanded by margin on every side, with
// every cell overlapping a node rect or a cluster title rect marked blocked,
// and only the perimeter cells of each cluster rect blocked.
func NewGrid(box ir.Rect, nodes []ir.NodeBox, clusters []ir.ClusterBox, cellSize, margin float64) *Grid {
	if cellSize <= 0 {
		cellSize = 8
	}
	originX := box.X - margin
	originY := box.Y - margin
	w := box.W + 2*margin
	h := box.H + 2*margin
	cols := int(w/cellSize) + 2
	rows := int(h/cellSize) + 2

	g := &Grid{
		originX:  originX,
		originY:  originY,
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		blocked:  make([]bool, cols*rows),
		occupied: make([]int, cols*rows),
	}
	for _, n := range nodes {
		g.markBlocked(n.Rect)
	}
	for _, c := range clusters {
		if c.Rect != (ir.Rect{}) {
			g.markBoundary(c.Rect)
		}
		if c.TitleRect != nil {
			g.markBlocked(*c.TitleRect)
		}
	}
	return g
}

func (g *Grid) markBlocked(r ir.Rect) {
	c0, r0 := g.cellOf(ir.Point{X: r.X, Y: r.Y})
	c1, r1 := g.cellOf(ir.Point{X: r.X + r.W, Y: r.Y + r.H})
	for rr := r0; rr <= r1; rr++ {
		for cc := c0; cc <= c1; cc++ {
			if idx, ok := g.index(cc, rr); ok {
				g.blocked[idx] = true
			}
		}
	}
}

// markBoundary blocks only the perimeter cells of r, leaving the interior
// routable: cluster boundaries obstruct the router, cluster interiors
// don't.
func (g *Grid) markBoundary(r ir.Rect) {
	c0, r0 := g.cellOf(ir.Point{X: r.X, Y: r.Y})
	c1, r1 := g.cellOf(ir.Point{X: r.X + r.W, Y: r.Y + r.H})
	for rr := r0; rr <= r1; rr++ {
		for cc := c0; cc <= c1; cc++ {
			if rr != r0 && rr != r1 && cc != c0 && cc != c1 {
				continue
			}
			if idx, ok := g.index(cc, rr); ok {
				g.blocked[idx] = true
			}
		}
	}
}

func (g *Grid) cellOf(p ir.Point) (col, row int) {
	col = int((p.X - g.originX) / g.cellSize)
	row = int((p.Y - g.originY) / g.cellSize)
	return col, row
}

func (g *Grid) index(col, row int) (int, bool) {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return 0, false
	}
	return row*g.cols + col, true
}

// Center returns the world-space center point of the cell at (col, row).
func (g *Grid) Center(col, row int) ir.Point {
	return ir.Point{
		X: g.originX + (float64(col)+0.5)*g.cellSize,
		Y: g.originY + (float64(row)+0.5)*g.cellSize,
	}
}

// unblockNear temporarily clears the blocked flag on the cell(s) a node's
// own port occupies, so the router can leave/enter through them; called with
// the node's own rect for the two endpoints of the edge being routed.
func (g *Grid) unblockNear(r ir.Rect) []int {
	c0, r0 := g.cellOf(ir.Point{X: r.X, Y: r.Y})
	c1, r1 := g.cellOf(ir.Point{X: r.X + r.W, Y: r.Y + r.H})
	var cleared []int
	for rr := r0; rr <= r1; rr++ {
		for cc := c0; cc <= c1; cc++ {
			if idx, ok := g.index(cc, rr); ok && g.blocked[idx] {
				g.blocked[idx] = false
				cleared = append(cleared, idx)
			}
		}
	}
	return cleared
}

func (g *Grid) reblock(idxs []int) {
	for _, idx := range idxs {
		g.blocked[idx] = true
	}
}

// MarkRouted increments the occupancy count of every cell a just-completed
// route passes through, so later A* searches pay RoutingWeights.CrossingPenalty
// to reuse it.
func (g *Grid) MarkRouted(cells []int) {
	for _, idx := range cells {
		g.occupied[idx]++
	}
}
