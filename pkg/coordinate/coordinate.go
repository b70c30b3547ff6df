// Package coordinate places each node at an absolute (x, y): a
// direction-aware rank axis built from cumulative node extents, an
// order axis centered per rank and lightly compacted toward neighbor
// centers, and a waypoint synthesizer for edges that span more than one
// rank. Node intrinsic sizing reuses internal/textmeasure, the same
// display-column measurement the label placer wraps text with.
package coordinate

import (
	"github.com/vanderheijden86/diagramlayout/internal/numeric"
	"github.com/vanderheijden86/diagramlayout/internal/textmeasure"
	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/graphbuild"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
	"github.com/vanderheijden86/diagramlayout/pkg/rank"
)

const (
	memberLineHeight = 16.0
	charCellWidth    = 7.0
	labelLineHeight  = 16.0
	compactionPasses = 3
)

// Result is the outcome of Assign.
type Result struct {
	Nodes []ir.NodeBox

	// rankAxisPos maps a logical rank to its coordinate on the rank axis,
	// exposed through RankAxisPos.
	rankAxisPos []float64
}

// NodeSize is a node's computed intrinsic (width, height), exported so the
// router and label placer can recompute the same extents without
// duplicating the sizing rules.
type NodeSize struct {
	W, H float64
}

// ComputeNodeSizes derives each node's intrinsic box size from its label's
// display width (wide-character aware) and, for class-diagram nodes, its
// member rows, padded by spacing.LabelPadding and clamped to the configured
// minimums.
func ComputeNodeSizes(d *ir.IR, spacing config.Spacing) []NodeSize {
	sizes := make([]NodeSize, len(d.Nodes))
	for i, nd := range d.Nodes {
		label := d.LabelText(nd.LabelID)
		maxWidth := textmeasure.Width(label)
		for _, m := range nd.Members {
			if w := textmeasure.Width(m); w > maxWidth {
				maxWidth = w
			}
		}
		w := float64(maxWidth)*charCellWidth + 2*spacing.LabelPadding
		lines := 1 + len(nd.Members)
		h := float64(lines)*memberLineHeight + 2*spacing.LabelPadding
		if w < spacing.MinNodeWidth {
			w = spacing.MinNodeWidth
		}
		if h < spacing.MinNodeHeight {
			h = spacing.MinNodeHeight
		}
		sizes[i] = NodeSize{W: w, H: h}
	}
	return sizes
}

// Assign computes the absolute position of every node.
func Assign(g *graphbuild.Graph, d *ir.IR, ranks rank.Map, order [][]int, spacing config.Spacing) Result {
	sizes := ComputeNodeSizes(d, spacing)
	rankAxisVertical := d.Direction.RankAxisVertical()
	reversed := d.Direction.Reversed()
	maxRank := len(order) - 1
	if maxRank < 0 {
		return Result{}
	}

	rankExtent := make([]float64, len(order))
	for r, bucket := range order {
		for _, v := range bucket {
			extent := sizes[v].W
			if rankAxisVertical {
				extent = sizes[v].H
			}
			if extent > rankExtent[r] {
				rankExtent[r] = extent
			}
		}
	}

	// rankStart[row] is the rank-axis coordinate of visual row `row`
	// (row 0 nearest the origin); visual row for logical rank r is
	// maxRank-r when the direction is reversed (BT, RL), else r. The
	// mapping is its own inverse, so the same formula recovers the
	// logical rank that owns a given row.
	visRow := func(r int) int {
		if reversed {
			return maxRank - r
		}
		return r
	}
	rankStart := make([]float64, maxRank+1)
	for row := 1; row <= maxRank; row++ {
		prevLogical := visRow(row - 1) // involution: visRow(visRow(x))==x
		rankStart[row] = rankStart[row-1] + rankExtent[prevLogical] + spacing.RankGap
	}
	axisPos := func(r int) float64 { return rankStart[visRow(r)] }

	nodes := make([]ir.NodeBox, g.N)
	orderCoord := make([]float64, g.N)
	rankOrderExtent := make([]float64, len(order))

	for r, bucket := range order {
		cursor := 0.0
		for i, v := range bucket {
			span := sizes[v].H
			if rankAxisVertical {
				span = sizes[v].W
			}
			orderCoord[v] = cursor
			cursor += span + spacing.NodeGap
			nodes[v] = ir.NodeBox{Index: v, Rank: r, OrderInRank: i}
		}
		if len(bucket) > 0 {
			rankOrderExtent[r] = cursor - spacing.NodeGap
		}
	}

	maxOrderExtent := 0.0
	for _, e := range rankOrderExtent {
		if e > maxOrderExtent {
			maxOrderExtent = e
		}
	}
	for r, bucket := range order {
		shift := (maxOrderExtent - rankOrderExtent[r]) / 2
		for _, v := range bucket {
			orderCoord[v] += shift
		}
	}

	compact(g, order, orderCoord, spacing.NodeGap, sizes, rankAxisVertical)

	for r, bucket := range order {
		a := axisPos(r)
		for _, v := range bucket {
			if rankAxisVertical {
				nodes[v].Rect = ir.Rect{X: orderCoord[v], Y: a, W: sizes[v].W, H: sizes[v].H}
			} else {
				nodes[v].Rect = ir.Rect{X: a, Y: orderCoord[v], W: sizes[v].W, H: sizes[v].H}
			}
		}
	}

	applyPins(d, g, nodes)

	rankAxisPos := make([]float64, maxRank+1)
	for r := 0; r <= maxRank; r++ {
		rankAxisPos[r] = axisPos(r)
	}
	return Result{Nodes: nodes, rankAxisPos: rankAxisPos}
}

// compact runs up to compactionPasses passes nudging each node toward the
// mean center of its graph neighbors on the order axis, accepting the move
// only if it preserves spacing.NodeGap to that node's immediate same-rank
// neighbors (the only nodes that can collide on the order axis, since
// order-within-rank is fixed by the crossing minimizer and never reordered
// here). A pass that moves nothing terminates the loop early.
func compact(g *graphbuild.Graph, order [][]int, orderCoord []float64, nodeGap float64, sizes []NodeSize, rankAxisVertical bool) {
	orderSpan := func(v int) float64 {
		if rankAxisVertical {
			return sizes[v].W
		}
		return sizes[v].H
	}
	rankOf := make([]int, len(orderCoord))
	posInRank := make([]int, len(orderCoord))
	for r, bucket := range order {
		for i, v := range bucket {
			rankOf[v] = r
			posInRank[v] = i
		}
	}

	for pass := 0; pass < compactionPasses; pass++ {
		moved := false
		for v := 0; v < len(orderCoord); v++ {
			sum, count := 0.0, 0
			for _, u32 := range g.Forward[v] {
				u := int(u32)
				sum += orderCoord[u] + orderSpan(u)/2
				count++
			}
			for _, u32 := range g.Reverse[v] {
				u := int(u32)
				sum += orderCoord[u] + orderSpan(u)/2
				count++
			}
			if count == 0 {
				continue
			}
			idealCenter := sum / float64(count)
			ideal := idealCenter - orderSpan(v)/2

			bucket := order[rankOf[v]]
			idx := posInRank[v]
			lo := -1.0e18
			hi := 1.0e18
			if idx > 0 {
				left := bucket[idx-1]
				lo = orderCoord[left] + orderSpan(left) + nodeGap
			}
			if idx < len(bucket)-1 {
				right := bucket[idx+1]
				hi = orderCoord[right] - orderSpan(v) - nodeGap
			}
			if ideal < lo {
				ideal = lo
			}
			if ideal > hi {
				ideal = hi
			}
			if numeric.TotalOrderLess(ideal, orderCoord[v]) || numeric.TotalOrderLess(orderCoord[v], ideal) {
				orderCoord[v] = ideal
				moved = true
			}
		}
		if !moved {
			break
		}
	}
}

// applyPins overrides the computed top-left corner of any node carrying an
// ir.ConstraintPin: pins apply after compaction and are not subject to
// further movement.
func applyPins(d *ir.IR, g *graphbuild.Graph, nodes []ir.NodeBox) {
	idIndex := make(map[string]int, len(g.NodeIDs))
	for i, id := range g.NodeIDs {
		idIndex[id] = i
	}
	for _, c := range d.Constraints {
		if c.Kind != ir.ConstraintPin {
			continue
		}
		i, ok := idIndex[c.PinNodeID]
		if !ok {
			continue
		}
		nodes[i].Rect.X = c.PinX
		nodes[i].Rect.Y = c.PinY
	}
}

// RankAxisPos returns the rank axis coordinate for logical rank r.
func (res Result) RankAxisPos(r int) float64 {
	if r < 0 || r >= len(res.rankAxisPos) {
		return 0
	}
	return res.rankAxisPos[r]
}

// firstInRank returns, for each logical rank, the index of the node placed
// first in crossing-minimized order (order_in_rank == 0), the anchor
// EdgeWaypoints snaps intervening-rank waypoints to.
func firstInRank(order [][]int) []int {
	first := make([]int, len(order))
	for r, bucket := range order {
		if len(bucket) > 0 {
			first[r] = bucket[0]
		} else {
			first[r] = -1
		}
	}
	return first
}

// EdgeWaypoints synthesizes the ordered list of points a resolved graph edge
// passes through: the source port, one interior point per intervening rank,
// and the target port. Interior points interpolate linearly on the order
// axis; on the rank axis they snap to the center of the rank's
// first-in-order node, falling back to linear interpolation when the rank
// is empty. Edges confined to adjacent ranks produce exactly the two port
// points.
func EdgeWaypoints(d *ir.IR, order [][]int, ranks rank.Map, nodes []ir.NodeBox, e graphbuild.ResolvedEdge) []ir.Point {
	dir := d.Direction
	fromRank, toRank := ranks[e.From], ranks[e.To]
	span := toRank - fromRank
	if span == 1 || span == -1 || span == 0 {
		return []ir.Point{
			PortPoint(nodes[e.From].Rect, dir, true),
			PortPoint(nodes[e.To].Rect, dir, false),
		}
	}

	src := PortPoint(nodes[e.From].Rect, dir, true)
	dst := PortPoint(nodes[e.To].Rect, dir, false)
	first := firstInRank(order)

	step := 1
	if span < 0 {
		step = -1
	}
	steps := span
	if steps < 0 {
		steps = -steps
	}

	rankVertical := dir.RankAxisVertical()
	pts := []ir.Point{src}
	for k, r := 1, fromRank+step; k < steps; k, r = k+1, r+step {
		t := float64(k) / float64(steps)
		interp := ir.Point{X: src.X + t*(dst.X-src.X), Y: src.Y + t*(dst.Y-src.Y)}
		if v := first[r]; v >= 0 {
			c := nodes[v].Rect
			if rankVertical {
				interp.Y = c.CenterY()
			} else {
				interp.X = c.CenterX()
			}
		}
		pts = append(pts, interp)
	}
	pts = append(pts, dst)
	return pts
}
