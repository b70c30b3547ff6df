package label

import (
	"math"

	"github.com/vanderheijden86/diagramlayout/internal/textmeasure"
	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

const charCellWidth = 7.0
const lineHeight = 16.0
const edgeSegmentThickness = 2.0

// Result is the outcome of Place: the input node/edge slices with LabelRect
// populated where a label exists, plus any overflow entries that could not
// find a collision-free spot and spilled into the legend.
type Result struct {
	Nodes    []ir.NodeBox
	Edges    []ir.EdgePath
	Overflow []ir.LegendEntry
}

// Place computes label rectangles for every node and edge that has one:
// node labels inset into their own box (no search needed); edge labels
// seeded at the path midpoint, then searched outward
// in a deterministic spiral for the first rectangle that does not overlap
// any node, cluster, or already-placed label rectangle. An edge label that
// exhausts the spiral without finding room spills into Overflow with a
// leader line back to its seed point, when cfg.LegendSpillover is set;
// otherwise it is placed at the seed point regardless of overlap.
func Place(d *ir.IR, nodes []ir.NodeBox, clusters []ir.ClusterBox, edges []ir.EdgePath, cfg config.LabelPlacementConfig) Result {
	idx := NewSpatialIndex(cfg.SpatialCellSize)
	for _, n := range nodes {
		idx.Insert(n.Rect)
	}
	for _, c := range clusters {
		if c.Rect != (ir.Rect{}) {
			idx.Insert(c.Rect)
		}
	}
	for _, e := range edges {
		for i := 1; i < len(e.Waypoints); i++ {
			idx.Insert(segmentRect(e.Waypoints[i-1], e.Waypoints[i]))
		}
	}

	outNodes := make([]ir.NodeBox, len(nodes))
	copy(outNodes, nodes)
	for i := range outNodes {
		n := d.Nodes[outNodes[i].Index]
		if n.LabelID < 0 {
			continue
		}
		r := outNodes[i].Rect
		lr := ir.Rect{
			X: r.X + cfg.LabelMargin,
			Y: r.Y + cfg.LabelMargin,
			W: r.W - 2*cfg.LabelMargin,
			H: r.H - 2*cfg.LabelMargin,
		}
		outNodes[i].LabelRect = &lr
	}

	offsets := spiralOffsets(cfg.OffsetStep, cfg.MaxOffset)
	outEdges := make([]ir.EdgePath, len(edges))
	copy(outEdges, edges)
	var overflow []ir.LegendEntry

	for i := range outEdges {
		ei := outEdges[i].EdgeIndex
		if ei < 0 || ei >= len(d.Edges) {
			continue
		}
		labelID := d.Edges[ei].LabelID
		if labelID < 0 {
			continue
		}
		text := d.LabelText(labelID)
		lines := textmeasure.WrapLines(text, cfg.MaxLabelWidth, cfg.MaxLines)
		w := float64(textmeasure.MaxLineWidth(lines))*charCellWidth + 2*cfg.LabelMargin
		h := float64(len(lines))*lineHeight + 2*cfg.LabelMargin

		seed := midpoint(outEdges[i].Waypoints)
		placed := false
		var chosen ir.Rect
		for _, off := range offsets {
			cand := ir.Rect{X: seed.X + off.X - w/2, Y: seed.Y + off.Y - h/2, W: w, H: h}
			if !idx.Overlaps(cand, cfg.LabelMargin) {
				chosen = cand
				placed = true
				break
			}
		}
		if !placed {
			chosen = ir.Rect{X: seed.X - w/2, Y: seed.Y - h/2, W: w, H: h}
			if cfg.LegendSpillover {
				overflow = append(overflow, ir.LegendEntry{Text: text})
				leader := seed
				outEdges[i].LeaderFrom = &leader
				continue
			}
		}
		idx.Insert(chosen)
		lr := chosen
		outEdges[i].LabelRect = &lr
		if distance(chosen.CenterX(), chosen.CenterY(), seed.X, seed.Y) > cfg.LeaderLineThreshold {
			leader := seed
			outEdges[i].LeaderFrom = &leader
		}
	}

	return Result{Nodes: outNodes, Edges: outEdges, Overflow: overflow}
}

// midpoint returns the point at half the polyline's total arc length: the
// geometric midpoint weighted by arc length, not the midpoint of the
// waypoint list.
func midpoint(pts []ir.Point) ir.Point {
	if len(pts) == 0 {
		return ir.Point{}
	}
	if len(pts) == 1 {
		return pts[0]
	}
	segLen := make([]float64, len(pts)-1)
	total := 0.0
	for i := 1; i < len(pts); i++ {
		l := math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
		segLen[i-1] = l
		total += l
	}
	if total == 0 {
		return pts[0]
	}
	half := total / 2
	walked := 0.0
	for i, l := range segLen {
		if walked+l >= half {
			t := (half - walked) / l
			a, b := pts[i], pts[i+1]
			return ir.Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
		}
		walked += l
	}
	return pts[len(pts)-1]
}

func distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}

// segmentRect returns a thin axis-aligned rectangle covering the segment
// from a to b, used to seed the occupancy index so edge labels avoid
// sitting on top of routed lines.
func segmentRect(a, b ir.Point) ir.Rect {
	x0, x1 := math.Min(a.X, b.X), math.Max(a.X, b.X)
	y0, y1 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	half := edgeSegmentThickness / 2
	return ir.Rect{X: x0 - half, Y: y0 - half, W: x1 - x0 + edgeSegmentThickness, H: y1 - y0 + edgeSegmentThickness}
}

// spiralOffsets returns a deterministic, increasing-radius sequence of
// candidate offsets from a seed point: the seed itself, then each ring at
// multiples of step out to maxOffset, each ring visiting the cardinal
// offsets (up, right, down, left) then the four diagonals, so the search
// result never depends on map iteration order.
func spiralOffsets(step, maxOffset float64) []ir.Point {
	if step <= 0 {
		step = 1
	}
	offsets := []ir.Point{{X: 0, Y: 0}}
	for radius := step; radius <= maxOffset; radius += step {
		offsets = append(offsets,
			ir.Point{X: 0, Y: -radius},
			ir.Point{X: radius, Y: 0},
			ir.Point{X: 0, Y: radius},
			ir.Point{X: -radius, Y: 0},
			ir.Point{X: radius, Y: -radius},
			ir.Point{X: radius, Y: radius},
			ir.Point{X: -radius, Y: radius},
			ir.Point{X: -radius, Y: -radius},
		)
	}
	return offsets
}
