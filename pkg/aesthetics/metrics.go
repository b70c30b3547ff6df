// Package aesthetics scores a computed layout against the weighted metric
// presets (normal/compact/rich) and emits the JSONL evidence trail: a
// layout_metrics summary, a layout_trace per-stage record, and a
// mermaid_legend record when labels spilled over.
package aesthetics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

// Metrics is the set of raw quantities the weight presets combine into a
// single objective. Lower is better for every field except Symmetry,
// Compactness and AlignedNodes, where higher is better; TotalEdgeLength and
// AlignedNodes are reported but not weighted by Score.
type Metrics struct {
	Crossings          int     `json:"crossings"`
	Bends              int     `json:"bends"`
	PositionVariance   float64 `json:"position_variance"`
	TotalEdgeLength    float64 `json:"total_edge_length"`
	AlignedNodes       int     `json:"aligned_nodes"`
	EdgeLengthVariance float64 `json:"edge_length_variance"`
	Symmetry           float64 `json:"symmetry"`
	Compactness        float64 `json:"compactness"`
	LabelCollisions    int     `json:"label_collisions"`
}

// Compute derives Metrics from a finished layout. crossings is carried
// through from the crossing minimizer's result rather than recomputed.
func Compute(nodes []ir.NodeBox, edges []ir.EdgePath, box ir.Rect, crossings int) Metrics {
	m := Metrics{Crossings: crossings}

	m.PositionVariance = positionVariance(nodes)

	lengths := make([]float64, 0, len(edges))
	bends := 0
	for _, e := range edges {
		l := pathLength(e.Waypoints)
		lengths = append(lengths, l)
		m.TotalEdgeLength += l
		bends += bendCount(e.Waypoints)
	}
	m.Bends = bends
	if len(lengths) > 1 {
		// Named "variance" in the evidence schema but defined as the
		// standard deviation of per-edge lengths.
		m.EdgeLengthVariance = stat.StdDev(lengths, nil)
	}

	m.AlignedNodes = alignedNodes(nodes)
	m.LabelCollisions = countLabelCollisions(nodes, edges)
	m.Compactness = compactness(nodes, box)
	m.Symmetry = symmetry(nodes, box)

	return m
}

// positionVariance is the mean, across ranks holding at least two nodes,
// of the variance of the rank's x-centers. Ranks are walked in ascending
// order so the float accumulation is reproducible.
func positionVariance(nodes []ir.NodeBox) float64 {
	byRank := make(map[int][]float64)
	for _, n := range nodes {
		byRank[n.Rank] = append(byRank[n.Rank], n.Rect.CenterX())
	}
	ranks := make([]int, 0, len(byRank))
	for r, xs := range byRank {
		if len(xs) >= 2 {
			ranks = append(ranks, r)
		}
	}
	if len(ranks) == 0 {
		return 0
	}
	sort.Ints(ranks)
	sum := 0.0
	for _, r := range ranks {
		sum += stat.Variance(byRank[r], nil)
	}
	return sum / float64(len(ranks))
}

// alignedNodes counts nodes whose x-center sits within 0.1 world units of
// the median x-center among nodes sharing their rank.
func alignedNodes(nodes []ir.NodeBox) int {
	byRank := make(map[int][]float64)
	for _, n := range nodes {
		byRank[n.Rank] = append(byRank[n.Rank], n.Rect.CenterX())
	}
	medians := make(map[int]float64, len(byRank))
	for r, xs := range byRank {
		sorted := append([]float64(nil), xs...)
		sort.Float64s(sorted)
		n := len(sorted)
		if n%2 == 1 {
			medians[r] = sorted[n/2]
		} else {
			medians[r] = (sorted[n/2-1] + sorted[n/2]) / 2
		}
	}
	count := 0
	for _, n := range nodes {
		if math.Abs(n.Rect.CenterX()-medians[n.Rank]) <= 0.1 {
			count++
		}
	}
	return count
}

func pathLength(pts []ir.Point) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		dx := pts[i].X - pts[i-1].X
		dy := pts[i].Y - pts[i-1].Y
		total += math.Hypot(dx, dy)
	}
	return total
}

func bendCount(pts []ir.Point) int {
	if len(pts) < 3 {
		return 0
	}
	bends := 0
	for i := 1; i < len(pts)-1; i++ {
		prevDX, prevDY := pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y
		nextDX, nextDY := pts[i+1].X-pts[i].X, pts[i+1].Y-pts[i].Y
		if sign(prevDX) != sign(nextDX) || sign(prevDY) != sign(nextDY) {
			bends++
		}
	}
	return bends
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func countLabelCollisions(nodes []ir.NodeBox, edges []ir.EdgePath) int {
	var rects []ir.Rect
	for _, n := range nodes {
		if n.LabelRect != nil {
			rects = append(rects, *n.LabelRect)
		}
	}
	for _, e := range edges {
		if e.LabelRect != nil {
			rects = append(rects, *e.LabelRect)
		}
	}
	count := 0
	for i := 0; i < len(rects); i++ {
		for j := i + 1; j < len(rects); j++ {
			if rects[i].Overlaps(rects[j], 0) {
				count++
			}
		}
	}
	return count
}

// compactness is the ratio of summed node area to bounding box area,
// clamped to [0,1]; higher means the layout wastes less space.
func compactness(nodes []ir.NodeBox, box ir.Rect) float64 {
	boxArea := box.W * box.H
	if boxArea <= 0 {
		return 0
	}
	nodeArea := 0.0
	for _, n := range nodes {
		nodeArea += n.Rect.W * n.Rect.H
	}
	c := nodeArea / boxArea
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// symmetry is 1 - |Σleft_mass - Σright_mass| / total_mass around the
// bounding box's own center: each node's mass is its own rectangle area,
// split by which side of the box center its own center falls on.
func symmetry(nodes []ir.NodeBox, box ir.Rect) float64 {
	if len(nodes) == 0 {
		return 1
	}
	cx := box.CenterX()
	leftMass, rightMass, totalMass := 0.0, 0.0, 0.0
	for _, n := range nodes {
		mass := n.Rect.W * n.Rect.H
		totalMass += mass
		if n.Rect.CenterX() < cx {
			leftMass += mass
		} else {
			rightMass += mass
		}
	}
	if totalMass <= 0 {
		return 1
	}
	return 1 - math.Abs(leftMass-rightMass)/totalMass
}

// Score combines Metrics into a single weighted objective; lower is
// better. Symmetry and Compactness lie in [0,1] with higher being better,
// so they enter as their shortfall from 1.
func Score(m Metrics, w config.AestheticWeights) float64 {
	return w.Crossings*float64(m.Crossings) +
		w.Bends*float64(m.Bends) +
		w.PositionVariance*m.PositionVariance +
		w.EdgeLengthVariance*m.EdgeLengthVariance +
		w.Symmetry*(1-m.Symmetry) +
		w.Compactness*(1-m.Compactness) +
		w.LabelCollisions*float64(m.LabelCollisions)
}

// Delta is the comparison report between two Metrics values: the signed
// per-metric differences (a - b) alongside the weighted score difference.
// Negative means a has the lower value for that field, which is the
// better one except for Symmetry, Compactness and AlignedNodes.
type Delta struct {
	Crossings          int     `json:"crossings"`
	Bends              int     `json:"bends"`
	PositionVariance   float64 `json:"position_variance"`
	TotalEdgeLength    float64 `json:"total_edge_length"`
	AlignedNodes       int     `json:"aligned_nodes"`
	EdgeLengthVariance float64 `json:"edge_length_variance"`
	Symmetry           float64 `json:"symmetry"`
	Compactness        float64 `json:"compactness"`
	LabelCollisions    int     `json:"label_collisions"`
	Score              float64 `json:"score"`
}

// Compare reports the per-metric differences a - b plus the weighted score
// difference under w; a negative Score means a is the better layout.
func Compare(a, b Metrics, w config.AestheticWeights) Delta {
	return Delta{
		Crossings:          a.Crossings - b.Crossings,
		Bends:              a.Bends - b.Bends,
		PositionVariance:   a.PositionVariance - b.PositionVariance,
		TotalEdgeLength:    a.TotalEdgeLength - b.TotalEdgeLength,
		AlignedNodes:       a.AlignedNodes - b.AlignedNodes,
		EdgeLengthVariance: a.EdgeLengthVariance - b.EdgeLengthVariance,
		Symmetry:           a.Symmetry - b.Symmetry,
		Compactness:        a.Compactness - b.Compactness,
		LabelCollisions:    a.LabelCollisions - b.LabelCollisions,
		Score:              Score(a, w) - Score(b, w),
	}
}
