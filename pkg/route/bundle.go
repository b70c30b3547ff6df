package route

import (
	"fmt"
	"math"
	"sort"

	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/graphbuild"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

// styleKey renders an EdgeStyle into a totally ordered string, used only to
// give the bundling group-key sort a deterministic tie-break.
func styleKey(s ir.EdgeStyle) string {
	return fmt.Sprintf("%s|%s|%g", s.StrokeDash, s.Stroke, s.StrokeWidth)
}

// endpointKey is one side of a bundling group key: either a bare node index,
// or, when the edge's two endpoints sit in different clusters, the owning
// cluster's index.
type endpointKey struct {
	isCluster bool
	idx       int
}

// Bundle groups routed edges that share the same resolved (from_key, to_key,
// arrow_string, label_id, style_signature) into a single representative
// path, when the group reaches cfg.EdgeBundleMinCount members.
// from_key/to_key collapse to the owning cluster's index when an
// edge's two endpoints belong to different clusters; the canonical path's
// endpoints are then snapped onto that cluster's boundary. The
// lowest-IRIndex member of each group is kept as the canonical EdgePath
// (carrying BundleCount/BundleMembers); the rest are dropped from the
// returned slice. Two-member groups below the threshold fall through to a
// symmetric lane-offset pass instead of being left overlapping; other
// below-threshold groups are returned unchanged. Edges with
// no style resolver registered bundle under the zero-value style.
func Bundle(paths []ir.EdgePath, g *graphbuild.Graph, d *ir.IR, clusters []ir.ClusterBox, resolver ir.StyleResolver, cfg config.Config) []ir.EdgePath {
	if !cfg.EdgeBundling {
		return paths
	}
	byIRIndex := make(map[int]ir.EdgePath, len(paths))
	for _, p := range paths {
		byIRIndex[p.EdgeIndex] = p
	}

	nodeCluster := make(map[int]int, g.N)
	for ci, c := range d.Clusters {
		for _, n := range c.Members {
			nodeCluster[n] = ci
		}
	}

	type groupKey struct {
		from, to endpointKey
		arrow    string
		labelID  int
		style    ir.EdgeStyle
	}
	groups := make(map[groupKey][]int)

	keyFor := func(re graphbuild.ResolvedEdge) groupKey {
		style := ir.EdgeStyle{}
		if resolver != nil {
			style = resolver.ResolveEdgeStyle(re.IRIndex)
		}
		e := d.Edges[re.IRIndex]
		fromKey := endpointKey{idx: re.From}
		toKey := endpointKey{idx: re.To}
		fromCluster, fromOK := nodeCluster[re.From]
		toCluster, toOK := nodeCluster[re.To]
		if fromOK && toOK && fromCluster != toCluster {
			fromKey = endpointKey{isCluster: true, idx: fromCluster}
			toKey = endpointKey{isCluster: true, idx: toCluster}
		}
		return groupKey{from: fromKey, to: toKey, arrow: e.ArrowString, labelID: e.LabelID, style: style}
	}

	for _, re := range g.KeptEdges {
		k := keyFor(re)
		groups[k] = append(groups[k], re.IRIndex)
	}

	bundledOut := make(map[int]bool)
	var keys []groupKey
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.from != b.from {
			if a.from.isCluster != b.from.isCluster {
				return !a.from.isCluster
			}
			return a.from.idx < b.from.idx
		}
		if a.to != b.to {
			if a.to.isCluster != b.to.isCluster {
				return !a.to.isCluster
			}
			return a.to.idx < b.to.idx
		}
		if a.arrow != b.arrow {
			return a.arrow < b.arrow
		}
		if a.labelID != b.labelID {
			return a.labelID < b.labelID
		}
		return styleKey(a.style) < styleKey(b.style)
	})

	for _, k := range keys {
		members := groups[k]
		if len(members) < cfg.EdgeBundleMinCount {
			if len(members) == 2 {
				applyLaneOffsets(byIRIndex, members, cfg.Routing.LaneGap)
			}
			continue
		}
		sort.Ints(members)
		canonical := members[0]
		cp, ok := byIRIndex[canonical]
		if !ok {
			continue
		}
		cp.BundleCount = len(members)
		cp.BundleMembers = members
		if k.from.isCluster {
			cp = snapEndpoint(cp, clusters[k.from.idx].Rect, true)
		}
		if k.to.isCluster {
			cp = snapEndpoint(cp, clusters[k.to.idx].Rect, false)
		}
		byIRIndex[canonical] = cp
		for _, m := range members[1:] {
			bundledOut[m] = true
		}
	}

	out := make([]ir.EdgePath, 0, len(paths))
	for _, p := range paths {
		if bundledOut[p.EdgeIndex] {
			continue
		}
		out = append(out, byIRIndex[p.EdgeIndex])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EdgeIndex < out[j].EdgeIndex })
	return out
}

// applyLaneOffsets nudges a two-member group that fell below the bundling
// threshold so the pair renders as two symmetric lanes instead of one
// overlapping line.
func applyLaneOffsets(byIRIndex map[int]ir.EdgePath, members []int, laneGap float64) {
	sorted := append([]int(nil), members...)
	sort.Ints(sorted)
	for i, idx := range sorted {
		p, ok := byIRIndex[idx]
		if !ok {
			continue
		}
		byIRIndex[idx] = LaneOffset(p, i, len(sorted), laneGap)
	}
}

// snapEndpoint moves path's first (atStart) or last waypoint onto the
// perimeter of rect, along the ray from rect's center through the original
// point.
func snapEndpoint(path ir.EdgePath, rect ir.Rect, atStart bool) ir.EdgePath {
	if len(path.Waypoints) == 0 {
		return path
	}
	wp := make([]ir.Point, len(path.Waypoints))
	copy(wp, path.Waypoints)
	idx := len(wp) - 1
	if atStart {
		idx = 0
	}
	wp[idx] = snapToRectBoundary(wp[idx], rect)
	path.Waypoints = wp
	return path
}

func snapToRectBoundary(p ir.Point, r ir.Rect) ir.Point {
	cx, cy := r.CenterX(), r.CenterY()
	dx, dy := p.X-cx, p.Y-cy
	if dx == 0 && dy == 0 {
		return ir.Point{X: r.X, Y: cy}
	}
	halfW, halfH := r.W/2, r.H/2
	tx, ty := math.Inf(1), math.Inf(1)
	if dx != 0 {
		tx = halfW / math.Abs(dx)
	}
	if dy != 0 {
		ty = halfH / math.Abs(dy)
	}
	t := math.Min(tx, ty)
	return ir.Point{X: cx + dx*t, Y: cy + dy*t}
}

// LaneOffset nudges parallel (same from/to, unbundled) edges apart so they
// don't overlap, offsetting the i-th of n parallel members perpendicular to
// its own path by (i - (n-1)/2) * LaneGap, applied to every waypoint except
// the endpoints.
func LaneOffset(path ir.EdgePath, laneIndex, laneCount int, laneGap float64) ir.EdgePath {
	if laneCount <= 1 || len(path.Waypoints) < 2 {
		return path
	}
	offset := (float64(laneIndex) - float64(laneCount-1)/2) * laneGap
	wp := make([]ir.Point, len(path.Waypoints))
	copy(wp, path.Waypoints)
	for i := 1; i < len(wp)-1; i++ {
		prev := wp[i-1]
		next := wp[i+1]
		if prev.X == next.X {
			wp[i].X += offset
		} else {
			wp[i].Y += offset
		}
	}
	path.Waypoints = wp
	return path
}
