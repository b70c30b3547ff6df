package route

import (
	"sort"

	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/coordinate"
	"github.com/vanderheijden86/diagramlayout/pkg/graphbuild"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
	"github.com/vanderheijden86/diagramlayout/pkg/rank"
)

// EdgeDiag is the per-edge routing diagnostic record: the accumulated A*
// path cost, bends retained after collinear simplification, cells explored
// by the search, and whether the edge fell back to a direct polyline.
type EdgeDiag struct {
	EdgeIndex     int
	Cost          float64
	Bends         int
	CellsExplored int
	Fallback      bool
}

// Report aggregates routing diagnostics across the whole diagram.
type Report struct {
	PerEdge       []EdgeDiag
	TotalCost     float64
	TotalBends    int
	TotalExplored int
	FallbackCount int
}

func (r *Report) add(d EdgeDiag) {
	r.PerEdge = append(r.PerEdge, d)
	r.TotalCost += d.Cost
	r.TotalBends += d.Bends
	r.TotalExplored += d.CellsExplored
	if d.Fallback {
		r.FallbackCount++
	}
}

// Result is the outcome of RouteAll.
type Result struct {
	Edges          []ir.EdgePath
	Report         Report
	Degradation    *ir.DegradationPlan
	BudgetExceeded bool
}

// RouteAll computes a placed EdgePath for every kept (non-dropped) edge in
// g, plus one per self-loop, in ascending IR edge index order for
// determinism. When cfg.UseGridRouter is set, edges are routed with grid
// A* up to cfg.RouteBudget total cell expansions; once the budget is spent,
// remaining edges fall back to the direct waypoint synthesis from package
// coordinate and the result carries a DegradationPlan. scratch holds the
// A* working arrays and may be reused across calls; nil allocates a fresh
// one.
func RouteAll(scratch *Scratch, g *graphbuild.Graph, d *ir.IR, ranks rank.Map, order [][]int, nodes []ir.NodeBox, clusters []ir.ClusterBox, box ir.Rect, cfg config.Config) Result {
	res := Result{}

	if !cfg.UseGridRouter {
		for _, e := range g.KeptEdges {
			wp := coordinate.EdgeWaypoints(d, order, ranks, nodes, e)
			res.Edges = append(res.Edges, ir.EdgePath{EdgeIndex: e.IRIndex, Waypoints: wp})
			res.Report.add(EdgeDiag{EdgeIndex: e.IRIndex, Bends: pathBends(wp)})
		}
		for _, irIdx := range g.SelfLoops {
			p := selfLoopPath(d, irIdx, nodes, cfg.Spacing)
			res.Edges = append(res.Edges, p)
			res.Report.add(EdgeDiag{EdgeIndex: irIdx, Bends: pathBends(p.Waypoints)})
		}
		sortEdgePaths(res.Edges)
		sortDiags(res.Report.PerEdge)
		return res
	}

	grid := NewGrid(box, nodes, clusters, cfg.Routing.CellSize, cfg.Routing.LaneGap*4)
	if scratch == nil {
		scratch = NewScratch()
	}
	budget := cfg.RouteBudget
	spent := 0
	degraded := false
	lanes := laneAssignments(g.KeptEdges)

	for _, e := range g.KeptEdges {
		if budget > 0 && spent >= budget {
			wp := coordinate.EdgeWaypoints(d, order, ranks, nodes, e)
			res.Edges = append(res.Edges, ir.EdgePath{EdgeIndex: e.IRIndex, Waypoints: wp})
			res.Report.add(EdgeDiag{EdgeIndex: e.IRIndex, Bends: pathBends(wp), Fallback: true})
			degraded = true
			continue
		}
		remaining := budget - spent
		if budget <= 0 {
			remaining = 0
		}
		lane := lanes[e.IRIndex]
		path, cost, expanded, ok := routeOne(grid, scratch, d, nodes, e, cfg.Routing, remaining, lane[0], lane[1])
		spent += expanded
		if !ok {
			wp := coordinate.EdgeWaypoints(d, order, ranks, nodes, e)
			res.Edges = append(res.Edges, ir.EdgePath{EdgeIndex: e.IRIndex, Waypoints: wp})
			res.Report.add(EdgeDiag{EdgeIndex: e.IRIndex, Bends: pathBends(wp), CellsExplored: expanded, Fallback: true})
			degraded = true
			continue
		}
		res.Edges = append(res.Edges, ir.EdgePath{EdgeIndex: e.IRIndex, Waypoints: path})
		res.Report.add(EdgeDiag{EdgeIndex: e.IRIndex, Cost: cost, Bends: pathBends(path), CellsExplored: expanded})
	}
	for _, irIdx := range g.SelfLoops {
		p := selfLoopPath(d, irIdx, nodes, cfg.Spacing)
		res.Edges = append(res.Edges, p)
		res.Report.add(EdgeDiag{EdgeIndex: irIdx, Bends: pathBends(p.Waypoints)})
	}
	sortEdgePaths(res.Edges)
	sortDiags(res.Report.PerEdge)

	if degraded {
		res.Degradation = &ir.DegradationPlan{SimplifyRouting: true, Reason: "route budget exhausted"}
		res.BudgetExceeded = true
	}
	return res
}

// laneAssignments groups edges by their undirected (from, to) pair and
// assigns each a (laneIndex, laneCount) pair, so parallel edges between the
// same two nodes can be pre-offset before A* search instead of all
// converging on the same port point.
func laneAssignments(edges []graphbuild.ResolvedEdge) map[int][2]int {
	type key struct{ a, b int }
	groups := make(map[key][]int)
	for _, e := range edges {
		a, b := e.From, e.To
		if a > b {
			a, b = b, a
		}
		groups[key{a, b}] = append(groups[key{a, b}], e.IRIndex)
	}
	lanes := make(map[int][2]int, len(edges))
	for _, members := range groups {
		sort.Ints(members)
		for i, m := range members {
			lanes[m] = [2]int{i, len(members)}
		}
	}
	return lanes
}

func routeOne(grid *Grid, scratch *Scratch, d *ir.IR, nodes []ir.NodeBox, e graphbuild.ResolvedEdge, w config.RoutingWeights, nodeBudget, laneIndex, laneCount int) ([]ir.Point, float64, int, bool) {
	src := coordinate.PortPoint(nodes[e.From].Rect, d.Direction, true)
	dst := coordinate.PortPoint(nodes[e.To].Rect, d.Direction, false)
	horizontal := d.Direction != ir.LR && d.Direction != ir.RL
	src = laneShift(src, laneIndex, laneCount, w.LaneGap, horizontal)
	dst = laneShift(dst, laneIndex, laneCount, w.LaneGap, horizontal)

	clearedFrom := grid.unblockNear(nodes[e.From].Rect)
	clearedTo := grid.unblockNear(nodes[e.To].Rect)
	defer grid.reblock(clearedFrom)
	defer grid.reblock(clearedTo)

	sc, sr := grid.cellOf(src)
	gc, gr := grid.cellOf(dst)

	cells, cost, expanded, ok := Search(grid, scratch, sc, sr, gc, gr, w, nodeBudget)
	if !ok {
		return nil, 0, expanded, false
	}

	pts := make([]ir.Point, 0, len(cells)+2)
	pts = append(pts, src)
	var routedIdx []int
	for i, c := range cells {
		if i == 0 || i == len(cells)-1 {
			if idx, okIdx := grid.index(c[0], c[1]); okIdx {
				routedIdx = append(routedIdx, idx)
			}
			continue
		}
		pts = append(pts, grid.Center(c[0], c[1]))
		if idx, okIdx := grid.index(c[0], c[1]); okIdx {
			routedIdx = append(routedIdx, idx)
		}
	}
	pts = append(pts, dst)
	grid.MarkRouted(routedIdx)

	return simplifyCollinear(pts), cost, expanded, true
}

// pathBends counts direction changes at interior waypoints, the quantity
// retained after collinear simplification.
func pathBends(pts []ir.Point) int {
	if len(pts) < 3 {
		return 0
	}
	return len(pts) - 2
}

func sortDiags(diags []EdgeDiag) {
	sort.Slice(diags, func(i, j int) bool { return diags[i].EdgeIndex < diags[j].EdgeIndex })
}

// laneShift nudges a port point along the face it sits on (perpendicular
// to the flow direction) by
// (laneIndex - (laneCount-1)/2) * laneGap, so parallel edges fan out across
// the shared face instead of all departing from the same point.
func laneShift(p ir.Point, laneIndex, laneCount int, laneGap float64, horizontal bool) ir.Point {
	if laneCount <= 1 {
		return p
	}
	offset := (float64(laneIndex) - float64(laneCount-1)/2) * laneGap
	if horizontal {
		p.X += offset
	} else {
		p.Y += offset
	}
	return p
}

// simplifyCollinear drops interior points that lie on the straight segment
// between their neighbors, so a run of same-direction grid steps collapses
// to a single bend point.
func simplifyCollinear(pts []ir.Point) []ir.Point {
	if len(pts) <= 2 {
		return pts
	}
	out := []ir.Point{pts[0]}
	for i := 1; i < len(pts)-1; i++ {
		prev := out[len(out)-1]
		cur := pts[i]
		next := pts[i+1]
		if collinear(prev, cur, next) {
			continue
		}
		out = append(out, cur)
	}
	out = append(out, pts[len(pts)-1])
	return out
}

func collinear(a, b, c ir.Point) bool {
	if a.X == b.X && b.X == c.X {
		return true
	}
	if a.Y == b.Y && b.Y == c.Y {
		return true
	}
	return false
}

// selfLoopPath produces a 5-point detour bumping out to the side of the
// node away from the next rank and back: TB/BT diagrams bump horizontally
// (the rank axis runs vertically, so the next rank's column sits
// above/below, not beside), LR/RL diagrams bump vertically.
func selfLoopPath(d *ir.IR, irIdx int, nodes []ir.NodeBox, spacing config.Spacing) ir.EdgePath {
	edge := d.Edges[irIdx]
	nIdx, _ := d.ResolveEndpoint(edge.From)
	r := nodes[nIdx].Rect
	bump := spacing.NodeGap

	var pts []ir.Point
	if d.Direction == ir.LR || d.Direction == ir.RL {
		left := r.X + r.W*0.25
		right := r.X + r.W*0.75
		pts = []ir.Point{
			{X: left, Y: r.Y + r.H},
			{X: left, Y: r.Y + r.H + bump},
			{X: r.CenterX(), Y: r.Y + r.H + bump},
			{X: right, Y: r.Y + r.H + bump},
			{X: right, Y: r.Y + r.H},
		}
	} else {
		top := r.Y + r.H*0.25
		bottom := r.Y + r.H*0.75
		pts = []ir.Point{
			{X: r.X + r.W, Y: top},
			{X: r.X + r.W + bump, Y: top},
			{X: r.X + r.W + bump, Y: r.CenterY()},
			{X: r.X + r.W + bump, Y: bottom},
			{X: r.X + r.W, Y: bottom},
		}
	}
	return ir.EdgePath{EdgeIndex: irIdx, Waypoints: pts}
}

func sortEdgePaths(paths []ir.EdgePath) {
	sort.Slice(paths, func(i, j int) bool { return paths[i].EdgeIndex < paths[j].EdgeIndex })
}
