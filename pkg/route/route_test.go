package route

import (
	"testing"

	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/graphbuild"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
	"github.com/vanderheijden86/diagramlayout/pkg/rank"
)

func simpleDiagram() (*ir.IR, *graphbuild.Graph, rank.Map, [][]int, []ir.NodeBox) {
	d := &ir.IR{
		Direction: ir.TB,
		Nodes: []ir.Node{
			{ID: "a", LabelID: -1}, {ID: "b", LabelID: -1},
		},
		Edges: []ir.Edge{
			{From: ir.Endpoint{Index: 0}, To: ir.Endpoint{Index: 1}, LabelID: -1, StyleID: -1},
		},
	}
	g := graphbuild.Build(d)
	ranks := rank.Assign(g, nil)
	order := rank.Buckets(g, ranks)
	nodes := []ir.NodeBox{
		{Index: 0, Rect: ir.Rect{X: 0, Y: 0, W: 40, H: 20}},
		{Index: 1, Rect: ir.Rect{X: 0, Y: 80, W: 40, H: 20}},
	}
	return d, g, ranks, order, nodes
}

func TestRouteAll_SimpleModeProducesOnePathPerEdge(t *testing.T) {
	d, g, ranks, order, nodes := simpleDiagram()
	cfg := config.DefaultConfig()
	cfg.UseGridRouter = false
	box := ir.Rect{X: 0, Y: 0, W: 40, H: 100}
	res := RouteAll(NewScratch(), g, d, ranks, order, nodes, nil, box, cfg)
	if len(res.Edges) != 1 {
		t.Fatalf("expected 1 edge path, got %d", len(res.Edges))
	}
	if len(res.Edges[0].Waypoints) < 2 {
		t.Fatalf("expected at least 2 waypoints, got %d", len(res.Edges[0].Waypoints))
	}
}

func TestRouteAll_GridModeAvoidsBudgetPanic(t *testing.T) {
	d, g, ranks, order, nodes := simpleDiagram()
	cfg := config.DefaultConfig()
	cfg.UseGridRouter = true
	cfg.RouteBudget = 5000
	box := ir.Rect{X: 0, Y: 0, W: 40, H: 100}
	res := RouteAll(NewScratch(), g, d, ranks, order, nodes, nil, box, cfg)
	if len(res.Edges) != 1 {
		t.Fatalf("expected 1 edge path, got %d", len(res.Edges))
	}
}

func TestRouteAll_SelfLoopProducesFivePointDetour(t *testing.T) {
	d := &ir.IR{
		Direction: ir.TB,
		Nodes:     []ir.Node{{ID: "a", LabelID: -1}},
		Edges: []ir.Edge{
			{From: ir.Endpoint{Index: 0}, To: ir.Endpoint{Index: 0}, LabelID: -1, StyleID: -1},
		},
	}
	g := graphbuild.Build(d)
	ranks := rank.Assign(g, nil)
	order := rank.Buckets(g, ranks)
	nodes := []ir.NodeBox{{Index: 0, Rect: ir.Rect{X: 0, Y: 0, W: 40, H: 20}}}
	cfg := config.DefaultConfig()
	box := ir.Rect{X: 0, Y: 0, W: 40, H: 20}
	res := RouteAll(NewScratch(), g, d, ranks, order, nodes, nil, box, cfg)
	if len(res.Edges) != 1 {
		t.Fatalf("expected 1 self-loop path, got %d", len(res.Edges))
	}
	if len(res.Edges[0].Waypoints) != 5 {
		t.Fatalf("expected 5-point self-loop detour, got %d", len(res.Edges[0].Waypoints))
	}
}

func TestRouteAll_GridModeReportsPerEdgeDiagnostics(t *testing.T) {
	d, g, ranks, order, nodes := simpleDiagram()
	cfg := config.DefaultConfig()
	cfg.UseGridRouter = true
	box := ir.Rect{X: 0, Y: 0, W: 40, H: 100}
	res := RouteAll(NewScratch(), g, d, ranks, order, nodes, nil, box, cfg)
	if len(res.Report.PerEdge) != 1 {
		t.Fatalf("expected 1 diagnostic entry, got %d", len(res.Report.PerEdge))
	}
	diag := res.Report.PerEdge[0]
	if diag.Fallback {
		t.Fatal("expected a successful route, not a fallback")
	}
	if diag.CellsExplored <= 0 {
		t.Fatalf("expected cells_explored > 0, got %d", diag.CellsExplored)
	}
	if diag.Cost <= 0 {
		t.Fatalf("expected a positive path cost, got %v", diag.Cost)
	}
	if res.Report.TotalExplored != diag.CellsExplored || res.Report.FallbackCount != 0 {
		t.Fatalf("report totals inconsistent: %+v", res.Report)
	}
}

func TestSimplifyCollinear_DropsRedundantPoints(t *testing.T) {
	pts := []ir.Point{{X: 0, Y: 0}, {X: 0, Y: 5}, {X: 0, Y: 10}, {X: 5, Y: 10}}
	out := simplifyCollinear(pts)
	if len(out) != 3 {
		t.Fatalf("expected collinear middle point dropped, got %v", out)
	}
}

func TestGrid_BlockedCellsCoverNodeRect(t *testing.T) {
	box := ir.Rect{X: 0, Y: 0, W: 100, H: 100}
	nodes := []ir.NodeBox{{Rect: ir.Rect{X: 40, Y: 40, W: 20, H: 20}}}
	g := NewGrid(box, nodes, nil, 8, 16)
	col, row := g.cellOf(ir.Point{X: 50, Y: 50})
	idx, ok := g.index(col, row)
	if !ok || !g.blocked[idx] {
		t.Fatal("expected cell under node rect to be blocked")
	}
}

func TestGrid_ClusterBoundaryBlockedInteriorRoutable(t *testing.T) {
	box := ir.Rect{X: 0, Y: 0, W: 100, H: 100}
	clusters := []ir.ClusterBox{{Rect: ir.Rect{X: 20, Y: 20, W: 40, H: 40}}}
	g := NewGrid(box, nil, clusters, 8, 16)

	col, row := g.cellOf(ir.Point{X: 20, Y: 40})
	idx, ok := g.index(col, row)
	if !ok || !g.blocked[idx] {
		t.Fatal("expected a cluster boundary cell to be blocked")
	}

	col, row = g.cellOf(ir.Point{X: 40, Y: 40})
	idx, ok = g.index(col, row)
	if !ok || g.blocked[idx] {
		t.Fatal("expected a cluster interior cell to remain routable")
	}
}

func TestRouteAll_SelfLoopBumpsVerticallyForLRDirection(t *testing.T) {
	d := &ir.IR{
		Direction: ir.LR,
		Nodes:     []ir.Node{{ID: "a", LabelID: -1}},
		Edges: []ir.Edge{
			{From: ir.Endpoint{Index: 0}, To: ir.Endpoint{Index: 0}, LabelID: -1, StyleID: -1},
		},
	}
	g := graphbuild.Build(d)
	ranks := rank.Assign(g, nil)
	order := rank.Buckets(g, ranks)
	nodes := []ir.NodeBox{{Index: 0, Rect: ir.Rect{X: 0, Y: 0, W: 40, H: 20}}}
	cfg := config.DefaultConfig()
	box := ir.Rect{X: 0, Y: 0, W: 40, H: 20}
	res := RouteAll(NewScratch(), g, d, ranks, order, nodes, nil, box, cfg)
	if len(res.Edges) != 1 {
		t.Fatalf("expected 1 self-loop path, got %d", len(res.Edges))
	}
	wp := res.Edges[0].Waypoints
	if len(wp) != 5 {
		t.Fatalf("expected 5-point self-loop detour, got %d", len(wp))
	}
	if wp[1].Y <= nodes[0].Rect.Y+nodes[0].Rect.H {
		t.Fatalf("expected an LR self-loop to bump below the node, got %v", wp)
	}
}
