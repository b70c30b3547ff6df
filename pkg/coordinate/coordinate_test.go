package coordinate

import (
	"testing"

	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/graphbuild"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
	"github.com/vanderheijden86/diagramlayout/pkg/rank"
)

func chain(t *testing.T, dir ir.Direction) (*ir.IR, *graphbuild.Graph, rank.Map, [][]int) {
	t.Helper()
	d := &ir.IR{
		Direction: dir,
		Nodes: []ir.Node{
			{ID: "a", LabelID: 0}, {ID: "b", LabelID: 1}, {ID: "c", LabelID: 2},
		},
		Labels: []ir.Label{{Text: "A"}, {Text: "B"}, {Text: "C"}},
		Edges: []ir.Edge{
			{From: ir.Endpoint{Index: 0}, To: ir.Endpoint{Index: 1}, LabelID: -1, StyleID: -1},
			{From: ir.Endpoint{Index: 1}, To: ir.Endpoint{Index: 2}, LabelID: -1, StyleID: -1},
		},
	}
	g := graphbuild.Build(d)
	ranks := rank.Assign(g, nil)
	order := rank.Buckets(g, ranks)
	return d, g, ranks, order
}

func TestAssign_VerticalDirectionGrowsDownward(t *testing.T) {
	d, g, ranks, order := chain(t, ir.TB)
	res := Assign(g, d, ranks, order, config.DefaultSpacing())
	if res.Nodes[0].Rect.Y >= res.Nodes[1].Rect.Y {
		t.Fatalf("expected rank 0 above rank 1: %v vs %v", res.Nodes[0].Rect, res.Nodes[1].Rect)
	}
	if res.Nodes[1].Rect.Y >= res.Nodes[2].Rect.Y {
		t.Fatalf("expected rank 1 above rank 2")
	}
}

func TestAssign_ReversedDirectionFlipsRankAxis(t *testing.T) {
	d, g, ranks, order := chain(t, ir.BT)
	res := Assign(g, d, ranks, order, config.DefaultSpacing())
	// BT: rank 0 (node a) should be the lowest (largest Y).
	if res.Nodes[0].Rect.Y <= res.Nodes[1].Rect.Y {
		t.Fatalf("expected BT to place rank 0 below rank 1: %v vs %v", res.Nodes[0].Rect, res.Nodes[1].Rect)
	}
}

func TestAssign_HorizontalDirectionUsesX(t *testing.T) {
	d, g, ranks, order := chain(t, ir.LR)
	res := Assign(g, d, ranks, order, config.DefaultSpacing())
	if res.Nodes[0].Rect.X >= res.Nodes[1].Rect.X {
		t.Fatalf("expected LR rank 0 left of rank 1")
	}
}

func TestComputeNodeSizes_RespectsMinimums(t *testing.T) {
	d := &ir.IR{
		Nodes:  []ir.Node{{ID: "a", LabelID: 0}},
		Labels: []ir.Label{{Text: "x"}},
	}
	spacing := config.DefaultSpacing()
	sizes := ComputeNodeSizes(d, spacing)
	if sizes[0].W < spacing.MinNodeWidth {
		t.Fatalf("width %v below minimum %v", sizes[0].W, spacing.MinNodeWidth)
	}
	if sizes[0].H < spacing.MinNodeHeight {
		t.Fatalf("height %v below minimum %v", sizes[0].H, spacing.MinNodeHeight)
	}
}

func TestAssign_PinOverridesPosition(t *testing.T) {
	d, g, ranks, order := chain(t, ir.TB)
	d.Constraints = append(d.Constraints, ir.Constraint{Kind: ir.ConstraintPin, PinNodeID: "a", PinX: 500, PinY: 500})
	res := Assign(g, d, ranks, order, config.DefaultSpacing())
	if res.Nodes[0].Rect.X != 500 || res.Nodes[0].Rect.Y != 500 {
		t.Fatalf("expected pin to override position, got %v", res.Nodes[0].Rect)
	}
}

func TestEdgeWaypoints_AdjacentRankIsTwoPoints(t *testing.T) {
	d, g, ranks, order := chain(t, ir.TB)
	res := Assign(g, d, ranks, order, config.DefaultSpacing())
	wp := EdgeWaypoints(d, order, ranks, res.Nodes, g.Edges[0])
	if len(wp) != 2 {
		t.Fatalf("expected 2 waypoints for adjacent-rank edge, got %d", len(wp))
	}
}

func TestEdgeWaypoints_MultiRankSnapsToFirstInRank(t *testing.T) {
	d := &ir.IR{
		Direction: ir.TB,
		Nodes: []ir.Node{
			{ID: "a", LabelID: 0}, {ID: "b", LabelID: 1}, {ID: "c", LabelID: 2}, {ID: "d", LabelID: 3},
		},
		Labels: []ir.Label{{Text: "A"}, {Text: "B"}, {Text: "C"}, {Text: "D"}},
		Edges: []ir.Edge{
			{From: ir.Endpoint{Index: 0}, To: ir.Endpoint{Index: 1}, LabelID: -1, StyleID: -1},
			{From: ir.Endpoint{Index: 1}, To: ir.Endpoint{Index: 2}, LabelID: -1, StyleID: -1},
			{From: ir.Endpoint{Index: 0}, To: ir.Endpoint{Index: 2}, LabelID: -1, StyleID: -1}, // spans 2 ranks
		},
	}
	g := graphbuild.Build(d)
	ranks := rank.Assign(g, nil)
	order := rank.Buckets(g, ranks)
	res := Assign(g, d, ranks, order, config.DefaultSpacing())

	var multiRankEdge graphbuild.ResolvedEdge
	for _, e := range g.Edges {
		if e.From == 0 && e.To == 2 {
			multiRankEdge = e
		}
	}
	wp := EdgeWaypoints(d, order, ranks, res.Nodes, multiRankEdge)
	if len(wp) != 3 {
		t.Fatalf("expected 3 waypoints (src, interior, dst) for a 2-rank-span edge, got %d: %v", len(wp), wp)
	}
	// Rank 1 holds only b, so the interior point's rank-axis coordinate
	// snaps to b's center.
	if want := res.Nodes[1].Rect.CenterY(); wp[1].Y != want {
		t.Fatalf("expected interior waypoint y snapped to first-in-rank center %v, got %v", want, wp[1].Y)
	}
}
