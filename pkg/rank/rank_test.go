package rank

import (
	"testing"

	"github.com/vanderheijden86/diagramlayout/pkg/graphbuild"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

func buildGraph(t *testing.T, n int, edges [][2]int) *graphbuild.Graph {
	t.Helper()
	d := &ir.IR{}
	for i := 0; i < n; i++ {
		d.Nodes = append(d.Nodes, ir.Node{ID: string(rune('a' + i)), LabelID: -1})
	}
	for _, e := range edges {
		d.Edges = append(d.Edges, ir.Edge{
			From:    ir.Endpoint{Kind: ir.EndpointNode, Index: e[0]},
			To:      ir.Endpoint{Kind: ir.EndpointNode, Index: e[1]},
			LabelID: -1, StyleID: -1,
		})
	}
	return graphbuild.Build(d)
}

func TestAssign_LinearChain(t *testing.T) {
	g := buildGraph(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	ranks := Assign(g, nil)
	for i, want := range []int{0, 1, 2, 3} {
		if ranks[i] != want {
			t.Errorf("rank[%d] = %d, want %d", i, ranks[i], want)
		}
	}
}

func TestAssign_LongestPath(t *testing.T) {
	// a->b, a->c, c->d, b->d: d must be placed after both predecessors'
	// longest path, i.e. rank 2, not 1.
	g := buildGraph(t, 4, [][2]int{{0, 1}, {0, 2}, {2, 3}, {1, 3}})
	ranks := Assign(g, nil)
	if ranks[3] != 2 {
		t.Fatalf("expected longest-path rank 2 for node 3, got %d", ranks[3])
	}
}

func TestAssign_CyclicNodesGetSentinelRank(t *testing.T) {
	g := buildGraph(t, 3, [][2]int{{0, 1}, {1, 2}, {2, 0}})
	ranks := Assign(g, nil)
	maxRank := 0
	for _, r := range ranks {
		if r > maxRank {
			maxRank = r
		}
	}
	// every node in the 3-cycle is unvisited by Kahn's algorithm and
	// lands on the same sentinel rank.
	for i, r := range ranks {
		if r != maxRank {
			t.Errorf("expected all cyclic nodes on sentinel rank %d, node %d got %d", maxRank, i, r)
		}
	}
	cyclic := CyclicNodes(g)
	for i := 0; i < 3; i++ {
		if !cyclic[i] {
			t.Errorf("expected node %d reported cyclic", i)
		}
	}
}

func TestApplySameRank(t *testing.T) {
	g := buildGraph(t, 3, [][2]int{{0, 1}, {0, 2}})
	constraints := []ir.Constraint{
		{Kind: ir.ConstraintSameRank, SameRankIDs: []string{"b", "c"}},
	}
	ranks := Assign(g, constraints)
	if ranks[1] != ranks[2] {
		t.Fatalf("expected b and c on the same rank, got %d and %d", ranks[1], ranks[2])
	}
}

func TestApplyMinLength(t *testing.T) {
	g := buildGraph(t, 2, [][2]int{{0, 1}})
	constraints := []ir.Constraint{
		{Kind: ir.ConstraintMinLength, MinLengthFrom: "a", MinLengthTo: "b", MinLengthK: 3},
	}
	ranks := Assign(g, constraints)
	if ranks[1]-ranks[0] < 3 {
		t.Fatalf("expected rank gap >= 3, got %d", ranks[1]-ranks[0])
	}
}

func TestBuckets_SortedByNodeID(t *testing.T) {
	g := buildGraph(t, 3, nil)
	ranks := Map{0, 0, 0}
	buckets := Buckets(g, ranks)
	if len(buckets) != 1 || len(buckets[0]) != 3 {
		t.Fatalf("expected single bucket of 3, got %v", buckets)
	}
	for i := 1; i < len(buckets[0]); i++ {
		if g.NodeIDs[buckets[0][i-1]] > g.NodeIDs[buckets[0][i]] {
			t.Fatalf("bucket not sorted ascending by node ID: %v", buckets[0])
		}
	}
}
