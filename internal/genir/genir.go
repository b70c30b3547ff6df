// Package genir generates well-formed ir.IR values with pgregory.net/rapid,
// for the property tests in package engine and its dependencies: acyclic
// and cyclic graphs, with or without clusters and constraints, always with
// every edge endpoint resolvable; the "dropped edge" path is covered by
// hand-written fixtures instead.
package genir

import (
	"fmt"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

var directions = []ir.Direction{ir.TB, ir.TD, ir.BT, ir.LR, ir.RL}

// Gen returns a rapid generator producing an *ir.IR with between minNodes
// and maxNodes nodes, edges drawn from a configurable density, and a
// chance of clusters and SameRank/MinLength constraints.
func Gen(minNodes, maxNodes int) *rapid.Generator[*ir.IR] {
	return rapid.Custom(func(t *rapid.T) *ir.IR {
		n := rapid.IntRange(minNodes, maxNodes).Draw(t, "nodeCount")
		dir := directions[rapid.IntRange(0, len(directions)-1).Draw(t, "direction")]

		d := &ir.IR{
			DiagramType: ir.DiagramFlowchart,
			Direction:   dir,
		}

		for i := 0; i < n; i++ {
			labelIdx := len(d.Labels)
			d.Labels = append(d.Labels, ir.Label{Text: rapid.StringMatching(`[A-Za-z0-9 ]{1,12}`).Draw(t, fmt.Sprintf("label%d", i))})
			d.Nodes = append(d.Nodes, ir.Node{
				ID:      fmt.Sprintf("n%d", i),
				LabelID: labelIdx,
				Shape:   "rect",
			})
		}

		allowCycles := rapid.Bool().Draw(t, "allowCycles")
		edgeCount := rapid.IntRange(0, n*2).Draw(t, "edgeCount")
		for i := 0; i < edgeCount; i++ {
			from := rapid.IntRange(0, n-1).Draw(t, fmt.Sprintf("edgeFrom%d", i))
			to := rapid.IntRange(0, n-1).Draw(t, fmt.Sprintf("edgeTo%d", i))
			if !allowCycles && to < from {
				from, to = to, from
			}
			d.Edges = append(d.Edges, ir.Edge{
				From:    ir.Endpoint{Kind: ir.EndpointNode, Index: from},
				To:      ir.Endpoint{Kind: ir.EndpointNode, Index: to},
				LabelID: -1,
				StyleID: -1,
			})
		}

		if n >= 4 && rapid.Bool().Draw(t, "hasCluster") {
			size := rapid.IntRange(2, n/2).Draw(t, "clusterSize")
			members := make([]int, 0, size)
			for i := 0; i < size; i++ {
				members = append(members, i)
			}
			d.Clusters = append(d.Clusters, ir.Cluster{ID: "c0", TitleLabelID: -1, Members: members})
		}

		if n >= 2 && rapid.Bool().Draw(t, "hasSameRank") {
			d.Constraints = append(d.Constraints, ir.Constraint{
				Kind:        ir.ConstraintSameRank,
				SameRankIDs: []string{d.Nodes[0].ID, d.Nodes[1].ID},
			})
		}

		return d
	})
}
