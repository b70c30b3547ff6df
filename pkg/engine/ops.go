package engine

import (
	"sort"

	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/graphbuild"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
	"github.com/vanderheijden86/diagramlayout/pkg/label"
	"github.com/vanderheijden86/diagramlayout/pkg/rank"
	"github.com/vanderheijden86/diagramlayout/pkg/route"
)

// RouteAllEdges re-routes every edge of an already-placed layout with the
// grid A* router under the given weights, returning the new paths and the
// per-edge routing report. The layout's node boxes, cluster boxes, and
// bounding box are taken as fixed obstacles; node order within ranks is
// recovered from the placed NodeBox rank/order fields.
func RouteAllEdges(d *ir.IR, layout *ir.DiagramLayout, cfg config.Config, weights config.RoutingWeights) ([]ir.EdgePath, route.Report) {
	g := graphbuild.Build(d)
	ranks, order := ranksAndOrderOf(layout.Nodes)
	cfg.Routing = weights
	cfg.UseGridRouter = true
	res := route.RouteAll(route.NewScratch(), g, d, ranks, order, layout.Nodes, layout.Clusters, layout.BoundingBox, cfg)
	return res.Edges, res.Report
}

// PlaceLabels runs label placement against an already-placed layout,
// independent of the full pipeline.
func PlaceLabels(d *ir.IR, layout *ir.DiagramLayout, cfg config.LabelPlacementConfig) label.Result {
	return label.Place(d, layout.Nodes, layout.Clusters, layout.Edges, cfg)
}

// ComputeLegendLayout stacks footnote strings into a legend block anchored
// to box, one entry per footnote.
func ComputeLegendLayout(box ir.Rect, footnotes []string, cfg config.LegendConfig) *ir.LegendLayout {
	entries := make([]ir.LegendEntry, len(footnotes))
	for i, f := range footnotes {
		entries[i] = ir.LegendEntry{Text: f}
	}
	return label.ComputeLegendLayout(entries, box, cfg)
}

// ranksAndOrderOf rebuilds the rank map and per-rank order buckets from
// placed node boxes.
func ranksAndOrderOf(nodes []ir.NodeBox) (rank.Map, [][]int) {
	maxRank := 0
	for _, n := range nodes {
		if n.Rank > maxRank {
			maxRank = n.Rank
		}
	}
	ranks := make(rank.Map, len(nodes))
	order := make([][]int, maxRank+1)
	for _, n := range nodes {
		ranks[n.Index] = n.Rank
	}
	type placed struct{ index, pos int }
	byRank := make([][]placed, maxRank+1)
	for _, n := range nodes {
		byRank[n.Rank] = append(byRank[n.Rank], placed{index: n.Index, pos: n.OrderInRank})
	}
	for r, bucket := range byRank {
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].pos < bucket[j].pos })
		order[r] = make([]int, len(bucket))
		for i, p := range bucket {
			order[r][i] = p.index
		}
	}
	return ranks, order
}
