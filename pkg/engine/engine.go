// Package engine wires the layout pipeline end to end: graph build, rank
// assignment, crossing minimization, coordinate assignment, cluster
// bounding, edge routing (with optional bundling), label placement, and
// aesthetic scoring, always in that fixed order. It is the only package
// callers outside this module need to import for a basic Mermaid-style
// layout.
package engine

import (
	"fmt"
	"io"
	"os"

	"github.com/vanderheijden86/diagramlayout/pkg/aesthetics"
	"github.com/vanderheijden86/diagramlayout/pkg/clusterbound"
	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/coordinate"
	"github.com/vanderheijden86/diagramlayout/pkg/crossing"
	"github.com/vanderheijden86/diagramlayout/pkg/graphbuild"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
	"github.com/vanderheijden86/diagramlayout/pkg/label"
	"github.com/vanderheijden86/diagramlayout/pkg/rank"
	"github.com/vanderheijden86/diagramlayout/pkg/route"
)

// Engine holds the reusable scratch buffers that would otherwise be
// reallocated on every Layout call; construct one per goroutine that calls
// Layout repeatedly (e.g. the CLI's --watch mode).
type Engine struct {
	crossingScratch *crossing.Scratch
	routeScratch    *route.Scratch
}

// New returns a ready-to-use Engine.
func New() *Engine {
	return &Engine{crossingScratch: crossing.NewScratch(), routeScratch: route.NewScratch()}
}

// Options configures a single Layout call beyond what Config already
// parameterizes.
type Options struct {
	StyleResolver ir.StyleResolver // optional, used for edge-bundling signatures
	Preset        config.WeightPreset
	EvidenceOut   io.Writer // optional JSONL sink (layout_metrics/_trace/mermaid_legend)
}

// Layout runs the full pipeline against d and returns the placed diagram,
// with spacing adjusted for the diagram dialect.
func (e *Engine) Layout(d *ir.IR, cfg config.Config, opts Options) (*ir.DiagramLayout, error) {
	return e.LayoutWithSpacing(d, cfg, SpacingForDiagramType(d.DiagramType, cfg.Spacing), opts)
}

// LayoutWithSpacing runs the full pipeline with an explicit spacing,
// bypassing the per-dialect spacing table.
func (e *Engine) LayoutWithSpacing(d *ir.IR, cfg config.Config, spacing config.Spacing, opts Options) (*ir.DiagramLayout, error) {
	if opts.EvidenceOut == nil && cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening evidence log: %w", err)
		}
		defer f.Close()
		opts.EvidenceOut = f
	}

	var stages []aesthetics.StageRecord
	stamp := func(stage string, nodeCount, crossings, iterations int) {
		if opts.EvidenceOut != nil {
			stages = append(stages, aesthetics.StageRecord{
				Stage:      stage,
				NodeCount:  nodeCount,
				Crossings:  crossings,
				Iterations: iterations,
			})
		}
	}

	g := graphbuild.Build(d)
	stamp("graph_build", g.N, 0, 0)

	ranks := rank.Assign(g, d.Constraints)
	stamp("rank_assign", g.N, 0, 0)

	crossResult := crossing.Minimize(g, ranks, d.Clusters, cfg.LayoutIterationBudget, e.crossingScratch)
	crossing.ApplyOrderConstraints(crossResult.Order, g, ranks, d.Constraints)
	stamp("crossing_minimize", g.N, crossResult.Crossings, crossResult.IterationsUsed)

	coordResult := coordinate.Assign(g, d, ranks, crossResult.Order, spacing)
	stamp("coordinate_assign", g.N, crossResult.Crossings, crossResult.IterationsUsed)

	clusterBoxes := clusterbound.Compute(d.Clusters, coordResult.Nodes, spacing)
	box := clusterbound.BoundingBox(coordResult.Nodes, clusterBoxes)
	stamp("cluster_bound", g.N, crossResult.Crossings, crossResult.IterationsUsed)

	routeResult := route.RouteAll(e.routeScratch, g, d, ranks, crossResult.Order, coordResult.Nodes, clusterBoxes, box, cfg)
	edges := routeResult.Edges
	if cfg.EdgeBundling {
		edges = route.Bundle(edges, g, d, clusterBoxes, opts.StyleResolver, cfg)
	}
	stamp("edge_route", g.N, crossResult.Crossings, crossResult.IterationsUsed)

	labelResult := label.Place(d, coordResult.Nodes, clusterBoxes, edges, cfg.LabelPlacement)
	var legend *ir.LegendLayout
	if cfg.LabelPlacement.LegendSpillover {
		legend = label.ComputeLegendLayout(labelResult.Overflow, box, cfg.Legend)
	}
	stamp("label_place", g.N, crossResult.Crossings, crossResult.IterationsUsed)

	finalBox := expandOverWaypoints(clusterbound.BoundingBox(labelResult.Nodes, clusterBoxes), labelResult.Edges)
	metrics := aesthetics.Compute(labelResult.Nodes, labelResult.Edges, finalBox, crossResult.Crossings)
	preset := opts.Preset
	if preset == "" {
		preset = config.PresetNormal
	}
	score := aesthetics.Score(metrics, config.Presets()[preset])
	stamp("aesthetics_score", g.N, crossResult.Crossings, crossResult.IterationsUsed)

	degradation := routeResult.Degradation
	if crossResult.BudgetExceeded {
		degradation = &ir.DegradationPlan{SimplifyRouting: true, Reason: "layout iteration budget exhausted"}
	}

	layout := &ir.DiagramLayout{
		Nodes:       labelResult.Nodes,
		Clusters:    clusterBoxes,
		Edges:       labelResult.Edges,
		BoundingBox: finalBox,
		Stats: ir.LayoutStats{
			IterationsUsed:   crossResult.IterationsUsed,
			BudgetExceeded:   crossResult.BudgetExceeded || routeResult.BudgetExceeded,
			Crossings:        crossResult.Crossings,
			Ranks:            len(crossResult.Order),
			MaxRankWidth:     maxRankWidth(crossResult.Order),
			TotalBends:       metrics.Bends,
			PositionVariance: metrics.PositionVariance,
		},
		Degradation:  degradation,
		LegendLayout: legend,
	}

	if opts.EvidenceOut != nil {
		hash := aesthetics.IRHash(d)
		metricsInput := aesthetics.LayoutMetricsInput{
			DiagramType:    string(d.DiagramType),
			Nodes:          len(layout.Nodes),
			Edges:          len(layout.Edges),
			Ranks:          layout.Stats.Ranks,
			BudgetExceeded: layout.Stats.BudgetExceeded,
		}
		_ = aesthetics.WriteLayoutMetrics(opts.EvidenceOut, hash, metricsInput, score, metrics)
		_ = aesthetics.WriteLayoutTrace(opts.EvidenceOut, hash, stages)
		_ = aesthetics.WriteMermaidLegend(opts.EvidenceOut, hash, legend, legendMode(cfg.Legend))
	}

	return layout, nil
}

func legendMode(cfg config.LegendConfig) string {
	if cfg.Below {
		return "below"
	}
	return "right"
}

// expandOverWaypoints grows box until it contains every edge waypoint, so
// self-loop detours and routed paths that bulge past the node extents stay
// inside the reported bounding box.
func expandOverWaypoints(box ir.Rect, edges []ir.EdgePath) ir.Rect {
	for _, e := range edges {
		for _, p := range e.Waypoints {
			box = box.Union(ir.Rect{X: p.X, Y: p.Y})
		}
	}
	return box
}

func maxRankWidth(order [][]int) int {
	max := 0
	for _, bucket := range order {
		if len(bucket) > max {
			max = len(bucket)
		}
	}
	return max
}
