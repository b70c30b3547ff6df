package engine

import (
	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

// SpacingForDiagramType returns base adjusted for the diagram dialect's
// typical density: sequence and gitgraph diagrams run tighter (many same-shaped nodes in a
// row), class and ER diagrams run looser (multi-line member boxes benefit
// from extra rank gap), everything else uses base unmodified.
func SpacingForDiagramType(dt ir.DiagramType, base config.Spacing) config.Spacing {
	switch dt {
	case ir.DiagramSequence, ir.DiagramGitGraph:
		base.NodeGap *= 0.75
		base.RankGap *= 0.85
	case ir.DiagramClass, ir.DiagramER:
		base.RankGap *= 1.25
		base.ClusterPadding *= 1.2
	case ir.DiagramMindmap:
		base.NodeGap *= 1.3
	}
	return base
}
