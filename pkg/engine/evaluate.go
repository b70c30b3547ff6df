package engine

import (
	"github.com/vanderheijden86/diagramlayout/pkg/aesthetics"
	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

// EvaluateLayout scores an already-computed DiagramLayout under preset,
// recomputing metrics from its placed geometry rather than re-running the
// pipeline. d is the IR that produced layout; kept in the signature for
// parity with CompareLayouts even though metric recomputation only needs
// the placed geometry.
func EvaluateLayout(d *ir.IR, layout *ir.DiagramLayout, preset config.WeightPreset) (aesthetics.Metrics, float64) {
	m := aesthetics.Compute(layout.Nodes, layout.Edges, layout.BoundingBox, layout.Stats.Crossings)
	if preset == "" {
		preset = config.PresetNormal
	}
	return m, aesthetics.Score(m, config.Presets()[preset])
}

// CompareLayouts reports the per-metric differences between a and b plus
// the weighted score difference under preset; a negative Score means a is
// the better layout.
func CompareLayouts(d *ir.IR, a, b *ir.DiagramLayout, preset config.WeightPreset) aesthetics.Delta {
	ma, _ := EvaluateLayout(d, a, preset)
	mb, _ := EvaluateLayout(d, b, preset)
	if preset == "" {
		preset = config.PresetNormal
	}
	return aesthetics.Compare(ma, mb, config.Presets()[preset])
}
