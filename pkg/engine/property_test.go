package engine

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/diagramlayout/internal/genir"
	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

// orderAxisOverlap reports whether two same-rank node boxes overlap on the
// order axis beyond tolerance.
func orderAxisOverlap(a, b ir.NodeBox, vertical bool, tol float64) bool {
	if vertical {
		return a.Rect.X < b.Rect.X+b.Rect.W-tol && a.Rect.X+a.Rect.W-tol > b.Rect.X
	}
	return a.Rect.Y < b.Rect.Y+b.Rect.H-tol && a.Rect.Y+a.Rect.H-tol > b.Rect.Y
}

func TestLayout_PropertyDeterminism(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := genir.Gen(1, 12).Draw(rt, "ir")
		cfg := config.DefaultConfig()
		a, err := New().Layout(d, cfg, Options{Preset: config.PresetNormal})
		if err != nil {
			rt.Fatalf("Layout: %v", err)
		}
		b, err := New().Layout(d, cfg, Options{Preset: config.PresetNormal})
		if err != nil {
			rt.Fatalf("Layout: %v", err)
		}
		if !reflect.DeepEqual(a, b) {
			rt.Fatalf("two runs over the same IR diverged:\n%+v\nvs\n%+v", a, b)
		}
	})
}

func TestLayout_PropertyRankMonotonicity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := genir.Gen(1, 12).Draw(rt, "ir")
		if len(d.Constraints) > 0 {
			// SameRank may legitimately pull a successor above its
			// predecessor; monotonicity is only promised unconstrained.
			return
		}
		layout, err := New().Layout(d, config.DefaultConfig(), Options{})
		if err != nil {
			rt.Fatalf("Layout: %v", err)
		}
		for _, e := range d.Edges {
			from, ok1 := d.ResolveEndpoint(e.From)
			to, ok2 := d.ResolveEndpoint(e.To)
			if !ok1 || !ok2 || from == to {
				continue
			}
			if layout.Nodes[from].Rank > layout.Nodes[to].Rank {
				rt.Fatalf("edge %d->%d violates rank monotonicity: %d > %d",
					from, to, layout.Nodes[from].Rank, layout.Nodes[to].Rank)
			}
		}
	})
}

func TestLayout_PropertyNoSameRankOverlap(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := genir.Gen(2, 12).Draw(rt, "ir")
		layout, err := New().Layout(d, config.DefaultConfig(), Options{})
		if err != nil {
			rt.Fatalf("Layout: %v", err)
		}
		vertical := d.Direction.RankAxisVertical()
		for i := range layout.Nodes {
			for j := i + 1; j < len(layout.Nodes); j++ {
				a, b := layout.Nodes[i], layout.Nodes[j]
				if a.Rank != b.Rank {
					continue
				}
				if orderAxisOverlap(a, b, vertical, 0.01) {
					rt.Fatalf("same-rank nodes %d and %d overlap on the order axis: %v vs %v",
						a.Index, b.Index, a.Rect, b.Rect)
				}
			}
		}
	})
}

func TestLayout_PropertyBoundsContainment(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := genir.Gen(1, 12).Draw(rt, "ir")
		layout, err := New().Layout(d, config.DefaultConfig(), Options{})
		if err != nil {
			rt.Fatalf("Layout: %v", err)
		}
		box := layout.BoundingBox
		for _, n := range layout.Nodes {
			if !box.ContainsRect(n.Rect, 0.01) {
				rt.Fatalf("node %d rect %v escapes bounding box %v", n.Index, n.Rect, box)
			}
		}
		for _, c := range layout.Clusters {
			if c.Rect == (ir.Rect{}) {
				continue
			}
			if !box.ContainsRect(c.Rect, 0.01) {
				rt.Fatalf("cluster %d rect %v escapes bounding box %v", c.Index, c.Rect, box)
			}
		}
		for _, e := range layout.Edges {
			for _, p := range e.Waypoints {
				if !box.Contains(p, 0.01) {
					rt.Fatalf("edge %d waypoint %v escapes bounding box %v", e.EdgeIndex, p, box)
				}
			}
		}
	})
}

func TestLayout_PropertyClusterContainment(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := genir.Gen(4, 12).Draw(rt, "ir")
		layout, err := New().Layout(d, config.DefaultConfig(), Options{})
		if err != nil {
			rt.Fatalf("Layout: %v", err)
		}
		for ci, c := range d.Clusters {
			cb := layout.Clusters[ci]
			if cb.Rect == (ir.Rect{}) {
				continue
			}
			for _, m := range c.Members {
				if m < 0 || m >= len(layout.Nodes) {
					continue
				}
				if !cb.Rect.ContainsRect(layout.Nodes[m].Rect, 0.01) {
					rt.Fatalf("cluster %d member %d rect %v escapes cluster rect %v",
						ci, m, layout.Nodes[m].Rect, cb.Rect)
				}
			}
		}
	})
}

func TestLayout_PropertyBudgetHonored(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := genir.Gen(1, 12).Draw(rt, "ir")
		cfg := config.DefaultConfig()
		cfg.LayoutIterationBudget = rapid.IntRange(1, 8).Draw(rt, "budget")
		layout, err := New().Layout(d, cfg, Options{})
		if err != nil {
			rt.Fatalf("Layout: %v", err)
		}
		if layout.Stats.IterationsUsed > cfg.LayoutIterationBudget {
			rt.Fatalf("iterations used %d exceeds budget %d",
				layout.Stats.IterationsUsed, cfg.LayoutIterationBudget)
		}
	})
}
