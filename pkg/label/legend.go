package label

import (
	"github.com/vanderheijden86/diagramlayout/internal/textmeasure"
	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

// ComputeLegendLayout lays out overflow entries (from Result.Overflow) as a
// vertically stacked list, placed below box (Below) or to its right
// otherwise, capped at cfg.MaxEntries; entries
// beyond the cap are counted in OverflowCount rather than dropped silently.
func ComputeLegendLayout(entries []ir.LegendEntry, box ir.Rect, cfg config.LegendConfig) *ir.LegendLayout {
	if len(entries) == 0 {
		return nil
	}
	shown := entries
	overflow := 0
	if len(shown) > cfg.MaxEntries {
		overflow = len(shown) - cfg.MaxEntries
		shown = shown[:cfg.MaxEntries]
	}

	out := make([]ir.LegendEntry, len(shown))
	var originX, originY float64
	if cfg.Below {
		originX, originY = box.X, box.Y+box.H+cfg.EntryHeight
	} else {
		originX, originY = box.X+box.W+cfg.EntryHeight, box.Y
	}

	var unionRect ir.Rect
	for i, e := range shown {
		w := float64(textmeasure.Width(textmeasure.Truncate(e.Text, cfg.MaxEntryWidth))) * charCellWidth
		var r ir.Rect
		if cfg.Below {
			r = ir.Rect{X: originX, Y: originY + float64(i)*cfg.EntryHeight, W: w, H: cfg.EntryHeight}
		} else {
			r = ir.Rect{X: originX, Y: originY + float64(i)*cfg.EntryHeight, W: w, H: cfg.EntryHeight}
		}
		out[i] = ir.LegendEntry{Text: e.Text, Rect: r}
		if i == 0 {
			unionRect = r
		} else {
			unionRect = unionRect.Union(r)
		}
	}

	return &ir.LegendLayout{Entries: out, Rect: unionRect, OverflowCount: overflow}
}
