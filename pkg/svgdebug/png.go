package svgdebug

import (
	"git.sr.ht/~sbinet/gg"

	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

// RenderPNG rasterizes layout to path as a PNG, using the same Options as
// Write. A coarser sibling of the SVG dump for quick visual diffing in
// terminals without an SVG viewer.
func RenderPNG(path string, d *ir.IR, layout *ir.DiagramLayout, opts Options) error {
	box := layout.BoundingBox
	width := int(box.W) + 2*opts.Margin
	height := int(box.H) + 2*opts.Margin
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	offX, offY := float64(opts.Margin)-box.X, float64(opts.Margin)-box.Y

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0.2, 0.33, 0.4)
	for _, e := range layout.Edges {
		if len(e.Waypoints) < 2 {
			continue
		}
		dc.MoveTo(e.Waypoints[0].X+offX, e.Waypoints[0].Y+offY)
		for _, p := range e.Waypoints[1:] {
			dc.LineTo(p.X+offX, p.Y+offY)
		}
		dc.Stroke()
	}

	for _, n := range layout.Nodes {
		dc.SetRGB(0.93, 0.95, 0.98)
		dc.DrawRectangle(n.Rect.X+offX, n.Rect.Y+offY, n.Rect.W, n.Rect.H)
		dc.FillPreserve()
		dc.SetRGB(0.2, 0.33, 0.33)
		dc.Stroke()
		if n.Index >= 0 && n.Index < len(d.Nodes) {
			label := d.LabelText(d.Nodes[n.Index].LabelID)
			if label != "" {
				dc.DrawStringAnchored(label, n.Rect.CenterX()+offX, n.Rect.CenterY()+offY, 0.5, 0.5)
			}
		}
	}

	return dc.SavePNG(path)
}
