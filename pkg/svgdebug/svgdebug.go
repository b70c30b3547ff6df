// Package svgdebug renders a computed DiagramLayout to SVG for visual
// debugging. It is never on the hot path of layout itself: callers opt in
// (e.g. the CLI's --svg flag) when they want to eyeball a run.
package svgdebug

import (
	"io"
	"strconv"

	"github.com/ajstarks/svgo"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

// Options controls the rendered SVG's appearance.
type Options struct {
	Margin       int
	NodeFill     string
	NodeStroke   string
	EdgeStroke   string
	ClusterFill  string
	LabelColor   string
	FontSize     int
}

// DefaultOptions returns sensible rendering defaults.
func DefaultOptions() Options {
	return Options{
		Margin:      16,
		NodeFill:    "#eef3fb",
		NodeStroke:  "#355",
		EdgeStroke:  "#667",
		ClusterFill: "none",
		LabelColor:  "#223",
		FontSize:    11,
	}
}

// Write renders layout to w as a standalone SVG document.
func Write(w io.Writer, d *ir.IR, layout *ir.DiagramLayout, opts Options) {
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

	canvas := svg.New(w)
	canvas.Start(width, height)
	defer canvas.End()

	for _, c := range layout.Clusters {
		if c.Rect == (ir.Rect{}) {
			continue
		}
		canvas.Rect(int(c.Rect.X+offX), int(c.Rect.Y+offY), int(c.Rect.W), int(c.Rect.H),
			"fill:"+opts.ClusterFill+";stroke:"+opts.NodeStroke+";stroke-dasharray:4,3")
	}

	for _, e := range layout.Edges {
		if len(e.Waypoints) < 2 {
			continue
		}
		xs := make([]int, len(e.Waypoints))
		ys := make([]int, len(e.Waypoints))
		for i, p := range e.Waypoints {
			xs[i] = int(p.X + offX)
			ys[i] = int(p.Y + offY)
		}
		canvas.Polyline(xs, ys, "fill:none;stroke:"+opts.EdgeStroke)
	}

	for _, n := range layout.Nodes {
		canvas.Rect(int(n.Rect.X+offX), int(n.Rect.Y+offY), int(n.Rect.W), int(n.Rect.H),
			"fill:"+opts.NodeFill+";stroke:"+opts.NodeStroke)
		label := ""
		if n.Index >= 0 && n.Index < len(d.Nodes) {
			label = d.LabelText(d.Nodes[n.Index].LabelID)
		}
		if label != "" {
			canvas.Text(int(n.Rect.CenterX()+offX), int(n.Rect.CenterY()+offY), label,
				"text-anchor:middle;fill:"+opts.LabelColor+";font-size:"+strconv.Itoa(opts.FontSize)+"px")
		}
	}

	if layout.LegendLayout != nil {
		for _, entry := range layout.LegendLayout.Entries {
			canvas.Rect(int(entry.Rect.X+offX), int(entry.Rect.Y+offY), int(entry.Rect.W), int(entry.Rect.H),
				"fill:none;stroke:"+opts.NodeStroke)
			canvas.Text(int(entry.Rect.X+offX)+4, int(entry.Rect.CenterY()+offY), entry.Text,
				"fill:"+opts.LabelColor+";font-size:"+strconv.Itoa(opts.FontSize)+"px")
		}
	}
}

