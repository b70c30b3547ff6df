// Package clusterbound computes each cluster's placed rectangle: the padded
// union of its member nodes' boxes, with a title strip reserved along the
// top edge when the cluster has a title label.
package clusterbound

import (
	"github.com/vanderheijden86/diagramlayout/pkg/config"
	"github.com/vanderheijden86/diagramlayout/pkg/ir"
)

// Compute returns one ClusterBox per cluster in clusters, in the same
// order. A cluster with no resolvable members (all indices out of range)
// produces a zero-value Rect.
func Compute(clusters []ir.Cluster, nodes []ir.NodeBox, spacing config.Spacing) []ir.ClusterBox {
	out := make([]ir.ClusterBox, len(clusters))
	for ci, c := range clusters {
		var union ir.Rect
		seeded := false
		for _, m := range c.Members {
			if m < 0 || m >= len(nodes) {
				continue
			}
			if !seeded {
				union = nodes[m].Rect
				seeded = true
				continue
			}
			union = union.Union(nodes[m].Rect)
		}
		if !seeded {
			out[ci] = ir.ClusterBox{Index: ci}
			continue
		}

		padded := ir.Rect{
			X: union.X - spacing.ClusterPadding,
			Y: union.Y - spacing.ClusterPadding,
			W: union.W + 2*spacing.ClusterPadding,
			H: union.H + 2*spacing.ClusterPadding,
		}

		var titleRect *ir.Rect
		if c.TitleLabelID >= 0 {
			padded.H += spacing.ClusterTitleHeight
			padded.Y -= spacing.ClusterTitleHeight
			titleRect = &ir.Rect{
				X: padded.X,
				Y: padded.Y,
				W: padded.W,
				H: spacing.ClusterTitleHeight,
			}
		}

		out[ci] = ir.ClusterBox{Index: ci, Rect: padded, TitleRect: titleRect}
	}
	return out
}

// BoundingBox returns the union of every node box and cluster box, the
// DiagramLayout.BoundingBox value, seeded from the first node if any exist.
func BoundingBox(nodes []ir.NodeBox, clusters []ir.ClusterBox) ir.Rect {
	var box ir.Rect
	seeded := false
	for _, n := range nodes {
		if !seeded {
			box = n.Rect
			seeded = true
			continue
		}
		box = box.Union(n.Rect)
	}
	for _, c := range clusters {
		if c.Rect == (ir.Rect{}) {
			continue
		}
		if !seeded {
			box = c.Rect
			seeded = true
			continue
		}
		box = box.Union(c.Rect)
	}
	return box
}
