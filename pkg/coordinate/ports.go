package coordinate

import "github.com/vanderheijden86/diagramlayout/pkg/ir"

// PortPoint returns the port point on rect for the given direction and
// endpoint role:
//
//	TB/TD source=bottom-center target=top-center
//	BT    source=top-center    target=bottom-center
//	LR    source=right-middle  target=left-middle
//	RL    source=left-middle   target=right-middle
func PortPoint(rect ir.Rect, dir ir.Direction, isSource bool) ir.Point {
	switch dir {
	case ir.BT:
		if isSource {
			return ir.Point{X: rect.CenterX(), Y: rect.Y}
		}
		return ir.Point{X: rect.CenterX(), Y: rect.Y + rect.H}
	case ir.LR:
		if isSource {
			return ir.Point{X: rect.X + rect.W, Y: rect.CenterY()}
		}
		return ir.Point{X: rect.X, Y: rect.CenterY()}
	case ir.RL:
		if isSource {
			return ir.Point{X: rect.X, Y: rect.CenterY()}
		}
		return ir.Point{X: rect.X + rect.W, Y: rect.CenterY()}
	default: // TB, TD
		if isSource {
			return ir.Point{X: rect.CenterX(), Y: rect.Y + rect.H}
		}
		return ir.Point{X: rect.CenterX(), Y: rect.Y}
	}
}
