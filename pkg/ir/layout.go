package ir

// Point is a single 2D coordinate in world units.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in world units.
type Rect struct {
	X, Y, W, H float64
}

// CenterX returns the rectangle's center on the X axis.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the rectangle's center on the Y axis.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Contains reports whether p lies within r, expanded by tol on every side.
func (r Rect) Contains(p Point, tol float64) bool {
	return p.X >= r.X-tol && p.X <= r.X+r.W+tol &&
		p.Y >= r.Y-tol && p.Y <= r.Y+r.H+tol
}

// ContainsRect reports whether inner lies within r, expanded by tol.
func (r Rect) ContainsRect(inner Rect, tol float64) bool {
	return inner.X >= r.X-tol && inner.Y >= r.Y-tol &&
		inner.X+inner.W <= r.X+r.W+tol && inner.Y+inner.H <= r.Y+r.H+tol
}

// Union returns the smallest rectangle containing both r and other. Union
// of a zero-value Rect with anything yields other's extent plus the
// zero-value origin; callers seed with the first real rectangle.
func (r Rect) Union(other Rect) Rect {
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.W, other.X+other.W)
	maxY := max(r.Y+r.H, other.Y+other.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Overlaps reports whether r and other intersect, expanding other outward
// by margin on every side before testing (margin may be 0).
func (r Rect) Overlaps(other Rect, margin float64) bool {
	ox := other.X - margin
	oy := other.Y - margin
	ow := other.W + 2*margin
	oh := other.H + 2*margin
	return r.X < ox+ow && r.X+r.W > ox && r.Y < oy+oh && r.Y+r.H > oy
}

// NodeBox is the placed position of a single node.
type NodeBox struct {
	Index          int
	Rect           Rect
	LabelRect      *Rect
	Rank           int
	OrderInRank    int
}

// ClusterBox is the placed union rectangle of a cluster's members.
type ClusterBox struct {
	Index     int
	Rect      Rect
	TitleRect *Rect
}

// EdgePath is the placed polyline for one or more bundled IR edges.
type EdgePath struct {
	EdgeIndex     int
	Waypoints     []Point
	BundleCount   int
	BundleMembers []int
	LabelRect     *Rect
	LeaderFrom    *Point
}

// DegradationPlan is an advisory record attached when a budget trips.
type DegradationPlan struct {
	SimplifyRouting bool
	Reason          string
}

// LayoutStats summarizes the run that produced a DiagramLayout.
type LayoutStats struct {
	IterationsUsed  int
	BudgetExceeded  bool
	Crossings       int
	Ranks           int
	MaxRankWidth    int
	TotalBends      int
	PositionVariance float64
}

// DiagramLayout is the complete output of the engine.
type DiagramLayout struct {
	Nodes          []NodeBox
	Clusters       []ClusterBox
	Edges          []EdgePath
	BoundingBox    Rect
	Stats          LayoutStats
	Degradation    *DegradationPlan
	LegendLayout   *LegendLayout
}

// LegendEntry is a single placed legend line.
type LegendEntry struct {
	Text string
	Rect Rect
}

// LegendLayout is the placed legend block, computed either as part of
// label placement spillover or standalone via ComputeLegendLayout.
type LegendLayout struct {
	Entries       []LegendEntry
	Rect          Rect
	OverflowCount int
}
