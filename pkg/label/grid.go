// Package label places node, edge, and legend text: node labels inset into
// their owning box, edge labels at the midpoint of their routed path with a
// deterministic spiral search for the first collision-free offset backed by
// a uniform-grid spatial index, and legend overflow entries with leader
// lines back to the edge they annotate.
package label

import "github.com/vanderheijden86/diagramlayout/pkg/ir"

// SpatialIndex buckets placed rectangles into uniform grid cells so an
// occupancy query only has to precisely test rectangles sharing a cell,
// instead of every previously placed rectangle.
type SpatialIndex struct {
	cellSize float64
	cells    map[[2]int][]ir.Rect
}

// NewSpatialIndex returns an empty index with the given cell size.
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	if cellSize <= 0 {
		cellSize = 32
	}
	return &SpatialIndex{cellSize: cellSize, cells: make(map[[2]int][]ir.Rect)}
}

func (s *SpatialIndex) cellRange(r ir.Rect) (x0, y0, x1, y1 int) {
	x0 = int(floorDiv(r.X, s.cellSize))
	y0 = int(floorDiv(r.Y, s.cellSize))
	x1 = int(floorDiv(r.X+r.W, s.cellSize))
	y1 = int(floorDiv(r.Y+r.H, s.cellSize))
	return
}

func floorDiv(v, d float64) float64 {
	q := v / d
	if q < 0 {
		return q - 1
	}
	return q
}

// Insert records r as occupied.
func (s *SpatialIndex) Insert(r ir.Rect) {
	x0, y0, x1, y1 := s.cellRange(r)
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			key := [2]int{x, y}
			s.cells[key] = append(s.cells[key], r)
		}
	}
}

// Overlaps reports whether r intersects any previously inserted rectangle,
// expanded by margin on every side.
func (s *SpatialIndex) Overlaps(r ir.Rect, margin float64) bool {
	x0, y0, x1, y1 := s.cellRange(r)
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			for _, cand := range s.cells[[2]int{x, y}] {
				if r.Overlaps(cand, margin) {
					return true
				}
			}
		}
	}
	return false
}
