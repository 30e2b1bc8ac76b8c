// Package geometry provides the pure 2D math used by the board placement
// engine: distances, axis-aligned rectangle tests and the rotated-footprint
// bounds check. Coordinates are logical pixels measured from the board
// center, y growing downward.
package geometry

import "math"

// Rect is an axis-aligned rectangle given by its edges.
type Rect struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// RectAt returns the axis-aligned rectangle of width w and height h
// centered at (x, y).
func RectAt(x, y, w, h float64) Rect {
	return Rect{
		Left:   x - w/2,
		Right:  x + w/2,
		Top:    y - h/2,
		Bottom: y + h/2,
	}
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Area returns the area of r.
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// Distance returns the Euclidean distance between (x1, y1) and (x2, y2).
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// RectanglesOverlap reports whether r1 and r2 intersect. Touching edges do
// not count as overlap.
func RectanglesOverlap(r1, r2 Rect) bool {
	return r1.Left < r2.Right && r2.Left < r1.Right &&
		r1.Top < r2.Bottom && r2.Top < r1.Bottom
}

// OverlapArea returns the intersection area of r1 and r2, 0 when disjoint.
func OverlapArea(r1, r2 Rect) float64 {
	w := math.Min(r1.Right, r2.Right) - math.Max(r1.Left, r2.Left)
	h := math.Min(r1.Bottom, r2.Bottom) - math.Max(r1.Top, r2.Top)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// RectGap returns the shortest gap between two rectangles, combining the
// per-axis separations via the Euclidean norm. Overlapping or touching
// rectangles have gap 0.
func RectGap(r1, r2 Rect) float64 {
	dx := math.Max(0, math.Max(r2.Left-r1.Right, r1.Left-r2.Right))
	dy := math.Max(0, math.Max(r2.Top-r1.Bottom, r1.Top-r2.Bottom))
	return math.Hypot(dx, dy)
}

// RotatedBoundingBox returns the axis-aligned bounding box of a w×h
// rectangle centered at (x, y) and rotated by deg degrees about its center.
func RotatedBoundingBox(x, y, w, h, deg float64) Rect {
	rad := deg * math.Pi / 180
	sin := math.Abs(math.Sin(rad))
	cos := math.Abs(math.Cos(rad))
	bw := w*cos + h*sin
	bh := w*sin + h*cos
	return RectAt(x, y, bw, bh)
}

// ContainsRect reports whether inner lies entirely within outer.
func ContainsRect(outer, inner Rect) bool {
	return inner.Left >= outer.Left && inner.Right <= outer.Right &&
		inner.Top >= outer.Top && inner.Bottom <= outer.Bottom
}
