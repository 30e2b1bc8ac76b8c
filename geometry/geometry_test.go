package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	assert.Equal(t, 5.0, Distance(0, 0, 3, 4))
	assert.Equal(t, 0.0, Distance(2, 2, 2, 2))
	assert.InDelta(t, math.Sqrt2, Distance(0, 0, 1, 1), 1e-9)
}

func TestRectAt(t *testing.T) {
	r := RectAt(10, -5, 4, 6)
	assert.Equal(t, 8.0, r.Left)
	assert.Equal(t, 12.0, r.Right)
	assert.Equal(t, -8.0, r.Top)
	assert.Equal(t, -2.0, r.Bottom)
	assert.Equal(t, 4.0, r.Width())
	assert.Equal(t, 6.0, r.Height())
	assert.Equal(t, 24.0, r.Area())
}

func TestRectanglesOverlap(t *testing.T) {
	a := RectAt(0, 0, 10, 10)
	b := RectAt(5, 5, 10, 10)
	assert.True(t, RectanglesOverlap(a, b))

	// Touching edges do not count as overlap.
	c := RectAt(10, 0, 10, 10)
	assert.False(t, RectanglesOverlap(a, c))

	d := RectAt(100, 100, 10, 10)
	assert.False(t, RectanglesOverlap(a, d))
}

func TestOverlapArea(t *testing.T) {
	a := RectAt(0, 0, 10, 10)
	b := RectAt(5, 5, 10, 10)
	assert.Equal(t, 25.0, OverlapArea(a, b))

	c := RectAt(20, 20, 10, 10)
	assert.Equal(t, 0.0, OverlapArea(a, c))

	// Full containment.
	inner := RectAt(0, 0, 4, 4)
	assert.Equal(t, 16.0, OverlapArea(a, inner))
}

func TestRectGap(t *testing.T) {
	a := RectAt(0, 0, 10, 10)

	// Overlapping rectangles have zero gap.
	assert.Equal(t, 0.0, RectGap(a, RectAt(5, 0, 10, 10)))

	// Touching rectangles have zero gap.
	assert.Equal(t, 0.0, RectGap(a, RectAt(10, 0, 10, 10)))

	// Horizontally separated by 5.
	assert.Equal(t, 5.0, RectGap(a, RectAt(15, 0, 10, 10)))

	// Diagonal separation combines per-axis gaps.
	assert.InDelta(t, math.Hypot(5, 5), RectGap(a, RectAt(15, 15, 10, 10)), 1e-9)
}

func TestRotatedBoundingBox(t *testing.T) {
	// Zero rotation leaves the box unchanged.
	r := RotatedBoundingBox(0, 0, 10, 6, 0)
	assert.InDelta(t, 10.0, r.Width(), 1e-9)
	assert.InDelta(t, 6.0, r.Height(), 1e-9)

	// 90 degrees swaps the extents.
	r = RotatedBoundingBox(0, 0, 10, 6, 90)
	assert.InDelta(t, 6.0, r.Width(), 1e-9)
	assert.InDelta(t, 10.0, r.Height(), 1e-9)

	// A rotated box always grows (or stays equal) in both axes.
	r = RotatedBoundingBox(0, 0, 10, 6, 30)
	assert.Greater(t, r.Width(), 10.0)
	assert.Greater(t, r.Height(), 6.0)
}

func TestContainsRect(t *testing.T) {
	outer := RectAt(0, 0, 100, 100)
	assert.True(t, ContainsRect(outer, RectAt(0, 0, 50, 50)))
	assert.True(t, ContainsRect(outer, outer))
	assert.False(t, ContainsRect(outer, RectAt(40, 0, 50, 50)))
	assert.False(t, ContainsRect(outer, RectAt(200, 200, 10, 10)))
}
