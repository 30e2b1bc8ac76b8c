// Package board implements the spatial note-layout engine: placing movable,
// rotatable, z-ordered cards around a fixed main slot without overlap,
// drag repositioning with z-order promotion, and debounced persistence of
// the resulting layout.
package board

// Board geometry and stacking constants. Coordinates are logical pixels
// offset from the board center.
const (
	// MainSlotWidth and MainSlotHeight are the footprint of the centered
	// main card.
	MainSlotWidth  = 240.0
	MainSlotHeight = 160.0

	// CardWidth and CardHeight are the base footprint of a note card;
	// background cards render at BackgroundScale.
	CardWidth       = 140.0
	CardHeight      = 90.0
	BackgroundScale = 0.5

	// SafeMargin shrinks the container on all sides for the bounds check.
	SafeMargin = 20.0

	// OverlapTolerance is the fraction of a card's area that may intersect
	// the main slot before the card counts as colliding.
	OverlapTolerance = 0.25

	// Clearance band (distance from board center) sampled by the solver.
	MinClearanceFromMain = 170.0
	MaxClearanceFromMain = 430.0

	// MinDistance separates any two background cards; cards sharing a
	// color tag keep the larger MinSameColorDistance.
	MinDistance          = 90.0
	MinSameColorDistance = 120.0

	// MaxRotation bounds card rotation in degrees.
	MaxRotation = 8.0

	// MaxAttempts is the sampling budget per card before the solver falls
	// back to its deterministic placement.
	MaxAttempts = 40

	// MaxUpwardOffset clamps how far above center a card may be sampled;
	// DownwardBias shifts every sample toward the bottom of the board.
	MaxUpwardOffset = 280.0
	DownwardBias    = 12.0
)

// Stacking order constants. Background cards hold z-indices in
// [ZFloor, ZThreshold); MainZ and HoverZ are reserved values above the
// normal band.
const (
	ZFloor     = 1
	ZThreshold = 80
	ZReduction = 40
	HoverZ     = 900
	MainZ      = 1000
)

const sectorCount = 8

// Size is a container extent in logical pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Position is the stored placement of one card.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Rotate float64 `json:"rotate"`
	ZIndex int     `json:"zIndex"`
}

// Placement is a solver result. Fallback marks the best-effort escape
// hatch taken when the sampling budget is exhausted; fallback placements
// are not re-validated against the overlap and bounds rules.
type Placement struct {
	Position
	Fallback bool
}

// CardRef identifies a card to the solver: its id and optional color tag.
type CardRef struct {
	ID    string
	Color string
}
