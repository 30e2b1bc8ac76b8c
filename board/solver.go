package board

import (
	"math"
	"math/rand/v2"

	"github.com/SuperB747/emotion-notepad-sub000/geometry"
)

// DistanceFromMainSlot returns the clearance between a background card
// centered at (x, y) and the main slot. If the card's overlap with the
// main slot exceeds OverlapTolerance of the card's area the card counts
// as colliding and the clearance is 0; otherwise it is the shortest gap
// between the two rectangles (0 while they still touch).
func DistanceFromMainSlot(x, y float64) float64 {
	card := geometry.RectAt(x, y, CardWidth*BackgroundScale, CardHeight*BackgroundScale)
	main := geometry.RectAt(0, 0, MainSlotWidth, MainSlotHeight)
	if geometry.OverlapArea(card, main) > OverlapTolerance*card.Area() {
		return 0
	}
	return geometry.RectGap(card, main)
}

// WithinBounds reports whether a background card centered at (x, y) and
// rotated by deg degrees stays inside the container shrunk by SafeMargin
// on every side. The check uses the axis-aligned bounding box of the
// rotated footprint.
func WithinBounds(x, y, deg float64, container Size) bool {
	bbox := geometry.RotatedBoundingBox(x, y, CardWidth*BackgroundScale, CardHeight*BackgroundScale, deg)
	usable := geometry.RectAt(0, 0, container.Width-2*SafeMargin, container.Height-2*SafeMargin)
	return geometry.ContainsRect(usable, bbox)
}

// Solver proposes card positions by randomized sector sampling. The RNG is
// seeded so a shuffle is reproducible for a given seed.
type Solver struct {
	rng *rand.Rand
}

// NewSolver returns a solver seeded with seed.
func NewSolver(seed uint64) *Solver {
	return &Solver{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// RandomRotation samples a rotation in [-MaxRotation, MaxRotation] degrees.
func (s *Solver) RandomRotation() float64 {
	return (s.rng.Float64()*2 - 1) * MaxRotation
}

// FindPosition proposes a position for the index-th card. The card's
// sector is a pure function of index (index mod 8, one of eight 45°
// wedges), so retries for one card never disturb another card's sector.
// Candidates are sampled within the clearance band and accepted when they
// clear the main slot, keep the minimum separation from every card in
// others that already has a position, and fit the container when rotated.
// When the attempt budget runs out the solver returns an unvalidated
// fallback along the base angle, biased toward 80% of the usable radius.
func (s *Solver) FindPosition(index int, positions map[string]Position, candidate CardRef, others []CardRef, container Size) Placement {
	base := float64(index%sectorCount)*(math.Pi/4) + (s.rng.Float64()-0.5)*0.2

	usable := math.Min(container.Width, container.Height)/2 - CardHeight*BackgroundScale/2 - SafeMargin
	maxR := math.Min(MaxClearanceFromMain, usable)
	minR := math.Min(MinClearanceFromMain, maxR)

	for attempt := 0; attempt < MaxAttempts; attempt++ {
		r := minR + s.rng.Float64()*(maxR-minR)
		ang := base + (s.rng.Float64()-0.5)*(math.Pi/9)
		x, y := s.place(r, ang)

		if DistanceFromMainSlot(x, y) == 0 {
			continue
		}
		if !s.clearOfOthers(x, y, candidate, others, positions) {
			continue
		}
		rot := s.RandomRotation()
		if !WithinBounds(x, y, rot, container) {
			continue
		}
		return Placement{Position: Position{X: x, Y: y, Rotate: rot, ZIndex: index + 1}}
	}

	// Best-effort fallback, returned unconditionally.
	r := minR + 0.8*(maxR-minR)
	ang := base + (s.rng.Float64()-0.5)*0.1
	x, y := s.place(r, ang)
	return Placement{
		Position: Position{X: x, Y: y, Rotate: s.RandomRotation(), ZIndex: index + 1},
		Fallback: true,
	}
}

// place converts polar coordinates to cartesian, clamping the upward
// offset and applying the downward bias.
func (s *Solver) place(r, ang float64) (float64, float64) {
	x := r * math.Cos(ang)
	y := r * math.Sin(ang)
	if y < -MaxUpwardOffset {
		y = -MaxUpwardOffset
	}
	return x, y + DownwardBias
}

func (s *Solver) clearOfOthers(x, y float64, candidate CardRef, others []CardRef, positions map[string]Position) bool {
	for _, other := range others {
		if other.ID == candidate.ID {
			continue
		}
		pos, ok := positions[other.ID]
		if !ok {
			continue
		}
		required := MinDistance
		if candidate.Color != "" && candidate.Color == other.Color {
			required = MinSameColorDistance
		}
		if geometry.Distance(x, y, pos.X, pos.Y) < required {
			return false
		}
	}
	return true
}
