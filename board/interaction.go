package board

import (
	"sync"
	"time"

	"github.com/SuperB747/emotion-notepad-sub000/geometry"
)

// Phase is the interaction lifecycle of one card. A card is in exactly
// one phase at a time, so invalid flag combinations cannot be expressed.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseHovering
	PhaseDragging
	PhaseTransitioningIn
	PhaseTransitioningOut
	PhaseHoverSuppressed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseHovering:
		return "hovering"
	case PhaseDragging:
		return "dragging"
	case PhaseTransitioningIn:
		return "transitioning_in"
	case PhaseTransitioningOut:
		return "transitioning_out"
	case PhaseHoverSuppressed:
		return "hover_suppressed"
	}
	return "unknown"
}

// Gesture thresholds: a pointer-up below both counts as a click, not a
// drag commit. TransitionLock suppresses hover effects while a selection
// swap animates; HoverSuppress keeps a just-dropped card from re-raising.
const (
	ClickMaxDuration = 200 * time.Millisecond
	ClickMaxTravel   = 5.0
	TransitionLock   = 300 * time.Millisecond
	HoverSuppress    = 300 * time.Millisecond
)

type cardState struct {
	phase  Phase
	savedZ int
	until  time.Time
}

type dragState struct {
	id      string
	offsetX float64
	offsetY float64
	started time.Time
	travel  float64
	lastX   float64
	lastY   float64
	rotate  float64
	originZ int
}

// Controller translates pointer and selection gestures into session
// mutations. It owns all drag and hover bookkeeping: the drag state, the
// saved pre-hover z-indices and the per-card phase map.
type Controller struct {
	mu sync.Mutex

	session    *Session
	mainID     string
	background []string
	cards      map[string]CardRef
	states     map[string]cardState
	drag       *dragState

	now func() time.Time
}

// NewController creates a controller over session.
func NewController(session *Session) *Controller {
	return &Controller{
		session: session,
		cards:   make(map[string]CardRef),
		states:  make(map[string]cardState),
		now:     time.Now,
	}
}

// SetClock overrides the controller's time source. Tests only.
func (c *Controller) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Reset installs the scope's membership: the main card and the background
// cards in display order. Any in-progress gesture state is discarded.
func (c *Controller) Reset(main CardRef, background []CardRef) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mainID = main.ID
	c.background = c.background[:0]
	c.cards = make(map[string]CardRef, len(background)+1)
	c.states = make(map[string]cardState)
	c.drag = nil

	if main.ID != "" {
		c.cards[main.ID] = main
	}
	for _, card := range background {
		c.background = append(c.background, card.ID)
		c.cards[card.ID] = card
	}
}

// MainID returns the card currently in the main slot.
func (c *Controller) MainID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mainID
}

// Background returns the background membership in order.
func (c *Controller) Background() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.background))
	copy(out, c.background)
	return out
}

// BackgroundCards returns the background membership as CardRefs, in
// display order. This is the card list a shuffle pass runs over.
func (c *Controller) BackgroundCards() []CardRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CardRef, 0, len(c.background))
	for _, id := range c.background {
		out = append(out, c.cards[id])
	}
	return out
}

// PhaseOf returns the interaction phase of id, expiring stale transition
// and suppression locks.
func (c *Controller) PhaseOf(id string) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phaseLocked(id)
}

func (c *Controller) phaseLocked(id string) Phase {
	st, ok := c.states[id]
	if !ok {
		return PhaseIdle
	}
	switch st.phase {
	case PhaseTransitioningIn, PhaseTransitioningOut, PhaseHoverSuppressed:
		if c.now().After(st.until) {
			delete(c.states, id)
			return PhaseIdle
		}
	}
	return st.phase
}

// Select swaps a background card into the main slot. The outgoing main
// card inherits the incoming card's last background position (coordinates
// and rotation preserved) with a freshly promoted z-index; the incoming
// card takes the fixed center slot with the reserved main z-index. Both
// cards hold a short transition lock so hover effects stay quiet while the
// swap animates.
func (c *Controller) Select(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectLocked(id)
}

func (c *Controller) selectLocked(id string) {
	if id == c.mainID {
		return
	}
	idx := c.backgroundIndex(id)
	if idx < 0 {
		return
	}

	incoming, ok := c.session.Position(id)
	if !ok {
		incoming = Position{ZIndex: ZFloor}
	}
	outgoing := c.mainID

	if outgoing != "" {
		// Outgoing main takes over the incoming card's old spot.
		pos := incoming
		pos.ZIndex = c.sessionMaxBackgroundZ(id) + 1
		c.session.SetPosition(outgoing, pos)
		c.session.Normalize()
		c.background[idx] = outgoing
		c.setLockLocked(outgoing, PhaseTransitioningIn)
	} else {
		c.background = append(c.background[:idx], c.background[idx+1:]...)
	}

	c.session.SetPosition(id, Position{X: 0, Y: 0, Rotate: 0, ZIndex: MainZ})
	c.mainID = id
	c.setLockLocked(id, PhaseTransitioningOut)
}

// SelectExternal makes id main directly (e.g. picked from a sidebar
// list). The previous main card rejoins the background set at its last
// stored position, or a default spot when it has none.
func (c *Controller) SelectExternal(card CardRef) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if card.ID == c.mainID {
		return
	}
	c.cards[card.ID] = card

	if idx := c.backgroundIndex(card.ID); idx >= 0 {
		c.selectLocked(card.ID)
		return
	}

	if c.mainID != "" {
		prev := c.mainID
		pos, ok := c.session.Position(prev)
		if !ok || pos.ZIndex == MainZ {
			pos = Position{X: 0, Y: MainSlotHeight, ZIndex: c.sessionMaxBackgroundZ("") + 1}
		}
		if pos.ZIndex >= HoverZ {
			pos.ZIndex = c.sessionMaxBackgroundZ(prev) + 1
		}
		c.session.SetPosition(prev, pos)
		c.session.Normalize()
		c.background = append(c.background, prev)
	}

	c.session.SetPosition(card.ID, Position{X: 0, Y: 0, Rotate: 0, ZIndex: MainZ})
	c.mainID = card.ID
}

// DragStart begins dragging a background card from pointer coordinates
// (px, py). The card's z-index is boosted to the reserved hover value so
// it renders above everything while dragged; the prior value is saved for
// the drop commit.
func (c *Controller) DragStart(id string, px, py float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drag != nil || c.backgroundIndex(id) < 0 {
		return false
	}
	switch c.phaseLocked(id) {
	case PhaseTransitioningIn, PhaseTransitioningOut:
		return false
	}

	pos, ok := c.session.Position(id)
	if !ok {
		return false
	}

	originZ := pos.ZIndex
	if st, tracked := c.states[id]; tracked && st.phase == PhaseHovering {
		originZ = st.savedZ
	}

	c.drag = &dragState{
		id:      id,
		offsetX: px - pos.X,
		offsetY: py - pos.Y,
		started: c.now(),
		lastX:   pos.X,
		lastY:   pos.Y,
		rotate:  pos.Rotate,
		originZ: originZ,
	}
	pos.ZIndex = HoverZ
	c.session.SetPosition(id, pos)
	c.states[id] = cardState{phase: PhaseDragging, savedZ: originZ}
	return true
}

// DragMove updates the dragged card's position from pointer coordinates.
// Nothing is persisted during the move.
func (c *Controller) DragMove(px, py float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drag == nil {
		return
	}
	x := px - c.drag.offsetX
	y := py - c.drag.offsetY
	c.drag.travel += geometry.Distance(c.drag.lastX, c.drag.lastY, x, y)
	c.drag.lastX = x
	c.drag.lastY = y
	c.session.SetPosition(c.drag.id, Position{X: x, Y: y, Rotate: c.drag.rotate, ZIndex: HoverZ})
}

// DragEnd finishes the gesture. A short, near-motionless gesture is
// reinterpreted as a click and triggers the selection swap. Otherwise the
// drop commits: the card's z-index becomes one above the highest among
// cards whose footprint overlaps the drop position (reserved values
// excluded), the position goes out on the debounced write path, and hover
// is suppressed briefly so the card does not immediately re-raise.
// Returns true when the gesture resolved as a click.
func (c *Controller) DragEnd(px, py float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drag == nil {
		return false
	}
	drag := c.drag
	c.drag = nil
	delete(c.states, drag.id)

	x := px - drag.offsetX
	y := py - drag.offsetY
	elapsed := c.now().Sub(drag.started)
	travel := drag.travel + geometry.Distance(drag.lastX, drag.lastY, x, y)

	if elapsed < ClickMaxDuration && travel < ClickMaxTravel {
		// Click: restore the pre-drag stacking, then swap selection.
		pos, ok := c.session.Position(drag.id)
		if ok {
			pos.ZIndex = drag.originZ
			c.session.SetPosition(drag.id, pos)
		}
		c.selectLocked(drag.id)
		return true
	}

	z := c.dropZIndexLocked(drag.id, x, y, drag.originZ)
	c.session.CommitPosition(drag.id, Position{X: x, Y: y, Rotate: drag.rotate, ZIndex: z})
	c.session.Normalize()
	c.setLockLocked(drag.id, PhaseHoverSuppressed)
	return false
}

// dropZIndexLocked computes the z-index for a drop at (x, y): one above
// the highest non-reserved z-index among background cards whose footprint
// overlaps the dropped card's footprint, or the pre-drag value when the
// drop lands clear of everything.
func (c *Controller) dropZIndexLocked(id string, x, y float64, originZ int) int {
	w := CardWidth * BackgroundScale
	h := CardHeight * BackgroundScale
	dropped := geometry.RectAt(x, y, w, h)

	maxZ := -1
	for _, other := range c.background {
		if other == id {
			continue
		}
		pos, ok := c.session.Position(other)
		if !ok || pos.ZIndex >= HoverZ {
			continue
		}
		if geometry.RectanglesOverlap(dropped, geometry.RectAt(pos.X, pos.Y, w, h)) && pos.ZIndex > maxZ {
			maxZ = pos.ZIndex
		}
	}
	if maxZ < 0 {
		return originZ
	}
	return maxZ + 1
}

// HoverEnter raises an idle background card to the reserved hover
// z-index, remembering its prior value.
func (c *Controller) HoverEnter(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.backgroundIndex(id) < 0 || c.phaseLocked(id) != PhaseIdle {
		return
	}
	pos, ok := c.session.Position(id)
	if !ok {
		return
	}
	c.states[id] = cardState{phase: PhaseHovering, savedZ: pos.ZIndex}
	pos.ZIndex = HoverZ
	c.session.SetPosition(id, pos)
}

// HoverLeave restores the saved z-index. A card mid-drag keeps its boost;
// restoration happens at drag-end.
func (c *Controller) HoverLeave(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[id]
	if !ok || st.phase != PhaseHovering {
		return
	}
	pos, has := c.session.Position(id)
	if has {
		pos.ZIndex = st.savedZ
		c.session.SetPosition(id, pos)
	}
	delete(c.states, id)
}

func (c *Controller) setLockLocked(id string, phase Phase) {
	d := TransitionLock
	if phase == PhaseHoverSuppressed {
		d = HoverSuppress
	}
	c.states[id] = cardState{phase: phase, until: c.now().Add(d)}
}

func (c *Controller) backgroundIndex(id string) int {
	for i, bg := range c.background {
		if bg == id {
			return i
		}
	}
	return -1
}

// sessionMaxBackgroundZ is the highest non-reserved z-index among cards
// other than exclude.
func (c *Controller) sessionMaxBackgroundZ(exclude string) int {
	maxZ := 0
	for id, pos := range c.session.Positions() {
		if id == exclude || pos.ZIndex >= HoverZ {
			continue
		}
		if pos.ZIndex > maxZ {
			maxZ = pos.ZIndex
		}
	}
	return maxZ
}
