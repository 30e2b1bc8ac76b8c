package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.t = f.t.Add(d)
}

func newTestController() (*Controller, *Session, *fakeClock) {
	session := newTestSession(newFakeStore())
	ctrl := NewController(session)
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	ctrl.SetClock(clock.Now)
	return ctrl, session, clock
}

// setupBoard installs a main card m plus background cards a and b with
// fixed positions.
func setupBoard(ctrl *Controller, session *Session) {
	session.SetPosition("m", Position{X: 0, Y: 0, Rotate: 0, ZIndex: MainZ})
	session.SetPosition("a", Position{X: 120, Y: -40, Rotate: 3, ZIndex: 5})
	session.SetPosition("b", Position{X: -200, Y: 100, Rotate: -2, ZIndex: 7})
	ctrl.Reset(CardRef{ID: "m", Color: "yellow"}, []CardRef{
		{ID: "a", Color: "pink"},
		{ID: "b", Color: "mint"},
	})
}

func TestController_SelectSwapsPositions(t *testing.T) {
	ctrl, session, _ := newTestController()
	setupBoard(ctrl, session)

	ctrl.Select("a")

	assert.Equal(t, "a", ctrl.MainID())
	assert.Equal(t, []string{"m", "b"}, ctrl.Background())

	// Incoming card takes over the fixed center slot.
	a, _ := session.Position("a")
	assert.Equal(t, Position{X: 0, Y: 0, Rotate: 0, ZIndex: MainZ}, a)

	// Outgoing main inherits the incoming card's old coordinates and
	// rotation with a freshly promoted z-index (one above b's 7).
	m, _ := session.Position("m")
	assert.Equal(t, 120.0, m.X)
	assert.Equal(t, -40.0, m.Y)
	assert.Equal(t, 3.0, m.Rotate)
	assert.Equal(t, 8, m.ZIndex)

	// Both swap participants hold transition locks.
	assert.Equal(t, PhaseTransitioningIn, ctrl.PhaseOf("m"))
	assert.Equal(t, PhaseTransitioningOut, ctrl.PhaseOf("a"))
}

func TestController_SelectLocksExpire(t *testing.T) {
	ctrl, session, clock := newTestController()
	setupBoard(ctrl, session)

	ctrl.Select("a")
	clock.Advance(TransitionLock + time.Millisecond)

	assert.Equal(t, PhaseIdle, ctrl.PhaseOf("m"))
	assert.Equal(t, PhaseIdle, ctrl.PhaseOf("a"))
}

func TestController_SelectCurrentMainIsNoop(t *testing.T) {
	ctrl, session, _ := newTestController()
	setupBoard(ctrl, session)

	ctrl.Select("m")
	ctrl.Select("unknown")

	assert.Equal(t, "m", ctrl.MainID())
	assert.Equal(t, []string{"a", "b"}, ctrl.Background())
}

func TestController_SelectExternalNewCard(t *testing.T) {
	ctrl, session, _ := newTestController()
	setupBoard(ctrl, session)

	ctrl.SelectExternal(CardRef{ID: "c", Color: "sky"})

	assert.Equal(t, "c", ctrl.MainID())
	assert.Contains(t, ctrl.Background(), "m")

	c, _ := session.Position("c")
	assert.Equal(t, MainZ, c.ZIndex)

	// The previous main had no background position of its own, so it gets
	// the default spot below the slot.
	m, _ := session.Position("m")
	assert.Equal(t, MainSlotHeight, m.Y)
	assert.Equal(t, 8, m.ZIndex)
}

func TestController_DragCommit(t *testing.T) {
	ctrl, session, clock := newTestController()
	setupBoard(ctrl, session)

	// Grab a slightly off-center and drag by (120, -40) over 400ms.
	ok := ctrl.DragStart("a", 130, -30)
	assert.True(t, ok)
	assert.Equal(t, PhaseDragging, ctrl.PhaseOf("a"))

	mid, _ := session.Position("a")
	assert.Equal(t, HoverZ, mid.ZIndex)

	clock.Advance(400 * time.Millisecond)
	ctrl.DragMove(250, -70)

	moved, _ := session.Position("a")
	assert.Equal(t, 240.0, moved.X)
	assert.Equal(t, -80.0, moved.Y)
	assert.Equal(t, 3.0, moved.Rotate)

	// Drop onto b's footprint.
	session.SetPosition("b", Position{X: 230, Y: -75, Rotate: -2, ZIndex: 6})
	click := ctrl.DragEnd(250, -70)
	assert.False(t, click)

	final, _ := session.Position("a")
	assert.Equal(t, Position{X: 240, Y: -80, Rotate: 3, ZIndex: 7}, final)
	assert.Equal(t, PhaseHoverSuppressed, ctrl.PhaseOf("a"))

	// The commit rides the debounced write path.
	assert.Equal(t, 1, session.sched.Pending())

	clock.Advance(HoverSuppress + time.Millisecond)
	assert.Equal(t, PhaseIdle, ctrl.PhaseOf("a"))
}

func TestController_DragDropClearKeepsOriginZ(t *testing.T) {
	ctrl, session, clock := newTestController()
	setupBoard(ctrl, session)

	assert.True(t, ctrl.DragStart("a", 120, -40))
	clock.Advance(time.Second)
	ctrl.DragMove(500, 300)
	ctrl.DragEnd(500, 300)

	final, _ := session.Position("a")
	assert.Equal(t, 5, final.ZIndex)
}

func TestController_ClickReinterpretation(t *testing.T) {
	ctrl, session, clock := newTestController()
	setupBoard(ctrl, session)

	assert.True(t, ctrl.DragStart("a", 122, -38))
	clock.Advance(100 * time.Millisecond)
	ctrl.DragMove(123, -37)
	click := ctrl.DragEnd(123, -37)

	assert.True(t, click)
	assert.Equal(t, "a", ctrl.MainID())

	a, _ := session.Position("a")
	assert.Equal(t, Position{X: 0, Y: 0, Rotate: 0, ZIndex: MainZ}, a)

	// Nothing pends on the write path for a click.
	assert.Zero(t, session.sched.Pending())
}

func TestController_SlowStationaryGestureIsNotClick(t *testing.T) {
	ctrl, session, clock := newTestController()
	setupBoard(ctrl, session)

	assert.True(t, ctrl.DragStart("a", 120, -40))
	clock.Advance(ClickMaxDuration)
	click := ctrl.DragEnd(121, -40)

	assert.False(t, click)
	assert.Equal(t, "m", ctrl.MainID())
}

func TestController_DragStartRejections(t *testing.T) {
	ctrl, session, _ := newTestController()
	setupBoard(ctrl, session)

	assert.False(t, ctrl.DragStart("m", 0, 0), "main card is not draggable")
	assert.False(t, ctrl.DragStart("unknown", 0, 0))

	assert.True(t, ctrl.DragStart("a", 120, -40))
	assert.False(t, ctrl.DragStart("b", -200, 100), "one drag at a time")
	ctrl.DragEnd(400, 200)

	// A card mid-transition cannot be grabbed.
	ctrl.Select("b")
	assert.False(t, ctrl.DragStart("m", 0, 0))
}

func TestController_HoverSaveRestore(t *testing.T) {
	ctrl, session, _ := newTestController()
	setupBoard(ctrl, session)

	ctrl.HoverEnter("a")
	a, _ := session.Position("a")
	assert.Equal(t, HoverZ, a.ZIndex)
	assert.Equal(t, PhaseHovering, ctrl.PhaseOf("a"))

	ctrl.HoverLeave("a")
	a, _ = session.Position("a")
	assert.Equal(t, 5, a.ZIndex)
	assert.Equal(t, PhaseIdle, ctrl.PhaseOf("a"))
}

func TestController_HoverIgnoredWhileSuppressed(t *testing.T) {
	ctrl, session, clock := newTestController()
	setupBoard(ctrl, session)

	assert.True(t, ctrl.DragStart("a", 120, -40))
	clock.Advance(time.Second)
	ctrl.DragEnd(400, 200)
	assert.Equal(t, PhaseHoverSuppressed, ctrl.PhaseOf("a"))

	ctrl.HoverEnter("a")
	a, _ := session.Position("a")
	assert.NotEqual(t, HoverZ, a.ZIndex)

	clock.Advance(HoverSuppress + time.Millisecond)
	ctrl.HoverEnter("a")
	a, _ = session.Position("a")
	assert.Equal(t, HoverZ, a.ZIndex)
}

func TestController_HoverOnMainIsNoop(t *testing.T) {
	ctrl, session, _ := newTestController()
	setupBoard(ctrl, session)

	ctrl.HoverEnter("m")
	m, _ := session.Position("m")
	assert.Equal(t, MainZ, m.ZIndex)
}

func TestController_DragStartFromHoverKeepsOriginZ(t *testing.T) {
	ctrl, session, clock := newTestController()
	setupBoard(ctrl, session)

	// Hover first so the live z-index is the reserved hover value, then
	// start the drag; the commit must restore around the pre-hover value.
	ctrl.HoverEnter("a")
	assert.True(t, ctrl.DragStart("a", 120, -40))
	clock.Advance(time.Second)
	ctrl.DragMove(500, 300)
	ctrl.DragEnd(500, 300)

	final, _ := session.Position("a")
	assert.Equal(t, 5, final.ZIndex)
}
