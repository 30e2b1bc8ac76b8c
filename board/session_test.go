package board

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeStore is an in-memory board.Store for session tests.
type fakeStore struct {
	mu      sync.Mutex
	layouts map[string]StoredLayout
	patches []map[string]Position
	loadErr error
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{layouts: make(map[string]StoredLayout)}
}

func (f *fakeStore) Load(scopeKey string) (StoredLayout, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return StoredLayout{}, false, f.loadErr
	}
	layout, ok := f.layouts[scopeKey]
	return layout, ok, nil
}

func (f *fakeStore) Save(scopeKey string, layout StoredLayout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.layouts[scopeKey] = layout
	return nil
}

func (f *fakeStore) PatchPositions(scopeKey string, updates map[string]Position) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, updates)
	return nil
}

func (f *fakeStore) patchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.patches)
}

func newTestSession(store Store) *Session {
	return NewSession(store, NewSolver(1), testContainer, 20*time.Millisecond)
}

func TestSession_LoadMissingScope(t *testing.T) {
	session := newTestSession(newFakeStore())

	err := session.Load("root", "All Notes")
	assert.NoError(t, err)
	assert.False(t, session.LaidOut())
	assert.Empty(t, session.Positions())
}

func TestSession_LoadExistingScope(t *testing.T) {
	store := newFakeStore()
	store.layouts["root"] = StoredLayout{
		Positions: map[string]Position{"a": {X: 10, Y: 20, ZIndex: 1}},
		OCDMode:   true,
	}
	session := newTestSession(store)

	err := session.Load("root", "All Notes")
	assert.NoError(t, err)
	assert.True(t, session.LaidOut())
	assert.True(t, session.OCDMode())

	pos, ok := session.Position("a")
	assert.True(t, ok)
	assert.Equal(t, 10.0, pos.X)
}

func TestSession_LoadSameScopeIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.layouts["root"] = StoredLayout{
		Positions: map[string]Position{"a": {X: 10, ZIndex: 1}},
	}
	session := newTestSession(store)
	assert.NoError(t, session.Load("root", "All Notes"))

	// Mutate in memory, then re-load the same scope: positions stay.
	session.SetPosition("a", Position{X: 99, ZIndex: 1})
	assert.NoError(t, session.Load("root", "All Notes"))

	pos, _ := session.Position("a")
	assert.Equal(t, 99.0, pos.X)
}

func TestSession_LoadError(t *testing.T) {
	store := newFakeStore()
	store.loadErr = errors.New("store down")
	session := newTestSession(store)

	assert.Error(t, session.Load("root", "All Notes"))
}

func TestSession_SaveRoundTrip(t *testing.T) {
	store := newFakeStore()
	session := newTestSession(store)
	assert.NoError(t, session.Load("root", "All Notes"))

	session.SetPosition("a", Position{X: 1, Y: 2, ZIndex: 3})
	assert.NoError(t, session.Save())

	saved := store.layouts["root"]
	assert.Equal(t, Position{X: 1, Y: 2, ZIndex: 3}, saved.Positions["a"])
	assert.Equal(t, "All Notes", saved.Name)
	assert.True(t, session.SaveSucceeded())
	assert.True(t, session.LaidOut())
}

func TestSession_SaveErrorClearsInFlight(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("write failed")
	session := newTestSession(store)
	assert.NoError(t, session.Load("root", "All Notes"))

	assert.Error(t, session.Save())
	assert.False(t, session.Saving())
	assert.False(t, session.SaveSucceeded())

	// In-memory state is not rolled back on failure.
	session.SetPosition("a", Position{X: 7, ZIndex: 1})
	pos, ok := session.Position("a")
	assert.True(t, ok)
	assert.Equal(t, 7.0, pos.X)
}

func TestSession_DebouncedCommit(t *testing.T) {
	store := newFakeStore()
	session := newTestSession(store)
	assert.NoError(t, session.Load("root", "All Notes"))

	session.CommitPosition("a", Position{X: 1, ZIndex: 1})
	session.CommitPosition("a", Position{X: 2, ZIndex: 1})

	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, 1, store.patchCount())
	assert.Equal(t, 2.0, store.patches[0]["a"].X)
}

func TestSession_NormalizeBelowThresholdIsNoop(t *testing.T) {
	session := newTestSession(newFakeStore())
	session.SetPosition("a", Position{ZIndex: 5})
	session.SetPosition("b", Position{ZIndex: 10})

	session.Normalize()

	a, _ := session.Position("a")
	b, _ := session.Position("b")
	assert.Equal(t, 5, a.ZIndex)
	assert.Equal(t, 10, b.ZIndex)
}

func TestSession_NormalizeAtThreshold(t *testing.T) {
	session := newTestSession(newFakeStore())
	session.SetPosition("low", Position{ZIndex: 45})
	session.SetPosition("mid", Position{ZIndex: 60})
	session.SetPosition("high", Position{ZIndex: ZThreshold})
	session.SetPosition("main", Position{ZIndex: MainZ})

	session.Normalize()

	low, _ := session.Position("low")
	mid, _ := session.Position("mid")
	high, _ := session.Position("high")
	main, _ := session.Position("main")

	assert.Equal(t, 45-ZReduction, low.ZIndex)
	assert.Equal(t, 60-ZReduction, mid.ZIndex)
	assert.Equal(t, ZThreshold-ZReduction, high.ZIndex)
	assert.Equal(t, MainZ, main.ZIndex)

	// Relative order preserved, nothing below the floor.
	assert.Less(t, low.ZIndex, mid.ZIndex)
	assert.Less(t, mid.ZIndex, high.ZIndex)
	assert.GreaterOrEqual(t, low.ZIndex, ZFloor)

	// Idempotence: a second call with no intervening mutation is a no-op.
	session.Normalize()
	low2, _ := session.Position("low")
	assert.Equal(t, low.ZIndex, low2.ZIndex)
}

func TestSession_NormalizeFloor(t *testing.T) {
	session := newTestSession(newFakeStore())
	session.SetPosition("tiny", Position{ZIndex: 2})
	session.SetPosition("top", Position{ZIndex: ZThreshold})

	session.Normalize()

	tiny, _ := session.Position("tiny")
	assert.Equal(t, ZFloor, tiny.ZIndex)
}

func TestSession_PromoteToFront(t *testing.T) {
	session := newTestSession(newFakeStore())
	session.SetPosition("a", Position{ZIndex: 3})
	session.SetPosition("b", Position{ZIndex: 7})
	session.SetPosition("main", Position{ZIndex: MainZ})

	session.PromoteToFront("a")

	a, _ := session.Position("a")
	assert.Equal(t, 8, a.ZIndex)
}

func TestSession_PromoteTriggersNormalize(t *testing.T) {
	session := newTestSession(newFakeStore())
	session.SetPosition("a", Position{ZIndex: 3})
	session.SetPosition("b", Position{ZIndex: ZThreshold - 1})

	session.PromoteToFront("a")

	a, _ := session.Position("a")
	b, _ := session.Position("b")
	assert.Equal(t, ZThreshold-ZReduction, a.ZIndex)
	assert.Equal(t, ZThreshold-1-ZReduction, b.ZIndex)
	assert.Greater(t, a.ZIndex, b.ZIndex)
}

func TestSession_DemoteReserved(t *testing.T) {
	session := newTestSession(newFakeStore())
	session.SetPosition("old", Position{ZIndex: MainZ})
	session.SetPosition("a", Position{ZIndex: 3})
	session.SetPosition("b", Position{ZIndex: 7})

	session.DemoteReserved("new")

	old, _ := session.Position("old")
	assert.Equal(t, 8, old.ZIndex)
	b, _ := session.Position("b")
	assert.Equal(t, 7, b.ZIndex)
}

func TestSession_DemoteReservedKeepsCurrent(t *testing.T) {
	session := newTestSession(newFakeStore())
	session.SetPosition("main", Position{ZIndex: MainZ})
	session.SetPosition("a", Position{ZIndex: 3})

	session.DemoteReserved("main")

	main, _ := session.Position("main")
	assert.Equal(t, MainZ, main.ZIndex)
}

func TestSession_OCDModeAsymmetry(t *testing.T) {
	session := newTestSession(newFakeStore())
	session.SetPosition("a", Position{Rotate: 5, ZIndex: 1})
	session.SetPosition("b", Position{Rotate: -3, ZIndex: 2})

	session.SetOCDMode(true)
	a, _ := session.Position("a")
	b, _ := session.Position("b")
	assert.Equal(t, 0.0, a.Rotate)
	assert.Equal(t, 0.0, b.Rotate)
	assert.True(t, session.OCDMode())

	// Give one card a rotation by hand, then disable: only cards still at
	// exactly zero are re-randomized.
	session.SetPosition("b", Position{Rotate: 4, ZIndex: 2})
	session.SetOCDMode(false)

	a, _ = session.Position("a")
	b, _ = session.Position("b")
	assert.NotEqual(t, 0.0, a.Rotate)
	assert.GreaterOrEqual(t, a.Rotate, -MaxRotation)
	assert.LessOrEqual(t, a.Rotate, MaxRotation)
	assert.Equal(t, 4.0, b.Rotate)
}

func TestSession_ShuffleAvoidsEarlierCards(t *testing.T) {
	session := newTestSession(newFakeStore())

	cards := []CardRef{
		{ID: "a", Color: "yellow"},
		{ID: "b", Color: "pink"},
		{ID: "c", Color: "yellow"},
	}
	session.Shuffle(cards)

	assert.True(t, session.LaidOut())
	positions := session.Positions()
	assert.Len(t, positions, 3)
	for _, card := range cards {
		_, ok := positions[card.ID]
		assert.True(t, ok)
	}
}

func TestSession_ShuffleRespectsOCDMode(t *testing.T) {
	session := newTestSession(newFakeStore())
	session.SetOCDMode(true)

	session.Shuffle([]CardRef{{ID: "a"}, {ID: "b"}})

	for _, pos := range session.Positions() {
		assert.Equal(t, 0.0, pos.Rotate)
	}
}

func TestSession_EnsurePlaced(t *testing.T) {
	session := newTestSession(newFakeStore())
	session.SetPosition("a", Position{X: 300, Y: 100, ZIndex: 1})

	session.EnsurePlaced([]CardRef{{ID: "a"}, {ID: "b"}})

	a, _ := session.Position("a")
	assert.Equal(t, 300.0, a.X)

	_, ok := session.Position("b")
	assert.True(t, ok)
}
