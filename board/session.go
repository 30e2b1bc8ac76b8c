package board

import (
	"log"
	"sync"
	"time"
)

// StoredLayout is the persisted shape of a board scope: every background
// card's position plus the OCD flag and display name.
type StoredLayout struct {
	Positions map[string]Position
	OCDMode   bool
	Name      string
}

// Store is the persistence boundary the session writes through. A missing
// layout is not an error: Load reports found=false and the session runs
// its first-time initialization path.
type Store interface {
	Load(scopeKey string) (StoredLayout, bool, error)
	Save(scopeKey string, layout StoredLayout) error
	PatchPositions(scopeKey string, updates map[string]Position) error
}

// Session owns the in-memory positions for one active scope and mediates
// persistence. All mutation goes through the session's mutex; the debounce
// scheduler is the only delayed-execution primitive.
type Session struct {
	mu sync.Mutex

	scopeKey  string
	scopeName string
	positions map[string]Position
	ocdMode   bool
	laidOut   bool

	store  Store
	sched  *Scheduler
	solver *Solver

	container Size

	saving  bool
	saveOK  bool
	saveseq int
}

// SuccessFlagDuration is how long the transient save-success flag stays up.
const SuccessFlagDuration = 2 * time.Second

// DefaultDebounce is the quiet period before buffered position updates
// flush as one batch.
const DefaultDebounce = time.Second

// NewSession creates a session for container-sized boards, persisting
// through store with the given debounce delay.
func NewSession(store Store, solver *Solver, container Size, debounce time.Duration) *Session {
	s := &Session{
		positions: make(map[string]Position),
		store:     store,
		solver:    solver,
		container: container,
	}
	s.sched = NewScheduler(debounce, s.flushBatch)
	return s
}

// Load switches the session to scopeKey, replacing positions and the OCD
// flag from the stored layout. Loading the already-active scope is a
// no-op. A scope with no stored layout starts empty and unlaid-out so the
// caller runs the shuffle/initialize path.
func (s *Session) Load(scopeKey, scopeName string) error {
	s.mu.Lock()
	if s.scopeKey == scopeKey && s.laidOut {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	layout, found, err := s.store.Load(scopeKey)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopeKey = scopeKey
	s.scopeName = scopeName
	if found {
		s.positions = layout.Positions
		if s.positions == nil {
			s.positions = make(map[string]Position)
		}
		s.ocdMode = layout.OCDMode
		s.laidOut = true
	} else {
		s.positions = make(map[string]Position)
		s.laidOut = false
	}
	return nil
}

// Save upserts the whole layout for the active scope. Overlapping saves
// are suppressed with a simple in-flight flag; a transient success flag is
// raised for SuccessFlagDuration after a successful save.
func (s *Session) Save() error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return nil
	}
	s.saving = true
	scope := s.scopeKey
	layout := StoredLayout{
		Positions: clonePositions(s.positions),
		OCDMode:   s.ocdMode,
		Name:      s.scopeName,
	}
	s.mu.Unlock()

	err := s.store.Save(scope, layout)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		return err
	}
	s.laidOut = true
	s.saveOK = true
	s.saveseq++
	seq := s.saveseq
	time.AfterFunc(SuccessFlagDuration, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.saveseq == seq {
			s.saveOK = false
		}
	})
	return nil
}

// SetPosition updates a card's position in memory only.
func (s *Session) SetPosition(id string, pos Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[id] = pos
}

// CommitPosition updates a card's position and schedules it on the
// debounced batch write path.
func (s *Session) CommitPosition(id string, pos Position) {
	s.mu.Lock()
	s.positions[id] = pos
	s.mu.Unlock()
	s.sched.Schedule(id, pos)
}

// Position returns the stored position for id.
func (s *Session) Position(id string) (Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.positions[id]
	return pos, ok
}

// Positions returns a copy of the current position map.
func (s *Session) Positions() map[string]Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePositions(s.positions)
}

// OCDMode reports the current OCD flag.
func (s *Session) OCDMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ocdMode
}

// Saving reports whether a full save is in flight; SaveSucceeded reports
// the transient success flag.
func (s *Session) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

func (s *Session) SaveSucceeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveOK
}

// LaidOut reports whether the active scope has a stored or shuffled
// layout.
func (s *Session) LaidOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.laidOut
}

// ScopeKey returns the active scope key.
func (s *Session) ScopeKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scopeKey
}

// Normalize shifts every non-reserved z-index down by ZReduction once the
// running maximum reaches ZThreshold, never letting any index fall below
// ZFloor. Below the threshold it is a no-op, so repeated calls are
// idempotent.
func (s *Session) Normalize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.normalizeLocked()
}

func (s *Session) normalizeLocked() {
	maxZ := 0
	for _, pos := range s.positions {
		if pos.ZIndex >= HoverZ {
			continue
		}
		if pos.ZIndex > maxZ {
			maxZ = pos.ZIndex
		}
	}
	if maxZ < ZThreshold {
		return
	}
	for id, pos := range s.positions {
		if pos.ZIndex >= HoverZ {
			continue
		}
		pos.ZIndex -= ZReduction
		if pos.ZIndex < ZFloor {
			pos.ZIndex = ZFloor
		}
		s.positions[id] = pos
	}
}

// PromoteToFront raises id one above the highest non-reserved z-index
// among the other cards, normalizing if the new value crosses the
// threshold.
func (s *Session) PromoteToFront(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promoteLocked(id)
}

func (s *Session) promoteLocked(id string) {
	pos, ok := s.positions[id]
	if !ok {
		return
	}
	pos.ZIndex = s.maxBackgroundZLocked(id) + 1
	s.positions[id] = pos
	if pos.ZIndex >= ZThreshold {
		s.normalizeLocked()
	}
}

// maxBackgroundZLocked returns the highest z-index among cards other than
// exclude, ignoring the reserved main and hover values.
func (s *Session) maxBackgroundZLocked(exclude string) int {
	maxZ := 0
	for id, pos := range s.positions {
		if id == exclude || pos.ZIndex >= HoverZ {
			continue
		}
		if pos.ZIndex > maxZ {
			maxZ = pos.ZIndex
		}
	}
	return maxZ
}

// DemoteReserved returns every card other than keep that holds a reserved
// z-index (main or hover) to the normal stacking band, one above the
// current background maximum. A card that was main in a previous
// arrangement of the scope must not keep the reserved value once another
// card takes the slot.
func (s *Session) DemoteReserved(keep string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, pos := range s.positions {
		if id == keep || pos.ZIndex < HoverZ {
			continue
		}
		pos.ZIndex = s.maxBackgroundZLocked("") + 1
		s.positions[id] = pos
		if pos.ZIndex >= ZThreshold {
			s.normalizeLocked()
		}
	}
}

// SetOCDMode toggles the tidy-grid flag. Enabling zeroes every rotation.
// Disabling re-randomizes only cards whose rotation is exactly 0 at the
// moment of toggling; cards already rotated keep their rotation.
func (s *Session) SetOCDMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ocdMode = enabled
	for id, pos := range s.positions {
		if enabled {
			pos.Rotate = 0
		} else if pos.Rotate == 0 {
			pos.Rotate = s.solver.RandomRotation()
		} else {
			continue
		}
		s.positions[id] = pos
	}
}

// Shuffle re-derives a position for every card in cards, in order. The
// incrementally built position map seeds each later placement so it avoids
// cards placed earlier in the same pass. The previous positions are
// replaced wholesale.
func (s *Session) Shuffle(cards []CardRef) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]Position, len(cards))
	for i, card := range cards {
		p := s.solver.FindPosition(i, next, card, cards, s.container)
		if s.ocdMode {
			p.Rotate = 0
		}
		next[card.ID] = p.Position
	}
	s.positions = next
	s.laidOut = true
}

// EnsurePlaced finds a position for every card in cards that does not
// have one yet, seeding each placement with the positions already present
// so new cards avoid existing ones. Cards that already have positions are
// untouched.
func (s *Session) EnsurePlaced(cards []CardRef) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, card := range cards {
		if _, ok := s.positions[card.ID]; ok {
			continue
		}
		p := s.solver.FindPosition(i, s.positions, card, cards, s.container)
		if s.ocdMode {
			p.Rotate = 0
		}
		s.positions[card.ID] = p.Position
	}
}

// FlushPending forces the debounced batch to flush now.
func (s *Session) FlushPending() {
	s.sched.Flush()
}

// Close stops the debounce scheduler, discarding unflushed updates.
func (s *Session) Close() {
	s.sched.Stop()
}

// flushBatch is the scheduler callback. Persistence failures are logged
// and dropped; the in-memory layout stays authoritative until the next
// successful write.
func (s *Session) flushBatch(updates map[string]Position) {
	s.mu.Lock()
	scope := s.scopeKey
	s.mu.Unlock()

	if err := s.store.PatchPositions(scope, updates); err != nil {
		log.Printf("Failed to flush %d position updates for scope %s: %v", len(updates), scope, err)
	}
}

func clonePositions(src map[string]Position) map[string]Position {
	dst := make(map[string]Position, len(src))
	for id, pos := range src {
		dst[id] = pos
	}
	return dst
}
