package services

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/SuperB747/emotion-notepad-sub000/board"
	"github.com/SuperB747/emotion-notepad-sub000/database"
	"github.com/SuperB747/emotion-notepad-sub000/models"

	"github.com/google/uuid"
)

// BoardState is the read-only view the routes expose to clients: current
// membership, positions and the transient save flags.
type BoardState struct {
	ScopeKey      string                    `json:"scope_key"`
	MainID        string                    `json:"main_id"`
	Background    []string                  `json:"background"`
	Positions     map[string]board.Position `json:"positions"`
	OCDMode       bool                      `json:"ocd_mode"`
	Saving        bool                      `json:"saving"`
	SaveSucceeded bool                      `json:"save_succeeded"`
}

type BoardServiceInterface interface {
	OpenScope(db *database.Database, userID uuid.UUID, scopeKey string) (BoardState, error)
	Select(db *database.Database, userID uuid.UUID, noteID string) (BoardState, error)
	DragStart(db *database.Database, userID uuid.UUID, noteID string, x, y float64) error
	DragMove(db *database.Database, userID uuid.UUID, x, y float64) error
	DragEnd(db *database.Database, userID uuid.UUID, x, y float64) (bool, BoardState, error)
	HoverEnter(db *database.Database, userID uuid.UUID, noteID string) error
	HoverLeave(db *database.Database, userID uuid.UUID, noteID string) error
	Shuffle(db *database.Database, userID uuid.UUID) (BoardState, error)
	SetOCDMode(db *database.Database, userID uuid.UUID, enabled bool) (BoardState, error)
	SaveLayout(db *database.Database, userID uuid.UUID) (BoardState, error)
	State(userID uuid.UUID) (BoardState, error)
	CloseUser(userID uuid.UUID)
}

// BoardService holds one live board session per user. A user has exactly
// one active scope at a time; opening another scope reuses the session,
// flushing any pending writes first.
type BoardService struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*boardSession

	layoutService LayoutServiceInterface
	noteService   NoteServiceInterface
	folderService FolderServiceInterface

	container board.Size
	debounce  time.Duration
	seed      func() uint64
}

type boardSession struct {
	session *board.Session
	ctrl    *board.Controller
	store   *layoutStore
}

// NewBoardService creates the session registry. seed provides solver
// seeds; pass nil for time-based seeding.
func NewBoardService(layoutService LayoutServiceInterface, noteService NoteServiceInterface, folderService FolderServiceInterface, container board.Size, debounce time.Duration, seed func() uint64) BoardServiceInterface {
	if seed == nil {
		seed = func() uint64 { return uint64(time.Now().UnixNano()) }
	}
	return &BoardService{
		sessions:      make(map[uuid.UUID]*boardSession),
		layoutService: layoutService,
		noteService:   noteService,
		folderService: folderService,
		container:     container,
		debounce:      debounce,
		seed:          seed,
	}
}

// layoutStore adapts the layout service to the board.Store boundary.
type layoutStore struct {
	db     *database.Database
	svc    LayoutServiceInterface
	userID uuid.UUID
}

func (st *layoutStore) Load(scopeKey string) (board.StoredLayout, bool, error) {
	layout, err := st.svc.GetLayout(st.db, st.userID, scopeKey)
	if err != nil {
		if errors.Is(err, ErrLayoutNotFound) {
			return board.StoredLayout{}, false, nil
		}
		return board.StoredLayout{}, false, err
	}

	positions := make(map[string]board.Position)
	if len(layout.Positions) > 0 {
		if err := json.Unmarshal(layout.Positions, &positions); err != nil {
			return board.StoredLayout{}, false, err
		}
	}
	return board.StoredLayout{
		Positions: positions,
		OCDMode:   layout.OCDMode,
		Name:      layout.Name,
	}, true, nil
}

func (st *layoutStore) Save(scopeKey string, layout board.StoredLayout) error {
	_, err := st.svc.SetLayout(st.db, st.userID, scopeKey, layout.Name, layout.Positions, layout.OCDMode)
	return err
}

func (st *layoutStore) PatchPositions(scopeKey string, updates map[string]board.Position) error {
	return st.svc.PatchPositions(st.db, st.userID, scopeKey, updates)
}

// OpenScope activates scopeKey for the user: loads (or initializes) the
// stored layout, resolves the scope's notes in canonical order, promotes
// the first note to the main slot when none is selected, and places any
// notes the stored layout does not cover.
func (s *BoardService) OpenScope(db *database.Database, userID uuid.UUID, scopeKey string) (BoardState, error) {
	bs := s.sessionFor(db, userID)

	scopeName, err := s.resolveScopeName(db, scopeKey)
	if err != nil {
		return BoardState{}, err
	}

	if bs.session.ScopeKey() != scopeKey {
		bs.session.FlushPending()
	}
	if err := bs.session.Load(scopeKey, scopeName); err != nil {
		return BoardState{}, err
	}

	notes, err := s.noteService.GetNotes(db, map[string]interface{}{
		"user_id":   userID.String(),
		"folder_id": scopeKey,
	})
	if err != nil {
		return BoardState{}, err
	}

	cards := make([]board.CardRef, 0, len(notes))
	for _, note := range notes {
		cards = append(cards, board.CardRef{ID: note.ID.String(), Color: string(note.Color)})
	}

	// Empty scope: nothing selected, nothing placed.
	if len(cards) == 0 {
		bs.ctrl.Reset(board.CardRef{}, nil)
		return s.snapshot(bs), nil
	}

	// No note is flagged as main on scope entry; the first note in the
	// filtered list is promoted deterministically.
	main := cards[0]
	background := cards[1:]
	bs.ctrl.Reset(main, background)

	if !bs.session.LaidOut() {
		bs.session.Shuffle(background)
	} else {
		bs.session.EnsurePlaced(background)
	}

	// Membership can change between opens: a card that was main in a
	// previous arrangement must not keep the reserved z-index now that
	// another card takes the slot.
	bs.session.DemoteReserved(main.ID)
	bs.session.SetPosition(main.ID, board.Position{X: 0, Y: 0, Rotate: 0, ZIndex: board.MainZ})

	return s.snapshot(bs), nil
}

func (s *BoardService) Select(db *database.Database, userID uuid.UUID, noteID string) (BoardState, error) {
	bs, err := s.activeSession(userID)
	if err != nil {
		return BoardState{}, err
	}

	if bs.ctrl.MainID() != noteID && !contains(bs.ctrl.Background(), noteID) {
		// Picked from an external list (e.g. sidebar) while filtered out
		// of the current board membership.
		note, err := s.noteService.GetNoteById(db, noteID)
		if err != nil {
			return BoardState{}, err
		}
		bs.ctrl.SelectExternal(board.CardRef{ID: note.ID.String(), Color: string(note.Color)})
	} else {
		bs.ctrl.Select(noteID)
	}
	return s.snapshot(bs), nil
}

func (s *BoardService) DragStart(db *database.Database, userID uuid.UUID, noteID string, x, y float64) error {
	bs, err := s.activeSession(userID)
	if err != nil {
		return err
	}
	if !bs.ctrl.DragStart(noteID, x, y) {
		return ErrInvalidInput
	}
	return nil
}

func (s *BoardService) DragMove(db *database.Database, userID uuid.UUID, x, y float64) error {
	bs, err := s.activeSession(userID)
	if err != nil {
		return err
	}
	bs.ctrl.DragMove(x, y)
	return nil
}

func (s *BoardService) DragEnd(db *database.Database, userID uuid.UUID, x, y float64) (bool, BoardState, error) {
	bs, err := s.activeSession(userID)
	if err != nil {
		return false, BoardState{}, err
	}
	clicked := bs.ctrl.DragEnd(x, y)
	return clicked, s.snapshot(bs), nil
}

func (s *BoardService) HoverEnter(db *database.Database, userID uuid.UUID, noteID string) error {
	bs, err := s.activeSession(userID)
	if err != nil {
		return err
	}
	bs.ctrl.HoverEnter(noteID)
	return nil
}

func (s *BoardService) HoverLeave(db *database.Database, userID uuid.UUID, noteID string) error {
	bs, err := s.activeSession(userID)
	if err != nil {
		return err
	}
	bs.ctrl.HoverLeave(noteID)
	return nil
}

// Shuffle re-derives every background position and persists the result as
// a full layout save.
func (s *BoardService) Shuffle(db *database.Database, userID uuid.UUID) (BoardState, error) {
	bs, err := s.activeSession(userID)
	if err != nil {
		return BoardState{}, err
	}

	bs.session.Shuffle(bs.ctrl.BackgroundCards())
	if main := bs.ctrl.MainID(); main != "" {
		bs.session.SetPosition(main, board.Position{X: 0, Y: 0, Rotate: 0, ZIndex: board.MainZ})
	}

	if err := bs.session.Save(); err != nil {
		log.Printf("Failed to save shuffled layout for user %s: %v", userID, err)
	}
	return s.snapshot(bs), nil
}

func (s *BoardService) SetOCDMode(db *database.Database, userID uuid.UUID, enabled bool) (BoardState, error) {
	bs, err := s.activeSession(userID)
	if err != nil {
		return BoardState{}, err
	}

	bs.session.SetOCDMode(enabled)
	if err := bs.session.Save(); err != nil {
		log.Printf("Failed to save layout after OCD toggle for user %s: %v", userID, err)
	}
	return s.snapshot(bs), nil
}

func (s *BoardService) SaveLayout(db *database.Database, userID uuid.UUID) (BoardState, error) {
	bs, err := s.activeSession(userID)
	if err != nil {
		return BoardState{}, err
	}
	if err := bs.session.Save(); err != nil {
		return s.snapshot(bs), err
	}
	return s.snapshot(bs), nil
}

func (s *BoardService) State(userID uuid.UUID) (BoardState, error) {
	bs, err := s.activeSession(userID)
	if err != nil {
		return BoardState{}, err
	}
	return s.snapshot(bs), nil
}

// CloseUser tears down a user's board session, flushing pending writes.
// Called when the user logs out or disconnects.
func (s *BoardService) CloseUser(userID uuid.UUID) {
	s.mu.Lock()
	bs, ok := s.sessions[userID]
	if ok {
		delete(s.sessions, userID)
	}
	s.mu.Unlock()

	if ok {
		bs.session.FlushPending()
		bs.session.Close()
	}
}

func (s *BoardService) sessionFor(db *database.Database, userID uuid.UUID) *boardSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bs, ok := s.sessions[userID]; ok {
		return bs
	}

	store := &layoutStore{db: db, svc: s.layoutService, userID: userID}
	session := board.NewSession(store, board.NewSolver(s.seed()), s.container, s.debounce)
	bs := &boardSession{
		session: session,
		ctrl:    board.NewController(session),
		store:   store,
	}
	s.sessions[userID] = bs
	return bs
}

func (s *BoardService) activeSession(userID uuid.UUID) (*boardSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bs, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return bs, nil
}

func (s *BoardService) snapshot(bs *boardSession) BoardState {
	return BoardState{
		ScopeKey:      bs.session.ScopeKey(),
		MainID:        bs.ctrl.MainID(),
		Background:    bs.ctrl.Background(),
		Positions:     bs.session.Positions(),
		OCDMode:       bs.session.OCDMode(),
		Saving:        bs.session.Saving(),
		SaveSucceeded: bs.session.SaveSucceeded(),
	}
}

func (s *BoardService) resolveScopeName(db *database.Database, scopeKey string) (string, error) {
	if scopeKey == models.RootScope {
		return "All Notes", nil
	}
	folder, err := s.folderService.GetFolderById(db, scopeKey)
	if err != nil {
		return "", err
	}
	return folder.Name, nil
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

var BoardServiceInstance BoardServiceInterface
