package models

import "time"

// MaxHistoryLength caps the move history. Overflow drops the oldest
// entries, never the newest.
const MaxHistoryLength = 50

// MoveOption is one legal move of a selected piece, as offered by the
// destination carousel.
type MoveOption struct {
	UCI         string `json:"uci"`    // from+to squares; promotion letter appended on commit
	SAN         string `json:"san"`    // display notation
	Target      string `json:"target"` // destination square, e.g. "e4"
	IsPromotion bool   `json:"is_promotion"`
}

// PieceSummary is one movable piece of the side to move, with its legal
// destinations. Ordering is the rules engine's and is stable per snapshot.
type PieceSummary struct {
	ID     string       `json:"id"`     // origin square doubles as identity, e.g. "g1"
	Name   string       `json:"name"`   // display name, e.g. "N g1"
	Square string       `json:"square"` // origin square
	Moves  []MoveOption `json:"moves"`
}

// MoveRecord is one committed half-move in the history list.
type MoveRecord struct {
	SAN   string `json:"san"`
	UCI   string `json:"uci"`
	Color string `json:"color"` // mover, "w" or "b"
}

// Timers is the bullet-mode chess clock. Present iff Mode == ModeBullet.
type Timers struct {
	WhiteMs     int64 `json:"white_ms"`
	BlackMs     int64 `json:"black_ms"`
	IncrementMs int64 `json:"increment_ms"`
}

// SessionState is the single aggregate owned by the reducer. It is replaced,
// never mutated in place: reducers call Clone, modify the copy and return
// it. Slices inside the copy are replaced rather than appended to in place
// whenever a transition changes them.
type SessionState struct {
	Phase          Phase     `json:"phase"`
	PreviousPhase  Phase     `json:"previous_phase,omitempty"` // menu return target; empty means idle
	PhaseEnteredAt time.Time `json:"phase_entered_at"`

	Turn     string         `json:"turn"`
	Position string         `json:"position"` // FEN
	Pieces   []PieceSummary `json:"pieces"`
	History  []MoveRecord   `json:"history"`

	// Selection cursors, each valid only while its owning phase is active.
	SelectedPieceIndex       int `json:"selected_piece_index"`
	SelectedMoveIndex        int `json:"selected_move_index"`
	SelectedPromotionIndex   int `json:"selected_promotion_index"`
	MenuSelectedIndex        int `json:"menu_selected_index"`
	SelectedTimeControlIndex int `json:"selected_time_control_index"`
	LogScrollOffset          int `json:"log_scroll_offset"`

	PendingPromotionMove *MoveOption `json:"pending_promotion_move,omitempty"`

	// Persisted settings, mutated only via explicit settings actions.
	Mode             Mode `json:"mode"`
	Difficulty       int  `json:"difficulty"`
	ShowBoardMarkers bool `json:"show_board_markers"`

	Timers       *Timers    `json:"timers,omitempty"` // defined iff Mode == ModeBullet
	TimerActive  bool       `json:"timer_active"`
	TimerPaused  bool       `json:"timer_paused"` // clock held while the menu family is open
	LastTickTime *time.Time `json:"last_tick_time,omitempty"`

	Academy *AcademyState `json:"academy,omitempty"` // defined iff Phase.IsDrill()

	PendingMove       string `json:"pending_move,omitempty"` // UCI awaiting rules-engine application
	LastMove          string `json:"last_move,omitempty"`
	EngineThinking    bool   `json:"engine_thinking"`
	InCheck           bool   `json:"in_check"`
	GameOver          string `json:"game_over,omitempty"` // empty means the game is live
	HasUnsavedChanges bool   `json:"has_unsaved_changes"`

	// Side-effect signals for the session orchestrator to observe. The
	// reducer only raises them; the orchestrator clears them via actions.
	ResetRequested bool `json:"reset_requested"`
	ExitRequested  bool `json:"exit_requested"`
}

// NewSessionState returns the fresh default state for a new session.
func NewSessionState(now time.Time) *SessionState {
	return &SessionState{
		Phase:          PhaseIdle,
		PhaseEnteredAt: now,
		Turn:           "w",
		Mode:           ModePlay,
		Difficulty:     DefaultDifficulty,
	}
}

// Clone returns a shallow copy for the reducer to modify. Callers must
// replace, not mutate, any slice or pointer field they change.
func (s *SessionState) Clone() *SessionState {
	next := *s
	return &next
}

// SelectedPiece returns the piece under the piece-select cursor, or nil.
func (s *SessionState) SelectedPiece() *PieceSummary {
	if s.SelectedPieceIndex < 0 || s.SelectedPieceIndex >= len(s.Pieces) {
		return nil
	}
	return &s.Pieces[s.SelectedPieceIndex]
}

// SelectedMove returns the move under the destination cursor, or nil.
func (s *SessionState) SelectedMove() *MoveOption {
	p := s.SelectedPiece()
	if p == nil || s.SelectedMoveIndex < 0 || s.SelectedMoveIndex >= len(p.Moves) {
		return nil
	}
	return &p.Moves[s.SelectedMoveIndex]
}
