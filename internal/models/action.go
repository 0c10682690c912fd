package models

// ActionType tags the Action union. One tag per gesture, engine event or
// lifecycle signal.
type ActionType string

const (
	ActionScroll          ActionType = "SCROLL"
	ActionTap             ActionType = "TAP"
	ActionDoubleTap       ActionType = "DOUBLE_TAP"
	ActionOpenMenu        ActionType = "OPEN_MENU"
	ActionCloseMenu       ActionType = "CLOSE_MENU"
	ActionMenuSelect      ActionType = "MENU_SELECT"
	ActionSetDifficulty   ActionType = "SET_DIFFICULTY"
	ActionSetBoardMarkers ActionType = "SET_BOARD_MARKERS"
	ActionSetMode         ActionType = "SET_MODE"
	ActionStartBulletGame ActionType = "START_BULLET_GAME"
	ActionTimerTick       ActionType = "TIMER_TICK"
	ActionApplyIncrement  ActionType = "APPLY_INCREMENT"
	ActionStartDrill      ActionType = "START_DRILL"
	ActionDrillAnswer     ActionType = "DRILL_ANSWER"
	ActionRefresh         ActionType = "REFRESH"
	ActionEngineThinking  ActionType = "ENGINE_THINKING"
	ActionEngineMove      ActionType = "ENGINE_MOVE"
	ActionEngineError     ActionType = "ENGINE_ERROR"
	ActionLoadGame        ActionType = "LOAD_GAME"
	ActionMarkSaved       ActionType = "MARK_SAVED"
	ActionConfirmExit     ActionType = "CONFIRM_EXIT"
	ActionNewGame         ActionType = "NEW_GAME"
	ActionForegroundEnter ActionType = "FOREGROUND_ENTER"
	ActionForegroundExit  ActionType = "FOREGROUND_EXIT"
)

// AllActionTypes lists every action tag, for the phase-by-action
// completeness check.
var AllActionTypes = []ActionType{
	ActionScroll, ActionTap, ActionDoubleTap,
	ActionOpenMenu, ActionCloseMenu, ActionMenuSelect,
	ActionSetDifficulty, ActionSetBoardMarkers, ActionSetMode,
	ActionStartBulletGame, ActionTimerTick, ActionApplyIncrement,
	ActionStartDrill, ActionDrillAnswer,
	ActionRefresh, ActionEngineThinking, ActionEngineMove, ActionEngineError,
	ActionLoadGame, ActionMarkSaved, ActionConfirmExit, ActionNewGame,
	ActionForegroundEnter, ActionForegroundExit,
}

// ScrollDirection is the direction payload of a SCROLL action.
type ScrollDirection string

const (
	ScrollUp   ScrollDirection = "UP"
	ScrollDown ScrollDirection = "DOWN"
)

// Snapshot is the position-derived view the rules engine exposes. REFRESH,
// ENGINE_MOVE and LOAD_GAME carry one to bulk-replace board fields.
type Snapshot struct {
	Position string         `json:"position"` // FEN
	Turn     string         `json:"turn"`     // "w" or "b"
	Pieces   []PieceSummary `json:"pieces"`   // movable pieces for the side to move
	InCheck  bool           `json:"in_check"`
	GameOver string         `json:"game_over,omitempty"` // empty while the game is live
}

// Action is the immutable tagged union dispatched to the reducer. Only the
// fields belonging to the Type tag are meaningful; actions carry no behavior.
type Action struct {
	Type ActionType `json:"type"`

	// SCROLL
	Direction ScrollDirection `json:"direction,omitempty"`

	// TAP
	SelectedIndex int    `json:"selected_index,omitempty"`
	SelectedName  string `json:"selected_name,omitempty"`

	// MENU_SELECT
	Option MenuOption `json:"option,omitempty"`

	// SET_DIFFICULTY
	Difficulty int `json:"difficulty,omitempty"`

	// SET_BOARD_MARKERS
	BoardMarkers bool `json:"board_markers,omitempty"`

	// SET_MODE
	Mode Mode `json:"mode,omitempty"`

	// START_BULLET_GAME
	TimeControlIndex int `json:"time_control_index,omitempty"`

	// APPLY_INCREMENT, ENGINE_MOVE
	Color string `json:"color,omitempty"` // "w" or "b"

	// START_DRILL
	Drill DrillType `json:"drill,omitempty"`

	// ENGINE_MOVE
	SAN string `json:"san,omitempty"`
	UCI string `json:"uci,omitempty"`

	// REFRESH, ENGINE_MOVE, LOAD_GAME
	Snapshot *Snapshot `json:"snapshot,omitempty"`

	// LOAD_GAME
	History []MoveRecord `json:"history,omitempty"`
	Timers  *Timers      `json:"timers,omitempty"`
}
