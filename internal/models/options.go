package models

// MenuOption is one entry of the in-game menu carousel.
type MenuOption string

const (
	MenuResume       MenuOption = "RESUME"
	MenuNewGame      MenuOption = "NEW_GAME"
	MenuGameMode     MenuOption = "GAME_MODE"
	MenuDifficulty   MenuOption = "DIFFICULTY"
	MenuBoardMarkers MenuOption = "BOARD_MARKERS"
	MenuMoveLog      MenuOption = "MOVE_LOG"
	MenuAcademy      MenuOption = "ACADEMY"
	MenuResign       MenuOption = "RESIGN"
	MenuExit         MenuOption = "EXIT"
)

// MenuOptions is the menu carousel in display order.
var MenuOptions = []MenuOption{
	MenuResume,
	MenuNewGame,
	MenuGameMode,
	MenuDifficulty,
	MenuBoardMarkers,
	MenuMoveLog,
	MenuAcademy,
	MenuResign,
	MenuExit,
}

// Label returns the display text for a menu option.
func (o MenuOption) Label() string {
	switch o {
	case MenuResume:
		return "Resume"
	case MenuNewGame:
		return "New Game"
	case MenuGameMode:
		return "Game Mode"
	case MenuDifficulty:
		return "Difficulty"
	case MenuBoardMarkers:
		return "Board Markers"
	case MenuMoveLog:
		return "Move Log"
	case MenuAcademy:
		return "Academy"
	case MenuResign:
		return "Resign"
	case MenuExit:
		return "Exit"
	}
	return string(o)
}

// TimeControl is one bullet-setup preset.
type TimeControl struct {
	Name        string `json:"name"`
	BaseMs      int64  `json:"base_ms"`
	IncrementMs int64  `json:"increment_ms"`
}

// TimeControls is the bullet-setup carousel in display order.
var TimeControls = []TimeControl{
	{Name: "1+0", BaseMs: 60_000, IncrementMs: 0},
	{Name: "2+1", BaseMs: 120_000, IncrementMs: 1_000},
	{Name: "3+0", BaseMs: 180_000, IncrementMs: 0},
	{Name: "3+2", BaseMs: 180_000, IncrementMs: 2_000},
	{Name: "5+0", BaseMs: 300_000, IncrementMs: 0},
}

// DifficultyProfile maps a difficulty level to an AI engine profile.
type DifficultyProfile struct {
	Name        string `json:"name"`
	Skill       int    `json:"skill"`        // engine skill setting
	ThinkTimeMs int    `json:"think_time_ms"`
}

// DifficultyLadder is the difficulty carousel in display order. The
// Difficulty setting on SessionState indexes into it.
var DifficultyLadder = []DifficultyProfile{
	{Name: "Beginner", Skill: 1, ThinkTimeMs: 300},
	{Name: "Casual", Skill: 4, ThinkTimeMs: 500},
	{Name: "Club", Skill: 8, ThinkTimeMs: 900},
	{Name: "Strong", Skill: 13, ThinkTimeMs: 1500},
	{Name: "Master", Skill: 20, ThinkTimeMs: 2500},
}

// DefaultDifficulty indexes the ladder entry new sessions start on.
const DefaultDifficulty = 1

// Profile returns the ladder entry for a difficulty level, clamping
// out-of-range levels into the ladder.
func Profile(level int) DifficultyProfile {
	if level < 0 {
		level = 0
	}
	if level >= len(DifficultyLadder) {
		level = len(DifficultyLadder) - 1
	}
	return DifficultyLadder[level]
}

// PromotionPieces is the promotion carousel: queen, rook, bishop, knight.
// The letter is appended to the pending move's UCI on commit.
var PromotionPieces = []struct {
	Letter string
	Name   string
}{
	{Letter: "q", Name: "Queen"},
	{Letter: "r", Name: "Rook"},
	{Letter: "b", Name: "Bishop"},
	{Letter: "n", Name: "Knight"},
}

// AcademyOptions is the academy-select carousel in display order.
var AcademyOptions = []DrillType{
	DrillCoordinate,
	DrillKnightPath,
	DrillTactics,
	DrillMate,
	DrillPGNStudy,
}

// Label returns the display text for a drill type.
func (d DrillType) Label() string {
	switch d {
	case DrillCoordinate:
		return "Coordinates"
	case DrillKnightPath:
		return "Knight Path"
	case DrillTactics:
		return "Tactics"
	case DrillMate:
		return "Mate in One"
	case DrillPGNStudy:
		return "PGN Study"
	}
	return string(d)
}

// ModeOptions is the mode-select carousel in display order.
var ModeOptions = []Mode{ModePlay, ModeBullet, ModeAcademy}

// Label returns the display text for a mode.
func (m Mode) Label() string {
	switch m {
	case ModePlay:
		return "Play"
	case ModeBullet:
		return "Bullet"
	case ModeAcademy:
		return "Academy"
	}
	return string(m)
}
