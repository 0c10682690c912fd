package models

// DrillType tags the academy sub-entity payload.
type DrillType string

const (
	DrillCoordinate DrillType = "COORDINATE"
	DrillKnightPath DrillType = "KNIGHT_PATH"
	DrillTactics    DrillType = "TACTICS"
	DrillMate       DrillType = "MATE"
	DrillPGNStudy   DrillType = "PGN_STUDY"
)

// DrillPhase maps a drill type to its owning phase.
func (d DrillType) DrillPhase() Phase {
	switch d {
	case DrillCoordinate:
		return PhaseCoordinateDrill
	case DrillKnightPath:
		return PhaseKnightPathDrill
	case DrillTactics:
		return PhaseTacticsDrill
	case DrillMate:
		return PhaseMateDrill
	case DrillPGNStudy:
		return PhasePGNStudy
	}
	return PhaseAcademySelect
}

// DrillScore is the running tally across puzzles of one drill session.
type DrillScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// AcademyState is the drill sub-entity. It exists only while a drill phase
// is active and is discarded on exit. The cursor is a 2D file/rank pair
// (plus a second pair for drills that pick two squares); ActiveAxis selects
// which coordinate a scroll moves.
type AcademyState struct {
	Drill DrillType  `json:"drill"`
	Score DrillScore `json:"score"`
	Seed  int64      `json:"seed"` // deterministic puzzle source; advanced on regeneration

	ActiveAxis int `json:"active_axis"`

	// Square cursor, axes 0 (file) and 1 (rank), each 0..7.
	CursorFile int `json:"cursor_file"`
	CursorRank int `json:"cursor_rank"`

	// Second square cursor for from/to drills, axes 2 and 3.
	CursorToFile int `json:"cursor_to_file"`
	CursorToRank int `json:"cursor_to_rank"`

	// Coordinate drill: the square name the player must locate.
	TargetSquare string `json:"target_square,omitempty"`

	// Knight path drill.
	KnightSquare string `json:"knight_square,omitempty"` // current knight position
	PathTarget   string `json:"path_target,omitempty"`
	StepsTaken   int    `json:"steps_taken"`

	// Tactics and mate drills.
	PuzzleFEN    string `json:"puzzle_fen,omitempty"`
	SolutionUCI  string `json:"solution_uci,omitempty"`
	PuzzlePrompt string `json:"puzzle_prompt,omitempty"`

	// PGN study.
	StudyTitle string   `json:"study_title,omitempty"`
	StudyMoves []string `json:"study_moves,omitempty"` // SAN plies
	MoveCursor int      `json:"move_cursor"`
}

// AxisCount is the number of cursor axes a drill walks before a tap
// submits. Double-tap on axis 0 exits the drill.
func (a *AcademyState) AxisCount() int {
	switch a.Drill {
	case DrillTactics, DrillMate:
		return 4
	case DrillPGNStudy:
		return 1
	default:
		return 2
	}
}

// CursorSquare renders the first cursor pair as a square name.
func (a *AcademyState) CursorSquare() string {
	return SquareName(a.CursorFile, a.CursorRank)
}

// CursorToSquare renders the second cursor pair as a square name.
func (a *AcademyState) CursorToSquare() string {
	return SquareName(a.CursorToFile, a.CursorToRank)
}

// SquareName converts zero-based file/rank to algebraic notation ("a1".."h8").
func SquareName(file, rank int) string {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return ""
	}
	return string(rune('a'+file)) + string(rune('1'+rank))
}

// ParseSquare is the inverse of SquareName. ok is false for malformed input.
func ParseSquare(sq string) (file, rank int, ok bool) {
	if len(sq) != 2 {
		return 0, 0, false
	}
	file = int(sq[0] - 'a')
	rank = int(sq[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return 0, 0, false
	}
	return file, rank, true
}
