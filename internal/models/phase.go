package models

// Phase identifies the single active mode of the session UI. Exactly one
// phase is current at any time.
type Phase string

const (
	PhaseIdle               Phase = "IDLE"
	PhasePieceSelect        Phase = "PIECE_SELECT"
	PhaseDestSelect         Phase = "DEST_SELECT"
	PhasePromotionSelect    Phase = "PROMOTION_SELECT"
	PhaseMenu               Phase = "MENU"
	PhaseDifficultySelect   Phase = "DIFFICULTY_SELECT"
	PhaseBoardMarkersSelect Phase = "BOARD_MARKERS_SELECT"
	PhaseViewLog            Phase = "VIEW_LOG"
	PhaseResetConfirm       Phase = "RESET_CONFIRM"
	PhaseExitConfirm        Phase = "EXIT_CONFIRM"
	PhaseModeSelect         Phase = "MODE_SELECT"
	PhaseBulletSetup        Phase = "BULLET_SETUP"
	PhaseAcademySelect      Phase = "ACADEMY_SELECT"
	PhaseCoordinateDrill    Phase = "COORDINATE_DRILL"
	PhaseKnightPathDrill    Phase = "KNIGHT_PATH_DRILL"
	PhaseTacticsDrill       Phase = "TACTICS_DRILL"
	PhaseMateDrill          Phase = "MATE_DRILL"
	PhasePGNStudy           Phase = "PGN_STUDY"
)

// AllPhases lists every phase tag. Used by the reducer completeness check
// and by renderers that switch over phases.
var AllPhases = []Phase{
	PhaseIdle,
	PhasePieceSelect,
	PhaseDestSelect,
	PhasePromotionSelect,
	PhaseMenu,
	PhaseDifficultySelect,
	PhaseBoardMarkersSelect,
	PhaseViewLog,
	PhaseResetConfirm,
	PhaseExitConfirm,
	PhaseModeSelect,
	PhaseBulletSetup,
	PhaseAcademySelect,
	PhaseCoordinateDrill,
	PhaseKnightPathDrill,
	PhaseTacticsDrill,
	PhaseMateDrill,
	PhasePGNStudy,
}

// IsDrill reports whether p is one of the academy drill phases. AcademyState
// is defined iff the current phase is a drill phase.
func (p Phase) IsDrill() bool {
	switch p {
	case PhaseCoordinateDrill, PhaseKnightPathDrill, PhaseTacticsDrill, PhaseMateDrill, PhasePGNStudy:
		return true
	}
	return false
}

// Mode is the persisted game mode setting.
type Mode string

const (
	ModePlay    Mode = "PLAY"
	ModeBullet  Mode = "BULLET"
	ModeAcademy Mode = "ACADEMY"
)
