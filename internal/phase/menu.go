package phase

import (
	"fmt"
	"time"

	"github.com/mcdev12/wristchess/internal/models"
)

// menuFamily phases return to the menu rather than recording themselves as
// the menu's origin; PreviousPhase must keep pointing at the true origin
// across nested menu entries.
func menuFamily(p models.Phase) bool {
	switch p {
	case models.PhaseMenu, models.PhaseDifficultySelect, models.PhaseBoardMarkersSelect,
		models.PhaseViewLog, models.PhaseResetConfirm, models.PhaseExitConfirm,
		models.PhaseModeSelect, models.PhaseBulletSetup, models.PhaseAcademySelect:
		return true
	}
	return false
}

// openMenu is refused while the engine is thinking. It records the origin
// phase, without overwriting an origin already recorded by the menu family.
func (r *Reducer) openMenu(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	if s.EngineThinking || s.Phase == models.PhaseMenu {
		return s
	}
	next := s.Clone()
	if !menuFamily(s.Phase) {
		next.PreviousPhase = s.Phase
	}
	// Hold the bullet clock while the player browses; it runs only during
	// active play.
	if next.TimerActive {
		next.TimerActive = false
		next.TimerPaused = true
		next.LastTickTime = nil
	}
	next.MenuSelectedIndex = 0
	enter(next, models.PhaseMenu, now)
	return next
}

// closeMenu returns to the recorded origin, defaulting to idle, and clears
// the origin record.
func (r *Reducer) closeMenu(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	target := s.PreviousPhase
	if target == "" {
		target = models.PhaseIdle
	}
	// A drill origin whose academy state is gone cannot be resumed.
	if target.IsDrill() && s.Academy == nil {
		target = models.PhaseIdle
	}
	if s.Phase == target && s.PreviousPhase == "" && s.MenuSelectedIndex == 0 && !s.TimerPaused {
		return s
	}
	next := s.Clone()
	next.PreviousPhase = ""
	next.MenuSelectedIndex = 0
	// Re-arm a held clock when play resumes, with a fresh tick origin so
	// the time spent in the menu is charged to nobody.
	if next.TimerPaused && !menuFamily(target) && !target.IsDrill() {
		next.TimerPaused = false
		if next.GameOver == "" && next.Timers != nil {
			next.TimerActive = true
			next.LastTickTime = nil
		}
	}
	enter(next, target, now)
	return next
}

// backToMenu leaves a submenu for the menu, preserving the recorded origin.
func (r *Reducer) backToMenu(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	next := s.Clone()
	next.MenuSelectedIndex = 0
	enter(next, models.PhaseMenu, now)
	return next
}

func (r *Reducer) menuScroll(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	idx := cycle(s.MenuSelectedIndex, scrollDelta(a.Direction), len(models.MenuOptions))
	if idx == s.MenuSelectedIndex {
		return s
	}
	next := s.Clone()
	next.MenuSelectedIndex = idx
	return next
}

func (r *Reducer) menuTap(s *models.SessionState, a models.Action, now time.Time) *models.SessionState {
	opt := models.MenuOptions[clampIndex(s.MenuSelectedIndex, len(models.MenuOptions))]
	return r.applyMenuOption(s, opt, now)
}

func (r *Reducer) menuSelectAction(s *models.SessionState, a models.Action, now time.Time) *models.SessionState {
	if a.Option == "" {
		return s
	}
	return r.applyMenuOption(s, a.Option, now)
}

func (r *Reducer) applyMenuOption(s *models.SessionState, opt models.MenuOption, now time.Time) *models.SessionState {
	switch opt {
	case models.MenuResume:
		return r.closeMenu(s, models.Action{}, now)

	case models.MenuNewGame:
		next := s.Clone()
		next.MenuSelectedIndex = 0
		enter(next, models.PhaseResetConfirm, now)
		return next

	case models.MenuGameMode:
		next := s.Clone()
		next.MenuSelectedIndex = modeIndex(s.Mode)
		enter(next, models.PhaseModeSelect, now)
		return next

	case models.MenuDifficulty:
		next := s.Clone()
		next.MenuSelectedIndex = clampIndex(s.Difficulty, len(models.DifficultyLadder))
		enter(next, models.PhaseDifficultySelect, now)
		return next

	case models.MenuBoardMarkers:
		next := s.Clone()
		next.MenuSelectedIndex = 0
		if s.ShowBoardMarkers {
			next.MenuSelectedIndex = 1
		}
		enter(next, models.PhaseBoardMarkersSelect, now)
		return next

	case models.MenuMoveLog:
		next := s.Clone()
		next.LogScrollOffset = 0
		enter(next, models.PhaseViewLog, now)
		return next

	case models.MenuAcademy:
		next := s.Clone()
		next.MenuSelectedIndex = 0
		enter(next, models.PhaseAcademySelect, now)
		return next

	case models.MenuResign:
		winner := "Black"
		if s.Turn == "b" {
			winner = "White"
		}
		next := s.Clone()
		next.GameOver = fmt.Sprintf("%s wins by resignation", winner)
		next.TimerActive = false
		next.TimerPaused = false
		next.PreviousPhase = ""
		next.MenuSelectedIndex = 0
		enter(next, models.PhaseIdle, now)
		return next

	case models.MenuExit:
		next := s.Clone()
		next.MenuSelectedIndex = 0
		enter(next, models.PhaseExitConfirm, now)
		return next
	}
	return s
}

func modeIndex(m models.Mode) int {
	for i, opt := range models.ModeOptions {
		if opt == m {
			return i
		}
	}
	return 0
}

func (r *Reducer) difficultyScroll(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	idx := cycle(s.MenuSelectedIndex, scrollDelta(a.Direction), len(models.DifficultyLadder))
	if idx == s.MenuSelectedIndex {
		return s
	}
	next := s.Clone()
	next.MenuSelectedIndex = idx
	return next
}

func (r *Reducer) difficultyTap(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	next := s.Clone()
	next.Difficulty = clampIndex(s.MenuSelectedIndex, len(models.DifficultyLadder))
	next.MenuSelectedIndex = 0
	enter(next, models.PhaseMenu, now)
	return next
}

func (r *Reducer) boardMarkersScroll(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	idx := cycle(s.MenuSelectedIndex, scrollDelta(a.Direction), 2)
	if idx == s.MenuSelectedIndex {
		return s
	}
	next := s.Clone()
	next.MenuSelectedIndex = idx
	return next
}

func (r *Reducer) boardMarkersTap(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	next := s.Clone()
	next.ShowBoardMarkers = s.MenuSelectedIndex == 1
	next.MenuSelectedIndex = 0
	enter(next, models.PhaseMenu, now)
	return next
}

// viewLogScroll clamps rather than wraps: the log is a window, not a carousel.
func (r *Reducer) viewLogScroll(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	maxOffset := len(s.History) - LogWindow
	if maxOffset < 0 {
		maxOffset = 0
	}
	offset := s.LogScrollOffset + scrollDelta(a.Direction)
	if offset < 0 {
		offset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset == s.LogScrollOffset {
		return s
	}
	next := s.Clone()
	next.LogScrollOffset = offset
	return next
}

// confirmScroll toggles the two-option confirmation cursor.
func (r *Reducer) confirmScroll(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	idx := cycle(s.MenuSelectedIndex, scrollDelta(a.Direction), 2)
	if idx == s.MenuSelectedIndex {
		return s
	}
	next := s.Clone()
	next.MenuSelectedIndex = idx
	return next
}

// resetConfirmTap commits the highlighted option: index 1 confirms the
// reset, index 0 cancels back to the menu.
func (r *Reducer) resetConfirmTap(s *models.SessionState, a models.Action, now time.Time) *models.SessionState {
	if s.MenuSelectedIndex != 1 {
		return r.backToMenu(s, a, now)
	}
	next := s.Clone()
	resetGame(next, now)
	return next
}

// exitConfirmTap commits the highlighted option: index 1 requests exit
// (the orchestrator saves first when there are unsaved changes), index 0
// cancels back to the menu.
func (r *Reducer) exitConfirmTap(s *models.SessionState, a models.Action, now time.Time) *models.SessionState {
	if s.MenuSelectedIndex != 1 {
		return r.backToMenu(s, a, now)
	}
	next := s.Clone()
	next.ExitRequested = true
	next.PreviousPhase = ""
	next.MenuSelectedIndex = 0
	enter(next, models.PhaseIdle, now)
	return next
}

func (r *Reducer) modeSelectScroll(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	idx := cycle(s.MenuSelectedIndex, scrollDelta(a.Direction), len(models.ModeOptions))
	if idx == s.MenuSelectedIndex {
		return s
	}
	next := s.Clone()
	next.MenuSelectedIndex = idx
	return next
}

func (r *Reducer) modeSelectTap(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	mode := models.ModeOptions[clampIndex(s.MenuSelectedIndex, len(models.ModeOptions))]
	next := s.Clone()
	switch mode {
	case models.ModeBullet:
		// Mode flips to bullet only when a game actually starts, keeping
		// the timers-iff-bullet invariant through setup.
		next.SelectedTimeControlIndex = 0
		enter(next, models.PhaseBulletSetup, now)
	case models.ModeAcademy:
		next.Mode = models.ModeAcademy
		next.Timers = nil
		next.TimerActive = false
		next.TimerPaused = false
		next.MenuSelectedIndex = 0
		enter(next, models.PhaseAcademySelect, now)
	default:
		next.Mode = models.ModePlay
		next.Timers = nil
		next.TimerActive = false
		next.TimerPaused = false
		next.MenuSelectedIndex = 0
		enter(next, models.PhaseMenu, now)
	}
	return next
}

func (r *Reducer) bulletSetupScroll(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	idx := cycle(s.SelectedTimeControlIndex, scrollDelta(a.Direction), len(models.TimeControls))
	if idx == s.SelectedTimeControlIndex {
		return s
	}
	next := s.Clone()
	next.SelectedTimeControlIndex = idx
	return next
}

func (r *Reducer) bulletSetupTap(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	next := s.Clone()
	startBulletGame(next, s.SelectedTimeControlIndex, now)
	return next
}

func (r *Reducer) bulletSetupBack(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	next := s.Clone()
	next.MenuSelectedIndex = modeIndex(s.Mode)
	enter(next, models.PhaseModeSelect, now)
	return next
}

// startBulletGame seeds the clocks from the chosen preset and resets the
// game. The clock stays inactive until play begins with the first move.
func startBulletGame(next *models.SessionState, tcIndex int, now time.Time) {
	tc := models.TimeControls[clampIndex(tcIndex, len(models.TimeControls))]
	next.Mode = models.ModeBullet
	next.SelectedTimeControlIndex = clampIndex(tcIndex, len(models.TimeControls))
	next.Timers = &models.Timers{
		WhiteMs:     tc.BaseMs,
		BlackMs:     tc.BaseMs,
		IncrementMs: tc.IncrementMs,
	}
	resetGame(next, now)
}

// resetGame clears game progress and raises the reset signal for the
// orchestrator. Settings and (already seeded) bullet timers survive.
func resetGame(next *models.SessionState, now time.Time) {
	next.History = nil
	next.PendingMove = ""
	next.LastMove = ""
	next.GameOver = ""
	next.InCheck = false
	next.EngineThinking = false
	next.HasUnsavedChanges = false
	next.ResetRequested = true
	next.TimerActive = false
	next.TimerPaused = false
	next.LastTickTime = nil
	next.Academy = nil
	next.PendingPromotionMove = nil
	next.SelectedPieceIndex = 0
	next.SelectedMoveIndex = 0
	next.SelectedPromotionIndex = 0
	next.MenuSelectedIndex = 0
	next.LogScrollOffset = 0
	next.PreviousPhase = ""
	if next.Mode == models.ModeBullet && next.Timers != nil {
		tc := models.TimeControls[clampIndex(next.SelectedTimeControlIndex, len(models.TimeControls))]
		next.Timers = &models.Timers{WhiteMs: tc.BaseMs, BlackMs: tc.BaseMs, IncrementMs: tc.IncrementMs}
	}
	enter(next, models.PhaseIdle, now)
}
