package phase

import (
	"time"

	"github.com/mcdev12/wristchess/internal/chessclock"
	"github.com/mcdev12/wristchess/internal/models"
)

// newGame is the only action the game-over gate lets through. It clears
// game progress while keeping persisted settings; the orchestrator observes
// ResetRequested, resets the rules engine and follows up with REFRESH.
func (r *Reducer) newGame(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	next := s.Clone()
	resetGame(next, now)
	return next
}

// timerTick charges elapsed time to the side to move and ends the game on
// flag fall. A tick while the clock is inactive is an identity no-op.
func (r *Reducer) timerTick(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	if !s.TimerActive || s.Timers == nil {
		return s
	}
	updated := chessclock.Tick(*s.Timers, s.Turn, s.LastTickTime, now)
	next := s.Clone()
	next.Timers = &updated
	tick := now
	next.LastTickTime = &tick
	if chessclock.IsExpired(updated, s.Turn) {
		next.TimerActive = false
		if s.Turn == "w" {
			next.GameOver = "Black wins on time!"
		} else {
			next.GameOver = "White wins on time!"
		}
	}
	return next
}

func (r *Reducer) applyIncrement(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	if s.Timers == nil || s.Timers.IncrementMs == 0 {
		return s
	}
	updated := chessclock.ApplyIncrement(*s.Timers, a.Color)
	if updated == *s.Timers {
		return s
	}
	next := s.Clone()
	next.Timers = &updated
	return next
}

// refresh bulk-replaces position-derived fields from the rules engine's
// snapshot. It also acknowledges an applied pending move and a performed
// reset, and re-bounds every selection cursor against the new collections.
func (r *Reducer) refresh(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	if a.Snapshot == nil {
		return s
	}
	next := s.Clone()
	applySnapshot(next, a.Snapshot)
	next.PendingMove = ""
	next.ResetRequested = false
	next.HasUnsavedChanges = len(next.History) > 0
	return next
}

func (r *Reducer) engineThinking(s *models.SessionState, _ models.Action, _ time.Time) *models.SessionState {
	if s.EngineThinking {
		return s
	}
	next := s.Clone()
	next.EngineThinking = true
	return next
}

// engineMove records the engine's reply, clears the thinking flag and
// returns to idle. The menu cannot be open here: OPEN_MENU is refused
// while the engine thinks.
func (r *Reducer) engineMove(s *models.SessionState, a models.Action, now time.Time) *models.SessionState {
	if a.UCI == "" {
		return s
	}
	next := s.Clone()
	color := a.Color
	if color == "" {
		color = s.Turn
	}
	next.History = appendCapped(s.History, models.MoveRecord{SAN: a.SAN, UCI: a.UCI, Color: color})
	next.EngineThinking = false
	next.LastMove = a.UCI
	next.HasUnsavedChanges = true
	if a.Snapshot != nil {
		applySnapshot(next, a.Snapshot)
	}
	next.SelectedPieceIndex = 0
	next.SelectedMoveIndex = 0
	enter(next, models.PhaseIdle, now)
	return next
}

func (r *Reducer) engineError(s *models.SessionState, _ models.Action, _ time.Time) *models.SessionState {
	if !s.EngineThinking {
		return s
	}
	next := s.Clone()
	next.EngineThinking = false
	return next
}

// loadGame restores a persisted game wholesale.
func (r *Reducer) loadGame(s *models.SessionState, a models.Action, now time.Time) *models.SessionState {
	if a.Snapshot == nil {
		return s
	}
	next := s.Clone()
	applySnapshot(next, a.Snapshot)
	history := a.History
	if overflow := len(history) - models.MaxHistoryLength; overflow > 0 {
		history = history[overflow:]
	}
	next.History = append([]models.MoveRecord(nil), history...)
	if a.Mode != "" {
		next.Mode = a.Mode
	}
	next.Timers = nil
	if a.Timers != nil && next.Mode == models.ModeBullet {
		t := *a.Timers
		next.Timers = &t
	}
	next.TimerActive = false
	next.TimerPaused = false
	next.LastTickTime = nil
	next.HasUnsavedChanges = false
	next.PendingMove = ""
	next.EngineThinking = false
	next.Academy = nil
	next.PreviousPhase = ""
	enter(next, models.PhaseIdle, now)
	return next
}

func (r *Reducer) markSaved(s *models.SessionState, _ models.Action, _ time.Time) *models.SessionState {
	if !s.HasUnsavedChanges {
		return s
	}
	next := s.Clone()
	next.HasUnsavedChanges = false
	return next
}

func (r *Reducer) confirmExit(s *models.SessionState, _ models.Action, _ time.Time) *models.SessionState {
	if s.ExitRequested {
		return s
	}
	next := s.Clone()
	next.ExitRequested = true
	return next
}

func (r *Reducer) setDifficulty(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	level := clampIndex(a.Difficulty, len(models.DifficultyLadder))
	if level == s.Difficulty {
		return s
	}
	next := s.Clone()
	next.Difficulty = level
	return next
}

func (r *Reducer) setBoardMarkers(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	if s.ShowBoardMarkers == a.BoardMarkers {
		return s
	}
	next := s.Clone()
	next.ShowBoardMarkers = a.BoardMarkers
	return next
}

func (r *Reducer) setMode(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	if a.Mode == "" || a.Mode == s.Mode {
		return s
	}
	next := s.Clone()
	next.Mode = a.Mode
	if a.Mode != models.ModeBullet {
		next.Timers = nil
		next.TimerActive = false
		next.TimerPaused = false
		next.LastTickTime = nil
	}
	return next
}

func (r *Reducer) startBulletGameAction(s *models.SessionState, a models.Action, now time.Time) *models.SessionState {
	next := s.Clone()
	startBulletGame(next, a.TimeControlIndex, now)
	return next
}

func (r *Reducer) startDrillAction(s *models.SessionState, a models.Action, now time.Time) *models.SessionState {
	if a.Drill == "" {
		return s
	}
	next := s.Clone()
	startDrill(next, a.Drill, now)
	return next
}

// applySnapshot replaces position-derived fields and re-bounds the
// selection cursors; a cursor must never be trusted across a structural
// change to the collection it indexes.
func applySnapshot(next *models.SessionState, snap *models.Snapshot) {
	next.Position = snap.Position
	next.Turn = snap.Turn
	next.Pieces = snap.Pieces
	next.InCheck = snap.InCheck
	if snap.GameOver != "" {
		next.GameOver = snap.GameOver
		next.TimerActive = false
		next.TimerPaused = false
	}
	next.SelectedPieceIndex = clampIndex(next.SelectedPieceIndex, len(next.Pieces))
	if p := next.SelectedPiece(); p != nil {
		next.SelectedMoveIndex = clampIndex(next.SelectedMoveIndex, len(p.Moves))
	} else {
		next.SelectedMoveIndex = 0
	}
}
