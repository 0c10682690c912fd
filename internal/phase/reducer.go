// Package phase owns every UI/game transition rule as a pure reducer:
// (state, action, now) -> state. The reducer is total: every action in
// every phase resolves, if only to an identity no-op, and it never
// panics. Identity matters: a no-op must return the exact same state
// pointer so the store can skip notification. Invalid action/phase
// combinations are silently ignored; the remote display has no error
// surface, and a dropped press is recoverable by pressing again.
package phase

import (
	"time"

	"github.com/mcdev12/wristchess/internal/models"
)

// Config holds the reducer's tunable timing. The disambiguation window is
// empirically tuned to the reference device and is a parameter, not law.
type Config struct {
	// DisambiguationWindow is how long after entering piece select a
	// double-tap still means "open menu" rather than "back to idle". The
	// hardware decomposes a double-tap into two taps, so one can land
	// immediately after a scroll-triggered phase entry.
	DisambiguationWindow time.Duration
}

// DefaultConfig returns the window tuned for the reference ring device.
func DefaultConfig() Config {
	return Config{DisambiguationWindow: 200 * time.Millisecond}
}

// LogWindow is how many history lines the move log shows at once.
const LogWindow = 4

type transition func(s *models.SessionState, a models.Action, now time.Time) *models.SessionState

// Reducer dispatches actions through a phase-by-action table. Global
// actions (engine facts, settings, lifecycle) resolve before the phase
// table; gestures resolve per phase.
type Reducer struct {
	cfg    Config
	global map[models.ActionType]transition
	table  map[models.Phase]map[models.ActionType]transition
}

// New builds a reducer with its dispatch tables.
func New(cfg Config) *Reducer {
	r := &Reducer{cfg: cfg}
	r.buildTables()
	return r
}

// Reduce applies one action. Hard gate first: once the game is over, only a
// new-game request is processed; everything else returns the same reference.
// A double-tap on the game-over screen is the one gesture mapped through the
// gate, since the device has no other way to request a new game.
func (r *Reducer) Reduce(s *models.SessionState, a models.Action, now time.Time) *models.SessionState {
	if s.GameOver != "" {
		switch a.Type {
		case models.ActionNewGame, models.ActionDoubleTap:
			return r.newGame(s, a, now)
		}
		return s
	}
	if fn, ok := r.global[a.Type]; ok {
		return fn(s, a, now)
	}
	if m, ok := r.table[s.Phase]; ok {
		if fn, ok := m[a.Type]; ok {
			return fn(s, a, now)
		}
	}
	return s
}

func (r *Reducer) buildTables() {
	r.global = map[models.ActionType]transition{
		models.ActionNewGame:         r.newGame,
		models.ActionTimerTick:       r.timerTick,
		models.ActionApplyIncrement:  r.applyIncrement,
		models.ActionRefresh:         r.refresh,
		models.ActionEngineThinking:  r.engineThinking,
		models.ActionEngineMove:      r.engineMove,
		models.ActionEngineError:     r.engineError,
		models.ActionLoadGame:        r.loadGame,
		models.ActionMarkSaved:       r.markSaved,
		models.ActionConfirmExit:     r.confirmExit,
		models.ActionSetDifficulty:   r.setDifficulty,
		models.ActionSetBoardMarkers: r.setBoardMarkers,
		models.ActionSetMode:         r.setMode,
		models.ActionOpenMenu:        r.openMenu,
		models.ActionCloseMenu:       r.closeMenu,
		models.ActionStartBulletGame: r.startBulletGameAction,
		models.ActionStartDrill:      r.startDrillAction,
		models.ActionForegroundEnter: identity,
		models.ActionForegroundExit:  identity,
	}

	r.table = map[models.Phase]map[models.ActionType]transition{
		models.PhaseIdle: {
			models.ActionScroll:    r.idleScroll,
			models.ActionDoubleTap: r.openMenu,
		},
		models.PhasePieceSelect: {
			models.ActionScroll:    r.pieceSelectScroll,
			models.ActionTap:       r.pieceSelectTap,
			models.ActionDoubleTap: r.pieceSelectDoubleTap,
		},
		models.PhaseDestSelect: {
			models.ActionScroll:    r.destSelectScroll,
			models.ActionTap:       r.destSelectTap,
			models.ActionDoubleTap: r.destSelectDoubleTap,
		},
		models.PhasePromotionSelect: {
			models.ActionScroll:    r.promotionScroll,
			models.ActionTap:       r.promotionTap,
			models.ActionDoubleTap: r.promotionDoubleTap,
		},
		models.PhaseMenu: {
			models.ActionScroll:     r.menuScroll,
			models.ActionTap:        r.menuTap,
			models.ActionMenuSelect: r.menuSelectAction,
			models.ActionDoubleTap:  r.closeMenu,
		},
		models.PhaseDifficultySelect: {
			models.ActionScroll:    r.difficultyScroll,
			models.ActionTap:       r.difficultyTap,
			models.ActionDoubleTap: r.backToMenu,
		},
		models.PhaseBoardMarkersSelect: {
			models.ActionScroll:    r.boardMarkersScroll,
			models.ActionTap:       r.boardMarkersTap,
			models.ActionDoubleTap: r.backToMenu,
		},
		models.PhaseViewLog: {
			models.ActionScroll:    r.viewLogScroll,
			models.ActionTap:       r.backToMenu,
			models.ActionDoubleTap: r.backToMenu,
		},
		models.PhaseResetConfirm: {
			models.ActionScroll:    r.confirmScroll,
			models.ActionTap:       r.resetConfirmTap,
			models.ActionDoubleTap: r.backToMenu,
		},
		models.PhaseExitConfirm: {
			models.ActionScroll:    r.confirmScroll,
			models.ActionTap:       r.exitConfirmTap,
			models.ActionDoubleTap: r.backToMenu,
		},
		models.PhaseModeSelect: {
			models.ActionScroll:    r.modeSelectScroll,
			models.ActionTap:       r.modeSelectTap,
			models.ActionDoubleTap: r.backToMenu,
		},
		models.PhaseBulletSetup: {
			models.ActionScroll:    r.bulletSetupScroll,
			models.ActionTap:       r.bulletSetupTap,
			models.ActionDoubleTap: r.bulletSetupBack,
		},
		models.PhaseAcademySelect: {
			models.ActionScroll:    r.academySelectScroll,
			models.ActionTap:       r.academySelectTap,
			models.ActionDoubleTap: r.backToMenu,
		},
	}

	for _, p := range models.AllPhases {
		if !p.IsDrill() {
			continue
		}
		r.table[p] = map[models.ActionType]transition{
			models.ActionScroll:      r.drillScroll,
			models.ActionTap:         r.drillTap,
			models.ActionDoubleTap:   r.drillDoubleTap,
			models.ActionDrillAnswer: r.drillSubmit,
		}
	}
}

func identity(s *models.SessionState, _ models.Action, _ time.Time) *models.SessionState {
	return s
}

// enter switches phase and stamps the entry time on an already-cloned state.
func enter(next *models.SessionState, p models.Phase, now time.Time) {
	next.Phase = p
	next.PhaseEnteredAt = now
}

// cycle advances a bounded index with wraparound.
func cycle(i, delta, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i+delta)%n + n) % n
}

// clampIndex forces an index into [0, n), for bounds-resafing cursors after
// structural changes. n == 0 yields 0.
func clampIndex(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func scrollDelta(d models.ScrollDirection) int {
	if d == models.ScrollUp {
		return -1
	}
	return 1
}

// appendCapped appends to a fresh slice, dropping the oldest entries past
// MaxHistoryLength. The input slice is never mutated.
func appendCapped(history []models.MoveRecord, rec models.MoveRecord) []models.MoveRecord {
	next := make([]models.MoveRecord, 0, len(history)+1)
	next = append(next, history...)
	next = append(next, rec)
	if overflow := len(next) - models.MaxHistoryLength; overflow > 0 {
		next = next[overflow:]
	}
	return next
}
