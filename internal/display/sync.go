// Package display keeps the wearable screen converged with session state.
// State changes are debounced over a short quiescence window, rendered,
// and pushed through the bridge one flush at a time; newer states arriving
// mid-flush coalesce into a single trailing flush.
package display

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/wristchess/internal/bridge"
	"github.com/mcdev12/wristchess/internal/models"
)

// Renderer turns session state into device content.
type Renderer interface {
	// Text renders the main text container for the current phase.
	Text(s *models.SessionState) string
	// Board renders the board image; ok is false when the current phase
	// has no board to show.
	Board(s *models.SessionState) (img []byte, ok bool, err error)
}

// Config holds the synchronizer's tuning and container addressing.
type Config struct {
	// DebounceInterval is the quiescence window before a flush. Rapid
	// dispatch bursts (scroll trains, engine replies) collapse into one
	// device update.
	DebounceInterval time.Duration
	// FlushTimeout bounds one bridge round trip.
	FlushTimeout time.Duration

	ContainerID   string
	ContainerName string
}

// DefaultConfig returns tuning for the reference device.
func DefaultConfig() Config {
	return Config{
		DebounceInterval: 4 * time.Millisecond,
		FlushTimeout:     5 * time.Second,
		ContainerID:      "main",
		ContainerName:    "wristchess",
	}
}

// Synchronizer debounces state updates and pushes them to the device.
// At most one flush runs at a time; the newest state observed during a
// flush wins the single pending slot.
type Synchronizer struct {
	cfg      Config
	bridge   bridge.Bridge
	renderer Renderer
	clock    clockwork.Clock

	mu       sync.Mutex
	timer    clockwork.Timer
	latest   *models.SessionState
	inFlight bool
	pending  *models.SessionState
	closed   bool

	// last content actually accepted by the device
	sentText  string
	sentBoard string

	wg sync.WaitGroup
}

func NewSynchronizer(cfg Config, b bridge.Bridge, r Renderer, clock clockwork.Clock) *Synchronizer {
	return &Synchronizer{
		cfg:      cfg,
		bridge:   b,
		renderer: r,
		clock:    clock,
	}
}

// Sync observes one state change. Irrelevant changes (nothing the screen
// shows differs) are dropped before any timer is armed.
func (sy *Synchronizer) Sync(newState, prevState *models.SessionState) {
	if prevState != nil && relevanceKey(newState) == relevanceKey(prevState) {
		return
	}

	sy.mu.Lock()
	defer sy.mu.Unlock()
	if sy.closed {
		return
	}
	sy.latest = newState
	if sy.timer != nil {
		sy.timer.Stop()
	}
	sy.timer = sy.clock.AfterFunc(sy.cfg.DebounceInterval, sy.fire)
}

// fire moves the debounced state into the flight path.
func (sy *Synchronizer) fire() {
	sy.mu.Lock()
	defer sy.mu.Unlock()
	if sy.closed || sy.latest == nil {
		return
	}
	s := sy.latest
	sy.latest = nil

	if sy.inFlight {
		// Latest wins: a queued state is replaced, never appended.
		sy.pending = s
		return
	}
	sy.startFlush(s)
}

// startFlush launches one flush goroutine. Caller holds the mutex.
func (sy *Synchronizer) startFlush(s *models.SessionState) {
	sy.inFlight = true
	sy.wg.Add(1)
	go sy.flush(s)
}

func (sy *Synchronizer) flush(s *models.SessionState) {
	defer sy.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), sy.cfg.FlushTimeout)
	text := sy.renderer.Text(s)
	bk := boardKey(s)

	sy.mu.Lock()
	textDirty := text != sy.sentText
	boardDirty := bk != sy.sentBoard
	sy.mu.Unlock()

	textOK, boardOK := true, true
	if textDirty {
		if err := sy.bridge.UpdateText(ctx, sy.cfg.ContainerID, sy.cfg.ContainerName, text); err != nil {
			textOK = false
			log.Warn().Err(err).Str("phase", string(s.Phase)).Msg("text update failed")
		}
	}
	if boardDirty {
		if img, ok, err := sy.renderer.Board(s); err != nil {
			boardOK = false
			log.Warn().Err(err).Str("phase", string(s.Phase)).Msg("board render failed")
		} else if ok {
			if err := sy.bridge.UpdateBoardImage(ctx, img); err != nil {
				boardOK = false
				log.Warn().Err(err).Str("phase", string(s.Phase)).Msg("board update failed")
			}
		}
	}
	cancel()

	sy.mu.Lock()
	defer sy.mu.Unlock()
	if textOK {
		sy.sentText = text
	}
	if boardOK {
		sy.sentBoard = bk
	}
	sy.inFlight = false

	if sy.pending == nil || sy.closed {
		return
	}
	next := sy.pending
	sy.pending = nil
	// Trailing flush only when the pending state still differs from what
	// the device is now showing.
	if sy.renderer.Text(next) == sy.sentText && boardKey(next) == sy.sentBoard {
		return
	}
	sy.startFlush(next)
}

// Invalidate forgets what the device is showing and pushes the given state
// unconditionally. Used after a device reconnect, when the screen content
// is unknown.
func (sy *Synchronizer) Invalidate(s *models.SessionState) {
	sy.mu.Lock()
	defer sy.mu.Unlock()
	if sy.closed {
		return
	}
	sy.sentText = ""
	sy.sentBoard = ""
	sy.latest = s
	if sy.timer != nil {
		sy.timer.Stop()
	}
	sy.timer = sy.clock.AfterFunc(sy.cfg.DebounceInterval, sy.fire)
}

// Close stops the debounce timer and waits for any in-flight flush.
func (sy *Synchronizer) Close() {
	sy.mu.Lock()
	sy.closed = true
	sy.latest = nil
	sy.pending = nil
	if sy.timer != nil {
		sy.timer.Stop()
	}
	sy.mu.Unlock()
	sy.wg.Wait()
}

// boardKey captures everything that affects the rendered board image.
func boardKey(s *models.SessionState) string {
	fen := s.Position
	if s.Academy != nil && s.Academy.PuzzleFEN != "" {
		fen = s.Academy.PuzzleFEN
	}
	return fmt.Sprintf("%s|%s|%t", fen, s.LastMove, s.ShowBoardMarkers)
}

// relevance is the comparable projection of everything the screen shows.
// Two states with equal projections need no device update.
type relevance struct {
	Phase    models.Phase
	Position string
	Turn     string

	PieceIdx, MoveIdx, PromoIdx, MenuIdx, TCIdx, LogOffset int

	HistoryLen int
	LastMove   string

	WhiteMs, BlackMs int64
	TimerActive      bool

	EngineThinking bool
	InCheck        bool
	GameOver       string

	Mode             models.Mode
	Difficulty       int
	ShowBoardMarkers bool

	Academy string
}

func relevanceKey(s *models.SessionState) relevance {
	k := relevance{
		Phase:            s.Phase,
		Position:         s.Position,
		Turn:             s.Turn,
		PieceIdx:         s.SelectedPieceIndex,
		MoveIdx:          s.SelectedMoveIndex,
		PromoIdx:         s.SelectedPromotionIndex,
		MenuIdx:          s.MenuSelectedIndex,
		TCIdx:            s.SelectedTimeControlIndex,
		LogOffset:        s.LogScrollOffset,
		HistoryLen:       len(s.History),
		LastMove:         s.LastMove,
		EngineThinking:   s.EngineThinking,
		InCheck:          s.InCheck,
		GameOver:         s.GameOver,
		Mode:             s.Mode,
		Difficulty:       s.Difficulty,
		ShowBoardMarkers: s.ShowBoardMarkers,
		TimerActive:      s.TimerActive,
	}
	if s.Timers != nil {
		// The clock line shows whole seconds; sub-second ticks are not a
		// visible change.
		k.WhiteMs = s.Timers.WhiteMs / 1000
		k.BlackMs = s.Timers.BlackMs / 1000
	}
	if ac := s.Academy; ac != nil {
		k.Academy = fmt.Sprintf("%s|%d|%d%d%d%d|%d|%s|%s|%d|%d/%d",
			ac.Drill, ac.ActiveAxis,
			ac.CursorFile, ac.CursorRank, ac.CursorToFile, ac.CursorToRank,
			ac.MoveCursor, ac.KnightSquare, ac.TargetSquare,
			ac.StepsTaken, ac.Score.Correct, ac.Score.Total)
	}
	return k
}
