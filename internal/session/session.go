// Package session orchestrates one device's play session: device input
// flows through the gesture classifier into the store, and state changes
// flow back out as engine turns, clock ticks, persistence and telemetry.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/wristchess/internal/aiengine"
	"github.com/mcdev12/wristchess/internal/bridge"
	"github.com/mcdev12/wristchess/internal/display"
	"github.com/mcdev12/wristchess/internal/engine"
	"github.com/mcdev12/wristchess/internal/events"
	"github.com/mcdev12/wristchess/internal/gesture"
	"github.com/mcdev12/wristchess/internal/models"
	"github.com/mcdev12/wristchess/internal/persist"
	"github.com/mcdev12/wristchess/internal/phase"
	"github.com/mcdev12/wristchess/internal/store"
)

const workChannelBufferSize = 64

// GameStore is the persistence surface the session needs. A nil store
// disables persistence.
type GameStore interface {
	SaveGame(ctx context.Context, deviceID string, game persist.SavedGame) error
	LoadGame(ctx context.Context, deviceID string) (*persist.SavedGame, error)
	SaveSettings(ctx context.Context, deviceID string, s persist.Settings) error
	LoadSettings(ctx context.Context, deviceID string) (*persist.Settings, error)
}

// Config holds session timing and identity.
type Config struct {
	DeviceID string

	// TickInterval drives TIMER_TICK dispatches while a bullet clock runs.
	TickInterval time.Duration
	// EngineTimeout bounds one engine move request.
	EngineTimeout time.Duration
	// CommitCooldown extends the tap cooldown after a move commits, while
	// the board redraws.
	CommitCooldown time.Duration
	// MenuCooldown extends the tap cooldown when a menu opens.
	MenuCooldown time.Duration
	// SaveTimeout bounds one persistence call.
	SaveTimeout time.Duration
}

func DefaultConfig(deviceID string) Config {
	return Config{
		DeviceID:       deviceID,
		TickInterval:   250 * time.Millisecond,
		EngineTimeout:  30 * time.Second,
		CommitCooldown: 800 * time.Millisecond,
		MenuCooldown:   400 * time.Millisecond,
		SaveTimeout:    5 * time.Second,
	}
}

// Session binds one device to one game. All follow-up work triggered by
// state changes runs on the session loop, keeping the classifier and the
// rules engine access single-threaded.
type Session struct {
	cfg        Config
	store      *store.Store
	classifier *gesture.Classifier
	rules      engine.Rules
	mover      aiengine.Mover
	games      GameStore
	publisher  events.Publisher
	sync       *display.Synchronizer
	clock      clockwork.Clock

	workCh   chan func()
	done     chan struct{}
	exited   chan struct{}
	exitOnce sync.Once
	stopOnce sync.Once
	wg       sync.WaitGroup

	unsubStore  func()
	unsubBridge func()
}

// Deps are the collaborators the session wires together.
type Deps struct {
	Bridge    bridge.Bridge
	Rules     engine.Rules
	Mover     aiengine.Mover
	Games     GameStore // optional
	Publisher events.Publisher
	Renderer  display.Renderer
	Clock     clockwork.Clock
}

func New(cfg Config, deps Deps) *Session {
	reducer := phase.New(phase.DefaultConfig())
	st := store.New(models.NewSessionState(deps.Clock.Now()), reducer.Reduce, deps.Clock)

	s := &Session{
		cfg:        cfg,
		store:      st,
		classifier: gesture.NewClassifier(deps.Clock, gesture.DefaultConfig()),
		rules:      deps.Rules,
		mover:      deps.Mover,
		games:      deps.Games,
		publisher:  deps.Publisher,
		clock:      deps.Clock,
		workCh:     make(chan func(), workChannelBufferSize),
		done:       make(chan struct{}),
		exited:     make(chan struct{}),
	}
	s.sync = display.NewSynchronizer(display.DefaultConfig(), deps.Bridge, deps.Renderer, deps.Clock)

	s.unsubStore = st.Subscribe(s.onStateChange)
	s.unsubBridge = deps.Bridge.SubscribeEvents(s.onDeviceEvent)
	return s
}

// Store exposes the session's state container, mainly for debug surfaces.
func (s *Session) Store() *store.Store { return s.store }

// Exited is closed once the user confirms exit and state is saved.
func (s *Session) Exited() <-chan struct{} { return s.exited }

// Start restores persisted state and runs the session loop until Stop.
func (s *Session) Start(ctx context.Context) {
	s.restore(ctx)

	s.wg.Add(1)
	go s.loop()

	if err := s.publisher.Publish(ctx, events.NewEvent(events.EventSessionStarted, s.cfg.DeviceID, nil)); err != nil {
		log.Warn().Err(err).Msg("failed to publish session start")
	}
	log.Info().Str("device_id", s.cfg.DeviceID).Msg("session started")
}

// Stop shuts the loop down and flushes the display.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.unsubBridge()
		s.unsubStore()
		close(s.done)
		s.wg.Wait()
		s.sync.Close()
		log.Info().Str("device_id", s.cfg.DeviceID).Msg("session stopped")
	})
}

// restore loads settings and the save slot, falling back to a fresh game.
func (s *Session) restore(ctx context.Context) {
	if s.games != nil {
		if settings, err := s.games.LoadSettings(ctx, s.cfg.DeviceID); err == nil {
			s.store.Dispatch(models.Action{Type: models.ActionSetDifficulty, Difficulty: settings.Difficulty})
			s.store.Dispatch(models.Action{Type: models.ActionSetBoardMarkers, BoardMarkers: settings.ShowBoardMarkers})
		} else if err != persist.ErrNotFound {
			log.Warn().Err(err).Msg("failed to load settings")
		}

		if game, err := s.games.LoadGame(ctx, s.cfg.DeviceID); err == nil {
			if err := s.rules.LoadFEN(game.FEN); err == nil {
				s.store.Dispatch(models.Action{
					Type:     models.ActionLoadGame,
					Snapshot: s.rules.Snapshot(),
					History:  game.History,
					Mode:     game.Mode,
					Timers:   game.Timers,
				})
				log.Info().Str("device_id", s.cfg.DeviceID).Msg("restored saved game")
				return
			}
			log.Warn().Str("fen", game.FEN).Msg("saved position no longer loads, starting fresh")
		} else if err != persist.ErrNotFound {
			log.Warn().Err(err).Msg("failed to load saved game")
		}
	}

	s.rules.Reset()
	s.store.Dispatch(models.Action{Type: models.ActionRefresh, Snapshot: s.rules.Snapshot()})
}

// loop runs queued follow-up work and the clock tick.
func (s *Session) loop() {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case fn := <-s.workCh:
			fn()
		case <-ticker.Chan():
			if s.store.GetState().TimerActive {
				s.store.Dispatch(models.Action{Type: models.ActionTimerTick})
			}
		}
	}
}

// post queues follow-up work onto the session loop. Work is dropped with
// a warning when the queue is full; every handler is safe to miss because
// the next state change re-derives it.
func (s *Session) post(fn func()) {
	select {
	case s.workCh <- fn:
	default:
		log.Warn().Str("device_id", s.cfg.DeviceID).Msg("work queue full, dropping task")
	}
}

// onDeviceEvent classifies raw device input on the session loop.
func (s *Session) onDeviceEvent(ev bridge.InputEvent) {
	s.post(func() {
		raw := gesture.RawEvent{
			SelectIndex: ev.SelectItemIndex,
			SelectName:  ev.SelectItemName,
		}
		if ev.EventType != nil {
			raw.Type = *ev.EventType
			raw.HasType = true
		}
		action, ok := s.classifier.Classify(raw)
		if !ok {
			return
		}
		if action.Type == models.ActionForegroundEnter {
			// The reducer ignores foreground entry, but a (re)connected
			// device shows unknown content; repaint everything.
			s.sync.Invalidate(s.store.GetState())
			return
		}
		s.store.Dispatch(action)
	})
}

// onStateChange reacts to store transitions. It runs inside Dispatch, so
// any follow-up that dispatches again is posted to the loop instead of
// running inline.
func (s *Session) onStateChange(newState, prevState *models.SessionState) {
	s.sync.Sync(newState, prevState)

	if newState.Phase == models.PhaseMenu && prevState.Phase != models.PhaseMenu {
		s.classifier.ExtendTapCooldown(s.cfg.MenuCooldown)
	}

	if newState.PendingMove != "" && newState.PendingMove != prevState.PendingMove {
		uci := newState.PendingMove
		s.post(func() { s.handlePlayerMove(uci) })
	}
	if newState.ResetRequested && !prevState.ResetRequested {
		s.post(s.handleReset)
	}
	if newState.ExitRequested && !prevState.ExitRequested {
		s.post(s.handleExit)
	}
	if newState.Academy != nil && prevState.Academy != nil &&
		newState.Academy.Score.Total > prevState.Academy.Score.Total {
		payload := events.DrillAnsweredPayload{
			Drill:   prevState.Academy.Drill,
			Score:   newState.Academy.Score,
			Correct: newState.Academy.Score.Correct > prevState.Academy.Score.Correct,
		}
		s.post(func() {
			s.publishEvent(events.NewEvent(events.EventDrillAnswered, s.cfg.DeviceID, payload))
		})
	}

	if newState.GameOver != "" && prevState.GameOver == "" {
		result := newState.GameOver
		moves := len(newState.History)
		mode := newState.Mode
		position := newState.Position
		s.post(func() {
			s.publishEvent(events.NewEvent(events.EventGameEnded, s.cfg.DeviceID, events.GameEndedPayload{
				Result:   result,
				Moves:    moves,
				Mode:     mode,
				Position: position,
			}))
		})
	}
}

// handlePlayerMove applies the committed move to the rules engine, then
// hands the turn to the engine opponent.
func (s *Session) handlePlayerMove(uci string) {
	state := s.store.GetState()
	moverColor := state.Turn

	san, err := s.rules.MakeMoveUCI(uci)
	if err != nil {
		// The UI and the rules disagree; resync the UI from the engine.
		log.Error().Err(err).Str("uci", uci).Msg("committed move rejected by rules")
		s.store.Dispatch(models.Action{Type: models.ActionRefresh, Snapshot: s.rules.Snapshot()})
		return
	}

	s.classifier.ExtendTapCooldown(s.cfg.CommitCooldown)
	snap := s.rules.Snapshot()
	s.store.Dispatch(models.Action{Type: models.ActionRefresh, Snapshot: snap})
	if state.Mode == models.ModeBullet {
		s.store.Dispatch(models.Action{Type: models.ActionApplyIncrement, Color: moverColor})
	}

	s.publishEvent(events.NewEvent(events.EventMoveMade, s.cfg.DeviceID, events.MoveMadePayload{
		SAN:     san,
		UCI:     uci,
		Color:   moverColor,
		MoveNum: len(s.store.GetState().History),
	}))
	s.saveGame()

	if snap.GameOver != "" || state.Mode == models.ModeAcademy {
		return
	}
	s.engineTurn()
}

// engineTurn asks the opponent for a move and applies it.
func (s *Session) engineTurn() {
	state := s.store.GetState()
	engineColor := state.Turn
	profile := models.Profile(state.Difficulty)

	s.store.Dispatch(models.Action{Type: models.ActionEngineThinking})

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.EngineTimeout)
	defer cancel()

	uci, err := s.mover.BestMove(ctx, s.rules.FEN(), profile)
	if err != nil {
		log.Error().Err(err).Msg("engine failed to produce a move")
		s.store.Dispatch(models.Action{Type: models.ActionEngineError})
		s.store.Dispatch(models.Action{Type: models.ActionRefresh, Snapshot: s.rules.Snapshot()})
		return
	}

	// Bill the think time to the engine before its move flips the turn.
	// Ticks queued behind this handler run after ENGINE_MOVE and would
	// otherwise charge the whole think to the player.
	if s.store.GetState().TimerActive {
		s.store.Dispatch(models.Action{Type: models.ActionTimerTick})
		if s.store.GetState().GameOver != "" {
			return
		}
	}

	san, err := s.rules.MakeMoveUCI(uci)
	if err != nil {
		log.Error().Err(err).Str("uci", uci).Msg("engine move rejected by rules")
		s.store.Dispatch(models.Action{Type: models.ActionEngineError})
		s.store.Dispatch(models.Action{Type: models.ActionRefresh, Snapshot: s.rules.Snapshot()})
		return
	}

	s.store.Dispatch(models.Action{
		Type:     models.ActionEngineMove,
		UCI:      uci,
		SAN:      san,
		Color:    engineColor,
		Snapshot: s.rules.Snapshot(),
	})
	if s.store.GetState().Mode == models.ModeBullet {
		s.store.Dispatch(models.Action{Type: models.ActionApplyIncrement, Color: engineColor})
	}

	s.publishEvent(events.NewEvent(events.EventMoveMade, s.cfg.DeviceID, events.MoveMadePayload{
		SAN:      san,
		UCI:      uci,
		Color:    engineColor,
		ByEngine: true,
		MoveNum:  len(s.store.GetState().History),
	}))
	s.saveGame()
}

// handleReset starts a fresh game in the rules engine and resyncs.
func (s *Session) handleReset() {
	s.rules.Reset()
	s.store.Dispatch(models.Action{Type: models.ActionRefresh, Snapshot: s.rules.Snapshot()})
}

// handleExit saves everything and signals the owner to tear us down.
func (s *Session) handleExit() {
	s.saveGame()
	s.saveSettings()
	s.store.Dispatch(models.Action{Type: models.ActionMarkSaved})
	s.publishEvent(events.NewEvent(events.EventGameSaved, s.cfg.DeviceID, nil))
	s.exitOnce.Do(func() { close(s.exited) })
}

func (s *Session) saveGame() {
	if s.games == nil {
		return
	}
	state := s.store.GetState()
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SaveTimeout)
	defer cancel()

	err := s.games.SaveGame(ctx, s.cfg.DeviceID, persist.SavedGame{
		FEN:     s.rules.FEN(),
		History: state.History,
		Mode:    state.Mode,
		Timers:  state.Timers,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to save game")
		return
	}
	s.store.Dispatch(models.Action{Type: models.ActionMarkSaved})
}

func (s *Session) saveSettings() {
	if s.games == nil {
		return
	}
	state := s.store.GetState()
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SaveTimeout)
	defer cancel()

	err := s.games.SaveSettings(ctx, s.cfg.DeviceID, persist.Settings{
		Difficulty:       state.Difficulty,
		ShowBoardMarkers: state.ShowBoardMarkers,
		Mode:             state.Mode,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to save settings")
	}
}

func (s *Session) publishEvent(ev events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event_type", string(ev.Type)).Msg("failed to publish event")
	}
}
