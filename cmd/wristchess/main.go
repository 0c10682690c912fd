package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/wristchess/internal/aiengine"
	"github.com/mcdev12/wristchess/internal/bridge"
	"github.com/mcdev12/wristchess/internal/display"
	"github.com/mcdev12/wristchess/internal/engine"
	"github.com/mcdev12/wristchess/internal/events"
	"github.com/mcdev12/wristchess/internal/httpapi"
	"github.com/mcdev12/wristchess/internal/models"
	"github.com/mcdev12/wristchess/internal/persist"
	"github.com/mcdev12/wristchess/internal/session"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := loadConfig(getEnv("CONFIG_FILE", "wristchess.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().
		Str("port", cfg.Port).
		Str("device_id", cfg.DeviceID).
		Str("engine_url", cfg.EngineURL).
		Bool("postgres", cfg.Postgres).
		Bool("nats", cfg.NATS).
		Msg("starting wristchess")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence is optional; without it games live only in memory.
	var games session.GameStore
	if cfg.Postgres {
		pool, err := persist.Connect(ctx, persist.NewConfigFromEnv())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		repo := persist.NewRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure schema")
		}
		games = repo
	}

	// Telemetry is optional; without NATS events are dropped.
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS {
		jsCfg := events.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATSURL
		jsPub, err := events.NewJetStreamPublisher(jsCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to NATS")
		}
		defer jsPub.Close()
		publisher = jsPub
	}

	wsBridge := bridge.NewWSBridge(bridge.DefaultConfig())
	rules := engine.New()
	mover := buildMover(cfg, rules)

	holder := &sessionHolder{}
	deps := session.Deps{
		Bridge:    wsBridge,
		Rules:     rules,
		Mover:     mover,
		Games:     games,
		Publisher: publisher,
		Renderer:  display.NewScreenRenderer(),
		Clock:     clockwork.NewRealClock(),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runSessions(ctx, cfg, deps, holder)
	}()

	server := httpapi.NewServer(httpapi.Config{Port: cfg.Port}, wsBridge, holder)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	// Stop the session first so any in-flight display flush completes,
	// then close the device link.
	cancel()
	wg.Wait()

	if err := wsBridge.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("bridge shutdown failed")
	}

	log.Info().Msg("wristchess shutdown complete")
}

// runSessions keeps one session alive for the device. When the user exits
// through the menu the session saves and ends; a fresh one takes over so
// the next app launch resumes where it left off.
func runSessions(ctx context.Context, cfg AppConfig, deps session.Deps, holder *sessionHolder) {
	for {
		sess := session.New(session.DefaultConfig(cfg.DeviceID), deps)
		holder.set(sess)
		sess.Start(ctx)

		select {
		case <-ctx.Done():
			sess.Stop()
			return
		case <-sess.Exited():
			log.Info().Str("device_id", cfg.DeviceID).Msg("session exited, starting a new one")
			sess.Stop()
		}
	}
}

func buildMover(cfg AppConfig, rules *engine.NotnilEngine) aiengine.Mover {
	random := aiengine.NewRandomMover(rules, time.Now().UnixNano())
	if cfg.EngineURL == "" {
		log.Warn().Msg("no engine URL configured, using random mover")
		return random
	}
	return &aiengine.FallbackMover{
		Primary:  aiengine.NewHTTPMover(cfg.EngineURL),
		Fallback: random,
	}
}

// sessionHolder tracks the active session so the debug endpoint always
// reads the live store across session restarts.
type sessionHolder struct {
	mu   sync.RWMutex
	sess *session.Session
}

var _ httpapi.StateSource = (*sessionHolder)(nil)

func (h *sessionHolder) set(s *session.Session) {
	h.mu.Lock()
	h.sess = s
	h.mu.Unlock()
}

func (h *sessionHolder) GetState() *models.SessionState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.sess == nil {
		return nil
	}
	return h.sess.Store().GetState()
}
