// Package aiengine picks the opponent's move. The primary mover calls an
// external analysis service over HTTP; a random mover backs it up so a
// game never stalls when the service is unreachable.
package aiengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/wristchess/internal/models"
)

// Mover chooses the engine's move for a position.
type Mover interface {
	// BestMove returns the chosen move in UCI for the given FEN.
	BestMove(ctx context.Context, fen string, profile models.DifficultyProfile) (string, error)
}

// HTTPMover asks an external engine service for a move.
type HTTPMover struct {
	baseURL string
	client  *http.Client
	retries int
}

var _ Mover = (*HTTPMover)(nil)

func NewHTTPMover(baseURL string) *HTTPMover {
	return &HTTPMover{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		retries: 2,
	}
}

type bestMoveRequest struct {
	FEN         string `json:"fen"`
	Skill       int    `json:"skill"`
	ThinkTimeMs int    `json:"think_time_ms"`
}

type bestMoveResponse struct {
	UCI   string `json:"uci"`
	Error string `json:"error,omitempty"`
}

// BestMove posts the position to the engine service, retrying transient
// failures.
func (m *HTTPMover) BestMove(ctx context.Context, fen string, profile models.DifficultyProfile) (string, error) {
	payload, err := json.Marshal(bestMoveRequest{
		FEN:         fen,
		Skill:       profile.Skill,
		ThinkTimeMs: profile.ThinkTimeMs,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= m.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
			log.Debug().Int("attempt", attempt).Msg("retrying engine request")
		}

		uci, err := m.request(ctx, payload)
		if err == nil {
			return uci, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("engine request failed after %d attempts: %w", m.retries+1, lastErr)
}

func (m *HTTPMover) request(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/bestmove", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("engine returned status code: %d, response: %s", resp.StatusCode, string(body))
	}

	var out bestMoveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("engine error: %s", out.Error)
	}
	if out.UCI == "" {
		return "", fmt.Errorf("engine returned no move")
	}
	return out.UCI, nil
}

// MoveLister enumerates the legal moves of a position; the rules engine
// satisfies it.
type MoveLister interface {
	ValidMovesUCI() []string
}

// RandomMover plays a uniformly random legal move. It is the fallback
// when the HTTP engine is unavailable and the whole opponent at the
// lowest difficulty.
type RandomMover struct {
	rules MoveLister

	mu  sync.Mutex
	rng *rand.Rand
}

var _ Mover = (*RandomMover)(nil)

func NewRandomMover(rules MoveLister, seed int64) *RandomMover {
	return &RandomMover{
		rules: rules,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (m *RandomMover) BestMove(_ context.Context, _ string, _ models.DifficultyProfile) (string, error) {
	moves := m.rules.ValidMovesUCI()
	if len(moves) == 0 {
		return "", fmt.Errorf("no legal moves")
	}
	m.mu.Lock()
	idx := m.rng.Intn(len(moves))
	m.mu.Unlock()
	return moves[idx], nil
}

// FallbackMover tries the primary mover and falls back on error.
type FallbackMover struct {
	Primary  Mover
	Fallback Mover
}

var _ Mover = (*FallbackMover)(nil)

func (m *FallbackMover) BestMove(ctx context.Context, fen string, profile models.DifficultyProfile) (string, error) {
	uci, err := m.Primary.BestMove(ctx, fen, profile)
	if err == nil {
		return uci, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	log.Warn().Err(err).Msg("primary engine failed, falling back")
	return m.Fallback.BestMove(ctx, fen, profile)
}
