package aiengine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/wristchess/internal/models"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestHTTPMoverPostsProfile(t *testing.T) {
	var got bestMoveRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/bestmove", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(bestMoveResponse{UCI: "e2e4"})
	}))
	defer srv.Close()

	m := NewHTTPMover(srv.URL)
	uci, err := m.BestMove(context.Background(), startFEN, models.Profile(3))
	require.NoError(t, err)
	assert.Equal(t, "e2e4", uci)
	assert.Equal(t, startFEN, got.FEN)
	assert.Equal(t, 13, got.Skill)
	assert.Equal(t, 1500, got.ThinkTimeMs)
}

func TestHTTPMoverRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(bestMoveResponse{UCI: "g1f3"})
	}))
	defer srv.Close()

	m := NewHTTPMover(srv.URL)
	uci, err := m.BestMove(context.Background(), startFEN, models.Profile(0))
	require.NoError(t, err)
	assert.Equal(t, "g1f3", uci)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPMoverGivesUpAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewHTTPMover(srv.URL)
	_, err := m.BestMove(context.Background(), startFEN, models.Profile(0))
	assert.Error(t, err)
}

func TestHTTPMoverRejectsEmptyMove(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(bestMoveResponse{})
	}))
	defer srv.Close()

	m := NewHTTPMover(srv.URL)
	_, err := m.BestMove(context.Background(), startFEN, models.Profile(0))
	assert.Error(t, err)
}

type fixedLister []string

func (f fixedLister) ValidMovesUCI() []string { return f }

func TestRandomMoverPicksLegalMove(t *testing.T) {
	moves := fixedLister{"e2e4", "d2d4", "g1f3"}
	m := NewRandomMover(moves, 1)

	for i := 0; i < 20; i++ {
		uci, err := m.BestMove(context.Background(), startFEN, models.Profile(0))
		require.NoError(t, err)
		assert.Contains(t, []string(moves), uci)
	}
}

func TestRandomMoverFailsWithoutMoves(t *testing.T) {
	m := NewRandomMover(fixedLister{}, 1)
	_, err := m.BestMove(context.Background(), startFEN, models.Profile(0))
	assert.Error(t, err)
}

type failingMover struct{}

func (failingMover) BestMove(context.Context, string, models.DifficultyProfile) (string, error) {
	return "", assert.AnError
}

func TestFallbackMoverFallsBack(t *testing.T) {
	m := &FallbackMover{
		Primary:  failingMover{},
		Fallback: NewRandomMover(fixedLister{"e2e4"}, 1),
	}
	uci, err := m.BestMove(context.Background(), startFEN, models.Profile(0))
	require.NoError(t, err)
	assert.Equal(t, "e2e4", uci)
}
