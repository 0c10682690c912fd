package display

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/wristchess/internal/models"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func renderState() *models.SessionState {
	s := models.NewSessionState(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.Position = startFEN
	s.Pieces = []models.PieceSummary{
		{ID: "e2", Name: "Pawn e2", Square: "e2", Moves: []models.MoveOption{
			{UCI: "e2e4", SAN: "e4", Target: "e4"},
		}},
		{ID: "g1", Name: "Knight g1", Square: "g1", Moves: []models.MoveOption{
			{UCI: "g1f3", SAN: "Nf3", Target: "f3"},
		}},
	}
	return s
}

func TestTextIdleScreen(t *testing.T) {
	r := NewScreenRenderer()
	out := r.Text(renderState())
	assert.Contains(t, out, "White to move")
	assert.Contains(t, out, "Scroll to pick a piece")
}

func TestTextPieceSelectMarksCursor(t *testing.T) {
	r := NewScreenRenderer()
	s := renderState()
	s.Phase = models.PhasePieceSelect
	s.SelectedPieceIndex = 1

	out := r.Text(s)
	assert.Contains(t, out, "> Knight g1 (1)")
	assert.Contains(t, out, "  Pawn e2 (1)")
}

func TestTextShowsClockLine(t *testing.T) {
	r := NewScreenRenderer()
	s := renderState()
	s.Timers = &models.Timers{WhiteMs: 61_000, BlackMs: 59_000}

	out := r.Text(s)
	assert.Contains(t, out, "W 1:01  B 0:59")
}

func TestTextGameOverBanner(t *testing.T) {
	r := NewScreenRenderer()
	s := renderState()
	s.GameOver = "Checkmate! White wins"

	out := r.Text(s)
	assert.True(t, strings.HasPrefix(out, "Checkmate! White wins"))
	assert.Contains(t, out, "Double-tap for new game")
}

func TestTextCoordinateDrill(t *testing.T) {
	r := NewScreenRenderer()
	s := renderState()
	s.Phase = models.PhaseCoordinateDrill
	s.Academy = &models.AcademyState{
		Drill:        models.DrillCoordinate,
		TargetSquare: "d5",
		Score:        models.DrillScore{Correct: 3, Total: 4},
	}

	out := r.Text(s)
	assert.Contains(t, out, "Score 3/4")
	assert.Contains(t, out, "Find d5")
	assert.Contains(t, out, "Cursor: a1 (file)")
}

func TestBoardRendersSVG(t *testing.T) {
	r := NewScreenRenderer()
	img, ok, err := r.Board(renderState())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(img), "<svg")
}

func TestBoardMarksLastMoveSquares(t *testing.T) {
	r := NewScreenRenderer()
	s := renderState()
	s.Position = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	s.ShowBoardMarkers = true
	s.LastMove = "e2e4"

	marked, ok, err := r.Board(s)
	require.NoError(t, err)
	require.True(t, ok)

	s.ShowBoardMarkers = false
	plain, ok, err := r.Board(s)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, string(plain), string(marked),
		"marker rectangles must show up in the rendered image")
}

func TestBoardSkippedWithoutPosition(t *testing.T) {
	r := NewScreenRenderer()
	s := renderState()
	s.Position = ""
	_, ok, err := r.Board(s)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoardUsesPuzzlePositionInDrills(t *testing.T) {
	r := NewScreenRenderer()
	s := renderState()
	s.Phase = models.PhaseTacticsDrill
	s.Academy = &models.AcademyState{
		Drill:     models.DrillTactics,
		PuzzleFEN: "k7/8/8/3q4/8/8/8/K2R4 w - - 0 1",
	}

	img, ok, err := r.Board(s)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(img), "<svg")

	// A coordinate drill has no position to draw.
	s.Phase = models.PhaseCoordinateDrill
	s.Academy = &models.AcademyState{Drill: models.DrillCoordinate, TargetSquare: "d5"}
	_, ok, err = r.Board(s)
	require.NoError(t, err)
	assert.False(t, ok)
}
