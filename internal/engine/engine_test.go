package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStartingPosition(t *testing.T) {
	e := New()
	snap := e.Snapshot()

	assert.Equal(t, "w", snap.Turn)
	assert.Empty(t, snap.GameOver)
	assert.False(t, snap.InCheck)
	// Eight pawns plus two knights can move from the start.
	require.Len(t, snap.Pieces, 10)

	total := 0
	for _, p := range snap.Pieces {
		total += len(p.Moves)
		assert.Equal(t, p.Square, p.ID)
	}
	assert.Equal(t, 20, total)

	// Knights come before pawns: rank 1 sorts first.
	assert.Equal(t, "b1", snap.Pieces[0].Square)
	assert.Equal(t, "Knight b1", snap.Pieces[0].Name)
}

func TestMakeMoveUCIReturnsSAN(t *testing.T) {
	e := New()
	san, err := e.MakeMoveUCI("e2e4")
	require.NoError(t, err)
	assert.Equal(t, "e4", san)
	assert.Equal(t, "b", e.Snapshot().Turn)

	san, err = e.MakeMoveUCI("g8f6")
	require.NoError(t, err)
	assert.Equal(t, "Nf6", san)
}

func TestMakeMoveUCIRejectsIllegal(t *testing.T) {
	e := New()
	_, err := e.MakeMoveUCI("e2e5")
	assert.Error(t, err)
	_, err = e.MakeMoveUCI("nonsense")
	assert.Error(t, err)
}

func TestSnapshotCollapsesPromotions(t *testing.T) {
	e := New()
	require.NoError(t, e.LoadFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1"))

	snap := e.Snapshot()
	var promo int
	for _, p := range snap.Pieces {
		for _, m := range p.Moves {
			if m.IsPromotion {
				promo++
				assert.Equal(t, "a7a8", m.UCI, "promotion letter deferred to the picker")
				assert.Equal(t, "a8", m.Target)
			}
		}
	}
	assert.Equal(t, 1, promo, "four promotion choices collapse into one option")

	san, err := e.MakeMoveUCI("a7a8q")
	require.NoError(t, err)
	assert.Equal(t, "a8=Q", san)
}

func TestCheckIsReportedAfterCheckingMove(t *testing.T) {
	e := New()
	require.NoError(t, e.LoadFEN("4k3/8/8/8/8/8/3R4/4K3 w - - 0 1"))

	san, err := e.MakeMoveUCI("d2e2")
	require.NoError(t, err)
	assert.Equal(t, "Re2+", san)
	assert.True(t, e.Snapshot().InCheck)
}

func TestCheckmateEndsGame(t *testing.T) {
	e := New()
	for _, uci := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		_, err := e.MakeMoveUCI(uci)
		require.NoError(t, err)
	}
	snap := e.Snapshot()
	assert.Equal(t, "Checkmate! Black wins", snap.GameOver)
	assert.Empty(t, snap.Pieces, "no carousel once the game is over")
}

func TestStalemateIsDraw(t *testing.T) {
	e := New()
	// Black king on a8, white queen on c7: black to move has no moves.
	require.NoError(t, e.LoadFEN("k7/2Q5/8/8/8/8/8/4K3 b - - 0 1"))
	assert.Equal(t, "Draw by stalemate", e.Snapshot().GameOver)
}

func TestResetRestoresStart(t *testing.T) {
	e := New()
	_, err := e.MakeMoveUCI("e2e4")
	require.NoError(t, err)
	e.Reset()
	assert.Equal(t, "w", e.Snapshot().Turn)
	assert.Len(t, e.ValidMovesUCI(), 20)
}

func TestLoadFENRejectsGarbage(t *testing.T) {
	e := New()
	assert.Error(t, e.LoadFEN("not a position"))
}
