// Package engine wraps the chess rules library behind the small surface
// the session needs: snapshots of the playable position, UCI move
// application, and game resets.
package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/notnil/chess"

	"github.com/mcdev12/wristchess/internal/models"
)

// Rules is the session's view of the chess rules.
type Rules interface {
	// Snapshot derives the display model from the current position.
	Snapshot() *models.Snapshot
	// MakeMoveUCI applies a UCI move ("e2e4", "e7e8q") and returns its SAN.
	MakeMoveUCI(uci string) (string, error)
	// FEN returns the current position.
	FEN() string
	// ValidMovesUCI lists every legal move in UCI form.
	ValidMovesUCI() []string
	// Reset starts a fresh game from the standard position.
	Reset()
	// LoadFEN replaces the game with the given position.
	LoadFEN(fen string) error
}

// NotnilEngine implements Rules on top of notnil/chess.
type NotnilEngine struct {
	mu sync.Mutex
	g  *chess.Game
	// inCheck tracks the check tag of the last applied move; the library
	// does not expose a direct query on the position.
	inCheck bool
}

var _ Rules = (*NotnilEngine)(nil)

func New() *NotnilEngine {
	return &NotnilEngine{g: chess.NewGame()}
}

func (e *NotnilEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.g = chess.NewGame()
	e.inCheck = false
}

func (e *NotnilEngine) LoadFEN(fen string) error {
	opt, err := chess.FEN(fen)
	if err != nil {
		return fmt.Errorf("invalid FEN %q: %w", fen, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.g = chess.NewGame(opt)
	e.inCheck = false
	return nil
}

func (e *NotnilEngine) FEN() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.g.Position().String()
}

// MakeMoveUCI decodes a UCI move against the current position, applies it
// and returns the SAN the move log records.
func (e *NotnilEngine) MakeMoveUCI(uci string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos := e.g.Position()
	move, err := chess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return "", fmt.Errorf("failed to decode move %q: %w", uci, err)
	}
	san := chess.AlgebraicNotation{}.Encode(pos, move)
	if err := e.g.Move(move); err != nil {
		return "", fmt.Errorf("failed to apply move %q: %w", uci, err)
	}
	e.inCheck = move.HasTag(chess.Check)
	return san, nil
}

func (e *NotnilEngine) ValidMovesUCI() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos := e.g.Position()
	uci := chess.UCINotation{}
	moves := e.g.ValidMoves()
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, uci.Encode(pos, m))
	}
	return out
}

// Snapshot groups the legal moves by origin square into the piece carousel.
// The four promotion choices of one pawn push collapse into a single option
// flagged IsPromotion; the promotion picker re-expands it at commit time.
func (e *NotnilEngine) Snapshot() *models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos := e.g.Position()
	snap := &models.Snapshot{
		Position: pos.String(),
		Turn:     pos.Turn().String(),
		InCheck:  e.inCheck,
	}
	if outcome := e.g.Outcome(); outcome != chess.NoOutcome {
		snap.GameOver = describeOutcome(outcome, e.g.Method())
		return snap
	}

	board := pos.Board()
	uci := chess.UCINotation{}
	san := chess.AlgebraicNotation{}

	byOrigin := map[chess.Square][]models.MoveOption{}
	seenPromo := map[string]bool{}
	for _, m := range e.g.ValidMoves() {
		origin := m.S1()
		opt := models.MoveOption{
			UCI:    uci.Encode(pos, m),
			SAN:    san.Encode(pos, m),
			Target: m.S2().String(),
		}
		if m.Promo() != chess.NoPieceType {
			key := origin.String() + m.S2().String()
			if seenPromo[key] {
				continue
			}
			seenPromo[key] = true
			opt.UCI = opt.UCI[:4]
			opt.SAN = m.S2().String()
			opt.IsPromotion = true
		}
		byOrigin[origin] = append(byOrigin[origin], opt)
	}

	pieces := make([]models.PieceSummary, 0, len(byOrigin))
	for origin, moves := range byOrigin {
		sort.Slice(moves, func(i, j int) bool { return moves[i].UCI < moves[j].UCI })
		pieces = append(pieces, models.PieceSummary{
			ID:     origin.String(),
			Name:   pieceName(board.Piece(origin), origin),
			Square: origin.String(),
			Moves:  moves,
		})
	}
	// Stable carousel order: rank descending for white at the bottom,
	// then file ascending.
	sort.Slice(pieces, func(i, j int) bool { return squareLess(pieces[i].Square, pieces[j].Square) })
	snap.Pieces = pieces
	return snap
}

func squareLess(a, b string) bool {
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[0] < b[0]
}

func pieceName(p chess.Piece, sq chess.Square) string {
	var label string
	switch p.Type() {
	case chess.Pawn:
		label = "Pawn"
	case chess.Knight:
		label = "Knight"
	case chess.Bishop:
		label = "Bishop"
	case chess.Rook:
		label = "Rook"
	case chess.Queen:
		label = "Queen"
	case chess.King:
		label = "King"
	default:
		label = "Piece"
	}
	return fmt.Sprintf("%s %s", label, sq.String())
}

// describeOutcome renders the banner shown once a game ends.
func describeOutcome(outcome chess.Outcome, method chess.Method) string {
	switch outcome {
	case chess.WhiteWon, chess.BlackWon:
		winner := "White"
		if outcome == chess.BlackWon {
			winner = "Black"
		}
		switch method {
		case chess.Checkmate:
			return fmt.Sprintf("Checkmate! %s wins", winner)
		case chess.Resignation:
			return fmt.Sprintf("%s wins by resignation", winner)
		default:
			return fmt.Sprintf("%s wins", winner)
		}
	case chess.Draw:
		switch method {
		case chess.Stalemate:
			return "Draw by stalemate"
		case chess.ThreefoldRepetition, chess.FivefoldRepetition:
			return "Draw by repetition"
		case chess.FiftyMoveRule, chess.SeventyFiveMoveRule:
			return "Draw by fifty-move rule"
		case chess.InsufficientMaterial:
			return "Draw by insufficient material"
		default:
			return "Draw"
		}
	}
	return ""
}
