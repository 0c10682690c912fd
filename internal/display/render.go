package display

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"github.com/notnil/chess"
	chessimage "github.com/notnil/chess/image"

	"github.com/mcdev12/wristchess/internal/chessclock"
	"github.com/mcdev12/wristchess/internal/models"
	"github.com/mcdev12/wristchess/internal/phase"
)

// markColor highlights the last move on the rendered board.
var markColor = color.RGBA{R: 255, G: 235, B: 59, A: 255}

// ScreenRenderer renders the watch screen: a text container for every
// phase and an SVG board for the phases that show one.
type ScreenRenderer struct{}

var _ Renderer = (*ScreenRenderer)(nil)

func NewScreenRenderer() *ScreenRenderer {
	return &ScreenRenderer{}
}

func (r *ScreenRenderer) Text(s *models.SessionState) string {
	var b strings.Builder
	r.writeHeader(&b, s)

	switch s.Phase {
	case models.PhaseIdle:
		r.writeIdle(&b, s)
	case models.PhasePieceSelect:
		writeCarousel(&b, "Piece", pieceLabels(s.Pieces), s.SelectedPieceIndex)
	case models.PhaseDestSelect:
		writeCarousel(&b, "Move", moveLabels(s.SelectedPiece()), s.SelectedMoveIndex)
	case models.PhasePromotionSelect:
		writeCarousel(&b, "Promote", promotionLabels(), s.SelectedPromotionIndex)
	case models.PhaseMenu:
		writeCarousel(&b, "Menu", menuLabels(), s.MenuSelectedIndex)
	case models.PhaseDifficultySelect:
		writeCarousel(&b, "Difficulty", difficultyLabels(), s.MenuSelectedIndex)
	case models.PhaseBoardMarkersSelect:
		writeCarousel(&b, "Markers", []string{"Off", "On"}, s.MenuSelectedIndex)
	case models.PhaseViewLog:
		r.writeMoveLog(&b, s)
	case models.PhaseResetConfirm:
		b.WriteString("Start a new game?\n")
		writeCarousel(&b, "", []string{"Cancel", "New game"}, s.MenuSelectedIndex)
	case models.PhaseExitConfirm:
		b.WriteString("Exit and save?\n")
		writeCarousel(&b, "", []string{"Cancel", "Exit"}, s.MenuSelectedIndex)
	case models.PhaseModeSelect:
		writeCarousel(&b, "Mode", modeLabels(), s.MenuSelectedIndex)
	case models.PhaseBulletSetup:
		writeCarousel(&b, "Time control", timeControlLabels(), s.SelectedTimeControlIndex)
	case models.PhaseAcademySelect:
		writeCarousel(&b, "Academy", academyLabels(), s.MenuSelectedIndex)
	default:
		if s.Phase.IsDrill() {
			r.writeDrill(&b, s)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// writeHeader renders the status line shown above every screen.
func (r *ScreenRenderer) writeHeader(b *strings.Builder, s *models.SessionState) {
	switch {
	case s.GameOver != "":
		fmt.Fprintf(b, "%s\n", s.GameOver)
	case s.EngineThinking:
		b.WriteString("Thinking...\n")
	case s.InCheck:
		b.WriteString("Check!\n")
	}
	if s.Timers != nil {
		fmt.Fprintf(b, "W %s  B %s\n",
			chessclock.Format(s.Timers.WhiteMs),
			chessclock.Format(s.Timers.BlackMs))
	}
}

func (r *ScreenRenderer) writeIdle(b *strings.Builder, s *models.SessionState) {
	if s.GameOver != "" {
		b.WriteString("Double-tap for new game\n")
		return
	}
	turn := "White"
	if s.Turn == "b" {
		turn = "Black"
	}
	fmt.Fprintf(b, "%s to move\n", turn)
	if s.LastMove != "" && len(s.History) > 0 {
		fmt.Fprintf(b, "Last: %s\n", s.History[len(s.History)-1].SAN)
	}
	b.WriteString("Scroll to pick a piece\n")
}

func (r *ScreenRenderer) writeMoveLog(b *strings.Builder, s *models.SessionState) {
	if len(s.History) == 0 {
		b.WriteString("No moves yet\n")
		return
	}
	end := s.LogScrollOffset + phase.LogWindow
	if end > len(s.History) {
		end = len(s.History)
	}
	for i := s.LogScrollOffset; i < end; i++ {
		rec := s.History[i]
		fmt.Fprintf(b, "%d. %s %s\n", i+1, rec.Color, rec.SAN)
	}
}

func (r *ScreenRenderer) writeDrill(b *strings.Builder, s *models.SessionState) {
	ac := s.Academy
	if ac == nil {
		b.WriteString("No drill active\n")
		return
	}
	fmt.Fprintf(b, "Score %d/%d\n", ac.Score.Correct, ac.Score.Total)

	switch ac.Drill {
	case models.DrillCoordinate:
		fmt.Fprintf(b, "Find %s\n", ac.TargetSquare)
		fmt.Fprintf(b, "Cursor: %s%s\n", ac.CursorSquare(), axisMarker(ac.ActiveAxis, 2))
	case models.DrillKnightPath:
		fmt.Fprintf(b, "Knight %s -> %s\n", ac.KnightSquare, ac.PathTarget)
		fmt.Fprintf(b, "Steps: %d\n", ac.StepsTaken)
		fmt.Fprintf(b, "Cursor: %s%s\n", ac.CursorSquare(), axisMarker(ac.ActiveAxis, 2))
	case models.DrillTactics, models.DrillMate:
		fmt.Fprintf(b, "%s\n", ac.PuzzlePrompt)
		fmt.Fprintf(b, "Move: %s-%s%s\n", ac.CursorSquare(), ac.CursorToSquare(), axisMarker(ac.ActiveAxis, 4))
	case models.DrillPGNStudy:
		fmt.Fprintf(b, "%s\n", ac.StudyTitle)
		if ac.MoveCursor == 0 {
			b.WriteString("Start position\n")
		} else {
			fmt.Fprintf(b, "%d/%d %s\n", ac.MoveCursor, len(ac.StudyMoves), ac.StudyMoves[ac.MoveCursor-1])
		}
	}
}

// axisMarker shows which coordinate axis the scroll wheel currently moves.
func axisMarker(axis, count int) string {
	names := []string{"file", "rank", "to-file", "to-rank"}
	if axis < 0 || axis >= count || axis >= len(names) {
		return ""
	}
	return fmt.Sprintf(" (%s)", names[axis])
}

// Board renders an SVG of the visible position. Screens without a board
// (menus, coordinate drills, studies without a position) return ok=false.
func (r *ScreenRenderer) Board(s *models.SessionState) ([]byte, bool, error) {
	fen := s.Position
	if s.Phase.IsDrill() {
		if s.Academy == nil || s.Academy.PuzzleFEN == "" {
			return nil, false, nil
		}
		fen = s.Academy.PuzzleFEN
	}
	if fen == "" {
		return nil, false, nil
	}

	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, false, fmt.Errorf("invalid board position %q: %w", fen, err)
	}
	board := chess.NewGame(opt).Position().Board()

	// The image package keeps its option type unexported, so the marked and
	// unmarked calls stay separate instead of sharing an options slice.
	var buf bytes.Buffer
	marked := false
	if s.ShowBoardMarkers && len(s.LastMove) >= 4 && !s.Phase.IsDrill() {
		from, okFrom := squareFromString(s.LastMove[:2])
		to, okTo := squareFromString(s.LastMove[2:4])
		if okFrom && okTo {
			marked = true
			err = chessimage.SVG(&buf, board, chessimage.MarkSquares(markColor, from, to))
		}
	}
	if !marked {
		err = chessimage.SVG(&buf, board)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to render board: %w", err)
	}
	return buf.Bytes(), true, nil
}

func squareFromString(name string) (chess.Square, bool) {
	for sq := chess.A1; sq <= chess.H8; sq++ {
		if sq.String() == name {
			return sq, true
		}
	}
	return chess.NoSquare, false
}

func pieceLabels(pieces []models.PieceSummary) []string {
	out := make([]string, len(pieces))
	for i, p := range pieces {
		out[i] = fmt.Sprintf("%s (%d)", p.Name, len(p.Moves))
	}
	return out
}

func moveLabels(piece *models.PieceSummary) []string {
	if piece == nil {
		return nil
	}
	out := make([]string, len(piece.Moves))
	for i, m := range piece.Moves {
		out[i] = m.SAN
	}
	return out
}

func promotionLabels() []string {
	out := make([]string, len(models.PromotionPieces))
	for i, p := range models.PromotionPieces {
		out[i] = p.Name
	}
	return out
}

func menuLabels() []string {
	out := make([]string, len(models.MenuOptions))
	for i, opt := range models.MenuOptions {
		out[i] = opt.Label()
	}
	return out
}

func difficultyLabels() []string {
	out := make([]string, len(models.DifficultyLadder))
	for i, d := range models.DifficultyLadder {
		out[i] = d.Name
	}
	return out
}

func modeLabels() []string {
	out := make([]string, len(models.ModeOptions))
	for i, m := range models.ModeOptions {
		out[i] = m.Label()
	}
	return out
}

func timeControlLabels() []string {
	out := make([]string, len(models.TimeControls))
	for i, tc := range models.TimeControls {
		out[i] = tc.Name
	}
	return out
}

func academyLabels() []string {
	out := make([]string, len(models.AcademyOptions))
	for i, d := range models.AcademyOptions {
		out[i] = d.Label()
	}
	return out
}

// writeCarousel renders a scrollable list with the cursor line marked.
// Long lists window around the cursor to fit the screen.
const carouselWindow = 4

func writeCarousel(b *strings.Builder, title string, items []string, selected int) {
	if title != "" {
		fmt.Fprintf(b, "%s:\n", title)
	}
	if len(items) == 0 {
		b.WriteString("(nothing here)\n")
		return
	}
	if selected < 0 || selected >= len(items) {
		selected = 0
	}

	start := 0
	if len(items) > carouselWindow {
		start = selected - carouselWindow/2
		if start < 0 {
			start = 0
		}
		if start > len(items)-carouselWindow {
			start = len(items) - carouselWindow
		}
	}
	end := start + carouselWindow
	if end > len(items) {
		end = len(items)
	}
	for i := start; i < end; i++ {
		marker := "  "
		if i == selected {
			marker = "> "
		}
		fmt.Fprintf(b, "%s%s\n", marker, items[i])
	}
}
