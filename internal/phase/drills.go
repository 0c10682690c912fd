package phase

import (
	"math/rand"
	"time"

	"github.com/mcdev12/wristchess/internal/models"
)

// startDrill seeds a fresh drill sub-entity and enters its phase. The seed
// comes from the dispatch timestamp, so the reducer stays a pure function
// of its inputs while each session still gets varied puzzles.
func startDrill(next *models.SessionState, drill models.DrillType, now time.Time) {
	next.Academy = generateDrill(drill, now.UnixNano(), models.DrillScore{})
	enter(next, drill.DrillPhase(), now)
}

func (r *Reducer) academySelectScroll(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	idx := cycle(s.MenuSelectedIndex, scrollDelta(a.Direction), len(models.AcademyOptions))
	if idx == s.MenuSelectedIndex {
		return s
	}
	next := s.Clone()
	next.MenuSelectedIndex = idx
	return next
}

func (r *Reducer) academySelectTap(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	drill := models.AcademyOptions[clampIndex(s.MenuSelectedIndex, len(models.AcademyOptions))]
	next := s.Clone()
	next.MenuSelectedIndex = 0
	startDrill(next, drill, now)
	return next
}

// drillScroll moves the active cursor axis with wraparound; the PGN study
// cursor clamps instead, since a game has a first and a last move.
func (r *Reducer) drillScroll(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	ac := s.Academy
	if ac == nil {
		return s
	}
	delta := scrollDelta(a.Direction)

	if ac.Drill == models.DrillPGNStudy {
		cursor := ac.MoveCursor + delta
		if cursor < 0 {
			cursor = 0
		}
		if cursor > len(ac.StudyMoves) {
			cursor = len(ac.StudyMoves)
		}
		if cursor == ac.MoveCursor {
			return s
		}
		next := s.Clone()
		updated := *ac
		updated.MoveCursor = cursor
		next.Academy = &updated
		return next
	}

	updated := *ac
	switch ac.ActiveAxis {
	case 0:
		updated.CursorFile = cycle(ac.CursorFile, delta, 8)
	case 1:
		updated.CursorRank = cycle(ac.CursorRank, delta, 8)
	case 2:
		updated.CursorToFile = cycle(ac.CursorToFile, delta, 8)
	case 3:
		updated.CursorToRank = cycle(ac.CursorToRank, delta, 8)
	}
	if updated.CursorFile == ac.CursorFile && updated.CursorRank == ac.CursorRank &&
		updated.CursorToFile == ac.CursorToFile && updated.CursorToRank == ac.CursorToRank {
		return s
	}
	next := s.Clone()
	next.Academy = &updated
	return next
}

// drillTap advances to the next cursor axis, or submits the guess from the
// terminal axis.
func (r *Reducer) drillTap(s *models.SessionState, a models.Action, now time.Time) *models.SessionState {
	ac := s.Academy
	if ac == nil {
		return s
	}
	if ac.ActiveAxis < ac.AxisCount()-1 {
		next := s.Clone()
		updated := *ac
		updated.ActiveAxis++
		next.Academy = &updated
		return next
	}
	return r.drillSubmit(s, a, now)
}

// drillDoubleTap steps back one axis, or exits the drill from the first
// axis, discarding the academy sub-entity.
func (r *Reducer) drillDoubleTap(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	ac := s.Academy
	if ac == nil || ac.ActiveAxis == 0 {
		next := s.Clone()
		next.Academy = nil
		next.MenuSelectedIndex = 0
		enter(next, models.PhaseAcademySelect, now)
		return next
	}
	next := s.Clone()
	updated := *ac
	updated.ActiveAxis--
	next.Academy = &updated
	return next
}

// drillSubmit evaluates the current cursor as a guess, updates the tally
// and regenerates the next puzzle from the advanced seed.
func (r *Reducer) drillSubmit(s *models.SessionState, _ models.Action, _ time.Time) *models.SessionState {
	ac := s.Academy
	if ac == nil {
		return s
	}

	switch ac.Drill {
	case models.DrillCoordinate:
		next := s.Clone()
		score := ac.Score
		score.Total++
		if ac.CursorSquare() == ac.TargetSquare {
			score.Correct++
		}
		next.Academy = generateDrill(ac.Drill, nextSeed(ac.Seed), score)
		return next

	case models.DrillKnightPath:
		return knightPathSubmit(s, ac)

	case models.DrillTactics, models.DrillMate:
		next := s.Clone()
		score := ac.Score
		score.Total++
		guess := ac.CursorSquare() + ac.CursorToSquare()
		// Solutions may carry a promotion letter; the cursor picks squares.
		if len(ac.SolutionUCI) >= 4 && guess == ac.SolutionUCI[:4] {
			score.Correct++
		}
		next.Academy = generateDrill(ac.Drill, nextSeed(ac.Seed), score)
		return next

	case models.DrillPGNStudy:
		if ac.MoveCursor >= len(ac.StudyMoves) {
			return s
		}
		next := s.Clone()
		updated := *ac
		updated.MoveCursor++
		next.Academy = &updated
		return next
	}
	return s
}

// knightPathSubmit scores one step of the pathfinding drill. A step is
// correct when it is a legal knight move that lies on a shortest path to
// the target; reaching the target regenerates the puzzle, a correct
// intermediate step moves the knight, a wrong step only counts against
// the tally.
func knightPathSubmit(s *models.SessionState, ac *models.AcademyState) *models.SessionState {
	guess := ac.CursorSquare()
	next := s.Clone()
	score := ac.Score
	score.Total++

	distBefore := knightDistance(ac.KnightSquare, ac.PathTarget)
	distAfter := knightDistance(guess, ac.PathTarget)
	onPath := isKnightMove(ac.KnightSquare, guess) && distAfter >= 0 && distAfter < distBefore

	if !onPath {
		updated := *ac
		updated.Score = score
		updated.ActiveAxis = 0
		next.Academy = &updated
		return next
	}

	score.Correct++
	if guess == ac.PathTarget {
		next.Academy = generateDrill(ac.Drill, nextSeed(ac.Seed), score)
		return next
	}
	updated := *ac
	updated.Score = score
	updated.KnightSquare = guess
	updated.StepsTaken++
	updated.ActiveAxis = 0
	next.Academy = &updated
	return next
}

// generateDrill builds the drill payload for a given seed, carrying the
// running score forward across puzzles.
func generateDrill(drill models.DrillType, seed int64, score models.DrillScore) *models.AcademyState {
	rng := rand.New(rand.NewSource(seed))
	ac := &models.AcademyState{
		Drill: drill,
		Score: score,
		Seed:  seed,
	}

	switch drill {
	case models.DrillCoordinate:
		ac.TargetSquare = models.SquareName(rng.Intn(8), rng.Intn(8))

	case models.DrillKnightPath:
		start := models.SquareName(rng.Intn(8), rng.Intn(8))
		target := start
		for target == start || knightDistance(start, target) < 2 {
			target = models.SquareName(rng.Intn(8), rng.Intn(8))
		}
		ac.KnightSquare = start
		ac.PathTarget = target
		if f, rk, ok := models.ParseSquare(start); ok {
			ac.CursorFile, ac.CursorRank = f, rk
		}

	case models.DrillTactics:
		p := tacticsPuzzles[rng.Intn(len(tacticsPuzzles))]
		ac.PuzzleFEN = p.FEN
		ac.SolutionUCI = p.SolutionUCI
		ac.PuzzlePrompt = p.Prompt

	case models.DrillMate:
		p := matePuzzles[rng.Intn(len(matePuzzles))]
		ac.PuzzleFEN = p.FEN
		ac.SolutionUCI = p.SolutionUCI
		ac.PuzzlePrompt = p.Prompt

	case models.DrillPGNStudy:
		st := studies[rng.Intn(len(studies))]
		ac.StudyTitle = st.Title
		ac.StudyMoves = st.Moves
	}
	return ac
}

// nextSeed advances the puzzle seed deterministically (splitmix64 step),
// keeping regeneration reproducible for a given starting seed.
func nextSeed(seed int64) int64 {
	z := uint64(seed) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d649bb133111eb
	return int64(z ^ (z >> 31))
}

var knightOffsets = [8][2]int{
	{1, 2}, {2, 1}, {2, -1}, {1, -2},
	{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

func isKnightMove(from, to string) bool {
	ff, fr, ok := models.ParseSquare(from)
	if !ok {
		return false
	}
	tf, tr, ok := models.ParseSquare(to)
	if !ok {
		return false
	}
	for _, o := range knightOffsets {
		if ff+o[0] == tf && fr+o[1] == tr {
			return true
		}
	}
	return false
}

// knightDistance is the BFS move count between two squares, or -1 for
// malformed input.
func knightDistance(from, to string) int {
	ff, fr, ok := models.ParseSquare(from)
	if !ok {
		return -1
	}
	tf, tr, ok := models.ParseSquare(to)
	if !ok {
		return -1
	}
	if ff == tf && fr == tr {
		return 0
	}

	type cell struct{ f, r, d int }
	visited := [8][8]bool{}
	visited[ff][fr] = true
	queue := []cell{{ff, fr, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, o := range knightOffsets {
			nf, nr := cur.f+o[0], cur.r+o[1]
			if nf < 0 || nf > 7 || nr < 0 || nr > 7 || visited[nf][nr] {
				continue
			}
			if nf == tf && nr == tr {
				return cur.d + 1
			}
			visited[nf][nr] = true
			queue = append(queue, cell{nf, nr, cur.d + 1})
		}
	}
	return -1
}
