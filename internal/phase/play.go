package phase

import (
	"strings"
	"time"

	"github.com/mcdev12/wristchess/internal/models"
)

// idleScroll opens the piece carousel on the first movable piece.
func (r *Reducer) idleScroll(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	if len(s.Pieces) == 0 {
		return s
	}
	next := s.Clone()
	next.SelectedPieceIndex = 0
	next.SelectedMoveIndex = 0
	enter(next, models.PhasePieceSelect, now)
	return next
}

func (r *Reducer) pieceSelectScroll(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	n := len(s.Pieces)
	idx := cycle(s.SelectedPieceIndex, scrollDelta(a.Direction), n)
	if n == 0 || idx == s.SelectedPieceIndex {
		return s
	}
	next := s.Clone()
	next.SelectedPieceIndex = idx
	next.SelectedMoveIndex = 0
	return next
}

func (r *Reducer) pieceSelectTap(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	p := s.SelectedPiece()
	if p == nil || len(p.Moves) == 0 {
		return s
	}
	next := s.Clone()
	next.SelectedMoveIndex = 0
	enter(next, models.PhaseDestSelect, now)
	return next
}

// pieceSelectDoubleTap disambiguates on phase age: a double-tap landing
// within the window of entering the phase is reinterpreted as "open menu"
// (the second tap of a gesture that began before the scroll-triggered
// entry); later it means "back to idle".
func (r *Reducer) pieceSelectDoubleTap(s *models.SessionState, a models.Action, now time.Time) *models.SessionState {
	if now.Sub(s.PhaseEnteredAt) <= r.cfg.DisambiguationWindow {
		return r.openMenu(s, a, now)
	}
	next := s.Clone()
	next.SelectedPieceIndex = 0
	enter(next, models.PhaseIdle, now)
	return next
}

func (r *Reducer) destSelectScroll(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	p := s.SelectedPiece()
	if p == nil {
		return s
	}
	idx := cycle(s.SelectedMoveIndex, scrollDelta(a.Direction), len(p.Moves))
	if len(p.Moves) == 0 || idx == s.SelectedMoveIndex {
		return s
	}
	next := s.Clone()
	next.SelectedMoveIndex = idx
	return next
}

// destSelectTap commits the highlighted move, or detours through promotion
// select when the chosen move is a pawn promotion.
func (r *Reducer) destSelectTap(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	m := s.SelectedMove()
	if m == nil {
		return s
	}
	next := s.Clone()
	if m.IsPromotion {
		pending := *m
		next.PendingPromotionMove = &pending
		next.SelectedPromotionIndex = 0
		enter(next, models.PhasePromotionSelect, now)
		return next
	}
	commitMove(next, m.UCI, m.SAN, now)
	return next
}

func (r *Reducer) destSelectDoubleTap(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	next := s.Clone()
	next.SelectedMoveIndex = 0
	enter(next, models.PhasePieceSelect, now)
	return next
}

func (r *Reducer) promotionScroll(s *models.SessionState, a models.Action, _ time.Time) *models.SessionState {
	idx := cycle(s.SelectedPromotionIndex, scrollDelta(a.Direction), len(models.PromotionPieces))
	if idx == s.SelectedPromotionIndex {
		return s
	}
	next := s.Clone()
	next.SelectedPromotionIndex = idx
	return next
}

func (r *Reducer) promotionTap(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	pm := s.PendingPromotionMove
	if pm == nil {
		return s
	}
	choice := models.PromotionPieces[clampIndex(s.SelectedPromotionIndex, len(models.PromotionPieces))]
	uci := pm.UCI + choice.Letter
	san := pm.Target + "=" + strings.ToUpper(choice.Letter)
	next := s.Clone()
	commitMove(next, uci, san, now)
	return next
}

func (r *Reducer) promotionDoubleTap(s *models.SessionState, _ models.Action, now time.Time) *models.SessionState {
	next := s.Clone()
	next.PendingPromotionMove = nil
	next.SelectedPromotionIndex = 0
	enter(next, models.PhaseDestSelect, now)
	return next
}

// commitMove records the move in history, hands it to the rules engine via
// PendingMove, clears selection state and returns to idle. The first commit
// of a bullet game arms the clock without charging setup time.
func commitMove(next *models.SessionState, uci, san string, now time.Time) {
	next.History = appendCapped(next.History, models.MoveRecord{SAN: san, UCI: uci, Color: next.Turn})
	next.PendingMove = uci
	next.LastMove = uci
	next.HasUnsavedChanges = true
	next.SelectedMoveIndex = 0
	next.SelectedPromotionIndex = 0
	next.PendingPromotionMove = nil
	if next.Mode == models.ModeBullet && next.Timers != nil && !next.TimerActive {
		next.TimerActive = true
		next.TimerPaused = false
		next.LastTickTime = nil
	}
	enter(next, models.PhaseIdle, now)
}
