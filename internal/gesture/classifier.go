// Package gesture turns raw device input events into semantic actions.
// The input hardware is a two-gesture device (scroll wheel plus a tap
// surface) whose event stream is noisy: the ring emits spurious scroll
// pulses while a double-tap is being performed, and the simulator omits
// the event type on plain clicks. The classifier owns three timing
// windows and nothing else; it never touches session state.
package gesture

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/wristchess/internal/models"
)

// Event type vocabulary of the hardware bridge.
const (
	EventScrollTop       = "scroll_top"
	EventScrollBottom    = "scroll_bottom"
	EventClick           = "click"
	EventDoubleClick     = "double_click"
	EventForegroundEnter = "foreground_enter"
	EventForegroundExit  = "foreground_exit"
)

// RawEvent is one input event as delivered by the bridge. HasType is false
// for the simulator's typeless click events, which still carry a selection
// index.
type RawEvent struct {
	Type        string
	HasType     bool
	SelectIndex *int
	SelectName  string
}

// Config holds the timing windows. The defaults are tuned to one physical
// device's event cadence; other hardware needs re-tuning, which is why
// these are parameters and not constants.
type Config struct {
	// ScrollDebounce is the minimum gap between accepted scroll events.
	ScrollDebounce time.Duration
	// TapCooldown starts after each accepted tap; taps inside it are dropped.
	TapCooldown time.Duration
	// TapSuppression drops scroll events arriving shortly after a tap,
	// covering the spurious scroll pulses emitted during a double-tap.
	TapSuppression time.Duration
}

// DefaultConfig returns the windows tuned for the reference ring device.
func DefaultConfig() Config {
	return Config{
		ScrollDebounce: 15 * time.Millisecond,
		TapCooldown:    400 * time.Millisecond,
		TapSuppression: 150 * time.Millisecond,
	}
}

// Classifier disambiguates raw events into actions. One instance per
// session; the timing windows are instance state, never package state, so
// concurrent sessions and tests do not share them.
type Classifier struct {
	clock clockwork.Clock
	cfg   Config

	lastScroll       time.Time
	lastTap          time.Time
	tapCooldownUntil time.Time
}

// NewClassifier creates a classifier with its own timing context.
func NewClassifier(clock clockwork.Clock, cfg Config) *Classifier {
	return &Classifier{clock: clock, cfg: cfg}
}

// Classify maps a raw event to an action. ok is false when the event is
// malformed or suppressed by a timing window; the caller logs and drops it.
func (c *Classifier) Classify(ev RawEvent) (models.Action, bool) {
	now := c.clock.Now()

	typ := ev.Type
	if !ev.HasType {
		// Simulator quirk: clicks may arrive with no event type but with a
		// selection index. Treat those as taps.
		if ev.SelectIndex == nil {
			return models.Action{}, false
		}
		typ = EventClick
	}

	switch typ {
	case EventScrollTop, EventScrollBottom:
		if !c.lastScroll.IsZero() && now.Sub(c.lastScroll) < c.cfg.ScrollDebounce {
			return models.Action{}, false
		}
		if !c.lastTap.IsZero() && now.Sub(c.lastTap) < c.cfg.TapSuppression {
			return models.Action{}, false
		}
		c.lastScroll = now
		dir := models.ScrollUp
		if typ == EventScrollBottom {
			dir = models.ScrollDown
		}
		return models.Action{Type: models.ActionScroll, Direction: dir}, true

	case EventClick:
		if !c.acceptTap(now) {
			return models.Action{}, false
		}
		idx := 0
		if ev.SelectIndex != nil {
			idx = *ev.SelectIndex
		}
		return models.Action{
			Type:          models.ActionTap,
			SelectedIndex: idx,
			SelectedName:  ev.SelectName,
		}, true

	case EventDoubleClick:
		if !c.acceptTap(now) {
			return models.Action{}, false
		}
		return models.Action{Type: models.ActionDoubleTap}, true

	case EventForegroundEnter:
		return models.Action{Type: models.ActionForegroundEnter}, true

	case EventForegroundExit:
		return models.Action{Type: models.ActionForegroundExit}, true
	}

	return models.Action{}, false
}

// acceptTap records the tap timestamp (scroll suppression keys off every
// tap attempt, accepted or not), then applies the cooldown gate.
func (c *Classifier) acceptTap(now time.Time) bool {
	c.lastTap = now
	if now.Before(c.tapCooldownUntil) {
		return false
	}
	c.tapCooldownUntil = now.Add(c.cfg.TapCooldown)
	return true
}

// ExtendTapCooldown pushes the cooldown out to now+d. The session calls
// this when the state machine enters a phase prone to accidental
// re-selection, e.g. right after a move commit.
func (c *Classifier) ExtendTapCooldown(d time.Duration) {
	until := c.clock.Now().Add(d)
	if until.After(c.tapCooldownUntil) {
		c.tapCooldownUntil = until
	}
}
