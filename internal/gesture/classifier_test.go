package gesture

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/wristchess/internal/models"
)

func newTestClassifier() (*Classifier, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	return NewClassifier(clock, DefaultConfig()), clock
}

func scrollEvent() RawEvent {
	return RawEvent{Type: EventScrollBottom, HasType: true}
}

func clickEvent(idx int, name string) RawEvent {
	return RawEvent{Type: EventClick, HasType: true, SelectIndex: &idx, SelectName: name}
}

func TestClassifyScroll(t *testing.T) {
	c, _ := newTestClassifier()

	a, ok := c.Classify(RawEvent{Type: EventScrollTop, HasType: true})
	require.True(t, ok)
	assert.Equal(t, models.ActionScroll, a.Type)
	assert.Equal(t, models.ScrollUp, a.Direction)

	_, ok = c.Classify(scrollEvent())
	assert.False(t, ok, "second scroll inside the debounce window must be dropped")
}

func TestScrollDebounceWindowReopens(t *testing.T) {
	c, clock := newTestClassifier()

	_, ok := c.Classify(scrollEvent())
	require.True(t, ok)

	clock.Advance(20 * time.Millisecond)
	_, ok = c.Classify(scrollEvent())
	assert.True(t, ok)
}

func TestScrollSuppressedAfterTap(t *testing.T) {
	c, clock := newTestClassifier()

	_, ok := c.Classify(clickEvent(0, ""))
	require.True(t, ok)

	// Spurious scroll pulse during a double-tap gesture.
	clock.Advance(50 * time.Millisecond)
	_, ok = c.Classify(scrollEvent())
	assert.False(t, ok)

	clock.Advance(150 * time.Millisecond)
	_, ok = c.Classify(scrollEvent())
	assert.True(t, ok)
}

func TestTapCooldown(t *testing.T) {
	c, clock := newTestClassifier()

	a, ok := c.Classify(clickEvent(3, "N g1"))
	require.True(t, ok)
	assert.Equal(t, models.ActionTap, a.Type)
	assert.Equal(t, 3, a.SelectedIndex)
	assert.Equal(t, "N g1", a.SelectedName)

	clock.Advance(100 * time.Millisecond)
	_, ok = c.Classify(clickEvent(4, ""))
	assert.False(t, ok, "tap inside the cooldown must be dropped")

	clock.Advance(400 * time.Millisecond)
	_, ok = c.Classify(clickEvent(4, ""))
	assert.True(t, ok)
}

func TestExtendTapCooldown(t *testing.T) {
	c, clock := newTestClassifier()

	c.ExtendTapCooldown(800 * time.Millisecond)

	clock.Advance(500 * time.Millisecond)
	_, ok := c.Classify(clickEvent(0, ""))
	assert.False(t, ok)

	clock.Advance(400 * time.Millisecond)
	_, ok = c.Classify(clickEvent(0, ""))
	assert.True(t, ok)
}

func TestSuppressedTapStillSuppressesScroll(t *testing.T) {
	c, clock := newTestClassifier()

	_, ok := c.Classify(clickEvent(0, ""))
	require.True(t, ok)

	// Second tap lands in the cooldown and is dropped, but its timestamp
	// must still arm the scroll suppression window.
	clock.Advance(200 * time.Millisecond)
	_, ok = c.Classify(clickEvent(0, ""))
	require.False(t, ok)

	clock.Advance(100 * time.Millisecond)
	_, ok = c.Classify(scrollEvent())
	assert.False(t, ok)
}

func TestDoubleTap(t *testing.T) {
	c, _ := newTestClassifier()

	a, ok := c.Classify(RawEvent{Type: EventDoubleClick, HasType: true})
	require.True(t, ok)
	assert.Equal(t, models.ActionDoubleTap, a.Type)
}

func TestForegroundEventsBypassGating(t *testing.T) {
	c, _ := newTestClassifier()

	// Arm every window first.
	_, ok := c.Classify(clickEvent(0, ""))
	require.True(t, ok)

	a, ok := c.Classify(RawEvent{Type: EventForegroundEnter, HasType: true})
	require.True(t, ok)
	assert.Equal(t, models.ActionForegroundEnter, a.Type)

	a, ok = c.Classify(RawEvent{Type: EventForegroundExit, HasType: true})
	require.True(t, ok)
	assert.Equal(t, models.ActionForegroundExit, a.Type)
}

func TestTypelessEventWithIndexIsTap(t *testing.T) {
	c, _ := newTestClassifier()

	idx := 2
	a, ok := c.Classify(RawEvent{SelectIndex: &idx})
	require.True(t, ok)
	assert.Equal(t, models.ActionTap, a.Type)
	assert.Equal(t, 2, a.SelectedIndex)
}

func TestMalformedEventDropped(t *testing.T) {
	c, _ := newTestClassifier()

	_, ok := c.Classify(RawEvent{})
	assert.False(t, ok)

	_, ok = c.Classify(RawEvent{Type: "shake", HasType: true})
	assert.False(t, ok)
}

func TestClassifiersDoNotShareTimingState(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := NewClassifier(clock, DefaultConfig())
	b := NewClassifier(clock, DefaultConfig())

	_, ok := a.Classify(clickEvent(0, ""))
	require.True(t, ok)

	// b has its own windows; a's tap must not gate it.
	_, ok = b.Classify(clickEvent(0, ""))
	assert.True(t, ok)
}
