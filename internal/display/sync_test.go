package display

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/wristchess/internal/bridge"
	"github.com/mcdev12/wristchess/internal/models"
)

// fakeBridge records updates; with tokens set, each UpdateText blocks
// until the test feeds it a token.
type fakeBridge struct {
	mu      sync.Mutex
	texts   []string
	boards  int
	tokens  chan struct{}
	started chan struct{}
}

func (f *fakeBridge) UpdateText(_ context.Context, _, _, content string) error {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.tokens != nil {
		<-f.tokens
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, content)
	return nil
}

func (f *fakeBridge) UpdateBoardImage(_ context.Context, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.boards++
	return nil
}

func (f *fakeBridge) SubscribeEvents(bridge.EventHandler) func() { return func() {} }
func (f *fakeBridge) Shutdown(context.Context) error            { return nil }

func (f *fakeBridge) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.texts))
	copy(out, f.texts)
	return out
}

// fakeRenderer shows only the last move, so states differing elsewhere
// render identically.
type fakeRenderer struct{}

func (fakeRenderer) Text(s *models.SessionState) string {
	return fmt.Sprintf("last=%s", s.LastMove)
}

func (fakeRenderer) Board(*models.SessionState) ([]byte, bool, error) {
	return nil, false, nil
}

func stateWithMove(move string) *models.SessionState {
	s := models.NewSessionState(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.LastMove = move
	return s
}

func newSyncUnderTest(fb *fakeBridge) (*Synchronizer, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	sy := NewSynchronizer(DefaultConfig(), fb, fakeRenderer{}, clock)
	return sy, clock
}

func TestBurstCoalescesIntoOneFlush(t *testing.T) {
	fb := &fakeBridge{}
	sy, clock := newSyncUnderTest(fb)
	defer sy.Close()

	prev := stateWithMove("")
	for i, move := range []string{"e2e4", "e7e5", "g1f3"} {
		next := stateWithMove(move)
		sy.Sync(next, prev)
		prev = next
		if i < 2 {
			clock.Advance(2 * time.Millisecond)
		}
	}
	clock.Advance(4 * time.Millisecond)

	require.Eventually(t, func() bool { return len(fb.sentTexts()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"last=g1f3"}, fb.sentTexts())
}

func TestLatestWinsWhileFlushInFlight(t *testing.T) {
	fb := &fakeBridge{tokens: make(chan struct{}, 8), started: make(chan struct{}, 8)}
	sy, clock := newSyncUnderTest(fb)

	prev := stateWithMove("")
	a := stateWithMove("a")
	sy.Sync(a, prev)
	clock.Advance(4 * time.Millisecond)
	<-fb.started

	// First flush is now blocked on the bridge. Two newer states arrive;
	// only the newest may survive.
	b := stateWithMove("b")
	sy.Sync(b, a)
	clock.Advance(4 * time.Millisecond)
	c := stateWithMove("c")
	sy.Sync(c, b)
	clock.Advance(4 * time.Millisecond)

	fb.tokens <- struct{}{}
	fb.tokens <- struct{}{}
	require.Eventually(t, func() bool { return len(fb.sentTexts()) == 2 }, time.Second, time.Millisecond)
	sy.Close()

	assert.Equal(t, []string{"last=a", "last=c"}, fb.sentTexts())
}

func TestTrailingFlushSkippedWhenConverged(t *testing.T) {
	fb := &fakeBridge{tokens: make(chan struct{}, 8), started: make(chan struct{}, 8)}
	sy, clock := newSyncUnderTest(fb)

	prev := stateWithMove("")
	a := stateWithMove("a")
	sy.Sync(a, prev)
	clock.Advance(4 * time.Millisecond)
	<-fb.started

	// Relevant change (cursor moved) but identical rendering; the trailing
	// flush must be skipped once the first one lands.
	same := stateWithMove("a")
	same.MenuSelectedIndex = 3
	sy.Sync(same, a)
	clock.Advance(4 * time.Millisecond)

	fb.tokens <- struct{}{}
	require.Eventually(t, func() bool { return len(fb.sentTexts()) == 1 }, time.Second, time.Millisecond)
	sy.Close()

	assert.Equal(t, []string{"last=a"}, fb.sentTexts())
}

func TestIrrelevantChangeArmsNoTimer(t *testing.T) {
	fb := &fakeBridge{}
	sy, clock := newSyncUnderTest(fb)
	defer sy.Close()

	a := stateWithMove("a")
	// Clone with no visible difference.
	b := a.Clone()
	sy.Sync(b, a)
	clock.Advance(10 * time.Millisecond)

	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, fb.sentTexts())
}

func TestSubSecondClockTicksAreIrrelevant(t *testing.T) {
	a := stateWithMove("a")
	a.Timers = &models.Timers{WhiteMs: 59_900, BlackMs: 60_000}
	b := a.Clone()
	b.Timers = &models.Timers{WhiteMs: 59_400, BlackMs: 60_000}
	assert.Equal(t, relevanceKey(a), relevanceKey(b))

	c := a.Clone()
	c.Timers = &models.Timers{WhiteMs: 58_900, BlackMs: 60_000}
	assert.NotEqual(t, relevanceKey(a), relevanceKey(c))
}

func TestInvalidateResendsConvergedContent(t *testing.T) {
	fb := &fakeBridge{}
	sy, clock := newSyncUnderTest(fb)
	defer sy.Close()

	a := stateWithMove("a")
	sy.Sync(a, stateWithMove(""))
	clock.Advance(4 * time.Millisecond)
	require.Eventually(t, func() bool { return len(fb.sentTexts()) == 1 }, time.Second, time.Millisecond)

	// Same state again: converged, normally nothing to send.
	sy.Invalidate(a)
	clock.Advance(4 * time.Millisecond)

	require.Eventually(t, func() bool { return len(fb.sentTexts()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"last=a", "last=a"}, fb.sentTexts())
}

func TestCloseWaitsForInFlightFlush(t *testing.T) {
	fb := &fakeBridge{tokens: make(chan struct{}, 1), started: make(chan struct{}, 1)}
	sy, clock := newSyncUnderTest(fb)

	a := stateWithMove("a")
	sy.Sync(a, stateWithMove(""))
	clock.Advance(4 * time.Millisecond)
	<-fb.started

	done := make(chan struct{})
	go func() {
		sy.Close()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Close returned while a flush was still in flight")
	case <-time.After(20 * time.Millisecond):
	}

	fb.tokens <- struct{}{}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after the flush finished")
	}
	assert.Equal(t, []string{"last=a"}, fb.sentTexts())
}
