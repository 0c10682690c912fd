package chessclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mcdev12/wristchess/internal/models"
)

func TestTickSubtractsElapsedFromSideToMove(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-3 * time.Second)

	timers := models.Timers{WhiteMs: 60_000, BlackMs: 60_000}
	got := Tick(timers, "w", &last, now)

	assert.Equal(t, int64(57_000), got.WhiteMs)
	assert.Equal(t, int64(60_000), got.BlackMs)
}

func TestTickClampsAtZero(t *testing.T) {
	now := time.Now()
	last := now.Add(-100_000 * time.Millisecond)

	timers := models.Timers{WhiteMs: 1_000, BlackMs: 60_000}
	got := Tick(timers, "w", &last, now)

	assert.Equal(t, int64(0), got.WhiteMs)
}

func TestTickNilLastTickIsZeroElapsed(t *testing.T) {
	timers := models.Timers{WhiteMs: 60_000, BlackMs: 60_000}
	got := Tick(timers, "w", nil, time.Now())

	assert.Equal(t, timers, got)
}

func TestApplyIncrement(t *testing.T) {
	timers := models.Timers{WhiteMs: 10_000, BlackMs: 20_000, IncrementMs: 2_000}

	got := ApplyIncrement(timers, "b")
	assert.Equal(t, int64(22_000), got.BlackMs)
	assert.Equal(t, int64(10_000), got.WhiteMs)

	got = ApplyIncrement(timers, "w")
	assert.Equal(t, int64(12_000), got.WhiteMs)
}

func TestIsExpired(t *testing.T) {
	timers := models.Timers{WhiteMs: 0, BlackMs: 1}
	assert.True(t, IsExpired(timers, "w"))
	assert.False(t, IsExpired(timers, "b"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0:00", Format(0))
	assert.Equal(t, "1:01", Format(61_000))
	assert.Equal(t, "0:00", Format(999))
	assert.Equal(t, "10:05", Format(605_000))
	assert.Equal(t, "0:00", Format(-5))
}
