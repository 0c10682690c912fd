// Package chessclock holds the pure countdown arithmetic for the bullet
// chess clock. It is a set of functions over snapshots, not a component
// with internal state; the reducer owns when they apply.
package chessclock

import (
	"fmt"
	"time"

	"github.com/mcdev12/wristchess/internal/models"
)

// Tick subtracts the elapsed time since lastTick from the side to move.
// A nil lastTick counts as zero elapsed: the first tick after activation
// must not charge the player for setup time. Remaining time clamps at
// zero, never negative.
func Tick(timers models.Timers, turn string, lastTick *time.Time, now time.Time) models.Timers {
	var elapsed int64
	if lastTick != nil {
		elapsed = now.Sub(*lastTick).Milliseconds()
	}
	if elapsed < 0 {
		elapsed = 0
	}

	switch turn {
	case "w":
		timers.WhiteMs = clampZero(timers.WhiteMs - elapsed)
	case "b":
		timers.BlackMs = clampZero(timers.BlackMs - elapsed)
	}
	return timers
}

// ApplyIncrement adds the configured increment to the given color.
func ApplyIncrement(timers models.Timers, color string) models.Timers {
	switch color {
	case "w":
		timers.WhiteMs += timers.IncrementMs
	case "b":
		timers.BlackMs += timers.IncrementMs
	}
	return timers
}

// IsExpired reports whether the given color's clock has run out.
func IsExpired(timers models.Timers, color string) bool {
	switch color {
	case "w":
		return timers.WhiteMs <= 0
	case "b":
		return timers.BlackMs <= 0
	}
	return false
}

// Format renders milliseconds as "M:SS": floor to whole seconds, seconds
// zero-padded, no leading zero on minutes.
func Format(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSec := ms / 1000
	return fmt.Sprintf("%d:%02d", totalSec/60, totalSec%60)
}

func clampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
