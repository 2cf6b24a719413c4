package uci

import (
	"strconv"
	"time"
)

type TimeControl struct {
	White time.Duration
	Black time.Duration
	WInc  time.Duration
	BInc  time.Duration
}

// calcBudget picks a search time from a per-move limit and the
// mover's clock and increment. Zero arguments are unset; a zero
// result means no time was given.
func calcBudget(move, game, inc time.Duration) time.Duration {
	budget := move
	if game > 0 {
		b := game/20 + inc/2
		if b >= game {
			b = game / 2
		}
		if budget == 0 || b < budget {
			budget = b
		}
	}
	return budget
}

func formatTime(d time.Duration) string {
	ms := d / time.Millisecond
	if ms < 0 {
		ms = 0
	}
	return strconv.FormatUint(uint64(ms), 10)
}
