package game

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// SlidingWindow admits at most limit events in any trailing window.
// It is not safe for concurrent use; rooms guard it with their own lock.
type SlidingWindow struct {
	clock    clockwork.Clock
	limit    int
	window   time.Duration
	accepted []time.Time
}

func NewSlidingWindow(clock clockwork.Clock, limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		clock:    clock,
		limit:    limit,
		window:   window,
		accepted: make([]time.Time, 0, limit),
	}
}

// Allow records and admits the event if the budget has room. Rejected
// events do not consume budget.
func (w *SlidingWindow) Allow() bool {
	now := w.clock.Now()
	cutoff := now.Add(-w.window)
	drop := 0
	for drop < len(w.accepted) && !w.accepted[drop].After(cutoff) {
		drop++
	}
	if drop > 0 {
		w.accepted = append(w.accepted[:0], w.accepted[drop:]...)
	}
	if len(w.accepted) >= w.limit {
		return false
	}
	w.accepted = append(w.accepted, now)
	return true
}

func (w *SlidingWindow) Reset() {
	w.accepted = w.accepted[:0]
}
