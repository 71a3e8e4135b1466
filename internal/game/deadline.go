package game

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// deadline is the single cancellable timer a room owns at any time. Every
// arm or stop bumps seq, so a callback that lost the race against a stop
// sees a stale sequence number and does nothing.
type deadline struct {
	clock clockwork.Clock
	timer clockwork.Timer
	seq   uint64
	at    time.Time
}

func (d *deadline) arm(after time.Duration, fire func(seq uint64)) {
	d.stop()
	seq := d.seq
	d.at = d.clock.Now().Add(after)
	d.timer = d.clock.AfterFunc(after, func() {
		fire(seq)
	})
}

func (d *deadline) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.at = time.Time{}
}

func (d *deadline) current(seq uint64) bool {
	return d.timer != nil && d.seq == seq
}

func (d *deadline) expiresAt() int64 {
	if d.at.IsZero() {
		return 0
	}
	return d.at.UnixMilli()
}
