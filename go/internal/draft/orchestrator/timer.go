package orchestrator

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// turnTimer is the per-draft countdown. Arm and Cancel are called only from
// the actor goroutine; the callback runs on a clock goroutine and only
// reports the arming it belongs to.
type turnTimer struct {
	clock clockwork.Clock
	fire  func(gen uint64, pickIndex int)
	t     clockwork.Timer
	gen   uint64
}

func newTurnTimer(clock clockwork.Clock, fire func(gen uint64, pickIndex int)) *turnTimer {
	return &turnTimer{clock: clock, fire: fire}
}

// Arm cancels any previous arming and starts a new one for pickIndex.
func (t *turnTimer) Arm(d time.Duration, pickIndex int) uint64 {
	t.Cancel()
	if d < 0 {
		d = 0
	}
	t.gen++
	gen := t.gen
	t.t = t.clock.AfterFunc(d, func() { t.fire(gen, pickIndex) })
	return gen
}

// Cancel stops the current arming. An expiry already in flight is discarded
// by the generation check.
func (t *turnTimer) Cancel() {
	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
	t.gen++
}

// Current reports whether gen is the live arming.
func (t *turnTimer) Current(gen uint64) bool {
	return t.t != nil && gen == t.gen
}
