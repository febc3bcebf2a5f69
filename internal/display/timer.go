package display

import (
	"time"

	"code.cloudfoundry.org/clock"
)

// scheduleTimer is the controller's single timer slot. Arming replaces the
// previous timer, so at most one cycle is ever pending. It is owned by the
// controller's loop goroutine and is not safe for concurrent use.
type scheduleTimer struct {
	clock clock.Clock
	timer clock.Timer
}

func newScheduleTimer(clk clock.Clock) *scheduleTimer {
	return &scheduleTimer{clock: clk}
}

// arm cancels any pending timer and starts a new one for d.
func (t *scheduleTimer) arm(d time.Duration) {
	t.cancel()
	t.timer = t.clock.NewTimer(d)
}

// cancel stops the pending timer, if any.
func (t *scheduleTimer) cancel() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// fired clears the slot after the timer's channel delivered.
func (t *scheduleTimer) fired() {
	t.timer = nil
}

// armed reports whether a timer is pending.
func (t *scheduleTimer) armed() bool {
	return t.timer != nil
}

// C returns the pending timer's channel, or nil (which blocks forever in a
// select) when nothing is armed.
func (t *scheduleTimer) C() <-chan time.Time {
	if t.timer == nil {
		return nil
	}
	return t.timer.C()
}
