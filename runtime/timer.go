package runtime

import (
	"sync"
	"time"
)

// ActivityTimer is a single-shot, re-armable countdown. The callback
// fires at most once per Start and never after a Cancel has taken
// effect. Start, Reset and Cancel all return immediately; the callback
// runs asynchronously on the runtime timer goroutine.
//
// Each arming bumps a generation counter and the fire path re-checks it
// under the lock, so a callback that raced with a Reset or Cancel
// silently gives up instead of firing for a stale arming.
type ActivityTimer struct {
	mu         sync.Mutex
	timer      *time.Timer
	duration   time.Duration
	onExpire   func()
	generation uint64
	armed      bool
}

func NewActivityTimer() *ActivityTimer {
	return &ActivityTimer{}
}

// Start arms the countdown. Calling Start on a running timer re-arms it
// with the new duration and callback.
func (t *ActivityTimer) Start(d time.Duration, onExpire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.duration = d
	t.onExpire = onExpire
	t.arm()
}

// Reset re-arms the full duration, typically on qualifying channel
// activity. Resetting a cancelled or expired timer is a no-op: a
// session that already began closing must not come back to life.
func (t *ActivityTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.armed {
		return
	}
	t.arm()
}

// Cancel prevents the callback from firing. It is idempotent and safe
// to call after the timer already expired.
func (t *ActivityTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.armed = false
	if t.timer != nil {
		t.timer.Stop()
	}
}

// arm must be called with the lock held.
func (t *ActivityTimer) arm() {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.generation++
	t.armed = true
	gen := t.generation
	t.timer = time.AfterFunc(t.duration, func() { t.fire(gen) })
}

func (t *ActivityTimer) fire(gen uint64) {
	t.mu.Lock()
	if !t.armed || gen != t.generation {
		// A Reset or Cancel won the race with this expiry.
		t.mu.Unlock()
		return
	}
	t.armed = false
	onExpire := t.onExpire
	t.mu.Unlock()

	if onExpire != nil {
		onExpire()
	}
}
