package draft

import (
	"sync"
	"time"
)

// debouncer collapses a burst of triggers into a single callback fired once
// the configured settle window has elapsed since the last trigger. Each
// session owns its debouncers; there is no global timer state.
type debouncer struct {
	mu     sync.Mutex
	settle time.Duration
	timer  *time.Timer
	fn     func()
}

func newDebouncer(settle time.Duration, fn func()) *debouncer {
	return &debouncer{settle: settle, fn: fn}
}

// Schedule arms the timer, replacing any pending firing.
func (d *debouncer) Schedule() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.settle, d.fn)
}

// CancelPending drops any pending firing without running the callback.
func (d *debouncer) CancelPending() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Flush cancels any pending firing and runs the callback immediately.
func (d *debouncer) Flush() {
	d.CancelPending()
	d.fn()
}
