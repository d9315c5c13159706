package query

import (
	"sync"
	"time"
)

// DebounceDelay is the quiet period before a rapidly-changing input is
// committed.
const DebounceDelay = 220 * time.Millisecond

// Debouncer commits the most recent value passed to Set once no further
// Set call arrives within the delay. Each Set cancels and restarts the
// pending commit, so a burst of values produces exactly one commit.
type Debouncer struct {
	delay  time.Duration
	commit func(string)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	stopped bool
}

// NewDebouncer builds a debouncer invoking commit after the quiet period.
// A non-positive delay falls back to DebounceDelay.
func NewDebouncer(delay time.Duration, commit func(string)) *Debouncer {
	if delay <= 0 {
		delay = DebounceDelay
	}
	return &Debouncer{delay: delay, commit: commit}
}

// Set records a new value and restarts the quiet-period timer.
func (d *Debouncer) Set(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending = value
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	value := d.pending
	d.timer = nil
	d.mu.Unlock()

	d.commit(value)
}

// Stop cancels any pending commit. The debouncer cannot be reused.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
