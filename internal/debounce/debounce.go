// Package debounce coalesces bursts of events into a single deferred call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs a callback once a burst of Call invocations has been quiet
// for the configured delay. Every Call cancels the pending timer and
// reschedules, so only the last call in a window fires.
//
// All methods are safe for concurrent use. The callback never runs
// concurrently with itself from the same Debouncer.
type Debouncer struct {
	mu      sync.Mutex
	run     sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending bool
	seq     uint64 // invalidates timers that were stopped too late
	fn      func()
	next    func()
}

// New creates a debouncer that invokes fn after delay of inactivity.
func New(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Delay returns the configured quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Call schedules the callback, replacing any pending schedule.
func (d *Debouncer) Call() {
	d.CallWith(nil)
}

// CallWith schedules fn instead of the default callback. The closure of the
// last call in the window is the one that runs.
func (d *Debouncer) CallWith(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if fn == nil {
		fn = d.fn
	}

	d.pending = true
	d.next = fn
	d.seq++
	current := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if !d.pending || d.seq != current || fn == nil {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.next = nil
		d.timer = nil
		d.mu.Unlock()

		d.run.Lock()
		defer d.run.Unlock()
		fn()
	})
}

// Flush runs the pending callback immediately, if any, and cancels the timer.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	fn := d.next
	fire := d.pending && fn != nil
	d.pending = false
	d.next = nil
	d.mu.Unlock()

	if fire {
		d.run.Lock()
		defer d.run.Unlock()
		fn()
	}
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
	d.next = nil
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
