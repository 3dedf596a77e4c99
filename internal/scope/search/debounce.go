package search

import (
	"sync"
	"time"
)

// DefaultDebounceInterval is the pause after the last keystroke before a search runs
const DefaultDebounceInterval = 300 * time.Millisecond

// Debouncer coalesces rapid term updates into one call per pause.
// Each Trigger cancels the pending timer, so only the latest term fires.
type Debouncer struct {
	interval time.Duration
	fn       func(term string)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	seq     uint64
}

// NewDebouncer creates a debouncer that calls fn on the trailing edge
func NewDebouncer(interval time.Duration, fn func(term string)) *Debouncer {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	return &Debouncer{
		interval: interval,
		fn:       fn,
	}
}

// Trigger schedules fn(term), replacing any pending call
func (d *Debouncer) Trigger(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = term
	d.timer = time.AfterFunc(d.interval, func() { d.fire(seq) })
}

// fire runs the pending call unless a later Trigger or Stop superseded it
func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.timer == nil {
		d.mu.Unlock()
		return
	}
	term := d.pending
	d.timer = nil
	d.mu.Unlock()

	d.fn(term)
}

// Flush runs the pending call now. It reports whether one was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.timer == nil {
		d.mu.Unlock()
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.seq++
	term := d.pending
	d.mu.Unlock()

	d.fn(term)
	return true
}

// Stop cancels the pending call
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}

// Pending reports whether a call is scheduled
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
