package discover

import (
	"sync"
	"time"
)

// Debouncer calls fn with the last value passed to Trigger once no new value
// has arrived for the configured delay.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func(string)
	timer *time.Timer
	seq   uint64
}

// NewDebouncer creates a debouncer. A non-positive delay fires on the next tick.
func NewDebouncer(delay time.Duration, fn func(string)) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger cancels any pending call and schedules fn(value).
func (d *Debouncer) Trigger(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		// a timer that already started before Stop must not fire a superseded value
		d.mu.Lock()
		current := seq == d.seq
		d.mu.Unlock()
		if !current {
			return
		}
		d.fn(value)

		d.mu.Lock()
		if seq == d.seq {
			d.timer = nil
		}
		d.mu.Unlock()
	})
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
