package tracker

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into one signal on C, sent delay
// after the last trigger.
type Debouncer struct {
	C <-chan struct{}

	c     chan struct{}
	delay time.Duration
	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a Debouncer.
func NewDebouncer(delay time.Duration) *Debouncer {
	c := make(chan struct{}, 1)
	return &Debouncer{C: c, c: c, delay: delay}
}

// Trigger restarts the countdown.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Stop cancels a pending signal.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire() {
	select {
	case d.c <- struct{}{}:
	default:
	}
}
