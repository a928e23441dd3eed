// Package typing tracks outbound typing indicators per recipient.
package typing

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is how long after the last keystroke a recipient
// is told typing stopped.
const DefaultQuietPeriod = 2 * time.Second

// State of the indicator for one recipient.
type State int

const (
	Idle State = iota
	Typing
)

func (s State) String() string {
	if s == Typing {
		return "typing"
	}
	return "idle"
}

// Emitter sends a typing signal to a recipient.
type Emitter func(to string, isTyping bool)

// Debouncer turns keystrokes into start/stop typing signals. A start is
// emitted on the first keystroke; a stop after the quiet period, or on
// Stop. Every keystroke resets the quiet timer. Signals reach the emitter
// in the order the state changed.
type Debouncer struct {
	// emitMu is taken before mu and held until the emitter returns.
	emitMu sync.Mutex
	mu     sync.Mutex
	quiet  time.Duration
	emit   Emitter
	timers map[string]*time.Timer
	closed bool
}

// NewDebouncer creates a Debouncer. A non-positive quiet uses DefaultQuietPeriod.
func NewDebouncer(quiet time.Duration, emit Emitter) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{
		quiet:  quiet,
		emit:   emit,
		timers: make(map[string]*time.Timer),
	}
}

// Keystroke records input directed at recipient.
func (d *Debouncer) Keystroke(to string) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if t, ok := d.timers[to]; ok {
		t.Stop()
		d.timers[to] = d.newTimer(to)
		d.mu.Unlock()
		return
	}
	d.timers[to] = d.newTimer(to)
	d.mu.Unlock()

	d.emit(to, true)
}

// Stop ends typing toward recipient immediately, for example after a send.
func (d *Debouncer) Stop(to string) {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()

	d.mu.Lock()
	t, ok := d.timers[to]
	if ok {
		t.Stop()
		delete(d.timers, to)
	}
	d.mu.Unlock()

	if ok {
		d.emit(to, false)
	}
}

// State reports the indicator state for recipient.
func (d *Debouncer) State(to string) State {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.timers[to]; ok {
		return Typing
	}
	return Idle
}

// Close cancels all pending timers without emitting.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for to, t := range d.timers {
		t.Stop()
		delete(d.timers, to)
	}
}

// newTimer must be called with mu held.
func (d *Debouncer) newTimer(to string) *time.Timer {
	var t *time.Timer
	t = time.AfterFunc(d.quiet, func() {
		d.emitMu.Lock()
		defer d.emitMu.Unlock()

		d.mu.Lock()
		// A reset or Stop may have replaced this timer already.
		if d.timers[to] != t {
			d.mu.Unlock()
			return
		}
		delete(d.timers, to)
		d.mu.Unlock()

		d.emit(to, false)
	})
	return t
}
