// Package hover debounces pointer hover into tooltip show and hide events.
//
// A [Tracker] has no goroutine or timer of its own. The caller reports the
// element under the pointer with [Tracker.Move] and advances time with
// [Tracker.Tick]; both return the events that became due. This keeps all
// tooltip state on the caller's goroutine, next to the rest of the UI
// state, and makes the tracker trivially testable with a fake clock.
package hover

import "time"

// Defaults used when a duration is zero.
const (
	DefaultDwell   = 500 * time.Millisecond
	DefaultTimeout = 5 * time.Second
)

// Kind is the type of a hover event.
type Kind int

const (
	Show Kind = iota
	Hide
)

func (k Kind) String() string {
	if k == Show {
		return "show"
	}
	return "hide"
}

// Event asks the host to show or hide the tooltip of Element.
type Event[T comparable] struct {
	Kind    Kind
	Element T
}

// Tracker follows the element under the pointer. An element is shown after
// the pointer has rested on it for the dwell time, and hidden when the
// pointer leaves it or after it has been shown for the timeout. Once timed
// out, the same element is not shown again until the pointer moves to a
// different one.
type Tracker[T comparable] struct {
	dwell   time.Duration
	timeout time.Duration

	cand    T
	hasCand bool
	since   time.Time
	expired bool

	shown   T
	showing bool
	shownAt time.Time

	suspended bool
}

// New creates a tracker. Zero durations select the defaults; a negative
// timeout disables automatic hiding.
func New[T comparable](dwell, timeout time.Duration) *Tracker[T] {
	if dwell <= 0 {
		dwell = DefaultDwell
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Tracker[T]{dwell: dwell, timeout: timeout}
}

// Showing returns the element whose tooltip is visible.
func (t *Tracker[T]) Showing() (T, bool) { return t.shown, t.showing }

// Move reports the element under the pointer at time now; ok is false when
// the pointer is over empty space.
func (t *Tracker[T]) Move(el T, ok bool, now time.Time) []Event[T] {
	if t.suspended {
		return nil
	}
	var out []Event[T]
	if t.showing && (!ok || el != t.shown) {
		out = append(out, t.hide())
	}
	if !ok {
		t.forget()
		return out
	}
	if !t.hasCand || t.cand != el {
		t.cand, t.hasCand, t.since, t.expired = el, true, now, false
	}
	return append(out, t.Tick(now)...)
}

// Tick fires the events that are due at time now.
func (t *Tracker[T]) Tick(now time.Time) []Event[T] {
	if t.suspended {
		return nil
	}
	if t.showing {
		if t.timeout > 0 && now.Sub(t.shownAt) >= t.timeout {
			t.expired = true
			return []Event[T]{t.hide()}
		}
		return nil
	}
	if t.hasCand && !t.expired && now.Sub(t.since) >= t.dwell {
		t.shown, t.showing, t.shownAt = t.cand, true, now
		return []Event[T]{{Kind: Show, Element: t.cand}}
	}
	return nil
}

// Suspend stops tracking, hiding any visible tooltip, until Resume. The
// interaction controller suspends the tracker for the length of a drag.
func (t *Tracker[T]) Suspend() []Event[T] {
	out := t.Reset()
	t.suspended = true
	return out
}

// Resume restarts tracking after Suspend.
func (t *Tracker[T]) Resume() { t.suspended = false }

// Suspended reports whether the tracker is suspended.
func (t *Tracker[T]) Suspended() bool { return t.suspended }

// Reset forgets the pointer, hiding any visible tooltip. Call it when the
// pointer leaves the surface.
func (t *Tracker[T]) Reset() []Event[T] {
	var out []Event[T]
	if t.showing {
		out = append(out, t.hide())
	}
	t.forget()
	return out
}

func (t *Tracker[T]) hide() Event[T] {
	ev := Event[T]{Kind: Hide, Element: t.shown}
	var zero T
	t.shown, t.showing = zero, false
	return ev
}

func (t *Tracker[T]) forget() {
	var zero T
	t.cand, t.hasCand, t.expired = zero, false, false
}
