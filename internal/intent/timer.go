// Package intent implements the delayed-close state machine behind
// the header's floating panels. Leaving a panel schedules a close a
// short moment later; re-entering before the delay expires cancels
// it, so the panel does not flicker while the pointer crosses the gap
// between trigger and panel.
package intent

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// CloseDelay is how long a panel stays open after the pointer leaves.
const CloseDelay = 200 * time.Millisecond

// CloseMsg is delivered when a scheduled close expires. It carries
// the owning panel's name and the generation the timer was armed
// with; the Timer ignores expiries from stale generations.
type CloseMsg struct {
	Panel string
	Gen   int
}

// Timer is the per-panel open/closed machine. Each panel owns its own
// Timer; they share no cancellation state. Bubble Tea cannot cancel a
// tick in flight, so cancellation is a generation counter: arming,
// cancelling, or tearing down bumps the generation, and an expiry
// whose generation no longer matches does nothing.
type Timer struct {
	panel   string
	open    bool
	pending bool
	gen     int
}

// NewTimer creates a closed timer for the named panel.
func NewTimer(panel string) Timer {
	return Timer{panel: panel}
}

// Open reports whether the panel is currently open.
func (t *Timer) Open() bool {
	return t.open
}

// Enter opens the panel immediately and cancels any pending close.
func (t *Timer) Enter() {
	t.gen++
	t.pending = false
	t.open = true
}

// Leave schedules a close after CloseDelay. The returned command
// delivers a CloseMsg; a nil command means the panel was not open.
func (t *Timer) Leave() tea.Cmd {
	if !t.open {
		return nil
	}
	t.gen++
	t.pending = true

	panel := t.panel
	gen := t.gen
	return tea.Tick(CloseDelay, func(time.Time) tea.Msg {
		return CloseMsg{Panel: panel, Gen: gen}
	})
}

// Expire handles a CloseMsg. It returns true when the message belongs
// to this panel's live pending close, in which case the panel is now
// closed. Stale generations and foreign panels return false with no
// state change.
func (t *Timer) Expire(msg CloseMsg) bool {
	if msg.Panel != t.panel || msg.Gen != t.gen || !t.pending {
		return false
	}
	t.pending = false
	t.open = false
	return true
}

// Teardown cancels any pending close unconditionally. An expiry
// arriving after Teardown is ignored.
func (t *Timer) Teardown() {
	t.gen++
	t.pending = false
	t.open = false
}
