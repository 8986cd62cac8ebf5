package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/garden-quest/pkg/sim"
)

// HoldWindow is how long a direction stays held after its last key event.
// Terminals report key presses and auto-repeat, never key releases.
const HoldWindow = 180 * time.Millisecond

// keyControls turns terminal key presses into the held/released model the engine polls.
type keyControls struct {
	window   time.Duration
	lastSeen map[sim.Control]time.Time
	now      time.Time

	actionQueued bool // pressed since the last frame
	actionOut    bool // visible to the engine during this frame
}

func newKeyControls(window time.Duration) *keyControls {
	return &keyControls{
		window:   window,
		lastSeen: make(map[sim.Control]time.Time),
	}
}

var opposite = map[sim.Control]sim.Control{
	sim.ControlUp:    sim.ControlDown,
	sim.ControlDown:  sim.ControlUp,
	sim.ControlLeft:  sim.ControlRight,
	sim.ControlRight: sim.ControlLeft,
}

// Press records a key event for c at t.
func (k *keyControls) Press(c sim.Control, t time.Time) {
	if c == sim.ControlAction {
		k.actionQueued = true
		return
	}
	delete(k.lastSeen, opposite[c])
	k.lastSeen[c] = t
}

// Frame latches the input state seen by the next engine update.
func (k *keyControls) Frame(t time.Time) {
	k.now = t
	k.actionOut = k.actionQueued
	k.actionQueued = false
	for c, seen := range k.lastSeen {
		if t.Sub(seen) > k.window {
			delete(k.lastSeen, c)
		}
	}
}

// Analog reports 1 for a direction seen within the hold window.
func (k *keyControls) Analog(c sim.Control) float64 {
	seen, ok := k.lastSeen[c]
	if !ok || k.now.Sub(seen) > k.window {
		return 0
	}
	return 1
}

// Released reports a press of the action key since the previous frame.
func (k *keyControls) Released(c sim.Control) bool {
	return c == sim.ControlAction && k.actionOut
}

// controlForKey maps a key to a control.
func controlForKey(msg tea.KeyMsg) (sim.Control, bool) {
	switch msg.Type {
	case tea.KeyUp:
		return sim.ControlUp, true
	case tea.KeyDown:
		return sim.ControlDown, true
	case tea.KeyLeft:
		return sim.ControlLeft, true
	case tea.KeyRight:
		return sim.ControlRight, true
	case tea.KeyEnter, tea.KeySpace:
		return sim.ControlAction, true
	}
	switch msg.String() {
	case "w", "k":
		return sim.ControlUp, true
	case "s", "j":
		return sim.ControlDown, true
	case "a", "h":
		return sim.ControlLeft, true
	case "d", "l":
		return sim.ControlRight, true
	case "z", "e":
		return sim.ControlAction, true
	}
	return 0, false
}
