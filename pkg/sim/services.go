package sim

import (
	"github.com/google/uuid"

	"github.com/jwebster45206/garden-quest/pkg/dialogue"
)

// Control is one logical input.
type Control int

const (
	ControlUp Control = iota
	ControlDown
	ControlLeft
	ControlRight
	ControlAction
)

func (c Control) String() string {
	switch c {
	case ControlUp:
		return "up"
	case ControlDown:
		return "down"
	case ControlLeft:
		return "left"
	case ControlRight:
		return "right"
	case ControlAction:
		return "action"
	default:
		return "unknown"
	}
}

// Controls is polled once per frame by the engine.
type Controls interface {
	// Analog returns how far c is pressed, in [0, 1].
	Analog(c Control) float64
	// Released reports whether c went from pressed to released since the last frame.
	Released(c Control) bool
}

// Audio plays cues and adjusts the background music.
type Audio interface {
	PlaySound(s dialogue.Sound)
	SetMusicVolume(v float64)
}

type nopAudio struct{}

func (nopAudio) PlaySound(dialogue.Sound) {}
func (nopAudio) SetMusicVolume(float64)   {}

// EventKind names a gameplay event.
type EventKind string

const (
	EventRoomEntered EventKind = "room_entered"
	EventItemPicked  EventKind = "item_picked"
	EventNPCSpoke    EventKind = "npc_spoke"
	EventNPCRemoved  EventKind = "npc_removed"
	EventWon         EventKind = "won"
)

// Event is published to an EventSink as the game progresses.
type Event struct {
	Session uuid.UUID `json:"session"`
	Kind    EventKind `json:"kind"`
	Tick    uint64    `json:"tick"`
	Room    string    `json:"room"`
	Subject string    `json:"subject,omitempty"` // item or NPC name
	Message string    `json:"message,omitempty"`
}

// EventSink receives engine events. Emit must not block the frame.
type EventSink interface {
	Emit(e Event)
}

type nopSink struct{}

func (nopSink) Emit(Event) {}
