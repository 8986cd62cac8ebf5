// Package sim runs the per-frame game simulation: movement with sliding collision,
// room transitions, item pickup and NPC scripts.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"

	"github.com/jwebster45206/garden-quest/pkg/geom"
	"github.com/jwebster45206/garden-quest/pkg/ordmap"
	"github.com/jwebster45206/garden-quest/pkg/tileset"
	"github.com/jwebster45206/garden-quest/pkg/tmx"
	"github.com/jwebster45206/garden-quest/pkg/world"
)

// Gameplay constants, in room pixels and milliseconds.
const (
	Speed          = 125.0 // pixels per second
	WalkPeriod     = 300
	KaboomDuration = 1000
	KaboomFrames   = 5
	FlamePeriod    = 400
	FlameFrames    = 8

	AmbientVolume = 0.7
	DuckedVolume  = 0.3
)

// CollisionBox is the player's solid area, relative to the player position.
var CollisionBox = geom.Rect{X: 1, Y: 14, W: 12, H: 8}

// HotspotSize is the side of the interaction rectangle in front of the player.
const HotspotSize = world.TileSize

// RoomLoader produces the level of a room.
type RoomLoader interface {
	Load(ctx context.Context, room world.RoomID, consumed tmx.Consumed) (*world.Level, error)
	Catalog() *tileset.Catalog
}

// Frame is the timing input of one Update.
type Frame struct {
	Delta float64 // seconds since the previous frame
	Tick  uint64  // milliseconds since start
}

// Facing selects the row of the player sprite.
type Facing int

const (
	FacingDown Facing = iota
	FacingSide
	FacingUp
)

// Player is the player's per-frame state.
type Player struct {
	Pos     geom.Point
	Held    string
	Facing  Facing
	Mirror  bool
	Frame   int
	Hotspot geom.Rect
}

// Box returns the collision box at the player's position.
func (p Player) Box() geom.Rect {
	return CollisionBox.Offset(p.Pos.X, p.Pos.Y)
}

type pending struct {
	room world.RoomID
	warp bool
	pos  *geom.Point
}

// Engine owns all mutable game state. It is not safe for concurrent use.
type Engine struct {
	id       uuid.UUID
	world    *world.World
	loader   RoomLoader
	controls Controls
	audio    Audio
	events   EventSink
	logger   *slog.Logger

	level *world.Level
	next  *pending

	player   Player
	walkT0   uint64
	tick     uint64
	message  string
	npcState *ordmap.Map[string, int]
	visuals  *ordmap.Map[string, string]
	consumed mapset.Set[string]

	won      bool
	winT0    uint64
	kaboomOn bool
	kaboomT0 uint64
}

// New returns an engine that enters the world's start room on its first Update.
func New(w *world.World, loader RoomLoader, controls Controls, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New()
	e := &Engine{
		id:       id,
		world:    w,
		loader:   loader,
		controls: controls,
		audio:    nopAudio{},
		events:   nopSink{},
		logger:   logger.With("session_id", id.String()),
		next:     &pending{room: w.Start},
		npcState: ordmap.New[string, int](),
		visuals:  ordmap.New[string, string](),
		consumed: mapset.New[string](),
	}
	for name, sprite := range w.Visuals.All() {
		e.visuals.Set(name, sprite)
	}
	return e
}

// WithAudio sets the audio service.
// Returns the Engine for method chaining
func (e *Engine) WithAudio(a Audio) *Engine {
	if a != nil {
		e.audio = a
		e.audio.SetMusicVolume(AmbientVolume)
	}
	return e
}

// WithEvents sets the event sink.
// Returns the Engine for method chaining
func (e *Engine) WithEvents(s EventSink) *Engine {
	if s != nil {
		e.events = s
	}
	return e
}

// ID returns the session id.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// Update advances the simulation by one frame. A returned error means the world
// content is broken; the engine must not be updated again.
func (e *Engine) Update(ctx context.Context, f Frame) error {
	e.tick = f.Tick

	if err := e.loadPending(ctx); err != nil {
		return err
	}

	axis := e.readAxis()
	e.face(axis)
	e.move(axis, f.Delta)

	if e.controls.Released(ControlAction) {
		e.act()
	}

	e.updateKaboom()
	return nil
}

// loadPending enters the requested room, if any.
func (e *Engine) loadPending(ctx context.Context) error {
	if e.next == nil {
		return nil
	}
	req := e.next
	first := e.level == nil

	level, err := e.loader.Load(ctx, req.room, &e.consumed)
	if err != nil {
		return fmt.Errorf("failed to enter room %d: %w", req.room, err)
	}

	if req.pos != nil {
		e.player.Pos = *req.pos
	}
	if level.Spawn != nil && (req.warp || first) {
		e.player.Pos = geom.Point{
			X: level.Spawn.X - CollisionBox.W/2 - CollisionBox.X,
			Y: level.Spawn.Y - CollisionBox.H/2 - CollisionBox.Y,
		}
	}

	e.level = level
	e.next = nil
	e.kaboomOn = false

	name := e.RoomName()
	e.logger.Debug("Entered room", "room", name, "warp", req.warp, "x", e.player.Pos.X, "y", e.player.Pos.Y)
	e.emit(EventRoomEntered, "", "")
	return nil
}

// Teleport schedules room for the next Update. With a nil pos the room's spawn
// point is used, as for a warp.
func (e *Engine) Teleport(room world.RoomID, pos *geom.Point) error {
	if _, ok := e.world.Graph.Room(room); !ok {
		return fmt.Errorf("failed to teleport: %w", world.ErrUnknownRoom)
	}
	e.next = &pending{room: room, warp: pos == nil, pos: pos}
	return nil
}

func (e *Engine) emit(kind EventKind, subject, message string) {
	e.events.Emit(Event{
		Session: e.id,
		Kind:    kind,
		Tick:    e.tick,
		Room:    e.RoomName(),
		Subject: subject,
		Message: message,
	})
}

// Level returns the current room, or nil before the first Update.
func (e *Engine) Level() *world.Level {
	return e.level
}

// Room returns the id of the current room.
func (e *Engine) Room() world.RoomID {
	if e.level == nil {
		return world.NoRoom
	}
	return e.level.Room
}

// RoomName returns the name of the current room.
func (e *Engine) RoomName() string {
	r, ok := e.world.Graph.Room(e.Room())
	if !ok {
		return ""
	}
	return r.Name
}

// Pending returns the room that will be entered on the next Update.
func (e *Engine) Pending() (world.RoomID, bool) {
	if e.next == nil {
		return world.NoRoom, false
	}
	return e.next.room, true
}

// Player returns a copy of the player state.
func (e *Engine) Player() Player {
	return e.player
}

// Held returns the held item, or "".
func (e *Engine) Held() string {
	return e.player.Held
}

// Message returns the displayed message, or "".
func (e *Engine) Message() string {
	return e.message
}

// NPCState returns the script state code of the named NPC.
func (e *Engine) NPCState(name string) int {
	v, _ := e.npcState.Get(name)
	return v
}

// IsConsumed reports whether name was resolved and will not reappear.
func (e *Engine) IsConsumed(name string) bool {
	return e.consumed.Has(name)
}

// Consumed lists resolved identities in sorted order.
func (e *Engine) Consumed() []string {
	names := make([]string, 0, e.consumed.Size())
	e.consumed.Each(func(name string) {
		names = append(names, name)
	})
	slices.Sort(names)
	return names
}

// Visual returns the sprite of the named NPC.
func (e *Engine) Visual(name string) (string, bool) {
	return e.visuals.Get(name)
}

// Won reports whether the heart was picked up.
func (e *Engine) Won() bool {
	return e.won
}

// Catalog returns the shared tile catalog.
func (e *Engine) Catalog() *tileset.Catalog {
	return e.loader.Catalog()
}

// World returns the static world.
func (e *Engine) World() *world.World {
	return e.world
}

// Tick returns the tick of the last Update.
func (e *Engine) Tick() uint64 {
	return e.tick
}
