// Package world describes the static game world: the room graph, the warp table,
// the item and NPC tables, and the per-room level model produced by the map loader.
package world

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jwebster45206/garden-quest/pkg/ordmap"
)

var (
	// ErrUnknownRoom is returned when a name does not resolve to a room.
	ErrUnknownRoom = errors.New("unknown room")
	// ErrBadManifest is returned for structurally invalid world definitions.
	ErrBadManifest = errors.New("invalid world manifest")
)

// Direction is one of the four cardinal exits of a room.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

var directionNames = [...]string{"north", "south", "east", "west"}

func (d Direction) String() string {
	if d < North || d > West {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// Opposite returns the exit leading back.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	default:
		return East
	}
}

// ParseDirection converts "north", "south", "east" or "west" to a Direction.
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if strings.EqualFold(s, name) {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("%w: bad direction %q", ErrBadManifest, s)
}

// RoomID addresses a room inside its Graph.
type RoomID int

// NoRoom is the zero exit.
const NoRoom RoomID = -1

// Room is a node of the graph. Exits hold ids, never pointers.
type Room struct {
	ID    RoomID
	Name  string
	File  string // room document, also the room's identity
	exits [4]RoomID
}

// Exit returns the neighbor in direction d, or NoRoom.
func (r Room) Exit(d Direction) RoomID {
	return r.exits[d]
}

// Graph is an arena of rooms plus a table of named warp targets.
type Graph struct {
	rooms  []Room
	byName *ordmap.Map[string, RoomID]
	warps  *ordmap.Map[string, RoomID]
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		byName: ordmap.New[string, RoomID](),
		warps:  ordmap.New[string, RoomID](),
	}
}

// AddRoom appends a room without exits.
func (g *Graph) AddRoom(name, file string) (RoomID, error) {
	if name == "" || file == "" {
		return NoRoom, fmt.Errorf("%w: room needs a name and a file", ErrBadManifest)
	}
	if g.byName.Has(name) {
		return NoRoom, fmt.Errorf("%w: duplicate room %q", ErrBadManifest, name)
	}
	id := RoomID(len(g.rooms))
	g.rooms = append(g.rooms, Room{
		ID:    id,
		Name:  name,
		File:  file,
		exits: [4]RoomID{NoRoom, NoRoom, NoRoom, NoRoom},
	})
	g.byName.Set(name, id)
	return id, nil
}

// Connect links from → to in direction d and to → from in the opposite direction.
func (g *Graph) Connect(from RoomID, d Direction, to RoomID) error {
	if g.valid(to) && d >= North && d <= West {
		back := d.Opposite()
		if cur := g.rooms[to].exits[back]; cur != NoRoom && cur != from {
			return fmt.Errorf("%w: %s already has a %s exit", ErrBadManifest, g.rooms[to].Name, back)
		}
	}
	if err := g.Link(from, d, to); err != nil {
		return err
	}
	return g.Link(to, d.Opposite(), from)
}

// Link sets the exit of from in direction d to to, leaving to's exits alone.
func (g *Graph) Link(from RoomID, d Direction, to RoomID) error {
	if !g.valid(from) || !g.valid(to) {
		return fmt.Errorf("%w: connect %d %s %d", ErrUnknownRoom, from, d, to)
	}
	if d < North || d > West {
		return fmt.Errorf("%w: bad direction %d", ErrBadManifest, int(d))
	}
	if cur := g.rooms[from].exits[d]; cur != NoRoom && cur != to {
		return fmt.Errorf("%w: %s already has a %s exit", ErrBadManifest, g.rooms[from].Name, d)
	}
	g.rooms[from].exits[d] = to
	return nil
}

// AddWarp registers a named warp target.
func (g *Graph) AddWarp(name string, to RoomID) error {
	if !g.valid(to) {
		return fmt.Errorf("%w: warp %q targets room %d", ErrUnknownRoom, name, to)
	}
	g.warps.Set(name, to)
	return nil
}

func (g *Graph) valid(id RoomID) bool {
	return id >= 0 && int(id) < len(g.rooms)
}

// Room returns the room with id.
func (g *Graph) Room(id RoomID) (Room, bool) {
	if !g.valid(id) {
		return Room{}, false
	}
	return g.rooms[id], true
}

// Lookup resolves a room name.
func (g *Graph) Lookup(name string) (RoomID, bool) {
	id, ok := g.byName.Get(name)
	if !ok {
		return NoRoom, false
	}
	return id, true
}

// Neighbor returns the room reached by leaving id in direction d.
func (g *Graph) Neighbor(id RoomID, d Direction) (RoomID, bool) {
	if !g.valid(id) || d < North || d > West {
		return NoRoom, false
	}
	n := g.rooms[id].exits[d]
	return n, n != NoRoom
}

// Warp resolves a warp name to its destination room.
func (g *Graph) Warp(name string) (RoomID, bool) {
	id, ok := g.warps.Get(name)
	if !ok {
		return NoRoom, false
	}
	return id, true
}

// WarpNames lists the registered warp names in order.
func (g *Graph) WarpNames() []string {
	return g.warps.Keys()
}

// Len returns the number of rooms.
func (g *Graph) Len() int {
	return len(g.rooms)
}

// Rooms returns the rooms in id order.
func (g *Graph) Rooms() []Room {
	out := make([]Room, len(g.rooms))
	copy(out, g.rooms)
	return out
}
