package world

import "github.com/jwebster45206/garden-quest/pkg/geom"

// Room geometry. Every room is the same fixed grid.
const (
	TileSize  = 16
	Cols      = 16
	Rows      = 11
	MaxLayers = 2

	Width  = Cols * TileSize
	Height = Rows * TileSize
)

// Grid is one tile layer. Cells hold 1-based tile ids; 0 is empty.
type Grid [Rows][Cols]int

// Warp is a trigger rectangle leading to another room.
type Warp struct {
	Rect geom.Rect
	Name string
	To   RoomID
}

// Placed is an item or NPC standing in the room.
type Placed struct {
	Rect geom.Rect
	Name string
}

// Level is everything the map loader produces for one room. A new Level replaces the
// previous one wholesale.
type Level struct {
	Room    RoomID
	Tileset string
	Layers  []Grid // bottom to top, at most MaxLayers
	Spawn   *geom.Point
	Warp    *Warp
	Item    *Placed
	NPC     *Placed
}

// Tile returns the 1-based id at (layer, row, col), or 0 outside the grid.
func (l *Level) Tile(layer, row, col int) int {
	if layer < 0 || layer >= len(l.Layers) || row < 0 || row >= Rows || col < 0 || col >= Cols {
		return 0
	}
	return l.Layers[layer][row][col]
}
