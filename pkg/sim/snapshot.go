package sim

import (
	"github.com/jwebster45206/garden-quest/pkg/dialogue"
	"github.com/jwebster45206/garden-quest/pkg/geom"
	"github.com/jwebster45206/garden-quest/pkg/world"
)

// Empty marks a cell with no tile in a TileView.
const Empty = -1

// TileView holds 0-based display tile ids for one layer, animation applied.
type TileView [world.Rows][world.Cols]int

// Sprite is an item or NPC as it should be drawn.
type Sprite struct {
	Name   string
	Visual string
	Dst    geom.Rect
	Frame  int
	Hidden bool
}

// Snapshot is everything a renderer needs for one frame. It is a copy; mutating it
// does not affect the engine.
type Snapshot struct {
	Tick     uint64
	Room     string
	Layers   []TileView
	Player   Player
	Item     *Sprite
	NPC      *Sprite
	Held     string
	Message  string
	Won      bool
	WinPhase float64
}

// Snapshot captures the current frame.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Tick:    e.tick,
		Room:    e.RoomName(),
		Player:  e.player,
		Held:    e.player.Held,
		Message: e.message,
	}
	s.WinPhase, s.Won = e.WinPhase()

	if e.level == nil {
		return s
	}

	c := e.loader.Catalog()
	s.Layers = make([]TileView, len(e.level.Layers))
	for k, g := range e.level.Layers {
		for row := range world.Rows {
			for col := range world.Cols {
				id := g[row][col]
				if id == 0 {
					s.Layers[k][row][col] = Empty
					continue
				}
				s.Layers[k][row][col] = c.CurrentTile(id-1, e.tick)
			}
		}
	}

	if item := e.level.Item; item != nil {
		visual, _ := e.world.Items.Get(item.Name)
		s.Item = &Sprite{
			Name:   item.Name,
			Visual: visual,
			Dst:    item.Rect,
			// water sits on a water tile and is not drawn
			Hidden: item.Name == dialogue.ItemWater,
		}
	}

	if npc := e.level.NPC; npc != nil {
		if visual, ok := e.visuals.Get(npc.Name); ok {
			s.NPC = e.npcSprite(npc, visual)
		}
	}
	return s
}

func (e *Engine) npcSprite(npc *world.Placed, visual string) *Sprite {
	sp := &Sprite{Name: npc.Name, Visual: visual, Dst: npc.Rect}

	switch npc.Name {
	case dialogue.NameFlame:
		sp.Frame = int(e.tick%FlamePeriod) * FlameFrames / FlamePeriod
	case dialogue.NameKaboom:
		if e.kaboomOn && e.tick >= e.kaboomT0 {
			sp.Frame = min(int(e.tick-e.kaboomT0)*KaboomFrames/KaboomDuration, KaboomFrames-1)
		}
	}

	// the dragon's rectangle is its patrol area; it is drawn at double size, following
	// the player horizontally along the bottom of the area
	if npc.Name == dialogue.NameDragon || npc.Name == dialogue.NameKaboom {
		size := 2.0 * world.TileSize
		x := min(max(npc.Rect.X, e.player.Pos.X), npc.Rect.Right()-size)
		sp.Dst = geom.Rect{X: x, Y: npc.Rect.Bottom() - size, W: size, H: size}
	}
	return sp
}
