package sim

import (
	"math"

	"github.com/jwebster45206/garden-quest/pkg/geom"
	"github.com/jwebster45206/garden-quest/pkg/world"
)

// readAxis combines the directional controls into a vector clamped to [-1, 1].
func (e *Engine) readAxis() geom.Point {
	var a geom.Point
	a.Y = geom.Clamp(a.Y+e.controls.Analog(ControlDown), -1, 1)
	a.Y = geom.Clamp(a.Y-e.controls.Analog(ControlUp), -1, 1)
	a.X = geom.Clamp(a.X+e.controls.Analog(ControlRight), -1, 1)
	a.X = geom.Clamp(a.X-e.controls.Analog(ControlLeft), -1, 1)
	return a
}

// face updates facing, walk frame and hotspot from the axis.
func (e *Engine) face(a geom.Point) {
	p := &e.player
	if a.X != 0 || a.Y != 0 {
		phase := e.tick - min(e.walkT0, e.tick)
		if math.Abs(a.Y) > math.Abs(a.X) {
			if a.Y < 0 {
				p.Facing = FacingUp
			} else {
				p.Facing = FacingDown
			}
			// vertical sprites alternate mirroring to double the frame count
			p.Mirror = phase%(2*WalkPeriod) < WalkPeriod
		} else {
			p.Facing = FacingSide
			p.Mirror = a.X < 0
		}
		p.Frame = 0
		if phase%WalkPeriod < WalkPeriod/2 {
			p.Frame = 1
		}
	} else {
		p.Frame = 0
		e.walkT0 = e.tick
	}
	p.Hotspot = hotspot(p.Box(), p.Facing, p.Mirror)
}

// hotspot places the interaction rectangle flush against box on the facing side.
func hotspot(box geom.Rect, f Facing, mirror bool) geom.Rect {
	r := geom.Rect{W: HotspotSize, H: HotspotSize}
	switch f {
	case FacingSide:
		r.Y = box.Y - (r.H-box.H)/2
		if mirror {
			r.X = box.X - r.W
		} else {
			r.X = box.Right()
		}
	case FacingUp:
		r.X = box.X - (r.W-box.W)/2
		r.Y = box.Y - r.H
	default:
		r.X = box.X - (r.W-box.W)/2
		r.Y = box.Bottom()
	}
	return r
}

type probeKind int

const (
	probeFree probeKind = iota
	probeBlocked
	probeTransition
)

type probeResult struct {
	kind  probeKind
	room  world.RoomID
	warp  bool
	shift float64 // added to the moving coordinate when entering room
}

// move applies one frame of motion, one axis at a time.
func (e *Engine) move(a geom.Point, delta float64) {
	p := e.player.Pos
	step := delta * Speed
	nx := p.X + step*a.X
	ny := p.Y + step*a.Y

	rx := e.probe(geom.Point{X: nx, Y: p.Y}, true)
	ry := e.probe(geom.Point{X: p.X, Y: ny}, false)

	next := p
	var req *pending
	var target geom.Point

	switch rx.kind {
	case probeFree:
		next.X = nx
	case probeTransition:
		req = &pending{room: rx.room, warp: rx.warp}
		target.X = nx + rx.shift
	}

	switch ry.kind {
	case probeFree:
		next.Y = ny
	case probeTransition:
		if req != nil {
			e.logger.Debug("Dropped second transition", "room", ry.room, "pending", req.room)
			break
		}
		req = &pending{room: ry.room, warp: ry.warp}
		target.Y = ny + ry.shift
	}

	e.player.Pos = next
	if req == nil {
		return
	}

	if rx.kind != probeTransition {
		target.X = next.X
	}
	if rx.kind == probeTransition || ry.kind != probeTransition {
		target.Y = next.Y
	}
	req.pos = &target
	e.next = req
	e.logger.Debug("Requested transition", "room", req.room, "warp", req.warp)
}

// probe tests the collision box at p against the room content. Warp first, then the
// item, then the NPC, then the box corners against edges and tiles.
func (e *Engine) probe(p geom.Point, horizontal bool) probeResult {
	lvl := e.level
	box := CollisionBox.Offset(p.X, p.Y)

	if lvl.Warp != nil && box.Overlaps(lvl.Warp.Rect) {
		return probeResult{kind: probeTransition, room: lvl.Warp.To, warp: true}
	}
	if lvl.Item != nil && box.Overlaps(lvl.Item.Rect) {
		return probeResult{kind: probeBlocked}
	}
	if e.npcSolid() && box.Overlaps(lvl.NPC.Rect) {
		return probeResult{kind: probeBlocked}
	}

	graph := e.world.Graph
	x0, y0 := int(box.X), int(box.Y)
	for i := 0; i < 2; i++ {
		x := x0 + i*int(box.W)
		for j := 0; j < 2; j++ {
			y := y0 + j*int(box.H)

			if horizontal {
				if x < 0 {
					if to, ok := graph.Neighbor(lvl.Room, world.West); ok {
						return probeResult{kind: probeTransition, room: to, shift: world.Width - box.W}
					}
				} else if x >= world.Width {
					if to, ok := graph.Neighbor(lvl.Room, world.East); ok {
						return probeResult{kind: probeTransition, room: to, shift: -(world.Width - box.W)}
					}
				}
			} else {
				if y < 0 {
					if to, ok := graph.Neighbor(lvl.Room, world.North); ok {
						return probeResult{kind: probeTransition, room: to, shift: world.Height - box.H}
					}
				} else if y >= world.Height {
					if to, ok := graph.Neighbor(lvl.Room, world.South); ok {
						return probeResult{kind: probeTransition, room: to, shift: -(world.Height - box.H)}
					}
				}
			}

			if x < 0 || x >= world.Width || y < 0 || y >= world.Height {
				return probeResult{kind: probeBlocked}
			}
			if e.tileBlocks(y/world.TileSize, x/world.TileSize) {
				return probeResult{kind: probeBlocked}
			}
		}
	}
	return probeResult{kind: probeFree}
}

// tileBlocks reports whether any layer holds a blocking tile at (row, col).
func (e *Engine) tileBlocks(row, col int) bool {
	c := e.loader.Catalog()
	for k := range e.level.Layers {
		if c.IsBlocking(e.level.Tile(k, row, col) - 1) {
			return true
		}
	}
	return false
}

// npcSolid reports whether the room's NPC has a visual and therefore blocks movement.
func (e *Engine) npcSolid() bool {
	if e.level.NPC == nil {
		return false
	}
	return e.visuals.Has(e.level.NPC.Name)
}
