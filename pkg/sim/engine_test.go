package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/garden-quest/pkg/geom"
	"github.com/jwebster45206/garden-quest/pkg/tmx"
	"github.com/jwebster45206/garden-quest/pkg/world"
)

func TestEngine_FirstLoadAppliesSpawn(t *testing.T) {
	h := newHarness(t, map[string]func() *world.Level{
		"center": func() *world.Level {
			l := emptyRoom()
			l.Spawn = &geom.Point{X: 128, Y: 100}
			return l
		},
	})

	_, pending := h.engine.Pending()
	assert.True(t, pending)
	assert.Nil(t, h.engine.Level())

	h.step(0)

	assert.Equal(t, h.room("center"), h.engine.Room())
	assert.Equal(t, "center", h.engine.RoomName())
	assert.Equal(t, geom.Point{X: 121, Y: 82}, h.engine.Player().Pos)
	_, pending = h.engine.Pending()
	assert.False(t, pending)
	assert.Equal(t, []EventKind{EventRoomEntered}, h.sink.kinds())
	assert.Equal(t, h.engine.ID(), h.sink.events[0].Session)
	assert.Equal(t, AmbientVolume, h.audio.volume())
}

func TestEngine_SlidesAlongWall(t *testing.T) {
	h := newHarness(t, map[string]func() *world.Level{"center": wallAtColumn(10)})
	h.place("center", geom.Point{X: 146.5, Y: 80})

	h.controls.hold(ControlRight, 1)
	h.controls.hold(ControlUp, 1)
	h.step(16)

	pos := h.engine.Player().Pos
	assert.Equal(t, 146.5, pos.X, "wall blocks x")
	assert.InDelta(t, 78, pos.Y, 1e-9, "y still moves")

	h.controls.letGo()
	h.controls.hold(ControlRight, 1)
	h.step(16)
	assert.Equal(t, 146.5, h.engine.Player().Pos.X)
	assert.InDelta(t, 78, h.engine.Player().Pos.Y, 1e-9)

	h.controls.letGo()
	h.controls.hold(ControlLeft, 1)
	h.step(16)
	assert.InDelta(t, 144.5, h.engine.Player().Pos.X, 1e-9)
}

func TestEngine_AxisClamp(t *testing.T) {
	h := newHarness(t, nil)
	h.place("center", geom.Point{X: 100, Y: 80})

	h.controls.hold(ControlDown, 1)
	h.controls.hold(ControlUp, 0.5)
	h.controls.hold(ControlRight, 3)
	h.step(16)

	pos := h.engine.Player().Pos
	assert.InDelta(t, 102, pos.X, 1e-9, "clamped to 1")
	assert.InDelta(t, 81, pos.Y, 1e-9, "down minus half up")
}

func TestEngine_EdgeTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    geom.Point
		control Control
		ms      uint64
		to      string
		want    geom.Point
	}{
		{
			name:    "west",
			from:    geom.Point{X: 0, Y: 80},
			control: ControlLeft,
			ms:      20,
			to:      "west",
			want:    geom.Point{X: -2.5 + world.Width - CollisionBox.W, Y: 80},
		},
		{
			name:    "north",
			from:    geom.Point{X: 100, Y: -13},
			control: ControlUp,
			ms:      20,
			to:      "north",
			want:    geom.Point{X: 100, Y: -15.5 + world.Height - CollisionBox.H},
		},
		{
			name:    "south",
			from:    geom.Point{X: 100, Y: 153},
			control: ControlDown,
			ms:      20,
			to:      "south",
			want:    geom.Point{X: 100, Y: 155.5 - (world.Height - CollisionBox.H)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spawned := func() *world.Level {
				l := emptyRoom()
				l.Spawn = &geom.Point{X: 50, Y: 50}
				return l
			}
			h := newHarness(t, map[string]func() *world.Level{tt.to: spawned})
			h.place("center", tt.from)

			h.controls.hold(tt.control, 1)
			h.step(tt.ms)

			room, ok := h.engine.Pending()
			require.True(t, ok)
			assert.Equal(t, h.room(tt.to), room)
			assert.Equal(t, tt.from, h.engine.Player().Pos, "moving axis waits for the new room")
			assert.Equal(t, h.room("center"), h.engine.Room())

			h.controls.letGo()
			h.step(16)

			assert.Equal(t, h.room(tt.to), h.engine.Room())
			pos := h.engine.Player().Pos
			assert.InDelta(t, tt.want.X, pos.X, 1e-9)
			assert.InDelta(t, tt.want.Y, pos.Y, 1e-9, "edge entry ignores the spawn point")
		})
	}
}

func TestEngine_EdgeWithoutNeighborBlocks(t *testing.T) {
	tests := []struct {
		name    string
		room    string
		from    geom.Point
		control Control
	}{
		{name: "west of west", room: "west", from: geom.Point{X: 0, Y: 80}, control: ControlLeft},
		{name: "east of center", room: "center", from: geom.Point{X: 242, Y: 80}, control: ControlRight},
		{name: "north of cave", room: "cave", from: geom.Point{X: 100, Y: -13}, control: ControlUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.place(tt.room, tt.from)

			h.controls.hold(tt.control, 1)
			h.step(20)

			_, ok := h.engine.Pending()
			assert.False(t, ok)
			assert.Equal(t, tt.from, h.engine.Player().Pos)
		})
	}
}

func TestEngine_Warp(t *testing.T) {
	h := newHarness(t, map[string]func() *world.Level{
		"center": func() *world.Level {
			l := emptyRoom()
			l.Warp = &world.Warp{Rect: geom.Rect{X: 150, Y: 80, W: 16, H: 16}, Name: "cave", To: 4}
			return l
		},
		"cave": func() *world.Level {
			l := emptyRoom()
			l.Spawn = spawnFor(geom.Point{X: 50, Y: 50})
			return l
		},
	})
	require.Equal(t, world.RoomID(4), h.room("cave"))
	h.place("center", geom.Point{X: 130, Y: 72})

	h.controls.hold(ControlRight, 1)
	h.step(40)
	_, ok := h.engine.Pending()
	assert.False(t, ok, "not there yet")

	h.step(80)
	room, ok := h.engine.Pending()
	require.True(t, ok)
	assert.Equal(t, h.room("cave"), room)

	h.controls.letGo()
	h.step(16)
	assert.Equal(t, h.room("cave"), h.engine.Room())
	assert.Equal(t, geom.Point{X: 50, Y: 50}, h.engine.Player().Pos, "warp entry uses the spawn point")
}

func TestEngine_WarpBeforeEdge(t *testing.T) {
	h := newHarness(t, map[string]func() *world.Level{
		"center": func() *world.Level {
			l := emptyRoom()
			l.Warp = &world.Warp{Rect: geom.Rect{X: -10, Y: 90, W: 10, H: 20}, Name: "cave", To: 4}
			return l
		},
	})
	h.place("center", geom.Point{X: 1, Y: 80})

	h.controls.hold(ControlLeft, 1)
	h.step(40)

	room, ok := h.engine.Pending()
	require.True(t, ok)
	assert.Equal(t, h.room("cave"), room, "warp wins over the west exit")
}

func TestEngine_CrossAxisConflict(t *testing.T) {
	h := newHarness(t, map[string]func() *world.Level{
		"center": func() *world.Level {
			l := emptyRoom()
			l.Warp = &world.Warp{Rect: geom.Rect{X: 114, Y: 0, W: 10, H: 30}, Name: "cave", To: 4}
			return l
		},
		"cave": func() *world.Level {
			l := emptyRoom()
			l.Spawn = spawnFor(geom.Point{X: 60, Y: 60})
			return l
		},
	})
	h.place("center", geom.Point{X: 100, Y: -13})

	h.controls.hold(ControlRight, 1)
	h.controls.hold(ControlUp, 1)
	h.step(20)

	room, ok := h.engine.Pending()
	require.True(t, ok)
	assert.Equal(t, h.room("cave"), room, "x is resolved first")
	assert.Equal(t, geom.Point{X: 100, Y: -13}, h.engine.Player().Pos, "y exit is treated as blocked")

	h.controls.letGo()
	h.step(16)
	assert.Equal(t, h.room("cave"), h.engine.Room())
	assert.Equal(t, geom.Point{X: 60, Y: 60}, h.engine.Player().Pos)
}

func TestEngine_FreeAxisCommitsDuringTransition(t *testing.T) {
	h := newHarness(t, nil)
	h.place("center", geom.Point{X: 0, Y: 80})

	h.controls.hold(ControlLeft, 1)
	h.controls.hold(ControlDown, 1)
	h.step(20)

	_, ok := h.engine.Pending()
	require.True(t, ok)
	pos := h.engine.Player().Pos
	assert.Equal(t, 0.0, pos.X)
	assert.InDelta(t, 82.5, pos.Y, 1e-9)

	h.controls.letGo()
	h.step(16)
	pos = h.engine.Player().Pos
	assert.InDelta(t, 241.5, pos.X, 1e-9)
	assert.InDelta(t, 82.5, pos.Y, 1e-9)
}

func TestEngine_SolidObjects(t *testing.T) {
	tests := []struct {
		name    string
		level   func() *world.Level
		blocked bool
	}{
		{
			name: "item",
			level: func() *world.Level {
				l := emptyRoom()
				l.Item = &world.Placed{Rect: geom.Rect{X: 150, Y: 86, W: 16, H: 16}, Name: "key"}
				return l
			},
			blocked: true,
		},
		{
			name: "npc with visual",
			level: func() *world.Level {
				l := emptyRoom()
				l.NPC = &world.Placed{Rect: geom.Rect{X: 150, Y: 86, W: 16, H: 16}, Name: "elf"}
				return l
			},
			blocked: true,
		},
		{
			name: "npc without visual",
			level: func() *world.Level {
				l := emptyRoom()
				l.NPC = &world.Placed{Rect: geom.Rect{X: 150, Y: 86, W: 16, H: 16}, Name: "garden"}
				return l
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, map[string]func() *world.Level{"center": tt.level})
			h.place("center", geom.Point{X: 130, Y: 72})

			h.controls.hold(ControlRight, 1)
			h.step(80)

			if tt.blocked {
				assert.Equal(t, 130.0, h.engine.Player().Pos.X)
			} else {
				assert.InDelta(t, 140, h.engine.Player().Pos.X, 1e-9)
			}
		})
	}
}

func TestEngine_Facing(t *testing.T) {
	h := newHarness(t, nil)
	h.place("center", geom.Point{X: 100, Y: 20})

	h.controls.hold(ControlDown, 1)
	h.step(16)
	p := h.engine.Player()
	assert.Equal(t, FacingDown, p.Facing)
	assert.True(t, p.Mirror)
	assert.Equal(t, 1, p.Frame)

	h.step(200)
	p = h.engine.Player()
	assert.Equal(t, 0, p.Frame)
	assert.True(t, p.Mirror)

	h.step(200)
	p = h.engine.Player()
	assert.False(t, p.Mirror, "second half of the mirror period")

	h.controls.letGo()
	h.controls.hold(ControlLeft, 1)
	h.controls.hold(ControlUp, 0.5)
	h.step(16)
	p = h.engine.Player()
	assert.Equal(t, FacingSide, p.Facing)
	assert.True(t, p.Mirror, "left is mirrored right")
	box := CollisionBox.Offset(p.Pos.X+2, p.Pos.Y+1)
	assert.Equal(t, geom.Rect{X: box.X - 16, Y: box.Y - 4, W: 16, H: 16}, p.Hotspot, "hotspot from the position before the move")

	h.controls.letGo()
	h.controls.hold(ControlUp, 1)
	h.step(16)
	p = h.engine.Player()
	assert.Equal(t, FacingUp, p.Facing)

	h.controls.letGo()
	h.step(16)
	p = h.engine.Player()
	assert.Equal(t, 0, p.Frame)
	assert.Equal(t, FacingUp, p.Facing, "idle keeps the last facing")
}

func TestEngine_LoadErrorIsFatal(t *testing.T) {
	h := newHarness(t, nil)
	h.loader.err = tmx.ErrUnknownWarp

	err := h.engine.Update(context.Background(), Frame{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tmx.ErrUnknownWarp))
	assert.Nil(t, h.engine.Level())
}

func TestEngine_TeleportUnknownRoom(t *testing.T) {
	h := newHarness(t, nil)
	err := h.engine.Teleport(world.RoomID(42), nil)
	assert.ErrorIs(t, err, world.ErrUnknownRoom)
}
