package sim

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/garden-quest/pkg/dialogue"
	"github.com/jwebster45206/garden-quest/pkg/geom"
	"github.com/jwebster45206/garden-quest/pkg/tileset"
	"github.com/jwebster45206/garden-quest/pkg/tmx"
	"github.com/jwebster45206/garden-quest/pkg/world"
)

// wallTile is a blocking tile id as stored in grids (1-based).
const wallTile = 7

type fakeLoader struct {
	levels  map[world.RoomID]func() *world.Level
	catalog *tileset.Catalog
	loads   []world.RoomID
	err     error
}

func (f *fakeLoader) Load(_ context.Context, room world.RoomID, consumed tmx.Consumed) (*world.Level, error) {
	f.loads = append(f.loads, room)
	if f.err != nil {
		return nil, f.err
	}
	mk, ok := f.levels[room]
	if !ok {
		return &world.Level{Room: room, Layers: []world.Grid{{}}}, nil
	}
	lvl := mk()
	lvl.Room = room
	if lvl.Item != nil && consumed.Has(lvl.Item.Name) {
		lvl.Item = nil
	}
	if lvl.NPC != nil && consumed.Has(lvl.NPC.Name) {
		lvl.NPC = nil
	}
	return lvl, nil
}

func (f *fakeLoader) Catalog() *tileset.Catalog {
	return f.catalog
}

type fakeControls struct {
	analog   map[Control]float64
	released map[Control]bool
}

func newFakeControls() *fakeControls {
	return &fakeControls{
		analog:   map[Control]float64{},
		released: map[Control]bool{},
	}
}

func (c *fakeControls) Analog(k Control) float64 {
	return c.analog[k]
}

func (c *fakeControls) Released(k Control) bool {
	r := c.released[k]
	c.released[k] = false
	return r
}

func (c *fakeControls) hold(k Control, v float64) {
	c.analog[k] = v
}

func (c *fakeControls) press(k Control) {
	c.released[k] = true
}

func (c *fakeControls) letGo() {
	clear(c.analog)
}

type fakeAudio struct {
	sounds  []dialogue.Sound
	volumes []float64
}

func (a *fakeAudio) PlaySound(s dialogue.Sound) {
	a.sounds = append(a.sounds, s)
}

func (a *fakeAudio) SetMusicVolume(v float64) {
	a.volumes = append(a.volumes, v)
}

func (a *fakeAudio) volume() float64 {
	if len(a.volumes) == 0 {
		return 0
	}
	return a.volumes[len(a.volumes)-1]
}

type recordingSink struct {
	events []Event
}

func (s *recordingSink) Emit(e Event) {
	s.events = append(s.events, e)
}

func (s *recordingSink) kinds() []EventKind {
	out := make([]EventKind, len(s.events))
	for i, e := range s.events {
		out[i] = e.Kind
	}
	return out
}

// harness drives an engine frame by frame.
type harness struct {
	t        *testing.T
	engine   *Engine
	world    *world.World
	loader   *fakeLoader
	controls *fakeControls
	audio    *fakeAudio
	sink     *recordingSink
	tick     uint64
}

// Rooms: center has west, north and south neighbors; west has nothing further west.
func testWorld(t *testing.T) *world.World {
	t.Helper()
	m := &world.Manifest{
		Start: "center",
		Rooms: []world.RoomSpec{
			{Name: "center", File: "center.tmx"},
			{Name: "west", File: "west.tmx"},
			{Name: "north", File: "north.tmx"},
			{Name: "south", File: "south.tmx"},
			{Name: "cave", File: "cave.tmx"},
		},
		Links: []world.LinkSpec{
			{From: "center", Dir: "west", To: "west"},
			{From: "center", Dir: "north", To: "north"},
			{From: "center", Dir: "south", To: "south"},
		},
		Warps: map[string]string{"cave": "cave"},
		Items: map[string]string{
			"cane": "cane.png", "key": "key.png", "bottle": "bottle.png", "water": "water.png",
			"heart": "heart.png", "staff": "staff.png", "spell": "spell.png",
		},
		Visuals: map[string]string{
			"elf": "elf.png", "dragon": "dragon.png", "wizard": "wizard.png",
			"bottle": "chest.png", "kaboom": "kaboom.png", "flame": "flame.png",
		},
	}
	w, err := m.Build()
	require.NoError(t, err)
	return w
}

func newHarness(t *testing.T, levels map[string]func() *world.Level) *harness {
	t.Helper()
	w := testWorld(t)

	catalog := tileset.New()
	catalog.Init(tileset.Meta{Source: "test.tsx", Columns: 40, TileWidth: 16, TileHeight: 16, Margin: 1, Spacing: 2})
	catalog.SetBlocking(wallTile - 1)

	loader := &fakeLoader{levels: map[world.RoomID]func() *world.Level{}, catalog: catalog}
	for name, mk := range levels {
		id, ok := w.Graph.Lookup(name)
		require.True(t, ok, name)
		loader.levels[id] = mk
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	controls := newFakeControls()
	audio := &fakeAudio{}
	sink := &recordingSink{}
	e := New(w, loader, controls, logger).WithAudio(audio).WithEvents(sink)

	return &harness{t: t, engine: e, world: w, loader: loader, controls: controls, audio: audio, sink: sink}
}

func (h *harness) room(name string) world.RoomID {
	h.t.Helper()
	id, ok := h.world.Graph.Lookup(name)
	require.True(h.t, ok, name)
	return id
}

// step runs one frame of ms milliseconds.
func (h *harness) step(ms uint64) {
	h.t.Helper()
	h.tick += ms
	require.NoError(h.t, h.engine.Update(context.Background(), Frame{Delta: float64(ms) / 1000, Tick: h.tick}))
}

// place puts the player at pos in room, effective after the next step.
func (h *harness) place(room string, pos geom.Point) {
	h.t.Helper()
	if h.engine.Level() == nil {
		h.step(0)
	}
	require.NoError(h.t, h.engine.Teleport(h.room(room), &pos))
	h.step(0)
}

// act presses and releases the action control for one frame.
func (h *harness) act() {
	h.t.Helper()
	h.controls.press(ControlAction)
	h.step(16)
}

// spawnFor returns the spawn point that puts the player at pos.
func spawnFor(pos geom.Point) *geom.Point {
	return &geom.Point{
		X: pos.X + CollisionBox.W/2 + CollisionBox.X,
		Y: pos.Y + CollisionBox.H/2 + CollisionBox.Y,
	}
}

func emptyRoom() *world.Level {
	return &world.Level{Layers: []world.Grid{{}}}
}

// wallAtColumn returns a level with a full-height wall in column col.
func wallAtColumn(col int) func() *world.Level {
	return func() *world.Level {
		var g world.Grid
		for row := range world.Rows {
			g[row][col] = wallTile
		}
		return &world.Level{Layers: []world.Grid{{}, g}}
	}
}

// below returns a tile-sized rect under the hotspot of a player at pos facing down.
func below(pos geom.Point) geom.Rect {
	box := CollisionBox.Offset(pos.X, pos.Y)
	return geom.Rect{X: box.X - 2, Y: box.Bottom() + 4, W: 16, H: 16}
}
