package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/garden-quest/assets"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestValidate_EmbeddedWorld(t *testing.T) {
	v := NewWorldValidator(assets.FS, assets.Manifest, testLogger())
	require.NoError(t, v.Validate(context.Background()))
	assert.Empty(t, v.warnings)

	var out bytes.Buffer
	v.WriteReport(&out)
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 7)
	assert.Contains(t, out.String(), "Fountain: 2 layer(s), item Water, npc Bottle, spawn (128, 136)")
	assert.Contains(t, out.String(), "Elf: 2 layer(s), npc Elf, warp Cave")
}

func fill(gid string) string {
	row := strings.TrimSuffix(strings.Repeat(gid+",", 16), ",")
	return "\n" + strings.TrimSuffix(strings.Repeat(row+",\n", 11), ",\n") + "\n"
}

func room(data, objects string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.4" orientation="orthogonal" width="16" height="11" tilewidth="16" tileheight="16">
 <tileset firstgid="1" source="overworld.tsx"/>
 <layer name="ground" width="16" height="11"><data encoding="csv">` + data + `</data></layer>
 <objectgroup name="objects">` + objects + `</objectgroup>
</map>
`
}

func brokenWorld() fstest.MapFS {
	return fstest.MapFS{
		"world.yaml": {Data: []byte(`
start: a
rooms:
  - {name: a, file: a.tmx}
  - {name: b, file: b.tmx}
  - {name: c, file: missing.tmx}
  - {name: d, file: d.tmx}
links:
  - {from: a, dir: east, to: b}
warps:
  w: b
visuals:
  ghost: ghost.png
`)},
		"overworld.tsx": {Data: []byte(`<?xml version="1.0" encoding="UTF-8"?>
<tileset name="overworld" tilewidth="16" tileheight="16" columns="40">
 <image source="overworld.png" width="720" height="648"/>
 <tile id="6" type="block"/>
</tileset>
`)},
		"a.tmx": {Data: []byte(room(fill("7"), `<object name="ghost" type="npc" x="32" y="32" width="16" height="16"/>`))},
		"b.tmx": {Data: []byte(room(fill("1"), ""))},
		"d.tmx": {Data: []byte(room(fill("5000"), ""))},
	}
}

func TestValidate_BrokenWorld(t *testing.T) {
	v := NewWorldValidator(brokenWorld(), "world.yaml", testLogger())
	err := v.Validate(context.Background())
	require.Error(t, err)

	for _, want := range []string{
		"room 'a': east exit is walled off",
		"room 'a': NPC 'ghost' has no script",
		"room 'c':",
		"room 'd': tile 5000 lies outside the tileset image",
	} {
		assert.Contains(t, err.Error(), want)
	}

	warnings := strings.Join(v.warnings, "\n")
	for _, want := range []string{
		"visual 'ghost' belongs to no scripted NPC",
		"room 'b': north edge is open but leads nowhere",
		"room 'b': east edge is open but leads nowhere",
		"warp 'w' is never placed",
		"start room has no spawn point",
	} {
		assert.Contains(t, warnings, want)
	}
	assert.NotContains(t, warnings, "room 'b': west edge")
	assert.NotContains(t, err.Error(), "room 'b': tile")
}

func TestValidate_BadManifest(t *testing.T) {
	fsys := fstest.MapFS{"world.yaml": {Data: []byte("start: a\nrooms: []\n")}}
	err := NewWorldValidator(fsys, "world.yaml", testLogger()).Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest world.yaml is invalid")
}

func TestIsValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"fountain", true},
		{"chest_open", true},
		{"a", true},
		{"room2", true},
		{"Fountain", false},
		{"dark-cave", false},
		{"trailing_", false},
		{"2rooms", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, isValidID(tt.id))
		})
	}
}
