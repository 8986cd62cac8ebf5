package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/garden-quest/pkg/dialogue"
	"github.com/jwebster45206/garden-quest/pkg/tileset"
	"github.com/jwebster45206/garden-quest/pkg/tmx"
	"github.com/jwebster45206/garden-quest/pkg/world"
)

// WorldValidator loads a world and every room in it and collects the problems found.
type WorldValidator struct {
	fsys     fs.FS
	manifest string
	logger   *slog.Logger

	errors   []string
	warnings []string
	report   []string
}

// NewWorldValidator validates the manifest stored at manifest in fsys.
func NewWorldValidator(fsys fs.FS, manifest string, logger *slog.Logger) *WorldValidator {
	return &WorldValidator{fsys: fsys, manifest: manifest, logger: logger}
}

var titleCaser = cases.Title(language.English)

// Validate runs every check. The returned error lists all problems; warnings never fail.
func (v *WorldValidator) Validate(ctx context.Context) error {
	v.errors, v.warnings, v.report = nil, nil, nil

	w, err := world.LoadFS(v.fsys, v.manifest)
	if err != nil {
		return fmt.Errorf("manifest %s is invalid: %w", v.manifest, err)
	}

	for _, name := range w.Items.Keys() {
		v.validateIDFormat("item", name)
	}
	for _, name := range w.Visuals.Keys() {
		v.validateIDFormat("visual", name)
		if dialogue.KindOf(name) == dialogue.Unknown {
			v.addWarning(fmt.Sprintf("visual '%s' belongs to no scripted NPC", name))
		}
	}

	loader := tmx.NewLoader(v.fsys, w, tileset.New(), v.logger)
	levels := make(map[world.RoomID]*world.Level, w.Graph.Len())
	for _, room := range w.Graph.Rooms() {
		v.validateIDFormat("room", room.Name)

		level, err := loader.Load(ctx, room.ID, nil)
		if err != nil {
			v.addError(fmt.Sprintf("room '%s': %v", room.Name, err))
			continue
		}
		levels[room.ID] = level
		v.validateLevel(room, level, loader.Catalog())
	}

	v.validateWarps(w, levels)
	if level, ok := levels[w.Start]; ok && level.Spawn == nil {
		v.addWarning("start room has no spawn point")
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", v.manifest, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *WorldValidator) validateLevel(room world.Room, level *world.Level, c *tileset.Catalog) {
	for _, d := range []world.Direction{world.North, world.South, world.East, world.West} {
		open := openEdgeCells(level, c, d)
		switch {
		case room.Exit(d) != world.NoRoom && open == 0:
			v.addError(fmt.Sprintf("room '%s': %s exit is walled off", room.Name, d))
		case room.Exit(d) == world.NoRoom && open > 0:
			v.addWarning(fmt.Sprintf("room '%s': %s edge is open but leads nowhere", room.Name, d))
		}
	}

	if gid, ok := tileOutsideImage(level, c); ok {
		v.addError(fmt.Sprintf("room '%s': tile %d lies outside the tileset image", room.Name, gid))
	}

	if level.NPC != nil && dialogue.KindOf(level.NPC.Name) == dialogue.Unknown {
		v.addError(fmt.Sprintf("room '%s': NPC '%s' has no script", room.Name, level.NPC.Name))
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d layer(s)", len(level.Layers)))
	if level.Item != nil {
		parts = append(parts, "item "+titleCaser.String(level.Item.Name))
	}
	if level.NPC != nil {
		parts = append(parts, "npc "+titleCaser.String(level.NPC.Name))
	}
	if level.Warp != nil {
		parts = append(parts, "warp "+titleCaser.String(level.Warp.Name))
	}
	if level.Spawn != nil {
		parts = append(parts, fmt.Sprintf("spawn (%g, %g)", level.Spawn.X, level.Spawn.Y))
	}
	v.report = append(v.report, fmt.Sprintf("%s: %s", titleCaser.String(room.Name), strings.Join(parts, ", ")))
}

func (v *WorldValidator) validateWarps(w *world.World, levels map[world.RoomID]*world.Level) {
	used := make(map[string]bool)
	for _, level := range levels {
		if level.Warp != nil {
			used[level.Warp.Name] = true
		}
	}
	for _, name := range w.Graph.WarpNames() {
		v.validateIDFormat("warp", name)
		if !used[name] {
			v.addWarning(fmt.Sprintf("warp '%s' is never placed", name))
			continue
		}
		to, _ := w.Graph.Warp(name)
		if level, ok := levels[to]; ok && level.Spawn == nil {
			r, _ := w.Graph.Room(to)
			v.addWarning(fmt.Sprintf("warp '%s' leads to room '%s' which has no spawn point", name, r.Name))
		}
	}
}

// openEdgeCells counts the cells along edge d that no layer blocks.
func openEdgeCells(level *world.Level, c *tileset.Catalog, d world.Direction) int {
	open := 0
	blocked := func(row, col int) bool {
		for k := range level.Layers {
			if c.IsBlocking(level.Tile(k, row, col) - 1) {
				return true
			}
		}
		return false
	}
	switch d {
	case world.North, world.South:
		row := 0
		if d == world.South {
			row = world.Rows - 1
		}
		for col := range world.Cols {
			if !blocked(row, col) {
				open++
			}
		}
	default:
		col := 0
		if d == world.East {
			col = world.Cols - 1
		}
		for row := range world.Rows {
			if !blocked(row, col) {
				open++
			}
		}
	}
	return open
}

// tileOutsideImage returns the first tile id that the tileset image cannot supply.
func tileOutsideImage(level *world.Level, c *tileset.Catalog) (int, bool) {
	for k := range level.Layers {
		for row := range world.Rows {
			for col := range world.Cols {
				gid := level.Tile(k, row, col)
				if gid == 0 {
					continue
				}
				if _, ok := c.SourceRect(gid - 1); !ok {
					return gid, true
				}
			}
		}
	}
	return 0, false
}

func (v *WorldValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *WorldValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *WorldValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, "  - "+msg)
}

// WriteReport prints the per-room summary and any warnings.
func (v *WorldValidator) WriteReport(w io.Writer) {
	for _, line := range v.report {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if len(v.warnings) > 0 {
		fmt.Fprintf(w, "Warnings:\n%s\n", strings.Join(v.warnings, "\n"))
	}
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
