package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/garden-quest/pkg/anim"
	"github.com/jwebster45206/garden-quest/pkg/dialogue"
	"github.com/jwebster45206/garden-quest/pkg/geom"
	"github.com/jwebster45206/garden-quest/pkg/sim"
	"github.com/jwebster45206/garden-quest/pkg/tileset"
	"github.com/jwebster45206/garden-quest/pkg/world"
)

type glyphKind int

const (
	glyphEmpty glyphKind = iota
	glyphFloor
	glyphWall
	glyphAnimated
	glyphItem
	glyphNPC
	glyphPlayer
)

type glyph struct {
	r    rune
	kind glyphKind
}

// glyphGrid is the room as one glyph per tile.
type glyphGrid [world.Rows][world.Cols]glyph

var animatedRunes = []rune{'~', '≈'}

var (
	floorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	wallStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	animatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")) // teal
	itemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	npcStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	playerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

var titleCaser = cases.Title(language.English)

// buildGrid lays out the snapshot's tiles and sprites. The topmost non-empty layer
// decides a tile's glyph.
func buildGrid(s sim.Snapshot, level *world.Level, c *tileset.Catalog) glyphGrid {
	var g glyphGrid
	if level == nil {
		return g
	}

	for row := range world.Rows {
		for col := range world.Cols {
			g[row][col] = tileGlyph(s, level, c, row, col)
		}
	}

	if s.Item != nil && !s.Item.Hidden {
		stamp(&g, s.Item.Dst, glyph{r: initial(s.Item.Name, false), kind: glyphItem})
	}
	if s.NPC != nil {
		stamp(&g, s.NPC.Dst, glyph{r: npcRune(s.NPC), kind: glyphNPC})
	}

	box := s.Player.Box()
	row, col := cellOf(box.Y+box.H/2), cellOf(box.X+box.W/2)
	if inGrid(row, col) {
		g[row][col] = glyph{r: '@', kind: glyphPlayer}
	}
	return g
}

func tileGlyph(s sim.Snapshot, level *world.Level, c *tileset.Catalog, row, col int) glyph {
	for k := len(level.Layers) - 1; k >= 0; k-- {
		base := level.Tile(k, row, col) - 1
		if base < 0 {
			continue
		}
		if a, ok := c.Animation(base); ok {
			shown := base
			if k < len(s.Layers) {
				shown = s.Layers[k][row][col]
			}
			return glyph{r: animatedRunes[frameIndex(a.Frames, shown)%len(animatedRunes)], kind: glyphAnimated}
		}
		if c.IsBlocking(base) {
			return glyph{r: '#', kind: glyphWall}
		}
		return glyph{r: '.', kind: glyphFloor}
	}
	return glyph{r: ' ', kind: glyphEmpty}
}

func npcRune(sp *sim.Sprite) rune {
	switch {
	case sp.Name == dialogue.NameKaboom:
		return []rune{'*', '+'}[sp.Frame%2]
	case sp.Name == dialogue.NameFlame:
		return []rune{'F', 'f'}[sp.Frame%2]
	case sp.Visual == dialogue.VisualChestOpen:
		return 'c'
	}
	return initial(sp.Name, true)
}

func frameIndex(frames []anim.Frame, tile int) int {
	for i, f := range frames {
		if f.TileID == tile {
			return i
		}
	}
	return 0
}

// stamp fills every tile r covers.
func stamp(g *glyphGrid, r geom.Rect, gl glyph) {
	for row := cellOf(r.Y); row <= cellOf(r.Bottom()-1); row++ {
		for col := cellOf(r.X); col <= cellOf(r.Right()-1); col++ {
			if inGrid(row, col) {
				g[row][col] = gl
			}
		}
	}
}

func cellOf(v float64) int {
	return int(math.Floor(v / world.TileSize))
}

func inGrid(row, col int) bool {
	return row >= 0 && row < world.Rows && col >= 0 && col < world.Cols
}

func initial(name string, upper bool) rune {
	if name == "" {
		return '?'
	}
	r := []rune(name)[0]
	if upper {
		return []rune(strings.ToUpper(string(r)))[0]
	}
	return r
}

// renderGrid draws the grid two terminal cells per tile.
func renderGrid(g glyphGrid) string {
	var sb strings.Builder
	for row := range world.Rows {
		for col := range world.Cols {
			gl := g[row][col]
			r := gl.r
			if r == 0 {
				r = ' '
			}
			sb.WriteString(styleFor(gl.kind).Render(string(r) + " "))
		}
		if row < world.Rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func styleFor(k glyphKind) lipgloss.Style {
	switch k {
	case glyphFloor:
		return floorStyle
	case glyphWall:
		return wallStyle
	case glyphAnimated:
		return animatedStyle
	case glyphItem:
		return itemStyle
	case glyphNPC:
		return npcStyle
	case glyphPlayer:
		return playerStyle
	}
	return lipgloss.NewStyle()
}

// displayName title-cases an item or room name for the status panel.
func displayName(name string) string {
	if name == "" {
		return "Nothing"
	}
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// writeStatus builds the status panel beside the room.
func writeStatus(s sim.Snapshot, width int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("GARDEN QUEST") + "\n\n")

	content.WriteString("Room:\n")
	content.WriteString(displayName(s.Room) + "\n\n")

	content.WriteString("Holding:\n")
	content.WriteString(itemStyle.Render(displayName(s.Held)) + "\n\n")

	if s.Message != "" {
		content.WriteString(speakerStyle.Render("Says:") + "\n")
		content.WriteString(wordwrap.String(s.Message, max(width, 10)) + "\n\n")
	}

	if s.Won {
		content.WriteString(titleStyle.Render("You restored the garden!") + "\n")
		content.WriteString(renderPhaseBar(s.WinPhase, width) + "\n\n")
	}

	content.WriteString(promptStyle.Render("Arrows/WASD: move\nSpace/Enter: act\nEsc: quit"))
	return content.String()
}

// renderPhaseBar draws phase in [0, 1] as a bar.
func renderPhaseBar(phase float64, width int) string {
	usable := min(max(width, 10), 40)
	filled := int(geom.Clamp(phase, 0, 1) * float64(usable))

	var bar strings.Builder
	for i := range usable {
		if i < filled {
			bar.WriteString("█")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}
