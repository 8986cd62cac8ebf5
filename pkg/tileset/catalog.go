// Package tileset holds the tile metadata shared by every room: which tiles block
// movement and which tiles animate.
package tileset

import (
	"github.com/jwebster45206/garden-quest/pkg/anim"
	"github.com/jwebster45206/garden-quest/pkg/geom"
	"github.com/jwebster45206/garden-quest/pkg/ordmap"
)

// Meta describes the tileset image layout.
type Meta struct {
	Source      string // tileset document the catalog was built from
	Image       string
	ImageWidth  int // pixels, 0 when unknown
	ImageHeight int
	Columns     int
	TileWidth   int
	TileHeight  int
	Margin      int
	Spacing     int
}

// Catalog is built from the first tileset seen and is append-only afterwards.
type Catalog struct {
	Meta
	loaded     bool
	blocking   *ordmap.Map[int, bool]
	animations *ordmap.Map[int, anim.Animation]
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		blocking:   ordmap.New[int, bool](),
		animations: ordmap.New[int, anim.Animation]().WithValueCopy(anim.Animation.Clone),
	}
}

// Loaded reports whether a tileset has been recorded.
func (c *Catalog) Loaded() bool {
	return c.loaded
}

// Init records the tileset layout. Only the first call has an effect.
func (c *Catalog) Init(m Meta) {
	if c.loaded {
		return
	}
	c.Meta = m
	c.loaded = true
}

// SetBlocking flags a tile id as impassable.
func (c *Catalog) SetBlocking(id int) {
	c.blocking.Set(id, true)
}

// SetAnimation registers the animation shown in place of base tile id.
func (c *Catalog) SetAnimation(id int, a anim.Animation) {
	c.animations.Set(id, a)
}

// IsBlocking reports whether tile id is impassable.
func (c *Catalog) IsBlocking(id int) bool {
	v, _ := c.blocking.Get(id)
	return v
}

// Animation returns the animation for base tile id.
func (c *Catalog) Animation(id int) (*anim.Animation, bool) {
	a := c.animations.Ref(id)
	return a, a != nil
}

// CurrentTile returns the tile displayed for base tile id at tick.
func (c *Catalog) CurrentTile(id int, tick uint64) int {
	return anim.CurrentTile(c, id, tick)
}

// BlockingCount returns the number of blocking tile ids.
func (c *Catalog) BlockingCount() int {
	return c.blocking.Len()
}

// AnimationCount returns the number of animated tile ids.
func (c *Catalog) AnimationCount() int {
	return c.animations.Len()
}

// SourceRect returns the region of the tileset image holding tile id. It reports false
// without a layout or when a known image size does not reach the tile.
func (c *Catalog) SourceRect(id int) (geom.Rect, bool) {
	if c.Columns <= 0 || id < 0 {
		return geom.Rect{}, false
	}
	col, row := id%c.Columns, id/c.Columns
	r := geom.Rect{
		X: float64(c.Margin + (c.TileWidth+c.Spacing)*col),
		Y: float64(c.Margin + (c.TileHeight+c.Spacing)*row),
		W: float64(c.TileWidth),
		H: float64(c.TileHeight),
	}
	if c.ImageWidth > 0 && r.Right() > float64(c.ImageWidth) {
		return r, false
	}
	if c.ImageHeight > 0 && r.Bottom() > float64(c.ImageHeight) {
		return r, false
	}
	return r, true
}
