package tmx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/jwebster45206/garden-quest/pkg/anim"
	"github.com/jwebster45206/garden-quest/pkg/tileset"
	"github.com/jwebster45206/garden-quest/pkg/world"
)

// blockType marks a tile as impassable.
const blockType = "block"

type tilesetDocument struct {
	XMLName    xml.Name      `xml:"tileset"`
	Name       string        `xml:"name,attr"`
	Columns    int           `xml:"columns,attr"`
	TileWidth  int           `xml:"tilewidth,attr"`
	TileHeight int           `xml:"tileheight,attr"`
	Margin     int           `xml:"margin,attr"`
	Spacing    int           `xml:"spacing,attr"`
	Image      *imageElement `xml:"image"`
	Tiles      []tileElement `xml:"tile"`
}

type imageElement struct {
	Source string `xml:"source,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
}

type tileElement struct {
	ID     int            `xml:"id,attr"`
	Type   string         `xml:"type,attr"`
	Class  string         `xml:"class,attr"`
	Frames []frameElement `xml:"animation>frame"`
}

type frameElement struct {
	TileID   int    `xml:"tileid,attr"`
	Duration uint64 `xml:"duration,attr"`
}

func (t tileElement) kind() string {
	if t.Type != "" {
		return t.Type
	}
	return t.Class
}

// useTileset handles a <tileset> reference in a room. The first reference fills the
// catalog; later ones must name the same document.
func (l *Loader) useTileset(el xml.StartElement, dir string, level *world.Level) error {
	source, ok := attr(el, "source")
	if !ok || source == "" {
		return fmt.Errorf("%w: tileset without source", ErrMalformed)
	}
	resolved := path.Join(dir, source)

	if l.catalog.Loaded() {
		if l.catalog.Source != resolved {
			return fmt.Errorf("%w: %s, catalog holds %s", ErrTilesetMismatch, resolved, l.catalog.Source)
		}
		level.Tileset = resolved
		return nil
	}

	f, err := l.fsys.Open(resolved)
	if err != nil {
		return fmt.Errorf("failed to open tileset %s: %w", resolved, err)
	}
	defer f.Close()

	doc, err := decodeTileset(f)
	if err != nil {
		return fmt.Errorf("failed to parse tileset %s: %w", resolved, err)
	}
	fillCatalog(l.catalog, resolved, doc)
	level.Tileset = resolved

	l.logger.Debug("Loaded tileset",
		"source", resolved,
		"columns", doc.Columns,
		"blocking", l.catalog.BlockingCount(),
		"animated", l.catalog.AnimationCount())
	return nil
}

func decodeTileset(r io.Reader) (*tilesetDocument, error) {
	var doc tilesetDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing root element", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Columns <= 0 {
		return nil, fmt.Errorf("%w: tileset columns must be positive", ErrMalformed)
	}
	if doc.Image == nil || doc.Image.Source == "" {
		return nil, fmt.Errorf("%w: tileset has no image", ErrNoTileset)
	}
	return &doc, nil
}

func fillCatalog(c *tileset.Catalog, source string, doc *tilesetDocument) {
	tw, th := doc.TileWidth, doc.TileHeight
	if tw == 0 {
		tw = world.TileSize
	}
	if th == 0 {
		th = world.TileSize
	}
	c.Init(tileset.Meta{
		Source:      source,
		Image:       path.Join(path.Dir(source), doc.Image.Source),
		ImageWidth:  doc.Image.Width,
		ImageHeight: doc.Image.Height,
		Columns:     doc.Columns,
		TileWidth:   tw,
		TileHeight:  th,
		Margin:      doc.Margin,
		Spacing:     doc.Spacing,
	})

	for _, t := range doc.Tiles {
		if t.kind() == blockType {
			c.SetBlocking(t.ID)
		}
		if len(t.Frames) == 0 {
			continue
		}
		var a anim.Animation
		for _, f := range t.Frames {
			a.Add(anim.Frame{TileID: f.TileID, Duration: f.Duration})
		}
		c.SetAnimation(t.ID, a)
	}
}
