// Package tmx loads room documents authored in the Tiled map format.
//
// A room document names one external tileset, up to world.MaxLayers tile layers and an
// object group holding the spawn point, warp, item and NPC of the room. The tileset is
// parsed once, into the shared tileset.Catalog, by the first room that references it.
package tmx

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"

	"github.com/jwebster45206/garden-quest/pkg/tileset"
	"github.com/jwebster45206/garden-quest/pkg/world"
)

var (
	// ErrMalformed is returned for documents that cannot be parsed.
	ErrMalformed = errors.New("malformed map document")
	// ErrCapacity is returned when a room exceeds the fixed grid or layer count.
	ErrCapacity = errors.New("map exceeds grid capacity")
	// ErrUnknownWarp is returned when a warp object names no registered warp.
	ErrUnknownWarp = errors.New("unknown warp")
	// ErrTilesetMismatch is returned when a room references a second tileset.
	ErrTilesetMismatch = errors.New("room references a different tileset")
	// ErrNoTileset is returned when no tileset is known after parsing a room.
	ErrNoTileset = errors.New("room has no tileset")
)

// Consumed reports identities that were resolved earlier and must not reappear.
type Consumed interface {
	Has(name string) bool
}

// Loader reads room documents from a filesystem.
type Loader struct {
	fsys    fs.FS
	world   *world.World
	catalog *tileset.Catalog
	logger  *slog.Logger
}

// NewLoader returns a loader over fsys. Room files and tileset sources are resolved
// relative to the root of fsys.
func NewLoader(fsys fs.FS, w *world.World, catalog *tileset.Catalog, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		fsys:    fsys,
		world:   w,
		catalog: catalog,
		logger:  logger,
	}
}

// Catalog returns the shared tile catalog.
func (l *Loader) Catalog() *tileset.Catalog {
	return l.catalog
}

// Load parses the document of room and returns its level. Objects whose identity is in
// consumed are left out. Any error is fatal for the room; no partial level is returned.
func (l *Loader) Load(ctx context.Context, room world.RoomID, consumed Consumed) (*world.Level, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, ok := l.world.Graph.Room(room)
	if !ok {
		return nil, fmt.Errorf("failed to load room %d: %w", room, world.ErrUnknownRoom)
	}

	f, err := l.fsys.Open(r.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open room %s: %w", r.File, err)
	}
	defer f.Close()

	level := &world.Level{Room: room}
	if err := l.parseMap(f, path.Dir(r.File), level, consumed); err != nil {
		return nil, fmt.Errorf("failed to parse room %s: %w", r.File, err)
	}
	if !l.catalog.Loaded() {
		return nil, fmt.Errorf("failed to load room %s: %w", r.File, ErrNoTileset)
	}
	if level.Tileset == "" {
		level.Tileset = l.catalog.Source
	}

	l.logger.Info("Loaded room",
		"room", r.Name,
		"file", r.File,
		"layers", len(level.Layers),
		"has_item", level.Item != nil,
		"has_npc", level.NPC != nil,
		"has_warp", level.Warp != nil)
	return level, nil
}

// parseMap walks the children of the <map> root element.
func (l *Loader) parseMap(r io.Reader, dir string, level *world.Level, consumed Consumed) error {
	dec := xml.NewDecoder(r)

	if err := findRoot(dec, "map"); err != nil {
		return err
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: unexpected end of document", ErrMalformed)
			}
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.EndElement:
			// end of <map>
			return nil
		case xml.StartElement:
			switch t.Name.Local {
			case "tileset":
				if err := l.useTileset(t, dir, level); err != nil {
					return err
				}
				if err := dec.Skip(); err != nil {
					return fmt.Errorf("%w: %v", ErrMalformed, err)
				}
			case "layer":
				var el layerElement
				if err := dec.DecodeElement(&el, &t); err != nil {
					return fmt.Errorf("%w: layer: %v", ErrMalformed, err)
				}
				if err := addLayers(level, el); err != nil {
					return err
				}
			case "objectgroup":
				var el objectGroupElement
				if err := dec.DecodeElement(&el, &t); err != nil {
					return fmt.Errorf("%w: objectgroup: %v", ErrMalformed, err)
				}
				for _, obj := range el.Objects {
					if err := l.placeObject(level, obj, consumed); err != nil {
						return err
					}
				}
			default:
				if err := dec.Skip(); err != nil {
					return fmt.Errorf("%w: %v", ErrMalformed, err)
				}
			}
		}
	}
}

// findRoot advances dec past the root start element, which must be called name.
func findRoot(dec *xml.Decoder, name string) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: missing root element", ErrMalformed)
			}
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			if start.Name.Local != name {
				return fmt.Errorf("%w: root element is <%s>, want <%s>", ErrMalformed, start.Name.Local, name)
			}
			return nil
		}
	}
}

func attr(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
