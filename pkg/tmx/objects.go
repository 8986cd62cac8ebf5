package tmx

import (
	"fmt"
	"strconv"

	"github.com/jwebster45206/garden-quest/pkg/geom"
	"github.com/jwebster45206/garden-quest/pkg/world"
)

// Object types understood in a room's object group.
const (
	ObjectSpawn = "spawn"
	ObjectWarp  = "warp"
	ObjectItem  = "item"
	ObjectNPC   = "npc"
)

type objectGroupElement struct {
	Objects []objectElement `xml:"object"`
}

type objectElement struct {
	ID     string `xml:"id,attr"`
	Name   string `xml:"name,attr"`
	Type   string `xml:"type,attr"`
	Class  string `xml:"class,attr"`
	X      string `xml:"x,attr"`
	Y      string `xml:"y,attr"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	W      string `xml:"w,attr"`
	H      string `xml:"h,attr"`
}

func (o objectElement) kind() string {
	if o.Type != "" {
		return o.Type
	}
	return o.Class
}

// point returns the object's x/y attributes.
func (o objectElement) point() (geom.Point, error) {
	x, err := parseCoord("x", o.X)
	if err != nil {
		return geom.Point{}, err
	}
	y, err := parseCoord("y", o.Y)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: x, Y: y}, nil
}

// rect returns the object's rectangle. A missing width or height becomes one tile,
// centered on the point along that axis.
func (o objectElement) rect() (geom.Rect, error) {
	p, err := o.point()
	if err != nil {
		return geom.Rect{}, err
	}
	r := geom.Rect{X: p.X, Y: p.Y}

	w, ok, err := optionalSize("width", o.Width, o.W)
	if err != nil {
		return geom.Rect{}, err
	}
	if ok {
		r.W = w
	} else {
		r.W = world.TileSize
		r.X -= world.TileSize / 2
	}

	h, ok, err := optionalSize("height", o.Height, o.H)
	if err != nil {
		return geom.Rect{}, err
	}
	if ok {
		r.H = h
	} else {
		r.H = world.TileSize
		r.Y -= world.TileSize / 2
	}
	return r, nil
}

func parseCoord(name, s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: object without %s", ErrMalformed, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: object %s %q", ErrMalformed, name, s)
	}
	return v, nil
}

func optionalSize(name, long, short string) (float64, bool, error) {
	s := long
	if s == "" {
		s = short
	}
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: object %s %q", ErrMalformed, name, s)
	}
	return v, true, nil
}

// placeObject records one object on the level. Later objects of a kind replace earlier ones.
func (l *Loader) placeObject(level *world.Level, obj objectElement, consumed Consumed) error {
	switch obj.kind() {
	case ObjectSpawn:
		p, err := obj.point()
		if err != nil {
			return err
		}
		level.Spawn = &p

	case ObjectWarp:
		r, err := obj.rect()
		if err != nil {
			return err
		}
		to, ok := l.world.Graph.Warp(obj.Name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownWarp, obj.Name)
		}
		level.Warp = &world.Warp{Rect: r, Name: obj.Name, To: to}

	case ObjectItem:
		r, err := obj.rect()
		if err != nil {
			return err
		}
		level.Item = nil
		if !l.world.Items.Has(obj.Name) {
			l.logger.Debug("Dropped unknown item", "name", obj.Name)
			return nil
		}
		if consumed != nil && consumed.Has(obj.Name) {
			return nil
		}
		level.Item = &world.Placed{Rect: r, Name: obj.Name}

	case ObjectNPC:
		r, err := obj.rect()
		if err != nil {
			return err
		}
		level.NPC = nil
		if consumed != nil && consumed.Has(obj.Name) {
			return nil
		}
		level.NPC = &world.Placed{Rect: r, Name: obj.Name}

	case "":
		// untyped objects are editor annotations

	default:
		l.logger.Debug("Ignored object", "type", obj.kind(), "name", obj.Name)
	}
	return nil
}
