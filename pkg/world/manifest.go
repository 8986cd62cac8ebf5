package world

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/garden-quest/pkg/ordmap"
)

// Manifest is the serialized world definition.
type Manifest struct {
	Start   string            `yaml:"start"`             // room entered on launch
	Rooms   []RoomSpec        `yaml:"rooms"`             // room name and document
	Links   []LinkSpec        `yaml:"links,omitempty"`   // directional exits, two-way unless oneway
	Warps   map[string]string `yaml:"warps,omitempty"`   // warp name → room name
	Items   map[string]string `yaml:"items,omitempty"`   // item name → sprite
	Visuals map[string]string `yaml:"visuals,omitempty"` // NPC name → sprite
}

// RoomSpec declares one room.
type RoomSpec struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// LinkSpec connects From to To through From's Dir exit. Unless OneWay is set, To also
// leads back to From through the opposite exit.
type LinkSpec struct {
	From   string `yaml:"from"`
	Dir    string `yaml:"dir"`
	To     string `yaml:"to"`
	OneWay bool   `yaml:"oneway,omitempty"`
}

// World is the runtime form of a Manifest.
type World struct {
	Graph   *Graph
	Start   RoomID
	Items   *ordmap.Map[string, string]
	Visuals *ordmap.Map[string, string]
}

// DecodeManifest reads a YAML manifest, rejecting unknown fields.
func DecodeManifest(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrBadManifest)
		}
		return nil, fmt.Errorf("%w: %v", ErrBadManifest, err)
	}
	return &m, nil
}

// LoadFS decodes and builds the manifest stored at name in fsys.
func LoadFS(fsys fs.FS, name string) (*World, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read world manifest %s: %w", name, err)
	}
	m, err := DecodeManifest(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode world manifest %s: %w", name, err)
	}
	return m.Build()
}

// Build validates the manifest and assembles the room graph and lookup tables.
func (m *Manifest) Build() (*World, error) {
	if len(m.Rooms) == 0 {
		return nil, fmt.Errorf("%w: no rooms", ErrBadManifest)
	}

	g := NewGraph()
	for _, r := range m.Rooms {
		if _, err := g.AddRoom(r.Name, r.File); err != nil {
			return nil, err
		}
	}

	resolve := func(what, name string) (RoomID, error) {
		id, ok := g.Lookup(name)
		if !ok {
			return NoRoom, fmt.Errorf("%w: %s %q", ErrUnknownRoom, what, name)
		}
		return id, nil
	}

	for _, l := range m.Links {
		from, err := resolve("link from", l.From)
		if err != nil {
			return nil, err
		}
		to, err := resolve("link to", l.To)
		if err != nil {
			return nil, err
		}
		d, err := ParseDirection(l.Dir)
		if err != nil {
			return nil, err
		}
		link := g.Connect
		if l.OneWay {
			link = g.Link
		}
		if err := link(from, d, to); err != nil {
			return nil, err
		}
	}

	for name, target := range m.Warps {
		to, err := resolve("warp "+name, target)
		if err != nil {
			return nil, err
		}
		if err := g.AddWarp(name, to); err != nil {
			return nil, err
		}
	}

	start := m.Start
	if start == "" {
		start = m.Rooms[0].Name
	}
	startID, err := resolve("start", start)
	if err != nil {
		return nil, err
	}

	w := &World{
		Graph:   g,
		Start:   startID,
		Items:   ordmap.New[string, string]().WithKeyClone(strings.Clone),
		Visuals: ordmap.New[string, string]().WithKeyClone(strings.Clone),
	}
	for name, sprite := range m.Items {
		w.Items.Set(name, sprite)
	}
	for name, sprite := range m.Visuals {
		w.Visuals.Set(name, sprite)
	}
	return w, nil
}
