// Package anim resolves animated tiles against a millisecond tick and provides the
// cyclic helpers used by timed effects.
package anim

// Frame is one step of a tile animation.
type Frame struct {
	TileID   int    `json:"tile_id" yaml:"tile_id"`
	Duration uint64 `json:"duration" yaml:"duration"` // milliseconds
}

// Animation is an ordered frame sequence keyed by its base tile id.
type Animation struct {
	Frames []Frame `json:"frames" yaml:"frames"`
	Total  uint64  `json:"total" yaml:"total"` // sum of frame durations
}

// NewAnimation builds an Animation and computes its total duration.
func NewAnimation(frames ...Frame) Animation {
	a := Animation{Frames: make([]Frame, 0, len(frames))}
	for _, f := range frames {
		a.Add(f)
	}
	return a
}

// Add appends a frame.
func (a *Animation) Add(f Frame) {
	a.Frames = append(a.Frames, f)
	a.Total += f.Duration
}

// Clone returns a deep copy.
func (a Animation) Clone() Animation {
	frames := make([]Frame, len(a.Frames))
	copy(frames, a.Frames)
	return Animation{Frames: frames, Total: a.Total}
}

// TileAt returns the tile shown at tick. An animation without duration shows its
// first frame; one without frames shows fallback.
func (a Animation) TileAt(tick uint64, fallback int) int {
	if len(a.Frames) == 0 {
		return fallback
	}
	if a.Total == 0 {
		return a.Frames[0].TileID
	}
	t := tick % a.Total
	for _, f := range a.Frames {
		if t < f.Duration {
			return f.TileID
		}
		t -= f.Duration
	}
	return a.Frames[len(a.Frames)-1].TileID
}

// Lookup finds the animation registered for a base tile id.
type Lookup interface {
	Animation(base int) (*Animation, bool)
}

// CurrentTile maps a base tile id to the tile displayed at tick. Tiles without an
// animation are returned unchanged.
func CurrentTile(l Lookup, base int, tick uint64) int {
	a, ok := l.Animation(base)
	if !ok {
		return base
	}
	return a.TileAt(tick, base)
}

// BoundCyclicNormalized wraps x into [0, 1). Negative values wrap from the top, so
// -0.25 maps to 0.75; negative integers map to exactly 0.
func BoundCyclicNormalized(x float64) float64 {
	if x < 0 {
		if float64(int64(x)) == x {
			return 0
		}
		v := 1 - BoundCyclicNormalized(-x)
		if v >= 1 {
			// -x too small to show in 1 - x
			return 0
		}
		return v
	}
	return x - float64(int64(x))
}

// BoundCyclicBackAndForth is a triangle wave over [0, 1]: it rises on even integer
// parts and falls on odd ones, so it never jumps at a cycle boundary.
func BoundCyclicBackAndForth(x float64) float64 {
	if x < 0 {
		return BoundCyclicBackAndForth(-x)
	}
	i := int64(x)
	v := BoundCyclicNormalized(x)
	if i%2 == 0 {
		return v
	}
	// 0 becomes exactly 1 here, so the upper bound is inclusive
	return 1 - v
}
