// Package geom holds the axis-aligned rectangles used for collision and hit tests.
package geom

// Rect is an axis-aligned rectangle in room pixels.
type Rect struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Point is a position in room pixels.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Offset returns r moved by (dx, dy).
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Centered returns a w by h rectangle centered on p.
func Centered(p Point, w, h float64) Rect {
	return Rect{X: p.X - w/2, Y: p.Y - h/2, W: w, H: h}
}

// Overlaps1D reports whether segments [p, p+pl] and [q, q+ql] touch or overlap.
func Overlaps1D(p, pl, q, ql float64) bool {
	return p+pl >= q && p <= q+ql
}

// Overlaps reports whether r and o touch or overlap. Shared edges count.
func (r Rect) Overlaps(o Rect) bool {
	return Overlaps1D(r.X, r.W, o.X, o.W) && Overlaps1D(r.Y, r.H, o.Y, o.H)
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
