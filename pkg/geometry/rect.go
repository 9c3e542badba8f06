package geometry

import (
	"fmt"
	"math"
)

// FrameSide is the side length of the frame on the normalized scale.
const FrameSide = 100.0

// Rect is an axis-aligned rectangle on the normalized 0–100 scale.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// At returns a copy of r moved to (x, y) with the same size.
func (r Rect) At(x, y float64) Rect {
	return Rect{X: x, Y: y, W: r.W, H: r.H}
}

// Translate returns a copy of r offset by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return r.At(r.X+dx, r.Y+dy)
}

// ClampToFrame keeps the size of r and moves it so that it lies inside the
// frame. A rectangle larger than the frame is pinned to the origin.
func (r Rect) ClampToFrame() Rect {
	return r.At(
		Clamp(r.X, 0, FrameSide-r.W),
		Clamp(r.Y, 0, FrameSide-r.H),
	)
}

// InFrame reports whether r satisfies the frame invariant: non-empty and
// fully inside [0, 100] on both axes, up to Epsilon.
func (r Rect) InFrame() bool {
	return r.W > 0 && r.H > 0 &&
		r.X >= -Epsilon && r.Y >= -Epsilon &&
		r.Right() <= FrameSide+Epsilon && r.Bottom() <= FrameSide+Epsilon
}

// DistanceTo returns the Euclidean distance between the top-left corners
// of r and o.
func (r Rect) DistanceTo(o Rect) float64 {
	return math.Hypot(o.X-r.X, o.Y-r.Y)
}

// String formats r as "x,y wxh" with two decimals.
func (r Rect) String() string {
	return fmt.Sprintf("%.2f,%.2f %.2fx%.2f", r.X, r.Y, r.W, r.H)
}

// Clamp restricts v to [lo, hi]. When hi < lo the lower bound wins, which
// is what callers rely on when a band is too thin for the rectangle.
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
