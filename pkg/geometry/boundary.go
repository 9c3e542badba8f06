package geometry

// Boundary is a square region centered in the frame.
//
// Margin is the thickness of the band between the frame edge and the
// boundary on every side.
type Boundary struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Margin float64 `json:"margin"`
}

// CenteredBoundary returns the centered square with the given side length.
// It returns nil when side <= 0, meaning "nothing is locked".
func CenteredBoundary(side float64) *Boundary {
	if side <= 0 {
		return nil
	}
	m := (FrameSide - side) / 2
	return &Boundary{
		Left:   m,
		Top:    m,
		Right:  FrameSide - m,
		Bottom: FrameSide - m,
		Margin: m,
	}
}

// Side returns the side length of the boundary.
func (b Boundary) Side() float64 { return b.Right - b.Left }

// Rect returns the boundary as a Rect.
func (b Boundary) Rect() Rect {
	return Rect{X: b.Left, Y: b.Top, W: b.Right - b.Left, H: b.Bottom - b.Top}
}

// Epsilon is the tolerance applied to edge comparisons. A rectangle placed
// at Top-H has Bottom() == Top only up to rounding; overlaps thinner than
// Epsilon are treated as touching.
const Epsilon = 1e-9

// Intersects reports whether r overlaps the boundary.
func (b Boundary) Intersects(r Rect) bool {
	return overlaps(r.X, r.Right(), b.Left, b.Right) &&
		overlaps(r.Y, r.Bottom(), b.Top, b.Bottom)
}

// Intersects reports whether a and b overlap. Shared edges do not count.
func Intersects(a, b Rect) bool {
	return overlaps(a.X, a.Right(), b.X, b.Right()) &&
		overlaps(a.Y, a.Bottom(), b.Y, b.Bottom())
}

// overlaps reports whether the intervals [a0, a1] and [b0, b1] share more
// than a touching edge.
func overlaps(a0, a1, b0, b1 float64) bool {
	return a1 > b0+Epsilon && a0 < b1-Epsilon
}
