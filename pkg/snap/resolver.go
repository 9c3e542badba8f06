package snap

import (
	"math"

	"github.com/matzehuels/sectorlock/pkg/errors"
	"github.com/matzehuels/sectorlock/pkg/geometry"
)

// Result is the outcome of resolving one candidate rectangle.
type Result struct {
	// Rect is the rectangle to commit: the candidate, its snapped
	// position, or the last good rectangle when rejected.
	Rect geometry.Rect

	// Adjusted is true when the candidate was moved onto the ring.
	Adjusted bool

	// Rejected is true when the candidate could not be placed.
	Rejected bool

	// Reason is set on rejection.
	Reason Reason

	// Band is the ring side a snapped rectangle landed on.
	Band Band
}

// Accepted reports whether the candidate, possibly snapped, was accepted.
func (r Result) Accepted() bool { return !r.Rejected }

// Err returns a coded error for rejected results and nil otherwise.
func (r Result) Err() error {
	if !r.Rejected {
		return nil
	}
	return errors.New(r.Reason.Code(), "%s", r.Reason.Message())
}

// Resolve validates candidate against boundary. A nil boundary means
// nothing is locked. lastGood is returned unchanged when the candidate is
// rejected.
func Resolve(candidate geometry.Rect, boundary *geometry.Boundary, lastGood geometry.Rect) Result {
	if boundary == nil || !boundary.Intersects(candidate) {
		return Result{Rect: candidate}
	}

	ring := boundary.Margin
	if candidate.W > ring+geometry.Epsilon && candidate.H > ring+geometry.Epsilon {
		return reject(lastGood, ReasonOversized)
	}

	best, bestBand := geometry.Rect{}, BandNone
	bestDist := math.Inf(1)
	for _, c := range Candidates(candidate, *boundary) {
		if boundary.Intersects(c.Rect) || !c.Rect.InFrame() {
			continue
		}
		if d := candidate.DistanceTo(c.Rect); d < bestDist {
			best, bestBand, bestDist = c.Rect, c.Band, d
		}
	}

	if bestBand == BandNone {
		return reject(lastGood, ReasonNoValidBand)
	}
	return Result{Rect: best, Adjusted: true, Band: bestBand}
}

func reject(lastGood geometry.Rect, reason Reason) Result {
	return Result{Rect: lastGood, Rejected: true, Reason: reason}
}

// Candidate is one banded position proposed for a rectangle.
type Candidate struct {
	Band Band
	Rect geometry.Rect
}

// Candidates returns the banded positions for r around boundary in
// generation order (top, bottom, left, right). A band is only proposed when
// the matching dimension of r fits in the ring. The positions are not
// filtered for overlap.
func Candidates(r geometry.Rect, boundary geometry.Boundary) []Candidate {
	ring := boundary.Margin
	clamp := geometry.Clamp
	frame := geometry.FrameSide

	out := make([]Candidate, 0, 4)
	if r.H <= ring+geometry.Epsilon {
		x := clamp(r.X, 0, frame-r.W)
		out = append(out,
			Candidate{Band: BandTop, Rect: r.At(x, clamp(r.Y, 0, boundary.Top-r.H))},
			Candidate{Band: BandBottom, Rect: r.At(x, clamp(math.Max(r.Y, boundary.Bottom), boundary.Bottom, frame-r.H))},
		)
	}
	if r.W <= ring+geometry.Epsilon {
		y := clamp(r.Y, 0, frame-r.H)
		out = append(out,
			Candidate{Band: BandLeft, Rect: r.At(clamp(r.X, 0, boundary.Left-r.W), y)},
			Candidate{Band: BandRight, Rect: r.At(clamp(math.Max(r.X, boundary.Right), boundary.Right, frame-r.W), y)},
		)
	}
	return out
}
