package snap

import (
	"math"
	"testing"

	"github.com/matzehuels/sectorlock/pkg/errors"
	"github.com/matzehuels/sectorlock/pkg/geometry"
	"github.com/matzehuels/sectorlock/pkg/sector"
)

const tolerance = 1e-9

func level1() *geometry.Boundary { return sector.BoundaryFor(sector.Level1) }

func approxEqual(a, b geometry.Rect) bool {
	return math.Abs(a.X-b.X) < tolerance && math.Abs(a.Y-b.Y) < tolerance &&
		math.Abs(a.W-b.W) < tolerance && math.Abs(a.H-b.H) < tolerance
}

func TestResolveNoBoundary(t *testing.T) {
	candidate := geometry.Rect{X: 45, Y: 45, W: 10, H: 10}
	lastGood := geometry.Rect{X: 1, Y: 1, W: 1, H: 1}

	got := Resolve(candidate, nil, lastGood)
	if got.Rejected || got.Adjusted {
		t.Fatalf("Resolve() = %+v, want plain acceptance", got)
	}
	if got.Rect != candidate {
		t.Errorf("Rect = %v, want %v", got.Rect, candidate)
	}
}

func TestResolveOutsideBoundary(t *testing.T) {
	tests := []struct {
		name      string
		candidate geometry.Rect
	}{
		{name: "top-left corner", candidate: geometry.Rect{X: 0, Y: 0, W: 5, H: 5}},
		{name: "wide top strip", candidate: geometry.Rect{X: 0, Y: 0, W: 30, H: 5}},
		{name: "bottom-right corner", candidate: geometry.Rect{X: 95, Y: 95, W: 5, H: 5}},
		{name: "flush with the top edge", candidate: geometry.Rect{X: 40, Y: level1().Top - 5, W: 5, H: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.candidate, level1(), geometry.Rect{})
			if got.Rejected || got.Adjusted {
				t.Fatalf("Resolve() = %+v, want unchanged acceptance", got)
			}
			if got.Rect != tt.candidate {
				t.Errorf("Rect = %v, want %v", got.Rect, tt.candidate)
			}
		})
	}
}

func TestResolveWideStripStaysInTopBand(t *testing.T) {
	b := level1()
	got := Resolve(geometry.Rect{X: 0, Y: 0, W: 30, H: 5}, b, geometry.Rect{})
	if got.Rejected {
		t.Fatalf("Resolve() rejected with %s", got.Reason)
	}
	if got.Rect.Y < 0 || got.Rect.Y > b.Top-5 {
		t.Errorf("Y = %v, want within [0, %v]", got.Rect.Y, b.Top-5)
	}
}

func TestResolveSnapsToTopBand(t *testing.T) {
	b := level1()
	candidate := geometry.Rect{X: 20, Y: 7, W: 30, H: 5}

	got := Resolve(candidate, b, geometry.Rect{X: 1, Y: 1, W: 30, H: 5})
	if got.Rejected {
		t.Fatalf("Resolve() rejected with %s", got.Reason)
	}
	if !got.Adjusted {
		t.Error("Adjusted = false, want true")
	}
	if got.Band != BandTop {
		t.Errorf("Band = %v, want %v", got.Band, BandTop)
	}
	want := geometry.Rect{X: 20, Y: b.Top - 5, W: 30, H: 5}
	if !approxEqual(got.Rect, want) {
		t.Errorf("Rect = %v, want %v", got.Rect, want)
	}
	if b.Intersects(got.Rect) {
		t.Errorf("snapped rect %v still intersects %+v", got.Rect, *b)
	}
}

func TestResolveSnapsToBottomBand(t *testing.T) {
	b := level1()
	candidate := geometry.Rect{X: 30, Y: 88, W: 40, H: 4}

	got := Resolve(candidate, b, geometry.Rect{})
	if got.Band != BandBottom {
		t.Fatalf("Band = %v, want %v (result %+v)", got.Band, BandBottom, got)
	}
	if !approxEqual(got.Rect, geometry.Rect{X: 30, Y: b.Bottom, W: 40, H: 4}) {
		t.Errorf("Rect = %v, want Y=%v", got.Rect, b.Bottom)
	}
}

func TestResolveSnapsToSideBands(t *testing.T) {
	b := level1()

	left := Resolve(geometry.Rect{X: 8, Y: 40, W: 5, H: 5}, b, geometry.Rect{})
	if left.Band != BandLeft {
		t.Errorf("Band = %v, want %v", left.Band, BandLeft)
	}
	if !approxEqual(left.Rect, geometry.Rect{X: b.Left - 5, Y: 40, W: 5, H: 5}) {
		t.Errorf("left Rect = %v", left.Rect)
	}

	right := Resolve(geometry.Rect{X: 88, Y: 40, W: 4, H: 30}, b, geometry.Rect{})
	if right.Band != BandRight {
		t.Errorf("Band = %v, want %v", right.Band, BandRight)
	}
	if !approxEqual(right.Rect, geometry.Rect{X: b.Right, Y: 40, W: 4, H: 30}) {
		t.Errorf("right Rect = %v", right.Rect)
	}
}

func TestResolveTieBreakPrefersEarlierBand(t *testing.T) {
	b := level1()
	// The rectangle pokes 1 unit into the lock corner on both axes, so the
	// top and left positions are exactly equally far away.
	candidate := geometry.Rect{X: b.Left - 4, Y: b.Top - 4, W: 5, H: 5}

	cands := Candidates(candidate, *b)
	top, left := cands[0].Rect, cands[2].Rect
	if candidate.DistanceTo(top) != candidate.DistanceTo(left) {
		t.Fatalf("test setup: distances differ %v vs %v", candidate.DistanceTo(top), candidate.DistanceTo(left))
	}

	got := Resolve(candidate, b, geometry.Rect{})
	if got.Band != BandTop {
		t.Errorf("Band = %v, want %v on a tie", got.Band, BandTop)
	}
}

func TestResolveOversized(t *testing.T) {
	b := level1()
	lastGood := geometry.Rect{X: 2, Y: 2, W: 5, H: 5}

	tests := []struct {
		name      string
		candidate geometry.Rect
	}{
		{name: "50x50 centered", candidate: geometry.Rect{X: 25, Y: 25, W: 50, H: 50}},
		{name: "50x50 at origin", candidate: geometry.Rect{X: 0, Y: 0, W: 50, H: 50}},
		{name: "just above ring", candidate: geometry.Rect{X: 0, Y: 0, W: b.Margin + 0.01, H: b.Margin + 0.01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.candidate, b, lastGood)
			if !got.Rejected {
				t.Fatalf("Resolve() = %+v, want rejection", got)
			}
			if got.Reason != ReasonOversized {
				t.Errorf("Reason = %q, want %q", got.Reason, ReasonOversized)
			}
			if got.Rect != lastGood {
				t.Errorf("Rect = %v, want lastGood %v", got.Rect, lastGood)
			}
			if !errors.Is(got.Err(), errors.ErrCodeOversized) {
				t.Errorf("Err() = %v, want code %s", got.Err(), errors.ErrCodeOversized)
			}
		})
	}
}

func TestResolveExactRingThicknessFits(t *testing.T) {
	b := level1()
	candidate := geometry.Rect{X: 30, Y: 30, W: b.Margin, H: b.Margin}

	got := Resolve(candidate, b, geometry.Rect{})
	if got.Rejected {
		t.Fatalf("square of exactly the ring thickness was rejected: %s", got.Reason)
	}
	if b.Intersects(got.Rect) {
		t.Errorf("result %v intersects the boundary", got.Rect)
	}
}

func TestResolveNoValidBand(t *testing.T) {
	// A boundary whose declared ring is wider than the free space around
	// it: every banded position either lands on the lock or leaves the
	// frame.
	b := &geometry.Boundary{Left: 0, Top: 0, Right: 100, Bottom: 100, Margin: 10}
	lastGood := geometry.Rect{X: 1, Y: 1, W: 5, H: 5}

	got := Resolve(geometry.Rect{X: 40, Y: 40, W: 5, H: 5}, b, lastGood)
	if !got.Rejected || got.Reason != ReasonNoValidBand {
		t.Fatalf("Resolve() = %+v, want %s", got, ReasonNoValidBand)
	}
	if got.Rect != lastGood {
		t.Errorf("Rect = %v, want lastGood %v", got.Rect, lastGood)
	}
	if !errors.Is(got.Err(), errors.ErrCodeNoValidBand) {
		t.Errorf("Err() = %v", got.Err())
	}
}

func TestResolveZeroMarginRejectsOverlap(t *testing.T) {
	b := sector.BoundaryForSide(100)
	got := Resolve(geometry.Rect{X: 10, Y: 10, W: 1, H: 1}, b, geometry.Rect{})
	if !got.Rejected {
		t.Fatalf("Resolve() = %+v, want rejection with a zero-width ring", got)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	for _, level := range []sector.Level{sector.Level1, sector.Level2, sector.Level3, sector.Level4} {
		b := sector.BoundaryFor(level)
		for _, candidate := range []geometry.Rect{
			{X: 20, Y: 7, W: 30, H: 5},
			{X: 8, Y: 40, W: 5, H: 5},
			{X: 48, Y: 48, W: 3, H: 3},
		} {
			first := Resolve(candidate, b, geometry.Rect{})
			if first.Rejected {
				continue
			}
			second := Resolve(first.Rect, b, first.Rect)
			if second.Adjusted || second.Rejected {
				t.Errorf("level %d: second pass on %v = %+v, want unchanged acceptance", level, first.Rect, second)
			}
			if second.Rect != first.Rect {
				t.Errorf("level %d: second pass moved %v to %v", level, first.Rect, second.Rect)
			}
		}
	}
}

func TestResolveThinRectanglesAlwaysLandOutside(t *testing.T) {
	b := level1()
	for h := 0.5; h <= b.Margin; h += 0.5 {
		for w := 1.0; w <= 100; w += 7 {
			for y := 0.0; y+h <= 100; y += 3.3 {
				for x := 0.0; x+w <= 100; x += 4.1 {
					candidate := geometry.Rect{X: x, Y: y, W: w, H: h}
					got := Resolve(candidate, b, geometry.Rect{})
					if got.Rejected {
						t.Fatalf("Resolve(%v) rejected with %s", candidate, got.Reason)
					}
					if b.Intersects(got.Rect) {
						t.Fatalf("Resolve(%v) = %v intersects the lock", candidate, got.Rect)
					}
					if got.Adjusted && w > b.Margin && got.Band != BandTop && got.Band != BandBottom {
						t.Fatalf("Resolve(%v) used band %v for a wide rectangle", candidate, got.Band)
					}
					if !got.Rect.InFrame() {
						t.Fatalf("Resolve(%v) = %v leaves the frame", candidate, got.Rect)
					}
				}
			}
		}
	}
}

func TestCandidatesOrder(t *testing.T) {
	b := level1()

	tests := []struct {
		name string
		r    geometry.Rect
		want []Band
	}{
		{name: "small square", r: geometry.Rect{X: 40, Y: 40, W: 5, H: 5}, want: []Band{BandTop, BandBottom, BandLeft, BandRight}},
		{name: "wide strip", r: geometry.Rect{X: 40, Y: 40, W: 30, H: 5}, want: []Band{BandTop, BandBottom}},
		{name: "tall strip", r: geometry.Rect{X: 40, Y: 40, W: 5, H: 30}, want: []Band{BandLeft, BandRight}},
		{name: "too big", r: geometry.Rect{X: 40, Y: 40, W: 30, H: 30}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Candidates(tt.r, *b)
			if len(got) != len(tt.want) {
				t.Fatalf("len(Candidates()) = %d, want %d", len(got), len(tt.want))
			}
			for i, c := range got {
				if c.Band != tt.want[i] {
					t.Errorf("Candidates()[%d].Band = %v, want %v", i, c.Band, tt.want[i])
				}
				if c.Rect.W != tt.r.W || c.Rect.H != tt.r.H {
					t.Errorf("candidate %v changed the size of %v", c.Rect, tt.r)
				}
			}
		})
	}
}

func TestReasonMessages(t *testing.T) {
	if ReasonOversized.Message() != NoticeOversized {
		t.Errorf("ReasonOversized.Message() = %q", ReasonOversized.Message())
	}
	if ReasonNoValidBand.Message() != NoticeNoValidBand {
		t.Errorf("ReasonNoValidBand.Message() = %q", ReasonNoValidBand.Message())
	}
	if ReasonNone.Message() != "" || ReasonNone.Code() != "" {
		t.Error("ReasonNone should have no message and no code")
	}
	if (Result{}).Err() != nil {
		t.Error("accepted Result.Err() should be nil")
	}
}

func TestBandString(t *testing.T) {
	if BandLeft.String() != "left" {
		t.Errorf("BandLeft.String() = %q", BandLeft.String())
	}
	if Band(42).String() != "unknown" {
		t.Errorf("Band(42).String() = %q", Band(42).String())
	}
}
