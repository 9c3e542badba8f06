package selection

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/sectorlock/pkg/errors"
	"github.com/matzehuels/sectorlock/pkg/geometry"
	"github.com/matzehuels/sectorlock/pkg/observability"
	"github.com/matzehuels/sectorlock/pkg/sector"
	"github.com/matzehuels/sectorlock/pkg/snap"
)

const tolerance = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < tolerance }

func nearRect(a, b geometry.Rect) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.W, b.W) && near(a.H, b.H)
}

func TestNewPlacesDefaultSelection(t *testing.T) {
	c := New()

	m := sector.BoundaryFor(sector.Level1).Margin
	want := geometry.Rect{X: (m - 1) / 2, Y: (m - 1) / 2, W: 1, H: 1}
	if got := c.Rect(); !nearRect(got, want) {
		t.Errorf("Rect() = %v, want %v", got, want)
	}
	if !c.HasSelection() {
		t.Error("HasSelection() = false, want true")
	}
	if c.LastGood() != c.Rect() {
		t.Errorf("LastGood() = %v, want %v", c.LastGood(), c.Rect())
	}
	if c.Boundary().Intersects(c.Rect()) {
		t.Errorf("default selection %v intersects the lock", c.Rect())
	}
	if c.UnlockLevel() != sector.Level1 {
		t.Errorf("UnlockLevel() = %v, want 1", c.UnlockLevel())
	}
}

func TestCreateWithoutLockUsesPadding(t *testing.T) {
	c := New(WithLevel(sector.Level4))
	out := c.Create(200, 100)

	want := geometry.Rect{X: 1, Y: 1, W: 20, H: 10}
	if out.Rect != want {
		t.Errorf("Rect = %v, want %v", out.Rect, want)
	}
	if out.Adjusted || out.Rejected {
		t.Errorf("Create() = %+v, want plain acceptance", out)
	}
}

func TestCreateClampsToMinimumSize(t *testing.T) {
	c := New(WithLevel(sector.Level4))
	out := c.Create(0.001, 5000)
	if out.Rect.W != minPercent {
		t.Errorf("W = %v, want %v", out.Rect.W, minPercent)
	}
	if out.Rect.H != geometry.FrameSide {
		t.Errorf("H = %v, want %v", out.Rect.H, geometry.FrameSide)
	}
	if !out.Rect.InFrame() {
		t.Errorf("Rect %v is outside the frame", out.Rect)
	}
}

func TestCreateOversizedKeepsLastGood(t *testing.T) {
	c := New()
	before := c.Rect()

	out := c.Create(500, 500)
	if !out.Rejected || out.Reason != snap.ReasonOversized {
		t.Fatalf("Create(500, 500) = %+v, want OVERSIZED", out)
	}
	if out.Notice != snap.NoticeOversized {
		t.Errorf("Notice = %q, want %q", out.Notice, snap.NoticeOversized)
	}
	if c.Rect() != before || c.LastGood() != before {
		t.Errorf("Rect() = %v, LastGood() = %v, want both %v", c.Rect(), c.LastGood(), before)
	}
	if !errors.Is(out.Err(), errors.ErrCodeOversized) {
		t.Errorf("Err() = %v, want code %s", out.Err(), errors.ErrCodeOversized)
	}
}

func TestMoveOutsideLockIsAccepted(t *testing.T) {
	c := New()
	start := c.Rect()

	out := c.Move(DirE)
	if out.Adjusted || out.Rejected {
		t.Fatalf("Move(DirE) = %+v, want plain acceptance", out)
	}
	if !near(out.Rect.X, start.X+1) || !near(out.Rect.Y, start.Y) {
		t.Errorf("Rect = %v, want one step right of %v", out.Rect, start)
	}
	if out.Err() != nil {
		t.Errorf("Err() = %v, want nil", out.Err())
	}
}

func TestMoveNoneIsNoop(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetSelectionHooks(rec)
	defer observability.Reset()

	c := New()
	rec.reset()
	before := c.Rect()

	out := c.Move(DirNone)
	if out.Rect != before || out.Adjusted || out.Rejected {
		t.Errorf("Move(DirNone) = %+v, want unchanged %v", out, before)
	}
	if n := rec.count(""); n != 0 {
		t.Errorf("resolver ran %d times, want 0", n)
	}
}

func TestMoveSnapsIntoRing(t *testing.T) {
	var notes []Outcome
	c := New(WithObserver(ObserverFunc(func(o Outcome) { notes = append(notes, o) })))
	b := c.Boundary()

	var out Outcome
	for range 5 {
		out = c.Move(DirSE)
	}

	if !out.Adjusted {
		t.Fatalf("fifth Move(DirSE) = %+v, want adjustment", out)
	}
	if out.Band != snap.BandTop {
		t.Errorf("Band = %v, want top on an equal-distance corner", out.Band)
	}
	if !near(out.Rect.Y, b.Top-1) {
		t.Errorf("Y = %v, want %v", out.Rect.Y, b.Top-1)
	}
	if b.Intersects(out.Rect) {
		t.Errorf("snapped rect %v intersects the lock", out.Rect)
	}
	if out.Notice != snap.NoticeAdjusted {
		t.Errorf("Notice = %q, want %q", out.Notice, snap.NoticeAdjusted)
	}
	if c.LastGood() != out.Rect {
		t.Errorf("LastGood() = %v, want %v", c.LastGood(), out.Rect)
	}
	if len(notes) != 1 || !notes[0].Adjusted || notes[0].Rect != out.Rect {
		t.Errorf("observer notes = %+v, want one adjustment to %v", notes, out.Rect)
	}
}

func TestMoveClampsIntoFrame(t *testing.T) {
	c := New(WithLevel(sector.Level4))
	for range 10 {
		c.Move(DirNW)
	}
	if got := c.Rect(); got.X != 0 || got.Y != 0 {
		t.Errorf("Rect() = %v, want pinned to origin", got)
	}
}

func TestNudgeKeyModifiers(t *testing.T) {
	tests := []struct {
		name       string
		fast, fine bool
		want       float64
	}{
		{name: "plain", want: 1},
		{name: "fast", fast: true, want: 2},
		{name: "fine", fine: true, want: 0.2},
		{name: "fast and fine", fast: true, fine: true, want: 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(WithLevel(sector.Level4))
			start := c.Rect()
			out := c.NudgeKey(DirE, tt.fast, tt.fine)
			if got := out.Rect.X - start.X; !near(got, tt.want) {
				t.Errorf("moved %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResize(t *testing.T) {
	t.Run("keeps top-left corner", func(t *testing.T) {
		c := New(WithLevel(sector.Level4))
		out := c.Resize(200, 100)
		want := geometry.Rect{X: 1, Y: 1, W: 20, H: 10}
		if out.Rect != want {
			t.Errorf("Rect = %v, want %v", out.Rect, want)
		}
	})

	t.Run("pulls back from the far edge", func(t *testing.T) {
		c := New(WithLevel(sector.Level4))
		c.Nudge(98, 98)
		out := c.Resize(100, 100)
		want := geometry.Rect{X: 90, Y: 90, W: 10, H: 10}
		if !nearRect(out.Rect, want) {
			t.Errorf("Rect = %v, want %v", out.Rect, want)
		}
	})

	t.Run("snaps a wide strip onto the top band", func(t *testing.T) {
		c := New()
		b := c.Boundary()
		start := c.Rect()

		out := c.Resize(300, 80)
		if !out.Adjusted || out.Band != snap.BandTop {
			t.Fatalf("Resize(300, 80) = %+v, want top-band adjustment", out)
		}
		want := geometry.Rect{X: start.X, Y: b.Top - 8, W: 30, H: 8}
		if !nearRect(out.Rect, want) {
			t.Errorf("Rect = %v, want %v", out.Rect, want)
		}
	})
}

func TestSetUnlockLevelTighteningRunsOnePass(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetSelectionHooks(rec)
	defer observability.Reset()

	c := New(WithLevel(sector.Level4))
	c.Nudge(44, 44)
	if got := c.Rect(); !nearRect(got, geometry.Rect{X: 45, Y: 45, W: 1, H: 1}) {
		t.Fatalf("setup: Rect() = %v", got)
	}
	rec.reset()

	out := c.SetUnlockLevel(1)
	if n := rec.count("level"); n != 1 {
		t.Errorf("level change ran the resolver %d times, want 1", n)
	}
	if n := rec.count(""); n != 1 {
		t.Errorf("resolver ran %d times in total, want 1", n)
	}
	if !out.Adjusted {
		t.Fatalf("SetUnlockLevel(1) = %+v, want adjustment", out)
	}
	b := c.Boundary()
	if b.Intersects(out.Rect) {
		t.Errorf("selection %v still intersects the tightened lock", out.Rect)
	}
	if !near(out.Rect.Y, b.Top-1) || !near(out.Rect.X, 45) {
		t.Errorf("Rect = %v, want moved straight up to the top band", out.Rect)
	}
	if got := rec.levels; len(got) != 1 || got[0] != [2]int{4, 1} {
		t.Errorf("level changes = %v, want [[4 1]]", got)
	}
}

func TestSetUnlockLevelTighteningOversized(t *testing.T) {
	var notes []Outcome
	c := New(WithLevel(sector.Level4), WithObserver(ObserverFunc(func(o Outcome) { notes = append(notes, o) })))
	c.Create(500, 500)
	big := c.Rect()

	out := c.SetUnlockLevel(1)
	if !out.Rejected || out.Reason != snap.ReasonOversized {
		t.Fatalf("SetUnlockLevel(1) = %+v, want OVERSIZED", out)
	}
	if c.Rect() != big {
		t.Errorf("Rect() = %v, want rollback to %v", c.Rect(), big)
	}
	if len(notes) != 1 || notes[0].Reason != snap.ReasonOversized {
		t.Errorf("observer notes = %+v, want one OVERSIZED rejection", notes)
	}
}

func TestSetUnlockLevelClamps(t *testing.T) {
	tests := []struct {
		in   int
		want sector.Level
	}{
		{in: -3, want: sector.Level1},
		{in: 0, want: sector.Level1},
		{in: 2, want: sector.Level2},
		{in: 9, want: sector.Level4},
	}

	c := New()
	for _, tt := range tests {
		c.SetUnlockLevel(tt.in)
		if got := c.UnlockLevel(); got != tt.want {
			t.Errorf("SetUnlockLevel(%d): UnlockLevel() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestUnlockAliases(t *testing.T) {
	c := New()
	c.UnlockAll()
	if c.UnlockLevel() != sector.Level4 || c.Boundary() != nil {
		t.Errorf("UnlockAll(): level %v boundary %v, want level 4 and no lock", c.UnlockLevel(), c.Boundary())
	}
	c.LockToSector1()
	if c.UnlockLevel() != sector.Level1 || c.Boundary() == nil {
		t.Errorf("LockToSector1(): level %v, want level 1 with a lock", c.UnlockLevel())
	}
}

func TestStep(t *testing.T) {
	c := New()
	if c.Step() != DefaultStep {
		t.Errorf("Step() = %d, want %d", c.Step(), DefaultStep)
	}
	if got := c.StepPercent(); got != 1 {
		t.Errorf("StepPercent() = %v, want 1", got)
	}

	tests := []struct{ in, want int }{
		{in: 0, want: 1},
		{in: 7, want: 7},
		{in: 50, want: 20},
	}
	for _, tt := range tests {
		if got := c.SetStep(tt.in); got != tt.want {
			t.Errorf("SetStep(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}

	custom := New(WithStepBounds(5, 8), WithStep(100))
	if custom.Step() != 8 {
		t.Errorf("Step() with bounds 5..8 = %d, want 8", custom.Step())
	}
	if lo, hi := custom.StepBounds(); lo != 5 || hi != 8 {
		t.Errorf("StepBounds() = %d..%d, want 5..8", lo, hi)
	}
}

func TestCustomBase(t *testing.T) {
	c := New(WithBase(500), WithLevel(sector.Level4), WithPadding(2))
	want := geometry.Rect{X: 2, Y: 2, W: 2, H: 2}
	if got := c.Rect(); got != want {
		t.Errorf("Rect() = %v, want %v", got, want)
	}
	if got := c.StepPercent(); got != 2 {
		t.Errorf("StepPercent() = %v, want 2", got)
	}
}

func TestSnapshotRestore(t *testing.T) {
	c := New()
	c.SetStep(4)
	c.Move(DirE)
	c.SetUnlockLevel(2)

	s := c.Snapshot()
	restored := FromSnapshot(s)
	if got := restored.Snapshot(); got != s {
		t.Errorf("restored Snapshot() = %+v, want %+v", got, s)
	}
	if b := restored.Boundary(); b == nil || !near(b.Side(), sector.SideSector3) {
		t.Errorf("restored boundary = %+v, want level 2 lock", restored.Boundary())
	}
}

func TestFromSnapshotIsSilent(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetSelectionHooks(hooks)
	t.Cleanup(observability.Reset)

	s := New().Snapshot()
	hooks.reset()

	var notes []Outcome
	obs := ObserverFunc(func(o Outcome) { notes = append(notes, o) })
	// 500×500 design units never fit the level 1 ring, so placing it would
	// be rejected as oversized.
	c := FromSnapshot(s, WithObserver(obs), WithInitialSize(500, 500))

	if len(notes) != 0 {
		t.Errorf("restoring notified %d times: %+v", len(notes), notes)
	}
	if n := hooks.count(""); n != 0 {
		t.Errorf("restoring ran %d resolver passes, want 0", n)
	}
	if got := c.Snapshot(); got != s {
		t.Errorf("Snapshot() = %+v, want %+v", got, s)
	}
}

func TestConcurrentMovesAreSerialized(t *testing.T) {
	c := New()
	dirs := Directions()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(d Direction) {
			defer wg.Done()
			for range 50 {
				c.Move(d)
			}
		}(dirs[i%len(dirs)])
	}
	wg.Wait()

	got := c.Rect()
	if !got.InFrame() {
		t.Errorf("Rect() = %v, outside the frame", got)
	}
	if c.Boundary().Intersects(got) {
		t.Errorf("Rect() = %v intersects the lock", got)
	}
	if got != c.LastGood() {
		t.Errorf("Rect() = %v, LastGood() = %v, want equal after settling", got, c.LastGood())
	}
}

func TestMultiObserver(t *testing.T) {
	var a, b []Outcome
	m := MultiObserver{
		ObserverFunc(func(o Outcome) { a = append(a, o) }),
		ObserverFunc(func(o Outcome) { b = append(b, o) }),
	}
	m.OnRejected(snap.ReasonNoValidBand)
	m.OnAdjusted(geometry.Rect{X: 1, Y: 1, W: 1, H: 1})

	for _, got := range [][]Outcome{a, b} {
		if len(got) != 2 {
			t.Fatalf("got %d notes, want 2", len(got))
		}
		if got[0].Notice != snap.NoticeNoValidBand || !got[0].Rejected {
			t.Errorf("first note = %+v", got[0])
		}
		if !got[1].Adjusted {
			t.Errorf("second note = %+v", got[1])
		}
	}
}

type recordingHooks struct {
	mu     sync.Mutex
	ops    []string
	levels [][2]int
}

func (r *recordingHooks) OnResolve(_ context.Context, op string, _, _ bool, _ string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func (r *recordingHooks) OnLevelChange(_ context.Context, from, to int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = append(r.levels, [2]int{from, to})
}

func (r *recordingHooks) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops, r.levels = nil, nil
}

// count returns the number of resolver passes for op, or all passes when
// op is empty.
func (r *recordingHooks) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.ops {
		if op == "" || o == op {
			n++
		}
	}
	return n
}
