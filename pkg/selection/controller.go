package selection

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/sectorlock/pkg/geometry"
	"github.com/matzehuels/sectorlock/pkg/observability"
	"github.com/matzehuels/sectorlock/pkg/sector"
	"github.com/matzehuels/sectorlock/pkg/snap"
)

// Defaults for a new controller.
const (
	DefaultBase    = 1000.0
	DefaultPadding = 1.0
	DefaultMinStep = 1
	DefaultMaxStep = 20
	DefaultStep    = 10
	DefaultSize    = 10.0
)

// Modifiers applied by NudgeKey.
const (
	FastFactor = 2.0
	FineFactor = 0.2
)

// minPercent is the smallest selection side on the normalized scale.
const minPercent = 0.01

// Outcome is the result of one controller operation.
type Outcome struct {
	Rect     geometry.Rect `json:"rect"`
	Adjusted bool          `json:"adjusted"`
	Rejected bool          `json:"rejected"`
	Reason   snap.Reason   `json:"reason,omitempty"`
	Notice   string        `json:"notice,omitempty"`
	Band     snap.Band     `json:"-"`
}

// Err returns a coded error for rejected outcomes and nil otherwise.
func (o Outcome) Err() error {
	return snap.Result{Rejected: o.Rejected, Reason: o.Reason}.Err()
}

// Option configures a Controller.
type Option func(*Controller)

func WithBase(units float64) Option {
	return func(c *Controller) {
		if units > 0 {
			c.base = units
		}
	}
}

func WithPadding(p float64) Option {
	return func(c *Controller) {
		if p >= 0 {
			c.pad = p
		}
	}
}

// WithStepBounds sets the range SetStep clamps into. Ignored when lo < 1
// or hi < lo.
func WithStepBounds(lo, hi int) Option {
	return func(c *Controller) {
		if lo >= 1 && hi >= lo {
			c.minStep, c.maxStep = lo, hi
		}
	}
}

func WithStep(n int) Option           { return func(c *Controller) { c.step = n } }
func WithLevel(l sector.Level) Option { return func(c *Controller) { c.level = sector.ClampLevel(int(l)) } }
func WithObserver(o Observer) Option  { return func(c *Controller) { c.observer = o } }

// WithInitialSize sets the size in design units of the selection placed by
// New.
func WithInitialSize(w, h float64) Option {
	return func(c *Controller) { c.initW, c.initH = w, h }
}

// WithContext sets the context passed to observability hooks.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) { c.ctx = ctx }
}

// Controller owns one selection and its lock state.
type Controller struct {
	mu sync.Mutex

	ctx      context.Context
	observer Observer

	base, pad        float64
	minStep, maxStep int
	step             int
	initW, initH     float64

	level    sector.Level
	boundary *geometry.Boundary

	rect     geometry.Rect
	lastGood geometry.Rect
	has      bool
}

// New returns a controller with the default selection already placed, as
// Create would place it.
func New(opts ...Option) *Controller {
	c := newController(opts...)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.create(c.initW, c.initH)
	return c
}

// newController applies opts without placing a selection, so nothing is
// resolved and no observer is called.
func newController(opts ...Option) *Controller {
	c := &Controller{
		ctx:      context.Background(),
		observer: noopObserver{},
		base:     DefaultBase,
		pad:      DefaultPadding,
		minStep:  DefaultMinStep,
		maxStep:  DefaultMaxStep,
		step:     DefaultStep,
		initW:    DefaultSize,
		initH:    DefaultSize,
		level:    sector.Level1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.observer == nil {
		c.observer = noopObserver{}
	}
	c.step = c.clampStep(c.step)
	c.boundary = sector.BoundaryFor(c.level)
	return c
}

// Create places a new selection of w×h design units in the middle of the
// top-left corner of the free ring, or at the padding offset when nothing is
// locked, then resolves it.
func (c *Controller) Create(w, h float64) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.create(w, h)
}

func (c *Controller) create(w, h float64) Outcome {
	r := geometry.Rect{X: c.pad, Y: c.pad, W: c.toPercent(w), H: c.toPercent(h)}
	if b := c.boundary; b != nil {
		r.X = geometry.Clamp((b.Left-r.W)/2, c.pad, b.Left-r.W)
		r.Y = geometry.Clamp((b.Top-r.H)/2, c.pad, b.Top-r.H)
	}
	return c.commit("create", r.ClampToFrame())
}

// Move nudges the selection one step in dir. DirNone leaves the selection
// untouched and runs no validation.
func (c *Controller) Move(dir Direction) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nudgeDir("move", dir, 1)
}

// NudgeKey is the keyboard path of Move: fast doubles the step, fine scales
// it down to a fifth. Both may be combined.
func (c *Controller) NudgeKey(dir Direction, fast, fine bool) Outcome {
	factor := 1.0
	if fast {
		factor *= FastFactor
	}
	if fine {
		factor *= FineFactor
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nudgeDir("key", dir, factor)
}

func (c *Controller) nudgeDir(op string, dir Direction, factor float64) Outcome {
	dx, dy := dir.Delta()
	if dx == 0 && dy == 0 {
		return c.current()
	}
	s := c.stepPercent() * factor
	return c.nudge(op, dx*s, dy*s)
}

// Nudge moves the selection by (dx, dy) on the normalized scale.
func (c *Controller) Nudge(dx, dy float64) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nudge("nudge", dx, dy)
}

func (c *Controller) nudge(op string, dx, dy float64) Outcome {
	if !c.has {
		return c.current()
	}
	return c.commit(op, c.rect.Translate(dx, dy).ClampToFrame())
}

// Resize changes the selection to w×h design units, keeping its top-left
// corner where the frame allows. Without a selection it behaves like Create.
func (c *Controller) Resize(w, h float64) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.has {
		return c.create(w, h)
	}
	r := geometry.Rect{X: c.rect.X, Y: c.rect.Y, W: c.toPercent(w), H: c.toPercent(h)}
	return c.commit("resize", r.ClampToFrame())
}

// SetUnlockLevel switches the lock to level (clamped into 1..4) and
// re-validates the current selection once against the new boundary.
func (c *Controller) SetUnlockLevel(level int) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := c.level
	c.level = sector.ClampLevel(level)
	c.boundary = sector.BoundaryFor(c.level)
	observability.Selection().OnLevelChange(c.ctx, int(from), int(c.level))

	if !c.has {
		return c.current()
	}
	return c.commit("level", c.rect)
}

// UnlockAll removes the lock.
func (c *Controller) UnlockAll() Outcome { return c.SetUnlockLevel(int(sector.Level4)) }

// LockToSector1 returns to the first stage, where only the outer ring is
// free.
func (c *Controller) LockToSector1() Outcome { return c.SetUnlockLevel(int(sector.Level1)) }

// SetStep sets the nudge step in design units, clamped into the configured
// bounds, and returns the applied value.
func (c *Controller) SetStep(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = c.clampStep(n)
	return c.step
}

func (c *Controller) Step() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// StepBounds returns the range SetStep clamps into.
func (c *Controller) StepBounds() (lo, hi int) {
	return c.minStep, c.maxStep
}

// StepPercent returns the nudge step on the normalized scale.
func (c *Controller) StepPercent() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepPercent()
}

func (c *Controller) UnlockLevel() sector.Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// Boundary returns a copy of the active lock boundary, or nil when nothing
// is locked.
func (c *Controller) Boundary() *geometry.Boundary {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.boundary == nil {
		return nil
	}
	b := *c.boundary
	return &b
}

func (c *Controller) Rect() geometry.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rect
}

func (c *Controller) LastGood() geometry.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastGood
}

func (c *Controller) HasSelection() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.has
}

// commit resolves candidate against the active boundary and stores the
// result. Must be called with c.mu held.
func (c *Controller) commit(op string, candidate geometry.Rect) Outcome {
	start := time.Now()
	res := snap.Resolve(candidate, c.boundary, c.lastGood)
	observability.Selection().OnResolve(c.ctx, op, res.Adjusted, res.Rejected, string(res.Reason), time.Since(start))

	out := Outcome{Rect: res.Rect, Adjusted: res.Adjusted, Rejected: res.Rejected, Reason: res.Reason, Band: res.Band}
	c.rect = res.Rect
	switch {
	case res.Rejected:
		out.Notice = res.Reason.Message()
		c.observer.OnRejected(res.Reason)
	default:
		c.lastGood = res.Rect
		c.has = true
		if res.Adjusted {
			out.Notice = snap.NoticeAdjusted
			c.observer.OnAdjusted(res.Rect)
		}
	}
	return out
}

func (c *Controller) current() Outcome {
	return Outcome{Rect: c.rect}
}

func (c *Controller) toPercent(units float64) float64 {
	return geometry.Clamp(units/c.base*100, minPercent, geometry.FrameSide)
}

func (c *Controller) stepPercent() float64 {
	return float64(c.step) / c.base * 100
}

func (c *Controller) clampStep(n int) int {
	return max(c.minStep, min(c.maxStep, n))
}
