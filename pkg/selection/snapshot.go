package selection

import (
	"github.com/matzehuels/sectorlock/pkg/geometry"
	"github.com/matzehuels/sectorlock/pkg/sector"
)

// Snapshot is the serializable state of a Controller.
type Snapshot struct {
	Level        sector.Level  `json:"level"`
	Step         int           `json:"step"`
	Base         float64       `json:"base"`
	Padding      float64       `json:"padding"`
	Rect         geometry.Rect `json:"rect"`
	LastGood     geometry.Rect `json:"last_good"`
	HasSelection bool          `json:"has_selection"`
}

// Snapshot captures the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Level:        c.level,
		Step:         c.step,
		Base:         c.base,
		Padding:      c.pad,
		Rect:         c.rect,
		LastGood:     c.lastGood,
		HasSelection: c.has,
	}
}

// Restore replaces the state with s without resolving it again. Out of
// range levels and steps are clamped; a non-positive base or a negative
// padding keeps the current value.
func (c *Controller) Restore(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.level = sector.ClampLevel(int(s.Level))
	c.boundary = sector.BoundaryFor(c.level)
	c.step = c.clampStep(s.Step)
	if s.Base > 0 {
		c.base = s.Base
	}
	if s.Padding >= 0 {
		c.pad = s.Padding
	}
	c.rect = s.Rect
	c.lastGood = s.LastGood
	c.has = s.HasSelection
}

// FromSnapshot returns a controller restored from s. Options are applied
// first, so observers and step bounds can be attached. Restoring does not
// resolve the selection and notifies no observer.
func FromSnapshot(s Snapshot, opts ...Option) *Controller {
	c := newController(opts...)
	c.Restore(s)
	return c
}
