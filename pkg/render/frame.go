package render

import (
	"github.com/matzehuels/sectorlock/pkg/geometry"
	"github.com/matzehuels/sectorlock/pkg/sector"
	"github.com/matzehuels/sectorlock/pkg/selection"
)

// Frame is the drawable state of one widget.
type Frame struct {
	Level        sector.Level       `json:"level"`
	Boundary     *geometry.Boundary `json:"boundary,omitempty"`
	Selection    geometry.Rect      `json:"selection"`
	HasSelection bool               `json:"has_selection"`
}

// FrameOf captures the current state of c.
func FrameOf(c *selection.Controller) Frame {
	return FrameFromSnapshot(c.Snapshot())
}

// FrameFromSnapshot builds a frame from a controller snapshot.
func FrameFromSnapshot(s selection.Snapshot) Frame {
	level := sector.ClampLevel(int(s.Level))
	return Frame{
		Level:        level,
		Boundary:     sector.BoundaryFor(level),
		Selection:    s.Rect,
		HasSelection: s.HasSelection,
	}
}

// LockLabel returns the badge text of the lock overlay.
func (f Frame) LockLabel() string {
	if f.Boundary == nil {
		return ""
	}
	return f.Level.LockLabel()
}
