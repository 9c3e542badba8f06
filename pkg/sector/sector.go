package sector

import (
	"math"

	"github.com/matzehuels/sectorlock/pkg/geometry"
)

// Area fractions of the nested sector outlines, cumulative from the center.
const (
	AreaCenter  = 0.01
	AreaSector3 = 0.34
	AreaSector2 = 0.67
	AreaFull    = 1.0
)

// Side lengths of the sector outlines on the 0–100 scale.
var (
	SideCenter  = SideForArea(AreaCenter)
	SideSector3 = SideForArea(AreaSector3)
	SideSector2 = SideForArea(AreaSector2)
	SideFull    = SideForArea(AreaFull)
)

// SideForArea converts an area fraction of the frame into the side length
// of the centered square covering it.
func SideForArea(fraction float64) float64 {
	return math.Sqrt(fraction) * 100
}

// Level is an unlock stage.
type Level int

// Unlock levels.
const (
	Level1 Level = iota + 1 // only the outer ring
	Level2                  // Sectors 1 and 2
	Level3                  // everything but the center
	Level4                  // no lock

	MinLevel = Level1
	MaxLevel = Level4
)

// ClampLevel converts n into a valid Level, clamping into [MinLevel, MaxLevel].
func ClampLevel(n int) Level {
	return Level(max(int(MinLevel), min(int(MaxLevel), n)))
}

// Side returns the lock side for the level. Zero means no lock.
func (l Level) Side() float64 {
	return SideFor(l)
}

// Locked reports whether the level restricts placement at all.
func (l Level) Locked() bool {
	return SideFor(l) > 0
}

// LockLabel returns the badge text shown on the lock overlay, or "" when
// nothing is locked.
func (l Level) LockLabel() string {
	switch ClampLevel(int(l)) {
	case Level1:
		return "Locked: Stage 2 & 3"
	case Level2:
		return "Locked: Stage 3"
	case Level3:
		return "Locked: Center"
	}
	return ""
}

// SideFor maps an unlock level to its lock side.
func SideFor(l Level) float64 {
	switch ClampLevel(int(l)) {
	case Level1:
		return SideSector2
	case Level2:
		return SideSector3
	case Level3:
		return SideCenter
	}
	return 0
}

// BoundaryFor returns the lock boundary for the level, or nil when the
// level locks nothing.
func BoundaryFor(l Level) *geometry.Boundary {
	return BoundaryForSide(SideFor(l))
}

// BoundaryForSide returns the centered lock boundary of the given side, or
// nil when side <= 0.
func BoundaryForSide(side float64) *geometry.Boundary {
	return geometry.CenteredBoundary(side)
}

// Ring describes one drawn sector outline.
type Ring struct {
	Label string
	Side  float64
}

// Rings returns the sector outlines drawn on top of the frame, outermost
// first.
func Rings() []Ring {
	return []Ring{
		{Label: "Sector 2 – 33% (locked)", Side: SideSector2},
		{Label: "Sector 3 – 33% (locked)", Side: SideSector3},
		{Label: "Center – 1%", Side: SideCenter},
	}
}
