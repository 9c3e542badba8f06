// Package sector defines the concentric sector model of the placement frame.
//
// # Sectors
//
// The frame is divided into four nested squares, sized by cumulative area
// rather than by side length:
//
//	Sector 1 (outer ring)  33% of the area
//	Sector 2               33%
//	Sector 3               33%
//	Center                  1%
//
// A square covering a fraction f of the frame area has side sqrt(f)*100, so
// the sector outlines sit at sides 10 (center), ~58.31 (center + Sector 3),
// ~81.85 (center + Sectors 3 and 2) and 100 (the frame itself).
//
// # Unlock Levels
//
// An unlock [Level] controls how many sectors, counted from the outside,
// are available to the selection. Everything inside the active lock
// boundary is forbidden:
//
//	Level 1: Sector 1 free        lock side ~81.85
//	Level 2: Sectors 1–2 free     lock side ~58.31
//	Level 3: Sectors 1–3 free     lock side 10 (center only)
//	Level 4: everything free      no lock
//
// Levels outside 1..4 are clamped. The zero value clamps to [Level1], which
// reproduces the fixed "outer ring only" lock of widgets that predate
// configurable levels.
//
// # Usage
//
//	b := sector.BoundaryFor(sector.Level2)
//	if b == nil {
//	    // fully unlocked
//	}
//	fmt.Printf("ring thickness %.2f%%\n", b.Margin)
package sector
