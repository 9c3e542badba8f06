// Package pkg provides the core libraries of the SectorLock placement widget.
//
// # Overview
//
// SectorLock keeps a selection rectangle inside the free ring of a square
// frame whose center is locked. The frame is split into nested squares
// (sectors) by area; an unlock level decides how much of the center is
// locked. Moves that would overlap the lock are snapped back onto the ring,
// or refused when no band of the ring can hold the selection.
//
// # Architecture
//
// The typical data flow for one user action:
//
//	key press / HTTP request
//	         ↓
//	    [selection] package (controller: create, move, resize, level)
//	         ↓
//	    [snap] package (accept, snap onto a band, or reject)
//	         ↓
//	    [render] package (SVG, PNG, PDF or character grid)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/sectorlock/pkg/render"
//	    "github.com/matzehuels/sectorlock/pkg/selection"
//	)
//
//	c := selection.New()                  // level 1, default selection placed
//	out := c.Move(selection.DirE)         // nudge one step to the right
//	if out.Rejected {
//	    fmt.Println(out.Notice)
//	}
//	svg := render.RenderSVG(render.FrameOf(c))
//
// # Main Packages
//
// ## Placement Engine
//
// [geometry] - Rectangles and lock boundaries on the normalized 0–100 scale.
//
// [sector] - Sector sides derived from area fractions, unlock levels and
// their lock boundaries.
//
// [snap] - The resolver: a candidate rectangle is accepted, moved onto the
// nearest band of the free ring, or rejected with a reason.
//
// [selection] - The thread-safe controller owning one selection, its last
// good position, the nudge step and the unlock level.
//
// [repeat] - Press-and-hold: repeat a step at a fixed interval until
// released.
//
// ## Output
//
// [render] - Frames, SVG rendering, character grids and conversion to PNG
// and PDF.
//
// ## Serving
//
// [server] - JSON HTTP API over chi. One controller per widget session.
//
// [session] - Session snapshots in memory or Redis, with TTL expiry.
//
// [journal] - A record of adjusted and rejected placements, written to the
// log or to MongoDB.
//
// [httputil] - JSON responses, error mapping and request logging.
//
// ## Infrastructure
//
// [cache] - Rendered frame cache (file or null backend) and retry helpers.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hook interfaces for logging and metrics.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/snap/...               # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [geometry]: https://pkg.go.dev/github.com/matzehuels/sectorlock/pkg/geometry
// [sector]: https://pkg.go.dev/github.com/matzehuels/sectorlock/pkg/sector
// [snap]: https://pkg.go.dev/github.com/matzehuels/sectorlock/pkg/snap
// [selection]: https://pkg.go.dev/github.com/matzehuels/sectorlock/pkg/selection
// [repeat]: https://pkg.go.dev/github.com/matzehuels/sectorlock/pkg/repeat
// [render]: https://pkg.go.dev/github.com/matzehuels/sectorlock/pkg/render
// [server]: https://pkg.go.dev/github.com/matzehuels/sectorlock/pkg/server
// [session]: https://pkg.go.dev/github.com/matzehuels/sectorlock/pkg/session
// [journal]: https://pkg.go.dev/github.com/matzehuels/sectorlock/pkg/journal
// [httputil]: https://pkg.go.dev/github.com/matzehuels/sectorlock/pkg/httputil
// [cache]: https://pkg.go.dev/github.com/matzehuels/sectorlock/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/sectorlock/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/sectorlock/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/sectorlock/pkg/buildinfo
package pkg
