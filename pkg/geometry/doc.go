// Package geometry provides the normalized rectangle model used by the
// placement widget.
//
// # Coordinate System
//
// All coordinates live on a 0–100 scale, expressing a percentage of the
// frame's side length. The origin is the top-left corner of the frame and
// y grows downward:
//
//	(0,0) ─────────────── (100,0)
//	  │                      │
//	  │      ┌──────┐        │
//	  │      │ Rect │        │
//	  │      └──────┘        │
//	  │                      │
//	(0,100) ───────────── (100,100)
//
// A [Rect] is stored as position plus size (X, Y, W, H). A [Boundary] is a
// centered square described by its four edges and the thickness of the
// band between it and the frame edge.
//
// # Intersection
//
// [Intersects] follows the usual axis-aligned test with one important
// detail: rectangles whose edges merely touch do not intersect. A selection
// sitting flush against the lock boundary is therefore valid.
package geometry
