// Package render draws the placement widget.
//
// # Overview
//
// A [Frame] is an immutable picture of one controller: the unlock level, the
// active lock boundary and the selection. Renderers never touch the
// controller itself, so a frame can be drawn while the selection keeps
// moving.
//
//	f := render.FrameOf(c)
//	svg := render.RenderSVG(f, render.WithSize(600))
//
// # SVG
//
// [RenderSVG] draws the frame square, the three sector outlines with their
// labels, the lock overlay with its badge and the selection. The selection
// can be filled with an uploaded image, scaled to cover it.
//
// # Character Grid
//
// [Rasterize] maps a frame onto a grid of [Cell] values for terminal
// frontends. Each cell is classified by what its area shows, with the
// selection drawn on top of sector outlines, and outlines on top of the lock.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert an SVG to other formats using
// the external rsvg-convert tool (from librsvg).
package render
