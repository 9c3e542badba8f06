package render

import (
	"strings"

	"github.com/matzehuels/sectorlock/pkg/geometry"
	"github.com/matzehuels/sectorlock/pkg/sector"
)

// Cell classifies one character of a rasterized frame.
type Cell uint8

// Cell kinds, lowest drawing priority first.
const (
	CellFree Cell = iota
	CellLocked
	CellRing
	CellSelection
)

var cellGlyphs = [...]rune{
	CellFree:      ' ',
	CellLocked:    '░',
	CellRing:      '·',
	CellSelection: '█',
}

// Glyph returns the plain-text character for the cell.
func (c Cell) Glyph() rune {
	if int(c) >= len(cellGlyphs) {
		return '?'
	}
	return cellGlyphs[c]
}

// Grid is a rasterized frame, stored row by row.
type Grid struct {
	Cols, Rows int
	Cells      []Cell
}

// At returns the cell at (col, row). Out of range positions are free.
func (g Grid) At(col, row int) Cell {
	if col < 0 || row < 0 || col >= g.Cols || row >= g.Rows {
		return CellFree
	}
	return g.Cells[row*g.Cols+col]
}

// Count returns how many cells have kind c.
func (g Grid) Count(c Cell) int {
	n := 0
	for _, cell := range g.Cells {
		if cell == c {
			n++
		}
	}
	return n
}

// String draws the grid with plain glyphs, one line per row.
func (g Grid) String() string {
	var sb strings.Builder
	sb.Grow((g.Cols + 1) * g.Rows * 3)
	for row := range g.Rows {
		for col := range g.Cols {
			sb.WriteRune(g.At(col, row).Glyph())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Rasterize maps f onto a cols×rows grid. A cell is part of the selection
// when its area overlaps the selection, so a selection smaller than a cell
// stays visible. A cell is locked when its center lies inside the lock.
func Rasterize(f Frame, cols, rows int) Grid {
	cols, rows = max(cols, 1), max(rows, 1)
	g := Grid{Cols: cols, Rows: rows, Cells: make([]Cell, cols*rows)}

	cw := geometry.FrameSide / float64(cols)
	ch := geometry.FrameSide / float64(rows)
	rings := sector.Rings()

	for row := range rows {
		for col := range cols {
			cell := geometry.Rect{X: float64(col) * cw, Y: float64(row) * ch, W: cw, H: ch}
			g.Cells[row*cols+col] = classify(f, cell, rings)
		}
	}
	return g
}

func classify(f Frame, cell geometry.Rect, rings []sector.Ring) Cell {
	if f.HasSelection && geometry.Intersects(cell, f.Selection) {
		return CellSelection
	}
	for _, ring := range rings {
		if onOutline(cell, ring.Side) {
			return CellRing
		}
	}
	if b := f.Boundary; b != nil {
		cx, cy := cell.CenterX(), cell.CenterY()
		if cx > b.Left && cx < b.Right && cy > b.Top && cy < b.Bottom {
			return CellLocked
		}
	}
	return CellFree
}

// onOutline reports whether cell covers an edge of the centered square of
// the given side.
func onOutline(cell geometry.Rect, side float64) bool {
	lo := (geometry.FrameSide - side) / 2
	hi := geometry.FrameSide - lo
	spans := func(a0, a1, v float64) bool { return v >= a0 && v < a1 }

	withinX := cell.Right() > lo && cell.X < hi
	withinY := cell.Bottom() > lo && cell.Y < hi
	vertical := withinY && (spans(cell.X, cell.Right(), lo) || spans(cell.X, cell.Right(), hi))
	horizontal := withinX && (spans(cell.Y, cell.Bottom(), lo) || spans(cell.Y, cell.Bottom(), hi))
	return vertical || horizontal
}
