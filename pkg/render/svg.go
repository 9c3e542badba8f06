package render

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/sectorlock/pkg/geometry"
	"github.com/matzehuels/sectorlock/pkg/sector"
)

// DefaultSize is the pixel size of a rendered frame.
const DefaultSize = 600

const frameCSS = `
    .frame { fill: #f8fafc; stroke: #0f172a; stroke-width: 0.4; }
    .boundary { fill: none; stroke: #64748b; stroke-width: 0.2; stroke-dasharray: 1 0.6; }
    .sector-tag { font: 600 2px sans-serif; fill: #475569; }
    .lock-overlay rect { fill: #0f172a; fill-opacity: 0.18; stroke: #0f172a; stroke-width: 0.2; }
    .lock-badge { font: 700 2.4px sans-serif; fill: #0f172a; }
    .mark rect { fill: #38bdf8; fill-opacity: 0.35; stroke: #0284c7; stroke-width: 0.3; }
    .mark.has-image rect { fill: none; }
    .mark.is-invalid rect { stroke: #dc2626; fill: #fca5a5; }`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	size      int
	imageMIME string
	image     []byte
	invalid   bool
	rings     bool
}

// WithSize sets the width and height in pixels.
func WithSize(px int) SVGOption {
	return func(r *svgRenderer) {
		if px > 0 {
			r.size = px
		}
	}
}

// WithImage fills the selection with an image, scaled to cover it.
func WithImage(mime string, data []byte) SVGOption {
	return func(r *svgRenderer) { r.imageMIME, r.image = mime, data }
}

// WithInvalid marks the selection as just rejected.
func WithInvalid() SVGOption { return func(r *svgRenderer) { r.invalid = true } }

// WithoutRings omits the sector outlines.
func WithoutRings() SVGOption { return func(r *svgRenderer) { r.rings = false } }

// RenderSVG draws f as a standalone SVG document. Coordinates inside the
// document use the normalized 0–100 scale.
func RenderSVG(f Frame, opts ...SVGOption) []byte {
	r := svgRenderer{size: DefaultSize, rings: true}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="%d" height="%d">`+"\n",
		r.size, r.size)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", frameCSS)
	buf.WriteString(`  <rect class="frame" x="0" y="0" width="100" height="100"/>` + "\n")

	if r.rings {
		for _, ring := range sector.Rings() {
			renderRing(&buf, ring)
		}
	}
	if f.Boundary != nil {
		renderLock(&buf, *f.Boundary, f.LockLabel())
	}
	if f.HasSelection {
		renderMark(&buf, f.Selection, &r)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderRing(buf *bytes.Buffer, ring sector.Ring) {
	m := (geometry.FrameSide - ring.Side) / 2
	fmt.Fprintf(buf, `  <g class="sector"><rect class="boundary" x="%.4f" y="%.4f" width="%.4f" height="%.4f"/>`,
		m, m, ring.Side, ring.Side)
	fmt.Fprintf(buf, `<text class="sector-tag" x="%.4f" y="%.4f">%s</text></g>`+"\n",
		m+0.8, m+2.6, escapeXML(ring.Label))
}

func renderLock(buf *bytes.Buffer, b geometry.Boundary, label string) {
	side := b.Side()
	fmt.Fprintf(buf, `  <g class="lock-overlay"><rect x="%.4f" y="%.4f" width="%.4f" height="%.4f"/>`,
		b.Left, b.Top, side, side)
	if label != "" {
		fmt.Fprintf(buf, `<text class="lock-badge" x="50" y="%.4f" text-anchor="middle">%s</text>`,
			b.Top+side/2, escapeXML(label))
	}
	buf.WriteString("</g>\n")
}

func renderMark(buf *bytes.Buffer, sel geometry.Rect, r *svgRenderer) {
	class := "mark"
	if len(r.image) > 0 {
		class += " has-image"
	}
	if r.invalid {
		class += " is-invalid"
	}

	fmt.Fprintf(buf, `  <g class="%s">`, class)
	if len(r.image) > 0 {
		fmt.Fprintf(buf, `<clipPath id="mark-clip"><rect x="%.4f" y="%.4f" width="%.4f" height="%.4f"/></clipPath>`,
			sel.X, sel.Y, sel.W, sel.H)
		fmt.Fprintf(buf, `<image href="data:%s;base64,%s" x="%.4f" y="%.4f" width="%.4f" height="%.4f" preserveAspectRatio="xMidYMid slice" clip-path="url(#mark-clip)"/>`,
			escapeXML(r.imageMIME), base64.StdEncoding.EncodeToString(r.image), sel.X, sel.Y, sel.W, sel.H)
	}
	fmt.Fprintf(buf, `<rect x="%.4f" y="%.4f" width="%.4f" height="%.4f"/></g>`+"\n",
		sel.X, sel.Y, sel.W, sel.H)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
