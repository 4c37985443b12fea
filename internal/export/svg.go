// Package export renders soft-body frames as SVG.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/psbody/internal/dynamo"
	"github.com/san-kum/psbody/internal/viz"
	"gonum.org/v1/gonum/spatial/r2"
)

const background = "#0a0a0a"

// CanvasToSVG converts a Braille canvas to SVG dots, scale pixels per dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.PixelSize()
	width := float64(pw) * scale
	height := float64(ph) * scale

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString(`<g fill="#00ff00">` + "\n")

	dotRadius := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// bounds maps world points into a width x height image with 10% padding,
// keeping the aspect ratio so a circle stays round.
type bounds struct {
	minX, minY, scale float64
	width, height     float64
	offX, offY        float64
}

func fit(points []dynamo.Vec2, width, height int) bounds {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	w, h := float64(width), float64(height)
	scale := min(w/rangeX, h/rangeY)
	return bounds{
		minX: minX, minY: minY, scale: scale,
		width: w, height: h,
		offX: (w - rangeX*scale) / 2,
		offY: (h - rangeY*scale) / 2,
	}
}

func (b bounds) project(p dynamo.Vec2) (float64, float64) {
	x := b.offX + (p.X-b.minX)*b.scale
	y := b.height - b.offY - (p.Y-b.minY)*b.scale
	return x, y
}

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// FrameToSVG draws the closed outline of a frame and, optionally, its
// particle normals.
func FrameToSVG(f dynamo.Frame, width, height int, normals bool) string {
	if f.Len() < 2 {
		return ""
	}

	b := fit(f.Positions, width, height)
	var sb strings.Builder
	header(&sb, b.width, b.height)

	sb.WriteString(`<path fill="#00ffff" fill-opacity="0.15" stroke="#00ffff" stroke-width="1.5" d="`)
	for i, p := range f.Positions {
		x, y := b.project(p)
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString(` Z"/>` + "\n")

	if normals && len(f.Normals) == f.Len() {
		// normal ticks a fifth of the mean edge length
		length := 0.0
		for i := range f.Positions {
			length += r2.Norm(r2.Sub(f.Positions[(i+1)%f.Len()], f.Positions[i]))
		}
		length /= float64(f.Len()) * 5

		sb.WriteString(`<g stroke="#ff00ff" stroke-width="1">` + "\n")
		for i, p := range f.Positions {
			x0, y0 := b.project(p)
			x1, y1 := b.project(r2.Add(p, r2.Scale(length, f.Normals[i])))
			fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", x0, y0, x1, y1)
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG draws an open polyline through points, such as a
// centroid path.
func TrajectoryToSVG(points []dynamo.Vec2, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	b := fit(points, width, height)
	var sb strings.Builder
	header(&sb, b.width, b.height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, strokeColor)

	for i, p := range points {
		x, y := b.project(p)
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
