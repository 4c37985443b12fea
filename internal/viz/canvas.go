package viz

import (
	"math"
	"strings"

	"github.com/san-kum/psbody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// PixelSize returns the canvas size in sub-pixels.
func (c *Canvas) PixelSize() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the sub-pixel at (x, y); out of range pixels are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Viewport maps world coordinates (y up) onto canvas sub-pixels (y down).
type Viewport struct {
	Center dynamo.Vec2
	// Scale is sub-pixels per world unit.
	Scale float64
	W, H  int
}

// NewViewport fits a square of half-size extent around center into the canvas.
func NewViewport(c *Canvas, center dynamo.Vec2, extent float64) Viewport {
	w, h := c.PixelSize()
	scale := 1.0
	if extent > 0 {
		scale = 0.5 * float64(min(w, h)) / extent
	}
	return Viewport{Center: center, Scale: scale, W: w, H: h}
}

func (v Viewport) Project(p dynamo.Vec2) (int, int) {
	d := r2.Sub(p, v.Center)
	x := float64(v.W)/2 + d.X*v.Scale
	y := float64(v.H)/2 - d.Y*v.Scale
	return int(math.Round(x)), int(math.Round(y))
}

// DrawRing draws the closed outline through positions and, when normalLen
// is positive, each particle normal as a short tick.
func (c *Canvas) DrawRing(v Viewport, positions, normals []dynamo.Vec2, normalLen float64) {
	n := len(positions)
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		x0, y0 := v.Project(positions[i])
		x1, y1 := v.Project(positions[(i+1)%n])
		c.DrawLine(x0, y0, x1, y1)
	}
	if normalLen <= 0 || len(normals) != n {
		return
	}
	for i := 0; i < n; i++ {
		x0, y0 := v.Project(positions[i])
		x1, y1 := v.Project(r2.Add(positions[i], r2.Scale(normalLen, normals[i])))
		c.DrawLine(x0, y0, x1, y1)
	}
}

// DrawFloor draws a horizontal line at world height y.
func (c *Canvas) DrawFloor(v Viewport, y float64) {
	_, py := v.Project(dynamo.Vec2{Y: y})
	w, _ := c.PixelSize()
	for x := 0; x < w; x += 2 {
		c.Set(x, py)
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
