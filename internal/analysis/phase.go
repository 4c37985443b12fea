package analysis

import (
	"strings"

	"gonum.org/v1/gonum/floats"
)

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	Points []struct{ X, Y float64 }
}

// AreaPortrait pairs each recorded area with its rate of change, estimated
// by central differences (one-sided at the ends).
func AreaPortrait(times, volumes []float64) *PhasePortrait2D {
	n := len(volumes)
	if n < 2 || len(times) != n {
		return nil
	}

	portrait := &PhasePortrait2D{
		Points: make([]struct{ X, Y float64 }, n),
	}
	for i := range volumes {
		lo, hi := max(i-1, 0), min(i+1, n-1)
		dt := times[hi] - times[lo]
		rate := 0.0
		if dt > 0 {
			rate = (volumes[hi] - volumes[lo]) / dt
		}
		portrait.Points[i].X = volumes[i]
		portrait.Points[i].Y = rate
	}
	return portrait
}

// PhasePortraitToASCII plots the portrait on a width x height character grid
// with 10% margins. Zero axes are drawn when they fall inside the plot.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	xs := make([]float64, len(portrait.Points))
	ys := make([]float64, len(portrait.Points))
	for i, p := range portrait.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	x0, x1 := padded(floats.Min(xs), floats.Max(xs))
	y0, y1 := padded(floats.Min(ys), floats.Max(ys))

	col := func(x float64) int { return int((x - x0) / (x1 - x0) * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-y0)/(y1-y0)*float64(height-1)) }

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	if x0 <= 0 && x1 >= 0 {
		c := col(0)
		for r := range grid {
			grid[r][c] = '│'
		}
	}
	if y0 <= 0 && y1 >= 0 {
		r := row(0)
		for c := range grid[r] {
			if grid[r][c] == '│' {
				grid[r][c] = '┼'
			} else {
				grid[r][c] = '─'
			}
		}
	}
	for i := range xs {
		grid[row(ys[i])][col(xs[i])] = '•'
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func padded(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - span*0.1, hi + span*0.1
}
