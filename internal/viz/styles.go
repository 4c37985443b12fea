package viz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GradientText colors each rune of text along a linear ramp between two hex
// colors.
func GradientText(text string, startColor, endColor lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	r0, g0, b0 := parseHex(string(startColor))
	r1, g1, b1 := parseHex(string(endColor))
	lerp := func(a, b int, t float64) int { return a + int(t*float64(b-a)) }

	var out strings.Builder
	last := max(len(runes)-1, 1)
	for i, c := range runes {
		t := float64(i) / float64(last)
		hex := fmt.Sprintf("#%02x%02x%02x", lerp(r0, r1, t), lerp(g0, g1, t), lerp(b0, b1, t))
		out.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(string(c)))
	}
	return out.String()
}

var sparkBars = []rune("▁▂▃▄▅▆▇█")

// SparklineChart renders values as a one-line bar chart of at most width
// bars, each the mean of an equal slice of the series.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	lo, hi := floats.Min(values), floats.Max(values)
	span := hi - lo
	if span == 0 {
		span = 1
	}

	n := min(width, len(values))
	var out strings.Builder
	for i := 0; i < n; i++ {
		bucket := values[i*len(values)/n : (i+1)*len(values)/n]
		level := int((stat.Mean(bucket, nil) - lo) / span * float64(len(sparkBars)-1))
		out.WriteRune(sparkBars[max(0, min(level, len(sparkBars)-1))])
	}
	return out.String()
}

// Separator is a muted horizontal rule with a center mark.
func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Render(left + " ◆ " + right)
}

func keyHints(pairs ...string) string {
	key := lipgloss.NewStyle().Foreground(CurrentTheme.Secondary).Bold(true)
	desc := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(key.Render(pairs[i]) + desc.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 255, 255, 255
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
