package export

import (
	"strings"
	"testing"

	"github.com/san-kum/psbody/internal/dynamo"
	"github.com/san-kum/psbody/internal/viz"
)

func square() dynamo.Frame {
	return dynamo.Frame{
		Positions: []dynamo.Vec2{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1}},
		Normals:   []dynamo.Vec2{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1}},
		Volume:    2,
	}
}

func TestFrameToSVG(t *testing.T) {
	svg := FrameToSVG(square(), 240, 240, false)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document:\n%s", svg)
	}
	if !strings.Contains(svg, " Z\"/>") {
		t.Error("outline should be a closed path")
	}
	if strings.Count(svg, " L") != 3 {
		t.Errorf("expected 3 line segments, got %d", strings.Count(svg, " L"))
	}
	if strings.Contains(svg, "<line") {
		t.Error("normals drawn while disabled")
	}
	// padded range 2.4 over 240px, centered: (1,0) lands at x=220 y=120
	if !strings.Contains(svg, "M220.0,120.0") {
		t.Errorf("unexpected first vertex in\n%s", svg)
	}
}

func TestFrameToSVG_Normals(t *testing.T) {
	svg := FrameToSVG(square(), 200, 100, true)
	if n := strings.Count(svg, "<line"); n != 4 {
		t.Errorf("expected 4 normals, got %d", n)
	}
}

func TestFrameToSVG_TooShort(t *testing.T) {
	if FrameToSVG(dynamo.Frame{Positions: []dynamo.Vec2{{}}}, 10, 10, true) != "" {
		t.Error("single point frame should render empty")
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	path := []dynamo.Vec2{{X: 0, Y: 0}, {X: 1, Y: -1}, {X: 2, Y: -1.5}}
	svg := TrajectoryToSVG(path, 100, 100, "#ff0000")
	if !strings.Contains(svg, `stroke="#ff0000"`) || strings.Count(svg, " L") != 2 {
		t.Errorf("unexpected trajectory svg:\n%s", svg)
	}
	if TrajectoryToSVG(path[:1], 100, 100, "#fff") != "" {
		t.Error("single point trajectory should render empty")
	}
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)

	svg := CanvasToSVG(c, 2)
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(svg, `cx="1.0" cy="1.0"`) {
		t.Error("first dot misplaced")
	}
	if CanvasToSVG(nil, 1) != "" {
		t.Error("nil canvas should render empty")
	}
}
