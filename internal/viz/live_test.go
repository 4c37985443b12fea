package viz

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/psbody/internal/config"
	"github.com/san-kum/psbody/internal/experiment"
)

func newTestModel(t *testing.T, preset string) Model {
	t.Helper()
	reg := experiment.NewRegistry()
	exp, err := experiment.New(config.GetPreset(preset), reg)
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(exp, reg)
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	if key == " " {
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	} else {
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelTickAdvances(t *testing.T) {
	m := newTestModel(t, "jelly")

	for i := 0; i < 5; i++ {
		next, cmd := m.Update(TickMsg{})
		if cmd == nil {
			t.Fatal("tick should schedule the next tick")
		}
		m = next.(Model)
	}

	if got := m.exp.GetSimulator().Ticks(); got != 5 {
		t.Errorf("expected 5 ticks, got %d", got)
	}
	if len(m.areaHistory) != 5 {
		t.Errorf("expected 5 area samples, got %d", len(m.areaHistory))
	}
	if len(m.energy) != 5 {
		t.Errorf("expected 5 energy samples, got %d", len(m.energy))
	}
	if m.View() == "" {
		t.Error("empty view")
	}
}

func TestModelPause(t *testing.T) {
	m := newTestModel(t, "square")
	m = press(m, " ")

	next, _ := m.Update(TickMsg{})
	m = next.(Model)
	if m.exp.GetSimulator().Ticks() != 0 {
		t.Error("paused model should not step")
	}
}

func TestModelAdjustParam(t *testing.T) {
	m := newTestModel(t, "square")

	// sorted keys: damping elasticity mass pressure
	m = press(m, "[")
	if m.paramKeys[m.selected] != "pressure" {
		t.Fatalf("expected pressure selected, got %s", m.paramKeys[m.selected])
	}

	m = press(m, "-")
	if p := m.exp.Body().Params().Pressure; p != 0 {
		t.Errorf("lowering zero pressure should keep it at 0, got %g", p)
	}
	m = press(m, "+")
	if p := m.exp.Body().Params().Pressure; p != 1 {
		t.Errorf("raising zero pressure should set 1, got %g", p)
	}
	m = press(m, "+")
	if p := m.exp.Body().Params().Pressure; p < 1.09 || p > 1.11 {
		t.Errorf("expected pressure 1.1, got %g", p)
	}

	m = press(m, "x")
	if p := m.exp.Body().Params().Pressure; p != 0 {
		t.Errorf("restart should restore configured pressure, got %g", p)
	}
}

func TestModelRecenter(t *testing.T) {
	m := newTestModel(t, "bouncy")
	for i := 0; i < 10; i++ {
		next, _ := m.Update(TickMsg{})
		m = next.(Model)
	}

	m = press(m, "r")
	c := m.exp.GetSimulator().Centroid()
	if c.X*c.X+c.Y*c.Y > 1e-18 {
		t.Errorf("centroid not at origin after recenter: %v", c)
	}
}

func TestCanvasImage(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(1, 2)

	img := c.Image()
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Fatalf("unexpected bounds %v", b)
	}
	if img.ColorIndexAt(4, 8) != 1 || img.ColorIndexAt(0, 0) != 0 {
		t.Error("dot not rendered where expected")
	}
}

func TestGradientText(t *testing.T) {
	if GradientText("", "#000000", "#ffffff") != "" {
		t.Error("empty text should render empty")
	}
	if r, g, b := parseHex("#10a0ff"); r != 0x10 || g != 0xa0 || b != 0xff {
		t.Errorf("parseHex = %d %d %d", r, g, b)
	}
	if r, _, _ := parseHex("bogus"); r != 255 {
		t.Error("invalid hex should fall back to white")
	}
}

func TestSparklineChart(t *testing.T) {
	got := []rune(SparklineChart([]float64{0, 1}, 2))
	if len(got) != 2 || got[0] != '▁' || got[1] != '█' {
		t.Errorf("unexpected sparkline %q", string(got))
	}
}
