package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/psbody/internal/dynamo"
	"github.com/san-kum/psbody/internal/experiment"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 300
	paramStep       = 1.1
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model is the live viewer for one experiment. Each TickMsg advances one
// host round trip.
type Model struct {
	exp     *experiment.Experiment
	reg     *experiment.Registry
	canvas  *Canvas
	running bool
	normals bool
	err     error

	paramKeys   []string
	selected    int
	areaHistory []float64
	energy      []float64
	restArea    float64

	recording bool
	frames    []*image.Paletted
	showHelp  bool
	quit      bool
}

func NewModel(exp *experiment.Experiment, reg *experiment.Registry) Model {
	params := exp.Body().GetParams()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return Model{
		exp:         exp,
		reg:         reg,
		canvas:      NewCanvas(width, height),
		running:     true,
		paramKeys:   keys,
		areaHistory: make([]float64, 0, historyCapacity),
		restArea:    exp.Body().RestArea(),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Err returns the error that stopped the simulation, if any.
func (m Model) Err() error { return m.err }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.exp.Recenter()
		case "x":
			m.restart()
		case "n":
			m.normals = !m.normals
		case "[":
			m.cycleParam(-1)
		case "]":
			m.cycleParam(1)
		case "+", "=":
			m.adjustParam(paramStep)
		case "-", "_":
			m.adjustParam(1 / paramStep)
		case "g":
			if m.recording {
				_ = m.saveGIF("psbody.gif")
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			names := ThemeNames()
			for i, name := range names {
				if name == CurrentTheme.Name {
					SetTheme(names[(i+1)%len(names)])
					break
				}
			}
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.recording {
			m.frames = append(m.frames, m.canvas.Image())
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	f, err := m.exp.Tick()
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	ratio := 0.0
	if m.restArea > 0 {
		ratio = f.Volume / m.restArea
	}
	m.areaHistory = push(m.areaHistory, ratio)
	if h, ok := m.exp.GetSimulator().System().(dynamo.Hamiltonian); ok {
		m.energy = push(m.energy, h.Energy(m.exp.GetSimulator().State()))
	}
}

func push(history []float64, v float64) []float64 {
	history = append(history, v)
	if len(history) > historyCapacity {
		history = history[1:]
	}
	return history
}

func (m *Model) cycleParam(dir int) {
	n := len(m.paramKeys)
	if n == 0 {
		return
	}
	m.selected = ((m.selected+dir)%n + n) % n
}

// adjustParam scales the selected body parameter. A zero value can only be
// raised, to 1.
func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.exp.Body().GetParams()[key]
	next := val * factor
	if val == 0 {
		if factor <= 1 {
			return
		}
		next = 1
	}
	if err := m.exp.Body().SetParam(key, next); err != nil {
		m.err = err
	}
}

// restart rebuilds the experiment from its config, dropping runtime
// parameter edits.
func (m *Model) restart() {
	exp, err := experiment.New(m.exp.Config().Clone(), m.reg)
	if err != nil {
		m.err = err
		return
	}
	m.exp = exp
	m.err = nil
	m.running = true
	m.areaHistory = m.areaHistory[:0]
	m.energy = m.energy[:0]
}

func (m *Model) draw() {
	m.canvas.Clear()
	f := m.exp.GetSimulator().Frame()
	center := m.exp.GetSimulator().Centroid()
	radius := m.exp.Config().Body.Radius
	vp := NewViewport(m.canvas, center, 2*radius)

	cfg := m.exp.Config()
	if cfg.World.Floor && cfg.World.Host != "none" {
		m.canvas.DrawFloor(vp, cfg.World.FloorY)
	}
	normalLen := 0.0
	if m.normals {
		normalLen = 0.2 * radius
	}
	m.canvas.DrawRing(vp, f.Positions, f.Normals, normalLen)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return lipgloss.NewStyle().Foreground(CurrentTheme.Error).Bold(true).Render("STOPPED")
	case !m.running:
		return lipgloss.NewStyle().Foreground(CurrentTheme.Warning).Bold(true).Render("PAUSED")
	case m.recording:
		return lipgloss.NewStyle().Foreground(CurrentTheme.Error).Bold(true).Render("RECORDING")
	}
	return lipgloss.NewStyle().Foreground(CurrentTheme.Success).Bold(true).Render("RUNNING")
}

func (m Model) View() string {
	if m.quit {
		return ""
	}
	sim := m.exp.GetSimulator()
	cfg := m.exp.Config()

	canvasView := canvasStyle.Foreground(CurrentTheme.Primary).Render(m.canvas.String())

	var s strings.Builder
	header := lipgloss.NewStyle().Foreground(CurrentTheme.Secondary).Bold(true).MarginBottom(1)
	s.WriteString(header.Render(strings.ToUpper(cfg.Name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.areaHistory) > 1 {
		chart := asciigraph.Plot(m.areaHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Area / rest"))
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Padding(1, 0).Render(chart) + "\n\n")
	}

	c := sim.Centroid()
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", sim.Time())) + "\n")
	s.WriteString(labelStyle.Render("Area") + valueStyle.Render(fmt.Sprintf("%.4f", sim.Volume())) + "\n")
	s.WriteString(labelStyle.Render("Centroid") + valueStyle.Render(fmt.Sprintf("(%.2f, %.2f)", c.X, c.Y)) + "\n")
	s.WriteString(labelStyle.Render("Host") + valueStyle.Render(cfg.World.Host) + "\n")
	if e, ok := sim.System().(dynamo.Hamiltonian); ok {
		s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.3f", e.Energy(sim.State()))) + "\n")
		if len(m.energy) > 1 {
			s.WriteString(labelStyle.Render("") + lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Render(SparklineChart(m.energy, 24)) + "\n")
		}
	}

	s.WriteString("\nPARAMETERS\n")
	params := m.exp.Body().GetParams()
	active := lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true)
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-10s %.3f", k, params[k])
		if i == m.selected {
			s.WriteString(active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(CurrentTheme.Error).Width(40).Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Center X:Restart\nN:Normals T:Theme ?:Help\n[ ]:Select +-:Tune Q:Quit"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Recenter body            ║
║  X        - Restart from rest shape  ║
║  N        - Toggle normals           ║
║  [ ]      - Select parameter         ║
║  + -      - Scale parameter (10%)    ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Image renders the canvas dots as a black and white bitmap.
func (c *Canvas) Image() *image.Paletted {
	const charW, charH = 8, 16
	dotW, dotH := charW/2, charH/4
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), color.Palette{color.Black, color.White})
	pw, ph := c.PixelSize()
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	return img
}

func (m *Model) saveGIF(path string) error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// RunLive opens the live viewer on exp.
func RunLive(exp *experiment.Experiment, reg *experiment.Registry) error {
	final, err := tea.NewProgram(NewModel(exp, reg), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.err != nil {
		return m.err
	}
	return nil
}
