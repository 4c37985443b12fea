package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/psbody/internal/config"
	"github.com/san-kum/psbody/internal/experiment"
)

var presetInfo = map[string]string{
	"balloon":  "light and inflated, free floor",
	"jelly":    "soft body on a chipmunk floor",
	"stiff":    "stiff springs, high pressure",
	"square":   "four particles at rest",
	"deflated": "no pressure, sags on the floor",
	"bouncy":   "springy body, elastic floor",
}

const (
	stateMenu = iota
	stateSim
)

// App is a preset picker in front of the live viewer.
type App struct {
	state   int
	cursor  int
	presets []string
	reg     *experiment.Registry
	live    Model
	err     error
}

func NewApp(reg *experiment.Registry) *App {
	if reg == nil {
		reg = experiment.NewRegistry()
	}
	return &App{presets: config.ListPresets(), reg: reg}
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateSim {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			a.state = stateMenu
			return a, nil
		}
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	switch k.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		return a, a.start(a.presets[a.cursor])
	}
	return a, nil
}

func (a *App) start(name string) tea.Cmd {
	exp, err := experiment.New(config.GetPreset(name), a.reg)
	if err != nil {
		a.err = err
		return nil
	}
	a.err = nil
	a.live = NewModel(exp, a.reg)
	a.state = stateSim
	return a.live.Init()
}

func (a *App) View() string {
	if a.state == stateSim {
		return a.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + GradientText("PSBODY", CurrentTheme.Secondary, CurrentTheme.Primary) + "\n")
	b.WriteString("    " + lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Render("pressure soft-body simulator") + "\n")
	b.WriteString("    " + Separator(26) + "\n\n")

	pointer := lipgloss.NewStyle().Foreground(CurrentTheme.Secondary).Bold(true)
	name := lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true)
	accent := lipgloss.NewStyle().Foreground(CurrentTheme.Accent)
	muted := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	for i, p := range a.presets {
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pointer.Render("▸"), name.Render(fmt.Sprintf("%-10s", p)), accent.Render(presetInfo[p])))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", muted.Render(fmt.Sprintf("%-10s", p)), muted.Render(presetInfo[p])))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "esc", "back", "q", "quit") + "\n")
	return b.String()
}

// RunInteractive shows the preset menu and the live viewer.
func RunInteractive(reg *experiment.Registry) error {
	_, err := tea.NewProgram(NewApp(reg), tea.WithAltScreen()).Run()
	return err
}
