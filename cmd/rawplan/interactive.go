package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/rawcodec/schema"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	shapeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectPlan modelState = iota
	stateFilter
	stateShowPlan
)

type interactiveModel struct {
	err      error
	files    []string
	plans    []*schema.Plan
	visible  []*schema.Plan
	filter   textinput.Model
	detail   viewport.Model
	selected int
	width    int
	height   int
	loaded   bool
	state    modelState
}

type loadedMsg struct {
	err   error
	plans []*schema.Plan
}

func newInteractiveModel(files []string) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "type name"
	ti.Width = 40
	return &interactiveModel{
		files:  files,
		filter: ti,
		detail: viewport.New(80, 20),
		state:  stateSelectPlan,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	plans, err := loadPlans(m.files)
	return loadedMsg{plans: plans, err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.detail.Width = msg.Width
		m.detail.Height = max(msg.Height-4, 1)

	case loadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.plans = msg.plans
		m.applyFilter()

	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectPlan && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectPlan && m.selected < len(m.visible)-1 {
				m.selected++
			}

		case "/":
			if m.state == stateSelectPlan {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "enter":
			if m.state == stateSelectPlan && len(m.visible) > 0 {
				m.detail.SetContent(describe(m.visible[m.selected]))
				m.detail.GotoTop()
				m.state = stateShowPlan
				return m, nil
			}

		case "esc":
			if m.state == stateShowPlan {
				m.state = stateSelectPlan
				return m, nil
			}
		}
	}

	if m.state == stateShowPlan {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter", "esc":
		if msg.String() == "esc" {
			m.filter.SetValue("")
			m.applyFilter()
		}
		m.filter.Blur()
		m.state = stateSelectPlan
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *interactiveModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for _, p := range m.plans {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) {
			m.visible = append(m.visible, p)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if !m.loaded {
		return "Loading plans..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Codec Plans"))
	b.WriteString(" ")
	b.WriteString(strings.Join(m.files, ", "))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectPlan, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		if len(m.visible) == 0 {
			b.WriteString(helpStyle.Render("no matching types"))
			b.WriteString("\n")
		}
		for i, p := range m.visible {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + summary(p)))
			} else {
				b.WriteString("  " + formatPlan(p))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.state == stateFilter {
			b.WriteString(helpStyle.Render("enter apply • esc clear"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ select • enter show • / filter • q quit"))
		}

	case stateShowPlan:
		b.WriteString(m.detail.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func formatPlan(p *schema.Plan) string {
	s := summary(p)
	shape := p.Shape.String()
	return shapeStyle.Render(shape) + nameStyle.Render(strings.TrimPrefix(s, shape))
}

func runInteractive(files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("show: no input files")
	}
	p := tea.NewProgram(newInteractiveModel(files), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
