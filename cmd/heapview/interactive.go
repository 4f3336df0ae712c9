package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/heapcodec"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// chromeHeight is the number of lines View spends outside the viewport.
const chromeHeight = 5

type browserModel struct {
	err      error
	store    heapcodec.Reader
	styles   styles
	header   string
	history  []heapcodec.Handle
	kids     []child
	input    textinput.Model
	viewport viewport.Model
	count    int
	current  heapcodec.Handle
	selected int
	jumping  bool
	ready    bool
}

func newBrowserModel(store heapcodec.Reader, count int, root heapcodec.Handle) browserModel {
	ti := textinput.New()
	ti.Placeholder = "handle"
	ti.Prompt = "jump to #"
	ti.Width = 12

	m := browserModel{
		store:    store,
		styles:   newStyles(true),
		input:    ti,
		viewport: viewport.New(80, 20),
		count:    count,
	}
	m.visit(root)
	return m
}

func runInteractive(store interface {
	heapcodec.Reader
	Len() int
}, root heapcodec.Handle) error {
	m := newBrowserModel(store, store.Len(), root)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.jumping {
			return m.updateJump(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.refresh()
			}

		case "down", "j":
			if m.selected < len(m.kids)-1 {
				m.selected++
				m.refresh()
			}

		case "enter", "right", "l":
			if len(m.kids) > 0 {
				m.history = append(m.history, m.current)
				m.visit(m.kids[m.selected].h)
			}

		case "b", "left", "h", "backspace":
			if n := len(m.history); n > 0 {
				prev := m.history[n-1]
				m.history = m.history[:n-1]
				m.visit(prev)
			}

		case ":":
			m.jumping = true
			m.input.SetValue("")
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m browserModel) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.jumping = false
		m.input.Blur()
		return m, nil

	case "enter":
		m.jumping = false
		m.input.Blur()
		h, err := parseHandle(m.input.Value(), m.count)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.history = append(m.history, m.current)
		m.visit(h)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// visit makes h the current node and reloads its children.
func (m *browserModel) visit(h heapcodec.Handle) {
	m.current = h
	m.selected = 0
	m.err = nil

	m.header, m.err = describe(m.store, h, m.styles)
	if m.err == nil {
		m.kids, m.err = children(m.store, h)
	}
	if m.err != nil {
		m.kids = nil
	}
	m.refresh()
}

func (m *browserModel) refresh() {
	var sb strings.Builder
	for i, c := range m.kids {
		line, err := describe(m.store, c.h, m.styles)
		if err != nil {
			line = m.styles.err.Render(err.Error())
		}
		line = c.label + " " + line
		if i == m.selected {
			sb.WriteString(selectedStyle.Render("> " + line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteByte('\n')
	}
	if len(m.kids) == 0 {
		sb.WriteString(helpStyle.Render("  (no children)"))
	}
	m.viewport.SetContent(sb.String())

	if m.selected < m.viewport.YOffset {
		m.viewport.SetYOffset(m.selected)
	} else if bottom := m.viewport.YOffset + m.viewport.Height - 1; m.selected > bottom {
		m.viewport.SetYOffset(m.selected - m.viewport.Height + 1)
	}
}

func (m browserModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("heapview  %d values", m.count)))
	b.WriteString("\n")
	b.WriteString(m.header)
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	switch {
	case m.jumping:
		b.WriteString(m.input.View())
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	default:
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • b back • : jump • q quit"))
	}
	return b.String()
}

// parseHandle reads a handle number, with or without a leading '#', and
// checks it against a store of n values.
func parseHandle(s string, n int) (heapcodec.Handle, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid handle %q", s)
	}
	if v >= uint64(n) {
		return 0, fmt.Errorf("handle %d out of range [0, %d)", v, n)
	}
	return heapcodec.Handle(v), nil
}
