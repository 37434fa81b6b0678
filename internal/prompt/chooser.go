package prompt

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"craftbench/internal/bench"
)

var (
	chooserTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	chooserSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true)
	chooserHelpStyle     = lipgloss.NewStyle().Faint(true)
)

// chooser is a bubbletea model for picking one option with the arrow keys.
type chooser struct {
	title     string
	options   []string
	cursor    int
	chosen    string
	cancelled bool
}

func newChooser(title string, options []string) chooser {
	return chooser{title: title, options: options}
}

func (m chooser) Init() tea.Cmd { return nil }

func (m chooser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k", "shift+tab":
		m.cursor = (m.cursor - 1 + len(m.options)) % len(m.options)
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(m.options)
	case "enter":
		m.chosen = m.options[m.cursor]
		return m, tea.Quit
	case "esc", "q", "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	default:
		if n, err := strconv.Atoi(key.String()); err == nil && n >= 1 && n <= len(m.options) {
			m.cursor = n - 1
			m.chosen = m.options[m.cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m chooser) View() string {
	if m.chosen != "" || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(chooserTitleStyle.Render(m.title))
	b.WriteString("\n")
	for i, o := range m.options {
		if i == m.cursor {
			b.WriteString(chooserSelectedStyle.Render(fmt.Sprintf("> %d) %s", i+1, o)))
		} else {
			b.WriteString(fmt.Sprintf("  %d) %s", i+1, o))
		}
		b.WriteString("\n")
	}
	b.WriteString(chooserHelpStyle.Render("↑/↓ move • enter select • esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// runChooser shows a chooser on the terminal and returns the picked option.
func runChooser(ctx context.Context, in io.Reader, out io.Writer, title string, options []string) (string, error) {
	p := tea.NewProgram(newChooser(title, options),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithContext(ctx),
	)
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("running chooser: %w", err)
	}

	m := final.(chooser)
	if m.cancelled || m.chosen == "" {
		return "", bench.ErrPromptCancelled
	}
	return m.chosen, nil
}
