// Package surface implements bench.EditingSurface for the terminal and for a
// running Neovim instance.
package surface

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"craftbench/internal/bench"
)

// DefaultContext is the number of unchanged lines shown around each change.
const DefaultContext = 3

// Terminal prints diffs and resources to a writer. The "active" resource is
// the last one shown.
type Terminal struct {
	out       io.Writer
	resources bench.ResourceStore
	context   int

	header  lipgloss.Style
	path    lipgloss.Style
	hunk    lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
	faint   lipgloss.Style

	mu        sync.Mutex
	active    string
	listeners []func(string)
}

var _ bench.EditingSurface = (*Terminal)(nil)

// NewTerminal creates a terminal surface writing to out. Styles are only
// colored when out is a terminal.
func NewTerminal(out io.Writer, resources bench.ResourceStore, context int) *Terminal {
	if context <= 0 {
		context = DefaultContext
	}
	r := lipgloss.NewRenderer(out)
	return &Terminal{
		out:       out,
		resources: resources,
		context:   context,
		header:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		path:      r.NewStyle().Bold(true),
		hunk:      r.NewStyle().Foreground(lipgloss.Color("39")),
		added:     r.NewStyle().Foreground(lipgloss.Color("78")),
		removed:   r.NewStyle().Foreground(lipgloss.Color("197")),
		faint:     r.NewStyle().Faint(true),
	}
}

// ShowDiff prints the diff from leftID to rightID and focuses rightID.
func (t *Terminal) ShowDiff(ctx context.Context, leftID, rightID, title string) error {
	before, err := t.resources.ReadText(ctx, leftID)
	if err != nil {
		return fmt.Errorf("reading %s: %w", leftID, err)
	}
	after, err := t.resources.ReadText(ctx, rightID)
	if err != nil {
		return fmt.Errorf("reading %s: %w", rightID, err)
	}

	var b strings.Builder
	b.WriteString(t.header.Render(title))
	b.WriteString("\n")
	b.WriteString(t.path.Render("--- " + leftID))
	b.WriteString("\n")
	b.WriteString(t.path.Render("+++ " + rightID))
	b.WriteString("\n")

	hunks := Hunks(before, after, t.context)
	if len(hunks) == 0 {
		b.WriteString(t.faint.Render("(no changes)"))
		b.WriteString("\n")
	}
	for _, h := range hunks {
		b.WriteString(t.hunk.Render(fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)))
		b.WriteString("\n")
		for _, l := range h.Lines {
			switch l.Kind {
			case LineAdded:
				b.WriteString(t.added.Render("+" + l.Text))
			case LineRemoved:
				b.WriteString(t.removed.Render("-" + l.Text))
			default:
				b.WriteString(" " + l.Text)
			}
			b.WriteString("\n")
		}
	}

	if _, err := io.WriteString(t.out, b.String()); err != nil {
		return fmt.Errorf("writing diff: %w", err)
	}
	t.setActive(rightID)
	return nil
}

// ShowResource prints the content of id and focuses it.
func (t *Terminal) ShowResource(ctx context.Context, id string) error {
	content, err := t.resources.ReadText(ctx, id)
	if err != nil {
		return fmt.Errorf("reading %s: %w", id, err)
	}

	var b strings.Builder
	b.WriteString(t.path.Render(id))
	b.WriteString("\n")
	b.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
	if _, err := io.WriteString(t.out, b.String()); err != nil {
		return fmt.Errorf("writing resource: %w", err)
	}
	t.setActive(id)
	return nil
}

// CloseActiveView clears the focus.
func (t *Terminal) CloseActiveView(context.Context) error {
	t.setActive("")
	return nil
}

// SaveResource is a no-op: the terminal never holds edits.
func (t *Terminal) SaveResource(context.Context, string) error { return nil }

func (t *Terminal) ActiveResource(context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active, nil
}

func (t *Terminal) OnActiveResourceChanged(fn func(id string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Focus makes id the active resource without printing anything.
func (t *Terminal) Focus(id string) {
	t.setActive(id)
}

// Close implements Surface.
func (t *Terminal) Close() error { return nil }

func (t *Terminal) setActive(id string) {
	t.mu.Lock()
	t.active = id
	listeners := append([]func(string){}, t.listeners...)
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(id)
	}
}
