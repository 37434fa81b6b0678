// Package prompt implements bench.Prompter on a terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"craftbench/internal/bench"
)

// Terminal asks questions on a line-oriented terminal. When both ends are a
// TTY, Choose and Confirm use an arrow-key chooser.
type Terminal struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
	tty    bool

	// echoOff puts the input in raw mode and returns a restore func. It is
	// nil when the input is not a terminal.
	echoOff func() (func(), error)

	title lipgloss.Style
	warn  lipgloss.Style
	err   lipgloss.Style
	info  lipgloss.Style
	faint lipgloss.Style
}

var _ bench.Prompter = (*Terminal)(nil)

// NewTerminal creates a prompter reading from in and writing to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	r := lipgloss.NewRenderer(out)
	t := &Terminal{
		in:     in,
		reader: bufio.NewReader(in),
		out:    out,
		tty:    isTerminal(in) && isTerminal(out),
		title:  r.NewStyle().Bold(true),
		warn:   r.NewStyle().Foreground(lipgloss.Color("214")),
		err:    r.NewStyle().Foreground(lipgloss.Color("197")),
		info:   r.NewStyle().Foreground(lipgloss.Color("39")),
		faint:  r.NewStyle().Faint(true),
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		t.echoOff = func() (func(), error) {
			state, err := term.MakeRaw(fd)
			if err != nil {
				return nil, err
			}
			return func() { term.Restore(fd, state) }, nil
		}
	}
	return t
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Choose asks the user to pick one of options.
func (t *Terminal) Choose(ctx context.Context, title string, options []string) (string, error) {
	if len(options) == 0 {
		return "", errors.New("no options to choose from")
	}
	if t.tty {
		return runChooser(ctx, t.in, t.out, title, options)
	}
	return t.chooseNumbered(title, options)
}

// Confirm is Choose with a message instead of a title.
func (t *Terminal) Confirm(ctx context.Context, message string, options []string) (string, error) {
	return t.Choose(ctx, message, options)
}

// chooseNumbered lists options with numbers and reads a number or an option
// name. An empty answer cancels.
func (t *Terminal) chooseNumbered(title string, options []string) (string, error) {
	fmt.Fprintln(t.out, t.title.Render(title))
	for i, o := range options {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, o)
	}

	for {
		fmt.Fprint(t.out, t.faint.Render("> "))
		line, err := t.readLine()
		if err != nil {
			return "", err
		}
		if line == "" {
			return "", bench.ErrPromptCancelled
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		for _, o := range options {
			if strings.EqualFold(line, o) {
				return o, nil
			}
		}
		fmt.Fprintln(t.out, t.err.Render(fmt.Sprintf("Please enter a number from 1 to %d.", len(options))))
	}
}

func (t *Terminal) InputText(_ context.Context, prompt string) (string, error) {
	fmt.Fprint(t.out, t.title.Render(prompt)+": ")
	return t.readLine()
}

// InputSecret reads a line without echo when the input is a terminal. Input
// is always read through the shared buffer so nothing typed ahead is lost.
func (t *Terminal) InputSecret(_ context.Context, prompt string) (string, error) {
	fmt.Fprint(t.out, t.title.Render(prompt)+": ")
	if t.echoOff == nil {
		return t.readLine()
	}

	restore, err := t.echoOff()
	if err != nil {
		return "", fmt.Errorf("disabling echo: %w", err)
	}
	secret, err := readRawLine(t.reader)
	restore()
	fmt.Fprintln(t.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(secret), nil
}

// readRawLine reads a line typed in raw mode, applying backspaces. Ctrl-C,
// or Ctrl-D on an empty line, cancels.
func readRawLine(r *bufio.Reader) (string, error) {
	var buf []rune
	for {
		c, _, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			if len(buf) == 0 {
				return "", bench.ErrPromptCancelled
			}
			return string(buf), nil
		}
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		switch c {
		case '\r', '\n':
			return string(buf), nil
		case 3:
			return "", bench.ErrPromptCancelled
		case 4:
			if len(buf) == 0 {
				return "", bench.ErrPromptCancelled
			}
		case 8, 127:
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
			}
		default:
			buf = append(buf, c)
		}
	}
}

func (t *Terminal) Warn(msg string) {
	fmt.Fprintln(t.out, t.warn.Render("warning: "+msg))
}

func (t *Terminal) Error(msg string) {
	fmt.Fprintln(t.out, t.err.Render("error: "+msg))
}

func (t *Terminal) Info(msg string) {
	fmt.Fprintln(t.out, t.info.Render(msg))
}

// readLine returns the next trimmed line. End of input cancels the prompt.
func (t *Terminal) readLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", bench.ErrPromptCancelled
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
