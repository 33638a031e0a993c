// Package prompt asks the operator for the dashboard password on the terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// ErrAborted is returned when the operator gives up on the login prompt.
var ErrAborted = errors.New("login aborted")

// Prompter reads one password attempt.
type Prompter interface {
	Password(ctx context.Context, l *view.Login) (string, error)
}

// New picks a form prompt when both ends are terminals and a plain line
// reader otherwise.
func New(in *os.File, out *os.File) Prompter {
	if isTerminal(in) && isTerminal(out) {
		return NewFormPrompter(in, out)
	}
	return NewLinePrompter(in, out)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// FormPrompter renders a masked input field.
type FormPrompter struct {
	in  io.Reader
	out io.Writer
}

func NewFormPrompter(in io.Reader, out io.Writer) *FormPrompter {
	return &FormPrompter{in: in, out: out}
}

func (p *FormPrompter) Password(ctx context.Context, l *view.Login) (string, error) {
	var password string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(l.Title).
				Description(l.Subtitle),
			huh.NewInput().
				Title(l.Button).
				Placeholder(l.Placeholder).
				EchoMode(huh.EchoModePassword).
				Value(&password),
		),
	).WithShowHelp(false).WithInput(p.in).WithOutput(p.out)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrAborted
		}
		return "", err
	}
	return password, nil
}

// LinePrompter reads the password as a plain line. Used when stdin is a pipe.
type LinePrompter struct {
	r   *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{r: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Password(ctx context.Context, l *view.Login) (string, error) {
	fmt.Fprintln(p.out, util.FormatHeaderTitle(l.Title))
	fmt.Fprintln(p.out, l.Subtitle)
	fmt.Fprintf(p.out, "%s: ", l.Placeholder)

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.r.ReadString('\n')
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		switch {
		case res.err == nil:
		case errors.Is(res.err, io.EOF) && res.line != "":
		case errors.Is(res.err, io.EOF):
			return "", ErrAborted
		default:
			return "", res.err
		}
		return strings.TrimRight(res.line, "\r\n"), nil
	}
}

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

// TerminalNotifier rings the bell and prints the message on its own line.
type TerminalNotifier struct {
	out io.Writer
}

func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{out: out}
}

func (n *TerminalNotifier) Notify(message string) {
	fmt.Fprintf(n.out, "\a%s\n", errorStyle.Render(message))
	util.LogWarn("login rejected", util.F("message", message))
}
