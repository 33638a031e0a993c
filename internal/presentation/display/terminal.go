package display

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/penwyp/go-automission-monitor/internal/presentation/layout"
	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// RenderOptions are the interaction settings that shape a frame.
type RenderOptions struct {
	LayoutStyle int
	ShowHelp    bool
	Width       int
	Height      int
}

// TerminalDisplay draws frames on the alternate screen. Each frame overwrites
// the previous one in place; the screen is only fully cleared on the first
// frame and when the mode or layout changes.
type TerminalDisplay struct {
	mu                sync.Mutex
	out               io.Writer
	inAlternateScreen bool
	isFirstRender     bool
	lastMode          view.Mode
	lastLayoutStyle   int
}

// NewTerminalDisplay writes to out, or stdout when out is nil.
func NewTerminalDisplay(out io.Writer) *TerminalDisplay {
	if out == nil {
		out = os.Stdout
	}
	return &TerminalDisplay{out: out, isFirstRender: true}
}

// EnterAlternateScreen switches to the alternate screen buffer.
func (td *TerminalDisplay) EnterAlternateScreen() {
	td.mu.Lock()
	defer td.mu.Unlock()
	if td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.EnterAltScreen, util.ClearScreen, util.MoveCursorHome,
		util.ClearScrollback, util.ResetScrollRegion, util.HideCursor)
	td.inAlternateScreen = true
	td.isFirstRender = true
}

// ExitAlternateScreen returns to the normal screen buffer.
func (td *TerminalDisplay) ExitAlternateScreen() {
	td.mu.Lock()
	defer td.mu.Unlock()
	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.ClearScreen, util.MoveCursorHome, util.ShowCursor, util.ExitAltScreen)
	td.inAlternateScreen = false
}

// InAlternateScreen reports whether the alternate screen is active.
func (td *TerminalDisplay) InAlternateScreen() bool {
	td.mu.Lock()
	defer td.mu.Unlock()
	return td.inAlternateScreen
}

// ClearScreen clears the alternate screen buffer.
func (td *TerminalDisplay) ClearScreen() {
	td.mu.Lock()
	defer td.mu.Unlock()
	if td.inAlternateScreen {
		fmt.Fprint(td.out, util.ClearScreen, util.MoveCursorHome)
	}
}

// Render draws one frame of v.
func (td *TerminalDisplay) Render(v view.View, opts RenderOptions) {
	var frame bytes.Buffer
	switch v.Mode {
	case view.ModeLogin:
		renderLogin(&frame, v.Login)
	default:
		param := layout.Param{
			Width:    opts.Width,
			Height:   opts.Height,
			Now:      util.GetTimeProvider().Now(),
			ShowHelp: opts.ShowHelp,
		}
		layout.GetLayoutStrategy(opts.LayoutStyle).Render(&frame, v.Dashboard, param)
	}

	td.mu.Lock()
	defer td.mu.Unlock()

	if td.isFirstRender || v.Mode != td.lastMode || opts.LayoutStyle != td.lastLayoutStyle {
		fmt.Fprint(td.out, util.ClearScreen)
		td.isFirstRender = false
		td.lastMode = v.Mode
		td.lastLayoutStyle = opts.LayoutStyle
	}
	fmt.Fprint(td.out, util.MoveCursorHome)

	for _, line := range strings.SplitAfter(frame.String(), "\n") {
		if line == "" {
			continue
		}
		fmt.Fprint(td.out, util.ClearLine, line)
	}
	fmt.Fprint(td.out, util.ClearToEnd)
}

func renderLogin(w io.Writer, l *view.Login) {
	fmt.Fprintln(w, util.FormatHeaderTitle(l.Title))
	fmt.Fprintln(w, l.Subtitle)
	fmt.Fprintln(w)
}
