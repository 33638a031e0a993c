package layout

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
	minWidth       = 40
	maxWidth       = 120
)

// Sizer measures strings and bounds the drawing area.
type Sizer struct {
	width  int
	height int
}

// NewSizer clamps width to a usable range; non-positive sizes fall back to
// 80x24.
func NewSizer(width, height int) *Sizer {
	if width <= 0 {
		width = fallbackWidth
	}
	if height <= 0 {
		height = fallbackHeight
	}
	if width < minWidth {
		width = minWidth
	}
	if width > maxWidth {
		width = maxWidth
	}
	return &Sizer{width: width, height: height}
}

// TerminalSizer sizes to the terminal on stdout.
func TerminalSizer() *Sizer {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return NewSizer(0, 0)
	}
	return NewSizer(w-2, h)
}

func (s *Sizer) Width() int  { return s.width }
func (s *Sizer) Height() int { return s.height }

// DisplayWidth is the column width of str, counting wide runes and emoji.
func (s *Sizer) DisplayWidth(str string) int {
	return runewidth.StringWidth(str)
}

// PadString pads str to width display columns.
func (s *Sizer) PadString(str string, width int, leftAlign bool) string {
	w := s.DisplayWidth(str)
	if w >= width {
		return str
	}
	padding := strings.Repeat(" ", width-w)
	if leftAlign {
		return str + padding
	}
	return padding + str
}

// Spread places left and right on one line of exactly width columns,
// truncating left when they do not fit.
func (s *Sizer) Spread(left, right string, width int) string {
	rw := s.DisplayWidth(right)
	room := width - rw - 1
	if room < 1 {
		return runewidth.Truncate(right, width, "…")
	}
	left = runewidth.Truncate(left, room, "…")
	return s.PadString(left, width-rw, true) + right
}
