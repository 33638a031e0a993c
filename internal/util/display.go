package util

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Terminal colors
const (
	ColorReset   = "\033[0m"
	ColorBlue    = "\033[34m"
	ColorCyan    = "\033[36m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorRed     = "\033[31m"
	ColorMagenta = "\033[35m"
	ColorGray    = "\033[90m"
	ColorBold    = "\033[1m"
)

// Terminal control sequences
const (
	EnterAltScreen    = "\033[?1049h"
	ExitAltScreen     = "\033[?1049l"
	ClearScreen       = "\033[2J"
	ClearLine         = "\033[2K"
	ClearToEnd        = "\033[J"
	ClearScrollback   = "\033[3J"
	ResetScrollRegion = "\033[r"
	MoveCursorHome    = "\033[H"
	HideCursor        = "\033[?25l"
	ShowCursor        = "\033[?25h"
	Bell              = "\a"
)

// GetDisplayWidth calculates the actual display width of a string, accounting for emojis
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadRight pads text with spaces up to the given display width.
func PadRight(text string, width int) string {
	w := runewidth.StringWidth(text)
	if w >= width {
		return text
	}
	return text + strings.Repeat(" ", width-w)
}

// Truncate shortens text to width display cells, marking the cut with an ellipsis.
func Truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(text, width, "…")
}

// Colorize wraps text in the given color.
func Colorize(color, text string) string {
	return color + text + ColorReset
}

// FormatHeaderTitle formats main header titles (Magenta + Bold)
func FormatHeaderTitle(title string) string {
	return fmt.Sprintf("%s%s%s%s", ColorBold, ColorMagenta, title, ColorReset)
}

// CenterText centers text within the given display width
func CenterText(text string, width int) string {
	w := runewidth.StringWidth(text)
	if w >= width {
		return runewidth.Truncate(text, width, "")
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-padding-w)
}
