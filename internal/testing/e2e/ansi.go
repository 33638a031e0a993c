// Package e2e holds helpers for asserting on terminal output.
package e2e

import (
	"regexp"
	"strings"
)

var (
	ansiEscape  = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)
	frameMarker = regexp.MustCompile(`\x1b\[2J|\x1b\[H`)
)

// StripANSI removes CSI escape sequences, including private modes such as
// the alternate screen switch.
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// Frames splits captured output on screen clears and cursor-home moves and
// returns the non-empty frames with escapes removed.
func Frames(output string) []string {
	var frames []string
	for _, part := range frameMarker.Split(output, -1) {
		clean := StripANSI(part)
		if strings.TrimSpace(clean) == "" {
			continue
		}
		frames = append(frames, clean)
	}
	return frames
}

// LastFrame returns the most recently drawn frame, or "" if nothing was drawn.
func LastFrame(output string) string {
	frames := Frames(output)
	if len(frames) == 0 {
		return ""
	}
	return frames[len(frames)-1]
}

// ContainsAll reports whether s contains every want.
func ContainsAll(s string, want ...string) bool {
	for _, w := range want {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}
