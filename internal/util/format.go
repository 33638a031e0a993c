package util

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatCount renders a counter with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatShare renders part/total as a percentage, "0%" when total is zero.
func FormatShare(part, total int) string {
	if total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(part)*100/float64(total))
}
