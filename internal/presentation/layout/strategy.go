package layout

import (
	"io"
	"time"

	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
)

// Layout styles cycled with the 't' key.
const (
	StyleFull = iota
	StyleMinimal
	styleCount
)

// Param carries what a strategy needs beyond the view itself.
type Param struct {
	Width    int
	Height   int
	Now      time.Time
	ShowHelp bool
}

// LayoutStrategy renders a dashboard view to w.
type LayoutStrategy interface {
	Render(w io.Writer, d *view.Dashboard, param Param)
	GetName() string
}

// GetLayoutStrategy returns the strategy for style, defaulting to the full
// dashboard.
func GetLayoutStrategy(style int) LayoutStrategy {
	switch style {
	case StyleMinimal:
		return &MinimalLayoutStrategy{}
	default:
		return &FullLayoutStrategy{}
	}
}

// NextStyle returns the style after style.
func NextStyle(style int) int {
	return (style + 1) % styleCount
}
