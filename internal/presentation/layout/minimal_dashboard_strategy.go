package layout

import (
	"fmt"
	"io"

	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// MinimalLayoutStrategy prints a single status line.
type MinimalLayoutStrategy struct{}

func (s *MinimalLayoutStrategy) GetName() string {
	return "Minimal Dashboard"
}

func (s *MinimalLayoutStrategy) Render(w io.Writer, d *view.Dashboard, param Param) {
	sizer := NewSizer(param.Width, param.Height)

	latest := d.Empty
	if len(d.Items) > 0 {
		it := d.Items[0]
		latest = fmt.Sprintf("%s (%s) %s", it.Company, it.Badge.Label(), it.When)
	}

	line := fmt.Sprintf("Automission: ● %s | %s %s | %s %s | %s %s | %s | %s",
		view.Indicator(d.Connection, ""),
		d.Cards[0].Label, formatValue(d.Cards[0].Value),
		d.Cards[1].Label, formatValue(d.Cards[1].Value),
		d.Cards[2].Label, formatValue(d.Cards[2].Value),
		latest,
		util.GetTimeProvider().In(param.Now).Format("15:04:05"))

	fmt.Fprintln(w, util.Truncate(line, sizer.Width()))
}
