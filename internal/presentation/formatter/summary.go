package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// SummaryFormatter prints the counters and a per-status breakdown.
type SummaryFormatter struct{}

func NewSummaryFormatter() *SummaryFormatter {
	return &SummaryFormatter{}
}

func (f *SummaryFormatter) Format(w io.Writer, d *view.Dashboard) error {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, d.Title+" Summary")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Window:     %s\n", d.Caption)
	fmt.Fprintf(w, "Connection: %s\n", d.Indicator)
	fmt.Fprintln(w)

	for _, c := range d.Cards {
		fmt.Fprintf(w, "%-16s %8s  %s\n", c.Label+":", util.FormatCount(c.Value), util.FormatShare(c.Value, d.Stats.Total))
	}

	if len(d.Items) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, d.Empty)
		return nil
	}

	// Badge breakdown: failed records are counted as skipped above.
	badges := map[model.Badge]int{}
	for _, it := range d.Items {
		badges[it.Badge]++
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "By badge:")
	for _, b := range []model.Badge{model.BadgeApplied, model.BadgeFailed, model.BadgeSkipped} {
		fmt.Fprintf(w, "  %-10s %6s\n", b.Label(), util.FormatCount(badges[b]))
	}

	latest := d.Items[0]
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Latest: %s · %s (%s) %s\n", latest.Company, latest.JobTitle, latest.Status, latest.When)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	return nil
}
