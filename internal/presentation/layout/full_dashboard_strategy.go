package layout

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// Lines taken by everything except the feed items.
const fullChromeLines = 12

// FullLayoutStrategy draws the header, stat cards and the feed.
type FullLayoutStrategy struct{}

func (s *FullLayoutStrategy) GetName() string {
	return "Full Dashboard"
}

func (s *FullLayoutStrategy) Render(w io.Writer, d *view.Dashboard, param Param) {
	sizer := NewSizer(param.Width, param.Height)
	width := sizer.Width()

	s.header(w, d, param, sizer)
	s.cards(w, d, width)
	s.caption(w, d, sizer)
	fmt.Fprintln(w, strings.Repeat("─", width))

	if param.ShowHelp {
		s.help(w)
		return
	}
	if d.Empty != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, emptyStyle.Render(util.CenterText(d.Empty, width)))
		return
	}
	s.items(w, d, param, sizer)
}

func (s *FullLayoutStrategy) header(w io.Writer, d *view.Dashboard, param Param, sizer *Sizer) {
	clock := util.GetTimeProvider().In(param.Now).Format("15:04:05")
	fmt.Fprintln(w, titleStyle.Render(sizer.Spread(d.Title, clock, sizer.Width())))
	fmt.Fprintln(w, subtitleStyle.Render(d.Subtitle))
	fmt.Fprintln(w)
}

func (s *FullLayoutStrategy) cards(w io.Writer, d *view.Dashboard, width int) {
	// Each card adds two border columns; one column of gap between cards.
	cardWidth := (width-2)/len(d.Cards) - 2
	rendered := make([]string, 0, len(d.Cards)*2)
	for i, c := range d.Cards {
		if i > 0 {
			rendered = append(rendered, " ")
		}
		rendered = append(rendered, renderCard(c, cardWidth))
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}

func (s *FullLayoutStrategy) caption(w io.Writer, d *view.Dashboard, sizer *Sizer) {
	indicator := view.Indicator(d.Connection, "")
	line := sizer.Spread(d.Caption, "● "+indicator, sizer.Width())
	// Colorize the indicator without disturbing the measured layout.
	line = strings.TrimSuffix(line, "● "+indicator)
	fmt.Fprintln(w, captionStyle.Render(line)+renderIndicator(d.Connection, indicator))

	if d.Indicator != indicator {
		fmt.Fprintln(w, noticeStyle.Render(util.Truncate(d.Indicator, sizer.Width())))
	}
	if d.Notice != "" {
		fmt.Fprintln(w, noticeStyle.Render(util.Truncate(d.Notice, sizer.Width())))
	}
}

func (s *FullLayoutStrategy) items(w io.Writer, d *view.Dashboard, param Param, sizer *Sizer) {
	width := sizer.Width()
	room := (sizer.Height() - fullChromeLines) / 2
	if room < 1 {
		room = 1
	}

	shown := d.Items
	if len(shown) > room {
		shown = shown[:room]
	}
	for _, item := range shown {
		badge := "[" + item.Badge.Label() + "]"
		left := fmt.Sprintf("%s %s · %s", badge, item.Company, item.JobTitle)
		line := sizer.Spread(left, item.When, width)
		fmt.Fprintln(w, strings.Replace(line, badge, renderBadge(item.Badge), 1))

		detail := "  " + item.Status
		if item.Link != "" {
			detail += " · " + item.Link
		}
		fmt.Fprintln(w, subtitleStyle.Render(util.Truncate(detail, width)))
	}
	if hidden := len(d.Items) - len(shown); hidden > 0 {
		fmt.Fprintln(w, captionStyle.Render(fmt.Sprintf("  … %d more", hidden)))
	}
}

func (s *FullLayoutStrategy) help(w io.Writer) {
	fmt.Fprintln(w, "Keys:")
	fmt.Fprintln(w, "  q / Esc   quit")
	fmt.Fprintln(w, "  l         lock dashboard")
	fmt.Fprintln(w, "  t         toggle layout")
	fmt.Fprintln(w, "  h         toggle this help")
}

func formatValue(n int) string {
	return util.FormatCount(n)
}
