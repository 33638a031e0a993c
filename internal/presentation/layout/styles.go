package layout

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
	"github.com/penwyp/go-automission-monitor/internal/core/state"
	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subtitleStyle = lipgloss.NewStyle().Faint(true)
	captionStyle  = lipgloss.NewStyle().Faint(true)
	emptyStyle    = lipgloss.NewStyle().Italic(true).Faint(true)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	toneColors = map[view.Tone]lipgloss.Color{
		view.ToneNeutral: lipgloss.Color("15"),
		view.ToneApplied: lipgloss.Color("10"),
		view.ToneSkipped: lipgloss.Color("11"),
	}

	badgeColors = map[model.Badge]lipgloss.Color{
		model.BadgeApplied: lipgloss.Color("10"),
		model.BadgeFailed:  lipgloss.Color("9"),
		model.BadgeSkipped: lipgloss.Color("11"),
	}
)

func renderBadge(b model.Badge) string {
	return lipgloss.NewStyle().Bold(true).Foreground(badgeColors[b]).Render("[" + b.Label() + "]")
}

func renderIndicator(c state.ConnectionStatus, label string) string {
	color := lipgloss.Color("8")
	switch c {
	case state.ConnectionLive:
		color = lipgloss.Color("10")
	case state.ConnectionConnecting:
		color = lipgloss.Color("11")
	case state.ConnectionDisconnected:
		color = lipgloss.Color("9")
	}
	return lipgloss.NewStyle().Foreground(color).Render("● " + label)
}

func renderCard(c view.Card, width int) string {
	value := lipgloss.NewStyle().Bold(true).Foreground(toneColors[c.Tone]).Render(formatValue(c.Value))
	body := lipgloss.JoinVertical(lipgloss.Left, subtitleStyle.Render(c.Label), value)
	return cardStyle.Width(width).BorderForeground(toneColors[c.Tone]).Render(body)
}
