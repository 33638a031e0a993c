// Package view turns application state into what the operator sees. Build is
// pure; every surface (terminal, web, report) renders the same View.
package view

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
	"github.com/penwyp/go-automission-monitor/internal/core/state"
)

// Fixed copy shown by every surface.
const (
	LoginTitle       = "Automission"
	LoginSubtitle    = "Bot Dashboard Login"
	LoginPlaceholder = "Enter Password"
	LoginButton      = "Access Dashboard"

	DashboardTitle    = "LinkedIn Automission Live"
	DashboardSubtitle = "Real-time bot execution monitoring"

	CardTotal   = "Total Processed"
	CardApplied = "Applied"
	CardSkipped = "Skipped/Failed"

	EmptyMessage = "Waiting for bot signals..."
	JustNow      = "Just now"
)

type Mode int

const (
	ModeLogin Mode = iota
	ModeDashboard
)

// Tone picks a card's color.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneApplied Tone = "applied"
	ToneSkipped Tone = "skipped"
)

type Login struct {
	Title       string
	Subtitle    string
	Placeholder string
	Button      string
}

type Card struct {
	Label string
	Value int
	Tone  Tone
}

type Item struct {
	ID        string
	Company   string
	JobTitle  string
	Link      string
	When      string
	Status    string
	Badge     model.Badge
	Timestamp *time.Time
}

type Dashboard struct {
	Title      string
	Subtitle   string
	Cards      []Card
	Stats      model.AggregateStats
	Caption    string
	Connection state.ConnectionStatus
	Indicator  string
	Notice     string
	Items      []Item

	// Empty is set only when Items is empty.
	Empty      string
	LastUpdate time.Time
}

type View struct {
	Mode      Mode
	Login     *Login
	Dashboard *Dashboard
}

type options struct {
	limit int
}

type Option func(*options)

// WithLimit sets the window size quoted in the feed caption.
func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// Build renders s as of now.
func Build(s state.State, now time.Time, opts ...Option) View {
	o := options{limit: model.DefaultWindowSize}
	for _, opt := range opts {
		opt(&o)
	}

	if !s.Authenticated {
		return View{
			Mode: ModeLogin,
			Login: &Login{
				Title:       LoginTitle,
				Subtitle:    LoginSubtitle,
				Placeholder: LoginPlaceholder,
				Button:      LoginButton,
			},
		}
	}

	d := &Dashboard{
		Title:    DashboardTitle,
		Subtitle: DashboardSubtitle,
		Stats:    s.Stats,
		Cards: []Card{
			{Label: CardTotal, Value: s.Stats.Total, Tone: ToneNeutral},
			{Label: CardApplied, Value: s.Stats.Applied, Tone: ToneApplied},
			{Label: CardSkipped, Value: s.Stats.Skipped, Tone: ToneSkipped},
		},
		Caption:    fmt.Sprintf("Showing last %d actions", o.limit),
		Connection: s.Connection,
		Indicator:  Indicator(s.Connection, s.LastError),
		Notice:     s.Notice,
		LastUpdate: s.LastUpdate,
	}

	if len(s.Records) == 0 {
		d.Empty = EmptyMessage
	} else {
		d.Items = make([]Item, 0, len(s.Records))
		for _, r := range s.Records {
			d.Items = append(d.Items, NewItem(r, now))
		}
	}

	return View{Mode: ModeDashboard, Dashboard: d}
}

// NewItem renders one record.
func NewItem(r model.ApplicationRecord, now time.Time) Item {
	return Item{
		ID:        r.ID,
		Company:   r.Company,
		JobTitle:  r.JobTitle,
		Link:      r.Link,
		When:      RelativeTime(r.Timestamp, now),
		Status:    r.Status,
		Badge:     model.ClassifyBadge(r.Status),
		Timestamp: r.Timestamp,
	}
}

// RelativeTime describes ts relative to now, e.g. "5 minutes ago". A missing
// timestamp reads as JustNow.
func RelativeTime(ts *time.Time, now time.Time) string {
	if ts == nil {
		return JustNow
	}
	if d := now.Sub(*ts); d < time.Second && d > -time.Second {
		return JustNow
	}
	return humanize.RelTime(*ts, now, "ago", "from now")
}

// Indicator is the short connection label shown next to the caption.
func Indicator(c state.ConnectionStatus, lastError string) string {
	switch c {
	case state.ConnectionLive:
		return "Live"
	case state.ConnectionConnecting:
		return "Connecting..."
	case state.ConnectionDisconnected:
		if lastError != "" {
			return "Disconnected: " + lastError
		}
		return "Disconnected"
	default:
		return "Idle"
	}
}
