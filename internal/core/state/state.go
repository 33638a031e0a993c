// Package state holds the dashboard's application state and the pure reducer
// that advances it. Callers never mutate a State in place; they feed events
// through Reduce and keep the result.
package state

import (
	"fmt"
	"time"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
)

// ConnectionStatus describes the live feed as seen by the operator.
type ConnectionStatus int

const (
	ConnectionIdle ConnectionStatus = iota
	ConnectionConnecting
	ConnectionLive
	ConnectionDisconnected
)

func (c ConnectionStatus) String() string {
	switch c {
	case ConnectionConnecting:
		return "connecting"
	case ConnectionLive:
		return "live"
	case ConnectionDisconnected:
		return "disconnected"
	default:
		return "idle"
	}
}

// State is the whole session as a value.
type State struct {
	Authenticated bool
	Records       []model.ApplicationRecord
	Stats         model.AggregateStats
	Connection    ConnectionStatus
	LastError     string
	LastUpdate    time.Time
	Notice        string
}

// Event is anything Reduce knows how to apply.
type Event interface {
	isEvent()
}

// Authenticated unlocks the session.
type Authenticated struct{}

// Revoked locks the session again and drops everything it showed.
type Revoked struct{}

// SubscriptionStarted marks a (re)subscription attempt in flight.
type SubscriptionStarted struct{}

// SnapshotReceived replaces the visible window with a complete result set.
type SnapshotReceived struct {
	Records []model.ApplicationRecord
	Stats   model.AggregateStats
	At      time.Time
}

// FeedFailed reports a stream error. The last good window stays on screen.
type FeedFailed struct {
	Err error
	At  time.Time
}

// Reconnecting announces the next resubscription attempt.
type Reconnecting struct {
	Attempt int
	Delay   time.Duration
}

func (Authenticated) isEvent()       {}
func (Revoked) isEvent()             {}
func (SubscriptionStarted) isEvent() {}
func (SnapshotReceived) isEvent()    {}
func (FeedFailed) isEvent()          {}
func (Reconnecting) isEvent()        {}

// NewSnapshot builds a SnapshotReceived from records already in server order.
// The window is cut at limit and the stats are computed over what remains, so
// the list and the counters always describe the same records.
func NewSnapshot(records []model.ApplicationRecord, limit int, at time.Time) SnapshotReceived {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	window := make([]model.ApplicationRecord, len(records))
	copy(window, records)
	return SnapshotReceived{
		Records: window,
		Stats:   model.ComputeStats(window),
		At:      at,
	}
}

// Reduce returns the state that follows s after ev. Feed events that arrive
// while locked are dropped; a subscription torn down on revoke may still
// deliver one last update.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case Authenticated:
		if s.Authenticated {
			return s
		}
		return State{Authenticated: true, Connection: ConnectionIdle}

	case Revoked:
		return State{}

	case SubscriptionStarted:
		if !s.Authenticated {
			return s
		}
		s.Connection = ConnectionConnecting
		s.Notice = ""
		return s

	case SnapshotReceived:
		if !s.Authenticated {
			return s
		}
		s.Records = e.Records
		s.Stats = e.Stats
		s.Connection = ConnectionLive
		s.LastError = ""
		s.Notice = ""
		s.LastUpdate = e.At
		return s

	case FeedFailed:
		if !s.Authenticated {
			return s
		}
		s.Connection = ConnectionDisconnected
		if e.Err != nil {
			s.LastError = e.Err.Error()
		}
		return s

	case Reconnecting:
		if !s.Authenticated {
			return s
		}
		s.Notice = fmt.Sprintf("reconnecting in %s (attempt %d)", e.Delay.Round(time.Second), e.Attempt)
		return s
	}
	return s
}
