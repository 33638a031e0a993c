package model

import (
	"strings"
	"time"
)

// ApplicationRecord is one job application attempt written by the bot. The
// dashboard never mutates it.
type ApplicationRecord struct {
	ID        string     `json:"id"`
	Company   string     `json:"company"`
	JobTitle  string     `json:"job_title"`
	Link      string     `json:"link"`
	Status    string     `json:"status"`
	Timestamp *time.Time `json:"timestamp"`
}

// IsApplied reports whether the record counts towards the applied bucket.
func (r ApplicationRecord) IsApplied() bool {
	return r.Status == StatusApplied
}

// Badge is the visual category of a record's status.
type Badge string

const (
	BadgeApplied Badge = "applied"
	BadgeFailed  Badge = "failed"
	BadgeSkipped Badge = "skipped"
)

// Label returns the human name of the badge.
func (b Badge) Label() string {
	switch b {
	case BadgeApplied:
		return "Applied"
	case BadgeFailed:
		return "Failed"
	default:
		return "Skipped"
	}
}

// ClassifyBadge maps a status to one of three display categories. This is
// deliberately finer than AggregateStats: a failed record is counted as
// skipped but still shown with its own badge.
func ClassifyBadge(status string) Badge {
	switch {
	case status == StatusApplied:
		return BadgeApplied
	case strings.Contains(status, StatusFailedMarker):
		return BadgeFailed
	default:
		return BadgeSkipped
	}
}

// NewerFirst orders records by descending timestamp; records without a
// timestamp sort last, ties keep a stable id order.
func NewerFirst(a, b ApplicationRecord) int {
	switch {
	case a.Timestamp == nil && b.Timestamp == nil:
		return strings.Compare(a.ID, b.ID)
	case a.Timestamp == nil:
		return 1
	case b.Timestamp == nil:
		return -1
	}
	if c := b.Timestamp.Compare(*a.Timestamp); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
