// Package source defines the live query contract every record store
// implements: a filter-free, timestamp-descending window of the most recent
// records, re-delivered in full whenever any member changes.
package source

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
)

var (
	// ErrUnknownKind is returned for a source kind no backend handles.
	ErrUnknownKind = errors.New("unknown source kind")
	// ErrClosed is returned when subscribing to a closed source.
	ErrClosed = errors.New("source closed")
)

// Kinds of source backends.
const (
	KindMemory    = "memory"
	KindJSONL     = "jsonl"
	KindSQLite    = "sqlite"
	KindRedis     = "redis"
	KindFirestore = "firestore"
)

// Kinds lists every supported kind in display order.
func Kinds() []string {
	return []string{KindJSONL, KindSQLite, KindRedis, KindFirestore, KindMemory}
}

// Query describes the live window. Only ordering by timestamp is supported.
type Query struct {
	OrderBy    string
	Descending bool
	Limit      int
}

// DefaultQuery is the top-100 newest-first window.
func DefaultQuery() Query {
	return Query{
		OrderBy:    model.FieldTimestamp,
		Descending: true,
		Limit:      model.DefaultWindowSize,
	}
}

// WithLimit returns q with its limit replaced. Non-positive values and values
// above the default window are clamped.
func (q Query) WithLimit(limit int) Query {
	if limit <= 0 || limit > model.DefaultWindowSize {
		limit = model.DefaultWindowSize
	}
	q.Limit = limit
	return q
}

func (q Query) Validate() error {
	if q.OrderBy != model.FieldTimestamp {
		return fmt.Errorf("unsupported order field %q", q.OrderBy)
	}
	if !q.Descending {
		return errors.New("only descending order is supported")
	}
	if q.Limit <= 0 {
		return fmt.Errorf("invalid limit %d", q.Limit)
	}
	return nil
}

// Snapshot is one complete result set.
type Snapshot struct {
	Records []model.ApplicationRecord
	ReadAt  time.Time
}

// Update carries either a snapshot or the error that ended the stream.
type Update struct {
	Snapshot Snapshot
	Err      error
}

// Source is a store that can be followed live.
type Source interface {
	Subscribe(ctx context.Context, q Query) (*Stream, error)
	Close() error
}

// Window orders records newest first, puts records without a timestamp last
// and cuts the result at the query limit. The input slice is not modified.
func Window(records []model.ApplicationRecord, q Query) []model.ApplicationRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, model.NewerFirst)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
