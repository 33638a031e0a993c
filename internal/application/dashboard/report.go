package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/penwyp/go-automission-monitor/internal/core/state"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// Fetch reads the first snapshot of the live window and folds it into s.
// It is the non-interactive counterpart of the subscriber: one update, then
// unsubscribe.
func Fetch(ctx context.Context, src source.Source, s state.State, q source.Query, timeout time.Duration) (state.State, error) {
	if !s.Authenticated {
		return s, fmt.Errorf("fetch: session is locked")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	stream, err := src.Subscribe(ctx, q)
	if err != nil {
		return s, fmt.Errorf("subscribe: %w", err)
	}
	defer stream.Unsubscribe()

	select {
	case <-ctx.Done():
		return s, fmt.Errorf("waiting for first snapshot: %w", ctx.Err())
	case u, ok := <-stream.Updates():
		if !ok {
			return s, fmt.Errorf("stream closed before first snapshot")
		}
		if u.Err != nil {
			return state.Reduce(s, state.FeedFailed{Err: u.Err, At: util.GetTimeProvider().Now()}), u.Err
		}
		at := u.Snapshot.ReadAt
		if at.IsZero() {
			at = util.GetTimeProvider().Now()
		}
		return state.Reduce(s, state.NewSnapshot(u.Snapshot.Records, q.Limit, at)), nil
	}
}
