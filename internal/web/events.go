package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-automission-monitor/internal/core/state"
	"github.com/penwyp/go-automission-monitor/internal/presentation/formatter"
	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// Browsers reconnect this long after the stream ends.
const sseRetry = 3 * time.Second

// events streams the live window as server-sent events. Each connection owns
// one subscription, released when the client goes away.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	q := s.query
	stream, err := s.src.Subscribe(r.Context(), q)
	if err != nil {
		util.LogError("SSE subscribe failed", util.F("error", err))
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer stream.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "retry: %d\n\n", sseRetry.Milliseconds())
	flusher.Flush()

	st := state.Reduce(state.State{}, state.Authenticated{})
	st = state.Reduce(st, state.SubscriptionStarted{})

	for {
		select {
		case <-r.Context().Done():
			return
		case u, ok := <-stream.Updates():
			if !ok {
				return
			}
			event := "snapshot"
			now := util.GetTimeProvider().Now()
			if u.Err != nil {
				event = "failure"
				st = state.Reduce(st, state.FeedFailed{Err: u.Err, At: now})
			} else {
				at := u.Snapshot.ReadAt
				if at.IsZero() {
					at = now
				}
				st = state.Reduce(st, state.NewSnapshot(u.Snapshot.Records, q.Limit, at))
			}
			if err := writeEvent(w, event, st, q.Limit); err != nil {
				util.LogWarn("SSE write failed", util.F("error", err))
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, st state.State, limit int) error {
	v := view.Build(st, util.GetTimeProvider().Now(), view.WithLimit(limit))
	data, err := sonic.Marshal(formatter.NewReport(v.Dashboard))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
