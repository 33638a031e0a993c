package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/penwyp/go-automission-monitor/internal/core/state"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// Subscriber ties one live query to the authentication state. It is active
// exactly while the session is unlocked.
type Subscriber struct {
	src      source.Source
	query    source.Query
	dispatch func(state.Event) state.State

	backoffStart time.Duration
	backoffMax   time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSubscriber feeds src into dispatch using cfg's window and backoff.
func NewSubscriber(src source.Source, cfg *Config, dispatch func(state.Event) state.State) *Subscriber {
	return &Subscriber{
		src:          src,
		query:        cfg.Query,
		dispatch:     dispatch,
		backoffStart: cfg.BackoffStart,
		backoffMax:   cfg.BackoffMax,
	}
}

// Sync starts the subscription on a false to true transition and tears it
// down on true to false. Repeated calls with the same value do nothing.
func (s *Subscriber) Sync(authenticated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.cancel != nil
	switch {
	case authenticated && !active:
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.done = make(chan struct{})
		go s.run(ctx, s.done)
		util.LogInfo("Feed subscription started", util.F("limit", s.query.Limit))

	case !authenticated && active:
		s.cancel()
		<-s.done
		s.cancel = nil
		s.done = nil
		util.LogInfo("Feed subscription stopped")
	}
}

// Active reports whether a subscription is running.
func (s *Subscriber) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Close stops any running subscription.
func (s *Subscriber) Close() {
	s.Sync(false)
}

func (s *Subscriber) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	delay := s.backoffStart
	for attempt := 1; ; attempt++ {
		s.dispatch(state.SubscriptionStarted{})

		received, err := s.follow(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			util.LogError("Feed failed", util.F("error", err), util.F("attempt", attempt))
			s.dispatch(state.FeedFailed{Err: err, At: util.GetTimeProvider().Now()})
			if errors.Is(err, source.ErrClosed) {
				return
			}
		}
		if received {
			delay = s.backoffStart
			attempt = 1
		}

		util.LogInfo("Resubscribing", util.F("attempt", attempt), util.F("delay", delay))
		s.dispatch(state.Reconnecting{Attempt: attempt, Delay: delay})

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		delay *= 2
		if delay > s.backoffMax {
			delay = s.backoffMax
		}
	}
}

// follow consumes one stream until it ends. It reports whether any snapshot
// arrived and the error that ended the stream, if any.
func (s *Subscriber) follow(ctx context.Context) (bool, error) {
	stream, err := s.src.Subscribe(ctx, s.query)
	if err != nil {
		return false, err
	}
	defer stream.Unsubscribe()

	received := false
	for u := range stream.Updates() {
		if u.Err != nil {
			return received, u.Err
		}
		at := u.Snapshot.ReadAt
		if at.IsZero() {
			at = util.GetTimeProvider().Now()
		}
		s.dispatch(state.NewSnapshot(u.Snapshot.Records, s.query.Limit, at))
		received = true
	}
	return received, nil
}
