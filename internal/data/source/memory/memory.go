// Package memory is an in-process record store, used by tests and the demo
// source kind.
package memory

import (
	"context"
	"sync"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

type subscriber struct {
	changed chan struct{}
	failed  chan error
}

// Source keeps records keyed by id and pushes a fresh window to every
// subscriber after each write.
type Source struct {
	mu      sync.Mutex
	records map[string]model.ApplicationRecord
	subs    map[*subscriber]struct{}
	closed  bool
}

func New(records ...model.ApplicationRecord) *Source {
	s := &Source{
		records: make(map[string]model.ApplicationRecord),
		subs:    make(map[*subscriber]struct{}),
	}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

// Put inserts or replaces records by id.
func (s *Source) Put(records ...model.ApplicationRecord) {
	s.mu.Lock()
	for _, r := range records {
		s.records[r.ID] = r
	}
	s.mu.Unlock()
	s.broadcast()
}

// Replace swaps the whole record set.
func (s *Source) Replace(records []model.ApplicationRecord) {
	s.mu.Lock()
	s.records = make(map[string]model.ApplicationRecord, len(records))
	for _, r := range records {
		s.records[r.ID] = r
	}
	s.mu.Unlock()
	s.broadcast()
}

// Fail ends every open stream with err.
func (s *Source) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		select {
		case sub.failed <- err:
		default:
		}
	}
}

// Subscribers reports how many streams are open.
func (s *Source) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Source) Subscribe(ctx context.Context, q source.Query) (*source.Stream, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	sub := &subscriber{
		changed: make(chan struct{}, 1),
		failed:  make(chan error, 1),
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, source.ErrClosed
	}
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	return source.Open(ctx, source.KindMemory, func(ctx context.Context, p *source.Publisher) error {
		defer s.remove(sub)

		if !p.Publish(s.snapshot(q)) {
			return nil
		}
		for {
			select {
			case <-ctx.Done():
				return nil
			case err := <-sub.failed:
				return err
			case <-sub.changed:
				if !p.Publish(s.snapshot(q)) {
					return nil
				}
			}
		}
	}), nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Source) snapshot(q source.Query) source.Snapshot {
	s.mu.Lock()
	all := make([]model.ApplicationRecord, 0, len(s.records))
	for _, r := range s.records {
		all = append(all, r)
	}
	s.mu.Unlock()

	return source.Snapshot{
		Records: source.Window(all, q),
		ReadAt:  util.GetTimeProvider().Now(),
	}
}

func (s *Source) broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		select {
		case sub.changed <- struct{}{}:
		default:
		}
	}
}

func (s *Source) remove(sub *subscriber) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}
