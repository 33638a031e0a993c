package source

import (
	"context"
	"sync"

	"github.com/penwyp/go-automission-monitor/internal/util"
)

// Producer feeds a stream until ctx ends. Returning a non-nil error delivers
// it as the final Update before the channel closes.
type Producer func(ctx context.Context, p *Publisher) error

// Stream is an active subscription. Updates are coalesced: a consumer that
// falls behind only ever sees the latest snapshot.
type Stream struct {
	updates chan Update
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// Open runs produce on its own goroutine and returns the stream that carries
// its output.
func Open(ctx context.Context, name string, produce Producer) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		updates: make(chan Update, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	p := &Publisher{ctx: ctx, updates: s.updates}

	go func() {
		defer close(s.done)
		defer close(s.updates)

		err := produce(ctx, p)
		if err == nil || ctx.Err() != nil {
			util.LogDebug("Stream ended", util.F("source", name))
			return
		}
		util.LogWarn("Stream failed", util.F("source", name), util.F("error", err))
		p.deliver(Update{Err: err})
	}()
	return s
}

// Updates yields snapshots until the stream ends.
func (s *Stream) Updates() <-chan Update {
	return s.updates
}

// Unsubscribe stops the producer and waits for it to exit. It is safe to
// call more than once.
func (s *Stream) Unsubscribe() {
	s.once.Do(s.cancel)
	<-s.done
}

// Done is closed once the producer has exited.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Publisher is the producer's handle on the stream.
type Publisher struct {
	ctx     context.Context
	updates chan Update
}

// Publish delivers a snapshot, replacing any the consumer has not read yet.
// It reports false once the stream is cancelled.
func (p *Publisher) Publish(snap Snapshot) bool {
	return p.send(Update{Snapshot: snap})
}

// deliver waits for room instead of evicting, so a snapshot the consumer
// has not read yet still arrives ahead of u.
func (p *Publisher) deliver(u Update) {
	select {
	case p.updates <- u:
	case <-p.ctx.Done():
	}
}

func (p *Publisher) send(u Update) bool {
	for {
		if p.ctx.Err() != nil {
			return false
		}
		select {
		case p.updates <- u:
			return true
		case <-p.ctx.Done():
			return false
		default:
			select {
			case <-p.updates:
			default:
			}
		}
	}
}
