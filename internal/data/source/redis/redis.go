// Package redis follows records kept in Redis: one hash per record, a sorted
// set indexing record ids by timestamp, and a pub/sub channel that writers
// notify after each change.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// DefaultPrefix namespaces every key.
const DefaultPrefix = "automission"

// Keys names the Redis keys under one prefix.
type Keys struct {
	prefix string
}

func NewKeys(prefix string) Keys {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Keys{prefix: prefix}
}

// Timeline is the sorted set of record ids scored by unix milliseconds.
func (k Keys) Timeline() string { return k.prefix + ":timeline" }

// Events is the pub/sub channel writers notify.
func (k Keys) Events() string { return k.prefix + ":events" }

// Record is the hash holding one record.
func (k Keys) Record(id string) string { return k.prefix + ":record:" + id }

// Connect accepts either a redis:// URL or a bare host:port.
func Connect(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

type Source struct {
	client *redis.Client
	keys   Keys

	mu     sync.Mutex
	closed bool
}

// New wraps an existing client. Close closes the client.
func New(client *redis.Client, prefix string) *Source {
	return &Source{client: client, keys: NewKeys(prefix)}
}

// Ping verifies the server is reachable.
func (s *Source) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Put stores records and notifies subscribers.
func (s *Source) Put(ctx context.Context, records ...model.ApplicationRecord) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, r := range records {
			pipe.HSet(ctx, s.keys.Record(r.ID), encodeRecord(r))
			pipe.ZAdd(ctx, s.keys.Timeline(), redis.Z{Score: score(r), Member: r.ID})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("storing records: %w", err)
	}
	return s.client.Publish(ctx, s.keys.Events(), "changed").Err()
}

// Load reads the current window once.
func (s *Source) Load(ctx context.Context, q source.Query) ([]model.ApplicationRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	ids, err := s.client.ZRevRange(ctx, s.keys.Timeline(), 0, int64(q.Limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading timeline: %w", err)
	}
	if len(ids) == 0 {
		return []model.ApplicationRecord{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.keys.Record(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	records := make([]model.ApplicationRecord, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			util.LogWarn("Timeline entry without record", util.F("id", ids[i]))
			continue
		}
		r, err := decodeRecord(ids[i], fields)
		if err != nil {
			util.LogWarn("Skip undecodable record", util.F("id", ids[i]), util.F("error", err))
			continue
		}
		records = append(records, r)
	}
	return source.Window(records, q), nil
}

func (s *Source) Subscribe(ctx context.Context, q source.Query) (*source.Stream, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, source.ErrClosed
	}

	pubsub := s.client.Subscribe(ctx, s.keys.Events())
	// Wait for the subscription so no change between here and the first
	// load is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", s.keys.Events(), err)
	}

	return source.Open(ctx, source.KindRedis, func(ctx context.Context, p *source.Publisher) error {
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			records, err := s.Load(ctx, q)
			if err != nil {
				return err
			}
			if !p.Publish(source.Snapshot{Records: records, ReadAt: util.GetTimeProvider().Now()}) {
				return nil
			}

			select {
			case <-ctx.Done():
				return nil
			case _, ok := <-messages:
				if !ok {
					return errors.New("redis subscription closed")
				}
			}
		}
	}), nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}

func score(r model.ApplicationRecord) float64 {
	if r.Timestamp == nil {
		return 0
	}
	return float64(r.Timestamp.UnixMilli())
}

func encodeRecord(r model.ApplicationRecord) map[string]interface{} {
	ts := ""
	if r.Timestamp != nil {
		ts = r.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	return map[string]interface{}{
		"id":        r.ID,
		"company":   r.Company,
		"job_title": r.JobTitle,
		"link":      r.Link,
		"status":    r.Status,
		"timestamp": ts,
	}
}

func decodeRecord(id string, fields map[string]string) (model.ApplicationRecord, error) {
	r := model.ApplicationRecord{
		ID:       id,
		Company:  fields["company"],
		JobTitle: fields["job_title"],
		Link:     fields["link"],
		Status:   fields["status"],
	}
	if raw := fields["timestamp"]; raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return model.ApplicationRecord{}, fmt.Errorf("timestamp %q: %w", raw, err)
		}
		r.Timestamp = &ts
	}
	return r, nil
}
