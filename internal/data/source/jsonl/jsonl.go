// Package jsonl follows a directory of JSONL record files. Every line is one
// record; when the same id appears more than once the last occurrence wins,
// reading files in lexical path order.
package jsonl

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
	"github.com/penwyp/go-automission-monitor/internal/data/parser"
	"github.com/penwyp/go-automission-monitor/internal/data/scanner"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// DefaultDebounce groups bursts of file events into one reload.
const DefaultDebounce = 150 * time.Millisecond

type Option func(*Source)

func WithDebounce(d time.Duration) Option {
	return func(s *Source) { s.debounce = d }
}

func WithConcurrency(n int) Option {
	return func(s *Source) { s.parser = parser.NewParser(n) }
}

type Source struct {
	dir      string
	debounce time.Duration
	scanner  *scanner.FileScanner
	parser   *parser.Parser

	mu     sync.Mutex
	closed bool
}

func New(dir string, opts ...Option) *Source {
	s := &Source{
		dir:      dir,
		debounce: DefaultDebounce,
		scanner:  scanner.NewFileScanner(dir),
		parser:   parser.NewParser(4),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
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

	info, err := os.Stat(s.dir)
	if err != nil {
		return nil, fmt.Errorf("records directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("records directory: %s is not a directory", s.dir)
	}

	watcher, err := newDirWatcher(s.dir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", s.dir, err)
	}

	return source.Open(ctx, source.KindJSONL, func(ctx context.Context, p *source.Publisher) error {
		defer watcher.Close()

		snap, err := s.load(q)
		if err != nil {
			return err
		}
		if !p.Publish(snap) {
			return nil
		}

		timer := time.NewTimer(s.debounce)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-watcher.Changed():
				timer.Reset(s.debounce)
			case <-timer.C:
				snap, err := s.load(q)
				if err != nil {
					return err
				}
				if !p.Publish(snap) {
					return nil
				}
			}
		}
	}), nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Load reads the current window once.
func (s *Source) Load(q source.Query) ([]model.ApplicationRecord, error) {
	snap, err := s.load(q)
	if err != nil {
		return nil, err
	}
	return snap.Records, nil
}

func (s *Source) load(q source.Query) (source.Snapshot, error) {
	files, err := s.scanner.Scan()
	if err != nil {
		return source.Snapshot{}, err
	}

	parsed := make(map[string][]model.ApplicationRecord, len(files))
	for res := range s.parser.ParseFiles(files) {
		if res.Error != nil {
			// The file may have been removed between scan and parse.
			continue
		}
		parsed[res.File] = res.Records
	}
	s.parser.Retain(files)

	byID := make(map[string]model.ApplicationRecord)
	for _, f := range files {
		for _, r := range parsed[f] {
			byID[r.ID] = r
		}
	}
	all := make([]model.ApplicationRecord, 0, len(byID))
	for _, r := range byID {
		all = append(all, r)
	}

	return source.Snapshot{
		Records: source.Window(all, q),
		ReadAt:  util.GetTimeProvider().Now(),
	}, nil
}
