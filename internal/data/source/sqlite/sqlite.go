// Package sqlite follows an applications table in a SQLite database. Commits
// from any other connection or process are detected by polling
// PRAGMA data_version on a connection reserved for that purpose.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// DefaultPollInterval is how often data_version is checked.
const DefaultPollInterval = 500 * time.Millisecond

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS applications (
		id         TEXT PRIMARY KEY,
		company    TEXT NOT NULL DEFAULT '',
		job_title  TEXT NOT NULL DEFAULT '',
		link       TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT '',
		timestamp  INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_timestamp ON applications(timestamp DESC)`,
}

const windowQuery = `SELECT id, company, job_title, link, status, timestamp
	FROM applications
	ORDER BY timestamp IS NULL, timestamp DESC, id
	LIMIT ?`

type Option func(*Source)

func WithPollInterval(d time.Duration) Option {
	return func(s *Source) { s.poll = d }
}

type Source struct {
	db   *sql.DB
	poll time.Duration

	mu     sync.Mutex
	closed bool
}

// ErrInMemory is returned for in-memory paths. Every pooled connection to
// such a database sees its own empty copy, so subscriptions could never
// observe writes.
var ErrInMemory = errors.New("sqlite source needs a file path, not an in-memory database")

// Open opens (creating if needed) the database at path in WAL mode and
// ensures the schema exists.
func Open(path string, opts ...Option) (*Source, error) {
	if isInMemory(path) {
		return nil, ErrInMemory
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	s := &Source{db: db, poll: DefaultPollInterval}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func isInMemory(path string) bool {
	return path == "" || path == ":memory:" ||
		strings.HasPrefix(path, "file::memory:") ||
		strings.Contains(path, "mode=memory")
}

// Migrate creates the applications table and its index.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// DB exposes the underlying handle for fixtures.
func (s *Source) DB() *sql.DB {
	return s.db
}

// Upsert writes records, replacing rows with the same id.
func (s *Source) Upsert(ctx context.Context, records ...model.ApplicationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO applications (id, company, job_title, link, status, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			company = excluded.company,
			job_title = excluded.job_title,
			link = excluded.link,
			status = excluded.status,
			timestamp = excluded.timestamp`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var ts sql.NullInt64
		if r.Timestamp != nil {
			ts = sql.NullInt64{Int64: r.Timestamp.UnixMilli(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.Company, r.JobTitle, r.Link, r.Status, ts); err != nil {
			return fmt.Errorf("upserting %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// Load reads the current window once.
func (s *Source) Load(ctx context.Context, q source.Query) ([]model.ApplicationRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, windowQuery, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("querying applications: %w", err)
	}
	defer rows.Close()

	records := make([]model.ApplicationRecord, 0, q.Limit)
	for rows.Next() {
		var (
			r  model.ApplicationRecord
			ts sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Company, &r.JobTitle, &r.Link, &r.Status, &ts); err != nil {
			return nil, fmt.Errorf("scanning application: %w", err)
		}
		if ts.Valid {
			t := time.UnixMilli(ts.Int64).UTC()
			r.Timestamp = &t
		}
		records = append(records, r)
	}
	return records, rows.Err()
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

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring db connection: %w", err)
	}

	return source.Open(ctx, source.KindSQLite, func(ctx context.Context, p *source.Publisher) error {
		defer conn.Close()

		ticker := time.NewTicker(s.poll)
		defer ticker.Stop()

		var last int64 = -1
		for {
			version, err := dataVersion(ctx, conn)
			if err != nil {
				return err
			}
			if version != last {
				records, err := s.Load(ctx, q)
				if err != nil {
					return err
				}
				last = version
				util.LogDebug("SQLite window reloaded", util.F("records", len(records)), util.F("data_version", version))
				if !p.Publish(source.Snapshot{Records: records, ReadAt: util.GetTimeProvider().Now()}) {
					return nil
				}
			}

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
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
	return s.db.Close()
}

func dataVersion(ctx context.Context, conn *sql.Conn) (int64, error) {
	var v int64
	if err := conn.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading data_version: %w", err)
	}
	return v, nil
}
