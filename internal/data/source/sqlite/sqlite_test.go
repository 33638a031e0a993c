package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
	"github.com/penwyp/go-automission-monitor/internal/data/source"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func openTemp(t *testing.T) *Source {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "records.db"), WithPollInterval(20*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(id, status string, ts *time.Time) model.ApplicationRecord {
	return model.ApplicationRecord{ID: id, Company: "Acme", JobTitle: "Engineer", Link: "https://example.com/" + id, Status: status, Timestamp: ts}
}

func at(d time.Duration) *time.Time {
	ts := base.Add(d)
	return &ts
}

func TestOpenRejectsInMemory(t *testing.T) {
	for _, path := range []string{":memory:", "", "file::memory:?cache=shared", "file:records?mode=memory"} {
		t.Run(path, func(t *testing.T) {
			s, err := Open(path)
			assert.ErrorIs(t, err, ErrInMemory)
			assert.Nil(t, s)
		})
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "records.db")
	s, err := Open(path, WithPollInterval(20*time.Millisecond))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Upsert(context.Background(), record("r1", "Applied", at(0))))

	stream, err := s.Subscribe(context.Background(), source.DefaultQuery())
	require.NoError(t, err)
	defer stream.Unsubscribe()

	u := <-stream.Updates()
	require.NoError(t, u.Err)
	require.Len(t, u.Snapshot.Records, 1)
	assert.Equal(t, "r1", u.Snapshot.Records[0].ID)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, Migrate(s.DB()))
	require.NoError(t, Migrate(s.DB()))
}

func TestLoadOrdersAndLimits(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	var records []model.ApplicationRecord
	for i := 0; i < 110; i++ {
		records = append(records, record(fmt.Sprintf("r%03d", i), model.StatusApplied, at(time.Duration(i)*time.Second)))
	}
	records = append(records, record("no-ts", "Skipped - No Button", nil))
	require.NoError(t, s.Upsert(ctx, records...))

	got, err := s.Load(ctx, source.DefaultQuery())
	require.NoError(t, err)
	require.Len(t, got, 100)
	assert.Equal(t, "r109", got[0].ID)
	assert.Equal(t, "r010", got[99].ID)
	assert.True(t, got[0].Timestamp.Equal(base.Add(109*time.Second)))

	small, err := s.Load(ctx, source.DefaultQuery().WithLimit(200))
	require.NoError(t, err)
	assert.Len(t, small, 100)
}

func TestLoadNilTimestampLast(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx,
		record("no-ts", "Applied", nil),
		record("old", "Applied", at(-time.Hour)),
		record("new", "Failed - Exception", at(0)),
	))

	got, err := s.Load(ctx, source.DefaultQuery())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"new", "old", "no-ts"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Nil(t, got[2].Timestamp)
}

func TestUpsertReplaces(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, record("r1", "Skipped - No Button", at(0))))
	require.NoError(t, s.Upsert(ctx, record("r1", "Applied", at(0))))

	got, err := s.Load(ctx, source.DefaultQuery())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Applied", got[0].Status)
}

func TestSubscribeSeesCommits(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, record("r1", "Applied", at(0))))

	stream, err := s.Subscribe(ctx, source.DefaultQuery())
	require.NoError(t, err)
	defer stream.Unsubscribe()

	first := <-stream.Updates()
	require.NoError(t, first.Err)
	require.Len(t, first.Snapshot.Records, 1)

	require.NoError(t, s.Upsert(ctx, record("r2", "Failed - Custom Questionnaire", at(time.Minute))))

	require.Eventually(t, func() bool {
		select {
		case u := <-stream.Updates():
			return len(u.Snapshot.Records) == 2 && u.Snapshot.Records[0].ID == "r2"
		default:
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}

func TestSubscribeAfterClose(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Subscribe(context.Background(), source.DefaultQuery())
	assert.ErrorIs(t, err, source.ErrClosed)
}
