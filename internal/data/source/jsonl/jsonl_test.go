package jsonl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-automission-monitor/internal/data/source"
)

func line(id, status string, ts time.Time) string {
	return fmt.Sprintf(`{"id":%q,"company":"Acme","job_title":"Engineer","link":"https://example.com/%s","status":%q,"timestamp":%q}`,
		id, id, status, ts.Format(time.RFC3339))
}

func appendLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(strings.Join(lines, "\n") + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestLoadMergesFilesLastWins(t *testing.T) {
	dir := t.TempDir()
	appendLines(t, filepath.Join(dir, "a.jsonl"),
		line("r1", "Skipped - No Button", base),
		line("r2", "Applied", base.Add(-time.Minute)),
	)
	appendLines(t, filepath.Join(dir, "b.jsonl"),
		line("r1", "Applied", base),
		line("r3", "Failed - Exception", base.Add(time.Minute)),
	)

	records, err := New(dir).Load(source.DefaultQuery())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "r3", records[0].ID)
	assert.Equal(t, "r1", records[1].ID)
	assert.Equal(t, "Applied", records[1].Status)
	assert.Equal(t, "r2", records[2].ID)
}

func TestLoadAppliesLimit(t *testing.T) {
	dir := t.TempDir()
	var lines []string
	for i := 0; i < 130; i++ {
		lines = append(lines, line(fmt.Sprintf("r%03d", i), "Applied", base.Add(time.Duration(i)*time.Second)))
	}
	appendLines(t, filepath.Join(dir, "records.jsonl"), lines...)

	records, err := New(dir).Load(source.DefaultQuery())
	require.NoError(t, err)
	require.Len(t, records, 100)
	assert.Equal(t, "r129", records[0].ID)
	assert.Equal(t, "r030", records[99].ID)
}

func TestSubscribeMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope")).Subscribe(context.Background(), source.DefaultQuery())
	assert.Error(t, err)
}

func TestSubscribeFollowsAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.jsonl")
	appendLines(t, path, line("r1", "Applied", base))

	stream, err := New(dir, WithDebounce(20*time.Millisecond)).Subscribe(context.Background(), source.DefaultQuery())
	require.NoError(t, err)
	defer stream.Unsubscribe()

	first := <-stream.Updates()
	require.NoError(t, first.Err)
	require.Len(t, first.Snapshot.Records, 1)

	appendLines(t, path, line("r2", "Failed - Too Many Steps", base.Add(time.Minute)))

	var latest source.Update
	require.Eventually(t, func() bool {
		select {
		case latest = <-stream.Updates():
			return len(latest.Snapshot.Records) == 2
		default:
			return false
		}
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, "r2", latest.Snapshot.Records[0].ID)
}

func TestSubscribeSeesNewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	stream, err := New(dir, WithDebounce(20*time.Millisecond)).Subscribe(context.Background(), source.DefaultQuery())
	require.NoError(t, err)
	defer stream.Unsubscribe()

	first := <-stream.Updates()
	assert.Empty(t, first.Snapshot.Records)

	sub := filepath.Join(dir, "2025-03-01")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(50 * time.Millisecond)
	appendLines(t, filepath.Join(sub, "run.jsonl"), line("r1", "Applied", base))

	require.Eventually(t, func() bool {
		select {
		case u := <-stream.Updates():
			return len(u.Snapshot.Records) == 1
		default:
			return false
		}
	}, 3*time.Second, 20*time.Millisecond)
}

func TestSubscribeAfterClose(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Close())
	_, err := s.Subscribe(context.Background(), source.DefaultQuery())
	assert.ErrorIs(t, err, source.ErrClosed)
}
