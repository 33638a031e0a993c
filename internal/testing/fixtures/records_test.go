package fixtures

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
)

func TestRecordGenerator(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewRecordGenerator(start)

	records := g.Records(12)
	require.Len(t, records, 12)
	assert.Equal(t, "rec-00000", records[0].ID)
	assert.Equal(t, start, *records[0].Timestamp)
	assert.Equal(t, start.Add(-11*time.Minute), *records[11].Timestamp)
	assert.Equal(t, "Applied", records[0].Status)
	assert.Equal(t, "Applied", records[6].Status)

	stats := model.ComputeStats(records)
	assert.Equal(t, model.AggregateStats{Total: 12, Applied: 2, Skipped: 10}, stats)
}

func TestWithStatus(t *testing.T) {
	g := NewRecordGenerator(time.Now())
	for _, r := range g.WithStatus(3, "Failed - Exception") {
		assert.Equal(t, model.BadgeFailed, model.ClassifyBadge(r.Status))
	}
}

func TestWriteAndAppendJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "log.jsonl")
	g := NewRecordGenerator(time.Now())

	require.NoError(t, WriteJSONL(path, g.Records(2)))
	require.NoError(t, AppendJSONL(path, g.Records(3)[2:]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"company":"Google"`)
	assert.Contains(t, lines[2], `"id":"rec-00002"`)
}

func TestAppendJSONLCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records", "seed.jsonl")
	g := NewRecordGenerator(time.Now())

	require.NoError(t, AppendJSONL(path, g.Records(2)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}
