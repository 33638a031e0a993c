package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		full := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte("{}\n"), 0644))
	}
}

func TestNewFileScanner(t *testing.T) {
	s := NewFileScanner("/tmp/records")
	assert.Equal(t, "/tmp/records", s.BaseDir())
	assert.Equal(t, ".jsonl", s.ext)
}

func TestFileScannerScanEmptyDirectory(t *testing.T) {
	files, err := NewFileScanner(t.TempDir()).Scan()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileScannerScanMissingRoot(t *testing.T) {
	_, err := NewFileScanner(filepath.Join(t.TempDir(), "missing")).Scan()
	assert.Error(t, err)
}

func TestFileScannerScanFiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"b.jsonl",
		"a.jsonl",
		"upper.JSONL",
		"notes.txt",
		"records.json",
		"backup.jsonl.bak",
		"2025/03/day.jsonl",
	)

	files, err := NewFileScanner(root).Scan()
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "2025/03/day.jsonl"),
		filepath.Join(root, "a.jsonl"),
		filepath.Join(root, "b.jsonl"),
		filepath.Join(root, "upper.JSONL"),
	}
	assert.Equal(t, want, files)
}

func TestFileScannerSkipsUnreadableSubdir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := t.TempDir()
	writeFiles(t, root, "ok.jsonl", "locked/hidden.jsonl")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0000))
	defer os.Chmod(locked, 0755)

	files, err := NewFileScanner(root).Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "ok.jsonl")}, files)
}
