package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-automission-monitor/internal/util"
)

// FileScanner finds record files below a directory.
type FileScanner struct {
	baseDir string
	ext     string
}

// NewFileScanner creates a scanner for *.jsonl files under baseDir.
func NewFileScanner(baseDir string) *FileScanner {
	return &FileScanner{
		baseDir: baseDir,
		ext:     ".jsonl",
	}
}

// BaseDir returns the scanned root.
func (s *FileScanner) BaseDir() string {
	return s.baseDir
}

// Scan returns every matching file path in lexical order. Unreadable entries
// below the root are skipped; a missing or unreadable root is an error.
func (s *FileScanner) Scan() ([]string, error) {
	start := time.Now()
	var files []string
	dirCount := 0

	util.LogDebug("Start scanning directory", util.F("dir", s.baseDir))

	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.baseDir {
				return err
			}
			util.LogDebug("Skip entry", util.F("path", path), util.F("error", err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			dirCount++
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), s.ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.baseDir, err)
	}

	sort.Strings(files)
	util.LogDebug("File scan completed",
		util.F("duration", time.Since(start)),
		util.F("dirs", dirCount),
		util.F("files", len(files)))

	return files, nil
}
