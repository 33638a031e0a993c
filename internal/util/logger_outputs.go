package util

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
)

// WriterOutput writes log entries to any io.Writer (stderr, test buffers).
type WriterOutput struct {
	writer io.Writer
	format LogFormat
	mu     sync.Mutex
}

// NewWriterOutput creates an output bound to w.
func NewWriterOutput(w io.Writer, format LogFormat) Output {
	return &WriterOutput{
		writer: w,
		format: format,
	}
}

func (c *WriterOutput) Write(entry LogEntry) error {
	line, err := formatEntry(entry, c.format)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = fmt.Fprintln(c.writer, line)
	return err
}

func (c *WriterOutput) Close() error {
	return nil
}

// FileOutput appends log entries to a file
type FileOutput struct {
	file   *os.File
	format LogFormat
	mu     sync.Mutex
}

func NewFileOutput(path string, format LogFormat) (Output, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &FileOutput{
		file:   file,
		format: format,
	}, nil
}

func (f *FileOutput) Write(entry LogEntry) error {
	line, err := formatEntry(entry, f.format)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	_, err = fmt.Fprintln(f.file, line)
	return err
}

func (f *FileOutput) Close() error {
	return f.file.Close()
}

// formatEntry renders one entry. Text fields are sorted by key so lines are stable.
func formatEntry(entry LogEntry, format LogFormat) (string, error) {
	if format == FormatJSON {
		data, err := sonic.Marshal(entry)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	timestamp := entry.Timestamp.Format("2006/01/02 15:04:05")
	line := fmt.Sprintf("%s [%s] %s", timestamp, entry.Level, entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fieldStrs := make([]string, 0, len(keys))
		for _, k := range keys {
			fieldStrs = append(fieldStrs, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}
		line += " " + strings.Join(fieldStrs, " ")
	}

	return line, nil
}
