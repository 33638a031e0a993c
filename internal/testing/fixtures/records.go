// Package fixtures builds application records and writes them in the layouts
// the file-backed sources read.
package fixtures

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
)

// Statuses the bot writes, in the order it can reach them.
var Statuses = []string{
	"Applied",
	"Skipped - No Button",
	"Failed - Custom Questionnaire",
	"Failed - Unknown Modal State",
	"Failed - Too Many Steps",
	"Failed - Exception",
}

var companies = []string{"Google", "Microsoft", "Acme", "Globex", "Initech", "Umbrella", "Hooli"}

var titles = []string{"Software Engineer", "Backend Engineer", "Site Reliability Engineer", "Go Developer", "Platform Engineer"}

// RecordGenerator produces deterministic records spaced by Step, newest
// first, starting at Start.
type RecordGenerator struct {
	Start time.Time
	Step  time.Duration
}

// NewRecordGenerator creates a new record generator
func NewRecordGenerator(start time.Time) *RecordGenerator {
	return &RecordGenerator{Start: start, Step: time.Minute}
}

// Record returns the i-th record. Its status cycles through Statuses.
func (g *RecordGenerator) Record(i int) model.ApplicationRecord {
	ts := g.Start.Add(-time.Duration(i) * g.Step)
	return model.ApplicationRecord{
		ID:        fmt.Sprintf("rec-%05d", i),
		Company:   companies[i%len(companies)],
		JobTitle:  titles[i%len(titles)],
		Link:      fmt.Sprintf("https://www.linkedin.com/jobs/view/%d", 4000000+i),
		Status:    Statuses[i%len(Statuses)],
		Timestamp: &ts,
	}
}

// Records returns records 0..n-1.
func (g *RecordGenerator) Records(n int) []model.ApplicationRecord {
	out := make([]model.ApplicationRecord, n)
	for i := range out {
		out[i] = g.Record(i)
	}
	return out
}

// WithStatus returns n records that all carry status.
func (g *RecordGenerator) WithStatus(n int, status string) []model.ApplicationRecord {
	out := g.Records(n)
	for i := range out {
		out[i].Status = status
	}
	return out
}

// WriteJSONL writes records one per line to filename, creating parent
// directories as needed.
func WriteJSONL(filename string, records []model.ApplicationRecord) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return encode(file, records)
}

// AppendJSONL appends records to filename, creating it and its parent
// directories as needed.
func AppendJSONL(filename string, records []model.ApplicationRecord) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	return encode(file, records)
}

func encode(file *os.File, records []model.ApplicationRecord) error {
	w := bufio.NewWriter(file)
	encoder := sonic.ConfigDefault.NewEncoder(w)
	for _, r := range records {
		if err := encoder.Encode(r); err != nil {
			return err
		}
	}
	return w.Flush()
}
