package formatter

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (f *CSVFormatter) Format(w io.Writer, d *view.Dashboard) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"id", "timestamp", "company", "job_title", "link", "status", "badge"}); err != nil {
		return err
	}
	for _, it := range d.Items {
		ts := ""
		if it.Timestamp != nil {
			ts = it.Timestamp.UTC().Format(time.RFC3339)
		}
		record := []string{it.ID, ts, it.Company, it.JobTitle, it.Link, it.Status, string(it.Badge)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
