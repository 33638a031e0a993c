package formatter

import (
	"io"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Report is the JSON document shape, shared with the web feed.
type Report struct {
	Title      string               `json:"title"`
	Caption    string               `json:"caption"`
	Connection string               `json:"connection"`
	Indicator  string               `json:"indicator"`
	Notice     string               `json:"notice,omitempty"`
	Stats      model.AggregateStats `json:"stats"`
	Empty      string               `json:"empty,omitempty"`
	Records    []ReportItem         `json:"records"`
	UpdatedAt  *time.Time           `json:"updated_at,omitempty"`
}

type ReportItem struct {
	ID        string      `json:"id"`
	Company   string      `json:"company"`
	JobTitle  string      `json:"job_title"`
	Link      string      `json:"link"`
	Status    string      `json:"status"`
	Badge     model.Badge `json:"badge"`
	When      string      `json:"when"`
	Timestamp *time.Time  `json:"timestamp"`
}

// NewReport flattens d into its JSON shape.
func NewReport(d *view.Dashboard) Report {
	r := Report{
		Title:      d.Title,
		Caption:    d.Caption,
		Connection: d.Connection.String(),
		Indicator:  d.Indicator,
		Notice:     d.Notice,
		Stats:      d.Stats,
		Empty:      d.Empty,
		Records:    make([]ReportItem, 0, len(d.Items)),
	}
	if !d.LastUpdate.IsZero() {
		at := d.LastUpdate
		r.UpdatedAt = &at
	}
	for _, it := range d.Items {
		r.Records = append(r.Records, ReportItem{
			ID:        it.ID,
			Company:   it.Company,
			JobTitle:  it.JobTitle,
			Link:      it.Link,
			Status:    it.Status,
			Badge:     it.Badge,
			When:      it.When,
			Timestamp: it.Timestamp,
		})
	}
	return r
}

func (f *JSONFormatter) Format(w io.Writer, d *view.Dashboard) error {
	data, err := sonic.ConfigStd.MarshalIndent(NewReport(d), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
