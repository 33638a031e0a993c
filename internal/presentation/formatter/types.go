// Package formatter prints a one-shot report of the dashboard view.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
)

// Formatter writes a dashboard report.
type Formatter interface {
	Format(w io.Writer, d *view.Dashboard) error
}

// Output formats accepted by --output.
const (
	OutputTable   = "table"
	OutputJSON    = "json"
	OutputCSV     = "csv"
	OutputSummary = "summary"
)

// Outputs lists every supported format.
func Outputs() []string {
	return []string{OutputTable, OutputJSON, OutputCSV, OutputSummary}
}

// New returns the formatter for name.
func New(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case OutputTable, "":
		return NewTableFormatter(), nil
	case OutputJSON:
		return NewJSONFormatter(), nil
	case OutputCSV:
		return NewCSVFormatter(), nil
	case OutputSummary:
		return NewSummaryFormatter(), nil
	}
	return nil, fmt.Errorf("unknown output format %q (valid: %s)", name, strings.Join(Outputs(), ", "))
}
