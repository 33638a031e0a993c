package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// Columns wider than this are truncated.
const maxColumnWidth = 48

type TableFormatter struct {
	headers []string
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headers: []string{"When", "Badge", "Status", "Company", "Job Title", "Link"},
	}
}

func (f *TableFormatter) Format(w io.Writer, d *view.Dashboard) error {
	fmt.Fprintln(w, d.Title)
	fmt.Fprintf(w, "%s · %s\n\n", d.Caption, d.Indicator)

	rows := make([][]string, 0, len(d.Items))
	for _, it := range d.Items {
		rows = append(rows, []string{it.When, it.Badge.Label(), it.Status, it.Company, it.JobTitle, it.Link})
	}
	widths := f.calculateColumnWidths(rows)

	f.printBorder(w, widths, "top")
	f.printRow(w, f.headers, widths)
	f.printBorder(w, widths, "middle")
	if len(rows) == 0 {
		total := len(widths)*3 - 1
		for _, width := range widths {
			total += width
		}
		fmt.Fprintf(w, "│%s│\n", util.CenterText(d.Empty, total))
	}
	for _, row := range rows {
		f.printRow(w, row, widths)
	}
	f.printBorder(w, widths, "bottom")

	for _, c := range d.Cards {
		fmt.Fprintf(w, "%s: %s\n", c.Label, util.FormatCount(c.Value))
	}
	return nil
}

func (f *TableFormatter) calculateColumnWidths(rows [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, h := range f.headers {
		widths[i] = util.GetDisplayWidth(h)
	}
	for _, row := range rows {
		for i, v := range row {
			if w := util.GetDisplayWidth(v); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] > maxColumnWidth {
			widths[i] = maxColumnWidth
		}
	}
	return widths
}

func (f *TableFormatter) printBorder(w io.Writer, widths []int, borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	default:
		left, middle, right = "└", "┴", "┘"
	}

	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("─", width+2)
	}
	fmt.Fprintln(w, left+strings.Join(parts, middle)+right)
}

func (f *TableFormatter) printRow(w io.Writer, values []string, widths []int) {
	var b strings.Builder
	b.WriteString("│")
	for i, v := range values {
		b.WriteString(" ")
		b.WriteString(util.PadRight(util.Truncate(v, widths[i]), widths[i]))
		b.WriteString(" │")
	}
	fmt.Fprintln(w, b.String())
}
