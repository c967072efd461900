package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/minisql/internal/query"
)

// TableFormatter draws rows as a bordered grid
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer
func (f *TableFormatter) SetOutput(w io.Writer) {
	f.writer = w
}

// Format writes rows as an aligned grid followed by a row count
func (f *TableFormatter) Format(rows []*query.Record) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(f.writer, NoRows)
		return err
	}

	columns := headerOf(rows)

	table := tablewriter.NewWriter(f.writer)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = displayCell(row, col)
		}
		table.Append(cells)
	}
	table.Render()

	noun := "rows"
	if len(rows) == 1 {
		noun = "row"
	}
	_, err := fmt.Fprintf(f.writer, "(%d %s)\n", len(rows), noun)
	return err
}
