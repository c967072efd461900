package output

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vegasq/minisql/internal/query"
)

// columnSeparator joins cells in the text format
const columnSeparator = " | "

// TextFormatter prints a header line, a dashed rule as wide as the header
// and one line per row
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// SetOutput sets the output writer
func (f *TextFormatter) SetOutput(w io.Writer) {
	f.writer = w
}

// Format writes rows as plain text
func (f *TextFormatter) Format(rows []*query.Record) error {
	bw := bufio.NewWriter(f.writer)

	if len(rows) == 0 {
		if _, err := bw.WriteString(NoRows + "\n"); err != nil {
			return err
		}
		return bw.Flush()
	}

	columns := headerOf(rows)
	header := strings.Join(columns, columnSeparator)
	if _, err := bw.WriteString(header + "\n"); err != nil {
		return err
	}
	if _, err := bw.WriteString(strings.Repeat("-", runewidth.StringWidth(header)) + "\n"); err != nil {
		return err
	}

	cells := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			cells[i] = displayCell(row, col)
		}
		if _, err := bw.WriteString(strings.Join(cells, columnSeparator) + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}
