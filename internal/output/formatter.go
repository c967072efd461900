package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vegasq/minisql/internal/query"
)

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to convert rows to the target format
// and SetOutput to change the output destination.
type Formatter interface {
	// Format writes rows in the formatter's specific format
	Format(rows []*query.Record) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// DefaultFormat is used when no format is configured
const DefaultFormat = "text"

// NoRows is printed by the text and table formatters for an empty result
const NoRows = "(no rows)"

var constructors = map[string]func(io.Writer) Formatter{
	"text":  func(w io.Writer) Formatter { return NewTextFormatter(w) },
	"table": func(w io.Writer) Formatter { return NewTableFormatter(w) },
	"csv":   func(w io.Writer) Formatter { return NewCSVFormatter(w) },
	"json":  func(w io.Writer) Formatter { return NewJSONFormatter(w) },
	"jsonl": func(w io.Writer) Formatter { return NewJSONFormatter(w) },
}

// NewFormatter returns the formatter registered under name. An empty name
// selects DefaultFormat.
func NewFormatter(name string, w io.Writer) (Formatter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultFormat
	}
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unsupported output format: %s (supported: %s)", name, strings.Join(Formats(), ", "))
	}
	return ctor(w), nil
}

// Formats lists the registered format names
func Formats() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// headerOf returns the column order used for rendering
func headerOf(rows []*query.Record) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].Columns()
}

// displayCell renders a value for the human-readable formats
func displayCell(rec *query.Record, col string) string {
	v, ok := rec.Get(col)
	if !ok || v.IsNull() {
		return "NULL"
	}
	return v.String()
}
