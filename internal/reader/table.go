// Package reader loads a table from delimited or columnar files.
//
// A table is read once into memory and never modified afterwards. Field
// types are inferred with the digits-only rule of query.InferValue, for
// every source format.
//
// Supported sources, tried in this order by Load:
//
//	<name>.csv
//	<name>.csv.gz   (gzip)
//	<name>.csv.zst  (zstandard)
//	<name>.csv.lz4  (lz4 frame)
//	<name>.csv.br   (brotli)
//	<name>.parquet
package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vegasq/minisql/internal/query"
)

// ErrSourceNotFound is matched by errors.Is when no file backs a table
var ErrSourceNotFound = errors.New("source not found")

// NotFoundError reports the file that was looked for
type NotFoundError struct {
	File string
	Dir  string
}

func (e *NotFoundError) Error() string {
	if e.Dir == "" {
		return fmt.Sprintf("file '%s' not found", e.File)
	}
	return fmt.Sprintf("CSV file '%s' not found in %s folder", e.File, e.Dir)
}

// Is makes errors.Is(err, ErrSourceNotFound) true
func (e *NotFoundError) Is(target error) bool {
	return target == ErrSourceNotFound
}

// Extensions lists the file suffixes Load looks for, in order
var Extensions = []string{".csv", ".csv.gz", ".csv.zst", ".csv.lz4", ".csv.br", ".parquet"}

// Table is an immutable in-memory table
type Table struct {
	Name    string
	Source  string
	Columns []string
	Records []*query.Record
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.Records)
}

// Execute runs q against the table
func (t *Table) Execute(q *query.Query) ([]*query.Record, error) {
	return query.Execute(q, t.Name, t.Records)
}

// ColumnInfo describes one column of a loaded table
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema reports each column with the kind of value it holds: int, text,
// null when every value is absent, or mixed when rows disagree.
func (t *Table) Schema() []ColumnInfo {
	infos := make([]ColumnInfo, 0, len(t.Columns))
	for _, col := range t.Columns {
		kind := query.KindNull
		mixed := false
		for _, rec := range t.Records {
			v, _ := rec.Get(col)
			if v.IsNull() {
				continue
			}
			if kind == query.KindNull {
				kind = v.Kind()
			} else if v.Kind() != kind {
				mixed = true
				break
			}
		}

		typ := kind.String()
		if mixed {
			typ = "mixed"
		}
		infos = append(infos, ColumnInfo{Name: col, Type: typ})
	}
	return infos
}

// Load finds the file backing table name in dir and reads it. The first
// of Extensions that exists wins.
func Load(dir, name string) (*Table, error) {
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid table name %q", name)
	}

	for _, ext := range Extensions {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		table, err := readFile(path)
		if err != nil {
			return nil, err
		}
		table.Name = name
		return table, nil
	}

	return nil, &NotFoundError{File: name + ".csv", Dir: dir}
}

// LoadFile reads one file, picking the format from its extension. The
// table is named after the file without its extensions, so
// data/users.csv.gz becomes "users".
func LoadFile(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{File: path}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	table, err := readFile(path)
	if err != nil {
		return nil, err
	}
	table.Name = TableName(path)
	return table, nil
}

// TableName derives a table name from a file path
func TableName(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// readFile dispatches on the file extension
func readFile(path string) (*Table, error) {
	if strings.HasSuffix(strings.ToLower(path), ".parquet") {
		r, err := NewReader(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = r.Close() }()

		columns, records, err := r.ReadAll()
		if err != nil {
			return nil, err
		}
		return &Table{Source: path, Columns: columns, Records: records}, nil
	}

	return readCSVFile(path)
}
