package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vegasq/minisql/internal/query"
)

const utf8BOM = "\uFEFF"

// readCSVFile opens path, unwraps any compression and parses it as CSV
func readCSVFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	body, err := decompress(path, file)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	columns, records, err := ReadCSV(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return &Table{Source: path, Columns: columns, Records: records}, nil
}

// ReadCSV parses CSV with a header line. Each field is type-inferred.
// A line shorter than the header leaves the missing columns Null; extra
// fields beyond the header are ignored, so every record has the same
// columns.
func ReadCSV(r io.Reader) ([]string, []*query.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, []*query.Record{}, nil
		}
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	records := make([]*query.Record, 0)
	for {
		fields, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("failed to read row %d: %w", len(records)+1, err)
		}

		rec := query.NewRecord(len(header))
		for i, col := range header {
			if i < len(fields) {
				rec.Set(col, query.InferValue(fields[i]))
			} else {
				rec.Set(col, query.Null())
			}
		}
		records = append(records, rec)
	}

	columns := header
	if len(records) > 0 {
		// Duplicate header names collapse into one column
		columns = records[0].Columns()
	}

	return columns, records, nil
}
