package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/segmentio/parquet-go"

	"github.com/vegasq/minisql/internal/query"
)

// readBatch is the number of rows fetched per ReadRows call
const readBatch = 128

// Reader reads parquet files into records.
//
// It maintains both an OS file handle and a parquet file handle to enable
// proper resource cleanup.
type Reader struct {
	file   *os.File
	pqFile *parquet.File
}

// NewReader creates a new parquet reader for the specified file path.
//
// The file is opened and validated as a parquet file. Returns an error if
// the file doesn't exist or is not a valid parquet file.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	return &Reader{
		file:   file,
		pqFile: pqFile,
	}, nil
}

// Columns returns the leaf column paths of the schema, nested paths
// joined with dots
func (r *Reader) Columns() []string {
	paths := r.pqFile.Schema().Columns()
	columns := make([]string, len(paths))
	for i, path := range paths {
		columns[i] = strings.Join(path, ".")
	}
	return columns
}

// ReadAll reads all rows from the parquet file into memory.
//
// Every value is rendered to text and type-inferred the same way CSV
// fields are, so a parquet int64 column of non-negative numbers becomes
// Int and negative numbers stay Text. Nulls become query.Null.
func (r *Reader) ReadAll() ([]string, []*query.Record, error) {
	columns := r.Columns()
	records := make([]*query.Record, 0)

	reader := parquet.NewReader(r.pqFile)
	defer func() { _ = reader.Close() }()

	buf := make([]parquet.Row, readBatch)
	for {
		n, err := reader.ReadRows(buf)
		for _, row := range buf[:n] {
			records = append(records, toRecord(columns, row))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("failed to read row: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return columns, records, nil
}

// toRecord converts one parquet row into a record with every column set
func toRecord(columns []string, row parquet.Row) *query.Record {
	rec := query.NewRecord(len(columns))
	for _, col := range columns {
		rec.Set(col, query.Null())
	}
	for _, v := range row {
		idx := v.Column()
		if idx < 0 || idx >= len(columns) || v.IsNull() {
			continue
		}
		rec.Set(columns[idx], query.InferValue(valueText(v)))
	}
	return rec
}

// valueText renders a parquet value the way it would appear in a CSV file
func valueText(v parquet.Value) string {
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}

// Close closes the parquet reader and releases associated resources.
func (r *Reader) Close() error {
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}
