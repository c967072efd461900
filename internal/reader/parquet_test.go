package reader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/segmentio/parquet-go"

	"github.com/vegasq/minisql/internal/query"
)

type testUser struct {
	ID      int64   `parquet:"id"`
	Name    string  `parquet:"name"`
	Age     int32   `parquet:"age"`
	Active  bool    `parquet:"active"`
	Balance float64 `parquet:"balance"`
}

// createTestParquetFile writes users to path
func createTestParquetFile(t *testing.T, path string, users []testUser) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	defer func() { _ = f.Close() }()

	writer := parquet.NewGenericWriter[testUser](f)
	if _, err := writer.Write(users); err != nil {
		t.Fatalf("failed to write test data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
}

func TestLoad_Parquet(t *testing.T) {
	dir := t.TempDir()
	createTestParquetFile(t, filepath.Join(dir, "users.parquet"), []testUser{
		{ID: 1, Name: "Alice", Age: 30, Active: true, Balance: 10.5},
		{ID: 2, Name: "Bob", Age: 25, Active: false, Balance: -3},
	})

	table, err := Load(dir, "users")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	if len(table.Columns) != 5 {
		t.Errorf("Columns = %v, want 5 columns", table.Columns)
	}

	tests := []struct {
		row      int
		col      string
		wantKind query.Kind
		wantText string
	}{
		{0, "id", query.KindInt, "1"},
		{0, "name", query.KindText, "Alice"},
		{0, "age", query.KindInt, "30"},
		{0, "active", query.KindText, "true"},
		{0, "balance", query.KindText, "10.5"},
		{1, "balance", query.KindText, "-3"},
		{1, "name", query.KindText, "Bob"},
	}
	for _, tt := range tests {
		v, ok := table.Records[tt.row].Get(tt.col)
		if !ok {
			t.Errorf("row %d: column %s missing", tt.row, tt.col)
			continue
		}
		if v.Kind() != tt.wantKind || v.String() != tt.wantText {
			t.Errorf("row %d %s = %q (%s), want %q (%s)", tt.row, tt.col, v.String(), v.Kind(), tt.wantText, tt.wantKind)
		}
	}
}

func TestLoad_ParquetQuery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.parquet")
	createTestParquetFile(t, path, []testUser{
		{ID: 1, Name: "Alice", Age: 30},
		{ID: 2, Name: "Bob", Age: 25},
		{ID: 3, Name: "Carol", Age: 41},
	})

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if table.Name != "people" {
		t.Errorf("Name = %q, want people", table.Name)
	}

	q, err := query.Parse("SELECT COUNT(*) FROM people WHERE age >= 30")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	rows, err := table.Execute(q)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if v, _ := rows[0].Get("COUNT"); !v.Equal(query.Int(2)) {
		t.Errorf("COUNT = %v, want 2", v)
	}
}

func TestNewReader_NotParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.parquet")
	writeFile(t, path, []byte("id,name\n1,a\n"))

	if _, err := NewReader(path); err == nil {
		t.Error("NewReader() error = nil for non-parquet file")
	}
}
