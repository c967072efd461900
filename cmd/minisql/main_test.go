package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vegasq/minisql/internal/query"
	"github.com/vegasq/minisql/internal/reader"
)

const usersCSV = `id,name,age,country
1,Alice,30,USA
2,Bob,25,UK
3,Carol,41,USA
`

// setupDataDir writes users.csv into a temporary data directory
func setupDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "users.csv"), []byte(usersCSV), 0o644); err != nil {
		t.Fatalf("failed to write users.csv: %v", err)
	}
	return dir
}

// runCLI executes the root command and returns stdout
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestQueryCommand(t *testing.T) {
	dir := setupDataDir(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "text output",
			args: []string{"query", "--data-dir", dir, "SELECT name FROM users WHERE country = 'USA'"},
			want: "name\n----\nAlice\nCarol\n",
		},
		{
			name: "count with csv output",
			args: []string{"query", "--data-dir", dir, "-f", "csv", "SELECT COUNT(*) FROM users WHERE age >= 30"},
			want: "COUNT\n2\n",
		},
		{
			name: "jsonl output",
			args: []string{"query", "--data-dir", dir, "--format", "jsonl", "SELECT id, name FROM users WHERE id = 2"},
			want: `{"id":2,"name":"Bob"}` + "\n",
		},
		{
			name: "token parser",
			args: []string{"query", "--data-dir", dir, "--parser", "tokens", "SELECT name FROM users WHERE age < 26;"},
			want: "name\n----\nBob\n",
		},
		{
			name: "empty result",
			args: []string{"query", "--data-dir", dir, "SELECT * FROM users WHERE age > 100"},
			want: "(no rows)\n",
		},
		{
			name: "table as file path",
			args: []string{"query", "-t", filepath.Join(dir, "users.csv"), "SELECT COUNT(name) FROM users"},
			want: "COUNT\n-----\n3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runCLI(t, tt.args...)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("output =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestQueryCommand_FromFile(t *testing.T) {
	dir := setupDataDir(t)
	queryFile := filepath.Join(t.TempDir(), "q.sql")
	if err := os.WriteFile(queryFile, []byte("SELECT name FROM users WHERE id = 3;\n"), 0o644); err != nil {
		t.Fatalf("failed to write query file: %v", err)
	}

	got, err := runCLI(t, "query", "--data-dir", dir, "--file", queryFile)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != "name\n----\nCarol\n" {
		t.Errorf("output = %q", got)
	}
}

func TestQueryCommand_Errors(t *testing.T) {
	dir := setupDataDir(t)

	tests := []struct {
		name    string
		args    []string
		wantIs  error
		wantMsg string
	}{
		{"syntax", []string{"query", "--data-dir", dir, "SELECT name users"}, query.ErrSyntax, "missing FROM"},
		{"unknown column", []string{"query", "--data-dir", dir, "SELECT foo FROM users"}, query.ErrUnknownColumn, "'foo' in SELECT list"},
		{"missing table", []string{"query", "--data-dir", dir, "SELECT * FROM orders"}, reader.ErrSourceNotFound, "CSV file 'orders.csv' not found"},
		{"table mismatch", []string{"query", "--data-dir", dir, "-t", "users", "SELECT * FROM orders"}, query.ErrUnknownTable, "'orders'"},
		{"no query", []string{"query", "--data-dir", dir}, nil, "missing query"},
		{"bad format", []string{"query", "--data-dir", dir, "-f", "xml", "SELECT * FROM users"}, nil, "unsupported output format"},
		{"bad parser", []string{"query", "--data-dir", dir, "--parser", "regex", "SELECT * FROM users"}, nil, "regex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatal("Execute() error = nil")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want %v", err, tt.wantIs)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestSchemaCommand(t *testing.T) {
	dir := setupDataDir(t)

	got, err := runCLI(t, "schema", "--data-dir", dir, "-f", "csv", "users")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := "column,type\nid,int\nname,text\nage,int\ncountry,text\n"
	if got != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
}

func TestDataDirFromEnvironment(t *testing.T) {
	dir := setupDataDir(t)
	t.Setenv("MINISQL_DATA_DIR", dir)

	got, err := runCLI(t, "query", "SELECT COUNT(*) FROM users")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != "COUNT\n-----\n3\n" {
		t.Errorf("output = %q", got)
	}
}

func TestServeCommand_RequiresTable(t *testing.T) {
	_, err := runCLI(t, "serve", "--data-dir", setupDataDir(t))
	if err == nil || !strings.Contains(err.Error(), "--table is required") {
		t.Errorf("Execute() error = %v", err)
	}
}
