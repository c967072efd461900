package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/peterh/liner"

	"github.com/vegasq/minisql/internal/query"
	"github.com/vegasq/minisql/internal/reader"
)

// scriptedInput replays lines, then reports end of input
type scriptedInput struct {
	lines   []interface{} // string or error
	prompts []string
	history []string
}

func (s *scriptedInput) Prompt(p string) (string, error) {
	s.prompts = append(s.prompts, p)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	next := s.lines[0]
	s.lines = s.lines[1:]
	if err, ok := next.(error); ok {
		return "", err
	}
	return next.(string), nil
}

func (s *scriptedInput) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func usersTable() *reader.Table {
	records := []*query.Record{
		query.RecordOf("id", query.Int(1), "name", query.Text("Alice"), "age", query.Int(30), "country", query.Text("USA")),
		query.RecordOf("id", query.Int(2), "name", query.Text("Bob"), "age", query.Int(25), "country", query.Text("UK")),
		query.RecordOf("id", query.Int(3), "name", query.Text("Carol"), "age", query.Int(41), "country", query.Text("USA")),
	}
	return &reader.Table{Name: "users", Columns: records[0].Columns(), Records: records}
}

func loadUsers(name string) (*reader.Table, error) {
	if name != "users" {
		return nil, &reader.NotFoundError{File: name + ".csv", Dir: "data"}
	}
	return usersTable(), nil
}

func runSession(t *testing.T, table string, lines ...interface{}) (string, *scriptedInput) {
	t.Helper()
	in := &scriptedInput{lines: lines}
	var out bytes.Buffer
	s := New(Options{Input: in, Output: &out, Load: loadUsers})
	if err := s.Run(context.Background(), table); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String(), in
}

func TestRun_Session(t *testing.T) {
	out, in := runSession(t, "",
		"users",
		"SELECT name FROM users WHERE country = 'USA'",
		"",
		"DELETE FROM users",
		"EXIT",
		"SELECT * FROM users",
	)

	want := strings.Join([]string{
		"Mini SQL Engine",
		"Type 'exit' or 'quit' to stop.",
		"----------------------------------",
		"Loaded table 'users' with 3 rows.",
		"name",
		"----",
		"Alice",
		"Carol",
		"ERROR: syntax error: must start with SELECT",
		"Exiting SQL engine...",
		"",
	}, "\n")
	if out != want {
		t.Errorf("output =\n%s\nwant\n%s", out, want)
	}

	wantPrompts := []string{tablePrompt, prompt, prompt, prompt, prompt}
	if strings.Join(in.prompts, "|") != strings.Join(wantPrompts, "|") {
		t.Errorf("prompts = %q", in.prompts)
	}
	if len(in.history) != 3 {
		t.Errorf("history = %q, want 3 entries", in.history)
	}
}

func TestRun_TableArgument(t *testing.T) {
	out, in := runSession(t, "users", "SELECT COUNT(*) FROM users WHERE age >= 30", "quit")

	if in.prompts[0] != prompt {
		t.Errorf("first prompt = %q, want %q", in.prompts[0], prompt)
	}
	if !strings.Contains(out, "COUNT\n-----\n2\n") {
		t.Errorf("output = %q", out)
	}
}

func TestRun_LoadFailure(t *testing.T) {
	out, in := runSession(t, "missing", "SELECT * FROM missing")

	if !strings.HasSuffix(out, "ERROR: CSV file 'missing.csv' not found in data folder\n") {
		t.Errorf("output = %q", out)
	}
	if len(in.prompts) != 0 {
		t.Errorf("prompted after load failure: %q", in.prompts)
	}
}

func TestRun_ErrorsDoNotEndLoop(t *testing.T) {
	out, _ := runSession(t, "users",
		"SELECT foo FROM users",
		"SELECT * FROM orders",
		"SELECT name FROM users WHERE name > 5",
		"SELECT COUNT(*) FROM users",
	)

	for _, want := range []string{
		"ERROR: unknown column: 'foo' in SELECT list",
		"ERROR: unknown table: 'orders'",
		"ERROR: type mismatch: cannot compare 'Alice' > 5",
		"COUNT\n-----\n3\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_AbortedLine(t *testing.T) {
	out, _ := runSession(t, "users", liner.ErrPromptAborted, "SELECT COUNT(*) FROM users")

	if !strings.Contains(out, "COUNT\n-----\n3\n") {
		t.Errorf("aborted line ended the session:\n%s", out)
	}
}

func TestRun_ReadError(t *testing.T) {
	in := &scriptedInput{lines: []interface{}{errors.New("tty gone")}}
	s := New(Options{Input: in, Output: io.Discard, Load: loadUsers})

	if err := s.Run(context.Background(), "users"); err == nil {
		t.Error("Run() error = nil, want read error")
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := &scriptedInput{lines: []interface{}{"SELECT * FROM users"}}
	s := New(Options{Input: in, Output: io.Discard, Load: loadUsers})
	if err := s.Run(ctx, "users"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(in.prompts) != 0 {
		t.Errorf("prompted after cancel: %q", in.prompts)
	}
}

func TestRun_Commands(t *testing.T) {
	out, _ := runSession(t, "users", ".schema", ".help", ".tables")

	for _, want := range []string{
		"id int\nname text\nage int\ncountry text\n",
		".schema",
		"ERROR: unknown command '.tables' (try .help)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSession_TokenParser(t *testing.T) {
	in := &scriptedInput{lines: []interface{}{"SELECT SUM(age) FROM users"}}
	var out bytes.Buffer
	s := New(Options{Input: in, Output: &out, Load: loadUsers, Parse: query.ParseTokens})

	if err := s.Run(context.Background(), "users"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "ERROR: unsupported aggregation: 'SUM'") {
		t.Errorf("output = %q", out.String())
	}
}
