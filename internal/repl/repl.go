// Package repl runs the interactive query loop over one loaded table.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peterh/liner"

	"github.com/vegasq/minisql/internal/metrics"
	"github.com/vegasq/minisql/internal/output"
	"github.com/vegasq/minisql/internal/query"
	"github.com/vegasq/minisql/internal/reader"
)

const (
	banner      = "Mini SQL Engine"
	exitHint    = "Type 'exit' or 'quit' to stop."
	rule        = "----------------------------------"
	tablePrompt = "Enter CSV filename (without .csv): "
	prompt      = "sql> "
	farewell    = "Exiting SQL engine..."
	// errorPrefix starts every line that reports a failed query.
	errorPrefix = "ERROR: "
)

const helpText = `Enter a query such as:
  SELECT * FROM <table>
  SELECT col1, col2 FROM <table> WHERE col = 'text'
  SELECT COUNT(*) FROM <table> WHERE col >= 10
Commands:
  .schema   show the columns of the loaded table
  .help     show this message
  exit      leave (also quit)`

// LineReader reads one line of input after showing a prompt.
// *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

// historyAppender is implemented by readers that keep history
type historyAppender interface {
	AppendHistory(item string)
}

// Loader reads the table with the given name
type Loader func(name string) (*reader.Table, error)

// Options configures a Session
type Options struct {
	Input     LineReader
	Output    io.Writer
	Load      Loader
	Parse     query.ParseFunc
	Formatter output.Formatter
	Logger    *slog.Logger
}

// Session is one interactive run against a single table
type Session struct {
	in        LineReader
	out       io.Writer
	load      Loader
	parse     query.ParseFunc
	formatter output.Formatter
	logger    *slog.Logger
	table     *reader.Table
}

// New creates a session. Parse defaults to query.Parse and Formatter to
// the text format.
func New(opts Options) *Session {
	s := &Session{
		in:        opts.Input,
		out:       opts.Output,
		load:      opts.Load,
		parse:     opts.Parse,
		formatter: opts.Formatter,
		logger:    opts.Logger,
	}
	if s.parse == nil {
		s.parse = query.Parse
	}
	if s.formatter == nil {
		s.formatter = output.NewTextFormatter(s.out)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Run prints the banner, loads the table and reads queries until exit,
// end of input or ctx is done. When tableName is empty the user is asked
// for it. A table that fails to load ends the session after printing
// the error.
func (s *Session) Run(ctx context.Context, tableName string) error {
	s.println(banner)
	s.println(exitHint)
	s.println(rule)

	if tableName == "" {
		line, err := s.in.Prompt(tablePrompt)
		if err != nil {
			if isEndOfInput(err) {
				return nil
			}
			return err
		}
		tableName = strings.TrimSpace(line)
	}

	table, err := s.load(tableName)
	if err != nil {
		s.logger.Warn("table load failed", "table", tableName, "error", err)
		s.println(errorPrefix + err.Error())
		return nil
	}
	s.table = table
	s.logger.Info("table loaded", "table", table.Name, "source", table.Source, "rows", table.Len())
	s.println(fmt.Sprintf("Loaded table '%s' with %d rows.", tableName, table.Len()))

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := s.in.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			if isEndOfInput(err) {
				s.println("")
				return nil
			}
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if h, ok := s.in.(historyAppender); ok {
			h.AppendHistory(input)
		}

		switch strings.ToLower(input) {
		case "exit", "quit":
			s.println(farewell)
			return nil
		}

		if strings.HasPrefix(input, ".") {
			s.command(input)
			continue
		}

		s.Exec(input)
	}
}

// Exec parses and runs one query against the loaded table, printing the
// result or an ERROR line
func (s *Session) Exec(input string) {
	id := uuid.NewString()
	start := time.Now()

	var rows []*query.Record
	q, err := s.parse(input)
	if err == nil {
		rows, err = s.table.Execute(q)
	}
	elapsed := time.Since(start)
	metrics.ObserveQuery(err, elapsed, len(rows))

	if err != nil {
		if query.IsUserError(err) {
			s.logger.Debug("query rejected", "query_id", id, "query", input, "error", err)
		} else {
			s.logger.Error("query failed", "query_id", id, "query", input, "error", err)
		}
		s.println(errorPrefix + err.Error())
		return
	}
	s.logger.Debug("query executed", "query_id", id, "query", q.String(), "rows", len(rows), "elapsed", elapsed)

	if err := s.formatter.Format(rows); err != nil {
		s.println(errorPrefix + err.Error())
	}
}

func (s *Session) command(input string) {
	switch strings.ToLower(input) {
	case ".schema":
		for _, col := range s.table.Schema() {
			s.println(fmt.Sprintf("%s %s", col.Name, col.Type))
		}
	case ".help":
		s.println(helpText)
	default:
		s.println(fmt.Sprintf("%sunknown command '%s' (try .help)", errorPrefix, input))
	}
}

func (s *Session) println(line string) {
	_, _ = fmt.Fprintln(s.out, line)
}

func isEndOfInput(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted)
}
