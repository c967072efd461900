package query

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Parse, ParseTokens and Execute
// unwraps to exactly one of these, so callers classify with errors.Is.
var (
	// ErrEmptyQuery is returned when the query is blank
	ErrEmptyQuery = errors.New("empty query")

	// ErrSyntax is returned when the query does not match the grammar
	ErrSyntax = errors.New("syntax error")

	// ErrUnknownTable is returned when the FROM table is not the loaded table
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownColumn is returned when a WHERE, SELECT or COUNT column does not exist
	ErrUnknownColumn = errors.New("unknown column")

	// ErrUnsupportedAggregation is returned for aggregate functions other than COUNT
	ErrUnsupportedAggregation = errors.New("unsupported aggregation")

	// ErrTypeMismatch is returned when ordering an int against a string
	ErrTypeMismatch = errors.New("type mismatch")
)

// ParseError is returned by the parsers. Err is the error kind, Reason
// the human-readable detail. Limit is set when an input limit such as
// ErrQueryTooLong was exceeded.
type ParseError struct {
	Err    error
	Reason string
	Limit  error
}

func (e *ParseError) Error() string {
	if e.Reason == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Reason
}

func (e *ParseError) Unwrap() []error {
	if e.Limit != nil {
		return []error{e.Err, e.Limit}
	}
	return []error{e.Err}
}

// ExecutionError is returned by Execute. Err is the error kind, Reason
// the human-readable detail.
type ExecutionError struct {
	Err    error
	Reason string
}

func (e *ExecutionError) Error() string {
	if e.Reason == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Reason
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func syntaxError(format string, args ...interface{}) error {
	return &ParseError{Err: ErrSyntax, Reason: fmt.Sprintf(format, args...)}
}

func newExecutionError(kind error, format string, args ...interface{}) error {
	return &ExecutionError{Err: kind, Reason: fmt.Sprintf(format, args...)}
}
