package query

import (
	"errors"
	"fmt"
)

// Input limits applied by both parsers
const (
	// MaxQueryLength is the maximum allowed query string length (64KB)
	MaxQueryLength = 64 * 1024

	// MaxTokens is the maximum number of tokens in a query
	MaxTokens = 1000

	// MaxColumnNameLength is the maximum length for a column name
	MaxColumnNameLength = 256

	// MaxTableNameLength is the maximum length for a table name
	MaxTableNameLength = 256
)

var (
	// ErrQueryTooLong is returned when query exceeds MaxQueryLength
	ErrQueryTooLong = errors.New("query too long")

	// ErrTooManyTokens is returned when query has too many tokens
	ErrTooManyTokens = errors.New("too many tokens in query")

	// ErrColumnNameTooLong is returned when column name is too long
	ErrColumnNameTooLong = errors.New("column name too long")

	// ErrTableNameTooLong is returned when table name is too long
	ErrTableNameTooLong = errors.New("table name too long")
)

// ValidateQuery checks the raw query length
func ValidateQuery(query string) error {
	if len(query) > MaxQueryLength {
		return limitError(ErrQueryTooLong, "%d bytes (max %d)", len(query), MaxQueryLength)
	}
	return nil
}

// ValidateTableName validates table name length. An empty name is left to
// Execute, where it never matches the loaded table.
func ValidateTableName(name string) error {
	if len(name) > MaxTableNameLength {
		return limitError(ErrTableNameTooLong, "%d chars (max %d)", len(name), MaxTableNameLength)
	}
	return nil
}

// ValidateColumnName validates column name length
func ValidateColumnName(name string) error {
	if len(name) > MaxColumnNameLength {
		return limitError(ErrColumnNameTooLong, "%d chars (max %d)", len(name), MaxColumnNameLength)
	}
	return nil
}

// ValidateTokens validates token count
func ValidateTokens(tokens []Token) error {
	if len(tokens) > MaxTokens {
		return limitError(ErrTooManyTokens, "%d tokens (max %d)", len(tokens), MaxTokens)
	}
	return nil
}

// limitError reports a violated limit as a syntax error that still
// matches the specific limit sentinel with errors.Is.
func limitError(limit error, format string, args ...interface{}) error {
	return &ParseError{
		Err:    ErrSyntax,
		Reason: limit.Error() + ": " + fmt.Sprintf(format, args...),
		Limit:  limit,
	}
}
