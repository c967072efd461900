package query

import (
	"errors"
)

// compare compares two values using the given operator.
//
// = and != compare kind and content, so an Int never equals a Text.
// Ordering operators need both sides to be the same non-null kind.
func compare(left Value, operator Operator, right Value) (bool, error) {
	switch operator {
	case OpEqual:
		return left.Equal(right), nil
	case OpNotEqual:
		return !left.Equal(right), nil
	}

	cmp, err := left.Compare(right)
	if err != nil {
		return false, &ExecutionError{
			Err:    ErrTypeMismatch,
			Reason: "cannot compare " + left.Quote() + " " + string(operator) + " " + right.Quote(),
		}
	}

	switch operator {
	case OpLess:
		return cmp < 0, nil
	case OpGreater:
		return cmp > 0, nil
	case OpLessEqual:
		return cmp <= 0, nil
	case OpGreaterEqual:
		return cmp >= 0, nil
	default:
		return false, &ExecutionError{Err: ErrSyntax, Reason: "unsupported operator '" + string(operator) + "'"}
	}
}

// ApplyFilter returns the rows matching cond, in their original order.
// A nil condition returns rows unchanged. The first row that cannot be
// evaluated aborts the whole filter.
func ApplyFilter(rows []*Record, cond *Condition) ([]*Record, error) {
	if cond == nil {
		return rows, nil
	}

	filtered := make([]*Record, 0)
	for _, row := range rows {
		match, err := cond.Evaluate(row)
		if err != nil {
			return nil, err
		}
		if match {
			filtered = append(filtered, row)
		}
	}

	return filtered, nil
}

// GetColumnNames returns all unique column names from rows, in the order
// they are first seen
func GetColumnNames(rows []*Record) []string {
	if len(rows) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	columns := make([]string, 0)

	for _, row := range rows {
		for _, col := range row.Columns() {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}

	return columns
}

// IsUserError reports whether err is one of the query error kinds, as
// opposed to an I/O or internal failure
func IsUserError(err error) bool {
	var pe *ParseError
	var ee *ExecutionError
	return errors.As(err, &pe) || errors.As(err, &ee)
}
