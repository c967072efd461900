package query

// Execute runs q against rows, the records of the table named table.
//
// The steps run in order and the first failure aborts the query, so a
// result is either complete or absent:
//
//  1. q.Table must equal table exactly (ErrUnknownTable).
//  2. The WHERE condition, if any, filters rows in order.
//  3. An aggregate yields the single record {"COUNT": n}.
//  4. Otherwise the selection is projected. * returns the filtered
//     records themselves; a column list builds new records.
//
// Execute never modifies rows or the records in it.
func Execute(q *Query, table string, rows []*Record) ([]*Record, error) {
	if q.Table != table {
		return nil, newExecutionError(ErrUnknownTable, "'%s'", q.Table)
	}

	filtered, err := ApplyFilter(rows, q.Condition)
	if err != nil {
		return nil, err
	}

	switch sel := q.Selection.(type) {
	case *Aggregate:
		return aggregate(sel, filtered)
	case Columns:
		return project(sel, filtered)
	case Wildcard, nil:
		out := make([]*Record, len(filtered))
		copy(out, filtered)
		return out, nil
	default:
		return nil, newExecutionError(ErrSyntax, "unsupported selection %T", sel)
	}
}

// aggregate evaluates COUNT(*) or COUNT(column) over rows
func aggregate(agg *Aggregate, rows []*Record) ([]*Record, error) {
	if agg.Function != CountFunction {
		return nil, newExecutionError(ErrUnsupportedAggregation, "'%s'", agg.Function)
	}

	count, err := evaluateCount(agg.Argument, rows)
	if err != nil {
		return nil, err
	}

	result := NewRecord(1)
	result.Set(CountFunction, Int(count))
	return []*Record{result}, nil
}

// evaluateCount counts all rows for *, or the rows whose value for the
// column is not empty
func evaluateCount(arg string, rows []*Record) (int64, error) {
	if arg == CountAll {
		return int64(len(rows)), nil
	}

	var count int64
	for _, row := range rows {
		value, ok := row.Get(arg)
		if !ok {
			return 0, newExecutionError(ErrUnknownColumn, "'%s' in COUNT()", arg)
		}
		if !value.IsEmpty() {
			count++
		}
	}
	return count, nil
}

// project builds a new record per row holding only the requested columns.
// A column missing from any row fails the whole projection.
func project(columns Columns, rows []*Record) ([]*Record, error) {
	result := make([]*Record, 0, len(rows))
	for _, row := range rows {
		out := NewRecord(len(columns))
		for _, col := range columns {
			value, ok := row.Get(col)
			if !ok {
				return nil, newExecutionError(ErrUnknownColumn, "'%s' in SELECT list", col)
			}
			out.Set(col, value)
		}
		result = append(result, out)
	}
	return result, nil
}
