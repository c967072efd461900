// Package output renders query results.
//
// All formatters consume []*query.Record and take the column order from
// the first record, so a projection prints in the order it was written.
//
// # Supported Formats
//
//   - text: columns joined by " | " under a dashed rule (the default)
//   - table: an aligned grid drawn by tablewriter
//   - csv: comma-separated values with a header row
//   - json, jsonl: one JSON object per line
//
// # Basic Usage
//
//	formatter, err := output.NewFormatter("csv", os.Stdout)
//	if err != nil {
//	    return err
//	}
//	if err := formatter.Format(rows); err != nil {
//	    return err
//	}
//
// # Null Handling
//
// text and table print absent values as NULL, csv writes an empty field
// and json writes null.
package output
