package query

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/segmentio/encoding/json"
)

// Kind identifies the type carried by a Value
type Kind int

const (
	// KindNull marks an absent field. It is the zero Kind.
	KindNull Kind = iota
	KindInt
	KindText
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a scalar stored in a record or written as a literal in a query.
//
// The zero Value is Null.
type Value struct {
	kind Kind
	i    int64
	s    string
}

// Null returns the absent value
func Null() Value {
	return Value{}
}

// Int returns an integer value
func Int(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// Text returns a string value
func Text(s string) Value {
	return Value{kind: KindText, s: s}
}

// InferValue applies the digits-only rule: a field whose entire textual
// form is ASCII decimal digits becomes an Int, anything else stays Text.
// Digit strings that overflow int64 stay Text.
func InferValue(s string) Value {
	if !isDigits(s) {
		return Text(s)
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Text(s)
	}
	return Int(i)
}

// isDigits reports whether s is non-empty and made only of '0'-'9'
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Kind returns the value's kind
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is the absent value
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsInt returns the integer and true when v is an Int
func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

// AsText returns the string and true when v is Text
func (v Value) AsText() (string, bool) {
	return v.s, v.kind == KindText
}

// IsEmpty reports whether v is one of the empty sentinels COUNT(column)
// skips: Null, the empty string, or the literal string "NULL".
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return v.s == "" || v.s == "NULL"
	default:
		return false
	}
}

// String returns the textual form of v. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindText:
		return v.s
	default:
		return ""
	}
}

// Equal reports whether v and o hold the same kind and the same content.
// Values of different kinds are never equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindText:
		return v.s == o.s
	default:
		return true
	}
}

// Compare orders v against o, returning -1, 0 or +1. Only values of the
// same non-null kind are ordered; anything else is ErrTypeMismatch.
func (v Value) Compare(o Value) (int, error) {
	if v.kind != o.kind || v.kind == KindNull {
		return 0, fmt.Errorf("%w: cannot order %s against %s", ErrTypeMismatch, v.kind, o.kind)
	}
	switch v.kind {
	case KindInt:
		switch {
		case v.i < o.i:
			return -1, nil
		case v.i > o.i:
			return 1, nil
		}
		return 0, nil
	default:
		switch {
		case v.s < o.s:
			return -1, nil
		case v.s > o.s:
			return 1, nil
		}
		return 0, nil
	}
}

// Quote renders v the way it would be written as a literal in a query
func (v Value) Quote() string {
	switch v.kind {
	case KindText:
		return "'" + v.s + "'"
	case KindNull:
		return "NULL"
	default:
		return v.String()
	}
}

// MarshalJSON encodes Int as a number, Text as a string and Null as null
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindText:
		return json.Marshal(v.s)
	default:
		return []byte("null"), nil
	}
}

// Record is one row: an ordered mapping from column name to Value.
//
// Column order is the order in which columns were first set. Renderers
// use it for the header line.
type Record struct {
	columns []string
	values  map[string]Value
}

// NewRecord creates an empty record with room for n columns
func NewRecord(n int) *Record {
	return &Record{
		columns: make([]string, 0, n),
		values:  make(map[string]Value, n),
	}
}

// RecordOf builds a record from alternating column names and values,
// e.g. RecordOf("id", Int(1), "name", Text("Alice")).
func RecordOf(pairs ...interface{}) *Record {
	r := NewRecord(len(pairs) / 2)
	for i := 0; i+1 < len(pairs); i += 2 {
		col, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("RecordOf: column at position %d is %T, not string", i, pairs[i]))
		}
		val, ok := pairs[i+1].(Value)
		if !ok {
			panic(fmt.Sprintf("RecordOf: value for %q is %T, not Value", col, pairs[i+1]))
		}
		r.Set(col, val)
	}
	return r
}

// Set stores v under col, appending col to the column order if it is new
func (r *Record) Set(col string, v Value) {
	if _, exists := r.values[col]; !exists {
		r.columns = append(r.columns, col)
	}
	r.values[col] = v
}

// Get returns the value stored under col and whether the column exists
func (r *Record) Get(col string) (Value, bool) {
	v, ok := r.values[col]
	return v, ok
}

// Has reports whether col exists in the record
func (r *Record) Has(col string) bool {
	_, ok := r.values[col]
	return ok
}

// Columns returns the column names in order. The slice must not be modified.
func (r *Record) Columns() []string {
	return r.columns
}

// Len returns the number of columns
func (r *Record) Len() int {
	return len(r.columns)
}

// Map returns the record as a plain map, losing column order
func (r *Record) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.columns))
	for _, col := range r.columns {
		v := r.values[col]
		switch v.kind {
		case KindInt:
			m[col] = v.i
		case KindText:
			m[col] = v.s
		default:
			m[col] = nil
		}
	}
	return m
}

// MarshalJSON encodes the record as a JSON object with keys in column order
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[col].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
