// Package query provides parsing and execution of a small SELECT dialect
// over a single in-memory table.
//
// The dialect accepts one table, an optional single WHERE comparison and
// either a column list, * or COUNT(*)/COUNT(column):
//
//	SELECT name FROM users WHERE country = 'USA';
//	SELECT COUNT(*) FROM users WHERE id > 1
//
// Example usage:
//
//	q, err := Parse("SELECT * FROM users WHERE id > 1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rows, err := Execute(q, "users", table)
package query

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Keywords
	TokenSelect TokenType = iota
	TokenFrom
	TokenWhere

	// Operators
	TokenEqual        // =
	TokenNotEqual     // !=
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=

	// Punctuation
	TokenStar      // *
	TokenComma     // ,
	TokenLParen    // (
	TokenRParen    // )
	TokenSemicolon // ;

	// Literals
	TokenString
	TokenNumber
	TokenIdent

	// Special
	TokenEOF
	TokenError
)

var tokenNames = map[TokenType]string{
	TokenSelect:       "SELECT",
	TokenFrom:         "FROM",
	TokenWhere:        "WHERE",
	TokenEqual:        "=",
	TokenNotEqual:     "!=",
	TokenLess:         "<",
	TokenGreater:      ">",
	TokenLessEqual:    "<=",
	TokenGreaterEqual: ">=",
	TokenStar:         "*",
	TokenComma:        ",",
	TokenLParen:       "(",
	TokenRParen:       ")",
	TokenSemicolon:    ";",
	TokenString:       "string",
	TokenNumber:       "number",
	TokenIdent:        "identifier",
	TokenEOF:          "end of query",
	TokenError:        "invalid character",
}

// String returns a readable name for the token type
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
}

// Operator is a WHERE comparison operator
type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpLess         Operator = "<"
	OpGreater      Operator = ">"
	OpLessEqual    Operator = "<="
	OpGreaterEqual Operator = ">="
)

// Operators lists the operators in the order the textual parser searches
// for them. Two-character operators come before their one-character
// prefixes so "age >= 30" is never split as "age >" and "= 30".
var Operators = []Operator{OpLessEqual, OpGreaterEqual, OpNotEqual, OpEqual, OpGreater, OpLess}

var tokenOperators = map[TokenType]Operator{
	TokenEqual:        OpEqual,
	TokenNotEqual:     OpNotEqual,
	TokenLess:         OpLess,
	TokenGreater:      OpGreater,
	TokenLessEqual:    OpLessEqual,
	TokenGreaterEqual: OpGreaterEqual,
}

// Selection is what a query projects: Wildcard, Columns or *Aggregate.
// The parser picks exactly one, so a query never carries both an
// aggregate and a column list.
type Selection interface {
	isSelection()
	String() string
}

// Wildcard selects every column of every row unchanged
type Wildcard struct{}

// Columns selects the named columns in the given order
type Columns []string

// Aggregate is COUNT(*) or COUNT(column)
type Aggregate struct {
	Function string
	Argument string // "*" or a column name
}

// CountAll is the argument of COUNT(*)
const CountAll = "*"

func (Wildcard) isSelection()   {}
func (Columns) isSelection()    {}
func (*Aggregate) isSelection() {}

func (Wildcard) String() string { return "*" }

func (c Columns) String() string {
	s := ""
	for i, col := range c {
		if i > 0 {
			s += ", "
		}
		s += col
	}
	return s
}

func (a *Aggregate) String() string {
	return a.Function + "(" + a.Argument + ")"
}

// Condition is the single WHERE predicate: column operator literal
type Condition struct {
	Column   string
	Operator Operator
	Value    Value
}

// String renders the condition back as query text
func (c *Condition) String() string {
	return c.Column + " " + string(c.Operator) + " " + c.Value.Quote()
}

// Query represents a parsed SELECT statement
type Query struct {
	Table     string
	Selection Selection
	Condition *Condition // nil when there is no WHERE clause
}

// String renders the query back as query text
func (q *Query) String() string {
	s := "SELECT " + q.Selection.String() + " FROM " + q.Table
	if q.Condition != nil {
		s += " WHERE " + q.Condition.String()
	}
	return s
}

// Evaluate reports whether row satisfies the condition. A row without the
// condition's column is an ErrUnknownColumn; ordering values of different
// kinds is an ErrTypeMismatch.
func (c *Condition) Evaluate(row *Record) (bool, error) {
	value, exists := row.Get(c.Column)
	if !exists {
		return false, newExecutionError(ErrUnknownColumn, "'%s' in WHERE clause", c.Column)
	}

	return compare(value, c.Operator, c.Value)
}
