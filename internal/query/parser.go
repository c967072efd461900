package query

import (
	"fmt"
	"strings"
)

const (
	selectPrefix = "SELECT "
	fromKeyword  = " FROM "
	whereKeyword = " WHERE "
	countPrefix  = "COUNT("

	// CountFunction is the only supported aggregate
	CountFunction = "COUNT"
)

// Parse parses a query by splitting the text on its keywords.
//
// The split is textual: the first " FROM " after SELECT and the first
// " WHERE " after that win, and the WHERE operator is the first of
// Operators found anywhere in the condition text. A table or column name
// containing " FROM " or " WHERE ", or a quoted literal containing an
// operator, can therefore mis-split. ParseTokens does not have that
// limitation.
func Parse(raw string) (*Query, error) {
	if err := ValidateQuery(raw); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, &ParseError{Err: ErrEmptyQuery}
	}
	text = strings.TrimSuffix(text, ";")

	// Keyword search runs on an ASCII upper-cased copy so byte offsets
	// line up with the original text.
	upper := asciiUpper(text)

	if !strings.HasPrefix(upper, selectPrefix) {
		return nil, syntaxError("must start with SELECT")
	}

	fromIdx := strings.Index(upper, fromKeyword)
	if fromIdx == -1 {
		return nil, syntaxError("missing FROM")
	}

	selectText := ""
	if fromIdx >= len(selectPrefix) {
		selectText = strings.TrimSpace(text[len(selectPrefix):fromIdx])
	}

	rest := text[fromIdx+len(fromKeyword):]
	restUpper := upper[fromIdx+len(fromKeyword):]

	q := &Query{}

	whereIdx := strings.Index(restUpper, whereKeyword)
	if whereIdx == -1 {
		q.Table = strings.TrimSpace(rest)
	} else {
		q.Table = strings.TrimSpace(rest[:whereIdx])
		condText := strings.TrimSpace(rest[whereIdx+len(whereKeyword):])
		if condText == "" {
			return nil, syntaxError("empty WHERE")
		}
		cond, err := parseCondition(condText)
		if err != nil {
			return nil, err
		}
		q.Condition = cond
	}

	if err := ValidateTableName(q.Table); err != nil {
		return nil, err
	}

	sel, err := parseSelectList(selectText)
	if err != nil {
		return nil, err
	}
	q.Selection = sel

	return q, nil
}

// parseCondition splits "column op value" on the first operator found,
// trying two-character operators before their one-character prefixes.
func parseCondition(text string) (*Condition, error) {
	for _, op := range Operators {
		idx := strings.Index(text, string(op))
		if idx == -1 {
			continue
		}

		column := strings.TrimSpace(text[:idx])
		if err := ValidateColumnName(column); err != nil {
			return nil, err
		}

		return &Condition{
			Column:   column,
			Operator: op,
			Value:    ParseValue(text[idx+len(op):]),
		}, nil
	}

	return nil, syntaxError("unsupported or missing operator")
}

// ParseValue converts literal text from a WHERE clause into a Value:
// 'quoted' text becomes Text without the quotes, digits become Int and
// anything else is kept as raw Text.
func ParseValue(text string) Value {
	text = strings.TrimSpace(text)

	if len(text) >= 2 && text[0] == '\'' && text[len(text)-1] == '\'' {
		return Text(text[1 : len(text)-1])
	}

	return InferValue(text)
}

// parseSelectList parses *, COUNT(...) or a comma separated column list
func parseSelectList(text string) (Selection, error) {
	upper := asciiUpper(text)

	if strings.HasPrefix(upper, countPrefix) && strings.HasSuffix(upper, ")") {
		arg := strings.TrimSpace(text[len(countPrefix) : len(text)-1])
		if err := ValidateColumnName(arg); err != nil {
			return nil, err
		}
		return &Aggregate{Function: CountFunction, Argument: arg}, nil
	}

	if text == "*" {
		return Wildcard{}, nil
	}

	var columns Columns
	for _, piece := range strings.Split(text, ",") {
		col := strings.TrimSpace(piece)
		if col == "" {
			continue
		}
		if err := ValidateColumnName(col); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	if len(columns) == 0 {
		return nil, syntaxError("no columns specified")
	}

	return columns, nil
}

// asciiUpper upper-cases ASCII letters only, keeping the byte length of s
func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// ParseFunc parses raw query text
type ParseFunc func(raw string) (*Query, error)

// Parser modes accepted by ParserFor
const (
	ModeTextual = "textual"
	ModeTokens  = "tokens"
)

// ParserFor returns the parser for a mode name. An empty mode selects
// the textual parser.
func ParserFor(mode string) (ParseFunc, error) {
	switch strings.ToLower(mode) {
	case "", ModeTextual:
		return Parse, nil
	case ModeTokens:
		return ParseTokens, nil
	default:
		return nil, fmt.Errorf("unknown parser mode %q (want %s or %s)", mode, ModeTextual, ModeTokens)
	}
}
