package query

import (
	"strings"
)

// Parser is a recursive-descent parser over a token stream
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a new parser
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens: tokens,
		pos:    0,
	}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Value: ""}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without advancing
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF, Value: ""}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// atEnd reports whether only an optional ';' remains
func (p *Parser) atEnd() bool {
	t := p.current().Type
	return t == TokenEOF || t == TokenSemicolon && p.peek().Type == TokenEOF
}

// unexpected describes the current token as a syntax error
func (p *Parser) unexpected(context string) error {
	tok := p.current()
	switch tok.Type {
	case TokenError:
		if strings.HasPrefix(tok.Value, "'") || strings.HasPrefix(tok.Value, `"`) {
			return syntaxError("unterminated quoted text %s", tok.Value)
		}
		return syntaxError("unexpected character %q %s", tok.Value, context)
	case TokenEOF:
		return syntaxError("unexpected end of query %s", context)
	default:
		return syntaxError("unexpected %s %q %s", tok.Type, tok.Value, context)
	}
}

// ParseTokens parses a query from its token stream.
//
// It accepts the same statements as Parse, but keywords and operators are
// only recognised as whole tokens, so quoted literals may contain
// operator characters and double-quoted identifiers may contain spaces.
// Any FN(arg) select list parses as an aggregate; Execute rejects
// functions other than COUNT.
func ParseTokens(raw string) (*Query, error) {
	if err := ValidateQuery(raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Err: ErrEmptyQuery}
	}

	tokens := Tokenize(raw)
	if err := ValidateTokens(tokens); err != nil {
		return nil, err
	}

	return NewParser(tokens).parseQuery()
}

// parseQuery parses: SELECT list FROM table [WHERE cond] [;]
func (p *Parser) parseQuery() (*Query, error) {
	if p.current().Type != TokenSelect {
		return nil, syntaxError("must start with SELECT")
	}
	p.advance()

	sel, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}

	if p.current().Type != TokenFrom {
		if p.current().Type == TokenEOF || p.current().Type == TokenSemicolon {
			return nil, syntaxError("missing FROM")
		}
		return nil, p.unexpected("in select list")
	}
	p.advance()

	table := ""
	if p.current().Type != TokenWhere && !p.atEnd() {
		name, err := p.parseName("table name")
		if err != nil {
			return nil, err
		}
		table = name
	}
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}

	q := &Query{Table: table, Selection: sel}

	if p.current().Type == TokenWhere {
		p.advance()
		if p.atEnd() {
			return nil, syntaxError("empty WHERE")
		}
		cond, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		q.Condition = cond
	}

	if !p.atEnd() {
		return nil, p.unexpected("after query")
	}

	return q, nil
}

// parseSelectList parses *, FN(* | column) or column {, column}
func (p *Parser) parseSelectList() (Selection, error) {
	if p.current().Type == TokenStar {
		p.advance()
		return Wildcard{}, nil
	}

	if p.current().Type == TokenIdent && p.peek().Type == TokenLParen {
		fn := strings.ToUpper(p.current().Value)
		p.advance()
		p.advance()

		var arg string
		switch p.current().Type {
		case TokenStar:
			arg = CountAll
			p.advance()
		case TokenIdent, TokenNumber:
			arg = p.current().Value
			if err := ValidateColumnName(arg); err != nil {
				return nil, err
			}
			p.advance()
		default:
			return nil, p.unexpected("in " + fn + "()")
		}

		if p.current().Type != TokenRParen {
			return nil, p.unexpected("in " + fn + "()")
		}
		p.advance()
		return &Aggregate{Function: fn, Argument: arg}, nil
	}

	var columns Columns
	for {
		// Empty entries such as "a,,b" or a trailing comma are dropped
		for p.current().Type == TokenComma {
			p.advance()
		}
		if !isNameToken(p.current().Type) {
			break
		}

		col := p.current().Value
		if err := ValidateColumnName(col); err != nil {
			return nil, err
		}
		columns = append(columns, col)
		p.advance()

		if p.current().Type != TokenComma {
			break
		}
	}

	if len(columns) == 0 {
		if p.current().Type == TokenFrom {
			return nil, syntaxError("no columns specified")
		}
		return nil, p.unexpected("in select list")
	}

	return columns, nil
}

// parseName parses an identifier used as a table name
func (p *Parser) parseName(what string) (string, error) {
	if !isNameToken(p.current().Type) {
		return "", p.unexpected("for " + what)
	}
	name := p.current().Value
	p.advance()
	return name, nil
}

// parseComparison parses: column operator value
func (p *Parser) parseComparison() (*Condition, error) {
	if !isNameToken(p.current().Type) {
		return nil, p.unexpected("for WHERE column")
	}
	column := p.current().Value
	if err := ValidateColumnName(column); err != nil {
		return nil, err
	}
	p.advance()

	op, ok := tokenOperators[p.current().Type]
	if !ok {
		return nil, syntaxError("unsupported or missing operator")
	}
	p.advance()

	var value Value
	switch p.current().Type {
	case TokenString:
		value = Text(p.current().Value)
	case TokenNumber:
		value = InferValue(p.current().Value)
	case TokenIdent:
		// Unquoted words are kept as raw text, as Parse does
		value = Text(p.current().Value)
	default:
		return nil, p.unexpected("for WHERE value")
	}
	p.advance()

	return &Condition{
		Column:   column,
		Operator: op,
		Value:    value,
	}, nil
}

// isNameToken reports whether a token can name a column or table
func isNameToken(t TokenType) bool {
	return t == TokenIdent || t == TokenNumber
}
