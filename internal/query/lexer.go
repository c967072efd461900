package query

import (
	"strings"
)

// Lexer tokenizes SQL query strings
type Lexer struct {
	input string
	pos   int
	ch    byte
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.pos]
	}
	l.pos++
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

// skipWhitespace skips whitespace characters
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readQuoted reads the text between two quote characters verbatim.
// ok is false when the input ends before the closing quote.
func (l *Lexer) readQuoted(quote byte) (text string, ok bool) {
	start := l.pos
	l.readChar() // skip opening quote

	for l.ch != quote {
		if l.ch == 0 && l.pos > len(l.input) {
			return l.input[start:], false
		}
		l.readChar()
	}

	text = l.input[start : l.pos-1]
	l.readChar() // skip closing quote
	return text, true
}

// readWord reads an identifier, keyword, number or bare value
func (l *Lexer) readWord() string {
	start := l.pos - 1
	for isWordChar(l.ch) {
		l.readChar()
	}
	return l.input[start : l.pos-1]
}

// isWordChar reports whether ch can be part of a bare word. Bytes of
// multi-byte UTF-8 sequences are accepted so non-ASCII names lex whole.
func isWordChar(ch byte) bool {
	return ch >= 'a' && ch <= 'z' ||
		ch >= 'A' && ch <= 'Z' ||
		ch >= '0' && ch <= '9' ||
		ch == '_' || ch == '.' || ch == '/' || ch == '-' || ch == '$' ||
		ch >= 0x80
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	var tok Token

	switch l.ch {
	case 0:
		if l.pos > len(l.input) {
			tok = Token{Type: TokenEOF, Value: ""}
		} else {
			tok = Token{Type: TokenError, Value: "\x00"}
			l.readChar()
		}
	case '=':
		tok = Token{Type: TokenEqual, Value: "="}
		l.readChar()
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: TokenNotEqual, Value: "!="}
			l.readChar()
		} else {
			tok = Token{Type: TokenError, Value: "!"}
			l.readChar()
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: TokenLessEqual, Value: "<="}
			l.readChar()
		} else {
			tok = Token{Type: TokenLess, Value: "<"}
			l.readChar()
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: TokenGreaterEqual, Value: ">="}
			l.readChar()
		} else {
			tok = Token{Type: TokenGreater, Value: ">"}
			l.readChar()
		}
	case '\'':
		text, ok := l.readQuoted('\'')
		if !ok {
			tok = Token{Type: TokenError, Value: "'" + text}
		} else {
			tok = Token{Type: TokenString, Value: text}
		}
	case '"':
		// Double quotes delimit identifiers, e.g. "first name"
		text, ok := l.readQuoted('"')
		if !ok {
			tok = Token{Type: TokenError, Value: `"` + text}
		} else {
			tok = Token{Type: TokenIdent, Value: text}
		}
	case '*':
		tok = Token{Type: TokenStar, Value: "*"}
		l.readChar()
	case ',':
		tok = Token{Type: TokenComma, Value: ","}
		l.readChar()
	case '(':
		tok = Token{Type: TokenLParen, Value: "("}
		l.readChar()
	case ')':
		tok = Token{Type: TokenRParen, Value: ")"}
		l.readChar()
	case ';':
		tok = Token{Type: TokenSemicolon, Value: ";"}
		l.readChar()
	default:
		if isWordChar(l.ch) {
			value := l.readWord()
			tok = Token{Type: wordType(value), Value: value}
		} else {
			tok = Token{Type: TokenError, Value: string(l.ch)}
			l.readChar()
		}
	}

	return tok
}

var keywords = map[string]TokenType{
	"SELECT": TokenSelect,
	"FROM":   TokenFrom,
	"WHERE":  TokenWhere,
}

// wordType classifies a bare word as a keyword, number or identifier.
// Keywords match case-insensitively.
func wordType(word string) TokenType {
	if tokType, ok := keywords[strings.ToUpper(word)]; ok {
		return tokType
	}
	if isDigits(word) {
		return TokenNumber
	}
	return TokenIdent
}

// Tokenize returns all tokens from the input, ending with TokenEOF or
// the first TokenError
func Tokenize(input string) []Token {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok := lexer.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}

	return tokens
}
