package condition

import "strings"

// Lexer tokenizes a condition expression
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
}

// NewLexer creates a new lexer instance
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NUL represents EOF
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken scans and returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Position: l.position}

	switch l.ch {
	case '\'', '"':
		lit, ok := l.readString(l.ch)
		if !ok {
			tok.Type = ILLEGAL
			tok.Literal = "unterminated string"
			return tok
		}
		tok.Type = STRING
		tok.Literal = lit
	case ',':
		tok.Type, tok.Literal = COMMA, ","
	case '(':
		tok.Type, tok.Literal = LPAREN, "("
	case ')':
		tok.Type, tok.Literal = RPAREN, ")"
	case '[':
		tok.Type, tok.Literal = LBRACKET, "["
	case ']':
		tok.Type, tok.Literal = RBRACKET, "]"
	case '=':
		tok = l.twoChar(tok, '=', EQ, ILLEGAL)
	case '!':
		tok = l.twoChar(tok, '=', NE, ILLEGAL)
	case '<':
		tok = l.twoChar(tok, '=', LTE, LT)
	case '>':
		tok = l.twoChar(tok, '=', GTE, GT)
	case '&':
		tok = l.twoChar(tok, '&', AND, ILLEGAL)
	case '|':
		tok = l.twoChar(tok, '|', OR, ILLEGAL)
	case 0:
		tok.Type = EOF
		return tok
	default:
		if l.ch == '$' && isLetter(l.peekChar()) {
			l.readChar()
			tok.Type = IDENT
			tok.Literal = l.readIdentifier()
			return tok
		}
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		}
		if isDigit(l.ch) || (l.ch == '-' && (isDigit(l.peekChar()) || l.peekChar() == '.')) || (l.ch == '.' && isDigit(l.peekChar())) {
			tok.Type = NUMBER
			tok.Literal = l.readNumber()
			return tok
		}
		tok.Type = ILLEGAL
		tok.Literal = string(l.ch)
	}

	l.readChar()
	return tok
}

// twoChar scans an operator that is either one or two characters long
func (l *Lexer) twoChar(tok Token, second byte, double, single TokenType) Token {
	first := l.ch
	if l.peekChar() == second {
		l.readChar()
		tok.Type = double
		tok.Literal = string(first) + string(second)
		return tok
	}
	tok.Type = single
	tok.Literal = string(first)
	return tok
}

// readString reads a quoted string literal, honouring backslash escapes of
// the quote character and of the backslash itself
func (l *Lexer) readString(quote byte) (string, bool) {
	var sb strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return "", false
		case quote:
			return sb.String(), true
		case '\\':
			next := l.peekChar()
			if next == quote || next == '\\' {
				l.readChar()
			}
		}
		sb.WriteByte(l.ch)
	}
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '-' || l.ch == '.' {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a number (integer or float, optionally negative)
func (l *Lexer) readNumber() string {
	position := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[position:l.position]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// AllTokens returns all tokens from the input (useful for testing)
func (l *Lexer) AllTokens() []Token {
	var tokens []Token

	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF || tok.Type == ILLEGAL {
			break
		}
	}

	return tokens
}
