// Package condition parses and evaluates the small expression language used
// to make a parameter conditional on the values of others.
//
// Grammar:
//
//	expr       = and { ("||" | "or") and }
//	and        = primary { ("&&" | "and") primary }
//	primary    = "(" expr ")" | predicate
//	predicate  = name ( cmpOp literal | "in" "[" literal { "," literal } "]" | "contains" literal )
//	cmpOp      = "==" | "!=" | "<" | ">" | "<=" | ">="
//	literal    = string | number | "true" | "false"
package condition

import (
	"fmt"
	"strconv"
)

// Parser builds an Expr from a token stream
type Parser struct {
	l         *Lexer
	input     string
	curToken  Token
	peekToken Token
}

// Parse parses a condition expression. The same input always yields the same tree.
func Parse(input string) (Expr, error) {
	p := &Parser{l: NewLexer(input), input: input}
	p.nextToken()
	p.nextToken()

	if p.curToken.Type == EOF {
		return nil, p.errorf(p.curToken, "empty expression")
	}

	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.curToken.Type != EOF {
		return nil, p.errorf(p.curToken, "unexpected %s after complete expression", describe(p.curToken))
	}
	return expr, nil
}

// MustParse is like Parse but panics on error; for tests and static tables
func MustParse(input string) Expr {
	expr, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return expr
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curToken.Type == OR {
		p.nextToken()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: OR, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.curToken.Type == AND {
		p.nextToken()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: AND, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	switch p.curToken.Type {
	case LPAREN:
		open := p.curToken
		p.nextToken()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.curToken.Type != RPAREN {
			return nil, p.errorf(open, "unclosed '('")
		}
		p.nextToken()
		return expr, nil
	case IDENT:
		return p.parsePredicate()
	default:
		return nil, p.errorf(p.curToken, "expected parameter name, got %s", describe(p.curToken))
	}
}

func (p *Parser) parsePredicate() (Expr, error) {
	name := p.curToken.Literal
	p.nextToken()

	switch {
	case p.curToken.Type.isComparison():
		op := p.curToken.Type
		p.nextToken()
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &Comparison{Name: name, Op: op, Value: lit}, nil

	case p.curToken.Type == IN:
		p.nextToken()
		if p.curToken.Type != LBRACKET {
			return nil, p.errorf(p.curToken, "expected '[' after 'in', got %s", describe(p.curToken))
		}
		p.nextToken()
		var values []Literal
		for {
			lit, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			values = append(values, lit)
			if p.curToken.Type == COMMA {
				p.nextToken()
				continue
			}
			if p.curToken.Type == RBRACKET {
				p.nextToken()
				break
			}
			return nil, p.errorf(p.curToken, "expected ',' or ']' in list, got %s", describe(p.curToken))
		}
		return &Membership{Name: name, Values: values}, nil

	case p.curToken.Type == CONTAINS:
		p.nextToken()
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &Contains{Name: name, Value: lit}, nil

	default:
		return nil, p.errorf(p.curToken, "expected operator after '%s', got %s", name, describe(p.curToken))
	}
}

func (p *Parser) parseLiteral() (Literal, error) {
	tok := p.curToken
	var lit Literal
	switch tok.Type {
	case STRING:
		lit = Literal{Kind: StringLiteral, Str: tok.Literal}
	case NUMBER:
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return Literal{}, p.errorf(tok, "invalid number %q", tok.Literal)
		}
		lit = Literal{Kind: NumberLiteral, Num: f}
	case TRUE:
		lit = Literal{Kind: BoolLiteral, Bool: true}
	case FALSE:
		lit = Literal{Kind: BoolLiteral, Bool: false}
	default:
		return Literal{}, p.errorf(tok, "expected literal value, got %s", describe(tok))
	}
	p.nextToken()
	return lit, nil
}

func (p *Parser) errorf(tok Token, format string, args ...any) error {
	return &ParseError{
		Expression: p.input,
		Position:   tok.Position,
		Message:    fmt.Sprintf(format, args...),
	}
}

func describe(tok Token) string {
	switch tok.Type {
	case EOF:
		return "end of expression"
	case ILLEGAL:
		return fmt.Sprintf("invalid input %q", tok.Literal)
	case IDENT:
		return fmt.Sprintf("name '%s'", tok.Literal)
	case STRING:
		return fmt.Sprintf("string '%s'", tok.Literal)
	default:
		return fmt.Sprintf("'%s'", tok.Literal)
	}
}
