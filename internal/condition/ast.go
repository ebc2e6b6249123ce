package condition

import (
	"strconv"
	"strings"
)

// Expr is a node of a parsed condition
type Expr interface {
	String() string
	exprNode()
}

// LiteralKind tells which field of a Literal is set
type LiteralKind int

const (
	StringLiteral LiteralKind = iota
	NumberLiteral
	BoolLiteral
)

func (k LiteralKind) String() string {
	switch k {
	case StringLiteral:
		return "string"
	case NumberLiteral:
		return "number"
	case BoolLiteral:
		return "boolean"
	default:
		return "unknown"
	}
}

// Literal is a constant on the right-hand side of a predicate
type Literal struct {
	Kind LiteralKind
	Str  string
	Num  float64
	Bool bool
}

func (l Literal) String() string {
	switch l.Kind {
	case NumberLiteral:
		return strconv.FormatFloat(l.Num, 'g', -1, 64)
	case BoolLiteral:
		return strconv.FormatBool(l.Bool)
	default:
		return "'" + strings.ReplaceAll(l.Str, "'", `\'`) + "'"
	}
}

// Comparison is `name OP literal`
type Comparison struct {
	Name  string
	Op    TokenType
	Value Literal
}

func (c *Comparison) exprNode() {}

func (c *Comparison) String() string {
	return c.Name + " " + c.Op.String() + " " + c.Value.String()
}

// Membership is `name in [literal, ...]`
type Membership struct {
	Name   string
	Values []Literal
}

func (m *Membership) exprNode() {}

func (m *Membership) String() string {
	parts := make([]string, len(m.Values))
	for i, v := range m.Values {
		parts[i] = v.String()
	}
	return m.Name + " in [" + strings.Join(parts, ", ") + "]"
}

// Contains is `name contains literal`
type Contains struct {
	Name  string
	Value Literal
}

func (c *Contains) exprNode() {}

func (c *Contains) String() string {
	return c.Name + " contains " + c.Value.String()
}

// Logical is `left && right` or `left || right`
type Logical struct {
	Op    TokenType // AND or OR
	Left  Expr
	Right Expr
}

func (l *Logical) exprNode() {}

func (l *Logical) String() string {
	return "(" + l.Left.String() + " " + l.Op.String() + " " + l.Right.String() + ")"
}

// References returns the parameter names an expression reads, in first-seen order
func References(e Expr) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(Expr)
	walk = func(e Expr) {
		var name string
		switch n := e.(type) {
		case *Comparison:
			name = n.Name
		case *Membership:
			name = n.Name
		case *Contains:
			name = n.Name
		case *Logical:
			walk(n.Left)
			walk(n.Right)
			return
		}
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	walk(e)
	return names
}
