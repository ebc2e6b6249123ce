package condition

import (
	"fmt"
	"strings"
)

// ParseError is returned for a malformed condition expression
type ParseError struct {
	Expression string
	Position   int
	Message    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid condition '%s' at position %d: %s", e.Expression, e.Position+1, e.Message)
}

// Pointer renders the expression with a caret under the offending position
func (e *ParseError) Pointer() string {
	pos := e.Position
	if pos > len(e.Expression) {
		pos = len(e.Expression)
	}
	return e.Expression + "\n" + strings.Repeat(" ", pos) + "^"
}

// EvalError is a type mismatch found while evaluating (or type checking) a
// condition. It always points at a schema bug.
type EvalError struct {
	Predicate string
	Message   string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("condition evaluation failed at '%s': %s", e.Predicate, e.Message)
}

func evalErrorf(node Expr, format string, args ...any) error {
	return &EvalError{
		Predicate: node.String(),
		Message:   fmt.Sprintf(format, args...),
	}
}
