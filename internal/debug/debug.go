// Package debug prints the tokens, syntax tree and evaluation of condition
// expressions.
package debug

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phillarmonic/paramflow/internal/condition"
)

// TokenDebugInfo represents a token with additional debug information
type TokenDebugInfo struct {
	Type     string `json:"type"`
	Literal  string `json:"literal"`
	Position int    `json:"position"`
}

// Tokens lexes input into debug records, ending with EOF or ILLEGAL
func Tokens(input string) []TokenDebugInfo {
	var out []TokenDebugInfo
	for _, tok := range condition.NewLexer(input).AllTokens() {
		out = append(out, TokenDebugInfo{
			Type:     tok.Type.String(),
			Literal:  tok.Literal,
			Position: tok.Position,
		})
	}
	return out
}

// DebugTokens prints all tokens of input
func DebugTokens(w io.Writer, input string) {
	fmt.Fprintln(w, "=== LEXER DEBUG ===")
	fmt.Fprintf(w, "Input: %q\n", input)
	fmt.Fprintln(w, "Tokens:")

	for i, tok := range Tokens(input) {
		literal := tok.Literal
		if literal == "" {
			literal = "(empty)"
		}
		fmt.Fprintf(w, "  %d: %-10s %-12q @%d\n", i, tok.Type, literal, tok.Position)
	}
	fmt.Fprintln(w)
}

// DebugAST prints the syntax tree, one node per line
func DebugAST(w io.Writer, expr condition.Expr) {
	fmt.Fprintln(w, "=== AST DEBUG ===")
	if expr == nil {
		fmt.Fprintln(w, "Expression is nil")
		return
	}
	printNode(w, expr, 0)
	fmt.Fprintf(w, "References: %s\n", strings.Join(condition.References(expr), ", "))
	fmt.Fprintln(w)
}

func printNode(w io.Writer, expr condition.Expr, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := expr.(type) {
	case *condition.Logical:
		fmt.Fprintf(w, "%sLogical %s\n", indent, n.Op)
		printNode(w, n.Left, depth+1)
		printNode(w, n.Right, depth+1)
	case *condition.Comparison:
		fmt.Fprintf(w, "%sComparison %s %s %s (%s)\n", indent, n.Name, n.Op, n.Value, n.Value.Kind)
	case *condition.Membership:
		items := make([]string, len(n.Values))
		for i, v := range n.Values {
			items[i] = v.String()
		}
		fmt.Fprintf(w, "%sMembership %s in [%s]\n", indent, n.Name, strings.Join(items, ", "))
	case *condition.Contains:
		fmt.Fprintf(w, "%sContains %s contains %s\n", indent, n.Name, n.Value)
	default:
		fmt.Fprintf(w, "%s%T %s\n", indent, expr, expr)
	}
}

// Tree converts the syntax tree into plain maps for JSON output
func Tree(expr condition.Expr) any {
	switch n := expr.(type) {
	case *condition.Logical:
		return map[string]any{
			"type":  "logical",
			"op":    n.Op.String(),
			"left":  Tree(n.Left),
			"right": Tree(n.Right),
		}
	case *condition.Comparison:
		return map[string]any{
			"type":  "comparison",
			"name":  n.Name,
			"op":    n.Op.String(),
			"value": literal(n.Value),
		}
	case *condition.Membership:
		values := make([]any, len(n.Values))
		for i, v := range n.Values {
			values[i] = literal(v)
		}
		return map[string]any{
			"type":   "membership",
			"name":   n.Name,
			"values": values,
		}
	case *condition.Contains:
		return map[string]any{
			"type":  "contains",
			"name":  n.Name,
			"value": literal(n.Value),
		}
	default:
		return nil
	}
}

func literal(l condition.Literal) any {
	switch l.Kind {
	case condition.NumberLiteral:
		return l.Num
	case condition.BoolLiteral:
		return l.Bool
	default:
		return l.Str
	}
}

// DebugJSON prints the syntax tree as indented JSON
func DebugJSON(w io.Writer, expr condition.Expr) error {
	fmt.Fprintln(w, "=== AST JSON ===")
	data, err := json.MarshalIndent(Tree(expr), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode AST: %w", err)
	}
	fmt.Fprintln(w, string(data))
	fmt.Fprintln(w)
	return nil
}

// DebugParseError prints a parse error with a caret under its position
func DebugParseError(w io.Writer, err error) {
	fmt.Fprintln(w, "=== PARSE ERROR ===")
	var parseErr *condition.ParseError
	if errors.As(err, &parseErr) {
		fmt.Fprintln(w, parseErr.Pointer())
		fmt.Fprintf(w, "%s\n\n", parseErr.Message)
		return
	}
	fmt.Fprintf(w, "%v\n\n", err)
}

// DebugEval evaluates expr against scope and prints the outcome
func DebugEval(w io.Writer, expr condition.Expr, scope condition.Scope) {
	fmt.Fprintln(w, "=== EVALUATION ===")
	outcome, err := condition.Evaluate(expr, scope)
	if err != nil {
		fmt.Fprintf(w, "error: %v\n\n", err)
		return
	}
	fmt.Fprintf(w, "%s => %s\n\n", expr, outcome)
}

// DebugFull prints tokens, then the tree and its JSON form, or the parse
// error. It returns the parsed expression when parsing succeeded.
func DebugFull(w io.Writer, input string) (condition.Expr, error) {
	DebugTokens(w, input)

	expr, err := condition.Parse(input)
	if err != nil {
		DebugParseError(w, err)
		return nil, err
	}

	DebugAST(w, expr)
	if err := DebugJSON(w, expr); err != nil {
		return expr, err
	}
	return expr, nil
}
