package condition

import (
	"fmt"
	"strings"

	"github.com/phillarmonic/paramflow/internal/types"
)

// Outcome is the three-valued result of evaluating a condition
type Outcome int

const (
	False Outcome = iota
	True
	Undecidable
)

func (o Outcome) String() string {
	switch o {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "undecidable"
	}
}

// Known reports whether the outcome is decided
func (o Outcome) Known() bool {
	return o != Undecidable
}

func outcomeOf(b bool) Outcome {
	if b {
		return True
	}
	return False
}

// State describes what a scope knows about a name
type State int

const (
	// Pending names may still receive a value
	Pending State = iota
	// Absent names are settled without a value
	Absent
	// Present names hold a value
	Present
)

// Scope is what the evaluator reads parameter values from
type Scope interface {
	Lookup(name string) (types.Value, State)
}

// Context is a Scope over a value map. Names that are neither in Values nor
// in Settled are pending.
type Context struct {
	Values  types.Values
	Settled map[string]bool
}

// Lookup implements Scope
func (c Context) Lookup(name string) (types.Value, State) {
	if v, ok := c.Values[name]; ok {
		return v, Present
	}
	if c.Settled[name] {
		return types.Value{}, Absent
	}
	return types.Value{}, Pending
}

// Evaluate evaluates expr against scope. A predicate over a pending name is
// undecidable; over an absent name it is false. && and || follow Kleene
// logic and short-circuit from the left.
func Evaluate(expr Expr, scope Scope) (Outcome, error) {
	switch n := expr.(type) {
	case *Logical:
		return evalLogical(n, scope)
	case *Comparison:
		return evalPredicate(n, n.Name, scope)
	case *Membership:
		return evalPredicate(n, n.Name, scope)
	case *Contains:
		return evalPredicate(n, n.Name, scope)
	default:
		return Undecidable, fmt.Errorf("unsupported condition node %T", expr)
	}
}

func evalLogical(n *Logical, scope Scope) (Outcome, error) {
	left, err := Evaluate(n.Left, scope)
	if err != nil {
		return Undecidable, err
	}

	switch n.Op {
	case AND:
		if left == False {
			return False, nil
		}
		right, err := Evaluate(n.Right, scope)
		if err != nil {
			return Undecidable, err
		}
		if right == False {
			return False, nil
		}
		if left == True && right == True {
			return True, nil
		}
		return Undecidable, nil

	case OR:
		if left == True {
			return True, nil
		}
		right, err := Evaluate(n.Right, scope)
		if err != nil {
			return Undecidable, err
		}
		if right == True {
			return True, nil
		}
		if left == False && right == False {
			return False, nil
		}
		return Undecidable, nil

	default:
		return Undecidable, fmt.Errorf("unsupported logical operator %s", n.Op)
	}
}

func evalPredicate(node Expr, name string, scope Scope) (Outcome, error) {
	value, state := scope.Lookup(name)
	switch state {
	case Pending:
		return Undecidable, nil
	case Absent:
		return False, nil
	}

	if err := checkOperand(node, value.Type); err != nil {
		return Undecidable, err
	}

	switch n := node.(type) {
	case *Comparison:
		return compare(n, value)
	case *Membership:
		return outcomeOf(member(n, value)), nil
	case *Contains:
		if value.Type == types.MultiChoiceType {
			for _, item := range value.AsList() {
				if item == n.Value.Str {
					return True, nil
				}
			}
			return False, nil
		}
		return outcomeOf(strings.Contains(value.AsString(), n.Value.Str)), nil
	}
	return Undecidable, nil
}

func compare(n *Comparison, value types.Value) (Outcome, error) {
	switch value.Type {
	case types.NumberType:
		f, err := value.AsNumber()
		if err != nil {
			return Undecidable, evalErrorf(n, "%v", err)
		}
		return outcomeOf(ordered(n.Op, f, n.Value.Num)), nil

	case types.BooleanType:
		b, err := value.AsBoolean()
		if err != nil {
			return Undecidable, evalErrorf(n, "%v", err)
		}
		if n.Op == EQ {
			return outcomeOf(b == n.Value.Bool), nil
		}
		return outcomeOf(b != n.Value.Bool), nil

	default:
		return outcomeOf(ordered(n.Op, value.AsString(), n.Value.Str)), nil
	}
}

func ordered[T float64 | string](op TokenType, a, b T) bool {
	switch op {
	case EQ:
		return a == b
	case NE:
		return a != b
	case LT:
		return a < b
	case GT:
		return a > b
	case LTE:
		return a <= b
	case GTE:
		return a >= b
	}
	return false
}

func member(n *Membership, value types.Value) bool {
	for _, item := range value.AsList() {
		for _, lit := range n.Values {
			if item == lit.Str {
				return true
			}
		}
	}
	return false
}

// checkOperand enforces the typing rules of a predicate against the declared
// type of the parameter it reads
func checkOperand(node Expr, pt types.ParameterType) error {
	switch n := node.(type) {
	case *Comparison:
		switch pt {
		case types.StringType, types.ChoiceType:
			if n.Value.Kind != StringLiteral {
				return evalErrorf(n, "cannot compare %s parameter '%s' with %s literal", pt, n.Name, n.Value.Kind)
			}
		case types.NumberType:
			if n.Value.Kind != NumberLiteral {
				return evalErrorf(n, "cannot compare number parameter '%s' with %s literal", n.Name, n.Value.Kind)
			}
		case types.BooleanType:
			if n.Value.Kind != BoolLiteral {
				return evalErrorf(n, "cannot compare boolean parameter '%s' with %s literal", n.Name, n.Value.Kind)
			}
			if n.Op != EQ && n.Op != NE {
				return evalErrorf(n, "operator %s is not defined for boolean parameter '%s'", n.Op, n.Name)
			}
		case types.MultiChoiceType:
			return evalErrorf(n, "multichoice parameter '%s' supports only 'in' and 'contains'", n.Name)
		default:
			return evalErrorf(n, "parameter '%s' has unsupported type %s", n.Name, pt)
		}

	case *Membership:
		if pt != types.StringType && pt != types.ChoiceType && pt != types.MultiChoiceType {
			return evalErrorf(n, "'in' requires a string, choice or multichoice parameter, '%s' is %s", n.Name, pt)
		}
		for _, lit := range n.Values {
			if lit.Kind != StringLiteral {
				return evalErrorf(n, "'in' list for '%s' must hold strings, got %s literal", n.Name, lit.Kind)
			}
		}

	case *Contains:
		if pt != types.StringType && pt != types.ChoiceType && pt != types.MultiChoiceType {
			return evalErrorf(n, "'contains' requires a string, choice or multichoice parameter, '%s' is %s", n.Name, pt)
		}
		if n.Value.Kind != StringLiteral {
			return evalErrorf(n, "'contains' operand for '%s' must be a string, got %s literal", n.Name, n.Value.Kind)
		}
	}
	return nil
}

// TypeCheck verifies every predicate of expr against the declared parameter
// types, so type mismatches surface when definitions load. typeOf returns
// false for unknown names; those are reported too.
func TypeCheck(expr Expr, typeOf func(name string) (types.ParameterType, bool)) []error {
	var errs []error
	var walk func(Expr)
	walk = func(e Expr) {
		var name string
		switch n := e.(type) {
		case *Logical:
			walk(n.Left)
			walk(n.Right)
			return
		case *Comparison:
			name = n.Name
		case *Membership:
			name = n.Name
		case *Contains:
			name = n.Name
		default:
			return
		}
		pt, ok := typeOf(name)
		if !ok {
			errs = append(errs, evalErrorf(e, "unknown parameter '%s'", name))
			return
		}
		if err := checkOperand(e, pt); err != nil {
			errs = append(errs, err)
		}
	}
	walk(expr)
	return errs
}
