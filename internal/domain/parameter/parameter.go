package parameter

import (
	"fmt"
	"regexp"

	"github.com/phillarmonic/paramflow/internal/condition"
	"github.com/phillarmonic/paramflow/internal/types"
)

// Parameter represents one declared input. Once part of a Set it must be
// treated as read-only; it is shared by every resolution that uses the set.
type Parameter struct {
	Name        string
	Description string
	Type        types.ParameterType
	Required    bool
	Default     types.Value
	HasDefault  bool
	Choices     []string
	Validation  *ValidationRules
	Condition   *Condition
	Secret      bool
}

// NewParameter creates a new parameter
func NewParameter(name string, paramType types.ParameterType) *Parameter {
	return &Parameter{
		Name: name,
		Type: paramType,
	}
}

// IsRequired reports the base requiredness, before the condition is applied
func (p *Parameter) IsRequired() bool {
	return p.Required
}

// IsConditional checks if the parameter has a condition
func (p *Parameter) IsConditional() bool {
	return p.Condition != nil
}

// HasConstraints checks if parameter has validation constraints
func (p *Parameter) HasConstraints() bool {
	return len(p.Choices) > 0 || (p.Validation != nil && !p.Validation.IsZero())
}

// HasChoice reports whether s is one of the declared choices
func (p *Parameter) HasChoice(s string) bool {
	for _, c := range p.Choices {
		if c == s {
			return true
		}
	}
	return false
}

// clone returns a copy that shares nothing mutable with p
func (p *Parameter) clone() *Parameter {
	out := *p
	out.Default = p.Default.Clone()
	if p.Choices != nil {
		out.Choices = make([]string, len(p.Choices))
		copy(out.Choices, p.Choices)
	}
	if p.Validation != nil {
		rules := *p.Validation
		rules.MinLength = cloneInt(rules.MinLength)
		rules.MaxLength = cloneInt(rules.MaxLength)
		rules.MinSelections = cloneInt(rules.MinSelections)
		rules.MaxSelections = cloneInt(rules.MaxSelections)
		rules.Min = cloneFloat(rules.Min)
		rules.Max = cloneFloat(rules.Max)
		out.Validation = &rules
	}
	if p.Condition != nil {
		c := *p.Condition
		out.Condition = &c
	}
	return &out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ValidationRules holds the optional value constraints. Which ones apply
// depends on the parameter type.
type ValidationRules struct {
	Pattern       string
	MinLength     *int
	MaxLength     *int
	Min           *float64
	Max           *float64
	MinSelections *int
	MaxSelections *int
	Format        string

	compiled *regexp.Regexp
}

// IsZero reports whether no rule is set
func (r *ValidationRules) IsZero() bool {
	return r.Pattern == "" && r.MinLength == nil && r.MaxLength == nil &&
		r.Min == nil && r.Max == nil && r.MinSelections == nil &&
		r.MaxSelections == nil && r.Format == ""
}

// Regexp returns the compiled pattern anchored for a full match
func (r *ValidationRules) Regexp() (*regexp.Regexp, error) {
	if r.compiled != nil {
		return r.compiled, nil
	}
	return regexp.Compile(`^(?:` + r.Pattern + `)$`)
}

func (r *ValidationRules) compile() error {
	if r.Pattern == "" {
		return nil
	}
	re, err := r.Regexp()
	if err != nil {
		return err
	}
	r.compiled = re
	return nil
}

// Condition gates a parameter on the values of others
type Condition struct {
	Expression  string
	Description string

	expr condition.Expr
}

// NewCondition parses expression and returns the compiled condition
func NewCondition(expression, description string) (*Condition, error) {
	c := &Condition{Expression: expression, Description: description}
	if err := c.compile(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Condition) compile() error {
	if c.expr != nil {
		return nil
	}
	expr, err := condition.Parse(c.Expression)
	if err != nil {
		return err
	}
	c.expr = expr
	return nil
}

// Expr returns the parsed expression, parsing it on first use
func (c *Condition) Expr() (condition.Expr, error) {
	if err := c.compile(); err != nil {
		return nil, err
	}
	return c.expr, nil
}

// Explain returns the human reason the condition activates its parameter
func (c *Condition) Explain() string {
	if c.Description != "" {
		return c.Description
	}
	return fmt.Sprintf("because %s", c.Expression)
}

// Group organizes parameters for help output and prompt order
type Group struct {
	Name        string
	Description string
	Members     []string
}
