package parameter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phillarmonic/paramflow/internal/condition"
	"github.com/phillarmonic/paramflow/internal/dag"
	"github.com/phillarmonic/paramflow/internal/errors"
	"github.com/phillarmonic/paramflow/internal/patterns"
	"github.com/phillarmonic/paramflow/internal/types"
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// SchemaError is a load-time problem in the parameter or group definitions
type SchemaError struct {
	Parameter string
	Group     string
	Message   string
	Err       error
}

func (e *SchemaError) Error() string {
	subject := fmt.Sprintf("parameter '%s'", e.Parameter)
	if e.Group != "" {
		subject = fmt.Sprintf("group '%s'", e.Group)
	}

	switch {
	case e.Message == "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", subject, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", subject, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", subject, e.Message)
	}
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Set is an immutable, validated collection of parameter and group
// definitions. It is safe to share between concurrent resolutions.
type Set struct {
	params  []*Parameter
	index   map[string]int
	groups  []Group
	groupOf map[string]string
	graph   *dag.Graph
}

// NewSet copies and checks the definitions. Every problem found is
// returned in one errors.List of SchemaError.
func NewSet(params []*Parameter, groups []Group) (*Set, error) {
	el := errors.NewList("Schema errors")
	s := &Set{
		index:   make(map[string]int, len(params)),
		groupOf: make(map[string]string),
	}

	for _, p := range params {
		if p == nil {
			continue
		}
		param := p.clone()

		if !namePattern.MatchString(param.Name) || condition.LookupIdent(param.Name) != condition.IDENT {
			el.Add(&SchemaError{Parameter: param.Name, Message: "invalid name (use letters, digits, '_', '-' or '.', starting with a letter or '_')"})
			continue
		}
		if _, exists := s.index[param.Name]; exists {
			el.Add(&SchemaError{Parameter: param.Name, Message: "declared more than once"})
			continue
		}

		s.index[param.Name] = len(s.params)
		s.params = append(s.params, param)
	}

	for _, param := range s.params {
		checkChoices(param, el)
		checkRules(param, el)
	}

	names := make([]string, len(s.params))
	for i, p := range s.params {
		names[i] = p.Name
	}
	s.graph = dag.New(names)

	for _, param := range s.params {
		s.checkCondition(param, el)
	}

	if err := ValidateDefaultValues(s.params); err != nil {
		el.Add(err)
	}

	s.checkGroups(groups, el)

	if el.HasErrors() {
		return nil, el
	}
	return s, nil
}

func checkChoices(param *Parameter, el *errors.List) {
	if !param.Type.IsChoice() {
		if len(param.Choices) > 0 {
			el.Add(&SchemaError{Parameter: param.Name, Message: fmt.Sprintf("choices only apply to choice and multichoice parameters, not %s", param.Type)})
		}
		return
	}

	if len(param.Choices) == 0 {
		el.Add(&SchemaError{Parameter: param.Name, Message: fmt.Sprintf("%s parameter needs at least one choice", param.Type)})
		return
	}

	seen := make(map[string]bool, len(param.Choices))
	for _, c := range param.Choices {
		if c == "" {
			el.Add(&SchemaError{Parameter: param.Name, Message: "choices must not be empty strings"})
			continue
		}
		if param.Type == types.MultiChoiceType && strings.Contains(c, ",") {
			// selections are comma separated in flags, --var and prompts
			el.Add(&SchemaError{Parameter: param.Name, Message: fmt.Sprintf("choice '%s' must not contain a comma", c)})
		}
		if seen[c] {
			el.Add(&SchemaError{Parameter: param.Name, Message: fmt.Sprintf("choice '%s' is listed more than once", c)})
		}
		seen[c] = true
	}
}

func checkRules(param *Parameter, el *errors.List) {
	r := param.Validation
	if r == nil {
		return
	}

	notFor := func(rule string) {
		el.Add(&SchemaError{Parameter: param.Name, Message: fmt.Sprintf("rule '%s' does not apply to %s parameters", rule, param.Type)})
	}

	if param.Type != types.StringType {
		if r.Pattern != "" {
			notFor("pattern")
		}
		if r.MinLength != nil {
			notFor("min_length")
		}
		if r.MaxLength != nil {
			notFor("max_length")
		}
		if r.Format != "" {
			notFor("format")
		}
	}
	if param.Type != types.NumberType {
		if r.Min != nil {
			notFor("min")
		}
		if r.Max != nil {
			notFor("max")
		}
	}
	if param.Type != types.MultiChoiceType {
		if r.MinSelections != nil {
			notFor("min_selections")
		}
		if r.MaxSelections != nil {
			notFor("max_selections")
		}
	}

	if err := r.compile(); err != nil {
		el.Add(&SchemaError{Parameter: param.Name, Message: "invalid pattern", Err: err})
	}
	if r.Format != "" {
		if _, ok := patterns.Get(r.Format); !ok {
			el.Add(&SchemaError{Parameter: param.Name, Message: fmt.Sprintf("unknown format '%s'", r.Format)})
		}
	}

	if r.MinLength != nil && *r.MinLength < 0 {
		el.Add(&SchemaError{Parameter: param.Name, Message: "min_length must not be negative"})
	}
	if r.MinLength != nil && r.MaxLength != nil && *r.MinLength > *r.MaxLength {
		el.Add(&SchemaError{Parameter: param.Name, Message: fmt.Sprintf("min_length %d is greater than max_length %d", *r.MinLength, *r.MaxLength)})
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		el.Add(&SchemaError{Parameter: param.Name, Message: fmt.Sprintf("min %s is greater than max %s", formatBound(*r.Min), formatBound(*r.Max))})
	}

	if param.Type == types.MultiChoiceType {
		minSel, maxSel := SelectionBounds(param)
		switch {
		case minSel < 0:
			el.Add(&SchemaError{Parameter: param.Name, Message: "min_selections must not be negative"})
		case minSel > maxSel:
			el.Add(&SchemaError{Parameter: param.Name, Message: fmt.Sprintf("min_selections %d is greater than max_selections %d", minSel, maxSel)})
		case minSel > len(param.Choices):
			el.Add(&SchemaError{Parameter: param.Name, Message: fmt.Sprintf("min_selections %d exceeds the %d available choices", minSel, len(param.Choices))})
		}
	}
}

func (s *Set) checkCondition(param *Parameter, el *errors.List) {
	if param.Condition == nil {
		return
	}

	expr, err := param.Condition.Expr()
	if err != nil {
		el.Add(&SchemaError{Parameter: param.Name, Err: err})
		return
	}

	for _, ref := range condition.References(expr) {
		if ref == param.Name {
			el.Add(&SchemaError{Parameter: param.Name, Message: fmt.Sprintf("condition '%s' refers to the parameter itself", param.Condition.Expression)})
			continue
		}
		if _, ok := s.index[ref]; !ok {
			el.Add(&SchemaError{Parameter: param.Name, Message: fmt.Sprintf("condition '%s' refers to unknown parameter '%s'", param.Condition.Expression, ref)})
			continue
		}
		_ = s.graph.AddDependency(param.Name, ref)
	}

	// unknown names were reported above
	if !s.knownNames(expr) {
		return
	}
	typeOf := func(name string) (types.ParameterType, bool) {
		return s.params[s.index[name]].Type, true
	}
	for _, typeErr := range condition.TypeCheck(expr, typeOf) {
		el.Add(&SchemaError{Parameter: param.Name, Err: typeErr})
	}
}

func (s *Set) knownNames(expr condition.Expr) bool {
	for _, ref := range condition.References(expr) {
		if _, ok := s.index[ref]; !ok {
			return false
		}
	}
	return true
}

func (s *Set) checkGroups(groups []Group, el *errors.List) {
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		if g.Name == "" {
			el.Add(&SchemaError{Group: "(unnamed)", Message: "group name must not be empty"})
			continue
		}
		if seen[g.Name] {
			el.Add(&SchemaError{Group: g.Name, Message: "declared more than once"})
			continue
		}
		seen[g.Name] = true

		members := make([]string, 0, len(g.Members))
		for _, m := range g.Members {
			if _, ok := s.index[m]; !ok {
				el.Add(&SchemaError{Group: g.Name, Message: fmt.Sprintf("member '%s' is not a declared parameter", m)})
				continue
			}
			if owner, taken := s.groupOf[m]; taken {
				el.Add(&SchemaError{Group: g.Name, Message: fmt.Sprintf("member '%s' already belongs to group '%s'", m, owner)})
				continue
			}
			s.groupOf[m] = g.Name
			members = append(members, m)
		}

		s.groups = append(s.groups, Group{Name: g.Name, Description: g.Description, Members: members})
	}
}

// ValidateDefaultValues checks every declared default against its
// parameter's type, choices and rules
func ValidateDefaultValues(params []*Parameter) error {
	el := errors.NewList("Invalid defaults")
	validator := NewValidator()

	for _, p := range params {
		if p == nil || !p.HasDefault {
			continue
		}
		if err := validator.Validate(p, p.Default); err != nil {
			el.Add(&SchemaError{Parameter: p.Name, Message: "invalid default", Err: err})
		}
	}

	return el.ErrorOrNil()
}

// Parameters returns the parameters in declaration order. The returned
// parameters are shared and must not be modified.
func (s *Set) Parameters() []*Parameter {
	out := make([]*Parameter, len(s.params))
	copy(out, s.params)
	return out
}

// Get returns the named parameter
func (s *Set) Get(name string) (*Parameter, bool) {
	idx, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.params[idx], true
}

// Names returns the parameter names in declaration order
func (s *Set) Names() []string {
	return s.graph.Nodes()
}

// Len returns the number of parameters
func (s *Set) Len() int {
	return len(s.params)
}

// Groups returns the groups in declaration order
func (s *Set) Groups() []Group {
	out := make([]Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = Group{Name: g.Name, Description: g.Description, Members: append([]string(nil), g.Members...)}
	}
	return out
}

// GroupOf returns the name of the group a parameter belongs to, if any
func (s *Set) GroupOf(name string) (string, bool) {
	g, ok := s.groupOf[name]
	return g, ok
}

// Dependencies returns, for each conditional parameter, the names its
// condition reads
func (s *Set) Dependencies() map[string][]string {
	out := make(map[string][]string)
	for _, name := range s.graph.Nodes() {
		if deps := s.graph.DependsOn(name); len(deps) > 0 {
			out[name] = deps
		}
	}
	return out
}

// Cycles reports condition cycles. They are not errors: a provided value
// for any member breaks the cycle at resolution time.
func (s *Set) Cycles() [][]string {
	return s.graph.Cycles()
}

// Levels groups acyclic parameters by the depth of their condition chain
func (s *Set) Levels() [][]string {
	return s.graph.Levels()
}
