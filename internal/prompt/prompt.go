// Package prompt decides what to ask for a missing parameter and defines the
// adapter that performs the asking.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phillarmonic/paramflow/internal/domain/parameter"
	"github.com/phillarmonic/paramflow/internal/types"
)

// ErrNoTerminal is returned by adapters that cannot reach a user
var ErrNoTerminal = errors.New("no interactive terminal available")

// Shape is the kind of input a prompt accepts
type Shape int

const (
	FreeText Shape = iota
	YesNo
	SingleChoice
	MultiSelect
)

func (s Shape) String() string {
	switch s {
	case YesNo:
		return "yes/no"
	case SingleChoice:
		return "single choice"
	case MultiSelect:
		return "multi-select"
	default:
		return "free text"
	}
}

// ShapeFor returns the input shape used for a parameter type
func ShapeFor(pt types.ParameterType) Shape {
	switch pt {
	case types.BooleanType:
		return YesNo
	case types.ChoiceType:
		return SingleChoice
	case types.MultiChoiceType:
		return MultiSelect
	default:
		return FreeText
	}
}

// Request describes one prompt
type Request struct {
	Parameter     string
	Label         string
	Reason        string
	Group         string
	Shape         Shape
	Choices       []string
	MinSelections int
	MaxSelections int
	Default       string
	HasDefault    bool
	Required      bool
	Secret        bool

	// Attempt counts from 1; LastError is the validation message of the
	// previous attempt, if any
	Attempt   int
	LastError string

	// Check runs the raw answer through the parameter's validation
	Check func(raw string) error
}

// Validate runs the Check hook when one is set
func (r *Request) Validate(raw string) error {
	if r.Check == nil {
		return nil
	}
	return r.Check(raw)
}

// Answer is what an adapter returns. Declined means the user gave no value
// and the caller should fall back to the default.
type Answer struct {
	Value    string
	Declined bool
}

// Adapter asks the user for a value. It may block; one prompt is
// outstanding at a time.
type Adapter interface {
	Prompt(ctx context.Context, req *Request) (Answer, error)
}

// AdapterFunc adapts a function to the Adapter interface
type AdapterFunc func(ctx context.Context, req *Request) (Answer, error)

// Prompt implements Adapter
func (f AdapterFunc) Prompt(ctx context.Context, req *Request) (Answer, error) {
	return f(ctx, req)
}

// NewRequest builds the prompt for an active, unresolved parameter
func NewRequest(p *parameter.Parameter, group string) *Request {
	req := &Request{
		Parameter: p.Name,
		Label:     Label(p),
		Reason:    Reason(p),
		Group:     group,
		Shape:     ShapeFor(p.Type),
		Required:  p.Required,
		Secret:    p.Secret,
		Attempt:   1,
	}

	if p.Type.IsChoice() {
		req.Choices = append([]string(nil), p.Choices...)
	}
	if p.Type == types.MultiChoiceType {
		req.MinSelections, req.MaxSelections = parameter.SelectionBounds(p)
	}
	if p.HasDefault {
		req.HasDefault = true
		req.Default = p.Default.AsString()
	}

	return req
}

// Label returns the prompt label: the description, or the name when there
// is none
func Label(p *parameter.Parameter) string {
	if p.Description != "" {
		return p.Description
	}
	return p.Name
}

// Reason explains why a conditional parameter is being asked now
func Reason(p *parameter.Parameter) string {
	if p.Condition == nil {
		return ""
	}
	return p.Condition.Explain()
}

// Hint renders the input shape as a short suffix, e.g. "[y/n]"
func (r *Request) Hint() string {
	var parts []string
	switch r.Shape {
	case YesNo:
		parts = append(parts, "y/n")
	case SingleChoice:
		parts = append(parts, "1-"+fmt.Sprint(len(r.Choices)))
	case MultiSelect:
		parts = append(parts, fmt.Sprintf("pick %d-%d, comma separated", r.MinSelections, r.MaxSelections))
	}
	if r.HasDefault && !r.Secret {
		parts = append(parts, "default: "+r.Default)
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
