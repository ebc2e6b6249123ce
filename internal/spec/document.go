package spec

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phillarmonic/paramflow/internal/domain/parameter"
	"github.com/phillarmonic/paramflow/internal/errors"
	"github.com/phillarmonic/paramflow/internal/types"
)

// Document is a loaded workflow schema
type Document struct {
	Path        string
	Format      string
	Name        string
	Description string

	// Body is the markdown following the front matter of a .md schema
	Body string

	Set *parameter.Set
}

// WorkflowName returns the declared name, or the file name without
// extension when none is declared
func (d *Document) WorkflowName() string {
	if d.Name != "" {
		return d.Name
	}
	if d.Path == "" {
		return "default"
	}
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type rawDocument struct {
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description" json:"description"`
	Parameters  []*rawParameter `yaml:"parameters" json:"parameters"`
	Groups      []*rawGroup     `yaml:"groups" json:"groups"`
}

type rawParameter struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Type        string         `yaml:"type" json:"type"`
	Required    bool           `yaml:"required" json:"required"`
	Secret      bool           `yaml:"secret" json:"secret"`
	Choices     []string       `yaml:"choices" json:"choices"`
	Default     any            `yaml:"default" json:"default"`
	Condition   *rawCondition  `yaml:"condition" json:"condition"`
	Validation  *rawValidation `yaml:"validation" json:"validation"`
}

type rawValidation struct {
	Pattern       string   `yaml:"pattern" json:"pattern"`
	MinLength     *int     `yaml:"min_length" json:"min_length"`
	MaxLength     *int     `yaml:"max_length" json:"max_length"`
	Min           *float64 `yaml:"min" json:"min"`
	Max           *float64 `yaml:"max" json:"max"`
	MinSelections *int     `yaml:"min_selections" json:"min_selections"`
	MaxSelections *int     `yaml:"max_selections" json:"max_selections"`
	Format        string   `yaml:"format" json:"format"`
}

type rawGroup struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Parameters  []string `yaml:"parameters" json:"parameters"`
}

// rawCondition accepts either a bare expression or an
// {expression, description} mapping
type rawCondition struct {
	Expression  string `yaml:"expression" json:"expression"`
	Description string `yaml:"description" json:"description"`
}

func (c *rawCondition) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		c.Expression = value.Value
		return nil
	}
	type plain rawCondition
	return value.Decode((*plain)(c))
}

func (c *rawCondition) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &c.Expression)
	}
	type plain rawCondition
	return json.Unmarshal(data, (*plain)(c))
}

// build converts the decoded document and runs the load-time checks. Type
// and default conversion problems are reported together with the set's
// own schema errors.
func (raw *rawDocument) build() (*Document, error) {
	el := errors.NewList("Schema errors")

	params := make([]*parameter.Parameter, 0, len(raw.Parameters))
	for _, rp := range raw.Parameters {
		if rp == nil {
			continue
		}
		if p := rp.convert(el); p != nil {
			params = append(params, p)
		}
	}

	groups := make([]parameter.Group, 0, len(raw.Groups))
	for _, rg := range raw.Groups {
		if rg == nil {
			continue
		}
		groups = append(groups, parameter.Group{
			Name:        rg.Name,
			Description: rg.Description,
			Members:     rg.Parameters,
		})
	}

	set, err := parameter.NewSet(params, groups)
	if err != nil {
		el.Add(err)
	}
	if el.HasErrors() {
		return nil, el
	}

	return &Document{
		Name:        raw.Name,
		Description: raw.Description,
		Set:         set,
	}, nil
}

func (rp *rawParameter) convert(el *errors.List) *parameter.Parameter {
	typeName := rp.Type
	if typeName == "" {
		typeName = "string"
	}
	paramType, err := types.ParseParameterType(typeName)
	if err != nil {
		el.Add(&parameter.SchemaError{Parameter: rp.Name, Err: err})
		return nil
	}

	p := &parameter.Parameter{
		Name:        rp.Name,
		Description: rp.Description,
		Type:        paramType,
		Required:    rp.Required,
		Secret:      rp.Secret,
		Choices:     rp.Choices,
	}

	if rp.Default != nil {
		value, err := types.FromAny(paramType, rp.Default)
		if err != nil {
			el.Add(&parameter.SchemaError{Parameter: rp.Name, Message: "invalid default", Err: err})
		} else {
			p.Default = value
			p.HasDefault = true
		}
	}

	if rp.Condition != nil {
		p.Condition = &parameter.Condition{
			Expression:  rp.Condition.Expression,
			Description: rp.Condition.Description,
		}
	}

	if v := rp.Validation; v != nil {
		p.Validation = &parameter.ValidationRules{
			Pattern:       v.Pattern,
			MinLength:     v.MinLength,
			MaxLength:     v.MaxLength,
			Min:           v.Min,
			Max:           v.Max,
			MinSelections: v.MinSelections,
			MaxSelections: v.MaxSelections,
			Format:        v.Format,
		}
	}

	return p
}
