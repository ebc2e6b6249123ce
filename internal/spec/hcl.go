package spec

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// hclDocument is the top-level structure of an HCL schema:
//
//	name = "deploy"
//
//	parameter "deploy_env" {
//	  type     = "choice"
//	  choices  = ["dev", "prod"]
//	  required = true
//	}
//
//	group "deployment" {
//	  parameters = ["deploy_env"]
//	}
type hclDocument struct {
	Name        string          `hcl:"name,optional"`
	Description string          `hcl:"description,optional"`
	Parameters  []*hclParameter `hcl:"parameter,block"`
	Groups      []*hclGroup     `hcl:"group,block"`
}

type hclParameter struct {
	Name                 string         `hcl:"name,label"`
	Description          string         `hcl:"description,optional"`
	Type                 string         `hcl:"type,optional"`
	Required             bool           `hcl:"required,optional"`
	Secret               bool           `hcl:"secret,optional"`
	Choices              []string       `hcl:"choices,optional"`
	Default              hcl.Expression `hcl:"default,optional"`
	Condition            string         `hcl:"condition,optional"`
	ConditionDescription string         `hcl:"condition_description,optional"`
	Validation           *hclValidation `hcl:"validation,block"`
}

type hclValidation struct {
	Pattern       string   `hcl:"pattern,optional"`
	MinLength     *int     `hcl:"min_length,optional"`
	MaxLength     *int     `hcl:"max_length,optional"`
	Min           *float64 `hcl:"min,optional"`
	Max           *float64 `hcl:"max,optional"`
	MinSelections *int     `hcl:"min_selections,optional"`
	MaxSelections *int     `hcl:"max_selections,optional"`
	Format        string   `hcl:"format,optional"`
}

type hclGroup struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	Parameters  []string `hcl:"parameters"`
}

func decodeHCL(data []byte, filename string) (*rawDocument, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	var parsed hclDocument
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, diags
	}

	raw := &rawDocument{Name: parsed.Name, Description: parsed.Description}
	for _, hp := range parsed.Parameters {
		rp := &rawParameter{
			Name:        hp.Name,
			Description: hp.Description,
			Type:        hp.Type,
			Required:    hp.Required,
			Secret:      hp.Secret,
			Choices:     hp.Choices,
		}

		if hp.Default != nil {
			val, diags := hp.Default.Value(nil)
			if diags.HasErrors() {
				return nil, diags
			}
			def, err := ctyValueToInterface(val)
			if err != nil {
				return nil, fmt.Errorf("parameter '%s': default: %w", hp.Name, err)
			}
			rp.Default = def
		}

		if hp.Condition != "" {
			rp.Condition = &rawCondition{Expression: hp.Condition, Description: hp.ConditionDescription}
		}

		if v := hp.Validation; v != nil {
			rp.Validation = &rawValidation{
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

		raw.Parameters = append(raw.Parameters, rp)
	}

	for _, hg := range parsed.Groups {
		raw.Groups = append(raw.Groups, &rawGroup{
			Name:        hg.Name,
			Description: hg.Description,
			Parameters:  hg.Parameters,
		})
	}

	return raw, nil
}

// ctyValueToInterface converts a cty.Value to a plain Go value. Null and
// unknown values become nil.
func ctyValueToInterface(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	if val.Type().IsPrimitiveType() {
		switch val.Type() {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", val.Type().FriendlyName())
		}
	}
	if val.Type().IsTupleType() || val.Type().IsListType() || val.Type().IsSetType() {
		out := []any{}
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			item, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type: %s", val.Type().FriendlyName())
}
