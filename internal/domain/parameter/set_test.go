package parameter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/phillarmonic/paramflow/internal/errors"
	"github.com/phillarmonic/paramflow/internal/types"
)

func mustCondition(t *testing.T, expr string) *Condition {
	t.Helper()
	c, err := NewCondition(expr, "")
	require.NoError(t, err)
	return c
}

func deploySchema(t *testing.T) []*Parameter {
	return []*Parameter{
		{
			Name:     "deploy_env",
			Type:     types.ChoiceType,
			Required: true,
			Choices:  []string{"dev", "staging", "prod"},
		},
		{
			Name:      "prod_confirmation",
			Type:      types.BooleanType,
			Required:  true,
			Condition: mustCondition(t, "deploy_env == 'prod'"),
		},
		{
			Name:       "enable_ssl",
			Type:       types.BooleanType,
			Default:    mustNewValue(types.BooleanType, "false"),
			HasDefault: true,
		},
		{
			Name:       "cert_path",
			Type:       types.StringType,
			Required:   true,
			Condition:  &Condition{Expression: "enable_ssl == true"},
			Validation: &ValidationRules{Pattern: `^.*\.(pem|crt)$`},
		},
	}
}

func schemaErrors(t *testing.T, err error) []string {
	t.Helper()
	require.Error(t, err)
	var list *perrors.List
	require.True(t, errors.As(err, &list), "expected an error list, got %T", err)

	var messages []string
	for _, e := range list.Errors {
		var schemaErr *SchemaError
		require.True(t, errors.As(e, &schemaErr), "expected SchemaError, got %T", e)
		messages = append(messages, e.Error())
	}
	return messages
}

func TestNewSet_Valid(t *testing.T) {
	groups := []Group{{Name: "deployment", Members: []string{"deploy_env", "prod_confirmation"}}}
	set, err := NewSet(deploySchema(t), groups)
	require.NoError(t, err)

	assert.Equal(t, 4, set.Len())
	assert.Equal(t, []string{"deploy_env", "prod_confirmation", "enable_ssl", "cert_path"}, set.Names())
	assert.Equal(t, map[string][]string{
		"prod_confirmation": {"deploy_env"},
		"cert_path":         {"enable_ssl"},
	}, set.Dependencies())
	assert.Empty(t, set.Cycles())

	group, ok := set.GroupOf("prod_confirmation")
	assert.True(t, ok)
	assert.Equal(t, "deployment", group)

	cert, ok := set.Get("cert_path")
	require.True(t, ok)
	expr, err := cert.Condition.Expr()
	require.NoError(t, err)
	assert.Equal(t, "enable_ssl == true", expr.String())
}

func TestNewSet_CopiesDefinitions(t *testing.T) {
	params := deploySchema(t)
	set, err := NewSet(params, nil)
	require.NoError(t, err)

	params[0].Choices[0] = "changed"
	params[0].Name = "renamed"

	env, ok := set.Get("deploy_env")
	require.True(t, ok)
	assert.Equal(t, []string{"dev", "staging", "prod"}, env.Choices)
}

func TestNewSet_CollectsAllErrors(t *testing.T) {
	params := []*Parameter{
		{Name: "env", Type: types.ChoiceType},
		{Name: "env", Type: types.StringType},
		{Name: "1bad", Type: types.StringType},
		{Name: "and", Type: types.StringType},
		{Name: "size", Type: types.StringType, Choices: []string{"s"}},
		{Name: "count", Type: types.NumberType, Validation: &ValidationRules{Pattern: "x", Min: floatPtr(5), Max: floatPtr(1)}},
		{Name: "code", Type: types.StringType, Validation: &ValidationRules{Pattern: "(", Format: "zipcode"}},
		{Name: "colors", Type: types.MultiChoiceType, Choices: []string{"red", "red"}, Validation: &ValidationRules{MinSelections: intPtr(3), MaxSelections: intPtr(1)}},
		{Name: "ghost", Type: types.StringType, Condition: &Condition{Expression: "missing == 'x'"}},
		{Name: "loop", Type: types.BooleanType, Condition: &Condition{Expression: "loop == true"}},
		{Name: "broken", Type: types.StringType, Condition: &Condition{Expression: "env =="}},
		{Name: "mismatch", Type: types.StringType, Condition: &Condition{Expression: "count == 'ten'"}},
		{Name: "port", Type: types.NumberType, Default: mustNewValue(types.NumberType, "0"), HasDefault: true, Validation: &ValidationRules{Min: floatPtr(1)}},
	}
	groups := []Group{
		{Name: "main", Members: []string{"size", "nobody"}},
		{Name: "other", Members: []string{"size"}},
		{Name: "main"},
	}

	_, err := NewSet(params, groups)
	messages := schemaErrors(t, err)

	expected := []string{
		"parameter 'env': declared more than once",
		"parameter '1bad': invalid name",
		"parameter 'and': invalid name",
		"parameter 'env': choice parameter needs at least one choice",
		"parameter 'size': choices only apply to choice and multichoice parameters",
		"parameter 'count': rule 'pattern' does not apply to number parameters",
		"parameter 'count': min 5 is greater than max 1",
		"parameter 'code': invalid pattern",
		"parameter 'code': unknown format 'zipcode'",
		"parameter 'colors': choice 'red' is listed more than once",
		"parameter 'colors': min_selections 3 is greater than max_selections 1",
		"parameter 'ghost': condition 'missing == 'x'' refers to unknown parameter 'missing'",
		"parameter 'loop': condition 'loop == true' refers to the parameter itself",
		"parameter 'broken': invalid condition 'env ==' at position 7",
		"parameter 'mismatch': condition evaluation failed at 'count == 'ten''",
		"parameter 'port': invalid default",
		"group 'main': member 'nobody' is not a declared parameter",
		"group 'other': member 'size' already belongs to group 'main'",
		"group 'main': declared more than once",
	}

	for _, want := range expected {
		found := false
		for _, msg := range messages {
			if len(msg) >= len(want) && msg[:len(want)] == want {
				found = true
				break
			}
		}
		assert.True(t, found, "missing error %q in:\n%v", want, messages)
	}
}

func TestNewSet_RejectsCommaInSelections(t *testing.T) {
	params := []*Parameter{
		{Name: "regions", Type: types.MultiChoiceType, Choices: []string{"eu", "us,east"}},
		{Name: "region", Type: types.ChoiceType, Choices: []string{"us,east"}},
	}

	_, err := NewSet(params, nil)
	messages := schemaErrors(t, err)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "parameter 'regions': choice 'us,east' must not contain a comma")
}

func TestNewSet_DefaultsAreCopied(t *testing.T) {
	tags := &Parameter{
		Name:       "tags",
		Type:       types.MultiChoiceType,
		Choices:    []string{"a", "b"},
		Default:    mustNewValue(types.MultiChoiceType, "a,b"),
		HasDefault: true,
	}
	set, err := NewSet([]*Parameter{tags}, nil)
	require.NoError(t, err)

	tags.Default.Value.([]string)[0] = "changed"

	p, ok := set.Get("tags")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, p.Default.AsList())
}

func TestNewSet_CyclesAreWarningsOnly(t *testing.T) {
	params := []*Parameter{
		{Name: "a", Type: types.BooleanType, Required: true, Condition: &Condition{Expression: "b == true"}},
		{Name: "b", Type: types.BooleanType, Required: true, Condition: &Condition{Expression: "a == true"}},
	}

	set, err := NewSet(params, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}}, set.Cycles())
	assert.Empty(t, set.Levels())
}

func TestValidateDefaultValues(t *testing.T) {
	params := []*Parameter{
		{Name: "env", Type: types.ChoiceType, Choices: []string{"dev"}, Default: mustNewValue(types.ChoiceType, "prod"), HasDefault: true},
		{Name: "tags", Type: types.MultiChoiceType, Choices: []string{"a", "b"}, Default: mustNewValue(types.MultiChoiceType, "a,b"), HasDefault: true},
		{Name: "ok", Type: types.StringType, Default: mustNewValue(types.StringType, "x"), HasDefault: true},
	}

	err := ValidateDefaultValues(params)
	messages := schemaErrors(t, err)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "parameter 'env': invalid default")

	assert.NoError(t, ValidateDefaultValues(params[1:]))
}

func TestGroupOrder(t *testing.T) {
	groups := []Group{
		{Name: "tls", Description: "TLS settings", Members: []string{"cert_path", "enable_ssl"}},
		{Name: "deployment", Members: []string{"deploy_env"}},
	}
	set, err := NewSet(deploySchema(t), groups)
	require.NoError(t, err)

	order := GroupOrder(set)
	require.Len(t, order, 3)

	names := func(ps []*Parameter) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Equal(t, "tls", order[0].Group.Name)
	assert.Equal(t, []string{"cert_path", "enable_ssl"}, names(order[0].Parameters))
	assert.Equal(t, "deployment", order[1].Group.Name)
	assert.Equal(t, []string{"deploy_env"}, names(order[1].Parameters))
	assert.Equal(t, "", order[2].Group.Name)
	assert.Equal(t, []string{"prod_confirmation"}, names(order[2].Parameters))

	assert.Equal(t, []string{"cert_path", "enable_ssl", "deploy_env", "prod_confirmation"}, names(PromptOrder(set)))
}
