package condition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"equality", "deploy_env == 'prod'", "deploy_env == 'prod'"},
		{"double quotes", `deploy_env != "dev"`, "deploy_env != 'dev'"},
		{"number", "replicas >= 3", "replicas >= 3"},
		{"negative float", "offset < -1.5", "offset < -1.5"},
		{"boolean", "enable_ssl == true", "enable_ssl == true"},
		{"dollar prefix", "$enable_ssl == false", "enable_ssl == false"},
		{"membership", "region in ['eu', 'us']", "region in ['eu', 'us']"},
		{"contains", "features contains 'metrics'", "features contains 'metrics'"},
		{"and binds tighter", "a == 'x' || b == 'y' && c == 'z'", "(a == 'x' || (b == 'y' && c == 'z'))"},
		{"left associative", "a == 1 && b == 2 && c == 3", "((a == 1 && b == 2) && c == 3)"},
		{"parentheses", "(a == 'x' || b == 'y') && c == 'z'", "((a == 'x' || b == 'y') && c == 'z')"},
		{"keyword aliases", "a == 'x' and b == 'y' or c == 'z'", "((a == 'x' && b == 'y') || c == 'z')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, expr.String())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		position int
		contains string
	}{
		{"empty", "   ", 3, "empty expression"},
		{"missing literal", "a ==", 4, "expected literal"},
		{"missing operator", "a 'x'", 2, "expected operator after 'a'"},
		{"bare name", "enable_ssl", 10, "expected operator"},
		{"literal first", "'prod' == env", 0, "expected parameter name"},
		{"empty list", "a in []", 6, "expected literal"},
		{"in without list", "a in 'x'", 5, "expected '['"},
		{"unterminated list", "a in ['x'", 9, "expected ',' or ']'"},
		{"unclosed paren", "(a == 'x'", 0, "unclosed '('"},
		{"trailing tokens", "a == 'x' b", 9, "after complete expression"},
		{"dangling and", "a == 'x' &&", 11, "expected parameter name"},
		{"unterminated string", "a == 'x", 5, "unterminated string"},
		{"single equals", "a = 'x'", 2, "expected operator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.input, parseErr.Expression)
			assert.Equal(t, tt.position, parseErr.Position)
			assert.Contains(t, parseErr.Error(), tt.contains)
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	input := "(env in ['staging', 'prod'] || force == true) && replicas > 2"
	first := MustParse(input)
	for i := 0; i < 10; i++ {
		again, err := Parse(input)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestReferences(t *testing.T) {
	expr := MustParse("a == 'x' && (b > 1 || a != 'y') && c contains 'z'")
	assert.Equal(t, []string{"a", "b", "c"}, References(expr))
}

func TestParseError_Pointer(t *testing.T) {
	_, err := Parse("a == ")
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "a == \n     ^", parseErr.Pointer())
}
