package parameter

import (
	"errors"
	"strings"
	"testing"

	"github.com/phillarmonic/paramflow/internal/types"
)

// Helper function to create Value for tests
func mustNewValue(paramType types.ParameterType, raw string) types.Value {
	v, err := types.NewValue(paramType, raw)
	if err != nil {
		panic(err)
	}
	return v
}

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestValidator_ValidateDataType(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name    string
		param   *Parameter
		value   types.Value
		wantErr bool
	}{
		{
			name:    "valid string",
			param:   &Parameter{Name: "test", Type: types.StringType},
			value:   mustNewValue(types.StringType, "hello"),
			wantErr: false,
		},
		{
			name:    "valid number",
			param:   &Parameter{Name: "test", Type: types.NumberType},
			value:   mustNewValue(types.NumberType, "42"),
			wantErr: false,
		},
		{
			name:    "string for number",
			param:   &Parameter{Name: "test", Type: types.NumberType},
			value:   mustNewValue(types.StringType, "not a number"),
			wantErr: true,
		},
		{
			name:    "valid boolean",
			param:   &Parameter{Name: "test", Type: types.BooleanType},
			value:   mustNewValue(types.BooleanType, "true"),
			wantErr: false,
		},
		{
			name:    "hand-built value with wrong payload",
			param:   &Parameter{Name: "test", Type: types.BooleanType},
			value:   types.Value{Type: types.BooleanType, Raw: "maybe", Value: "maybe"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.param, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_ValidateChoices(t *testing.T) {
	validator := NewValidator()

	env := &Parameter{
		Name:    "env",
		Type:    types.ChoiceType,
		Choices: []string{"dev", "staging", "prod"},
	}
	features := &Parameter{
		Name:       "features",
		Type:       types.MultiChoiceType,
		Choices:    []string{"metrics", "tracing", "logs"},
		Validation: &ValidationRules{MinSelections: intPtr(1), MaxSelections: intPtr(2)},
	}

	tests := []struct {
		name    string
		param   *Parameter
		value   types.Value
		wantErr bool
	}{
		{"valid choice", env, mustNewValue(types.ChoiceType, "dev"), false},
		{"invalid choice", env, mustNewValue(types.ChoiceType, "production"), true},
		{"valid selections", features, mustNewValue(types.MultiChoiceType, "metrics,logs"), false},
		{"unknown selection", features, mustNewValue(types.MultiChoiceType, "metrics,profiling"), true},
		{"duplicate selection", features, mustNewValue(types.MultiChoiceType, "logs,logs"), true},
		{"too few selections", features, mustNewValue(types.MultiChoiceType, ""), true},
		{"too many selections", features, mustNewValue(types.MultiChoiceType, "metrics,tracing,logs"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.param, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_DefaultSelectionBounds(t *testing.T) {
	param := &Parameter{Name: "tags", Type: types.MultiChoiceType, Choices: []string{"a", "b"}}

	minSel, maxSel := SelectionBounds(param)
	if minSel != 0 || maxSel != 2 {
		t.Errorf("Expected bounds [0, 2], got [%d, %d]", minSel, maxSel)
	}
	if err := NewValidator().Validate(param, mustNewValue(types.MultiChoiceType, "")); err != nil {
		t.Errorf("Expected empty selection to be valid, got %v", err)
	}
}

func TestValidator_ValidateNumberRange(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name    string
		param   *Parameter
		value   types.Value
		wantErr bool
	}{
		{
			name: "valid range",
			param: &Parameter{
				Name:       "port",
				Type:       types.NumberType,
				Validation: &ValidationRules{Min: floatPtr(0), Max: floatPtr(100)},
			},
			value:   mustNewValue(types.NumberType, "50"),
			wantErr: false,
		},
		{
			name: "inclusive bounds",
			param: &Parameter{
				Name:       "port",
				Type:       types.NumberType,
				Validation: &ValidationRules{Min: floatPtr(0), Max: floatPtr(100)},
			},
			value:   mustNewValue(types.NumberType, "100"),
			wantErr: false,
		},
		{
			name: "below minimum",
			param: &Parameter{
				Name:       "port",
				Type:       types.NumberType,
				Validation: &ValidationRules{Min: floatPtr(0)},
			},
			value:   mustNewValue(types.NumberType, "-1"),
			wantErr: true,
		},
		{
			name: "above maximum",
			param: &Parameter{
				Name:       "port",
				Type:       types.NumberType,
				Validation: &ValidationRules{Max: floatPtr(100)},
			},
			value:   mustNewValue(types.NumberType, "101"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.param, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_ValidatePattern(t *testing.T) {
	validator := NewValidator()

	code := &Parameter{
		Name:       "code",
		Type:       types.StringType,
		Validation: &ValidationRules{Pattern: "[A-Z]{3}"},
	}
	cert := &Parameter{
		Name:       "cert_path",
		Type:       types.StringType,
		Validation: &ValidationRules{Pattern: `^.*\.(pem|crt)$`},
	}

	tests := []struct {
		name    string
		param   *Parameter
		value   types.Value
		wantErr bool
	}{
		{"valid pattern", code, mustNewValue(types.StringType, "ABC"), false},
		{"lowercase", code, mustNewValue(types.StringType, "abc"), true},
		{"full match only", code, mustNewValue(types.StringType, "ABCD"), true},
		{"anchored pattern", cert, mustNewValue(types.StringType, "server.pem"), false},
		{"wrong extension", cert, mustNewValue(types.StringType, "notes.txt"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.param, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_ValidateLengthAndFormat(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name    string
		rules   *ValidationRules
		value   string
		wantErr bool
	}{
		{"within length", &ValidationRules{MinLength: intPtr(2), MaxLength: intPtr(4)}, "abc", false},
		{"too short", &ValidationRules{MinLength: intPtr(2)}, "a", true},
		{"too long", &ValidationRules{MaxLength: intPtr(4)}, "abcde", true},
		{"runes not bytes", &ValidationRules{MaxLength: intPtr(2)}, "äö", false},
		{"valid email", &ValidationRules{Format: "email"}, "test@example.com", false},
		{"invalid email", &ValidationRules{Format: "email"}, "not-an-email", true},
		{"valid semver", &ValidationRules{Format: "semver"}, "1.4.0", false},
		{"invalid semver", &ValidationRules{Format: "semver"}, "one", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			param := &Parameter{Name: "value", Type: types.StringType, Validation: tt.rules}
			err := validator.Validate(param, mustNewValue(types.StringType, tt.value))
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_Coerce(t *testing.T) {
	validator := NewValidator()
	replicas := &Parameter{Name: "replicas", Type: types.NumberType, Validation: &ValidationRules{Min: floatPtr(1)}}

	value, err := validator.Coerce(replicas, "3")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if n, _ := value.AsNumber(); n != 3 {
		t.Errorf("Expected 3, got %v", n)
	}

	value, err = validator.Coerce(replicas, "three")
	if err == nil {
		t.Fatal("Expected error for non-numeric input")
	}
	if value.Type != types.StringType || value.Value != nil {
		t.Errorf("Expected zero value on failure, got %#v", value)
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Parameter != "replicas" {
		t.Errorf("Expected ValidationError for replicas, got %v", err)
	}

	if _, err := validator.Coerce(replicas, 0); err == nil {
		t.Error("Expected error for value below minimum")
	}

	flag := &Parameter{Name: "confirm", Type: types.BooleanType}
	for _, raw := range []string{"true", "NO", "y", "0"} {
		if _, err := validator.Coerce(flag, raw); err != nil {
			t.Errorf("Expected %q to be a boolean, got %v", raw, err)
		}
	}
	if _, err := validator.Coerce(flag, "maybe"); err == nil {
		t.Error("Expected error for non-canonical boolean")
	}
}

func TestValidationError_MasksSecrets(t *testing.T) {
	token := &Parameter{
		Name:       "api_token",
		Type:       types.StringType,
		Secret:     true,
		Validation: &ValidationRules{MinLength: intPtr(10)},
	}

	_, err := NewValidator().Coerce(token, "hunter2")
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if strings.Contains(err.Error(), "hunter2") {
		t.Errorf("Secret value leaked in error: %s", err)
	}
	if !strings.Contains(err.Error(), "****") {
		t.Errorf("Expected masked value in error: %s", err)
	}
}

func TestParameter_Methods(t *testing.T) {
	param := &Parameter{
		Name:       "test",
		Type:       types.NumberType,
		Required:   true,
		Validation: &ValidationRules{Min: new(float64)},
	}

	if !param.IsRequired() {
		t.Error("IsRequired() should return true for required parameter")
	}

	if !param.HasConstraints() {
		t.Error("HasConstraints() should return true when Min is set")
	}

	param2 := NewParameter("optional", types.StringType)

	if param2.IsRequired() {
		t.Error("IsRequired() should return false for optional parameter")
	}
	if param2.HasConstraints() || param2.IsConditional() {
		t.Error("Expected plain parameter to have no constraints or condition")
	}

	cond, err := NewCondition("deploy_env == 'prod'", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cond.Explain() != "because deploy_env == 'prod'" {
		t.Errorf("Unexpected explanation: %s", cond.Explain())
	}
}
