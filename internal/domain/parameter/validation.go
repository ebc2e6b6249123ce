package parameter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/phillarmonic/paramflow/internal/patterns"
	"github.com/phillarmonic/paramflow/internal/types"
)

// Validator validates parameter values
type Validator struct {
	// No state needed - rules are compiled on the parameters themselves
}

// NewValidator creates a new parameter validator
func NewValidator() *Validator {
	return &Validator{}
}

// Coerce converts a raw candidate (string, bool, number, list or
// types.Value) into a typed value and validates it. On failure nothing
// usable is returned.
func (v *Validator) Coerce(param *Parameter, raw any) (types.Value, error) {
	value, err := types.FromAny(param.Type, raw)
	if err != nil {
		return types.Value{}, &ValidationError{
			Parameter: param.Name,
			Message:   typeMessage(param.Type, err),
			Value:     fmt.Sprint(raw),
			Secret:    param.Secret,
		}
	}
	if err := v.Validate(param, value); err != nil {
		return types.Value{}, err
	}
	return value, nil
}

// Validate validates a typed parameter value
func (v *Validator) Validate(param *Parameter, value types.Value) error {
	// Check data type
	if err := v.validateDataType(param, value); err != nil {
		return err
	}

	// Check choices
	if err := v.validateChoices(param, value); err != nil {
		return err
	}

	// Check rules
	if err := v.validateRules(param, value); err != nil {
		return err
	}

	return nil
}

func (v *Validator) fail(param *Parameter, value types.Value, format string, args ...any) error {
	return &ValidationError{
		Parameter: param.Name,
		Message:   fmt.Sprintf(format, args...),
		Value:     value.AsString(),
		Secret:    param.Secret,
	}
}

// validateDataType validates the value carries the declared type
func (v *Validator) validateDataType(param *Parameter, value types.Value) error {
	if value.Type != param.Type {
		return v.fail(param, value, "must be a %s, got %s", param.Type, value.Type)
	}

	switch param.Type {
	case types.NumberType:
		if _, err := value.AsNumber(); err != nil {
			return v.fail(param, value, "must be a number")
		}
	case types.BooleanType:
		if _, err := value.AsBoolean(); err != nil {
			return v.fail(param, value, "must be a boolean (true/false, yes/no)")
		}
	case types.StringType, types.ChoiceType:
		if _, ok := value.Value.(string); !ok {
			return v.fail(param, value, "must be a string")
		}
	case types.MultiChoiceType:
		if _, ok := value.Value.([]string); !ok {
			return v.fail(param, value, "must be a list of selections")
		}
	default:
		return v.fail(param, value, "unknown data type: %s", param.Type)
	}

	return nil
}

// validateChoices validates choice and multichoice membership
func (v *Validator) validateChoices(param *Parameter, value types.Value) error {
	switch param.Type {
	case types.ChoiceType:
		if !param.HasChoice(value.AsString()) {
			return v.fail(param, value, "must be one of: %s", strings.Join(param.Choices, ", "))
		}

	case types.MultiChoiceType:
		seen := make(map[string]bool)
		for _, item := range value.AsList() {
			if !param.HasChoice(item) {
				return v.fail(param, value, "'%s' is not one of: %s", item, strings.Join(param.Choices, ", "))
			}
			if seen[item] {
				return v.fail(param, value, "'%s' is selected more than once", item)
			}
			seen[item] = true
		}

		minSel, maxSel := SelectionBounds(param)
		count := len(value.AsList())
		if count < minSel {
			return v.fail(param, value, "must select at least %d (got %d)", minSel, count)
		}
		if count > maxSel {
			return v.fail(param, value, "must select at most %d (got %d)", maxSel, count)
		}
	}

	return nil
}

// SelectionBounds returns the effective selection count range of a
// multichoice parameter: min defaults to 0, max to the number of choices
func SelectionBounds(param *Parameter) (int, int) {
	minSel, maxSel := 0, len(param.Choices)
	if r := param.Validation; r != nil {
		if r.MinSelections != nil {
			minSel = *r.MinSelections
		}
		if r.MaxSelections != nil {
			maxSel = *r.MaxSelections
		}
	}
	return minSel, maxSel
}

// validateRules validates the type-specific rules
func (v *Validator) validateRules(param *Parameter, value types.Value) error {
	rules := param.Validation
	if rules == nil {
		return nil
	}

	switch param.Type {
	case types.StringType:
		s := value.AsString()
		length := utf8.RuneCountInString(s)

		if rules.MinLength != nil && length < *rules.MinLength {
			return v.fail(param, value, "must be at least %d characters", *rules.MinLength)
		}
		if rules.MaxLength != nil && length > *rules.MaxLength {
			return v.fail(param, value, "must be at most %d characters", *rules.MaxLength)
		}

		if rules.Pattern != "" {
			re, err := rules.Regexp()
			if err != nil {
				return v.fail(param, value, "invalid pattern: %v", err)
			}
			if !re.MatchString(s) {
				return v.fail(param, value, "must match pattern: %s", rules.Pattern)
			}
		}

		if rules.Format != "" {
			if err := patterns.Validate(s, rules.Format); err != nil {
				return v.fail(param, value, "must match %s format", rules.Format)
			}
		}

	case types.NumberType:
		n, _ := value.AsNumber()
		if rules.Min != nil && n < *rules.Min {
			return v.fail(param, value, "must be >= %s", formatBound(*rules.Min))
		}
		if rules.Max != nil && n > *rules.Max {
			return v.fail(param, value, "must be <= %s", formatBound(*rules.Max))
		}
	}

	return nil
}

func formatBound(f float64) string {
	return types.Value{Type: types.NumberType, Value: f}.AsString()
}

func typeMessage(pt types.ParameterType, err error) string {
	switch pt {
	case types.NumberType:
		return "must be a number"
	case types.BooleanType:
		return "must be a boolean (true/false, yes/no)"
	default:
		return err.Error()
	}
}

// ValidationError represents a parameter validation error
type ValidationError struct {
	Parameter string
	Message   string
	Value     string
	Secret    bool
}

func (e *ValidationError) Error() string {
	value := e.Value
	if e.Secret {
		value = "****"
	}
	return fmt.Sprintf("parameter '%s' validation failed: %s (value: '%s')", e.Parameter, e.Message, value)
}
