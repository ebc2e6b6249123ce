package types

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ParameterType represents the declared type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BooleanType
	NumberType
	ChoiceType
	MultiChoiceType
)

// String returns the string representation of the parameter type
func (pt ParameterType) String() string {
	switch pt {
	case StringType:
		return "string"
	case BooleanType:
		return "boolean"
	case NumberType:
		return "number"
	case ChoiceType:
		return "choice"
	case MultiChoiceType:
		return "multichoice"
	default:
		return "unknown"
	}
}

// IsChoice reports whether values of this type must come from a fixed choice list
func (pt ParameterType) IsChoice() bool {
	return pt == ChoiceType || pt == MultiChoiceType
}

// IsTextual reports whether values of this type behave as strings in conditions
func (pt ParameterType) IsTextual() bool {
	return pt == StringType || pt == ChoiceType
}

// ParseParameterType parses a string into a ParameterType
func ParseParameterType(s string) (ParameterType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "str", "text":
		return StringType, nil
	case "boolean", "bool":
		return BooleanType, nil
	case "number", "int", "integer", "float":
		return NumberType, nil
	case "choice", "enum", "select":
		return ChoiceType, nil
	case "multichoice", "multi_choice", "multi-choice", "multiselect", "multi_select":
		return MultiChoiceType, nil
	default:
		return StringType, fmt.Errorf("unknown parameter type: %s", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (pt ParameterType) MarshalText() ([]byte, error) {
	return []byte(pt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (pt *ParameterType) UnmarshalText(text []byte) error {
	parsed, err := ParseParameterType(string(text))
	if err != nil {
		return err
	}
	*pt = parsed
	return nil
}

// Value represents a typed value. Values are immutable once built; use
// Clone before handing one out when the list payload must not be shared.
type Value struct {
	Type  ParameterType
	Raw   string // Original (or canonical) string value
	Value any    // string, bool, float64 or []string
}

// Clone returns a copy that shares no list storage with v
func (v Value) Clone() Value {
	if list, ok := v.Value.([]string); ok {
		items := make([]string, len(list))
		copy(items, list)
		v.Value = items
	}
	return v
}

// NewValue parses a raw string into a typed value
func NewValue(paramType ParameterType, raw string) (Value, error) {
	v := Value{
		Type: paramType,
		Raw:  raw,
	}

	var err error
	switch paramType {
	case StringType, ChoiceType:
		v.Value = raw
	case NumberType:
		v.Value, err = parseNumber(raw)
	case BooleanType:
		v.Value, err = parseBoolean(raw)
	case MultiChoiceType:
		v.Value = parseList(raw)
	default:
		return Value{}, fmt.Errorf("unsupported parameter type: %s", paramType)
	}
	if err != nil {
		return Value{}, err
	}

	return v, nil
}

// FromAny converts an already-typed Go value (from YAML, HCL, JSON or a caller)
// into a Value of the requested type
func FromAny(paramType ParameterType, in any) (Value, error) {
	switch x := in.(type) {
	case nil:
		return Value{}, fmt.Errorf("missing value")
	case Value:
		if x.Type == paramType {
			return x.Clone(), nil
		}
		return NewValue(paramType, x.AsString())
	case string:
		return NewValue(paramType, x)
	case bool:
		if paramType != BooleanType {
			return Value{}, fmt.Errorf("expected %s, got boolean %t", paramType, x)
		}
		return Value{Type: BooleanType, Raw: strconv.FormatBool(x), Value: x}, nil
	case []string:
		if paramType != MultiChoiceType {
			return Value{}, fmt.Errorf("expected %s, got a list", paramType)
		}
		items := make([]string, len(x))
		copy(items, x)
		return Value{Type: MultiChoiceType, Raw: strings.Join(items, ","), Value: items}, nil
	case []any:
		if paramType != MultiChoiceType {
			return Value{}, fmt.Errorf("expected %s, got a list", paramType)
		}
		items := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return Value{}, fmt.Errorf("list items must be strings, got %T", item)
			}
			items = append(items, s)
		}
		return Value{Type: MultiChoiceType, Raw: strings.Join(items, ","), Value: items}, nil
	}

	if f, ok := toFloat(in); ok {
		if paramType != NumberType {
			return Value{}, fmt.Errorf("expected %s, got number %v", paramType, in)
		}
		return Value{Type: NumberType, Raw: formatNumber(f), Value: f}, nil
	}

	return Value{}, fmt.Errorf("unsupported value of type %T", in)
}

// String returns the string representation of the value
func (v Value) String() string {
	return v.Raw
}

// AsString returns the canonical string form of the value
func (v Value) AsString() string {
	switch v.Type {
	case StringType, ChoiceType:
		s, _ := v.Value.(string)
		return s
	case NumberType:
		if f, ok := v.Value.(float64); ok {
			return formatNumber(f)
		}
		return v.Raw
	case BooleanType:
		if b, ok := v.Value.(bool); ok {
			return strconv.FormatBool(b)
		}
		return v.Raw
	case MultiChoiceType:
		return strings.Join(v.AsList(), ",")
	default:
		return v.Raw
	}
}

// AsNumber returns the value as a number
func (v Value) AsNumber() (float64, error) {
	if f, ok := v.Value.(float64); ok && v.Type == NumberType {
		return f, nil
	}
	return 0, fmt.Errorf("cannot use %s value as number", v.Type)
}

// AsBoolean returns the value as a boolean
func (v Value) AsBoolean() (bool, error) {
	if b, ok := v.Value.(bool); ok && v.Type == BooleanType {
		return b, nil
	}
	return false, fmt.Errorf("cannot use %s value as boolean", v.Type)
}

// AsList returns the selected items of a multi-choice value, or the single
// string value wrapped in a list for the other types
func (v Value) AsList() []string {
	if list, ok := v.Value.([]string); ok {
		out := make([]string, len(list))
		copy(out, list)
		return out
	}
	return []string{v.AsString()}
}

// Interface returns the plain Go value, suitable for encoding
func (v Value) Interface() any {
	if v.Type == MultiChoiceType {
		return v.AsList()
	}
	return v.Value
}

// Equal reports whether two values have the same type and content
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	if v.Type == MultiChoiceType {
		a, b := v.AsList(), other.AsList()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}
	return v.AsString() == other.AsString()
}

// Values is a name to value mapping, used as the resolution context
type Values map[string]Value

// Clone returns a copy sharing no list storage with vs
func (vs Values) Clone() Values {
	out := make(Values, len(vs))
	for k, v := range vs {
		out[k] = v.Clone()
	}
	return out
}

// Names returns the sorted keys
func (vs Values) Names() []string {
	names := make([]string, 0, len(vs))
	for k := range vs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Interface converts to a plain map for encoding
func (vs Values) Interface() map[string]any {
	out := make(map[string]any, len(vs))
	for k, v := range vs {
		out[k] = v.Interface()
	}
	return out
}

// Equal reports whether both maps hold equal values under the same names
func (vs Values) Equal(other Values) bool {
	if len(vs) != len(other) {
		return false
	}
	for k, v := range vs {
		o, ok := other[k]
		if !ok || !v.Equal(o) {
			return false
		}
	}
	return true
}

// parseNumber parses a string into a float64
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number: %s", s)
	}

	return f, nil
}

// parseBoolean parses the canonical boolean spellings
func parseBoolean(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean: %q (use true/false or yes/no)", s)
	}
}

// parseList parses a comma separated string into a list of strings
func parseList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func toFloat(in any) (float64, bool) {
	switch n := in.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
