package resolver

import (
	"fmt"
	"strings"
)

// RequiredParameterMissing is reported for an active, required parameter
// that no source produced a value for
type RequiredParameterMissing struct {
	Parameter string
	Condition string // expression that made the parameter active, if any
}

func (e *RequiredParameterMissing) Error() string {
	if e.Condition != "" {
		return fmt.Sprintf("required parameter '%s' is missing (required because %s)", e.Parameter, e.Condition)
	}
	return fmt.Sprintf("required parameter '%s' is missing", e.Parameter)
}

// UnresolvableDependencyError lists parameters whose conditions wait on each
// other with no way to decide any of them
type UnresolvableDependencyError struct {
	Parameters []string
}

func (e *UnresolvableDependencyError) Error() string {
	return fmt.Sprintf("unresolvable dependency: the conditions of %s wait on each other; provide a valid value for one of them",
		quoteList(e.Parameters))
}

// ConditionEvaluationError wraps a type error hit while evaluating a
// parameter's condition
type ConditionEvaluationError struct {
	Parameter string
	Err       error
}

func (e *ConditionEvaluationError) Error() string {
	return fmt.Sprintf("parameter '%s': %v", e.Parameter, e.Err)
}

func (e *ConditionEvaluationError) Unwrap() error {
	return e.Err
}

// PromptError is a failure of the prompt adapter itself
type PromptError struct {
	Parameter string
	Err       error
}

func (e *PromptError) Error() string {
	return fmt.Sprintf("prompt for parameter '%s' failed: %v", e.Parameter, e.Err)
}

func (e *PromptError) Unwrap() error {
	return e.Err
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}
