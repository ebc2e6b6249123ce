package secrets

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrInvalidKey     = errors.New("invalid secret key")
	ErrNotSecret      = errors.New("parameter is not marked secret")
)

// SecretError wraps an error with the workflow and parameter it concerns
type SecretError struct {
	Workflow  string
	Parameter string
	Op        string
	Err       error
}

func (e *SecretError) Error() string {
	if e.Workflow != "" && e.Parameter != "" {
		return fmt.Sprintf("secret operation '%s' failed for %s/%s: %v",
			e.Op, e.Workflow, e.Parameter, e.Err)
	}
	return fmt.Sprintf("secret operation '%s' failed: %v", e.Op, e.Err)
}

func (e *SecretError) Unwrap() error {
	return e.Err
}

func newSecretError(op, workflow, param string, err error) *SecretError {
	return &SecretError{
		Workflow:  workflow,
		Parameter: param,
		Op:        op,
		Err:       err,
	}
}
