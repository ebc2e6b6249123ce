// Package secrets stores values of secret parameters in the OS keyring
// (macOS Keychain, Windows Credential Manager, Secret Service on Linux).
package secrets

import (
	"errors"
	"regexp"
	"strings"

	"github.com/zalando/go-keyring"
)

// DefaultService is the keyring service name entries are filed under
const DefaultService = "paramflow"

// Store reads and writes secret parameter values. Keys are
// "<workflow>/<parameter>".
type Store interface {
	Get(workflow, param string) (string, error)
	Set(workflow, param, value string) error
	Delete(workflow, param string) error
}

// Keyring is a Store backed by the OS keyring
type Keyring struct {
	service string
}

var validKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// NewKeyring creates a keyring store for service. An empty service uses
// DefaultService.
func NewKeyring(service string) *Keyring {
	if service == "" {
		service = DefaultService
	}
	return &Keyring{service: service}
}

// Service returns the keyring service name
func (k *Keyring) Service() string {
	return k.service
}

// Get retrieves a secret value
func (k *Keyring) Get(workflow, param string) (string, error) {
	key, err := formatKey(workflow, param)
	if err != nil {
		return "", newSecretError("get", workflow, param, err)
	}

	value, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", newSecretError("get", workflow, param, ErrSecretNotFound)
		}
		return "", newSecretError("get", workflow, param, err)
	}
	return value, nil
}

// Set stores a secret value
func (k *Keyring) Set(workflow, param, value string) error {
	key, err := formatKey(workflow, param)
	if err != nil {
		return newSecretError("set", workflow, param, err)
	}
	if err := keyring.Set(k.service, key, value); err != nil {
		return newSecretError("set", workflow, param, err)
	}
	return nil
}

// Delete removes a secret. Deleting a missing secret is not an error.
func (k *Keyring) Delete(workflow, param string) error {
	key, err := formatKey(workflow, param)
	if err != nil {
		return newSecretError("delete", workflow, param, err)
	}
	if err := keyring.Delete(k.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return newSecretError("delete", workflow, param, err)
	}
	return nil
}

// formatKey creates the composite key "workflow/param"
func formatKey(workflow, param string) (string, error) {
	if !validKeyPattern.MatchString(workflow) || !validKeyPattern.MatchString(param) {
		return "", ErrInvalidKey
	}
	return workflow + "/" + param, nil
}

// WorkflowKey turns a free-form workflow name into a key segment
func WorkflowKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	key := strings.Trim(b.String(), "-.")
	if key == "" {
		return "default"
	}
	return key
}

// IsNotFound reports whether err means the secret does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSecretNotFound)
}
