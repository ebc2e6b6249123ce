// Package patterns holds the named value formats a string parameter can
// declare with the "format" validation rule.
package patterns

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
)

// Format is a predefined value format
type Format struct {
	Name        string
	Description string
	check       func(string) bool
}

// Check reports whether value conforms to the format
func (f Format) Check(value string) bool {
	return f.check(value)
}

func regexFormat(name, pattern, description string) Format {
	re := regexp.MustCompile(pattern)
	return Format{Name: name, Description: description, check: re.MatchString}
}

var builtinFormats = map[string]Format{
	"semver": {
		Name:        "semver",
		Description: "semantic version (e.g., 1.2.3, v2.0.1-rc.2)",
		check: func(s string) bool {
			_, err := semver.NewVersion(s)
			return err == nil
		},
	},
	"uuid": {
		Name:        "uuid",
		Description: "UUID (e.g., 550e8400-e29b-41d4-a716-446655440000)",
		check: func(s string) bool {
			return uuid.Validate(s) == nil
		},
	},
	"email": regexFormat("email",
		`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`,
		"email address"),
	"url": regexFormat("url",
		`^https?://[^\s/$.?#].[^\s]*$`,
		"HTTP/HTTPS URL"),
	"ipv4": regexFormat("ipv4",
		`^((25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`,
		"IPv4 address (e.g., 192.168.1.1)"),
	"slug": regexFormat("slug",
		`^[a-z0-9]+(?:-[a-z0-9]+)*$`,
		"slug (lowercase, hyphens only, e.g., my-project-name)"),
	"docker_tag": regexFormat("docker_tag",
		`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`,
		"Docker image tag"),
	"git_branch": regexFormat("git_branch",
		`^[a-zA-Z0-9][a-zA-Z0-9._/-]*[a-zA-Z0-9]$`,
		"Git branch name"),
}

// Get returns a format by name
func Get(name string) (Format, bool) {
	f, exists := builtinFormats[name]
	return f, exists
}

// Names returns all format names, sorted
func Names() []string {
	names := make([]string, 0, len(builtinFormats))
	for name := range builtinFormats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate validates a string against a named format
func Validate(value, name string) error {
	f, exists := Get(name)
	if !exists {
		return fmt.Errorf("unknown format: %s", name)
	}

	if !f.Check(value) {
		return fmt.Errorf("value '%s' is not a valid %s", value, f.Description)
	}

	return nil
}
