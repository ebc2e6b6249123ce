package sources

import (
	"fmt"
	"strings"

	"github.com/phillarmonic/paramflow/internal/errors"
)

// ParseVars parses repeated `--var name=value` switches. Later entries for
// the same name win. Every malformed entry is reported.
func ParseVars(entries []string) (map[string]string, error) {
	vars := make(map[string]string, len(entries))
	el := errors.NewList("Invalid --var values")

	for _, entry := range entries {
		name, value, found := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		switch {
		case !found:
			el.Add(fmt.Errorf("invalid variable '%s': expected name=value", entry))
		case name == "":
			el.Add(fmt.Errorf("invalid variable '%s': empty name", entry))
		default:
			vars[name] = value
		}
	}

	if el.HasErrors() {
		return nil, el
	}
	return vars, nil
}

// Normalize maps a parameter, flag or environment key to a comparable form:
// lower case with '-' and '.' folded to '_'
func Normalize(name string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(strings.ToLower(strings.TrimSpace(name)))
}

// FlagName derives the command-line switch of a parameter: deploy_env
// becomes deploy-env
func FlagName(param string) string {
	return strings.NewReplacer("_", "-", ".", "-").Replace(strings.ToLower(param))
}
