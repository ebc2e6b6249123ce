package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/phillarmonic/paramflow/internal/domain/parameter"
	"github.com/phillarmonic/paramflow/internal/resolver"
	"github.com/phillarmonic/paramflow/internal/sources"
)

const masked = "****"

var (
	nameStyle   = lipgloss.NewStyle().Bold(true)
	originStyle = lipgloss.NewStyle().Faint(true)
	unsetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
)

// writeResult prints the resolved values in the requested format. Secret
// values are masked unless reveal is set.
func writeResult(w io.Writer, format string, set *parameter.Set, result *resolver.Result, provided *sources.Provided, reveal bool) error {
	hidden := func(name string) bool {
		p, ok := set.Get(name)
		return ok && p.Secret && !reveal
	}

	values := make(map[string]any, len(result.Values))
	for name, v := range result.Values {
		if hidden(name) {
			values[name] = masked
			continue
		}
		values[name] = v.Interface()
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case "yaml":
		data, err := yaml.Marshal(values)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		_, err = w.Write(data)
		return err

	case "env":
		env := make(map[string]string, len(values))
		for name, v := range result.Values {
			key := strings.ToUpper(sources.Normalize(name))
			if hidden(name) {
				env[key] = masked
				continue
			}
			env[key] = v.AsString()
		}
		content, err := godotenv.Marshal(env)
		if err != nil {
			return fmt.Errorf("failed to encode env: %w", err)
		}
		_, err = fmt.Fprintln(w, content)
		return err

	case "table":
		return writeTable(w, set, result, provided, hidden)
	}

	return checkOutputFormat(format)
}

func writeTable(w io.Writer, set *parameter.Set, result *resolver.Result, provided *sources.Provided, hidden func(string) bool) error {
	excluded := make(map[string]bool, len(result.Excluded))
	for _, name := range result.Excluded {
		excluded[name] = true
	}

	width := 0
	for _, name := range set.Names() {
		if len(name) > width {
			width = len(name)
		}
	}

	for _, p := range set.Parameters() {
		label := nameStyle.Render(fmt.Sprintf("%-*s", width, p.Name))

		value, ok := result.Values[p.Name]
		if !ok {
			reason := "(unset)"
			if excluded[p.Name] {
				reason = "(excluded: " + p.Condition.Expression + " is false)"
			}
			fmt.Fprintf(w, "%s  %s\n", label, unsetStyle.Render(reason))
			continue
		}

		origin := string(result.Origins[p.Name])
		if result.Origins[p.Name] == resolver.OriginProvided && provided != nil {
			if src, ok := provided.Origins[p.Name]; ok {
				origin = string(src)
			}
		}

		text := value.AsString()
		if hidden(p.Name) {
			text = masked
		}
		fmt.Fprintf(w, "%s  %s  %s\n", label, text, originStyle.Render(origin))
	}
	return nil
}
