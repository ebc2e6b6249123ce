package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/phillarmonic/paramflow/internal/config"
	"github.com/phillarmonic/paramflow/internal/domain/parameter"
	"github.com/phillarmonic/paramflow/internal/logger"
	"github.com/phillarmonic/paramflow/internal/sources"
	"github.com/phillarmonic/paramflow/internal/spec"
	"github.com/phillarmonic/paramflow/internal/types"
)

// peekSchema finds the schema path before cobra parses the command line.
// Unknown switches are skipped; the real parse reports them.
func peekSchema(args []string) (schema, settings string) {
	fs := pflag.NewFlagSet("peek", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	fs.StringVarP(&schema, "file", "f", "", "")
	fs.StringVar(&settings, "config", "", "")
	fs.BoolP("help", "h", false, "")

	_ = fs.Parse(args)
	return schema, settings
}

// registerParameterFlags adds one switch per schema parameter to the
// resolve command. When the schema fails to load, unknown switches are
// tolerated so resolve can report the load failure instead.
func (a *App) registerParameterFlags(args []string) {
	schema, settings := peekSchema(args)
	if schema == "" {
		v := config.New()
		if cfg, err := config.Load(v, settings); err == nil {
			schema = cfg.Schema
		}
	}

	doc, err := spec.NewLoader(".").Load(schema)
	if err != nil {
		a.resolveCmd.FParseErrWhitelist.UnknownFlags = true
		return
	}
	a.addParameterFlags(a.resolveCmd, doc.Set)
}

func (a *App) addParameterFlags(cmd *cobra.Command, set *parameter.Set) {
	flags := cmd.Flags()
	for _, p := range set.Parameters() {
		name := sources.FlagName(p.Name)
		if flags.Lookup(name) != nil || a.rootCmd.PersistentFlags().Lookup(name) != nil || name == "help" {
			logger.Debug("parameter switch shadowed by a built-in flag, use --var", "param", p.Name, "flag", name)
			continue
		}

		flags.String(name, "", flagUsage(p))
		if p.Type == types.BooleanType {
			flags.Lookup(name).NoOptDefVal = "true"
		}
		a.paramFlags[p.Name] = name
	}
}

// flagValues returns the parameter switches given on the command line
func (a *App) flagValues(cmd *cobra.Command) map[string]string {
	values := make(map[string]string)
	for param, name := range a.paramFlags {
		if !cmd.Flags().Changed(name) {
			continue
		}
		value, err := cmd.Flags().GetString(name)
		if err == nil {
			values[param] = value
		}
	}
	return values
}

func flagUsage(p *parameter.Parameter) string {
	var parts []string
	if p.Description != "" {
		parts = append(parts, p.Description)
	}

	kind := p.Type.String()
	if len(p.Choices) > 0 {
		kind = fmt.Sprintf("%s: %s", kind, strings.Join(p.Choices, "|"))
	}
	parts = append(parts, "("+kind+")")

	if p.Required {
		parts = append(parts, "[required]")
	}
	if p.HasDefault && !p.Secret {
		parts = append(parts, fmt.Sprintf("[default: %s]", p.Default.AsString()))
	}
	if p.Condition != nil {
		parts = append(parts, fmt.Sprintf("[when %s]", p.Condition.Expression))
	}
	return strings.Join(parts, " ")
}
