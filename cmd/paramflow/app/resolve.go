package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phillarmonic/paramflow/internal/config"
	"github.com/phillarmonic/paramflow/internal/logger"
	"github.com/phillarmonic/paramflow/internal/prompt"
	"github.com/phillarmonic/paramflow/internal/resolver"
	"github.com/phillarmonic/paramflow/internal/secrets"
	"github.com/phillarmonic/paramflow/internal/sources"
)

func (a *App) createResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [--<parameter> value]... [--var name=value]...",
		Short: "Resolve parameter values and print them",
		Long: `Resolve every parameter of the schema.

Values are taken, highest precedence first, from parameter switches,
--var entries, .env files (.env, .env.local, .env.<env>, .env.<env>.local),
PARAMFLOW_VAR_<NAME> environment variables and the OS keyring (secret
parameters only). Missing values are asked for in interactive runs, then
defaults apply. Conditional parameters are decided once the parameters
their condition refers to are known.`,
		Args: cobra.NoArgs,
		RunE: a.runResolve,
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&a.vars, "var", nil, "Provide a value (name=value); repeatable")
	flags.StringVarP(&a.envName, "env", "e", "", "Environment selecting .env.<env> files")
	flags.StringArrayVar(&a.envFiles, "env-file", nil, "Additional .env file to load; repeatable")
	flags.BoolVarP(&a.interactive, "interactive", "i", false, "Always prompt for missing values")
	flags.BoolVar(&a.noInteractive, "no-interactive", false, "Never prompt; report missing values")
	flags.BoolVar(&a.askOptional, "prompt-optional", false, "Also prompt for optional parameters")
	flags.StringVarP(&a.output, "output", "o", "json", "Output format (json|yaml|env|table)")
	flags.BoolVar(&a.revealSecrets, "reveal-secrets", false, "Print secret values instead of masking them")
	flags.BoolVar(&a.noKeyring, "no-keyring", false, "Do not read secret values from the OS keyring")
	cmd.MarkFlagsMutuallyExclusive("interactive", "no-interactive")

	a.bind("environment", flags.Lookup("env"))
	a.bind("prompt.optional", flags.Lookup("prompt-optional"))

	return cmd
}

func (a *App) runResolve(cmd *cobra.Command, _ []string) error {
	if err := checkOutputFormat(a.output); err != nil {
		return err
	}

	doc, err := a.loadDocument()
	if err != nil {
		return err
	}

	vars, err := sources.ParseVars(a.vars)
	if err != nil {
		return err
	}

	envFiles := append(append([]string{}, a.cfg.EnvFiles...), a.envFiles...)
	loaded, err := sources.NewEnvLoader(".", a.cfg.Environment, envFiles, logger.NewStyledLogger("env")).Load()
	if err != nil {
		return err
	}

	var store secrets.Store
	if a.cfg.Keyring.Enabled && !a.noKeyring {
		store = a.keyring()
	}

	provided := sources.NewBuilder(doc.Set, store, logger.NewStyledLogger("sources")).Build(sources.Inputs{
		Flags:    a.flagValues(cmd),
		Vars:     vars,
		EnvFiles: loaded.Vars,
		Environ:  a.environ(),
		Workflow: secrets.WorkflowKey(doc.WorkflowName()),
	})

	interactive, err := a.interactiveMode()
	if err != nil {
		return err
	}

	opts := append(a.cfg.ResolverOptions(),
		resolver.WithLogger(logger.NewStyledLogger("resolve")),
		resolver.WithPrompter(a.promptAdapter()),
	)

	result, err := resolver.Resolve(cmd.Context(), doc.Set, provided.Values, interactive, opts...)
	if err != nil {
		return err
	}

	for name := range result.Extra {
		logger.Info("extra variable passed through", "param", name)
	}

	return writeResult(a.out, a.output, doc.Set, result, provided, a.revealSecrets)
}

// interactiveMode applies --interactive/--no-interactive over the
// configured mode
func (a *App) interactiveMode() (bool, error) {
	mode := a.cfg.Interactive
	switch {
	case a.interactive:
		mode = config.InteractiveAlways
	case a.noInteractive:
		mode = config.InteractiveNever
	}

	cfg := *a.cfg
	cfg.Interactive = mode
	if err := cfg.Validate(); err != nil {
		return false, err
	}
	return cfg.InteractiveFor(a.isTerminal()), nil
}

func (a *App) promptAdapter() prompt.Adapter {
	if a.prompter != nil {
		return a.prompter
	}
	return prompt.NewTerminal(a.in, a.errOut)
}

func checkOutputFormat(format string) error {
	switch format {
	case "json", "yaml", "env", "table":
		return nil
	default:
		return fmt.Errorf("unknown output format '%s' (use json, yaml, env or table)", format)
	}
}
