package app

import (
	"github.com/spf13/cobra"

	"github.com/phillarmonic/paramflow/internal/config"
	"github.com/phillarmonic/paramflow/internal/spec"
)

// completeSecretParameters completes the names of secret parameters
func (a *App) completeSecretParameters(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	schema, _ := cmd.Flags().GetString("file")
	if schema == "" {
		if cfg, err := config.Load(config.New(), a.settingsFile); err == nil {
			schema = cfg.Schema
		}
	}

	doc, err := spec.NewLoader(".").Load(schema)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, p := range doc.Set.Parameters() {
		if p.Secret {
			completions = append(completions, p.Name+"\t"+p.Description)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// createCompletionCommand creates the completion subcommand
func (a *App) createCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `Generate shell completion script for paramflow.

To load completions:

Bash:

  $ source <(paramflow completion bash)

Zsh:

  $ paramflow completion zsh > "${fpath[1]}/_paramflow"

Fish:

  $ paramflow completion fish | source

PowerShell:

  PS> paramflow completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return a.rootCmd.GenBashCompletion(out)
			case "zsh":
				return a.rootCmd.GenZshCompletion(out)
			case "fish":
				return a.rootCmd.GenFishCompletion(out, true)
			default:
				return a.rootCmd.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
