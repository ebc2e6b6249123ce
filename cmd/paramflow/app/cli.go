package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/phillarmonic/paramflow/internal/config"
	perrors "github.com/phillarmonic/paramflow/internal/errors"
	"github.com/phillarmonic/paramflow/internal/logger"
	"github.com/phillarmonic/paramflow/internal/prompt"
	"github.com/phillarmonic/paramflow/internal/secrets"
	"github.com/phillarmonic/paramflow/internal/spec"
)

// App represents the CLI application
type App struct {
	version string
	commit  string
	date    string

	rootCmd    *cobra.Command
	resolveCmd *cobra.Command

	v   *viper.Viper
	cfg *config.Config

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// overridable collaborators
	store      secrets.Store
	prompter   prompt.Adapter
	isTerminal func() bool
	environ    func() []string

	// Global flags
	schemaFile   string
	settingsFile string
	logLevel     string
	logFile      string

	// resolve flags
	vars          []string
	envName       string
	envFiles      []string
	interactive   bool
	noInteractive bool
	askOptional   bool
	output        string
	revealSecrets bool
	noKeyring     bool

	// per-parameter switches registered from the schema, by parameter name
	paramFlags map[string]string
}

// NewApp creates a new CLI application
func NewApp(version, commit, date string) *App {
	a := &App{
		version:    version,
		commit:     commit,
		date:       date,
		v:          config.New(),
		in:         os.Stdin,
		out:        os.Stdout,
		errOut:     os.Stderr,
		isTerminal: func() bool { return prompt.IsTerminal(os.Stdin) },
		environ:    os.Environ,
		paramFlags: make(map[string]string),
	}

	a.rootCmd = &cobra.Command{
		Use:   "paramflow",
		Short: "Resolve workflow parameters from flags, files, prompts and defaults",
		Long: `paramflow resolves the parameters of a workflow.

A schema declares typed parameters with defaults, validation rules and
conditions on other parameters. paramflow merges values from switches,
--var entries, .env files and the OS keyring, asks for what is missing
when running in a terminal, and prints the final set or every problem found.

Examples:
  paramflow resolve --deploy-env prod          # one switch per parameter
  paramflow resolve --var replicas=3 -o env    # print KEY=value lines
  paramflow check -f workflow.md               # validate a schema
  paramflow describe                           # parameter help by group`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	a.setupFlags()
	a.setupCommands()

	return a
}

// Execute runs the CLI with args. Parameter switches are derived from the
// schema named by --file (or the default discovery) before parsing.
func (a *App) Execute(args []string) error {
	a.rootCmd.SetArgs(args)
	a.rootCmd.SetIn(a.in)
	a.rootCmd.SetOut(a.out)
	a.rootCmd.SetErr(a.errOut)

	a.registerParameterFlags(args)

	return a.rootCmd.Execute()
}

// setupFlags sets up the global flags and binds them to settings keys
func (a *App) setupFlags() {
	flags := a.rootCmd.PersistentFlags()

	flags.StringVarP(&a.schemaFile, "file", "f", "", "Schema file (default: paramflow.yml, workflow.md, paramflow.hcl, ...)")
	flags.StringVar(&a.settingsFile, "config", "", "Settings file (default: .paramflow.yaml in the working directory or $HOME)")
	flags.StringVar(&a.logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: warn]")
	flags.StringVar(&a.logFile, "log-file", "", "Write logs to file instead of stderr")

	a.bind("schema", flags.Lookup("file"))
	a.bind("log.level", flags.Lookup("log-level"))
	a.bind("log.file", flags.Lookup("log-file"))
}

func (a *App) bind(key string, flag *pflag.Flag) {
	cobra.CheckErr(a.v.BindPFlag(key, flag))
}

// setupCommands sets up subcommands
func (a *App) setupCommands() {
	a.resolveCmd = a.createResolveCommand()
	a.rootCmd.AddCommand(a.resolveCmd)
	a.rootCmd.AddCommand(a.createCheckCommand())
	a.rootCmd.AddCommand(a.createDescribeCommand())
	a.rootCmd.AddCommand(a.createSecretCommand())
	a.rootCmd.AddCommand(a.createDebugCommand())
	a.rootCmd.AddCommand(a.createVersionCommand())
	a.rootCmd.AddCommand(a.createCompletionCommand())
}

// setup loads settings and configures logging before any command runs
func (a *App) setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.settingsFile)
	if err != nil {
		return err
	}
	if err := logger.Configure(cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	a.cfg = cfg
	return nil
}

// loadDocument loads the schema selected by --file, settings or discovery
func (a *App) loadDocument() (*spec.Document, error) {
	return spec.NewLoader(".").Load(a.cfg.Schema)
}

// keyring returns the secret store, or nil when lookups are disabled
func (a *App) keyring() secrets.Store {
	if a.store != nil {
		return a.store
	}
	return secrets.NewKeyring(a.cfg.Keyring.Service)
}

// ReportError prints err, expanding error lists into a styled report
func ReportError(w io.Writer, err error) {
	var list *perrors.List
	if errors.As(err, &list) {
		fmt.Fprint(w, list.Format())
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
