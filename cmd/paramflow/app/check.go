package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/phillarmonic/paramflow/internal/logger"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func (a *App) createCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate a schema",
		Long: `Run every load-time check on the schema: names, types, choices,
validation rules, conditions and defaults. All problems are reported at once.

Condition cycles are warnings: a provided value for one of the parameters in
the cycle lets resolution continue.`,
		Args: cobra.NoArgs,
		RunE: a.runCheck,
	}
}

func (a *App) runCheck(cmd *cobra.Command, _ []string) error {
	doc, err := a.loadDocument()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	set := doc.Set

	fmt.Fprintf(out, "%s %s: %d parameters, %d groups\n",
		okStyle.Render("✓"), doc.Path, set.Len(), len(set.Groups()))

	for _, cycle := range set.Cycles() {
		path := strings.Join(cycle, " -> ") + " -> " + cycle[0]
		logger.Warn("condition cycle", "params", strings.Join(cycle, ","))
		fmt.Fprintf(out, "%s condition cycle %s: provide one of these values to resolve it\n",
			warnStyle.Render("!"), path)
	}

	for i, level := range set.Levels() {
		logger.Debug("dependency level", "level", i, "params", strings.Join(level, ","))
	}

	return nil
}
