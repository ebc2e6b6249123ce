package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/phillarmonic/paramflow/internal/domain/parameter"
	"github.com/phillarmonic/paramflow/internal/sources"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	groupStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	flagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	noteStyle  = lipgloss.NewStyle().Faint(true)
)

func (a *App) createDescribeCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Show parameter help grouped as in prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := a.loadDocument()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(doc.WorkflowName()))
			if doc.Description != "" {
				fmt.Fprintln(out, doc.Description)
			}
			fmt.Fprintln(out)

			describeParameters(out, doc.Set)

			if strings.TrimSpace(doc.Body) == "" {
				return nil
			}
			fmt.Fprintln(out)
			if plain {
				fmt.Fprint(out, doc.Body)
				return nil
			}
			return renderMarkdown(out, doc.Body)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print the markdown body without rendering")
	return cmd
}

// describeParameters prints the parameters group by group
func describeParameters(w io.Writer, set *parameter.Set) {
	order := parameter.GroupOrder(set)
	for i, gm := range order {
		if i > 0 {
			fmt.Fprintln(w)
		}

		switch {
		case gm.Group.Name != "":
			fmt.Fprintln(w, groupStyle.Render(gm.Group.Name))
			if gm.Group.Description != "" {
				fmt.Fprintln(w, noteStyle.Render(gm.Group.Description))
			}
		case len(order) > 1:
			fmt.Fprintln(w, groupStyle.Render("Other parameters"))
		default:
			fmt.Fprintln(w, groupStyle.Render("Parameters"))
		}

		for _, p := range gm.Parameters {
			describeParameter(w, p)
		}
	}
}

func describeParameter(w io.Writer, p *parameter.Parameter) {
	attrs := []string{p.Type.String()}
	if p.Required {
		attrs = append(attrs, "required")
	} else {
		attrs = append(attrs, "optional")
	}
	if p.Secret {
		attrs = append(attrs, "secret")
	}
	if p.HasDefault && !p.Secret {
		attrs = append(attrs, "default: "+p.Default.AsString())
	}

	fmt.Fprintf(w, "  %s  %s\n", flagStyle.Render("--"+sources.FlagName(p.Name)), noteStyle.Render(strings.Join(attrs, ", ")))
	if p.Description != "" {
		fmt.Fprintf(w, "      %s\n", p.Description)
	}
	if len(p.Choices) > 0 {
		fmt.Fprintf(w, "      choices: %s\n", strings.Join(p.Choices, ", "))
	}
	if p.Condition != nil {
		fmt.Fprintf(w, "      only when %s", p.Condition.Expression)
		if p.Condition.Description != "" {
			fmt.Fprintf(w, " (%s)", p.Condition.Description)
		}
		fmt.Fprintln(w)
	}
}

func renderMarkdown(w io.Writer, body string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	rendered, err := renderer.Render(body)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = fmt.Fprint(w, rendered)
	return err
}
