package app

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/phillarmonic/paramflow/internal/domain/parameter"
	"github.com/phillarmonic/paramflow/internal/secrets"
	"github.com/phillarmonic/paramflow/internal/spec"
)

func (a *App) createSecretCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage keyring values of secret parameters",
		Long: `Store or remove values of parameters marked 'secret: true' in the OS
keyring. Stored values are used by resolve when no other source provides one.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:               "set <parameter> [value]",
		Short:             "Store a secret value (read from stdin when omitted)",
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: a.completeSecretParameters,
		RunE:              a.runSecretSet,
	})
	cmd.AddCommand(&cobra.Command{
		Use:               "delete <parameter>",
		Short:             "Remove a stored secret value",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.completeSecretParameters,
		RunE:              a.runSecretDelete,
	})

	return cmd
}

func (a *App) runSecretSet(cmd *cobra.Command, args []string) error {
	doc, p, err := a.secretParameter(args[0])
	if err != nil {
		return err
	}

	var value string
	if len(args) == 2 {
		value = args[1]
	} else if value, err = a.readSecret(p); err != nil {
		return err
	}

	if _, err := parameter.NewValidator().Coerce(p, value); err != nil {
		return err
	}

	workflow := secrets.WorkflowKey(doc.WorkflowName())
	if err := a.keyring().Set(workflow, p.Name, value); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s stored %s/%s\n", okStyle.Render("✓"), workflow, p.Name)
	return nil
}

func (a *App) runSecretDelete(cmd *cobra.Command, args []string) error {
	doc, p, err := a.secretParameter(args[0])
	if err != nil {
		return err
	}

	workflow := secrets.WorkflowKey(doc.WorkflowName())
	if err := a.keyring().Delete(workflow, p.Name); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s removed %s/%s\n", okStyle.Render("✓"), workflow, p.Name)
	return nil
}

func (a *App) secretParameter(name string) (*spec.Document, *parameter.Parameter, error) {
	doc, err := a.loadDocument()
	if err != nil {
		return nil, nil, err
	}

	p, ok := doc.Set.Get(name)
	if !ok {
		return nil, nil, fmt.Errorf("unknown parameter '%s'", name)
	}
	if !p.Secret {
		return nil, nil, &secrets.SecretError{Parameter: name, Op: "set", Err: secrets.ErrNotSecret}
	}
	return doc, p, nil
}

// readSecret reads the value with hidden input on a terminal, or the first
// line of stdin otherwise
func (a *App) readSecret(p *parameter.Parameter) (string, error) {
	if a.isTerminal() {
		fmt.Fprintf(a.errOut, "%s: ", p.Name)
		data, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(a.errOut)
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return string(data), nil
	}

	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read secret from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
