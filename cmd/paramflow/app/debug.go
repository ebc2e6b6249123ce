package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phillarmonic/paramflow/internal/condition"
	"github.com/phillarmonic/paramflow/internal/debug"
	"github.com/phillarmonic/paramflow/internal/domain/parameter"
	"github.com/phillarmonic/paramflow/internal/sources"
	"github.com/phillarmonic/paramflow/internal/types"
)

func (a *App) createDebugCommand() *cobra.Command {
	var (
		param  string
		sets   []string
		tokens bool
		tree   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "debug [expression]",
		Short: "Show how a condition is lexed, parsed and evaluated",
		Long: `Debug a condition expression, given directly or taken from a schema
parameter with --param. With --set name=value the condition is evaluated;
names without a value are treated as still pending.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var (
				input string
				set   *parameter.Set
			)
			if param != "" || len(sets) > 0 {
				doc, err := a.loadDocument()
				if err != nil {
					return err
				}
				set = doc.Set
			}

			switch {
			case param != "":
				p, ok := set.Get(param)
				if !ok {
					return fmt.Errorf("unknown parameter '%s'", param)
				}
				if p.Condition == nil {
					return fmt.Errorf("parameter '%s' has no condition", param)
				}
				input = p.Condition.Expression
			case len(args) == 1:
				input = args[0]
			default:
				return fmt.Errorf("give an expression or --param")
			}

			if !tokens && !tree && !asJSON {
				expr, err := debug.DebugFull(out, input)
				if err != nil {
					return nil
				}
				return a.debugEval(cmd, expr, set, sets)
			}

			if tokens {
				debug.DebugTokens(out, input)
			}
			if !tree && !asJSON && len(sets) == 0 {
				return nil
			}

			expr, err := condition.Parse(input)
			if err != nil {
				debug.DebugParseError(out, err)
				return nil
			}
			if tree {
				debug.DebugAST(out, expr)
			}
			if asJSON {
				if err := debug.DebugJSON(out, expr); err != nil {
					return err
				}
			}
			return a.debugEval(cmd, expr, set, sets)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&param, "param", "", "Debug the condition of this schema parameter")
	flags.StringArrayVar(&sets, "set", nil, "Value for evaluation (name=value); repeatable")
	flags.BoolVar(&tokens, "tokens", false, "Show lexer tokens")
	flags.BoolVar(&tree, "ast", false, "Show the syntax tree")
	flags.BoolVar(&asJSON, "json", false, "Show the syntax tree as JSON")

	return cmd
}

// debugEval evaluates expr with the --set values, typed by the schema
func (a *App) debugEval(cmd *cobra.Command, expr condition.Expr, set *parameter.Set, sets []string) error {
	if len(sets) == 0 {
		return nil
	}

	raw, err := sources.ParseVars(sets)
	if err != nil {
		return err
	}

	values := make(types.Values, len(raw))
	for name, s := range raw {
		p, ok := set.Get(name)
		if !ok {
			return fmt.Errorf("unknown parameter '%s'", name)
		}
		v, err := types.NewValue(p.Type, s)
		if err != nil {
			return fmt.Errorf("parameter '%s': %w", name, err)
		}
		values[name] = v
	}

	debug.DebugEval(cmd.OutOrStdout(), expr, condition.Context{Values: values})
	return nil
}
