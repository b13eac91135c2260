package commands

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sandrolain/goformula/pkg/formulactx"
	"github.com/sandrolain/goformula/pkg/types"
)

func newEvalCommand(a *app) *cobra.Command {
	var (
		contextFile string
		testContext bool
		vars        map[string]string
	)

	cmd := &cobra.Command{
		Use:     "eval FORMULA",
		Aliases: []string{"evaluate"},
		Short:   "Evaluate a formula against a context",
		Long: `Evaluate a formula against a context read from a YAML or JSON file,
the built-in test context, or an empty context. Use "-" to read the formula
from stdin.`,
		Example: `  goformula eval --test-context 'maxScore() - totalErrors() * 5'
  goformula eval --context assessment.yaml --var bonus=2 'dimension("fluency") + bonus'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formula, err := formulaArg(cmd, args)
			if err != nil {
				return err
			}

			ctx, err := buildContext(contextFile, testContext, vars)
			if err != nil {
				return err
			}

			res := a.engine.Evaluate(formula, ctx)

			out := cmd.OutOrStdout()
			if a.output == OutputJSON {
				if err := writeJSON(out, res); err != nil {
					return err
				}
			} else {
				if res.IsValid {
					fmt.Fprintln(out, formatValue(res.Result))
				}
				writeErrors(out, formula, res.Errors)
				writeList(out, "warning", res.Warnings)
			}

			if !res.IsValid {
				return ErrInvalidFormula
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&contextFile, "context", "", "context file (YAML or JSON)")
	cmd.Flags().BoolVar(&testContext, "test-context", false, "evaluate against the built-in test context")
	cmd.Flags().StringToStringVar(&vars, "var", nil, "bind a variable, e.g. --var bonus=2 (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("context", "test-context")
	return cmd
}

func buildContext(file string, test bool, vars map[string]string) (*types.FormulaContext, error) {
	var b *formulactx.Builder
	switch {
	case file != "":
		ctx, err := formulactx.LoadFile(file)
		if err != nil {
			return nil, err
		}
		b = formulactx.From(ctx)
	case test:
		b = formulactx.From(formulactx.CreateTestContext())
	default:
		b = formulactx.New()
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := strconv.ParseFloat(vars[name], 64)
		if err != nil {
			return nil, fmt.Errorf("--var %s: %q is not a number", name, vars[name])
		}
		b.Variable(name, v)
	}
	return b.Build(), nil
}
