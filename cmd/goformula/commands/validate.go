package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandrolain/goformula/pkg/formulactx"
	"github.com/sandrolain/goformula/pkg/types"
)

func newValidateCommand(a *app) *cobra.Command {
	var (
		contextFile string
		known       []string
	)

	cmd := &cobra.Command{
		Use:   "validate FORMULA",
		Short: "Check a formula without evaluating it",
		Long: `Check a formula for syntax errors, unknown functions, wrong argument
counts and type mismatches. Use "-" to read the formula from stdin.

With --context, free variables and accessor ids are checked against the
given context file.`,
		Example: `  goformula validate 'round(dimension("fluency") * 0.4)'
  goformula validate --known bonus 'maxScore() - bonus'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formula, err := formulaArg(cmd, args)
			if err != nil {
				return err
			}

			var res *types.ValidationResult
			if contextFile == "" && len(known) == 0 {
				res = a.engine.Validate(formula)
			} else {
				b := formulactx.New()
				if contextFile != "" {
					ref, err := formulactx.LoadFile(contextFile)
					if err != nil {
						return err
					}
					b = formulactx.From(ref)
				}
				// Only the names matter for validation.
				for _, k := range known {
					b.Variable(k, 0)
				}
				res = a.engine.ValidateAgainst(formula, b.Build())
			}

			out := cmd.OutOrStdout()
			if a.output == OutputJSON {
				if err := writeJSON(out, res); err != nil {
					return err
				}
			} else {
				if res.IsValid {
					fmt.Fprintln(out, "valid")
				} else {
					fmt.Fprintln(out, "invalid")
				}
				writeErrors(out, formula, res.Errors)
				writeList(out, "warning", res.Warnings)
				writeList(out, "fix", res.SuggestedFixes)
				if len(res.Variables) > 0 {
					fmt.Fprintf(out, "variables: %s\n", strings.Join(res.Variables, ", "))
				}
				if len(res.Functions) > 0 {
					fmt.Fprintf(out, "functions: %s\n", strings.Join(res.Functions, ", "))
				}
			}

			if !res.IsValid {
				return ErrInvalidFormula
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&contextFile, "context", "", "reference context file (YAML or JSON)")
	cmd.Flags().StringSliceVar(&known, "known", nil, "names of variables that will be bound at evaluation")
	return cmd
}
