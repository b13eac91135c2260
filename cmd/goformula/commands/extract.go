package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandrolain/goformula"
)

func newExtractCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract FORMULA",
		Short: "List the free variables and functions of a formula",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formula, err := formulaArg(cmd, args)
			if err != nil {
				return err
			}

			vars := goformula.ExtractVariables(formula)
			fns := goformula.ExtractFunctions(formula)

			out := cmd.OutOrStdout()
			if a.output == OutputJSON {
				return writeJSON(out, map[string][]string{"variables": vars, "functions": fns})
			}
			fmt.Fprintf(out, "variables: %s\n", strings.Join(vars, ", "))
			fmt.Fprintf(out, "functions: %s\n", strings.Join(fns, ", "))
			return nil
		},
	}
}
