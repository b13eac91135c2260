package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sandrolain/goformula/pkg/functions"
)

type functionInfo struct {
	Name        string             `json:"name"`
	Category    functions.Category `json:"category"`
	Signature   string             `json:"signature"`
	Description string             `json:"description"`
}

func newFunctionsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "functions [QUERY]",
		Aliases: []string{"fn"},
		Short:   "List the built-in functions",
		Long:    `List the built-in functions, optionally filtered by a fuzzy match on the name.`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var query string
			if len(args) == 1 {
				query = args[0]
			}
			defs := functions.Search(query)

			out := cmd.OutOrStdout()
			if a.output == OutputJSON {
				infos := make([]functionInfo, 0, len(defs))
				for _, d := range defs {
					infos = append(infos, functionInfo{d.Name, d.Category, d.Signature, d.Description})
				}
				return writeJSON(out, infos)
			}

			if len(defs) == 0 {
				return fmt.Errorf("no function matches %q", query)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, d := range defs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Signature, d.Category, d.Description)
			}
			return tw.Flush()
		},
	}
}
