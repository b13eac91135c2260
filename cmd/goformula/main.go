// Command goformula validates and evaluates scoring formulas from the command
// line and serves the formula HTTP API.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sandrolain/goformula/cmd/goformula/commands"
)

func main() {
	rootCmd := commands.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, commands.ErrInvalidFormula) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(commands.ExitCode(err))
	}
}
