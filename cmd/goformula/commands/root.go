// Package commands implements the goformula command line.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sandrolain/goformula"
	"github.com/sandrolain/goformula/pkg/config"
)

// ErrInvalidFormula is returned when a formula fails validation or
// evaluation. The details have already been written to the output.
var ErrInvalidFormula = errors.New("invalid formula")

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidFormula):
		return 2
	default:
		return 1
	}
}

// app carries the state shared by the subcommands.
type app struct {
	configFile string
	logLevel   string
	output     string

	cfg    *config.Config
	logger zerolog.Logger
	engine *goformula.Engine
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:           "goformula",
		Short:         "Validate and evaluate translation quality scoring formulas",
		Version:       goformula.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file path (default: ./goformula.yaml or ~/.goformula/goformula.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, disabled")
	flags.StringVarP(&a.output, "output", "o", OutputText, "output format: text or json")

	rootCmd.AddCommand(
		newValidateCommand(a),
		newEvalCommand(a),
		newExtractCommand(a),
		newFunctionsCommand(a),
		newServeCommand(a),
		newVersionCommand(a),
	)

	return rootCmd
}

func (a *app) init(stderr io.Writer) error {
	if a.output != OutputText && a.output != OutputJSON {
		return fmt.Errorf("unknown output format %q", a.output)
	}

	cfg, err := config.Load(a.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logger.Level = a.logLevel
	}

	logger, err := cfg.Logger.New(stderr)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.engine = goformula.New(append(cfg.EngineOptions(), goformula.WithLogger(logger))...)

	logger.Debug().Str("config", cfg.File).Msg("configuration loaded")
	return nil
}

// formulaArg returns the formula argument, reading stdin when it is "-".
func formulaArg(cmd *cobra.Command, args []string) (string, error) {
	if args[0] != "-" {
		return args[0], nil
	}
	if stdinIsTerminal(cmd) {
		return "", errors.New("expected a formula on stdin")
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read formula from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func stdinIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
