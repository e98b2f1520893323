package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Simplici0/printledger/internal/apperr"
	"github.com/Simplici0/printledger/internal/config"
	"github.com/Simplici0/printledger/internal/engine"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DBPath  string
	Format  string // "text" | "json" | "yaml"
	NoColor bool
	Verbose bool

	now func() time.Time
}

// NewRootCommand creates the root command for the printledger CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "printledger",
		Short:         "Costing and sales ledger for a 3D printing shop",
		Long:          "printledger records printable products and sales, prices each sale from the current energy and filament costs, and reports revenue, cost and margin.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.NoColor {
				color.NoColor = true
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database (default $PRINTLEDGER_DB, $DB_PATH or ./printledger.db)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable ANSI color output")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log engine activity to stderr")

	cmd.AddCommand(newProductCommand(opts))
	cmd.AddCommand(newSaleCommand(opts))
	cmd.AddCommand(newSettingsCommand(opts))
	cmd.AddCommand(newReportCommand(opts))

	return cmd
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		return ExitCode(err)
	}
	return ExitSuccess
}

// ExitCode maps an error to a process exit code. An ExitError carries its
// own code; domain errors from the engine map by kind.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	switch apperr.KindOf(err) {
	case apperr.InvalidParameter, apperr.NotFound:
		return ExitCommandError
	}
	return ExitFailure
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// resolveDBPath applies flag, then PRINTLEDGER_DB, then the app config.
func (o *RootOptions) resolveDBPath() (string, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", config.Config{}, err
	}
	if o.DBPath != "" {
		return o.DBPath, cfg, nil
	}
	if p := os.Getenv("PRINTLEDGER_DB"); p != "" {
		return p, cfg, nil
	}
	return cfg.DBPath, cfg, nil
}

// openEngine opens the engine for one command invocation.
func (o *RootOptions) openEngine(cmd *cobra.Command) (*engine.Engine, error) {
	path, cfg, err := o.resolveDBPath()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if o.Verbose {
		logger = config.NewLogger(config.Config{Env: cfg.Env, LogLevel: slog.LevelDebug}, cmd.ErrOrStderr())
	}

	eng, err := engine.Open(cmd.Context(), path, engine.Options{Logger: logger, Now: o.now})
	if err != nil {
		return nil, WrapExitError(ExitFailure, "open "+path, err)
	}
	return eng, nil
}

func (o *RootOptions) output(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// withEngine opens the engine, runs fn and always closes the engine.
func (o *RootOptions) withEngine(cmd *cobra.Command, fn func(ctx context.Context, eng *engine.Engine) error) error {
	eng, err := o.openEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.Close()

	return fn(cmd.Context(), eng)
}
