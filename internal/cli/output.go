package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Storage, configuration or unexpected failure
	ExitCommandError = 2 // Caller error (invalid input, unknown product or sale)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// OutputFormatter renders command results as text, JSON or YAML.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Render writes data in the configured format. For text output, text is
// called with a tabwriter that is flushed afterwards.
func (f *OutputFormatter) Render(data any, text func(w io.Writer)) error {
	switch f.Format {
	case "json":
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(f.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
		text(tw)
		return tw.Flush()
	}
	return errors.New("unsupported format: " + f.Format)
}

// money formats a currency amount rounded half away from zero to two places.
func money(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

// percent formats a margin percentage with one decimal place.
func percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}

// signed colors a profit figure green when non-negative and red otherwise.
func signed(v float64) string {
	s := money(v)
	if v < 0 {
		return color.RedString(s)
	}
	return color.GreenString(s)
}

func number(v float64) string {
	return decimal.NewFromFloat(v).String()
}
