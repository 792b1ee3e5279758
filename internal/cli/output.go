package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sqlweave/sqlweave/internal/cte"
	"github.com/sqlweave/sqlweave/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Resolution/validation failure (cycle, unknown target, ...)
	ExitCommandError = 2 // Command error (unreadable file, bad database path, ...)
)

// Stable error codes surfaced in JSON output.
const (
	ErrCodeGeneric  = "E_GENERIC"
	ErrCodeLoad     = "E_LOAD"
	ErrCodeParse    = "E_PARSE"
	ErrCodeNotFound = "E_NOT_FOUND"
	ErrCodeCycle    = "E_CYCLE"
	ErrCodeStore    = "E_STORE"
)

// ExitError carries a specific exit code out of a command. Commands
// report their own failure output through the formatter; main only
// reads the code.
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

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// newFormatter builds the formatter for one command invocation.
// Verbose output goes to stderr so JSON on stdout stays parseable.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// Response is the standard JSON envelope for CLI output.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error payload of a Response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{
			Status: "ok",
			Data:   data,
		})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) {
	if f.Format == "json" {
		json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error: &ResponseError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
		return
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
}

// VerboseLog outputs a diagnostic message when verbose mode is on.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// errCodeFor maps known failures to stable CLI error codes.
func errCodeFor(err error) string {
	var re *cte.ResolveError
	if errors.As(err, &re) {
		switch re.Code {
		case cte.ErrCodeNotFound:
			return ErrCodeNotFound
		case cte.ErrCodeCircularDependency:
			return ErrCodeCycle
		}
	}
	if errors.Is(err, store.ErrWorkspaceNotFound) {
		return ErrCodeNotFound
	}
	return ErrCodeGeneric
}

// fail reports err through the formatter and returns the matching
// ExitError for main. All command failure paths funnel through here so
// errors print exactly once.
func fail(f *OutputFormatter, exitCode int, errCode string, err error) error {
	f.Error(errCode, err.Error(), nil)
	return &ExitError{Code: exitCode, Message: err.Error(), Err: err}
}
