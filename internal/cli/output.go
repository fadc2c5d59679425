package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/roach88/raffleverify/internal/explorer"
	"github.com/roach88/raffleverify/internal/fetch"
	"github.com/roach88/raffleverify/internal/roller"
	"github.com/roach88/raffleverify/internal/winners"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // A verification check or fixture failed
	ExitCommandError = 2 // Command error (bad flags, network, parse, cache)
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric  = "E001" // Generic/unknown error
	ErrCodeConfig   = "E002" // Invalid configuration or flags
	ErrCodeFetch    = "E003" // Network fetch failed
	ErrCodeParse    = "E004" // Malformed list, block, or fixture
	ErrCodeNotFound = "E005" // Path or record not found
	ErrCodeRoll     = "E006" // Selection could not be computed
	ErrCodeCache    = "E007" // Cache database error
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string // human-readable message
	Err     error  // underlying error (optional)
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

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitCommandError for errors that are not
// an ExitError, such as flag parsing failures.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; defaults to Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope for every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Result writes data with an explicit status and optional error, for
// commands whose payload is still meaningful when they fail.
func (f *OutputFormatter) Result(data any, cliErr *CLIError) error {
	resp := CLIResponse{Status: "ok", Data: data}
	if cliErr != nil {
		resp.Status = "error"
		resp.Error = cliErr
	}
	return f.encode(resp)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}

// VerboseLog outputs a message only if verbose mode is enabled. Messages go
// to ErrWriter so they never corrupt JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Logger returns a text slog logger on ErrWriter. Verbose enables debug
// records; otherwise only warnings and errors are written.
func (f *OutputFormatter) Logger() *slog.Logger {
	level := slog.LevelWarn
	if f.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(f.GetErrWriter(), &slog.HandlerOptions{Level: level}))
}

// commandError reports err in the configured format and returns an
// ExitError with ExitCommandError.
func commandError(f *OutputFormatter, code, message string, err error) error {
	text := message
	if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(code, text, nil)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), err)
}

// errorCode maps a library error onto a CLI error code.
func errorCode(err error) string {
	var statusErr *fetch.StatusError
	var urlErr *url.Error
	switch {
	case errors.Is(err, roller.ErrInvalidSeed), errors.Is(err, roller.ErrEmptyCandidateList):
		return ErrCodeRoll
	case errors.Is(err, winners.ErrMalformed), errors.Is(err, explorer.ErrMalformed):
		return ErrCodeParse
	case errors.As(err, &statusErr), errors.As(err, &urlErr),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrCodeFetch
	default:
		return ErrCodeGeneric
	}
}

// commandContext returns the command's context, or Background when the
// command runs outside ExecuteContext.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
