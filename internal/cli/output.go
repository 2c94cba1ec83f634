package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes.
const (
	ExitSuccess      = 0 // successful execution
	ExitRejected     = 1 // the backend rejected the operation
	ExitCommandError = 2 // bad usage, config or local environment
)

// ExitError carries an exit code out of a command.
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

func (e *ExitError) Unwrap() error { return e.Err }

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error, defaulting to
// ExitRejected.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitRejected
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// OutputFormatter renders either machine-readable JSON or the
// human-readable text a command provides.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Print emits v as JSON when the format asks for it, otherwise runs
// the text renderer.
func (o *OutputFormatter) Print(v any, text func(w io.Writer)) error {
	if o.Format == "json" {
		enc := json.NewEncoder(o.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(o.Writer)
	return nil
}
