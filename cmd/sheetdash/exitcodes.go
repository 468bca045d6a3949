package main

import "fmt"

// Exit codes for the sheetdash CLI.
const (
	ExitOK          = 0 // Success.
	ExitInvalidArgs = 1 // Bad flags, config or path.
	ExitLoadFailure = 2 // The file could not be read or prepared.
)

// exitCodeError carries a non-zero exit code through cobra's error handling.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int { return e.code }

func exitError(code int, format string, args ...any) *exitCodeError {
	msg := fmt.Sprintf(format, args...)
	if msg == "" {
		msg = "sheetdash: error"
	}
	return &exitCodeError{code: code, msg: msg}
}
