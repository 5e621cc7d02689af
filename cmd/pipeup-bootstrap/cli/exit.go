// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// ExitError signals a non-zero exit code without printing an extra error
// message. The command is expected to have written its own output already,
// or to be relaying a child process's status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. main checks for this interface to tell
// a handled non-zero exit from an error to display.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// Exit codes for errors that are not an ExitError.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitCode returns the process exit status for err: 0 for nil, the
// embedded code for an ExitError, ExitUsage for validation errors, and
// ExitFailure otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) && toolErr.Category == CategoryValidation {
		return ExitUsage
	}
	return ExitFailure
}
