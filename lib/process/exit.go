// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// exitCoder is implemented by errors that carry their own exit status
// and have already reported themselves.
type exitCoder interface {
	ExitCode() int
}

// Fatal writes "error: err" to stderr and exits with code 1.
func Fatal(err error) {
	FatalCode(err, 1)
}

// FatalCode writes "error: err" to stderr and exits with code. An error
// implementing ExitCode() int exits with its own code and prints nothing.
func FatalCode(err error, code int) {
	os.Exit(Report(os.Stderr, err, code))
}

// Report writes err to w unless it carries its own exit code, and returns
// the status the process should exit with.
func Report(w io.Writer, err error, code int) int {
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return code
}
