// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"syscall"
)

// Stdio is the child's standard streams. Nil fields inherit nothing
// (the child sees /dev/null).
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Exec sets variables in this process's environment and runs argv, which
// inherits them. It returns the child's exit code. A child killed by a
// signal reports 128+signal, like a shell. The error is non-nil only when
// the child could not be started or waited for.
func Exec(ctx context.Context, argv []string, variables map[string]string, stdio Stdio) (int, error) {
	if len(argv) == 0 {
		return 0, fmt.Errorf("export: no command to run")
	}

	keys := make([]string, 0, len(variables))
	for key := range variables {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := os.Setenv(key, variables[key]); err != nil {
			return 0, fmt.Errorf("export: setting %s: %w", key, err)
		}
	}

	command := exec.CommandContext(ctx, argv[0], argv[1:]...)
	command.Stdin = stdio.Stdin
	command.Stdout = stdio.Stdout
	command.Stderr = stdio.Stderr

	err := command.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, fmt.Errorf("export: running %s: %w", argv[0], err)
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal()), nil
	}
	return exitErr.ExitCode(), nil
}
