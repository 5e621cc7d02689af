// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/sambadstubner/pipeup-cli/lib/secret"
)

// PasswordSource describes where a run's password comes from.
type PasswordSource struct {
	// File is the --password-file value: a path, "-" for stdin, or empty.
	File string
	// Fallback is used when File is empty (the configured password).
	Fallback string
	// Stdin and Prompt default to os.Stdin and os.Stderr.
	Stdin  *os.File
	Prompt io.Writer
}

// ReadPassword returns the password as a secret.Buffer. With File "-" it
// prompts with echo disabled when stdin is a terminal, and reads the
// first line of stdin otherwise.
func ReadPassword(source PasswordSource) (*secret.Buffer, error) {
	switch source.File {
	case "":
		if source.Fallback == "" {
			return nil, Validation("no password configured (set password in the config file, PIPEUP_BOOTSTRAP_PASSWORD, or use --password-file)")
		}
		return secret.NewFromString(source.Fallback)
	case "-":
	default:
		buffer, err := secret.ReadFromPath(source.File)
		if err != nil {
			return nil, Validation("reading --password-file %s: %w", source.File, err)
		}
		return buffer, nil
	}

	stdin := source.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	if !term.IsTerminal(int(stdin.Fd())) {
		buffer, err := secret.ReadLine(stdin)
		if err != nil {
			return nil, Validation("reading password from stdin: %w", err)
		}
		return buffer, nil
	}

	prompt := source.Prompt
	if prompt == nil {
		prompt = os.Stderr
	}
	fmt.Fprint(prompt, "Password: ")
	passwordBytes, err := term.ReadPassword(int(stdin.Fd()))
	fmt.Fprintln(prompt)
	if err != nil {
		return nil, Internal("reading password: %w", err)
	}

	buffer, err := secret.NewFromBytes(passwordBytes)
	if err != nil {
		secret.Zero(passwordBytes)
		return nil, Validation("password: %w", err)
	}
	return buffer, nil
}
