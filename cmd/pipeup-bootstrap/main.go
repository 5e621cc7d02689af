// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Pipeup-bootstrap provisions a Pipeup API token for a test environment.
// It registers an account against a running backend, logs in, mints a
// named API token with the session, and hands the token to the pipeup CLI
// as PIPEUP_TOKEN: printed for eval, written to a dotenv file, or set in
// the environment of a command run after "--".
//
// Usage:
//
//	eval "$(pipeup-bootstrap --api-url http://localhost:3001/api)"
//	pipeup-bootstrap --env-file .env.local
//	pipeup-bootstrap --with-url -- pipeup --name ci-build
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sambadstubner/pipeup-cli/cmd/pipeup-bootstrap/cli"
	"github.com/sambadstubner/pipeup-cli/lib/process"
)

func main() {
	if err := run(); err != nil {
		process.FatalCode(err, cli.ExitCode(err))
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := &app{
		stdin:          os.Stdin,
		stdout:         os.Stdout,
		stderr:         os.Stderr,
		stderrTerminal: cli.IsTerminal(os.Stderr),
	}
	return application.root(ctx).Execute(os.Args[1:])
}
