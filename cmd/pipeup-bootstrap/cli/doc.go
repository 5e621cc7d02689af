// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command framework for pipeup-bootstrap.
//
// [Command] is a named command with optional [Command.Subcommands], a
// [pflag.FlagSet] factory, and a Run function. [Command.Execute] parses
// flags, routes subcommands, and prints help with examples. Unknown
// commands and flags get a Levenshtein suggestion (distance <= 3).
//
// Flags are declared as tagged struct fields and bound with
// [FlagsFromParams].
//
// Errors carry their exit status: [ExitError] for an explicit code,
// [ToolError] categories for everything else. [ExitCode] maps an error to
// the process exit code (validation errors exit 2, others 1).
package cli
