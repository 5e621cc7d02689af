// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/sambadstubner/pipeup-cli/cmd/pipeup-bootstrap/cli"
	"github.com/sambadstubner/pipeup-cli/lib/config"
	"github.com/sambadstubner/pipeup-cli/lib/version"
)

// app holds the process's standard streams so tests can drive the whole
// command tree in-process.
type app struct {
	stdin          *os.File
	stdout         io.Writer
	stderr         io.Writer
	stderrTerminal bool
}

// bootstrapParams are the root command's flags. Empty values leave the
// config file and environment in charge.
type bootstrapParams struct {
	APIURL              string        `flag:"api-url" desc:"backend API base URL (env PIPEUP_API_URL, default http://localhost:3001/api)"`
	Email               string        `flag:"email" desc:"account email (env PIPEUP_BOOTSTRAP_EMAIL; generated when email and username are unset)"`
	Username            string        `flag:"username" desc:"account username (env PIPEUP_BOOTSTRAP_USERNAME)"`
	PasswordFile        string        `flag:"password-file" desc:"read the password from a file, or - for stdin (default: configured password)"`
	TokenName           string        `flag:"token-name" desc:"name of the minted API token (env PIPEUP_TOKEN_NAME, default pipeup-cli)"`
	Format              string        `flag:"format" desc:"stdout format: export, raw or json" default:"export"`
	EnvFile             string        `flag:"env-file" desc:"also merge PIPEUP_TOKEN into this dotenv file (mode 0600)"`
	WithURL             bool          `flag:"with-url" desc:"also export PIPEUP_URL derived from the API URL"`
	ConfigPath          string        `flag:"config" desc:"YAML config file (env PIPEUP_BOOTSTRAP_CONFIG, default ~/.config/pipeup/bootstrap.yaml)"`
	DotEnv              string        `flag:"dotenv" desc:"dotenv file loaded into the environment first; empty to skip" default:".env"`
	Timeout             time.Duration `flag:"timeout" desc:"overall deadline for the three API calls (default 30s)"`
	RequireRegistration bool          `flag:"require-registration" desc:"fail when registration fails for any reason other than an existing account"`
	LogLevel            string        `flag:"log-level" desc:"debug, info, warn or error (env PIPEUP_LOG_LEVEL)"`
	Verbose             bool          `flag:"verbose,v" desc:"debug logging (same as --log-level debug)"`
	Quiet               bool          `flag:"quiet,q" desc:"do not print the summary box on a terminal"`
}

// apply overrides cfg with every flag that was given a value.
func (p *bootstrapParams) apply(cfg *config.Config) {
	overrides := []struct {
		value  string
		target *string
	}{
		{p.APIURL, &cfg.APIURL},
		{p.Email, &cfg.Email},
		{p.Username, &cfg.Username},
		{p.TokenName, &cfg.TokenName},
		{p.EnvFile, &cfg.EnvFile},
		{p.LogLevel, &cfg.LogLevel},
	}
	for _, override := range overrides {
		if override.value != "" {
			*override.target = override.value
		}
	}
	if p.Timeout > 0 {
		cfg.Timeout = p.Timeout
	}
	if p.Verbose {
		cfg.LogLevel = "debug"
	}
}

func (a *app) root(ctx context.Context) *cli.Command {
	var params bootstrapParams

	return &cli.Command{
		Name:    "pipeup-bootstrap",
		Summary: "Register, log in and mint a PIPEUP_TOKEN",
		Description: `Provision a Pipeup API token for a test environment.

Runs three calls against the backend: register the account (an existing
account is fine), log in, and mint a named API token with the session.
The token is printed on stdout as an export line for eval, or as raw text
or JSON with --format. Logs and the summary go to stderr.

Arguments after "--" are run as a command with PIPEUP_TOKEN set in its
environment; the command's exit code becomes this program's exit code.`,
		Usage: "pipeup-bootstrap [flags] [-- command [args...]]",
		Examples: []cli.Example{
			{
				Description: "Export a token for a fresh account into the current shell",
				Command:     `eval "$(pipeup-bootstrap)"`,
			},
			{
				Description: "Reuse a fixed account against a staging backend",
				Command:     "pipeup-bootstrap --api-url https://staging.example.com/api --email ci@example.com --password-file ci.pw",
			},
			{
				Description: "Stream a build log with a fresh token",
				Command:     "make 2>&1 | pipeup-bootstrap --with-url -- pipeup --name build",
			},
			{
				Description: "Keep the token in a dotenv file",
				Command:     "pipeup-bootstrap --env-file .env.local --format json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("pipeup-bootstrap", &params)
		},
		ArgsAfterDash: true,
		Output:        a.stderr,
		Subcommands: []*cli.Command{
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Fprintf(a.stdout, "pipeup-bootstrap %s\n", version.Full())
					return nil
				},
			},
		},
		Run: func(args []string) error {
			return a.bootstrap(ctx, &params, args)
		},
	}
}
