// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/sambadstubner/pipeup-cli/authapi"
	"github.com/sambadstubner/pipeup-cli/bootstrap"
	"github.com/sambadstubner/pipeup-cli/cmd/pipeup-bootstrap/cli"
	"github.com/sambadstubner/pipeup-cli/lib/config"
	"github.com/sambadstubner/pipeup-cli/lib/export"
	"github.com/sambadstubner/pipeup-cli/lib/identity"
	"github.com/sambadstubner/pipeup-cli/lib/version"
)

func (a *app) bootstrap(ctx context.Context, params *bootstrapParams, argv []string) error {
	if params.DotEnv != "" {
		if err := config.LoadDotEnv(params.DotEnv); err != nil {
			return cli.Validation("%w", err)
		}
	}
	cfg, err := config.Load(params.ConfigPath)
	if err != nil {
		return cli.Validation("%w", err)
	}
	params.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return cli.Validation("%w", err)
	}
	format, err := export.ParseFormat(params.Format)
	if err != nil {
		return cli.Validation("--format: %w", err)
	}

	logger := cli.NewLogger(a.stderr, a.stderrTerminal, cfg.Level())
	if cfg.Source != "" {
		logger.Debug("loaded config file", "path", cfg.Source)
	}

	email, username, err := resolveIdentity(cfg)
	if err != nil {
		return cli.Validation("%w", err)
	}

	password, err := cli.ReadPassword(cli.PasswordSource{
		File:     params.PasswordFile,
		Fallback: cfg.Password,
		Stdin:    a.stdin,
		Prompt:   a.stderr,
	})
	if err != nil {
		return err
	}
	defer password.Close()

	client, err := authapi.NewClient(authapi.ClientConfig{
		BaseURL:   cfg.APIURL,
		Logger:    logger,
		UserAgent: version.UserAgent(),
	})
	if err != nil {
		return cli.Validation("%w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	logger.Debug("starting bootstrap", "api_url", client.BaseURL(), "timeout", cfg.Timeout)
	result, err := bootstrap.Run(runCtx, client, bootstrap.Options{
		Identity: bootstrap.Identity{
			Email:    email,
			Username: username,
			Password: password,
		},
		TokenName:           cfg.TokenName,
		RequireRegistration: params.RequireRegistration,
		Logger:              logger,
	})
	if err != nil {
		return a.reportFailure(err, cfg)
	}

	payload := export.Payload{
		Email:      result.Email,
		Username:   result.Username,
		Registered: result.Registered,
		Token:      result.Token.RawToken,
		TokenName:  result.Token.Name,
	}
	if params.WithURL {
		streamURL, err := export.StreamURL(cfg.APIURL)
		if err != nil {
			return cli.Validation("--with-url: %w", err)
		}
		payload.StreamURL = streamURL
	}

	if cfg.EnvFile != "" {
		if err := export.WriteEnvFile(cfg.EnvFile, payload.Variables()); err != nil {
			return cli.Internal("%w", err)
		}
		logger.Info("wrote token to env file", "path", cfg.EnvFile)
	}

	if a.stderrTerminal && !params.Quiet {
		fmt.Fprintln(a.stderr, renderSummary(a.stderr, result, payload, cfg.EnvFile))
	}

	if len(argv) > 0 {
		return a.execute(ctx, argv, payload, logger)
	}
	if err := export.Write(a.stdout, format, payload); err != nil {
		return cli.Internal("writing token: %w", err)
	}
	return nil
}

// execute runs argv with the token in its environment. The overall
// timeout does not apply to the child; only a signal cancels it.
func (a *app) execute(ctx context.Context, argv []string, payload export.Payload, logger *slog.Logger) error {
	stdio := export.Stdio{Stdout: a.stdout, Stderr: a.stderr}
	if a.stdin != nil {
		stdio.Stdin = a.stdin
	}

	logger.Debug("running command with token", "command", argv[0], "args", len(argv)-1)
	code, err := export.Exec(ctx, argv, payload.Variables(), stdio)
	if err != nil {
		return cli.Internal("%w", err)
	}
	if code != 0 {
		logger.Debug("command exited", "command", argv[0], "code", code)
		return &cli.ExitError{Code: code}
	}
	return nil
}

// resolveIdentity fills in whichever of email and username is missing. With
// neither set, a fresh identity is generated.
func resolveIdentity(cfg *config.Config) (email, username string, err error) {
	switch {
	case cfg.Email == "" && cfg.Username == "":
		return identity.Fresh(cfg.IdentityPrefix, cfg.IdentityDomain)
	case cfg.Username == "":
		return cfg.Email, identity.UsernameFromEmail(cfg.Email), nil
	case cfg.Email == "":
		email = cfg.Username + "@" + cfg.IdentityDomain
		if err := identity.ValidateEmail(email); err != nil {
			return "", "", err
		}
		return email, cfg.Username, nil
	}
	return cfg.Email, cfg.Username, nil
}

// reportFailure turns a bootstrap error into the command's error. Any
// response that ended a run is echoed raw to stderr, whatever its status.
// A 2xx response without the expected field exits 1 without a second
// "error:" line.
func (a *app) reportFailure(err error, cfg *config.Config) error {
	var missing *authapi.MissingFieldError
	if errors.As(err, &missing) {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		writeRawResponse(a.stderr, missing.Op, missing.Body)
		return &cli.ExitError{Code: cli.ExitFailure}
	}

	var apiErr *authapi.APIError
	if errors.As(err, &apiErr) {
		writeRawResponse(a.stderr, apiErr.Op, apiErr.Body)
	}
	return classifyFailure(err, cfg)
}

func classifyFailure(err error, cfg *config.Config) error {
	var apiErr *authapi.APIError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return cli.Transient("%w (timeout %s)", err, cfg.Timeout)
	case errors.Is(err, context.Canceled):
		return cli.Transient("%w (interrupted)", err)
	case authapi.IsStatus(err, http.StatusUnauthorized), authapi.IsStatus(err, http.StatusForbidden):
		return cli.Forbidden("%w", err)
	case errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusInternalServerError:
		return cli.Transient("%w", err)
	case errors.As(err, &netErr):
		return cli.Transient("%w (is the backend running at %s?)", err, cfg.APIURL)
	}
	return cli.Internal("%w", err)
}

func writeRawResponse(w io.Writer, op string, body []byte) {
	fmt.Fprintf(w, "raw %s response:\n", op)
	if len(body) == 0 {
		fmt.Fprintln(w, "(empty body)")
		return
	}
	w.Write(body)
	if body[len(body)-1] != '\n' {
		fmt.Fprintln(w)
	}
}
