// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sambadstubner/pipeup-cli/authapi"
	"github.com/sambadstubner/pipeup-cli/lib/secret"
)

// DefaultTokenName is the API token name used when Options.TokenName is
// empty. The pipeup CLI shows it in its token list.
const DefaultTokenName = "pipeup-cli"

// Step identifies one call of the sequence.
type Step string

const (
	StepRegister Step = "register"
	StepLogin    Step = "login"
	StepMint     Step = "mint api token"
)

// StepError is a failure of one step. Unwrap gives the authapi error.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Authenticator is the subset of *authapi.Client the sequence uses.
type Authenticator interface {
	Register(ctx context.Context, request authapi.RegisterRequest) ([]byte, error)
	Login(ctx context.Context, email string, password *secret.Buffer) (*authapi.Session, error)
	CreateAPIToken(ctx context.Context, session *authapi.Session, name string) (*authapi.APIToken, error)
}

// Identity is the account to register and log in as.
type Identity struct {
	Email    string
	Username string
	Password *secret.Buffer
}

// Options configures Run.
type Options struct {
	Identity Identity
	// TokenName names the minted API token. Defaults to DefaultTokenName.
	TokenName string
	// RequireRegistration makes a registration failure other than "account
	// already exists" fatal.
	RequireRegistration bool
	// Logger receives step progress. Defaults to slog.Default().
	Logger *slog.Logger
}

// Result is the outcome of a successful run.
type Result struct {
	Email    string
	Username string
	// Registered is true when this run created the account.
	Registered bool
	// RegistrationError is the ignored registration failure, nil when
	// Registered is true.
	RegistrationError error
	Token             *authapi.APIToken
}

// Run registers, logs in and mints an API token.
func Run(ctx context.Context, api Authenticator, options Options) (*Result, error) {
	identity := options.Identity
	if identity.Email == "" {
		return nil, fmt.Errorf("bootstrap: email is required")
	}
	if identity.Username == "" {
		return nil, fmt.Errorf("bootstrap: username is required")
	}
	if identity.Password == nil {
		return nil, fmt.Errorf("bootstrap: password is required")
	}
	tokenName := options.TokenName
	if tokenName == "" {
		tokenName = DefaultTokenName
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	result := &Result{Email: identity.Email, Username: identity.Username}

	if err := register(ctx, api, identity, options.RequireRegistration, logger, result); err != nil {
		return nil, err
	}

	logger.Info("logging in", "email", identity.Email)
	session, err := api.Login(ctx, identity.Email, identity.Password)
	if err != nil {
		return nil, &StepError{Step: StepLogin, Err: err}
	}
	defer session.Close()
	logger.Debug("session established", "token_type", session.TokenType())

	logger.Info("creating api token", "name", tokenName)
	token, err := api.CreateAPIToken(ctx, session, tokenName)
	if err != nil {
		return nil, &StepError{Step: StepMint, Err: err}
	}
	logger.Info("api token created", "name", token.Name, "prefix", token.Prefix())

	result.Token = token
	return result, nil
}

// register runs the first step and records its outcome on result. It only
// returns an error when the run must stop: the context is done, or strict
// mode rejects the failure.
func register(ctx context.Context, api Authenticator, identity Identity, strict bool, logger *slog.Logger, result *Result) error {
	logger.Info("registering account", "email", identity.Email, "username", identity.Username)
	_, err := api.Register(ctx, authapi.RegisterRequest{
		Email:    identity.Email,
		Username: identity.Username,
		Password: identity.Password,
	})
	if err == nil {
		result.Registered = true
		logger.Info("account registered", "email", identity.Email)
		return nil
	}
	result.RegistrationError = err

	if ctxErr := ctx.Err(); ctxErr != nil {
		return &StepError{Step: StepRegister, Err: errors.Join(ctxErr, err)}
	}
	if authapi.IsConflict(err) {
		logger.Info("account already exists, continuing to login", "email", identity.Email)
		return nil
	}
	if strict {
		return &StepError{Step: StepRegister, Err: err}
	}
	logger.Warn("registration failed, continuing to login", "email", identity.Email, "error", err)
	return nil
}
