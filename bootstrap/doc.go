// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bootstrap runs the three-call sequence that turns a set of
// credentials into a Pipeup API token:
//
//  1. register the account (POST /auth/register)
//  2. log in to get a session access token (POST /auth/login)
//  3. mint a named API token with that session (POST /auth/api-tokens)
//
// Registration is idempotent setup: an account that already exists is the
// expected case on a re-run, and any other registration failure is logged
// and ignored so the login step gets to report the real problem. Set
// [Options.RequireRegistration] to make non-conflict registration failures
// fatal.
//
// Login and mint failures are returned as [*StepError]. When the backend
// answered 2xx without the expected field, the wrapped error is an
// [*authapi.MissingFieldError] whose Body holds the raw response.
//
// The session token is closed before [Run] returns. The caller owns the
// password buffer in [Identity].
package bootstrap
