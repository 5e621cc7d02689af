// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package authapi

import (
	"github.com/sambadstubner/pipeup-cli/lib/secret"
)

// Endpoint paths, relative to the client's base URL.
const (
	PathRegister  = "/auth/register"
	PathLogin     = "/auth/login"
	PathAPITokens = "/auth/api-tokens"
)

// Response field names the bootstrap sequence depends on.
const (
	FieldAccessToken = "access_token"
	FieldRawToken    = "raw_token"
)

// RegisterRequest holds the credentials for a new account. Password is
// read but not closed; the caller retains ownership.
type RegisterRequest struct {
	Email    string
	Username string
	Password *secret.Buffer
}

// registerBody is the wire form of RegisterRequest. The password is
// converted to a string only at the JSON serialization boundary.
type registerBody struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTokenRequest is the body of POST /auth/api-tokens.
type CreateTokenRequest struct {
	Name string `json:"name"`
}

// APIToken is a minted long-lived credential. RawToken is the value the
// pipeup CLI expects in PIPEUP_TOKEN; the backend only returns it once.
type APIToken struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	RawToken  string `json:"raw_token"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Prefix returns the first few characters of the raw token, safe to log.
func (t *APIToken) Prefix() string {
	const shown = 6
	if len(t.RawToken) <= shown {
		return "***"
	}
	return t.RawToken[:shown] + "..."
}
