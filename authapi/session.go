// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package authapi

import (
	"fmt"

	"github.com/sambadstubner/pipeup-cli/lib/secret"
)

// Session is the short-lived bearer credential returned by login. It is
// consumed by CreateAPIToken and never persisted. Callers must Close it.
type Session struct {
	accessToken *secret.Buffer
	tokenType   string
}

// NewSession wraps an access token obtained elsewhere (tests, or a token
// passed on the command line) in a Session.
func NewSession(accessToken string) (*Session, error) {
	buffer, err := secret.NewFromString(accessToken)
	if err != nil {
		return nil, fmt.Errorf("authapi: protecting access token: %w", err)
	}
	return &Session{accessToken: buffer, tokenType: "bearer"}, nil
}

// AccessToken returns a heap copy of the bearer token.
func (s *Session) AccessToken() string {
	return s.accessToken.String()
}

// TokenType is the token_type reported by login, "bearer" when absent.
func (s *Session) TokenType() string {
	return s.tokenType
}

// Close releases the protected token memory.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	return s.accessToken.Close()
}
