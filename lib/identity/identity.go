// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity generates throwaway account identities for test
// environments.
package identity

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultPrefix = "pipeup-test"
	DefaultDomain = "example.com"
)

// suffixLength is the number of hex characters of a UUIDv4 appended to the
// prefix.
const suffixLength = 8

var prefixPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// Fresh returns a new username "<prefix>-<8 hex>" and the email
// "<username>@<domain>". Empty arguments take the defaults.
func Fresh(prefix, domain string) (email, username string, err error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if domain == "" {
		domain = DefaultDomain
	}
	prefix = strings.ToLower(prefix)
	if !prefixPattern.MatchString(prefix) {
		return "", "", fmt.Errorf("identity: invalid prefix %q (lowercase letters, digits, '.', '_' and '-')", prefix)
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLength]
	username = prefix + "-" + suffix
	email = username + "@" + domain
	if err := ValidateEmail(email); err != nil {
		return "", "", err
	}
	return email, username, nil
}

// ValidateEmail checks that email is a bare addr-spec with a domain part.
// Display-name forms ("Alice <a@example.com>") are rejected.
func ValidateEmail(email string) error {
	address, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("identity: invalid email %q: %w", email, err)
	}
	if address.Address != email || address.Name != "" {
		return fmt.Errorf("identity: email %q must be a bare address", email)
	}
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("identity: email %q has no domain", email)
	}
	return nil
}

// UsernameFromEmail derives a username from the local part of email, used
// when an email is configured without a username.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
