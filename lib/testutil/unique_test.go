// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"strings"
	"testing"
)

func TestUniqueID(t *testing.T) {
	first := UniqueID("user")
	second := UniqueID("user")
	if first == second {
		t.Fatalf("UniqueID returned %q twice", first)
	}
	if !strings.HasPrefix(first, "user-") {
		t.Errorf("UniqueID = %q, want prefix user-", first)
	}
}

func TestUniqueEmail(t *testing.T) {
	email := UniqueEmail("bob")
	if !strings.HasPrefix(email, "bob-") || !strings.HasSuffix(email, "@example.com") {
		t.Errorf("UniqueEmail = %q", email)
	}
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, "fixture.yaml", "api_url: http://localhost\n")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	if string(data) != "api_url: http://localhost\n" {
		t.Errorf("fixture content = %q", data)
	}
}
