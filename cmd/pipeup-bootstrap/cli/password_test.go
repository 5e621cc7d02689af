// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sambadstubner/pipeup-cli/lib/testutil"
)

func TestReadPassword(t *testing.T) {
	t.Run("fallback", func(t *testing.T) {
		buffer, err := ReadPassword(PasswordSource{Fallback: "password123"})
		if err != nil {
			t.Fatalf("ReadPassword failed: %v", err)
		}
		defer buffer.Close()
		if buffer.String() != "password123" {
			t.Errorf("password = %q", buffer.String())
		}
	})

	t.Run("no password", func(t *testing.T) {
		if _, err := ReadPassword(PasswordSource{}); ExitCode(err) != ExitUsage {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := testutil.WriteFile(t, "password", "from-file\n")
		buffer, err := ReadPassword(PasswordSource{File: path, Fallback: "ignored"})
		if err != nil {
			t.Fatalf("ReadPassword failed: %v", err)
		}
		defer buffer.Close()
		if buffer.String() != "from-file" {
			t.Errorf("password = %q", buffer.String())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadPassword(PasswordSource{File: filepath.Join(t.TempDir(), "missing")})
		if ExitCode(err) != ExitUsage {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("stdin pipe", func(t *testing.T) {
		reader, writer, err := os.Pipe()
		if err != nil {
			t.Fatal(err)
		}
		defer reader.Close()
		if _, err := writer.WriteString("piped-secret\nsecond line\n"); err != nil {
			t.Fatal(err)
		}
		writer.Close()

		buffer, err := ReadPassword(PasswordSource{File: "-", Stdin: reader})
		if err != nil {
			t.Fatalf("ReadPassword failed: %v", err)
		}
		defer buffer.Close()
		if buffer.String() != "piped-secret" {
			t.Errorf("password = %q", buffer.String())
		}

		rest, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("reading remainder: %v", err)
		}
		if string(rest) != "second line\n" {
			t.Errorf("stdin after the password = %q", rest)
		}
	})
}
