// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

func TestWriteEnvFile(t *testing.T) {
	t.Run("creates the file with mode 0600", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := WriteEnvFile(path, map[string]string{EnvToken: "pu_new"}); err != nil {
			t.Fatalf("WriteEnvFile failed: %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Errorf("mode = %o, want 600", info.Mode().Perm())
		}
		values, err := godotenv.Read(path)
		if err != nil {
			t.Fatal(err)
		}
		if values[EnvToken] != "pu_new" {
			t.Errorf("values = %v", values)
		}
	})

	t.Run("merges with existing keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		existing := "DATABASE_URL=postgres://localhost/pipeup\nPIPEUP_TOKEN=pu_old\n"
		if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := WriteEnvFile(path, map[string]string{EnvToken: "pu_new", EnvURL: "ws://localhost:3001"}); err != nil {
			t.Fatalf("WriteEnvFile failed: %v", err)
		}

		values, err := godotenv.Read(path)
		if err != nil {
			t.Fatal(err)
		}
		if values["DATABASE_URL"] != "postgres://localhost/pipeup" {
			t.Errorf("unrelated key lost: %v", values)
		}
		if values[EnvToken] != "pu_new" || values[EnvURL] != "ws://localhost:3001" {
			t.Errorf("values = %v", values)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Errorf("mode = %o, want 600 after rewrite", info.Mode().Perm())
		}
	})

	t.Run("leaves no temporary files", func(t *testing.T) {
		directory := t.TempDir()
		path := filepath.Join(directory, "token.env")
		if err := WriteEnvFile(path, map[string]string{EnvToken: "x"}); err != nil {
			t.Fatalf("WriteEnvFile failed: %v", err)
		}
		entries, err := os.ReadDir(directory)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("directory has %d entries, want 1", len(entries))
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", ".env")
		if err := WriteEnvFile(path, map[string]string{EnvToken: "x"}); err == nil {
			t.Fatal("expected error for missing directory")
		}
	})
}
