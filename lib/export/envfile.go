// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envFileMode is applied to every dotenv file written; it holds a
// credential.
const envFileMode = 0o600

// WriteEnvFile merges values into the dotenv file at path, creating it if
// needed. Keys already in the file that are not in values are kept. The
// file is replaced atomically and left with mode 0600.
func WriteEnvFile(path string, values map[string]string) error {
	merged, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("export: reading %s: %w", path, err)
		}
		merged = make(map[string]string, len(values))
	}
	for key, value := range values {
		merged[key] = value
	}

	content, err := godotenv.Marshal(merged)
	if err != nil {
		return fmt.Errorf("export: encoding %s: %w", path, err)
	}

	directory := filepath.Dir(path)
	temporary, err := os.CreateTemp(directory, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("export: creating temporary file in %s: %w", directory, err)
	}
	temporaryPath := temporary.Name()
	defer os.Remove(temporaryPath)

	if err := temporary.Chmod(envFileMode); err != nil {
		temporary.Close()
		return fmt.Errorf("export: chmod %s: %w", temporaryPath, err)
	}
	if _, err := temporary.WriteString(content + "\n"); err != nil {
		temporary.Close()
		return fmt.Errorf("export: writing %s: %w", temporaryPath, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("export: closing %s: %w", temporaryPath, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("export: replacing %s: %w", path, err)
	}
	return nil
}
