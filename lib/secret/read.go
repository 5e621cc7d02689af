// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadFromPath reads a secret from a file, or the first line of stdin when
// path is "-". Surrounding whitespace is trimmed. An empty result is an
// error.
func ReadFromPath(path string) (*Buffer, error) {
	if path == "-" {
		return ReadLine(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return protectTrimmed(data)
}

// maxLineLength bounds a secret read by ReadLine.
const maxLineLength = 4096

// ReadLine reads the first line of reader as a secret. It reads one byte
// at a time and stops at the newline, so the rest of reader is left for
// the next consumer (a child process inheriting stdin).
func ReadLine(reader io.Reader) (*Buffer, error) {
	// Fixed capacity so append never copies the secret to a new array.
	line := make([]byte, 0, maxLineLength)
	var single [1]byte
	for {
		n, err := reader.Read(single[:])
		if n == 1 {
			if single[0] == '\n' {
				break
			}
			if len(line) == maxLineLength {
				Zero(line)
				return nil, fmt.Errorf("secret line exceeds %d bytes", maxLineLength)
			}
			line = append(line, single[0])
		}
		if errors.Is(err, io.EOF) {
			if len(line) == 0 {
				return nil, fmt.Errorf("secret input is empty")
			}
			break
		}
		if err != nil {
			Zero(line)
			return nil, fmt.Errorf("reading secret: %w", err)
		}
	}
	return protectTrimmed(line)
}

func protectTrimmed(data []byte) (*Buffer, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, fmt.Errorf("secret is empty")
	}
	buffer, err := NewFromBytes(trimmed)
	Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}
