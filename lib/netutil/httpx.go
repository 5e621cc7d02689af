// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP response reads for the Pipeup
// auth API client.
//
// The auth endpoints answer with small JSON documents. ReadResponse caps
// every read at MaxResponseSize so that a misconfigured base
// URL (pointing at a file server, say) cannot make the bootstrapper buffer
// an arbitrarily large body before it gives up on a missing field.
package netutil

import (
	"io"
	"strings"
)

// MaxResponseSize bounds auth API response reads: 1 MiB.
const MaxResponseSize int64 = 1 << 20

// ReadResponse reads an API response body up to MaxResponseSize bytes.
// Use instead of io.ReadAll when reading HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// Snippet trims a response body for log lines. Bodies longer than limit
// runes are cut and suffixed with "...".
func Snippet(body []byte, limit int) string {
	text := strings.TrimSpace(string(body))
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
