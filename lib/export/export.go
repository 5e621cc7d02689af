// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
)

// Variables read by the pipeup CLI.
const (
	EnvToken = "PIPEUP_TOKEN"
	EnvURL   = "PIPEUP_URL"
)

// Format selects how Write renders the token.
type Format string

const (
	FormatExport Format = "export"
	FormatRaw    Format = "raw"
	FormatJSON   Format = "json"
)

// ParseFormat validates a --format value. Empty means FormatExport.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(value)) {
	case "", FormatExport:
		return FormatExport, nil
	case FormatRaw:
		return FormatRaw, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown format %q (expected export, raw or json)", value)
}

// Payload is what a run produced. StreamURL is omitted when empty.
type Payload struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Registered bool   `json:"registered"`
	Token      string `json:"token"`
	TokenName  string `json:"token_name"`
	StreamURL  string `json:"stream_url,omitempty"`
}

// Variables returns the environment the pipeup CLI needs.
func (p Payload) Variables() map[string]string {
	variables := map[string]string{EnvToken: p.Token}
	if p.StreamURL != "" {
		variables[EnvURL] = p.StreamURL
	}
	return variables
}

// Write renders payload to w in format.
func Write(w io.Writer, format Format, payload Payload) error {
	if payload.Token == "" {
		return fmt.Errorf("export: token is empty")
	}
	switch format {
	case FormatExport, "":
		variables := payload.Variables()
		keys := make([]string, 0, len(variables))
		for key := range variables {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if _, err := fmt.Fprintf(w, "export %s=%s\n", key, ShellQuote(variables[key])); err != nil {
				return err
			}
		}
		return nil
	case FormatRaw:
		_, err := fmt.Fprintln(w, payload.Token)
		return err
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}
	return fmt.Errorf("export: unknown format %q", format)
}

// ShellQuote single-quotes value for POSIX sh.
func ShellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

// StreamURL converts an HTTP API base URL into the WebSocket base URL the
// pipeup CLI expects: http becomes ws, https becomes wss, and a trailing
// "/api" path segment is dropped because the CLI appends "/api/stream/ws"
// itself.
func StreamURL(apiURL string) (string, error) {
	parsed, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("export: parsing api url %q: %w", apiURL, err)
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("export: api url %q must use http or https", apiURL)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("export: api url %q has no host", apiURL)
	}
	path := strings.TrimRight(parsed.Path, "/")
	path = strings.TrimSuffix(path, "/api")
	parsed.Path = path
	parsed.RawPath = ""
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String(), nil
}
