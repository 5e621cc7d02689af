// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package authapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sambadstubner/pipeup-cli/lib/netutil"
)

// APIError is a non-2xx response from the backend. Callers can use
// errors.As to extract it:
//
//	var apiErr *APIError
//	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict { ... }
type APIError struct {
	// Op names the client operation ("register", "login", "create api token").
	Op string
	// Method and Path identify the request.
	Method string
	Path   string
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Message is the server's error text, taken from an "error",
	// "message" or "detail" JSON field. Empty for non-JSON bodies.
	Message string
	// Body is the raw response body.
	Body []byte
}

func (e *APIError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = netutil.Snippet(e.Body, 200)
	}
	if detail == "" {
		detail = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("authapi: %s: %s %s returned %d: %s", e.Op, e.Method, e.Path, e.StatusCode, detail)
}

// MissingFieldError is a 2xx response that does not carry the field the
// caller needs. Unparseable bodies are reported the same way: after a
// best-effort parse, the field is simply absent.
type MissingFieldError struct {
	Op    string
	Field string
	Body  []byte
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("authapi: %s response has no %q field", e.Op, e.Field)
}

// IsStatus reports whether err wraps an *APIError with the given status.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == statusCode
	}
	return false
}

// alreadyExistsPhrases match the messages backends use for a duplicate
// account when they answer 400 or 422 instead of 409.
var alreadyExistsPhrases = []string{
	"already exists",
	"already registered",
	"already taken",
	"already in use",
}

// IsConflict reports whether err means the account already exists: a 409,
// or a 400/422 whose message says so.
func IsConflict(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusConflict:
		return true
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		message := strings.ToLower(apiErr.Message)
		for _, phrase := range alreadyExistsPhrases {
			if strings.Contains(message, phrase) {
				return true
			}
		}
	}
	return false
}

// RawBody returns the response body carried by an *APIError or
// *MissingFieldError anywhere in err's chain.
func RawBody(err error) ([]byte, bool) {
	var missing *MissingFieldError
	if errors.As(err, &missing) {
		return missing.Body, true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body, true
	}
	return nil, false
}

// serverMessage extracts a human-readable error from a JSON body. The
// common shapes are {"error": "..."}, {"message": "..."}, {"detail": "..."}
// and {"error": {"message": "..."}}.
func serverMessage(body []byte) string {
	var document map[string]json.RawMessage
	if err := json.Unmarshal(body, &document); err != nil {
		return ""
	}
	for _, key := range []string{"error", "message", "detail"} {
		raw, ok := document[key]
		if !ok {
			continue
		}
		var text string
		if json.Unmarshal(raw, &text) == nil && text != "" {
			return text
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return ""
}

// lookupString finds a non-empty string field at the top level of body or
// inside a "data" envelope. Parse failures yield "".
func lookupString(body []byte, field string) string {
	var document map[string]json.RawMessage
	if err := json.Unmarshal(body, &document); err != nil {
		return ""
	}
	if value := stringField(document, field); value != "" {
		return value
	}
	var envelope map[string]json.RawMessage
	if raw, ok := document["data"]; ok && json.Unmarshal(raw, &envelope) == nil {
		return stringField(envelope, field)
	}
	return ""
}

func stringField(document map[string]json.RawMessage, field string) string {
	raw, ok := document[field]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err == nil {
		return strings.TrimSpace(value)
	}
	// Numeric IDs are reported in their JSON text form.
	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil {
		return number.String()
	}
	return ""
}
