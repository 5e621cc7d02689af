// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package authapi

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestIsConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"409", &APIError{StatusCode: http.StatusConflict}, true},
		{"400 already exists", &APIError{StatusCode: http.StatusBadRequest, Message: "User already exists"}, true},
		{"422 email taken", &APIError{StatusCode: http.StatusUnprocessableEntity, Message: "email already taken"}, true},
		{"400 other", &APIError{StatusCode: http.StatusBadRequest, Message: "password too short"}, false},
		{"500", &APIError{StatusCode: http.StatusInternalServerError, Message: "already exists"}, false},
		{"wrapped 409", fmt.Errorf("step: %w", &APIError{StatusCode: http.StatusConflict}), true},
		{"plain error", fmt.Errorf("dial tcp: refused"), false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsConflict(test.err); got != test.want {
				t.Errorf("IsConflict() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestServerMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"error":"invalid credentials"}`, "invalid credentials"},
		{`{"message":"User already exists"}`, "User already exists"},
		{`{"detail":"Not authenticated"}`, "Not authenticated"},
		{`{"error":{"code":"E1","message":"nested"}}`, "nested"},
		{`{"error":""}`, ""},
		{`not json`, ""},
	}
	for _, test := range tests {
		if got := serverMessage([]byte(test.body)); got != test.want {
			t.Errorf("serverMessage(%s) = %q, want %q", test.body, got, test.want)
		}
	}
}

func TestLookupString(t *testing.T) {
	tests := []struct {
		body  string
		field string
		want  string
	}{
		{`{"access_token":"abc"}`, "access_token", "abc"},
		{`{"access_token":"  abc  "}`, "access_token", "abc"},
		{`{"data":{"raw_token":"pu_1"}}`, "raw_token", "pu_1"},
		{`{"access_token":null}`, "access_token", ""},
		{`{"access_token":{"value":"x"}}`, "access_token", ""},
		{`{"id":12}`, "id", "12"},
		{`[]`, "access_token", ""},
		{``, "access_token", ""},
	}
	for _, test := range tests {
		if got := lookupString([]byte(test.body), test.field); got != test.want {
			t.Errorf("lookupString(%s, %s) = %q, want %q", test.body, test.field, got, test.want)
		}
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Op: "login", Method: "POST", Path: "/auth/login", StatusCode: 401, Message: "invalid credentials"}
	if got := err.Error(); got != "authapi: login: POST /auth/login returned 401: invalid credentials" {
		t.Errorf("Error() = %q", got)
	}

	withBody := &APIError{Op: "login", Method: "POST", Path: "/auth/login", StatusCode: 502, Body: []byte("Bad Gateway\n")}
	if !strings.HasSuffix(withBody.Error(), ": Bad Gateway") {
		t.Errorf("Error() = %q, want body snippet", withBody.Error())
	}

	empty := &APIError{Op: "login", Method: "POST", Path: "/auth/login", StatusCode: 503}
	if !strings.HasSuffix(empty.Error(), ": Service Unavailable") {
		t.Errorf("Error() = %q, want status text", empty.Error())
	}
}

func TestAPIToken_Prefix(t *testing.T) {
	if got := (&APIToken{RawToken: "pu_0123456789"}).Prefix(); got != "pu_012..." {
		t.Errorf("Prefix() = %q", got)
	}
	if got := (&APIToken{RawToken: "abc"}).Prefix(); got != "***" {
		t.Errorf("Prefix() = %q", got)
	}
}
