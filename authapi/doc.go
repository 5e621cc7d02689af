// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package authapi is a client for the Pipeup backend's authentication
// endpoints.
//
// [Client] is unauthenticated and covers the three calls a bootstrap run
// makes, in order:
//
//   - [Client.Register] -- POST /auth/register with email, username and
//     password. The response body is returned for logging; callers decide
//     whether a failure matters.
//   - [Client.Login] -- POST /auth/login, returning a [Session] that holds
//     the access_token in mmap-backed memory (see lib/secret).
//   - [Client.CreateAPIToken] -- POST /auth/api-tokens with the session as
//     a bearer credential, returning the long-lived [APIToken].
//
// Request URLs are built by concatenating the base URL (trailing slash
// stripped) with the endpoint path, so a base URL with a path prefix such
// as http://localhost:3001/api works unchanged.
//
// Errors: a non-2xx status is returned as [*APIError] with the status code,
// the server's message when the body carries one, and the raw body. A 2xx
// response that lacks the expected field (access_token, raw_token) is
// returned as [*MissingFieldError], which also carries the raw body so the
// caller can show the operator exactly what the backend sent. [IsStatus],
// [IsConflict] and [RawBody] inspect wrapped errors.
//
// Field lookup accepts the value at the top level of the JSON document or
// nested under a "data" envelope, the two shapes the backend has used.
package authapi
