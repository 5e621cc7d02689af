// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package authapitest runs an in-process fake of the Pipeup auth API for
// tests. It implements POST /auth/register, POST /auth/login and
// POST /auth/api-tokens with in-memory users, sessions and tokens, and
// records every request it receives.
//
// Behaviour can be overridden per endpoint with [WithLoginBody],
// [WithTokenBody] and [WithRegisterStatus] to reproduce a misbehaving
// backend.
package authapitest

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Request is one request observed by the fake server.
type Request struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	Body          map[string]any
}

type user struct {
	id       string
	email    string
	username string
	password string
}

// Server is a running fake backend. Use URL (or BaseURL) as the client's
// base URL.
type Server struct {
	*httptest.Server

	prefix string

	mu             sync.Mutex
	users          map[string]*user  // by email
	sessions       map[string]string // access token -> email
	apiTokens      map[string]string // raw token -> email
	requests       []Request
	loginBody      *string
	loginStatus    int
	tokenBody      *string
	tokenStatus    int
	registerStatus int
}

// Option customizes a Server.
type Option func(*Server)

// WithLoginBody makes login answer 200 with body verbatim, regardless of
// credentials.
func WithLoginBody(body string) Option {
	return WithLoginResponse(http.StatusOK, body)
}

// WithLoginResponse makes login answer status with body verbatim.
func WithLoginResponse(status int, body string) Option {
	return func(s *Server) { s.loginStatus, s.loginBody = status, &body }
}

// WithTokenBody makes token creation answer 201 with body verbatim for any
// authenticated request.
func WithTokenBody(body string) Option {
	return WithTokenResponse(http.StatusCreated, body)
}

// WithTokenResponse makes token creation answer status with body verbatim
// for any authenticated request.
func WithTokenResponse(status int, body string) Option {
	return func(s *Server) { s.tokenStatus, s.tokenBody = status, &body }
}

// WithRegisterStatus makes every registration fail with status and a JSON
// error body.
func WithRegisterStatus(status int) Option {
	return func(s *Server) { s.registerStatus = status }
}

// WithPathPrefix mounts the endpoints under prefix (e.g. "/api").
func WithPathPrefix(prefix string) Option {
	return func(s *Server) { s.prefix = strings.TrimRight(prefix, "/") }
}

// New starts a fake server and registers its shutdown with t.Cleanup.
func New(t testing.TB, options ...Option) *Server {
	t.Helper()
	server := &Server{
		users:     make(map[string]*user),
		sessions:  make(map[string]string),
		apiTokens: make(map[string]string),
	}
	for _, option := range options {
		option(server)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+server.prefix+"/auth/register", server.handleRegister)
	mux.HandleFunc("POST "+server.prefix+"/auth/login", server.handleLogin)
	mux.HandleFunc("POST "+server.prefix+"/auth/api-tokens", server.handleCreateToken)

	server.Server = httptest.NewServer(server.record(mux))
	t.Cleanup(server.Close)
	return server
}

// BaseURL is the URL a client should be configured with, including any
// path prefix.
func (s *Server) BaseURL() string {
	return s.URL + s.prefix
}

// AddUser seeds an existing account, as if registered by an earlier run.
func (s *Server) AddUser(email, username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = &user{id: uuid.NewString(), email: email, username: username, password: password}
}

// HasUser reports whether an account with email exists.
func (s *Server) HasUser(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[email]
	return ok
}

// ValidAPIToken reports whether raw was minted by this server.
func (s *Server) ValidAPIToken(raw string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.apiTokens[raw]
	return ok
}

// Requests returns a copy of the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Paths returns the request paths received so far, in order.
func (s *Server) Paths() []string {
	requests := s.Requests()
	paths := make([]string, len(requests))
	for index, request := range requests {
		paths[index] = request.Path
	}
	return paths
}

// record captures each request (decoding its JSON body) before passing it
// on. The body is re-readable by the inner handler via the decoded map.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		var body map[string]any
		if request.Body != nil {
			_ = json.NewDecoder(request.Body).Decode(&body)
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        request.Method,
			Path:          request.URL.Path,
			Authorization: request.Header.Get("Authorization"),
			ContentType:   request.Header.Get("Content-Type"),
			Body:          body,
		})
		s.mu.Unlock()
		next.ServeHTTP(writer, request.WithContext(withBody(request.Context(), body)))
	})
}

func (s *Server) handleRegister(writer http.ResponseWriter, request *http.Request) {
	if s.registerStatus != 0 {
		writeJSON(writer, s.registerStatus, map[string]any{"error": "registration disabled"})
		return
	}

	body := bodyFrom(request.Context())
	email, username, password := stringValue(body, "email"), stringValue(body, "username"), stringValue(body, "password")
	if email == "" || username == "" || password == "" {
		writeJSON(writer, http.StatusBadRequest, map[string]any{"error": "email, username and password are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		writeJSON(writer, http.StatusConflict, map[string]any{"error": "user already exists"})
		return
	}
	account := &user{id: uuid.NewString(), email: email, username: username, password: password}
	s.users[email] = account
	writeJSON(writer, http.StatusCreated, map[string]any{
		"id":       account.id,
		"email":    account.email,
		"username": account.username,
	})
}

func (s *Server) handleLogin(writer http.ResponseWriter, request *http.Request) {
	if s.loginBody != nil {
		writeRaw(writer, s.loginStatus, *s.loginBody)
		return
	}

	body := bodyFrom(request.Context())
	email, password := stringValue(body, "email"), stringValue(body, "password")

	s.mu.Lock()
	defer s.mu.Unlock()
	account, exists := s.users[email]
	if !exists || account.password != password {
		writeJSON(writer, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
		return
	}
	accessToken := randomToken("sess_")
	s.sessions[accessToken] = email
	writeJSON(writer, http.StatusOK, map[string]any{
		"access_token": accessToken,
		"token_type":   "bearer",
		"expires_in":   3600,
	})
}

func (s *Server) handleCreateToken(writer http.ResponseWriter, request *http.Request) {
	accessToken, ok := strings.CutPrefix(request.Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	defer s.mu.Unlock()
	email, valid := s.sessions[accessToken]
	if !ok || !valid {
		writeJSON(writer, http.StatusUnauthorized, map[string]any{"error": "missing or invalid bearer token"})
		return
	}
	if s.tokenBody != nil {
		writeRaw(writer, s.tokenStatus, *s.tokenBody)
		return
	}

	name := stringValue(bodyFrom(request.Context()), "name")
	if name == "" {
		writeJSON(writer, http.StatusBadRequest, map[string]any{"error": "name is required"})
		return
	}
	rawToken := randomToken("pu_")
	s.apiTokens[rawToken] = email
	writeJSON(writer, http.StatusCreated, map[string]any{
		"id":         uuid.NewString(),
		"name":       name,
		"raw_token":  rawToken,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func randomToken(prefix string) string {
	bytes := make([]byte, 24)
	if _, err := rand.Read(bytes); err != nil {
		panic("authapitest: crypto/rand failed: " + err.Error())
	}
	return prefix + hex.EncodeToString(bytes)
}

func stringValue(body map[string]any, key string) string {
	value, _ := body[key].(string)
	return value
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(payload)
}

func writeRaw(writer http.ResponseWriter, status int, body string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	writer.Write([]byte(body))
}
