// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sambadstubner/pipeup-cli/lib/netutil"
	"github.com/sambadstubner/pipeup-cli/lib/secret"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the API root, e.g. "http://localhost:3001/api".
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is
	// used; request deadlines come from the caller's context.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
	// UserAgent is sent with every request when non-empty.
	UserAgent string
}

// Client is an unauthenticated client for the auth endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// NewClient validates the base URL and returns a Client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("authapi: BaseURL is required")
	}
	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("authapi: invalid BaseURL %q: %w", config.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("authapi: BaseURL %q must use http or https", config.BaseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("authapi: BaseURL %q has no host", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		userAgent:  config.UserAgent,
	}, nil
}

// BaseURL returns the normalized base URL (no trailing slash).
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Register creates an account. The response body is returned on success
// and alongside an *APIError on failure, so callers can log what the
// backend said either way.
func (c *Client) Register(ctx context.Context, request RegisterRequest) ([]byte, error) {
	if request.Email == "" {
		return nil, fmt.Errorf("authapi: email is required for registration")
	}
	if request.Username == "" {
		return nil, fmt.Errorf("authapi: username is required for registration")
	}
	if request.Password == nil {
		return nil, fmt.Errorf("authapi: password is required for registration")
	}

	body, err := c.doRequest(ctx, "register", http.MethodPost, PathRegister, nil, registerBody{
		Email:    request.Email,
		Username: request.Username,
		Password: request.Password.String(),
	})
	if err != nil {
		return body, err
	}

	c.logger.Debug("registered account",
		"email", request.Email,
		"username", request.Username,
	)
	return body, nil
}

// Login exchanges credentials for a Session. The password Buffer is read
// but not closed. A 2xx response without an access_token yields a
// *MissingFieldError carrying the raw body.
func (c *Client) Login(ctx context.Context, email string, password *secret.Buffer) (*Session, error) {
	if email == "" {
		return nil, fmt.Errorf("authapi: email is required for login")
	}
	if password == nil {
		return nil, fmt.Errorf("authapi: password is required for login")
	}

	body, err := c.doRequest(ctx, "login", http.MethodPost, PathLogin, nil, LoginRequest{
		Email:    email,
		Password: password.String(),
	})
	if err != nil {
		return nil, err
	}

	accessToken := lookupString(body, FieldAccessToken)
	if accessToken == "" {
		return nil, &MissingFieldError{Op: "login", Field: FieldAccessToken, Body: body}
	}

	session, err := NewSession(accessToken)
	if err != nil {
		return nil, err
	}
	if tokenType := lookupString(body, "token_type"); tokenType != "" {
		session.tokenType = strings.ToLower(tokenType)
	}

	c.logger.Debug("logged in", "email", email, "token_type", session.tokenType)
	return session, nil
}

// CreateAPIToken mints a named long-lived token using session as the
// bearer credential. A 2xx response without a raw_token yields a
// *MissingFieldError carrying the raw body.
func (c *Client) CreateAPIToken(ctx context.Context, session *Session, name string) (*APIToken, error) {
	if session == nil {
		return nil, fmt.Errorf("authapi: session is required to create an api token")
	}
	if name == "" {
		return nil, fmt.Errorf("authapi: token name is required")
	}

	body, err := c.doRequest(ctx, "create api token", http.MethodPost, PathAPITokens, session, CreateTokenRequest{Name: name})
	if err != nil {
		return nil, err
	}

	rawToken := lookupString(body, FieldRawToken)
	if rawToken == "" {
		return nil, &MissingFieldError{Op: "create api token", Field: FieldRawToken, Body: body}
	}

	token := &APIToken{
		ID:        lookupString(body, "id"),
		Name:      lookupString(body, "name"),
		RawToken:  rawToken,
		CreatedAt: lookupString(body, "created_at"),
	}
	if token.Name == "" {
		token.Name = name
	}

	c.logger.Debug("minted api token", "name", token.Name, "id", token.ID, "prefix", token.Prefix())
	return token, nil
}

// doRequest sends a JSON request and returns the response body. On 2xx it
// returns the body; otherwise the body and an *APIError. session may be
// nil for unauthenticated endpoints.
func (c *Client) doRequest(ctx context.Context, op, method, path string, session *Session, requestBody any) ([]byte, error) {
	requestURL := c.baseURL + path

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("authapi: %s: failed to encode request body: %w", op, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("authapi: %s: failed to create request: %w", op, err)
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if session != nil {
		request.Header.Set("Authorization", "Bearer "+session.AccessToken())
	}
	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("sending request", "op", op, "method", method, "url", requestURL)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("authapi: %s: request to %s %s failed: %w", op, method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("authapi: %s: failed to read response body: %w", op, err)
	}

	c.logger.Debug("received response",
		"op", op,
		"status", response.StatusCode,
		"bytes", len(responseBody),
	)

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	return responseBody, &APIError{
		Op:         op,
		Method:     method,
		Path:       path,
		StatusCode: response.StatusCode,
		Message:    serverMessage(responseBody),
		Body:       responseBody,
	}
}
