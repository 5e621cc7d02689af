// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/joho/godotenv"

	"github.com/sambadstubner/pipeup-cli/authapi/authapitest"
	"github.com/sambadstubner/pipeup-cli/cmd/pipeup-bootstrap/cli"
	"github.com/sambadstubner/pipeup-cli/lib/config"
	"github.com/sambadstubner/pipeup-cli/lib/export"
	"github.com/sambadstubner/pipeup-cli/lib/testutil"
)

// hermetic isolates a test from the developer's config file and PIPEUP_*
// variables. Empty variables are ignored by config.Load.
func hermetic(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{
		config.EnvConfig, config.EnvAPIURL, config.EnvEmail, config.EnvUsername,
		config.EnvPassword, config.EnvTokenName, config.EnvLogLevel, export.EnvToken,
	} {
		t.Setenv(key, "")
	}
}

type result struct {
	err    error
	stdout string
	stderr string
}

func execute(t *testing.T, server *authapitest.Server, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	application := &app{stdout: &stdout, stderr: &stderr}
	full := append([]string{"--api-url", server.BaseURL(), "--dotenv", ""}, args...)
	err := application.root(context.Background()).Execute(full)
	return result{err: err, stdout: stdout.String(), stderr: stderr.String()}
}

var exportLine = regexp.MustCompile(`^export PIPEUP_TOKEN='(pu_[0-9a-f]+)'\n$`)

func TestBootstrap_FreshIdentity(t *testing.T) {
	hermetic(t)
	server := authapitest.New(t, authapitest.WithPathPrefix("/api"))

	got := execute(t, server)
	if got.err != nil {
		t.Fatalf("run failed: %v\nstderr:\n%s", got.err, got.stderr)
	}
	match := exportLine.FindStringSubmatch(got.stdout)
	if match == nil {
		t.Fatalf("stdout = %q, want an export line", got.stdout)
	}
	if !server.ValidAPIToken(match[1]) {
		t.Errorf("token %q was not minted by the server", match[1])
	}
	if strings.Contains(got.stderr, match[1]) {
		t.Error("the full token must not appear in logs")
	}

	requests := server.Requests()
	if len(requests) != 3 {
		t.Fatalf("expected 3 requests, got %v", server.Paths())
	}
	email, _ := requests[0].Body["email"].(string)
	if !regexp.MustCompile(`^pipeup-test-[0-9a-f]{8}@example\.com$`).MatchString(email) {
		t.Errorf("generated email = %q", email)
	}
	if requests[0].Body["password"] != "password123" {
		t.Errorf("default password not used: %v", requests[0].Body["password"])
	}
	if requests[2].Body["name"] != "pipeup-cli" {
		t.Errorf("default token name not used: %v", requests[2].Body["name"])
	}
}

func TestBootstrap_ExistingAccount(t *testing.T) {
	hermetic(t)
	server := authapitest.New(t)
	server.AddUser("ci@example.com", "ci", "password123")

	got := execute(t, server, "--email", "ci@example.com")
	if got.err != nil {
		t.Fatalf("run failed: %v\nstderr:\n%s", got.err, got.stderr)
	}
	if !exportLine.MatchString(got.stdout) {
		t.Errorf("stdout = %q", got.stdout)
	}
	if !strings.Contains(got.stderr, "already exists") {
		t.Errorf("conflict should be logged, stderr:\n%s", got.stderr)
	}
}

func TestBootstrap_MissingAccessToken(t *testing.T) {
	hermetic(t)
	server := authapitest.New(t, authapitest.WithLoginBody(`{"message":"ok but no token"}`))

	got := execute(t, server)
	var exitErr *cli.ExitError
	if !errors.As(got.err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("expected exit code 1, got %v", got.err)
	}
	if !strings.Contains(got.stderr, `"access_token"`) {
		t.Errorf("stderr should name the missing field:\n%s", got.stderr)
	}
	if !strings.Contains(got.stderr, `{"message":"ok but no token"}`) {
		t.Errorf("stderr should include the raw login response:\n%s", got.stderr)
	}
	if got.stdout != "" {
		t.Errorf("stdout should be empty, got %q", got.stdout)
	}
}

func TestBootstrap_MissingRawToken(t *testing.T) {
	hermetic(t)
	server := authapitest.New(t, authapitest.WithTokenBody(`{"id":"tok_1","name":"pipeup-cli"}`))

	got := execute(t, server)
	if cli.ExitCode(got.err) != 1 {
		t.Fatalf("expected exit code 1, got %v", got.err)
	}
	if !strings.Contains(got.stderr, `"raw_token"`) || !strings.Contains(got.stderr, `{"id":"tok_1","name":"pipeup-cli"}`) {
		t.Errorf("stderr should include the field and raw token response:\n%s", got.stderr)
	}
}

func TestBootstrap_LoginRejected(t *testing.T) {
	hermetic(t)
	server := authapitest.New(t)
	server.AddUser("ci@example.com", "ci", "other-password")

	got := execute(t, server, "--email", "ci@example.com")
	var toolErr *cli.ToolError
	if !errors.As(got.err, &toolErr) || toolErr.Category != cli.CategoryForbidden {
		t.Fatalf("expected forbidden error, got %v", got.err)
	}
	if cli.ExitCode(got.err) != 1 {
		t.Errorf("ExitCode = %d", cli.ExitCode(got.err))
	}
	if !strings.Contains(got.err.Error(), "login failed") {
		t.Errorf("error should name the step: %v", got.err)
	}
	if !strings.Contains(got.stderr, "raw login response:\n"+`{"error":"invalid credentials"}`) {
		t.Errorf("stderr should include the raw login response:\n%s", got.stderr)
	}
}

func TestBootstrap_ErrorResponsesPrintedRaw(t *testing.T) {
	hermetic(t)
	long := `{"error":"` + strings.Repeat("x", 300) + `","code":"AUTH_401","hint":"check password"}`

	t.Run("login", func(t *testing.T) {
		server := authapitest.New(t, authapitest.WithLoginResponse(http.StatusUnauthorized, long))
		got := execute(t, server)
		if cli.ExitCode(got.err) != 1 {
			t.Fatalf("expected exit code 1, got %v", got.err)
		}
		if !strings.Contains(got.stderr, "raw login response:\n"+long+"\n") {
			t.Errorf("stderr should include the full login response:\n%s", got.stderr)
		}
	})

	t.Run("mint", func(t *testing.T) {
		server := authapitest.New(t, authapitest.WithTokenResponse(http.StatusBadGateway, "upstream unavailable"))
		got := execute(t, server)
		var toolErr *cli.ToolError
		if !errors.As(got.err, &toolErr) || toolErr.Category != cli.CategoryTransient {
			t.Fatalf("expected transient error, got %v", got.err)
		}
		if !strings.Contains(got.stderr, "raw create api token response:\nupstream unavailable\n") {
			t.Errorf("stderr should include the raw token response:\n%s", got.stderr)
		}
	})

	t.Run("strict registration", func(t *testing.T) {
		server := authapitest.New(t, authapitest.WithRegisterStatus(http.StatusServiceUnavailable))
		got := execute(t, server, "--require-registration")
		if cli.ExitCode(got.err) != 1 {
			t.Fatalf("expected exit code 1, got %v", got.err)
		}
		if !strings.Contains(got.stderr, "raw register response:") {
			t.Errorf("stderr should include the raw register response:\n%s", got.stderr)
		}
	})
}

func TestBootstrap_Formats(t *testing.T) {
	hermetic(t)
	server := authapitest.New(t)

	t.Run("raw", func(t *testing.T) {
		got := execute(t, server, "--format", "raw")
		if got.err != nil {
			t.Fatalf("run failed: %v", got.err)
		}
		if !server.ValidAPIToken(strings.TrimSpace(got.stdout)) {
			t.Errorf("stdout = %q", got.stdout)
		}
	})

	t.Run("json", func(t *testing.T) {
		got := execute(t, server, "--format", "json", "--token-name", "ci", "--with-url")
		if got.err != nil {
			t.Fatalf("run failed: %v", got.err)
		}
		var payload export.Payload
		if err := json.Unmarshal([]byte(got.stdout), &payload); err != nil {
			t.Fatalf("stdout is not JSON: %v\n%s", err, got.stdout)
		}
		if !payload.Registered || payload.TokenName != "ci" || !server.ValidAPIToken(payload.Token) {
			t.Errorf("payload = %+v", payload)
		}
		if !strings.HasPrefix(payload.StreamURL, "ws://127.0.0.1:") {
			t.Errorf("StreamURL = %q", payload.StreamURL)
		}
	})

	t.Run("unknown format is a usage error", func(t *testing.T) {
		got := execute(t, server, "--format", "yaml")
		if cli.ExitCode(got.err) != cli.ExitUsage {
			t.Fatalf("expected usage error, got %v", got.err)
		}
	})
}

func TestBootstrap_EnvFile(t *testing.T) {
	hermetic(t)
	server := authapitest.New(t)
	path := filepath.Join(t.TempDir(), ".env.local")

	got := execute(t, server, "--env-file", path, "--format", "raw")
	if got.err != nil {
		t.Fatalf("run failed: %v", got.err)
	}
	values, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("reading env file: %v", err)
	}
	if values[export.EnvToken] != strings.TrimSpace(got.stdout) {
		t.Errorf("env file token %q != stdout %q", values[export.EnvToken], got.stdout)
	}
}

func TestBootstrap_Exec(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	hermetic(t)
	server := authapitest.New(t)

	t.Run("child receives the token", func(t *testing.T) {
		got := execute(t, server, "--", "sh", "-c", `printf %s "$PIPEUP_TOKEN"`)
		if got.err != nil {
			t.Fatalf("run failed: %v", got.err)
		}
		if !server.ValidAPIToken(got.stdout) {
			t.Errorf("child printed %q", got.stdout)
		}
	})

	t.Run("child exit code propagates", func(t *testing.T) {
		got := execute(t, server, "--", "sh", "-c", "exit 3")
		if cli.ExitCode(got.err) != 3 {
			t.Fatalf("expected exit code 3, got %v", got.err)
		}
	})

	t.Run("child reads stdin after the password line", func(t *testing.T) {
		server.AddUser("stdin@example.com", "stdin", "piped-secret")
		reader, writer, err := os.Pipe()
		if err != nil {
			t.Fatal(err)
		}
		defer reader.Close()
		if _, err := writer.WriteString("piped-secret\nlog line 1\nlog line 2\n"); err != nil {
			t.Fatal(err)
		}
		writer.Close()

		var stdout, stderr bytes.Buffer
		application := &app{stdin: reader, stdout: &stdout, stderr: &stderr}
		err = application.root(context.Background()).Execute([]string{
			"--api-url", server.BaseURL(), "--dotenv", "",
			"--email", "stdin@example.com", "--password-file", "-",
			"--", "cat",
		})
		if err != nil {
			t.Fatalf("run failed: %v\n%s", err, stderr.String())
		}
		if stdout.String() != "log line 1\nlog line 2\n" {
			t.Errorf("child stdin = %q", stdout.String())
		}
	})

	t.Run("positional without dash is rejected", func(t *testing.T) {
		got := execute(t, server, "--format", "raw", "sh")
		if cli.ExitCode(got.err) != cli.ExitUsage {
			t.Fatalf("expected usage error, got %v", got.err)
		}
	})
}

func TestBootstrap_ConfigFile(t *testing.T) {
	hermetic(t)
	server := authapitest.New(t)
	path := testutil.WriteFile(t, "bootstrap.yaml", "email: file@example.com\nusername: fileuser\ntoken_name: from-file\n")

	got := execute(t, server, "--config", path, "--token-name", "from-flag", "--format", "json")
	if got.err != nil {
		t.Fatalf("run failed: %v", got.err)
	}
	var payload export.Payload
	if err := json.Unmarshal([]byte(got.stdout), &payload); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if payload.Email != "file@example.com" || payload.Username != "fileuser" {
		t.Errorf("identity not taken from file: %+v", payload)
	}
	if payload.TokenName != "from-flag" {
		t.Errorf("flag should override file, got %q", payload.TokenName)
	}
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	hermetic(t)
	server := authapitest.New(t)

	got := execute(t, server, "--log-level", "loud")
	if cli.ExitCode(got.err) != cli.ExitUsage {
		t.Fatalf("expected usage error, got %v", got.err)
	}
	if !errors.Is(got.err, config.ErrInvalid) {
		t.Errorf("expected config.ErrInvalid, got %v", got.err)
	}
	if len(server.Paths()) != 0 {
		t.Errorf("no request should be sent, got %v", server.Paths())
	}
}

func TestBootstrap_BackendDown(t *testing.T) {
	hermetic(t)
	server := authapitest.New(t)
	baseURL := server.BaseURL()
	server.Close()

	var stdout, stderr bytes.Buffer
	application := &app{stdout: &stdout, stderr: &stderr}
	err := application.root(context.Background()).Execute([]string{"--api-url", baseURL, "--dotenv", ""})

	var toolErr *cli.ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != cli.CategoryTransient {
		t.Fatalf("expected transient error, got %v", err)
	}
	if !strings.Contains(err.Error(), "is the backend running") {
		t.Errorf("error = %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	var stdout bytes.Buffer
	application := &app{stdout: &stdout, stderr: &bytes.Buffer{}}
	if err := application.root(context.Background()).Execute([]string{"version"}); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "pipeup-bootstrap ") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestHelp(t *testing.T) {
	var stderr bytes.Buffer
	application := &app{stdout: &bytes.Buffer{}, stderr: &stderr}
	if err := application.root(context.Background()).Execute([]string{"--help"}); err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, fragment := range []string{"--api-url", "--env-file", "--require-registration", "version"} {
		if !strings.Contains(stderr.String(), fragment) {
			t.Errorf("help missing %q", fragment)
		}
	}
}
