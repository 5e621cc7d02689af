// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sambadstubner/pipeup-cli/lib/identity"
)

// Environment variables read by Load.
const (
	EnvConfig    = "PIPEUP_BOOTSTRAP_CONFIG"
	EnvAPIURL    = "PIPEUP_API_URL"
	EnvEmail     = "PIPEUP_BOOTSTRAP_EMAIL"
	EnvUsername  = "PIPEUP_BOOTSTRAP_USERNAME"
	EnvPassword  = "PIPEUP_BOOTSTRAP_PASSWORD"
	EnvTokenName = "PIPEUP_TOKEN_NAME"
	EnvLogLevel  = "PIPEUP_LOG_LEVEL"
)

// Defaults.
const (
	DefaultAPIURL    = "http://localhost:3001/api"
	DefaultPassword  = "password123"
	DefaultTokenName = "pipeup-cli"
	DefaultTimeout   = 30 * time.Second
	DefaultLogLevel  = "info"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Error is a configuration failure tied to a source. Path is the config
// file, or empty when the problem came from defaults, environment or
// flags.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return "config: " + e.Err.Error()
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config holds every setting of a bootstrap run.
type Config struct {
	// APIURL is the backend base URL, including any path prefix such as
	// "/api". Endpoint paths are appended to it.
	APIURL string `yaml:"api_url"`

	// Email and Username identify the account. When both are empty a
	// fresh identity is generated from IdentityPrefix and IdentityDomain.
	Email    string `yaml:"email"`
	Username string `yaml:"username"`

	// Password is used for both registration and login.
	Password string `yaml:"password"`

	// TokenName names the minted API token.
	TokenName string `yaml:"token_name"`

	// Timeout bounds the whole run.
	Timeout time.Duration `yaml:"timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	IdentityPrefix string `yaml:"identity_prefix"`
	IdentityDomain string `yaml:"identity_domain"`

	// EnvFile, when set, is a dotenv file that receives PIPEUP_TOKEN.
	EnvFile string `yaml:"env_file"`

	// Source is the config file that was read, empty if none.
	Source string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:         DefaultAPIURL,
		Password:       DefaultPassword,
		TokenName:      DefaultTokenName,
		Timeout:        DefaultTimeout,
		LogLevel:       DefaultLogLevel,
		IdentityPrefix: identity.DefaultPrefix,
		IdentityDomain: identity.DefaultDomain,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/pipeup/bootstrap.yaml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset. Empty if neither resolves.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "pipeup", "bootstrap.yaml")
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load builds the configuration from defaults, the config file and the
// process environment. path is the --config flag value and may be empty.
// The result is not validated: apply flag overrides, then call Validate.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup LookupFunc) (*Config, error) {
	explicit := path != ""
	if !explicit {
		if value, ok := lookup(EnvConfig); ok && value != "" {
			path, explicit = value, true
		} else {
			path = DefaultPath()
		}
	}

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				path = ""
			} else {
				return nil, &Error{Path: path, Err: err}
			}
		} else {
			cfg.Source = path
		}
	}

	cfg.applyEnvironment(lookup)
	cfg.expandVariables(lookup)
	return cfg, nil
}

// loadFile merges a YAML file into c. Unknown keys are rejected so a typo
// does not silently fall back to a default.
func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	return nil
}

// applyEnvironment overrides fields from PIPEUP_* variables. Empty values
// are ignored.
func (c *Config) applyEnvironment(lookup LookupFunc) {
	overrides := []struct {
		key    string
		target *string
	}{
		{EnvAPIURL, &c.APIURL},
		{EnvEmail, &c.Email},
		{EnvUsername, &c.Username},
		{EnvPassword, &c.Password},
		{EnvTokenName, &c.TokenName},
		{EnvLogLevel, &c.LogLevel},
	}
	for _, override := range overrides {
		if value, ok := lookup(override.key); ok && value != "" {
			*override.target = value
		}
	}
}

func (c *Config) expandVariables(lookup LookupFunc) {
	c.APIURL = expandVars(c.APIURL, lookup)
	c.EnvFile = expandVars(c.EnvFile, lookup)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, lookup LookupFunc) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := lookup(name); ok && value != "" {
			return value
		}
		return defaultValue
	})
}

// Level returns the parsed log level. Call Validate first; an unparseable
// level yields slog.LevelInfo.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.APIURL == "" {
		errs = append(errs, fmt.Errorf("api_url is required"))
	} else if parsed, err := url.Parse(c.APIURL); err != nil {
		errs = append(errs, fmt.Errorf("api_url %q: %w", c.APIURL, err))
	} else if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("api_url %q must be an http or https URL with a host", c.APIURL))
	}

	if c.Email != "" {
		if err := identity.ValidateEmail(c.Email); err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}
	if strings.ContainsAny(c.Username, " \t\r\n") {
		errs = append(errs, fmt.Errorf("username %q must not contain whitespace", c.Username))
	}

	if c.Password == "" {
		errs = append(errs, fmt.Errorf("password is required"))
	}
	if strings.TrimSpace(c.TokenName) == "" {
		errs = append(errs, fmt.Errorf("token_name is required"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level %q must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errs) == 0 {
		return nil
	}
	return &Error{Path: c.Source, Err: fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))}
}

// LoadDotEnv sets variables from a dotenv file that are not already in the
// environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return &Error{Path: path, Err: fmt.Errorf("reading dotenv: %w", err)}
}
