// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads pipeup-bootstrap settings.
//
// Values are layered, lowest precedence first:
//
//   - built-in defaults ([Default])
//   - a YAML file: the explicit --config path, else $PIPEUP_BOOTSTRAP_CONFIG,
//     else [DefaultPath] ($XDG_CONFIG_HOME/pipeup/bootstrap.yaml)
//   - PIPEUP_* environment variables (see the Env constants)
//   - command-line flags, applied by the caller after [Load]
//
// A missing file at the default path is not an error. A missing file that
// was named explicitly is.
//
// [LoadDotEnv] populates the process environment from a .env file before
// loading; variables that are already set win over the file.
//
// ${VAR} and ${VAR:-default} patterns are expanded in api_url and
// env_file after loading.
//
// Validation failures are returned as [*Error] wrapping [ErrInvalid].
package config
