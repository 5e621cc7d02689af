// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package export delivers a minted API token to its consumer.
//
// A process cannot change its parent shell's environment, so the token is
// made available in one of these ways:
//
//   - [Write] prints it on stdout as a shell export line for eval, as the
//     bare token, or as JSON
//   - [WriteEnvFile] merges it into a dotenv file, keeping other keys
//   - [Exec] sets it in this process's environment and runs a child
//     command that inherits it
//
// [StreamURL] derives PIPEUP_URL (the WebSocket base the pipeup CLI dials)
// from the HTTP API URL.
package export
