// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers: reporting an error
// from run() on stderr and exiting with the right status, before or
// after the structured logger exists.
package process
