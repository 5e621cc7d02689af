// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for pipeup-bootstrap.
//
// Values are injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/sambadstubner/pipeup-cli/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/pipeup-bootstrap
package version

import (
	"fmt"
	"runtime"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version tracks the pipeup CLI release this bootstrapper targets.
	Version = "0.2.0"
)

// Info returns the string printed by "pipeup-bootstrap version".
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Full adds the Go toolchain and platform to Info.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent is sent on every auth API request.
func UserAgent() string {
	return "pipeup-bootstrap/" + Version
}
