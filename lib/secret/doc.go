// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds short-lived credentials (the bootstrap password and
// the login session token) outside the Go heap.
//
// [Buffer] memory comes from an anonymous mmap, is mlocked so it never
// reaches swap, and is marked MADV_DONTDUMP so a crash does not write it
// into a core file. Close zeroes and unmaps it.
//
// Constructors:
//
//   - [NewFromBytes] -- copies into protected memory and zeroes the source
//   - [NewFromString] -- same, for values that arrive as strings (flags,
//     environment variables, JSON fields)
//   - [ReadFromPath] -- reads a file, or stdin for "-", trimming whitespace
//
// The API token minted at the end of a bootstrap run is not held here: it
// is the program's output and is written to stdout, a dotenv file, or a
// child process environment.
//
// Depends on golang.org/x/sys/unix.
package secret
