// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [UniqueID] generates monotonically increasing identifiers so that tests
// registering users against a shared fake backend never collide on email
// or username. [WriteFile] creates a fixture file under t.TempDir().
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
