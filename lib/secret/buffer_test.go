// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"testing"
)

func TestNewFromBytes(t *testing.T) {
	source := []byte("password123")

	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != "password123" {
		t.Errorf("expected %q, got %q", "password123", got)
	}
	if buffer.Len() != len("password123") {
		t.Errorf("expected length %d, got %d", len("password123"), buffer.Len())
	}

	for index, value := range source {
		if value != 0 {
			t.Fatalf("source byte %d was not zeroed: got %d", index, value)
		}
	}
}

func TestNewFromBytes_Empty(t *testing.T) {
	if _, err := NewFromBytes(nil); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestNewFromString(t *testing.T) {
	buffer, err := NewFromString("eyJhbGciOi.session")
	if err != nil {
		t.Fatalf("NewFromString failed: %v", err)
	}
	defer buffer.Close()

	if string(buffer.Bytes()) != "eyJhbGciOi.session" {
		t.Errorf("unexpected content: %q", buffer.Bytes())
	}
}

func TestBuffer_Close(t *testing.T) {
	buffer, err := NewFromString("short-lived")
	if err != nil {
		t.Fatalf("NewFromString failed: %v", err)
	}

	if err := buffer.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if buffer.region != nil {
		t.Error("expected region to be released after Close")
	}
	if buffer.Len() != 0 {
		t.Errorf("expected Len 0 after Close, got %d", buffer.Len())
	}
}

func TestBuffer_Close_Nil(t *testing.T) {
	var buffer *Buffer
	if err := buffer.Close(); err != nil {
		t.Fatalf("Close on nil buffer: %v", err)
	}
}

func TestBuffer_String_PanicsAfterClose(t *testing.T) {
	buffer, err := NewFromString("gone")
	if err != nil {
		t.Fatalf("NewFromString failed: %v", err)
	}
	buffer.Close()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on String() after Close")
		}
	}()
	_ = buffer.String()
}

func TestZero(t *testing.T) {
	data := []byte("abc")
	Zero(data)
	for index, value := range data {
		if value != 0 {
			t.Fatalf("byte %d not zeroed", index)
		}
	}
}
