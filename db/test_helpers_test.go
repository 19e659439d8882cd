// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"testing"
)

func testContext() context.Context {
	return context.Background()
}

func floatPtr(value float64) *float64 {
	return &value
}

func assertFloatPtrEqual(t *testing.T, got, want *float64) {
	t.Helper()
	if got == nil && want == nil {
		return
	}
	if got == nil || want == nil {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if *got != *want {
		t.Fatalf("expected %v, got %v", *want, *got)
	}
}

// withoutPool runs fn with the package pool cleared so lookups use the
// in-code catalog.
func withoutPool(t *testing.T, fn func()) {
	t.Helper()

	saved := pool
	pool = nil

	defer func() {
		pool = saved
	}()

	fn()
}
