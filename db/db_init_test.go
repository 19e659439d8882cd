// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"errors"
	"os"
	"testing"
)

func TestInitRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if err := Init(testContext()); !errors.Is(err, ErrDatabaseURLEnvVarNotSet) {
		t.Fatalf("expected ErrDatabaseURLEnvVarNotSet, got %v", err)
	}
}

func TestInitInvalidDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://")

	if err := Init(testContext()); err == nil {
		t.Fatalf("expected error for invalid database url")
	}
}

func TestEnabledAndClose(t *testing.T) {
	requireDatabase(t)

	if !Enabled() {
		t.Fatalf("expected pool to be initialized")
	}

	baseURL := os.Getenv("DATABASE_URL")
	if baseURL == "" {
		t.Fatalf("DATABASE_URL not set")
	}

	Close()

	if Enabled() {
		t.Fatalf("expected Close to clear the pool")
	}

	if err := initTestPool(testContext(), baseURL, testSchemaName); err != nil {
		t.Fatalf("failed to re-init pool: %v", err)
	}
}

func TestSyncSchema(t *testing.T) {
	requireDatabase(t)

	baseURL := os.Getenv("DATABASE_URL")
	if baseURL == "" {
		t.Fatalf("DATABASE_URL not set")
	}

	searchPathURL, err := withSearchPath(baseURL, testSchemaName)
	if err != nil {
		t.Fatalf("withSearchPath failed: %v", err)
	}

	t.Setenv("DATABASE_URL", searchPathURL)

	if err := SyncSchema(testContext()); err != nil {
		t.Fatalf("SyncSchema failed: %v", err)
	}
}

func TestInitSuccess(t *testing.T) {
	requireDatabase(t)

	baseURL := os.Getenv("DATABASE_URL")
	if baseURL == "" {
		t.Fatalf("DATABASE_URL not set")
	}

	Close()

	if err := Init(testContext()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if !Enabled() {
		t.Fatalf("expected pool to be initialized")
	}

	Close()

	if Enabled() {
		t.Fatalf("expected Close to clear the pool")
	}

	if err := initTestPool(testContext(), baseURL, testSchemaName); err != nil {
		t.Fatalf("failed to re-init pool: %v", err)
	}
}

func TestSyncWithoutPool(t *testing.T) {
	withoutPool(t, func() {
		if Enabled() {
			t.Fatalf("expected Enabled to be false without a pool")
		}
		if err := SyncSchema(testContext()); !errors.Is(err, ErrDatabaseConnectionNotInitialized) {
			t.Fatalf("expected ErrDatabaseConnectionNotInitialized, got %v", err)
		}
		if err := SyncReferenceRanges(testContext()); !errors.Is(err, ErrDatabaseConnectionNotInitialized) {
			t.Fatalf("expected ErrDatabaseConnectionNotInitialized, got %v", err)
		}
		if _, err := GetReferenceRange(testContext(), "Hemoglobin", AgeAdult, GenderMale); !errors.Is(err, ErrDatabaseConnectionNotInitialized) {
			t.Fatalf("expected ErrDatabaseConnectionNotInitialized, got %v", err)
		}
	})
}
