// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"errors"
	"testing"
	"time"
)

func TestPostgresSessionIniterDefaults(t *testing.T) {
	initer := PostgresSessionIniter()
	store, err := initer(testContext())
	if err != nil {
		t.Fatalf("PostgresSessionIniter failed: %v", err)
	}

	pgStore, ok := store.(*PostgresSessionStore)
	if !ok {
		t.Fatalf("expected PostgresSessionStore")
	}
	if pgStore.config.TableName != DefaultSessionTable {
		t.Fatalf("expected default table name, got %q", pgStore.config.TableName)
	}
	if pgStore.config.Lifetime != DefaultSessionLifetime {
		t.Fatalf("expected default lifetime, got %v", pgStore.config.Lifetime)
	}
	if pgStore.encoder == nil || pgStore.decoder == nil {
		t.Fatalf("expected encoder and decoder to be set")
	}
}

func TestPostgresSessionIniterInvalidConfig(t *testing.T) {
	initer := PostgresSessionIniter()
	if _, err := initer(testContext(), "invalid"); !errors.Is(err, ErrInvalidSessionConfig) {
		t.Fatalf("expected ErrInvalidSessionConfig, got %v", err)
	}
}

func TestPostgresSessionIniterOverrides(t *testing.T) {
	initer := PostgresSessionIniter()
	store, err := initer(testContext(), PostgresSessionConfig{Lifetime: time.Hour, TableName: "custom_sessions"})
	if err != nil {
		t.Fatalf("PostgresSessionIniter failed: %v", err)
	}

	pgStore := store.(*PostgresSessionStore)
	if pgStore.config.TableName != "custom_sessions" {
		t.Fatalf("expected custom table name, got %q", pgStore.config.TableName)
	}
	if pgStore.config.Lifetime != time.Hour {
		t.Fatalf("expected one hour lifetime, got %v", pgStore.config.Lifetime)
	}
}

func TestPostgresSessionStoreWithoutPool(t *testing.T) {
	store, err := PostgresSessionIniter()(testContext())
	if err != nil {
		t.Fatalf("PostgresSessionIniter failed: %v", err)
	}

	withoutPool(t, func() {
		if store.Exist(testContext(), "missing") {
			t.Fatalf("expected no session without a pool")
		}
		if _, err := store.Read(testContext(), "missing"); !errors.Is(err, ErrDatabaseConnectionNotInitialized) {
			t.Fatalf("expected ErrDatabaseConnectionNotInitialized, got %v", err)
		}
	})
}
