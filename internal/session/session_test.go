// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"database/sql"
	"net/http"
	"testing"

	_ "modernc.org/sqlite"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		t.Fatalf("create sessions table: %v", err)
	}
	return db
}

func TestNewProduction(t *testing.T) {
	sm := New(testDB(t), false)

	if sm.Lifetime != Lifetime {
		t.Errorf("Lifetime = %v, want %v", sm.Lifetime, Lifetime)
	}
	if sm.Cookie.Name != "pressroom_session" {
		t.Errorf("Cookie.Name = %q, want pressroom_session", sm.Cookie.Name)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("Cookie.HttpOnly should be true")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("Cookie.SameSite = %v, want Lax", sm.Cookie.SameSite)
	}
	if !sm.Cookie.Secure {
		t.Error("Cookie.Secure should be true in production")
	}
}

func TestNewDevelopment(t *testing.T) {
	sm := New(testDB(t), true)

	if sm.Cookie.Secure {
		t.Error("Cookie.Secure should be false in development")
	}
}
