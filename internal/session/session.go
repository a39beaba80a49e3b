// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the SQLite-backed session manager.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Lifetime is how long a session stays valid after sign-in.
const Lifetime = 24 * time.Hour

// cleanupInterval is how often expired rows are purged from the
// sessions table.
const cleanupInterval = time.Hour

// New creates a session manager backed by the sessions table.
// Secure cookies are disabled in development so sessions work over
// plain HTTP.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.NewWithCleanupInterval(db, cleanupInterval)

	sm.Lifetime = Lifetime
	sm.Cookie.Name = "pressroom_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev

	return sm
}
