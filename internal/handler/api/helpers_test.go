// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pressroom-go/internal/article"
	"github.com/olegiv/pressroom-go/internal/cache"
	"github.com/olegiv/pressroom-go/internal/draft"
	"github.com/olegiv/pressroom-go/internal/middleware"
	"github.com/olegiv/pressroom-go/internal/model"
	"github.com/olegiv/pressroom-go/internal/notify"
	"github.com/olegiv/pressroom-go/internal/quiz"
	"github.com/olegiv/pressroom-go/internal/review"
	"github.com/olegiv/pressroom-go/internal/service"
	"github.com/olegiv/pressroom-go/internal/store"
)

// testEnv bundles a full handler stack on a throwaway database.
type testEnv struct {
	db      *sql.DB
	queries *store.Queries
	handler *Handler
	router  chi.Router
	users   map[string]*model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "api_test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := notify.NewHub(logger)
	notifier := notify.NewService(db, hub, logger)
	memCache := cache.NewWithTTL(time.Minute)
	t.Cleanup(func() { _ = memCache.Close() })

	drafts := draft.NewService(db, logger)
	gate := review.NewGate(db, notifier, logger)
	articles := article.NewService(db, memCache, notifier, logger)
	quizzes := quiz.NewService(db)
	badges := quiz.NewBadgeEvaluator(notifier, logger, 0)
	recorder := quiz.NewRecorder(db, badges, logger, quiz.RecorderConfig{})
	ranker := quiz.NewRanker(db, memCache, logger)
	autosaver := draft.NewAutosaver(drafts, logger, time.Hour)

	h := NewHandler(Config{
		DB:        db,
		Sessions:  scs.New(),
		Drafts:    drafts,
		Autosaver: autosaver,
		Gate:      gate,
		Articles:  articles,
		Quizzes:   quizzes,
		Recorder:  recorder,
		Ranker:    ranker,
		Notifier:  notifier,
		Hub:       hub,
		Search:    service.NewSearchService(db),
		Events:    service.NewEventService(db),
		Logger:    logger,
	})

	env := &testEnv{
		db:      db,
		queries: store.New(db),
		handler: h,
		users:   make(map[string]*model.User),
	}

	// The test router injects the user named by the X-Test-User header
	// in place of the session middleware.
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if name := req.Header.Get("X-Test-User"); name != "" {
				if user, ok := env.users[name]; ok {
					ctx := context.WithValue(req.Context(), middleware.ContextKeyUser, user)
					req = req.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Mount("/api/v1", h.Routes())
	env.router = r

	return env
}

// addUser creates an account and registers it under name for the
// X-Test-User header.
func (env *testEnv) addUser(t *testing.T, name, role string) *model.User {
	t.Helper()

	now := time.Now().UTC()
	row, err := env.queries.CreateUser(context.Background(), store.CreateUserParams{
		Email:        name + "@example.com",
		PasswordHash: "x",
		Name:         name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}

	user := &model.User{
		ID:        row.ID,
		Email:     row.Email,
		Name:      row.Name,
		Role:      row.Role,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	env.users[name] = user
	return user
}
