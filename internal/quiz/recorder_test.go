// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package quiz

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/olegiv/pressroom-go/internal/model"
	"github.com/olegiv/pressroom-go/internal/notify"
	"github.com/olegiv/pressroom-go/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "pressroom-quiz-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	})
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUser(t *testing.T, db *sql.DB, name string) store.User {
	t.Helper()
	now := time.Now().UTC()
	u, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        name + "@example.com",
		PasswordHash: "x",
		Name:         name,
		Role:         model.RoleAuthor,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// seedQuiz creates a published article for authorID with a 3-question
// quiz attached, and returns the quiz id.
func seedQuiz(t *testing.T, db *sql.DB, authorID int64) int64 {
	t.Helper()
	ctx := context.Background()
	queries := store.New(db)
	now := time.Now().UTC()

	d, err := queries.CreateDraft(ctx, store.CreateDraftParams{
		UserID:        authorID,
		Title:         "Quiz Source",
		ContentHtml:   "<p>body</p>",
		ContentFormat: model.ContentFormatHTML,
		Tags:          "[]",
		QuizQuestions: "[]",
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	art, err := queries.CreateArticle(ctx, store.CreateArticleParams{
		ID:          d.ID,
		Slug:        fmt.Sprintf("quiz-source-%d", d.ID),
		AuthorID:    authorID,
		Title:       "Quiz Source",
		ContentHtml: "<p>body</p>",
		Excerpt:     "body",
		Tags:        "[]",
		PublishedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}

	qz, err := queries.CreateQuiz(ctx, store.CreateQuizParams{
		ArticleID: art.ID,
		Questions: `[
			{"question":"q1","options":["a","b","c","d"],"correct_answer":0},
			{"question":"q2","options":["a","b","c","d"],"correct_answer":1},
			{"question":"q3","options":["a","b","c","d"],"correct_answer":2}
		]`,
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	return qz.ID
}

func TestSubmitAttemptStoresResult(t *testing.T) {
	db := testDB(t)
	author := seedUser(t, db, "author")
	player := seedUser(t, db, "player")
	quizID := seedQuiz(t, db, author.ID)

	rec := NewRecorder(db, nil, testLogger(), RecorderConfig{})
	attempt, err := rec.SubmitAttempt(context.Background(), SubmitInput{
		QuizID:           quizID,
		UserID:           player.ID,
		Score:            3,
		TotalQuestions:   3,
		TimeSpentSeconds: 42,
	})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	if attempt.IsLocal() {
		t.Error("attempt should be durable, got local result")
	}
	if !attempt.IsPerfect() {
		t.Error("IsPerfect = false, want true")
	}
	if attempt.TimeSpentSeconds != 42 {
		t.Errorf("TimeSpentSeconds = %d, want 42", attempt.TimeSpentSeconds)
	}
}

func TestSubmitAttemptIdempotent(t *testing.T) {
	db := testDB(t)
	author := seedUser(t, db, "author")
	player := seedUser(t, db, "player")
	quizID := seedQuiz(t, db, author.ID)
	ctx := context.Background()

	rec := NewRecorder(db, nil, testLogger(), RecorderConfig{})
	first, err := rec.SubmitAttempt(ctx, SubmitInput{
		QuizID: quizID, UserID: player.ID,
		Score: 2, TotalQuestions: 3, TimeSpentSeconds: 30,
	})
	if err != nil {
		t.Fatalf("first SubmitAttempt: %v", err)
	}

	// A retake must return the original result unchanged
	second, err := rec.SubmitAttempt(ctx, SubmitInput{
		QuizID: quizID, UserID: player.ID,
		Score: 3, TotalQuestions: 3, TimeSpentSeconds: 10,
	})
	if err != nil {
		t.Fatalf("second SubmitAttempt: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("second attempt id = %q, want %q", second.ID, first.ID)
	}
	if second.Score != 2 {
		t.Errorf("second attempt score = %d, want original 2", second.Score)
	}
}

func TestSubmitAttemptRace(t *testing.T) {
	db := testDB(t)
	author := seedUser(t, db, "author")
	player := seedUser(t, db, "player")
	quizID := seedQuiz(t, db, author.ID)

	rec := NewRecorder(db, nil, testLogger(), RecorderConfig{})
	in := SubmitInput{
		QuizID: quizID, UserID: player.ID,
		Score: 3, TotalQuestions: 3, TimeSpentSeconds: 20,
	}

	const racers = 2
	results := make([]*model.QuizAttempt, racers)
	errs := make([]error, racers)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(racers)
	for i := 0; i < racers; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			results[i], errs[i] = rec.SubmitAttempt(context.Background(), in)
		}(i)
	}
	start.Done()
	done.Wait()

	for i := 0; i < racers; i++ {
		if errs[i] != nil {
			t.Fatalf("racer %d: %v", i, errs[i])
		}
		if results[i].IsLocal() {
			t.Fatalf("racer %d got a local result", i)
		}
		if results[i].ID != results[0].ID {
			t.Errorf("racer %d id = %q, want %q", i, results[i].ID, results[0].ID)
		}
	}

	// Exactly one durable row exists
	var count int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM quiz_attempts WHERE quiz_id = ? AND user_id = ?`,
		quizID, player.ID).Scan(&count); err != nil {
		t.Fatalf("counting attempts: %v", err)
	}
	if count != 1 {
		t.Errorf("attempt rows = %d, want 1", count)
	}
}

func TestSubmitAttemptDegradesWhenStorageUnavailable(t *testing.T) {
	f, err := os.CreateTemp("", "pressroom-quiz-degrade-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()
	defer func() { _ = os.Remove(dbPath) }()

	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	_ = db.Close() // every query from here on fails

	rec := NewRecorder(db, nil, testLogger(), RecorderConfig{
		Policy:  RetryPolicy{MaxAttempts: 1},
		Timeout: time.Second,
	})
	attempt, err := rec.SubmitAttempt(context.Background(), SubmitInput{
		QuizID: 1, UserID: 1,
		Score: 2, TotalQuestions: 3, TimeSpentSeconds: 15,
	})
	if err != nil {
		t.Fatalf("SubmitAttempt should degrade, not fail: %v", err)
	}

	if !attempt.IsLocal() {
		t.Errorf("attempt id = %q, want %s prefix", attempt.ID, model.LocalAttemptIDPrefix)
	}
	if attempt.Score != 2 || attempt.TotalQuestions != 3 || attempt.TimeSpentSeconds != 15 {
		t.Errorf("degraded result lost fields: %+v", attempt)
	}
}

func TestSubmitAttemptAwardsBadge(t *testing.T) {
	db := testDB(t)
	author := seedUser(t, db, "author")
	player := seedUser(t, db, "player")
	quizID := seedQuiz(t, db, author.ID)
	ctx := context.Background()

	notifier := notify.NewService(db, nil, testLogger())
	badges := NewBadgeEvaluator(notifier, testLogger(), 10)
	rec := NewRecorder(db, badges, testLogger(), RecorderConfig{})

	if _, err := rec.SubmitAttempt(ctx, SubmitInput{
		QuizID: quizID, UserID: player.ID,
		Score: 3, TotalQuestions: 3, TimeSpentSeconds: 25,
	}); err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	notifications, err := notifier.List(ctx, player.ID, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifications))
	}
	if notifications[0].Type != model.NotificationTypeAchievement {
		t.Errorf("notification type = %q, want achievement", notifications[0].Type)
	}

	// The idempotent path must not award again
	if _, err := rec.SubmitAttempt(ctx, SubmitInput{
		QuizID: quizID, UserID: player.ID,
		Score: 3, TotalQuestions: 3, TimeSpentSeconds: 5,
	}); err != nil {
		t.Fatalf("retake SubmitAttempt: %v", err)
	}
	notifications, err = notifier.List(ctx, player.ID, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notifications) != 1 {
		t.Errorf("notifications after retake = %d, want 1", len(notifications))
	}
}

func TestBadgeEvaluatorThreshold(t *testing.T) {
	db := testDB(t)
	player := seedUser(t, db, "player")
	ctx := context.Background()

	notifier := notify.NewService(db, nil, testLogger())
	badges := NewBadgeEvaluator(notifier, testLogger(), 3)

	badges.Evaluate(ctx, player.ID, 4) // outside threshold
	badges.Evaluate(ctx, player.ID, 0) // invalid rank
	badges.Evaluate(ctx, player.ID, 3) // qualifies

	notifications, err := notifier.List(ctx, player.ID, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notifications) != 1 {
		t.Errorf("notifications = %d, want 1", len(notifications))
	}
}
