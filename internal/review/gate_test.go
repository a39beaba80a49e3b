// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package review

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/pressroom-go/internal/draft"
	"github.com/olegiv/pressroom-go/internal/model"
	"github.com/olegiv/pressroom-go/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "pressroom-review-test-*.db")
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

func createUser(t *testing.T, db *sql.DB, email string) store.User {
	t.Helper()
	now := time.Now().UTC()
	u, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: "x",
		Name:         "Test Author",
		Role:         model.RoleAuthor,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func createDraft(t *testing.T, db *sql.DB, userID int64, title, content string) store.Draft {
	t.Helper()
	now := time.Now().UTC()
	d, err := store.New(db).CreateDraft(context.Background(), store.CreateDraftParams{
		UserID:        userID,
		Title:         title,
		ContentHtml:   content,
		ContentFormat: model.ContentFormatHTML,
		Tags:          "[]",
		QuizQuestions: "[]",
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	return d
}

func TestSubmitValidation(t *testing.T) {
	db := testDB(t)
	gate := NewGate(db, nil, testLogger())
	ctx := context.Background()
	user := createUser(t, db, "author@example.com")

	tests := []struct {
		name    string
		title   string
		content string
		field   string
	}{
		{"empty title", "", "<p>body</p>", "title"},
		{"whitespace title", "   ", "<p>body</p>", "title"},
		{"empty content", "A Title", "", "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := createDraft(t, db, user.ID, tt.title, tt.content)

			_, err := gate.Submit(ctx, d.ID)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Submit error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.field)
			}

			// No write happened
			row, err := store.New(db).GetDraft(ctx, d.ID)
			if err != nil {
				t.Fatalf("GetDraft: %v", err)
			}
			if row.Status != model.DraftStatusDraft {
				t.Errorf("status after failed submit = %q, want draft", row.Status)
			}
		})
	}
}

func TestSubmitFromRejectedClearsReason(t *testing.T) {
	db := testDB(t)
	gate := NewGate(db, nil, testLogger())
	ctx := context.Background()
	user := createUser(t, db, "author@example.com")
	d := createDraft(t, db, user.ID, "Needs Work", "<p>body</p>")

	if _, err := gate.Submit(ctx, d.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	reason := "too short"
	rejected, err := gate.Reject(ctx, d.ID, &reason)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != model.DraftStatusRejected {
		t.Fatalf("status = %q, want rejected", rejected.Status)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != reason {
		t.Fatalf("RejectionReason = %v, want %q", rejected.RejectionReason, reason)
	}

	resubmitted, err := gate.Submit(ctx, d.ID)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.Status != model.DraftStatusSubmitted {
		t.Errorf("status = %q, want submitted", resubmitted.Status)
	}
	if resubmitted.RejectionReason != nil {
		t.Errorf("RejectionReason survived resubmit: %q", *resubmitted.RejectionReason)
	}
}

func TestRejectWithoutReason(t *testing.T) {
	db := testDB(t)
	gate := NewGate(db, nil, testLogger())
	ctx := context.Background()
	user := createUser(t, db, "author@example.com")
	d := createDraft(t, db, user.ID, "A Title", "<p>body</p>")

	if _, err := gate.Submit(ctx, d.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	rejected, err := gate.Reject(ctx, d.ID, nil)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.RejectionReason != nil {
		t.Errorf("RejectionReason = %q, want nil", *rejected.RejectionReason)
	}
}

func TestTransitionErrors(t *testing.T) {
	db := testDB(t)
	gate := NewGate(db, nil, testLogger())
	ctx := context.Background()
	user := createUser(t, db, "author@example.com")
	d := createDraft(t, db, user.ID, "A Title", "<p>body</p>")

	// Approve and reject require submitted status
	for _, action := range []func() error{
		func() error { _, err := gate.Approve(ctx, d.ID); return err },
		func() error { _, err := gate.Reject(ctx, d.ID, nil); return err },
	} {
		var terr *TransitionError
		if err := action(); !errors.As(err, &terr) {
			t.Fatalf("error = %v, want TransitionError", err)
		}
	}

	// Double submit fails too
	if _, err := gate.Submit(ctx, d.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	var terr *TransitionError
	if _, err := gate.Submit(ctx, d.ID); !errors.As(err, &terr) {
		t.Fatalf("second submit error = %v, want TransitionError", err)
	}
}

func TestSubmitMissingDraft(t *testing.T) {
	db := testDB(t)
	gate := NewGate(db, nil, testLogger())

	if _, err := gate.Submit(context.Background(), 9999); !errors.Is(err, draft.ErrNotFound) {
		t.Fatalf("Submit error = %v, want draft.ErrNotFound", err)
	}
}

func TestApproveEmptyTitleFailsWithoutSideEffects(t *testing.T) {
	db := testDB(t)
	gate := NewGate(db, nil, testLogger())
	ctx := context.Background()
	queries := store.New(db)
	user := createUser(t, db, "author@example.com")
	d := createDraft(t, db, user.ID, "   ", "<p>body</p>")

	// Force the draft past the submit guard so approval sees a
	// submitted row with a blank title.
	if _, err := queries.UpdateDraftStatus(ctx, store.UpdateDraftStatusParams{
		ID:        d.ID,
		Status:    model.DraftStatusSubmitted,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("UpdateDraftStatus: %v", err)
	}

	_, err := gate.Approve(ctx, d.ID)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Approve error = %v, want ValidationError", err)
	}
	if verr.Field != "title" {
		t.Errorf("ValidationError.Field = %q, want title", verr.Field)
	}

	row, err := queries.GetDraft(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if row.Status != model.DraftStatusSubmitted {
		t.Errorf("draft status = %q, want submitted", row.Status)
	}

	var articles int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&articles); err != nil {
		t.Fatalf("counting articles: %v", err)
	}
	if articles != 0 {
		t.Errorf("articles = %d, want 0", articles)
	}
}

func TestApprovePublishesArticle(t *testing.T) {
	db := testDB(t)
	gate := NewGate(db, nil, testLogger())
	ctx := context.Background()
	queries := store.New(db)
	user := createUser(t, db, "author@example.com")
	d := createDraft(t, db, user.ID, "Hello, World!", "<p>some body text here</p>")

	if _, err := gate.Submit(ctx, d.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	art, err := gate.Approve(ctx, d.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if art.ID != d.ID {
		t.Errorf("article id = %d, want draft id %d", art.ID, d.ID)
	}
	if art.Slug != "hello-world" {
		t.Errorf("slug = %q, want hello-world", art.Slug)
	}
	if art.Excerpt == "" {
		t.Error("excerpt is empty")
	}

	row, err := queries.GetDraft(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if row.Status != model.DraftStatusPublished {
		t.Errorf("draft status = %q, want published", row.Status)
	}

	// No questions on the draft, so no quiz
	if _, err := queries.GetQuizByArticle(ctx, art.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetQuizByArticle error = %v, want sql.ErrNoRows", err)
	}
}

func TestApproveSlugCollision(t *testing.T) {
	db := testDB(t)
	gate := NewGate(db, nil, testLogger())
	ctx := context.Background()
	user := createUser(t, db, "author@example.com")

	var slugs []string
	for range 3 {
		d := createDraft(t, db, user.ID, "Same Title", "<p>body</p>")
		if _, err := gate.Submit(ctx, d.ID); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		art, err := gate.Approve(ctx, d.ID)
		if err != nil {
			t.Fatalf("Approve: %v", err)
		}
		slugs = append(slugs, art.Slug)
	}

	want := []string{"same-title", "same-title-2", "same-title-3"}
	for i, w := range want {
		if slugs[i] != w {
			t.Errorf("slug[%d] = %q, want %q", i, slugs[i], w)
		}
	}
}

func TestApproveCreatesQuiz(t *testing.T) {
	db := testDB(t)
	gate := NewGate(db, nil, testLogger())
	ctx := context.Background()
	queries := store.New(db)
	user := createUser(t, db, "author@example.com")

	now := time.Now().UTC()
	d, err := queries.CreateDraft(ctx, store.CreateDraftParams{
		UserID:        user.ID,
		Title:         "Quizzed",
		ContentHtml:   "<p>body</p>",
		ContentFormat: model.ContentFormatHTML,
		Tags:          "[]",
		QuizQuestions: `[{"question":"2+2?","options":["1","2","3","4"],"correct_answer":3}]`,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	if _, err := gate.Submit(ctx, d.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	art, err := gate.Approve(ctx, d.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	qz, err := queries.GetQuizByArticle(ctx, art.ID)
	if err != nil {
		t.Fatalf("GetQuizByArticle: %v", err)
	}
	if qz.ArticleID != art.ID {
		t.Errorf("quiz article_id = %d, want %d", qz.ArticleID, art.ID)
	}
}

func TestApproveMalformedQuizDoesNotBlock(t *testing.T) {
	db := testDB(t)
	gate := NewGate(db, nil, testLogger())
	ctx := context.Background()
	queries := store.New(db)
	user := createUser(t, db, "author@example.com")

	now := time.Now().UTC()
	d, err := queries.CreateDraft(ctx, store.CreateDraftParams{
		UserID:        user.ID,
		Title:         "Broken Quiz",
		ContentHtml:   "<p>body</p>",
		ContentFormat: model.ContentFormatHTML,
		Tags:          "[]",
		QuizQuestions: `{"not": "an array"`,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	if _, err := gate.Submit(ctx, d.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	art, err := gate.Approve(ctx, d.ID)
	if err != nil {
		t.Fatalf("Approve should not fail on a malformed quiz: %v", err)
	}

	row, err := queries.GetDraft(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if row.Status != model.DraftStatusPublished {
		t.Errorf("draft status = %q, want published", row.Status)
	}
	if _, err := queries.GetQuizByArticle(ctx, art.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("quiz should have been skipped, got err = %v", err)
	}
}

func TestApproveRendersMarkdown(t *testing.T) {
	db := testDB(t)
	gate := NewGate(db, nil, testLogger())
	ctx := context.Background()
	queries := store.New(db)
	user := createUser(t, db, "author@example.com")

	now := time.Now().UTC()
	d, err := queries.CreateDraft(ctx, store.CreateDraftParams{
		UserID:        user.ID,
		Title:         "Markdown Draft",
		ContentHtml:   "# Heading\n\nSome **bold** text.",
		ContentFormat: model.ContentFormatMarkdown,
		Tags:          "[]",
		QuizQuestions: "[]",
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	if _, err := gate.Submit(ctx, d.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	art, err := gate.Approve(ctx, d.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if art.ContentHtml == d.ContentHtml {
		t.Error("markdown content was not rendered")
	}
	if !strings.Contains(art.ContentHtml, "<strong>bold</strong>") {
		t.Errorf("rendered content missing bold markup: %q", art.ContentHtml)
	}
}

func TestDeleteDraftAndArticleCascades(t *testing.T) {
	db := testDB(t)
	gate := NewGate(db, nil, testLogger())
	ctx := context.Background()
	queries := store.New(db)
	user := createUser(t, db, "author@example.com")

	now := time.Now().UTC()
	d, err := queries.CreateDraft(ctx, store.CreateDraftParams{
		UserID:        user.ID,
		Title:         "Doomed",
		ContentHtml:   "<p>body</p>",
		ContentFormat: model.ContentFormatHTML,
		Tags:          "[]",
		QuizQuestions: `[{"question":"q?","options":["a","b","c","d"],"correct_answer":0}]`,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	if _, err := gate.Submit(ctx, d.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	art, err := gate.Approve(ctx, d.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}

	quiz, err := queries.GetQuizByArticle(ctx, art.ID)
	if err != nil {
		t.Fatalf("GetQuizByArticle: %v", err)
	}

	// Attach an attempt, a like and a comment
	if _, err := queries.CreateAttempt(ctx, store.CreateAttemptParams{
		ID: "attempt-1", QuizID: quiz.ID, UserID: user.ID,
		Score: 1, TotalQuestions: 1, TimeSpent: 20, CompletedAt: now,
	}); err != nil {
		t.Fatalf("CreateAttempt: %v", err)
	}
	if _, err := queries.CreateLike(ctx, store.CreateLikeParams{
		ArticleID: art.ID, UserID: user.ID, CreatedAt: now,
	}); err != nil {
		t.Fatalf("CreateLike: %v", err)
	}
	if _, err := queries.CreateComment(ctx, store.CreateCommentParams{
		ArticleID: art.ID, UserID: user.ID, Body: "nice", CreatedAt: now,
	}); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	if err := gate.DeleteDraftAndArticle(ctx, d.ID, user.ID, "Doomed"); err != nil {
		t.Fatalf("DeleteDraftAndArticle: %v", err)
	}

	if _, err := queries.GetDraft(ctx, d.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("draft survived, err = %v", err)
	}
	if _, err := queries.GetArticle(ctx, art.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("article survived, err = %v", err)
	}
	if _, err := queries.GetQuizByArticle(ctx, art.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("quiz survived, err = %v", err)
	}
	if _, err := queries.GetAttempt(ctx, store.GetAttemptParams{
		QuizID: quiz.ID, UserID: user.ID,
	}); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("attempt survived, err = %v", err)
	}
	likes, err := queries.CountLikesByArticle(ctx, art.ID)
	if err != nil || likes != 0 {
		t.Errorf("likes = %d (err %v), want 0", likes, err)
	}
	comments, err := queries.ListCommentsByArticle(ctx, art.ID)
	if err != nil || len(comments) != 0 {
		t.Errorf("comments = %d (err %v), want 0", len(comments), err)
	}
}

func TestDeleteDraftAndArticleWithoutArticle(t *testing.T) {
	db := testDB(t)
	gate := NewGate(db, nil, testLogger())
	ctx := context.Background()
	user := createUser(t, db, "author@example.com")
	d := createDraft(t, db, user.ID, "Never Published", "<p>body</p>")

	// No companion article exists; the draft delete still proceeds
	if err := gate.DeleteDraftAndArticle(ctx, d.ID, user.ID, "Never Published"); err != nil {
		t.Fatalf("DeleteDraftAndArticle: %v", err)
	}
	if _, err := store.New(db).GetDraft(ctx, d.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("draft survived, err = %v", err)
	}
}

func TestUniqueSlugEmptyTitleFallback(t *testing.T) {
	db := testDB(t)
	gate := NewGate(db, nil, testLogger())

	slug, err := gate.uniqueSlug(context.Background(), "")
	if err != nil {
		t.Fatalf("uniqueSlug: %v", err)
	}
	if slug != "untitled" {
		t.Errorf("slug = %q, want untitled", slug)
	}
}

func TestNormalizeQuestions(t *testing.T) {
	valid := model.QuizQuestion{
		Question:      "q?",
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: 1,
	}

	questions := []model.QuizQuestion{
		valid,
		{Question: "", Options: []string{"a", "b", "c", "d"}},         // empty text
		{Question: "short options", Options: []string{"a", "b"}},     // wrong count
		{Question: "bad index", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 7},
	}

	got := normalizeQuestions(questions)
	if len(got) != 1 {
		t.Fatalf("normalizeQuestions kept %d questions, want 1", len(got))
	}
	if got[0].Question != "q?" {
		t.Errorf("kept question = %q", got[0].Question)
	}
}
