// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package review implements the editorial state machine that promotes
// drafts to published articles: submit, approve, reject and the cascading
// deletion of a published draft's artifacts.
package review

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/olegiv/pressroom-go/internal/article"
	"github.com/olegiv/pressroom-go/internal/draft"
	"github.com/olegiv/pressroom-go/internal/metrics"
	"github.com/olegiv/pressroom-go/internal/model"
	"github.com/olegiv/pressroom-go/internal/notify"
	"github.com/olegiv/pressroom-go/internal/store"
	"github.com/olegiv/pressroom-go/internal/util"
)

// Gate runs the draft review state machine.
type Gate struct {
	db       *sql.DB
	queries  *store.Queries
	logger   *slog.Logger
	notifier *notify.Service
	markdown goldmark.Markdown
	sanitize *bluemonday.Policy
}

// NewGate creates a review Gate. The notifier may be nil; author
// notifications are then skipped.
func NewGate(db *sql.DB, notifier *notify.Service, logger *slog.Logger) *Gate {
	return &Gate{
		db:       db,
		queries:  store.New(db),
		logger:   logger,
		notifier: notifier,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		sanitize: bluemonday.UGCPolicy(),
	}
}

// Submit moves a draft into review. Allowed from draft or rejected
// status; a rejection reason from an earlier round is cleared. The draft
// must carry a title and content or the call fails with ValidationError
// and performs no write.
func (g *Gate) Submit(ctx context.Context, draftID int64) (*model.Draft, error) {
	row, err := g.getDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if row.Status != model.DraftStatusDraft && row.Status != model.DraftStatusRejected {
		return nil, &TransitionError{DraftID: draftID, Status: row.Status, Action: "submit"}
	}
	if strings.TrimSpace(row.Title) == "" {
		metrics.IncReview("submit", "invalid")
		return nil, &ValidationError{Field: "title", Reason: "is required"}
	}
	if strings.TrimSpace(row.ContentHtml) == "" {
		metrics.IncReview("submit", "invalid")
		return nil, &ValidationError{Field: "content", Reason: "is required"}
	}

	updated, err := g.queries.UpdateDraftStatus(ctx, store.UpdateDraftStatusParams{
		ID:        draftID,
		Status:    model.DraftStatusSubmitted,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("submitting draft %d: %w", draftID, err)
	}

	metrics.IncReview("submit", "ok")
	return draft.FromStore(updated), nil
}

// Approve publishes a submitted draft. The article insert and the draft
// status flip run in one transaction; a failure there aborts the approval
// with no partial writes. Quiz creation runs after the commit and is
// deliberately best-effort: a malformed quiz never blocks publication.
func (g *Gate) Approve(ctx context.Context, draftID int64) (*model.Article, error) {
	row, err := g.getDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if row.Status != model.DraftStatusSubmitted {
		return nil, &TransitionError{DraftID: draftID, Status: row.Status, Action: "approve"}
	}
	if strings.TrimSpace(row.Title) == "" {
		metrics.IncReview("approve", "invalid")
		return nil, &ValidationError{Field: "title", Reason: "is required"}
	}

	content, err := g.renderContent(row)
	if err != nil {
		return nil, fmt.Errorf("rendering draft %d content: %w", draftID, err)
	}

	now := time.Now().UTC()
	slug, err := g.uniqueSlug(ctx, util.Slugify(row.Title))
	if err != nil {
		return nil, fmt.Errorf("resolving slug for draft %d: %w", draftID, err)
	}
	excerpt := util.Excerpt(content)

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning approval transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := g.queries.WithTx(tx)
	articleRow, err := qtx.CreateArticle(ctx, store.CreateArticleParams{
		ID:            row.ID,
		Slug:          slug,
		AuthorID:      row.UserID,
		Title:         row.Title,
		ContentHtml:   content,
		Excerpt:       excerpt,
		CoverImageUrl: row.CoverImageUrl,
		Tags:          row.Tags,
		CustomAuthor:  row.CustomAuthor,
		PublishedAt:   now,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		metrics.IncReview("approve", "error")
		return nil, fmt.Errorf("creating article for draft %d: %w", draftID, err)
	}

	if _, err := qtx.UpdateDraftStatus(ctx, store.UpdateDraftStatusParams{
		ID:        draftID,
		Status:    model.DraftStatusPublished,
		UpdatedAt: now,
	}); err != nil {
		metrics.IncReview("approve", "error")
		return nil, fmt.Errorf("marking draft %d published: %w", draftID, err)
	}

	if err := tx.Commit(); err != nil {
		metrics.IncReview("approve", "error")
		return nil, fmt.Errorf("committing approval of draft %d: %w", draftID, err)
	}

	g.createQuizBestEffort(ctx, row, articleRow.ID)

	if g.notifier != nil {
		if _, err := g.notifier.Notify(ctx, row.UserID, model.NotificationTypeArticleApproved,
			"Your article was published", fmt.Sprintf("%q is now live.", row.Title),
			"/articles/"+slug); err != nil {
			g.logger.Warn("approval notification failed", "draft_id", draftID, "error", err)
		}
	}

	metrics.IncReview("approve", "ok")
	g.logger.Info("draft approved", "draft_id", draftID, "slug", slug)
	return article.FromStore(articleRow), nil
}

// Reject returns a submitted draft to its author with an optional reason,
// stored verbatim.
func (g *Gate) Reject(ctx context.Context, draftID int64, reason *string) (*model.Draft, error) {
	row, err := g.getDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if row.Status != model.DraftStatusSubmitted {
		return nil, &TransitionError{DraftID: draftID, Status: row.Status, Action: "reject"}
	}

	updated, err := g.queries.UpdateDraftStatus(ctx, store.UpdateDraftStatusParams{
		ID:              draftID,
		Status:          model.DraftStatusRejected,
		RejectionReason: util.NullStringFromPtr(reason),
		UpdatedAt:       time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("rejecting draft %d: %w", draftID, err)
	}

	if g.notifier != nil {
		message := "Your draft needs changes before it can be published."
		if reason != nil && *reason != "" {
			message = *reason
		}
		if _, err := g.notifier.Notify(ctx, row.UserID, model.NotificationTypeArticleRejected,
			"Your draft was not approved", message, fmt.Sprintf("/drafts/%d", draftID)); err != nil {
			g.logger.Warn("rejection notification failed", "draft_id", draftID, "error", err)
		}
	}

	metrics.IncReview("reject", "ok")
	return draft.FromStore(updated), nil
}

// getDraft loads the raw store row; the gate needs the JSON columns
// untouched for the article insert.
func (g *Gate) getDraft(ctx context.Context, draftID int64) (store.Draft, error) {
	row, err := g.queries.GetDraft(ctx, draftID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Draft{}, draft.ErrNotFound
	}
	if err != nil {
		return store.Draft{}, fmt.Errorf("getting draft %d: %w", draftID, err)
	}
	return row, nil
}

// uniqueSlug appends a numeric suffix until the slug is free. The slug
// column is unique; without this a duplicate title would abort the
// approval transaction.
func (g *Gate) uniqueSlug(ctx context.Context, base string) (string, error) {
	if base == "" {
		base = "untitled"
	}

	slug := base
	for n := 2; ; n++ {
		exists, err := g.queries.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

// renderContent produces the final article HTML. Markdown drafts are
// rendered and sanitized; HTML drafts were sanitized at write time.
func (g *Gate) renderContent(row store.Draft) (string, error) {
	if row.ContentFormat != model.ContentFormatMarkdown {
		return row.ContentHtml, nil
	}

	var buf bytes.Buffer
	if err := g.markdown.Convert([]byte(row.ContentHtml), &buf); err != nil {
		return "", err
	}
	return g.sanitize.Sanitize(buf.String()), nil
}

// createQuizBestEffort normalizes the draft's questions and inserts the
// article's quiz. Failures are logged and swallowed.
func (g *Gate) createQuizBestEffort(ctx context.Context, row store.Draft, articleID int64) {
	var questions []model.QuizQuestion
	if row.QuizQuestions != "" {
		if err := json.Unmarshal([]byte(row.QuizQuestions), &questions); err != nil {
			g.logger.Warn("skipping quiz: malformed question payload",
				"draft_id", row.ID, "error", err)
			return
		}
	}
	if len(questions) == 0 {
		return
	}

	normalized := normalizeQuestions(questions)
	if len(normalized) == 0 {
		g.logger.Warn("skipping quiz: no valid questions", "draft_id", row.ID)
		return
	}

	payload, err := json.Marshal(normalized)
	if err != nil {
		g.logger.Warn("skipping quiz: encoding questions failed", "draft_id", row.ID, "error", err)
		return
	}

	if _, err := g.queries.CreateQuiz(ctx, store.CreateQuizParams{
		ArticleID: articleID,
		Questions: string(payload),
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		g.logger.Warn("quiz creation failed, article published without quiz",
			"article_id", articleID, "error", err)
	}
}

// normalizeQuestions trims text, drops invalid questions and caps the
// list at model.MaxQuizQuestions.
func normalizeQuestions(questions []model.QuizQuestion) []model.QuizQuestion {
	if len(questions) > model.MaxQuizQuestions {
		questions = questions[:model.MaxQuizQuestions]
	}

	out := make([]model.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		q.Question = strings.TrimSpace(q.Question)
		for i := range q.Options {
			q.Options[i] = strings.TrimSpace(q.Options[i])
		}
		q.Explanation = strings.TrimSpace(q.Explanation)
		if q.Validate() == nil {
			out = append(out, q)
		}
	}
	return out
}
