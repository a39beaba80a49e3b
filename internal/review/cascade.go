// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/olegiv/pressroom-go/internal/store"
)

// DeleteDraft removes a draft that never produced an article.
func (g *Gate) DeleteDraft(ctx context.Context, draftID int64) error {
	if err := g.queries.DeleteDraft(ctx, draftID); err != nil {
		return fmt.Errorf("deleting draft %d: %w", draftID, err)
	}
	return nil
}

// DeleteDraftAndArticle removes a published draft together with its
// article and the article's dependents: quiz attempts, quiz, likes,
// comments, article, then the draft. The companion article is found by shared id, falling
// back to an (author, title) lookup for legacy rows published before
// drafts and articles shared ids.
//
// Each sub-delete is independent and best-effort. A failure removing the
// article or its dependents is logged and does not stop the draft delete,
// so orphaned rows are a rare but possible outcome.
func (g *Gate) DeleteDraftAndArticle(ctx context.Context, draftID, userID int64, title string) error {
	article, found, err := g.resolveArticle(ctx, draftID, userID, title)
	if err != nil {
		g.logger.Warn("article lookup failed during cascade delete",
			"draft_id", draftID, "error", err)
	}

	if found {
		g.deleteArticleCascade(ctx, article.ID)
	}

	if err := g.queries.DeleteDraft(ctx, draftID); err != nil {
		return fmt.Errorf("deleting draft %d: %w", draftID, err)
	}

	g.logger.Info("published draft deleted", "draft_id", draftID, "article_found", found)
	return nil
}

// resolveArticle locates the article a published draft belongs to.
func (g *Gate) resolveArticle(ctx context.Context, draftID, userID int64, title string) (store.Article, bool, error) {
	article, err := g.queries.GetArticle(ctx, draftID)
	if err == nil {
		return article, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return store.Article{}, false, err
	}

	article, err = g.queries.GetArticleByAuthorAndTitle(ctx, store.GetArticleByAuthorAndTitleParams{
		AuthorID: userID,
		Title:    title,
	})
	if err == nil {
		return article, true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.Article{}, false, nil
	}
	return store.Article{}, false, err
}

// deleteArticleCascade removes an article's dependents and then the
// article itself, logging and continuing past individual failures.
func (g *Gate) deleteArticleCascade(ctx context.Context, articleID int64) {
	// Attempts go before the quiz they reference
	if quiz, err := g.queries.GetQuizByArticle(ctx, articleID); err == nil {
		if err := g.queries.DeleteAttemptsByQuiz(ctx, quiz.ID); err != nil {
			g.logger.Warn("cascade: attempts delete failed", "quiz_id", quiz.ID, "error", err)
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		g.logger.Warn("cascade: quiz lookup failed", "article_id", articleID, "error", err)
	}
	if err := g.queries.DeleteQuizByArticle(ctx, articleID); err != nil {
		g.logger.Warn("cascade: quiz delete failed", "article_id", articleID, "error", err)
	}
	if err := g.queries.DeleteLikesByArticle(ctx, articleID); err != nil {
		g.logger.Warn("cascade: likes delete failed", "article_id", articleID, "error", err)
	}
	if err := g.queries.DeleteCommentsByArticle(ctx, articleID); err != nil {
		g.logger.Warn("cascade: comments delete failed", "article_id", articleID, "error", err)
	}
	if err := g.queries.DeleteArticle(ctx, articleID); err != nil {
		g.logger.Warn("cascade: article delete failed", "article_id", articleID, "error", err)
	}
}
