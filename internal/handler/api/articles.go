// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pressroom-go/internal/article"
	"github.com/olegiv/pressroom-go/internal/middleware"
	"github.com/olegiv/pressroom-go/internal/service"
)

// maxSearchLimit caps one search response page.
const maxSearchLimit = 50

// ListArticles returns published articles, newest first.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", article.DefaultPageSize)

	result, err := h.articles.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("article listing failed", "error", err)
		WriteInternalError(w, "Failed to list articles")
		return
	}

	pages := int(result.Total) / result.PerPage
	if int(result.Total)%result.PerPage > 0 {
		pages++
	}
	WriteSuccess(w, result.Articles, &Meta{
		Total:   result.Total,
		Page:    result.Page,
		PerPage: result.PerPage,
		Pages:   pages,
	})
}

// GetArticle returns one article by id.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid article ID", nil)
		return
	}

	a, err := h.articles.Get(r.Context(), id)
	if errors.Is(err, article.ErrNotFound) {
		WriteNotFound(w, "Article not found")
		return
	}
	if err != nil {
		h.logger.Error("article lookup failed", "article_id", id, "error", err)
		WriteInternalError(w, "Failed to load article")
		return
	}
	WriteSuccess(w, a, nil)
}

// GetArticleBySlug returns one article by its URL slug.
func (h *Handler) GetArticleBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	a, err := h.articles.GetBySlug(r.Context(), slug)
	if errors.Is(err, article.ErrNotFound) {
		WriteNotFound(w, "Article not found")
		return
	}
	if err != nil {
		h.logger.Error("article lookup failed", "slug", slug, "error", err)
		WriteInternalError(w, "Failed to load article")
		return
	}
	WriteSuccess(w, a, nil)
}

// SearchArticles runs a full-text search over published articles.
func (h *Handler) SearchArticles(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		WriteBadRequest(w, "Missing query parameter q", nil)
		return
	}

	limit := queryInt(r, "limit", 20)
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	offset := queryInt(r, "offset", 0)

	results, total, err := h.search.SearchArticles(r.Context(), service.SearchParams{
		Query:  query,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.logger.Error("article search failed", "query", query, "error", err)
		WriteInternalError(w, "Search failed")
		return
	}
	WriteSuccess(w, results, &Meta{Total: total})
}

// LikeArticle records the current user's like. Liking twice is a no-op;
// the response carries the current like count either way.
func (h *Handler) LikeArticle(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid article ID", nil)
		return
	}

	likes, err := h.articles.Like(r.Context(), id, user.ID)
	if errors.Is(err, article.ErrNotFound) {
		WriteNotFound(w, "Article not found")
		return
	}
	if err != nil {
		h.logger.Error("like failed", "article_id", id, "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to record like")
		return
	}
	WriteSuccess(w, map[string]int64{"likes": likes}, nil)
}

// UnlikeArticle withdraws the current user's like.
func (h *Handler) UnlikeArticle(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid article ID", nil)
		return
	}

	likes, err := h.articles.Unlike(r.Context(), id, user.ID)
	if errors.Is(err, article.ErrNotFound) {
		WriteNotFound(w, "Article not found")
		return
	}
	if err != nil {
		h.logger.Error("unlike failed", "article_id", id, "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to remove like")
		return
	}
	WriteSuccess(w, map[string]int64{"likes": likes}, nil)
}

// commentInput is the request body for posting a comment.
type commentInput struct {
	Body string `json:"body"`
}

// CreateComment posts a comment on an article.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid article ID", nil)
		return
	}

	var in commentInput
	if err := decodeBody(r, &in); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	comment, err := h.articles.Comment(r.Context(), id, user.ID, in.Body)
	switch {
	case errors.Is(err, article.ErrNotFound):
		WriteNotFound(w, "Article not found")
	case errors.Is(err, article.ErrEmptyComment):
		WriteValidationError(w, map[string]string{"body": "Comment body is empty"})
	case err != nil:
		h.logger.Error("comment failed", "article_id", id, "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to post comment")
	default:
		WriteCreated(w, comment)
	}
}

// ListComments returns an article's comments, oldest first.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid article ID", nil)
		return
	}

	comments, err := h.articles.Comments(r.Context(), id)
	if err != nil {
		h.logger.Error("comment listing failed", "article_id", id, "error", err)
		WriteInternalError(w, "Failed to list comments")
		return
	}
	WriteSuccess(w, comments, &Meta{Total: int64(len(comments))})
}

// queryInt reads an integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
