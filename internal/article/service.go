// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package article serves published articles and their social surface:
// listing, likes and comments. Articles themselves are immutable here;
// only the review gate creates or removes them.
package article

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/pressroom-go/internal/cache"
	"github.com/olegiv/pressroom-go/internal/model"
	"github.com/olegiv/pressroom-go/internal/notify"
	"github.com/olegiv/pressroom-go/internal/store"
	"github.com/olegiv/pressroom-go/internal/util"
)

// Service errors.
var (
	ErrNotFound     = errors.New("article not found")
	ErrEmptyComment = errors.New("comment body is empty")
)

// DefaultPageSize is the article list page size when none is requested.
const DefaultPageSize = 20

// listCacheTTL bounds staleness of the cached article listing. Writes
// never invalidate; pages age out.
const listCacheTTL = 30 * time.Second

// Page is one page of the published article listing.
type Page struct {
	Articles []model.Article `json:"articles"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PerPage  int             `json:"per_page"`
}

// Service reads published articles and records likes and comments.
type Service struct {
	queries  *store.Queries
	notifier *notify.Service
	logger   *slog.Logger
	sanitize *bluemonday.Policy
	pages    *cache.TypedCache[Page]
}

// NewService creates an article Service. The cache and notifier may be
// nil; listing then always hits storage and social events go unannounced.
func NewService(db *sql.DB, c cache.Cacher, notifier *notify.Service, logger *slog.Logger) *Service {
	s := &Service{
		queries:  store.New(db),
		notifier: notifier,
		logger:   logger,
		sanitize: bluemonday.UGCPolicy(),
	}
	if c != nil {
		s.pages = cache.NewTypedCache[Page](c, listCacheTTL)
	}
	return s
}

// List returns one page of published articles, newest first.
func (s *Service) List(ctx context.Context, page, perPage int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = DefaultPageSize
	}

	load := func() (*Page, error) {
		rows, err := s.queries.ListPublishedArticles(ctx, store.ListPublishedArticlesParams{
			Limit:  int64(perPage),
			Offset: int64((page - 1) * perPage),
		})
		if err != nil {
			return nil, fmt.Errorf("listing articles: %w", err)
		}
		total, err := s.queries.CountPublishedArticles(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting articles: %w", err)
		}

		articles := make([]model.Article, 0, len(rows))
		for _, row := range rows {
			articles = append(articles, *FromStore(row))
		}
		return &Page{Articles: articles, Total: total, Page: page, PerPage: perPage}, nil
	}

	if s.pages == nil {
		return load()
	}
	key := fmt.Sprintf("articles:%d:%d", page, perPage)
	return s.pages.GetOrSet(ctx, key, load)
}

// Get returns an article by id.
func (s *Service) Get(ctx context.Context, id int64) (*model.Article, error) {
	row, err := s.queries.GetArticle(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting article %d: %w", id, err)
	}
	return FromStore(row), nil
}

// GetBySlug returns an article by its slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*model.Article, error) {
	row, err := s.queries.GetArticleBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting article %q: %w", slug, err)
	}
	return FromStore(row), nil
}

// Like records a user's like on an article, idempotently. The
// denormalized counter on the article row is refreshed from the likes
// table after every change.
func (s *Service) Like(ctx context.Context, articleID, userID int64) (int64, error) {
	row, err := s.queries.GetArticle(ctx, articleID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("getting article %d: %w", articleID, err)
	}

	_, err = s.queries.CreateLike(ctx, store.CreateLikeParams{
		ArticleID: articleID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	})
	switch {
	case err == nil:
		s.notifyAuthor(ctx, row, userID)
	case store.IsUniqueViolation(err):
		// Already liked; fall through to the recount
	default:
		return 0, fmt.Errorf("liking article %d: %w", articleID, err)
	}

	return s.refreshLikeCount(ctx, articleID)
}

// Unlike removes a user's like. Removing an absent like is a no-op.
func (s *Service) Unlike(ctx context.Context, articleID, userID int64) (int64, error) {
	removed, err := s.queries.DeleteLike(ctx, store.DeleteLikeParams{
		ArticleID: articleID,
		UserID:    userID,
	})
	if err != nil {
		return 0, fmt.Errorf("unliking article %d: %w", articleID, err)
	}
	if removed == 0 {
		return s.queries.CountLikesByArticle(ctx, articleID)
	}
	return s.refreshLikeCount(ctx, articleID)
}

// Comment stores a sanitized comment and returns it with the author's
// display name resolved.
func (s *Service) Comment(ctx context.Context, articleID, userID int64, body string) (*model.Comment, error) {
	body = strings.TrimSpace(s.sanitize.Sanitize(body))
	if body == "" {
		return nil, ErrEmptyComment
	}

	row, err := s.queries.GetArticle(ctx, articleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting article %d: %w", articleID, err)
	}

	created, err := s.queries.CreateComment(ctx, store.CreateCommentParams{
		ArticleID: articleID,
		UserID:    userID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("commenting on article %d: %w", articleID, err)
	}

	s.notifyCommented(ctx, row, userID)

	comment := commentFromStore(created, nil)
	if u, err := s.queries.GetUser(ctx, userID); err == nil {
		comment.AuthorName = u.Name
	}
	return comment, nil
}

// Comments returns an article's comments, oldest first, with author
// names resolved. Missing users keep the placeholder name.
func (s *Service) Comments(ctx context.Context, articleID int64) ([]model.Comment, error) {
	rows, err := s.queries.ListCommentsByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("listing comments for article %d: %w", articleID, err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	users, err := s.queries.GetUsersByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("comment author lookup failed, using placeholders", "error", err)
		users = nil
	}

	comments := make([]model.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, *commentFromStore(row, users))
	}
	return comments, nil
}

// refreshLikeCount recounts likes and writes the counter back to the
// article row. The count from the likes table is authoritative.
func (s *Service) refreshLikeCount(ctx context.Context, articleID int64) (int64, error) {
	count, err := s.queries.CountLikesByArticle(ctx, articleID)
	if err != nil {
		return 0, fmt.Errorf("counting likes for article %d: %w", articleID, err)
	}
	if err := s.queries.SetArticleLikes(ctx, articleID, count); err != nil {
		s.logger.Warn("like counter update failed", "article_id", articleID, "error", err)
	}
	return count, nil
}

func (s *Service) notifyAuthor(ctx context.Context, row store.Article, likerID int64) {
	if s.notifier == nil || row.AuthorID == likerID {
		return
	}
	if _, err := s.notifier.Notify(ctx, row.AuthorID, model.NotificationTypeLike,
		"Someone liked your article", fmt.Sprintf("%q received a like.", row.Title),
		"/articles/"+row.Slug); err != nil {
		s.logger.Warn("like notification failed", "article_id", row.ID, "error", err)
	}
}

func (s *Service) notifyCommented(ctx context.Context, row store.Article, commenterID int64) {
	if s.notifier == nil || row.AuthorID == commenterID {
		return
	}
	if _, err := s.notifier.Notify(ctx, row.AuthorID, model.NotificationTypeComment,
		"New comment on your article", fmt.Sprintf("%q has a new comment.", row.Title),
		"/articles/"+row.Slug); err != nil {
		s.logger.Warn("comment notification failed", "article_id", row.ID, "error", err)
	}
}

// FromStore converts a store row to the domain article.
func FromStore(row store.Article) *model.Article {
	a := &model.Article{
		ID:            row.ID,
		Slug:          row.Slug,
		AuthorID:      row.AuthorID,
		Title:         row.Title,
		ContentHtml:   row.ContentHtml,
		Excerpt:       row.Excerpt,
		CoverImageURL: row.CoverImageUrl,
		Tags:          []string{},
		CustomAuthor:  util.PtrFromNullString(row.CustomAuthor),
		Status:        row.Status,
		Likes:         row.Likes,
		Featured:      row.Featured,
		PublishedAt:   row.PublishedAt,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.Tags != "" {
		_ = json.Unmarshal([]byte(row.Tags), &a.Tags)
	}
	return a
}

func commentFromStore(row store.Comment, users map[int64]store.User) *model.Comment {
	c := &model.Comment{
		ID:         row.ID,
		ArticleID:  row.ArticleID,
		UserID:     row.UserID,
		AuthorName: "Anonymous",
		Body:       row.Body,
		CreatedAt:  row.CreatedAt,
	}
	if u, ok := users[row.UserID]; ok {
		c.AuthorName = u.Name
	}
	return c
}
