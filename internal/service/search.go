// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/olegiv/pressroom-go/internal/store"
)

// SearchService provides full-text article search using SQLite FTS5.
type SearchService struct {
	db      *sql.DB
	queries *store.Queries
}

// SearchResult represents a single search result with match highlight.
type SearchResult struct {
	ID          int64
	Title       string
	Slug        string
	Excerpt     string
	Highlight   string
	PublishedAt time.Time
	Rank        float64
}

// SearchParams holds search parameters.
type SearchParams struct {
	Query  string
	Limit  int
	Offset int
}

// NewSearchService creates a new search service.
func NewSearchService(db *sql.DB) *SearchService {
	return &SearchService{db: db, queries: store.New(db)}
}

// escapeQuery escapes special FTS5 characters in the query.
func (s *SearchService) escapeQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}

	// Strip FTS5 operators; keep letters and numbers of any script
	re := regexp.MustCompile(`[^\p{L}\p{N}\s_-]`)
	query = re.ReplaceAllString(query, " ")

	words := strings.Fields(query)
	if len(words) == 0 {
		return ""
	}

	// Quote each term and add a prefix wildcard for forgiving matching
	var terms []string
	for _, word := range words {
		if word != "" {
			terms = append(terms, `"`+word+`"*`)
		}
	}

	return strings.Join(terms, " OR ")
}

// SearchArticles searches published articles using FTS5. The bm25(),
// snippet() and MATCH functions are FTS5-specific, so these queries stay
// as direct SQL.
func (s *SearchService) SearchArticles(ctx context.Context, params SearchParams) ([]SearchResult, int64, error) {
	if params.Query == "" {
		return []SearchResult{}, 0, nil
	}

	escapedQuery := s.escapeQuery(params.Query)
	if escapedQuery == "" {
		return []SearchResult{}, 0, nil
	}

	if params.Limit <= 0 {
		params.Limit = 20
	}

	countQuery := `
		SELECT COUNT(*) FROM articles a
		INNER JOIN articles_fts ON articles_fts.rowid = a.id
		WHERE articles_fts MATCH ? AND a.status = 'published'`

	var total int64
	err := s.db.QueryRowContext(ctx, countQuery, escapedQuery).Scan(&total)
	if err != nil {
		// FTS table absent means search is simply unavailable
		if strings.Contains(err.Error(), "no such table") {
			return []SearchResult{}, 0, nil
		}
		return nil, 0, err
	}

	if total == 0 {
		return []SearchResult{}, 0, nil
	}

	// bm25() ranks relevance (lower = more relevant); snippet() provides
	// highlighted excerpts
	searchQuery := `
		SELECT
			a.id,
			a.title,
			a.slug,
			a.excerpt,
			a.published_at,
			bm25(articles_fts) as rank,
			snippet(articles_fts, 1, '<mark>', '</mark>', '...', 30) as highlight
		FROM articles a
		INNER JOIN articles_fts ON articles_fts.rowid = a.id
		WHERE articles_fts MATCH ? AND a.status = 'published'
		ORDER BY rank
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, searchQuery, escapedQuery, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Slug, &r.Excerpt, &r.PublishedAt,
			&r.Rank, &r.Highlight); err != nil {
			return nil, 0, err
		}

		r.Highlight = sanitizeHighlight(r.Highlight)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// RebuildIndex rebuilds the FTS index from the articles table. Useful
// after bulk operations such as a legacy import.
func (s *SearchService) RebuildIndex(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM articles_fts`)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO articles_fts(rowid, title, content_html, excerpt, tags)
		SELECT id, title, content_html, excerpt, tags
		FROM articles
		WHERE status = 'published'
	`)
	return err
}

// stripHTMLTags removes HTML tags from a string.
func stripHTMLTags(s string) string {
	re := regexp.MustCompile(`<[^>]*>`)
	s = re.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// sanitizeHighlight strips all HTML tags from FTS snippet output except
// the <mark> highlight tags.
func sanitizeHighlight(highlight string) string {
	if highlight == "" {
		return ""
	}

	highlight = strings.ReplaceAll(highlight, "<mark>", "\x00MARK_OPEN\x00")
	highlight = strings.ReplaceAll(highlight, "</mark>", "\x00MARK_CLOSE\x00")

	highlight = stripHTMLTags(highlight)

	highlight = strings.ReplaceAll(highlight, "\x00MARK_OPEN\x00", "<mark>")
	highlight = strings.ReplaceAll(highlight, "\x00MARK_CLOSE\x00", "</mark>")

	return strings.TrimSpace(highlight)
}
