package store

import (
	"context"
	"database/sql"
	"time"
)

const articleColumns = `id, slug, author_id, title, content_html, excerpt, cover_image_url,
	tags, custom_author, status, likes, featured, published_at, created_at, updated_at`

func scanArticleRow(row *sql.Row) (Article, error) {
	var a Article
	err := row.Scan(&a.ID, &a.Slug, &a.AuthorID, &a.Title, &a.ContentHtml, &a.Excerpt,
		&a.CoverImageUrl, &a.Tags, &a.CustomAuthor, &a.Status, &a.Likes, &a.Featured,
		&a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	defer rows.Close()
	var articles []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.Slug, &a.AuthorID, &a.Title, &a.ContentHtml, &a.Excerpt,
			&a.CoverImageUrl, &a.Tags, &a.CustomAuthor, &a.Status, &a.Likes, &a.Featured,
			&a.PublishedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// CreateArticleParams holds the fields for CreateArticle.
type CreateArticleParams struct {
	ID            int64
	Slug          string
	AuthorID      int64
	Title         string
	ContentHtml   string
	Excerpt       string
	CoverImageUrl string
	Tags          string
	CustomAuthor  sql.NullString
	PublishedAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateArticle inserts a published article reusing the source draft's id.
func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (Article, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO articles (id, slug, author_id, title, content_html, excerpt,
			cover_image_url, tags, custom_author, status, likes, featured,
			published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'published', 0, 0, ?, ?, ?)
		RETURNING `+articleColumns,
		arg.ID, arg.Slug, arg.AuthorID, arg.Title, arg.ContentHtml, arg.Excerpt,
		arg.CoverImageUrl, arg.Tags, arg.CustomAuthor, arg.PublishedAt, arg.CreatedAt,
		arg.UpdatedAt)
	return scanArticleRow(row)
}

// GetArticle returns an article by id.
func (q *Queries) GetArticle(ctx context.Context, id int64) (Article, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	return scanArticleRow(row)
}

// GetArticleBySlug returns an article by its unique slug.
func (q *Queries) GetArticleBySlug(ctx context.Context, slug string) (Article, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = ?`, slug)
	return scanArticleRow(row)
}

// GetArticleByAuthorAndTitleParams holds the fields for GetArticleByAuthorAndTitle.
type GetArticleByAuthorAndTitleParams struct {
	AuthorID int64
	Title    string
}

// GetArticleByAuthorAndTitle returns the newest article matching the
// author/title pair. Legacy articles predate shared draft ids, so cascade
// deletion falls back to this lookup.
func (q *Queries) GetArticleByAuthorAndTitle(ctx context.Context, arg GetArticleByAuthorAndTitleParams) (Article, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+articleColumns+` FROM articles
		WHERE author_id = ? AND title = ?
		ORDER BY published_at DESC LIMIT 1`, arg.AuthorID, arg.Title)
	return scanArticleRow(row)
}

// ListPublishedArticlesParams holds the fields for ListPublishedArticles.
type ListPublishedArticlesParams struct {
	Limit  int64
	Offset int64
}

// ListPublishedArticles returns published articles, newest first.
func (q *Queries) ListPublishedArticles(ctx context.Context, arg ListPublishedArticlesParams) ([]Article, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+articleColumns+` FROM articles
		WHERE status = 'published'
		ORDER BY published_at DESC LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanArticles(rows)
}

// CountPublishedArticles returns the number of published articles.
func (q *Queries) CountPublishedArticles(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE status = 'published'`).Scan(&n)
	return n, err
}

// SlugExists reports whether an article already uses the given slug.
func (q *Queries) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE slug = ?`, slug).Scan(&n)
	return n > 0, err
}

// DeleteArticle removes an article row.
func (q *Queries) DeleteArticle(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	return err
}

// SetArticleLikes updates the denormalized like counter.
func (q *Queries) SetArticleLikes(ctx context.Context, id, likes int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE articles SET likes = ? WHERE id = ?`, likes, id)
	return err
}
