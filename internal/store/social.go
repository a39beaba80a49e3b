package store

import (
	"context"
	"time"
)

// CreateLikeParams holds the fields for CreateLike.
type CreateLikeParams struct {
	ArticleID int64
	UserID    int64
	CreatedAt time.Time
}

// CreateLike inserts a like row. The (article_id, user_id) pair is unique.
func (q *Queries) CreateLike(ctx context.Context, arg CreateLikeParams) (Like, error) {
	var l Like
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO likes (article_id, user_id, created_at)
		VALUES (?, ?, ?)
		RETURNING id, article_id, user_id, created_at`,
		arg.ArticleID, arg.UserID, arg.CreatedAt).
		Scan(&l.ID, &l.ArticleID, &l.UserID, &l.CreatedAt)
	return l, err
}

// DeleteLikeParams holds the fields for DeleteLike.
type DeleteLikeParams struct {
	ArticleID int64
	UserID    int64
}

// DeleteLike removes a user's like from an article. Returns the number of
// rows removed so callers can tell whether the like existed.
func (q *Queries) DeleteLike(ctx context.Context, arg DeleteLikeParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM likes WHERE article_id = ? AND user_id = ?`, arg.ArticleID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountLikesByArticle returns the number of likes on an article.
func (q *Queries) CountLikesByArticle(ctx context.Context, articleID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE article_id = ?`, articleID).Scan(&n)
	return n, err
}

// DeleteLikesByArticle removes all likes on an article.
func (q *Queries) DeleteLikesByArticle(ctx context.Context, articleID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM likes WHERE article_id = ?`, articleID)
	return err
}

// CreateCommentParams holds the fields for CreateComment.
type CreateCommentParams struct {
	ArticleID int64
	UserID    int64
	Body      string
	CreatedAt time.Time
}

// CreateComment inserts a comment row.
func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (Comment, error) {
	var c Comment
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO comments (article_id, user_id, body, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id, article_id, user_id, body, created_at`,
		arg.ArticleID, arg.UserID, arg.Body, arg.CreatedAt).
		Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Body, &c.CreatedAt)
	return c, err
}

// ListCommentsByArticle returns an article's comments, oldest first.
func (q *Queries) ListCommentsByArticle(ctx context.Context, articleID int64) ([]Comment, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, article_id, user_id, body, created_at
		FROM comments WHERE article_id = ? ORDER BY created_at ASC`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// DeleteComment removes a comment row.
func (q *Queries) DeleteComment(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	return err
}

// DeleteCommentsByArticle removes all comments on an article.
func (q *Queries) DeleteCommentsByArticle(ctx context.Context, articleID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM comments WHERE article_id = ?`, articleID)
	return err
}
