package store

import (
	"context"
	"database/sql"
	"time"
)

const quizColumns = `id, article_id, questions, created_at`

func scanQuiz(row *sql.Row) (Quiz, error) {
	var qz Quiz
	err := row.Scan(&qz.ID, &qz.ArticleID, &qz.Questions, &qz.CreatedAt)
	return qz, err
}

// CreateQuizParams holds the fields for CreateQuiz.
type CreateQuizParams struct {
	ArticleID int64
	Questions string
	CreatedAt time.Time
}

// CreateQuiz inserts the quiz for an article. The article_id column is
// unique: an article carries at most one quiz.
func (q *Queries) CreateQuiz(ctx context.Context, arg CreateQuizParams) (Quiz, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO quizzes (article_id, questions, created_at)
		VALUES (?, ?, ?)
		RETURNING `+quizColumns,
		arg.ArticleID, arg.Questions, arg.CreatedAt)
	return scanQuiz(row)
}

// GetQuiz returns a quiz by id.
func (q *Queries) GetQuiz(ctx context.Context, id int64) (Quiz, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = ?`, id)
	return scanQuiz(row)
}

// GetQuizByArticle returns the quiz belonging to an article.
func (q *Queries) GetQuizByArticle(ctx context.Context, articleID int64) (Quiz, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE article_id = ?`, articleID)
	return scanQuiz(row)
}

// DeleteQuizByArticle removes the quiz belonging to an article.
func (q *Queries) DeleteQuizByArticle(ctx context.Context, articleID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM quizzes WHERE article_id = ?`, articleID)
	return err
}
