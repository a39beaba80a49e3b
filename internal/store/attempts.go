package store

import (
	"context"
	"database/sql"
	"time"
)

const attemptColumns = `id, quiz_id, user_id, score, total_questions, time_spent, completed_at`

func scanAttempt(row *sql.Row) (QuizAttempt, error) {
	var a QuizAttempt
	err := row.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Score, &a.TotalQuestions,
		&a.TimeSpent, &a.CompletedAt)
	return a, err
}

// GetAttemptParams holds the fields for GetAttempt.
type GetAttemptParams struct {
	QuizID int64
	UserID int64
}

// GetAttempt returns the single attempt for a (quiz, user) pair.
func (q *Queries) GetAttempt(ctx context.Context, arg GetAttemptParams) (QuizAttempt, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+attemptColumns+` FROM quiz_attempts WHERE quiz_id = ? AND user_id = ?`,
		arg.QuizID, arg.UserID)
	return scanAttempt(row)
}

// CreateAttemptParams holds the fields for CreateAttempt.
type CreateAttemptParams struct {
	ID             string
	QuizID         int64
	UserID         int64
	Score          int64
	TotalQuestions int64
	TimeSpent      int64
	CompletedAt    time.Time
}

// CreateAttempt inserts a full attempt row. A UNIQUE violation on
// (quiz_id, user_id) means another submission won the race.
func (q *Queries) CreateAttempt(ctx context.Context, arg CreateAttemptParams) (QuizAttempt, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO quiz_attempts (id, quiz_id, user_id, score, total_questions, time_spent, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+attemptColumns,
		arg.ID, arg.QuizID, arg.UserID, arg.Score, arg.TotalQuestions, arg.TimeSpent,
		arg.CompletedAt)
	return scanAttempt(row)
}

// CreateAttemptMinimalParams holds the fields for CreateAttemptMinimal.
type CreateAttemptMinimalParams struct {
	ID          string
	QuizID      int64
	UserID      int64
	Score       int64
	CompletedAt time.Time
}

// CreateAttemptMinimal inserts an attempt with only the mandatory fields,
// leaving total_questions and time_spent at their column defaults. Used as
// the reduced-payload retry when the full insert fails.
func (q *Queries) CreateAttemptMinimal(ctx context.Context, arg CreateAttemptMinimalParams) (QuizAttempt, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO quiz_attempts (id, quiz_id, user_id, score, completed_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+attemptColumns,
		arg.ID, arg.QuizID, arg.UserID, arg.Score, arg.CompletedAt)
	return scanAttempt(row)
}

// ListPerfectAttemptsForQuizParams holds the fields for ListPerfectAttemptsForQuiz.
type ListPerfectAttemptsForQuizParams struct {
	QuizID int64
	Limit  int64
}

// ListPerfectAttemptsForQuiz returns only attempts that answered every
// question correctly, fastest first, earliest insertion breaking ties.
func (q *Queries) ListPerfectAttemptsForQuiz(ctx context.Context, arg ListPerfectAttemptsForQuizParams) ([]QuizAttempt, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+attemptColumns+` FROM quiz_attempts
		WHERE quiz_id = ? AND total_questions > 0 AND score = total_questions
		ORDER BY score DESC, time_spent ASC, rowid ASC
		LIMIT ?`, arg.QuizID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []QuizAttempt
	for rows.Next() {
		var a QuizAttempt
		if err := rows.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Score, &a.TotalQuestions,
			&a.TimeSpent, &a.CompletedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// CountAttemptsAtOrAboveParams holds the fields for CountAttemptsAtOrAbove.
type CountAttemptsAtOrAboveParams struct {
	QuizID    int64
	Score     int64
	TimeSpent int64
}

// CountAttemptsAtOrAbove counts attempts for a quiz scoring at least Score
// in at most TimeSpent seconds. Feeds the provisional rank of a fresh
// attempt (count includes the attempt itself once it is stored).
func (q *Queries) CountAttemptsAtOrAbove(ctx context.Context, arg CountAttemptsAtOrAboveParams) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM quiz_attempts
		WHERE quiz_id = ? AND score >= ? AND time_spent <= ?`,
		arg.QuizID, arg.Score, arg.TimeSpent).Scan(&n)
	return n, err
}

// DeleteAttemptsByQuiz removes all attempts for a quiz.
func (q *Queries) DeleteAttemptsByQuiz(ctx context.Context, quizID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM quiz_attempts WHERE quiz_id = ?`, quizID)
	return err
}
