package store

import (
	"context"
	"database/sql"
	"time"
)

const draftColumns = `id, user_id, title, content_html, content_format, cover_image_url,
	tags, custom_author, quiz_questions, status, rejection_reason, created_at, updated_at`

func scanDraft(row *sql.Row) (Draft, error) {
	var d Draft
	err := row.Scan(&d.ID, &d.UserID, &d.Title, &d.ContentHtml, &d.ContentFormat,
		&d.CoverImageUrl, &d.Tags, &d.CustomAuthor, &d.QuizQuestions, &d.Status,
		&d.RejectionReason, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// CreateDraftParams holds the fields for CreateDraft.
type CreateDraftParams struct {
	UserID        int64
	Title         string
	ContentHtml   string
	ContentFormat string
	CoverImageUrl string
	Tags          string
	CustomAuthor  sql.NullString
	QuizQuestions string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateDraft inserts a new draft with status "draft" and returns it.
func (q *Queries) CreateDraft(ctx context.Context, arg CreateDraftParams) (Draft, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO drafts (user_id, title, content_html, content_format, cover_image_url,
			tags, custom_author, quiz_questions, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'draft', ?, ?)
		RETURNING `+draftColumns,
		arg.UserID, arg.Title, arg.ContentHtml, arg.ContentFormat, arg.CoverImageUrl,
		arg.Tags, arg.CustomAuthor, arg.QuizQuestions, arg.CreatedAt, arg.UpdatedAt)
	return scanDraft(row)
}

// GetDraft returns a draft by id.
func (q *Queries) GetDraft(ctx context.Context, id int64) (Draft, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+draftColumns+` FROM drafts WHERE id = ?`, id)
	return scanDraft(row)
}

// ListDraftsByUser returns a user's drafts, most recently updated first.
func (q *Queries) ListDraftsByUser(ctx context.Context, userID int64) ([]Draft, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+draftColumns+` FROM drafts WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		var d Draft
		if err := rows.Scan(&d.ID, &d.UserID, &d.Title, &d.ContentHtml, &d.ContentFormat,
			&d.CoverImageUrl, &d.Tags, &d.CustomAuthor, &d.QuizQuestions, &d.Status,
			&d.RejectionReason, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// UpdateDraftParams holds the fields for UpdateDraft.
type UpdateDraftParams struct {
	ID            int64
	Title         string
	ContentHtml   string
	ContentFormat string
	CoverImageUrl string
	Tags          string
	CustomAuthor  sql.NullString
	QuizQuestions string
	UpdatedAt     time.Time
}

// UpdateDraft replaces a draft's editable fields and returns the updated row.
func (q *Queries) UpdateDraft(ctx context.Context, arg UpdateDraftParams) (Draft, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE drafts
		SET title = ?, content_html = ?, content_format = ?, cover_image_url = ?,
			tags = ?, custom_author = ?, quiz_questions = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+draftColumns,
		arg.Title, arg.ContentHtml, arg.ContentFormat, arg.CoverImageUrl,
		arg.Tags, arg.CustomAuthor, arg.QuizQuestions, arg.UpdatedAt, arg.ID)
	return scanDraft(row)
}

// UpdateDraftStatusParams holds the fields for UpdateDraftStatus.
type UpdateDraftStatusParams struct {
	ID              int64
	Status          string
	RejectionReason sql.NullString
	UpdatedAt       time.Time
}

// UpdateDraftStatus sets a draft's status and rejection reason together so
// the reason can never outlive the rejected state.
func (q *Queries) UpdateDraftStatus(ctx context.Context, arg UpdateDraftStatusParams) (Draft, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE drafts SET status = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+draftColumns,
		arg.Status, arg.RejectionReason, arg.UpdatedAt, arg.ID)
	return scanDraft(row)
}

// DeleteDraft removes a draft row.
func (q *Queries) DeleteDraft(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	return err
}

// DeleteStaleEmptyDrafts removes never-titled, contentless drafts not
// touched since the cutoff. Returns the number of rows removed.
func (q *Queries) DeleteStaleEmptyDrafts(ctx context.Context, updatedBefore time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM drafts
		WHERE title = '' AND content_html = '' AND status = 'draft' AND updated_at < ?`,
		updatedBefore)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
