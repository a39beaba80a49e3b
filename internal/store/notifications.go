package store

import (
	"context"
	"time"
)

const notificationColumns = `id, user_id, type, title, message, read, action_url, created_at`

// CreateNotificationParams holds the fields for CreateNotification.
type CreateNotificationParams struct {
	UserID    int64
	Type      string
	Title     string
	Message   string
	ActionUrl string
	CreatedAt time.Time
}

// CreateNotification inserts an unread notification.
func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) (Notification, error) {
	var n Notification
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO notifications (user_id, type, title, message, read, action_url, created_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
		RETURNING `+notificationColumns,
		arg.UserID, arg.Type, arg.Title, arg.Message, arg.ActionUrl, arg.CreatedAt).
		Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read, &n.ActionUrl, &n.CreatedAt)
	return n, err
}

// ListNotificationsByUserParams holds the fields for ListNotificationsByUser.
type ListNotificationsByUserParams struct {
	UserID int64
	Limit  int64
}

// ListNotificationsByUser returns a user's notifications, newest first.
func (q *Queries) ListNotificationsByUser(ctx context.Context, arg ListNotificationsByUserParams) ([]Notification, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read,
			&n.ActionUrl, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// CountUnreadNotifications returns the number of unread notifications.
func (q *Queries) CountUnreadNotifications(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`, userID).Scan(&n)
	return n, err
}

// MarkNotificationReadParams holds the fields for MarkNotificationRead.
type MarkNotificationReadParams struct {
	ID     int64
	UserID int64
}

// MarkNotificationRead flags a single notification as read. The user id
// guard keeps users from touching notifications that are not theirs.
func (q *Queries) MarkNotificationRead(ctx context.Context, arg MarkNotificationReadParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`, arg.ID, arg.UserID)
	return err
}

// MarkAllNotificationsRead flags all of a user's notifications as read.
func (q *Queries) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`, userID)
	return err
}

// DeleteOldReadNotifications removes read notifications created before the
// cutoff. Returns the number of rows removed.
func (q *Queries) DeleteOldReadNotifications(ctx context.Context, createdBefore time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM notifications WHERE read = 1 AND created_at < ?`, createdBefore)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
