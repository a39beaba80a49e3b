// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify provides fire-and-forget user notifications with an
// optional realtime websocket bridge.
package notify

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/pressroom-go/internal/metrics"
	"github.com/olegiv/pressroom-go/internal/model"
	"github.com/olegiv/pressroom-go/internal/store"
)

// Service persists notifications and forwards them to connected clients.
type Service struct {
	queries *store.Queries
	hub     *Hub
	logger  *slog.Logger
}

// NewService creates a notification Service. The hub may be nil; pushes
// are then skipped and only the row is written.
func NewService(db *sql.DB, hub *Hub, logger *slog.Logger) *Service {
	return &Service{
		queries: store.New(db),
		hub:     hub,
		logger:  logger,
	}
}

// Notify stores a notification and pushes it to the user's connected
// clients. The push is best-effort; only the insert can fail.
func (s *Service) Notify(ctx context.Context, userID int64, typ, title, message, actionURL string) (*model.Notification, error) {
	row, err := s.queries.CreateNotification(ctx, store.CreateNotificationParams{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		ActionUrl: actionURL,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}

	metrics.IncNotification(typ)

	n := fromStore(row)
	if s.hub != nil {
		s.hub.Push(userID, "notification", n)
	}
	return n, nil
}

// List returns a user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID int64, limit int64) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.queries.ListNotificationsByUser(ctx, store.ListNotificationsByUserParams{
		UserID: userID,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	notifications := make([]model.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, *fromStore(row))
	}
	return notifications, nil
}

// CountUnread returns the user's unread notification count.
func (s *Service) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return s.queries.CountUnreadNotifications(ctx, userID)
}

// MarkRead flags one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return s.queries.MarkNotificationRead(ctx, store.MarkNotificationReadParams{
		ID:     id,
		UserID: userID,
	})
}

// MarkAllRead flags all of the user's notifications as read.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	return s.queries.MarkAllNotificationsRead(ctx, userID)
}

func fromStore(row store.Notification) *model.Notification {
	return &model.Notification{
		ID:        row.ID,
		UserID:    row.UserID,
		Type:      row.Type,
		Title:     row.Title,
		Message:   row.Message,
		Read:      row.Read,
		ActionURL: row.ActionUrl,
		CreatedAt: row.CreatedAt,
	}
}
