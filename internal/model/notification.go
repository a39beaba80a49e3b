// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Notification types
const (
	NotificationTypeAchievement     = "achievement"
	NotificationTypeArticleApproved = "article_approved"
	NotificationTypeArticleRejected = "article_rejected"
	NotificationTypeLike            = "like"
	NotificationTypeComment         = "comment"
	NotificationTypeFollow          = "follow"
)

// Notification is a fire-and-forget message to a user. Only the read
// flag changes after creation.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message,omitempty"`
	Read      bool      `json:"read"`
	ActionURL string    `json:"action_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
