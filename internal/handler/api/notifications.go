// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/pressroom-go/internal/middleware"
)

// defaultNotificationLimit bounds one notification list response.
const defaultNotificationLimit = 50

// ListNotifications returns the current user's notifications, newest
// first, along with the unread count.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	limit := int64(queryInt(r, "limit", defaultNotificationLimit))
	notifications, err := h.notifier.List(r.Context(), user.ID, limit)
	if err != nil {
		h.logger.Error("notification listing failed", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to list notifications")
		return
	}

	unread, err := h.notifier.CountUnread(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("unread count failed", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to list notifications")
		return
	}

	WriteSuccess(w, map[string]any{
		"notifications": notifications,
		"unread":        unread,
	}, &Meta{Total: int64(len(notifications))})
}

// MarkNotificationRead marks one of the current user's notifications read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid notification ID", nil)
		return
	}

	if err := h.notifier.MarkRead(r.Context(), id, user.ID); err != nil {
		h.logger.Error("mark read failed", "notification_id", id, "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to mark notification read")
		return
	}
	WriteJSON(w, http.StatusNoContent, nil)
}

// MarkAllNotificationsRead marks all of the current user's notifications read.
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if err := h.notifier.MarkAllRead(r.Context(), user.ID); err != nil {
		h.logger.Error("mark all read failed", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to mark notifications read")
		return
	}
	WriteJSON(w, http.StatusNoContent, nil)
}

// NotificationSocket upgrades the connection to a websocket that streams
// the user's notifications as they are created.
func (h *Handler) NotificationSocket(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	h.hub.ServeWS(w, r, user.ID)
}
