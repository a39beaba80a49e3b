// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pressroom-go/internal/middleware"
)

// Routes builds the /api/v1 route tree. The caller mounts session
// loading, rate limiting and the other outer middleware.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/status", h.Status)

	// Authentication
	r.Post("/auth/login", h.Login)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser())
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.Me)
	})

	// Published articles are public reads
	r.Route("/articles", func(r chi.Router) {
		r.Get("/", h.ListArticles)
		r.Get("/search", h.SearchArticles)
		r.Get("/slug/{slug}", h.GetArticleBySlug)
		r.Get("/{id}", h.GetArticle)
		r.Get("/{id}/comments", h.ListComments)
		r.Get("/{id}/quiz", h.GetArticleQuiz)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser())
			r.Post("/{id}/like", h.LikeArticle)
			r.Delete("/{id}/like", h.UnlikeArticle)
			r.Post("/{id}/comments", h.CreateComment)
		})
	})

	// Quizzes: reads are public, attempts need an account
	r.Route("/quizzes", func(r chi.Router) {
		r.Get("/{id}", h.GetQuiz)
		r.Get("/{id}/leaderboard", h.GetLeaderboard)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser())
			r.Post("/{id}/attempts", h.SubmitAttempt)
		})
	})

	// Drafts and the review workflow
	r.Route("/drafts", func(r chi.Router) {
		r.Use(middleware.RequireUser())

		r.Get("/", h.ListDrafts)
		r.Post("/", h.CreateDraft)
		r.Get("/{id}", h.GetDraft)
		r.Put("/{id}", h.UpdateDraft)
		r.Delete("/{id}", h.DeleteDraft)
		r.Post("/{id}/autosave", h.AutosaveDraft)
		r.Post("/{id}/submit", h.SubmitDraft)
		r.Post("/{id}/organize", h.OrganizeDraftContent)
		r.Post("/{id}/generate-quiz", h.GenerateDraftQuiz)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireEditor())
			r.Post("/{id}/approve", h.ApproveDraft)
			r.Post("/{id}/reject", h.RejectDraft)
		})
	})

	// Notifications
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireUser())

		r.Get("/", h.ListNotifications)
		r.Post("/{id}/read", h.MarkNotificationRead)
		r.Post("/read-all", h.MarkAllNotificationsRead)
		r.Get("/ws", h.NotificationSocket)
	})

	return r
}
