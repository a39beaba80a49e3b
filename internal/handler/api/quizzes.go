// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/olegiv/pressroom-go/internal/middleware"
	"github.com/olegiv/pressroom-go/internal/quiz"
)

// GetQuiz returns a quiz by id, including its questions.
func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid quiz ID", nil)
		return
	}

	q, err := h.quizzes.Get(r.Context(), id)
	if errors.Is(err, quiz.ErrNotFound) {
		WriteNotFound(w, "Quiz not found")
		return
	}
	if err != nil {
		h.logger.Error("quiz lookup failed", "quiz_id", id, "error", err)
		WriteInternalError(w, "Failed to load quiz")
		return
	}
	WriteSuccess(w, q, nil)
}

// GetArticleQuiz returns the quiz attached to an article.
func (h *Handler) GetArticleQuiz(w http.ResponseWriter, r *http.Request) {
	articleID, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid article ID", nil)
		return
	}

	q, err := h.quizzes.GetByArticle(r.Context(), articleID)
	if errors.Is(err, quiz.ErrNotFound) {
		WriteNotFound(w, "This article has no quiz")
		return
	}
	if err != nil {
		h.logger.Error("quiz lookup failed", "article_id", articleID, "error", err)
		WriteInternalError(w, "Failed to load quiz")
		return
	}
	WriteSuccess(w, q, nil)
}

// attemptInput is the request body for submitting a quiz attempt.
type attemptInput struct {
	Score            int `json:"score"`
	TotalQuestions   int `json:"total_questions"`
	TimeSpentSeconds int `json:"time_spent_seconds"`
}

// SubmitAttempt records the current user's attempt at a quiz. At most
// one attempt per user and quiz; a repeat submission returns the
// original result.
func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	quizID, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid quiz ID", nil)
		return
	}

	var in attemptInput
	if err := decodeBody(r, &in); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if fieldErrs := validateAttempt(in); len(fieldErrs) > 0 {
		WriteValidationError(w, fieldErrs)
		return
	}

	q, err := h.quizzes.Get(r.Context(), quizID)
	if errors.Is(err, quiz.ErrNotFound) {
		WriteNotFound(w, "Quiz not found")
		return
	}
	if err != nil {
		h.logger.Error("quiz lookup failed", "quiz_id", quizID, "error", err)
		WriteInternalError(w, "Failed to load quiz")
		return
	}
	if in.TotalQuestions != len(q.Questions) {
		WriteValidationError(w, map[string]string{
			"total_questions": "Does not match the quiz question count",
		})
		return
	}

	attempt, err := h.recorder.SubmitAttempt(r.Context(), quiz.SubmitInput{
		QuizID:           quizID,
		UserID:           user.ID,
		Score:            in.Score,
		TotalQuestions:   in.TotalQuestions,
		TimeSpentSeconds: in.TimeSpentSeconds,
	})
	if err != nil {
		h.logger.Error("attempt submission failed", "quiz_id", quizID, "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to record attempt")
		return
	}

	if attempt.IsLocal() {
		// Synthesized result: storage failed, nothing was persisted
		WriteJSON(w, http.StatusAccepted, Response{Data: attempt})
		return
	}
	WriteCreated(w, attempt)
}

// GetLeaderboard returns the quiz's perfect-score leaderboard.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	quizID, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid quiz ID", nil)
		return
	}

	limit := queryInt(r, "limit", quiz.DefaultLeaderboardLimit)
	entries, err := h.ranker.Leaderboard(r.Context(), quizID, limit)
	if err != nil {
		h.logger.Error("leaderboard failed", "quiz_id", quizID, "error", err)
		WriteInternalError(w, "Failed to load leaderboard")
		return
	}
	WriteSuccess(w, entries, &Meta{Total: int64(len(entries))})
}

// validateAttempt checks the attempt payload's numeric invariants.
func validateAttempt(in attemptInput) map[string]string {
	errs := make(map[string]string)
	if in.TotalQuestions < 1 {
		errs["total_questions"] = "Must be at least 1"
	}
	if in.Score < 0 || in.Score > in.TotalQuestions {
		errs["score"] = "Must be between 0 and total_questions"
	}
	if in.TimeSpentSeconds < 0 {
		errs["time_spent_seconds"] = "Must not be negative"
	}
	return errs
}
