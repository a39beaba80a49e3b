// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/olegiv/pressroom-go/internal/draft"
	"github.com/olegiv/pressroom-go/internal/middleware"
	"github.com/olegiv/pressroom-go/internal/model"
	"github.com/olegiv/pressroom-go/internal/review"
)

// draftInput is the request body for draft updates and autosaves.
type draftInput struct {
	Title         string               `json:"title"`
	ContentHTML   string               `json:"content_html"`
	ContentFormat string               `json:"content_format"`
	CoverImageURL string               `json:"cover_image_url"`
	Tags          []string             `json:"tags"`
	CustomAuthor  *string              `json:"custom_author"`
	QuizQuestions []model.QuizQuestion `json:"quiz_questions"`
}

func (in draftInput) toUpdate() draft.UpdateInput {
	return draft.UpdateInput{
		Title:         in.Title,
		ContentHtml:   in.ContentHTML,
		ContentFormat: in.ContentFormat,
		CoverImageURL: in.CoverImageURL,
		Tags:          in.Tags,
		CustomAuthor:  in.CustomAuthor,
		QuizQuestions: in.QuizQuestions,
	}
}

// CreateDraft starts an empty draft owned by the current user.
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	d, err := h.drafts.Create(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("draft creation failed", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to create draft")
		return
	}
	WriteCreated(w, d)
}

// ListDrafts returns the current user's drafts, newest first.
func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	drafts, err := h.drafts.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("draft listing failed", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to list drafts")
		return
	}
	WriteSuccess(w, drafts, &Meta{Total: int64(len(drafts))})
}

// GetDraft returns one draft. Authors see their own drafts; editors see
// all of them for review.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.requireDraft(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, d, nil)
}

// UpdateDraft replaces the draft's editable fields.
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid draft ID", nil)
		return
	}

	var in draftInput
	if err := decodeBody(r, &in); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	d, err := h.drafts.Update(r.Context(), id, user, in.toUpdate())
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	WriteSuccess(w, d, nil)
}

// AutosaveDraft queues a debounced write of the draft. The save happens
// on the autosaver's interval; last write wins.
func (h *Handler) AutosaveDraft(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid draft ID", nil)
		return
	}

	var in draftInput
	if err := decodeBody(r, &in); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	h.autosaver.Queue(id, user, in.toUpdate())
	WriteJSON(w, http.StatusAccepted, Response{Data: map[string]string{"status": "queued"}})
}

// DeleteDraft removes a draft. For published drafts the article and its
// dependents go with it.
func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	d, ok := h.requireDraft(w, r)
	if !ok {
		return
	}

	if d.UserID != user.ID && !user.CanReview() {
		WriteForbidden(w, "You may only delete your own drafts")
		return
	}

	if err := h.gate.DeleteDraftAndArticle(r.Context(), d.ID, d.UserID, d.Title); err != nil {
		h.logger.Error("draft deletion failed", "draft_id", d.ID, "error", err)
		WriteInternalError(w, "Failed to delete draft")
		return
	}
	WriteJSON(w, http.StatusNoContent, nil)
}

// SubmitDraft moves a draft into review.
func (h *Handler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	d, ok := h.requireDraft(w, r)
	if !ok {
		return
	}
	if d.UserID != user.ID {
		WriteForbidden(w, "You may only submit your own drafts")
		return
	}

	updated, err := h.gate.Submit(r.Context(), d.ID)
	if err != nil {
		h.writeReviewError(w, err)
		return
	}

	_ = h.events.LogReviewEvent(r.Context(), model.EventLevelInfo,
		"Draft submitted for review", &user.ID, "", map[string]any{"draft_id": d.ID})
	WriteSuccess(w, updated, nil)
}

// ApproveDraft publishes a submitted draft. Editor role required by the
// route; the gate enforces state and content checks.
func (h *Handler) ApproveDraft(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid draft ID", nil)
		return
	}

	published, err := h.gate.Approve(r.Context(), id)
	if err != nil {
		h.writeReviewError(w, err)
		return
	}

	_ = h.events.LogReviewEvent(r.Context(), model.EventLevelInfo,
		"Draft approved and published", &user.ID, "", map[string]any{
			"draft_id":   id,
			"article_id": published.ID,
			"slug":       published.Slug,
		})
	WriteSuccess(w, published, nil)
}

// rejectInput carries the optional rejection reason.
type rejectInput struct {
	Reason *string `json:"reason"`
}

// RejectDraft sends a submitted draft back to its author.
func (h *Handler) RejectDraft(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid draft ID", nil)
		return
	}

	var in rejectInput
	if r.ContentLength > 0 {
		if err := decodeBody(r, &in); err != nil {
			WriteBadRequest(w, "Invalid request body", nil)
			return
		}
	}

	rejected, err := h.gate.Reject(r.Context(), id, in.Reason)
	if err != nil {
		h.writeReviewError(w, err)
		return
	}

	_ = h.events.LogReviewEvent(r.Context(), model.EventLevelInfo,
		"Draft rejected", &user.ID, "", map[string]any{"draft_id": id})
	WriteSuccess(w, rejected, nil)
}

// OrganizeDraftContent runs the AI cleanup over the draft body and
// returns the result without saving; the editor decides what to keep.
func (h *Handler) OrganizeDraftContent(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	d, ok := h.requireDraft(w, r)
	if !ok {
		return
	}
	if d.UserID != user.ID {
		WriteForbidden(w, "You may only edit your own drafts")
		return
	}
	if !h.ai.Enabled() {
		WriteError(w, http.StatusServiceUnavailable, "ai_disabled", "AI assistance is not configured", nil)
		return
	}

	organized := h.ai.OrganizeContent(r.Context(), d.Title, d.ContentHtml)
	WriteSuccess(w, map[string]string{"content_html": organized}, nil)
}

// GenerateDraftQuiz asks the AI for candidate quiz questions based on
// the draft body. Questions are returned for editing, not saved.
func (h *Handler) GenerateDraftQuiz(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	d, ok := h.requireDraft(w, r)
	if !ok {
		return
	}
	if d.UserID != user.ID {
		WriteForbidden(w, "You may only edit your own drafts")
		return
	}
	if !h.ai.Enabled() {
		WriteError(w, http.StatusServiceUnavailable, "ai_disabled", "AI assistance is not configured", nil)
		return
	}

	questions, err := h.ai.GenerateQuiz(r.Context(), d.Title, d.ContentHtml)
	if err != nil {
		h.logger.Warn("quiz generation failed", "draft_id", d.ID, "error", err)
		WriteError(w, http.StatusBadGateway, "generation_failed", "Quiz generation failed, try again", nil)
		return
	}
	WriteSuccess(w, questions, nil)
}

// requireDraft parses the id parameter and loads the draft, writing the
// error response on failure. Ownership is NOT checked here.
func (h *Handler) requireDraft(w http.ResponseWriter, r *http.Request) (*model.Draft, bool) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid draft ID", nil)
		return nil, false
	}

	d, err := h.drafts.Get(r.Context(), id)
	if errors.Is(err, draft.ErrNotFound) {
		WriteNotFound(w, "Draft not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error("draft lookup failed", "draft_id", id, "error", err)
		WriteInternalError(w, "Failed to load draft")
		return nil, false
	}

	user := middleware.GetUser(r)
	if d.UserID != user.ID && !user.CanReview() {
		// Hide other users' drafts entirely
		WriteNotFound(w, "Draft not found")
		return nil, false
	}
	return d, true
}

// writeDraftError maps draft service errors onto API responses.
func (h *Handler) writeDraftError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, draft.ErrNotFound):
		WriteNotFound(w, "Draft not found")
	case errors.Is(err, draft.ErrNotOwner):
		WriteForbidden(w, "You may only edit your own drafts")
	case errors.Is(err, draft.ErrFrozen):
		WriteConflict(w, "Draft is locked while in review")
	case errors.Is(err, draft.ErrCustomAuthorNotAllowed):
		WriteForbidden(w, "Custom author requires editor role")
	case errors.Is(err, draft.ErrTooManyQuestions):
		WriteValidationError(w, map[string]string{"quiz_questions": err.Error()})
	default:
		h.logger.Error("draft update failed", "error", err)
		WriteInternalError(w, "Failed to update draft")
	}
}

// writeReviewError maps review gate errors onto API responses.
func (h *Handler) writeReviewError(w http.ResponseWriter, err error) {
	var vErr *review.ValidationError
	var tErr *review.TransitionError

	switch {
	case errors.Is(err, draft.ErrNotFound):
		WriteNotFound(w, "Draft not found")
	case errors.As(err, &vErr):
		WriteValidationError(w, map[string]string{vErr.Field: vErr.Reason})
	case errors.As(err, &tErr):
		WriteConflict(w, tErr.Error())
	default:
		h.logger.Error("review action failed", "error", err)
		WriteInternalError(w, "Review action failed")
	}
}
