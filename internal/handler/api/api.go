// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST handlers for the publishing platform.
package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/pressroom-go/internal/aigen"
	"github.com/olegiv/pressroom-go/internal/article"
	"github.com/olegiv/pressroom-go/internal/draft"
	"github.com/olegiv/pressroom-go/internal/notify"
	"github.com/olegiv/pressroom-go/internal/quiz"
	"github.com/olegiv/pressroom-go/internal/review"
	"github.com/olegiv/pressroom-go/internal/service"
	"github.com/olegiv/pressroom-go/internal/store"
	"github.com/olegiv/pressroom-go/internal/version"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	queries   *store.Queries
	sessions  *scs.SessionManager
	drafts    *draft.Service
	autosaver *draft.Autosaver
	gate      *review.Gate
	articles  *article.Service
	quizzes   *quiz.Service
	recorder  *quiz.Recorder
	ranker    *quiz.Ranker
	notifier  *notify.Service
	hub       *notify.Hub
	search    *service.SearchService
	events    *service.EventService
	ai        *aigen.Service
	logger    *slog.Logger
}

// Config collects the services the handlers dispatch to.
type Config struct {
	DB        *sql.DB
	Sessions  *scs.SessionManager
	Drafts    *draft.Service
	Autosaver *draft.Autosaver
	Gate      *review.Gate
	Articles  *article.Service
	Quizzes   *quiz.Service
	Recorder  *quiz.Recorder
	Ranker    *quiz.Ranker
	Notifier  *notify.Service
	Hub       *notify.Hub
	Search    *service.SearchService
	Events    *service.EventService
	AI        *aigen.Service
	Logger    *slog.Logger
}

// NewHandler creates the API handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		queries:   store.New(cfg.DB),
		sessions:  cfg.Sessions,
		drafts:    cfg.Drafts,
		autosaver: cfg.Autosaver,
		gate:      cfg.Gate,
		articles:  cfg.Articles,
		quizzes:   cfg.Quizzes,
		recorder:  cfg.Recorder,
		ranker:    cfg.Ranker,
		notifier:  cfg.Notifier,
		hub:       cfg.Hub,
		search:    cfg.Search,
		events:    cfg.Events,
		ai:        cfg.AI,
		logger:    logger,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination and other metadata.
type Meta struct {
	Total   int64 `json:"total,omitempty"`
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
	Pages   int   `json:"pages,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message, nil)
}

// WriteConflict writes a 409 Conflict response.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with
// field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// ParseIDParam extracts the {id} URL parameter as an int64.
func ParseIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// decodeBody decodes a JSON request body into dst. Unknown fields are
// rejected so typos in client payloads surface as errors.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{
		Status:  "ok",
		Version: version.Version,
	}, nil)
}
