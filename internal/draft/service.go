// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package draft provides the draft repository: CRUD over authoring
// records plus derived reading metrics. Status transitions live in the
// review package.
package draft

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/pressroom-go/internal/model"
	"github.com/olegiv/pressroom-go/internal/store"
	"github.com/olegiv/pressroom-go/internal/util"
)

var (
	// ErrNotFound is returned when no draft exists for the given id.
	ErrNotFound = errors.New("draft not found")

	// ErrFrozen is returned when editing a draft that is submitted or
	// published. Authors may only edit while status is draft or rejected.
	ErrFrozen = errors.New("draft is frozen pending review outcome")

	// ErrNotOwner is returned when a user edits someone else's draft.
	ErrNotOwner = errors.New("draft belongs to another user")

	// ErrCustomAuthorNotAllowed is returned when a non-elevated role sets
	// a custom author display name.
	ErrCustomAuthorNotAllowed = errors.New("custom author requires editor role")

	// ErrTooManyQuestions is returned when a draft carries more quiz
	// questions than model.MaxQuizQuestions.
	ErrTooManyQuestions = fmt.Errorf("a draft may carry at most %d quiz questions", model.MaxQuizQuestions)
)

// Service is the draft repository.
type Service struct {
	queries   *store.Queries
	logger    *slog.Logger
	sanitizer *bluemonday.Policy
}

// NewService creates a draft Service.
func NewService(db *sql.DB, logger *slog.Logger) *Service {
	return &Service{
		queries:   store.New(db),
		logger:    logger,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Create inserts an empty draft shell owned by the given user.
func (s *Service) Create(ctx context.Context, userID int64) (*model.Draft, error) {
	now := time.Now().UTC()
	row, err := s.queries.CreateDraft(ctx, store.CreateDraftParams{
		UserID:        userID,
		ContentFormat: model.ContentFormatHTML,
		Tags:          "[]",
		QuizQuestions: "[]",
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("creating draft: %w", err)
	}
	return FromStore(row), nil
}

// Get returns a draft by id with derived metrics recomputed.
func (s *Service) Get(ctx context.Context, id int64) (*model.Draft, error) {
	row, err := s.queries.GetDraft(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting draft %d: %w", id, err)
	}
	return FromStore(row), nil
}

// ListByUser returns a user's drafts, most recently updated first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]model.Draft, error) {
	rows, err := s.queries.ListDraftsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing drafts for user %d: %w", userID, err)
	}

	drafts := make([]model.Draft, 0, len(rows))
	for _, row := range rows {
		drafts = append(drafts, *FromStore(row))
	}
	return drafts, nil
}

// UpdateInput holds the author-editable draft fields.
type UpdateInput struct {
	Title         string
	ContentHtml   string
	ContentFormat string
	CoverImageURL string
	Tags          []string
	CustomAuthor  *string
	QuizQuestions []model.QuizQuestion
}

// Update replaces a draft's editable fields. The draft must belong to the
// editor and be in an editable status. HTML content is sanitized before
// storage; markdown is stored verbatim and rendered at publish time.
func (s *Service) Update(ctx context.Context, id int64, editor *model.User, in UpdateInput) (*model.Draft, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.UserID != editor.ID && !editor.CanReview() {
		return nil, ErrNotOwner
	}
	if !current.Editable() {
		return nil, ErrFrozen
	}
	if in.CustomAuthor != nil && !editor.CanOverrideAuthor() {
		return nil, ErrCustomAuthorNotAllowed
	}
	if len(in.QuizQuestions) > model.MaxQuizQuestions {
		return nil, ErrTooManyQuestions
	}

	format := in.ContentFormat
	if format == "" {
		format = model.ContentFormatHTML
	}
	content := in.ContentHtml
	if format == model.ContentFormatHTML {
		content = s.sanitizer.Sanitize(content)
	}

	tags, err := json.Marshal(dedupeTags(in.Tags))
	if err != nil {
		return nil, fmt.Errorf("encoding tags: %w", err)
	}
	questions, err := json.Marshal(in.QuizQuestions)
	if err != nil {
		return nil, fmt.Errorf("encoding quiz questions: %w", err)
	}

	row, err := s.queries.UpdateDraft(ctx, store.UpdateDraftParams{
		ID:            id,
		Title:         in.Title,
		ContentHtml:   content,
		ContentFormat: format,
		CoverImageUrl: in.CoverImageURL,
		Tags:          string(tags),
		CustomAuthor:  util.NullStringFromPtr(in.CustomAuthor),
		QuizQuestions: string(questions),
		UpdatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("updating draft %d: %w", id, err)
	}
	return FromStore(row), nil
}

// Delete removes a draft row. Cascading deletion of a published draft's
// article belongs to the review package.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.queries.DeleteDraft(ctx, id); err != nil {
		return fmt.Errorf("deleting draft %d: %w", id, err)
	}
	return nil
}

// FromStore converts a store row to the domain type, recomputing the
// derived word count and reading time. Malformed JSON columns degrade to
// empty values rather than failing the read.
func FromStore(row store.Draft) *model.Draft {
	d := &model.Draft{
		ID:              row.ID,
		UserID:          row.UserID,
		Title:           row.Title,
		ContentHtml:     row.ContentHtml,
		ContentFormat:   row.ContentFormat,
		CoverImageURL:   row.CoverImageUrl,
		Tags:            []string{},
		CustomAuthor:    util.PtrFromNullString(row.CustomAuthor),
		QuizQuestions:   []model.QuizQuestion{},
		Status:          row.Status,
		RejectionReason: util.PtrFromNullString(row.RejectionReason),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}

	if row.Tags != "" {
		_ = json.Unmarshal([]byte(row.Tags), &d.Tags)
	}
	if row.QuizQuestions != "" {
		_ = json.Unmarshal([]byte(row.QuizQuestions), &d.QuizQuestions)
	}

	d.WordCount = util.WordCount(row.ContentHtml)
	d.ReadingTime = util.ReadingTime(d.WordCount)
	return d
}

// dedupeTags removes duplicates while preserving first-seen order.
func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
