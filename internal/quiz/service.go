// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/olegiv/pressroom-go/internal/model"
	"github.com/olegiv/pressroom-go/internal/store"
)

// ErrNotFound is returned when no quiz matches the lookup.
var ErrNotFound = errors.New("quiz not found")

// Service reads quizzes.
type Service struct {
	queries *store.Queries
}

// NewService creates a quiz read Service.
func NewService(db *sql.DB) *Service {
	return &Service{queries: store.New(db)}
}

// Get returns a quiz by id.
func (s *Service) Get(ctx context.Context, id int64) (*model.Quiz, error) {
	row, err := s.queries.GetQuiz(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting quiz %d: %w", id, err)
	}
	return quizFromStore(row)
}

// GetByArticle returns the quiz attached to an article, or ErrNotFound
// when the article has none.
func (s *Service) GetByArticle(ctx context.Context, articleID int64) (*model.Quiz, error) {
	row, err := s.queries.GetQuizByArticle(ctx, articleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting quiz for article %d: %w", articleID, err)
	}
	return quizFromStore(row)
}

func quizFromStore(row store.Quiz) (*model.Quiz, error) {
	var questions []model.QuizQuestion
	if err := json.Unmarshal([]byte(row.Questions), &questions); err != nil {
		return nil, fmt.Errorf("decoding quiz %d questions: %w", row.ID, err)
	}
	return &model.Quiz{
		ID:        row.ID,
		ArticleID: row.ArticleID,
		Questions: questions,
		CreatedAt: row.CreatedAt,
	}, nil
}
