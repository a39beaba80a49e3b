// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
	"time"
)

// QuizOptionCount is the fixed number of answer options per question.
const QuizOptionCount = 4

// LocalAttemptIDPrefix marks a synthesized, non-persisted attempt result.
// Such a result lets the caller's workflow proceed after storage failed,
// but it is not durable and must not be treated as such.
const LocalAttemptIDPrefix = "local-"

// QuizQuestion is one normalized multiple-choice question.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Validate checks that the question is complete: non-empty text, exactly
// four options and a correct-answer index within range.
func (qq QuizQuestion) Validate() error {
	if strings.TrimSpace(qq.Question) == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(qq.Options) != QuizOptionCount {
		return fmt.Errorf("question needs %d options, got %d", QuizOptionCount, len(qq.Options))
	}
	for i, opt := range qq.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("option %d is empty", i)
		}
	}
	if qq.CorrectAnswer < 0 || qq.CorrectAnswer >= QuizOptionCount {
		return fmt.Errorf("correct answer index %d out of range", qq.CorrectAnswer)
	}
	return nil
}

// Quiz holds the questions attached to one article.
type Quiz struct {
	ID        int64          `json:"id"`
	ArticleID int64          `json:"article_id"`
	Questions []QuizQuestion `json:"questions"`
	CreatedAt time.Time      `json:"created_at"`
}

// QuizAttempt is one user's completed run of a quiz. At most one attempt
// exists per (user, quiz) pair; retakes are not permitted.
type QuizAttempt struct {
	ID               string    `json:"id"`
	QuizID           int64     `json:"quiz_id"`
	UserID           int64     `json:"user_id"`
	Score            int       `json:"score"`
	TotalQuestions   int       `json:"total_questions"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	CompletedAt      time.Time `json:"completed_at"`
}

// IsLocal reports whether the attempt is a synthesized fallback result
// that was never persisted.
func (a *QuizAttempt) IsLocal() bool {
	return strings.HasPrefix(a.ID, LocalAttemptIDPrefix)
}

// IsPerfect reports whether every question was answered correctly.
func (a *QuizAttempt) IsPerfect() bool {
	return a.TotalQuestions > 0 && a.Score == a.TotalQuestions
}
