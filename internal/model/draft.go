// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared across services and
// handlers: drafts, articles, quizzes, attempts, notifications and the
// audit event vocabulary.
package model

import "time"

// Draft statuses
const (
	DraftStatusDraft     = "draft"
	DraftStatusSubmitted = "submitted"
	DraftStatusPublished = "published"
	DraftStatusRejected  = "rejected"
)

// Draft content formats
const (
	ContentFormatHTML     = "html"
	ContentFormatMarkdown = "markdown"
)

// MaxQuizQuestions is the most questions a draft may attach.
const MaxQuizQuestions = 10

// Draft is the authoring unit for one in-progress or completed article.
type Draft struct {
	ID              int64          `json:"id"`
	UserID          int64          `json:"user_id"`
	Title           string         `json:"title"`
	ContentHtml     string         `json:"content_html"`
	ContentFormat   string         `json:"content_format"`
	CoverImageURL   string         `json:"cover_image_url,omitempty"`
	Tags            []string       `json:"tags"`
	CustomAuthor    *string        `json:"custom_author,omitempty"`
	QuizQuestions   []QuizQuestion `json:"quiz_questions"`
	Status          string         `json:"status"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`
	WordCount       int            `json:"word_count"`
	ReadingTime     int            `json:"reading_time"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Editable returns true while the author may still change the draft.
// Submitted drafts are frozen pending the review outcome; published
// drafts are superseded by their article.
func (d *Draft) Editable() bool {
	return d.Status == DraftStatusDraft || d.Status == DraftStatusRejected
}

// IsSubmitted returns true if the draft awaits review.
func (d *Draft) IsSubmitted() bool {
	return d.Status == DraftStatusSubmitted
}

// IsPublished returns true if the draft has been approved.
func (d *Draft) IsPublished() bool {
	return d.Status == DraftStatusPublished
}
